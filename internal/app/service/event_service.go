package service

import (
	"errors"
	"time"

	"github.com/spf-popaccueil/popaccueil-backend/internal/app/model"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/repository"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrInvalidSchedule = errors.New("end must not be before start")
)

type EventInput struct {
	StartAt   time.Time
	EndAt     time.Time
	MaxPeople *int
	Title     string
	Comment   string
	IsFree    bool
	IsClosed  bool
}

func (in EventInput) apply(e *model.Event) {
	e.StartAt = in.StartAt
	e.EndAt = in.EndAt
	e.MaxPeople = in.MaxPeople
	e.Title = in.Title
	e.Comment = in.Comment
	e.IsFree = in.IsFree
	e.IsClosed = in.IsClosed
}

type EventService interface {
	List() ([]model.Event, error)
	Get(id uint) (*model.Event, error)
	Create(input EventInput) (*model.Event, error)
	Update(id uint, input EventInput) (*model.Event, error)
	Delete(id uint) (*model.Event, error)
}

type eventService struct {
	repo repository.EventRepository
}

func NewEventService(repo repository.EventRepository) EventService {
	return &eventService{repo: repo}
}

func (s *eventService) List() ([]model.Event, error) {
	return s.repo.FindAll()
}

func (s *eventService) Get(id uint) (*model.Event, error) {
	event, err := s.repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	return event, err
}

func (s *eventService) Create(input EventInput) (*model.Event, error) {
	if input.EndAt.Before(input.StartAt) {
		return nil, ErrInvalidSchedule
	}
	event := &model.Event{}
	input.apply(event)
	if err := s.repo.Create(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) Update(id uint, input EventInput) (*model.Event, error) {
	if input.EndAt.Before(input.StartAt) {
		return nil, ErrInvalidSchedule
	}
	event, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	input.apply(event)
	if err := s.repo.Update(event); err != nil {
		return nil, err
	}
	return event, nil
}

// Delete removes the event and returns it as it was.
func (s *eventService) Delete(id uint) (*model.Event, error) {
	event, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(event); err != nil {
		return nil, err
	}
	return event, nil
}
