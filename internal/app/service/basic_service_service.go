package service

import (
	"errors"
	"time"

	"github.com/spf-popaccueil/popaccueil-backend/internal/app/model"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/repository"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrBasicServiceNotFound = errors.New("basic service not found")
	ErrBasicServiceClosed   = errors.New("basic service is closed")
	ErrBasicServiceFull     = errors.New("basic service is full")
	ErrAlreadySubscribed    = errors.New("already subscribed to basic service")
)

type BasicServiceInput struct {
	StartAt   time.Time
	EndAt     time.Time
	MaxPeople *int
	IsClosed  bool
}

type BasicServiceService interface {
	List() ([]model.BasicService, error)
	Get(id uint) (*model.BasicService, error)
	Create(input BasicServiceInput) (*model.BasicService, error)
	Update(id uint, input BasicServiceInput) (*model.BasicService, error)
	Delete(id uint) (*model.BasicService, error)
	Subscribe(id, userID uint) (*model.BasicServiceSubscriber, error)
	Unsubscribe(id, userID uint) (*model.BasicService, error)
}

type basicServiceService struct {
	repo repository.BasicServiceRepository
}

func NewBasicServiceService(repo repository.BasicServiceRepository) BasicServiceService {
	return &basicServiceService{repo: repo}
}

func (s *basicServiceService) List() ([]model.BasicService, error) {
	return s.repo.FindAll()
}

func (s *basicServiceService) Get(id uint) (*model.BasicService, error) {
	bs, err := s.repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBasicServiceNotFound
	}
	return bs, err
}

func (s *basicServiceService) Create(input BasicServiceInput) (*model.BasicService, error) {
	if input.EndAt.Before(input.StartAt) {
		return nil, ErrInvalidSchedule
	}
	bs := &model.BasicService{
		StartAt:   input.StartAt,
		EndAt:     input.EndAt,
		MaxPeople: input.MaxPeople,
		IsClosed:  input.IsClosed,
	}
	if err := s.repo.Create(bs); err != nil {
		return nil, err
	}
	return bs, nil
}

func (s *basicServiceService) Update(id uint, input BasicServiceInput) (*model.BasicService, error) {
	if input.EndAt.Before(input.StartAt) {
		return nil, ErrInvalidSchedule
	}
	bs, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	bs.StartAt = input.StartAt
	bs.EndAt = input.EndAt
	bs.MaxPeople = input.MaxPeople
	bs.IsClosed = input.IsClosed
	if err := s.repo.Update(bs); err != nil {
		return nil, err
	}
	return bs, nil
}

func (s *basicServiceService) Delete(id uint) (*model.BasicService, error) {
	bs, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(bs); err != nil {
		return nil, err
	}
	return bs, nil
}

// Subscribe registers userID on the service. Capacity is checked before the
// insert, so two simultaneous subscriptions may both take the last seat.
func (s *basicServiceService) Subscribe(id, userID uint) (*model.BasicServiceSubscriber, error) {
	bs, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if bs.IsClosed {
		return nil, ErrBasicServiceClosed
	}

	subscribed, err := s.repo.IsSubscribed(id, userID)
	if err != nil {
		return nil, err
	}
	if subscribed {
		return nil, ErrAlreadySubscribed
	}

	count, err := s.repo.CountSubscribers(id)
	if err != nil {
		return nil, err
	}
	if bs.IsFull(count) {
		return nil, ErrBasicServiceFull
	}

	sub := &model.BasicServiceSubscriber{UserID: userID, BasicServiceID: id}
	if err := s.repo.AddSubscriber(sub); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}

	logger.Info("User subscribed to basic service", map[string]interface{}{
		"basic_service_id": id,
		"user_id":          userID,
	})
	return sub, nil
}

// Unsubscribe is idempotent and returns the service.
func (s *basicServiceService) Unsubscribe(id, userID uint) (*model.BasicService, error) {
	bs, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	removed, err := s.repo.RemoveSubscriber(id, userID)
	if err != nil {
		return nil, err
	}
	if removed > 0 {
		logger.Info("User unsubscribed from basic service", map[string]interface{}{
			"basic_service_id": id,
			"user_id":          userID,
		})
	}
	return bs, nil
}
