package repository

import (
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/model"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/logger"
	"gorm.io/gorm"
)

type EventRepository interface {
	FindAll() ([]model.Event, error)
	FindByID(id uint) (*model.Event, error)
	Create(event *model.Event) error
	Update(event *model.Event) error
	Delete(event *model.Event) error
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) FindAll() ([]model.Event, error) {
	var events []model.Event
	if err := r.db.Order("start_at ASC").Find(&events).Error; err != nil {
		logger.Error("Failed to list events", err)
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) FindByID(id uint) (*model.Event, error) {
	var event model.Event
	if err := r.db.First(&event, id).Error; err != nil {
		logLookupError("Failed to find event by ID", err, map[string]interface{}{
			"event_id": id,
		})
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) Create(event *model.Event) error {
	if err := r.db.Create(event).Error; err != nil {
		logger.Error("Failed to create event", err, map[string]interface{}{
			"title": event.Title,
		})
		return err
	}

	logger.Info("Event created", map[string]interface{}{
		"event_id": event.ID,
	})
	return nil
}

func (r *eventRepository) Update(event *model.Event) error {
	if err := r.db.Save(event).Error; err != nil {
		logger.Error("Failed to update event", err, map[string]interface{}{
			"event_id": event.ID,
		})
		return err
	}
	return nil
}

func (r *eventRepository) Delete(event *model.Event) error {
	if err := r.db.Delete(event).Error; err != nil {
		logger.Error("Failed to delete event", err, map[string]interface{}{
			"event_id": event.ID,
		})
		return err
	}

	logger.Info("Event deleted", map[string]interface{}{
		"event_id": event.ID,
	})
	return nil
}
