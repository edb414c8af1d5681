package repository

import (
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/model"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/logger"
	"gorm.io/gorm"
)

type BasicServiceRepository interface {
	FindAll() ([]model.BasicService, error)
	FindByID(id uint) (*model.BasicService, error)
	Create(service *model.BasicService) error
	Update(service *model.BasicService) error
	Delete(service *model.BasicService) error

	CountSubscribers(serviceID uint) (int64, error)
	IsSubscribed(serviceID, userID uint) (bool, error)
	AddSubscriber(sub *model.BasicServiceSubscriber) error
	RemoveSubscriber(serviceID, userID uint) (int64, error)
}

type basicServiceRepository struct {
	db *gorm.DB
}

func NewBasicServiceRepository(db *gorm.DB) BasicServiceRepository {
	return &basicServiceRepository{db: db}
}

func (r *basicServiceRepository) FindAll() ([]model.BasicService, error) {
	var services []model.BasicService
	if err := r.db.Order("start_at ASC").Find(&services).Error; err != nil {
		logger.Error("Failed to list basic services", err)
		return nil, err
	}
	return services, nil
}

func (r *basicServiceRepository) FindByID(id uint) (*model.BasicService, error) {
	var service model.BasicService
	if err := r.db.First(&service, id).Error; err != nil {
		logLookupError("Failed to find basic service by ID", err, map[string]interface{}{
			"basic_service_id": id,
		})
		return nil, err
	}
	return &service, nil
}

func (r *basicServiceRepository) Create(service *model.BasicService) error {
	if err := r.db.Create(service).Error; err != nil {
		logger.Error("Failed to create basic service", err)
		return err
	}

	logger.Info("Basic service created", map[string]interface{}{
		"basic_service_id": service.ID,
	})
	return nil
}

func (r *basicServiceRepository) Update(service *model.BasicService) error {
	if err := r.db.Omit("Subscribers").Save(service).Error; err != nil {
		logger.Error("Failed to update basic service", err, map[string]interface{}{
			"basic_service_id": service.ID,
		})
		return err
	}
	return nil
}

// Delete removes the service and its subscriptions in one transaction.
func (r *basicServiceRepository) Delete(service *model.BasicService) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("basic_service_id = ?", service.ID).Delete(&model.BasicServiceSubscriber{}).Error; err != nil {
			return err
		}
		return tx.Delete(service).Error
	})
	if err != nil {
		logger.Error("Failed to delete basic service", err, map[string]interface{}{
			"basic_service_id": service.ID,
		})
		return err
	}
	return nil
}

func (r *basicServiceRepository) CountSubscribers(serviceID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.BasicServiceSubscriber{}).
		Where("basic_service_id = ?", serviceID).
		Count(&count).Error
	return count, err
}

func (r *basicServiceRepository) IsSubscribed(serviceID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.BasicServiceSubscriber{}).
		Where("basic_service_id = ? AND user_id = ?", serviceID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *basicServiceRepository) AddSubscriber(sub *model.BasicServiceSubscriber) error {
	if err := r.db.Create(sub).Error; err != nil {
		logger.Error("Failed to add basic service subscriber", err, map[string]interface{}{
			"basic_service_id": sub.BasicServiceID,
			"user_id":          sub.UserID,
		})
		return err
	}
	return nil
}

// RemoveSubscriber returns the number of subscriptions removed (0 or 1).
func (r *basicServiceRepository) RemoveSubscriber(serviceID, userID uint) (int64, error) {
	result := r.db.Where("basic_service_id = ? AND user_id = ?", serviceID, userID).
		Delete(&model.BasicServiceSubscriber{})
	if result.Error != nil {
		logger.Error("Failed to remove basic service subscriber", result.Error, map[string]interface{}{
			"basic_service_id": serviceID,
			"user_id":          userID,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
