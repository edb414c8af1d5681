package db

import (
	"errors"
	"fmt"

	"github.com/spf-popaccueil/popaccueil-backend/config"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/model"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table managed by AutoMigrate, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.SessionToken{},
		&model.Event{},
		&model.Post{},
		&model.BasicService{},
		&model.BasicServiceSubscriber{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed creates the bootstrap account on an empty users table.
func Seed(cfg *config.AuthConfig) error {
	return SeedBootstrapAdmin(DB, cfg)
}

// SeedBootstrapAdmin creates a volunteer+admin account from configuration when
// no user exists yet. It is a no-op when either credential is unset.
func SeedBootstrapAdmin(db *gorm.DB, cfg *config.AuthConfig) error {
	if cfg.BootstrapAdminEmail == "" || cfg.BootstrapAdminPassword == "" {
		logger.Debug("Bootstrap admin not configured, skipping")
		return nil
	}

	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		logger.Info("Users already present, skipping bootstrap admin", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	admin := &model.User{
		Email:       model.NormalizeEmail(cfg.BootstrapAdminEmail),
		FirstName:   "Admin",
		LastName:    "Pop Accueil",
		IsVolunteer: true,
		IsAdmin:     true,
	}
	if err := admin.SetPassword(cfg.BootstrapAdminPassword); err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}
	if err := db.Create(admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("create bootstrap admin: %w", err)
	}

	logger.Info("Bootstrap admin created", map[string]interface{}{
		"user_id": admin.ID,
		"email":   admin.Email,
	})
	return nil
}
