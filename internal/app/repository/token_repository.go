package repository

import (
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/model"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/logger"
	"gorm.io/gorm"
)

// TokenRepository stores session tokens.
type TokenRepository interface {
	Create(token *model.SessionToken) error
	FindByToken(token string) (*model.SessionToken, error)
	CountByUser(userID uint) (int64, error)
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(token *model.SessionToken) error {
	if err := r.db.Create(token).Error; err != nil {
		logger.Error("Failed to create session token in database", err, map[string]interface{}{
			"user_id": token.UserID,
		})
		return err
	}

	logger.Debug("Session token created in database", map[string]interface{}{
		"token_id": token.ID,
		"user_id":  token.UserID,
	})
	return nil
}

// FindByToken loads the token row together with its owner.
func (r *tokenRepository) FindByToken(token string) (*model.SessionToken, error) {
	var st model.SessionToken
	err := r.db.Preload("User").Where("token = ? AND type = ?", token, model.TokenTypeBearer).First(&st).Error
	if err != nil {
		logLookupError("Failed to find session token in database", err, nil)
		return nil, err
	}
	if st.User == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &st, nil
}

func (r *tokenRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.SessionToken{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
