package service

import (
	"errors"
	"fmt"

	"github.com/spf-popaccueil/popaccueil-backend/internal/app/model"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/repository"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/logger"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/util"
	"gorm.io/gorm"
)

// TokenIssuer creates login sessions.
type TokenIssuer interface {
	IssueSessionToken(user *model.User) (*model.SessionToken, error)
}

type tokenIssuer struct {
	tokenRepo repository.TokenRepository
	generate  func() (string, error)
}

func NewTokenIssuer(tokenRepo repository.TokenRepository) TokenIssuer {
	return &tokenIssuer{tokenRepo: tokenRepo, generate: util.GenerateSessionToken}
}

// IssueSessionToken persists and returns a new bearer token for user. Earlier
// tokens of the same user stay valid.
func (i *tokenIssuer) IssueSessionToken(user *model.User) (*model.SessionToken, error) {
	if user == nil || user.ID == 0 {
		return nil, errors.New("cannot issue a session token for an unsaved user")
	}

	// A collision on 256 random bits means the generator is broken, but one
	// retry keeps a unique index violation from surfacing as a login failure.
	for attempt := 0; attempt < 2; attempt++ {
		value, err := i.generate()
		if err != nil {
			return nil, fmt.Errorf("generate session token: %w", err)
		}

		token := &model.SessionToken{
			UserID: user.ID,
			Token:  value,
			Type:   model.TokenTypeBearer,
		}
		err = i.tokenRepo.Create(token)
		if err == nil {
			logger.Debug("Session token issued", map[string]interface{}{
				"user_id": user.ID,
			})
			return token, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("persist session token: %w", err)
		}
	}
	return nil, errors.New("persist session token: repeated collision")
}
