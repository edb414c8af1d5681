package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf-popaccueil/popaccueil-backend/internal/app/model"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/repository"
	"github.com/spf-popaccueil/popaccueil-backend/internal/mailer"
	"github.com/spf-popaccueil/popaccueil-backend/internal/metrics"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrInvalidResetToken = errors.New("invalid reset token")

// mailTimeout bounds how long a reset request waits on the mail dispatcher.
const mailTimeout = 10 * time.Second

// ResetTokenCodec is implemented by util.ResetTokenCodec.
type ResetTokenCodec interface {
	Issue(userID uint) (string, time.Time, error)
	Verify(token string) (uint, error)
}

type PasswordResetService interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(token, newPassword string) (*model.SessionToken, error)
}

type passwordResetService struct {
	userRepo repository.UserRepository
	codec    ResetTokenCodec
	issuer   TokenIssuer
	mail     mailer.Dispatcher
}

func NewPasswordResetService(
	userRepo repository.UserRepository,
	codec ResetTokenCodec,
	issuer TokenIssuer,
	mail mailer.Dispatcher,
) PasswordResetService {
	return &passwordResetService{
		userRepo: userRepo,
		codec:    codec,
		issuer:   issuer,
		mail:     mail,
	}
}

// RequestReset stores a fresh reset token on the user and mails it. It returns
// nil for unknown emails without touching any row, and a mail failure never
// fails the request.
func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	email = model.NormalizeEmail(email)
	logger.Info("Processing password reset request", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.PasswordResetRequestsTotal.WithLabelValues("unknown_email").Inc()
			logger.Warn("Password reset requested for non-existent email", map[string]interface{}{
				"email": email,
			})
			return nil
		}
		metrics.PasswordResetRequestsTotal.WithLabelValues("error").Inc()
		return err
	}

	token, expiresAt, err := s.codec.Issue(user.ID)
	if err != nil {
		metrics.PasswordResetRequestsTotal.WithLabelValues("error").Inc()
		logger.Error("Failed to issue reset token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	// Overwrites any previous token, which stops verifying against the stored value.
	user.SetResetToken(token, expiresAt)
	if err := s.userRepo.Update(user); err != nil {
		metrics.PasswordResetRequestsTotal.WithLabelValues("error").Inc()
		return err
	}

	mailCtx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()
	err = s.mail.SendPasswordReset(mailCtx, mailer.PasswordResetMail{
		To:        user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Token:     token,
	})
	if err != nil {
		logger.Error("Failed to dispatch password reset mail", err, map[string]interface{}{
			"user_id": user.ID,
		})
	}

	metrics.PasswordResetRequestsTotal.WithLabelValues("issued").Inc()
	logger.Info("Password reset token issued", map[string]interface{}{
		"user_id":    user.ID,
		"expires_at": expiresAt,
	})
	return nil
}

// ResetPassword consumes a reset token, sets the new password and opens a
// session. Every rejection is ErrInvalidResetToken.
func (s *passwordResetService) ResetPassword(token, newPassword string) (*model.SessionToken, error) {
	userID, err := s.codec.Verify(token)
	if err != nil {
		return nil, s.rejectReset("token verification failed", err, 0)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.rejectReset("token user not found", err, userID)
		}
		metrics.PasswordResetsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	// Comparison against the stored value gives single use and supersession.
	if !user.ResetTokenMatches(token) {
		return nil, s.rejectReset("token does not match stored value", nil, userID)
	}

	if err := user.SetPassword(newPassword); err != nil {
		return nil, s.rejectReset("new password rejected", err, userID)
	}
	user.ClearResetToken()

	if err := s.userRepo.Update(user); err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("save new password: %w", err)
	}

	session, err := s.issuer.IssueSessionToken(user)
	if err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.PasswordResetsTotal.WithLabelValues("success").Inc()
	metrics.SessionTokensIssuedTotal.WithLabelValues("reset").Inc()
	logger.Info("Password reset successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return session, nil
}

func (s *passwordResetService) rejectReset(reason string, cause error, userID uint) error {
	metrics.PasswordResetsTotal.WithLabelValues("rejected").Inc()
	fields := map[string]interface{}{"reason": reason}
	if userID != 0 {
		fields["user_id"] = userID
	}
	if cause != nil {
		fields["cause"] = cause.Error()
	}
	logger.Warn("Password reset rejected", fields)
	return ErrInvalidResetToken
}
