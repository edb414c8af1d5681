package service

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf-popaccueil/popaccueil-backend/internal/app/model"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/repository"
	"github.com/spf-popaccueil/popaccueil-backend/internal/metrics"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/logger"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSignupFailed       = errors.New("signup failed")
	ErrUnauthenticated    = errors.New("unknown session token")
	ErrUserNotFound       = errors.New("user not found")
)

// SignupInput is a new member as entered by a volunteer.
type SignupInput struct {
	Email            string
	Password         string
	FirstName        string
	LastName         string
	PopAccueilNumber string
	IsVolunteer      bool
	IsAdmin          bool
}

type AuthService interface {
	Login(email, password string) (*model.SessionToken, error)
	Signup(input SignupInput) (*model.User, *model.SessionToken, error)
	ResolveSession(token string) (*model.User, error)
	GetUserByID(id uint) (*model.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	issuer    TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	issuer TokenIssuer,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		issuer:    issuer,
	}
}

// Login exchanges credentials for a new session token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *authService) Login(email, password string) (*model.SessionToken, error) {
	email = model.NormalizeEmail(email)
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.burnPasswordCheck(password)
			metrics.LoginAttemptsTotal.WithLabelValues("unknown_email").Inc()
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, ErrInvalidCredentials
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if !user.CheckPassword(password) {
		metrics.LoginAttemptsTotal.WithLabelValues("bad_password").Inc()
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.IssueSessionToken(user)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		logger.Error("Failed to issue session token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	metrics.SessionTokensIssuedTotal.WithLabelValues("login").Inc()
	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return token, nil
}

// burnPasswordCheck spends the same bcrypt work as a real comparison so the
// unknown email path does not answer faster.
func (s *authService) burnPasswordCheck(password string) {
	s.dummyOnce.Do(func() {
		hash, err := util.HashPassword("popaccueil-timing-equalizer")
		if err != nil {
			logger.Error("Failed to prepare dummy hash", err)
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		util.VerifyPassword(s.dummyHash, password)
	}
}

// Signup creates a member and opens a session for it. Any persistence failure,
// duplicate email included, is reported as ErrSignupFailed.
func (s *authService) Signup(input SignupInput) (*model.User, *model.SessionToken, error) {
	email := model.NormalizeEmail(input.Email)
	logger.Info("Attempting user signup", map[string]interface{}{
		"email": email,
	})

	user := &model.User{
		Email:            email,
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		PopAccueilNumber: input.PopAccueilNumber,
		IsVolunteer:      input.IsVolunteer,
		IsAdmin:          input.IsAdmin,
	}
	if err := user.SetPassword(input.Password); err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, fmt.Errorf("%w: %v", ErrSignupFailed, err)
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSignupFailed, err)
	}

	token, err := s.issuer.IssueSessionToken(user)
	if err != nil {
		logger.Error("Failed to issue session token after signup", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, fmt.Errorf("%w: %v", ErrSignupFailed, err)
	}

	metrics.SessionTokensIssuedTotal.WithLabelValues("signup").Inc()
	logger.Info("User signed up successfully", map[string]interface{}{
		"user_id":      user.ID,
		"is_volunteer": user.IsVolunteer,
		"is_admin":     user.IsAdmin,
	})
	return user, token, nil
}

// ResolveSession maps a bearer token to its user.
func (s *authService) ResolveSession(token string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	st, err := s.tokenRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return st.User, nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
