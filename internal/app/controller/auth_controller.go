package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/service"
	apperrors "github.com/spf-popaccueil/popaccueil-backend/internal/errors"
	"github.com/spf-popaccueil/popaccueil-backend/internal/middleware"
)

const (
	msgInvalidCredentials = "Invalid email/password"
	msgSignupFailed       = "There was a problem creating the user, please try again later."
	msgInvalidReset       = "Invalid reset password"
)

type AuthController struct {
	authService          service.AuthService
	passwordResetService service.PasswordResetService
}

func NewAuthController(authService service.AuthService, passwordResetService service.PasswordResetService) *AuthController {
	return &AuthController{
		authService:          authService,
		passwordResetService: passwordResetService,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest flags are pointers so that an explicit false passes "required".
type SignupRequest struct {
	FirstName        string `json:"firstName" binding:"required"`
	LastName         string `json:"lastName" binding:"required"`
	PopAccueilNumber string `json:"popAccueilNumber" binding:"required"`
	IsVolunteer      *bool  `json:"isVolunteer" binding:"required"`
	IsAdmin          *bool  `json:"isAdmin" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,maxbytes=72"`
}

type ForgottenPasswordRequest struct {
	ForgottenPassword *struct {
		Email string `json:"email" binding:"required"`
	} `json:"forgottenPassword" binding:"required"`
}

type ResetPasswordRequest struct {
	ResetPassword *struct {
		ResetPasswordToken string `json:"resetPasswordToken" binding:"required"`
		Password           string `json:"password" binding:"required,maxbytes=72"`
	} `json:"resetPassword" binding:"required"`
}

// Login exchanges credentials for a bearer token
// POST /login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithBindError(c, err)
		return
	}

	token, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.BadRequest(c, apperrors.AuthInvalidCredentials, msgInvalidCredentials)
			return
		}
		log.Error("Login failed", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": apperrors.StatusSuccess,
		"data":   token,
	})
}

// Signup creates a member and opens a session for it (volunteers only)
// POST /signup
func (ctrl *AuthController) Signup(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid signup request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithBindError(c, err)
		return
	}

	user, token, err := ctrl.authService.Signup(service.SignupInput{
		Email:            req.Email,
		Password:         req.Password,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		PopAccueilNumber: req.PopAccueilNumber,
		IsVolunteer:      *req.IsVolunteer,
		IsAdmin:          *req.IsAdmin,
	})
	if err != nil {
		log.Warn("Signup failed", map[string]interface{}{
			"email": req.Email,
			"error": err.Error(),
		})
		if errors.Is(err, service.ErrSignupFailed) {
			apperrors.BadRequest(c, apperrors.AuthSignupFailed, msgSignupFailed)
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	createdBy, _ := middleware.GetUserID(c)
	log.Info("Member signed up", map[string]interface{}{
		"user_id":    user.ID,
		"created_by": createdBy,
	})

	c.JSON(http.StatusCreated, gin.H{
		"status": apperrors.StatusSuccess,
		"data":   token,
	})
}

// WhoAmI returns the authenticated user
// GET /whoami
func (ctrl *AuthController) WhoAmI(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apperrors.Unauthenticated(c)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ForgottenPassword mails a reset link. The answer is the same whether or not
// the email belongs to a member.
// POST /forgotten-password
func (ctrl *AuthController) ForgottenPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ForgottenPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": apperrors.StatusMissingParams,
			"fields": apperrors.ValidationFields(err),
		})
		return
	}

	if err := ctrl.passwordResetService.RequestReset(c.Request.Context(), req.ForgottenPassword.Email); err != nil {
		log.Error("Password reset request failed", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": apperrors.StatusSuccess,
	})
}

// ResetPassword consumes a reset token and logs the member in
// POST /reset-password
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid reset password request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithBindError(c, err)
		return
	}

	token, err := ctrl.passwordResetService.ResetPassword(req.ResetPassword.ResetPasswordToken, req.ResetPassword.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			apperrors.BadRequest(c, apperrors.AuthResetTokenInvalid, msgInvalidReset)
			return
		}
		log.Error("Password reset failed", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": apperrors.StatusSuccess,
		"data":   token,
	})
}
