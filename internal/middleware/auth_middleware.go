package middleware

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/model"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/service"
	"github.com/spf-popaccueil/popaccueil-backend/internal/errors"
	"github.com/spf-popaccueil/popaccueil-backend/internal/metrics"
)

// Context keys for user information
const (
	UserIDKey = "user_id"
	UserKey   = "current_user"
)

// SessionResolver maps a bearer token to the user owning it.
type SessionResolver interface {
	ResolveSession(token string) (*model.User, error)
}

type AuthMiddleware struct {
	sessions SessionResolver
}

func NewAuthMiddleware(sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
	}
}

// Authenticate requires a valid bearer token. On failure the chain is aborted
// with 401 before any handler runs.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, reason := bearerToken(c.GetHeader("Authorization"))
		if reason != "" {
			metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
			log.Warn("Authentication failed", map[string]interface{}{
				"reason": reason,
			})
			errors.Unauthenticated(c)
			c.Abort()
			return
		}

		user, err := m.sessions.ResolveSession(token)
		if err != nil {
			if stderrors.Is(err, service.ErrUnauthenticated) {
				metrics.AuthFailuresTotal.WithLabelValues("unknown_token").Inc()
				log.Warn("Authentication failed", map[string]interface{}{
					"reason": "unknown_token",
				})
				errors.Unauthenticated(c)
			} else {
				log.Error("Failed to resolve session token", err)
				errors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UserKey, user)
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header value. A
// non-empty reason means the header is unusable.
func bearerToken(header string) (token string, reason string) {
	if header == "" {
		return "", "missing_header"
	}
	scheme, value, ok := strings.Cut(strings.TrimSpace(header), " ")
	value = strings.TrimSpace(value)
	if !ok || !strings.EqualFold(scheme, "Bearer") || value == "" || strings.Contains(value, " ") {
		return "", "malformed_header"
	}
	return value, ""
}

// RequireCapabilities admits the request only if the authenticated user holds
// every listed capability. Denial is a 401 "not authorized". It must run after
// Authenticate; a missing user is a wiring bug and panics.
func (m *AuthMiddleware) RequireCapabilities(caps ...model.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			panic(fmt.Sprintf("RequireCapabilities used without Authenticate on %s %s", c.Request.Method, c.FullPath()))
		}

		for _, capability := range caps {
			if !user.HasCapability(capability) {
				metrics.AuthFailuresTotal.WithLabelValues("not_authorized").Inc()
				GetLoggerFromContext(c).Warn("Insufficient capabilities", map[string]interface{}{
					"user_id":  user.ID,
					"required": caps,
					"missing":  capability,
				})
				errors.NotAuthorized(c)
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// RequireVolunteer is RequireCapabilities(CapabilityVolunteer).
func (m *AuthMiddleware) RequireVolunteer() gin.HandlerFunc {
	return m.RequireCapabilities(model.CapabilityVolunteer)
}

// GetCurrentUser returns the user stored by Authenticate.
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}

// GetUserID retrieves user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}
