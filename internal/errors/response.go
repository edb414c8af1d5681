package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess       = "success"
	StatusError         = "error"
	StatusMissingParams = "missing params"
)

// ErrorResponse is the envelope of every error body.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// RespondWithError writes an error body.
// statusCode: HTTP status
// errorCode: constant from codes.go
// message: human readable message
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Status:  StatusError,
		Message: message,
		Code:    errorCode,
	})
}

func Unauthenticated(c *gin.Context) {
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthenticated, "not authenticated")
}

// NotAuthorized is the role gate denial. It deliberately stays a 401.
func NotAuthorized(c *gin.Context) {
	RespondWithError(c, http.StatusUnauthorized, AuthzNotAuthorized, "not authorized")
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error, please try again later."
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// ValidationError carries per-field failures.
type ValidationError struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ValidationError{
		Status:  StatusError,
		Message: "Invalid request",
		Code:    ValidationInvalidInput,
		Fields:  fields,
	})
}

// RespondWithBindError converts a gin binding error into a validation response.
func RespondWithBindError(c *gin.Context, err error) {
	RespondWithValidationError(c, ValidationFields(err))
}
