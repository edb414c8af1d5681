package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a message safe to show to clients.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps persistence errors to a code and a client-safe message.
// Driver messages never leak into the result.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: getDefaultErrorMessage(context)}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: getNotFoundMessage(context)}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Resource already exists"}
	}

	errLower := strings.ToLower(err.Error())

	// postgres 23505, sqlite "UNIQUE constraint failed"
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}

	// postgres 23503, sqlite "FOREIGN KEY constraint failed"
	if strings.Contains(errLower, "foreign key constraint") {
		if strings.Contains(errLower, "still referenced") {
			return ErrorInfo{Code: ResourceConflict, Message: "Resource is still referenced and cannot be deleted"}
		}
		return ErrorInfo{Code: ResourceNotFound, Message: "Referenced resource does not exist"}
	}

	// postgres 23502, sqlite "NOT NULL constraint failed"
	if strings.Contains(errLower, "not-null constraint") || strings.Contains(errLower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	if strings.Contains(errLower, "connection refused") || strings.Contains(errLower, "timeout") {
		return ErrorInfo{Code: InternalDatabase, Message: "Database unavailable, please try again later."}
	}

	return ErrorInfo{Code: InternalServerError, Message: getDefaultErrorMessage(context)}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Email already in use"}
	case strings.Contains(errLower, "basic_service_subscribers"):
		return ErrorInfo{Code: BasicServiceAlreadyJoined, Message: "Already subscribed to this basic service"}
	case strings.Contains(errLower, "tokens"):
		return ErrorInfo{Code: ResourceConflict, Message: "Token collision, please retry"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "Resource already exists"}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "basic service"):
		return "Basic service not found"
	case strings.Contains(contextLower, "event"):
		return "Event not found"
	case strings.Contains(contextLower, "post"):
		return "Post not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	}
	return "Resource not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"):
		return "Could not create the resource, please try again later."
	case strings.Contains(contextLower, "update"):
		return "Could not update the resource, please try again later."
	case strings.Contains(contextLower, "delete"):
		return "Could not delete the resource, please try again later."
	}
	return "Internal server error, please try again later."
}

// ParseAndRespond parses err and writes the mapped error body.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	info := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Status:  StatusError,
		Message: info.Message,
		Code:    info.Code,
	})
}
