package errors

// Error code constants returned in the "code" field of error responses.
// Format: CATEGORY_SPECIFIC_DETAIL

const (
	// Authentication
	AuthUnauthenticated    = "AUTH_UNAUTHENTICATED"     // missing or unknown bearer token
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthResetTokenInvalid  = "AUTH_RESET_TOKEN_INVALID" // reset token bad, expired, or superseded
	AuthSignupFailed       = "AUTH_SIGNUP_FAILED"       // user could not be persisted

	// Authorization
	AuthzNotAuthorized = "AUTHZ_NOT_AUTHORIZED" // missing volunteer/admin capability

	// Validation
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// Resources
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// Basic services
	BasicServiceClosed        = "BASIC_SERVICE_CLOSED"
	BasicServiceFull          = "BASIC_SERVICE_FULL"
	BasicServiceAlreadyJoined = "BASIC_SERVICE_ALREADY_SUBSCRIBED"

	// Server
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalDatabase    = "INTERNAL_DATABASE_ERROR"
)
