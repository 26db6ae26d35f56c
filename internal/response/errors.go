package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrAdminAccessOnly    ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation      ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload  ErrCode = "INVALID_PAYLOAD"
	ErrInvalidQuestion ErrCode = "INVALID_QUESTION"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound  ErrCode = "NOT_FOUND"
	ErrRoomTaken ErrCode = "ROOM_TAKEN"

	// ─── Room timing ───────────────────────────────────────────────────
	ErrRoomNotOpen ErrCode = "ROOM_NOT_OPEN"
	ErrRoomClosed  ErrCode = "ROOM_CLOSED"

	// ─── Submissions ───────────────────────────────────────────────────
	ErrDuplicateRegistration ErrCode = "DUPLICATE_REGISTRATION"
	ErrDuplicateSubmission   ErrCode = "DUPLICATE_SUBMISSION"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "The request payload is invalid."
	case ErrInvalidQuestion:
		return "One or more questions are invalid."
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrRoomTaken:
		return "A test with this room number already exists."
	case ErrRoomNotOpen:
		return "The test has not started yet."
	case ErrRoomClosed:
		return "The test has ended, including its grace period."
	case ErrDuplicateRegistration:
		return "This registration number has already submitted the test."
	case ErrDuplicateSubmission:
		return "A submission already exists for this registration number."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
