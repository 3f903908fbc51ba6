package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidJSON     = 1001
	ErrCodeRequestTooLarge = 1002
	ErrCodeInvalidQuery    = 1003
	ErrCodeInvalidID       = 1004
	ErrCodeInvalidActor    = 1005

	// Domain state (2xxx)
	ErrCodeNotFound         = 2001
	ErrCodeRouteNotFound    = 2002
	ErrCodeMethodNotAllowed = 2003

	// Internal/system (4xxx)
	ErrCodeInternal     = 4001
	ErrCodeStoreFailure = 4002
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 404:
		return ErrCodeNotFound
	case 405:
		return ErrCodeMethodNotAllowed
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
