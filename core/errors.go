package core

import (
	"errors"
	"fmt"
)

// Authentication Related Errors
var (
	// User errors
	ErrDuplicateEmail     = errors.New("email already registered")  // 409 Conflict
	ErrUserNotFound       = errors.New("user not found")            // 404 Not Found
	ErrInvalidCredentials = errors.New("invalid email or password") // 401 Unauthorized
	ErrNotAuthenticated   = errors.New("login required")            // 401 Unauthorized
)

// Session errors
var (
	ErrMissingAuthHeader = errors.New("missing authorization header") // 401
	ErrInvalidToken      = errors.New("invalid session token")        // 401
	ErrSessionNotFound   = errors.New("session not found")            // 401
	ErrSessionExpired    = errors.New("session expired")              // 401
	ErrCacheNotFound     = errors.New("session not found in cache")
)

// Validation errors (client input)
var (
	ErrInvalidAuthHeader = errors.New("invalid authorization format, expected 'Bearer <token>'") // 401
	ErrEmailRequired     = errors.New("email is required")                                       // 400
	ErrPasswordRequired  = errors.New("password is required")                                    // 400
	ErrPasswordTooShort  = errors.New("password is too short")                                   // 400
	ErrPasswordTooLong   = errors.New("password is too long")                                    // 400
	ErrInvalidEmail      = errors.New("invalid email format")                                    // 400
)

// Ledger errors
var (
	ErrBelowMinimum         = fmt.Errorf("minimum %d coins required for redemption", MinRedeem) // 422
	ErrInsufficientBalance  = errors.New("insufficient eco-coins")                               // 422
	ErrMissingDestination   = errors.New("payout destination is required")                       // 400
	ErrInvalidPayoutMethod  = errors.New("unsupported payout method")                            // 400
	ErrRedemptionInProgress = errors.New("a redemption is already being processed")              // 429
)

// Task errors
var (
	ErrTitleRequired    = errors.New("task title is required")                          // 400
	ErrInvalidCategory  = errors.New("unknown task category")                           // 400
	ErrNotEnvironmental = errors.New("tasks must be related to environmental actions") // 422
)

// Feedback errors
var (
	ErrRatingRequired      = errors.New("rating must be between 1 and 5") // 400
	ErrFeedbackRequired    = errors.New("feedback message is required")   // 400
	ErrInvalidFeedbackType = errors.New("unknown feedback type")          // 400
)

// Assistant errors
var (
	ErrEmptyConversation = errors.New("conversation must contain at least one message") // 400
	ErrInvalidChatRole   = errors.New("message role must be user or assistant")         // 400
)

// Config errors (server-side configuration)
var (
	ErrDBAdapterRequired   = errors.New("database adapter is required") // 500
	ErrHTTPAdapterRequired = errors.New("adapter is required")          // 500
)

// GatewayError is returned by the assistant relay when the upstream
// completion endpoint refuses or fails a request.
type GatewayError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error %d: %s", e.Status, e.Message)
}
