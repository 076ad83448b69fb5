package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/quocanhngo/spark/internal/ratelimit"
)

// Validation errors
var (
	ErrSelfAction         = errors.New("cannot act on self")
	ErrInvalidDirection   = errors.New("invalid swipe direction")
	ErrMessageLength      = errors.New("message must be between 1 and 1000 characters")
	ErrInvalidPreference  = errors.New("invalid preference")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidBirthdate   = errors.New("birthdate must be YYYY-MM-DD and at least 18 years ago")
	ErrTooManyPhotos      = errors.New("photo limit reached")
	ErrInvalidAction      = errors.New("invalid action")
	ErrInvalidGender      = errors.New("invalid gender")
	ErrNotConfirmed       = errors.New(`confirmation must be "DELETE_ACCOUNT"`)
	ErrWrongPassword      = errors.New("wrong password")
)

// Precondition errors
var (
	ErrNoPreference = errors.New("preference not set")
	ErrNoLocation   = errors.New("location not set")
)

// Not found errors
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrTargetNotFound = errors.New("target not found")
	ErrMatchNotFound  = errors.New("match not found or access denied")
	ErrPhotoNotFound  = errors.New("photo not found")
	ErrReportNotFound = errors.New("report not found")
)

// Conflict errors
var (
	ErrAlreadyDecided     = errors.New("already decided")
	ErrAlreadyBlocked     = errors.New("already blocked")
	ErrNotBlocked         = errors.New("not blocked")
	ErrAlreadyReported    = errors.New("already reported")
	ErrReportClosed       = errors.New("report already handled")
	ErrEmailTaken         = errors.New("email already registered")
	ErrStorageUnavailable = errors.New("photo storage unavailable")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrBanned             = errors.New("account is banned")
)

// RateLimitedError is returned when a user exhausted the budget of an action kind
type RateLimitedError struct {
	Kind      ratelimit.Kind
	Remaining int64
	ResetAt   time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, resets at %s", e.Kind, e.ResetAt.UTC().Format(time.RFC3339))
}

// RetryAfter is how long the caller should wait from now
func (e *RateLimitedError) RetryAfter(now time.Time) time.Duration {
	return max(e.ResetAt.Sub(now), 0)
}
