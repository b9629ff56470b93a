package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeValidation   = "validation_failed"
	ErrCodePersistence  = "persistence_failed"
	ErrCodeBadRequest   = "bad_request"
	ErrCodeRateLimited  = "rate_limited"
	ErrCodeUnauthorized = "unauthorized"
)

var (
	ErrEmptyContent    = errors.New("message content is empty")
	ErrContentTooLong  = errors.New("message content is too long")
	ErrMissingReceiver = errors.New("receiver is required")
	ErrMissingPeer     = errors.New("peer user id is required")
	ErrNotStored       = errors.New("message could not be saved, please try again")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

// NewCoreError builds a CoreError.
func NewCoreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
