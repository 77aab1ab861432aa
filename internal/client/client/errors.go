package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vehiclereg/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrServer       = errors.New("server error")
)

// ValidationError is returned when the backend refuses a payload. Field is
// empty when the backend did not name one.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// Unwrap lets callers match any validation failure with common.ErrValidation.
func (e *ValidationError) Unwrap() error { return common.ErrValidation }

// StatusError carries an unexpected HTTP status and the body message.
type StatusError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v: status %d", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%v: status %d: %s", e.kind, e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error { return e.kind }
