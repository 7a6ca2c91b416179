package models

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicatePhone     = errors.New("participant already registered with this phone number")
	ErrDuplicateCoupon    = errors.New("coupon code already in use")
	ErrCouponExhausted    = errors.New("could not allocate a unique coupon code")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrNoParticipants     = errors.New("no participants registered")
	ErrSelectionFailed    = errors.New("winner selection failed")
	ErrUnknownCountryCode = errors.New("unknown country code")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError collects bad form input keyed by field name
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready to collect fields
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records a message for field, keeping the first message per field
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = message
}

// HasErrors reports whether any field failed
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
