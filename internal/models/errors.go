package models

import (
	"errors"
	"fmt"
)

var (
	// Lookup errors
	ErrPeriodNotFound      = errors.New("settlement period not found")
	ErrReceiptNotFound     = errors.New("receipt not found")
	ErrParticipantNotFound = errors.New("participant not found in settlement period")

	// State errors
	ErrPeriodSettled    = errors.New("settlement period is already settled")
	ErrPeriodNotSettled = errors.New("settlement period is not settled yet")
)

// ValidationError reports a rejected receipt draft or schedule config.
// It is returned synchronously at the ledger boundary and never persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
