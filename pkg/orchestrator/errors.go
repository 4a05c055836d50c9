package orchestrator

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError rejects an utterance before any backend call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "invalid utterance"
	}
	return "invalid utterance: " + e.Reason
}

// IsValidation reports whether err is an utterance validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ExhaustedError aggregates a turn where every adapter in the chain failed
// at the transport level and the fallback failed too. It is the only
// non-validation error Handle surfaces.
type ExhaustedError struct {
	AdapterErrs []error
	FallbackErr error
}

func (e *ExhaustedError) Error() string {
	var parts []string
	for _, err := range e.AdapterErrs {
		parts = append(parts, err.Error())
	}
	if e.FallbackErr != nil {
		parts = append(parts, fmt.Sprintf("fallback: %v", e.FallbackErr))
	}
	return "all answering paths failed: " + strings.Join(parts, "; ")
}

func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, 0, len(e.AdapterErrs)+1)
	errs = append(errs, e.AdapterErrs...)
	if e.FallbackErr != nil {
		errs = append(errs, e.FallbackErr)
	}
	return errs
}
