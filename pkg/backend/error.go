package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TransportError wraps backend call failures with status metadata. It
// covers network failures, auth rejections, and malformed responses;
// ordinary "no result" replies are never transport errors.
type TransportError struct {
	Backend string
	Status  int
	Err     error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "backend transport error"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Backend, e.Err)
	}
	return fmt.Sprintf("%s: transport error (status=%d)", e.Backend, e.Status)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsTransport reports whether an error is a backend transport failure.
// Timeouts count: a timed-out adapter call degrades to a rejected outcome
// rather than aborting the turn.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var te *TransportError
	return errors.As(err, &te)
}
