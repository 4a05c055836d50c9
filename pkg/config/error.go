package config

import (
	"errors"
	"fmt"
)

// Error reports an invalid or missing configuration value. It is always
// raised at load or construction time, never during a call.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	if e == nil {
		return "config error"
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}
