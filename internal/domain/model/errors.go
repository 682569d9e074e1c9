package model

import (
	"errors"
	"fmt"
)

// ErrValidation marks malformed input that was rejected before any state change.
var ErrValidation = errors.New("validation failed")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
