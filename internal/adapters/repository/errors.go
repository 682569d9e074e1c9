package repository

import (
	"errors"
	"fmt"

	"github.com/Showrav193/Sportsworld/internal/domain/model"
)

// Sentinel kinds for store errors.
var (
	// ErrIO wraps every failure of the underlying medium.
	ErrIO                = errors.New("store io failure")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrNotArray          = fmt.Errorf("%w: collection payload must be a JSON array", model.ErrValidation)
	ErrClosed            = errors.New("store closed")

	// ErrBlobNotFound is returned by a Blob that holds no document yet.
	ErrBlobNotFound = errors.New("blob not found")
)

func ioErr(op string, c model.Collection, err error) error {
	if c == "" {
		return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
	}
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, c, err)
}
