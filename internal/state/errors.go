package state

import (
	"errors"
	"fmt"

	"github.com/Showrav193/Sportsworld/internal/domain/model"
)

var (
	// ErrNotReady is returned by mutations issued before Load completed.
	ErrNotReady = errors.New("synchronizer not ready")
	ErrLoading  = errors.New("synchronizer already loading")

	// Authentication failures.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBlocked            = errors.New("account blocked by an administrator")

	ErrUserExists      = fmt.Errorf("%w: user already exists", model.ErrValidation)
	ErrArticleNotFound = fmt.Errorf("%w: article not found", model.ErrValidation)
	ErrNotReplaceable  = fmt.Errorf("%w: collection does not accept a bulk replace", model.ErrValidation)

	// ErrWriteDropped marks a durable write that never reached a writer.
	ErrWriteDropped = errors.New("durable write dropped")
)
