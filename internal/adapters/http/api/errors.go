package api

import (
	"errors"
	"net/http"

	"github.com/Showrav193/Sportsworld/internal/adapters/repository"
	"github.com/Showrav193/Sportsworld/internal/domain/model"
	"github.com/Showrav193/Sportsworld/internal/state"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrUnavailable = errors.New("service unavailable")
	ErrNoSuchMatch = errors.New("match not found")
)

// Error codes carried in the error body.
const (
	codeBadRequest        = "bad_request"
	codeUnknownCollection = "unknown_collection"
	codeNotFound          = "not_found"
	codeUnauthorized      = "unauthorized"
	codeForbidden         = "forbidden"
	codeNotReady          = "not_ready"
	codeIO                = "io_error"
	codeInternal          = "internal_error"
)

// classify maps domain errors onto a status and an error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrUnknownCollection):
		return http.StatusNotFound, codeUnknownCollection
	case errors.Is(err, state.ErrArticleNotFound), errors.Is(err, ErrNoSuchMatch):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, ErrBadRequest), errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, state.ErrInvalidCredentials):
		return http.StatusUnauthorized, codeUnauthorized
	case errors.Is(err, state.ErrBlocked):
		return http.StatusForbidden, codeForbidden
	case errors.Is(err, state.ErrNotReady), errors.Is(err, state.ErrLoading), errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, codeNotReady
	case errors.Is(err, repository.ErrIO), errors.Is(err, repository.ErrClosed):
		return http.StatusInternalServerError, codeIO
	default:
		return http.StatusInternalServerError, codeInternal
	}
}
