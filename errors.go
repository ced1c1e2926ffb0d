package impactful

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/abdondismas0-hub/impactful/media"
)

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalid marks rejected input such as an empty title.
	ErrInvalid = errors.New("invalid input")
	// ErrStorage is returned when an upload could not be stored. It wraps
	// media.ErrStore so either sentinel matches.
	ErrStorage = fmt.Errorf("storage write failed: %w", media.ErrStore)
	// ErrInvalidCredentials is the single login failure, whatever the cause.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, media.ErrStore):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
