package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/UsamaZuberi/portfolio-v2/internal/contact"
	"github.com/UsamaZuberi/portfolio-v2/internal/fetch"
)

// ErrNotFound indicates a named resource does not exist.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates request validation failure.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnavailable indicates a dependency is not configured.
type ErrUnavailable struct {
	What string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not configured", e.What)
}

// writeError responds with the status HTTPStatus assigns to err.
// An empty message uses the error text.
func (s *Server) writeError(w http.ResponseWriter, err error, message string) {
	if message == "" {
		message = err.Error()
	}
	s.errorResponse(w, HTTPStatus(err), message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var (
		notFound    *ErrNotFound
		validation  *ErrValidation
		unavailable *ErrUnavailable
		contactErr  *contact.ValidationError
		fetchErr    *fetch.Error
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &contactErr):
		return http.StatusBadRequest
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
