package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/UsamaZuberi/portfolio-v2/internal/contact"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxContactBody bounds the contact request body.
const maxContactBody = 64 << 10

// Contact response messages
const (
	ContactSuccessMessage  = "Message sent successfully"
	ContactInvalidBody     = "Invalid request body"
	ContactMissingFields   = "All fields are required"
	ContactInvalidEmail    = "Invalid email address"
	ContactValidationError = "Validation failed"
	ContactInternalError   = "Internal server error"
)

// ContactResponse is the body of an accepted POST /api/contact.
type ContactResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	ID      uuid.UUID `json:"id"`
}

// ContactErrorResponse is the body of a rejected POST /api/contact.
// Fields maps input names to messages.
type ContactErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

// handleContact validates and records a contact form submission.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var form contact.Form
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContactBody))
	if err := dec.Decode(&form); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, ContactErrorResponse{
			Error:  ContactInvalidBody,
			Fields: map[string]string{},
		})
		return
	}

	receipt, err := s.contact.Submit(r.Context(), form, contact.Meta{
		RemoteAddr: clientID(r),
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		var verr *contact.ValidationError
		if errors.As(err, &verr) {
			s.jsonResponse(w, HTTPStatus(err), ContactErrorResponse{
				Error:  contactErrorMessage(verr),
				Fields: verr.Fields,
			})
			return
		}

		s.logger.Error("failed to process contact form", zap.Error(err))
		s.jsonResponse(w, HTTPStatus(err), map[string]any{
			"success": false,
			"error":   ContactInternalError,
		})
		return
	}

	s.jsonResponse(w, http.StatusOK, ContactResponse{
		Success: true,
		Message: ContactSuccessMessage,
		ID:      receipt.ID,
	})
}

// contactErrorMessage picks the summary line: missing fields first, then a bad email.
func contactErrorMessage(verr *contact.ValidationError) string {
	switch {
	case verr.HasRule(contact.RuleRequired):
		return ContactMissingFields
	case verr.Rules["email"] == contact.RuleEmail:
		return ContactInvalidEmail
	default:
		return ContactValidationError
	}
}
