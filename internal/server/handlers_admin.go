package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/UsamaZuberi/portfolio-v2/internal/portfolio"
	"github.com/UsamaZuberi/portfolio-v2/internal/server/middleware"
	"go.uber.org/zap"
)

// RevalidateResponse is the body of POST /api/admin/revalidate.
type RevalidateResponse struct {
	Revalidated bool             `json:"revalidated"`
	Source      portfolio.Source `json:"source"`
	Available   bool             `json:"available"`
	At          time.Time        `json:"at"`
}

// handleRevalidate drops cached remote data and image listings and reloads the document.
func (s *Server) handleRevalidate(w http.ResponseWriter, r *http.Request) {
	subject, _ := middleware.GetSubject(r)

	result, err := s.data.Revalidate(r.Context())
	if err != nil {
		s.logger.Error("revalidation failed", zap.String("subject", subject), zap.Error(err))
		s.writeError(w, err, "Failed to revalidate portfolio data")
		return
	}

	if s.images.Configured() {
		if err := s.images.Invalidate(r.Context()); err != nil {
			s.logger.Warn("failed to drop cached image listing", zap.Error(err))
		}
	}

	s.logger.Info("portfolio data revalidated",
		zap.String("subject", subject),
		zap.String("source", string(result.Source)),
	)
	s.jsonResponse(w, http.StatusOK, RevalidateResponse{
		Revalidated: true,
		Source:      result.Source,
		Available:   result.Data != nil,
		At:          s.now().UTC(),
	})
}

// handleListContactMessages pages through archived contact submissions, newest first.
func (s *Server) handleListContactMessages(w http.ResponseWriter, r *http.Request) {
	if s.messages == nil {
		s.writeError(w, &ErrUnavailable{What: "contact message archive"}, "")
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, err, "")
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		s.writeError(w, err, "")
		return
	}

	page, err := s.messages.ListContactMessages(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("failed to list contact messages", zap.Error(err))
		s.writeError(w, err, "Failed to list contact messages")
		return
	}
	s.jsonResponse(w, http.StatusOK, page)
}

// queryInt parses an optional non-negative integer query parameter. Missing means 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &ErrValidation{Field: name, Message: "must be a non-negative integer"}
	}
	return n, nil
}
