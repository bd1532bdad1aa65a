package server

import (
	"fmt"
	"net/http"

	"github.com/UsamaZuberi/portfolio-v2/internal/portfolio"
	"github.com/UsamaZuberi/portfolio-v2/internal/timeline"
	"github.com/UsamaZuberi/portfolio-v2/internal/types"
	"go.uber.org/zap"
)

// dataCacheControl lets a CDN serve the document for a minute and stale for five.
const dataCacheControl = "s-maxage=60, stale-while-revalidate=300"

// DataUnavailableMessage is returned when no document can be served.
const DataUnavailableMessage = "Portfolio data is not available yet."

// DataResponse is the body of GET /api/portfolio-data.
// Sections lists the page sections in render order.
type DataResponse struct {
	Data     *types.Document  `json:"data"`
	Source   portfolio.Source `json:"source"`
	Sections []types.Section  `json:"sections"`
}

// SectionResponse is the body of GET /api/portfolio-data/{section}.
type SectionResponse struct {
	Section types.Section    `json:"section"`
	Data    any              `json:"data"`
	Source  portfolio.Source `json:"source"`
}

// TimelineResponse is the body of GET /api/timeline.
type TimelineResponse struct {
	Filter timeline.Filter `json:"filter"`
	Items  []timeline.Item `json:"items"`
	Count  int             `json:"count"`
}

// loadDocument resolves the document, writing the failure response when none is available.
func (s *Server) loadDocument(w http.ResponseWriter, r *http.Request) (portfolio.Result, bool) {
	result := s.data.Load(r.Context())
	if result.Data != nil {
		return result, true
	}

	status := http.StatusServiceUnavailable
	if result.Source == portfolio.SourceError {
		status = http.StatusInternalServerError
	}
	s.jsonResponse(w, status, map[string]any{
		"error":  DataUnavailableMessage,
		"source": result.Source,
	})
	return result, false
}

// handlePortfolioData returns the full data document.
func (s *Server) handlePortfolioData(w http.ResponseWriter, r *http.Request) {
	result, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", dataCacheControl)
	s.jsonResponse(w, http.StatusOK, DataResponse{
		Data:     result.Data,
		Source:   result.Source,
		Sections: types.SectionOrder,
	})
}

// handlePortfolioSection returns one slice of the data document.
func (s *Server) handlePortfolioSection(w http.ResponseWriter, r *http.Request) {
	section := types.Section(r.PathValue("section"))

	result, ok := s.loadDocument(w, r)
	if !ok {
		return
	}

	data, known := result.Data.SectionData(section)
	if !known {
		s.writeError(w, &ErrNotFound{Resource: "section", ID: string(section)}, fmt.Sprintf("Unknown section: %s", section))
		return
	}

	w.Header().Set("Cache-Control", dataCacheControl)
	s.jsonResponse(w, http.StatusOK, SectionResponse{Section: section, Data: data, Source: result.Source})
}

// handleTimeline returns education and experience merged and sorted newest first.
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	filter, err := timeline.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "filter", Message: err.Error()}, err.Error())
		return
	}

	result, ok := s.loadDocument(w, r)
	if !ok {
		return
	}

	items := timeline.Compose(result.Data, filter, s.now())
	w.Header().Set("Cache-Control", dataCacheControl)
	s.jsonResponse(w, http.StatusOK, TimelineResponse{Filter: filter, Items: items, Count: len(items)})
}

// handleGitHubRepo returns the repository stats widget data.
func (s *Server) handleGitHubRepo(w http.ResponseWriter, r *http.Request) {
	if s.github == nil {
		s.writeError(w, &ErrUnavailable{What: "GitHub stats"}, "GitHub stats are not configured")
		return
	}
	stats := s.github.RepoStats(r.Context())
	if !stats.Available {
		s.logger.Debug("serving unavailable GitHub stats", zap.String("repo", stats.Owner+"/"+stats.Repo))
	}
	s.jsonResponse(w, http.StatusOK, stats)
}
