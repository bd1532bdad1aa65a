package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/UsamaZuberi/portfolio-v2/internal/fetch"
	"github.com/UsamaZuberi/portfolio-v2/internal/gallery"
	"go.uber.org/zap"
)

// BlobNotConfiguredMessage is returned by the grouped listing when storage is not set up.
const BlobNotConfiguredMessage = "Blob storage is not configured. Please set portfolio_v2_images_READ_WRITE_TOKEN in your environment variables."

// AllImagesResponse is the body of GET /api/projects/images.
type AllImagesResponse struct {
	Images       map[string][]string `json:"images"`
	ProjectCount int                 `json:"projectCount"`
}

// ProjectImagesResponse is the body of GET /api/projects/{slug}/images.
type ProjectImagesResponse struct {
	Slug   string   `json:"slug"`
	Images []string `json:"images"`
	Count  int      `json:"count"`
}

// GalleryResponse is the body of GET /api/projects/{slug}/gallery.
// Actions lists the effect of each ?key= applied, in order.
type GalleryResponse struct {
	Slug string `json:"slug"`
	gallery.Window
	Zoom    float64          `json:"zoom"`
	Closed  bool             `json:"closed"`
	Actions []gallery.Action `json:"actions,omitempty"`
}

// PreviewResponse is the body of GET /api/projects/{slug}/preview.
type PreviewResponse struct {
	Slug    string         `json:"slug"`
	Preview *fetch.Preview `json:"preview"`
}

// handleAllProjectImages returns image URLs grouped by project slug.
func (s *Server) handleAllProjectImages(w http.ResponseWriter, r *http.Request) {
	if !s.images.Configured() {
		s.writeError(w, &ErrUnavailable{What: "blob storage"}, BlobNotConfiguredMessage)
		return
	}

	images := s.images.AllProjectImages(r.Context())
	s.jsonResponse(w, http.StatusOK, AllImagesResponse{Images: images, ProjectCount: len(images)})
}

// handleProjectImages returns the ordered image URLs of one project.
// An unconfigured or failing store yields an empty list.
func (s *Server) handleProjectImages(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.PathValue("slug"))
	if slug == "" {
		s.writeError(w, &ErrValidation{Field: "slug", Message: "required"}, "Project slug is required")
		return
	}

	images := s.images.ProjectImages(r.Context(), slug)
	s.jsonResponse(w, http.StatusOK, ProjectImagesResponse{Slug: slug, Images: images, Count: len(images)})
}

// galleryImages prefers the storage listing and falls back to the images
// named in the document.
func (s *Server) galleryImages(r *http.Request, slug string) []string {
	if s.images.Configured() {
		if images := s.images.ProjectImages(r.Context(), slug); len(images) > 0 {
			return images
		}
	}
	result := s.data.Load(r.Context())
	if project := result.Data.ProjectBySlug(slug); project != nil {
		return project.Images
	}
	return nil
}

// handleProjectGallery returns the lightbox window around ?index= for a project.
// Each ?key= (ArrowRight, ArrowLeft, Escape, +, -) is then applied in order.
func (s *Server) handleProjectGallery(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.PathValue("slug"))
	if slug == "" {
		s.writeError(w, &ErrValidation{Field: "slug", Message: "required"}, "Project slug is required")
		return
	}

	images := s.galleryImages(r, slug)
	if len(images) == 0 {
		s.writeError(w, &ErrNotFound{Resource: "images for project", ID: slug}, "")
		return
	}

	index := 0
	if raw := r.URL.Query().Get("index"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n >= len(images) {
			msg := "index must be an integer between 0 and " + strconv.Itoa(len(images)-1)
			s.writeError(w, &ErrValidation{Field: "index", Message: msg}, msg)
			return
		}
		index = n
	}

	nav := gallery.New(images, index)
	var actions []gallery.Action
	for _, key := range r.URL.Query()["key"] {
		action := nav.HandleKey(key)
		if action == gallery.ActionNone {
			s.writeError(w, &ErrValidation{Field: "key", Message: "unsupported key"}, "Unsupported gallery key: "+key)
			return
		}
		actions = append(actions, action)
	}

	s.jsonResponse(w, http.StatusOK, GalleryResponse{
		Slug:    slug,
		Window:  nav.Window(),
		Zoom:    nav.Zoom(),
		Closed:  nav.Closed(),
		Actions: actions,
	})
}

// handleProjectPreview returns a link preview for a project that allows one.
func (s *Server) handleProjectPreview(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.PathValue("slug"))

	result, ok := s.loadDocument(w, r)
	if !ok {
		return
	}

	project := result.Data.ProjectBySlug(slug)
	if project == nil || !project.AllowLinkPreview || project.Link == "" {
		s.writeError(w, &ErrNotFound{Resource: "link preview for project", ID: slug}, "")
		return
	}
	if s.previews == nil {
		s.writeError(w, &ErrUnavailable{What: "link previews"}, "Link previews are not configured")
		return
	}

	preview, err := s.previews.Preview(r.Context(), project.Link)
	if err != nil {
		s.logger.Warn("link preview failed",
			zap.String("slug", slug),
			zap.String("url", project.Link),
			zap.Error(err),
		)
		s.errorResponse(w, http.StatusBadGateway, "Failed to fetch link preview")
		return
	}

	if preview.FromCache {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	s.jsonResponse(w, http.StatusOK, PreviewResponse{Slug: slug, Preview: preview.Preview})
}
