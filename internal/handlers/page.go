package handlers

import (
	"net/http"
	"time"

	"emo-pages-backend/internal/models"
	"emo-pages-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PageHandler handles page creation and viewing
type PageHandler struct {
	pageService *services.PageService
	viewer      *services.Viewer
	links       *services.Links
	now         func() time.Time
}

// NewPageHandler creates a new page handler
func NewPageHandler(pageService *services.PageService, viewer *services.Viewer, links *services.Links) *PageHandler {
	return &PageHandler{
		pageService: pageService,
		viewer:      viewer,
		links:       links,
		now:         time.Now,
	}
}

// CreatePageRequest represents the request body for creating a page
type CreatePageRequest struct {
	Type     models.PageType `json:"type"`
	Tone     models.Tone     `json:"tone"`
	Occasion models.Occasion `json:"occasion"`
	Content  map[string]any  `json:"content"`
}

// PageResponse is a page plus its share links
type PageResponse struct {
	Page  *models.Page       `json:"page"`
	Links services.PageLinks `json:"links"`
}

// ViewResponse is a page plus its revealed presentation
type ViewResponse struct {
	Page         *models.Page          `json:"page"`
	Presentation services.Presentation `json:"presentation"`
}

// CreatePage handles POST /api/v1/pages
func (h *PageHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreatePageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, msgInvalidBody, http.StatusBadRequest)
		return
	}

	b, err := h.pageService.NewBuilder(req.Type)
	if err != nil {
		respondServiceError(w, r, err, "Failed to start builder")
		return
	}

	tone := req.Tone
	if tone == "" {
		tone = models.ToneRomantic
	}
	if err := b.SelectTone(tone); err != nil {
		respondServiceError(w, r, err, "Failed to select tone")
		return
	}
	if req.Occasion != "" {
		if err := b.SetOccasion(req.Occasion); err != nil {
			respondServiceError(w, r, err, "Failed to set occasion")
			return
		}
	}
	if err := b.SetContent(req.Content); err != nil {
		respondServiceError(w, r, err, "Failed to set content")
		return
	}

	page, err := b.Submit(ctx)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create page")
		return
	}

	log.Info().
		Str("page_id", page.ID).
		Str("slug", page.Slug).
		Str("type", string(page.Type)).
		Msg("Page created")

	respondJSON(w, http.StatusCreated, PageResponse{
		Page:  page.Public(),
		Links: h.links.ForPage(page.Slug),
	})
}

// GetPage handles GET /api/v1/pages/{slug}
func (h *PageHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := h.viewer.Load(r.Context(), slug)
	if err != nil {
		respondServiceError(w, r, err, "Failed to load page")
		return
	}

	public := page.Public()
	respondJSON(w, http.StatusOK, ViewResponse{
		Page:         public,
		Presentation: services.Render(public, h.now()),
	})
}

// GetPreview handles GET /api/v1/pages/{slug}/preview
func (h *PageHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := h.pageService.FetchPage(r.Context(), slug)
	if err != nil {
		respondServiceError(w, r, err, "Failed to load preview")
		return
	}

	respondJSON(w, http.StatusOK, PageResponse{
		Page:  page.Public(),
		Links: h.links.ForPage(page.Slug),
	})
}
