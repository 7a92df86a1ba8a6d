package handlers

import (
	"net/http"

	"emo-pages-backend/internal/models"
	"emo-pages-backend/internal/schema"

	"github.com/go-chi/chi/v5"
)

// SchemaHandler serves the page type registry to form builders
type SchemaHandler struct{}

// NewSchemaHandler creates a new schema handler
func NewSchemaHandler() *SchemaHandler {
	return &SchemaHandler{}
}

// Limits are the numeric bounds shared by every form
type Limits struct {
	MaxMessageLength int `json:"max_message_length"`
	MaxImages        int `json:"max_images"`
	MaxAnswers       int `json:"max_answers"`
	ExpiryHours      int `json:"expiry_hours"`
}

// SchemaResponse is the whole registry
type SchemaResponse struct {
	Types          []schema.TypeConfig      `json:"types"`
	Tones          []schema.Option          `json:"tones"`
	Occasions      []schema.Option          `json:"occasions"`
	Backgrounds    []schema.BackgroundStyle `json:"backgrounds"`
	Wishes         []schema.WishTemplate    `json:"wishes"`
	BirthdayThemes []schema.BirthdayTheme   `json:"birthday_themes"`
	Limits         Limits                   `json:"limits"`
}

// BuildSchema assembles the registry response
func BuildSchema() SchemaResponse {
	return SchemaResponse{
		Types:          schema.Types(),
		Tones:          schema.Tones,
		Occasions:      schema.Occasions,
		Backgrounds:    schema.Backgrounds(),
		Wishes:         schema.Wishes(),
		BirthdayThemes: schema.BirthdayThemes(),
		Limits: Limits{
			MaxMessageLength: schema.MaxMessageLength,
			MaxImages:        schema.MaxImages,
			MaxAnswers:       schema.MaxAnswers,
			ExpiryHours:      int(schema.DefaultExpiry.Hours()),
		},
	}
}

// GetSchema handles GET /api/v1/schema
func (h *SchemaHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, BuildSchema())
}

// GetType handles GET /api/v1/schema/types/{type}
func (h *SchemaHandler) GetType(w http.ResponseWriter, r *http.Request) {
	pageType := models.PageType(chi.URLParam(r, "type"))

	if pageType == models.PageTypeAnonymous {
		http.Redirect(w, r, anonymousPath, http.StatusTemporaryRedirect)
		return
	}

	cfg, ok := schema.Lookup(pageType)
	if !ok {
		respondError(w, "Invalid page type", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}
