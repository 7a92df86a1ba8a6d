package handlers

import (
	"net/http"
	"time"

	"emo-pages-backend/internal/models"
	"emo-pages-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const anonymousPath = "/api/v1/anonymous"

// AnonymousHandler handles anonymous links, replies and the inbox
type AnonymousHandler struct {
	anonService  *services.AnonymousService
	links        *services.Links
	tokens       *services.StreamTokens
	pollInterval time.Duration
}

// NewAnonymousHandler creates a new anonymous handler
func NewAnonymousHandler(
	anonService *services.AnonymousService,
	links *services.Links,
	tokens *services.StreamTokens,
	pollInterval time.Duration,
) *AnonymousHandler {
	return &AnonymousHandler{
		anonService:  anonService,
		links:        links,
		tokens:       tokens,
		pollInterval: pollInterval,
	}
}

// CreateAnonymousResponse is shown once, right after generating the link
type CreateAnonymousResponse struct {
	Page       *models.Page            `json:"page"`
	OwnerToken string                  `json:"owner_token"`
	Links      services.AnonymousLinks `json:"links"`
}

// ReplyRequest represents the request body for an anonymous reply
type ReplyRequest struct {
	Response string `json:"response"`
}

// ReplyResponse confirms a saved reply
type ReplyResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Message   string    `json:"message"`
	CreateURL string    `json:"create_url"`
}

// InboxResponse is the owner's view of the replies
type InboxResponse struct {
	Page         *models.Page       `json:"page"`
	Responses    []*models.Response `json:"responses"`
	StreamToken  string             `json:"stream_token"`
	PollInterval int                `json:"poll_interval_seconds"`
}

// Create handles POST /api/v1/anonymous
func (h *AnonymousHandler) Create(w http.ResponseWriter, r *http.Request) {
	link, err := h.anonService.Create(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to create anonymous link")
		return
	}

	log.Info().
		Str("page_id", link.Page.ID).
		Str("slug", link.Page.Slug).
		Msg("Anonymous link created")

	respondJSON(w, http.StatusCreated, CreateAnonymousResponse{
		Page:       link.Page.Public(),
		OwnerToken: link.OwnerToken,
		Links:      h.links.ForAnonymous(link.Page.Slug, link.OwnerToken),
	})
}

// GetSendPage handles GET /api/v1/anonymous/{slug}
func (h *AnonymousHandler) GetSendPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.anonService.SendPage(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to load anonymous page")
		return
	}

	respondJSON(w, http.StatusOK, ViewResponse{
		Page:         page,
		Presentation: services.Render(page, time.Now()),
	})
}

// Reply handles POST /api/v1/anonymous/{slug}/responses
func (h *AnonymousHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req ReplyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, msgInvalidBody, http.StatusBadRequest)
		return
	}

	resp, err := h.anonService.Reply(r.Context(), chi.URLParam(r, "slug"), req.Response)
	if err != nil {
		respondServiceError(w, r, err, "Failed to save reply")
		return
	}

	respondJSON(w, http.StatusCreated, ReplyResponse{
		ID:        resp.ID,
		CreatedAt: resp.CreatedAt,
		Message:   services.ReplyThanks,
		CreateURL: h.links.Create(),
	})
}

// GetInbox handles GET /api/v1/anonymous/{slug}/inbox?token=
func (h *AnonymousHandler) GetInbox(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	inbox, err := h.anonService.Inbox(r.Context(), slug, r.URL.Query().Get("token"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to load inbox")
		return
	}

	streamToken, err := h.tokens.Issue(inbox.Page.ID, inbox.Page.Slug)
	if err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("Failed to issue stream token")
		respondError(w, msgInternalProblem, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, InboxResponse{
		Page:         inbox.Page,
		Responses:    inbox.Responses,
		StreamToken:  streamToken,
		PollInterval: int(h.pollInterval.Seconds()),
	})
}
