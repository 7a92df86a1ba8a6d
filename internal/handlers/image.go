package handlers

import (
	"net/http"

	"emo-pages-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ImageHandler handles image upload requests
type ImageHandler struct {
	imageService *services.ImageService
}

// NewImageHandler creates a new image handler
func NewImageHandler(imageService *services.ImageService) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
	}
}

// CreateUpload handles POST /api/v1/images/uploads
func (h *ImageHandler) CreateUpload(w http.ResponseWriter, r *http.Request) {
	var req services.UploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, msgInvalidBody, http.StatusBadRequest)
		return
	}

	if req.ContentType == "" {
		respondError(w, "content_type is required", http.StatusBadRequest)
		return
	}

	resp, err := h.imageService.GetPreSignedURL(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to generate pre-signed URL")
		return
	}

	log.Info().
		Str("key", resp.Key).
		Str("content_type", req.ContentType).
		Msg("Image upload URL issued")

	respondJSON(w, http.StatusOK, resp)
}
