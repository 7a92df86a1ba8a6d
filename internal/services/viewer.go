package services

import (
	"context"
	"time"

	"emo-pages-backend/internal/models"

	"github.com/rs/zerolog/log"
)

const viewLogTimeout = 5 * time.Second

// Viewer loads pages for visitors and records impressions
type Viewer struct {
	pages *PageService
}

// NewViewer creates a new viewer
func NewViewer(pages *PageService) *Viewer {
	return &Viewer{pages: pages}
}

// Load fetches the page at slug and logs a view in the background. A failed
// view log never reaches the caller.
func (v *Viewer) Load(ctx context.Context, slug string) (*models.Page, error) {
	page, err := v.pages.FetchPage(ctx, slug)
	if err != nil {
		return nil, err
	}

	go v.logView(context.WithoutCancel(ctx), page.ID)

	return page, nil
}

func (v *Viewer) logView(ctx context.Context, pageID string) {
	ctx, cancel := context.WithTimeout(ctx, viewLogTimeout)
	defer cancel()

	if _, err := v.pages.store.LogView(ctx, pageID); err != nil {
		v.pages.metrics.ViewLogFailed()
		log.Warn().Err(err).Str("page_id", pageID).Msg("Failed to log view")
		return
	}
	v.pages.metrics.ViewLogged()
}
