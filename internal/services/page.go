package services

import (
	"context"
	"errors"
	"fmt"

	"emo-pages-backend/internal/metrics"
	"emo-pages-backend/internal/models"
	"emo-pages-backend/internal/repository"
	"emo-pages-backend/internal/schema"

	"github.com/rs/zerolog/log"
)

// PageService handles page creation and lookup
type PageService struct {
	store   repository.Store
	metrics *metrics.Metrics
	clock   Clock
	newSlug func() string
}

// NewPageService creates a new page service
func NewPageService(store repository.Store, m *metrics.Metrics) *PageService {
	return &PageService{
		store:   store,
		metrics: m,
		clock:   SystemClock,
		newSlug: GenerateSlug,
	}
}

// FetchPage loads a page by slug. Pages stored under retired types come
// back migrated to their current type.
func (s *PageService) FetchPage(ctx context.Context, slug string) (*models.Page, error) {
	page, err := s.store.GetPageBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if schema.MigrateLegacy(page) {
		log.Debug().Str("slug", slug).Str("legacy_type", page.Content.String(schema.LegacyTypeKey)).Msg("Migrated legacy page")
	}
	return page, nil
}

// create persists page under a fresh slug, regenerating the slug when the
// store reports a collision.
func (s *PageService) create(ctx context.Context, page *models.Page) (*models.Page, error) {
	var lastErr error
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		page.Slug = s.newSlug()

		created, err := s.store.CreatePage(ctx, page)
		if err == nil {
			s.metrics.PageCreated(string(created.Type))
			return created, nil
		}
		if !errors.Is(err, models.ErrSlugTaken) {
			return nil, fmt.Errorf("failed to create page: %w", err)
		}

		lastErr = err
		log.Warn().Str("slug", page.Slug).Int("attempt", attempt+1).Msg("Slug collision, retrying")
	}
	return nil, fmt.Errorf("failed to create page after %d attempts: %w", maxSlugAttempts, lastErr)
}
