package repository

import (
	"context"
	"errors"
	"fmt"

	"emo-pages-backend/internal/models"
)

// Store is the row store behind pages, views and responses. It assigns ids
// and creation times; callers never set them.
type Store interface {
	CreatePage(ctx context.Context, page *models.Page) (*models.Page, error)
	GetPageBySlug(ctx context.Context, slug string) (*models.Page, error)
	LogView(ctx context.Context, pageID string) (*models.View, error)
	SaveResponse(ctx context.Context, pageID, text string) (*models.Response, error)
	ListResponsesByPageID(ctx context.Context, pageID string) ([]*models.Response, error)
	Ping(ctx context.Context) error
}

// storageError wraps a driver error, turning unique violations into
// ErrSlugTaken so the builder can retry with a fresh slug.
func storageError(op string, err error, unique func(error) bool) error {
	if unique != nil && unique(err) {
		err = fmt.Errorf("%w: %v", models.ErrSlugTaken, err)
	}
	return &models.StorageError{Op: op, Err: err}
}

func notFound(what, key string) error {
	return fmt.Errorf("%s %q: %w", what, key, models.ErrNotFound)
}

// IsNotFound reports whether err means "no matching row"
func IsNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
