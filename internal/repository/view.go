package repository

import (
	"context"

	"emo-pages-backend/internal/models"

	"github.com/google/uuid"
)

// LogView appends an impression for a page
func (s *PostgresStore) LogView(ctx context.Context, pageID string) (*models.View, error) {
	query := `
		INSERT INTO views (id, page_id)
		VALUES ($1, $2)
		RETURNING id::text, page_id::text, created_at
	`
	var view models.View
	err := s.db.QueryRow(ctx, query, uuid.New().String(), pageID).Scan(
		&view.ID, &view.PageID, &view.CreatedAt,
	)
	if err != nil {
		return nil, storageError("insert view", err, nil)
	}
	return &view, nil
}
