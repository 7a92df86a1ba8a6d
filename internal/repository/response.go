package repository

import (
	"context"

	"emo-pages-backend/internal/models"

	"github.com/google/uuid"
)

// SaveResponse appends a reply to a page
func (s *PostgresStore) SaveResponse(ctx context.Context, pageID, text string) (*models.Response, error) {
	query := `
		INSERT INTO responses (id, page_id, response)
		VALUES ($1, $2, $3)
		RETURNING id::text, page_id::text, response, created_at
	`
	var resp models.Response
	err := s.db.QueryRow(ctx, query, uuid.New().String(), pageID, text).Scan(
		&resp.ID, &resp.PageID, &resp.Response, &resp.CreatedAt,
	)
	if err != nil {
		return nil, storageError("insert response", err, nil)
	}
	return &resp, nil
}

// ListResponsesByPageID returns every reply for a page, newest first.
// The result is never nil.
func (s *PostgresStore) ListResponsesByPageID(ctx context.Context, pageID string) ([]*models.Response, error) {
	query := `
		SELECT id::text, page_id::text, response, created_at
		FROM responses
		WHERE page_id = $1
		ORDER BY created_at DESC, seq DESC
	`
	rows, err := s.db.Query(ctx, query, pageID)
	if err != nil {
		return nil, storageError("select responses", err, nil)
	}
	defer rows.Close()

	responses := []*models.Response{}
	for rows.Next() {
		var resp models.Response
		if err := rows.Scan(&resp.ID, &resp.PageID, &resp.Response, &resp.CreatedAt); err != nil {
			return nil, storageError("scan response", err, nil)
		}
		responses = append(responses, &resp)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("select responses", err, nil)
	}

	return responses, nil
}
