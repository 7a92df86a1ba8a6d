package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"emo-pages-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

const pageColumns = `id::text, slug, type, tone, occasion, content, is_anonymous, created_at, expires_at`

// PostgresStore handles row store operations on PostgreSQL
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new Postgres-backed store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Ping checks the connection
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// CreatePage inserts a page and returns the stored row
func (s *PostgresStore) CreatePage(ctx context.Context, page *models.Page) (*models.Page, error) {
	content, err := json.Marshal(page.Content)
	if err != nil {
		return nil, &models.StorageError{Op: "encode content", Err: err}
	}

	query := `
		INSERT INTO pages (id, slug, type, tone, occasion, content, is_anonymous, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + pageColumns
	row := s.db.QueryRow(ctx, query,
		uuid.New().String(), page.Slug, string(page.Type), string(page.Tone),
		string(page.Occasion), content, page.IsAnonymous, page.ExpiresAt,
	)

	created, err := scanPage(row)
	if err != nil {
		return nil, storageError("insert page", err, isPgUniqueViolation)
	}
	return created, nil
}

// GetPageBySlug retrieves the single page with the given slug
func (s *PostgresStore) GetPageBySlug(ctx context.Context, slug string) (*models.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE slug = $1 LIMIT 2`
	rows, err := s.db.Query(ctx, query, slug)
	if err != nil {
		return nil, storageError("select page", err, nil)
	}
	defer rows.Close()

	var pages []*models.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, storageError("scan page", err, nil)
		}
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("select page", err, nil)
	}

	if len(pages) != 1 {
		return nil, notFound("page", slug)
	}
	return pages[0], nil
}

func scanPage(row pgx.Row) (*models.Page, error) {
	var (
		page                models.Page
		typ, tone, occasion string
		content             []byte
		expiresAt           *time.Time
	)
	err := row.Scan(
		&page.ID, &page.Slug, &typ, &tone, &occasion, &content,
		&page.IsAnonymous, &page.CreatedAt, &expiresAt,
	)
	if err != nil {
		return nil, err
	}
	page.Type = models.PageType(typ)
	page.Tone = models.Tone(tone)
	page.Occasion = models.Occasion(occasion)
	page.ExpiresAt = expiresAt
	if err := decodeContent(content, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func decodeContent(raw []byte, page *models.Page) error {
	page.Content = models.Content{}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &page.Content); err != nil {
		return fmt.Errorf("failed to decode content: %w", err)
	}
	if page.Content == nil {
		page.Content = models.Content{}
	}
	return nil
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
