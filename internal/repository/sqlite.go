package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"emo-pages-backend/internal/models"

	"github.com/google/uuid"
)

// SQLiteStore is the single-file row store used for local runs and tests.
// Timestamps are stored as unix nanoseconds.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore wraps an open modernc sqlite handle
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Ping checks the connection
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreatePage inserts a page and returns the stored row
func (s *SQLiteStore) CreatePage(ctx context.Context, page *models.Page) (*models.Page, error) {
	content, err := json.Marshal(page.Content)
	if err != nil {
		return nil, &models.StorageError{Op: "encode content", Err: err}
	}

	var expiresAt *int64
	if page.ExpiresAt != nil {
		n := page.ExpiresAt.UnixNano()
		expiresAt = &n
	}

	id := uuid.New().String()
	query := `
		INSERT INTO pages (id, slug, type, tone, occasion, content, is_anonymous, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		id, page.Slug, string(page.Type), string(page.Tone), string(page.Occasion),
		string(content), page.IsAnonymous, s.now().UnixNano(), expiresAt,
	)
	if err != nil {
		return nil, storageError("insert page", err, isSQLiteUniqueViolation)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+sqlitePageColumns+` FROM pages WHERE id = ?`, id)
	created, err := scanSQLitePage(row)
	if err != nil {
		return nil, storageError("select page", err, nil)
	}
	return created, nil
}

const sqlitePageColumns = `id, slug, type, tone, occasion, content, is_anonymous, created_at, expires_at`

// GetPageBySlug retrieves the single page with the given slug
func (s *SQLiteStore) GetPageBySlug(ctx context.Context, slug string) (*models.Page, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqlitePageColumns+` FROM pages WHERE slug = ? LIMIT 2`, slug)
	if err != nil {
		return nil, storageError("select page", err, nil)
	}
	defer rows.Close()

	var pages []*models.Page
	for rows.Next() {
		page, err := scanSQLitePage(rows)
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

// LogView appends an impression for a page
func (s *SQLiteStore) LogView(ctx context.Context, pageID string) (*models.View, error) {
	view := &models.View{
		ID:        uuid.New().String(),
		PageID:    pageID,
		CreatedAt: s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO views (id, page_id, created_at) VALUES (?, ?, ?)`,
		view.ID, view.PageID, view.CreatedAt.UnixNano(),
	)
	if err != nil {
		return nil, storageError("insert view", err, nil)
	}
	return view, nil
}

// SaveResponse appends a reply to a page
func (s *SQLiteStore) SaveResponse(ctx context.Context, pageID, text string) (*models.Response, error) {
	resp := &models.Response{
		ID:        uuid.New().String(),
		PageID:    pageID,
		Response:  text,
		CreatedAt: s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO responses (id, page_id, response, created_at) VALUES (?, ?, ?, ?)`,
		resp.ID, resp.PageID, resp.Response, resp.CreatedAt.UnixNano(),
	)
	if err != nil {
		return nil, storageError("insert response", err, nil)
	}
	return resp, nil
}

// ListResponsesByPageID returns every reply for a page, newest first.
// Rows written in the same nanosecond keep insertion order through rowid.
func (s *SQLiteStore) ListResponsesByPageID(ctx context.Context, pageID string) ([]*models.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, page_id, response, created_at
		FROM responses
		WHERE page_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, pageID)
	if err != nil {
		return nil, storageError("select responses", err, nil)
	}
	defer rows.Close()

	responses := []*models.Response{}
	for rows.Next() {
		var (
			resp      models.Response
			createdAt int64
		)
		if err := rows.Scan(&resp.ID, &resp.PageID, &resp.Response, &createdAt); err != nil {
			return nil, storageError("scan response", err, nil)
		}
		resp.CreatedAt = time.Unix(0, createdAt).UTC()
		responses = append(responses, &resp)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("select responses", err, nil)
	}
	return responses, nil
}

type sqlScanner interface {
	Scan(dest ...any) error
}

func scanSQLitePage(row sqlScanner) (*models.Page, error) {
	var (
		page                models.Page
		typ, tone, occasion string
		content             string
		createdAt           int64
		expiresAt           sql.NullInt64
	)
	err := row.Scan(
		&page.ID, &page.Slug, &typ, &tone, &occasion, &content,
		&page.IsAnonymous, &createdAt, &expiresAt,
	)
	if err != nil {
		return nil, err
	}
	page.Type = models.PageType(typ)
	page.Tone = models.Tone(tone)
	page.Occasion = models.Occasion(occasion)
	page.CreatedAt = time.Unix(0, createdAt).UTC()
	if expiresAt.Valid {
		t := time.Unix(0, expiresAt.Int64).UTC()
		page.ExpiresAt = &t
	}
	if err := decodeContent([]byte(content), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
