package pages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gmg-digital/staticembed/internal/db"
)

// ErrNotFound is returned when a page is not registered.
var ErrNotFound = errors.New("page not found")

// Store provides CRUD operations for the page registry.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Upsert inserts or updates a page.
func (s *Store) Upsert(ctx context.Context, p Page) error {
	if p.ID <= 0 {
		return fmt.Errorf("page id must be positive, got %d", p.ID)
	}
	if p.URL == "" {
		return fmt.Errorf("page %d: url is required", p.ID)
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if !p.Status.Valid() {
		return fmt.Errorf("page %d: invalid status %q", p.ID, p.Status)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (page_id, title, url, status, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(page_id) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		p.ID, p.Title, p.URL, string(p.Status), time.Now().UTC().Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("upserting page %d: %w", p.ID, err)
	}
	return nil
}

// Get returns a page by id.
func (s *Store) Get(ctx context.Context, id int64) (*Page, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT page_id, title, url, status, updated_at FROM pages WHERE page_id = ?`, id)

	p, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting page %d: %w", id, err)
	}
	return p, nil
}

// List returns all pages ordered by title.
func (s *Store) List(ctx context.Context) ([]Page, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT page_id, title, url, status, updated_at FROM pages ORDER BY title, page_id`)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	defer rows.Close()

	var result []Page
	for rows.Next() {
		p, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

// Delete removes a page from the registry.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE page_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting page %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Page, error) {
	var (
		p      Page
		status string
		ts     string
	)
	if err := sc.Scan(&p.ID, &p.Title, &p.URL, &status, &ts); err != nil {
		return nil, err
	}
	p.Status = Status(status)
	p.UpdatedAt = db.ParseTime(ts)
	return &p, nil
}
