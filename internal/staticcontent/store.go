package staticcontent

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gmg-digital/staticembed/internal/db"
)

// ErrNotFound is returned when no static content exists for a page.
var ErrNotFound = errors.New("static content not found")

// Store provides CRUD operations over the static_content table.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Replace stores p, replacing any existing row for the same page id. Like a
// REPLACE, the row is recreated and receives a new id.
func (s *Store) Replace(ctx context.Context, p StaticPage) (*StaticPage, error) {
	if p.PageID <= 0 {
		return nil, fmt.Errorf("page id must be positive, got %d", p.PageID)
	}
	if p.ElementorDivID == "" {
		p.ElementorDivID = DivID(p.PageID)
	}
	if p.GeneratedAt.IsZero() {
		p.GeneratedAt = time.Now()
	}

	styles, err := marshalURLs(p.Styles)
	if err != nil {
		return nil, fmt.Errorf("marshalling styles: %w", err)
	}
	scripts, err := marshalURLs(p.Scripts)
	if err != nil {
		return nil, fmt.Errorf("marshalling scripts: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO static_content (page_id, content, elementor_div_id, generated_at, notes, styles, scripts)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.PageID, p.Content, p.ElementorDivID,
		p.GeneratedAt.UTC().Format(time.DateTime), p.Notes, styles, scripts,
	)
	if err != nil {
		return nil, fmt.Errorf("replacing static content for page %d: %w", p.PageID, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		p.ID = id
	}
	p.GeneratedAt = p.GeneratedAt.UTC().Truncate(time.Second)
	return &p, nil
}

// Get returns the static content for a page id.
func (s *Store) Get(ctx context.Context, pageID int64) (*StaticPage, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, page_id, content, elementor_div_id, generated_at, notes, styles, scripts
		FROM static_content WHERE page_id = ?`, pageID)

	p, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting static content for page %d: %w", pageID, err)
	}
	return p, nil
}

// Exists reports whether static content has been generated for a page.
func (s *Store) Exists(ctx context.Context, pageID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM static_content WHERE page_id = ?", pageID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking static content for page %d: %w", pageID, err)
	}
	return n > 0, nil
}

// List returns every stored page ordered by id.
func (s *Store) List(ctx context.Context) ([]StaticPage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, page_id, content, elementor_div_id, generated_at, notes, styles, scripts
		FROM static_content ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying static content: %w", err)
	}
	defer rows.Close()

	var result []StaticPage
	for rows.Next() {
		p, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

// UpdateNotes replaces the editor notes of a page.
func (s *Store) UpdateNotes(ctx context.Context, pageID int64, notes string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE static_content SET notes = ? WHERE page_id = ?", notes, pageID)
	if err != nil {
		return fmt.Errorf("updating notes for page %d: %w", pageID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the static content of a page.
func (s *Store) Delete(ctx context.Context, pageID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM static_content WHERE page_id = ?", pageID)
	if err != nil {
		return fmt.Errorf("deleting static content for page %d: %w", pageID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalURLs(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}
	b, err := json.Marshal(urls)
	return string(b), err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*StaticPage, error) {
	var (
		p                     StaticPage
		ts                    string
		stylesJSON, scriptsJS string
	)
	err := sc.Scan(&p.ID, &p.PageID, &p.Content, &p.ElementorDivID, &ts, &p.Notes, &stylesJSON, &scriptsJS)
	if err != nil {
		return nil, err
	}
	p.GeneratedAt = db.ParseTime(ts)
	if err := json.Unmarshal([]byte(stylesJSON), &p.Styles); err != nil {
		p.Styles = nil
	}
	if err := json.Unmarshal([]byte(scriptsJS), &p.Scripts); err != nil {
		p.Scripts = nil
	}
	return &p, nil
}
