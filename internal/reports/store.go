package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gmg-digital/staticembed/internal/db"
)

// ErrNotFound is returned when a report does not exist.
var ErrNotFound = errors.New("report not found")

// ListFilter controls which reports are returned by List.
type ListFilter struct {
	PageID    string
	Status    int
	Delivered *bool
	Since     time.Time
	Limit     int
	Offset    int
}

// Store persists error reports.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a report and returns its id. If r.ID is empty a UUID is generated.
func (s *Store) Create(ctx context.Context, r Report) (string, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO error_reports (id, error, status, page_id, page_url, stack, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Error, r.Status, r.PageID, r.PageURL, r.Stack,
		r.Timestamp.UTC().Format(time.DateTime),
	)
	if err != nil {
		return "", fmt.Errorf("inserting report: %w", err)
	}
	return r.ID, nil
}

// GetByID retrieves a single report.
func (s *Store) GetByID(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, error, status, page_id, page_url, stack, delivered, created_at
		FROM error_reports WHERE id = ?`, id)

	rec, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// List returns reports matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.PageID != "" {
		clauses = append(clauses, "page_id = ?")
		args = append(args, filter.PageID)
	}
	if filter.Status != 0 {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Delivered != nil {
		v := 0
		if *filter.Delivered {
			v = 1
		}
		clauses = append(clauses, "delivered = ?")
		args = append(args, v)
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}

	query := "SELECT id, error, status, page_id, page_url, stack, delivered, created_at FROM error_reports"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		rec, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

// MarkDelivered sets delivered=1 for the given report.
func (s *Store) MarkDelivered(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE error_reports SET delivered = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking report delivered: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Record, error) {
	var (
		rec       Record
		delivered int
		ts        string
	)

	err := sc.Scan(&rec.ID, &rec.Error, &rec.Status, &rec.PageID, &rec.PageURL,
		&rec.Stack, &delivered, &ts)
	if err != nil {
		return nil, err
	}

	rec.Report.ID = rec.ID
	rec.Delivered = delivered != 0
	rec.Timestamp = db.ParseTime(ts)
	return &rec, nil
}
