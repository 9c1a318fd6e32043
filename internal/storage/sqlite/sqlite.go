// Package sqlite stores flux results in a SQLite database using the pure-Go
// modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/chrissnell/eddyflux/internal/storage"
	"github.com/chrissnell/eddyflux/pkg/flux"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const createTableSQL = `
CREATE TABLE IF NOT EXISTS flux_results (
	id TEXT PRIMARY KEY,
	site TEXT NOT NULL,
	start_time INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	samples INTEGER NOT NULL,
	rotation_method TEXT NOT NULL,
	value REAL NOT NULL,
	unit TEXT NOT NULL,
	quality_flags INTEGER NOT NULL,
	diagnostics TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS flux_results_site_start ON flux_results (site, start_time DESC);
`

const selectColumns = `id, site, start_time, created_at, samples, rotation_method, value, unit, quality_flags, diagnostics`

// Store is a storage.ResultStore backed by SQLite.
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

var _ storage.ResultStore = (*Store)(nil)

// New opens (creating if needed) the database at path and its schema.
func New(ctx context.Context, path string, logger *zap.SugaredLogger) (*Store, error) {
	if path == "" {
		path = MemoryPath
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	// One connection serialises writers and keeps an in-memory database alive.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating flux_results table: %w", err)
	}

	logger.Infof("sqlite result store ready at %s", path)
	return &Store{db: db, logger: logger}, nil
}

// Save inserts r.
func (s *Store) Save(ctx context.Context, r *storage.Record) error {
	diag, err := storage.EncodeDiagnostics(r.Result.Diagnostics)
	if err != nil {
		return fmt.Errorf("encoding diagnostics: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO flux_results (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.Site, r.StartTime.UnixNano(), r.CreatedAt.UnixNano(), r.Samples,
		r.RotationMethod, r.Result.Value, r.Result.Unit, int64(r.Result.QualityFlags), diag,
	)
	if err != nil {
		return fmt.Errorf("storing result %s: %w", r.ID, err)
	}
	s.logger.Debugf("stored result %s for site %s", r.ID, r.Site)
	return nil
}

// Get returns the record with the given ID or storage.ErrNotFound.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*storage.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM flux_results WHERE id = ?`, id.String())

	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading result %s: %w", id, err)
	}
	return r, nil
}

// List returns up to limit records, newest first.
func (s *Store) List(ctx context.Context, site string, limit int) ([]storage.Record, error) {
	query := `SELECT ` + selectColumns + ` FROM flux_results`
	args := []any{}
	if site != "" {
		query += ` WHERE site = ?`
		args = append(args, site)
	}
	query += ` ORDER BY start_time DESC, created_at DESC LIMIT ?`
	args = append(args, storage.Limit(limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()

	records := []storage.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("listing results: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*storage.Record, error) {
	var (
		id, diag       string
		start, created int64
		flags          int64
		r              storage.Record
	)
	err := sc.Scan(&id, &r.Site, &start, &created, &r.Samples, &r.RotationMethod,
		&r.Result.Value, &r.Result.Unit, &flags, &diag)
	if err != nil {
		return nil, err
	}

	if r.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if r.Result.Diagnostics, err = storage.DecodeDiagnostics(diag); err != nil {
		return nil, err
	}
	r.StartTime = time.Unix(0, start).UTC()
	r.CreatedAt = time.Unix(0, created).UTC()
	r.Result.QualityFlags = flux.QualityFlags(flags)
	r.Flags = r.Result.QualityFlags.Names()

	return &r, nil
}
