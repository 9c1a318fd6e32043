// Package timescaledb stores flux results in a TimescaleDB hypertable
// through GORM.
package timescaledb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chrissnell/eddyflux/internal/database"
	"github.com/chrissnell/eddyflux/internal/storage"
	"github.com/chrissnell/eddyflux/pkg/flux"
)

// Storage is a storage.ResultStore backed by TimescaleDB.
type Storage struct {
	TimescaleDBConn *gorm.DB
	logger          *zap.SugaredLogger
}

var _ storage.ResultStore = (*Storage)(nil)

// New connects to TimescaleDB and provisions the flux_results hypertable.
func New(ctx context.Context, connectionString string, logger *zap.SugaredLogger) (*Storage, error) {
	db, err := database.CreateConnection(connectionString)
	if err != nil {
		return nil, err
	}
	return NewWithDB(ctx, db, logger)
}

// NewWithDB provisions the schema on an existing handle.
func NewWithDB(ctx context.Context, db *gorm.DB, logger *zap.SugaredLogger) (*Storage, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	t := &Storage{TimescaleDBConn: db, logger: logger}

	steps := []struct {
		desc string
		sql  string
	}{
		{"TimescaleDB extension", createExtensionSQL},
		{"flux_results table", createTableSQL},
		{"flux_results hypertable", createHypertableSQL},
		{"site index", createSiteIndexSQL},
	}
	for _, step := range steps {
		logger.Infof("creating %s...", step.desc)
		if err := db.WithContext(ctx).Exec(step.sql).Error; err != nil {
			return nil, fmt.Errorf("could not create %s: %w", step.desc, err)
		}
	}

	return t, nil
}

// Save inserts r.
func (t *Storage) Save(ctx context.Context, r *storage.Record) error {
	row, err := toRow(r)
	if err != nil {
		return err
	}
	if err := t.TimescaleDBConn.WithContext(ctx).Create(&row).Error; err != nil {
		t.logger.Errorf("could not store result %s: %v", r.ID, err)
		return err
	}
	return nil
}

// Get returns the record with the given ID or storage.ErrNotFound.
func (t *Storage) Get(ctx context.Context, id uuid.UUID) (*storage.Record, error) {
	var row database.FluxResult
	err := t.TimescaleDBConn.WithContext(ctx).Where("id = ?", id.String()).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading result %s: %w", id, err)
	}
	return fromRow(row)
}

// List returns up to limit records, newest first.
func (t *Storage) List(ctx context.Context, site string, limit int) ([]storage.Record, error) {
	q := t.TimescaleDBConn.WithContext(ctx).Order("start_time DESC").Order("created_at DESC").Limit(storage.Limit(limit))
	if site != "" {
		q = q.Where("site = ?", site)
	}

	var rows []database.FluxResult
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}

	records := make([]storage.Record, 0, len(rows))
	for _, row := range rows {
		r, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, nil
}

// Close releases the underlying connection pool.
func (t *Storage) Close() error {
	sqlDB, err := t.TimescaleDBConn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRow(r *storage.Record) (database.FluxResult, error) {
	diag, err := storage.EncodeDiagnostics(r.Result.Diagnostics)
	if err != nil {
		return database.FluxResult{}, fmt.Errorf("encoding diagnostics: %w", err)
	}
	return database.FluxResult{
		ID:             r.ID.String(),
		StartTime:      r.StartTime,
		CreatedAt:      r.CreatedAt,
		Site:           r.Site,
		Samples:        r.Samples,
		RotationMethod: r.RotationMethod,
		Value:          r.Result.Value,
		Unit:           r.Result.Unit,
		QualityFlags:   int64(r.Result.QualityFlags),
		Diagnostics:    diag,
	}, nil
}

func fromRow(row database.FluxResult) (*storage.Record, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("result id %q: %w", row.ID, err)
	}
	diag, err := storage.DecodeDiagnostics(row.Diagnostics)
	if err != nil {
		return nil, fmt.Errorf("result %s diagnostics: %w", row.ID, err)
	}

	flags := flux.QualityFlags(row.QualityFlags)
	return &storage.Record{
		ID:             id,
		Site:           row.Site,
		StartTime:      row.StartTime.UTC(),
		CreatedAt:      row.CreatedAt.UTC(),
		Samples:        row.Samples,
		RotationMethod: row.RotationMethod,
		Result: flux.Result{
			Value:        row.Value,
			Unit:         row.Unit,
			QualityFlags: flags,
			Diagnostics:  diag,
		},
		Flags: flags.Names(),
	}, nil
}
