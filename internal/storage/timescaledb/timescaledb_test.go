package timescaledb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/eddyflux/internal/storage"
	"github.com/chrissnell/eddyflux/pkg/flux"
)

func sampleRecord() *storage.Record {
	return storage.NewRecord("ridge", time.Date(2026, 3, 4, 5, 30, 0, 0, time.UTC), 18000, "PlanarFit", flux.Result{
		Value:        -12.5,
		Unit:         flux.Unit,
		QualityFlags: flux.Valid | flux.NonStationaryConditions,
		Diagnostics:  flux.Diagnostics{flux.DiagStationarityDifference: 0.42},
	})
}

func TestRowConversion(t *testing.T) {
	want := sampleRecord()

	row, err := toRow(want)
	require.NoError(t, err)
	assert.Equal(t, "flux_results", row.TableName())
	assert.Equal(t, int64(flux.Valid|flux.NonStationaryConditions), row.QualityFlags)
	assert.JSONEq(t, `{"stationarity_relative_difference":0.42}`, row.Diagnostics)

	got, err := fromRow(row)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFromRowRejectsBadID(t *testing.T) {
	row, err := toRow(sampleRecord())
	require.NoError(t, err)
	row.ID = "not-a-uuid"

	_, err = fromRow(row)
	assert.Error(t, err)
}

// TestStorageIntegration runs against a live database when
// EDDYFLUX_TIMESCALEDB_DSN is set.
func TestStorageIntegration(t *testing.T) {
	dsn := os.Getenv("EDDYFLUX_TIMESCALEDB_DSN")
	if dsn == "" {
		t.Skip("EDDYFLUX_TIMESCALEDB_DSN not set")
	}
	ctx := context.Background()

	s, err := New(ctx, dsn, nil)
	require.NoError(t, err)
	defer s.Close()

	r := sampleRecord()
	require.NoError(t, s.Save(ctx, r))

	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.InDelta(t, r.Result.Value, got.Result.Value, 1e-12)

	list, err := s.List(ctx, "ridge", 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
