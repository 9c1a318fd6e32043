package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/eddyflux/pkg/flux"
)

func TestNewRecord(t *testing.T) {
	local := time.Date(2026, 6, 1, 14, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	r := NewRecord("meadow", local, 18000, "PlanarFit", flux.Result{QualityFlags: flux.Valid | flux.WeakTurbulence})

	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, time.UTC, r.StartTime.Location())
	assert.True(t, local.Equal(r.StartTime))
	assert.Equal(t, []string{"Valid", "WeakTurbulence"}, r.Flags)

	zero := NewRecord("meadow", time.Time{}, 1, "", flux.Result{})
	assert.Equal(t, zero.CreatedAt, zero.StartTime)
	assert.Empty(t, zero.Flags)
}

func TestDiagnosticsRoundTrip(t *testing.T) {
	s, err := EncodeDiagnostics(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", s)

	s, err = EncodeDiagnostics(flux.Diagnostics{"spike_percentage": 1.5})
	require.NoError(t, err)
	d, err := DecodeDiagnostics(s)
	require.NoError(t, err)
	assert.Equal(t, flux.Diagnostics{"spike_percentage": 1.5}, d)

	d, err = DecodeDiagnostics("")
	require.NoError(t, err)
	assert.Empty(t, d)

	_, err = DecodeDiagnostics("{")
	assert.Error(t, err)
}

func TestLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, Limit(0))
	assert.Equal(t, DefaultListLimit, Limit(-3))
	assert.Equal(t, 7, Limit(7))
	assert.Equal(t, MaxListLimit, Limit(MaxListLimit+1))
}
