// Package storage defines the record type and interface shared by the flux
// result storage backends.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/chrissnell/eddyflux/pkg/flux"
)

// ErrNotFound is returned by Get when no record has the requested ID.
var ErrNotFound = errors.New("result not found")

const (
	// DefaultListLimit applies when the caller passes a non-positive limit.
	DefaultListLimit = 100
	// MaxListLimit caps every List call.
	MaxListLimit = 1000
)

// Record is one stored flux computation.
type Record struct {
	ID             uuid.UUID   `json:"id"`
	Site           string      `json:"site"`
	StartTime      time.Time   `json:"start_time"`
	CreatedAt      time.Time   `json:"created_at"`
	Samples        int         `json:"samples"`
	RotationMethod string      `json:"rotation_method"`
	Result         flux.Result `json:"result"`
	Flags          []string    `json:"flags"`
}

// NewRecord wraps a computed result. The record gets a fresh ID and the
// current time as CreatedAt; a zero startTime is replaced by CreatedAt.
func NewRecord(site string, startTime time.Time, samples int, method string, res flux.Result) *Record {
	now := time.Now().UTC()
	if startTime.IsZero() {
		startTime = now
	}
	return &Record{
		ID:             uuid.New(),
		Site:           site,
		StartTime:      startTime.UTC(),
		CreatedAt:      now,
		Samples:        samples,
		RotationMethod: method,
		Result:         res,
		Flags:          res.QualityFlags.Names(),
	}
}

// ResultStore persists flux records.
type ResultStore interface {
	Save(ctx context.Context, r *Record) error
	Get(ctx context.Context, id uuid.UUID) (*Record, error)
	// List returns records newest first by start time. An empty site
	// matches every site.
	List(ctx context.Context, site string, limit int) ([]Record, error)
	Close() error
}

// EncodeDiagnostics serialises diagnostics for a text or jsonb column.
func EncodeDiagnostics(d flux.Diagnostics) (string, error) {
	if d == nil {
		d = flux.Diagnostics{}
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeDiagnostics is the inverse of EncodeDiagnostics.
func DecodeDiagnostics(s string) (flux.Diagnostics, error) {
	d := flux.Diagnostics{}
	if s == "" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return nil, err
	}
	return d, nil
}

// Limit normalises a caller-supplied list limit.
func Limit(n int) int {
	switch {
	case n <= 0:
		return DefaultListLimit
	case n > MaxListLimit:
		return MaxListLimit
	}
	return n
}
