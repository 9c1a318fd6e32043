// Package despike removes non-physical outliers from sonic anemometer series
// following the moving-window approach of Vickers and Mahrt (1997).
package despike

import (
	"errors"
	"fmt"
	"math"

	"github.com/chrissnell/eddyflux/pkg/fluxstat"
)

// ErrLengthMismatch is returned when the four channels differ in length.
var ErrLengthMismatch = errors.New("despike: channels must have the same length")

// Params controls spike detection.
type Params struct {
	// WindowSize is the number of neighbouring samples used for the local
	// statistics: WindowSize/2 on each side of the candidate run. The run
	// itself is never part of its own window.
	WindowSize int

	// Threshold is the number of window standard deviations a sample must
	// deviate from the window mean to be a spike candidate.
	Threshold float64

	// MinConsecutive is the number of consecutive samples, starting at the
	// candidate, that must all exceed the threshold to confirm a spike.
	MinConsecutive int
}

// DefaultParams returns the Vickers and Mahrt settings.
func DefaultParams() Params {
	return Params{
		WindowSize:     10,
		Threshold:      3.5,
		MinConsecutive: 3,
	}
}

// Validate reports whether the parameters are usable.
func (p Params) Validate() error {
	if p.WindowSize < 2 {
		return fmt.Errorf("despike: window size must be at least 2, got %d", p.WindowSize)
	}
	if p.Threshold <= 0 || math.IsNaN(p.Threshold) {
		return fmt.Errorf("despike: threshold must be positive, got %v", p.Threshold)
	}
	if p.MinConsecutive < 1 {
		return fmt.Errorf("despike: consecutive count must be at least 1, got %d", p.MinConsecutive)
	}
	return nil
}

// Stats summarises a despiking pass.
type Stats struct {
	// TotalSpikes counts sample positions flagged in any channel.
	TotalSpikes int
	// SpikePercentage is 100 * TotalSpikes / series length.
	SpikePercentage float64
}

// Result holds despiked copies of the four channels. The input slices are
// never modified.
type Result struct {
	U, V, W, T []float64
	Stats      Stats
}

// RemoveSpikes detects spikes in every channel, merges them into one mask and
// replaces each flagged position in all channels by linear interpolation
// between the nearest unflagged neighbours.
func RemoveSpikes(u, v, w, t []float64, params Params) (Result, error) {
	n := len(u)
	if len(v) != n || len(w) != n || len(t) != n {
		return Result{}, ErrLengthMismatch
	}
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{
		U: append([]float64(nil), u...),
		V: append([]float64(nil), v...),
		W: append([]float64(nil), w...),
		T: append([]float64(nil), t...),
	}
	if n == 0 {
		return res, nil
	}

	mask := make([]bool, n)
	for _, ch := range [][]float64{res.U, res.V, res.W, res.T} {
		DetectSpikes(ch, mask, params)
	}

	for i, flagged := range mask {
		if !flagged {
			continue
		}
		res.Stats.TotalSpikes++

		prev, next := nearestClean(mask, i)
		for _, ch := range [][]float64{res.U, res.V, res.W, res.T} {
			ch[i] = fill(ch, i, prev, next)
		}
	}
	res.Stats.SpikePercentage = 100 * float64(res.Stats.TotalSpikes) / float64(n)

	return res, nil
}

// DetectSpikes marks confirmed spikes of data in mask. Positions already set
// in mask stay set, so one mask can collect spikes from several channels.
// Only positions covered by both data and mask are evaluated.
//
// The statistics for sample i come from WindowSize/2 samples before i and up
// to WindowSize/2 samples after the candidate run [i, i+MinConsecutive), so
// the run cannot inflate its own threshold. Samples within WindowSize/2 of
// either end are not evaluated. Every sample of a confirmed run is marked.
func DetectSpikes(data []float64, mask []bool, params Params) {
	half := params.WindowSize / 2
	run := params.MinConsecutive
	n := min(len(data), len(mask))

	weights := make([]float64, 2*half+run)
	for k := range weights {
		if k < half || k >= half+run {
			weights[k] = 1
		}
	}

	for i := half; i < n-half && i+run <= n; i++ {
		start := i - half
		end := min(i+run+half, n)
		mean, std := fluxstat.WindowMeanStdDev(data[start:end], weights[:end-start])
		limit := params.Threshold * math.Max(std, stdFloor(mean))

		exceeded := 0
		for j := 0; j < run; j++ {
			if math.Abs(data[i+j]-mean) <= limit {
				break
			}
			exceeded++
		}
		if exceeded < run {
			continue
		}

		for j := 0; j < run; j++ {
			mask[i+j] = true
		}
	}
}

// stdFloor is the smallest window standard deviation treated as real
// variability. Flat or quantized stretches have a window deviation of zero
// or a few ulps, which would otherwise turn rounding noise into spikes.
func stdFloor(mean float64) float64 {
	return 1e-9 * math.Max(1, math.Abs(mean))
}

// nearestClean returns the closest unflagged indices before and after i,
// or -1 when none exists on that side.
func nearestClean(mask []bool, i int) (prev, next int) {
	prev, next = -1, -1
	for k := i - 1; k >= 0; k-- {
		if !mask[k] {
			prev = k
			break
		}
	}
	for k := i + 1; k < len(mask); k++ {
		if !mask[k] {
			next = k
			break
		}
	}
	return prev, next
}

// fill computes the replacement for ch[i]. A flagged run touching one end of
// the series holds the last clean value; a series with no clean samples is
// left unchanged.
func fill(ch []float64, i, prev, next int) float64 {
	switch {
	case prev >= 0 && next >= 0:
		weight := float64(i-prev) / float64(next-prev)
		return ch[prev] + (ch[next]-ch[prev])*weight
	case prev >= 0:
		return ch[prev]
	case next >= 0:
		return ch[next]
	default:
		return ch[i]
	}
}
