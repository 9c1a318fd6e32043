// Package rotation aligns sonic anemometer wind vectors with the mean flow.
//
// Two methods are provided: double rotation, which nulls the mean lateral and
// vertical wind of a single averaging period, and planar fit, which derives the
// angles from the least-squares plane of the vertical wind. Degenerate data
// never aborts a flux computation: ApplyCoordinateRotation falls back to the
// unrotated series and reports why through Flags.
package rotation

import (
	"fmt"
	"math"
	"strings"
)

const (
	// VeryLowWindSpeed is the horizontal speed (m/s) below which no rotation
	// is attempted.
	VeryLowWindSpeed = 0.05
	// LowWindSpeed is the horizontal speed (m/s) below which results are
	// flagged but still rotated.
	LowWindSpeed = 0.3
	// MaxRotationAngle is the largest accepted rotation angle in degrees.
	MaxRotationAngle = 45.0
	// SingularDeterminant is the planar-fit normal-matrix determinant below
	// which the fit is rejected.
	SingularDeterminant = 1e-10
)

// Method selects the rotation algorithm.
type Method int

const (
	DoubleRotation Method = iota
	PlanarFit
)

func (m Method) String() string {
	switch m {
	case DoubleRotation:
		return "double_rotation"
	case PlanarFit:
		return "planar_fit"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod accepts the names produced by String plus a few common aliases.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "double_rotation", "double-rotation", "doublerotation", "dr":
		return DoubleRotation, nil
	case "planar_fit", "planar-fit", "planarfit", "pf":
		return PlanarFit, nil
	default:
		return 0, fmt.Errorf("unknown rotation method %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	if m != DoubleRotation && m != PlanarFit {
		return nil, fmt.Errorf("invalid rotation method %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Flags describes the outcome of a rotation.
type Flags uint32

const (
	FlagValid Flags = 1 << iota
	FlagLowWindSpeed
	FlagExtremeRotationAngle
	FlagSingularMatrix
	FlagComplexTerrain

	FlagNone Flags = 0
)

// Has reports whether all bits of f2 are set in f.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

func (f Flags) String() string {
	if f == FlagNone {
		return "None"
	}
	names := []struct {
		flag Flags
		name string
	}{
		{FlagValid, "Valid"},
		{FlagLowWindSpeed, "LowWindSpeed"},
		{FlagExtremeRotationAngle, "ExtremeRotationAngle"},
		{FlagSingularMatrix, "SingularMatrix"},
		{FlagComplexTerrain, "ComplexTerrain"},
	}
	var parts []string
	for _, n := range names {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Reason classifies a failed rotation.
type Reason int

const (
	ReasonExtremeAngle Reason = iota + 1
	ReasonSingularMatrix
)

// Flag maps the failure category onto its quality flag.
func (r Reason) Flag() Flags {
	switch r {
	case ReasonExtremeAngle:
		return FlagExtremeRotationAngle
	case ReasonSingularMatrix:
		return FlagSingularMatrix
	default:
		return FlagNone
	}
}

// Error is returned by DoubleRotate and PlanarFitRotate when the data cannot
// be rotated. Angles are in degrees.
type Error struct {
	Reason      Reason
	Alpha, Beta float64
	Determinant float64
}

func (e *Error) Error() string {
	switch e.Reason {
	case ReasonExtremeAngle:
		return fmt.Sprintf("extreme rotation angle: alpha=%.1f° beta=%.1f°", e.Alpha, e.Beta)
	case ReasonSingularMatrix:
		return fmt.Sprintf("singular matrix in planar fit: det=%g", e.Determinant)
	default:
		return "rotation failed"
	}
}

// Means holds the period means of the three wind components.
type Means struct {
	U, V, W float64
}

// HorizontalSpeed returns the magnitude of the mean horizontal wind vector.
func (m Means) HorizontalSpeed() float64 {
	return math.Hypot(m.U, m.V)
}

// Rotated is the output of a successful rotation. The slices are newly
// allocated. Angles are in degrees.
type Rotated struct {
	U, V, W []float64

	Alpha, Beta float64
	// Plane is set by the planar fit only.
	Plane *Plane
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
