package flux

import (
	"errors"
	"fmt"
)

// Sentinel causes of a ValidationError, for use with errors.Is.
var (
	ErrLengthMismatch   = errors.New("all input series must have the same length")
	ErrTooFewSamples    = errors.New("not enough samples")
	ErrNonFinite        = errors.New("series contains NaN or infinite samples")
	ErrInvalidHeight    = errors.New("measurement height must be positive")
	ErrInvalidRoughness = errors.New("roughness length must be positive and below the measurement height")
	ErrInvalidFrequency = errors.New("sampling frequency must be positive")
	ErrInvalidOptions   = errors.New("invalid options")
)

// ValidationError reports input that cannot be processed. No partial result
// accompanies it.
type ValidationError struct {
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return "flux: " + e.Err.Error()
	}
	return fmt.Sprintf("flux: %v: %s", e.Err, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error, format string, args ...any) error {
	return &ValidationError{Err: err, Detail: fmt.Sprintf(format, args...)}
}
