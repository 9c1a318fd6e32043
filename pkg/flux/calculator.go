package flux

import (
	"go.uber.org/zap"
)

// Calculator binds Options to a logger for long-running callers such as the
// REST server.
type Calculator struct {
	opts   Options
	logger *zap.SugaredLogger
}

// NewCalculator validates opts and returns a Calculator. A nil logger
// discards output.
func NewCalculator(opts Options, logger *zap.SugaredLogger) (*Calculator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Calculator{opts: opts, logger: logger}, nil
}

// Options returns the calculator's configured options.
func (c *Calculator) Options() Options {
	return c.opts
}

// Compute runs ComputeSensibleHeatFlux with the configured options plus any
// per-call overrides.
func (c *Calculator) Compute(s Series, overrides ...Option) (Result, error) {
	opts := c.opts.With(overrides...)

	res, err := ComputeSensibleHeatFlux(s, opts)
	if err != nil {
		c.logger.Debugf("rejected interval of %d samples: %v", s.Len(), err)
		return Result{}, err
	}

	c.logger.Debugw("computed sensible heat flux",
		"samples", s.Len(),
		"method", opts.RotationMethod.String(),
		"value", res.Value,
		"flags", res.QualityFlags.String(),
	)
	if res.QualityFlags.Degraded() {
		c.logger.Infof("flux interval degraded: %v (%.2f %s)", res.QualityFlags, res.Value, res.Unit)
	}

	return res, nil
}
