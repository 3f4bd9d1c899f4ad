package curve

import (
	"github.com/rs/zerolog"

	"github.com/meenmo/curvefit/config"
	"github.com/meenmo/curvefit/interpolation"
)

// Option configures a Curve.
type Option func(*Curve)

// WithTraits sets what the nodes hold; Discount is the default.
func WithTraits(t Traits) Option {
	return func(c *Curve) { c.traits = t }
}

// WithInterpolator sets the scheme between nodes; log-linear is the default.
func WithInterpolator(i interpolation.Interpolator) Option {
	return func(c *Curve) { c.interpolator = i }
}

// WithBootstrap selects the algorithm; the iterative bootstrap is the default.
func WithBootstrap(b Bootstrapper) Option {
	return func(c *Curve) { c.boot = b }
}

// WithConfig replaces every numeric setting at once. Later options still
// override single fields.
func WithConfig(cfg config.Config) Option {
	return func(c *Curve) { c.cfg = cfg }
}

// WithDayCount sets the convention of the curve time axis.
func WithDayCount(dc string) Option {
	return func(c *Curve) { c.cfg.DayCount = dc }
}

// WithAccuracy sets the tolerance on quote errors and node changes.
func WithAccuracy(acc float64) Option {
	return func(c *Curve) { c.cfg.Accuracy = acc }
}

// WithMaxIterations bounds the outer passes of the iterative bootstrap.
func WithMaxIterations(n int) Option {
	return func(c *Curve) { c.cfg.MaxIterations = n }
}

// WithLocalisation sets the window size used by the local bootstrap.
func WithLocalisation(n int) Option {
	return func(c *Curve) { c.cfg.Localisation = n }
}

// WithForcePositive toggles the positivity constraint of the local bootstrap.
func WithForcePositive(b bool) Option {
	return func(c *Curve) { c.cfg.ForcePositive = &b }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Curve) { c.logger = l }
}

// WithObserver receives bootstrap events, e.g. a metrics.Recorder.
func WithObserver(o Observer) Option {
	return func(c *Curve) { c.observer = o }
}

// Moving lets SetReferenceDate shift the anchor between calculations.
func Moving() Option {
	return func(c *Curve) { c.moving = true }
}
