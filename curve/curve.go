// Package curve bootstraps term structures from market instruments.
//
// A Curve holds nodes (date, time, value) whose meaning is set by its
// Traits. A Bootstrapper moves the nodes until every helper reprices its
// quote. Curves are lazy: queries run the bootstrap on first use and after
// any quote or reference date change.
package curve

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/meenmo/curvefit/config"
	"github.com/meenmo/curvefit/helpers"
	"github.com/meenmo/curvefit/interpolation"
	"github.com/meenmo/curvefit/quote"
	"github.com/meenmo/curvefit/utils"
)

// Node is one pillar of a fitted curve.
type Node struct {
	Date  time.Time
	Time  float64
	Value float64
}

// Bootstrapper fits the nodes of the curve it is set up with.
type Bootstrapper interface {
	Name() string
	// Setup checks the instrument set against the curve configuration.
	Setup(c *Curve) error
	Calculate() error
	// Iterations is the number of passes (or windows) of the last run.
	Iterations() int
}

// Curve is a term structure under construction. It is not safe for
// concurrent use.
type Curve struct {
	referenceDate time.Time
	moving        bool
	traits        Traits
	interpolator  interpolation.Interpolator
	boot          Bootstrapper
	instruments   []helpers.RateHelper
	cfg           config.Config
	logger        zerolog.Logger
	observer      Observer

	dates  []time.Time
	times  []float64
	data   []float64
	interp interpolation.Interpolation

	calculated bool
	validCurve bool
	lastErr    error
	cancels    []func()
}

// New builds a curve anchored at referenceDate over the given instruments.
// Defaults: Discount traits, log-linear interpolation, iterative bootstrap
// and the active config.GetConfig().
func New(referenceDate time.Time, instruments []helpers.RateHelper, opts ...Option) (*Curve, error) {
	c := &Curve{
		referenceDate: referenceDate,
		traits:        Discount{},
		interpolator:  interpolation.LogLinear{},
		cfg:           config.GetConfig(),
		logger:        zerolog.Nop(),
		observer:      nopObserver{},
	}
	for _, o := range opts {
		o(c)
	}
	if c.boot == nil {
		c.boot = NewIterativeBootstrap()
	}
	if !utils.IsDayCount(c.cfg.DayCount) {
		return nil, fmt.Errorf("curve: unknown day count %q", c.cfg.DayCount)
	}
	if err := c.cfg.ValidateSolver(); err != nil {
		return nil, &Error{Kind: ErrInvalidConfig, Err: err}
	}
	if err := c.SetHelpers(instruments); err != nil {
		return nil, err
	}
	return c, nil
}

// SetHelpers replaces the instrument set. The previous solution is dropped.
func (c *Curve) SetHelpers(instruments []helpers.RateHelper) error {
	c.unsubscribe()
	c.instruments = append([]helpers.RateHelper(nil), instruments...)
	c.validCurve = false
	c.markDirty()
	if err := c.boot.Setup(c); err != nil {
		return err
	}
	for _, h := range c.instruments {
		if obs, ok := h.Quote().(quote.Observable); ok {
			c.cancels = append(c.cancels, obs.Subscribe(c.markDirty))
		}
	}
	return nil
}

// Close stops listening to quote changes.
func (c *Curve) Close() {
	c.unsubscribe()
}

func (c *Curve) unsubscribe() {
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
}

func (c *Curve) markDirty() {
	c.calculated = false
}

// Calculate runs the bootstrap if anything changed since the last
// successful run. On failure the curve stays dirty.
func (c *Curve) Calculate() error {
	if c.calculated {
		return nil
	}
	// set first so that helpers querying the curve mid-fit do not recurse
	c.calculated = true
	start := time.Now()
	err := c.boot.Calculate()
	elapsed := time.Since(start)
	c.observer.BootstrapFinished(c.boot.Name(), c.boot.Iterations(), elapsed, err)
	if err != nil {
		c.calculated = false
		c.lastErr = err
		c.logger.Error().Err(err).Str("bootstrap", c.boot.Name()).Msg("bootstrap failed")
		return err
	}
	c.lastErr = nil
	c.logger.Debug().
		Str("bootstrap", c.boot.Name()).
		Int("iterations", c.boot.Iterations()).
		Int("nodes", len(c.data)).
		Dur("elapsed", elapsed).
		Msg("bootstrap completed")
	return nil
}

// Recalculate forces a new bootstrap run.
func (c *Curve) Recalculate() error {
	c.markDirty()
	return c.Calculate()
}

// LastError is the error of the last failed Calculate, nil after a success.
func (c *Curve) LastError() error { return c.lastErr }

func (c *Curve) ReferenceDate() time.Time { return c.referenceDate }

// SetReferenceDate moves the anchor of a moving curve. The previous
// solution is kept as a warm start.
func (c *Curve) SetReferenceDate(d time.Time) error {
	if !c.moving {
		return ErrNotMoving
	}
	if !d.Equal(c.referenceDate) {
		c.referenceDate = d
		c.markDirty()
	}
	return nil
}

// Moving reports whether the reference date may be shifted.
func (c *Curve) Moving() bool { return c.moving }

// DayCount is the convention of the curve time axis.
func (c *Curve) DayCount() string { return c.cfg.DayCount }

// Traits returns the quantity the nodes hold.
func (c *Curve) Traits() Traits { return c.traits }

// Interpolator returns the scheme used between nodes.
func (c *Curve) Interpolator() interpolation.Interpolator { return c.interpolator }

// Bootstrapper returns the fitting algorithm.
func (c *Curve) Bootstrapper() Bootstrapper { return c.boot }

// Accuracy is the tolerance on quote errors and node changes.
func (c *Curve) Accuracy() float64 { return c.cfg.Accuracy }

// MaxIterations bounds the outer passes of the iterative bootstrap.
func (c *Curve) MaxIterations() int { return c.cfg.MaxIterations }

// Helpers returns the instruments in bootstrap order.
func (c *Curve) Helpers() []helpers.RateHelper {
	return append([]helpers.RateHelper(nil), c.instruments...)
}

// TimeFromReference is the year fraction from the anchor under the curve
// day count.
func (c *Curve) TimeFromReference(d time.Time) float64 {
	return utils.YearFraction(c.referenceDate, d, c.cfg.DayCount)
}

// DiscountAt evaluates the nodes as they currently stand, without
// triggering a calculation. NaN before the first fit.
func (c *Curve) DiscountAt(d time.Time) float64 {
	if c.interp == nil {
		return math.NaN()
	}
	t := c.TimeFromReference(d)
	return c.traits.Discount(c.interp.Value(t), t)
}

// Discount returns the discount factor at d, bootstrapping first if needed.
func (c *Curve) Discount(d time.Time) (float64, error) {
	if err := c.Calculate(); err != nil {
		return 0, err
	}
	return c.DiscountAt(d), nil
}

// ZeroRate returns the continuously compounded zero rate at d.
func (c *Curve) ZeroRate(d time.Time) (float64, error) {
	df, err := c.Discount(d)
	if err != nil {
		return 0, err
	}
	t := c.TimeFromReference(d)
	if t <= 0 {
		// instantaneous rate over the first day
		t = 1.0 / 365
		df = c.traits.Discount(c.interp.Value(t), t)
	}
	return -math.Log(df) / t, nil
}

// Nodes returns the fitted pillars, bootstrapping first if needed.
func (c *Curve) Nodes() ([]Node, error) {
	if err := c.Calculate(); err != nil {
		return nil, err
	}
	nodes := make([]Node, len(c.data))
	for i := range c.data {
		nodes[i] = Node{Date: c.dates[i], Time: c.times[i], Value: c.data[i]}
	}
	return nodes, nil
}

// MaxDate is the last pillar date of the fitted curve.
func (c *Curve) MaxDate() (time.Time, error) {
	if err := c.Calculate(); err != nil {
		return time.Time{}, err
	}
	return c.dates[len(c.dates)-1], nil
}

// buildInterpolation fits the scheme over the first n nodes. Global schemes
// fall back to linear while they cannot be built yet.
func (c *Curve) buildInterpolation(n int) error {
	in, err := c.interpolator.Interpolate(c.times[:n], c.data[:n])
	if err != nil {
		if !c.interpolator.Global() {
			return err
		}
		c.logger.Debug().Err(err).Int("points", n).
			Str("interpolation", c.interpolator.Name()).
			Msg("falling back to linear interpolation")
		if in, err = (interpolation.Linear{}).Interpolate(c.times[:n], c.data[:n]); err != nil {
			return err
		}
	}
	c.interp = in
	return nil
}

func (c *Curve) updateInterpolation() error {
	if c.interp == nil {
		return ErrNoInterpolation
	}
	return c.interp.Update()
}
