package curve

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/meenmo/curvefit/helpers"
	"github.com/meenmo/curvefit/interpolation"
)

// LocalBootstrap fits the nodes in sliding windows of Localisation
// instruments, minimising their pricing errors jointly. It suits schemes
// where a segment depends on nodes on both sides of it.
type LocalBootstrap struct {
	curve      *Curve
	iterations int
}

func NewLocalBootstrap() *LocalBootstrap {
	return &LocalBootstrap{}
}

func (b *LocalBootstrap) Name() string    { return "local" }
func (b *LocalBootstrap) Iterations() int { return b.iterations }

func (b *LocalBootstrap) Setup(c *Curve) error {
	b.curve = c
	n := len(c.instruments)
	if n == 0 {
		return &Error{Kind: ErrNoHelpers}
	}
	if required := c.interpolator.RequiredPoints(); n+1 < required {
		return &Error{Kind: ErrNotEnoughHelpers, Err: fmt.Errorf("%d provided, %d required", n, required-1)}
	}
	if loc := c.cfg.Localisation; loc < 1 || n < loc {
		return &Error{Kind: ErrNotEnoughHelpers, Err: fmt.Errorf("%d provided, localisation %d", n, loc)}
	}
	return nil
}

func (b *LocalBootstrap) Calculate() error {
	c := b.curve
	b.iterations = 0
	n := len(c.instruments)
	loc := c.cfg.Localisation

	sort.SliceStable(c.instruments, func(i, j int) bool {
		return c.instruments[i].LatestRelevantDate().Before(c.instruments[j].LatestRelevantDate())
	})
	for i := 1; i < n; i++ {
		m1, m2 := c.instruments[i-1].LatestRelevantDate(), c.instruments[i].LatestRelevantDate()
		if m1.Equal(m2) {
			return &Error{Kind: ErrDuplicatePillar, Instrument: i + 1, PillarDate: m2}
		}
	}
	for i, h := range c.instruments {
		if !h.Quote().IsValid() {
			return &Error{
				Kind:         ErrInvalidQuote,
				Instrument:   i + 1,
				PillarDate:   h.LatestRelevantDate(),
				MaturityDate: h.MaturityDate(),
			}
		}
	}
	for _, h := range c.instruments {
		h.SetTermStructure(c)
	}

	warm := c.validCurve && len(c.data) == n+1
	c.validCurve = false
	if !warm {
		c.data = make([]float64, n+1)
		c.data[0] = c.traits.InitialValue()
	}
	c.dates = make([]time.Time, n+1)
	c.times = make([]float64, n+1)
	c.dates[0] = c.referenceDate
	c.times[0] = c.TimeFromReference(c.referenceDate)
	for i, h := range c.instruments {
		c.dates[i+1] = h.LatestRelevantDate()
		c.times[i+1] = c.TimeFromReference(c.dates[i+1])
		if !warm {
			c.data[i+1] = c.data[i]
		}
	}

	adjust := 0
	local, isLocal := c.interpolator.(interpolation.LocalInterpolator)
	if isLocal {
		adjust = local.DataSizeAdjustment()
	}

	var prev interpolation.Interpolation
	for i := loc - 1; i < n; i++ {
		b.iterations++
		if err := b.buildWindow(local, isLocal, i+2, loc, prev); err != nil {
			return &Error{Kind: ErrLocalFitFailed, Instrument: i + 1, Pillar: i + 1, PillarDate: c.dates[i+1], Err: err}
		}
		prev = c.interp

		first := i + 2 - loc + adjust
		start := make([]float64, i+2-first)
		copy(start, c.data[first:i+1])
		if i >= loc {
			start[len(start)-1] = c.traits.Guess(i+1, c.times, c.data, false)
		} else {
			start[len(start)-1] = c.data[0]
		}

		p := &penalty{curve: c, first: first, helpers: c.instruments[i+1-loc : i+1]}
		if err := p.minimize(start); err != nil {
			h := c.instruments[i]
			return &Error{
				Kind:          ErrLocalFitFailed,
				Instrument:    i + 1,
				Pillar:        i + 1,
				PillarDate:    h.LatestRelevantDate(),
				MaturityDate:  h.MaturityDate(),
				ReferenceDate: c.referenceDate,
				Err:           err,
			}
		}
		c.logger.Debug().Int("window", b.iterations).Float64("error", p.absError()).Msg("local window fitted")
	}

	c.validCurve = true
	return nil
}

// buildWindow interpolates the first size nodes, refitting only the tail
// when the scheme supports it.
func (b *LocalBootstrap) buildWindow(local interpolation.LocalInterpolator, isLocal bool, size, loc int, prev interpolation.Interpolation) error {
	c := b.curve
	if !isLocal {
		return c.buildInterpolation(size)
	}
	in, err := local.LocalInterpolate(c.times[:size], c.data[:size], loc, prev, len(c.data))
	if err != nil {
		if !local.Global() {
			return err
		}
		if in, err = (interpolation.Linear{}).Interpolate(c.times[:size], c.data[:size]); err != nil {
			return err
		}
	}
	c.interp = in
	return nil
}

// penalty prices the helpers of one window given trial values for the
// window's unknown nodes.
type penalty struct {
	curve   *Curve
	first   int
	helpers []helpers.RateHelper
}

func (p *penalty) apply(x []float64) bool {
	c := p.curve
	for j, v := range x {
		c.traits.UpdateGuess(c.data, v, p.first+j)
	}
	return c.updateInterpolation() == nil
}

func (p *penalty) residuals(r, x []float64) {
	if !p.apply(x) {
		for k := range r {
			r[k] = math.NaN()
		}
		return
	}
	for k, h := range p.helpers {
		r[k] = h.QuoteError()
	}
}

// maxError prices the window at x and returns the largest absolute error.
func (p *penalty) maxError(x []float64) float64 {
	r := make([]float64, len(p.helpers))
	p.residuals(r, x)
	worst := 0.0
	for _, v := range r {
		if math.IsNaN(v) {
			return math.Inf(1)
		}
		worst = math.Max(worst, math.Abs(v))
	}
	return worst
}

// absError is the sum of absolute pricing errors at the current nodes.
func (p *penalty) absError() float64 {
	sum := 0.0
	for _, h := range p.helpers {
		sum += math.Abs(h.QuoteError())
	}
	return sum
}

// minimize runs a Gauss-Newton flavoured Newton method on the sum of
// squared errors and leaves the curve at the optimum.
func (p *penalty) minimize(start []float64) error {
	c := p.curve
	m, n := len(p.helpers), len(start)
	forcePositive := c.cfg.IsForcePositive()
	accuracy := c.cfg.Accuracy

	r := make([]float64, m)
	jac := mat.NewDense(m, n, nil)
	jacobian := func(x []float64) {
		fd.Jacobian(jac, p.residuals, x, &fd.JacobianSettings{Formula: fd.Central})
		p.residuals(r, x)
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if forcePositive {
				for _, v := range x {
					if v <= 0 {
						return math.Inf(1)
					}
				}
			}
			p.residuals(r, x)
			return sumSquares(r)
		},
		Grad: func(grad, x []float64) {
			jacobian(x)
			for j := 0; j < n; j++ {
				g := 0.0
				for k := 0; k < m; k++ {
					g += jac.At(k, j) * r[k]
				}
				grad[j] = 2 * g
			}
		},
		Hess: func(hess *mat.SymDense, x []float64) {
			jacobian(x)
			hess.SymOuterK(2, jac.T())
		},
	}

	settings := &optimize.Settings{
		// a small gradient does not mean small errors when the window
		// helpers are insensitive to their nodes; residualConverge decides
		GradientThreshold: accuracy * accuracy,
		MajorIterations:   c.cfg.LocalMaxIterations,
		Converger: &residualConverge{
			p:        p,
			accuracy: accuracy,
			stall: optimize.FunctionConverge{
				Absolute:   accuracy * accuracy,
				Iterations: c.cfg.LocalStationaryIterations,
			},
		},
	}
	method := &optimize.Newton{Linesearcher: &optimize.Backtracking{}}

	result, err := optimize.Minimize(problem, start, settings, method)
	if result != nil {
		// leave the nodes at the best point, not the last trial
		p.apply(result.X)
	}
	if err != nil {
		return err
	}
	switch result.Status {
	case optimize.GradientThreshold, optimize.FunctionConvergence, optimize.MethodConverge:
		if worst := p.maxError(result.X); worst > accuracy {
			return fmt.Errorf("optimizer stopped with status %v, largest error %g above accuracy %g",
				result.Status, worst, accuracy)
		}
		return nil
	}
	return fmt.Errorf("optimizer stopped with status %v, error %g", result.Status, p.absError())
}

// residualConverge stops once every window helper reprices within accuracy.
// Until then it only reports convergence when the objective stalls.
type residualConverge struct {
	p        *penalty
	accuracy float64
	stall    optimize.FunctionConverge
}

func (rc *residualConverge) Init(dim int) {
	rc.stall.Init(dim)
}

func (rc *residualConverge) Converged(loc *optimize.Location) optimize.Status {
	if !math.IsInf(loc.F, 1) && rc.p.maxError(loc.X) <= rc.accuracy {
		return optimize.FunctionConvergence
	}
	return rc.stall.Converged(loc)
}

func sumSquares(r []float64) float64 {
	sum := 0.0
	for _, v := range r {
		sum += v * v
	}
	return sum
}
