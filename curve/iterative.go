package curve

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/curvefit/solver1d"
	"github.com/meenmo/curvefit/utils"
)

// IterativeBootstrap solves one node per instrument, in pillar order, with a
// 1-D root finder. When a node can move an earlier instrument's price
// (global interpolation, or a pillar before the instrument's last relevant
// date) the passes repeat until no node moves by more than the accuracy.
type IterativeBootstrap struct {
	curve *Curve
	n     int

	initialized  bool
	loopRequired bool
	firstAlive   int
	alive        int
	previousData []float64
	errors       []*bootstrapError
	iterations   int
}

func NewIterativeBootstrap() *IterativeBootstrap {
	return &IterativeBootstrap{}
}

func (b *IterativeBootstrap) Name() string    { return "iterative" }
func (b *IterativeBootstrap) Iterations() int { return b.iterations }

// LoopRequired reports whether the last initialization asked for the
// convergence loop.
func (b *IterativeBootstrap) LoopRequired() bool { return b.loopRequired }

// Setup does not look at quotes or dates yet: they may still change
// before the first calculation.
func (b *IterativeBootstrap) Setup(c *Curve) error {
	b.curve = c
	b.n = len(c.instruments)
	b.initialized = false
	if b.n == 0 {
		return &Error{Kind: ErrNoHelpers}
	}
	if required := c.interpolator.RequiredPoints(); b.n+1 < required {
		return &Error{
			Kind: ErrNotEnoughHelpers,
			Err:  fmt.Errorf("%d provided, %d required", b.n, required-1),
		}
	}
	return nil
}

func (b *IterativeBootstrap) initialize() error {
	c := b.curve
	sort.SliceStable(c.instruments, func(i, j int) bool {
		return c.instruments[i].PillarDate().Before(c.instruments[j].PillarDate())
	})

	firstDate := c.referenceDate
	if last := c.instruments[b.n-1]; !last.PillarDate().After(firstDate) {
		return &Error{Kind: ErrAllExpired, PillarDate: last.PillarDate(), ReferenceDate: firstDate}
	}
	b.firstAlive = 0
	for !c.instruments[b.firstAlive].PillarDate().After(firstDate) {
		b.firstAlive++
	}
	b.alive = b.n - b.firstAlive
	if required := c.interpolator.RequiredPoints(); b.alive+1 < required {
		return &Error{
			Kind:          ErrNotEnoughHelpers,
			ReferenceDate: firstDate,
			Err:           fmt.Errorf("%d alive, %d required", b.alive, required-1),
		}
	}

	dates := make([]time.Time, b.alive+1)
	times := make([]float64, b.alive+1)
	b.errors = make([]*bootstrapError, b.alive+1)
	dates[0] = firstDate
	times[0] = c.TimeFromReference(firstDate)
	b.loopRequired = c.interpolator.Global()

	maxDate := firstDate
	for i, j := 1, b.firstAlive; j < b.n; i, j = i+1, j+1 {
		h := c.instruments[j]
		dates[i] = h.PillarDate()
		times[i] = c.TimeFromReference(dates[i])
		if dates[i-1].Equal(dates[i]) {
			return &Error{Kind: ErrDuplicatePillar, Instrument: j + 1, PillarDate: dates[i]}
		}

		latest := h.LatestRelevantDate()
		if !latest.After(maxDate) {
			return &Error{
				Kind:       ErrNonIncreasingRelevantDate,
				Instrument: j + 1,
				PillarDate: dates[i],
				Err: fmt.Errorf("latest relevant date %s, previous %s",
					utils.FormatDate(latest), utils.FormatDate(maxDate)),
			}
		}
		maxDate = latest

		// the node also prices dates beyond itself
		if !dates[i].Equal(latest) {
			b.loopRequired = true
		}
		b.errors[i] = &bootstrapError{curve: c, helper: h, pillar: i}
	}
	c.dates, c.times = dates, times

	if !c.validCurve || len(c.data) != b.alive+1 {
		c.data = make([]float64, b.alive+1)
		for i := range c.data {
			c.data[i] = c.traits.InitialValue()
		}
		c.validCurve = false
	}
	b.previousData = make([]float64, b.alive+1)
	b.initialized = true
	return nil
}

// Calculate fits the curve. A failure while warm-started from the previous
// solution discards it and fits once more from scratch.
func (b *IterativeBootstrap) Calculate() error {
	for {
		discardWarmStart, err := b.run()
		if !discardWarmStart {
			return err
		}
		b.curve.logger.Warn().Err(err).Msg("warm start failed, refitting from scratch")
		b.curve.observer.WarmStartDiscarded(b.Name())
		b.curve.validCurve = false
		b.initialized = false
	}
}

// run reports whether a failure can be blamed on the warm start.
func (b *IterativeBootstrap) run() (bool, error) {
	c := b.curve
	b.iterations = 0
	if !b.initialized || c.moving {
		if err := b.initialize(); err != nil {
			return false, err
		}
	}

	for j := b.firstAlive; j < b.n; j++ {
		h := c.instruments[j]
		if !h.Quote().IsValid() {
			return false, &Error{
				Kind:         ErrInvalidQuote,
				Instrument:   j + 1,
				PillarDate:   h.PillarDate(),
				MaturityDate: h.MaturityDate(),
			}
		}
		h.SetTermStructure(c)
	}

	accuracy := c.cfg.Accuracy
	nudge := c.cfg.GuessNudge
	firstSolver := b.newSolver(solver1d.Brent{})
	solver := b.newSolver(solver1d.NewtonSafe{})

	validData := c.validCurve
	if validData {
		// times may have moved with the reference date
		if err := c.buildInterpolation(len(c.data)); err != nil {
			return true, err
		}
	}

	for iteration := 0; ; iteration++ {
		b.iterations = iteration + 1
		copy(b.previousData, c.data)

		for i := 1; i <= b.alive; i++ {
			lo := c.traits.MinValueAfter(i, c.times, c.data, validData)
			hi := c.traits.MaxValueAfter(i, c.times, c.data, validData)
			guess := c.traits.Guess(i, c.times, c.data, validData)
			if guess >= hi {
				guess = hi - nudge*(hi-lo)
			} else if guess <= lo {
				guess = lo + nudge*(hi-lo)
			}

			if !validData {
				// only the solved prefix and the candidate node are visible
				if err := c.buildInterpolation(i + 1); err != nil {
					return false, b.solveError(ErrSolveFailed, iteration, i, err)
				}
			}

			s := firstSolver
			if validData {
				s = solver
			}
			root, err := s.SolveBracketed(b.errors[i], accuracy, guess, lo, hi)
			if err != nil {
				return c.validCurve, b.solveError(ErrSolveFailed, iteration, i, err)
			}
			c.traits.UpdateGuess(c.data, root, i)
			if err := c.updateInterpolation(); err != nil {
				return c.validCurve, b.solveError(ErrSolveFailed, iteration, i, err)
			}
		}

		if !b.loopRequired {
			break
		}

		change := 0.0
		for i := 1; i <= b.alive; i++ {
			change = math.Max(change, math.Abs(c.data[i]-b.previousData[i]))
		}
		// later nodes move earlier prices: the pass also has to reprice
		// every alive helper within accuracy
		residual := b.maxQuoteError()
		c.logger.Debug().
			Int("iteration", iteration+1).
			Float64("change", change).
			Float64("residual", residual).
			Msg("bootstrap pass")
		if change <= accuracy && residual <= accuracy {
			break
		}
		if iteration+1 >= c.cfg.MaxIterations {
			return false, &Error{
				Kind:          ErrNotConverged,
				Iteration:     iteration + 1,
				ReferenceDate: c.dates[0],
				Achieved:      math.Max(change, residual),
				Required:      accuracy,
			}
		}
		validData = true
	}

	c.validCurve = true
	return false, nil
}

// maxQuoteError is the largest absolute quote error over the alive helpers.
func (b *IterativeBootstrap) maxQuoteError() float64 {
	worst := 0.0
	for i := 1; i <= b.alive; i++ {
		e := math.Abs(b.errors[i].helper.QuoteError())
		if math.IsNaN(e) {
			return math.Inf(1)
		}
		worst = math.Max(worst, e)
	}
	return worst
}

func (b *IterativeBootstrap) newSolver(m solver1d.Method) *solver1d.Solver {
	s := solver1d.New(m)
	s.SetMaxEvaluations(b.curve.cfg.MaxEvaluations)
	s.SetGrowthFactor(b.curve.cfg.BracketGrowthFactor)
	return s
}

func (b *IterativeBootstrap) solveError(kind error, iteration, pillar int, err error) *Error {
	h := b.errors[pillar].helper
	return &Error{
		Kind:          kind,
		Iteration:     iteration + 1,
		Instrument:    b.firstAlive + pillar,
		Pillar:        pillar,
		PillarDate:    h.PillarDate(),
		MaturityDate:  h.MaturityDate(),
		ReferenceDate: b.curve.dates[0],
		Err:           err,
	}
}
