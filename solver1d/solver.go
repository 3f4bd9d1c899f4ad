// Package solver1d finds roots of one-dimensional functions.
//
// A Solver owns the bracketing logic shared by every algorithm: it either
// searches outward from a guess until the function changes sign, or validates
// a caller-supplied bracket. The refinement inside the bracket is delegated to
// a Method (Brent, NewtonSafe, Bisection).
package solver1d

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultMaxEvaluations bounds function evaluations per solve.
	DefaultMaxEvaluations = 100
	// DefaultGrowthFactor is the geometric expansion used while bracketing.
	DefaultGrowthFactor = 1.6
)

var (
	// ErrBracketNotFound is returned when auto-bracketing finds no sign change.
	ErrBracketNotFound = errors.New("unable to bracket root")
	// ErrRootNotBracketed is returned when an explicit bracket has no sign change.
	ErrRootNotBracketed = errors.New("root not bracketed")
	// ErrInvalidBracket is returned for inconsistent xMin, xMax, guess or bounds.
	ErrInvalidBracket = errors.New("invalid bracket")
	// ErrMaxEvaluations is returned when a method runs out of evaluations.
	ErrMaxEvaluations = errors.New("maximum number of function evaluations exceeded")
	// ErrNotFinite is returned when the function yields NaN or Inf.
	ErrNotFinite = errors.New("function value is not finite")
	// ErrInvalidAccuracy is returned for a non-positive accuracy.
	ErrInvalidAccuracy = errors.New("accuracy must be positive")
)

// Function is a real function of one variable.
type Function interface {
	Value(x float64) float64
}

// Differentiable is implemented by functions that know their derivative.
type Differentiable interface {
	Derivative(x float64) float64
}

// Func adapts a plain function to Function.
type Func func(float64) float64

func (f Func) Value(x float64) float64 { return f(x) }

// BracketError reports the last bracket tried and the function values there.
type BracketError struct {
	Err         error
	XMin, XMax  float64
	FXMin       float64
	FXMax       float64
	Evaluations int
}

func (e *BracketError) Error() string {
	return fmt.Sprintf("%v in %d function evaluations (last bracket attempt: f[%g,%g] -> [%g,%g])",
		e.Err, e.Evaluations, e.XMin, e.XMax, e.FXMin, e.FXMax)
}

func (e *BracketError) Unwrap() error { return e.Err }

// State is the bracket handed to a Method. Root holds the seed on entry.
type State struct {
	Root, XMin, XMax float64
	FXMin, FXMax     float64
	Evaluations      int
	MaxEvaluations   int
}

// Eval evaluates f at x and counts the evaluation.
func (s *State) Eval(f Function, x float64) (float64, error) {
	fx := f.Value(x)
	s.Evaluations++
	if math.IsNaN(fx) || math.IsInf(fx, 0) {
		return fx, fmt.Errorf("%w: f(%g) = %g", ErrNotFinite, x, fx)
	}
	return fx, nil
}

// Exhausted reports whether the evaluation budget is spent.
func (s *State) Exhausted() bool {
	return s.Evaluations > s.MaxEvaluations
}

// Method refines a validated bracket to a root within accuracy.
type Method interface {
	Name() string
	Refine(f Function, accuracy float64, s *State) (float64, error)
}

// Solver brackets roots and delegates refinement to its Method.
type Solver struct {
	method         Method
	maxEvaluations int
	growthFactor   float64

	lowerBound, upperBound       float64
	lowerEnforced, upperEnforced bool
	lastEvaluations              int
}

// New returns a solver using m with default limits.
func New(m Method) *Solver {
	return &Solver{
		method:         m,
		maxEvaluations: DefaultMaxEvaluations,
		growthFactor:   DefaultGrowthFactor,
	}
}

// NewBrent returns a solver refining with Brent's method.
func NewBrent() *Solver { return New(Brent{}) }

// NewNewtonSafe returns a solver refining with bisection-guarded Newton steps.
func NewNewtonSafe() *Solver { return New(NewtonSafe{}) }

// NewBisection returns a solver refining with plain bisection.
func NewBisection() *Solver { return New(Bisection{}) }

// Method returns the refinement algorithm.
func (s *Solver) Method() Method { return s.method }

// SetMaxEvaluations bounds the number of function evaluations per solve.
func (s *Solver) SetMaxEvaluations(n int) {
	if n > 0 {
		s.maxEvaluations = n
	}
}

// SetGrowthFactor sets the bracket expansion factor (must exceed 1).
func (s *Solver) SetGrowthFactor(g float64) {
	if g > 1 {
		s.growthFactor = g
	}
}

// SetLowerBound restricts probes to x >= lb.
func (s *Solver) SetLowerBound(lb float64) {
	s.lowerBound = lb
	s.lowerEnforced = true
}

// SetUpperBound restricts probes to x <= ub.
func (s *Solver) SetUpperBound(ub float64) {
	s.upperBound = ub
	s.upperEnforced = true
}

// Evaluations returns the evaluation count of the last solve.
func (s *Solver) Evaluations() int { return s.lastEvaluations }

func (s *Solver) enforceBounds(x float64) float64 {
	if s.lowerEnforced && x < s.lowerBound {
		return s.lowerBound
	}
	if s.upperEnforced && x > s.upperBound {
		return s.upperBound
	}
	return x
}

func withinAccuracy(fx, accuracy float64) bool {
	return math.Abs(fx) <= accuracy
}

// Solve searches outward from guess for a sign change, then refines.
//
// The first probe is step away from guess on the side the function points
// to; afterwards the endpoint with the smaller |f| is pushed out by the
// growth factor, alternating sides when both are equal.
func (s *Solver) Solve(f Function, accuracy, guess, step float64) (float64, error) {
	if accuracy <= 0 {
		return 0, ErrInvalidAccuracy
	}
	accuracy = math.Max(accuracy, epsilon)
	st := &State{MaxEvaluations: s.maxEvaluations}
	defer func() { s.lastEvaluations = st.Evaluations }()

	growth := s.growthFactor
	flipflop := -1

	var err error
	st.Root = guess
	if st.FXMax, err = st.Eval(f, st.Root); err != nil {
		return 0, err
	}
	if withinAccuracy(st.FXMax, accuracy) {
		return st.Root, nil
	}
	if st.FXMax > 0 {
		st.XMin = s.enforceBounds(st.Root - step)
		if st.FXMin, err = st.Eval(f, st.XMin); err != nil {
			return 0, err
		}
		st.XMax = st.Root
	} else {
		st.XMin = st.Root
		st.FXMin = st.FXMax
		st.XMax = s.enforceBounds(st.Root + step)
		if st.FXMax, err = st.Eval(f, st.XMax); err != nil {
			return 0, err
		}
	}

	for st.Evaluations <= st.MaxEvaluations {
		if st.FXMin*st.FXMax <= 0 {
			if withinAccuracy(st.FXMin, accuracy) {
				return st.XMin, nil
			}
			if withinAccuracy(st.FXMax, accuracy) {
				return st.XMax, nil
			}
			st.Root = (st.XMax + st.XMin) / 2
			return s.method.Refine(f, accuracy, st)
		}

		var expandLower bool
		switch {
		case math.Abs(st.FXMin) < math.Abs(st.FXMax):
			expandLower = true
		case math.Abs(st.FXMin) > math.Abs(st.FXMax):
		default:
			expandLower = flipflop == -1
			flipflop = -flipflop
		}

		if expandLower {
			st.XMin = s.enforceBounds(st.XMin + growth*(st.XMin-st.XMax))
			if st.FXMin, err = st.Eval(f, st.XMin); err != nil {
				return 0, err
			}
		} else {
			st.XMax = s.enforceBounds(st.XMax + growth*(st.XMax-st.XMin))
			if st.FXMax, err = st.Eval(f, st.XMax); err != nil {
				return 0, err
			}
		}
	}

	return 0, &BracketError{
		Err:         ErrBracketNotFound,
		XMin:        st.XMin,
		XMax:        st.XMax,
		FXMin:       st.FXMin,
		FXMax:       st.FXMax,
		Evaluations: st.Evaluations,
	}
}

// SolveBracketed refines a root inside [xMin, xMax] starting from guess.
func (s *Solver) SolveBracketed(f Function, accuracy, guess, xMin, xMax float64) (float64, error) {
	if accuracy <= 0 {
		return 0, ErrInvalidAccuracy
	}
	accuracy = math.Max(accuracy, epsilon)
	st := &State{MaxEvaluations: s.maxEvaluations, XMin: xMin, XMax: xMax}
	defer func() { s.lastEvaluations = st.Evaluations }()

	if !(xMin < xMax) {
		return 0, fmt.Errorf("%w: xMin (%g) must be less than xMax (%g)", ErrInvalidBracket, xMin, xMax)
	}
	if s.lowerEnforced && xMin < s.lowerBound {
		return 0, fmt.Errorf("%w: xMin (%g) is below the lower bound (%g)", ErrInvalidBracket, xMin, s.lowerBound)
	}
	if s.upperEnforced && xMax > s.upperBound {
		return 0, fmt.Errorf("%w: xMax (%g) is above the upper bound (%g)", ErrInvalidBracket, xMax, s.upperBound)
	}
	if !(guess > xMin && guess < xMax) {
		return 0, fmt.Errorf("%w: guess (%g) is not strictly inside [%g, %g]", ErrInvalidBracket, guess, xMin, xMax)
	}

	var err error
	if st.FXMin, err = st.Eval(f, xMin); err != nil {
		return 0, err
	}
	if withinAccuracy(st.FXMin, accuracy) {
		return xMin, nil
	}
	if st.FXMax, err = st.Eval(f, xMax); err != nil {
		return 0, err
	}
	if withinAccuracy(st.FXMax, accuracy) {
		return xMax, nil
	}
	if st.FXMin*st.FXMax >= 0 {
		return 0, &BracketError{
			Err:         ErrRootNotBracketed,
			XMin:        xMin,
			XMax:        xMax,
			FXMin:       st.FXMin,
			FXMax:       st.FXMax,
			Evaluations: st.Evaluations,
		}
	}

	st.Root = guess
	return s.method.Refine(f, accuracy, st)
}

const epsilon = 2.220446049250313e-16
