package solver1d_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvefit/solver1d"
)

type cubic struct{}

func (cubic) Value(x float64) float64      { return x*x*x - 2*x - 5 }
func (cubic) Derivative(x float64) float64 { return 3*x*x - 2 }

// root of x^3 - 2x - 5
const cubicRoot = 2.0945514815423265

func allSolvers() map[string]*solver1d.Solver {
	return map[string]*solver1d.Solver{
		"brent":      solver1d.NewBrent(),
		"newtonSafe": solver1d.NewNewtonSafe(),
		"bisection":  solver1d.NewBisection(),
	}
}

func TestSolve_AutoBracket(t *testing.T) {
	t.Parallel()

	for name, s := range allSolvers() {
		s := s
		t.Run(name, func(t *testing.T) {
			root, err := s.Solve(cubic{}, 1e-12, 1.0, 0.1)
			require.NoError(t, err)
			assert.InDelta(t, cubicRoot, root, 1e-10)
		})
	}
}

func TestSolveBracketed(t *testing.T) {
	t.Parallel()

	for name, s := range allSolvers() {
		s := s
		t.Run(name, func(t *testing.T) {
			root, err := s.SolveBracketed(cubic{}, 1e-12, 2.5, 1.0, 3.0)
			require.NoError(t, err)
			assert.InDelta(t, cubicRoot, root, 1e-10)
		})
	}
}

func TestSolveBracketed_FiniteDifferenceNewton(t *testing.T) {
	t.Parallel()

	f := solver1d.Func(func(x float64) float64 { return math.Exp(x) - 2 })
	root, err := solver1d.NewNewtonSafe().SolveBracketed(f, 1e-14, 0.2, -1, 3)
	require.NoError(t, err)
	assert.InDelta(t, math.Ln2, root, 1e-12)
}

func TestSolve_GuessAlreadyRoot(t *testing.T) {
	t.Parallel()

	s := solver1d.NewBrent()
	f := solver1d.Func(func(x float64) float64 { return x - 3 })
	root, err := s.Solve(f, 1e-10, 3, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 3.0, root)
	assert.Equal(t, 1, s.Evaluations())
}

func TestSolve_BracketExhaustion(t *testing.T) {
	t.Parallel()

	s := solver1d.NewBrent()
	s.SetMaxEvaluations(20)
	noRoot := solver1d.Func(func(x float64) float64 { return x*x + 1 })

	root, err := s.Solve(noRoot, 1e-10, 0.5, 0.1)
	require.Error(t, err)
	assert.Zero(t, root)
	assert.True(t, errors.Is(err, solver1d.ErrBracketNotFound))

	var be *solver1d.BracketError
	require.True(t, errors.As(err, &be))
	assert.Greater(t, be.FXMin, 0.0)
	assert.Greater(t, be.FXMax, 0.0)
	assert.Less(t, be.XMin, be.XMax)
	assert.Greater(t, be.Evaluations, 20)
}

func TestSolve_RespectsBounds(t *testing.T) {
	t.Parallel()

	s := solver1d.NewBrent()
	s.SetLowerBound(0)
	probes := 0
	f := solver1d.Func(func(x float64) float64 {
		probes++
		if x < 0 {
			t.Fatalf("probe %g below lower bound", x)
		}
		return x - 0.05
	})
	root, err := s.Solve(f, 1e-12, 1.0, 0.9)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, root, 1e-10)
	assert.Positive(t, probes)
}

func TestSolveBracketed_NotBracketed(t *testing.T) {
	t.Parallel()

	_, err := solver1d.NewBrent().SolveBracketed(cubic{}, 1e-12, 0.5, 0.0, 1.0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, solver1d.ErrRootNotBracketed))
}

func TestSolveBracketed_InvalidInput(t *testing.T) {
	t.Parallel()

	s := solver1d.NewBrent()

	_, err := s.SolveBracketed(cubic{}, 1e-12, 2.0, 3.0, 1.0)
	assert.True(t, errors.Is(err, solver1d.ErrInvalidBracket), "xMin >= xMax")

	_, err = s.SolveBracketed(cubic{}, 1e-12, 1.0, 1.0, 3.0)
	assert.True(t, errors.Is(err, solver1d.ErrInvalidBracket), "guess on the boundary")

	s.SetLowerBound(1.5)
	_, err = s.SolveBracketed(cubic{}, 1e-12, 2.0, 1.0, 3.0)
	assert.True(t, errors.Is(err, solver1d.ErrInvalidBracket), "xMin below lower bound")

	_, err = s.SolveBracketed(cubic{}, 0, 2.0, 1.6, 3.0)
	assert.True(t, errors.Is(err, solver1d.ErrInvalidAccuracy))
}

func TestSolveBracketed_EndpointShortCircuit(t *testing.T) {
	t.Parallel()

	f := solver1d.Func(func(x float64) float64 { return x - 1 })
	root, err := solver1d.NewNewtonSafe().SolveBracketed(f, 1e-12, 1.5, 1.0, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, root)
}

func TestSolve_NotFinite(t *testing.T) {
	t.Parallel()

	f := solver1d.Func(func(x float64) float64 { return math.NaN() })
	_, err := solver1d.NewBrent().Solve(f, 1e-12, 1, 0.1)
	assert.True(t, errors.Is(err, solver1d.ErrNotFinite))
}

func TestSolve_MaxEvaluationsDuringRefine(t *testing.T) {
	t.Parallel()

	s := solver1d.NewBisection()
	s.SetMaxEvaluations(5)
	_, err := s.SolveBracketed(cubic{}, 1e-15, 2.5, 1.0, 3.0)
	assert.True(t, errors.Is(err, solver1d.ErrMaxEvaluations))
}

func TestSolveBracketed_ResidualWithinAccuracy(t *testing.T) {
	t.Parallel()

	// a steep function: an x-bracket of width accuracy leaves |f| far above it
	steep := solver1d.Func(func(x float64) float64 { return 1e6 * (x - 0.3) })
	for name, s := range allSolvers() {
		s := s
		t.Run(name, func(t *testing.T) {
			root, err := s.SolveBracketed(steep, 1e-8, 0.45, 0.0, 1.0)
			require.NoError(t, err)
			assert.LessOrEqual(t, math.Abs(steep(root)), 1e-8)

			root, err = s.Solve(steep, 1e-8, 0.9, 0.1)
			require.NoError(t, err)
			assert.LessOrEqual(t, math.Abs(steep(root)), 1e-8)
		})
	}
}
