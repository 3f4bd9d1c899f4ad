package curve_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvefit/curve"
	"github.com/meenmo/curvefit/helpers"
	"github.com/meenmo/curvefit/interpolation"
	"github.com/meenmo/curvefit/quote"
)

func TestLocal_LogLinearMatchesIterative(t *testing.T) {
	t.Parallel()

	ends := []int{30, 90, 180, 365, 730}
	rates := []float64{0.01, 0.012, 0.015, 0.017, 0.02}

	hs, _ := depositStrip(t, ends, rates)
	local := newCurve(t, hs, curve.WithBootstrap(curve.NewLocalBootstrap()))
	localNodes, err := local.Nodes()
	require.NoError(t, err)
	assertRepriced(t, local, hs)
	assert.Equal(t, len(ends)-1, local.Bootstrapper().Iterations(), "one window per helper from the second on")

	hs2, _ := depositStrip(t, ends, rates)
	iterative := newCurve(t, hs2)
	iterNodes, err := iterative.Nodes()
	require.NoError(t, err)

	require.Len(t, localNodes, len(iterNodes))
	for i := range iterNodes {
		assert.InDelta(t, iterNodes[i].Value, localNodes[i].Value, 1e-9)
	}
}

func TestLocal_CubicWindows(t *testing.T) {
	t.Parallel()

	hs := mixedStrip(t, helpers.PillarLastRelevant)
	c := newCurve(t, hs,
		curve.WithBootstrap(curve.NewLocalBootstrap()),
		curve.WithInterpolator(interpolation.Cubic{}),
	)
	nodes, err := c.Nodes()
	require.NoError(t, err)
	assert.Len(t, nodes, len(hs)+1)
	assertRepriced(t, c, hs)
	for _, n := range nodes {
		assert.Positive(t, n.Value)
	}
}

func TestLocal_WiderWindow(t *testing.T) {
	t.Parallel()

	hs, _ := depositStrip(t, []int{30, 90, 180, 365}, []float64{0.01, 0.012, 0.015, 0.017})
	c := newCurve(t, hs,
		curve.WithBootstrap(curve.NewLocalBootstrap()),
		curve.WithLocalisation(3),
		curve.WithForcePositive(false),
	)
	require.NoError(t, c.Calculate())
	assert.Equal(t, 2, c.Bootstrapper().Iterations())
	assertRepriced(t, c, hs)
}

func TestLocal_SetupErrors(t *testing.T) {
	t.Parallel()

	hs, _ := depositStrip(t, []int{30, 90}, []float64{0.01, 0.012})
	_, err := curve.New(ref, hs, curve.WithBootstrap(curve.NewLocalBootstrap()), curve.WithLocalisation(3))
	assert.True(t, errors.Is(err, curve.ErrNotEnoughHelpers))
}

func TestLocal_DuplicateMaturity(t *testing.T) {
	t.Parallel()

	hs := []helpers.RateHelper{
		deposit(t, quote.NewSimpleQuote(0.01), ref, days(90)),
		deposit(t, quote.NewSimpleQuote(0.011), days(1), days(90)),
		deposit(t, quote.NewSimpleQuote(0.012), ref, days(180)),
	}
	c := newCurve(t, hs, curve.WithBootstrap(curve.NewLocalBootstrap()))
	assert.True(t, errors.Is(c.Calculate(), curve.ErrDuplicatePillar))
}

func TestLocal_InvalidQuote(t *testing.T) {
	t.Parallel()

	hs := []helpers.RateHelper{
		deposit(t, quote.NewSimpleQuote(0.01), ref, days(90)),
		deposit(t, quote.NewInvalidQuote(), ref, days(180)),
	}
	c := newCurve(t, hs, curve.WithBootstrap(curve.NewLocalBootstrap()))
	err := c.Calculate()
	assert.True(t, errors.Is(err, curve.ErrInvalidQuote))
}

func TestLocal_RepricesWithinConfiguredAccuracy(t *testing.T) {
	t.Parallel()

	for _, acc := range []float64{1e-10, 1e-12} {
		for _, scheme := range []interpolation.Interpolator{interpolation.LogLinear{}, interpolation.Cubic{}} {
			hs := mixedStrip(t, helpers.PillarLastRelevant)
			c := newCurve(t, hs,
				curve.WithBootstrap(curve.NewLocalBootstrap()),
				curve.WithInterpolator(scheme),
				curve.WithAccuracy(acc),
			)
			require.NoError(t, c.Calculate(), "%s at %g", scheme.Name(), acc)
			assertRepriced(t, c, hs)
		}
	}
}
