package curve_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvefit/calendar"
	"github.com/meenmo/curvefit/curve"
	"github.com/meenmo/curvefit/helpers"
	"github.com/meenmo/curvefit/quote"
	"github.com/meenmo/curvefit/utils"
)

// 2025-01-06 is a Monday.
var ref = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func days(n int) time.Time { return ref.AddDate(0, 0, n) }

func deposit(t *testing.T, q quote.Quote, start, end time.Time, opts ...helpers.Option) helpers.RateHelper {
	t.Helper()
	h, err := helpers.NewDepositHelper(q, start, end, utils.Act365F, opts...)
	require.NoError(t, err)
	return h
}

func depositStrip(t *testing.T, ends []int, rates []float64) ([]helpers.RateHelper, []*quote.SimpleQuote) {
	t.Helper()
	hs := make([]helpers.RateHelper, len(ends))
	qs := make([]*quote.SimpleQuote, len(ends))
	for i := range ends {
		qs[i] = quote.NewSimpleQuote(rates[i])
		hs[i] = deposit(t, qs[i], ref, days(ends[i]))
	}
	return hs, qs
}

var swapConv = helpers.SwapConvention{
	Calendar:             calendar.NONE,
	FixedFrequencyMonths: 12,
	AccrualDayCount:      utils.Act365F,
	PayDelay:             2,
}

// mixedStrip is two deposits followed by annual swaps paying two business
// days after accrual end, pillared on maturity.
func mixedStrip(t *testing.T, pillar helpers.Pillar) []helpers.RateHelper {
	t.Helper()
	hs := []helpers.RateHelper{
		deposit(t, quote.NewSimpleQuote(0.030), ref, days(91)),
		deposit(t, quote.NewSimpleQuote(0.031), ref, days(182)),
	}
	for _, s := range []struct {
		tenor string
		rate  float64
	}{{"1Y", 0.032}, {"2Y", 0.033}, {"3Y", 0.034}, {"5Y", 0.036}, {"7Y", 0.037}} {
		h, err := helpers.NewSwapHelper(quote.NewSimpleQuote(s.rate), ref, s.tenor, swapConv, helpers.WithPillar(pillar))
		require.NoError(t, err)
		hs = append(hs, h)
	}
	return hs
}

// assertRepriced checks every helper against the accuracy the curve was
// built with.
func assertRepriced(t *testing.T, c *curve.Curve, hs []helpers.RateHelper) {
	t.Helper()
	tol := c.Accuracy()
	for i, h := range hs {
		assert.LessOrEqual(t, math.Abs(h.QuoteError()), tol, "helper %d (maturity %s)", i, utils.FormatDate(h.MaturityDate()))
	}
}

// countingObserver records bootstrap events.
type countingObserver struct {
	finished  int
	failed    int
	discarded int
	lastIters int
}

func (o *countingObserver) BootstrapFinished(_ string, iterations int, _ time.Duration, err error) {
	o.finished++
	o.lastIters = iterations
	if err != nil {
		o.failed++
	}
}

func (o *countingObserver) WarmStartDiscarded(string) { o.discarded++ }

func newCurve(t *testing.T, hs []helpers.RateHelper, opts ...curve.Option) *curve.Curve {
	t.Helper()
	c, err := curve.New(ref, hs, append([]curve.Option{curve.WithAccuracy(1e-12)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}
