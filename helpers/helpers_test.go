package helpers_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvefit/calendar"
	"github.com/meenmo/curvefit/helpers"
	"github.com/meenmo/curvefit/quote"
	"github.com/meenmo/curvefit/utils"
)

// flatCurve discounts at a continuously compounded ACT/365F rate.
type flatCurve struct {
	ref  time.Time
	rate float64
}

func (f flatCurve) ReferenceDate() time.Time { return f.ref }

func (f flatCurve) DiscountAt(d time.Time) float64 {
	return math.Exp(-f.rate * utils.YearFraction(f.ref, d, utils.Act365F))
}

var ref = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func TestDeposit_ImpliedQuote(t *testing.T) {
	t.Parallel()

	end := ref.AddDate(0, 0, 90)
	h, err := helpers.NewDepositHelper(quote.NewSimpleQuote(0.03), ref, end, utils.Act365F)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(h.ImpliedQuote()), "unbound helper")

	h.SetTermStructure(flatCurve{ref: ref, rate: 0.03})
	tau := 90.0 / 365
	want := (math.Exp(0.03*tau) - 1) / tau
	assert.InDelta(t, want, h.ImpliedQuote(), 1e-14)
	assert.InDelta(t, 0.03-want, h.QuoteError(), 1e-14)

	assert.Equal(t, ref, h.EarliestDate())
	assert.Equal(t, end, h.MaturityDate())
	assert.Equal(t, end, h.LatestRelevantDate())
	assert.Equal(t, end, h.PillarDate())
}

func TestDeposit_RejectsInvertedDates(t *testing.T) {
	t.Parallel()

	_, err := helpers.NewDepositHelper(quote.NewSimpleQuote(0.01), ref, ref, utils.Act360)
	assert.True(t, errors.Is(err, helpers.ErrInvalidDates))
}

func TestDepositFromTenor_AdjustsDates(t *testing.T) {
	t.Parallel()

	// 2025-03-03 is a Monday; T+2 is Wednesday 2025-03-05.
	h, err := helpers.NewDepositFromTenor(quote.NewSimpleQuote(0.02), ref, 2, "3M", calendar.TARGET, utils.Act360)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), h.EarliestDate())
	assert.Equal(t, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), h.MaturityDate())
}

func TestFRAHelper(t *testing.T) {
	t.Parallel()

	h, err := helpers.NewFRAHelper(quote.NewSimpleQuote(0.025), ref, 3, 6, calendar.NONE, utils.Act360)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), h.EarliestDate())
	assert.Equal(t, time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC), h.MaturityDate())

	_, err = helpers.NewFRAHelper(quote.NewSimpleQuote(0.025), ref, 6, 3, calendar.NONE, utils.Act360)
	assert.True(t, errors.Is(err, helpers.ErrInvalidDates))
}

func TestCustomPillar(t *testing.T) {
	t.Parallel()

	end := ref.AddDate(0, 6, 0)
	mid := ref.AddDate(0, 3, 0)
	h, err := helpers.NewDepositHelper(quote.NewSimpleQuote(0.01), ref, end, utils.Act360,
		helpers.WithCustomPillar(mid))
	require.NoError(t, err)
	assert.Equal(t, mid, h.PillarDate())

	_, err = helpers.NewDepositHelper(quote.NewSimpleQuote(0.01), ref, end, utils.Act360,
		helpers.WithCustomPillar(end.AddDate(0, 0, 1)))
	assert.True(t, errors.Is(err, helpers.ErrInvalidPillar))
}

func TestSwap_PayDelayMovesLatestRelevantDate(t *testing.T) {
	t.Parallel()

	conv := helpers.SwapConvention{
		Calendar:             calendar.NONE,
		FixedFrequencyMonths: 12,
		AccrualDayCount:      utils.Act365F,
		PayDelay:             2,
	}
	h, err := helpers.NewSwapHelper(quote.NewSimpleQuote(0.03), ref, "3Y", conv,
		helpers.WithPillar(helpers.PillarMaturity))
	require.NoError(t, err)

	maturity := time.Date(2028, 3, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, maturity, h.MaturityDate())
	assert.Equal(t, maturity, h.PillarDate())
	assert.Equal(t, time.Date(2028, 3, 7, 0, 0, 0, 0, time.UTC), h.LatestRelevantDate())
	assert.Len(t, h.PaymentDates(), 3)
}

func TestSwap_ImpliedQuoteOnFlatCurve(t *testing.T) {
	t.Parallel()

	conv := helpers.SwapConvention{
		Calendar:             calendar.NONE,
		FixedFrequencyMonths: 12,
		AccrualDayCount:      utils.Act365F,
	}
	h, err := helpers.NewSwapHelper(quote.NewSimpleQuote(0.03), ref, "5Y", conv)
	require.NoError(t, err)

	r := 0.03
	h.SetTermStructure(flatCurve{ref: ref, rate: r})
	// annual coupons on a flat continuous curve par out near e^r - 1
	assert.InDelta(t, math.Exp(r)-1, h.ImpliedQuote(), 2e-4)
	assert.Equal(t, h.LatestRelevantDate(), h.PillarDate())
}

func TestConventionByName(t *testing.T) {
	t.Parallel()

	c, err := helpers.ConventionByName("KRW-CD3M-IRS")
	require.NoError(t, err)
	assert.Equal(t, helpers.KRWCD3MIRS, c)

	h, err := helpers.NewSwapHelper(quote.NewSimpleQuote(0.028), ref, "1Y", c)
	require.NoError(t, err)
	assert.Len(t, h.PaymentDates(), 4)

	_, err = helpers.ConventionByName("GBP-SONIA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ESTR-OIS")
	assert.Len(t, helpers.ConventionNames(), 5)
}
