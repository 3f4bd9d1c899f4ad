package helpers

import (
	"fmt"
	"time"

	"github.com/meenmo/curvefit/calendar"
	"github.com/meenmo/curvefit/quote"
	"github.com/meenmo/curvefit/utils"
)

// SwapConvention describes the fixed leg of a single-curve par swap.
type SwapConvention struct {
	Calendar             calendar.CalendarID
	SettlementDays       int
	FixedFrequencyMonths int
	AccrualDayCount      string
	// PayDelay is the lag in business days from accrual end to payment.
	PayDelay int
}

type coupon struct {
	PaymentDate time.Time
	Accrual     float64
}

// SwapHelper quotes the par fixed rate of a swap discounted on the curve
// being built: (DF(start) - DF(maturity)) / sum(alpha_k * DF(pay_k)).
type SwapHelper struct {
	base
	conv    SwapConvention
	coupons []coupon
}

// NewSwapHelper builds a swap of the given tenor spot-starting from ref.
func NewSwapHelper(q quote.Quote, ref time.Time, tenor string, conv SwapConvention, opts ...Option) (*SwapHelper, error) {
	tn, err := utils.ParseTenor(tenor)
	if err != nil {
		return nil, err
	}
	start := calendar.AddBusinessDays(conv.Calendar, ref, conv.SettlementDays)
	if conv.SettlementDays == 0 {
		start = calendar.Adjust(conv.Calendar, ref)
	}
	return NewSwapHelperFromDates(q, start, utils.AddTenor(start, tn), conv, opts...)
}

// NewSwapHelperFromDates builds a swap accruing from start to the unadjusted
// maturity.
func NewSwapHelperFromDates(q quote.Quote, start, maturity time.Time, conv SwapConvention, opts ...Option) (*SwapHelper, error) {
	if conv.FixedFrequencyMonths <= 0 {
		return nil, fmt.Errorf("%w: fixed frequency %d months", ErrInvalidDates, conv.FixedFrequencyMonths)
	}
	if !maturity.After(start) {
		return nil, fmt.Errorf("%w: swap maturity %s not after start %s", ErrInvalidDates,
			utils.FormatDate(maturity), utils.FormatDate(start))
	}
	h := &SwapHelper{conv: conv}
	h.coupons = buildFixedCoupons(start, maturity, conv)

	last := h.coupons[len(h.coupons)-1].PaymentDate
	adjMaturity := calendar.Adjust(conv.Calendar, maturity)
	h.base = base{
		q:        q,
		earliest: calendar.Adjust(conv.Calendar, start),
		maturity: adjMaturity,
		latest:   utils.MaxDate(adjMaturity, last),
	}
	for _, o := range opts {
		o(&h.base)
	}
	if err := h.initPillar(); err != nil {
		return nil, err
	}
	return h, nil
}

// buildFixedCoupons rolls the schedule backward from maturity so coupon
// dates stay aligned to it; a short stub, if any, sits at the front.
func buildFixedCoupons(start, maturity time.Time, conv SwapConvention) []coupon {
	var unadjusted []time.Time
	for current, k := maturity, 1; current.After(start); k++ {
		unadjusted = append([]time.Time{current}, unadjusted...)
		current = utils.AddMonth(maturity, -k*conv.FixedFrequencyMonths)
	}
	unadjusted = append([]time.Time{start}, unadjusted...)

	coupons := make([]coupon, 0, len(unadjusted)-1)
	for i := 0; i < len(unadjusted)-1; i++ {
		accrualStart := calendar.Adjust(conv.Calendar, unadjusted[i])
		accrualEnd := calendar.Adjust(conv.Calendar, unadjusted[i+1])
		payDate := calendar.AddBusinessDays(conv.Calendar, accrualEnd, conv.PayDelay)
		coupons = append(coupons, coupon{
			PaymentDate: payDate,
			Accrual:     utils.YearFraction(accrualStart, accrualEnd, conv.AccrualDayCount),
		})
	}
	return coupons
}

// PaymentDates returns the fixed leg payment dates.
func (h *SwapHelper) PaymentDates() []time.Time {
	out := make([]time.Time, len(h.coupons))
	for i, c := range h.coupons {
		out[i] = c.PaymentDate
	}
	return out
}

func (h *SwapHelper) ImpliedQuote() float64 {
	annuity := 0.0
	for _, c := range h.coupons {
		annuity += c.Accrual * h.discount(c.PaymentDate)
	}
	return (h.discount(h.earliest) - h.discount(h.maturity)) / annuity
}

func (h *SwapHelper) QuoteError() float64 {
	return quoteError(h.q, h.ImpliedQuote())
}

func (h *SwapHelper) String() string {
	return fmt.Sprintf("swap %s-%s", utils.FormatDate(h.earliest), utils.FormatDate(h.maturity))
}
