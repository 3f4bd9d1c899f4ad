package helpers

import (
	"fmt"
	"time"

	"github.com/meenmo/curvefit/calendar"
	"github.com/meenmo/curvefit/quote"
	"github.com/meenmo/curvefit/utils"
)

// DepositHelper quotes a simply compounded rate over [start, end].
type DepositHelper struct {
	base
	dayCount string
	tau      float64
}

// NewDepositHelper builds a deposit over explicit dates.
func NewDepositHelper(q quote.Quote, start, end time.Time, dayCount string, opts ...Option) (*DepositHelper, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: deposit end %s not after start %s", ErrInvalidDates,
			utils.FormatDate(end), utils.FormatDate(start))
	}
	h := &DepositHelper{
		base: base{
			q:        q,
			earliest: start,
			maturity: end,
			latest:   end,
		},
		dayCount: dayCount,
		tau:      utils.YearFraction(start, end, dayCount),
	}
	for _, o := range opts {
		o(&h.base)
	}
	if err := h.initPillar(); err != nil {
		return nil, err
	}
	return h, nil
}

// NewDepositFromTenor starts the deposit settlementDays business days after
// ref and rolls the end date Modified Following.
func NewDepositFromTenor(q quote.Quote, ref time.Time, settlementDays int, tenor string,
	cal calendar.CalendarID, dayCount string, opts ...Option) (*DepositHelper, error) {
	tn, err := utils.ParseTenor(tenor)
	if err != nil {
		return nil, err
	}
	start := calendar.Adjust(cal, ref)
	if settlementDays > 0 {
		start = calendar.AddBusinessDays(cal, ref, settlementDays)
	}
	return NewDepositHelper(q, start, calendar.Advance(cal, start, tn), dayCount, opts...)
}

// NewFRAHelper is a deposit over [ref+m1 months, ref+m2 months], both rolled
// Modified Following.
func NewFRAHelper(q quote.Quote, ref time.Time, m1, m2 int, cal calendar.CalendarID,
	dayCount string, opts ...Option) (*DepositHelper, error) {
	if m1 < 0 || m2 <= m1 {
		return nil, fmt.Errorf("%w: FRA %dx%d", ErrInvalidDates, m1, m2)
	}
	start := calendar.Adjust(cal, utils.AddMonth(ref, m1))
	end := calendar.Adjust(cal, utils.AddMonth(ref, m2))
	return NewDepositHelper(q, start, end, dayCount, opts...)
}

// ImpliedQuote is (DF(start)/DF(end) - 1) / tau.
func (h *DepositHelper) ImpliedQuote() float64 {
	return (h.discount(h.earliest)/h.discount(h.maturity) - 1) / h.tau
}

func (h *DepositHelper) QuoteError() float64 {
	return quoteError(h.q, h.ImpliedQuote())
}

func (h *DepositHelper) String() string {
	return fmt.Sprintf("deposit %s-%s", utils.FormatDate(h.earliest), utils.FormatDate(h.maturity))
}
