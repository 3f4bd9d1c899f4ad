// Package helpers defines the instruments a curve is bootstrapped against.
//
// A RateHelper wraps a market quote and knows how to reprice it off a term
// structure. The bootstrapper binds every helper to the curve under
// construction, moves one node at a time and reads QuoteError back.
package helpers

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/meenmo/curvefit/quote"
	"github.com/meenmo/curvefit/utils"
)

var (
	// ErrInvalidDates is returned when an instrument's dates are inconsistent.
	ErrInvalidDates = errors.New("invalid instrument dates")
	// ErrInvalidPillar is returned when a custom pillar lies outside the instrument.
	ErrInvalidPillar = errors.New("invalid pillar date")
)

// TermStructure is the curve as seen by a helper. DiscountAt reads the
// current node state without triggering a recalculation.
type TermStructure interface {
	ReferenceDate() time.Time
	DiscountAt(d time.Time) float64
}

// RateHelper is one instrument of the bootstrap.
type RateHelper interface {
	Quote() quote.Quote
	EarliestDate() time.Time
	LatestRelevantDate() time.Time
	MaturityDate() time.Time
	// PillarDate is the node date this helper determines.
	PillarDate() time.Time
	ImpliedQuote() float64
	// QuoteError is Quote().Value() - ImpliedQuote().
	QuoteError() float64
	SetTermStructure(ts TermStructure)
}

// Pillar selects which instrument date becomes the curve node.
type Pillar int

const (
	PillarLastRelevant Pillar = iota
	PillarMaturity
	PillarCustom
)

func (p Pillar) String() string {
	switch p {
	case PillarLastRelevant:
		return "last-relevant"
	case PillarMaturity:
		return "maturity"
	case PillarCustom:
		return "custom"
	}
	return fmt.Sprintf("Pillar(%d)", int(p))
}

// Option customises a helper.
type Option func(*base)

// WithPillar picks the maturity or last relevant date as pillar.
func WithPillar(p Pillar) Option {
	return func(b *base) { b.pillarChoice = p }
}

// WithCustomPillar pins the pillar to d, which must lie within
// [EarliestDate, LatestRelevantDate].
func WithCustomPillar(d time.Time) Option {
	return func(b *base) {
		b.pillarChoice = PillarCustom
		b.pillar = d
	}
}

// base carries what every helper shares: the quote, the bound curve and the
// instrument dates.
type base struct {
	q            quote.Quote
	ts           TermStructure
	earliest     time.Time
	maturity     time.Time
	latest       time.Time
	pillar       time.Time
	pillarChoice Pillar
}

func (b *base) Quote() quote.Quote                { return b.q }
func (b *base) EarliestDate() time.Time           { return b.earliest }
func (b *base) LatestRelevantDate() time.Time     { return b.latest }
func (b *base) MaturityDate() time.Time           { return b.maturity }
func (b *base) PillarDate() time.Time             { return b.pillar }
func (b *base) SetTermStructure(ts TermStructure) { b.ts = ts }

func (b *base) initPillar() error {
	switch b.pillarChoice {
	case PillarLastRelevant:
		b.pillar = b.latest
	case PillarMaturity:
		b.pillar = b.maturity
	case PillarCustom:
		if b.pillar.Before(b.earliest) || b.pillar.After(b.latest) {
			return fmt.Errorf("%w: %s outside [%s, %s]", ErrInvalidPillar,
				utils.FormatDate(b.pillar), utils.FormatDate(b.earliest), utils.FormatDate(b.latest))
		}
	default:
		return fmt.Errorf("%w: unknown choice %v", ErrInvalidPillar, b.pillarChoice)
	}
	return nil
}

// discount returns NaN while no curve is bound.
func (b *base) discount(d time.Time) float64 {
	if b.ts == nil {
		return math.NaN()
	}
	return b.ts.DiscountAt(d)
}

func quoteError(q quote.Quote, implied float64) float64 {
	return q.Value() - implied
}
