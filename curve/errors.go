package curve

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meenmo/curvefit/utils"
)

var (
	ErrNoHelpers                 = errors.New("no bootstrap helpers given")
	ErrInvalidConfig             = errors.New("invalid curve configuration")
	ErrNotEnoughHelpers          = errors.New("not enough instruments")
	ErrAllExpired                = errors.New("all instruments expired")
	ErrDuplicatePillar           = errors.New("more than one instrument with the same pillar")
	ErrNonIncreasingRelevantDate = errors.New("latest relevant date not after the previous instrument's")
	ErrInvalidQuote              = errors.New("instrument has an invalid quote")
	ErrSolveFailed               = errors.New("bootstrap solve failed")
	ErrNotConverged              = errors.New("convergence not reached")
	ErrLocalFitFailed            = errors.New("unable to fit curve to required accuracy")
	ErrNotMoving                 = errors.New("reference date can only be moved on a moving curve")
	ErrNoInterpolation           = errors.New("interpolation not built")
)

// Error is a bootstrap failure with the context needed to find the
// offending instrument. errors.Is matches both Kind and Err.
type Error struct {
	Kind error
	// Iteration is the 1-based outer pass, 0 when not applicable.
	Iteration int
	// Instrument is the 1-based ordinal of the helper in sorted order.
	Instrument int
	// Pillar is the node index, 0 when not applicable.
	Pillar        int
	PillarDate    time.Time
	MaturityDate  time.Time
	ReferenceDate time.Time
	Achieved      float64
	Required      float64
	Err           error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Iteration > 0 {
		fmt.Fprintf(&b, "iteration %d: ", e.Iteration)
	}
	b.WriteString(e.Kind.Error())
	if e.Instrument > 0 {
		fmt.Fprintf(&b, ": instrument %d", e.Instrument)
	}
	if e.Pillar > 0 {
		fmt.Fprintf(&b, ", pillar %d", e.Pillar)
	}
	if !e.PillarDate.IsZero() {
		fmt.Fprintf(&b, " (pillar date %s", utils.FormatDate(e.PillarDate))
		if !e.MaturityDate.IsZero() {
			fmt.Fprintf(&b, ", maturity %s", utils.FormatDate(e.MaturityDate))
		}
		b.WriteString(")")
	}
	if !e.ReferenceDate.IsZero() {
		fmt.Fprintf(&b, ", reference date %s", utils.FormatDate(e.ReferenceDate))
	}
	if e.Required > 0 {
		fmt.Fprintf(&b, ", achieved %g, required accuracy %g", e.Achieved, e.Required)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
