package curve

import (
	"math"

	"github.com/meenmo/curvefit/helpers"
)

// bootstrapError is the 1-D objective for node i: set the node, refit the
// interpolation and return how far the helper is from its quote.
type bootstrapError struct {
	curve  *Curve
	helper helpers.RateHelper
	pillar int
}

func (e *bootstrapError) Value(x float64) float64 {
	c := e.curve
	c.traits.UpdateGuess(c.data, x, e.pillar)
	if err := c.updateInterpolation(); err != nil {
		return math.NaN()
	}
	return e.helper.QuoteError()
}
