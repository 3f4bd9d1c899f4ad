package interpolation

import (
	"fmt"
	"math"
	"sort"
)

// LogLinear interpolates log(y) linearly, i.e. piecewise flat forward rates
// on a discount curve. Outside the node range the boundary segment is
// extended, so extrapolation keeps the last forward rate.
type LogLinear struct{}

func (LogLinear) Name() string        { return "loglinear" }
func (LogLinear) RequiredPoints() int { return 2 }
func (LogLinear) Global() bool        { return false }

func (l LogLinear) Interpolate(xs, ys []float64) (Interpolation, error) {
	ll := &logLinear{xs: xs, ys: ys}
	if err := ll.Update(); err != nil {
		return nil, err
	}
	return ll, nil
}

type logLinear struct {
	xs, ys []float64
}

func (l *logLinear) Update() error {
	if err := checkNodes(l.xs, l.ys, 2); err != nil {
		return err
	}
	for i, y := range l.ys {
		if !(y > 0) {
			return fmt.Errorf("%w: y[%d]=%g", ErrNonPositiveValue, i, y)
		}
	}
	return nil
}

// Value reads the nodes directly, so it reflects node changes even before
// Update validates them.
func (l *logLinear) Value(x float64) float64 {
	i1, i2 := bracketOrBoundary(l.xs, x)
	y1, y2 := l.ys[i1], l.ys[i2]
	t1, t2 := l.xs[i1], l.xs[i2]
	if t2 == t1 {
		return y1
	}
	forwardRate := math.Log(y1/y2) / (t2 - t1)
	return y1 * math.Exp(-forwardRate*(x-t1))
}

// bracketOrBoundary returns indices of two adjacent nodes that bracket x.
// If x is outside the range, returns the nearest boundary pair.
func bracketOrBoundary(xs []float64, x float64) (int, int) {
	// first index with xs[i] >= x
	idx := sort.SearchFloat64s(xs, x)
	if idx <= 0 {
		return 0, 1
	}
	if idx >= len(xs) {
		return len(xs) - 2, len(xs) - 1
	}
	return idx - 1, idx
}
