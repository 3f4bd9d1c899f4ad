package interpolation

import (
	"gonum.org/v1/gonum/interp"
)

// fitted adapts a gonum predictor to Interpolation. gonum copies the nodes
// on Fit, so Update must be called after every node change.
type fitted struct {
	xs, ys   []float64
	required int
	fp       interp.FittablePredictor
}

func newFitted(xs, ys []float64, required int, fp interp.FittablePredictor) (*fitted, error) {
	f := &fitted{xs: xs, ys: ys, required: required, fp: fp}
	if err := f.Update(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *fitted) Update() error {
	if err := checkNodes(f.xs, f.ys, f.required); err != nil {
		return err
	}
	return f.fp.Fit(f.xs, f.ys)
}

// Value extrapolates flat outside the node range.
func (f *fitted) Value(x float64) float64 {
	return f.fp.Predict(x)
}

// Linear is piecewise linear interpolation of the node values.
type Linear struct{}

func (Linear) Name() string        { return "linear" }
func (Linear) RequiredPoints() int { return 2 }
func (Linear) Global() bool        { return false }

func (l Linear) Interpolate(xs, ys []float64) (Interpolation, error) {
	return newFitted(xs, ys, l.RequiredPoints(), &interp.PiecewiseLinear{})
}

// Cubic is a natural cubic spline. It needs every node, so bootstrapping
// with it requires the convergence loop.
type Cubic struct{}

func (Cubic) Name() string            { return "cubic" }
func (Cubic) RequiredPoints() int     { return 3 }
func (Cubic) Global() bool            { return true }
func (Cubic) DataSizeAdjustment() int { return 0 }

func (c Cubic) Interpolate(xs, ys []float64) (Interpolation, error) {
	return newFitted(xs, ys, c.RequiredPoints(), &interp.NaturalCubic{})
}

// LocalInterpolate fits a spline through the last localisation+1 nodes and
// keeps prev to the left of the window's first node.
func (c Cubic) LocalInterpolate(xs, ys []float64, localisation int, prev Interpolation, _ int) (Interpolation, error) {
	start := len(xs) - 1 - localisation
	if start <= 0 || prev == nil || localisation+1 < c.RequiredPoints() {
		return c.Interpolate(xs, ys)
	}
	tail, err := newFitted(xs[start:], ys[start:], c.RequiredPoints(), &interp.NaturalCubic{})
	if err != nil {
		return nil, err
	}
	return &patched{split: xs[start], head: prev, tail: tail}, nil
}

// patched evaluates head up to split and tail beyond it. Only tail is refit.
type patched struct {
	split      float64
	head, tail Interpolation
}

func (p *patched) Value(x float64) float64 {
	if x <= p.split {
		return p.head.Value(x)
	}
	return p.tail.Value(x)
}

func (p *patched) Update() error { return p.tail.Update() }

// MonotoneCubic is the Fritsch-Butland monotonicity-preserving cubic.
type MonotoneCubic struct{}

func (MonotoneCubic) Name() string        { return "monotone" }
func (MonotoneCubic) RequiredPoints() int { return 3 }
func (MonotoneCubic) Global() bool        { return true }

func (m MonotoneCubic) Interpolate(xs, ys []float64) (Interpolation, error) {
	return newFitted(xs, ys, m.RequiredPoints(), &interp.FritschButland{})
}

// Akima is the Akima spline.
type Akima struct{}

func (Akima) Name() string        { return "akima" }
func (Akima) RequiredPoints() int { return 3 }
func (Akima) Global() bool        { return true }

func (a Akima) Interpolate(xs, ys []float64) (Interpolation, error) {
	return newFitted(xs, ys, a.RequiredPoints(), &interp.AkimaSpline{})
}
