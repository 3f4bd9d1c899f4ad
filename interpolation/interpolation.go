// Package interpolation builds curves through node arrays.
//
// Interpolations alias the slices they are built on: after the owner mutates
// a node value it calls Update to recompute whatever the scheme caches.
package interpolation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTooFewPoints is returned when a scheme gets fewer nodes than it needs.
	ErrTooFewPoints = errors.New("not enough points to interpolate")
	// ErrUnsortedNodes is returned when abscissas are not strictly increasing.
	ErrUnsortedNodes = errors.New("abscissas must be strictly increasing")
	// ErrNonPositiveValue is returned by log schemes for values <= 0.
	ErrNonPositiveValue = errors.New("log interpolation requires positive values")
	// ErrUnknownScheme is returned by ByName.
	ErrUnknownScheme = errors.New("unknown interpolation scheme")
)

// Interpolation evaluates a fitted curve.
type Interpolation interface {
	Value(x float64) float64
	// Update refits after the underlying node values changed.
	Update() error
}

// Interpolator builds interpolations for one scheme.
type Interpolator interface {
	Name() string
	// RequiredPoints is the minimum node count, anchor included.
	RequiredPoints() int
	// Global reports whether moving one node can change the curve away from
	// its neighbouring segments.
	Global() bool
	Interpolate(xs, ys []float64) (Interpolation, error)
}

// LocalInterpolator is implemented by schemes that can refit only the
// trailing localisation segments, keeping prev for the earlier part.
type LocalInterpolator interface {
	Interpolator
	LocalInterpolate(xs, ys []float64, localisation int, prev Interpolation, finalSize int) (Interpolation, error)
	// DataSizeAdjustment is the number of leading window nodes the local
	// interpolation pins and the optimizer must leave alone.
	DataSizeAdjustment() int
}

// ByName returns the interpolator for a scheme name as used in config files.
func ByName(name string) (Interpolator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear":
		return Linear{}, nil
	case "loglinear", "log-linear":
		return LogLinear{}, nil
	case "cubic", "naturalcubic":
		return Cubic{}, nil
	case "monotone", "monotonecubic", "fritschbutland":
		return MonotoneCubic{}, nil
	case "akima":
		return Akima{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
}

func checkNodes(xs, ys []float64, required int) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("interpolation: %d abscissas vs %d values", len(xs), len(ys))
	}
	if len(xs) < required {
		return fmt.Errorf("%w: %d provided, %d required", ErrTooFewPoints, len(xs), required)
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return fmt.Errorf("%w: x[%d]=%g, x[%d]=%g", ErrUnsortedNodes, i-1, xs[i-1], i, xs[i])
		}
	}
	return nil
}
