package curve

import (
	"math"
)

const (
	maxRate = 1.0
	avgRate = 0.05
)

// Traits is the node policy of a curve kind: what the nodes hold, where
// the solver may look for each of them and how they turn into discounts.
type Traits interface {
	Name() string
	InitialValue() float64
	// Guess, MinValueAfter and MaxValueAfter see the node times and values
	// as they currently stand; i >= 1.
	Guess(i int, times, data []float64, validData bool) float64
	MinValueAfter(i int, times, data []float64, validData bool) float64
	MaxValueAfter(i int, times, data []float64, validData bool) float64
	// UpdateGuess writes a trial value for node i.
	UpdateGuess(data []float64, x float64, i int)
	// Discount converts the interpolated value at time t to a discount factor.
	Discount(value, t float64) float64
}

// Discount nodes are discount factors.
type Discount struct {
	// NonNegativeRates caps each node at the previous one.
	NonNegativeRates bool
}

func (Discount) Name() string          { return "discount" }
func (Discount) InitialValue() float64 { return 1 }

func (Discount) Guess(i int, times, data []float64, validData bool) float64 {
	if validData {
		return data[i]
	}
	if i == 1 {
		return 1 / (1 + avgRate*times[1])
	}
	// flat zero rate from the last solved node
	r := -math.Log(data[i-1]) / times[i-1]
	return math.Exp(-r * times[i])
}

func (Discount) MinValueAfter(i int, times, data []float64, validData bool) float64 {
	if validData {
		return minOf(data) / 2
	}
	dt := times[i] - times[i-1]
	return data[i-1] * math.Exp(-maxRate*dt)
}

func (d Discount) MaxValueAfter(i int, times, data []float64, _ bool) float64 {
	if d.NonNegativeRates {
		return data[i-1]
	}
	dt := times[i] - times[i-1]
	return data[i-1] * math.Exp(maxRate*dt)
}

func (Discount) UpdateGuess(data []float64, x float64, i int) { data[i] = x }

func (Discount) Discount(value, _ float64) float64 { return value }

// ZeroYield nodes are continuously compounded zero rates.
type ZeroYield struct{}

func (ZeroYield) Name() string          { return "zero" }
func (ZeroYield) InitialValue() float64 { return avgRate }

func (ZeroYield) Guess(i int, _, data []float64, validData bool) float64 {
	if validData {
		return data[i]
	}
	if i == 1 {
		return avgRate
	}
	return data[i-1]
}

func (ZeroYield) MinValueAfter(_ int, _, data []float64, validData bool) float64 {
	if validData {
		r := minOf(data)
		if r < 0 {
			return r * 2
		}
		return r / 2
	}
	return -maxRate
}

func (ZeroYield) MaxValueAfter(_ int, _, data []float64, validData bool) float64 {
	if validData {
		r := maxOf(data)
		if r < 0 {
			return r / 2
		}
		return r * 2
	}
	return maxRate
}

// UpdateGuess keeps the anchor equal to the first solved rate.
func (ZeroYield) UpdateGuess(data []float64, x float64, i int) {
	data[i] = x
	if i == 1 {
		data[0] = x
	}
}

func (ZeroYield) Discount(value, t float64) float64 { return math.Exp(-value * t) }

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		m = math.Min(m, x)
	}
	return m
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		m = math.Max(m, x)
	}
	return m
}
