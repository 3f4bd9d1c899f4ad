package solver1d

import (
	"fmt"
	"math"
)

// Brent combines bisection, secant and inverse quadratic interpolation.
// The seed in State.Root is ignored; the search starts from the bracket.
type Brent struct{}

func (Brent) Name() string { return "brent" }

func (Brent) Refine(f Function, accuracy float64, s *State) (float64, error) {
	var d, e float64
	var err error

	s.Root = s.XMax
	froot := s.FXMax

	for !s.Exhausted() {
		if (froot > 0 && s.FXMax > 0) || (froot < 0 && s.FXMax < 0) {
			// rename xMin, root, xMax and adjust the step bounds
			s.XMax = s.XMin
			s.FXMax = s.FXMin
			d = s.Root - s.XMin
			e = d
		}
		if math.Abs(s.FXMax) < math.Abs(froot) {
			s.XMin, s.Root, s.XMax = s.Root, s.XMax, s.Root
			s.FXMin, froot, s.FXMax = froot, s.FXMax, froot
		}

		tol := 2*epsilon*math.Abs(s.Root) + 0.5*accuracy
		xMid := (s.XMax - s.Root) / 2
		if froot == 0 {
			return s.Root, nil
		}

		// a bracket narrower than tol is not enough: f itself must be
		// within accuracy, otherwise keep bisecting down to machine precision
		tight := math.Abs(xMid) <= tol
		if tight {
			if math.Abs(froot) <= accuracy || s.Root+xMid == s.Root {
				return s.Root, nil
			}
			d = xMid
			e = d
		} else if math.Abs(e) >= tol && math.Abs(s.FXMin) > math.Abs(froot) {
			var p, q, r float64
			sv := froot / s.FXMin
			if s.XMin == s.XMax {
				// secant
				p = 2 * xMid * sv
				q = 1 - sv
			} else {
				// inverse quadratic
				q = s.FXMin / s.FXMax
				r = froot / s.FXMax
				p = sv * (2*xMid*q*(q-r) - (s.Root-s.XMin)*(r-1))
				q = (q - 1) * (r - 1) * (sv - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			min1 := 3*xMid*q - math.Abs(tol*q)
			min2 := math.Abs(e * q)
			if 2*p < math.Min(min1, min2) {
				e = d
				d = p / q
			} else {
				d = xMid
				e = d
			}
		} else {
			d = xMid
			e = d
		}

		s.XMin = s.Root
		s.FXMin = froot
		if tight || math.Abs(d) > tol {
			s.Root += d
		} else {
			s.Root += math.Copysign(tol, xMid)
		}
		if froot, err = s.Eval(f, s.Root); err != nil {
			return 0, err
		}
	}

	return 0, fmt.Errorf("%w (%d)", ErrMaxEvaluations, s.MaxEvaluations)
}
