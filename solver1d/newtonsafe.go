package solver1d

import (
	"fmt"
	"math"
)

// NewtonSafe takes Newton steps and falls back to bisection whenever a step
// would leave the bracket or fails to shrink it fast enough. When the function
// does not implement Differentiable the slope is a finite difference between
// the last two iterates.
type NewtonSafe struct{}

func (NewtonSafe) Name() string { return "newton-safe" }

func (NewtonSafe) Refine(f Function, accuracy float64, s *State) (float64, error) {
	deriv, analytic := f.(Differentiable)

	// orient the search so that f(xl) < 0
	xl, xh := s.XMin, s.XMax
	if s.FXMin > 0 {
		xl, xh = s.XMax, s.XMin
	}

	froot, err := s.Eval(f, s.Root)
	if err != nil {
		return 0, err
	}
	if froot == 0 {
		return s.Root, nil
	}

	var dfroot float64
	if analytic {
		dfroot = deriv.Derivative(s.Root)
	} else if s.XMax-s.Root < s.Root-s.XMin {
		dfroot = (s.FXMax - froot) / (s.XMax - s.Root)
	} else {
		dfroot = (s.FXMin - froot) / (s.XMin - s.Root)
	}

	dx := s.XMax - s.XMin
	dxOld := dx

	for !s.Exhausted() {
		prevRoot, prevF := s.Root, froot

		if dfroot == 0 || ((s.Root-xh)*dfroot-froot)*((s.Root-xl)*dfroot-froot) > 0 ||
			math.Abs(2*froot) > math.Abs(dxOld*dfroot) {
			dxOld = dx
			dx = (xh - xl) / 2
			s.Root = xl + dx
		} else {
			dxOld = dx
			dx = froot / dfroot
			s.Root -= dx
		}

		if froot, err = s.Eval(f, s.Root); err != nil {
			return 0, err
		}
		// the step must be small and f within accuracy; a step that no
		// longer moves the root means machine precision was reached
		if froot == 0 || s.Root == prevRoot ||
			(math.Abs(dx) < accuracy && math.Abs(froot) <= accuracy) {
			return s.Root, nil
		}

		if analytic {
			dfroot = deriv.Derivative(s.Root)
		} else {
			dfroot = (froot - prevF) / (s.Root - prevRoot)
		}

		if froot < 0 {
			xl = s.Root
		} else {
			xh = s.Root
		}
	}

	return 0, fmt.Errorf("%w (%d)", ErrMaxEvaluations, s.MaxEvaluations)
}
