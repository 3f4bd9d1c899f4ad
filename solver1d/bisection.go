package solver1d

import (
	"fmt"
	"math"
)

// Bisection halves the bracket until it is narrower than the accuracy and
// the better endpoint prices within it.
type Bisection struct{}

func (Bisection) Name() string { return "bisection" }

func (Bisection) Refine(f Function, accuracy float64, s *State) (float64, error) {
	// orient the search so that f > 0 lies at root+dx
	var dx, froot float64
	if s.FXMin < 0 {
		dx = s.XMax - s.XMin
		s.Root, froot = s.XMin, s.FXMin
	} else {
		dx = s.XMin - s.XMax
		s.Root, froot = s.XMax, s.FXMax
	}

	for !s.Exhausted() {
		dx /= 2
		xMid := s.Root + dx
		fMid, err := s.Eval(f, xMid)
		if err != nil {
			return 0, err
		}
		if fMid == 0 {
			return xMid, nil
		}
		if fMid < 0 {
			s.Root, froot = xMid, fMid
		}

		stalled := s.Root+dx/2 == s.Root
		if math.Abs(dx) >= accuracy && !stalled {
			continue
		}
		best, fBest := s.Root, froot
		if math.Abs(fMid) < math.Abs(froot) {
			best, fBest = xMid, fMid
		}
		if math.Abs(fBest) > accuracy && !stalled {
			continue
		}
		if best != xMid {
			// keep f's side effects consistent with the returned root
			if _, err := s.Eval(f, best); err != nil {
				return 0, err
			}
		}
		return best, nil
	}

	return 0, fmt.Errorf("%w (%d)", ErrMaxEvaluations, s.MaxEvaluations)
}
