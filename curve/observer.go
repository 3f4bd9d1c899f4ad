package curve

import "time"

// Observer receives bootstrap lifecycle events.
type Observer interface {
	BootstrapFinished(algorithm string, iterations int, elapsed time.Duration, err error)
	// WarmStartDiscarded is called when a fit from the previous solution
	// failed and the bootstrap restarts from scratch.
	WarmStartDiscarded(algorithm string)
}

type nopObserver struct{}

func (nopObserver) BootstrapFinished(string, int, time.Duration, error) {}
func (nopObserver) WarmStartDiscarded(string)                           {}
