// Package quote holds observed market values that rate helpers wrap.
package quote

import (
	"math"
	"sync"
)

// Quote is a market observable.
type Quote interface {
	Value() float64
	IsValid() bool
}

// Observable is implemented by quotes that notify subscribers on change.
type Observable interface {
	// Subscribe registers fn and returns a function that removes it.
	Subscribe(fn func()) (cancel func())
}

// SimpleQuote is a settable quote. A NaN value marks it invalid.
type SimpleQuote struct {
	mu        sync.RWMutex
	value     float64
	observers map[int]func()
	nextID    int
}

// NewSimpleQuote returns a valid quote holding v.
func NewSimpleQuote(v float64) *SimpleQuote {
	return &SimpleQuote{value: v, observers: make(map[int]func())}
}

// NewInvalidQuote returns a quote with no value yet.
func NewInvalidQuote() *SimpleQuote {
	return NewSimpleQuote(math.NaN())
}

func (q *SimpleQuote) Value() float64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.value
}

func (q *SimpleQuote) IsValid() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return !math.IsNaN(q.value)
}

// SetValue stores v and notifies subscribers when the value changed.
func (q *SimpleQuote) SetValue(v float64) {
	q.mu.Lock()
	changed := v != q.value && !(math.IsNaN(v) && math.IsNaN(q.value))
	q.value = v
	fns := q.snapshot()
	q.mu.Unlock()

	if changed {
		for _, fn := range fns {
			fn()
		}
	}
}

// Invalidate clears the value.
func (q *SimpleQuote) Invalidate() {
	q.SetValue(math.NaN())
}

func (q *SimpleQuote) Subscribe(fn func()) func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.observers == nil {
		q.observers = make(map[int]func())
	}
	id := q.nextID
	q.nextID++
	q.observers[id] = fn
	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.observers, id)
	}
}

// snapshot must be called with q.mu held.
func (q *SimpleQuote) snapshot() []func() {
	fns := make([]func(), 0, len(q.observers))
	for _, fn := range q.observers {
		fns = append(fns, fn)
	}
	return fns
}
