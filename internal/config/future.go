package config

import (
	"context"
	"sync"
)

// FutureState is the lifecycle state of a Future.
type FutureState int

const (
	Pending FutureState = iota
	Resolved
	Rejected
)

func (s FutureState) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Rejected:
		return "rejected"
	default:
		return "pending"
	}
}

// Future is a deferred configuration value. It settles exactly once, either
// resolved with a value or rejected with an error.
type Future struct {
	once  sync.Once
	done  chan struct{}
	mu    sync.RWMutex
	state FutureState
	value any
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// ResolvedFuture returns a future already resolved with value.
func ResolvedFuture(value any) *Future {
	f := newFuture()
	f.resolve(value)
	return f
}

// RejectedFuture returns a future already rejected with err.
func RejectedFuture(err error) *Future {
	f := newFuture()
	f.reject(err)
	return f
}

func (f *Future) resolve(value any) {
	f.settle(Resolved, value, nil)
}

func (f *Future) reject(err error) {
	f.settle(Rejected, nil, err)
}

func (f *Future) settle(state FutureState, value any, err error) {
	f.once.Do(func() {
		f.mu.Lock()
		f.state, f.value, f.err = state, value, err
		f.mu.Unlock()
		close(f.done)
	})
}

// Done is closed once the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// State returns the current state.
func (f *Future) State() FutureState {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Await blocks until the future settles or ctx is done.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
	default:
		select {
		case <-f.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value, f.err
}
