// Package feed holds the client-side state the app's screens keep: a loader
// wrapping one data access call and the optimistic bookmark toggle.
package feed

import (
	"context"
	"sync"
)

// Fetcher produces the items a Loader holds.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Snapshot is the observable state of a Loader.
type Snapshot[T any] struct {
	Data    []T
	Err     error
	Loading bool
}

// Loader runs a Fetcher on first activation and on every refresh. Results of
// requests superseded by a later one are discarded.
type Loader[T any] struct {
	fetch Fetcher[T]

	mu       sync.Mutex
	state    Snapshot[T]
	started  bool
	token    uint64
	onChange func(Snapshot[T])
}

// NewLoader returns an idle loader with empty data.
func NewLoader[T any](fetch Fetcher[T]) *Loader[T] {
	if fetch == nil {
		panic("feed: fetcher must not be nil")
	}
	return &Loader[T]{fetch: fetch, state: Snapshot[T]{Data: []T{}}}
}

// OnChange registers fn to receive every applied snapshot. fn runs outside
// the loader lock.
func (l *Loader[T]) OnChange(fn func(Snapshot[T])) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// State returns the current snapshot.
func (l *Loader[T]) State() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Load runs the fetcher if it has never run. Later calls return the current
// snapshot without fetching, including while the first fetch is in flight.
func (l *Loader[T]) Load(ctx context.Context) Snapshot[T] {
	l.mu.Lock()
	if l.started {
		snap := l.snapshotLocked()
		l.mu.Unlock()
		return snap
	}
	return l.runLocked(ctx)
}

// Refresh re-runs the fetcher and applies its result unless a newer request
// was started in the meantime. A failed run keeps the previous data.
func (l *Loader[T]) Refresh(ctx context.Context) Snapshot[T] {
	l.mu.Lock()
	return l.runLocked(ctx)
}

// runLocked starts a request while l.mu is held and releases it before fetching.
func (l *Loader[T]) runLocked(ctx context.Context) Snapshot[T] {
	l.started = true
	l.token++
	token := l.token
	l.state.Loading = true
	l.notifyLocked()

	data, err := l.fetch(ctx)

	l.mu.Lock()
	if token != l.token {
		snap := l.snapshotLocked()
		l.mu.Unlock()
		return snap
	}
	if err != nil {
		l.state.Err = err
	} else {
		if data == nil {
			data = []T{}
		}
		l.state.Data = data
		l.state.Err = nil
	}
	l.state.Loading = false
	return l.notifyLocked()
}

func (l *Loader[T]) snapshotLocked() Snapshot[T] {
	snap := l.state
	snap.Data = append([]T(nil), l.state.Data...)
	if snap.Data == nil {
		snap.Data = []T{}
	}
	return snap
}

// notifyLocked releases the lock and passes the current snapshot to the
// change callback.
func (l *Loader[T]) notifyLocked() Snapshot[T] {
	snap := l.snapshotLocked()
	fn := l.onChange
	l.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
	return snap
}
