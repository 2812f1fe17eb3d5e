// Package herolock serialises state-mutating operations per hero.
package herolock

import (
	"context"
	"sync"
)

type entry struct {
	ch   chan struct{}
	refs int
}

// Locker is a keyed mutex. Each hero id has its own lock; entries are
// reference counted and removed when no caller holds or waits on them.
type Locker struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// New returns an empty Locker.
func New() *Locker {
	return &Locker{entries: make(map[int64]*entry)}
}

// Lock acquires the lock for heroID, blocking until it is free or ctx is done.
//
// Postcondition: On nil error the caller holds the lock and must call the
// returned unlock function exactly once.
func (l *Locker) Lock(ctx context.Context, heroID int64) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[heroID]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[heroID] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(heroID, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(heroID, e)
		})
	}, nil
}

func (l *Locker) release(heroID int64, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, heroID)
	}
}

// Len returns the number of hero ids currently held or awaited.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
