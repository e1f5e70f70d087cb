// Package testing provides test doubles for the lock package.
package testing

import (
	"sync"

	"github.com/rileyhilliard/ssv/internal/errors"
	"github.com/rileyhilliard/ssv/internal/lock"
)

// FakeLocker is an in-memory locker that records every acquisition.
type FakeLocker struct {
	mu sync.Mutex

	// HeldBy, when set, makes every Acquire fail as if that holder had the lock.
	HeldBy string

	AcquireCalls []string // operations passed to Acquire
	Releases     int
	held         bool
}

// NewFakeLocker creates a locker that succeeds by default.
func NewFakeLocker() *FakeLocker {
	return &FakeLocker{}
}

// SetContention makes the locker report that holder owns the lock.
func (f *FakeLocker) SetContention(holder string) *FakeLocker {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.HeldBy = holder
	return f
}

// Acquire records operation and hands out the lock unless it is contended.
func (f *FakeLocker) Acquire(operation string) (func() error, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.AcquireCalls = append(f.AcquireCalls, operation)

	if f.HeldBy != "" || f.held {
		holder := f.HeldBy
		if holder == "" {
			holder = "this process"
		}
		return nil, errors.WrapWithCode(lock.ErrLocked, errors.ErrLock,
			"Another ssv is already running (held by "+holder+")",
			"Wait for it to finish and try again")
	}

	f.held = true
	return func() error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.held = false
		f.Releases++
		return nil
	}, nil
}

// Held reports whether a lock is currently out.
func (f *FakeLocker) Held() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.held
}
