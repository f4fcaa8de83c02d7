package lock

import "sync"

// RWMutex is the shared/exclusive variant: any number of concurrent read
// holders or exactly one write holder, mutually exclusive, enforced by
// blocking rather than immediate rejection. It is the cross-goroutine
// mirror of the borrow-tracked cell's state machine.
//
// Only write guards taint on abnormal release; a reader cannot have
// corrupted the payload, so read guards release cleanly on every path.
// Read guards still observe existing taint and gate access on it.
type RWMutex[T any] struct {
	mu    sync.RWMutex
	value T
	taint taintFlag
}

// NewRWMutex returns an unlocked read/write mutex owning v.
func NewRWMutex[T any](v T) *RWMutex[T] {
	return &RWMutex[T]{value: v}
}

// Lock acquires exclusive access, suspending until every current holder
// releases.
func (m *RWMutex[T]) Lock() *WGuard[T] {
	m.mu.Lock()
	return &WGuard[T]{m: m, tainted: m.taint.get()}
}

// TryLock attempts exclusive access without suspending.
func (m *RWMutex[T]) TryLock() (*WGuard[T], bool) {
	if !m.mu.TryLock() {
		return nil, false
	}
	return &WGuard[T]{m: m, tainted: m.taint.get()}, true
}

// RLock acquires shared access, suspending while a write holder exists.
func (m *RWMutex[T]) RLock() *RGuard[T] {
	m.mu.RLock()
	return &RGuard[T]{m: m, tainted: m.taint.get()}
}

// TryRLock attempts shared access without suspending.
func (m *RWMutex[T]) TryRLock() (*RGuard[T], bool) {
	if !m.mu.TryRLock() {
		return nil, false
	}
	return &RGuard[T]{m: m, tainted: m.taint.get()}, true
}

// Update runs fn with exclusive access under the scoped discipline; a panic
// inside fn taints the lock and re-propagates. Returns ErrTainted without
// running fn if the lock is already tainted.
func (m *RWMutex[T]) Update(fn func(*T) error) error {
	g := m.Lock()
	if g.tainted {
		g.Unlock()
		return ErrTainted
	}
	defer g.Release()
	err := fn(&m.value)
	g.Unlock()
	return err
}

// View runs fn with shared access under the scoped discipline. Returns
// ErrTainted without running fn if the lock is tainted.
func (m *RWMutex[T]) View(fn func(T)) error {
	g := m.RLock()
	defer g.Unlock()
	if g.tainted {
		return ErrTainted
	}
	fn(m.value)
	return nil
}

// Tainted reports whether the lock currently carries taint.
func (m *RWMutex[T]) Tainted() bool {
	return m.taint.get()
}

// ClearTaint removes the taint after the caller has restored the payload.
func (m *RWMutex[T]) ClearTaint() {
	m.taint.clear()
}

// TaintOrigin returns the formatted stack of the tainting release, or "".
func (m *RWMutex[T]) TaintOrigin() string {
	return m.taint.origin()
}

// WGuard is a live exclusive hold. Same two-phase contract as Guard.
type WGuard[T any] struct {
	m       *RWMutex[T]
	tainted bool
	trusted bool
	done    bool
}

// Tainted reports whether the lock was tainted at acquisition.
func (g *WGuard[T]) Tainted() bool {
	return g.tainted
}

// Value returns the payload pointer, or ErrTainted if the guard carries
// unacknowledged taint. Panics if the guard was already released.
func (g *WGuard[T]) Value() (*T, error) {
	if g.done {
		panic("lock: use of released write guard")
	}
	if g.tainted && !g.trusted {
		return nil, ErrTainted
	}
	return &g.m.value, nil
}

// Trust acknowledges the taint and returns the payload pointer anyway.
func (g *WGuard[T]) Trust() *T {
	if g.done {
		panic("lock: use of released write guard")
	}
	g.trusted = true
	return &g.m.value
}

// Unlock releases the write hold normally.
func (g *WGuard[T]) Unlock() {
	if g.done {
		return
	}
	g.done = true
	g.m.mu.Unlock()
}

// Release is the deferred backstop: reached while still held, it taints and
// then unlocks. After a normal Unlock it does nothing.
func (g *WGuard[T]) Release() {
	if g.done {
		return
	}
	g.done = true
	g.m.taint.set(1)
	g.m.mu.Unlock()
}

// RGuard is a live shared hold. It has no abnormal-release path of its own:
// Unlock and a deferred Unlock are the same operation, and neither taints.
type RGuard[T any] struct {
	m       *RWMutex[T]
	tainted bool
	trusted bool
	done    bool
}

// Tainted reports whether the lock was tainted at acquisition.
func (g *RGuard[T]) Tainted() bool {
	return g.tainted
}

// Value returns a copy of the payload, or ErrTainted if the guard carries
// unacknowledged taint. Panics if the guard was already released.
func (g *RGuard[T]) Value() (T, error) {
	if g.done {
		panic("lock: use of released read guard")
	}
	if g.tainted && !g.trusted {
		var zero T
		return zero, ErrTainted
	}
	return g.m.value, nil
}

// Trust acknowledges the taint and returns a copy of the payload anyway.
func (g *RGuard[T]) Trust() T {
	if g.done {
		panic("lock: use of released read guard")
	}
	g.trusted = true
	return g.m.value
}

// Unlock releases the read hold. Idempotent; safe as a deferred backstop.
func (g *RGuard[T]) Unlock() {
	if g.done {
		return
	}
	g.done = true
	g.m.mu.RUnlock()
}
