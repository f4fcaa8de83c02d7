package lock

import "context"

// Mutex is the blocking variant. The lock is a one-token channel semaphore:
// Lock suspends the goroutine in the channel's wait queue until the token is
// available, which keeps waiters starvation-free under bounded contention
// and makes TryLock and LockContext single select statements.
type Mutex[T any] struct {
	sem   chan struct{}
	value T
	taint taintFlag
}

// NewMutex returns an unlocked mutex owning v.
func NewMutex[T any](v T) *Mutex[T] {
	m := &Mutex[T]{sem: make(chan struct{}, 1), value: v}
	m.sem <- struct{}{} // token present = unlocked
	return m
}

// Lock acquires the mutex, suspending the calling goroutine until it is
// free. The wait is unbounded; callers needing a deadline use LockContext.
func (m *Mutex[T]) Lock() *Guard[T] {
	<-m.sem
	return &Guard[T]{m: m, tainted: m.taint.get()}
}

// TryLock attempts to acquire the mutex without suspending. Returns
// (nil, false) if it is currently held.
func (m *Mutex[T]) TryLock() (*Guard[T], bool) {
	select {
	case <-m.sem:
		return &Guard[T]{m: m, tainted: m.taint.get()}, true
	default:
		return nil, false
	}
}

// LockContext acquires the mutex or abandons the wait when ctx is done,
// returning ctx's error. Abandonment leaves no partial lock state: either
// the token was taken and a guard is returned, or nothing changed.
func (m *Mutex[T]) LockContext(ctx context.Context) (*Guard[T], error) {
	select {
	case <-m.sem:
		return &Guard[T]{m: m, tainted: m.taint.get()}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// With runs fn with exclusive access under the scoped discipline: the lock
// is released on every exit path, and a panic inside fn taints the lock
// before re-propagating. If the lock is already tainted With returns
// ErrTainted without running fn.
func (m *Mutex[T]) With(fn func(*T) error) error {
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

// Tainted reports whether the lock currently carries taint.
func (m *Mutex[T]) Tainted() bool {
	return m.taint.get()
}

// ClearTaint removes the taint after the caller has restored the payload.
func (m *Mutex[T]) ClearTaint() {
	m.taint.clear()
}

// TaintOrigin returns the formatted stack of the abnormal release that
// tainted the lock, or "" while the lock is clean.
func (m *Mutex[T]) TaintOrigin() string {
	return m.taint.origin()
}

// Guard is a live hold on a Mutex: the sole capability for reaching its
// payload. One guard belongs to one goroutine.
type Guard[T any] struct {
	m       *Mutex[T]
	tainted bool
	trusted bool
	done    bool
}

// Tainted reports whether the lock was tainted when this guard acquired it.
func (g *Guard[T]) Tainted() bool {
	return g.tainted
}

// Value returns the payload pointer, or ErrTainted if the guard carries
// unacknowledged taint. Panics if the guard was already released.
func (g *Guard[T]) Value() (*T, error) {
	g.check()
	if g.tainted && !g.trusted {
		return nil, ErrTainted
	}
	return &g.m.value, nil
}

// Trust acknowledges the taint and returns the payload pointer anyway.
// The acknowledgment is per-guard; the lock itself stays tainted until
// ClearTaint.
func (g *Guard[T]) Trust() *T {
	g.check()
	g.trusted = true
	return &g.m.value
}

// Unlock releases the mutex normally. Idempotent with Release: whichever
// runs first wins, the other is a no-op.
func (g *Guard[T]) Unlock() {
	if g.done {
		return
	}
	g.done = true
	g.m.sem <- struct{}{}
}

// Release is the deferred backstop. Reached while the guard is still held
// it means the critical section exited without its normal Unlock: the lock
// taints, then unlocks so no waiter deadlocks. After a normal Unlock it
// does nothing.
func (g *Guard[T]) Release() {
	if g.done {
		return
	}
	g.done = true
	g.m.taint.set(1)
	g.m.sem <- struct{}{}
}

func (g *Guard[T]) check() {
	if g.done {
		panic("lock: use of released guard")
	}
}
