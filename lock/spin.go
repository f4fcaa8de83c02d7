package lock

import (
	"runtime"
	"sync/atomic"
)

// spinYieldEvery is the number of failed acquisition attempts between
// scheduler yields. The tight attempts cover the short-hold case the spin
// variant exists for; the periodic Gosched keeps a long hold from starving
// the holder's goroutine off the same P.
const spinYieldEvery = 16

// SpinMutex is the spinning variant: acquisition busy-polls a single
// compare-and-set instead of suspending. Appropriate only for very short
// critical sections with few contenders, since a waiting goroutine burns CPU
// for the whole wait.
type SpinMutex[T any] struct {
	state atomic.Uint32 // 0 free, 1 held
	value T
	taint taintFlag
}

// NewSpinMutex returns an unlocked spin mutex owning v.
func NewSpinMutex[T any](v T) *SpinMutex[T] {
	return &SpinMutex[T]{value: v}
}

// Lock acquires the mutex, spinning until the compare-and-set lands.
func (m *SpinMutex[T]) Lock() *SpinGuard[T] {
	for i := 1; !m.state.CompareAndSwap(0, 1); i++ {
		if i%spinYieldEvery == 0 {
			runtime.Gosched()
		}
	}
	return &SpinGuard[T]{m: m, tainted: m.taint.get()}
}

// TryLock attempts a single compare-and-set. Returns (nil, false) if the
// mutex is currently held.
func (m *SpinMutex[T]) TryLock() (*SpinGuard[T], bool) {
	if !m.state.CompareAndSwap(0, 1) {
		return nil, false
	}
	return &SpinGuard[T]{m: m, tainted: m.taint.get()}, true
}

// With runs fn with exclusive access under the scoped discipline; see
// Mutex.With for the taint contract.
func (m *SpinMutex[T]) With(fn func(*T) error) error {
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
func (m *SpinMutex[T]) Tainted() bool {
	return m.taint.get()
}

// ClearTaint removes the taint after the caller has restored the payload.
func (m *SpinMutex[T]) ClearTaint() {
	m.taint.clear()
}

// TaintOrigin returns the formatted stack of the tainting release, or "".
func (m *SpinMutex[T]) TaintOrigin() string {
	return m.taint.origin()
}

// SpinGuard is a live hold on a SpinMutex. Same contract as Guard.
type SpinGuard[T any] struct {
	m       *SpinMutex[T]
	tainted bool
	trusted bool
	done    bool
}

// Tainted reports whether the lock was tainted when this guard acquired it.
func (g *SpinGuard[T]) Tainted() bool {
	return g.tainted
}

// Value returns the payload pointer, or ErrTainted if the guard carries
// unacknowledged taint. Panics if the guard was already released.
func (g *SpinGuard[T]) Value() (*T, error) {
	g.check()
	if g.tainted && !g.trusted {
		return nil, ErrTainted
	}
	return &g.m.value, nil
}

// Trust acknowledges the taint and returns the payload pointer anyway.
func (g *SpinGuard[T]) Trust() *T {
	g.check()
	g.trusted = true
	return &g.m.value
}

// Unlock releases the mutex normally.
func (g *SpinGuard[T]) Unlock() {
	if g.done {
		return
	}
	g.done = true
	g.m.state.Store(0)
}

// Release is the deferred backstop: reached while still held, it taints and
// then unlocks. After a normal Unlock it does nothing.
func (g *SpinGuard[T]) Release() {
	if g.done {
		return
	}
	g.done = true
	g.m.taint.set(1)
	g.m.state.Store(0)
}

func (g *SpinGuard[T]) check() {
	if g.done {
		panic("lock: use of released spin guard")
	}
}
