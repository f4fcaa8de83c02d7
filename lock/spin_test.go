package lock

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

// TestSpinMutualExclusion checks contenders never overlap while spinning.
func TestSpinMutualExclusion(t *testing.T) {
	const goroutines = 4
	const increments = 2000

	m := NewSpinMutex(0)
	var inside atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				g := m.Lock()
				if inside.Add(1) != 1 {
					t.Error("two holders inside the spin critical section")
				}
				v, _ := g.Value()
				*v++
				inside.Add(-1)
				g.Unlock()
			}
		}()
	}
	wg.Wait()

	g := m.Lock()
	defer g.Unlock()
	if v, _ := g.Value(); *v != goroutines*increments {
		t.Errorf("counter = %d, want %d", *v, goroutines*increments)
	}
}

// TestSpinTryLock checks the single-attempt path on held and free states.
func TestSpinTryLock(t *testing.T) {
	m := NewSpinMutex("x")
	g := m.Lock()

	if _, ok := m.TryLock(); ok {
		t.Error("TryLock succeeded on a held spin mutex")
	}
	g.Unlock()

	g2, ok := m.TryLock()
	if !ok {
		t.Fatal("TryLock failed on a free spin mutex")
	}
	g2.Unlock()
}

// TestSpinTaint mirrors the blocking variant's taint behavior: abandoned
// guard taints, acquisition still works, Trust and ClearTaint recover.
func TestSpinTaint(t *testing.T) {
	m := NewSpinMutex(7)

	func() {
		g := m.Lock()
		defer g.Release()
	}()

	if !m.Tainted() {
		t.Fatal("spin mutex not tainted after abandoned guard")
	}

	g, ok := m.TryLock()
	if !ok {
		t.Fatal("tainted spin mutex refused acquisition")
	}
	if _, err := g.Value(); !errors.Is(err, ErrTainted) {
		t.Errorf("Value() = %v, want ErrTainted", err)
	}
	if got := *g.Trust(); got != 7 {
		t.Errorf("Trust() = %d, want 7", got)
	}
	g.Unlock()

	m.ClearTaint()
	if err := m.With(func(v *int) error { *v++; return nil }); err != nil {
		t.Errorf("With after ClearTaint: %v", err)
	}
}

// TestSpinWithPanic checks the scoped form taints on panic and re-panics.
func TestSpinWithPanic(t *testing.T) {
	m := NewSpinMutex(0)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic did not propagate out of With")
			}
		}()
		_ = m.With(func(*int) error { panic("boom") })
	}()

	if !m.Tainted() {
		t.Error("spin mutex not tainted after panic in With")
	}
	if _, ok := m.TryLock(); !ok {
		t.Error("spin mutex left held after panic in With")
	}
}
