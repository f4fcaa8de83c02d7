package lock

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestReadersShareWritersExclude checks N read guards coexist while a write
// guard excludes everything.
func TestReadersShareWritersExclude(t *testing.T) {
	m := NewRWMutex([]int{1, 2, 3})

	r1 := m.RLock()
	r2, ok := m.TryRLock()
	if !ok {
		t.Fatal("second read acquisition failed alongside the first")
	}

	if _, ok := m.TryLock(); ok {
		t.Error("write acquisition succeeded while readers hold the lock")
	}

	r1.Unlock()
	if _, ok := m.TryLock(); ok {
		t.Error("write acquisition succeeded with one reader remaining")
	}
	r2.Unlock()

	w, ok := m.TryLock()
	if !ok {
		t.Fatal("write acquisition failed on a free lock")
	}
	if _, ok := m.TryRLock(); ok {
		t.Error("read acquisition succeeded while a writer holds the lock")
	}
	w.Unlock()
}

// TestWriterBlocksUntilReadersRelease checks Lock suspends behind readers.
func TestWriterBlocksUntilReadersRelease(t *testing.T) {
	m := NewRWMutex(0)
	r := m.RLock()

	acquired := make(chan struct{})
	go func() {
		w := m.Lock()
		close(acquired)
		w.Unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("writer acquired while a reader held the lock")
	case <-time.After(20 * time.Millisecond):
	}

	r.Unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("writer did not acquire after the reader released")
	}
}

// TestConcurrentReadersAndWriters hammers the lock and checks writers are
// serialized and readers only observe fully written states.
func TestConcurrentReadersAndWriters(t *testing.T) {
	const writers = 4
	const readers = 4
	const rounds = 500

	// Payload invariant: both halves always equal.
	type pair struct{ a, b int }
	m := NewRWMutex(pair{})
	var writing atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				_ = m.Update(func(p *pair) error {
					if writing.Add(1) != 1 {
						t.Error("two writers inside the critical section")
					}
					p.a++
					p.b++
					writing.Add(-1)
					return nil
				})
			}
		}()
	}
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				_ = m.View(func(p pair) {
					if p.a != p.b {
						t.Errorf("reader observed torn state: %+v", p)
					}
				})
			}
		}()
	}
	wg.Wait()

	_ = m.View(func(p pair) {
		if p.a != writers*rounds {
			t.Errorf("final counter = %d, want %d", p.a, writers*rounds)
		}
	})
}

// TestWriterPanicTaints checks a panicking writer taints the lock and both
// guard kinds subsequently gate access.
func TestWriterPanicTaints(t *testing.T) {
	m := NewRWMutex(1)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic did not propagate out of Update")
			}
		}()
		_ = m.Update(func(*int) error { panic("boom") })
	}()

	if !m.Tainted() {
		t.Fatal("lock not tainted after writer panic")
	}

	r := m.RLock()
	if !r.Tainted() {
		t.Error("read guard does not observe the taint")
	}
	if _, err := r.Value(); !errors.Is(err, ErrTainted) {
		t.Errorf("read Value() = %v, want ErrTainted", err)
	}
	if got := r.Trust(); got != 1 {
		t.Errorf("read Trust() = %d, want 1", got)
	}
	r.Unlock()

	w := m.Lock()
	if _, err := w.Value(); !errors.Is(err, ErrTainted) {
		t.Errorf("write Value() = %v, want ErrTainted", err)
	}
	*w.Trust() = 1
	w.Unlock()

	m.ClearTaint()
	if err := m.View(func(int) {}); err != nil {
		t.Errorf("View after ClearTaint: %v", err)
	}
}

// TestReaderAbnormalExitDoesNotTaint checks the read path never taints.
func TestReaderAbnormalExitDoesNotTaint(t *testing.T) {
	m := NewRWMutex(0)

	func() {
		defer func() { _ = recover() }()
		r := m.RLock()
		defer r.Unlock()
		panic("reader boom")
	}()

	if m.Tainted() {
		t.Error("reader panic tainted the lock")
	}
	if _, ok := m.TryLock(); !ok {
		t.Error("lock left held after reader panic")
	}
}

// TestAbandonedWriteGuardTaints checks the write backstop mirrors Mutex.
func TestAbandonedWriteGuardTaints(t *testing.T) {
	m := NewRWMutex(0)

	func() {
		w := m.Lock()
		defer w.Release()
	}()

	if !m.Tainted() {
		t.Fatal("lock not tainted after abandoned write guard")
	}
	r, ok := m.TryRLock()
	if !ok {
		t.Error("lock not released by the write backstop")
	} else {
		r.Unlock()
	}
}
