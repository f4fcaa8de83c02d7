// Package arc implements the cross-domain ownership-counted cell: the
// atomically counted sibling of package rc, safe to clone, release, and
// upgrade from concurrently running goroutines.
//
// The API mirrors package rc exactly; only the counting machinery differs.
// Each individual handle still belongs to one goroutine at a time: "cross
// domain" means distinct handles to the same record may live on distinct
// goroutines, not that a single handle value may be shared. Clone on your
// own handle and pass the clone.
//
// The delicate operation is Weak.Upgrade racing the final Strong.Release:
// both sides must agree on a single winner for "last owner gone, destroy the
// payload" versus "upgrade observed a live count". The count cell resolves
// this with a compare-and-swap loop that refuses to increment a strong count
// already observed at zero, so a payload is never resurrected and the drop
// function runs exactly once under any interleaving.
package arc

import (
	"sync/atomic"

	"github.com/kolkov/sharecell/internal/refcount"
)

// record is the heap-resident allocation record behind a family of handles.
type record[T any] struct {
	counts *refcount.Atomic
	value  T
	drop   func(T)

	// dead and freed mirror package rc's lifecycle flags. Each is written
	// by exactly one goroutine (the releaser that observed the relevant
	// zero) but may be read from tests and diagnostics on others.
	dead  atomic.Bool
	freed atomic.Bool
}

func (r *record[T]) destroyPayload() {
	if r.drop != nil {
		r.drop(r.value)
	}
	var zero T
	r.value = zero
	r.dead.Store(true)
}

// Strong is an owning handle. See package rc for the handle contract; the
// released flag is per-handle state and not synchronized, so one handle
// value must not be released from two goroutines.
type Strong[T any] struct {
	rec      *record[T]
	released bool
}

// Weak is a non-owning handle supporting Upgrade.
type Weak[T any] struct {
	rec      *record[T]
	released bool
}

// New allocates a record holding v with strong=1, weak=0.
func New[T any](v T) *Strong[T] {
	return NewWithDrop(v, nil)
}

// NewWithDrop is New with a destructor, run exactly once when the last
// strong handle anywhere releases.
func NewWithDrop[T any](v T, drop func(T)) *Strong[T] {
	return &Strong[T]{rec: &record[T]{
		counts: refcount.NewAtomic(),
		value:  v,
		drop:   drop,
	}}
}

// Get returns the payload value. The payload slot is written once at
// construction and destroyed only after every strong handle is gone, so a
// read through a live handle never races the destroyer.
func (s *Strong[T]) Get() T {
	s.check()
	return s.rec.value
}

// Clone duplicates the handle. A plain atomic increment suffices: the
// handle being cloned keeps the count at >= 1 for the duration.
func (s *Strong[T]) Clone() *Strong[T] {
	s.check()
	s.rec.counts.IncStrong()
	return &Strong[T]{rec: s.rec}
}

// Downgrade produces a weak handle for the same record.
func (s *Strong[T]) Downgrade() *Weak[T] {
	s.check()
	s.rec.counts.IncWeak()
	return &Weak[T]{rec: s.rec}
}

// Release drops this handle's unit of the strong count. Exactly one
// releaser across all goroutines observes the 1→0 transition and destroys
// the payload; exactly one releaser (strong or weak) observes the fully
// zero count word and reclaims the record.
func (s *Strong[T]) Release() {
	if s.released {
		return
	}
	s.released = true
	w := s.rec.counts.DecStrong()
	if w.Strong() == 0 {
		s.rec.destroyPayload()
		if w.Zero() {
			s.rec.freed.Store(true)
		}
	}
}

// StrongCount returns a snapshot of the strong count. Between the load and
// any use the count may have moved; diagnostic value only.
func (s *Strong[T]) StrongCount() uint32 {
	s.check()
	return s.rec.counts.Load().Strong()
}

// WeakCount returns a snapshot of the weak count. Diagnostic value only.
func (s *Strong[T]) WeakCount() uint32 {
	s.check()
	return s.rec.counts.Load().Weak()
}

func (s *Strong[T]) check() {
	if s.released {
		panic("arc: use of released strong handle")
	}
}

// Upgrade attempts to mint a new strong handle. Race-free against the final
// Strong.Release: either the internal compare-and-swap lands while the
// strong count is still positive and the payload stays alive, or the zero is
// observed and Upgrade returns (nil, false). Never suspends.
func (w *Weak[T]) Upgrade() (*Strong[T], bool) {
	w.check()
	if _, ok := w.rec.counts.TryIncStrong(); !ok {
		return nil, false
	}
	return &Strong[T]{rec: w.rec}, true
}

// Release drops this handle's unit of the weak count, reclaiming the record
// if it was the last count of either kind.
func (w *Weak[T]) Release() {
	if w.released {
		return
	}
	w.released = true
	if cw := w.rec.counts.DecWeak(); cw.Zero() {
		w.rec.freed.Store(true)
	}
}

// StrongCount returns a snapshot of the strong count; 0 means an Upgrade
// issued now would fail.
func (w *Weak[T]) StrongCount() uint32 {
	w.check()
	return w.rec.counts.Load().Strong()
}

// WeakCount returns a snapshot of the weak count.
func (w *Weak[T]) WeakCount() uint32 {
	w.check()
	return w.rec.counts.Load().Weak()
}

func (w *Weak[T]) check() {
	if w.released {
		panic("arc: use of released weak handle")
	}
}
