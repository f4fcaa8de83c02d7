// Package rc implements the single-domain ownership-counted cell: shared
// ownership of one heap value through duplicable strong handles and
// non-owning weak handles.
//
// The cell is the non-atomic sibling of package arc. All handles to one
// record must stay within a single sequential context (one goroutine, or
// externally synchronized hand-off); the counts are plain integers and
// nothing here detects a violation. Callers who need to duplicate, release,
// or upgrade handles from concurrently running goroutines use package arc
// instead; the API is identical.
//
// Lifecycle of the backing record:
//   - The payload is alive exactly while the strong count is > 0.
//   - Dropping the last strong handle destroys the payload in place (the
//     optional drop function runs exactly once, then the slot is zeroed).
//   - The record itself is reclaimed only when the strong AND weak counts
//     are both 0, in whichever order they get there.
//
// Weak handles are the cycle-breaking mechanism: two records may point at
// each other as long as one direction holds only a weak handle, so the
// ownership graph stays acyclic even when the logical graph has cycles.
package rc

import "github.com/kolkov/sharecell/internal/refcount"

// record is the heap-resident allocation record behind a family of handles.
// One record exists per New call; every Clone and Downgrade aliases it.
type record[T any] struct {
	counts *refcount.Plain
	value  T
	drop   func(T)

	// dead marks the payload destroyed (strong count reached 0).
	// The slot is zeroed at the same moment; dead gates Upgrade and Get.
	dead bool

	// freed marks the whole record reclaimed (both counts reached 0).
	// Kept explicit because Go's collector, not this package, returns the
	// memory; tests assert on the flag to pin down the reclamation point.
	freed bool
}

// destroyPayload runs the drop function exactly once and empties the slot.
func (r *record[T]) destroyPayload() {
	if r.drop != nil {
		r.drop(r.value)
	}
	var zero T
	r.value = zero
	r.dead = true
}

// Strong is an owning handle: it holds one unit of the strong count and
// keeps the payload alive. The zero value is not a valid handle; construct
// through New or obtain one via Clone or Weak.Upgrade.
type Strong[T any] struct {
	rec      *record[T]
	released bool
}

// Weak is a non-owning handle: it holds one unit of the weak count only and
// does not keep the payload alive. Its single capability is Upgrade.
type Weak[T any] struct {
	rec      *record[T]
	released bool
}

// New allocates a record holding v with strong=1, weak=0 and returns the
// first strong handle. Construction never fails.
func New[T any](v T) *Strong[T] {
	return NewWithDrop(v, nil)
}

// NewWithDrop is New with a destructor: drop runs exactly once, at the
// moment the last strong handle is released, before the slot is emptied.
// A nil drop is allowed and means "just empty the slot".
func NewWithDrop[T any](v T, drop func(T)) *Strong[T] {
	return &Strong[T]{rec: &record[T]{
		counts: refcount.NewPlain(),
		value:  v,
		drop:   drop,
	}}
}

// Get returns the payload value. Panics if the handle has been released;
// a live strong handle guarantees the payload is alive, so there is no
// error path.
func (s *Strong[T]) Get() T {
	s.check()
	return s.rec.value
}

// Clone duplicates the handle: increments the strong count by one and
// returns a new handle aliasing the same record. No failure path.
func (s *Strong[T]) Clone() *Strong[T] {
	s.check()
	s.rec.counts.IncStrong()
	return &Strong[T]{rec: s.rec}
}

// Downgrade produces a weak handle for the same record: increments the weak
// count by one and leaves the strong count untouched.
func (s *Strong[T]) Downgrade() *Weak[T] {
	s.check()
	s.rec.counts.IncWeak()
	return &Weak[T]{rec: s.rec}
}

// Release drops this handle's unit of the strong count. If the count
// reaches 0 the payload is destroyed on the spot; if the weak count is also
// 0 the record is reclaimed. Release is idempotent per handle: releasing an
// already-released handle is a no-op.
func (s *Strong[T]) Release() {
	if s.released {
		return
	}
	s.released = true
	w := s.rec.counts.DecStrong()
	if w.Strong() == 0 {
		s.rec.destroyPayload()
		if w.Zero() {
			s.rec.freed = true
		}
	}
}

// StrongCount returns the current strong count. Diagnostic accessor.
func (s *Strong[T]) StrongCount() uint32 {
	s.check()
	return s.rec.counts.Load().Strong()
}

// WeakCount returns the current weak count. Diagnostic accessor.
func (s *Strong[T]) WeakCount() uint32 {
	s.check()
	return s.rec.counts.Load().Weak()
}

func (s *Strong[T]) check() {
	if s.released {
		panic("rc: use of released strong handle")
	}
}

// Upgrade attempts to mint a new strong handle from a weak one. It succeeds
// iff the payload is still alive (strong count > 0), incrementing the strong
// count; once the last strong handle has been released it returns (nil,
// false) forever. This is the only fallible operation in the package and a
// normal negative result, not an error condition.
func (w *Weak[T]) Upgrade() (*Strong[T], bool) {
	w.check()
	if _, ok := w.rec.counts.TryIncStrong(); !ok {
		return nil, false
	}
	return &Strong[T]{rec: w.rec}, true
}

// Release drops this handle's unit of the weak count and reclaims the
// record if the strong count is already 0. Idempotent per handle.
func (w *Weak[T]) Release() {
	if w.released {
		return
	}
	w.released = true
	if cw := w.rec.counts.DecWeak(); cw.Zero() {
		w.rec.freed = true
	}
}

// StrongCount returns the current strong count; 0 means Upgrade will fail.
func (w *Weak[T]) StrongCount() uint32 {
	w.check()
	return w.rec.counts.Load().Strong()
}

// WeakCount returns the current weak count.
func (w *Weak[T]) WeakCount() uint32 {
	w.check()
	return w.rec.counts.Load().Weak()
}

func (w *Weak[T]) check() {
	if w.released {
		panic("rc: use of released weak handle")
	}
}
