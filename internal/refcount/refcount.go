// Package refcount implements the packed reference-count word shared by the
// single-domain and cross-domain ownership cells.
//
// Both counts of an allocation record live in one 64-bit value:
//   - Bottom 32 bits: strong count (owning handles)
//   - Top 32 bits:    weak count (non-owning observers)
//
// Layout: [Weak:32][Strong:32]
//
// Packing both counts into a single word is what makes the record lifecycle
// decisions exact: "payload dies" is the transition of the low half to zero,
// and "record dies" is the transition of the whole word to zero. In the atomic
// variant each decrement observes both halves in one load, so exactly one
// releaser sees the fully-zero word and reclaims the record; there is no
// window in which a strong releaser and a weak releaser can disagree.
//
// Example: 0x0000000200000003 represents weak=2, strong=3.
package refcount

import (
	"strconv"
	"sync/atomic"
)

// Word is a packed pair of reference counts.
// Layout: [Weak:32][Strong:32].
type Word uint64

const (
	// StrongBits is the number of bits allocated for the strong count.
	StrongBits = 32

	// StrongMask extracts the strong count (0x00000000FFFFFFFF).
	StrongMask Word = (1 << StrongBits) - 1

	// WeakUnit is the increment applied to the packed word for one weak
	// reference (1 << StrongBits).
	WeakUnit Word = 1 << StrongBits

	// MaxCount is the largest value either count may reach. Exceeding it
	// would carry into the neighboring half; handle duplication beyond this
	// bound is a contract violation of the caller, not a toolkit state.
	MaxCount = uint32(StrongMask)
)

// Pack builds a Word from individual counts.
func Pack(strong, weak uint32) Word {
	return Word(weak)<<StrongBits | Word(strong)
}

// Strong extracts the strong count from the packed word.
func (w Word) Strong() uint32 {
	return uint32(w & StrongMask)
}

// Weak extracts the weak count from the packed word.
func (w Word) Weak() uint32 {
	return uint32(w >> StrongBits)
}

// Zero reports whether both counts are zero, the condition under which the
// allocation record itself is reclaimed.
func (w Word) Zero() bool {
	return w == 0
}

// String returns a human-readable representation, e.g. "strong=3 weak=2".
// Used in tests and diagnostics only, never on the counting paths.
func (w Word) String() string {
	return "strong=" + strconv.FormatUint(uint64(w.Strong()), 10) +
		" weak=" + strconv.FormatUint(uint64(w.Weak()), 10)
}

// Plain is the single-domain count cell: ordinary integer arithmetic, valid
// only while every handle to the record stays within one sequential context.
// The caller (package rc) documents and owns that restriction; Plain itself
// performs no synchronization whatsoever.
type Plain struct {
	w Word
}

// NewPlain returns a count cell initialized for a freshly constructed record:
// one strong owner, no weak observers.
func NewPlain() *Plain {
	return &Plain{w: Pack(1, 0)}
}

// Load returns the current packed word.
func (p *Plain) Load() Word {
	return p.w
}

// IncStrong adds one strong owner and returns the new strong count.
// Callable only while the caller already holds a strong handle (strong >= 1);
// resurrecting a dead record goes through TryIncStrong instead.
func (p *Plain) IncStrong() uint32 {
	p.w++
	return p.w.Strong()
}

// TryIncStrong attempts to add a strong owner without holding one, the
// upgrade path of a weak handle. It fails when the strong count is already
// zero: the payload is gone and must not come back.
func (p *Plain) TryIncStrong() (uint32, bool) {
	if p.w.Strong() == 0 {
		return 0, false
	}
	p.w++
	return p.w.Strong(), true
}

// DecStrong removes one strong owner and returns both resulting counts.
// The caller destroys the payload when strong reaches 0 and reclaims the
// record when the returned word is fully zero.
func (p *Plain) DecStrong() Word {
	p.w--
	return p.w
}

// IncWeak adds one weak observer and returns the new weak count.
func (p *Plain) IncWeak() uint32 {
	p.w += WeakUnit
	return p.w.Weak()
}

// DecWeak removes one weak observer and returns both resulting counts.
// The caller reclaims the record when the returned word is fully zero.
func (p *Plain) DecWeak() Word {
	p.w -= WeakUnit
	return p.w
}

// Atomic is the cross-domain count cell. All mutations are atomic
// read-modify-write operations on the single packed word; Go's sync/atomic
// provides sequentially consistent ordering, which subsumes the
// release-on-decrement / acquire-on-zero ordering the record lifecycle needs.
type Atomic struct {
	w atomic.Uint64
}

// NewAtomic returns a count cell initialized for a freshly constructed
// record: one strong owner, no weak observers.
func NewAtomic() *Atomic {
	a := &Atomic{}
	a.w.Store(uint64(Pack(1, 0)))
	return a
}

// Load returns the current packed word.
func (a *Atomic) Load() Word {
	return Word(a.w.Load())
}

// IncStrong adds one strong owner and returns the new strong count.
// Callable only while the caller already holds a strong handle: a plain
// atomic add is sufficient because the held handle keeps strong >= 1, so the
// low half cannot carry into the weak half.
func (a *Atomic) IncStrong() uint32 {
	return Word(a.w.Add(1)).Strong()
}

// TryIncStrong is the race-free upgrade path: a compare-and-swap loop that
// refuses to increment once the strong count has been observed at zero.
// Concurrent upgrades and the final strong decrement therefore agree on a
// single outcome: either the upgrade's CAS lands before the count hits zero
// and the payload stays alive, or it observes zero and fails.
func (a *Atomic) TryIncStrong() (uint32, bool) {
	for {
		cur := a.w.Load()
		if Word(cur).Strong() == 0 {
			return 0, false
		}
		if a.w.CompareAndSwap(cur, cur+1) {
			return Word(cur + 1).Strong(), true
		}
	}
}

// DecStrong removes one strong owner and returns both resulting counts in a
// single observation. Exactly one caller sees strong==0 (it destroys the
// payload), and exactly one caller across DecStrong/DecWeak sees the fully
// zero word (it reclaims the record).
func (a *Atomic) DecStrong() Word {
	return Word(a.w.Add(^uint64(0)))
}

// IncWeak adds one weak observer and returns the new weak count.
func (a *Atomic) IncWeak() uint32 {
	return Word(a.w.Add(uint64(WeakUnit))).Weak()
}

// DecWeak removes one weak observer and returns both resulting counts in a
// single observation.
func (a *Atomic) DecWeak() Word {
	return Word(a.w.Add(^uint64(WeakUnit) + 1))
}
