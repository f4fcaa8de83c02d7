// Package shared wires the toolkit's one supported nesting: an
// ownership-counted cell whose payload is itself a mutation cell.
//
//   - Cell: rc + borrow.RefCell. Shared ownership with checked mutation,
//     single-domain.
//   - Value: arc + lock.Mutex. Shared ownership with thread-safe mutation.
//   - RWValue: arc + lock.RWMutex. Shared ownership with thread-safe
//     shared/exclusive access.
//
// The ownership layer treats the inner cell as opaque: Clone and Release
// count handles and never inspect the payload. Each wrapper hands the inner
// cell out through Inner for callers who need the full guard API; the
// methods here cover the common scoped paths.
//
// Weak companions (WeakCell, WeakValue, WeakRWValue) are the cycle
// breakers: model "back" edges (parent pointers, registry entries, caches)
// as weak handles, and the ownership graph stays acyclic even when the
// logical graph has cycles.
package shared

import (
	"github.com/kolkov/sharecell/arc"
	"github.com/kolkov/sharecell/borrow"
	"github.com/kolkov/sharecell/lock"
	"github.com/kolkov/sharecell/rc"
)

// Cell is shared ownership of a borrow-tracked cell: the single-domain
// "shared + mutable" handle.
type Cell[T any] struct {
	h *rc.Strong[*borrow.RefCell[T]]
}

// NewCell constructs the record and its inner cell with one owning handle.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{h: rc.New(borrow.NewRefCell(v))}
}

// Clone duplicates the owning handle; both handles alias one inner cell.
func (c *Cell[T]) Clone() *Cell[T] {
	return &Cell[T]{h: c.h.Clone()}
}

// Downgrade produces a non-owning handle to the same inner cell.
func (c *Cell[T]) Downgrade() *WeakCell[T] {
	return &WeakCell[T]{h: c.h.Downgrade()}
}

// Release drops this owning handle. Idempotent.
func (c *Cell[T]) Release() {
	c.h.Release()
}

// Inner returns the borrow-tracked cell for direct guard use.
func (c *Cell[T]) Inner() *borrow.RefCell[T] {
	return c.h.Get()
}

// View runs fn with a scoped shared borrow of the payload.
func (c *Cell[T]) View(fn func(T)) error {
	return c.h.Get().View(fn)
}

// Modify runs fn with a scoped exclusive borrow of the payload.
func (c *Cell[T]) Modify(fn func(T) T) error {
	return c.h.Get().Modify(fn)
}

// StrongCount returns the current owner count.
func (c *Cell[T]) StrongCount() uint32 {
	return c.h.StrongCount()
}

// WeakCell is the non-owning companion of Cell.
type WeakCell[T any] struct {
	h *rc.Weak[*borrow.RefCell[T]]
}

// Upgrade attempts to mint a new owning handle; fails once the last owner
// released.
func (w *WeakCell[T]) Upgrade() (*Cell[T], bool) {
	s, ok := w.h.Upgrade()
	if !ok {
		return nil, false
	}
	return &Cell[T]{h: s}, true
}

// Release drops the weak handle. Idempotent.
func (w *WeakCell[T]) Release() {
	w.h.Release()
}

// Value is shared ownership of a blocking mutex cell: the cross-domain
// "shared + thread-safe mutable" handle. Clone a handle per goroutine.
type Value[T any] struct {
	h *arc.Strong[*lock.Mutex[T]]
}

// NewValue constructs the record and its inner mutex with one owning handle.
func NewValue[T any](v T) *Value[T] {
	return &Value[T]{h: arc.New(lock.NewMutex(v))}
}

// Clone duplicates the owning handle.
func (v *Value[T]) Clone() *Value[T] {
	return &Value[T]{h: v.h.Clone()}
}

// Downgrade produces a non-owning handle to the same inner mutex.
func (v *Value[T]) Downgrade() *WeakValue[T] {
	return &WeakValue[T]{h: v.h.Downgrade()}
}

// Release drops this owning handle. Idempotent.
func (v *Value[T]) Release() {
	v.h.Release()
}

// Inner returns the mutex for direct guard use.
func (v *Value[T]) Inner() *lock.Mutex[T] {
	return v.h.Get()
}

// With runs fn with the payload locked, under the mutex's scoped
// discipline and taint contract.
func (v *Value[T]) With(fn func(*T) error) error {
	return v.h.Get().With(fn)
}

// StrongCount returns a snapshot of the owner count.
func (v *Value[T]) StrongCount() uint32 {
	return v.h.StrongCount()
}

// WeakValue is the non-owning companion of Value.
type WeakValue[T any] struct {
	h *arc.Weak[*lock.Mutex[T]]
}

// Upgrade attempts to mint a new owning handle; race-free against the final
// Release on another goroutine.
func (w *WeakValue[T]) Upgrade() (*Value[T], bool) {
	s, ok := w.h.Upgrade()
	if !ok {
		return nil, false
	}
	return &Value[T]{h: s}, true
}

// Release drops the weak handle. Idempotent.
func (w *WeakValue[T]) Release() {
	w.h.Release()
}

// RWValue is shared ownership of a read/write mutex cell.
type RWValue[T any] struct {
	h *arc.Strong[*lock.RWMutex[T]]
}

// NewRWValue constructs the record and its inner lock with one owning
// handle.
func NewRWValue[T any](v T) *RWValue[T] {
	return &RWValue[T]{h: arc.New(lock.NewRWMutex(v))}
}

// Clone duplicates the owning handle.
func (v *RWValue[T]) Clone() *RWValue[T] {
	return &RWValue[T]{h: v.h.Clone()}
}

// Downgrade produces a non-owning handle to the same inner lock.
func (v *RWValue[T]) Downgrade() *WeakRWValue[T] {
	return &WeakRWValue[T]{h: v.h.Downgrade()}
}

// Release drops this owning handle. Idempotent.
func (v *RWValue[T]) Release() {
	v.h.Release()
}

// Inner returns the read/write mutex for direct guard use.
func (v *RWValue[T]) Inner() *lock.RWMutex[T] {
	return v.h.Get()
}

// Update runs fn with exclusive access to the payload.
func (v *RWValue[T]) Update(fn func(*T) error) error {
	return v.h.Get().Update(fn)
}

// View runs fn with shared access to the payload.
func (v *RWValue[T]) View(fn func(T)) error {
	return v.h.Get().View(fn)
}

// WeakRWValue is the non-owning companion of RWValue.
type WeakRWValue[T any] struct {
	h *arc.Weak[*lock.RWMutex[T]]
}

// Upgrade attempts to mint a new owning handle.
func (w *WeakRWValue[T]) Upgrade() (*RWValue[T], bool) {
	s, ok := w.h.Upgrade()
	if !ok {
		return nil, false
	}
	return &RWValue[T]{h: s}, true
}

// Release drops the weak handle. Idempotent.
func (w *WeakRWValue[T]) Release() {
	w.h.Release()
}
