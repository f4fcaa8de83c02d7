// Package borrow implements single-domain interior mutability: value cells
// whose mutation is either trivially safe by copying (Cell) or checked at
// access time by a dynamic borrow-state machine (RefCell).
//
// Both types are strictly single-domain: one sequential context, no
// synchronization inside. For cross-goroutine mutation use package lock.
//
// The two cells split the problem the same way the copy/track split usually
// falls out in practice:
//
//   - Cell moves whole values in and out. A copy cannot alias the interior,
//     so there is nothing to track and no error path; callers whose payload
//     is a plain value pay zero overhead and cannot provoke a conflict.
//   - RefCell hands out guards onto the stored value and tracks how many are
//     live. Any number of shared guards may coexist; an exclusive guard
//     coexists with nothing. Requests that the current state cannot grant
//     fail with a conflict error immediately; they never block and never
//     silently alias.
package borrow

// Cell is the copy cell: a payload slot accessed only by moving whole
// values. It has no guards, no state machine, and no failure mode.
//
// T should be a value type (or treated as one); if T contains pointers the
// copies still share the pointees, which is the caller's business.
type Cell[T any] struct {
	value T
}

// NewCell returns a cell holding v.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// Get returns a copy of the current value.
func (c *Cell[T]) Get() T {
	return c.value
}

// Set replaces the current value.
func (c *Cell[T]) Set(v T) {
	c.value = v
}

// Swap replaces the current value and returns the previous one.
func (c *Cell[T]) Swap(v T) T {
	old := c.value
	c.value = v
	return old
}

// Update applies fn to the current value and stores the result, returning
// the stored value.
func (c *Cell[T]) Update(fn func(T) T) T {
	c.value = fn(c.value)
	return c.value
}

// Take moves the value out, leaving the zero value behind.
func (c *Cell[T]) Take() T {
	var zero T
	old := c.value
	c.value = zero
	return old
}
