package borrow

import (
	"errors"
	"fmt"
)

// Borrow conflict errors. Both specific sentinels match ErrConflict under
// errors.Is, so callers can test for "any conflict" or for the exact kind.
var (
	// ErrConflict is the base class of every denied borrow request.
	ErrConflict = errors.New("borrow conflict")

	// ErrAlreadyBorrowed is returned by TryBorrowMut while any guard,
	// shared or exclusive, is outstanding.
	ErrAlreadyBorrowed = fmt.Errorf("%w: already borrowed", ErrConflict)

	// ErrExclusivelyBorrowed is returned by TryBorrow while an exclusive
	// guard is outstanding.
	ErrExclusivelyBorrowed = fmt.Errorf("%w: already exclusively borrowed", ErrConflict)
)

// exclusiveFlag marks the borrow flag's exclusive state. Any positive flag
// value is the count of live shared guards; zero is unborrowed.
const exclusiveFlag = -1

// RefCell is the borrow-tracked cell. Its flag field is the whole state
// machine:
//
//	0            unborrowed
//	n > 0        n shared guards live
//	exclusiveFlag  one exclusive guard live
//
// Transitions happen only in TryBorrow, TryBorrowMut, and guard Release;
// a request off the legal graph is rejected with a conflict error and the
// state is left untouched.
type RefCell[T any] struct {
	value T
	flag  int
}

// NewRefCell returns an unborrowed cell holding v.
func NewRefCell[T any](v T) *RefCell[T] {
	return &RefCell[T]{value: v}
}

// TryBorrow requests shared access. Succeeds while no exclusive guard is
// live, incrementing the shared count; fails with ErrExclusivelyBorrowed
// otherwise. Never blocks.
func (c *RefCell[T]) TryBorrow() (*Ref[T], error) {
	if c.flag == exclusiveFlag {
		return nil, ErrExclusivelyBorrowed
	}
	c.flag++
	return &Ref[T]{cell: c}, nil
}

// TryBorrowMut requests exclusive access. Succeeds only from the unborrowed
// state; fails with ErrAlreadyBorrowed while any guard is live. Never
// blocks.
func (c *RefCell[T]) TryBorrowMut() (*RefMut[T], error) {
	if c.flag != 0 {
		return nil, ErrAlreadyBorrowed
	}
	c.flag = exclusiveFlag
	return &RefMut[T]{cell: c}, nil
}

// Borrowed reports whether any guard is currently live.
func (c *RefCell[T]) Borrowed() bool {
	return c.flag != 0
}

// View runs fn with shared access under a scoped borrow: the guard is
// released on every exit path, including a panic inside fn. Returns a
// conflict error without running fn if the borrow cannot be granted.
func (c *RefCell[T]) View(fn func(T)) error {
	ref, err := c.TryBorrow()
	if err != nil {
		return err
	}
	defer ref.Release()
	fn(ref.Get())
	return nil
}

// Modify runs fn with exclusive access under a scoped borrow, storing fn's
// result back into the cell. The guard is released on every exit path,
// including a panic inside fn (the cell then still holds the value from
// before the panic-interrupted call completed its store).
func (c *RefCell[T]) Modify(fn func(T) T) error {
	mut, err := c.TryBorrowMut()
	if err != nil {
		return err
	}
	defer mut.Release()
	mut.Set(fn(mut.Get()))
	return nil
}

// Ref is a live shared guard. Access through a released guard panics;
// releasing twice is a no-op.
type Ref[T any] struct {
	cell     *RefCell[T]
	released bool
}

// Get returns a copy of the guarded value.
func (r *Ref[T]) Get() T {
	if r.released {
		panic("borrow: use of released shared guard")
	}
	return r.cell.value
}

// Release returns this guard's unit of the shared count, restoring
// unborrowed at zero. Idempotent.
func (r *Ref[T]) Release() {
	if r.released {
		return
	}
	r.released = true
	r.cell.flag--
}

// RefMut is a live exclusive guard: the sole capability for mutating the
// cell while it exists. Access through a released guard panics; releasing
// twice is a no-op.
type RefMut[T any] struct {
	cell     *RefCell[T]
	released bool
}

// Get returns a copy of the guarded value.
func (m *RefMut[T]) Get() T {
	m.check()
	return m.cell.value
}

// Set replaces the guarded value.
func (m *RefMut[T]) Set(v T) {
	m.check()
	m.cell.value = v
}

// Update applies fn to the guarded value and stores the result.
func (m *RefMut[T]) Update(fn func(T) T) {
	m.check()
	m.cell.value = fn(m.cell.value)
}

// Release clears the exclusive state, restoring unborrowed. Idempotent.
func (m *RefMut[T]) Release() {
	if m.released {
		return
	}
	m.released = true
	m.cell.flag = 0
}

func (m *RefMut[T]) check() {
	if m.released {
		panic("borrow: use of released exclusive guard")
	}
}
