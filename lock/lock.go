// Package lock implements payload-owning mutual exclusion with failure
// taint: blocking (Mutex), spinning (SpinMutex), and shared/exclusive
// (RWMutex) variants behind one guard contract.
//
// Each lock owns its payload; the only way to reach the payload is through a
// guard returned by an acquire operation, so the lock's hold window bounds
// the access window exactly.
//
// # Guard discipline
//
// Guards release in two phases so abnormal exits are distinguishable from
// normal ones without any runtime magic:
//
//	g := m.Lock()
//	defer g.Release()
//	// ... critical section ...
//	g.Unlock()
//
// Unlock is the normal release. Release is a backstop for the deferred
// path: after a normal Unlock it is a no-op; reached with the guard still
// held (the critical section panicked or returned early past its Unlock) it
// releases the lock AND taints it. The scoped closure forms (With, Update,
// View) wrap this pattern so straight-line callers cannot get it wrong.
//
// # Taint
//
// Taint is one-way per lock until explicitly cleared. A tainted lock still
// grants acquisitions, so nothing deadlocks, but its guards report Tainted()
// and refuse payload access with ErrTainted until the caller acknowledges
// the risk via Trust. The stack of the abnormal release is retained
// (TaintOrigin) for diagnosis. Only exclusive holders taint: a reader's
// abnormal exit cannot have corrupted the payload, so read guards release
// cleanly on every path.
//
// No operation here defines a timeout. Mutex.LockContext accepts an
// external deadline through its context and abandons the wait on expiry
// with no partial lock state left behind; that is the only bounded wait.
package lock

import (
	"errors"
	"sync/atomic"

	"github.com/kolkov/sharecell/internal/taintsite"
)

// ErrTainted reports that the payload was guarded by a lock whose previous
// critical section terminated abnormally; the payload may be inconsistent.
// Callers decide explicitly: Trust the guard to access anyway, or propagate.
var ErrTainted = errors.New("lock: payload tainted by abnormal release")

// taintFlag is the shared taint state embedded in every lock variant:
// a one-way flag plus the interned stack of the release that set it.
type taintFlag struct {
	tainted atomic.Bool
	site    atomic.Uint64
}

// set marks the flag, capturing the current stack as the taint origin the
// first time. skip counts frames above the caller to omit.
func (f *taintFlag) set(skip int) {
	if f.tainted.CompareAndSwap(false, true) {
		f.site.Store(taintsite.Capture(skip + 1))
	}
}

func (f *taintFlag) get() bool {
	return f.tainted.Load()
}

// clear resets the flag after the caller has restored the payload to a
// consistent state. The recorded origin is dropped with it.
func (f *taintFlag) clear() {
	f.site.Store(0)
	f.tainted.Store(false)
}

// origin formats the stack of the abnormal release that set the flag, or ""
// when the lock is clean.
func (f *taintFlag) origin() string {
	return taintsite.Format(f.site.Load())
}
