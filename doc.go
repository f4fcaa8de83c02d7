// Package sharecell is the documentation and version hub for the shared
// mutable state toolkit: a family of primitives for sharing and mutating
// data between parts of a program without a garbage-collected ownership
// model: reference-counted ownership, runtime-checked interior mutability,
// and payload-owning locks with failure taint.
//
// The toolkit is split into small leaf packages, one per primitive family:
//
//   - [github.com/kolkov/sharecell/rc]: single-domain ownership counting,
//     strong and weak handles over one allocation record, plain integer
//     counts, for strictly sequential handle use.
//   - [github.com/kolkov/sharecell/arc]: the same API with atomic counts,
//     for handles spread across goroutines.
//   - [github.com/kolkov/sharecell/borrow]: single-domain interior
//     mutability, a panic-free copy cell and a borrow-tracked cell whose
//     shared/exclusive guard requests fail immediately on conflict.
//   - [github.com/kolkov/sharecell/lock]: mutual exclusion owning its
//     payload, in blocking, spinning, and read/write variants, with abnormal
//     critical-section exits recorded as taint instead of silent corruption.
//   - [github.com/kolkov/sharecell/shared]: the one supported composition,
//     an ownership cell wrapping a mutation cell, yielding "shared +
//     checked-mutable" and "shared + thread-safe-mutable" handles.
//
// # Design
//
// Every primitive pushes its correctness check to the latest possible
// moment (allocation time, access time, lock time) and fails loudly with
// an explicit result rather than corrupting state. Three negative results
// exist, and all are ordinary values:
//
//   - a failed weak-handle upgrade (the payload is already gone),
//   - a borrow conflict (the request is off the cell's legal state graph),
//   - a taint report (a lock's previous critical section died abnormally).
//
// Nothing is retried automatically, no primitive defines its own timeout,
// and payload access is only ever granted through a handle or guard whose
// lifetime bounds the access window.
//
// # Choosing a domain
//
// The single-domain types (rc, borrow) carry no synchronization at all;
// every handle to one record must stay within one sequential context. Go
// does not statically stop a handle from leaking across goroutines, so run
// the race detector in tests the way you would for any unsynchronized
// value. The cross-domain types (arc, lock) are the concurrent versions of
// the same contracts.
package sharecell
