// Package taintsite stores and deduplicates the stack traces of abnormal
// critical-section exits.
//
// When a lock taints, the releasing stack is captured once and interned in a
// process-global depot, keyed by a 64-bit FNV-1a hash of its program
// counters. The lock record then carries only the 8-byte hash; identical
// taint sites (the same panic path hit repeatedly) share one stored trace.
//
// Design:
//   - Fixed-size traces (12 frames): taint origins are visible near the top
//     of the stack, and a fixed array keeps interning allocation-free after
//     the first occurrence of a site.
//   - sync.Map depot: lock-free reads, rare writes (new sites only).
//   - Hash 0 is reserved for "no site captured".
package taintsite

import (
	"encoding/binary"
	"hash/fnv"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// MaxFrames is the number of stack frames retained per taint site.
const MaxFrames = 12

// site is one interned taint origin.
type site struct {
	pcs [MaxFrames]uintptr
	n   int
}

// depot maps uint64 hash → *site. Grows with the number of distinct taint
// origins, which is bounded by the number of distinct panic paths in the
// program.
var depot sync.Map

// Capture records the current stack as a taint site and returns its hash.
// skip counts frames to omit above the caller, as in runtime.Callers with
// the Capture frame itself already excluded. Returns 0 if no stack is
// available. Safe for concurrent use.
func Capture(skip int) uint64 {
	var pcs [MaxFrames]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	if n == 0 {
		return 0
	}

	h := hashPCs(pcs[:n])
	if _, ok := depot.Load(h); ok {
		return h
	}
	depot.Store(h, &site{pcs: pcs, n: n})
	return h
}

// Format renders the taint site identified by hash as a multi-line
// "function\n\tfile:line" listing, one frame per pair of lines. Returns ""
// for hash 0 or an unknown hash.
func Format(hash uint64) string {
	if hash == 0 {
		return ""
	}
	val, ok := depot.Load(hash)
	if !ok {
		return ""
	}
	s := val.(*site)

	var b strings.Builder
	frames := runtime.CallersFrames(s.pcs[:s.n])
	for {
		fr, more := frames.Next()
		if fr.Function != "" {
			b.WriteString(fr.Function)
			b.WriteString("\n\t")
			b.WriteString(fr.File)
			b.WriteString(":")
			b.WriteString(strconv.Itoa(fr.Line))
			b.WriteString("\n")
		}
		if !more {
			break
		}
	}
	return b.String()
}

// hashPCs computes the FNV-1a hash of the program counters. Chosen for
// speed and distribution; collisions merely merge two sites' diagnostics.
func hashPCs(pcs []uintptr) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, pc := range pcs {
		binary.LittleEndian.PutUint64(buf[:], uint64(pc))
		h.Write(buf[:])
	}
	return h.Sum64()
}
