// Package stress implements the contention scenarios behind the cellstress
// tool: repeatable workloads that hammer each toolkit primitive from many
// workers and count the operations and invariant violations observed.
//
// Scenarios are self-checking: an "error" counted by a scenario is a broken
// toolkit invariant (a lost increment, an overlap in a critical section, an
// upgrade of a dead payload), never an expected negative result like a
// borrow conflict. A healthy run reports zero errors at any ops volume.
//
// The single-domain primitives (rc, borrow) are stressed with one instance
// per worker so their sequential contract holds while the workers still run
// in parallel; the cross-domain primitives share one instance across all
// workers.
package stress

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kolkov/sharecell/arc"
	"github.com/kolkov/sharecell/borrow"
	"github.com/kolkov/sharecell/lock"
	"github.com/kolkov/sharecell/rc"
	"github.com/kolkov/sharecell/shared"
)

// Config sets a scenario's load shape.
type Config struct {
	// Workers is the number of concurrent worker goroutines.
	Workers int

	// Iterations is the per-worker loop count.
	Iterations int
}

// Result is one scenario execution's outcome.
type Result struct {
	RunID     string
	Scenario  string
	Workers   int
	Ops       int64
	Errors    int64
	Duration  time.Duration
	StartedAt time.Time
}

// scenarioFunc runs one workload and returns (operations, violations).
type scenarioFunc func(cfg Config) (ops, errs int64)

var scenarios = map[string]scenarioFunc{
	"arc-churn":    arcChurn,
	"arc-upgrade":  arcUpgrade,
	"rc-lifecycle": rcLifecycle,
	"refcell":      refCellChurn,
	"mutex":        mutexContention,
	"spin":         spinContention,
	"rwlock":       rwContention,
	"taint":        taintRecovery,
	"shared-value": sharedValue,
}

// Names returns the available scenario names, sorted.
func Names() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes the named scenario under cfg and returns its result, tagged
// with a fresh run ID.
func Run(name string, cfg Config) (Result, error) {
	fn, ok := scenarios[name]
	if !ok {
		return Result{}, fmt.Errorf("unknown scenario %q (have %v)", name, Names())
	}
	if cfg.Workers < 1 || cfg.Iterations < 1 {
		return Result{}, fmt.Errorf("scenario %q: workers and iterations must be >= 1", name)
	}

	started := time.Now()
	ops, errs := fn(cfg)
	return Result{
		RunID:     uuid.NewString(),
		Scenario:  name,
		Workers:   cfg.Workers,
		Ops:       ops,
		Errors:    errs,
		Duration:  time.Since(started),
		StartedAt: started.UTC(),
	}, nil
}

// forEachWorker fans the per-worker body out and waits.
func forEachWorker(cfg Config, body func(worker int, ops, errs *atomic.Int64)) (int64, int64) {
	var ops, errs atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			body(w, &ops, &errs)
		}(w)
	}
	wg.Wait()
	return ops.Load(), errs.Load()
}

// arcChurn clones and releases strong handles of one shared record from
// every worker. The record must stay alive throughout and die exactly once
// at the end.
func arcChurn(cfg Config) (int64, int64) {
	var drops atomic.Int64
	root := arc.NewWithDrop("payload", func(string) { drops.Add(1) })

	ops, errs := forEachWorker(cfg, func(w int, ops, errs *atomic.Int64) {
		h := root.Clone()
		defer h.Release()
		for i := 0; i < cfg.Iterations; i++ {
			c := h.Clone()
			if c.Get() != "payload" {
				errs.Add(1)
			}
			c.Release()
			ops.Add(1)
		}
	})

	root.Release()
	if drops.Load() != 1 {
		errs++
	}
	return ops, errs
}

// arcUpgrade races weak upgrades against strong churn on one record; every
// successful upgrade must observe the live payload.
func arcUpgrade(cfg Config) (int64, int64) {
	root := arc.New(42)

	ops, errs := forEachWorker(cfg, func(w int, ops, errs *atomic.Int64) {
		weak := root.Downgrade()
		defer weak.Release()
		for i := 0; i < cfg.Iterations; i++ {
			if up, ok := weak.Upgrade(); ok {
				if up.Get() != 42 {
					errs.Add(1)
				}
				up.Release()
			} else {
				// The root handle is held for the whole run, so an
				// upgrade failure is an invariant violation here.
				errs.Add(1)
			}
			ops.Add(1)
		}
	})

	root.Release()
	return ops, errs
}

// rcLifecycle runs the full single-domain lifecycle with a worker-local
// record per iteration: construct, clone, downgrade, release, upgrade-fail.
func rcLifecycle(cfg Config) (int64, int64) {
	return forEachWorker(cfg, func(w int, ops, errs *atomic.Int64) {
		for i := 0; i < cfg.Iterations; i++ {
			drops := 0
			s := rc.NewWithDrop(i, func(int) { drops++ })
			c := s.Clone()
			weak := s.Downgrade()

			s.Release()
			c.Release()
			if drops != 1 {
				errs.Add(1)
			}
			if _, ok := weak.Upgrade(); ok {
				errs.Add(1)
			}
			weak.Release()
			ops.Add(1)
		}
	})
}

// refCellChurn drives the borrow state machine on a worker-local cell:
// legal transitions must succeed, illegal ones must conflict.
func refCellChurn(cfg Config) (int64, int64) {
	return forEachWorker(cfg, func(w int, ops, errs *atomic.Int64) {
		cell := borrow.NewRefCell(0)
		for i := 0; i < cfg.Iterations; i++ {
			m, err := cell.TryBorrowMut()
			if err != nil {
				errs.Add(1)
				continue
			}
			if _, err := cell.TryBorrow(); err == nil {
				errs.Add(1) // shared granted under exclusive
			}
			m.Update(func(v int) int { return v + 1 })
			m.Release()

			r1, err1 := cell.TryBorrow()
			r2, err2 := cell.TryBorrow()
			if err1 != nil || err2 != nil {
				errs.Add(1)
			} else {
				if _, err := cell.TryBorrowMut(); err == nil {
					errs.Add(1) // exclusive granted under shared
				}
				r1.Release()
				r2.Release()
			}
			ops.Add(1)
		}
		if err := cell.View(func(v int) {
			if v != cfg.Iterations {
				errs.Add(1)
			}
		}); err != nil {
			errs.Add(1)
		}
	})
}

// mutexContention increments one shared counter through the blocking mutex
// and checks no increment is lost.
func mutexContention(cfg Config) (int64, int64) {
	m := lock.NewMutex(0)

	ops, errs := forEachWorker(cfg, func(w int, ops, errs *atomic.Int64) {
		for i := 0; i < cfg.Iterations; i++ {
			if err := m.With(func(v *int) error {
				*v++
				return nil
			}); err != nil {
				errs.Add(1)
			}
			ops.Add(1)
		}
	})

	g := m.Lock()
	defer g.Unlock()
	if v, err := g.Value(); err != nil || *v != cfg.Workers*cfg.Iterations {
		errs++
	}
	return ops, errs
}

// spinContention is mutexContention on the spinning variant.
func spinContention(cfg Config) (int64, int64) {
	m := lock.NewSpinMutex(0)

	ops, errs := forEachWorker(cfg, func(w int, ops, errs *atomic.Int64) {
		for i := 0; i < cfg.Iterations; i++ {
			if err := m.With(func(v *int) error {
				*v++
				return nil
			}); err != nil {
				errs.Add(1)
			}
			ops.Add(1)
		}
	})

	g := m.Lock()
	defer g.Unlock()
	if v, err := g.Value(); err != nil || *v != cfg.Workers*cfg.Iterations {
		errs++
	}
	return ops, errs
}

// rwContention mixes shared reads and exclusive writes; readers must never
// observe a torn pair.
func rwContention(cfg Config) (int64, int64) {
	type pair struct{ a, b int }
	m := lock.NewRWMutex(pair{})

	return forEachWorker(cfg, func(w int, ops, errs *atomic.Int64) {
		for i := 0; i < cfg.Iterations; i++ {
			if i%10 == 0 {
				if err := m.Update(func(p *pair) error {
					p.a++
					p.b++
					return nil
				}); err != nil {
					errs.Add(1)
				}
			} else {
				if err := m.View(func(p pair) {
					if p.a != p.b {
						errs.Add(1)
					}
				}); err != nil {
					errs.Add(1)
				}
			}
			ops.Add(1)
		}
	})
}

// taintRecovery provokes a panic inside a critical section, then walks the
// full taint protocol: observe, trust, restore, clear.
func taintRecovery(cfg Config) (int64, int64) {
	return forEachWorker(cfg, func(w int, ops, errs *atomic.Int64) {
		for i := 0; i < cfg.Iterations; i++ {
			m := lock.NewMutex(1)

			func() {
				defer func() { _ = recover() }()
				_ = m.With(func(*int) error { panic("induced") })
			}()

			if !m.Tainted() {
				errs.Add(1)
				continue
			}
			g, ok := m.TryLock()
			if !ok {
				errs.Add(1)
				continue
			}
			if _, err := g.Value(); err == nil {
				errs.Add(1) // tainted payload handed out unacknowledged
			}
			*g.Trust() = 1
			g.Unlock()
			m.ClearTaint()
			if m.Tainted() {
				errs.Add(1)
			}
			ops.Add(1)
		}
	})
}

// sharedValue drives the composition layer: per-worker owner clones of one
// shared mutex cell, counting increments across all of them.
func sharedValue(cfg Config) (int64, int64) {
	root := shared.NewValue(0)

	ops, errs := forEachWorker(cfg, func(w int, ops, errs *atomic.Int64) {
		h := root.Clone()
		defer h.Release()
		for i := 0; i < cfg.Iterations; i++ {
			if err := h.With(func(v *int) error {
				*v++
				return nil
			}); err != nil {
				errs.Add(1)
			}
			ops.Add(1)
		}
	})

	_ = root.With(func(v *int) error {
		if *v != cfg.Workers*cfg.Iterations {
			errs++
		}
		return nil
	})
	root.Release()
	return ops, errs
}
