package rc

import "testing"

// TestLifecycleScenario walks the canonical lifecycle:
// construct(42) → clone → downgrade → release both strongs → upgrade fails
// → release weak → record reclaimed.
func TestLifecycleScenario(t *testing.T) {
	drops := 0
	a := NewWithDrop(42, func(int) { drops++ })
	if a.StrongCount() != 1 || a.WeakCount() != 0 {
		t.Fatalf("fresh: strong=%d weak=%d, want 1/0", a.StrongCount(), a.WeakCount())
	}

	b := a.Clone()
	if a.StrongCount() != 2 {
		t.Errorf("after Clone: strong=%d, want 2", a.StrongCount())
	}
	if got := b.Get(); got != 42 {
		t.Errorf("clone Get() = %d, want 42", got)
	}

	w := a.Downgrade()
	if a.WeakCount() != 1 || a.StrongCount() != 2 {
		t.Errorf("after Downgrade: strong=%d weak=%d, want 2/1", a.StrongCount(), a.WeakCount())
	}

	a.Release()
	if drops != 0 {
		t.Errorf("payload dropped with a strong handle outstanding")
	}
	b.Release()
	if drops != 1 {
		t.Errorf("drops = %d after last strong release, want 1", drops)
	}
	if w.StrongCount() != 0 {
		t.Errorf("strong = %d after both releases, want 0", w.StrongCount())
	}

	if s, ok := w.Upgrade(); ok || s != nil {
		t.Error("Upgrade succeeded after payload destruction")
	}

	if w.rec.freed {
		t.Error("record reclaimed while a weak handle remains")
	}
	w.Release()
	if !w.rec.freed {
		t.Error("record not reclaimed after last weak release")
	}
	if drops != 1 {
		t.Errorf("drops = %d at end, want exactly 1", drops)
	}
}

// TestDropExactlyOnce exercises clone/release orders and checks the drop
// function runs exactly once, at the 1→0 strong transition.
func TestDropExactlyOnce(t *testing.T) {
	tests := []struct {
		name   string
		clones int
	}{
		{name: "no clones", clones: 0},
		{name: "one clone", clones: 1},
		{name: "many clones", clones: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drops := 0
			root := NewWithDrop("payload", func(string) { drops++ })
			handles := []*Strong[string]{root}
			for i := 0; i < tt.clones; i++ {
				handles = append(handles, root.Clone())
			}

			// Release in reverse order, double-releasing each handle to
			// confirm idempotence.
			for i := len(handles) - 1; i >= 0; i-- {
				wantDrops := 0
				if i == 0 {
					wantDrops = 1
				}
				handles[i].Release()
				handles[i].Release()
				if drops != wantDrops {
					t.Fatalf("after releasing handle %d: drops=%d, want %d", i, drops, wantDrops)
				}
			}
		})
	}
}

// TestUpgradeWhileAlive confirms Upgrade mints a real owner that keeps the
// payload alive on its own.
func TestUpgradeWhileAlive(t *testing.T) {
	drops := 0
	s := NewWithDrop([]int{1, 2, 3}, func([]int) { drops++ })
	w := s.Downgrade()

	up, ok := w.Upgrade()
	if !ok {
		t.Fatal("Upgrade failed while payload alive")
	}
	if got := up.Get(); len(got) != 3 || got[0] != 1 {
		t.Errorf("upgraded Get() = %v, want [1 2 3]", got)
	}

	s.Release()
	if drops != 0 {
		t.Error("payload dropped while the upgraded handle still owns it")
	}
	up.Release()
	if drops != 1 {
		t.Errorf("drops = %d, want 1", drops)
	}
	w.Release()
}

// TestReclaimOrderIndependence checks the record is reclaimed when both
// counts are zero, whichever count gets there last.
func TestReclaimOrderIndependence(t *testing.T) {
	t.Run("strong last", func(t *testing.T) {
		s := New(1)
		w := s.Downgrade()
		w.Release()
		if s.rec.freed {
			t.Error("reclaimed with a strong handle outstanding")
		}
		s.Release()
		if !s.rec.freed {
			t.Error("not reclaimed after last strong release")
		}
	})

	t.Run("weak last", func(t *testing.T) {
		s := New(1)
		w := s.Downgrade()
		s.Release()
		if w.rec.freed {
			t.Error("reclaimed with a weak handle outstanding")
		}
		w.Release()
		if !w.rec.freed {
			t.Error("not reclaimed after last weak release")
		}
	})
}

// TestPayloadSlotEmptied checks the slot is zeroed at destruction so the
// record does not pin the payload's referents while weak handles linger.
func TestPayloadSlotEmptied(t *testing.T) {
	s := New([]int{1, 2, 3})
	w := s.Downgrade()
	s.Release()

	if !w.rec.dead {
		t.Fatal("payload not marked dead after last strong release")
	}
	if w.rec.value != nil {
		t.Error("payload slot still references the value after destruction")
	}
	w.Release()
}

// TestUseAfterReleasePanics checks that misusing a released handle is loud.
func TestUseAfterReleasePanics(t *testing.T) {
	s := New(1)
	s.Release()

	defer func() {
		if recover() == nil {
			t.Error("Get on released handle did not panic")
		}
	}()
	s.Get()
}
