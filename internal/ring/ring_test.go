package ring

import "testing"

func TestRingCreation(t *testing.T) {
	r := New(5)
	if r == nil {
		t.Fatal("ring creation failed")
	}
	if r.Capacity() != 5 {
		t.Errorf("expected capacity 5, got %d", r.Capacity())
	}
	if r.Count() != 0 {
		t.Errorf("expected count 0, got %d", r.Count())
	}
	if r.IsFull() {
		t.Error("new ring should not be full")
	}
}

func TestRingPushPop(t *testing.T) {
	r := New(4)

	if err := r.Push("a"); err != nil {
		t.Fatalf("push a: %v", err)
	}
	if err := r.Push("b"); err != nil {
		t.Fatalf("push b: %v", err)
	}

	if r.Count() != 2 {
		t.Errorf("expected count 2, got %d", r.Count())
	}

	msg, err := r.Pop()
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if msg != "a" {
		t.Errorf("expected 'a', got %q", msg)
	}
	if r.Count() != 1 {
		t.Errorf("expected count 1 after pop, got %d", r.Count())
	}
}

func TestRingReservedSlot(t *testing.T) {
	// capacity 4 -> 3 usable slots; the 4th push must be rejected, not overwrite.
	r := New(4)
	for _, m := range []string{"a", "b", "c"} {
		if err := r.Push(m); err != nil {
			t.Fatalf("push %q: %v", m, err)
		}
	}
	if !r.IsFull() {
		t.Error("ring should be full with count == capacity-1")
	}
	if err := r.Push("d"); err != ErrFull {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if r.Count() != 3 {
		t.Errorf("expected count unchanged at 3, got %d", r.Count())
	}
}

func TestRingPopEmpty(t *testing.T) {
	r := New(3)
	if _, err := r.Pop(); err != ErrEmpty {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestRingFIFOOrderAcrossWrap(t *testing.T) {
	r := New(4) // 3 usable slots
	for _, m := range []string{"a", "b", "c"} {
		_ = r.Push(m)
	}
	if got, _ := r.Pop(); got != "a" {
		t.Fatalf("expected a, got %q", got)
	}
	if err := r.Push("d"); err != nil {
		t.Fatalf("push d after wrap: %v", err)
	}

	want := []string{"b", "c", "d"}
	for _, w := range want {
		got, err := r.Pop()
		if err != nil {
			t.Fatalf("pop: %v", err)
		}
		if got != w {
			t.Errorf("expected %q, got %q", w, got)
		}
	}
}

func TestRingResizePreservesOrderAcrossWrap(t *testing.T) {
	r := New(4) // 3 usable slots
	for _, m := range []string{"a", "b", "c"} {
		_ = r.Push(m)
	}
	// create wrap: pop one, push one, so tail != 0
	_, _ = r.Pop() // drops "a"
	_ = r.Push("d")

	if err := r.Resize(8); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if r.Capacity() != 8 {
		t.Errorf("expected capacity 8, got %d", r.Capacity())
	}
	if r.Count() != 3 {
		t.Errorf("expected count 3 preserved, got %d", r.Count())
	}

	want := []string{"b", "c", "d"}
	for _, w := range want {
		got, err := r.Pop()
		if err != nil {
			t.Fatalf("pop: %v", err)
		}
		if got != w {
			t.Errorf("expected %q, got %q", w, got)
		}
	}
}

func TestRingResizeRejectsShrinkBelowCount(t *testing.T) {
	r := New(8)
	for _, m := range []string{"a", "b", "c", "d"} {
		_ = r.Push(m)
	}
	if err := r.Resize(3); err != ErrShrink {
		t.Errorf("expected ErrShrink, got %v", err)
	}
	if r.Capacity() != 8 {
		t.Errorf("ring should be left unchanged on failed resize, capacity=%d", r.Capacity())
	}
	if r.Count() != 4 {
		t.Errorf("ring contents should be unchanged on failed resize, count=%d", r.Count())
	}
}

func TestRingFillRatio(t *testing.T) {
	r := New(5) // 4 usable slots
	if r.FillRatio() != 0 {
		t.Errorf("expected 0%% fill, got %d", r.FillRatio())
	}
	_ = r.Push("a")
	_ = r.Push("b")
	if r.FillRatio() != 50 {
		t.Errorf("expected 50%% fill, got %d", r.FillRatio())
	}
}

func TestRingLevelPredicates(t *testing.T) {
	r := New(5) // 4 usable slots
	_ = r.Push("a")
	_ = r.Push("b")
	_ = r.Push("c") // 75% fill

	if !r.IsWarn(75) {
		t.Error("expected IsWarn(75) true at 75% fill")
	}
	if !r.BelowWarn(80) {
		t.Error("expected BelowWarn(80) true at 75% fill")
	}
	if r.IsNormal(25) {
		t.Error("expected IsNormal(25) false at 75% fill")
	}
}

func TestRingDrain(t *testing.T) {
	r := New(5)
	_ = r.Push("a")
	_ = r.Push("b")

	n := r.Drain()
	if n != 2 {
		t.Errorf("expected 2 drained, got %d", n)
	}
	if r.Count() != 0 {
		t.Errorf("expected empty ring after drain, got count=%d", r.Count())
	}
	if r.IsFull() {
		t.Error("ring should not be full after drain")
	}
}

func TestRingEdgeCaseCapacityOne(t *testing.T) {
	// capacity 1 means 0 usable slots: count < capacity-1 == 0 is never true.
	r := New(1)
	if err := r.Push("x"); err != ErrFull {
		t.Errorf("expected ErrFull with capacity 1, got %v", err)
	}
}
