package engine

import "testing"

func TestRNG_Deterministic(t *testing.T) {
	r1 := NewRNG(42)
	r2 := NewRNG(42)

	for i := 0; i < 100; i++ {
		v1, v2 := r1.Float64(), r2.Float64()
		if v1 != v2 {
			t.Fatalf("draw %d: same seed produced %v and %v", i, v1, v2)
		}
	}
}

func TestRNG_PositionTracking(t *testing.T) {
	r := NewRNG(7)
	if r.Position() != 0 {
		t.Fatalf("fresh RNG position = %d, want 0", r.Position())
	}
	for i := 0; i < 5; i++ {
		r.Float64()
	}
	r.Roll(6)
	if r.Position() != 6 {
		t.Errorf("position = %d, want 6", r.Position())
	}
}

func TestRestoreRNG_ResumesSequence(t *testing.T) {
	orig := NewRNG(99)
	for i := 0; i < 10; i++ {
		orig.Float64()
	}

	restored := RestoreRNG(99, orig.Position())
	for i := 0; i < 20; i++ {
		v1, v2 := orig.Float64(), restored.Float64()
		if v1 != v2 {
			t.Fatalf("draw %d after restore: %v vs %v", i, v1, v2)
		}
	}
}

func TestRoll_Range(t *testing.T) {
	r := NewRNG(1)
	for i := 0; i < 1000; i++ {
		v := r.Roll(6)
		if v < 1 || v > 6 {
			t.Fatalf("roll out of range: %d", v)
		}
	}
}
