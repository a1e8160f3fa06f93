package etext

import "testing"

func TestDirtySetMarkDedup(t *testing.T) {
	var s dirtySet
	s.mark(3)
	s.mark(1)
	s.mark(3)
	s.mark(2)

	if s.len() != 3 {
		t.Fatalf("len = %d, want 3", s.len())
	}
	got := s.drain()
	want := []AreaHandle{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("drain[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDirtySetDrainResets(t *testing.T) {
	var s dirtySet
	s.mark(7)

	if got := s.drain(); len(got) != 1 || got[0] != 7 {
		t.Fatalf("drain = %v, want [7]", got)
	}
	if s.len() != 0 {
		t.Errorf("len after drain = %d, want 0", s.len())
	}
	if got := s.drain(); got != nil {
		t.Errorf("second drain = %v, want nil", got)
	}

	s.mark(7)
	if s.len() != 1 {
		t.Errorf("mark after drain: len = %d, want 1", s.len())
	}
}
