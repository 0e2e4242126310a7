package gstate

import "testing"

// TestCMYKConversion covers Testable Property 5.
func TestCMYKConversion(t *testing.T) {
	cases := []struct {
		c, m, y, k  float64
		r, g, b     float64
	}{
		{0, 0, 0, 0, 1, 1, 1},
		{0, 0, 0, 1, 0, 0, 0},
		{1, 0, 0, 0, 0, 1, 1},
		{0.5, 0.25, 0.1, 0.2, (1 - 0.5) * 0.8, (1 - 0.25) * 0.8, (1 - 0.1) * 0.8},
	}
	for _, c := range cases {
		var s State
		s.SetFillCMYK(c.c, c.m, c.y, c.k)
		const eps = 1e-12
		if diff(s.FillRGB[0], c.r) > eps || diff(s.FillRGB[1], c.g) > eps || diff(s.FillRGB[2], c.b) > eps {
			t.Errorf("cmykToRGB(%v,%v,%v,%v) = %v, want (%v,%v,%v)", c.c, c.m, c.y, c.k, s.FillRGB, c.r, c.g, c.b)
		}
		if s.FillSpace != DeviceCMYK {
			t.Errorf("FillSpace = %v, want DeviceCMYK", s.FillSpace)
		}
	}
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// TestStackBalancedScoping covers Testable Property 1.
func TestStackBalancedScoping(t *testing.T) {
	s := NewStack()
	start := s.Depth()

	s.Save()
	s.Save()
	s.Save()
	if s.Depth() != start+3 {
		t.Fatalf("Depth() = %d after 3 saves, want %d", s.Depth(), start+3)
	}
	s.Restore()
	s.Restore()
	s.Restore()
	if s.Depth() != start {
		t.Errorf("Depth() = %d after matching restores, want %d", s.Depth(), start)
	}
}

func TestStackSaveClonesNotAliases(t *testing.T) {
	s := NewStack()
	s.Top().LineWidth = 2
	s.Save()
	s.Top().LineWidth = 5

	s.Restore()
	if s.Top().LineWidth != 2 {
		t.Errorf("LineWidth after restore = %v, want 2 (mutation on the pushed clone must not leak back)", s.Top().LineWidth)
	}
}

func TestStackUnderflowIsNoop(t *testing.T) {
	s := NewStack()
	if err := s.Restore(); err == nil {
		t.Error("expected error restoring past the default frame")
	}
	if s.Depth() != 1 {
		t.Errorf("Depth() = %d after failed restore, want 1", s.Depth())
	}
}

func TestStackOverflow(t *testing.T) {
	s := NewStack()
	for i := 1; i < MaxDepth; i++ {
		if err := s.Save(); err != nil {
			t.Fatalf("unexpected overflow at depth %d: %v", i, err)
		}
	}
	if err := s.Save(); err == nil {
		t.Error("expected overflow error at MaxDepth")
	}
}
