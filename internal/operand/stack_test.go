package operand

import "testing"

func TestStackNumbers(t *testing.T) {
	s := New()
	s.PushNumber(1)
	s.PushNumber(2)
	s.PushNumber(3)

	nums, ok := s.Numbers(2)
	if !ok {
		t.Fatal("expected Numbers(2) to succeed")
	}
	if nums[0] != 2 || nums[1] != 3 {
		t.Errorf("got %v, want [2 3]", nums)
	}
}

func TestStackNumbersWrongType(t *testing.T) {
	s := New()
	s.PushNumber(1)
	s.PushName("Foo")

	if _, ok := s.Numbers(2); ok {
		t.Error("expected Numbers(2) to fail when a name is mixed in")
	}
}

func TestStackNumbersTooFew(t *testing.T) {
	s := New()
	s.PushNumber(1)
	if _, ok := s.Numbers(2); ok {
		t.Error("expected Numbers(2) to fail with only one operand pushed")
	}
}

func TestStackLastNameAndString(t *testing.T) {
	s := New()
	s.PushName("ExtG1")
	if name, ok := s.LastName(); !ok || name != "ExtG1" {
		t.Errorf("LastName() = %q, %v, want ExtG1, true", name, ok)
	}

	s.Clear()
	s.PushString([]byte("Hello"))
	if str, ok := s.LastString(); !ok || string(str) != "Hello" {
		t.Errorf("LastString() = %q, %v, want Hello, true", str, ok)
	}
}

func TestStackClear(t *testing.T) {
	s := New()
	s.PushNumber(1)
	s.PushNumber(2)
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", s.Len())
	}
}

func TestStackCapacity(t *testing.T) {
	s := New()
	for i := 0; i < Capacity+10; i++ {
		s.PushNumber(float64(i))
	}
	if s.Len() != Capacity {
		t.Errorf("Len() = %d, want %d (overflow pushes should drop silently)", s.Len(), Capacity)
	}
}

func TestStackAllPreservesOrder(t *testing.T) {
	s := New()
	s.PushString([]byte("A"))
	s.PushNumber(120)
	s.PushString([]byte("B"))

	all := s.All()
	if len(all) != 3 {
		t.Fatalf("len(All()) = %d, want 3", len(all))
	}
	if all[0].Kind != KindString || string(all[0].Str) != "A" {
		t.Errorf("all[0] = %+v, want String(A)", all[0])
	}
	if all[1].Kind != KindNumber || all[1].Num != 120 {
		t.Errorf("all[1] = %+v, want Number(120)", all[1])
	}
	if all[2].Kind != KindString || string(all[2].Str) != "B" {
		t.Errorf("all[2] = %+v, want String(B)", all[2])
	}
}
