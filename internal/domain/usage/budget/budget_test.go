package budget

import "testing"

func TestNew(t *testing.T) {
	b := New(500, 312, false, 1700000000000)
	if b.CallsLimit() != 500 {
		t.Errorf("CallsLimit() = %d", b.CallsLimit())
	}
	if b.CallsRemaining() != 312 {
		t.Errorf("CallsRemaining() = %d", b.CallsRemaining())
	}
	if b.IsExhausted() {
		t.Error("IsExhausted() = true, want false")
	}
	if b.ResetsAt() != 1700000000000 {
		t.Errorf("ResetsAt() = %d", b.ResetsAt())
	}
}

func TestNew_Exhausted(t *testing.T) {
	b := New(100, 0, true, 0)
	if !b.IsExhausted() {
		t.Error("IsExhausted() = false, want true")
	}
	if b.CallsRemaining() != 0 {
		t.Errorf("CallsRemaining() = %d", b.CallsRemaining())
	}
}
