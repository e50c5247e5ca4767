package batch

import (
	"errors"
	"testing"
)

func TestNewOK(t *testing.T) {
	r := NewOK("prop-1")
	if r.ID() != "prop-1" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Status() != StatusOK {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusOK)
	}
	if !r.OK() {
		t.Error("OK() = false, want true")
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestNewError(t *testing.T) {
	err := errors.New("something failed")
	r := NewError("prop-2", err)
	if r.ID() != "prop-2" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusError)
	}
	if r.OK() {
		t.Error("OK() = true, want false")
	}
	if !errors.Is(r.Err(), err) {
		t.Errorf("Err() = %v, want %v", r.Err(), err)
	}
}

func TestTally(t *testing.T) {
	results := []Result{
		NewOK("prop-1"),
		NewError("prop-2", errors.New("bad record")),
		NewOK("prop-3"),
		NewError("prop-4", errors.New("bad record")),
		NewOK("prop-5"),
	}

	ok, failed := Tally(results)
	if ok != 3 || failed != 2 {
		t.Errorf("Tally() = (%d, %d), want (3, 2)", ok, failed)
	}

	ok, failed = Tally(nil)
	if ok != 0 || failed != 0 {
		t.Errorf("Tally(nil) = (%d, %d), want (0, 0)", ok, failed)
	}
}

func TestStatusConstants(t *testing.T) {
	if StatusOK != "ok" {
		t.Errorf("StatusOK = %q", StatusOK)
	}
	if StatusError != "error" {
		t.Errorf("StatusError = %q", StatusError)
	}
}
