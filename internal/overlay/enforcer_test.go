package overlay

import (
	"errors"
	"testing"

	"github.com/1broseidon/hoverpad/internal/platform"
)

func TestEnforcer_WrapsDriverError(t *testing.T) {
	driverErr := errors.New("BadWindow (invalid Window parameter)")
	d := newTestDriver()
	d.applyErr = driverErr

	e := NewEnforcer(d, platform.DefaultProfile())
	err := e.Enforce(7)
	if err == nil {
		t.Fatalf("expected error")
	}

	var enforceErr *EnforceError
	if !errors.As(err, &enforceErr) {
		t.Fatalf("expected *EnforceError, got %T", err)
	}
	if enforceErr.Window != 7 {
		t.Fatalf("expected window 7 in error, got %d", enforceErr.Window)
	}
	if !errors.Is(err, driverErr) {
		t.Fatalf("expected wrapped driver error")
	}
}

func TestEnforcer_SingleCallPerPass(t *testing.T) {
	d := newTestDriver()
	e := NewEnforcer(d, platform.DefaultProfile())

	for i := 0; i < 5; i++ {
		if err := e.Enforce(7); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	_, _, applies, _ := d.counts()
	if applies != 5 {
		t.Fatalf("expected one driver call per pass, got %d for 5 passes", applies)
	}
}
