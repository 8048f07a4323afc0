package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func newTestBreaker(t *testing.T) (*CircuitBreaker, *time.Time) {
	t.Helper()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(Config{
		Name:                "test",
		FailureThreshold:    2,
		SuccessThreshold:    1,
		Timeout:             10 * time.Second,
		HalfOpenMaxRequests: 1,
	})
	cb.now = func() time.Time { return now }
	return cb, &now
}

func TestExecute_OpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(t)

	for i := 0; i < 2; i++ {
		if err := cb.Execute(func() error { return errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: err = %v, want errBoom", i, err)
		}
	}

	if got := cb.GetState(); got != StateOpen {
		t.Fatalf("state = %v, want open", got)
	}

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitBreakerOpen) {
		t.Errorf("err = %v, want ErrCircuitBreakerOpen", err)
	}
	if called {
		t.Error("fn should not run while open")
	}
}

func TestExecute_HalfOpenRecovers(t *testing.T) {
	cb, now := newTestBreaker(t)
	_ = cb.Execute(func() error { return errBoom })
	_ = cb.Execute(func() error { return errBoom })

	*now = now.Add(11 * time.Second)

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("half-open call err = %v", err)
	}
	if got := cb.GetState(); got != StateClosed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestExecute_HalfOpenFailureReopens(t *testing.T) {
	cb, now := newTestBreaker(t)
	_ = cb.Execute(func() error { return errBoom })
	_ = cb.Execute(func() error { return errBoom })

	*now = now.Add(11 * time.Second)
	_ = cb.Execute(func() error { return errBoom })

	if got := cb.GetState(); got != StateOpen {
		t.Errorf("state = %v, want open", got)
	}
}

func TestExecute_SuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(t)
	_ = cb.Execute(func() error { return errBoom })
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return errBoom })

	if got := cb.GetState(); got != StateClosed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestOnStateChange(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(Config{
		Name:             "llm",
		FailureThreshold: 1,
		Timeout:          time.Minute,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
	})

	_ = cb.Execute(func() error { return errBoom })
	cb.Reset()

	want := []string{"llm:closed->open", "llm:open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %q, want %q", i, transitions[i], want[i])
		}
	}
}

func TestExecute_IgnoredErrorsDoNotTrip(t *testing.T) {
	cb, now := newTestBreaker(t)
	cb.config.IgnoreError = func(err error) bool { return errors.Is(err, errBoom) }

	for i := 0; i < 5; i++ {
		if err := cb.Execute(func() error { return errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: err = %v, want errBoom", i, err)
		}
	}
	if got := cb.GetState(); got != StateClosed {
		t.Fatalf("state = %v, want closed", got)
	}

	other := errors.New("upstream")
	_ = cb.Execute(func() error { return other })
	_ = cb.Execute(func() error { return other })
	*now = now.Add(11 * time.Second)

	// an ignored result frees the half-open slot for the next caller
	_ = cb.Execute(func() error { return errBoom })
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("half-open call err = %v", err)
	}
	if got := cb.GetState(); got != StateClosed {
		t.Errorf("state = %v, want closed", got)
	}
}
