package shutdown

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewCoordinator(t *testing.T) {
	c := NewCoordinator(zap.NewNop())

	for _, phase := range phaseOrder {
		if names := c.GetPhaseHandlers(phase); len(names) != 0 {
			t.Errorf("Expected no %s handlers, got %v", phase, names)
		}
	}
}

func TestRegisterPriorityOrder(t *testing.T) {
	c := NewCoordinator(zap.NewNop())

	noop := func(ctx context.Context) error { return nil }
	c.Register(&Handler{Name: "log-sync", Phase: PhaseCleanup, Priority: 1, Fn: noop})
	c.Register(&Handler{Name: "watcher", Phase: PhaseCleanup, Priority: 10, Fn: noop})
	c.Register(&Handler{Name: "prefs", Phase: PhaseCleanup, Priority: 5, Fn: noop})

	handlers := c.GetPhaseHandlers(PhaseCleanup)
	want := []string{"watcher", "prefs", "log-sync"}
	if len(handlers) != len(want) {
		t.Fatalf("Expected %d handlers, got %d", len(want), len(handlers))
	}
	for i := range want {
		if handlers[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], handlers[i])
		}
	}
}

func TestShutdownPhasesInOrder(t *testing.T) {
	c := NewCoordinator(zap.NewNop())

	var (
		mu    sync.Mutex
		order []Phase
	)
	record := func(p Phase) Func {
		return func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, p)
			return nil
		}
	}

	// Registered out of order on purpose.
	c.RegisterFunc("server", PhaseServer, record(PhaseServer))
	c.RegisterFunc("cleanup", PhaseCleanup, record(PhaseCleanup))
	c.RegisterFunc("tray", PhaseTray, record(PhaseTray))
	c.RegisterFunc("panel", PhasePanel, record(PhasePanel))

	if err := c.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}

	expected := []Phase{PhaseTray, PhasePanel, PhaseServer, PhaseCleanup}
	if len(order) != len(expected) {
		t.Fatalf("Expected %d phases, got %d", len(expected), len(order))
	}
	for i, p := range expected {
		if order[i] != p {
			t.Errorf("Phase %d: expected %s, got %s", i, p, order[i])
		}
	}
}

func TestShutdownHandlerErrorDoesNotStopLaterPhases(t *testing.T) {
	c := NewCoordinator(zap.NewNop())
	expectedErr := errors.New("tray already gone")

	var serverClosed atomic.Bool
	c.RegisterFunc("tray", PhaseTray, func(ctx context.Context) error {
		return expectedErr
	})
	c.RegisterFunc("server", PhaseServer, func(ctx context.Context) error {
		serverClosed.Store(true)
		return nil
	})

	err := c.Shutdown(context.Background())
	if !errors.Is(err, expectedErr) {
		t.Errorf("Expected error to contain %v, got %v", expectedErr, err)
	}
	if !serverClosed.Load() {
		t.Error("Expected server phase to run after tray failure")
	}
}

func TestShutdownHandlerPanicIsReported(t *testing.T) {
	c := NewCoordinator(zap.NewNop())

	var cleaned atomic.Bool
	c.RegisterFunc("panel", PhasePanel, func(ctx context.Context) error {
		panic("window destroyed")
	})
	c.RegisterFunc("cleanup", PhaseCleanup, func(ctx context.Context) error {
		cleaned.Store(true)
		return nil
	})

	if err := c.Shutdown(context.Background()); err == nil {
		t.Error("Expected error from panicking handler")
	}
	if !cleaned.Load() {
		t.Error("Expected cleanup phase to run after panic")
	}
}

func TestShutdownHandlerTimeout(t *testing.T) {
	c := NewCoordinator(zap.NewNop())
	c.defaultTimeout = 50 * time.Millisecond

	var cleaned atomic.Bool
	c.RegisterFunc("hung", PhaseServer, func(ctx context.Context) error {
		time.Sleep(2 * time.Second)
		return nil
	})
	c.RegisterFunc("cleanup", PhaseCleanup, func(ctx context.Context) error {
		cleaned.Store(true)
		return nil
	})

	start := time.Now()
	err := c.Shutdown(context.Background())
	if err == nil {
		t.Error("Expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Errorf("Shutdown took too long: %v", time.Since(start))
	}
	if !cleaned.Load() {
		t.Error("Expected cleanup to run after a hung handler")
	}
}

func TestShutdownTotalTimeout(t *testing.T) {
	c := NewCoordinator(zap.NewNop())
	c.totalTimeout = 100 * time.Millisecond

	c.RegisterFunc("slow", PhaseTray, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	})

	start := time.Now()
	err := c.Shutdown(context.Background())
	if err == nil {
		t.Error("Expected timeout error")
	}
	if d := time.Since(start); d > 500*time.Millisecond {
		t.Errorf("Shutdown took too long: %v", d)
	}
}

func TestShutdownOnlyOnce(t *testing.T) {
	c := NewCoordinator(zap.NewNop())

	var count atomic.Int32
	c.RegisterFunc("counter", PhaseTray, func(ctx context.Context) error {
		count.Add(1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Shutdown(context.Background())
		}()
	}
	wg.Wait()

	if count.Load() != 1 {
		t.Errorf("Expected handler to run once, ran %d times", count.Load())
	}
}

func TestShutdownLaterCallersWaitForResult(t *testing.T) {
	c := NewCoordinator(zap.NewNop())
	expectedErr := errors.New("close failed")

	release := make(chan struct{})
	c.RegisterFunc("server", PhaseServer, func(ctx context.Context) error {
		<-release
		return expectedErr
	})

	first := make(chan error, 1)
	go func() { first <- c.Shutdown(context.Background()) }()

	second := make(chan error, 1)
	go func() { second <- c.Shutdown(context.Background()) }()

	select {
	case <-second:
		t.Fatal("Second caller returned before teardown finished")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)

	for _, ch := range []chan error{first, second} {
		select {
		case err := <-ch:
			if !errors.Is(err, expectedErr) {
				t.Errorf("Expected %v, got %v", expectedErr, err)
			}
		case <-time.After(time.Second):
			t.Fatal("Timeout waiting for Shutdown")
		}
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected string
	}{
		{PhaseTray, "Tray"},
		{PhasePanel, "Panel"},
		{PhaseServer, "Server"},
		{PhaseCleanup, "Cleanup"},
		{Phase(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.expected {
			t.Errorf("Phase(%d).String() = %s, want %s", tt.phase, got, tt.expected)
		}
	}
}
