package lifecycle

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// State is the application lifecycle state.
type State string

const (
	StateStarting       State = "starting"
	StateRunningHidden  State = "running_hidden"
	StateRunningVisible State = "running_visible"
	StateShuttingDown   State = "shutting_down"
	StateStopped        State = "stopped"
)

func (s State) String() string {
	return string(s)
}

// IsRunning reports whether the app is serving and accepting intents.
func (s State) IsRunning() bool {
	return s == StateRunningHidden || s == StateRunningVisible
}

// ErrInvalidTransition is wrapped by every rejected state change.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// validTransitions defines the allowed moves. ShuttingDown and Stopped are
// absorbing: nothing leads back out of them.
var validTransitions = map[State][]State{
	StateStarting: {
		StateRunningHidden,
		StateRunningVisible,
		StateShuttingDown, // Exit before the GUI is attached
	},
	StateRunningHidden: {
		StateRunningVisible,
		StateShuttingDown,
	},
	StateRunningVisible: {
		StateRunningHidden,
		StateShuttingDown,
	},
	StateShuttingDown: {
		StateStopped,
	},
	StateStopped: {},
}

// machine guards the current State and enforces validTransitions.
type machine struct {
	mu      sync.RWMutex
	current State
	logger  *zap.Logger
}

func newMachine(logger *zap.Logger) *machine {
	return &machine{
		current: StateStarting,
		logger:  logger,
	}
}

// State returns the current state.
func (m *machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// TransitionTo moves to next. Moving to the current state is a no-op.
func (m *machine) TransitionTo(next State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.current
	if prev == next {
		return nil
	}
	if !allowed(prev, next) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, prev, next)
	}

	m.current = next
	m.logger.Info("Application state changed",
		zap.String("old_state", prev.String()),
		zap.String("new_state", next.String()))
	return nil
}

func allowed(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
