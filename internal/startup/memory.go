package startup

import "sync"

// Memory is an in-process Registrar. Tests use it to script failures and the
// CLI uses it for --dry-run.
type Memory struct {
	mu      sync.Mutex
	command string
	enabled bool

	EnableErr  error
	DisableErr error

	enableCalls  int
	disableCalls int
}

// NewMemory returns a Memory registrar with the given initial state.
func NewMemory(enabled bool) *Memory {
	return &Memory{enabled: enabled}
}

func (m *Memory) IsEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

func (m *Memory) Enable(command string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enableCalls++
	if m.EnableErr != nil {
		return m.EnableErr
	}
	m.enabled = true
	m.command = command
	return nil
}

func (m *Memory) Disable() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disableCalls++
	if m.DisableErr != nil {
		return m.DisableErr
	}
	m.enabled = false
	m.command = ""
	return nil
}

// SetEnabled changes the state as if the entry was edited outside the app.
func (m *Memory) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// Command returns the last command passed to a successful Enable.
func (m *Memory) Command() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.command
}

// Calls returns how many times Enable and Disable were invoked.
func (m *Memory) Calls() (enable, disable int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enableCalls, m.disableCalls
}
