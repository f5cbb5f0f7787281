package startup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_DisableIsIdempotent(t *testing.T) {
	m := NewMemory(false)

	require.NoError(t, m.Disable())
	require.NoError(t, m.Disable())
	assert.False(t, m.IsEnabled())

	_, disables := m.Calls()
	assert.Equal(t, 2, disables)
}

func TestMemory_EnableKeepsLatestCommand(t *testing.T) {
	m := NewMemory(false)

	require.NoError(t, m.Enable(`"/opt/notifyy"`))
	require.NoError(t, m.Enable(`"/opt/notifyy" --show`))

	assert.True(t, m.IsEnabled())
	assert.Equal(t, `"/opt/notifyy" --show`, m.Command())
}

func TestMemory_InjectedFailureLeavesState(t *testing.T) {
	m := NewMemory(true)
	m.DisableErr = errors.New("access denied")

	err := m.Disable()
	assert.ErrorContains(t, err, "access denied")
	assert.True(t, m.IsEnabled())

	m.DisableErr = nil
	m.EnableErr = ErrUnsupported
	require.NoError(t, m.Disable())
	assert.ErrorIs(t, m.Enable("x"), ErrUnsupported)
	assert.False(t, m.IsEnabled())
}

func TestMemory_ImplementsRegistrar(t *testing.T) {
	var _ Registrar = NewMemory(false)
}
