package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/BunnySweety/kollab-sub001/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ShutdownWakesSleepers(t *testing.T) {
	m := lifecycle.NewManager()

	stopped := make(chan error, 1)
	require.NoError(t, m.Go("sleeper", func(h *lifecycle.Handle) {
		defer h.Close()
		stopped <- h.Sleep(time.Hour)
	}))

	m.Shutdown()
	assert.Empty(t, m.WaitWithTimeout(time.Second))
	assert.ErrorIs(t, <-stopped, context.Canceled)
}

func TestManager_DuplicateName(t *testing.T) {
	m := lifecycle.NewManager()
	h, err := m.NewServiceHandle("worker")
	require.NoError(t, err)
	defer h.Close()

	_, err = m.NewServiceHandle("worker")
	assert.Error(t, err)
}

func TestManager_ReportsStragglers(t *testing.T) {
	m := lifecycle.NewManager()
	h, err := m.NewServiceHandle("stuck")
	require.NoError(t, err)

	m.Shutdown()
	assert.Equal(t, []string{"stuck"}, m.WaitWithTimeout(10*time.Millisecond))

	h.Close()
	h.Close()
	assert.Empty(t, m.WaitWithTimeout(time.Second))
}
