package patience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyPortZero(t *testing.T) {
	t.Parallel()
	err := Notify(0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnect), "want ErrConnect, got %v", err)
}

func TestNotifyNoListener(t *testing.T) {
	t.Parallel()
	// Grab a port the OS considers free, then release it so nothing listens.
	l, err := New()
	require.NoError(t, err)
	port := l.Port()
	require.NoError(t, l.Close())

	start := time.Now()
	err = Notify(port)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnect), "want ErrConnect, got %v", err)
	// Refused connections fail fast on loopback; no multi-second hang.
	assert.Less(t, time.Since(start), time.Second)
}

func TestNotifyReachesListener(t *testing.T) {
	t.Parallel()
	l, err := New()
	require.NoError(t, err)
	defer l.Close()

	done := make(chan error, 1)
	go func() {
		_, err := l.Wait(2 * time.Second)
		done <- err
	}()

	// Small delay so the waiter is actually blocked in accept.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, Notify(l.Port()))
	require.NoError(t, <-done)
}
