package provider

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottle_FirstCallImmediate(t *testing.T) {
	fc := clockwork.NewFakeClock()
	th := NewThrottle(500*time.Millisecond, fc)

	done := make(chan error, 1)
	go func() { done <- th.Wait(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("first Wait should not block")
	}
}

func TestThrottle_SecondCallWaitsForDelay(t *testing.T) {
	fc := clockwork.NewFakeClock()
	th := NewThrottle(500*time.Millisecond, fc)

	require.NoError(t, th.Wait(context.Background()))

	done := make(chan error, 1)
	go func() { done <- th.Wait(context.Background()) }()

	// the second call must be parked on the clock
	require.NoError(t,
		fc.BlockUntilContext(t.Context(), 1))
	select {
	case <-done:
		t.Fatal("second Wait returned before the delay elapsed")
	default:
	}

	fc.Advance(500 * time.Millisecond)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("second Wait did not return after the delay elapsed")
	}
}

func TestThrottle_ContextCancelUnblocks(t *testing.T) {
	fc := clockwork.NewFakeClock()
	th := NewThrottle(time.Minute, fc)

	require.NoError(t, th.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- th.Wait(ctx) }()

	require.NoError(t, fc.BlockUntilContext(t.Context(), 1))
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not honor context cancellation")
	}
}
