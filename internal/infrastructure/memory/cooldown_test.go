package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"solswap-service/internal/application"
)

func TestReserveCommitRelease(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewCooldownStore(24*time.Hour, 5*time.Minute).WithNow(func() time.Time { return now })
	ctx := context.Background()

	// First reservation goes through.
	remaining, err := s.Reserve(ctx, "wallet-1")
	require.NoError(t, err)
	require.Zero(t, remaining)

	// The key is held while the payment is in flight.
	_, err = s.Reserve(ctx, "wallet-1")
	require.ErrorIs(t, err, application.ErrCooldownActive)

	// A failed payment releases the key immediately.
	require.NoError(t, s.Release(ctx, "wallet-1"))
	_, err = s.Reserve(ctx, "wallet-1")
	require.NoError(t, err)

	// A confirmed payment starts the full window.
	require.NoError(t, s.Commit(ctx, "wallet-1"))
	now = now.Add(time.Hour)
	remaining, err = s.Reserve(ctx, "wallet-1")
	require.ErrorIs(t, err, application.ErrCooldownActive)
	require.Equal(t, 23*time.Hour, remaining)
}

func TestReservationExpires(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewCooldownStore(24*time.Hour, 5*time.Minute).WithNow(func() time.Time { return now })
	ctx := context.Background()

	_, err := s.Reserve(ctx, "wallet-1")
	require.NoError(t, err)

	// A crashed attempt that never released frees up after the reserve TTL.
	now = now.Add(5*time.Minute + time.Second)
	_, err = s.Reserve(ctx, "wallet-1")
	require.NoError(t, err)
}

func TestKeysAreIndependent(t *testing.T) {
	s := NewCooldownStore(24*time.Hour, 5*time.Minute)
	ctx := context.Background()

	_, err := s.Reserve(ctx, "wallet-1")
	require.NoError(t, err)
	_, err = s.Reserve(ctx, "wallet-2")
	require.NoError(t, err)
}
