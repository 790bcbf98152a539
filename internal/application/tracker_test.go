package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"solswap-service/internal/domain"
)

func Test_Tracker_Confirms(t *testing.T) {
	t.Parallel()
	gw := newFakeGateway()
	var mu sync.Mutex
	polls := 0
	gw.statusFn = func(solana.Signature) (domain.SignatureStatus, error) {
		mu.Lock()
		defer mu.Unlock()
		polls++
		if polls < 3 {
			return domain.SignatureStatus{Level: domain.ConfirmationProcessed}, nil
		}
		return domain.SignatureStatus{Level: domain.ConfirmationConfirmed}, nil
	}

	tr := NewTracker(gw, solana.Signature{1}, nil, WithPollInterval(5*time.Millisecond), WithConfirmTimeout(time.Second))
	require.Equal(t, domain.TxPending, tr.Status())

	rec := tr.Run(context.Background())
	require.Equal(t, domain.TxConfirmed, rec.Status)
	require.Equal(t, solana.Signature{1}, rec.Signature)
	require.Empty(t, rec.ErrDetail)
	require.Equal(t, domain.TxConfirmed, tr.Status())
}

func Test_Tracker_ProcessedIsNotConfirmed(t *testing.T) {
	t.Parallel()
	gw := newFakeGateway()
	gw.statusFn = func(solana.Signature) (domain.SignatureStatus, error) {
		return domain.SignatureStatus{Level: domain.ConfirmationProcessed}, nil
	}

	tr := NewTracker(gw, solana.Signature{1}, nil, WithPollInterval(5*time.Millisecond), WithConfirmTimeout(40*time.Millisecond))
	rec := tr.Run(context.Background())
	require.Equal(t, domain.TxTimedOut, rec.Status)
}

func Test_Tracker_FailedWithDetail(t *testing.T) {
	t.Parallel()
	gw := newFakeGateway()
	gw.statusFn = func(solana.Signature) (domain.SignatureStatus, error) {
		return domain.SignatureStatus{Level: domain.ConfirmationProcessed, Err: "custom program error 0x1"}, nil
	}

	tr := NewTracker(gw, solana.Signature{1}, nil, WithPollInterval(5*time.Millisecond), WithConfirmTimeout(time.Second))
	rec := tr.Run(context.Background())
	require.Equal(t, domain.TxFailed, rec.Status)
	require.Equal(t, "custom program error 0x1", rec.ErrDetail)
}

func Test_Tracker_SwallowsTransientPollErrors(t *testing.T) {
	t.Parallel()
	gw := newFakeGateway()
	var mu sync.Mutex
	polls := 0
	gw.statusFn = func(solana.Signature) (domain.SignatureStatus, error) {
		mu.Lock()
		defer mu.Unlock()
		polls++
		if polls == 1 {
			return domain.SignatureStatus{}, context.DeadlineExceeded
		}
		return domain.SignatureStatus{Level: domain.ConfirmationFinalized}, nil
	}

	tr := NewTracker(gw, solana.Signature{1}, nil, WithPollInterval(5*time.Millisecond), WithConfirmTimeout(time.Second))
	rec := tr.Run(context.Background())
	require.Equal(t, domain.TxConfirmed, rec.Status)
}

func Test_Tracker_TimesOutOnceAndStopsPolling(t *testing.T) {
	t.Parallel()
	gw := newFakeGateway()
	gw.statusFn = func(solana.Signature) (domain.SignatureStatus, error) {
		return domain.SignatureStatus{}, nil
	}

	tr := NewTracker(gw, solana.Signature{1}, nil, WithPollInterval(5*time.Millisecond), WithConfirmTimeout(30*time.Millisecond))
	sub := tr.Subscribe()
	rec := tr.Run(context.Background())
	require.Equal(t, domain.TxTimedOut, rec.Status)

	require.Equal(t, domain.TxTimedOut, <-sub)
	select {
	case st := <-sub:
		t.Fatalf("unexpected second notification: %v", st)
	default:
	}

	polled := gw.pollCount()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, polled, gw.pollCount(), "polling must stop at the terminal state")
}

func Test_Tracker_SubscribeAfterTerminal(t *testing.T) {
	t.Parallel()
	gw := newFakeGateway()
	tr := NewTracker(gw, solana.Signature{1}, nil, WithPollInterval(5*time.Millisecond), WithConfirmTimeout(time.Second))
	_ = tr.Run(context.Background())

	require.Equal(t, domain.TxConfirmed, <-tr.Subscribe())
}

func Test_Tracker_CancellationReportsUnknown(t *testing.T) {
	t.Parallel()
	gw := newFakeGateway()
	gw.statusFn = func(solana.Signature) (domain.SignatureStatus, error) {
		return domain.SignatureStatus{}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := NewTracker(gw, solana.Signature{1}, nil, WithPollInterval(time.Hour), WithConfirmTimeout(time.Hour))
	rec := tr.Run(ctx)
	require.Equal(t, domain.TxTimedOut, rec.Status)
}
