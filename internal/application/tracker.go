package application

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"solswap-service/internal/domain"
)

const (
	defaultPollInterval   = 2 * time.Second
	defaultConfirmTimeout = 60 * time.Second
)

// Tracker drives one submitted signature to a terminal state. It is
// single-use: a new signature needs a new tracker.
type Tracker struct {
	gw       LedgerGateway
	sig      solana.Signature
	interval time.Duration
	timeout  time.Duration
	clock    Clock
	log      *zap.Logger

	mu          sync.Mutex
	status      domain.TxStatus
	errDetail   string
	subs        []chan domain.TxStatus
	submittedAt time.Time
	running     bool
}

type TrackerOption func(*Tracker)

func WithPollInterval(d time.Duration) TrackerOption {
	return func(t *Tracker) { t.interval = d }
}

func WithConfirmTimeout(d time.Duration) TrackerOption {
	return func(t *Tracker) { t.timeout = d }
}

func WithTrackerClock(c Clock) TrackerOption {
	return func(t *Tracker) { t.clock = c }
}

func NewTracker(gw LedgerGateway, sig solana.Signature, log *zap.Logger, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		gw:       gw,
		sig:      sig,
		interval: defaultPollInterval,
		timeout:  defaultConfirmTimeout,
		log:      log,
		status:   domain.TxPending,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.clock == nil {
		t.clock = realClock{}
	}
	if t.log == nil {
		t.log = zap.NewNop()
	}
	t.submittedAt = t.clock.Now()
	return t
}

// Status is the point-in-time view.
func (t *Tracker) Status() domain.TxStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Subscribe returns a channel receiving state transitions. The terminal state
// is always delivered; a slow or abandoned subscriber never blocks polling.
func (t *Tracker) Subscribe() <-chan domain.TxStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan domain.TxStatus, 4)
	t.subs = append(t.subs, ch)
	if t.status.Terminal() {
		ch <- t.status
	}
	return ch
}

// Run polls until a terminal state or the timeout bound, then stops for good.
// Transient poll failures are swallowed and retried on the next tick. Context
// cancellation stops observation only; the broadcast transaction cannot be
// aborted, so the outcome is reported as TimedOut (unknown), never Failed.
func (t *Tracker) Run(ctx context.Context) domain.TransactionRecord {
	t.mu.Lock()
	if t.running || t.status.Terminal() {
		t.mu.Unlock()
		return t.record()
	}
	t.running = true
	t.mu.Unlock()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	deadline := time.NewTimer(t.timeout)
	defer deadline.Stop()

	for {
		t.poll(ctx)
		if t.Status().Terminal() {
			return t.record()
		}
		select {
		case <-ctx.Done():
			t.transition(domain.TxTimedOut, "status polling canceled")
			return t.record()
		case <-deadline.C:
			t.transition(domain.TxTimedOut, "no terminal state within timeout")
			return t.record()
		case <-ticker.C:
		}
	}
}

func (t *Tracker) poll(ctx context.Context) {
	st, err := t.gw.SignatureStatus(ctx, t.sig)
	if err != nil {
		t.log.Debug("signature_poll_failed", zap.String("signature", t.sig.String()), zap.Error(err))
		return
	}
	switch {
	case st.Err != "":
		t.transition(domain.TxFailed, st.Err)
	case st.Level >= domain.ConfirmationConfirmed:
		t.transition(domain.TxConfirmed, "")
	}
}

// transition is monotonic: once terminal, later observations are ignored.
func (t *Tracker) transition(next domain.TxStatus, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() || t.status == next {
		return
	}
	t.status = next
	t.errDetail = detail
	for _, ch := range t.subs {
		select {
		case ch <- next:
		default:
			// Full buffer: drop the oldest state, the newest one wins.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- next:
			default:
			}
		}
	}
}

func (t *Tracker) record() domain.TransactionRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.TransactionRecord{
		Signature:   t.sig,
		SubmittedAt: t.submittedAt,
		Status:      t.status,
		ErrDetail:   t.errDetail,
	}
}
