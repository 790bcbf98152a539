package application

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solswap-service/internal/domain"
)

const (
	defaultDebounceWindow = 500 * time.Millisecond
	defaultFetchTimeout   = 10 * time.Second
)

// QuoteRequest carries user-level intent: a human-entered decimal amount of
// the input asset. Conversion to smallest units happens here and nowhere
// deeper in the stack.
type QuoteRequest struct {
	InputAsset  domain.AssetRef
	OutputAsset domain.AssetRef
	Amount      string
	SlippageBps int
}

func (r QuoteRequest) params() (domain.QuoteParams, error) {
	amt, err := decimal.NewFromString(r.Amount)
	if err != nil || !amt.IsPositive() {
		return domain.QuoteParams{}, domain.E(domain.KindBadInput, "invalid input amount", ErrBadAmount)
	}
	raw, err := r.InputAsset.ToBaseUnits(amt)
	if err != nil {
		return domain.QuoteParams{}, domain.E(domain.KindBadInput, "invalid input amount", err)
	}
	if raw == 0 {
		// Below one smallest unit of the input asset.
		return domain.QuoteParams{}, domain.E(domain.KindBadInput, "invalid input amount", ErrBadAmount)
	}
	return domain.QuoteParams{
		InputMint:   r.InputAsset.Mint,
		OutputMint:  r.OutputAsset.Mint,
		Amount:      raw,
		SlippageBps: r.SlippageBps,
	}, nil
}

// QuoteResult is one debounced outcome. A nil Quote with nil Err clears a
// previously displayed quote (the input became non-positive or unparsable).
type QuoteResult struct {
	Quote *domain.Quote
	Err   error
}

// Aggregator prices asset pairs through the external quote service and
// collapses rapid successive requests into one outbound call.
type Aggregator struct {
	svc          QuoteService
	clock        Clock
	window       time.Duration
	fetchTimeout time.Duration
	log          *zap.Logger

	mu      sync.Mutex
	gen     uint64
	timer   *time.Timer
	closed  bool
	updates chan QuoteResult
}

type AggregatorOption func(*Aggregator)

func WithDebounceWindow(d time.Duration) AggregatorOption {
	return func(a *Aggregator) { a.window = d }
}

func WithAggregatorClock(c Clock) AggregatorOption {
	return func(a *Aggregator) { a.clock = c }
}

func NewAggregator(svc QuoteService, log *zap.Logger, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		svc:          svc,
		window:       defaultDebounceWindow,
		fetchTimeout: defaultFetchTimeout,
		log:          log,
		updates:      make(chan QuoteResult, 4),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.clock == nil {
		a.clock = realClock{}
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	return a
}

// Fetch prices the request immediately, bypassing the debounce. Invalid
// amounts short-circuit before any network call.
func (a *Aggregator) Fetch(ctx context.Context, req QuoteRequest) (domain.Quote, error) {
	p, err := req.params()
	if err != nil {
		return domain.Quote{}, err
	}
	q, err := a.svc.Quote(ctx, p)
	if err != nil {
		return domain.Quote{}, domain.E(domain.KindNetwork, "quote service unavailable", err)
	}
	if q.FetchedAt.IsZero() {
		q.FetchedAt = a.clock.Now()
	}
	return q, nil
}

// Request schedules a debounced fetch. Calls within the window supersede each
// other; only the latest parameters reach the quote service, and a superseded
// in-flight result is discarded without being delivered.
func (a *Aggregator) Request(req QuoteRequest) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.gen++
	gen := a.gen
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	p, err := req.params()
	if err != nil {
		a.emitLocked(QuoteResult{})
		return
	}
	a.timer = time.AfterFunc(a.window, func() { a.fire(gen, p) })
}

// Updates delivers debounced results. The channel is small and drop-oldest:
// only the latest quote matters to a consumer.
func (a *Aggregator) Updates() <-chan QuoteResult { return a.updates }

// Close stops any pending debounce timer. No result is delivered after Close.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Aggregator) fire(gen uint64, p domain.QuoteParams) {
	ctx, cancel := context.WithTimeout(context.Background(), a.fetchTimeout)
	defer cancel()
	q, err := a.svc.Quote(ctx, p)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || gen != a.gen {
		// A newer request won the race; last request wins.
		return
	}
	if err != nil {
		a.log.Warn("quote_fetch_failed", zap.Error(err))
		a.emitLocked(QuoteResult{Err: domain.E(domain.KindNetwork, "quote service unavailable", err)})
		return
	}
	if q.FetchedAt.IsZero() {
		q.FetchedAt = a.clock.Now()
	}
	a.emitLocked(QuoteResult{Quote: &q})
}

func (a *Aggregator) emitLocked(r QuoteResult) {
	for {
		select {
		case a.updates <- r:
			return
		default:
		}
		select {
		case <-a.updates:
		default:
		}
	}
}
