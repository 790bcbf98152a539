package application

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"

	"solswap-service/internal/domain"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeGateway struct {
	mu         sync.Mutex
	balance    uint64
	balanceErr error
	anchor     domain.Anchor
	anchorErr  error
	submitErr  error
	submitted  []*solana.Transaction
	statusFn   func(sig solana.Signature) (domain.SignatureStatus, error)
	polls      int
	// accounts holds addresses that exist on-ledger. With autoCreate set, an
	// address starts existing after its first existence check, emulating the
	// scheduler's creation instruction landing.
	accounts    map[string]bool
	autoCreate  bool
	existsCalls map[string]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		balance:     10_000_000_000,
		anchor:      domain.Anchor{Blockhash: solana.Hash{1}, LastValidBlockHeight: 100},
		accounts:    map[string]bool{},
		existsCalls: map[string]int{},
		statusFn: func(solana.Signature) (domain.SignatureStatus, error) {
			return domain.SignatureStatus{Level: domain.ConfirmationConfirmed}, nil
		},
	}
}

func (g *fakeGateway) Balance(context.Context, solana.PublicKey) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.balanceErr != nil {
		return 0, g.balanceErr
	}
	return g.balance, nil
}

func (g *fakeGateway) LatestAnchor(context.Context) (domain.Anchor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.anchorErr != nil {
		return domain.Anchor{}, g.anchorErr
	}
	return g.anchor, nil
}

func (g *fakeGateway) AccountExists(_ context.Context, addr solana.PublicKey) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := addr.String()
	g.existsCalls[key]++
	exists := g.accounts[key]
	if g.autoCreate && !exists {
		g.accounts[key] = true
	}
	return exists, nil
}

func (g *fakeGateway) Submit(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.submitErr != nil {
		return solana.Signature{}, g.submitErr
	}
	g.submitted = append(g.submitted, tx)
	var sig solana.Signature
	sig[0] = byte(len(g.submitted))
	return sig, nil
}

func (g *fakeGateway) SignatureStatus(_ context.Context, sig solana.Signature) (domain.SignatureStatus, error) {
	g.mu.Lock()
	fn := g.statusFn
	g.polls++
	g.mu.Unlock()
	return fn(sig)
}

func (g *fakeGateway) pollCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.polls
}

type fakeQuoteService struct {
	mu         sync.Mutex
	calls      int
	lastParams domain.QuoteParams
	quote      domain.Quote
	err        error
	swapTx     *solana.Transaction
	swapErr    error
	swapCalls  int
	lastPayer  solana.PublicKey
	lastRoute  []byte
}

func (f *fakeQuoteService) Quote(_ context.Context, p domain.QuoteParams) (domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastParams = p
	if f.err != nil {
		return domain.Quote{}, f.err
	}
	q := f.quote
	if q.InAmount == 0 {
		q.InAmount = p.Amount
	}
	return q, nil
}

func (f *fakeQuoteService) SwapTransaction(_ context.Context, q domain.Quote, payer solana.PublicKey) (*solana.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swapCalls++
	f.lastPayer = payer
	f.lastRoute = append([]byte(nil), q.Route...)
	if f.swapErr != nil {
		return nil, f.swapErr
	}
	return f.swapTx, nil
}

func (f *fakeQuoteService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSigner struct {
	wallet *solana.Wallet
	err    error
	signed int
}

func newFakeSigner() *fakeSigner { return &fakeSigner{wallet: solana.NewWallet()} }

func (s *fakeSigner) PublicKey() solana.PublicKey { return s.wallet.PublicKey() }

func (s *fakeSigner) Sign(context.Context, *solana.Transaction) error {
	if s.err != nil {
		return s.err
	}
	s.signed++
	return nil
}

// fakeStore behaves like the memory store: one reservation per key until
// released or committed.
type fakeStore struct {
	mu        sync.Mutex
	remaining time.Duration // forced remaining wait, when > 0
	err       error
	held      map[string]bool
	commits   int
	releases  int
}

func newFakeStore() *fakeStore { return &fakeStore{held: map[string]bool{}} }

func (s *fakeStore) Reserve(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	if s.remaining > 0 {
		return s.remaining, ErrCooldownActive
	}
	if s.held[key] {
		return 24 * time.Hour, ErrCooldownActive
	}
	s.held[key] = true
	return 0, nil
}

func (s *fakeStore) Commit(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits++
	s.held[key] = true
	return nil
}

func (s *fakeStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases++
	delete(s.held, key)
	return nil
}

type fakeExecutor struct {
	mu        sync.Mutex
	delay     time.Duration
	err       error
	rec       domain.TransactionRecord
	failEvery int // every n-th call fails, 0 disables
	calls     int
	ixs       [][]solana.Instruction
	swapCalls int
	quotes    []domain.Quote
}

func newFakeExecutor() *fakeExecutor {
	var sig solana.Signature
	sig[0] = 7
	return &fakeExecutor{rec: domain.TransactionRecord{Signature: sig, Status: domain.TxConfirmed}}
}

func (f *fakeExecutor) ExecuteInstructions(_ context.Context, _ Signer, ixs []solana.Instruction) (domain.TransactionRecord, error) {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.ixs = append(f.ixs, ixs)
	if f.err != nil {
		return domain.TransactionRecord{}, f.err
	}
	if f.failEvery > 0 && f.calls%f.failEvery == 0 {
		return domain.TransactionRecord{Status: domain.TxFailed}, domain.E(domain.KindSubmissionRejected, "boom", nil)
	}
	return f.rec, nil
}

func (f *fakeExecutor) ExecuteSwap(_ context.Context, _ Signer, q domain.Quote) (domain.TransactionRecord, error) {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.swapCalls++
	f.quotes = append(f.quotes, q)
	if f.err != nil {
		return domain.TransactionRecord{}, f.err
	}
	return f.rec, nil
}

type fakeFetcher struct {
	mu    sync.Mutex
	quote domain.Quote
	err   error
	reqs  []QuoteRequest
}

func (f *fakeFetcher) Fetch(_ context.Context, req QuoteRequest) (domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return domain.Quote{}, f.err
	}
	return f.quote, nil
}
