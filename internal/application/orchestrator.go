package application

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"solswap-service/internal/domain"
)

const defaultQuoteTTL = 30 * time.Second

// Orchestrator turns an intent (a quote, or a set of explicit instructions)
// into a built, signed, submitted transaction and drives it to a terminal
// state. At most one signed transaction is submitted per call; concurrent
// calls for the same logical intent are the caller's responsibility to avoid.
type Orchestrator struct {
	gw       LedgerGateway
	quotes   QuoteService
	clock    Clock
	log      *zap.Logger
	quoteTTL time.Duration
	trackOpt []TrackerOption
}

type OrchestratorOption func(*Orchestrator)

func WithQuoteTTL(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) { o.quoteTTL = d }
}

func WithOrchestratorClock(c Clock) OrchestratorOption {
	return func(o *Orchestrator) { o.clock = c }
}

// WithTracking configures the poll loop of every tracker the orchestrator
// spawns.
func WithTracking(opts ...TrackerOption) OrchestratorOption {
	return func(o *Orchestrator) { o.trackOpt = opts }
}

func NewOrchestrator(gw LedgerGateway, quotes QuoteService, log *zap.Logger, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		gw:       gw,
		quotes:   quotes,
		log:      log,
		quoteTTL: defaultQuoteTTL,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.clock == nil {
		o.clock = realClock{}
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	return o
}

// ExecuteInstructions builds a transaction from explicit instructions on a
// fresh anchor, signs, submits, and awaits the terminal state.
func (o *Orchestrator) ExecuteInstructions(ctx context.Context, signer Signer, ixs []solana.Instruction) (domain.TransactionRecord, error) {
	anchor, err := o.gw.LatestAnchor(ctx)
	if err != nil {
		return domain.TransactionRecord{}, domain.E(domain.KindNetwork, "fetch recent anchor", err)
	}
	tx, err := solana.NewTransaction(ixs, anchor.Blockhash, solana.TransactionPayer(signer.PublicKey()))
	if err != nil {
		return domain.TransactionRecord{}, domain.E(domain.KindBadInput, "build transaction", err)
	}
	return o.signSubmitAwait(ctx, signer, tx)
}

// ExecuteSwap exchanges the quote's opaque route payload for an unsigned
// transaction, re-anchors it, then signs, submits and awaits. A quote past
// the freshness bound is refused: the caller must re-fetch, never execute a
// stale price.
func (o *Orchestrator) ExecuteSwap(ctx context.Context, signer Signer, q domain.Quote) (domain.TransactionRecord, error) {
	if q.AgeAt(o.clock.Now()) > o.quoteTTL {
		return domain.TransactionRecord{}, domain.E(domain.KindBadInput, "quote too old to execute", ErrStaleQuote)
	}
	tx, err := o.quotes.SwapTransaction(ctx, q, signer.PublicKey())
	if err != nil {
		return domain.TransactionRecord{}, domain.E(domain.KindNetwork, "build swap transaction", err)
	}
	anchor, err := o.gw.LatestAnchor(ctx)
	if err != nil {
		return domain.TransactionRecord{}, domain.E(domain.KindNetwork, "fetch recent anchor", err)
	}
	tx.Message.RecentBlockhash = anchor.Blockhash
	return o.signSubmitAwait(ctx, signer, tx)
}

func (o *Orchestrator) signSubmitAwait(ctx context.Context, signer Signer, tx *solana.Transaction) (domain.TransactionRecord, error) {
	if err := signer.Sign(ctx, tx); err != nil {
		return domain.TransactionRecord{}, domain.E(domain.KindUserRejected, "transaction not signed", err)
	}
	sig, err := o.gw.Submit(ctx, tx)
	if err != nil {
		return domain.TransactionRecord{}, domain.E(domain.KindSubmissionRejected, "transaction rejected at submission", err)
	}
	o.log.Info("transaction_submitted",
		zap.String("signature", sig.String()),
		zap.String("signer", signer.PublicKey().String()),
	)

	tr := NewTracker(o.gw, sig, o.log, o.trackOpt...)
	rec := tr.Run(ctx)
	switch rec.Status {
	case domain.TxConfirmed:
		return rec, nil
	case domain.TxFailed:
		return rec, domain.E(domain.KindSubmissionRejected, "transaction failed on ledger: "+rec.ErrDetail, nil)
	default:
		// Unknown outcome: the transaction may still confirm later. Callers
		// must reconcile by re-querying the signature, not assume failure.
		return rec, domain.E(domain.KindConfirmationTimeout, "confirmation not observed in time", nil)
	}
}
