package application

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solswap-service/internal/domain"
)

// TradeExecutor is the slice of the orchestrator the scheduler needs.
type TradeExecutor interface {
	ExecuteInstructions(ctx context.Context, signer Signer, ixs []solana.Instruction) (domain.TransactionRecord, error)
	ExecuteSwap(ctx context.Context, signer Signer, q domain.Quote) (domain.TransactionRecord, error)
}

// QuoteFetcher prices a pair on demand; the Aggregator's direct path.
type QuoteFetcher interface {
	Fetch(ctx context.Context, req QuoteRequest) (domain.Quote, error)
}

type RunMode string

const (
	// ModeTransfer moves tokens to a sink account instead of touching a real
	// pool; it generates ledger activity without market exposure.
	ModeTransfer RunMode = "transfer"
	// ModeSwap routes every step through the quote service for a real swap.
	ModeSwap RunMode = "swap"
)

type RunConfig struct {
	Pool        []Signer
	BaseAsset   domain.AssetRef
	QuoteAsset  domain.AssetRef
	SinkOwner   solana.PublicKey
	Amount      decimal.Decimal
	Trades      int
	Delay       time.Duration
	Mode        RunMode
	SlippageBps int
}

func (c RunConfig) validate() error {
	switch {
	case len(c.Pool) < 1:
		return domain.E(domain.KindBadInput, "identity pool must hold at least one signer", nil)
	case c.Trades < 1:
		return domain.E(domain.KindBadInput, "trade count must be positive", nil)
	case c.Delay < 0:
		return domain.E(domain.KindBadInput, "inter-trade delay must not be negative", nil)
	case !c.Amount.IsPositive():
		return domain.E(domain.KindBadInput, "per-trade amount must be positive", nil)
	case c.Mode != ModeTransfer && c.Mode != ModeSwap:
		return domain.E(domain.KindBadInput, "unknown run mode", nil)
	}
	return nil
}

// Scheduler drives a fixed pool of signing identities through an alternating
// sell/buy sequence, one trade in flight at a time. Sequential execution is
// deliberate: concurrency would break the alternation and pacing invariants.
type Scheduler struct {
	gw     LedgerGateway
	exec   TradeExecutor
	quotes QuoteFetcher
	log    *zap.Logger
}

func NewScheduler(gw LedgerGateway, exec TradeExecutor, quotes QuoteFetcher, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{gw: gw, exec: exec, quotes: quotes, log: log}
}

// Run executes the configured trade sequence. Trade i sells when i is even
// and buys when i is odd, whatever happened to earlier trades; identities
// rotate round-robin. Per-trade failures are recorded and the run continues.
func (s *Scheduler) Run(ctx context.Context, cfg RunConfig) (domain.RunSummary, error) {
	if err := cfg.validate(); err != nil {
		return domain.RunSummary{}, err
	}
	if cfg.Mode == ModeSwap && s.quotes == nil {
		return domain.RunSummary{}, domain.E(domain.KindBadInput, "swap mode requires a quote fetcher", nil)
	}

	created := map[string]bool{}
	var sum domain.RunSummary
	for i := 0; i < cfg.Trades; i++ {
		signer := cfg.Pool[i%len(cfg.Pool)]
		step := domain.TradeStep{
			Index:         i,
			IdentityIndex: i % len(cfg.Pool),
			Identity:      signer.PublicKey(),
			Direction:     domain.DirectionFor(i),
			Amount:        cfg.Amount,
		}

		rec, err := s.executeStep(ctx, signer, cfg, step.Direction, created)
		sum.Attempted++
		out := domain.TradeOutcome{Step: step, Signature: rec.Signature, Status: rec.Status}
		if err != nil {
			if out.Status == "" {
				out.Status = domain.TxFailed
			}
			out.Err = err.Error()
			sum.Failed++
			s.log.Warn("trade_failed",
				zap.Int("trade", i),
				zap.String("direction", string(step.Direction)),
				zap.String("identity", step.Identity.String()),
				zap.Error(err),
			)
		} else {
			sum.Succeeded++
			s.log.Info("trade_confirmed",
				zap.Int("trade", i),
				zap.String("direction", string(step.Direction)),
				zap.String("identity", step.Identity.String()),
				zap.String("signature", rec.Signature.String()),
			)
		}
		sum.Outcomes = append(sum.Outcomes, out)

		if i < cfg.Trades-1 {
			if err := sleepCtx(ctx, cfg.Delay); err != nil {
				return sum, err
			}
		}
	}
	return sum, nil
}

func (s *Scheduler) executeStep(ctx context.Context, signer Signer, cfg RunConfig, dir domain.TradeDirection, created map[string]bool) (domain.TransactionRecord, error) {
	// The sold asset sets both the moved mint and the amount's precision.
	sold := cfg.BaseAsset
	if dir == domain.Buy {
		sold = cfg.QuoteAsset
	}

	if cfg.Mode == ModeSwap {
		bought := cfg.QuoteAsset
		if dir == domain.Buy {
			bought = cfg.BaseAsset
		}
		q, err := s.quotes.Fetch(ctx, QuoteRequest{
			InputAsset:  sold,
			OutputAsset: bought,
			Amount:      cfg.Amount.String(),
			SlippageBps: cfg.SlippageBps,
		})
		if err != nil {
			return domain.TransactionRecord{}, err
		}
		return s.exec.ExecuteSwap(ctx, signer, q)
	}

	amount, err := sold.ToBaseUnits(cfg.Amount)
	if err != nil {
		return domain.TransactionRecord{}, domain.E(domain.KindBadInput, "convert trade amount", err)
	}

	var ixs []solana.Instruction
	src, err := s.ensureTokenAccount(ctx, signer, signer.PublicKey(), sold.Mint, created, &ixs)
	if err != nil {
		return domain.TransactionRecord{}, err
	}
	dst, err := s.ensureTokenAccount(ctx, signer, cfg.SinkOwner, sold.Mint, created, &ixs)
	if err != nil {
		return domain.TransactionRecord{}, err
	}
	ixs = append(ixs, token.NewTransferInstruction(amount, src, dst, signer.PublicKey(), nil).Build())
	return s.exec.ExecuteInstructions(ctx, signer, ixs)
}

// ensureTokenAccount resolves the owner's holding account for mint and, when
// it does not exist yet, injects a creation instruction into the same
// transaction. Creation is idempotent across runs: an account that already
// exists on-ledger is never created twice, and a per-run cache avoids
// re-checking the same (owner, mint) pair.
func (s *Scheduler) ensureTokenAccount(ctx context.Context, payer Signer, owner, mint solana.PublicKey, created map[string]bool, ixs *[]solana.Instruction) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, domain.E(domain.KindBadInput, "derive token account", err)
	}
	key := owner.String() + "/" + mint.String()
	if created[key] {
		return ata, nil
	}
	exists, err := s.gw.AccountExists(ctx, ata)
	if err != nil {
		return solana.PublicKey{}, domain.E(domain.KindNetwork, "check token account", err)
	}
	if !exists {
		s.log.Info("creating_token_account",
			zap.String("owner", owner.String()),
			zap.String("mint", mint.String()),
		)
		*ixs = append(*ixs, associatedtokenaccount.NewCreateInstruction(payer.PublicKey(), owner, mint).Build())
	}
	created[key] = true
	return ata, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
