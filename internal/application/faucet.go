package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"go.uber.org/zap"

	"solswap-service/internal/domain"
)

// InstructionExecutor is the slice of the orchestrator the faucet needs.
type InstructionExecutor interface {
	ExecuteInstructions(ctx context.Context, signer Signer, ixs []solana.Instruction) (domain.TransactionRecord, error)
}

type Disbursement struct {
	Signature   solana.Signature
	Lamports    uint64
	ExplorerURL string
}

type FaucetConfig struct {
	AmountLamports    uint64
	FeeMarginLamports uint64
	ExplorerBase      string
}

// Faucet pays a fixed amount to a recipient at most once per cooldown window.
// The recipient address is taken as supplied; ownership of the address is not
// verified.
type Faucet struct {
	gw     LedgerGateway
	exec   InstructionExecutor
	store  CooldownStore
	signer Signer
	cfg    FaucetConfig
	log    *zap.Logger
}

func NewFaucet(gw LedgerGateway, exec InstructionExecutor, store CooldownStore, signer Signer, cfg FaucetConfig, log *zap.Logger) *Faucet {
	if log == nil {
		log = zap.NewNop()
	}
	return &Faucet{gw: gw, exec: exec, store: store, signer: signer, cfg: cfg, log: log}
}

// Disburse transfers the configured amount to the recipient. The cooldown
// reservation is the atomic check-and-act: near-simultaneous requests for the
// same recipient serialize on it, so at most one can pay. The cooldown is
// committed strictly after on-ledger confirmation; a failed attempt releases
// the reservation and does not count.
func (f *Faucet) Disburse(ctx context.Context, recipient solana.PublicKey) (Disbursement, error) {
	key := recipient.String()

	remaining, err := f.store.Reserve(ctx, key)
	if errors.Is(err, ErrCooldownActive) {
		return Disbursement{}, &domain.Error{
			Kind:  domain.KindRateLimited,
			Msg:   fmt.Sprintf("airdrop cooldown active, try again in %d hours", domain.CeilHours(remaining)),
			Cause: ErrCooldownActive,
			Wait:  remaining,
		}
	}
	if err != nil {
		return Disbursement{}, domain.E(domain.KindNetwork, "cooldown store unavailable", err)
	}

	bal, err := f.gw.Balance(ctx, f.signer.PublicKey())
	if err != nil {
		f.release(ctx, key)
		return Disbursement{}, domain.E(domain.KindNetwork, "check issuer balance", err)
	}
	if bal < f.cfg.AmountLamports+f.cfg.FeeMarginLamports {
		f.release(ctx, key)
		f.log.Error("faucet_underfunded",
			zap.Uint64("balance", bal),
			zap.Uint64("required", f.cfg.AmountLamports+f.cfg.FeeMarginLamports),
		)
		return Disbursement{}, domain.E(domain.KindInsufficientFunds, "airdrop service temporarily unavailable", nil)
	}

	ix := system.NewTransferInstruction(f.cfg.AmountLamports, f.signer.PublicKey(), recipient).Build()
	rec, err := f.exec.ExecuteInstructions(ctx, f.signer, []solana.Instruction{ix})
	if err != nil {
		if domain.KindOf(err) == domain.KindConfirmationTimeout {
			// Outcome unknown: the transfer may still confirm. Keep the
			// cooldown so the recipient cannot be paid twice.
			_ = f.store.Commit(ctx, key)
		} else {
			f.release(ctx, key)
		}
		var de *domain.Error
		if errors.As(err, &de) && !rec.Signature.IsZero() {
			de.ExplorerURL = domain.ExplorerTxURL(f.cfg.ExplorerBase, rec.Signature)
		}
		return Disbursement{}, err
	}

	if err := f.store.Commit(ctx, key); err != nil {
		// The payment went through; failing the request now would invite a
		// retry and a double-pay. Log loudly instead.
		f.log.Error("cooldown_commit_failed", zap.String("recipient", key), zap.Error(err))
	}

	f.log.Info("airdrop_sent",
		zap.String("recipient", key),
		zap.Uint64("lamports", f.cfg.AmountLamports),
		zap.String("signature", rec.Signature.String()),
	)
	return Disbursement{
		Signature:   rec.Signature,
		Lamports:    f.cfg.AmountLamports,
		ExplorerURL: domain.ExplorerTxURL(f.cfg.ExplorerBase, rec.Signature),
	}, nil
}

func (f *Faucet) release(ctx context.Context, key string) {
	if err := f.store.Release(ctx, key); err != nil {
		f.log.Warn("cooldown_release_failed", zap.String("recipient", key), zap.Error(err))
	}
}
