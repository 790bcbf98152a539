package solanarpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"solswap-service/internal/application"
	"solswap-service/internal/domain"
)

// Gateway adapts the Solana RPC client to the ledger capability port. It
// holds no state and adds no logic beyond shape mapping.
type Gateway struct {
	client *rpc.Client
}

var _ application.LedgerGateway = (*Gateway)(nil)

func New(endpoint string) *Gateway {
	return &Gateway{client: rpc.New(endpoint)}
}

func (g *Gateway) Balance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	res, err := g.client.GetBalance(ctx, addr, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return res.Value, nil
}

func (g *Gateway) LatestAnchor(ctx context.Context) (domain.Anchor, error) {
	res, err := g.client.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return domain.Anchor{}, fmt.Errorf("get latest blockhash: %w", err)
	}
	return domain.Anchor{
		Blockhash:            res.Value.Blockhash,
		LastValidBlockHeight: res.Value.LastValidBlockHeight,
	}, nil
}

func (g *Gateway) AccountExists(ctx context.Context, addr solana.PublicKey) (bool, error) {
	_, err := g.client.GetAccountInfo(ctx, addr)
	if errors.Is(err, rpc.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get account info: %w", err)
	}
	return true, nil
}

func (g *Gateway) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := g.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}
	return sig, nil
}

func (g *Gateway) SignatureStatus(ctx context.Context, sig solana.Signature) (domain.SignatureStatus, error) {
	out, err := g.client.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return domain.SignatureStatus{}, fmt.Errorf("get signature status: %w", err)
	}
	if len(out.Value) == 0 || out.Value[0] == nil {
		// Not yet observed by the node.
		return domain.SignatureStatus{Level: domain.ConfirmationUnknown}, nil
	}
	st := out.Value[0]
	mapped := domain.SignatureStatus{Level: mapLevel(st.ConfirmationStatus)}
	if st.Err != nil {
		mapped.Err = fmt.Sprintf("%v", st.Err)
	}
	return mapped, nil
}

func mapLevel(s rpc.ConfirmationStatusType) domain.ConfirmationLevel {
	switch s {
	case rpc.ConfirmationStatusProcessed:
		return domain.ConfirmationProcessed
	case rpc.ConfirmationStatusConfirmed:
		return domain.ConfirmationConfirmed
	case rpc.ConfirmationStatusFinalized:
		return domain.ConfirmationFinalized
	default:
		return domain.ConfirmationUnknown
	}
}
