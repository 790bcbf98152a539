package application

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"

	"solswap-service/internal/domain"
)

// LedgerGateway is the narrow capability surface over the ledger. All amounts
// crossing it are integers in the asset's smallest unit.
type LedgerGateway interface {
	Balance(ctx context.Context, addr solana.PublicKey) (uint64, error)
	LatestAnchor(ctx context.Context) (domain.Anchor, error)
	AccountExists(ctx context.Context, addr solana.PublicKey) (bool, error)
	Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	SignatureStatus(ctx context.Context, sig solana.Signature) (domain.SignatureStatus, error)
}

// QuoteService is the external aggregator: price a pair, then exchange the
// quote's opaque route payload for an unsigned transaction.
type QuoteService interface {
	Quote(ctx context.Context, p domain.QuoteParams) (domain.Quote, error)
	SwapTransaction(ctx context.Context, q domain.Quote, payer solana.PublicKey) (*solana.Transaction, error)
}

// Signer holds key material for one identity. Implementations must never log
// or expose the private key.
type Signer interface {
	PublicKey() solana.PublicKey
	Sign(ctx context.Context, tx *solana.Transaction) error
}

// CooldownStore serializes faucet disbursements per recipient key. Reserve is
// the atomic check-and-act: it either claims the key or reports the remaining
// wait with ErrCooldownActive. Commit starts the real cooldown window after a
// confirmed payment; Release rolls back a reservation whose payment failed so
// the attempt does not count.
type CooldownStore interface {
	Reserve(ctx context.Context, key string) (time.Duration, error)
	Commit(ctx context.Context, key string) error
	Release(ctx context.Context, key string) error
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
