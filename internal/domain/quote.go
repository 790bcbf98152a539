package domain

import (
	"encoding/json"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// QuoteParams is the wire-level request to the quote service. Amount is
// already converted to the input asset's smallest unit.
type QuoteParams struct {
	InputMint   solana.PublicKey
	OutputMint  solana.PublicKey
	Amount      uint64
	SlippageBps int
}

// Quote is a priced route returned by the quote service. Route is the
// service's opaque payload, handed back verbatim when the swap transaction is
// requested; the orchestrator never interprets it.
type Quote struct {
	InputMint   solana.PublicKey
	OutputMint  solana.PublicKey
	InAmount    uint64
	OutAmount   uint64
	PriceImpact decimal.Decimal
	Route       json.RawMessage
	FetchedAt   time.Time
}

// AgeAt reports how stale the quote is at the given instant.
func (q Quote) AgeAt(now time.Time) time.Duration { return now.Sub(q.FetchedAt) }
