package domain

import (
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

type TradeDirection string

const (
	Sell TradeDirection = "sell"
	Buy  TradeDirection = "buy"
)

// DirectionFor returns the scheduled direction of trade i. Alternation is a
// scheduling property: it does not depend on how earlier trades turned out.
func DirectionFor(i int) TradeDirection {
	if i%2 == 0 {
		return Sell
	}
	return Buy
}

// TradeStep is one scheduled trade in a volume run.
type TradeStep struct {
	Index         int
	IdentityIndex int
	Identity      solana.PublicKey
	Direction     TradeDirection
	Amount        decimal.Decimal
}

// TradeOutcome records how a step went; a failed step never stops the run.
type TradeOutcome struct {
	Step      TradeStep
	Signature solana.Signature
	Status    TxStatus
	Err       string
}

type RunSummary struct {
	Attempted int
	Succeeded int
	Failed    int
	Outcomes  []TradeOutcome
}
