package domain

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// AssetRef identifies a ledger asset and its authoritative precision.
// Two refs are the same asset iff their mints match.
type AssetRef struct {
	Mint     solana.PublicKey
	Symbol   string
	Decimals uint8
}

func (a AssetRef) Equal(b AssetRef) bool { return a.Mint.Equals(b.Mint) }

var maxUint64 = new(big.Int).SetUint64(^uint64(0))

// ToBaseUnits converts a human-decimal amount to the asset's smallest unit,
// truncating toward zero so the result never exceeds what the caller entered.
func (a AssetRef) ToBaseUnits(amount decimal.Decimal) (uint64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("amount must not be negative: %s", amount)
	}
	v := amount.Shift(int32(a.Decimals)).Floor().BigInt()
	if v.Cmp(maxUint64) > 0 {
		return 0, fmt.Errorf("amount %s %s overflows base units", amount, a.Symbol)
	}
	return v.Uint64(), nil
}

// FromBaseUnits converts a smallest-unit amount back to the decimal form.
func (a AssetRef) FromBaseUnits(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0).Shift(-int32(a.Decimals))
}
