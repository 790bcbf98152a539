package domain

import (
	"strings"

	"github.com/gagliardetto/solana-go"
)

// ExplorerTxURL links a signature on a ledger explorer (solscan-style paths).
func ExplorerTxURL(base string, sig solana.Signature) string {
	return strings.TrimRight(base, "/") + "/tx/" + sig.String()
}

func ExplorerAddressURL(base string, addr solana.PublicKey) string {
	return strings.TrimRight(base, "/") + "/address/" + addr.String()
}
