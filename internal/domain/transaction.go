package domain

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// Anchor is a recent ledger reference point. A transaction built on it is
// valid only until the anchor's block height passes; never reuse one across
// submission attempts.
type Anchor struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxConfirmed TxStatus = "confirmed"
	TxFailed    TxStatus = "failed"
	// TxTimedOut is a client-side terminal state: the outcome is unknown, the
	// transaction may still confirm on-ledger later.
	TxTimedOut TxStatus = "timed_out"
)

func (s TxStatus) Terminal() bool { return s != TxPending }

// ConfirmationLevel is the ledger's attestation strength for an included
// transaction, ordered weakest to strongest.
type ConfirmationLevel int

const (
	ConfirmationUnknown ConfirmationLevel = iota
	ConfirmationProcessed
	ConfirmationConfirmed
	ConfirmationFinalized
)

// SignatureStatus is one poll result for a submitted signature.
type SignatureStatus struct {
	Level ConfirmationLevel
	// Err carries the on-ledger error detail, empty when the transaction has
	// not failed.
	Err string
}

// TransactionRecord is the immutable result of one submission, handed to the
// caller once its tracker reaches a terminal state.
type TransactionRecord struct {
	Signature   solana.Signature
	SubmittedAt time.Time
	Status      TxStatus
	ErrDetail   string
}
