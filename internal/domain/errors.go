package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrorKind classifies failures for callers. Adapters surface raw errors;
// each component maps them into this taxonomy instead of leaking transport
// detail upward.
type ErrorKind string

const (
	// KindNetwork is transient; safe to retry at a higher layer.
	KindNetwork ErrorKind = "network"
	// KindUserRejected means the signer declined; never retried.
	KindUserRejected ErrorKind = "user_rejected"
	// KindSubmissionRejected covers pre-broadcast rejection and explicit
	// on-ledger failure; the caller may rebuild with new parameters.
	KindSubmissionRejected ErrorKind = "submission_rejected"
	// KindConfirmationTimeout is ambiguous: the transaction may still confirm
	// later, so it must never be read as "failed".
	KindConfirmationTimeout ErrorKind = "confirmation_timeout"
	KindRateLimited         ErrorKind = "rate_limited"
	KindInsufficientFunds   ErrorKind = "insufficient_funds"
	KindBadInput            ErrorKind = "bad_input"
	KindUnknown             ErrorKind = "unknown"
)

// Error is the user-visible failure shape: a short cause plus, where one
// exists, a link to inspect the transaction on an explorer.
type Error struct {
	Kind        ErrorKind
	Msg         string
	Cause       error
	Wait        time.Duration // set for KindRateLimited
	ExplorerURL string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }

func E(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// KindOf extracts the taxonomy member from any error in the chain, or
// KindUnknown when none is attached.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// CeilHours rounds a wait up to whole hours for display.
func CeilHours(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours()))
}
