package application

import "errors"

var (
	// ErrCooldownActive is returned by CooldownStore.Reserve together with the
	// remaining wait when the key is inside its window or already reserved.
	ErrCooldownActive = errors.New("cooldown active")
	// ErrBadAmount short-circuits quote requests before any network call.
	ErrBadAmount = errors.New("amount must be a positive decimal")
	// ErrStaleQuote means the quote aged past the freshness bound and must be
	// re-fetched before execution.
	ErrStaleQuote = errors.New("quote is stale")
)
