package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"solswap-service/internal/application"
)

// CooldownRepo keeps faucet cooldown windows in Postgres, surviving service
// restarts. The claim is a single upsert so concurrent requests for the same
// wallet cannot both pass.
type CooldownRepo struct {
	db         *DB
	window     time.Duration
	reserveTTL time.Duration
}

var _ application.CooldownStore = (*CooldownRepo)(nil)

func NewCooldownRepo(db *DB, window, reserveTTL time.Duration) *CooldownRepo {
	return &CooldownRepo{db: db, window: window, reserveTTL: reserveTTL}
}

func (r *CooldownRepo) Reserve(ctx context.Context, key string) (time.Duration, error) {
	const claim = `
        INSERT INTO faucet_cooldowns (wallet, state, expires_at)
        VALUES ($1, 'reserved', now() + make_interval(secs => $2))
        ON CONFLICT (wallet) DO UPDATE
          SET state = 'reserved', expires_at = now() + make_interval(secs => $2)
          WHERE faucet_cooldowns.expires_at <= now()`
	tag, err := r.db.Pool.Exec(ctx, claim, key, r.reserveTTL.Seconds())
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 1 {
		return 0, nil
	}

	const remaining = `
        SELECT EXTRACT(EPOCH FROM expires_at - now())::float8
        FROM faucet_cooldowns WHERE wallet = $1`
	var secs float64
	if err := r.db.Pool.QueryRow(ctx, remaining, key).Scan(&secs); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Row vanished between claim and read; the caller just retries.
			return 0, application.ErrCooldownActive
		}
		return 0, err
	}
	if secs < 0 {
		secs = 0
	}
	return time.Duration(secs * float64(time.Second)), application.ErrCooldownActive
}

func (r *CooldownRepo) Commit(ctx context.Context, key string) error {
	const q = `
        INSERT INTO faucet_cooldowns (wallet, state, expires_at)
        VALUES ($1, 'paid', now() + make_interval(secs => $2))
        ON CONFLICT (wallet) DO UPDATE
          SET state = 'paid', expires_at = now() + make_interval(secs => $2)`
	_, err := r.db.Pool.Exec(ctx, q, key, r.window.Seconds())
	return err
}

func (r *CooldownRepo) Release(ctx context.Context, key string) error {
	// Only a live reservation is dropped; a committed window stays.
	const q = `DELETE FROM faucet_cooldowns WHERE wallet = $1 AND state = 'reserved'`
	_, err := r.db.Pool.Exec(ctx, q, key)
	return err
}
