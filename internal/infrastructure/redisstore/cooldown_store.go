package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"solswap-service/internal/application"
)

const keyPrefix = "faucet:cooldown:"

// reserveScript claims the key for one payment attempt, or reports the
// remaining cooldown in milliseconds. Check and claim run as one script so
// two concurrent requests cannot both pass.
var reserveScript = redis.NewScript(`
local ttl = redis.call("PTTL", KEYS[1])
if ttl > 0 then
  return ttl
end
redis.call("SET", KEYS[1], "reserved", "PX", ARGV[1])
return 0
`)

// releaseScript drops the key only while it still holds a reservation, so a
// late Release cannot erase a committed cooldown.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == "reserved" then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

type Store struct {
	Client     *redis.Client
	Window     time.Duration
	ReserveTTL time.Duration
}

var _ application.CooldownStore = (*Store)(nil)

func New(client *redis.Client, window, reserveTTL time.Duration) *Store {
	return &Store{Client: client, Window: window, ReserveTTL: reserveTTL}
}

func (s *Store) Reserve(ctx context.Context, key string) (time.Duration, error) {
	res, err := reserveScript.Run(ctx, s.Client, []string{keyPrefix + key}, s.ReserveTTL.Milliseconds()).Int64()
	if err != nil {
		return 0, err
	}
	if res > 0 {
		return time.Duration(res) * time.Millisecond, application.ErrCooldownActive
	}
	return 0, nil
}

func (s *Store) Commit(ctx context.Context, key string) error {
	return s.Client.Set(ctx, keyPrefix+key, "paid", s.Window).Err()
}

func (s *Store) Release(ctx context.Context, key string) error {
	return releaseScript.Run(ctx, s.Client, []string{keyPrefix + key}).Err()
}
