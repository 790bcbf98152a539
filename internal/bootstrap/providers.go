package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"solswap-service/internal/application"
	"solswap-service/internal/config"
	"solswap-service/internal/infrastructure/jupiter"
	"solswap-service/internal/infrastructure/keys"
	"solswap-service/internal/infrastructure/logx"
	"solswap-service/internal/infrastructure/memory"
	"solswap-service/internal/infrastructure/pg"
	"solswap-service/internal/infrastructure/redisstore"
	"solswap-service/internal/infrastructure/solanarpc"
)

// BuildCooldownStore builds the faucet cooldown backend selected by
// COOLDOWN_BACKEND. It returns the store, a readiness ping (nil for the
// in-memory backend) and a cleanup func.
func BuildCooldownStore(ctx context.Context, cfg config.Config) (application.CooldownStore, func(context.Context) error, func(), error) {
	log := logx.L()

	switch cfg.CooldownBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := redisstore.New(rdb, cfg.FaucetCooldown, cfg.FaucetReserveTTL)
		ping := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		cleanup := func() {
			log.Info("closing redis")
			_ = rdb.Close()
		}
		return store, ping, cleanup, nil
	case "pg":
		if cfg.DatabaseURL == "" {
			return nil, nil, func() {}, fmt.Errorf("DATABASE_URL is required for COOLDOWN_BACKEND=pg")
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, func() {}, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, nil, func() {}, err
		}
		repo := pg.NewCooldownRepo(db, cfg.FaucetCooldown, cfg.FaucetReserveTTL)
		cleanup := func() {
			log.Info("closing pg")
			db.Close()
		}
		return repo, db.Ping, cleanup, nil
	case "memory":
		return memory.NewCooldownStore(cfg.FaucetCooldown, cfg.FaucetReserveTTL), nil, func() {}, nil
	default:
		return nil, nil, func() {}, fmt.Errorf("unknown COOLDOWN_BACKEND %q", cfg.CooldownBackend)
	}
}

func BuildGateway(cfg config.Config) *solanarpc.Gateway {
	return solanarpc.New(cfg.RPCURL)
}

func BuildQuoteService(cfg config.Config) *jupiter.Client {
	return jupiter.New(cfg.QuoteAPIBase, cfg.RequestTimeout)
}

// BuildFaucetSigner loads the faucet's signing key from BOT_PRIVATE_KEY.
func BuildFaucetSigner(cfg config.Config) (*keys.LocalSigner, error) {
	if cfg.FaucetSecretKey == "" {
		return nil, fmt.Errorf("BOT_PRIVATE_KEY is required")
	}
	return keys.FromBase58(cfg.FaucetSecretKey)
}
