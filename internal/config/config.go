package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port string
	// Ledger
	RPCURL       string
	ExplorerBase string
	// Quote service
	QuoteAPIBase   string
	QuoteDebounce  time.Duration
	QuoteTTL       time.Duration
	RequestTimeout time.Duration
	// Transaction tracking
	PollInterval   time.Duration
	ConfirmTimeout time.Duration
	// Faucet
	FaucetSecretKey  string
	FaucetAmount     uint64
	FaucetFeeMargin  uint64
	FaucetCooldown   time.Duration
	FaucetReserveTTL time.Duration
	CooldownBackend  string
	// Redis (cooldown)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Postgres (cooldown)
	DatabaseURL string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func u64Def(s string, def uint64) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return def
	}
	return v
}

func durMS(key string, defMS int) time.Duration {
	return time.Duration(atoiDef(getEnv(key, strconv.Itoa(defMS)), defMS)) * time.Millisecond
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:      getEnv("ENV", "local"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnv("PORT", "8080"),

		RPCURL:       getEnv("RPC_URL", "https://api.mainnet-beta.solana.com"),
		ExplorerBase: getEnv("EXPLORER_BASE", "https://solscan.io"),

		QuoteAPIBase:   getEnv("QUOTE_API_BASE", "https://quote-api.jup.ag/v6"),
		QuoteDebounce:  durMS("QUOTE_DEBOUNCE_MS", 500),
		QuoteTTL:       durMS("QUOTE_TTL_MS", 30000),
		RequestTimeout: durMS("REQUEST_TIMEOUT_MS", 10000),

		PollInterval:   durMS("POLL_INTERVAL_MS", 2000),
		ConfirmTimeout: durMS("CONFIRM_TIMEOUT_MS", 60000),

		FaucetSecretKey:  getEnv("BOT_PRIVATE_KEY", ""),
		FaucetAmount:     u64Def(getEnv("FAUCET_AMOUNT_LAMPORTS", "5000000000"), 5_000_000_000),
		FaucetFeeMargin:  u64Def(getEnv("FAUCET_FEE_MARGIN_LAMPORTS", "5000"), 5_000),
		FaucetCooldown:   time.Duration(atoiDef(getEnv("FAUCET_COOLDOWN_HOURS", "24"), 24)) * time.Hour,
		FaucetReserveTTL: durMS("FAUCET_RESERVE_TTL_MS", 300000),
		CooldownBackend:  getEnv("COOLDOWN_BACKEND", "memory"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       atoiDef(getEnv("REDIS_DB", "0"), 0),

		DatabaseURL: getEnv("DATABASE_URL", ""),
	}
}
