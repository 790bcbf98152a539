package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solswap-service/internal/application"
	"solswap-service/internal/bootstrap"
	"solswap-service/internal/config"
	"solswap-service/internal/domain"
	"solswap-service/internal/infrastructure/keys"
	"solswap-service/internal/infrastructure/logx"
)

func init() { _ = godotenv.Load() }

func main() {
	var (
		mintFlag     = flag.String("mint", "", "base token mint to trade (required)")
		decimalsFlag = flag.Int("decimals", 9, "base token decimals")
		poolFlag     = flag.String("pool", solana.WrappedSol.String(), "quote token mint")
		sinkFlag     = flag.String("sink", "", "sink owner for transfer mode (defaults to the first keypair)")
		amountFlag   = flag.String("amount", "0.01", "amount per trade in base token units")
		tradesFlag   = flag.Int("trades", 10, "number of trades to run")
		delayFlag    = flag.Duration("delay", 5*time.Second, "pause between trades")
		modeFlag     = flag.String("mode", "transfer", "run mode: transfer or swap")
		slippageFlag = flag.Int("slippage-bps", 50, "slippage tolerance in basis points")
	)
	flag.Parse()

	log := logx.L()
	cfg := config.Load()

	runCfg, err := buildRunConfig(*mintFlag, *decimalsFlag, *poolFlag, *sinkFlag, *amountFlag, *tradesFlag, *delayFlag, *modeFlag, *slippageFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gateway := bootstrap.BuildGateway(cfg)
	quotes := bootstrap.BuildQuoteService(cfg)
	orchestrator := application.NewOrchestrator(gateway, quotes, log,
		application.WithQuoteTTL(cfg.QuoteTTL),
		application.WithTracking(
			application.WithPollInterval(cfg.PollInterval),
			application.WithConfirmTimeout(cfg.ConfirmTimeout),
		),
	)
	aggregator := application.NewAggregator(quotes, log)
	defer aggregator.Close()

	scheduler := application.NewScheduler(gateway, orchestrator, aggregator, log)

	log.Info("run starting",
		zap.String("mint", runCfg.BaseAsset.Mint.String()),
		zap.String("mode", string(runCfg.Mode)),
		zap.Int("trades", runCfg.Trades),
		zap.Int("identities", len(runCfg.Pool)),
	)

	summary, err := scheduler.Run(ctx, runCfg)
	if err != nil {
		log.Fatal("run aborted", zap.Error(err))
	}

	for _, out := range summary.Outcomes {
		if out.Err != "" {
			log.Warn("trade failed",
				zap.Int("index", out.Step.Index),
				zap.String("direction", string(out.Step.Direction)),
				zap.String("error", out.Err),
			)
			continue
		}
		log.Info("trade confirmed",
			zap.Int("index", out.Step.Index),
			zap.String("direction", string(out.Step.Direction)),
			zap.String("signature", out.Signature.String()),
		)
	}
	log.Info("run finished",
		zap.Int("attempted", summary.Attempted),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
	)
	if summary.Succeeded == 0 && summary.Attempted > 0 {
		os.Exit(1)
	}
}

// buildRunConfig validates flags and loads the identity pool before anything
// touches the network.
func buildRunConfig(mint string, decimals int, pool, sink, amount string, trades int, delay time.Duration, mode string, slippageBps int) (application.RunConfig, error) {
	if mint == "" {
		return application.RunConfig{}, fmt.Errorf("-mint is required")
	}
	baseMint, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return application.RunConfig{}, fmt.Errorf("invalid -mint: %w", err)
	}
	if decimals < 0 || decimals > 18 {
		return application.RunConfig{}, fmt.Errorf("invalid -decimals %d", decimals)
	}
	poolMint, err := solana.PublicKeyFromBase58(pool)
	if err != nil {
		return application.RunConfig{}, fmt.Errorf("invalid -pool: %w", err)
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil || !amt.IsPositive() {
		return application.RunConfig{}, fmt.Errorf("invalid -amount %q", amount)
	}

	signers, err := loadKeypairs()
	if err != nil {
		return application.RunConfig{}, err
	}

	sinkOwner := signers[0].PublicKey()
	if sink != "" {
		sinkOwner, err = solana.PublicKeyFromBase58(sink)
		if err != nil {
			return application.RunConfig{}, fmt.Errorf("invalid -sink: %w", err)
		}
	}

	return application.RunConfig{
		Pool:        signers,
		BaseAsset:   domain.AssetRef{Mint: baseMint, Decimals: uint8(decimals)},
		QuoteAsset:  domain.AssetRef{Mint: poolMint, Decimals: 9},
		SinkOwner:   sinkOwner,
		Amount:      amt,
		Trades:      trades,
		Delay:       delay,
		Mode:        application.RunMode(mode),
		SlippageBps: slippageBps,
	}, nil
}

// loadKeypairs reads KEYPAIR1..KEYPAIRN base58 secret keys from the
// environment, stopping at the first gap.
func loadKeypairs() ([]application.Signer, error) {
	var signers []application.Signer
	for i := 1; ; i++ {
		raw := os.Getenv(fmt.Sprintf("KEYPAIR%d", i))
		if raw == "" {
			break
		}
		s, err := keys.FromBase58(raw)
		if err != nil {
			return nil, fmt.Errorf("KEYPAIR%d: %w", i, err)
		}
		signers = append(signers, s)
	}
	if len(signers) == 0 {
		return nil, fmt.Errorf("no keypairs configured; set KEYPAIR1..KEYPAIRN")
	}
	return signers, nil
}
