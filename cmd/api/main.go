package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"solswap-service/internal/application"
	"solswap-service/internal/bootstrap"
	"solswap-service/internal/config"
	infraconfig "solswap-service/internal/infrastructure/config"
	httpserver "solswap-service/internal/infrastructure/http"
	"solswap-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	ctx := context.Background()
	logger := logx.L()
	cfg := config.Load()
	addr := ":" + cfg.Port

	store, ping, cleanup, err := bootstrap.BuildCooldownStore(ctx, cfg)
	if err != nil {
		logger.Fatal("bootstrap cooldown store", zap.Error(err))
	}
	defer cleanup()

	signer, err := bootstrap.BuildFaucetSigner(cfg)
	if err != nil {
		logger.Fatal("bootstrap faucet signer", zap.Error(err))
	}

	gateway := bootstrap.BuildGateway(cfg)
	quotes := bootstrap.BuildQuoteService(cfg)

	orchestrator := application.NewOrchestrator(gateway, quotes, logger,
		application.WithQuoteTTL(cfg.QuoteTTL),
		application.WithTracking(
			application.WithPollInterval(cfg.PollInterval),
			application.WithConfirmTimeout(cfg.ConfirmTimeout),
		),
	)
	faucet := application.NewFaucet(gateway, orchestrator, store, signer, application.FaucetConfig{
		AmountLamports:    cfg.FaucetAmount,
		FeeMarginLamports: cfg.FaucetFeeMargin,
		ExplorerBase:      cfg.ExplorerBase,
	}, logger)
	aggregator := application.NewAggregator(quotes, logger,
		application.WithDebounceWindow(cfg.QuoteDebounce),
	)
	defer aggregator.Close()

	srv := httpserver.NewServer(faucet, aggregator, ping)
	mux := httpserver.NewRouter(srv)

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("server started",
			zap.String("addr", addr),
			zap.String("rpc_url", cfg.RPCURL),
			zap.String("cooldown_backend", cfg.CooldownBackend),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, shCancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
	defer shCancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
