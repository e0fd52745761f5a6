package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/points-pay/points_pay/internal/config"
	"github.com/points-pay/points_pay/internal/identity"
	"github.com/points-pay/points_pay/internal/infra"
	"github.com/points-pay/points_pay/internal/ledger"
	"github.com/points-pay/points_pay/internal/logging"
	"github.com/points-pay/points_pay/internal/notification"
	"github.com/points-pay/points_pay/internal/otp"
	"github.com/points-pay/points_pay/internal/payments"
	"github.com/points-pay/points_pay/internal/routes"
	"github.com/points-pay/points_pay/internal/server"
	"github.com/points-pay/points_pay/internal/storage"
	"github.com/points-pay/points_pay/internal/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	store := storage.NewFileStore(cfg.DataDir)
	walletRepo := wallet.NewFileRepository(store)
	walletSvc := wallet.NewService(walletRepo)
	txLedger := ledger.NewFileLedger(store)
	notifier := notification.NewLoggerNotifier(logger)
	paymentSvc := payments.NewService(walletRepo, txLedger, notifier)
	userSvc := identity.NewService(identity.NewFileRepository(store))
	otpManager := otp.NewManager(cfg.OTPTTL)

	master, created, err := walletSvc.EnsureMaster(ctx)
	if err != nil {
		logger.Error("bootstrap master wallet", "error", err)
		os.Exit(1)
	}
	if created {
		logger.Info("master wallet created", "wallet_id", master.ID, "balance", master.Balance.StringFixed(2))
	} else {
		logger.Info("master wallet present", "wallet_id", master.ID, "balance", master.Balance.StringFixed(2))
	}

	deps := routes.Deps{
		Cfg:      cfg,
		Logger:   logger,
		Users:    userSvc,
		Wallets:  walletSvc,
		Ledger:   txLedger,
		Payments: paymentSvc,
		OTP:      otpManager,
		Notifier: notifier,
	}

	if cfg.RedisURL != "" {
		cache, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
		deps.Cache = cache
	}

	srv, err := server.New(cfg, deps)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
