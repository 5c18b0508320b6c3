package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wichananm65/wealth-wheel-backend/internal/airtable"
	"github.com/wichananm65/wealth-wheel-backend/internal/config"
	"github.com/wichananm65/wealth-wheel-backend/internal/logging"
	"github.com/wichananm65/wealth-wheel-backend/internal/payment"
	"github.com/wichananm65/wealth-wheel-backend/internal/server"
	"github.com/wichananm65/wealth-wheel-backend/internal/user"
	"github.com/wichananm65/wealth-wheel-backend/internal/yoco"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.IsProduction())
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	userRepo := mustUserRepository(cfg, logger)
	userService := user.NewService(userRepo, logger)
	userHandler := user.NewHandler(userService, logger)

	gateway := yoco.NewClient(cfg.YocoChargesURL, cfg.YocoSecretKey)
	paymentService := payment.NewService(gateway, userService,
		payment.WithAmount(cfg.AmountInCents, cfg.Currency),
		payment.WithLogger(logger),
	)
	paymentHandler := payment.NewHandler(paymentService, logger)

	app := server.New(server.Options{AllowOrigins: cfg.AllowOrigin, Logger: logger}, userHandler, paymentHandler)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Wealth Wheel server running", zap.String("addr", cfg.Addr()), zap.String("recordStore", cfg.RecordStore))
	if err := app.Listen(cfg.Addr()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func mustUserRepository(cfg config.Config, logger *zap.Logger) user.Repository {
	switch cfg.RecordStore {
	case config.StoreMemory:
		logger.Warn("using in-memory record store; data is lost on restart")
		return user.NewInMemoryRepository(nil)
	default:
		client := airtable.NewClient(cfg.AirtableAPIURL, cfg.AirtableBaseID, cfg.AirtableAPIKey)
		return user.NewAirtableRepository(client, cfg.AirtableUserTable)
	}
}
