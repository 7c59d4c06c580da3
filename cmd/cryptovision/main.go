package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"cryptovision/internal/advisor"
	"cryptovision/internal/api"
	"cryptovision/internal/app/port"
	"cryptovision/internal/app/service"
	"cryptovision/internal/bot"
	"cryptovision/internal/config"
	"cryptovision/internal/exchange"
	"cryptovision/internal/pkg/logger"
	"cryptovision/internal/repository"
	"cryptovision/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger := logger.Must(cfg.Logging)
	defer zapLogger.Sync()

	zapLogger.Info("cryptovision starting")
	metrics.MustRegisterMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Connect(ctx, cfg.Database.URL)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		zapLogger.Fatal("failed to run migrations", zap.Error(err))
	}

	repo, err := repository.NewAccountRepository(pool, []byte(cfg.Security.EncryptionKey), zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to build account repository", zap.Error(err))
	}

	factory := exchange.NewFactory(
		time.Duration(cfg.Portfolio.FetchTimeoutSeconds)*time.Second, zapLogger)
	portfolioService := service.NewPortfolioService(repo, factory, cfg.Portfolio, zapLogger)

	// Advice is optional: without an API key the bot still runs, minus the
	// advisory flow.
	var adv port.Advisor
	if cfg.Advisor.APIKey != "" {
		gemini, err := advisor.New(ctx, cfg.Advisor.APIKey, cfg.Advisor.Model, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to build advisor", zap.Error(err))
		}
		adv = gemini
	} else {
		zapLogger.Warn("GEMINI_API_KEY not set, advisory flow disabled")
	}

	tgBot, err := bot.New(cfg.Telegram, repo, portfolioService, adv, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to build telegram bot", zap.Error(err))
	}

	srv := api.NewServer(cfg.Server, api.NewHandler(portfolioService, zapLogger))
	go func() {
		zapLogger.Info("admin server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("admin server failed", zap.Error(err))
		}
	}()

	if err := tgBot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zapLogger.Error("bot stopped with error", zap.Error(err))
	}

	zapLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("admin server shutdown failed", zap.Error(err))
	}
	zapLogger.Info("cryptovision stopped")
}
