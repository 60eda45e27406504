package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ai-tool-proxy/internal/app"
	"ai-tool-proxy/internal/bot"
	"ai-tool-proxy/internal/config"
	"ai-tool-proxy/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if cfg.TelegramToken == "" {
		panic(errors.New("TELEGRAM_BOT_TOKEN is required"))
	}

	logger := app.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := app.NewProxy(ctx, cfg, logger)
	if err != nil {
		logger.Error("proxy init failed", "err", err)
		os.Exit(1)
	}

	tg, err := telegram.New(telegram.Options{
		Token:      cfg.TelegramToken,
		HTTPClient: app.NewHTTPClient(cfg),
		Logger:     logger,
		Debug:      cfg.Debug,
	})
	if err != nil {
		logger.Error("telegram init failed", "err", err)
		os.Exit(1)
	}

	handler := bot.New(bot.Options{
		Sender:         tg,
		Runner:         svc,
		Logger:         logger,
		MaxConcurrent:  cfg.MaxConcurrent,
		RequestTimeout: cfg.ImageTimeout + 30*time.Second,
	})

	logger.Info("bot started", "username", tg.Username(), "provider", svc.ProviderName())

	updates := tg.Updates(telegram.UpdatesOptions{Timeout: 30 * time.Second})
	defer tg.StopUpdates()

	if err := handler.Serve(ctx, updates); err != nil {
		logger.Error("bot stopped", "err", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}
