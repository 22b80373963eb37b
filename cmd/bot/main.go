package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stats_bot/internal/bot"
	"stats_bot/internal/cmc"
	"stats_bot/internal/config"
	"stats_bot/internal/diag"
	"stats_bot/internal/logger"
	"stats_bot/internal/server"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	_ = tgbotapi.SetLogger(logger.NewBotLogger(log))

	log.Info().Msg("🔍 ДИАГНОСТИКА MARVELMARKET BOT")
	if !cfg.EnvFileLoaded {
		log.Debug().Msg(".env file not found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Порт должен быть открыт до любых проверок, иначе хостинг сочтёт сервис мёртвым
	srv, err := server.Listen(cfg.Addr(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start HTTP server")
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve()
	}()

	orchestrator := diag.New(
		cfg,
		bot.New(cfg),
		cmc.New(cfg.CMCAPIKey, cmc.WithBaseURL(cfg.CMCBaseURL), cmc.WithTimeout(cfg.RequestTimeout)),
		log,
	)
	diagErr := orchestrator.Start(ctx)

	select {
	case <-ctx.Done():
		log.Warn().Msg("⚠️ Бот остановлен")
		_ = srv.Close()
	case err := <-diagErr:
		log.Error().Stack().Err(err).Msg("❌ КРИТИЧЕСКАЯ ОШИБКА")
		_ = srv.Close()
		os.Exit(1)
	case err := <-serveErr:
		if err == nil {
			return
		}
		log.Error().Stack().Err(err).Msg("❌ КРИТИЧЕСКАЯ ОШИБКА")
		os.Exit(1)
	}
}
