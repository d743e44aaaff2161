package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"blocktek-radio/internal/config"
	"blocktek-radio/internal/notify"
	"blocktek-radio/internal/repository"
	"blocktek-radio/internal/server"
	"blocktek-radio/internal/service"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfgPath := "configs/config.yml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := repository.NewSQLiteDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.MigrateDB(db, logger); err != nil {
		logger.Fatal("Failed to run database migration", zap.Error(err))
	}

	// Seed the bootstrap admin account if configured and absent.
	authRepo := repository.NewAuthRepository(db, logger)
	sessionTTL := time.Duration(cfg.Auth.SessionTTLHours) * time.Hour
	authService := service.NewAuthService(authRepo, sessionTTL, logger)
	if err := authService.EnsureAdmin(cfg.Admin.BootstrapEmail, cfg.Admin.BootstrapPassword); err != nil {
		logger.Fatal("Failed to seed admin account", zap.Error(err))
	}

	var notifier service.Notifier
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
		if err != nil {
			logger.Warn("Failed to initialize Telegram notifier, continuing without it", zap.Error(err))
		} else {
			notifier = tg
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.NewServer(db, cfg, logger, notifier)
	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}

	logger.Info("Application stopped.")
}
