package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"askboard/internal/config"
	"askboard/internal/db"
	"askboard/internal/models"
	"askboard/internal/notify"
	"askboard/internal/router"
	"askboard/internal/services"
	"askboard/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	logger := setupLogger(cfg.Env)
	slog.SetDefault(logger)
	if cfg.Env != envLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(cfg.DB, logger)
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}
	if err := db.SeedAdmin(gdb, cfg.Admin, logger); err != nil {
		return err
	}

	cache, err := utils.NewCache[[]models.Question](cfg.Cache.Size, cfg.Cache.TTL)
	if err != nil {
		return err
	}

	var mailer notify.Mailer
	smtpMailer, err := notify.NewSMTPMailer(cfg.Mail)
	if err != nil {
		return err
	}
	if smtpMailer != nil {
		mailer = smtpMailer
	} else {
		logger.Warn("mail disabled: missing SMTP settings")
	}
	recorder := notify.NewRecorder(gdb, mailer, cfg.SiteURL)

	var emitter notify.Emitter
	var dispatcher *notify.Dispatcher
	if cfg.Notify.Inline {
		emitter = notify.NewInline(recorder)
	} else {
		dispatcher = notify.NewDispatcher(recorder, cfg.Notify.QueueSize)
		emitter = dispatcher
	}

	svc := services.New(gdb, cache, emitter)
	engine := router.New(router.Options{
		DB:            gdb,
		Services:      svc,
		Logger:        logger,
		SessionName:   cfg.Session.Name,
		SessionSecret: cfg.Session.Secret,
		SecureCookies: cfg.Env == envProd,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("askboard server starting", slog.String("addr", srv.Addr), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", slog.String("err", err.Error()))
	}
	if dispatcher != nil {
		if err := dispatcher.Close(shutdownCtx); err != nil {
			logger.Warn("notification queue not drained", slog.String("err", err.Error()))
		}
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("server stopped")
	return nil
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
