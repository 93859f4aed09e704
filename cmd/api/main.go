package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/weiloon/settlebook/internal/config"
	"github.com/weiloon/settlebook/internal/handler"
	"github.com/weiloon/settlebook/internal/logging"
	"github.com/weiloon/settlebook/internal/middleware"
	"github.com/weiloon/settlebook/internal/repository"
	"github.com/weiloon/settlebook/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("settlebook-api", cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	settingsRepo := repository.NewSettingsRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	ledgerSvc := service.NewLedgerService(
		repository.NewDB(db), settingsRepo, ledgerRepo, messageRepo, cfg.Location(),
	)

	settingsHandler := handler.NewSettingsHandler(ledgerSvc)
	ledgerHandler := handler.NewLedgerHandler(ledgerSvc)
	messageHandler := handler.NewMessageHandler(ledgerSvc, cfg.DefaultCurrency)
	healthHandler := handler.NewHealthHandler(db)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)

	authed := middleware.Auth(cfg.JWTSecret)
	admin := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireAdmin(h))
	}

	mux.Handle("POST /api/v1/messages", authed(http.HandlerFunc(messageHandler.Receive)))
	mux.Handle("PUT /api/v1/settings", admin(settingsHandler.Configure))
	mux.Handle("POST /api/v1/deposits", authed(http.HandlerFunc(ledgerHandler.Deposit)))
	mux.Handle("POST /api/v1/issuances", authed(http.HandlerFunc(ledgerHandler.Issue)))
	mux.Handle("POST /api/v1/reversals", authed(http.HandlerFunc(ledgerHandler.Reverse)))
	mux.Handle("GET /api/v1/summary", authed(http.HandlerFunc(ledgerHandler.Summary)))
	mux.Handle("POST /api/v1/reset", admin(ledgerHandler.Reset))

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
