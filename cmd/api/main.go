package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Saideepak144/KodBank/internal/config"
	"github.com/Saideepak144/KodBank/internal/handler"
	"github.com/Saideepak144/KodBank/internal/logging"
	"github.com/Saideepak144/KodBank/internal/middleware"
	"github.com/Saideepak144/KodBank/internal/repository"
	"github.com/Saideepak144/KodBank/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("kodbank-api", cfg.LogLevel, cfg.AppEnv)

	ctx := context.Background()
	pool := repository.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeS) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.DBConnMaxIdleTimeS) * time.Second,
	}

	authDB, err := connectDB(ctx, cfg.AuthDatabaseURL, pool)
	if err != nil {
		slog.Error("failed to connect to auth database", "error", err)
		os.Exit(1)
	}
	defer authDB.Close()

	bankDB, err := connectDB(ctx, cfg.BankDatabaseURL, pool)
	if err != nil {
		slog.Error("failed to connect to bank database", "error", err)
		os.Exit(1)
	}
	defer bankDB.Close()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go runExpirySweep(sweepCtx,
		repository.NewTokenRepository(authDB),
		repository.NewIdempotencyRepository(bankDB),
	)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           buildHandler(cfg, authDB, bankDB),
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func buildHandler(cfg *config.Config, authDB, bankDB *sql.DB) http.Handler {
	users := repository.NewUserRepository(authDB)
	tokens := repository.NewTokenRepository(authDB)
	accounts := repository.NewAccountRepository(bankDB)
	ledger := repository.NewLedgerRepository(bankDB)
	events := repository.NewTransferEventRepository(bankDB)
	idempotency := repository.NewIdempotencyRepository(bankDB)

	accountSvc := service.NewAccountService(accounts, cfg.AccountNumberMaxRetries)
	userSvc := service.NewUserService(users, accountSvc, cfg.SignupSeedBalance)
	transferSvc := service.NewTransferService(accounts, ledger, events, bankDB, cfg.TransferMaxRetries)
	querySvc := service.NewQueryService(accounts, ledger)

	tokenTTL := time.Duration(cfg.TokenTTLMinutes) * time.Minute
	authHandler := handler.NewAuthHandler(userSvc, users, tokens, cfg.JWTSecret, tokenTTL)
	accountHandler := handler.NewAccountHandler(accountSvc, querySvc)
	transferHandler := handler.NewTransferHandler(transferSvc, querySvc)
	healthHandler := handler.NewHealthHandler(authDB, bankDB)

	authed := middleware.Auth(cfg.JWTSecret, tokens)
	idem := middleware.Idempotency(idempotency)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)

	mux.HandleFunc("POST /api/register", authHandler.Register)
	mux.HandleFunc("POST /api/login", authHandler.Login)

	mux.Handle("POST /api/logout", authed(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/me", authed(http.HandlerFunc(authHandler.Me)))

	mux.Handle("POST /api/accounts", authed(http.HandlerFunc(accountHandler.Create)))
	mux.Handle("GET /api/accounts", authed(http.HandlerFunc(accountHandler.List)))
	mux.Handle("GET /api/accounts/{accountNumber}", authed(http.HandlerFunc(accountHandler.Get)))
	mux.Handle("GET /api/balance/{accountNumber}", authed(http.HandlerFunc(accountHandler.Balance)))

	mux.Handle("POST /api/transfer", authed(idem(http.HandlerFunc(transferHandler.Create))))
	mux.Handle("GET /api/transactions", authed(http.HandlerFunc(transferHandler.List)))

	return middleware.RequestID(middleware.Logging(middleware.Recovery(mux)))
}

// runExpirySweep periodically clears expired session tokens and idempotency
// entries. Neither store cleans itself; without the sweep both tables grow
// without bound.
func runExpirySweep(ctx context.Context, tokens *repository.TokenRepository, cache *repository.IdempotencyRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := tokens.DeleteExpired(ctx); err != nil {
				slog.Warn("expired token sweep failed", "error", err)
			} else if n > 0 {
				slog.Info("expired session tokens removed", "count", n)
			}
			if n, err := cache.CleanExpired(ctx); err != nil {
				slog.Warn("idempotency cache sweep failed", "error", err)
			} else if n > 0 {
				slog.Info("expired idempotency entries removed", "count", n)
			}
		}
	}
}

func connectDB(ctx context.Context, dsn string, pool repository.PoolConfig) (*sql.DB, error) {
	var lastErr error
	for i := range 30 {
		db, err := repository.NewPostgresDB(ctx, dsn, pool)
		if err == nil {
			return db, nil
		}
		lastErr = err
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", lastErr)
}
