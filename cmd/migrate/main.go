package main

import (
	"database/sql"
	"errors"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/Saideepak144/KodBank/internal/config"
	"github.com/Saideepak144/KodBank/internal/logging"
)

// Applies pending migrations to both stores. The identity store and the
// bank store are migrated independently; each keeps its own schema version.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("kodbank-migrate", cfg.LogLevel, cfg.AppEnv)

	if err := runMigrations("auth", cfg.AuthDatabaseURL, "file://migrations/auth"); err != nil {
		slog.Error("auth store migration failed", "error", err)
		os.Exit(1)
	}
	if err := runMigrations("bank", cfg.BankDatabaseURL, "file://migrations/bank"); err != nil {
		slog.Error("bank store migration failed", "error", err)
		os.Exit(1)
	}
}

func runMigrations(store, databaseURL, sourceURL string) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}

	slog.Info("migrations applied", "store", store, "version", version, "dirty", dirty)
	return nil
}
