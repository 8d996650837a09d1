// Command seedvendors loads the starter vendor dataset so the validator has
// reference data to match against. Seeds Postgres via DB_URL by default, or
// a local SQLite database with --sqlite. Safe to run repeatedly.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/repository"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/repository/postgres"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/repository/sqlite"
)

func main() {
	sqlitePath := flag.String("sqlite", "", "seed this SQLite database instead of Postgres")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	vendors, cleanup, err := openVendorRepo(ctx, *sqlitePath, logger)
	if err != nil {
		logger.Error("store init failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := repository.EnsureSeedVendors(ctx, vendors); err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	logger.Info("seeded vendors", "count", len(repository.SeedVendors))
}

func openVendorRepo(ctx context.Context, sqlitePath string, logger *slog.Logger) (repository.VendorRepository, func(), error) {
	if sqlitePath != "" {
		store, err := sqlite.Open(sqlitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return store.Vendors(), func() { _ = store.Close() }, nil
	}

	cfg := common.LoadConfig()
	if cfg.Database.DSN == "" {
		logger.Error("DB_URL env var is required without --sqlite")
		os.Exit(1)
	}
	pool, err := postgres.Open(ctx, postgres.Config{
		DSN:         cfg.Database.DSN,
		DialTimeout: cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.Bootstrap(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return postgres.NewVendorRepository(pool, logger), pool.Close, nil
}
