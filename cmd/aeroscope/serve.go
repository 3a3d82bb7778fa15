package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aeroScope/internal/analysis"
	"aeroScope/internal/config"
	"aeroScope/internal/dex"
	"aeroScope/internal/listing"
	"aeroScope/internal/server"
	"aeroScope/internal/snapshot"
	"aeroScope/internal/storage"
	"aeroScope/internal/storage/postgres"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pool and simulation HTTP API",
		RunE:  runServe,
	}
	addCommonFlags(cmd)
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Duration("cache-ttl", 2*time.Minute, "how long a pool snapshot is served from cache")
	cmd.Flags().String("redis-addr", "", "Redis address for a shared snapshot cache (in-process cache when empty)")
	cmd.Flags().String("redis-password", "", "Redis password")
	cmd.Flags().Int("redis-db", 0, "Redis database")
	cmd.Flags().String("out", "", "append simulation records to this JSONL file")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN for simulation records")
	cmd.Flags().StringSlice("pools", nil, "pools behind the listing route (curated set when empty)")
	cmd.Flags().Int("workers", 8, "concurrent pool snapshots for the listing route")
	cmd.Flags().Duration("build-timeout", 30*time.Second, "upper bound on one shared pool snapshot build")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	poolList, err := poolsOrCurated(cfg.Pools)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := newDeps(ctx, cfg.Common, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	var cache snapshot.Cache
	if cfg.RedisAddr != "" {
		rc, err := snapshot.NewRedisCache(ctx, snapshot.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger.Named("redis"))
		if err != nil {
			return err
		}
		defer rc.Close()
		cache = rc
	} else {
		cache = snapshot.NewMemoryCache(cfg.CacheTTL)
	}
	repo := snapshot.NewRepository(d.builder, cache, cfg.CacheTTL, logger.Named("repository"))
	repo.SetBuildTimeout(cfg.BuildTimeout)
	analyzer := analysis.NewService(d.prices, analysis.DefaultCacheTTL, logger.Named("analysis"))

	var sink storage.Storage
	switch {
	case cfg.PGDSN != "":
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sink = store
	case cfg.Out != "":
		sink = storage.NewJsonlStorage(cfg.Out)
	}

	logger.Info("serve start",
		zap.String("addr", cfg.Addr),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Bool("redis", cfg.RedisAddr != ""),
		zap.Bool("record_simulations", sink != nil),
		zap.Int("listed_pools", len(poolList)),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)))

	srv := server.New(repo, sink, d.chainID, logger.Named("http"),
		server.WithPoolList(poolList),
		server.WithWorkers(cfg.Workers),
		server.WithAnalyzer(analyzer))
	return srv.Run(ctx, cfg.Addr)
}

// poolsOrCurated parses configured pools, falling back to the curated set.
func poolsOrCurated(pools []string) ([]common.Address, error) {
	if len(pools) == 0 {
		return listing.CuratedAddresses(), nil
	}
	return dex.ParseAddresses(pools)
}
