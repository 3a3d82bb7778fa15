package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aeroScope/internal/config"
	"aeroScope/internal/model"
	"aeroScope/internal/snapshot"
	"aeroScope/internal/storage"
	"aeroScope/internal/storage/postgres"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Snapshot a list of pools and store the results",
		RunE:  runScan,
	}
	addCommonFlags(cmd)
	cmd.Flags().StringSlice("pools", nil, "pool addresses, comma-separated (curated set when empty)")
	cmd.Flags().Int("workers", 8, "concurrent pool snapshots")
	cmd.Flags().Float64("min-tvl-usd", 1000, "skip pools below this TVL")
	cmd.Flags().String("out", "./data/pools.jsonl", "output JSONL path")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN, replaces the JSONL output when set")
	return cmd
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadScan(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	pools, err := poolsOrCurated(cfg.Pools)
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

	var sink storage.Storage
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sink = store
	} else {
		sink = storage.NewJsonlStorage(cfg.Out)
	}

	logger.Info("scan start",
		zap.Int("pools", len(pools)),
		zap.Int("workers", cfg.Workers),
		zap.Float64("min_tvl_usd", cfg.MinTVLUSD),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)))

	repo := snapshot.NewRepository(d.builder, nil, 0, logger.Named("repository"))
	results, err := snapshot.BuildMany(ctx, repo, pools, cfg.Workers, logger)
	if err != nil {
		return err
	}

	records := make([]model.PoolRecord, 0, len(results))
	failed, skipped := 0, 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		if res.Entry.Snapshot.TVLUSD < cfg.MinTVLUSD {
			skipped++
			continue
		}
		records = append(records, model.NewPoolRecord(d.chainID, res.Entry.Snapshot))
	}

	if err := sink.UpsertPools(ctx, records); err != nil {
		return fmt.Errorf("store pools: %w", err)
	}

	logger.Info("scan complete",
		zap.Int("stored", len(records)),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed))
	if failed == len(results) && failed > 0 {
		return fmt.Errorf("all %d pool snapshots failed", failed)
	}
	return nil
}
