package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"aeroScope/internal/chain"
	"aeroScope/internal/config"
	"aeroScope/internal/pricing"
	"aeroScope/internal/snapshot"
)

func main() {
	root := &cobra.Command{
		Use:          "aeroscope",
		Short:        "Aerodrome Slipstream pool analytics and LP simulator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(newSimulateCmd())
	root.AddCommand(newHistogramCmd())
	root.AddCommand(newScanCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// addCommonFlags registers the flags every command shares.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "Base RPC URL")
	cmd.Flags().Uint64("chain-id", 0, "expected chain id; 0 uses the id the RPC node reports")
	cmd.Flags().Int("max-retries", 3, "maximum attempts per upstream call")
	cmd.Flags().Duration("retry-backoff", 200*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("enso-api-key", "", "Enso API key (optional)")
	cmd.Flags().Duration("http-timeout", 15*time.Second, "timeout for price feed requests")
	cmd.Flags().Int("scan-multiplier", 2, "tick scan width in units of 100 spacings")
	cmd.Flags().Int("tick-batch-size", 20, "ticks per RPC batch")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// deps bundles the collaborators a command needs to build snapshots.
type deps struct {
	chain   *chain.Client
	chainID uint64
	prices  *pricing.Client
	builder *snapshot.Builder
}

type chainIDSource interface {
	GetChainID(ctx context.Context) (*big.Int, error)
}

// resolveChainID asks the node for its chain id. A configured id of 0 adopts
// the node's; any other value must match it.
func resolveChainID(ctx context.Context, src chainIDSource, configured uint64) (uint64, error) {
	id, err := src.GetChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("read chain id: %w", err)
	}
	if !id.IsUint64() {
		return 0, fmt.Errorf("node reported chain id %s out of range", id)
	}
	got := id.Uint64()
	if configured != 0 && configured != got {
		return 0, fmt.Errorf("chain id mismatch: configured %d, node reports %d", configured, got)
	}
	return got, nil
}

func newDeps(ctx context.Context, cfg config.Common, logger *zap.Logger) (*deps, error) {
	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	chainClient.SetRetry(uint(cfg.MaxRetries), cfg.RetryBackoff)

	chainID, err := resolveChainID(ctx, chainClient, cfg.ChainID)
	if err != nil {
		chainClient.Close()
		return nil, err
	}
	logger.Info("connected to chain", zap.Uint64("chain_id", chainID))

	prices := pricing.NewClient(pricing.Config{
		CoinsURL:      cfg.CoinsURL,
		YieldsURL:     cfg.YieldsURL,
		EnsoURL:       cfg.EnsoURL,
		EnsoAPIKey:    cfg.EnsoAPIKey,
		ChainID:       chainID,
		Timeout:       cfg.HTTPTimeout,
		RetryAttempts: uint(cfg.MaxRetries),
		RetryDelay:    cfg.RetryBackoff,
	}, nil, logger.Named("pricing"))

	builder := snapshot.NewBuilder(chainClient, prices, snapshot.Options{
		ScanMultiplier: cfg.ScanMultiplier,
		TickBatchSize:  cfg.TickBatchSize,
	}, logger.Named("snapshot"))

	return &deps{chain: chainClient, chainID: chainID, prices: prices, builder: builder}, nil
}

func (d *deps) Close() {
	d.chain.Close()
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
