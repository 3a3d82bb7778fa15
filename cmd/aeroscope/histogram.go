package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"aeroScope/internal/config"
	"aeroScope/internal/liquidity"
	"aeroScope/internal/model"
)

func newHistogramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "histogram",
		Short: "Print the liquidity histogram of a pool",
		RunE:  runHistogram,
	}
	addCommonFlags(cmd)
	cmd.Flags().String("pool", "", "pool address")
	cmd.Flags().Int("buckets", liquidity.DefaultBuckets, "number of price buckets")
	return cmd
}

func runHistogram(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadHistogram(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := newDeps(ctx, cfg.Common, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	_, dist, err := d.builder.Build(ctx, common.HexToAddress(cfg.Pool))
	if err != nil {
		return err
	}
	buckets, err := liquidity.AggregateHistogram(dist, cfg.Buckets)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), struct {
		PoolAddress   string                  `json:"pool_address"`
		CurrentTick   int32                   `json:"current_tick"`
		CurrentPrice  float64                 `json:"current_price"`
		Buckets       []model.HistogramBucket `json:"buckets"`
		EmissionRange *model.EmissionRange    `json:"emission_range,omitempty"`
	}{
		PoolAddress:   dist.PoolAddress,
		CurrentTick:   dist.CurrentTick,
		CurrentPrice:  dist.CurrentPrice,
		Buckets:       buckets,
		EmissionRange: dist.EmissionRange,
	})
}
