package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aeroScope/internal/config"
	"aeroScope/internal/model"
	"aeroScope/internal/simulator"
	"aeroScope/internal/storage"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a concentrated liquidity position on a pool",
		RunE:  runSimulate,
	}
	addCommonFlags(cmd)
	cmd.Flags().String("pool", "", "pool address")
	cmd.Flags().Float64("investment", 0, "investment in USD")
	cmd.Flags().Int32("tick-lower", 0, "lower tick of the position")
	cmd.Flags().Int32("tick-upper", 0, "upper tick of the position")
	cmd.Flags().Int("duration-days", model.DefaultDurationDays, "holding period in days")
	cmd.Flags().Float64("volatility", 0, "assumed daily volatility as a fraction, 0 for default")
	cmd.Flags().String("out", "", "append the simulation record to this JSONL file")
	return cmd
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSimulate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	input := model.SimulationInput{
		PoolAddress:   cfg.Pool,
		InvestmentUSD: cfg.InvestmentUSD,
		TickLower:     cfg.TickLower,
		TickUpper:     cfg.TickUpper,
		DurationDays:  cfg.DurationDays,
		Volatility:    cfg.Volatility,
	}
	if err := simulator.Validate(input); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := newDeps(ctx, cfg.Common, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	pool := common.HexToAddress(cfg.Pool)
	snap, _, err := d.builder.Build(ctx, pool)
	if err != nil {
		return err
	}

	result, err := simulator.Simulate(input, snap)
	if err != nil {
		return err
	}

	logger.Info("simulation complete",
		zap.String("pool", pool.Hex()),
		zap.Float64("investment_usd", input.InvestmentUSD),
		zap.Float64("total_apr", result.TotalEarnings.APR),
		zap.Float64("in_range_probability", result.InRangeProbability))

	if cfg.Out != "" {
		sink := storage.NewJsonlStorage(cfg.Out)
		record := model.SimulationRecord{
			ChainID:     d.chainID,
			PoolAddress: pool.Hex(),
			Input:       input,
			Result:      result,
			CreatedAt:   time.Now().UTC(),
		}
		if err := sink.PutSimulation(ctx, record); err != nil {
			return err
		}
	}

	return printJSON(cmd.OutOrStdout(), result)
}
