package snapshot

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"aeroScope/internal/apr"
	"aeroScope/internal/dex"
	"aeroScope/internal/liquidity"
	"aeroScope/internal/model"
	"aeroScope/internal/pricing"
	"aeroScope/internal/tickmath"
)

const (
	defaultScanMultiplier = 2
	defaultYieldsTTL      = 5 * time.Minute
	yieldsKey             = "slipstream-yields"
)

// ChainReader is the on-chain side of snapshot assembly. *chain.Client satisfies it.
type ChainReader interface {
	dex.Caller
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// PriceSource is the off-chain side of snapshot assembly. *pricing.Client satisfies it.
type PriceSource interface {
	EnsoPrices(ctx context.Context, addresses []string) map[string]pricing.TokenPrice
	CoinPrices(ctx context.Context, addresses []string) (map[string]pricing.TokenPrice, error)
	SlipstreamPools(ctx context.Context) ([]pricing.YieldPool, error)
}

// Options tune how much data a build reads.
type Options struct {
	ScanMultiplier int
	TickBatchSize  int
	YieldsTTL      time.Duration
	// RewardToken prices emissions when the gauge cannot be read.
	RewardToken string
}

// Builder assembles pool snapshots from chain state and price feeds.
type Builder struct {
	chain  ChainReader
	prices PriceSource
	tokens *dex.TokenCache
	yields *gocache.Cache
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

func NewBuilder(chainReader ChainReader, prices PriceSource, opts Options, logger *zap.Logger) *Builder {
	if opts.ScanMultiplier <= 0 {
		opts.ScanMultiplier = defaultScanMultiplier
	}
	if opts.TickBatchSize <= 0 {
		opts.TickBatchSize = dex.DefaultTickBatchSize
	}
	if opts.YieldsTTL <= 0 {
		opts.YieldsTTL = defaultYieldsTTL
	}
	if opts.RewardToken == "" {
		opts.RewardToken = pricing.AeroToken
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		chain:  chainReader,
		prices: prices,
		tokens: dex.NewTokenCache(),
		yields: gocache.New(opts.YieldsTTL, 2*opts.YieldsTTL),
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Build reads one pool at the latest block and returns its snapshot and tick distribution.
func (b *Builder) Build(ctx context.Context, pool common.Address) (model.PoolSnapshot, model.LiquidityDistribution, error) {
	log := b.logger.With(zap.String("pool", pool.Hex()))

	blockNumber, err := b.chain.LatestBlockNumber(ctx)
	if err != nil {
		return model.PoolSnapshot{}, model.LiquidityDistribution{}, fmt.Errorf("latest block: %w", err)
	}
	block := new(big.Int).SetUint64(blockNumber)

	state, err := dex.FetchPoolState(ctx, b.chain, pool, block, log)
	if err != nil {
		return model.PoolSnapshot{}, model.LiquidityDistribution{}, err
	}
	token0, err := b.tokens.Resolve(ctx, b.chain, state.Token0, log)
	if err != nil {
		return model.PoolSnapshot{}, model.LiquidityDistribution{}, fmt.Errorf("token0 metadata: %w", err)
	}
	token1, err := b.tokens.Resolve(ctx, b.chain, state.Token1, log)
	if err != nil {
		return model.PoolSnapshot{}, model.LiquidityDistribution{}, fmt.Errorf("token1 metadata: %w", err)
	}

	var gauge *dex.GaugeState
	gaugeAlive := false
	if state.HasGauge() {
		g, err := dex.FetchGaugeState(ctx, b.chain, state.Gauge, block)
		if err != nil {
			log.Warn("gauge read failed", zap.String("gauge", state.Gauge.Hex()), zap.Error(err))
		} else {
			gauge = &g
			ts, err := b.chain.BlockTimestamp(ctx, blockNumber)
			if err != nil {
				log.Warn("block timestamp failed", zap.Uint64("block", blockNumber), zap.Error(err))
				ts = uint64(b.now().Unix())
			}
			gaugeAlive = g.Alive(ts)
		}
	}

	rewardAddr := strings.ToLower(b.opts.RewardToken)
	if gauge != nil {
		rewardAddr = strings.ToLower(gauge.RewardToken.Hex())
	}
	prices := b.tokenPrices(ctx, log, strings.ToLower(state.Token0.Hex()), strings.ToLower(state.Token1.Hex()), rewardAddr)
	token0.PriceUSD = prices[strings.ToLower(state.Token0.Hex())].PriceUSD
	token1.PriceUSD = prices[strings.ToLower(state.Token1.Hex())].PriceUSD
	reward := prices[rewardAddr]
	rewardToken := &model.TokenInfo{Address: rewardAddr, Symbol: reward.Symbol, Decimals: 18, PriceUSD: reward.PriceUSD}

	balances, err := dex.FetchBalances(ctx, b.chain, pool, []common.Address{state.Token0, state.Token1}, block)
	if err != nil {
		return model.PoolSnapshot{}, model.LiquidityDistribution{}, err
	}
	tvl := tickmath.ToFloat(balances[0], token0.Decimals)*token0.PriceUSD +
		tickmath.ToFloat(balances[1], token1.Decimals)*token1.PriceUSD

	snap := model.PoolSnapshot{
		Address:      pool.Hex(),
		Token0:       token0,
		Token1:       token1,
		RewardToken:  rewardToken,
		TickSpacing:  state.TickSpacing,
		Fee:          state.Fee,
		CurrentTick:  state.Tick,
		CurrentPrice: tickmath.SqrtPriceX96ToPrice(state.SqrtPriceX96, token0.Decimals, token1.Decimals),
		SqrtPriceX96: state.SqrtPriceX96.String(),
		Liquidity:    state.Liquidity.String(),
		TVLUSD:       tvl,
		GaugeAlive:   gaugeAlive,
		IsStable:     IsStablePair(token0.Symbol, token1.Symbol),
		ILRisk:       ILRiskFor(token0.Symbol, token1.Symbol),
		BlockNumber:  blockNumber,
		UpdatedAt:    b.now().UTC(),
	}
	if snap.Fee == 0 {
		snap.Fee = apr.FeeForTickSpacing(state.TickSpacing)
	}
	if state.StakedLiquidity != nil {
		snap.StakedLiquidity = state.StakedLiquidity.String()
	}
	if gauge != nil {
		snap.Gauge = gauge.Address.Hex()
		if gaugeAlive {
			snap.APR.EmissionAPR = apr.CalculateEmissionAPR(apr.EmissionInput{
				RewardRate:         gauge.RewardRate,
				TokenPriceUSD:      reward.PriceUSD,
				StakedLiquidityUSD: tvl,
			})
		}
	}
	b.applyYields(ctx, log, &snap)
	snap.APR.TotalAPR = apr.CalculateTotalAPR(snap.APR.FeeAPR, snap.APR.EmissionAPR)

	lower, upper := liquidity.ScanBounds(state.Tick, state.TickSpacing, b.opts.ScanMultiplier)
	ticks, err := dex.FetchTicks(ctx, b.chain, pool, dex.TickScan{
		Lower:     lower,
		Upper:     upper,
		Spacing:   state.TickSpacing,
		BatchSize: b.opts.TickBatchSize,
		Decimals0: token0.Decimals,
		Decimals1: token1.Decimals,
	}, block, log)
	if err != nil {
		return model.PoolSnapshot{}, model.LiquidityDistribution{}, err
	}

	emLower, emUpper := liquidity.DefaultEmissionBounds(state.Tick, state.TickSpacing)
	params := liquidity.EmissionParams{
		TickLower:   emLower,
		TickUpper:   emUpper,
		Decimals0:   token0.Decimals,
		Decimals1:   token1.Decimals,
		RewardPrice: reward.PriceUSD,
		TVLUSD:      tvl,
		GaugeActive: gaugeAlive,
	}
	if gauge != nil {
		params.RewardRate = gauge.RewardRate
		params.PeriodFinish = gauge.PeriodFinish
	}
	emission, err := liquidity.BuildEmissionRange(ticks, params)
	if err != nil {
		return model.PoolSnapshot{}, model.LiquidityDistribution{}, err
	}
	snap.EmissionRange = emission

	dist := model.LiquidityDistribution{
		PoolAddress:   snap.Address,
		CurrentTick:   snap.CurrentTick,
		CurrentPrice:  snap.CurrentPrice,
		TickSpacing:   snap.TickSpacing,
		Ticks:         ticks,
		EmissionRange: emission,
	}

	log.Debug("snapshot built",
		zap.Uint64("block", blockNumber),
		zap.Float64("tvl_usd", tvl),
		zap.Float64("total_apr", snap.APR.TotalAPR),
		zap.Int("ticks", len(ticks)))
	return snap, dist, nil
}

// tokenPrices asks Enso first and fills zero quotes from DefiLlama.
func (b *Builder) tokenPrices(ctx context.Context, log *zap.Logger, addresses ...string) map[string]pricing.TokenPrice {
	prices := b.prices.EnsoPrices(ctx, addresses)

	missing := make([]string, 0)
	for _, addr := range addresses {
		if prices[addr].PriceUSD <= 0 {
			missing = append(missing, addr)
		}
	}
	if len(missing) == 0 {
		return prices
	}

	llama, err := b.prices.CoinPrices(ctx, missing)
	if err != nil {
		log.Warn("defillama price fallback failed", zap.Strings("tokens", missing), zap.Error(err))
		return prices
	}
	for _, addr := range missing {
		if p, ok := llama[addr]; ok && p.PriceUSD > 0 {
			merged := prices[addr]
			merged.Address = addr
			merged.PriceUSD = p.PriceUSD
			if merged.Symbol == "" {
				merged.Symbol = p.Symbol
			}
			prices[addr] = merged
		}
	}
	return prices
}

// applyYields copies fee APR, volume and trend fields from the yields feed.
func (b *Builder) applyYields(ctx context.Context, log *zap.Logger, snap *model.PoolSnapshot) {
	pools, err := b.yieldPools(ctx)
	if err != nil {
		log.Warn("yields feed unavailable", zap.Error(err))
		return
	}
	match, ok := pricing.FindYieldPool(pools, snap.Token0.Address, snap.Token1.Address, snap.TickSpacing)
	if !ok {
		return
	}

	snap.APR.FeeAPR = pricing.Value(match.APYBase)
	snap.APR.Change1D = pricing.Value(match.APYPct1D)
	snap.APR.Change7D = pricing.Value(match.APYPct7D)
	snap.APR.Mean30D = pricing.Value(match.APYMean30d)
	snap.Volume24hUSD = pricing.Value(match.VolumeUSD1d)
	// fee APR is defined over TVL, so daily fees follow from it
	snap.Fees24hUSD = snap.APR.FeeAPR / 100 * snap.TVLUSD / 365
	snap.IsStable = snap.IsStable || match.Stablecoin
	if risk, ok := ilRiskFromFeed(match.ILRisk); ok {
		snap.ILRisk = risk
	}
}

func (b *Builder) yieldPools(ctx context.Context) ([]pricing.YieldPool, error) {
	if cached, ok := b.yields.Get(yieldsKey); ok {
		return cached.([]pricing.YieldPool), nil
	}
	pools, err := b.prices.SlipstreamPools(ctx)
	if err != nil {
		return nil, err
	}
	b.yields.SetDefault(yieldsKey, pools)
	return pools, nil
}
