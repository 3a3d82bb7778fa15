package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"aeroScope/internal/pricing"
)

const (
	DefaultCacheTTL = 5 * time.Minute

	fallbackAeroPrice = 1.0
	yieldsKey         = "slipstream-yields"
	aeroPriceKey      = "aero-price"
)

var ErrPoolNotFound = errors.New("pool not found")

// PriceSource is the slice of the price feeds the analysis needs. *pricing.Client satisfies it.
type PriceSource interface {
	SlipstreamPools(ctx context.Context) ([]pricing.YieldPool, error)
	CoinPrice(ctx context.Context, address string) (float64, error)
}

// Service ranks pools from a cached copy of the yields feed.
type Service struct {
	prices   PriceSource
	cache    *gocache.Cache
	mu       sync.Mutex
	lastAero float64
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(prices PriceSource, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		prices: prices,
		cache:  gocache.New(ttl, 2*ttl),
		logger: logger,
		now:    time.Now,
	}
}

// AeroPrice returns the cached reward token price. A failed lookup falls back
// to the last good price, then to 1.0; fallbacks are not cached.
func (s *Service) AeroPrice(ctx context.Context) float64 {
	if v, ok := s.cache.Get(aeroPriceKey); ok {
		return v.(float64)
	}
	price, err := s.prices.CoinPrice(ctx, pricing.AeroToken)
	if err != nil || price <= 0 {
		s.mu.Lock()
		last := s.lastAero
		s.mu.Unlock()
		if last <= 0 {
			last = fallbackAeroPrice
		}
		s.logger.Warn("aero price unavailable, using fallback", zap.Float64("price", last), zap.Error(err))
		return last
	}
	s.cache.SetDefault(aeroPriceKey, price)
	s.mu.Lock()
	s.lastAero = price
	s.mu.Unlock()
	return price
}

func (s *Service) yieldPools(ctx context.Context) ([]pricing.YieldPool, error) {
	if v, ok := s.cache.Get(yieldsKey); ok {
		return v.([]pricing.YieldPool), nil
	}
	pools, err := s.prices.SlipstreamPools(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch yields: %w", err)
	}
	s.cache.SetDefault(yieldsKey, pools)
	return pools, nil
}

// AnalyzeAll ranks the feed's pools with opts.
func (s *Service) AnalyzeAll(ctx context.Context, opts Options) (Result, error) {
	pools, err := s.yieldPools(ctx)
	if err != nil {
		return Result{}, err
	}
	return Rank(pools, s.AeroPrice(ctx), opts, s.now()), nil
}

// FindBySymbol returns the highest-APR pool whose symbol matches exactly,
// with the reward token price used to analyze it.
func (s *Service) FindBySymbol(ctx context.Context, symbol string) (PoolAnalysis, float64, error) {
	pools, err := s.yieldPools(ctx)
	if err != nil {
		return PoolAnalysis{}, 0, err
	}
	res := Rank(pools, s.AeroPrice(ctx), Options{SortBy: SortAPR, Limit: len(pools)}, s.now())
	for _, a := range res.Pools {
		if a.Symbol == symbol {
			return a, res.AeroPrice, nil
		}
	}
	return PoolAnalysis{}, res.AeroPrice, fmt.Errorf("%w: %s", ErrPoolNotFound, symbol)
}
