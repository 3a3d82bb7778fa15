package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"aeroScope/internal/liquidity"
	"aeroScope/internal/model"
	"aeroScope/internal/simulator"
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

type poolResponse struct {
	Pool                  model.PoolSnapshot          `json:"pool"`
	LiquidityDistribution model.LiquidityDistribution `json:"liquidity_distribution"`
	LiquidityHistogram    []model.HistogramBucket     `json:"liquidity_histogram"`
}

type histogramResponse struct {
	PoolAddress   string                  `json:"pool_address"`
	CurrentTick   int32                   `json:"current_tick"`
	CurrentPrice  float64                 `json:"current_price"`
	Buckets       []model.HistogramBucket `json:"buckets"`
	EmissionRange *model.EmissionRange    `json:"emission_range,omitempty"`
}

type simulateRequest struct {
	PoolAddress   string   `json:"pool_address"`
	InvestmentUSD *float64 `json:"investment_usd"`
	TickLower     *int32   `json:"tick_lower"`
	TickUpper     *int32   `json:"tick_upper"`
	DurationDays  int      `json:"duration_days"`
	Volatility    float64  `json:"volatility"`
}

type simulateResponse struct {
	Result model.SimulationResult `json:"result"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) poolAddress(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	raw := mux.Vars(r)["address"]
	if !addressPattern.MatchString(raw) {
		s.writeError(w, http.StatusBadRequest, "invalid pool address")
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

func (s *Server) handlePool(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.poolAddress(w, r)
	if !ok {
		return
	}
	entry, err := s.pools.Get(r.Context(), addr)
	if err != nil {
		s.logger.Error("pool lookup failed", zap.String("pool", addr.Hex()), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to fetch pool details")
		return
	}
	histogram, err := liquidity.AggregateHistogram(entry.Distribution, liquidity.DefaultBuckets)
	if err != nil {
		s.logger.Error("histogram failed", zap.String("pool", addr.Hex()), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to build liquidity histogram")
		return
	}
	s.writeJSON(w, http.StatusOK, poolResponse{
		Pool:                  entry.Snapshot,
		LiquidityDistribution: entry.Distribution,
		LiquidityHistogram:    histogram,
	})
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.poolAddress(w, r)
	if !ok {
		return
	}
	buckets := liquidity.DefaultBuckets
	if raw := r.URL.Query().Get("buckets"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistogramBuckets {
			s.writeError(w, http.StatusBadRequest, "buckets must be between 1 and "+strconv.Itoa(maxHistogramBuckets))
			return
		}
		buckets = n
	}
	entry, err := s.pools.Get(r.Context(), addr)
	if err != nil {
		s.logger.Error("pool lookup failed", zap.String("pool", addr.Hex()), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to fetch liquidity distribution")
		return
	}
	histogram, err := liquidity.AggregateHistogram(entry.Distribution, buckets)
	if err != nil {
		s.logger.Error("histogram failed", zap.String("pool", addr.Hex()), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to build liquidity histogram")
		return
	}
	s.writeJSON(w, http.StatusOK, histogramResponse{
		PoolAddress:   entry.Distribution.PoolAddress,
		CurrentTick:   entry.Distribution.CurrentTick,
		CurrentPrice:  entry.Distribution.CurrentPrice,
		Buckets:       histogram,
		EmissionRange: entry.Distribution.EmissionRange,
	})
}

// validate mirrors the checks a client sees before any chain read happens.
func (req simulateRequest) validate() (model.SimulationInput, error) {
	if req.PoolAddress == "" || req.InvestmentUSD == nil || req.TickLower == nil || req.TickUpper == nil {
		return model.SimulationInput{}, errors.New("missing required fields: pool_address, investment_usd, tick_lower, tick_upper")
	}
	if !addressPattern.MatchString(req.PoolAddress) {
		return model.SimulationInput{}, errors.New("invalid pool address")
	}
	if *req.TickLower >= *req.TickUpper {
		return model.SimulationInput{}, errors.New("tick_lower must be less than tick_upper")
	}
	if *req.InvestmentUSD <= 0 {
		return model.SimulationInput{}, errors.New("investment_usd must be positive")
	}
	if req.Volatility < 0 {
		return model.SimulationInput{}, errors.New("volatility must not be negative")
	}
	duration := req.DurationDays
	if duration <= 0 {
		duration = model.DefaultDurationDays
	}
	return model.SimulationInput{
		PoolAddress:   req.PoolAddress,
		InvestmentUSD: *req.InvestmentUSD,
		TickLower:     *req.TickLower,
		TickUpper:     *req.TickUpper,
		DurationDays:  duration,
		Volatility:    req.Volatility,
	}, nil
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input, err := req.validate()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	addr := common.HexToAddress(input.PoolAddress)
	entry, err := s.pools.Get(r.Context(), addr)
	if err != nil {
		s.logger.Error("pool lookup failed", zap.String("pool", addr.Hex()), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to simulate investment")
		return
	}

	result, err := simulator.Simulate(input, entry.Snapshot)
	if err != nil {
		if errors.Is(err, simulator.ErrInvalidRange) || errors.Is(err, simulator.ErrInvalidAmount) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("simulation failed", zap.String("pool", addr.Hex()), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to simulate investment")
		return
	}

	if s.sink != nil {
		record := model.SimulationRecord{
			ChainID:     s.chainID,
			PoolAddress: addr.Hex(),
			Input:       input,
			Result:      result,
			CreatedAt:   s.now().UTC(),
		}
		if err := s.sink.PutSimulation(r.Context(), record); err != nil {
			s.logger.Warn("record simulation failed", zap.String("pool", addr.Hex()), zap.Error(err))
		}
	}

	s.writeJSON(w, http.StatusOK, simulateResponse{Result: result})
}
