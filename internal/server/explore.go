package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"aeroScope/internal/analysis"
	"aeroScope/internal/listing"
	"aeroScope/internal/model"
	"aeroScope/internal/snapshot"
)

type analyzeRequest struct {
	PoolSymbol string   `json:"pool_symbol"`
	Investment *float64 `json:"investment"`
}

type analyzeResponse struct {
	Pool       analysis.PoolAnalysis         `json:"pool"`
	Simulation analysis.InvestmentSimulation `json:"simulation"`
	AeroPrice  float64                       `json:"aero_price"`
}

// param returns the first non-empty value among names, so snake_case and the
// older camelCase spellings both work.
func param(q url.Values, names ...string) string {
	for _, n := range names {
		if v := q.Get(n); v != "" {
			return v
		}
	}
	return ""
}

func floatParam(q url.Values, def float64, names ...string) (float64, error) {
	raw := param(q, names...)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number", names[0])
	}
	return v, nil
}

func intParam(q url.Values, def, lo, hi int, names ...string) (int, error) {
	raw := param(q, names...)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%s must be between %d and %d", names[0], lo, hi)
	}
	return v, nil
}

func parseListingQuery(q url.Values) (listing.Query, error) {
	var out listing.Query
	var err error
	if out.MinTVL, err = floatParam(q, 0, "min_tvl", "minTVL"); err != nil {
		return out, err
	}
	if out.MaxTVL, err = floatParam(q, 0, "max_tvl", "maxTVL"); err != nil {
		return out, err
	}
	if out.MinAPR, err = floatParam(q, 0, "min_apr", "minAPR"); err != nil {
		return out, err
	}
	if out.Limit, err = intParam(q, listing.DefaultLimit, 1, maxPageSize, "limit"); err != nil {
		return out, err
	}
	if out.Offset, err = intParam(q, 0, 0, 1<<30, "offset"); err != nil {
		return out, err
	}
	if out.SortBy, err = listing.ParseSortKey(param(q, "sort_by", "sortBy"), listing.SortAPR); err != nil {
		return out, err
	}
	if out.SortOrder, err = listing.ParseSortOrder(param(q, "sort_order", "sortOrder")); err != nil {
		return out, err
	}
	out.Token = param(q, "token")
	return out, nil
}

func (s *Server) handleListPools(w http.ResponseWriter, r *http.Request) {
	query, err := parseListingQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := snapshot.BuildMany(r.Context(), s.pools, s.poolList, s.workers, s.logger)
	if err != nil {
		s.logger.Error("pool listing failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to fetch pools")
		return
	}
	snaps := make([]model.PoolSnapshot, 0, len(results))
	for _, res := range results {
		if res.Err == nil {
			snaps = append(snaps, res.Entry.Snapshot)
		}
	}
	if len(results) > 0 && len(snaps) == 0 {
		s.writeError(w, http.StatusInternalServerError, "failed to fetch pools")
		return
	}
	if skipped := len(results) - len(snaps); skipped > 0 {
		s.logger.Warn("pool listing is partial", zap.Int("skipped", skipped), zap.Int("pools", len(results)))
	}

	s.writeJSON(w, http.StatusOK, listing.Apply(snaps, query, s.now()))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		s.writeError(w, http.StatusServiceUnavailable, "pool analysis is not configured")
		return
	}
	q := r.URL.Query()
	var opts analysis.Options
	var err error
	if opts.MinTVL, err = floatParam(q, analysis.DefaultMinTVL, "min_tvl", "minTVL"); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if opts.Limit, err = intParam(q, analysis.DefaultLimit, 1, maxPageSize, "limit"); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if opts.SortBy, err = analysis.ParseSortKey(param(q, "sort_by", "sortBy")); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.analyzer.AnalyzeAll(r.Context(), opts)
	if err != nil {
		s.logger.Error("pool analysis failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to analyze pools")
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalyzeInvestment(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		s.writeError(w, http.StatusServiceUnavailable, "pool analysis is not configured")
		return
	}
	var req analyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PoolSymbol == "" || req.Investment == nil {
		s.writeError(w, http.StatusBadRequest, "missing pool_symbol or investment")
		return
	}
	if *req.Investment <= 0 {
		s.writeError(w, http.StatusBadRequest, "investment must be positive")
		return
	}

	pool, aeroPrice, err := s.analyzer.FindBySymbol(r.Context(), req.PoolSymbol)
	if errors.Is(err, analysis.ErrPoolNotFound) {
		s.writeError(w, http.StatusNotFound, "pool not found")
		return
	}
	if err != nil {
		s.logger.Error("investment analysis failed", zap.String("symbol", req.PoolSymbol), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to simulate investment")
		return
	}

	s.writeJSON(w, http.StatusOK, analyzeResponse{
		Pool:       pool,
		Simulation: analysis.SimulateInvestment(pool, *req.Investment),
		AeroPrice:  aeroPrice,
	})
}
