package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aeroScope/internal/analysis"
	"aeroScope/internal/listing"
	"aeroScope/internal/model"
	"aeroScope/internal/snapshot"
)

type poolSet struct {
	mu      sync.Mutex
	entries map[common.Address]snapshot.Entry
	fail    map[common.Address]bool
}

func (p *poolSet) Get(_ context.Context, addr common.Address) (snapshot.Entry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail[addr] {
		return snapshot.Entry{}, errors.New("rpc down")
	}
	e, ok := p.entries[addr]
	if !ok {
		return snapshot.Entry{}, fmt.Errorf("unknown pool %s", addr.Hex())
	}
	return e, nil
}

func listedPool(n int, sym0, sym1 string, tvl, apr, volume float64) (common.Address, snapshot.Entry) {
	addr := fmt.Sprintf("0x%040x", n)
	snap := model.PoolSnapshot{
		Address:      addr,
		Token0:       model.TokenInfo{Symbol: sym0},
		Token1:       model.TokenInfo{Symbol: sym1},
		TVLUSD:       tvl,
		Volume24hUSD: volume,
		Fees24hUSD:   volume / 1000,
		APR:          model.PoolAPR{TotalAPR: apr},
	}
	return common.HexToAddress(addr), snapshot.Entry{Snapshot: snap}
}

func newListingServer() (*Server, *poolSet, []common.Address) {
	set := &poolSet{entries: map[common.Address]snapshot.Entry{}, fail: map[common.Address]bool{}}
	var list []common.Address
	for i, p := range []struct {
		sym0, sym1       string
		tvl, apr, volume float64
	}{
		{"WETH", "USDC", 5_000_000, 20, 900_000},
		{"USDC", "USDbC", 2_000_000, 4, 300_000},
		{"cbBTC", "WETH", 8_000_000, 12, 100_000},
		{"AERO", "WETH", 50_000, 80, 50_000},
		{"WETH", "wstETH", 3_000_000, 6, 200_000},
	} {
		addr, entry := listedPool(i+1, p.sym0, p.sym1, p.tvl, p.apr, p.volume)
		set.entries[addr] = entry
		list = append(list, addr)
	}
	s := New(set, nil, 8453, nil, WithPoolList(list), WithWorkers(2))
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	return s, set, list
}

func getPage(t *testing.T, s *Server, query string) listing.Page {
	t.Helper()
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pools"+query, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var page listing.Page
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	return page
}

func tvls(p listing.Page) []float64 {
	out := make([]float64, 0, len(p.Pools))
	for _, s := range p.Pools {
		out = append(out, s.TVLUSD)
	}
	return out
}

func TestListPoolsDefaultsToAPRDescending(t *testing.T) {
	s, _, _ := newListingServer()
	page := getPage(t, s, "")
	assert.Equal(t, 5, page.TotalCount)
	require.Len(t, page.Pools, 5)
	assert.Equal(t, 80.0, page.Pools[0].APR.TotalAPR)
	assert.Equal(t, 4.0, page.Pools[4].APR.TotalAPR)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), page.LastUpdated)
}

func TestListPoolsFilterSortPage(t *testing.T) {
	s, _, _ := newListingServer()

	page := getPage(t, s, "?min_tvl=1000000&max_tvl=6000000&sort_by=tvl&sort_order=asc")
	assert.Equal(t, []float64{2_000_000, 3_000_000, 5_000_000}, tvls(page))
	assert.Equal(t, 3, page.TotalCount)

	page = getPage(t, s, "?minAPR=10&sortBy=volume")
	assert.Equal(t, []float64{5_000_000, 8_000_000, 50_000}, tvls(page), "camelCase aliases")

	page = getPage(t, s, "?token=usdc&sort_by=tvl")
	assert.Equal(t, []float64{5_000_000, 2_000_000}, tvls(page))

	page = getPage(t, s, "?sort_by=tvl&limit=2&offset=1")
	assert.Equal(t, []float64{5_000_000, 3_000_000}, tvls(page))
	assert.Equal(t, 5, page.TotalCount, "total counts the filtered set before paging")

	page = getPage(t, s, "?sort_by=fees&sort_order=desc&limit=1")
	assert.Equal(t, []float64{5_000_000}, tvls(page))
}

func TestListPoolsRejectsBadParams(t *testing.T) {
	s, _, _ := newListingServer()
	for _, q := range []string{"?sort_by=age", "?sort_order=up", "?limit=0", "?limit=501", "?offset=-1", "?min_tvl=abc", "?max_tvl=-5"} {
		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pools"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
}

func TestListPoolsSkipsFailedPools(t *testing.T) {
	s, set, list := newListingServer()
	set.fail[list[0]] = true

	page := getPage(t, s, "?sort_by=tvl")
	assert.Equal(t, 4, page.TotalCount)
	assert.NotContains(t, tvls(page), 5_000_000.0)

	for _, addr := range list {
		set.fail[addr] = true
	}
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pools", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "failed to fetch pools", decodeError(t, rr))
}

type fakeAnalyzer struct {
	result analysis.Result
	pool   analysis.PoolAnalysis
	err    error
	opts   analysis.Options
}

func (f *fakeAnalyzer) AnalyzeAll(_ context.Context, opts analysis.Options) (analysis.Result, error) {
	f.opts = opts
	return f.result, f.err
}

func (f *fakeAnalyzer) FindBySymbol(_ context.Context, symbol string) (analysis.PoolAnalysis, float64, error) {
	if f.err != nil {
		return analysis.PoolAnalysis{}, 0, f.err
	}
	if symbol != f.pool.Symbol {
		return analysis.PoolAnalysis{}, 2, analysis.ErrPoolNotFound
	}
	return f.pool, 2, nil
}

func analyzerServer(a *fakeAnalyzer) *Server {
	return New(&fakePools{}, nil, 8453, nil, WithAnalyzer(a))
}

func TestAnalyzeDefaults(t *testing.T) {
	a := &fakeAnalyzer{result: analysis.Result{
		Pools:     []analysis.PoolAnalysis{{Symbol: "WETH-USDC", TotalAPR: 46.5}},
		AeroPrice: 2,
		TotalTVL:  1_000_000,
	}}
	s := analyzerServer(a)

	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/analyze", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, analysis.Options{MinTVL: analysis.DefaultMinTVL, SortBy: analysis.SortAPR, Limit: analysis.DefaultLimit}, a.opts)

	var res analysis.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Len(t, res.Pools, 1)
	assert.Equal(t, 2.0, res.AeroPrice)

	rr = httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/analyze?minTVL=0&sort_by=emissions&limit=5", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, analysis.Options{MinTVL: 0, SortBy: analysis.SortEmissions, Limit: 5}, a.opts)

	rr = httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/analyze?sort_by=fees", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAnalyzeUpstreamFailure(t *testing.T) {
	s := analyzerServer(&fakeAnalyzer{err: errors.New("yields down")})
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/analyze", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "failed to analyze pools", decodeError(t, rr))
}

func postAnalyze(s *Server, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	s.ServeHTTP(rr, req)
	return rr
}

func TestAnalyzeInvestment(t *testing.T) {
	pool := analysis.PoolAnalysis{Symbol: "WETH-USDC", TVLUSD: 1_000_000, FeeAPR: 10, EmissionAPR: 36.5, TotalAPR: 46.5, AeroPerDay: 500}
	s := analyzerServer(&fakeAnalyzer{pool: pool})

	rr := postAnalyze(s, `{"pool_symbol":"WETH-USDC","investment":10000}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "WETH-USDC", resp.Pool.Symbol)
	assert.Equal(t, 2.0, resp.AeroPrice)
	assert.InDelta(t, 1.0, resp.Simulation.PoolShare, 1e-12)
	assert.InDelta(t, 5.0, resp.Simulation.DailyAeroReward, 1e-9)
	require.NotNil(t, resp.Simulation.DaysToDouble)
	assert.Equal(t, int64(785), *resp.Simulation.DaysToDouble)
}

func TestAnalyzeInvestmentErrors(t *testing.T) {
	s := analyzerServer(&fakeAnalyzer{pool: analysis.PoolAnalysis{Symbol: "WETH-USDC", TVLUSD: 1}})

	cases := []struct {
		body string
		code int
		msg  string
	}{
		{`{`, http.StatusBadRequest, "invalid request body"},
		{`{"investment":100}`, http.StatusBadRequest, "missing pool_symbol or investment"},
		{`{"pool_symbol":"WETH-USDC"}`, http.StatusBadRequest, "missing pool_symbol or investment"},
		{`{"pool_symbol":"WETH-USDC","investment":0}`, http.StatusBadRequest, "investment must be positive"},
		{`{"pool_symbol":"DOGE-CAT","investment":100}`, http.StatusNotFound, "pool not found"},
	}
	for _, tc := range cases {
		rr := postAnalyze(s, tc.body)
		assert.Equal(t, tc.code, rr.Code, tc.body)
		assert.Equal(t, tc.msg, decodeError(t, rr), tc.body)
	}
}

func TestAnalyzeWithoutAnalyzer(t *testing.T) {
	s := newTestServer(&fakePools{}, nil)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/analyze", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
