package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	weth = "0x4200000000000000000000000000000000000006"
	usdc = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Config{
		CoinsURL:      srv.URL,
		YieldsURL:     srv.URL,
		EnsoURL:       srv.URL,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	}, srv.Client(), zap.NewNop())
}

func TestCoinPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prices/current/base:"+weth+",base:"+strings.ToLower(usdc), r.URL.Path)
		_, _ = w.Write([]byte(`{"coins":{
			"base:0x4200000000000000000000000000000000000006":{"price":3500.5,"symbol":"WETH","decimals":18},
			"base:0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913":{"price":0.9999,"symbol":"USDC","decimals":6}}}`))
	}))
	defer srv.Close()

	prices, err := newTestClient(srv).CoinPrices(context.Background(), []string{weth, usdc, weth})
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, 3500.5, prices[weth].PriceUSD)
	assert.Equal(t, uint8(6), prices[strings.ToLower(usdc)].Decimals)
}

func TestCoinPriceMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"coins":{}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CoinPrice(context.Background(), AeroToken)
	require.Error(t, err)
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"coins":{"base:0x940181a94a35a4569e4529a3cdfb74e38fd98631":{"price":1.25}}}`))
	}))
	defer srv.Close()

	price, err := newTestClient(srv).CoinPrice(context.Background(), AeroToken)
	require.NoError(t, err)
	assert.Equal(t, 1.25, price)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CoinPrices(context.Background(), []string{weth})
	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEnsoPricesWithFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prices/8453", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[
			{"address":"0x4200000000000000000000000000000000000006","price":3400,"decimals":18,"symbol":"WETH"},
			{"address":"0x833589fcd6edb6e08f4c7c32d4f71b54bda02913","price":null}
		]`))
	}))
	defer srv.Close()

	client := NewClient(Config{EnsoURL: srv.URL, EnsoAPIKey: "secret", RetryDelay: time.Millisecond}, srv.Client(), nil)
	prices := client.EnsoPrices(context.Background(), []string{weth, usdc, "0x000000000000000000000000000000000000dead"})

	assert.Equal(t, 3400.0, prices[weth].PriceUSD)
	fallback, ok := prices[strings.ToLower(usdc)]
	require.True(t, ok)
	assert.Equal(t, "USDC", fallback.Symbol)
	assert.Zero(t, fallback.PriceUSD)
	_, ok = prices["0x000000000000000000000000000000000000dead"]
	assert.False(t, ok)
}

func TestEnsoPricesUpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	prices := newTestClient(srv).EnsoPrices(context.Background(), []string{AeroToken})
	require.Contains(t, prices, AeroToken)
	assert.Equal(t, "AERO", prices[AeroToken].Symbol)
}

func TestSlipstreamPools(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pools", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"success","data":[
			{"pool":"a","chain":"Base","project":"aerodrome-slipstream","tvlUsd":100,"apyBase":5,"poolMeta":"CL100 - 0.05%",
			 "underlyingTokens":["0x4200000000000000000000000000000000000006","0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"]},
			{"pool":"b","chain":"Base","project":"aerodrome-slipstream","tvlUsd":900,"apyBase":7,"poolMeta":"CL100 - 0.05%",
			 "underlyingTokens":["0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913","0x4200000000000000000000000000000000000006"]},
			{"pool":"c","chain":"Base","project":"aerodrome-slipstream","tvlUsd":5000,"poolMeta":"CL200 - 0.3%",
			 "underlyingTokens":["0x4200000000000000000000000000000000000006","0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"]},
			{"pool":"d","chain":"Ethereum","project":"aerodrome-slipstream","tvlUsd":1}
		]}`))
	}))
	defer srv.Close()

	pools, err := newTestClient(srv).SlipstreamPools(context.Background())
	require.NoError(t, err)
	require.Len(t, pools, 3)

	match, ok := FindYieldPool(pools, weth, usdc, 100)
	require.True(t, ok)
	assert.Equal(t, "b", match.Pool)
	assert.Equal(t, 7.0, Value(match.APYBase))
	assert.Zero(t, Value(match.APYReward))

	_, ok = FindYieldPool(pools, weth, usdc, 1)
	assert.False(t, ok)
}
