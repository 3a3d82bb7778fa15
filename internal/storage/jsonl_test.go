package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"aeroScope/internal/model"
)

func readLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var out []map[string]interface{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]interface{}
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("decode line %q: %v", sc.Text(), err)
		}
		out = append(out, m)
	}
	return out
}

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "records.jsonl")
	s := NewJsonlStorage(path)
	ctx := context.Background()

	pools := []model.PoolRecord{
		{ChainID: 8453, Address: "0xpool1", TickSpacing: 100, Liquidity: "1000", TVLUSD: 1500},
		{ChainID: 8453, Address: "0xpool2", TickSpacing: 1, Liquidity: "0"},
	}
	if err := s.UpsertPools(ctx, pools); err != nil {
		t.Fatalf("upsert pools: %v", err)
	}
	rec := model.SimulationRecord{
		ChainID:     8453,
		PoolAddress: "0xpool1",
		Input:       model.SimulationInput{PoolAddress: "0xpool1", InvestmentUSD: 1000, TickLower: -100, TickUpper: 100, DurationDays: 30},
		CreatedAt:   time.Unix(1700000000, 0).UTC(),
	}
	if err := s.PutSimulation(ctx, rec); err != nil {
		t.Fatalf("put simulation: %v", err)
	}

	lines := readLines(t, path)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0]["kind"] != "pool" || lines[0]["address"] != "0xpool1" {
		t.Fatalf("unexpected first line: %v", lines[0])
	}
	if lines[2]["kind"] != "simulation" || lines[2]["pool_address"] != "0xpool1" {
		t.Fatalf("unexpected last line: %v", lines[2])
	}
}

func TestJsonlStorageEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	s := NewJsonlStorage(path)
	if err := s.UpsertPools(context.Background(), nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file for empty batch, stat err=%v", err)
	}
}
