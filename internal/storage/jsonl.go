package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"aeroScope/internal/model"
)

// JsonlStorage appends records to a JSONL file, one object per line.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

type poolLine struct {
	Kind string `json:"kind"`
	model.PoolRecord
}

type simulationLine struct {
	Kind string `json:"kind"`
	model.SimulationRecord
}

// UpsertPools appends pool rows. A file has no keys, so later lines supersede earlier ones.
func (s *JsonlStorage) UpsertPools(_ context.Context, pools []model.PoolRecord) error {
	if len(pools) == 0 {
		return nil
	}
	lines := make([]interface{}, 0, len(pools))
	for _, p := range pools {
		lines = append(lines, poolLine{Kind: "pool", PoolRecord: p})
	}
	return s.appendLines(lines)
}

// PutSimulation appends one simulation record.
func (s *JsonlStorage) PutSimulation(_ context.Context, record model.SimulationRecord) error {
	return s.appendLines([]interface{}{simulationLine{Kind: "simulation", SimulationRecord: record}})
}

func (s *JsonlStorage) appendLines(lines []interface{}) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range lines {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
