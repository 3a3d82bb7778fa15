package storage

import (
	"context"

	"aeroScope/internal/model"
)

// Storage is a sink for scan results and simulation runs.
type Storage interface {
	UpsertPools(ctx context.Context, pools []model.PoolRecord) error
	PutSimulation(ctx context.Context, record model.SimulationRecord) error
}
