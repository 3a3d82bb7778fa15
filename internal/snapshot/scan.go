package snapshot

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

const defaultWorkers = 8

// Getter returns a snapshot entry for a pool. *Repository satisfies it.
type Getter interface {
	Get(ctx context.Context, pool common.Address) (Entry, error)
}

// Result pairs a pool with its entry or the error that prevented it.
type Result struct {
	Pool  common.Address
	Entry Entry
	Err   error
}

// BuildMany fetches several pools on a bounded worker pool. Results keep the input order.
func BuildMany(ctx context.Context, getter Getter, pools []common.Address, workers int, logger *zap.Logger) ([]Result, error) {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([]Result, len(pools))
	var wg sync.WaitGroup
	for i, addr := range pools {
		i, addr := i, addr
		results[i].Pool = addr
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}
			entry, err := getter.Get(ctx, addr)
			if err != nil {
				logger.Warn("pool snapshot failed", zap.String("pool", addr.Hex()), zap.Error(err))
				results[i].Err = err
				return
			}
			results[i].Entry = entry
		})
		if err != nil {
			wg.Done()
			results[i].Err = err
		}
	}
	wg.Wait()
	return results, nil
}
