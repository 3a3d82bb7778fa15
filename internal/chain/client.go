package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 200 * time.Millisecond
)

// CallRequest is a single eth_call in a batch.
type CallRequest struct {
	To   common.Address
	Data []byte
}

// CallResult carries the return data or the per-call error of a batched eth_call.
type CallResult struct {
	Data []byte
	Err  error
}

// Client wraps go-ethereum RPC and provides helper methods.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client

	retryAttempts uint
	retryDelay    time.Duration

	mu      sync.RWMutex
	tsCache map[uint64]uint64
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient:     rpcClient,
		ethClient:     ethclient.NewClient(rpcClient),
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
		tsCache:       make(map[uint64]uint64),
	}, nil
}

// SetRetry configures retries for contract calls. Zero attempts disables retrying.
func (c *Client) SetRetry(attempts uint, delay time.Duration) {
	if attempts == 0 {
		attempts = 1
	}
	c.retryAttempts = attempts
	c.retryDelay = delay
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// GetChainID returns the chain ID reported by the node.
func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	return retry.DoWithData(func() (*big.Int, error) {
		return c.ethClient.ChainID(ctx)
	}, c.retryOptions(ctx)...)
}

// LatestBlockNumber returns the latest block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// HeaderByNumber returns the block header by number.
func (c *Client) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return c.ethClient.HeaderByNumber(ctx, number)
}

// BlockTimestamp returns the block timestamp, using an in-memory cache.
func (c *Client) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	c.mu.RLock()
	ts, ok := c.tsCache[number]
	c.mu.RUnlock()
	if ok {
		return ts, nil
	}

	header, err := c.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, err
	}

	ts = header.Time
	c.mu.Lock()
	c.tsCache[number] = ts
	c.mu.Unlock()

	return ts, nil
}

// CallContract performs an eth_call for a contract method, retrying transport errors.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return retry.DoWithData(func() ([]byte, error) {
		return c.ethClient.CallContract(ctx, msg, blockNumber)
	}, c.retryOptions(ctx)...)
}

// BatchCall sends several eth_calls in one JSON-RPC batch. The returned error
// covers the transport; individual call failures are reported per result.
func (c *Client) BatchCall(ctx context.Context, reqs []CallRequest, blockNumber *big.Int) ([]CallResult, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	outputs := make([]hexutil.Bytes, len(reqs))
	elems := make([]rpc.BatchElem, len(reqs))
	block := toBlockNumArg(blockNumber)
	for i, req := range reqs {
		// older nodes read "data", newer ones "input"
		elems[i] = rpc.BatchElem{
			Method: "eth_call",
			Args: []interface{}{
				map[string]interface{}{
					"to":    req.To,
					"data":  hexutil.Bytes(req.Data),
					"input": hexutil.Bytes(req.Data),
				},
				block,
			},
			Result: &outputs[i],
		}
	}

	err := retry.Do(func() error {
		return c.rpcClient.BatchCallContext(ctx, elems)
	}, c.retryOptions(ctx)...)
	if err != nil {
		return nil, fmt.Errorf("batch eth_call: %w", err)
	}

	results := make([]CallResult, len(reqs))
	for i := range elems {
		results[i] = CallResult{Data: outputs[i], Err: elems[i].Error}
	}
	return results, nil
}

func (c *Client) retryOptions(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(c.retryAttempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsRetryableErr),
	}
}

// IsRetryableErr reports whether a call error is worth repeating.
// Reverts and decoding failures are deterministic.
func IsRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "execution reverted") ||
		strings.Contains(msg, "out of gas") ||
		strings.Contains(msg, "invalid opcode") {
		return false
	}
	return true
}

func toBlockNumArg(number *big.Int) string {
	if number == nil {
		return "latest"
	}
	return hexutil.EncodeBig(number)
}
