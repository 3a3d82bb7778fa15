package dex

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"aeroScope/internal/chain"
)

// Caller is the read-only contract access the fetchers need. *chain.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BatchCall(ctx context.Context, reqs []chain.CallRequest, blockNumber *big.Int) ([]chain.CallResult, error)
}

// methodCall names one contract read inside a batch.
type methodCall struct {
	to     common.Address
	parsed abi.ABI
	method string
	args   []interface{}
}

func callMethod(ctx context.Context, caller Caller, to common.Address, parsed abi.ABI, method string, block *big.Int, args ...interface{}) ([]interface{}, error) {
	if caller == nil {
		return nil, fmt.Errorf("chain caller is nil")
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := caller.CallContract(ctx, msg, block)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

// batchMethods packs calls into one batch and unpacks each reply. A failed
// call leaves a nil slot and its error in the matching position.
func batchMethods(ctx context.Context, caller Caller, calls []methodCall, block *big.Int) ([][]interface{}, []error, error) {
	if caller == nil {
		return nil, nil, fmt.Errorf("chain caller is nil")
	}
	reqs := make([]chain.CallRequest, len(calls))
	for i, c := range calls {
		data, err := c.parsed.Pack(c.method, c.args...)
		if err != nil {
			return nil, nil, fmt.Errorf("pack %s: %w", c.method, err)
		}
		reqs[i] = chain.CallRequest{To: c.to, Data: data}
	}

	results, err := caller.BatchCall(ctx, reqs, block)
	if err != nil {
		return nil, nil, err
	}
	if len(results) != len(calls) {
		return nil, nil, fmt.Errorf("batch returned %d results for %d calls", len(results), len(calls))
	}

	values := make([][]interface{}, len(calls))
	errs := make([]error, len(calls))
	for i, res := range results {
		if res.Err != nil {
			errs[i] = fmt.Errorf("call %s: %w", calls[i].method, res.Err)
			continue
		}
		out, err := calls[i].parsed.Unpack(calls[i].method, res.Data)
		if err != nil {
			errs[i] = fmt.Errorf("unpack %s: %w", calls[i].method, err)
			continue
		}
		values[i] = out
	}
	return values, errs, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}

func int24FromBig(value *big.Int) (int32, error) {
	min := big.NewInt(-1 << 23)
	max := big.NewInt((1 << 23) - 1)
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}
