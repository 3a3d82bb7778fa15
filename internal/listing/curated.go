package listing

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// CuratedPool is a pool the listing shows when no explicit set is configured.
type CuratedPool struct {
	Address  common.Address `json:"address"`
	Featured bool           `json:"featured"`
	Tags     []string       `json:"tags"`
}

var curated = []struct {
	addr     string
	featured bool
	tag      string
}{
	{"0xb2cc224c1c9fee385f8ad6a55b4d94e92359dc59", true, "blue-chip"}, // WETH/USDC
	{"0x70acdf2ad0bf2402c957154f944c19ef4e1cbae1", true, "blue-chip"}, // WETH/cbBTC
	{"0x4e962bb3889bf030368f56810a9c96b83cb3e778", true, "blue-chip"}, // USDC/cbBTC
	{"0x0c1a09d5d0445047da3ab4994262b22404288a3b", false, "stable"},   // USDC/USD+
	{"0x7501bc8bb51616f79bfa524e464fb7b41f0b10fb", false, "stable"},   // msUSD/USDC
	{"0x861a2922be165a5bd41b1e482b49216b465e1b5f", false, "lst"},      // WETH/wstETH
	{"0x47ca96ea59c13f72745928887f84c9f52c3d7348", false, "lst"},      // cbETH/WETH
	{"0x74f72788f4814d7ff3c49b44684aa98eee140c0e", false, "lst"},      // WETH/msETH
	{"0x6446021f4e396da3df4235c62537431372195d38", false, "lst"},      // WETH/superOETHb
	{"0xa4463789e8f3c6a599b3dfb608dde55513bcf289", false, "high-yield"},
}

// Curated returns the default pool set, featured pools first.
func Curated() []CuratedPool {
	out := make([]CuratedPool, 0, len(curated))
	for _, c := range curated {
		out = append(out, CuratedPool{
			Address:  common.HexToAddress(c.addr),
			Featured: c.featured,
			Tags:     []string{c.tag},
		})
	}
	return out
}

// CuratedAddresses returns the addresses of the default pool set.
func CuratedAddresses() []common.Address {
	out := make([]common.Address, 0, len(curated))
	for _, c := range curated {
		out = append(out, common.HexToAddress(c.addr))
	}
	return out
}

// IsCurated reports whether addr belongs to the default pool set.
func IsCurated(addr string) bool {
	addr = strings.ToLower(addr)
	for _, c := range curated {
		if c.addr == addr {
			return true
		}
	}
	return false
}
