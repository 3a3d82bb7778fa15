package pricing

import "strings"

// AeroToken is the Aerodrome reward token on Base.
const AeroToken = "0x940181a94a35a4569e4529a3cdfb74e38fd98631"

// fallbackTokens covers the Base majors when no price source answers.
var fallbackTokens = map[string]struct {
	decimals uint8
	symbol   string
}{
	"0x4200000000000000000000000000000000000006": {18, "WETH"},
	"0x833589fcd6edb6e08f4c7c32d4f71b54bda02913": {6, "USDC"},
	"0xd9aaec86b65d86f6a7b5b1b0c42ffa531710b6ca": {6, "USDbC"},
	AeroToken: {18, "AERO"},
	"0x50c5725949a6f0c72e6c4a641f24049a917db0cb": {18, "DAI"},
	"0x2ae3f1ec7f1f5012cfeab0185bfc7aa3cf0dec22": {8, "cbBTC"},
	"0xcbb7c0000ab88b473b1f5afd9ef808440eed33bf": {8, "cbBTC"},
	"0xc1cba3fcea344f92d9239c08c0568f6f2f0ee452": {18, "wstETH"},
	"0x2416092f143378750bb29b79ed961ab195cceea5": {18, "ezETH"},
	"0xb6fe221fe9eef5aba221c348ba20a1bf5e73624c": {18, "rETH"},
	"0x4ed4e862860bed51a9570b96d89af5e1b0efefed": {18, "DEGEN"},
	"0x0b3e328455c4059eeb9e3f84b5543f74e24e7e1b": {18, "VIRTUAL"},
}

// FallbackToken returns known metadata with a zero price.
func FallbackToken(address string) (TokenPrice, bool) {
	addr := strings.ToLower(address)
	meta, ok := fallbackTokens[addr]
	if !ok {
		return TokenPrice{}, false
	}
	return TokenPrice{Address: addr, Symbol: meta.symbol, Decimals: meta.decimals}, true
}
