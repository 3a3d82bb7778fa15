package model

// TokenInfo captures ERC20 metadata plus a USD price.
type TokenInfo struct {
	Address  string  `json:"address"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name,omitempty"`
	Decimals uint8   `json:"decimals"`
	PriceUSD float64 `json:"price_usd"`
}
