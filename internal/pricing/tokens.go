package pricing

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const ensoBatchSize = 100

// TokenPrice is a USD quote with the metadata the upstream returned.
type TokenPrice struct {
	Address  string
	Symbol   string
	Decimals uint8
	PriceUSD float64
}

type llamaCoinsResponse struct {
	Coins map[string]struct {
		Price      float64 `json:"price"`
		Symbol     string  `json:"symbol"`
		Decimals   uint8   `json:"decimals"`
		Timestamp  int64   `json:"timestamp"`
		Confidence float64 `json:"confidence"`
	} `json:"coins"`
}

// CoinPrices queries DefiLlama for several tokens at once. Keys are lower-case addresses.
func (c *Client) CoinPrices(ctx context.Context, addresses []string) (map[string]TokenPrice, error) {
	unique := dedupLower(addresses)
	out := make(map[string]TokenPrice, len(unique))
	if len(unique) == 0 {
		return out, nil
	}

	keys := make([]string, len(unique))
	for i, addr := range unique {
		keys[i] = c.cfg.ChainName + ":" + addr
	}
	url := fmt.Sprintf("%s/prices/current/%s", c.cfg.CoinsURL, strings.Join(keys, ","))

	var resp llamaCoinsResponse
	if err := c.getJSON(ctx, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("defillama coins: %w", err)
	}
	for key, coin := range resp.Coins {
		_, addr, ok := strings.Cut(key, ":")
		if !ok {
			continue
		}
		addr = strings.ToLower(addr)
		out[addr] = TokenPrice{Address: addr, Symbol: coin.Symbol, Decimals: coin.Decimals, PriceUSD: coin.Price}
	}
	return out, nil
}

// CoinPrice returns the DefiLlama USD price of one token.
func (c *Client) CoinPrice(ctx context.Context, address string) (float64, error) {
	prices, err := c.CoinPrices(ctx, []string{address})
	if err != nil {
		return 0, err
	}
	p, ok := prices[strings.ToLower(address)]
	if !ok {
		return 0, fmt.Errorf("defillama coins: no price for %s", address)
	}
	return p.PriceUSD, nil
}

type ensoPrice struct {
	Address  string   `json:"address"`
	Price    *float64 `json:"price"`
	Decimals uint8    `json:"decimals"`
	Symbol   string   `json:"symbol"`
}

// EnsoPrices fetches prices from Enso in batches. Failed batches are logged and
// skipped; tokens still missing afterwards take known metadata at price zero.
func (c *Client) EnsoPrices(ctx context.Context, addresses []string) map[string]TokenPrice {
	unique := dedupLower(addresses)
	out := make(map[string]TokenPrice, len(unique))

	var headers map[string]string
	if c.cfg.EnsoAPIKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + c.cfg.EnsoAPIKey}
	}

	for start := 0; start < len(unique); start += ensoBatchSize {
		end := min(start+ensoBatchSize, len(unique))
		url := fmt.Sprintf("%s/prices/%d?addresses=%s", c.cfg.EnsoURL, c.cfg.ChainID, strings.Join(unique[start:end], ","))

		var resp []ensoPrice
		if err := c.getJSON(ctx, url, headers, &resp); err != nil {
			c.logger.Warn("enso price batch failed", zap.Int("tokens", end-start), zap.Error(err))
			continue
		}
		for _, p := range resp {
			if p.Address == "" || p.Price == nil {
				continue
			}
			addr := strings.ToLower(p.Address)
			decimals := p.Decimals
			if decimals == 0 {
				decimals = 18
			}
			symbol := p.Symbol
			if symbol == "" {
				symbol = "UNKNOWN"
			}
			out[addr] = TokenPrice{Address: addr, Symbol: symbol, Decimals: decimals, PriceUSD: *p.Price}
		}
	}

	for _, addr := range unique {
		if _, ok := out[addr]; ok {
			continue
		}
		if meta, ok := FallbackToken(addr); ok {
			out[addr] = meta
		}
	}
	return out
}

func dedupLower(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	out := make([]string, 0, len(addresses))
	for _, a := range addresses {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
