package listing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"aeroScope/internal/model"
)

// SortKey names the field pools are ordered by.
type SortKey string

const (
	SortTVL    SortKey = "tvl"
	SortAPR    SortKey = "apr"
	SortVolume SortKey = "volume"
	SortFees   SortKey = "fees"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

const DefaultLimit = 50

var ErrInvalidQuery = errors.New("invalid listing query")

// ParseSortKey accepts the short keys plus the long field names clients used
// before (volume24hUSD, fees24hUSD). Empty input yields fallback.
func ParseSortKey(s string, fallback SortKey) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return fallback, nil
	case "tvl":
		return SortTVL, nil
	case "apr":
		return SortAPR, nil
	case "volume", "volume24husd", "volume_24h_usd":
		return SortVolume, nil
	case "fees", "fees24husd", "fees_24h_usd":
		return SortFees, nil
	}
	return "", fmt.Errorf("%w: sort key %q", ErrInvalidQuery, s)
}

// ParseSortOrder accepts asc or desc. Empty input yields desc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc":
		return OrderDesc, nil
	case "asc":
		return OrderAsc, nil
	}
	return "", fmt.Errorf("%w: sort order %q", ErrInvalidQuery, s)
}

// Query filters, orders and pages a pool set. A zero MaxTVL means no upper bound.
type Query struct {
	MinTVL    float64
	MaxTVL    float64
	MinAPR    float64
	Token     string
	SortBy    SortKey
	SortOrder SortOrder
	Limit     int
	Offset    int
}

// Page is one window of the filtered pool set. TotalCount counts every pool
// that passed the filters, before paging.
type Page struct {
	Pools       []model.PoolSnapshot `json:"pools"`
	TotalCount  int                  `json:"total_count"`
	LastUpdated time.Time            `json:"last_updated"`
}

// Apply runs q over pools. The input slice is not modified.
func Apply(pools []model.PoolSnapshot, q Query, now time.Time) Page {
	filtered := make([]model.PoolSnapshot, 0, len(pools))
	token := strings.ToLower(strings.TrimSpace(q.Token))
	for _, p := range pools {
		if p.TVLUSD < q.MinTVL {
			continue
		}
		if q.MaxTVL > 0 && p.TVLUSD > q.MaxTVL {
			continue
		}
		if p.APR.TotalAPR < q.MinAPR {
			continue
		}
		if token != "" && !matchesToken(p, token) {
			continue
		}
		filtered = append(filtered, p)
	}

	key := sortValue(q.SortBy)
	asc := q.SortOrder == OrderAsc
	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := key(filtered[i]), key(filtered[j])
		if a == b {
			return strings.ToLower(filtered[i].Address) < strings.ToLower(filtered[j].Address)
		}
		if asc {
			return a < b
		}
		return a > b
	})

	total := len(filtered)
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	start := max(q.Offset, 0)
	if start > total {
		start = total
	}
	end := min(start+limit, total)

	return Page{
		Pools:       filtered[start:end],
		TotalCount:  total,
		LastUpdated: now.UTC(),
	}
}

func matchesToken(p model.PoolSnapshot, token string) bool {
	for _, t := range []model.TokenInfo{p.Token0, p.Token1} {
		if strings.Contains(strings.ToLower(t.Symbol), token) {
			return true
		}
		if t.Address != "" && strings.ToLower(t.Address) == token {
			return true
		}
	}
	return false
}

func sortValue(k SortKey) func(model.PoolSnapshot) float64 {
	switch k {
	case SortAPR:
		return func(p model.PoolSnapshot) float64 { return p.APR.TotalAPR }
	case SortVolume:
		return func(p model.PoolSnapshot) float64 { return p.Volume24hUSD }
	case SortFees:
		return func(p model.PoolSnapshot) float64 { return p.Fees24hUSD }
	default:
		return func(p model.PoolSnapshot) float64 { return p.TVLUSD }
	}
}
