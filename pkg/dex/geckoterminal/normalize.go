package geckoterminal

import (
	"strconv"
	"strings"
	"time"

	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex"
)

// Normalize maps a trending-pools payload into Raw records. The base token
// address is recovered from the relationship id by stripping the network
// prefix, and the token name from the left side of the pool pair name.
// GeckoTerminal has no 7d windows; those fields stay zero except the price
// change, which approximates 7d with the 24h value.
func Normalize(payload PoolsResponse, chain string, now time.Time) []dex.Raw {
	raws := make([]dex.Raw, 0, len(payload.Data))
	for _, pool := range payload.Data {
		attrs := pool.Attributes
		baseToken := pool.Relationships.BaseToken.Data
		if attrs == nil || baseToken == nil || baseToken.ID == "" {
			continue
		}

		address := strings.TrimPrefix(baseToken.ID, chain+"_")
		name := baseTokenName(attrs.Name)

		raw := dex.Raw{
			Address: address,
			Name:    name,
			Ticker:  name,

			Price:     parseNumber(attrs.BaseTokenPriceNative),
			MarketCap: parseNumber(attrs.MarketCapUSD),
			Liquidity: parseNumber(attrs.ReserveInUSD),

			Volume:    parseNumber(attrs.VolumeUSD.H24),
			Volume1h:  parseNumber(attrs.VolumeUSD.H1),
			Volume24h: parseNumber(attrs.VolumeUSD.H24),

			TransactionCount: attrs.Transactions.H24.Buys + attrs.Transactions.H24.Sells,

			PriceChange1h:  parseNumber(attrs.PriceChangePct.H1),
			PriceChange24h: parseNumber(attrs.PriceChangePct.H24),
			PriceChange7d:  parseNumber(attrs.PriceChangePct.H24),

			Protocol: dexID(pool.Relationships.Dex.Data),
			Source:   "geckoterminal",

			LastUpdated: now,
		}

		if raw.Address == "" || raw.Volume <= dex.MinVolume || raw.Liquidity <= dex.MinLiquidity {
			continue
		}
		raws = append(raws, raw)
	}
	return raws
}

// baseTokenName extracts the base token's name from a pool name like
// "BONK / SOL".
func baseTokenName(poolName string) string {
	name, _, _ := strings.Cut(poolName, "/")
	name = strings.TrimSpace(name)
	if name == "" {
		return dex.UnknownName
	}
	return name
}

func dexID(data *RelationshipData) string {
	if data == nil || data.ID == "" {
		return "geckoterminal"
	}
	return data.ID
}

func parseNumber(s string) float64 {
	if s == "" {
		return 0
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return value
}
