package jupiter

import (
	"time"

	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex"
)

// Normalize maps Jupiter token entries into Raw records. Jupiter serves a
// single network, so no chain filter applies. Volume is the 24h buy+sell
// total; 1h and 7d volume windows are not reported and default to zero.
func Normalize(entries []TokenEntry, now time.Time) []dex.Raw {
	raws := make([]dex.Raw, 0, len(entries))
	for _, entry := range entries {
		volume24h := entry.Stats24h.BuyVolume + entry.Stats24h.SellVolume

		raw := dex.Raw{
			Address: entry.ID,
			Name:    entry.Name,
			Ticker:  entry.Symbol,

			Price:     entry.USDPrice,
			MarketCap: entry.MarketCap,
			Liquidity: entry.Liquidity,

			Volume:    volume24h,
			Volume24h: volume24h,

			TransactionCount: entry.Stats24h.NumBuys + entry.Stats24h.NumSells,

			PriceChange1h:  entry.Stats1h.PriceChange,
			PriceChange24h: entry.Stats24h.PriceChange,
			PriceChange7d:  entry.Stats7d.PriceChange,

			Protocol: "jupiter",
			Source:   "jupiter",

			LastUpdated: parseUpdatedAt(entry.UpdatedAt, now),
			Metadata:    entryMetadata(entry),
		}
		if raw.Name == "" {
			raw.Name = dex.UnknownName
		}
		if raw.Ticker == "" {
			raw.Ticker = dex.UnknownTicker
		}

		if raw.Address == "" || raw.Volume <= dex.MinVolume || raw.Liquidity <= dex.MinLiquidity {
			continue
		}
		raws = append(raws, raw)
	}
	return raws
}

func parseUpdatedAt(value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return fallback
	}
	return ts
}

func entryMetadata(entry TokenEntry) *dex.Metadata {
	if entry.Icon == "" && entry.Website == "" {
		return nil
	}
	return &dex.Metadata{ImageURL: entry.Icon, Website: entry.Website}
}
