package dexscreener

import (
	"strconv"
	"time"

	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex"
)

// Normalize maps a DexScreener search payload into Raw records, keeping only
// pairs on the target chain that clear the domain thresholds. DexScreener has
// no 7d windows: the 24h volume and the 6h price change stand in as
// best-effort approximations.
func Normalize(payload SearchResponse, chain string, now time.Time) []dex.Raw {
	raws := make([]dex.Raw, 0, len(payload.Pairs))
	for _, pair := range payload.Pairs {
		if pair.ChainID != chain {
			continue
		}

		raw := dex.Raw{
			Address: pair.BaseToken.Address,
			Name:    pair.BaseToken.Name,
			Ticker:  pair.BaseToken.Symbol,

			Price:     parseNumber(pair.PriceNative),
			MarketCap: pair.FDV,
			Liquidity: pair.Liquidity.USD,

			Volume:    pair.Volume.H24,
			Volume1h:  pair.Volume.H1,
			Volume24h: pair.Volume.H24,
			Volume7d:  pair.Volume.H24,

			TransactionCount: pair.Txns.H24.Buys + pair.Txns.H24.Sells,

			PriceChange1h:  pair.PriceChange.H1,
			PriceChange24h: pair.PriceChange.H24,
			PriceChange7d:  pair.PriceChange.H6,

			Protocol: pair.DexID,
			Source:   "dexscreener",

			LastUpdated: now,
			Metadata:    pairMetadata(pair.Info),
		}
		if raw.Name == "" {
			raw.Name = dex.UnknownName
		}
		if raw.Ticker == "" {
			raw.Ticker = dex.UnknownTicker
		}
		if raw.Protocol == "" {
			raw.Protocol = "dexscreener"
		}

		if raw.Address == "" || raw.Liquidity <= dex.MinLiquidity || raw.Volume <= dex.MinVolume {
			continue
		}
		raws = append(raws, raw)
	}
	return raws
}

func pairMetadata(info *PairInfo) *dex.Metadata {
	if info == nil {
		return nil
	}
	meta := &dex.Metadata{ImageURL: info.ImageURL}
	if len(info.Websites) > 0 {
		meta.Website = info.Websites[0].URL
	}
	if meta.ImageURL == "" && meta.Website == "" {
		return nil
	}
	return meta
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
