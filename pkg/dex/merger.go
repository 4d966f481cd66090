package dex

import (
	"sort"
	"strings"
)

// Merge reconciles the concatenated normalizer output of one fetch cycle into
// one canonical Token per address. Records sharing a lower-cased address form
// a group; the group member with the highest liquidity (the anchor) donates
// the identity fields, while numeric fields are combined:
//
//   - price: liquidity-weighted average, anchor's price when total liquidity
//     is zero
//   - market cap: max across the group (providers disagree on FDV vs
//     circulating cap)
//   - volume, liquidity, transaction count: sum across the group (providers
//     report non-overlapping venues)
//   - change percentages: anchor's values (averaging percentages across
//     heterogeneous windows is not meaningful)
//
// Records with an empty address are dropped. Output order is not significant.
func Merge(raws []Raw) []Token {
	groups := make(map[string][]Raw)
	order := make([]string, 0, len(raws))
	for _, raw := range raws {
		if raw.Address == "" {
			continue
		}
		key := strings.ToLower(raw.Address)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], raw)
	}

	merged := make([]Token, 0, len(groups))
	for _, key := range order {
		merged = append(merged, mergeGroup(groups[key]))
	}
	return merged
}

func mergeGroup(group []Raw) Token {
	if len(group) == 1 {
		return group[0].canonical()
	}

	sorted := make([]Raw, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Liquidity > sorted[j].Liquidity
	})
	anchor := sorted[0]

	token := Token{
		Address: anchor.Address,
		Name:    anchor.Name,
		Ticker:  anchor.Ticker,

		Price:     weightedPrice(sorted),
		MarketCap: anchor.MarketCap,

		PriceChange1h:  anchor.PriceChange1h,
		PriceChange24h: anchor.PriceChange24h,
		PriceChange7d:  anchor.PriceChange7d,

		LastUpdated: anchor.LastUpdated,
		Metadata:    anchor.Metadata,
	}

	protocols := make(map[string]struct{}, len(sorted))
	sources := make(map[string]struct{}, len(sorted))
	for _, raw := range sorted {
		token.Liquidity += raw.Liquidity
		token.Volume += raw.Volume
		token.Volume1h += raw.Volume1h
		token.Volume24h += raw.Volume24h
		token.Volume7d += raw.Volume7d
		token.TransactionCount += raw.TransactionCount

		if raw.MarketCap > token.MarketCap {
			token.MarketCap = raw.MarketCap
		}
		if raw.LastUpdated.After(token.LastUpdated) {
			token.LastUpdated = raw.LastUpdated
		}
		if raw.Protocol != "" {
			protocols[raw.Protocol] = struct{}{}
		}
		if raw.Source != "" {
			sources[raw.Source] = struct{}{}
		}
	}
	token.Protocols = sortedSet(protocols)
	token.Sources = sortedSet(sources)
	return token
}

// weightedPrice returns the liquidity-weighted consensus price. The result
// always lies within [min, max] of the group's prices.
func weightedPrice(group []Raw) float64 {
	var totalLiquidity float64
	for _, raw := range group {
		totalLiquidity += raw.Liquidity
	}
	if totalLiquidity == 0 {
		return group[0].Price
	}

	var price float64
	for _, raw := range group {
		price += raw.Price * raw.Liquidity / totalLiquidity
	}
	return price
}

// canonical converts a single-source record to its Token form, field for
// field, with singleton protocol and source sets.
func (r Raw) canonical() Token {
	token := Token{
		Address: r.Address,
		Name:    r.Name,
		Ticker:  r.Ticker,

		Price:     r.Price,
		MarketCap: r.MarketCap,
		Liquidity: r.Liquidity,

		Volume:    r.Volume,
		Volume1h:  r.Volume1h,
		Volume24h: r.Volume24h,
		Volume7d:  r.Volume7d,

		TransactionCount: r.TransactionCount,

		PriceChange1h:  r.PriceChange1h,
		PriceChange24h: r.PriceChange24h,
		PriceChange7d:  r.PriceChange7d,

		LastUpdated: r.LastUpdated,
		Metadata:    r.Metadata,
	}
	if r.Protocol != "" {
		token.Protocols = []string{r.Protocol}
	}
	if r.Source != "" {
		token.Sources = []string{r.Source}
	}
	return token
}

func sortedSet(set map[string]struct{}) []string {
	values := make([]string, 0, len(set))
	for value := range set {
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}
