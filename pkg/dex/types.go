package dex

import "time"

// Domain filters applied by every normalizer: records at or below these
// thresholds are discarded as noise.
const (
	MinLiquidity = 100.0  // unit currency
	MinVolume    = 1000.0 // unit currency
)

// Placeholder identity values used when a provider omits name or ticker.
const (
	UnknownName   = "Unknown"
	UnknownTicker = "UNKNOWN"
)

// Token is the canonical merged record representing one token across all
// contributing providers. Field names on the wire match the aggregator API.
type Token struct {
	Address string `json:"token_address"`
	Name    string `json:"token_name"`
	Ticker  string `json:"token_ticker"`

	Price     float64 `json:"price_sol"`
	MarketCap float64 `json:"market_cap_sol"`
	Liquidity float64 `json:"liquidity_sol"`

	Volume    float64 `json:"volume_sol"`
	Volume1h  float64 `json:"volume_1h"`
	Volume24h float64 `json:"volume_24h"`
	Volume7d  float64 `json:"volume_7d"`

	TransactionCount int64 `json:"transaction_count"`

	PriceChange1h  float64 `json:"price_1hr_change"`
	PriceChange24h float64 `json:"price_24h_change"`
	PriceChange7d  float64 `json:"price_7d_change"`

	// Protocols holds the venues the token trades on: a single element when
	// one provider contributed, otherwise a sorted, deduplicated union.
	Protocols []string `json:"protocol"`
	// Sources lists the providers that contributed to this record; always
	// non-empty and deduplicated.
	Sources []string `json:"sources"`

	LastUpdated time.Time `json:"last_updated"`
	Metadata    *Metadata `json:"metadata,omitempty"`
}

// Metadata carries optional display information.
type Metadata struct {
	ImageURL    string `json:"image_url,omitempty"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
}

// Raw is a provider-specific normalized record prior to merge. It has the
// same shape as Token except protocol and source are singular.
type Raw struct {
	Address string
	Name    string
	Ticker  string

	Price     float64
	MarketCap float64
	Liquidity float64

	Volume    float64
	Volume1h  float64
	Volume24h float64
	Volume7d  float64

	TransactionCount int64

	PriceChange1h  float64
	PriceChange24h float64
	PriceChange7d  float64

	Protocol string
	Source   string

	LastUpdated time.Time
	Metadata    *Metadata
}
