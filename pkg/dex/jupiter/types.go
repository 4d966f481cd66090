package jupiter

// TokenEntry is one verified token as reported by the Jupiter tokens API.
// The payload is a bare JSON array of these entries.
type TokenEntry struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	USDPrice  float64 `json:"usdPrice"`
	MarketCap float64 `json:"mcap"`
	Liquidity float64 `json:"liquidity"`
	Stats1h   Stats   `json:"stats1h"`
	Stats24h  Stats   `json:"stats24h"`
	Stats7d   Stats   `json:"stats7d"`
	UpdatedAt string  `json:"updatedAt"`
	Icon      string  `json:"icon"`
	Website   string  `json:"website"`
}

// Stats is one of Jupiter's per-window stat blocks.
type Stats struct {
	BuyVolume   float64 `json:"buyVolume"`
	SellVolume  float64 `json:"sellVolume"`
	NumBuys     int64   `json:"numBuys"`
	NumSells    int64   `json:"numSells"`
	PriceChange float64 `json:"priceChange"`
}
