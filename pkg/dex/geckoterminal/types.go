package geckoterminal

// PoolsResponse is the shape of the trending-pools payload. GeckoTerminal is
// a JSON:API service: numeric attributes arrive as strings and the base
// token is referenced through relationships.
type PoolsResponse struct {
	Data []Pool `json:"data"`
}

type Pool struct {
	Attributes    *PoolAttributes `json:"attributes"`
	Relationships Relationships   `json:"relationships"`
}

type PoolAttributes struct {
	Name                 string         `json:"name"`
	BaseTokenPriceNative string         `json:"base_token_price_native_currency"`
	MarketCapUSD         string         `json:"market_cap_usd"`
	ReserveInUSD         string         `json:"reserve_in_usd"`
	VolumeUSD            WindowedValues `json:"volume_usd"`
	PriceChangePct       WindowedValues `json:"price_change_percentage"`
	Transactions         Transactions   `json:"transactions"`
}

// WindowedValues holds per-window numeric strings.
type WindowedValues struct {
	H1  string `json:"h1"`
	H24 string `json:"h24"`
}

type Transactions struct {
	H24 TxnWindow `json:"h24"`
}

type TxnWindow struct {
	Buys  int64 `json:"buys"`
	Sells int64 `json:"sells"`
}

type Relationships struct {
	BaseToken RelationshipRef `json:"base_token"`
	Dex       RelationshipRef `json:"dex"`
}

type RelationshipRef struct {
	Data *RelationshipData `json:"data"`
}

type RelationshipData struct {
	ID string `json:"id"`
}
