package dexscreener

// SearchResponse is the shape of the /search endpoint payload. Only the
// fields the normalizer consumes are declared.
type SearchResponse struct {
	Pairs []Pair `json:"pairs"`
}

// Pair is one trading pair as reported by DexScreener.
type Pair struct {
	ChainID     string      `json:"chainId"`
	DexID       string      `json:"dexId"`
	BaseToken   BaseToken   `json:"baseToken"`
	PriceNative string      `json:"priceNative"`
	FDV         float64     `json:"fdv"`
	Volume      Volume      `json:"volume"`
	Liquidity   Liquidity   `json:"liquidity"`
	Txns        Txns        `json:"txns"`
	PriceChange PriceChange `json:"priceChange"`
	Info        *PairInfo   `json:"info"`
}

type BaseToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type Volume struct {
	H1  float64 `json:"h1"`
	H6  float64 `json:"h6"`
	H24 float64 `json:"h24"`
}

type Liquidity struct {
	USD float64 `json:"usd"`
}

type Txns struct {
	H24 TxnWindow `json:"h24"`
}

type TxnWindow struct {
	Buys  int64 `json:"buys"`
	Sells int64 `json:"sells"`
}

type PriceChange struct {
	H1  float64 `json:"h1"`
	H6  float64 `json:"h6"`
	H24 float64 `json:"h24"`
}

// PairInfo carries optional display metadata.
type PairInfo struct {
	ImageURL string        `json:"imageUrl"`
	Websites []PairWebsite `json:"websites"`
}

type PairWebsite struct {
	URL string `json:"url"`
}
