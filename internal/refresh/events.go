package refresh

import (
	"time"

	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex"
)

// Event types pushed to subscribers.
const (
	EventSnapshot    = "tokens:snapshot"
	EventTokenNew    = "token:new"
	EventTokenUpdate = "token:update"
	EventVolumeSpike = "token:volume_spike"
)

// Event is one push message. Snapshot events carry the full token list;
// delta events carry a single token plus the relevant change block.
type Event struct {
	Type      string       `json:"type"`
	Tokens    []dex.Token  `json:"tokens,omitempty"`
	Token     *dex.Token   `json:"token,omitempty"`
	Price     *PriceDelta  `json:"price,omitempty"`
	Volume    *VolumeDelta `json:"volume,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// PriceDelta describes a significant price move between two cycles.
type PriceDelta struct {
	Previous  float64 `json:"previous"`
	Current   float64 `json:"current"`
	ChangePct float64 `json:"change_pct"`
	Direction string  `json:"direction"` // up or down
}

// VolumeDelta describes a volume spike between two cycles.
type VolumeDelta struct {
	Previous   float64 `json:"previous"`
	Current    float64 `json:"current"`
	Multiplier float64 `json:"multiplier"`
}
