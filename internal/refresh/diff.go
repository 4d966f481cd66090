package refresh

import (
	"strings"
	"time"

	"github.com/mrdv01/real-time-dex-aggregator-service/pkg/dex"
)

// Thresholds gate which cycle-to-cycle moves become events.
type Thresholds struct {
	// PriceChangePct is the minimum absolute price move, in percent.
	PriceChangePct float64
	// VolumeMultiplier is the minimum current/previous volume ratio.
	VolumeMultiplier float64
}

// DefaultThresholds returns the standard event gates.
func DefaultThresholds() Thresholds {
	return Thresholds{PriceChangePct: 5, VolumeMultiplier: 2}
}

// Diff compares the current token list against the previous cycle and
// returns the delta events plus the state map for the next cycle. Price and
// volume checks are independent: one token can emit both an update and a
// spike in the same cycle. Tokens absent from the current list keep their
// retained entry, so one that flickers out for a cycle diffs against its old
// baseline when it returns instead of re-announcing as new.
func Diff(prev map[string]dex.Token, current []dex.Token, th Thresholds, now time.Time) ([]Event, map[string]dex.Token) {
	events := []Event{}
	next := make(map[string]dex.Token, len(prev)+len(current))
	for key, token := range prev {
		next[key] = token
	}

	for i := range current {
		token := current[i]
		key := strings.ToLower(token.Address)
		next[key] = token

		old, known := prev[key]
		if !known {
			events = append(events, Event{
				Type:      EventTokenNew,
				Token:     &token,
				Timestamp: now,
			})
			continue
		}

		if old.Price != 0 {
			changePct := (token.Price - old.Price) / old.Price * 100
			if abs(changePct) >= th.PriceChangePct {
				direction := "up"
				if changePct < 0 {
					direction = "down"
				}
				events = append(events, Event{
					Type:  EventTokenUpdate,
					Token: &token,
					Price: &PriceDelta{
						Previous:  old.Price,
						Current:   token.Price,
						ChangePct: changePct,
						Direction: direction,
					},
					Timestamp: now,
				})
			}
		}

		if old.Volume > 0 && token.Volume/old.Volume >= th.VolumeMultiplier {
			events = append(events, Event{
				Type:  EventVolumeSpike,
				Token: &token,
				Volume: &VolumeDelta{
					Previous:   old.Volume,
					Current:    token.Volume,
					Multiplier: token.Volume / old.Volume,
				},
				Timestamp: now,
			})
		}
	}

	return events, next
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
