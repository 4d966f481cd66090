package types

import (
	"time"

	"github.com/mrdv01/real-time-dex-aggregator-service/internal/cache"
)

type TokensReq struct {
	Period string `form:"period,optional"`
	SortBy string `form:"sortBy,optional"`
	Order  string `form:"order,optional"`
	Limit  int    `form:"limit,optional"`
	Cursor string `form:"cursor,optional"`
}

type TokenDetailReq struct {
	Address string `path:"address"`
}

// Response is the envelope every endpoint answers with.
type Response struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Cached    *bool     `json:"cached,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type StatsResp struct {
	Cache       cache.Stats `json:"cache"`
	Subscribers int         `json:"subscribers"`
	Sources     []string    `json:"sources"`
}

type HealthResp struct {
	Status string `json:"status"`
	Redis  bool   `json:"redis"`
}
