package handler

import (
	"net/http"

	"github.com/mrdv01/real-time-dex-aggregator-service/internal/svc"
	"github.com/mrdv01/real-time-dex-aggregator-service/internal/types"
)

func StatsHandler(serverCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, r, types.StatsResp{
			Cache:       serverCtx.Aggregator.CacheStats(r.Context()),
			Subscribers: serverCtx.Hub.ClientCount(),
			Sources:     serverCtx.Aggregator.SourceNames(),
		})
	}
}
