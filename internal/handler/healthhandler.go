package handler

import (
	"net/http"

	"github.com/mrdv01/real-time-dex-aggregator-service/internal/svc"
	"github.com/mrdv01/real-time-dex-aggregator-service/internal/types"
)

// HealthHandler reports liveness. Redis being down degrades the status but
// never fails the check: the service still serves uncached reads.
func HealthHandler(serverCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := types.HealthResp{Status: "ok"}
		if serverCtx.Cache.Enabled() {
			resp.Redis = serverCtx.Cache.Ping(r.Context())
			if !resp.Redis {
				resp.Status = "degraded"
			}
		}
		writeData(w, r, resp)
	}
}
