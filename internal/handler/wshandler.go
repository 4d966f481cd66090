package handler

import (
	"net/http"

	"github.com/mrdv01/real-time-dex-aggregator-service/internal/svc"
)

func WSHandler(serverCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serverCtx.Hub.HandleUpgrade(w, r)
	}
}
