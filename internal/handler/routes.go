package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"github.com/mrdv01/real-time-dex-aggregator-service/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/api/tokens",
				Handler: TokensHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/tokens/:address",
				Handler: TokenDetailHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/stats",
				Handler: StatsHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/health",
				Handler: HealthHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/ws",
				Handler: WSHandler(serverCtx),
			},
		},
	)
}
