package handler

import (
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/mrdv01/real-time-dex-aggregator-service/internal/aggregator"
	"github.com/mrdv01/real-time-dex-aggregator-service/internal/svc"
	"github.com/mrdv01/real-time-dex-aggregator-service/internal/types"
)

func TokensHandler(serverCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.TokensReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		page, err := serverCtx.Aggregator.GetTokens(r.Context(), aggregator.Query{
			Period: req.Period,
			SortBy: req.SortBy,
			Order:  req.Order,
			Limit:  req.Limit,
			Cursor: req.Cursor,
		})
		if err != nil {
			if errors.Is(err, aggregator.ErrInvalidQuery) {
				writeError(w, r, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, r, http.StatusInternalServerError, "failed to load tokens")
			return
		}

		writeCachedData(w, r, page, page.Cached)
	}
}
