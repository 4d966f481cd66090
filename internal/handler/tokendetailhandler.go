package handler

import (
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/mrdv01/real-time-dex-aggregator-service/internal/aggregator"
	"github.com/mrdv01/real-time-dex-aggregator-service/internal/svc"
	"github.com/mrdv01/real-time-dex-aggregator-service/internal/types"
)

func TokenDetailHandler(serverCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.TokenDetailReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		token, err := serverCtx.Aggregator.GetTokenByAddress(r.Context(), req.Address)
		if err != nil {
			if errors.Is(err, aggregator.ErrInvalidQuery) {
				writeError(w, r, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, r, http.StatusInternalServerError, "failed to load token")
			return
		}
		if token == nil {
			writeError(w, r, http.StatusNotFound, "token not found")
			return
		}

		writeData(w, r, token)
	}
}
