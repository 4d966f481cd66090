package handler

import (
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/mrdv01/real-time-dex-aggregator-service/internal/types"
)

func writeData(w http.ResponseWriter, r *http.Request, data any) {
	httpx.OkJsonCtx(r.Context(), w, types.Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func writeCachedData(w http.ResponseWriter, r *http.Request, data any, cached bool) {
	httpx.OkJsonCtx(r.Context(), w, types.Response{
		Success:   true,
		Data:      data,
		Cached:    &cached,
		Timestamp: time.Now().UTC(),
	})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	httpx.WriteJsonCtx(r.Context(), w, status, types.Response{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UTC(),
	})
}
