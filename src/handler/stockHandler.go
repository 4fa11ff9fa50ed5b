package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"orderwatch/src/model"
)

type candleSource interface {
	RecentCandles(ctx context.Context, symbol string) ([]model.Candle, error)
}

// StockDataHandler handles GET /api/stock/{symbol}: the recent candle series
// the charts consume.
func StockDataHandler(source candleSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candles, err := source.RecentCandles(r.Context(), chi.URLParam(r, "symbol"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, candles)
	}
}
