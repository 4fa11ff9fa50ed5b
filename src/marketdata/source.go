package marketdata

import (
	"context"
	"errors"
	"fmt"

	"orderwatch/src/model"
)

// Markets a Source can be built for.
const (
	MarketStock  = "stock"
	MarketCrypto = "crypto"
)

// ErrNoData reports an empty or unusable series for a symbol. It is a
// recoverable, per-symbol condition: callers log it and skip the symbol.
var ErrNoData = errors.New("marketdata: no recent price data")

// Source fetches the recent OHLCV series for a symbol, time-ordered oldest
// first.
type Source interface {
	RecentCandles(ctx context.Context, symbol string) ([]model.Candle, error)
}

// NewSource builds the source for the configured target market.
func NewSource(cfg Config) (Source, error) {
	switch cfg.TargetMarket {
	case MarketStock:
		return NewYahooSource(cfg), nil
	case MarketCrypto:
		return NewBinanceSource(cfg), nil
	default:
		return nil, fmt.Errorf("target market %q not supported", cfg.TargetMarket)
	}
}
