package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is a single OHLCV bar of a symbol's price history.
type Candle struct {
	Symbol   string          `json:"symbol"`
	Datetime time.Time       `json:"datetime"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	Volume   decimal.Decimal `json:"volume"`
}

// LastClose returns the most recent closing price of a time-ordered series.
func LastClose(candles []Candle) (decimal.Decimal, bool) {
	if len(candles) == 0 {
		return decimal.Zero, false
	}
	return candles[len(candles)-1].Close, true
}
