package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"
	"github.com/shopspring/decimal"

	"orderwatch/src/model"
)

// BinanceSource reads recent crypto OHLCV bars through goex. The order's
// symbol is the base currency; the quote currency comes from config.
type BinanceSource struct {
	exchange goex.API
	quote    string
	period   goex.KlinePeriod
	lookback time.Duration
	limit    int
}

func NewBinanceSource(cfg Config) *BinanceSource {
	apiConfig := &goex.APIConfig{
		HttpClient: http.DefaultClient,
		Endpoint:   binance.GLOBAL_API_BASE_URL,
	}

	return &BinanceSource{
		exchange: binance.NewWithConfig(apiConfig),
		quote:    cfg.QuoteCurrency,
		period:   parseKlinePeriod(cfg.SampleInterval),
		lookback: time.Duration(cfg.LookbackDays) * 24 * time.Hour,
		limit:    cfg.CandleLimit,
	}
}

func parseKlinePeriod(interval string) goex.KlinePeriod {
	switch interval {
	case "1h":
		return goex.KLINE_PERIOD_1H
	default:
		return goex.KLINE_PERIOD_1MIN
	}
}

func (s *BinanceSource) RecentCandles(ctx context.Context, symbol string) ([]model.Candle, error) {
	pair := goex.NewCurrencyPair(goex.Currency{Symbol: symbol}, goex.Currency{Symbol: s.quote})

	const millis = 1000
	end := time.Now()
	start := end.Add(-s.lookback)

	klines, err := s.exchange.GetKlineRecords(
		pair,
		s.period,
		s.limit,
		goex.OptionalParameter{}.
			Optional("startTime", start.Unix()*millis).
			Optional("endTime", end.Unix()*millis),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching klines for %s: %w", symbol, err)
	}
	if len(klines) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, symbol)
	}

	candles := make([]model.Candle, 0, len(klines))
	for _, k := range klines {
		candles = append(candles, model.Candle{
			Symbol:   symbol,
			Datetime: time.Unix(k.Timestamp, 0).UTC(),
			Open:     decimal.NewFromFloat(k.Open),
			High:     decimal.NewFromFloat(k.High),
			Low:      decimal.NewFromFloat(k.Low),
			Close:    decimal.NewFromFloat(k.Close),
			Volume:   decimal.NewFromFloat(k.Vol),
		})
	}
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Datetime.Before(candles[j].Datetime)
	})
	return candles, nil
}
