package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"orderwatch/src/model"
)

const (
	defaultRetryAttempts   = 5
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 8 * time.Second
)

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}

	code := r.StatusCode()

	if code >= 500 && code <= 599 {
		return true
	}
	if code == 429 {
		return true
	}
	if code == 408 {
		return true
	}
	return false
}

// YahooSource reads recent stock OHLCV bars from the Yahoo Finance chart API.
type YahooSource struct {
	http     *resty.Client
	lookback string
	interval string
}

func NewYahooSource(cfg Config) *YahooSource {
	baseURL := strings.TrimRight(cfg.YahooBaseURL, "/")

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &YahooSource{
		http:     httpClient,
		lookback: fmt.Sprintf("%dd", cfg.LookbackDays),
		interval: cfg.SampleInterval,
	}
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// RecentCandles fetches the last lookback window of bars for symbol. Bars
// with missing quote values (market gaps) are skipped.
func (s *YahooSource) RecentCandles(ctx context.Context, symbol string) ([]model.Candle, error) {
	var out yahooChartResponse

	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"range":    s.lookback,
			"interval": s.interval,
		}).
		SetResult(&out).
		Get("/v8/finance/chart/" + symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching chart for %s: %w", symbol, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetching chart for %s: http status %d", symbol, resp.StatusCode())
	}
	if out.Chart.Error != nil {
		return nil, fmt.Errorf("fetching chart for %s: %s (%s)", symbol, out.Chart.Error.Description, out.Chart.Error.Code)
	}
	if len(out.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, symbol)
	}

	result := out.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, symbol)
	}
	quote := result.Indicators.Quote[0]

	candles := make([]model.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil ||
			quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil {
			continue
		}
		volume := 0.0
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}
		candles = append(candles, model.Candle{
			Symbol:   symbol,
			Datetime: time.Unix(ts, 0).UTC(),
			Open:     decimal.NewFromFloat(*quote.Open[i]),
			High:     decimal.NewFromFloat(*quote.High[i]),
			Low:      decimal.NewFromFloat(*quote.Low[i]),
			Close:    decimal.NewFromFloat(*quote.Close[i]),
			Volume:   decimal.NewFromFloat(volume),
		})
	}

	if len(candles) == 0 {
		logger.WithField("symbol", symbol).Warn("chart response held no usable bars")
		return nil, fmt.Errorf("%w for %s", ErrNoData, symbol)
	}
	return candles, nil
}
