package indicator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"orderwatch/src/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func series(closes ...string) []model.Candle {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, 0, len(closes))
	for i, c := range closes {
		candles = append(candles, model.Candle{
			Symbol:   "TSLA",
			Datetime: start.Add(time.Duration(i) * time.Minute),
			Open:     d(c),
			High:     d(c),
			Low:      d(c),
			Close:    d(c),
			Volume:   d("1"),
		})
	}
	return candles
}

func TestComputeSMA(t *testing.T) {
	got, err := Compute(series("1", "2", "3", "4", "5"), model.MASimple, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(d("4")) {
		t.Fatalf("expected sma=4, got=%s", got.String())
	}
}

func TestComputeSMAFullWindow(t *testing.T) {
	got, err := Compute(series("10", "20", "30"), model.MASimple, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(d("20")) {
		t.Fatalf("expected sma=20, got=%s", got.String())
	}
}

func TestComputeEMA(t *testing.T) {
	// seed = sma(1,2,3) = 2; k = 0.5
	// close=4: (4-2)*0.5+2 = 3
	// close=5: (5-3)*0.5+3 = 4
	got, err := Compute(series("1", "2", "3", "4", "5"), model.MAExponential, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(d("4")) {
		t.Fatalf("expected ema=4, got=%s", got.String())
	}
}

func TestComputeHMAConstantSeries(t *testing.T) {
	// Any MA of a constant series is the constant itself.
	got, err := Compute(series("5", "5", "5", "5", "5", "5", "5", "5"), model.MAHull, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(d("5")) {
		t.Fatalf("expected hma=5, got=%s", got.String())
	}
}

func TestComputeHMATrendingSeries(t *testing.T) {
	// HMA of a monotonically rising series leads the SMA; it just needs to be
	// finite and above the plain mean of the same window.
	candles := series("1", "2", "3", "4", "5", "6", "7", "8", "9", "10")
	hmaVal, err := Compute(candles, model.MAHull, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	smaVal, err := Compute(candles, model.MASimple, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hmaVal.GreaterThan(smaVal) {
		t.Fatalf("expected hma %s > sma %s on an uptrend", hmaVal.String(), smaVal.String())
	}
}

func TestComputeEmptySeries(t *testing.T) {
	_, err := Compute(nil, model.MASimple, 3)
	if err != ErrEmptySeries {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestComputeNotEnoughCandles(t *testing.T) {
	_, err := Compute(series("1", "2"), model.MASimple, 3)
	if err != ErrNotEnoughCandles {
		t.Fatalf("expected ErrNotEnoughCandles, got %v", err)
	}
}

func TestComputeInvalidPeriod(t *testing.T) {
	_, err := Compute(series("1", "2"), model.MASimple, 0)
	if err != ErrInvalidPeriod {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestComputeUnsupportedType(t *testing.T) {
	_, err := Compute(series("1", "2", "3"), model.MAType("VWMA"), 3)
	if err == nil {
		t.Fatalf("expected error for unsupported ma type")
	}
}
