package indicator

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"orderwatch/src/model"
)

var (
	ErrEmptySeries      = errors.New("indicator: empty candle series")
	ErrNotEnoughCandles = errors.New("indicator: not enough candles for period")
	ErrInvalidPeriod    = errors.New("indicator: period must be positive")
	ErrUnsupportedType  = errors.New("indicator: unsupported ma type")
)

// Compute returns the current moving-average value of the series for the
// given type and window. The series must be time-ordered, oldest first.
func Compute(candles []model.Candle, maType model.MAType, period int) (decimal.Decimal, error) {
	if period <= 0 {
		return decimal.Zero, ErrInvalidPeriod
	}
	if len(candles) == 0 {
		return decimal.Zero, ErrEmptySeries
	}

	closes := make([]decimal.Decimal, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	switch maType {
	case model.MASimple:
		return sma(closes, period)
	case model.MAExponential:
		return ema(closes, period)
	case model.MAHull:
		return hma(closes, period)
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnsupportedType, maType)
	}
}

// sma is the mean of the last period closes.
func sma(closes []decimal.Decimal, period int) (decimal.Decimal, error) {
	if len(closes) < period {
		return decimal.Zero, ErrNotEnoughCandles
	}
	window := closes[len(closes)-period:]
	sum := decimal.Zero
	for _, c := range window {
		sum = sum.Add(c)
	}
	return sum.Div(decimal.NewFromInt(int64(period))), nil
}

// ema seeds with the SMA of the first window, then folds in the remaining
// closes with multiplier 2/(period+1).
func ema(closes []decimal.Decimal, period int) (decimal.Decimal, error) {
	if len(closes) < period {
		return decimal.Zero, ErrNotEnoughCandles
	}

	seed, err := sma(closes[:period], period)
	if err != nil {
		return decimal.Zero, err
	}

	k := decimal.NewFromInt(2).Div(decimal.NewFromInt(int64(period) + 1))
	value := seed
	for _, c := range closes[period:] {
		value = c.Sub(value).Mul(k).Add(value)
	}
	return value, nil
}

// hma is WMA(2*WMA(n/2) - WMA(n), floor(sqrt(n))), evaluated on the tail of
// the series. Needs period + floor(sqrt(period)) - 1 closes.
func hma(closes []decimal.Decimal, period int) (decimal.Decimal, error) {
	if period < 2 {
		return decimal.Zero, ErrInvalidPeriod
	}
	half := period / 2
	sqrtN := int(math.Floor(math.Sqrt(float64(period))))

	if len(closes) < period+sqrtN-1 {
		return decimal.Zero, ErrNotEnoughCandles
	}

	two := decimal.NewFromInt(2)
	raw := make([]decimal.Decimal, 0, sqrtN)
	for i := len(closes) - sqrtN; i < len(closes); i++ {
		prefix := closes[:i+1]
		wHalf, err := wma(prefix, half)
		if err != nil {
			return decimal.Zero, err
		}
		wFull, err := wma(prefix, period)
		if err != nil {
			return decimal.Zero, err
		}
		raw = append(raw, wHalf.Mul(two).Sub(wFull))
	}
	return wma(raw, sqrtN)
}

// wma weights the last period values linearly, newest heaviest.
func wma(values []decimal.Decimal, period int) (decimal.Decimal, error) {
	if len(values) < period {
		return decimal.Zero, ErrNotEnoughCandles
	}
	window := values[len(values)-period:]
	sum := decimal.Zero
	for i, v := range window {
		sum = sum.Add(v.Mul(decimal.NewFromInt(int64(i) + 1)))
	}
	denom := decimal.NewFromInt(int64(period) * int64(period+1) / 2)
	return sum.Div(denom), nil
}
