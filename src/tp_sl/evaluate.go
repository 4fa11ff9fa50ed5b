package tp_sl

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"orderwatch/src/model"
)

// Exit reasons reported on the order and in alerts.
const (
	ReasonTakeProfit  = "Take Profit hit"
	ReasonSecondarySL = "Secondary Stop Loss hit"
	ReasonTrailingSL  = "Initial Trailing Stop Loss hit"
	ReasonStaticSL    = "Initial Static Stop Loss hit"
)

var hundred = decimal.NewFromInt(100)

// Evaluate applies the exit-condition state machine to one order given a
// freshly observed close price and moving-average value. It returns the
// refreshed order and, when an exit rule fired, an alert. It never flips the
// order status itself; that policy belongs to the caller.
//
// Rules, in order:
//   - take-profit is reached once the running highest MA crosses
//     entryPrice * (1 + takeProfitPct/100)
//   - with take-profit reached and no secondary stop configured, the order
//     exits on plain take-profit
//   - with a secondary stop configured, only a pullback of the MA below
//     highestMA * (1 - secondarySLPct/100) exits, locking in gains
//   - before take-profit, the initial stop applies: trailing off highestMA
//     or static off entryPrice
func Evaluate(order model.Order, currentPrice, currentMA decimal.Decimal, now time.Time) (model.Order, *model.ExitAlert) {
	order.CurrentPrice = currentPrice
	order.Profit = profitPct(order.EntryPrice, currentPrice)

	if order.HighestMA.IsZero() || currentMA.GreaterThan(order.HighestMA) {
		order.HighestMA = currentMA
	}

	takeProfitPrice := order.EntryPrice.Mul(hundred.Add(order.TakeProfitPct)).Div(hundred)
	takeProfitReached := order.HighestMA.GreaterThanOrEqual(takeProfitPrice)

	var exitReason string
	if takeProfitReached {
		if order.SecondarySLPct.LessThanOrEqual(decimal.Zero) {
			exitReason = ReasonTakeProfit
		} else {
			secondarySL := order.HighestMA.Mul(hundred.Sub(order.SecondarySLPct)).Div(hundred)
			if currentMA.LessThanOrEqual(secondarySL) {
				exitReason = ReasonSecondarySL
			}
		}
	} else {
		var initialSL decimal.Decimal
		var reason string
		switch order.InitialSL {
		case model.StopTrailing:
			initialSL = order.HighestMA.Mul(hundred.Sub(order.InitialSLPct)).Div(hundred)
			reason = ReasonTrailingSL
		default:
			initialSL = order.EntryPrice.Mul(hundred.Sub(order.InitialSLPct)).Div(hundred)
			reason = ReasonStaticSL
		}
		if currentMA.LessThanOrEqual(initialSL) {
			exitReason = reason
		}
	}

	if exitReason == "" {
		return order, nil
	}

	order.ExitReason = exitReason
	alert := &model.ExitAlert{
		ID:     uuid.NewString(),
		Symbol: order.Symbol,
		Message: fmt.Sprintf("%s for %s. Current price: %s, Profit: %s%%, Highest MA: %s",
			exitReason,
			order.Symbol,
			currentPrice.StringFixed(2),
			order.Profit.StringFixed(2),
			order.HighestMA.StringFixed(2),
		),
		Timestamp: now,
	}
	return order, alert
}

// profitPct is (current - entry) / entry * 100, zero when entry is zero.
func profitPct(entry, current decimal.Decimal) decimal.Decimal {
	if entry.IsZero() {
		return decimal.Zero
	}
	return current.Sub(entry).Div(entry).Mul(hundred)
}
