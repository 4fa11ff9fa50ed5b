package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a tracked order. EXITED is terminal:
// once set, the monitor never mutates the order again.
type OrderStatus string

const (
	StatusHolding OrderStatus = "HOLDING"
	StatusExited  OrderStatus = "EXITED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusHolding, StatusExited:
		return true
	}
	return false
}

// MAType selects which moving average the indicator layer computes.
type MAType string

const (
	MASimple      MAType = "SMA"
	MAExponential MAType = "EMA"
	MAHull        MAType = "HMA"
)

func (t MAType) Valid() bool {
	switch t {
	case MASimple, MAExponential, MAHull:
		return true
	}
	return false
}

// StopPolicy anchors the initial stop-loss either to the entry price
// ("static") or to the running highest MA ("trailing").
type StopPolicy string

const (
	StopStatic   StopPolicy = "static"
	StopTrailing StopPolicy = "trailing"
)

func (p StopPolicy) Valid() bool {
	switch p {
	case StopStatic, StopTrailing:
		return true
	}
	return false
}

// Order is a tracked trading position, one per symbol. JSON field names match
// the wire format the frontend consumes.
type Order struct {
	Symbol         string          `json:"symbol"`
	Status         OrderStatus     `json:"status"`
	OrderType      string          `json:"orderType"`
	EntryPrice     decimal.Decimal `json:"entryPrice"`
	CurrentPrice   decimal.Decimal `json:"currentPrice"`
	Profit         decimal.Decimal `json:"profit"`
	MAType         MAType          `json:"maType"`
	Period         int             `json:"period"`
	InitialSL      StopPolicy      `json:"initialSL"`
	InitialSLPct   decimal.Decimal `json:"initialSLPct"`
	TakeProfitPct  decimal.Decimal `json:"takeProfitPct"`
	SecondarySLPct decimal.Decimal `json:"secondarySLPct"`
	HighestMA      decimal.Decimal `json:"highestMA"`
	EntryDatetime  time.Time       `json:"entryDatetime"`
	ExitDatetime   *time.Time      `json:"exitDatetime"`
	ExitReason     string          `json:"exitReason"`
}

func (o *Order) IsHolding() bool {
	return o.Status == StatusHolding
}

// OrderPatch is a partial order update. Nil fields are left untouched on
// merge, so an update that omits entryPrice can never zero it out.
type OrderPatch struct {
	OrderType      *string          `json:"orderType"`
	EntryPrice     *decimal.Decimal `json:"entryPrice"`
	CurrentPrice   *decimal.Decimal `json:"currentPrice"`
	Profit         *decimal.Decimal `json:"profit"`
	MAType         *MAType          `json:"maType"`
	Period         *int             `json:"period"`
	InitialSL      *StopPolicy      `json:"initialSL"`
	InitialSLPct   *decimal.Decimal `json:"initialSLPct"`
	TakeProfitPct  *decimal.Decimal `json:"takeProfitPct"`
	SecondarySLPct *decimal.Decimal `json:"secondarySLPct"`
	HighestMA      *decimal.Decimal `json:"highestMA"`
	ExitReason     *string          `json:"exitReason"`
}

// Apply merges the patch into the order field by field.
func (p *OrderPatch) Apply(o *Order) {
	if p.OrderType != nil {
		o.OrderType = *p.OrderType
	}
	if p.EntryPrice != nil {
		o.EntryPrice = *p.EntryPrice
	}
	if p.CurrentPrice != nil {
		o.CurrentPrice = *p.CurrentPrice
	}
	if p.Profit != nil {
		o.Profit = *p.Profit
	}
	if p.MAType != nil {
		o.MAType = *p.MAType
	}
	if p.Period != nil {
		o.Period = *p.Period
	}
	if p.InitialSL != nil {
		o.InitialSL = *p.InitialSL
	}
	if p.InitialSLPct != nil {
		o.InitialSLPct = *p.InitialSLPct
	}
	if p.TakeProfitPct != nil {
		o.TakeProfitPct = *p.TakeProfitPct
	}
	if p.SecondarySLPct != nil {
		o.SecondarySLPct = *p.SecondarySLPct
	}
	// HighestMA is a running peak: a patch can raise it, never lower it,
	// even when the patch was computed from an older read.
	if p.HighestMA != nil && p.HighestMA.GreaterThan(o.HighestMA) {
		o.HighestMA = *p.HighestMA
	}
	if p.ExitReason != nil {
		o.ExitReason = *p.ExitReason
	}
}
