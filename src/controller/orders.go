package controller

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"orderwatch/src/model"
)

// Store is the order-store surface the controller drives.
type Store interface {
	Put(ctx context.Context, order model.Order) error
	Patch(ctx context.Context, symbol string, patch model.OrderPatch) (*model.Order, error)
	Get(ctx context.Context, symbol string) (*model.Order, error)
	List(ctx context.Context, status *model.OrderStatus) ([]model.Order, error)
	Delete(ctx context.Context, symbol string) error
	DeleteWhere(ctx context.Context, pred func(model.Order) bool) (int, error)
	MarkExited(ctx context.Context, symbol string) error
}

// PriceSource resolves a current price when an order is created without an
// explicit entry price.
type PriceSource interface {
	RecentCandles(ctx context.Context, symbol string) ([]model.Candle, error)
}

// OrderController validates lifecycle requests and applies them to the store.
type OrderController struct {
	store  Store
	source PriceSource
	now    func() time.Time
}

func NewOrderController(store Store, source PriceSource) *OrderController {
	return &OrderController{store: store, source: source, now: time.Now}
}

// OrderRequest is an inbound create/update payload: a symbol plus the fields
// being set.
type OrderRequest struct {
	Symbol string `json:"symbol"`
	model.OrderPatch
}

// CreateOrder validates the request, resolves the entry price, and inserts a
// fresh HOLDING record. Creating over an existing symbol replaces it with the
// fresh record, restarting monitoring from scratch.
func (c *OrderController) CreateOrder(ctx context.Context, req OrderRequest) (*model.Order, error) {
	if req.Symbol == "" {
		return nil, model.NewValidationError("symbol", "is required")
	}
	if err := validateRequired(req.OrderPatch); err != nil {
		return nil, err
	}
	if err := validateFields(req.OrderPatch); err != nil {
		return nil, err
	}

	entryPrice, err := c.resolveEntryPrice(ctx, req)
	if err != nil {
		return nil, err
	}

	order := model.Order{
		Symbol:        req.Symbol,
		Status:        model.StatusHolding,
		EntryPrice:    entryPrice,
		EntryDatetime: c.now(),
	}
	req.OrderPatch.Apply(&order)
	order.EntryPrice = entryPrice
	order.CurrentPrice = decimal.Zero
	order.Profit = decimal.Zero
	order.HighestMA = decimal.Zero
	order.ExitReason = ""
	order.ExitDatetime = nil

	if err := c.store.Put(ctx, order); err != nil {
		return nil, err
	}

	logger.WithFields(logger.Fields{
		"component": "OrderController",
		"symbol":    order.Symbol,
		"entry":     order.EntryPrice.String(),
	}).Info("order created")

	return &order, nil
}

// UpdateOrder merges the patch into an existing order. Omitted fields keep
// their stored values; in particular a patch without entryPrice can never
// clear it. Every update also refreshes currentPrice from live data; when
// that fetch fails the patch value, if any, stands.
func (c *OrderController) UpdateOrder(ctx context.Context, symbol string, patch model.OrderPatch) (*model.Order, error) {
	if err := validateFields(patch); err != nil {
		return nil, err
	}

	if candles, err := c.source.RecentCandles(ctx, symbol); err != nil {
		logger.WithFields(logger.Fields{
			"component": "OrderController",
			"symbol":    symbol,
		}).WithError(err).Warn("could not refresh current price")
	} else if price, ok := model.LastClose(candles); ok && price.GreaterThan(decimal.Zero) {
		patch.CurrentPrice = &price
	}

	updated, err := c.store.Patch(ctx, symbol, patch)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logger.Fields{
		"component": "OrderController",
		"symbol":    symbol,
	}).Info("order updated")

	return updated, nil
}

// GetOrder returns the record for symbol or ErrOrderNotFound.
func (c *OrderController) GetOrder(ctx context.Context, symbol string) (*model.Order, error) {
	order, err := c.store.Get(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns all orders, filtered by status when statusStr is
// non-empty. An unknown status is a validation error.
func (c *OrderController) ListOrders(ctx context.Context, statusStr string) ([]model.Order, error) {
	var filter *model.OrderStatus
	if statusStr != "" {
		status := model.OrderStatus(statusStr)
		if !status.Valid() {
			return nil, model.NewValidationError("status", "must be HOLDING or EXITED")
		}
		filter = &status
	}

	orders, err := c.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// DeleteOrder removes the record; deleting an unknown symbol is a no-op.
func (c *OrderController) DeleteOrder(ctx context.Context, symbol string) error {
	return c.store.Delete(ctx, symbol)
}

// DeleteCompleted removes all EXITED records and reports how many went.
func (c *OrderController) DeleteCompleted(ctx context.Context) (int, error) {
	return c.store.DeleteWhere(ctx, func(o model.Order) bool {
		return o.Status == model.StatusExited
	})
}

// ManualExit transitions the order to EXITED. Exiting an already exited
// order keeps the original exit timestamp.
func (c *OrderController) ManualExit(ctx context.Context, symbol string) error {
	return c.store.MarkExited(ctx, symbol)
}

// resolveEntryPrice uses the requested price when given, otherwise falls
// back to the freshest close for the symbol. An unresolvable price rejects
// the creation.
func (c *OrderController) resolveEntryPrice(ctx context.Context, req OrderRequest) (decimal.Decimal, error) {
	if req.EntryPrice != nil {
		if req.EntryPrice.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, model.NewValidationError("entryPrice", "cannot be null or zero")
		}
		return *req.EntryPrice, nil
	}

	candles, err := c.source.RecentCandles(ctx, req.Symbol)
	if err != nil {
		logger.WithFields(logger.Fields{
			"component": "OrderController",
			"symbol":    req.Symbol,
		}).WithError(err).Error("failed to resolve entry price from market data")
		return decimal.Zero, model.NewValidationError("entryPrice", "cannot be null or zero")
	}

	price, ok := model.LastClose(candles)
	if !ok || price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, model.NewValidationError("entryPrice", "cannot be null or zero")
	}
	return price, nil
}

// validateRequired enforces the create-time field set.
func validateRequired(p model.OrderPatch) error {
	switch {
	case p.OrderType == nil:
		return model.NewValidationError("orderType", "is required")
	case p.MAType == nil:
		return model.NewValidationError("maType", "is required")
	case p.Period == nil:
		return model.NewValidationError("period", "is required")
	case p.InitialSL == nil:
		return model.NewValidationError("initialSL", "is required")
	case p.InitialSLPct == nil:
		return model.NewValidationError("initialSLPct", "is required")
	case p.TakeProfitPct == nil:
		return model.NewValidationError("takeProfitPct", "is required")
	case p.SecondarySLPct == nil:
		return model.NewValidationError("secondarySLPct", "is required")
	}
	return nil
}

// validateFields checks whatever the patch carries; nil fields are fine.
func validateFields(p model.OrderPatch) error {
	if p.MAType != nil && !p.MAType.Valid() {
		return model.NewValidationError("maType", "must be SMA, EMA or HMA")
	}
	if p.InitialSL != nil && !p.InitialSL.Valid() {
		return model.NewValidationError("initialSL", "must be static or trailing")
	}
	if p.Period != nil && *p.Period <= 0 {
		return model.NewValidationError("period", "must be positive")
	}
	if p.EntryPrice != nil && p.EntryPrice.LessThanOrEqual(decimal.Zero) {
		return model.NewValidationError("entryPrice", "cannot be null or zero")
	}
	for field, pct := range map[string]*decimal.Decimal{
		"initialSLPct":   p.InitialSLPct,
		"takeProfitPct":  p.TakeProfitPct,
		"secondarySLPct": p.SecondarySLPct,
	} {
		if pct != nil && pct.IsNegative() {
			return model.NewValidationError(field, "cannot be negative")
		}
	}
	return nil
}
