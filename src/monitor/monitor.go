package monitor

import (
	"context"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"orderwatch/src/alerts"
	"orderwatch/src/indicator"
	"orderwatch/src/marketdata"
	"orderwatch/src/model"
	"orderwatch/src/tp_sl"
)

// Store is the slice of the order store the monitor drives.
type Store interface {
	List(ctx context.Context, status *model.OrderStatus) ([]model.Order, error)
	Patch(ctx context.Context, symbol string, patch model.OrderPatch) (*model.Order, error)
	MarkExited(ctx context.Context, symbol string) error
}

// OrderMonitor periodically re-evaluates every HOLDING order: fetch fresh
// candles, recompute the MA, run the exit rules, persist the result. One
// symbol failing never stops the rest of the pass.
type OrderMonitor struct {
	store    Store
	source   marketdata.Source
	hub      *alerts.Hub
	interval time.Duration

	policyMu sync.RWMutex
	autoExit bool

	lifecycleMu sync.Mutex
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	now func() time.Time
}

func New(store Store, source marketdata.Source, hub *alerts.Hub, cfg Config) *OrderMonitor {
	return &OrderMonitor{
		store:    store,
		source:   source,
		hub:      hub,
		interval: cfg.UpdateInterval,
		autoExit: cfg.AutoExitOnTrigger,
		now:      time.Now,
	}
}

// SetAutoExitOnTrigger switches whether a fired exit rule also transitions
// the order to EXITED.
func (m *OrderMonitor) SetAutoExitOnTrigger(enabled bool) {
	m.policyMu.Lock()
	m.autoExit = enabled
	m.policyMu.Unlock()
}

func (m *OrderMonitor) AutoExitOnTrigger() bool {
	m.policyMu.RLock()
	defer m.policyMu.RUnlock()
	return m.autoExit
}

// Start launches the background loop. Calling Start on a running monitor is
// a no-op.
func (m *OrderMonitor) Start() {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()

	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(1)
	go m.loop(ctx)

	logger.WithField("interval", m.interval.String()).Info("order monitor started")
}

// Stop cancels the loop and waits for the in-flight tick to finish. It is
// idempotent; once it returns no background work is running.
func (m *OrderMonitor) Stop() {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()

	if m.cancel == nil {
		return
	}
	m.cancel()
	m.wg.Wait()
	m.cancel = nil

	logger.Info("order monitor stopped")
}

func (m *OrderMonitor) loop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// CheckNow runs one evaluation pass outside the timer cadence and returns
// the alerts it produced. The timer schedule is untouched.
func (m *OrderMonitor) CheckNow(ctx context.Context) ([]model.ExitAlert, error) {
	holding := model.StatusHolding
	orders, err := m.store.List(ctx, &holding)
	if err != nil {
		return nil, err
	}
	return m.evaluateAll(ctx, orders), nil
}

func (m *OrderMonitor) tick(ctx context.Context) {
	holding := model.StatusHolding
	orders, err := m.store.List(ctx, &holding)
	if err != nil {
		logger.WithError(err).Error("monitor tick failed to list holding orders")
		return
	}
	m.evaluateAll(ctx, orders)
}

// evaluateAll processes each order independently. A stop request observed
// between symbols ends the pass; the symbol in flight always completes.
func (m *OrderMonitor) evaluateAll(ctx context.Context, orders []model.Order) []model.ExitAlert {
	var fired []model.ExitAlert
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return fired
		default:
		}

		alert := m.evaluateOrder(ctx, order)
		if alert != nil {
			fired = append(fired, *alert)
		}
	}
	return fired
}

func (m *OrderMonitor) evaluateOrder(ctx context.Context, order model.Order) *model.ExitAlert {
	log := logger.WithFields(logger.Fields{
		"component": "OrderMonitor",
		"symbol":    order.Symbol,
	})

	candles, err := m.source.RecentCandles(ctx, order.Symbol)
	if err != nil {
		log.WithError(err).Error("failed to fetch recent candles, skipping symbol")
		return nil
	}

	price, ok := model.LastClose(candles)
	if !ok {
		log.Error("candle series held no close price, skipping symbol")
		return nil
	}

	ma, err := indicator.Compute(candles, order.MAType, order.Period)
	if err != nil {
		log.WithError(err).Error("failed to compute moving average, skipping symbol")
		return nil
	}

	updated, alert := tp_sl.Evaluate(order, price, ma, m.now())

	patch := model.OrderPatch{
		CurrentPrice: &updated.CurrentPrice,
		Profit:       &updated.Profit,
		HighestMA:    &updated.HighestMA,
	}
	if alert != nil {
		patch.ExitReason = &updated.ExitReason
	}

	if _, err := m.store.Patch(ctx, order.Symbol, patch); err != nil {
		log.WithError(err).Error("failed to persist evaluation, skipping symbol")
		return nil
	}

	if alert == nil {
		return nil
	}

	log.WithField("reason", updated.ExitReason).Info("exit condition fired")

	if m.hub != nil {
		m.hub.Publish(*alert)
	}

	if m.AutoExitOnTrigger() {
		if err := m.store.MarkExited(ctx, order.Symbol); err != nil {
			log.WithError(err).Error("failed to mark order exited")
		}
	}
	return alert
}
