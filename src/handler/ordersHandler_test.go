package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderwatch/src/controller"
	"orderwatch/src/model"
)

type mockOrders struct {
	createErr  error
	updateErr  error
	getOrder   *model.Order
	getErr     error
	listOrders []model.Order
	listErr    error
	deleteErr  error
	cleanCount int
	cleanErr   error
	exitErr    error

	createdReq   controller.OrderRequest
	updatedSym   string
	updatedPatch model.OrderPatch
	deletedSym   string
	exitedSym    string
}

func (m *mockOrders) CreateOrder(ctx context.Context, req controller.OrderRequest) (*model.Order, error) {
	m.createdReq = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &model.Order{Symbol: req.Symbol}, nil
}

func (m *mockOrders) UpdateOrder(ctx context.Context, symbol string, patch model.OrderPatch) (*model.Order, error) {
	m.updatedSym = symbol
	m.updatedPatch = patch
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &model.Order{Symbol: symbol}, nil
}

func (m *mockOrders) GetOrder(ctx context.Context, symbol string) (*model.Order, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.getOrder, nil
}

func (m *mockOrders) ListOrders(ctx context.Context, status string) ([]model.Order, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listOrders, nil
}

func (m *mockOrders) DeleteOrder(ctx context.Context, symbol string) error {
	m.deletedSym = symbol
	return m.deleteErr
}

func (m *mockOrders) DeleteCompleted(ctx context.Context) (int, error) {
	return m.cleanCount, m.cleanErr
}

func (m *mockOrders) ManualExit(ctx context.Context, symbol string) error {
	m.exitedSym = symbol
	return m.exitErr
}

func ordersRouter(m *mockOrders) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/orders", CreateOrderHandler(m))
	r.Get("/api/orders", ListOrdersHandler(m))
	r.Delete("/api/orders/completed", DeleteCompletedHandler(m))
	r.Get("/api/orders/{symbol}", GetOrderHandler(m))
	r.Put("/api/orders/{symbol}", UpdateOrderHandler(m))
	r.Delete("/api/orders/{symbol}", DeleteOrderHandler(m))
	r.Post("/api/orders/{symbol}/exit", ExitOrderHandler(m))
	return r
}

func TestCreateOrderHandler(t *testing.T) {
	m := &mockOrders{}
	body := `{"symbol":"TSLA","orderType":"buy","maType":"SMA","period":20,"initialSL":"static","initialSLPct":5,"takeProfitPct":10,"secondarySLPct":0}`

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	ordersRouter(m).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "Order created successfully")
	assert.Equal(t, "TSLA", m.createdReq.Symbol)
	require.NotNil(t, m.createdReq.Period)
	assert.Equal(t, 20, *m.createdReq.Period)
}

func TestCreateOrderHandlerInvalidBody(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("{not json"))
	ordersRouter(&mockOrders{}).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateOrderHandlerValidationError(t *testing.T) {
	m := &mockOrders{createErr: model.NewValidationError("entryPrice", "cannot be null or zero")}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"symbol":"TSLA"}`))
	ordersRouter(m).ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "entryPrice")
}

func TestListOrdersHandler(t *testing.T) {
	m := &mockOrders{listOrders: []model.Order{{Symbol: "TSLA"}, {Symbol: "AAPL"}}}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orders?status=HOLDING", nil)
	ordersRouter(m).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var orders []model.Order
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &orders))
	assert.Len(t, orders, 2)
}

func TestListOrdersHandlerInvalidStatus(t *testing.T) {
	m := &mockOrders{listErr: model.NewValidationError("status", "must be HOLDING or EXITED")}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orders?status=INVALID", nil)
	ordersRouter(m).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetOrderHandlerNotFound(t *testing.T) {
	m := &mockOrders{getErr: model.ErrOrderNotFound}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orders/NOPE", nil)
	ordersRouter(m).ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Order not found")
}

func TestGetOrderHandler(t *testing.T) {
	m := &mockOrders{getOrder: &model.Order{Symbol: "TSLA", Status: model.StatusHolding}}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orders/TSLA", nil)
	ordersRouter(m).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var order model.Order
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &order))
	assert.Equal(t, "TSLA", order.Symbol)
	assert.Equal(t, model.StatusHolding, order.Status)
}

func TestUpdateOrderHandlerNotFound(t *testing.T) {
	m := &mockOrders{updateErr: model.ErrOrderNotFound}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/orders/NOPE", strings.NewReader(`{"currentPrice":110}`))
	ordersRouter(m).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateOrderHandler(t *testing.T) {
	m := &mockOrders{}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/orders/TSLA", strings.NewReader(`{"currentPrice":110}`))
	ordersRouter(m).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "TSLA", m.updatedSym)
	require.NotNil(t, m.updatedPatch.CurrentPrice)
	assert.Nil(t, m.updatedPatch.EntryPrice, "entryPrice must stay unset when the body omits it")
}

func TestDeleteOrderHandler(t *testing.T) {
	m := &mockOrders{}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/orders/TSLA", nil)
	ordersRouter(m).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "TSLA", m.deletedSym)
}

func TestDeleteCompletedHandler(t *testing.T) {
	m := &mockOrders{cleanCount: 3}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/orders/completed", nil)
	ordersRouter(m).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "All completed orders deleted successfully")
	// The static route must win over the {symbol} route.
	assert.Empty(t, m.deletedSym)
}

func TestExitOrderHandler(t *testing.T) {
	m := &mockOrders{}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders/TSLA/exit", nil)
	ordersRouter(m).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "TSLA", m.exitedSym)
}

func TestExitOrderHandlerNotFound(t *testing.T) {
	m := &mockOrders{exitErr: model.ErrOrderNotFound}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders/NOPE/exit", nil)
	ordersRouter(m).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
