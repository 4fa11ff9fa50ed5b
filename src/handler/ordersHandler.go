package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"orderwatch/src/controller"
	"orderwatch/src/model"
)

type orderCreator interface {
	CreateOrder(ctx context.Context, req controller.OrderRequest) (*model.Order, error)
}

type orderUpdater interface {
	UpdateOrder(ctx context.Context, symbol string, patch model.OrderPatch) (*model.Order, error)
}

type orderGetter interface {
	GetOrder(ctx context.Context, symbol string) (*model.Order, error)
}

type orderLister interface {
	ListOrders(ctx context.Context, status string) ([]model.Order, error)
}

type orderDeleter interface {
	DeleteOrder(ctx context.Context, symbol string) error
}

type completedCleaner interface {
	DeleteCompleted(ctx context.Context) (int, error)
}

type orderExiter interface {
	ManualExit(ctx context.Context, symbol string) error
}

// CreateOrderHandler handles POST /api/orders.
func CreateOrderHandler(ctrl orderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req controller.OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		if _, err := ctrl.CreateOrder(r.Context(), req); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, messageResponse{Message: "Order created successfully"})
	}
}

// ListOrdersHandler handles GET /api/orders with an optional status filter.
func ListOrdersHandler(ctrl orderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := ctrl.ListOrders(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, orders)
	}
}

// GetOrderHandler handles GET /api/orders/{symbol}.
func GetOrderHandler(ctrl orderGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := ctrl.GetOrder(r.Context(), chi.URLParam(r, "symbol"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

// UpdateOrderHandler handles PUT /api/orders/{symbol}.
func UpdateOrderHandler(ctrl orderUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch model.OrderPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		if _, err := ctrl.UpdateOrder(r.Context(), chi.URLParam(r, "symbol"), patch); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Order updated successfully"})
	}
}

// DeleteOrderHandler handles DELETE /api/orders/{symbol}.
func DeleteOrderHandler(ctrl orderDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ctrl.DeleteOrder(r.Context(), chi.URLParam(r, "symbol")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Order deleted successfully"})
	}
}

// DeleteCompletedHandler handles DELETE /api/orders/completed.
func DeleteCompletedHandler(ctrl completedCleaner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := ctrl.DeleteCompleted(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "All completed orders deleted successfully"})
	}
}

// ExitOrderHandler handles POST /api/orders/{symbol}/exit.
func ExitOrderHandler(ctrl orderExiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ctrl.ManualExit(r.Context(), chi.URLParam(r, "symbol")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Order exited successfully"})
	}
}
