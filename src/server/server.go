package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	logger "github.com/sirupsen/logrus"

	"orderwatch/src/alerts"
	"orderwatch/src/controller"
	"orderwatch/src/handler"
	"orderwatch/src/marketdata"
	"orderwatch/src/monitor"
)

// Deps are the wired components the HTTP surface exposes.
type Deps struct {
	Orders  *controller.OrderController
	Monitor *monitor.OrderMonitor
	Hub     *alerts.Hub
	Candles marketdata.Source
}

func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("healthcheck write error")
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/orders", handler.CreateOrderHandler(deps.Orders))
		r.Get("/orders", handler.ListOrdersHandler(deps.Orders))
		// Registered before {symbol} so "completed" never matches as a symbol.
		r.Delete("/orders/completed", handler.DeleteCompletedHandler(deps.Orders))
		r.Get("/orders/{symbol}", handler.GetOrderHandler(deps.Orders))
		r.Put("/orders/{symbol}", handler.UpdateOrderHandler(deps.Orders))
		r.Delete("/orders/{symbol}", handler.DeleteOrderHandler(deps.Orders))
		r.Post("/orders/{symbol}/exit", handler.ExitOrderHandler(deps.Orders))

		r.Get("/notifications", handler.NotificationsHandler(deps.Monitor))
		r.Get("/notifications/ws", handler.NotificationsStreamHandler(deps.Hub))

		r.Post("/config/auto-remove", handler.AutoExitConfigHandler(deps.Monitor))

		r.Get("/stock/{symbol}", handler.StockDataHandler(deps.Candles))
	})

	return r
}

func StartServer(config *Config, deps Deps) {
	c := cors.New(cors.Options{
		AllowedOrigins: config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	// Server setup
	addr := ":" + config.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: c.Handler(NewRouter(deps)),
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
