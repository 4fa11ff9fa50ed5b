package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"

	"orderwatch/src/alerts"
	"orderwatch/src/model"
)

type alertChecker interface {
	CheckNow(ctx context.Context) ([]model.ExitAlert, error)
}

// NotificationsHandler handles GET /api/notifications: it runs a synchronous
// evaluation pass and returns whatever alerts fired.
func NotificationsHandler(mon alertChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fired, err := mon.CheckNow(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if fired == nil {
			fired = []model.ExitAlert{}
		}
		writeJSON(w, http.StatusOK, fired)
	}
}

// NotificationsStreamHandler handles GET /api/notifications/ws: it upgrades
// the connection and pushes every alert the monitor publishes until the
// client disconnects.
func NotificationsStreamHandler(hub *alerts.Hub) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WithError(err).Error("failed to upgrade notification stream")
			return
		}
		defer conn.Close()

		sub, cancel := hub.Subscribe()
		defer cancel()

		// Drain reads so we notice the peer closing.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				return
			case alert, ok := <-sub:
				if !ok {
					return
				}
				if err := conn.WriteJSON(alert); err != nil {
					logger.WithError(err).Debug("notification subscriber went away")
					return
				}
			}
		}
	}
}
