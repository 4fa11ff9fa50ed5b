package alerts

import (
	"sync"

	logger "github.com/sirupsen/logrus"

	"orderwatch/src/model"
)

const subscriberBuffer = 16

// Hub fans exit alerts out to subscribers (the websocket notification
// stream). Publishing never blocks: a subscriber that cannot keep up has the
// alert dropped rather than stalling the monitor.
type Hub struct {
	mu   sync.Mutex
	subs map[chan model.ExitAlert]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan model.ExitAlert]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be called to
// release it.
func (h *Hub) Subscribe() (<-chan model.ExitAlert, func()) {
	ch := make(chan model.ExitAlert, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the alert to every subscriber that has buffer room.
func (h *Hub) Publish(alert model.ExitAlert) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- alert:
		default:
			logger.WithField("symbol", alert.Symbol).
				Warn("dropping alert for slow notification subscriber")
		}
	}
}

// SubscriberCount reports how many listeners are attached.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
