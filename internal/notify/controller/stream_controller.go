package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"comanda/internal/notify"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const keepaliveInterval = 15 * time.Second

type EventBus interface {
	Subscribe(topic string) (<-chan notify.Event, func())
}

// StreamController serves the real-time channel as server-sent events.
// Delivery is at-least-once and best-effort; clients treat events as hints
// and re-fetch the order on reconnect.
type StreamController struct {
	bus    EventBus
	logger *zap.Logger
}

func NewStreamController(bus EventBus, logger *zap.Logger) *StreamController {
	return &StreamController{bus: bus, logger: logger}
}

// StreamOrder handles GET /events/orders/{orderId}.
func (c *StreamController) StreamOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseUint(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		http.Error(w, "orderId must be a positive integer", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	topic := notify.OrderTopic(uint(orderID))
	events, cancel := c.bus.Subscribe(topic)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	c.logger.Debug("event stream opened", zap.String("topic", topic))

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			c.logger.Debug("event stream closed", zap.String("topic", topic))
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				c.logger.Error("encoding event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}
