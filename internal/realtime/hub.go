// Package realtime fans activity-change events out to websocket subscribers.
package realtime

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"example.com/calendar/internal/events"
)

// subscriber is the connection surface the hub needs. *websocket.Conn
// satisfies it; tests substitute stubs.
type subscriber interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub owns the set of live subscriber connections and delivers events to all
// of them. Publishing is decoupled from delivery: PublishActivityChanged
// enqueues onto a buffered channel and the Run goroutine, which owns the
// connections, performs the writes. A full queue drops the event rather than
// blocking the publisher.
type Hub struct {
	mu       sync.Mutex
	subs     map[subscriber]struct{}
	queue    chan events.ActivityChanged
	upgrader websocket.Upgrader
}

// NewHub constructs a Hub with the given event queue capacity.
func NewHub(queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Hub{
		subs:  make(map[subscriber]struct{}),
		queue: make(chan events.ActivityChanged, queueSize),
		upgrader: websocket.Upgrader{
			// The realtime channel carries no sensitive data and the API is
			// already CORS-scoped, so cross-origin upgrades are accepted.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Run drains the event queue and fans out to subscribers until ctx is
// cancelled. It must run on its own goroutine; all websocket writes happen
// here so there is a single writer per connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case event := <-h.queue:
			h.fanOut(event)
		}
	}
}

// PublishActivityChanged implements events.Publisher. It never blocks: when
// the queue is full (or nothing is draining it) the event is dropped.
func (h *Hub) PublishActivityChanged(event string, payload events.ActivityPayload) {
	select {
	case h.queue <- events.ActivityChanged{Event: event, Activity: payload}:
		publishedCounter.WithLabelValues(event).Inc()
	default:
		droppedCounter.Inc()
	}
}

// ServeWS upgrades the request to a websocket, registers the connection, and
// blocks reading (and discarding) client frames until disconnect.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime: websocket upgrade failed: %v", err)
		return
	}

	h.subscribe(conn)
	defer func() {
		h.unsubscribe(conn)
		_ = conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) subscribe(s subscriber) {
	h.mu.Lock()
	h.subs[s] = struct{}{}
	subscribersGauge.Set(float64(len(h.subs)))
	h.mu.Unlock()
}

// unsubscribe removes the handle; removing an absent handle is a no-op.
func (h *Hub) unsubscribe(s subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	subscribersGauge.Set(float64(len(h.subs)))
	h.mu.Unlock()
}

// fanOut delivers the event to every subscriber independently. A failed
// write evicts that subscriber and does not affect the others.
func (h *Hub) fanOut(event events.ActivityChanged) {
	h.mu.Lock()
	targets := make([]subscriber, 0, len(h.subs))
	for s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	for _, s := range targets {
		if err := s.WriteJSON(event); err != nil {
			log.Printf("realtime: evicting subscriber after failed send: %v", err)
			h.unsubscribe(s)
			_ = s.Close()
			evictionsCounter.Inc()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for s := range h.subs {
		_ = s.Close()
		delete(h.subs, s)
	}
	subscribersGauge.Set(0)
	h.mu.Unlock()
}
