// Package realtime pushes journal change notifications to browsers. A Hub
// fans events out to websocket listeners and a Watcher turns data directory
// changes into reloads.
package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rubiojr/triplog/pkg/log"
)

var logger = log.ForService("realtime")

// Event types.
const (
	EventReload = "reload"
)

// Event is what listeners receive. Websocket clients get the bare Type as a
// text message.
type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

// Hub is an in-memory fan-out dispatcher. Each listener has its own buffered
// channel; when it is full the event is dropped for that listener only.
type Hub struct {
	mu        sync.RWMutex
	listeners map[string]chan Event
	bufSize   int
	upgrader  websocket.Upgrader
}

// NewHub returns a hub with per-listener buffer size bufSize, 8 when
// bufSize <= 0.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 8
	}
	return &Hub{
		listeners: make(map[string]chan Event),
		bufSize:   bufSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Live reload is read-only; any page may listen.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Register adds a listener. Callers must Unregister the returned id.
func (h *Hub) Register() (string, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := uuid.NewString()
	ch := make(chan Event, h.bufSize)
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes the listener and closes its channel. Unknown ids are
// ignored.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Broadcast delivers ev to every listener, best effort.
func (h *Hub) Broadcast(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.listeners {
		select {
		case ch <- ev:
		default:
			logger.Debugf("dropping %s event for slow listener %s", ev.Type, id)
		}
	}
}

// Reload tells every listener to reload.
func (h *Hub) Reload() {
	h.Broadcast(Event{Type: EventReload})
}

// Size returns the number of listeners.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// ServeHTTP upgrades the request to a websocket and forwards events until
// either side goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	id, events := h.Register()
	defer h.Unregister(id)
	logger.Debugf("live reload client %s connected", id)

	// Clients never send anything; reading only notices the close.
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
			logger.Debugf("live reload client %s disconnected", id)
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(ev.Type)); err != nil {
				logger.Debugf("writing to %s: %v", id, err)
				return
			}
		}
	}
}
