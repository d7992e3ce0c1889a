package http

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"vitadash-reward-service/internal/domain"
)

// NotificationHub fans dispatched notifications out to the user's open
// websocket connections. It implements app.NotificationSink. Delivery
// is fire-and-forget: a slow or closed client never blocks the
// operation that produced the event.
type NotificationHub struct {
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]map[*hubConn]struct{}
}

type hubConn struct {
	send chan domain.Notification
}

// NewNotificationHub builds an empty hub.
func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: make(map[string]map[*hubConn]struct{}),
	}
}

// Deliver pushes a notification to every open connection for the user.
// Full buffers drop the oldest pending message rather than block.
func (h *NotificationHub) Deliver(n domain.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.conns[n.UserID] {
		select {
		case conn.send <- n:
		default:
			select {
			case <-conn.send:
			default:
			}
			select {
			case conn.send <- n:
			default:
			}
		}
	}
}

// ServeWS upgrades the request and streams the user's notifications
// until the client disconnects.
func (h *NotificationHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	conn := &hubConn{send: make(chan domain.Notification, 16)}
	h.register(userID, conn)
	defer h.unregister(userID, conn)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case n := <-conn.send:
			if err := ws.WriteJSON(n); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}

func (h *NotificationHub) register(userID string, conn *hubConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*hubConn]struct{})
	}
	h.conns[userID][conn] = struct{}{}
}

func (h *NotificationHub) unregister(userID string, conn *hubConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns[userID], conn)
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
}
