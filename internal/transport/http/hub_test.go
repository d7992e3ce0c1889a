package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"vitadash-reward-service/internal/domain"
)

func TestHubStreamsNotifications(t *testing.T) {
	hub := NewNotificationHub()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/notifications", hub.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/notifications?userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Delivery is asynchronous to the connect; retry until the reader
	// goroutine is registered.
	want := domain.Notification{
		ID:     "n1",
		UserID: "u1",
		Type:   domain.NotifyAchievement,
		Title:  "Achievement Unlocked!",
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.Deliver(want)
		var got domain.Notification
		_ = conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		if err := conn.ReadJSON(&got); err == nil {
			if got.ID != want.ID || got.Title != want.Title {
				t.Fatalf("unexpected notification: %+v", got)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("notification never arrived")
		}
	}
}

func TestHubIgnoresOtherUsers(t *testing.T) {
	hub := NewNotificationHub()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/notifications", hub.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/notifications?userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hub.Deliver(domain.Notification{ID: "n1", UserID: "someone-else"})

	var got domain.Notification
	_ = conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if err := conn.ReadJSON(&got); err == nil {
		t.Fatalf("received another user's notification: %+v", got)
	}
}

func TestHubRequiresUserID(t *testing.T) {
	hub := NewNotificationHub()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/notifications", hub.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws/notifications")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewNotificationHub()
	conn := &hubConn{send: make(chan domain.Notification, 1)}
	hub.register("u1", conn)
	defer hub.unregister("u1", conn)

	// Nothing drains the channel: newer messages replace older ones
	// instead of blocking the caller.
	hub.Deliver(domain.Notification{ID: "old", UserID: "u1"})
	hub.Deliver(domain.Notification{ID: "new", UserID: "u1"})

	select {
	case n := <-conn.send:
		if n.ID != "new" {
			t.Fatalf("expected newest message kept, got %s", n.ID)
		}
	default:
		t.Fatal("expected a buffered message")
	}
}
