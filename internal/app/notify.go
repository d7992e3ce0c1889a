package app

import (
	"context"
	"log"

	"github.com/google/uuid"

	"vitadash-reward-service/internal/domain"
)

// NotificationSink is the fire-and-forget delivery collaborator (the
// websocket hub in production, a recorder in tests).
type NotificationSink interface {
	Deliver(n domain.Notification)
}

// Dispatcher turns state transitions into notification records. It is
// side-effect-only: persistence or delivery failures are logged and
// never propagated to the operation that triggered the event.
type Dispatcher struct {
	store NotificationStore
	sink  NotificationSink
	clock Clock
}

// NewDispatcher wires a dispatcher. sink may be nil.
func NewDispatcher(store NotificationStore, sink NotificationSink, clock Clock) *Dispatcher {
	if clock == nil {
		clock = SystemClock
	}
	return &Dispatcher{store: store, sink: sink, clock: clock}
}

// Dispatch builds, persists and delivers one notification.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, kind domain.NotificationType, title, message string) {
	n := domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		Read:      false,
		Timestamp: d.clock.Now(),
	}
	if err := d.store.SaveNotification(ctx, n); err != nil {
		log.Printf("notify: save %s notification for %s: %v", kind, userID, err)
		return
	}
	if d.sink != nil {
		d.sink.Deliver(n)
	}
}

// NotificationsFor lists the user's notifications, newest first.
func (d *Dispatcher) NotificationsFor(ctx context.Context, userID string) ([]domain.Notification, error) {
	return d.store.NotificationsFor(ctx, userID)
}

// MarkRead flags one notification as read.
func (d *Dispatcher) MarkRead(ctx context.Context, userID, notificationID string) error {
	return d.store.MarkNotificationRead(ctx, userID, notificationID)
}
