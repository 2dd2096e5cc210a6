package websocket

import (
	"go.uber.org/zap"

	"github.com/rental-calendar-hub/backend/internal/storage/models"
)

// EventBroadcaster handles broadcasting sync lifecycle events.
type EventBroadcaster struct {
	hub    *Hub
	logger *zap.Logger
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub, logger *zap.Logger) *EventBroadcaster {
	return &EventBroadcaster{hub: hub, logger: logger}
}

// BroadcastSyncRunCompleted sends a sync run completed event.
func (b *EventBroadcaster) BroadcastSyncRunCompleted(result models.SyncRunResult) {
	msg := NewMessage(TypeSyncRunCompleted, syncRunPayload(result, "success"))
	b.send(msg)
}

// BroadcastSyncRunError sends a sync run error event.
func (b *EventBroadcaster) BroadcastSyncRunError(result models.SyncRunResult) {
	msg := NewMessage(TypeSyncRunError, syncRunPayload(result, "failure"))
	b.send(msg)
}

// BroadcastBatchCompleted sends a batch completed event summarizing the
// latest scheduler snapshot.
func (b *EventBroadcaster) BroadcastBatchCompleted(snap models.BatchSnapshot) {
	failures := 0
	for _, r := range snap.Results {
		if !r.Success {
			failures++
		}
	}

	msg := NewMessage(TypeBatchCompleted, BatchCompletedPayload{
		Connections: len(snap.Results),
		Failures:    failures,
		LastRunAt:   snap.LastRunAt,
		NextRunAt:   snap.NextRunAt,
	})
	b.send(msg)
}

// BroadcastNotification sends a notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	msg := NewMessage(TypeNotification, NotificationPayload{
		Level:   level,
		Title:   title,
		Message: message,
	})
	b.send(msg)
}

func syncRunPayload(result models.SyncRunResult, status string) SyncRunPayload {
	return SyncRunPayload{
		ConnectionID:  result.ConnectionID,
		Channel:       string(result.Channel),
		PropertyID:    result.PropertyID,
		Status:        status,
		EventsFound:   result.EventsFound,
		EventsCreated: result.EventsCreated,
		EventsUpdated: result.EventsUpdated,
		EventsSkipped: result.EventsSkipped,
		Error:         result.Error,
	}
}

func (b *EventBroadcaster) send(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		b.logger.Warn("encoding websocket message failed", zap.Error(err))
		return
	}

	b.hub.Broadcast(data)
}
