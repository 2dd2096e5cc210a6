package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeSyncRunCompleted MessageType = "sync.run_completed"
	TypeSyncRunError     MessageType = "sync.run_error"
	TypeBatchCompleted   MessageType = "sync.batch_completed"
	TypeNotification     MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncRunPayload is the payload for sync.run_completed and sync.run_error
// events.
type SyncRunPayload struct {
	ConnectionID  string `json:"connection_id"`
	Channel       string `json:"channel"`
	PropertyID    string `json:"property_id"`
	Status        string `json:"status"`
	EventsFound   int    `json:"events_found"`
	EventsCreated int    `json:"events_created"`
	EventsUpdated int    `json:"events_updated"`
	EventsSkipped int    `json:"events_skipped"`
	Error         string `json:"error,omitempty"`
}

// BatchCompletedPayload is the payload for sync.batch_completed events.
type BatchCompletedPayload struct {
	Connections int        `json:"connections"`
	Failures    int        `json:"failures"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	NextRunAt   *time.Time `json:"next_run_at,omitempty"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level   string `json:"level"` // info, warning, error
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
