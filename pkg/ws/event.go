package ws

import (
	"context"
	"encoding/json"
)

// Event is a reassembled event or card callback received on the long
// connection.
type Event struct {
	Type      MessageType
	MessageID string
	TraceID   string
	Payload   []byte
}

// EventType returns header.event_type of a schema 2.0 payload, or the
// message type when the payload carries none.
func (e *Event) EventType() string {
	var envelope struct {
		Header struct {
			EventType string `json:"event_type"`
		} `json:"header"`
		Type string `json:"type"`
	}

	if err := json.Unmarshal(e.Payload, &envelope); err == nil {
		if envelope.Header.EventType != "" {
			return envelope.Header.EventType
		}

		if envelope.Type != "" {
			return envelope.Type
		}
	}

	return string(e.Type)
}

// EventHandler processes one event. The returned bytes, if any, are sent
// back as the data of the response frame. An error is answered with code
// 500.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) ([]byte, error)
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) ([]byte, error)

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) ([]byte, error) {
	return f(ctx, event)
}
