package ws

import "encoding/json"

// Envelope is the wire format for every realtime event, both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client-initiated intent payloads.

type joinPayload struct {
	UserID string `json:"userId"`
}

type sendPayload struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

type typingPayload struct {
	ReceiverID string `json:"receiverId"`
}
