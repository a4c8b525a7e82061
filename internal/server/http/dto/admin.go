package dto

import "encoding/json"

// BroadcastRequest pushes an event to every connection.
type BroadcastRequest struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// SendRequest pushes an event into one room.
type SendRequest struct {
	Room    string          `json:"room"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// DeliveredResponse reports whether at least one connection received the event.
type DeliveredResponse struct {
	Delivered bool `json:"delivered"`
}
