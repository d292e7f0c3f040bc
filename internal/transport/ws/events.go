package ws

import (
	"encoding/json"
	"time"

	"github.com/deeecaaa/cardmarket/internal/domain"
)

// Event types - Server → Client
const (
	EventTypeCardCreated  = "card.created"
	EventTypeCardListed   = "card.listed"
	EventTypeCardDelisted = "card.delisted"
	EventTypeCardSold     = "card.sold"
	EventTypeCardPrice    = "card.price"
	EventTypePong         = "pong"
)

// Event types - Client → Server
const (
	EventTypePing = "ping"
)

// Event is the envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// CardPayload carries the card snapshot after a lifecycle transition. For
// card.sold the owner field is already the buyer.
type CardPayload struct {
	domain.Card
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
