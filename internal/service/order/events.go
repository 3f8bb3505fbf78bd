package order

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope wraps an order event for the message bus. The payload mirrors the
// in-process broadcast event so bus consumers and connected dashboards see the
// same shape.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope stamps a payload with identity and provenance.
func NewEnvelope(eventType, producer string, payload json.RawMessage) Envelope {
	return Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Producer:   producer,
		Payload:    payload,
	}
}
