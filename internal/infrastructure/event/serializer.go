package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shopfront/backend/internal/domain/shared"
)

// EnvelopeVersion is bumped on incompatible envelope changes
const EnvelopeVersion = 1

// Envelope is the broker representation of a domain event. Payload is the
// event's own JSON encoding.
type Envelope struct {
	Version       int             `json:"version"`
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// Encode wraps ev in an Envelope and marshals it
func Encode(ev shared.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", ev.EventType(), err)
	}
	return json.Marshal(Envelope{
		Version:       EnvelopeVersion,
		ID:            ev.EventID(),
		Type:          ev.EventType(),
		AggregateID:   ev.AggregateID(),
		AggregateType: ev.AggregateType(),
		OccurredAt:    ev.OccurredAt().UTC(),
		Payload:       payload,
	})
}

// Decode parses an envelope produced by Encode
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	if env.Version != EnvelopeVersion {
		return Envelope{}, fmt.Errorf("unsupported envelope version %d", env.Version)
	}
	if env.Type == "" || env.ID == uuid.Nil {
		return Envelope{}, fmt.Errorf("envelope is missing id or type")
	}
	return env, nil
}
