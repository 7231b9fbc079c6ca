package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LiveEventType represents the type of a live update
type LiveEventType string

const (
	LiveEventMessageCreated  LiveEventType = "message.created"
	LiveEventMessageRead     LiveEventType = "message.read"
	LiveEventBookingCreated  LiveEventType = "booking.created"
	LiveEventBookingUpdated  LiveEventType = "booking.updated"
	LiveEventMechanicUpdated LiveEventType = "mechanic.updated"
)

// LiveEvent is the envelope published on the event bus.
// Payload holds the JSON encoding of the record the event is about.
type LiveEvent struct {
	ID        string          `json:"id"`
	Type      LiveEventType   `json:"type"`
	SubjectID string          `json:"subject_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewLiveEvent wraps payload in an event envelope
func NewLiveEvent(eventType LiveEventType, subjectID string, payload interface{}) (*LiveEvent, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	return &LiveEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}, nil
}

// Decode unmarshals the payload into v
func (e *LiveEvent) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}
