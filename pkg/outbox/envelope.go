package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/atacado-backend/pkg/enums"
)

// ActorRef names the caller whose request produced the event. System jobs
// emit without one.
type ActorRef struct {
	UserID  uuid.UUID `json:"user_id"`
	OrgID   uuid.UUID `json:"org_id"`
	OrgType string    `json:"org_type,omitempty"`
}

// DomainEvent is what services hand to Emit. Data is any payload registered
// for EventType at Version.
type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Actor         *ActorRef
	Data          any
	Version       int
	OccurredAt    time.Time
}

func (e DomainEvent) validate() error {
	switch {
	case e.EventType == "":
		return errors.New("event type is required")
	case e.AggregateType == "":
		return fmt.Errorf("%s: aggregate type is required", e.EventType)
	case e.AggregateID == uuid.Nil:
		return fmt.Errorf("%s: aggregate id is required", e.EventType)
	case e.Data == nil:
		return fmt.Errorf("%s: data is required", e.EventType)
	}
	return nil
}

// PayloadEnvelope is the JSON document stored in outbox_events.payload and
// relayed verbatim to consumers.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// newEnvelope wraps e with a time-ordered event id so consumers can sort
// deliveries without reading the payload.
func newEnvelope(e DomainEvent) (PayloadEnvelope, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return PayloadEnvelope{}, fmt.Errorf("%s: encode data: %w", e.EventType, err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return PayloadEnvelope{}, fmt.Errorf("%s: event id: %w", e.EventType, err)
	}
	return PayloadEnvelope{
		Version:    e.Version,
		EventID:    id.String(),
		EventType:  string(e.EventType),
		OccurredAt: e.OccurredAt,
		Actor:      e.Actor,
		Data:       data,
	}, nil
}
