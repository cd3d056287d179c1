package registry

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/outbox"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its aggregate, transition and payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Transition     enums.TransitionKind
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	EventID    uuid.UUID
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// Transition returns the engagement snapshot carried by the event.
func (r *ResolvedEvent) Transition() (*payloads.EngagementTransitionEvent, bool) {
	if r == nil {
		return nil, false
	}
	event, ok := r.Payload.(*payloads.EngagementTransitionEvent)
	return event, ok
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

// Error implements error.
func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped error.
func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewEventRegistry builds the registry of engagement lifecycle events.
func NewEventRegistry() *EventRegistry {
	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}
	transitionPayload := func() interface{} { return &payloads.EngagementTransitionEvent{} }

	for _, desc := range []EventDescriptor{
		{EventType: enums.EventEngagementRequested, Transition: enums.TransitionJoin},
		{EventType: enums.EventEngagementAccepted, Transition: enums.TransitionAccept},
		{EventType: enums.EventEngagementRejected, Transition: enums.TransitionReject},
		{EventType: enums.EventEngagementCompleted, Transition: enums.TransitionComplete},
	} {
		desc.AggregateType = enums.AggregateEngagement
		desc.PayloadFactory = transitionPayload
		reg.register(desc)
	}
	return reg
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	envelope, err := outbox.DecodeEnvelope(event.Payload, event.ID)
	if err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("%s: %w", event.EventType, err))
	}

	payload := desc.PayloadFactory()
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	if transition, ok := payload.(*payloads.EngagementTransitionEvent); ok {
		if transition.Kind != desc.Transition {
			return nil, NewNonRetryableError(fmt.Errorf("payload kind %q does not match %s", transition.Kind, event.EventType))
		}
		if transition.EngagementID != event.AggregateID {
			return nil, NewNonRetryableError(fmt.Errorf("payload engagement %s does not match aggregate %s", transition.EngagementID, event.AggregateID))
		}
	}

	return &ResolvedEvent{
		EventID:    event.ID,
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}
