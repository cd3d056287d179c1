package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column of outbox_events.
type OutboxAggregateType string

const (
	AggregateEngagement OutboxAggregateType = "engagement"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateEngagement,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column of outbox_events.
type OutboxEventType string

const (
	EventEngagementRequested OutboxEventType = "engagement_requested"
	EventEngagementAccepted  OutboxEventType = "engagement_accepted"
	EventEngagementRejected  OutboxEventType = "engagement_rejected"
	EventEngagementCompleted OutboxEventType = "engagement_completed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventEngagementRequested,
	EventEngagementAccepted,
	EventEngagementRejected,
	EventEngagementCompleted,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// EventTypeForTransition returns the outbox event emitted by a transition.
func EventTypeForTransition(kind TransitionKind) (OutboxEventType, error) {
	switch kind {
	case TransitionJoin:
		return EventEngagementRequested, nil
	case TransitionAccept:
		return EventEngagementAccepted, nil
	case TransitionReject:
		return EventEngagementRejected, nil
	case TransitionComplete:
		return EventEngagementCompleted, nil
	default:
		return "", fmt.Errorf("no event for transition %q", kind)
	}
}
