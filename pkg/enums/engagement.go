package enums

import (
	"fmt"
	"strings"
)

// EngagementState maps to the engagement_state column of engagements.
type EngagementState string

const (
	EngagementStatePending  EngagementState = "pending"
	EngagementStateAccepted EngagementState = "accepted"
	EngagementStateRejected EngagementState = "rejected"
)

var validEngagementStates = []EngagementState{
	EngagementStatePending,
	EngagementStateAccepted,
	EngagementStateRejected,
}

// IsValid reports whether the value is a known engagement state.
func (s EngagementState) IsValid() bool {
	for _, candidate := range validEngagementStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// EngagementDecision is the verdict an admin issues on a pending engagement.
type EngagementDecision string

const (
	EngagementDecisionAccept EngagementDecision = "accept"
	EngagementDecisionReject EngagementDecision = "reject"
)

// ParseEngagementDecision normalizes raw input into an EngagementDecision.
func ParseEngagementDecision(value string) (EngagementDecision, error) {
	switch EngagementDecision(strings.ToLower(strings.TrimSpace(value))) {
	case EngagementDecisionAccept:
		return EngagementDecisionAccept, nil
	case EngagementDecisionReject:
		return EngagementDecisionReject, nil
	default:
		return "", fmt.Errorf("invalid engagement decision %q", value)
	}
}

// TransitionKind names a lifecycle transition that triggers fan-out.
type TransitionKind string

const (
	TransitionJoin     TransitionKind = "join"
	TransitionAccept   TransitionKind = "accept"
	TransitionReject   TransitionKind = "reject"
	TransitionComplete TransitionKind = "complete"
)

var validTransitionKinds = []TransitionKind{
	TransitionJoin,
	TransitionAccept,
	TransitionReject,
	TransitionComplete,
}

func (k TransitionKind) IsValid() bool {
	for _, candidate := range validTransitionKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseTransitionKind converts raw input into TransitionKind.
func ParseTransitionKind(value string) (TransitionKind, error) {
	for _, candidate := range validTransitionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transition kind %q", value)
}
