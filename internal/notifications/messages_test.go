package notifications

import (
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/outbox/payloads"
)

func sampleEvent(kind enums.TransitionKind) payloads.EngagementTransitionEvent {
	genre := "environment"
	return payloads.EngagementTransitionEvent{
		EngagementID:    uuid.New(),
		Kind:            kind,
		VolunteerID:     uuid.New(),
		VolunteerName:   "alice",
		ActivityID:      uuid.New(),
		ActivityName:    "Beach Cleanup",
		ActivityAdminID: uuid.New(),
		Genre:           &genre,
	}
}

func TestBuildRendersBothAudiences(t *testing.T) {
	cases := []struct {
		kind      enums.TransitionKind
		volunteer string
		admin     string
	}{
		{
			kind:      enums.TransitionJoin,
			volunteer: "You have applied to join Beach Cleanup. Your application is pending, please wait.",
			admin:     "User alice has applied to join your activity Beach Cleanup",
		},
		{
			kind:      enums.TransitionAccept,
			volunteer: "You have been accepted to join Beach Cleanup.",
			admin:     "You accepted alice for your activity Beach Cleanup.",
		},
		{
			kind:      enums.TransitionReject,
			volunteer: "Your application to join Beach Cleanup has been rejected.",
			admin:     "You rejected alice for your activity Beach Cleanup.",
		},
		{
			kind:      enums.TransitionComplete,
			volunteer: "Your participation in Beach Cleanup has been marked as completed.",
			admin:     "You marked alice's participation in Beach Cleanup as completed.",
		},
	}

	for _, tc := range cases {
		event := sampleEvent(tc.kind)
		eventID := uuid.New()

		pair, err := Build(eventID, event)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.kind, err)
		}
		if pair.Volunteer.Message != tc.volunteer {
			t.Fatalf("%s: volunteer message %q", tc.kind, pair.Volunteer.Message)
		}
		if pair.Admin.Message != tc.admin {
			t.Fatalf("%s: admin message %q", tc.kind, pair.Admin.Message)
		}
		if pair.Volunteer.RecipientID != event.VolunteerID {
			t.Fatalf("%s: volunteer recipient mismatch", tc.kind)
		}
		if pair.Admin.RecipientID != event.ActivityAdminID {
			t.Fatalf("%s: admin recipient mismatch", tc.kind)
		}
		if pair.Volunteer.ActivityID != event.ActivityID || pair.Admin.ActivityID != event.ActivityID {
			t.Fatalf("%s: activity id mismatch", tc.kind)
		}
		if pair.Volunteer.SourceEventID != eventID || pair.Admin.SourceEventID != eventID {
			t.Fatalf("%s: source event mismatch", tc.kind)
		}
		if pair.Volunteer.Kind != tc.kind || pair.Admin.Kind != tc.kind {
			t.Fatalf("%s: kind mismatch", tc.kind)
		}
		if pair.Admin.Genre == nil || *pair.Admin.Genre != "environment" {
			t.Fatalf("%s: genre echo missing", tc.kind)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	event := sampleEvent(enums.TransitionAccept)
	eventID := uuid.New()
	first, err := Build(eventID, event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Build(eventID, event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Volunteer.NotificationPayload != second.Volunteer.NotificationPayload {
		t.Fatal("expected identical volunteer payloads")
	}
	if first.Admin.NotificationPayload != second.Admin.NotificationPayload {
		t.Fatal("expected identical admin payloads")
	}
}

func TestBuildRejectsIncompleteEvents(t *testing.T) {
	if _, err := Build(uuid.New(), sampleEvent("archive")); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if _, err := Build(uuid.Nil, sampleEvent(enums.TransitionJoin)); err == nil {
		t.Fatal("expected error for missing event id")
	}

	missingAdmin := sampleEvent(enums.TransitionJoin)
	missingAdmin.ActivityAdminID = uuid.Nil
	if _, err := Build(uuid.New(), missingAdmin); err == nil {
		t.Fatal("expected error for missing admin recipient")
	}

	missingName := sampleEvent(enums.TransitionJoin)
	missingName.ActivityName = " "
	if _, err := Build(uuid.New(), missingName); err == nil {
		t.Fatal("expected error for missing activity name")
	}
}
