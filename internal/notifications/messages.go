package notifications

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/outbox/payloads"
)

// Pair is the two notifications every lifecycle transition produces.
type Pair struct {
	Volunteer models.VolunteerNotification
	Admin     models.AdminNotification
}

type templates struct {
	volunteer func(e payloads.EngagementTransitionEvent) string
	admin     func(e payloads.EngagementTransitionEvent) string
}

var messageTemplates = map[enums.TransitionKind]templates{
	enums.TransitionJoin: {
		volunteer: func(e payloads.EngagementTransitionEvent) string {
			return fmt.Sprintf("You have applied to join %s. Your application is pending, please wait.", e.ActivityName)
		},
		admin: func(e payloads.EngagementTransitionEvent) string {
			return fmt.Sprintf("User %s has applied to join your activity %s", e.VolunteerName, e.ActivityName)
		},
	},
	enums.TransitionAccept: {
		volunteer: func(e payloads.EngagementTransitionEvent) string {
			return fmt.Sprintf("You have been accepted to join %s.", e.ActivityName)
		},
		admin: func(e payloads.EngagementTransitionEvent) string {
			return fmt.Sprintf("You accepted %s for your activity %s.", e.VolunteerName, e.ActivityName)
		},
	},
	enums.TransitionReject: {
		volunteer: func(e payloads.EngagementTransitionEvent) string {
			return fmt.Sprintf("Your application to join %s has been rejected.", e.ActivityName)
		},
		admin: func(e payloads.EngagementTransitionEvent) string {
			return fmt.Sprintf("You rejected %s for your activity %s.", e.VolunteerName, e.ActivityName)
		},
	},
	enums.TransitionComplete: {
		volunteer: func(e payloads.EngagementTransitionEvent) string {
			return fmt.Sprintf("Your participation in %s has been marked as completed.", e.ActivityName)
		},
		admin: func(e payloads.EngagementTransitionEvent) string {
			return fmt.Sprintf("You marked %s's participation in %s as completed.", e.VolunteerName, e.ActivityName)
		},
	},
}

// Build renders the volunteer and admin notifications for a transition.
// It performs no I/O; sourceEventID ties both rows to the outbox event.
func Build(sourceEventID uuid.UUID, event payloads.EngagementTransitionEvent) (Pair, error) {
	tpl, ok := messageTemplates[event.Kind]
	if !ok {
		return Pair{}, fmt.Errorf("unsupported transition kind %q", event.Kind)
	}
	if sourceEventID == uuid.Nil {
		return Pair{}, fmt.Errorf("source event id required")
	}
	if event.VolunteerID == uuid.Nil || event.ActivityAdminID == uuid.Nil {
		return Pair{}, fmt.Errorf("transition %s missing recipients", event.Kind)
	}
	if strings.TrimSpace(event.ActivityName) == "" {
		return Pair{}, fmt.Errorf("transition %s missing activity name", event.Kind)
	}

	base := models.NotificationPayload{
		EngagementID:  event.EngagementID,
		ActivityID:    event.ActivityID,
		ActivityName:  event.ActivityName,
		Kind:          event.Kind,
		Genre:         event.Genre,
		SourceEventID: sourceEventID,
	}

	volunteer := base
	volunteer.RecipientID = event.VolunteerID
	volunteer.Message = tpl.volunteer(event)

	admin := base
	admin.RecipientID = event.ActivityAdminID
	admin.Message = tpl.admin(event)

	return Pair{
		Volunteer: models.VolunteerNotification{NotificationPayload: volunteer},
		Admin:     models.AdminNotification{NotificationPayload: admin},
	}, nil
}
