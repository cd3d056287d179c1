package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
)

// EngagementTransitionEvent snapshots an engagement at the moment a lifecycle
// transition committed. Notification fan-out renders from it alone.
type EngagementTransitionEvent struct {
	EngagementID    uuid.UUID            `json:"engagement_id"`
	Kind            enums.TransitionKind `json:"kind"`
	VolunteerID     uuid.UUID            `json:"volunteer_id"`
	VolunteerName   string               `json:"volunteer_name"`
	ActivityID      uuid.UUID            `json:"activity_id"`
	ActivityName    string               `json:"activity_name"`
	ActivityAdminID uuid.UUID            `json:"activity_admin_id"`
	Genre           *string              `json:"genre,omitempty"`
	ActorID         uuid.UUID            `json:"actor_id"`
	OccurredAt      time.Time            `json:"occurred_at"`
}
