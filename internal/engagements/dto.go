package engagements

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/volunteerlinks-backend/internal/notifications"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
)

// JoinInput is a volunteer's request to join an activity. Name and email are
// used only when the identity store has no value for them. Empty profile
// fields fall back to the volunteer's stored profile.
type JoinInput struct {
	VolunteerID     uuid.UUID
	ActivityID      uuid.UUID
	VolunteerName   string
	VolunteerEmail  string
	Interests       []string
	Strengths       []string
	PriorExperience *string
	Genre           *string
}

// DecisionInput is an admin's accept or reject for a pending engagement.
type DecisionInput struct {
	ActorID      uuid.UUID
	EngagementID uuid.UUID
	Decision     enums.EngagementDecision
}

// CompletionInput marks an accepted engagement as finished.
type CompletionInput struct {
	ActorID     uuid.UUID
	CompletedID uuid.UUID
}

// JoinResult is returned once a join request commits.
type JoinResult struct {
	EngagementID string                `json:"engagement_id"`
	State        enums.EngagementState `json:"state"`
	Fanout       notifications.Report  `json:"fanout"`
}

// DecisionResult is returned once a decision commits. CompletedID is set on accept.
type DecisionResult struct {
	EngagementID string                   `json:"engagement_id"`
	Decision     enums.EngagementDecision `json:"decision"`
	CompletedID  *string                  `json:"completed_id,omitempty"`
	Fanout       notifications.Report     `json:"fanout"`
}

// CompletionResult is returned once an engagement is archived.
type CompletionResult struct {
	ArchivedID string               `json:"archived_id"`
	Fanout     notifications.Report `json:"fanout"`
}

// SnapshotDTO carries the business fields shared by every engagement view.
type SnapshotDTO struct {
	VolunteerID     string   `json:"volunteer_id"`
	VolunteerName   string   `json:"volunteer_name"`
	VolunteerEmail  string   `json:"volunteer_email"`
	ActivityID      string   `json:"activity_id"`
	ActivityName    string   `json:"activity_name"`
	ActivityAdminID string   `json:"activity_admin_id"`
	Location        string   `json:"location"`
	Date            string   `json:"date"`
	ImageRef        *string  `json:"image_ref,omitempty"`
	Interests       []string `json:"interests"`
	Strengths       []string `json:"strengths"`
	PriorExperience *string  `json:"prior_experience,omitempty"`
	Genre           *string  `json:"genre,omitempty"`
}

// PendingDTO is a pending engagement.
type PendingDTO struct {
	ID string `json:"id"`
	SnapshotDTO
	State     enums.EngagementState `json:"state"`
	CreatedAt time.Time             `json:"created_at"`
}

// CompletedDTO is an accepted engagement awaiting completion.
type CompletedDTO struct {
	ID string `json:"id"`
	SnapshotDTO
	RequestedAt time.Time `json:"requested_at"`
	AcceptedAt  time.Time `json:"accepted_at"`
	AcceptedBy  string    `json:"accepted_by"`
}

// ArchivedDTO is a finished engagement.
type ArchivedDTO struct {
	ID string `json:"id"`
	SnapshotDTO
	RequestedAt time.Time `json:"requested_at"`
	AcceptedAt  time.Time `json:"accepted_at"`
	CompletedAt time.Time `json:"completed_at"`
	CompletedBy string    `json:"completed_by"`
}

func snapshotDTO(s models.EngagementSnapshot) SnapshotDTO {
	return SnapshotDTO{
		VolunteerID:     s.VolunteerID.String(),
		VolunteerName:   s.VolunteerName,
		VolunteerEmail:  s.VolunteerEmail,
		ActivityID:      s.ActivityID.String(),
		ActivityName:    s.ActivityName,
		ActivityAdminID: s.ActivityAdminID.String(),
		Location:        s.Location,
		Date:            s.ActivityDate,
		ImageRef:        s.ImageRef,
		Interests:       append([]string{}, s.Interests...),
		Strengths:       append([]string{}, s.Strengths...),
		PriorExperience: s.PriorExperience,
		Genre:           s.Genre,
	}
}

func newPendingDTO(e models.Engagement) PendingDTO {
	return PendingDTO{
		ID:          e.ID.String(),
		SnapshotDTO: snapshotDTO(e.EngagementSnapshot),
		State:       e.State,
		CreatedAt:   e.CreatedAt,
	}
}

func newCompletedDTO(c models.CompletedEngagement) CompletedDTO {
	return CompletedDTO{
		ID:          c.ID.String(),
		SnapshotDTO: snapshotDTO(c.EngagementSnapshot),
		RequestedAt: c.RequestedAt,
		AcceptedAt:  c.AcceptedAt,
		AcceptedBy:  c.AcceptedBy.String(),
	}
}

func newArchivedDTO(a models.ArchivedEngagement) ArchivedDTO {
	return ArchivedDTO{
		ID:          a.ID.String(),
		SnapshotDTO: snapshotDTO(a.EngagementSnapshot),
		RequestedAt: a.RequestedAt,
		AcceptedAt:  a.AcceptedAt,
		CompletedAt: a.CompletedAt,
		CompletedBy: a.CompletedBy.String(),
	}
}
