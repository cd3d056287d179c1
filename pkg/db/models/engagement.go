package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/angelmondragon/volunteerlinks-backend/pkg/db/types"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
)

// EngagementSnapshot carries the business fields copied verbatim through
// every lifecycle stage of an engagement.
type EngagementSnapshot struct {
	VolunteerID     uuid.UUID          `gorm:"column:volunteer_id;type:uuid;not null"`
	VolunteerName   string             `gorm:"column:volunteer_name;type:text;not null"`
	VolunteerEmail  string             `gorm:"column:volunteer_email;type:text;not null"`
	ActivityID      uuid.UUID          `gorm:"column:activity_id;type:uuid;not null"`
	ActivityName    string             `gorm:"column:activity_name;type:text;not null"`
	ActivityAdminID uuid.UUID          `gorm:"column:activity_admin_id;type:uuid;not null"`
	Location        string             `gorm:"column:location;type:text;not null"`
	ActivityDate    string             `gorm:"column:activity_date;type:text;not null"`
	ImageRef        *string            `gorm:"column:image_ref;type:text"`
	Interests       dbtypes.StringList `gorm:"column:interests;type:jsonb;not null"`
	Strengths       dbtypes.StringList `gorm:"column:strengths;type:jsonb;not null"`
	PriorExperience *string            `gorm:"column:prior_experience;type:text"`
	Genre           *string            `gorm:"column:genre;type:text"`
}

// Engagement is a volunteer's pending request to join an activity.
type Engagement struct {
	ID                 uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	EngagementSnapshot `gorm:"embedded"`
	State              enums.EngagementState `gorm:"column:state;type:text;not null"`
	CreatedAt          time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (Engagement) TableName() string { return "engagements" }

func (e *Engagement) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.State == "" {
		e.State = enums.EngagementStatePending
	}
	return nil
}

// CompletedEngagement is an accepted engagement awaiting completion. It keeps
// the id of the engagement it was moved from.
type CompletedEngagement struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EngagementSnapshot `gorm:"embedded"`
	RequestedAt        time.Time `gorm:"column:requested_at;not null"`
	AcceptedAt         time.Time `gorm:"column:accepted_at;not null"`
	AcceptedBy         uuid.UUID `gorm:"column:accepted_by;type:uuid;not null"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (CompletedEngagement) TableName() string { return "completed_engagements" }

// ArchivedEngagement is the terminal, read-only record of a finished engagement.
type ArchivedEngagement struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EngagementSnapshot `gorm:"embedded"`
	RequestedAt        time.Time `gorm:"column:requested_at;not null"`
	AcceptedAt         time.Time `gorm:"column:accepted_at;not null"`
	AcceptedBy         uuid.UUID `gorm:"column:accepted_by;type:uuid;not null"`
	CompletedAt        time.Time `gorm:"column:completed_at;not null"`
	CompletedBy        uuid.UUID `gorm:"column:completed_by;type:uuid;not null"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ArchivedEngagement) TableName() string { return "archived_engagements" }
