package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
)

// NotificationPayload is the content every audience receives for a transition.
type NotificationPayload struct {
	RecipientID   uuid.UUID            `gorm:"column:recipient_id;type:uuid;not null"`
	EngagementID  uuid.UUID            `gorm:"column:engagement_id;type:uuid;not null"`
	ActivityID    uuid.UUID            `gorm:"column:activity_id;type:uuid;not null"`
	ActivityName  string               `gorm:"column:activity_name;type:text;not null"`
	Kind          enums.TransitionKind `gorm:"column:kind;type:text;not null"`
	Message       string               `gorm:"column:message;type:text;not null"`
	Genre         *string              `gorm:"column:genre;type:text"`
	SourceEventID uuid.UUID            `gorm:"column:source_event_id;type:uuid;not null"`
}

// VolunteerNotification lands in the volunteer-facing collection.
type VolunteerNotification struct {
	ID                  uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	NotificationPayload `gorm:"embedded"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (VolunteerNotification) TableName() string { return "volunteer_notifications" }

func (n *VolunteerNotification) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// AdminNotification lands in the admin-facing collection.
type AdminNotification struct {
	ID                  uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	NotificationPayload `gorm:"embedded"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AdminNotification) TableName() string { return "admin_notifications" }

func (n *AdminNotification) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
