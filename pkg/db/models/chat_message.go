package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatMessage is one entry in an activity's discussion thread. A message
// with a recipient belongs to the private conversation between a volunteer
// and the activity admin.
type ChatMessage struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ActivityID  uuid.UUID  `gorm:"column:activity_id;type:uuid;not null;index"`
	SenderID    uuid.UUID  `gorm:"column:sender_id;type:uuid;not null"`
	RecipientID *uuid.UUID `gorm:"column:recipient_id;type:uuid"`
	SenderName  string     `gorm:"column:sender_name;type:text;not null"`
	Body        string     `gorm:"column:body;type:text;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (m *ChatMessage) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
