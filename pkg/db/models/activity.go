package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity is a volunteering opportunity owned by an organization admin.
type Activity struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	AdminID     uuid.UUID `gorm:"column:admin_id;type:uuid;not null;index"`
	Name        string    `gorm:"column:name;type:text;not null"`
	Location    string    `gorm:"column:location;type:text;not null"`
	Date        string    `gorm:"column:activity_date;type:text;not null"`
	Description string    `gorm:"column:description;type:text;not null"`
	ImageRef    *string   `gorm:"column:image_ref;type:text"`
	Genre       *string   `gorm:"column:genre;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Activity) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
