package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/angelmondragon/volunteerlinks-backend/pkg/db/types"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
)

// User represents the canonical identity entity. The profile columns are
// only filled for volunteers.
type User struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name            string             `gorm:"column:name;type:text;not null"`
	Email           string             `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash    string             `gorm:"column:password_hash;not null"`
	Role            enums.UserRole     `gorm:"column:role;type:text;not null"`
	Interests       dbtypes.StringList `gorm:"column:interests;type:jsonb;not null"`
	Strengths       dbtypes.StringList `gorm:"column:strengths;type:jsonb;not null"`
	PriorExperience *string            `gorm:"column:prior_experience;type:text"`
	LastLoginAt     *time.Time         `gorm:"column:last_login_at"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
