package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a volunteer's rating and write-up of an activity.
type Review struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ActivityID uuid.UUID `gorm:"column:activity_id;type:uuid;not null;index"`
	AuthorID   uuid.UUID `gorm:"column:author_id;type:uuid;not null"`
	AuthorName string    `gorm:"column:author_name;type:text;not null"`
	Rating     int       `gorm:"column:rating;not null"`
	Body       string    `gorm:"column:body;type:text;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ReviewReply is the activity admin's answer to a review.
type ReviewReply struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ReviewID   uuid.UUID `gorm:"column:review_id;type:uuid;not null;index"`
	AuthorID   uuid.UUID `gorm:"column:author_id;type:uuid;not null"`
	AuthorName string    `gorm:"column:author_name;type:text;not null"`
	Body       string    `gorm:"column:body;type:text;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (r *ReviewReply) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
