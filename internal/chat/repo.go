package chat

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
)

// Repository persists activity threads.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListByActivity returns the activity-wide thread oldest first. Private
// conversation messages are excluded.
func (r *Repository) ListByActivity(ctx context.Context, activityID uuid.UUID) ([]models.ChatMessage, error) {
	var rows []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("activity_id = ? AND recipient_id IS NULL", activityID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// ListConversation returns the messages exchanged between two users on an
// activity, oldest first.
func (r *Repository) ListConversation(ctx context.Context, activityID, userA, userB uuid.UUID) ([]models.ChatMessage, error) {
	var rows []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Where(r.db.Where("sender_id = ? AND recipient_id = ?", userA, userB).
			Or("sender_id = ? AND recipient_id = ?", userB, userA)).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}
