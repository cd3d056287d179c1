package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
)

// Repository persists reviews and their replies.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// RatingStats is the aggregate over one activity's reviews.
type RatingStats struct {
	Average float64
	Count   int64
}

func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByActivity returns an activity's reviews in insertion order.
func (r *Repository) ListByActivity(ctx context.Context, activityID uuid.UUID) ([]models.Review, error) {
	var rows []models.Review
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) Stats(ctx context.Context, activityID uuid.UUID) (RatingStats, error) {
	var stats RatingStats
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(CAST(AVG(rating) AS DOUBLE PRECISION), 0) AS average, COUNT(*) AS count").
		Where("activity_id = ?", activityID).
		Scan(&stats).Error
	return stats, err
}

func (r *Repository) CreateReply(ctx context.Context, reply *models.ReviewReply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}

// ListReplies returns a review's replies in insertion order.
func (r *Repository) ListReplies(ctx context.Context, reviewID uuid.UUID) ([]models.ReviewReply, error) {
	var rows []models.ReviewReply
	err := r.db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}
