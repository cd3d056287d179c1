package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
)

// CreateReviewInput is a volunteer's rating of an activity.
type CreateReviewInput struct {
	ActivityID uuid.UUID `json:"-"`
	AuthorID   uuid.UUID `json:"-"`
	AuthorName string    `json:"-"`
	Rating     int       `json:"rating" validate:"required,min=1,max=5"`
	Text       string    `json:"text" validate:"required,max=4000"`
}

// ReplyInput is the activity admin's answer to a review.
type ReplyInput struct {
	ReviewID   uuid.UUID `json:"-"`
	AuthorID   uuid.UUID `json:"-"`
	AuthorName string    `json:"-"`
	Text       string    `json:"text" validate:"required,max=4000"`
}

type ReviewDTO struct {
	ID         string    `json:"id"`
	ActivityID string    `json:"activity_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReplyDTO struct {
	ID         string    `json:"id"`
	ReviewID   string    `json:"review_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// AverageDTO summarizes the ratings of one activity. An activity without
// reviews averages 0.
type AverageDTO struct {
	ActivityID    string  `json:"activity_id"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

func NewReviewDTO(r *models.Review) *ReviewDTO {
	if r == nil {
		return nil
	}
	return &ReviewDTO{
		ID:         r.ID.String(),
		ActivityID: r.ActivityID.String(),
		AuthorID:   r.AuthorID.String(),
		AuthorName: r.AuthorName,
		Rating:     r.Rating,
		Text:       r.Body,
		CreatedAt:  r.CreatedAt,
	}
}

func NewReplyDTO(r *models.ReviewReply) *ReplyDTO {
	if r == nil {
		return nil
	}
	return &ReplyDTO{
		ID:         r.ID.String(),
		ReviewID:   r.ReviewID.String(),
		AuthorID:   r.AuthorID.String(),
		AuthorName: r.AuthorName,
		Text:       r.Body,
		CreatedAt:  r.CreatedAt,
	}
}
