package reviews

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/volunteerlinks-backend/pkg/errors"
)

type repository interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ListByActivity(ctx context.Context, activityID uuid.UUID) ([]models.Review, error)
	Stats(ctx context.Context, activityID uuid.UUID) (RatingStats, error)
	CreateReply(ctx context.Context, reply *models.ReviewReply) error
	ListReplies(ctx context.Context, reviewID uuid.UUID) ([]models.ReviewReply, error)
}

type activityCatalog interface {
	GetActivity(ctx context.Context, id uuid.UUID) (*models.Activity, error)
}

// Service collects activity reviews and the admin replies to them.
type Service interface {
	Create(ctx context.Context, input CreateReviewInput) (*ReviewDTO, error)
	List(ctx context.Context, activityID uuid.UUID) ([]ReviewDTO, error)
	Average(ctx context.Context, activityID uuid.UUID) (*AverageDTO, error)
	Reply(ctx context.Context, input ReplyInput) (*ReplyDTO, error)
	Replies(ctx context.Context, reviewID uuid.UUID) ([]ReplyDTO, error)
}

type service struct {
	repo     repository
	catalog  activityCatalog
	validate *validator.Validate
}

func NewService(repo repository, catalog activityCatalog) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "reviews repository required")
	}
	if catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activity catalog required")
	}
	return &service{repo: repo, catalog: catalog, validate: validator.New()}, nil
}

func (s *service) Create(ctx context.Context, input CreateReviewInput) (*ReviewDTO, error) {
	if input.ActivityID == uuid.Nil || input.AuthorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "activity and author ids required")
	}
	input.Text = strings.TrimSpace(input.Text)
	input.AuthorName = strings.TrimSpace(input.AuthorName)
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "review needs text and a rating from 1 to 5")
	}
	if input.AuthorName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "author name required")
	}
	if _, err := s.catalog.GetActivity(ctx, input.ActivityID); err != nil {
		return nil, err
	}

	review := &models.Review{
		ActivityID: input.ActivityID,
		AuthorID:   input.AuthorID,
		AuthorName: input.AuthorName,
		Rating:     input.Rating,
		Body:       input.Text,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store review")
	}
	return NewReviewDTO(review), nil
}

func (s *service) List(ctx context.Context, activityID uuid.UUID) ([]ReviewDTO, error) {
	if activityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "activity id required")
	}
	rows, err := s.repo.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reviews")
	}
	out := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewReviewDTO(&rows[i]))
	}
	return out, nil
}

// Average rounds to two decimals.
func (s *service) Average(ctx context.Context, activityID uuid.UUID) (*AverageDTO, error) {
	if activityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "activity id required")
	}
	stats, err := s.repo.Stats(ctx, activityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate ratings")
	}
	return &AverageDTO{
		ActivityID:    activityID.String(),
		AverageRating: math.Round(stats.Average*100) / 100,
		ReviewCount:   stats.Count,
	}, nil
}

// Reply is reserved for the admin who owns the reviewed activity.
func (s *service) Reply(ctx context.Context, input ReplyInput) (*ReplyDTO, error) {
	if input.ReviewID == uuid.Nil || input.AuthorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "review and author ids required")
	}
	input.Text = strings.TrimSpace(input.Text)
	input.AuthorName = strings.TrimSpace(input.AuthorName)
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reply text required")
	}
	if input.AuthorName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "author name required")
	}

	review, err := s.loadReview(ctx, input.ReviewID)
	if err != nil {
		return nil, err
	}
	activity, err := s.catalog.GetActivity(ctx, review.ActivityID)
	if err != nil {
		return nil, err
	}
	if activity.AdminID != input.AuthorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the activity admin can reply")
	}

	reply := &models.ReviewReply{
		ReviewID:   review.ID,
		AuthorID:   input.AuthorID,
		AuthorName: input.AuthorName,
		Body:       input.Text,
	}
	if err := s.repo.CreateReply(ctx, reply); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store reply")
	}
	return NewReplyDTO(reply), nil
}

func (s *service) Replies(ctx context.Context, reviewID uuid.UUID) ([]ReplyDTO, error) {
	if reviewID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "review id required")
	}
	if _, err := s.loadReview(ctx, reviewID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListReplies(ctx, reviewID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load replies")
	}
	out := make([]ReplyDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewReplyDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) loadReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	return review, nil
}
