package activities

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/volunteerlinks-backend/pkg/errors"
)

// Service exposes the activity catalog.
type Service interface {
	Create(ctx context.Context, adminID uuid.UUID, input CreateActivityInput) (*ActivityDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ActivityDTO, error)
	List(ctx context.Context, adminID *uuid.UUID) ([]ActivityDTO, error)
	Update(ctx context.Context, adminID, id uuid.UUID, input UpdateActivityInput) (*ActivityDTO, error)
	Delete(ctx context.Context, adminID, id uuid.UUID) error
	GetActivity(ctx context.Context, id uuid.UUID) (*models.Activity, error)
}

type repository interface {
	Create(ctx context.Context, activity *models.Activity) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
	List(ctx context.Context, adminID *uuid.UUID) ([]models.Activity, error)
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo repository
}

// NewService wires the catalog dependencies.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activities repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, adminID uuid.UUID, input CreateActivityInput) (*ActivityDTO, error) {
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "admin id required")
	}
	activity := &models.Activity{
		AdminID:     adminID,
		Name:        strings.TrimSpace(input.Name),
		Location:    strings.TrimSpace(input.Location),
		Date:        strings.TrimSpace(input.Date),
		Description: strings.TrimSpace(input.Description),
		ImageRef:    trimmedPtr(input.ImageRef),
		Genre:       trimmedPtr(input.Genre),
	}
	if err := validateActivity(activity); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create activity")
	}
	return NewActivityDTO(activity), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ActivityDTO, error) {
	activity, err := s.GetActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewActivityDTO(activity), nil
}

// GetActivity resolves a catalog entry for the lifecycle manager.
func (s *service) GetActivity(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "activity id required")
	}
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "activity not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load activity")
	}
	return activity, nil
}

func (s *service) List(ctx context.Context, adminID *uuid.UUID) ([]ActivityDTO, error) {
	rows, err := s.repo.List(ctx, adminID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activities")
	}
	items := make([]ActivityDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *NewActivityDTO(&rows[i]))
	}
	return items, nil
}

func (s *service) Update(ctx context.Context, adminID, id uuid.UUID, input UpdateActivityInput) (*ActivityDTO, error) {
	activity, err := s.loadOwned(ctx, adminID, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(activity, input)
	if err := validateActivity(activity); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, activity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update activity")
	}
	return NewActivityDTO(activity), nil
}

func (s *service) Delete(ctx context.Context, adminID, id uuid.UUID) error {
	if _, err := s.loadOwned(ctx, adminID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete activity")
	}
	return nil
}

func (s *service) loadOwned(ctx context.Context, adminID, id uuid.UUID) (*models.Activity, error) {
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "admin id required")
	}
	activity, err := s.GetActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	if activity.AdminID != adminID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "activity belongs to another admin")
	}
	return activity, nil
}

func applyUpdate(activity *models.Activity, input UpdateActivityInput) {
	if input.Name != nil {
		activity.Name = strings.TrimSpace(*input.Name)
	}
	if input.Location != nil {
		activity.Location = strings.TrimSpace(*input.Location)
	}
	if input.Date != nil {
		activity.Date = strings.TrimSpace(*input.Date)
	}
	if input.Description != nil {
		activity.Description = strings.TrimSpace(*input.Description)
	}
	if input.ImageRef.Valid {
		activity.ImageRef = input.ImageRef.Trimmed()
	}
	if input.Genre.Valid {
		activity.Genre = input.Genre.Trimmed()
	}
}

func validateActivity(activity *models.Activity) error {
	missing := []string{}
	if activity.Name == "" {
		missing = append(missing, "name")
	}
	if activity.Location == "" {
		missing = append(missing, "location")
	}
	if activity.Date == "" {
		missing = append(missing, "date")
	}
	if activity.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").
			WithDetails(map[string]any{"fields": missing})
	}
	return nil
}
