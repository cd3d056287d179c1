package activities

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
)

// Repository persists catalog entries.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to a database handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	var activity models.Activity
	if err := r.db.WithContext(ctx).First(&activity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

// List returns activities in insertion order, optionally scoped to one admin.
func (r *Repository) List(ctx context.Context, adminID *uuid.UUID) ([]models.Activity, error) {
	query := r.db.WithContext(ctx).Model(&models.Activity{})
	if adminID != nil {
		query = query.Where("admin_id = ?", *adminID)
	}
	var rows []models.Activity
	if err := query.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Update(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Save(activity).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Activity{}, "id = ?", id).Error
}
