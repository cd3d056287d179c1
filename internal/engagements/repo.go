package engagements

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
)

// Repository persists engagements across their three collections.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePending(ctx context.Context, engagement *models.Engagement) error
	FindPending(ctx context.Context, id uuid.UUID) (*models.Engagement, error)
	FindCompleted(ctx context.Context, id uuid.UUID) (*models.CompletedEngagement, error)
	HasPending(ctx context.Context, volunteerID, activityID uuid.UUID) (bool, error)
	HasLive(ctx context.Context, volunteerID, activityID uuid.UUID) (bool, error)
	InsertCompleted(ctx context.Context, row *models.CompletedEngagement) (bool, error)
	InsertArchived(ctx context.Context, row *models.ArchivedEngagement) (bool, error)
	DeletePending(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteCompleted(ctx context.Context, id uuid.UUID) (int64, error)
	ListPendingByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]models.Engagement, error)
	ListPendingByAdmin(ctx context.Context, adminID uuid.UUID, activityID *uuid.UUID) ([]models.Engagement, error)
	ListCompletedByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]models.CompletedEngagement, error)
	ListCompletedByAdmin(ctx context.Context, adminID uuid.UUID) ([]models.CompletedEngagement, error)
	ListArchivedByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]models.ArchivedEngagement, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an engagements repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreatePending(ctx context.Context, engagement *models.Engagement) error {
	engagement.State = enums.EngagementStatePending
	return r.db.WithContext(ctx).Create(engagement).Error
}

func (r *repositoryImpl) FindPending(ctx context.Context, id uuid.UUID) (*models.Engagement, error) {
	var row models.Engagement
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND state = ?", id, enums.EngagementStatePending).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) FindCompleted(ctx context.Context, id uuid.UUID) (*models.CompletedEngagement, error) {
	var row models.CompletedEngagement
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) HasPending(ctx context.Context, volunteerID, activityID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Engagement{}).
		Where("volunteer_id = ? AND activity_id = ? AND state = ?", volunteerID, activityID, enums.EngagementStatePending).
		Count(&count).Error
	return count > 0, err
}

// HasLive reports a pending or accepted engagement for the pair.
func (r *repositoryImpl) HasLive(ctx context.Context, volunteerID, activityID uuid.UUID) (bool, error) {
	pending, err := r.HasPending(ctx, volunteerID, activityID)
	if err != nil || pending {
		return pending, err
	}
	var count int64
	err = r.db.WithContext(ctx).Model(&models.CompletedEngagement{}).
		Where("volunteer_id = ? AND activity_id = ?", volunteerID, activityID).
		Count(&count).Error
	return count > 0, err
}

// InsertCompleted keeps the source id; a row already present under it wins.
func (r *repositoryImpl) InsertCompleted(ctx context.Context, row *models.CompletedEngagement) (bool, error) {
	return r.insertKeepingID(ctx, row)
}

// InsertArchived keeps the source id; a row already present under it wins.
func (r *repositoryImpl) InsertArchived(ctx context.Context, row *models.ArchivedEngagement) (bool, error) {
	return r.insertKeepingID(ctx, row)
}

func (r *repositoryImpl) insertKeepingID(ctx context.Context, row any) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeletePending removes the row only while it is still pending.
func (r *repositoryImpl) DeletePending(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND state = ?", id, enums.EngagementStatePending).
		Delete(&models.Engagement{})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) DeleteCompleted(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.CompletedEngagement{})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) ListPendingByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]models.Engagement, error) {
	var rows []models.Engagement
	err := r.db.WithContext(ctx).
		Where("volunteer_id = ? AND state = ?", volunteerID, enums.EngagementStatePending).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) ListPendingByAdmin(ctx context.Context, adminID uuid.UUID, activityID *uuid.UUID) ([]models.Engagement, error) {
	query := r.db.WithContext(ctx).
		Where("activity_admin_id = ? AND state = ?", adminID, enums.EngagementStatePending)
	if activityID != nil {
		query = query.Where("activity_id = ?", *activityID)
	}
	var rows []models.Engagement
	err := query.Order("created_at ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) ListCompletedByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]models.CompletedEngagement, error) {
	var rows []models.CompletedEngagement
	err := r.db.WithContext(ctx).
		Where("volunteer_id = ?", volunteerID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) ListCompletedByAdmin(ctx context.Context, adminID uuid.UUID) ([]models.CompletedEngagement, error) {
	var rows []models.CompletedEngagement
	err := r.db.WithContext(ctx).
		Where("activity_admin_id = ?", adminID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) ListArchivedByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]models.ArchivedEngagement, error) {
	var rows []models.ArchivedEngagement
	err := r.db.WithContext(ctx).
		Where("volunteer_id = ?", volunteerID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}
