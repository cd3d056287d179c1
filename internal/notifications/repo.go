package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/pagination"
)

// Repository exposes persistence helpers for both notification collections.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	InsertVolunteer(ctx context.Context, notification *models.VolunteerNotification) (bool, error)
	InsertAdmin(ctx context.Context, notification *models.AdminNotification) (bool, error)
	List(ctx context.Context, params listNotificationsParams) ([]Record, *pagination.Cursor, error)
}

// Record is a stored notification read back from either collection.
type Record struct {
	ID                         uuid.UUID `gorm:"column:id"`
	models.NotificationPayload `gorm:"embedded"`
	CreatedAt                  time.Time `gorm:"column:created_at"`
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listNotificationsParams struct {
	Audience    enums.NotificationAudience
	RecipientID uuid.UUID
	Limit       int
	Cursor      *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// InsertVolunteer stores the row unless one already exists for its source event.
func (r *repositoryImpl) InsertVolunteer(ctx context.Context, notification *models.VolunteerNotification) (bool, error) {
	return r.insertOnce(ctx, notification)
}

// InsertAdmin stores the row unless one already exists for its source event.
func (r *repositoryImpl) InsertAdmin(ctx context.Context, notification *models.AdminNotification) (bool, error) {
	return r.insertOnce(ctx, notification)
}

func (r *repositoryImpl) insertOnce(ctx context.Context, row any) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_event_id"}},
			DoNothing: true,
		}).
		Create(row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listNotificationsParams) ([]Record, *pagination.Cursor, error) {
	table, err := tableFor(params.Audience)
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).Table(table).Where("recipient_id = ?", params.RecipientID)
	if params.Cursor != nil {
		query = query.Where("(created_at > ?) OR (created_at = ? AND id >= ?)", params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []Record
	if err := query.Order("created_at ASC, id ASC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	page, next := pagination.Trim(rows, params.Limit, func(row Record) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})
	return page, next, nil
}

func tableFor(audience enums.NotificationAudience) (string, error) {
	switch audience {
	case enums.AudienceVolunteer:
		return models.VolunteerNotification{}.TableName(), nil
	case enums.AudienceAdmin:
		return models.AdminNotification{}.TableName(), nil
	default:
		return "", fmt.Errorf("unknown audience %q", audience)
	}
}
