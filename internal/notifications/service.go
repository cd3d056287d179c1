package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/volunteerlinks-backend/pkg/errors"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/pagination"
)

// Service defines the notification read side.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo Repository
}

// ListParams configures pagination for one audience's notifications.
type ListParams struct {
	Audience    enums.NotificationAudience
	RecipientID uuid.UUID
	Limit       int
	Cursor      string
}

// NotificationDTO is the outward shape of a stored notification.
type NotificationDTO struct {
	ID           string               `json:"id"`
	RecipientID  string               `json:"recipient_id"`
	EngagementID string               `json:"engagement_id"`
	ActivityID   string               `json:"activity_id"`
	ActivityName string               `json:"activity_name"`
	Kind         enums.TransitionKind `json:"kind"`
	Message      string               `json:"message"`
	Genre        *string              `json:"genre,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []NotificationDTO `json:"items"`
	Cursor string            `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if !params.Audience.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown notification audience")
	}
	if params.RecipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "recipient id required")
	}

	query := listNotificationsParams{
		Audience:    params.Audience,
		RecipientID: params.RecipientID,
		Limit:       pagination.NormalizeLimit(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pagination.Decode(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDTO(row))
	}

	cursor := ""
	if next != nil {
		cursor = next.Encode()
	}

	return &ListResult{
		Items:  items,
		Cursor: cursor,
	}, nil
}

func toDTO(row Record) NotificationDTO {
	return NotificationDTO{
		ID:           row.ID.String(),
		RecipientID:  row.RecipientID.String(),
		EngagementID: row.EngagementID.String(),
		ActivityID:   row.ActivityID.String(),
		ActivityName: row.ActivityName,
		Kind:         row.Kind,
		Message:      row.Message,
		Genre:        row.Genre,
		CreatedAt:    row.CreatedAt,
	}
}
