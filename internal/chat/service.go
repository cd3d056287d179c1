package chat

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/volunteerlinks-backend/pkg/errors"
)

type repository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	ListByActivity(ctx context.Context, activityID uuid.UUID) ([]models.ChatMessage, error)
	ListConversation(ctx context.Context, activityID, userA, userB uuid.UUID) ([]models.ChatMessage, error)
}

type activityCatalog interface {
	GetActivity(ctx context.Context, id uuid.UUID) (*models.Activity, error)
}

// Service runs the per-activity discussion thread.
type Service interface {
	Send(ctx context.Context, input SendInput) (*MessageDTO, error)
	List(ctx context.Context, activityID uuid.UUID) ([]MessageDTO, error)
	Participants(ctx context.Context, activityID uuid.UUID) ([]ParticipantDTO, error)
	Conversation(ctx context.Context, input ConversationInput) ([]MessageDTO, error)
}

type service struct {
	repo     repository
	catalog  activityCatalog
	validate *validator.Validate
}

func NewService(repo repository, catalog activityCatalog) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "chat repository required")
	}
	if catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activity catalog required")
	}
	return &service{repo: repo, catalog: catalog, validate: validator.New()}, nil
}

func (s *service) Send(ctx context.Context, input SendInput) (*MessageDTO, error) {
	if input.ActivityID == uuid.Nil || input.SenderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "activity and sender ids required")
	}
	input.Text = strings.TrimSpace(input.Text)
	input.SenderName = strings.TrimSpace(input.SenderName)
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "message text required")
	}
	if input.SenderName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sender name required")
	}
	activity, err := s.catalog.GetActivity(ctx, input.ActivityID)
	if err != nil {
		return nil, err
	}
	if input.RecipientID != nil {
		if err := checkDirect(activity, input.SenderID, *input.RecipientID); err != nil {
			return nil, err
		}
	}

	message := &models.ChatMessage{
		ActivityID:  input.ActivityID,
		SenderID:    input.SenderID,
		RecipientID: input.RecipientID,
		SenderName:  input.SenderName,
		Body:        input.Text,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store message")
	}
	dto := newMessageDTO(*message)
	return &dto, nil
}

func (s *service) List(ctx context.Context, activityID uuid.UUID) ([]MessageDTO, error) {
	rows, err := s.load(ctx, activityID)
	if err != nil {
		return nil, err
	}
	out := make([]MessageDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, newMessageDTO(row))
	}
	return out, nil
}

// Participants lists distinct senders in the order they first posted.
func (s *service) Participants(ctx context.Context, activityID uuid.UUID) ([]ParticipantDTO, error) {
	rows, err := s.load(ctx, activityID)
	if err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]struct{}, len(rows))
	out := make([]ParticipantDTO, 0)
	for _, row := range rows {
		if _, ok := seen[row.SenderID]; ok {
			continue
		}
		seen[row.SenderID] = struct{}{}
		out = append(out, ParticipantDTO{UserID: row.SenderID.String(), Name: row.SenderName})
	}
	return out, nil
}

// Conversation returns the private messages between a participant and the
// activity admin, oldest first.
func (s *service) Conversation(ctx context.Context, input ConversationInput) ([]MessageDTO, error) {
	if input.ActivityID == uuid.Nil || input.ParticipantID == uuid.Nil || input.CallerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "activity, participant and caller ids required")
	}
	activity, err := s.catalog.GetActivity(ctx, input.ActivityID)
	if err != nil {
		return nil, err
	}
	if input.ParticipantID == activity.AdminID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "participant must not be the activity admin")
	}
	if input.CallerID != input.ParticipantID && input.CallerID != activity.AdminID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "conversation belongs to another participant")
	}

	rows, err := s.repo.ListConversation(ctx, input.ActivityID, input.ParticipantID, activity.AdminID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load conversation")
	}
	out := make([]MessageDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, newMessageDTO(row))
	}
	return out, nil
}

// checkDirect allows private messages only between the activity admin and
// someone else.
func checkDirect(activity *models.Activity, sender, recipient uuid.UUID) error {
	if recipient == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeInvalidID, "recipient id required")
	}
	if sender == recipient {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot message yourself")
	}
	if sender != activity.AdminID && recipient != activity.AdminID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "private messages go to or come from the activity admin")
	}
	return nil
}

func (s *service) load(ctx context.Context, activityID uuid.UUID) ([]models.ChatMessage, error) {
	if activityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "activity id required")
	}
	rows, err := s.repo.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load messages")
	}
	return rows, nil
}
