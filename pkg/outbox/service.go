package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/logger"
)

type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Actor         *ActorRef
	Data          interface{}
	Version       int
	OccurredAt    time.Time
}

type Service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Emit appends the event inside tx and returns the stored row.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) (models.OutboxEvent, error) {
	if tx == nil {
		return models.OutboxEvent{}, errors.New("transaction required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if !event.EventType.IsValid() {
		return models.OutboxEvent{}, errors.New("unknown outbox event type")
	}
	if !event.AggregateType.IsValid() {
		return models.OutboxEvent{}, errors.New("unknown outbox aggregate type")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	eventID := uuid.New()
	envelope, err := newEnvelope(eventID, event.Version, event.OccurredAt, event.Actor, event.Data)
	if err != nil {
		return models.OutboxEvent{}, err
	}
	payloadJSON, err := json.Marshal(envelope)
	if err != nil {
		return models.OutboxEvent{}, err
	}
	row := models.OutboxEvent{
		ID:            eventID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       json.RawMessage(payloadJSON),
		CreatedAt:     event.OccurredAt,
	}
	if err := s.repo.Insert(tx, &row); err != nil {
		return models.OutboxEvent{}, err
	}
	if s.logg != nil {
		fields := map[string]any{
			"event_id":       envelope.EventID,
			"event_type":     event.EventType,
			"aggregate_id":   event.AggregateID.String(),
			"aggregate_type": event.AggregateType,
		}
		logCtx := s.logg.WithFields(ctx, fields)
		s.logg.Info(logCtx, "outbox event queued")
	}
	return row, nil
}

// MarkDispatched records that the event's side effects were delivered outside
// of the dispatcher loop.
func (s *Service) MarkDispatched(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkPublished(ctx, id)
}
