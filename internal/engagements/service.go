package engagements

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/volunteerlinks-backend/internal/notifications"
	"github.com/angelmondragon/volunteerlinks-backend/internal/users"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/db"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/volunteerlinks-backend/pkg/db/types"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/volunteerlinks-backend/pkg/errors"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/logger"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/metrics"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/outbox"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/redis"
)

const (
	uxPendingPair   = "ux_engagements_volunteer_activity"
	uxCompletedPair = "ux_completed_engagements_volunteer_activity"
)

// Service is the engagement lifecycle manager and its read projections.
type Service interface {
	RequestJoin(ctx context.Context, input JoinInput) (*JoinResult, error)
	CheckJoinStatus(ctx context.Context, volunteerID, activityID uuid.UUID) (bool, error)
	Decide(ctx context.Context, input DecisionInput) (*DecisionResult, error)
	Complete(ctx context.Context, input CompletionInput) (*CompletionResult, error)
	PendingFor(ctx context.Context, volunteerID uuid.UUID) ([]PendingDTO, error)
	InboundApplicantsFor(ctx context.Context, adminID uuid.UUID, activityID *uuid.UUID) ([]PendingDTO, error)
	AcceptedFor(ctx context.Context, adminID uuid.UUID) ([]CompletedDTO, error)
	CompletedFor(ctx context.Context, volunteerID uuid.UUID) ([]CompletedDTO, error)
	ArchivedFor(ctx context.Context, volunteerID uuid.UUID) ([]ArchivedDTO, error)
}

// ActivityCatalog resolves activities referenced by join requests.
type ActivityCatalog interface {
	GetActivity(ctx context.Context, id uuid.UUID) (*models.Activity, error)
}

// IdentityStore resolves user ids into display identities.
type IdentityStore interface {
	Resolve(ctx context.Context, userID uuid.UUID) (users.Identity, error)
}

// GenrePredictor infers an activity genre from a volunteer profile.
type GenrePredictor interface {
	Predict(ctx context.Context, interests, strengths []string) (string, error)
}

type recordLocker interface {
	Lock(ctx context.Context, id string) (func(context.Context) error, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) (models.OutboxEvent, error)
}

type notifier interface {
	Notify(ctx context.Context, eventID uuid.UUID, event payloads.EngagementTransitionEvent) notifications.Report
}

type transitionMetrics interface {
	ObserveTransition(kind, outcome string)
}

type service struct {
	repo         Repository
	tx           txRunner
	outbox       eventEmitter
	notifier     notifier
	catalog      ActivityCatalog
	identities   IdentityStore
	genre        GenrePredictor
	locker       recordLocker
	metrics      transitionMetrics
	logg         *logger.Logger
	inlineFanout bool
	now          func() time.Time
}

// ServiceParams wires the lifecycle manager.
type ServiceParams struct {
	Repository   Repository
	TxRunner     txRunner
	Outbox       eventEmitter
	Notifier     notifier
	Catalog      ActivityCatalog
	Identities   IdentityStore
	Genre        GenrePredictor
	Locker       recordLocker
	Metrics      transitionMetrics
	Logger       *logger.Logger
	InlineFanout bool
	Now          func() time.Time
}

// NewService validates dependencies and builds the lifecycle manager.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repository == nil:
		return nil, fmt.Errorf("engagements repository required")
	case params.TxRunner == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox emitter required")
	case params.Catalog == nil:
		return nil, fmt.Errorf("activity catalog required")
	case params.Identities == nil:
		return nil, fmt.Errorf("identity store required")
	case params.Locker == nil:
		return nil, fmt.Errorf("record locker required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	case params.InlineFanout && params.Notifier == nil:
		return nil, fmt.Errorf("notifier required for inline fan-out")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:         params.Repository,
		tx:           params.TxRunner,
		outbox:       params.Outbox,
		notifier:     params.Notifier,
		catalog:      params.Catalog,
		identities:   params.Identities,
		genre:        params.Genre,
		locker:       params.Locker,
		metrics:      params.Metrics,
		logg:         params.Logger,
		inlineFanout: params.InlineFanout,
		now:          now,
	}, nil
}

func (s *service) RequestJoin(ctx context.Context, input JoinInput) (*JoinResult, error) {
	if input.VolunteerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "volunteer id required")
	}
	if input.ActivityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "activity id required")
	}
	ctx = s.logg.WithActivityID(ctx, input.ActivityID.String())

	activity, err := s.catalog.GetActivity(ctx, input.ActivityID)
	if err != nil {
		return nil, asDependency(err, "load activity")
	}

	identity, err := s.identities.Resolve(ctx, input.VolunteerID)
	if err != nil {
		return nil, asDependency(err, "resolve volunteer")
	}
	if identity.Role != "" && identity.Role != enums.UserRoleVolunteer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only volunteers may request to join")
	}

	snapshot := models.EngagementSnapshot{
		VolunteerID:     input.VolunteerID,
		VolunteerName:   firstNonEmpty(identity.Name, input.VolunteerName),
		VolunteerEmail:  firstNonEmpty(identity.Email, input.VolunteerEmail),
		ActivityID:      activity.ID,
		ActivityName:    activity.Name,
		ActivityAdminID: activity.AdminID,
		Location:        activity.Location,
		ActivityDate:    activity.Date,
		ImageRef:        activity.ImageRef,
		Interests:       profileTags(input.Interests, identity.Interests),
		Strengths:       profileTags(input.Strengths, identity.Strengths),
		PriorExperience: firstText(input.PriorExperience, identity.PriorExperience),
		Genre:           trimmedPtr(input.Genre),
	}
	if snapshot.VolunteerName == "" || snapshot.VolunteerEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "volunteer name and email are required")
	}

	// pre-check before the classifier call; the in-transaction check decides
	live, err := s.repo.HasLive(ctx, input.VolunteerID, input.ActivityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check live engagement")
	}
	if live {
		err := pkgerrors.New(pkgerrors.CodeConflict, "volunteer already has a live engagement for this activity")
		s.observe(enums.TransitionJoin, err)
		return nil, err
	}
	if snapshot.Genre == nil {
		snapshot.Genre = s.predictGenre(ctx, snapshot)
	}

	engagement := &models.Engagement{EngagementSnapshot: snapshot}
	var event models.OutboxEvent
	var transition payloads.EngagementTransitionEvent
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		live, err := repo.HasLive(ctx, input.VolunteerID, input.ActivityID)
		if err != nil {
			return err
		}
		if live {
			return pkgerrors.New(pkgerrors.CodeConflict, "volunteer already has a live engagement for this activity")
		}
		if err := repo.CreatePending(ctx, engagement); err != nil {
			return err
		}
		transition = s.transitionEvent(enums.TransitionJoin, engagement.ID, snapshot, input.VolunteerID)
		event, err = s.emit(ctx, tx, enums.EventEngagementRequested, transition, enums.UserRoleVolunteer)
		return err
	})
	if err != nil {
		s.observe(enums.TransitionJoin, err)
		if db.IsUniqueViolation(err, uxPendingPair) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "volunteer already has a live engagement for this activity")
		}
		return nil, asDependency(err, "request join")
	}
	s.observe(enums.TransitionJoin, nil)

	ctx = s.logg.WithEngagementID(ctx, engagement.ID.String())
	s.logg.Info(ctx, "join request recorded")

	return &JoinResult{
		EngagementID: engagement.ID.String(),
		State:        enums.EngagementStatePending,
		Fanout:       s.fanout(ctx, event.ID, transition),
	}, nil
}

func (s *service) CheckJoinStatus(ctx context.Context, volunteerID, activityID uuid.UUID) (bool, error) {
	if volunteerID == uuid.Nil || activityID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeInvalidID, "volunteer and activity ids required")
	}
	pending, err := s.repo.HasPending(ctx, volunteerID, activityID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check join status")
	}
	return pending, nil
}

func (s *service) Decide(ctx context.Context, input DecisionInput) (*DecisionResult, error) {
	if input.EngagementID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "engagement id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "actor id required")
	}
	kind, eventType, err := decisionTransition(input.Decision)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithEngagementID(ctx, input.EngagementID.String())

	release, err := s.acquire(ctx, input.EngagementID)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, release)

	var event models.OutboxEvent
	var transition payloads.EngagementTransitionEvent
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		pending, err := repo.FindPending(ctx, input.EngagementID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "pending engagement not found")
			}
			return err
		}
		if pending.ActivityAdminID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the activity admin may decide")
		}

		if kind == enums.TransitionAccept {
			if _, err := repo.InsertCompleted(ctx, &models.CompletedEngagement{
				ID:                 pending.ID,
				EngagementSnapshot: pending.EngagementSnapshot,
				RequestedAt:        pending.CreatedAt,
				AcceptedAt:         s.now(),
				AcceptedBy:         input.ActorID,
			}); err != nil {
				return err
			}
		}

		deleted, err := repo.DeletePending(ctx, pending.ID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "pending engagement not found")
		}

		transition = s.transitionEvent(kind, pending.ID, pending.EngagementSnapshot, input.ActorID)
		event, err = s.emit(ctx, tx, eventType, transition, enums.UserRoleAdmin)
		return err
	})
	if err != nil {
		s.observe(kind, err)
		if db.IsUniqueViolation(err, uxCompletedPair) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "volunteer already accepted for this activity")
		}
		return nil, asDependency(err, "decide engagement")
	}
	s.observe(kind, nil)
	s.logg.Info(s.logg.WithField(ctx, "decision", input.Decision), "engagement decided")

	result := &DecisionResult{
		EngagementID: input.EngagementID.String(),
		Decision:     input.Decision,
		Fanout:       s.fanout(ctx, event.ID, transition),
	}
	if kind == enums.TransitionAccept {
		id := input.EngagementID.String()
		result.CompletedID = &id
	}
	return result, nil
}

func (s *service) Complete(ctx context.Context, input CompletionInput) (*CompletionResult, error) {
	if input.CompletedID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "completed engagement id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "actor id required")
	}
	ctx = s.logg.WithEngagementID(ctx, input.CompletedID.String())

	release, err := s.acquire(ctx, input.CompletedID)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, release)

	var event models.OutboxEvent
	var transition payloads.EngagementTransitionEvent
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		completed, err := repo.FindCompleted(ctx, input.CompletedID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "completed engagement not found")
			}
			return err
		}
		if completed.ActivityAdminID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the activity admin may complete")
		}

		if _, err := repo.InsertArchived(ctx, &models.ArchivedEngagement{
			ID:                 completed.ID,
			EngagementSnapshot: completed.EngagementSnapshot,
			RequestedAt:        completed.RequestedAt,
			AcceptedAt:         completed.AcceptedAt,
			AcceptedBy:         completed.AcceptedBy,
			CompletedAt:        s.now(),
			CompletedBy:        input.ActorID,
		}); err != nil {
			return err
		}
		deleted, err := repo.DeleteCompleted(ctx, completed.ID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "completed engagement not found")
		}

		transition = s.transitionEvent(enums.TransitionComplete, completed.ID, completed.EngagementSnapshot, input.ActorID)
		event, err = s.emit(ctx, tx, enums.EventEngagementCompleted, transition, enums.UserRoleAdmin)
		return err
	})
	if err != nil {
		s.observe(enums.TransitionComplete, err)
		return nil, asDependency(err, "complete engagement")
	}
	s.observe(enums.TransitionComplete, nil)
	s.logg.Info(ctx, "engagement archived")

	return &CompletionResult{
		ArchivedID: input.CompletedID.String(),
		Fanout:     s.fanout(ctx, event.ID, transition),
	}, nil
}

func (s *service) PendingFor(ctx context.Context, volunteerID uuid.UUID) ([]PendingDTO, error) {
	if volunteerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "volunteer id required")
	}
	rows, err := s.repo.ListPendingByVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending engagements")
	}
	return mapRows(rows, newPendingDTO), nil
}

func (s *service) InboundApplicantsFor(ctx context.Context, adminID uuid.UUID, activityID *uuid.UUID) ([]PendingDTO, error) {
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "admin id required")
	}
	rows, err := s.repo.ListPendingByAdmin(ctx, adminID, activityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list applicants")
	}
	return mapRows(rows, newPendingDTO), nil
}

func (s *service) AcceptedFor(ctx context.Context, adminID uuid.UUID) ([]CompletedDTO, error) {
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "admin id required")
	}
	rows, err := s.repo.ListCompletedByAdmin(ctx, adminID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accepted engagements")
	}
	return mapRows(rows, newCompletedDTO), nil
}

func (s *service) CompletedFor(ctx context.Context, volunteerID uuid.UUID) ([]CompletedDTO, error) {
	if volunteerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "volunteer id required")
	}
	rows, err := s.repo.ListCompletedByVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list completed engagements")
	}
	return mapRows(rows, newCompletedDTO), nil
}

func (s *service) ArchivedFor(ctx context.Context, volunteerID uuid.UUID) ([]ArchivedDTO, error) {
	if volunteerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "volunteer id required")
	}
	rows, err := s.repo.ListArchivedByVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list archived engagements")
	}
	return mapRows(rows, newArchivedDTO), nil
}

func (s *service) transitionEvent(kind enums.TransitionKind, id uuid.UUID, snapshot models.EngagementSnapshot, actor uuid.UUID) payloads.EngagementTransitionEvent {
	return payloads.EngagementTransitionEvent{
		EngagementID:    id,
		Kind:            kind,
		VolunteerID:     snapshot.VolunteerID,
		VolunteerName:   snapshot.VolunteerName,
		ActivityID:      snapshot.ActivityID,
		ActivityName:    snapshot.ActivityName,
		ActivityAdminID: snapshot.ActivityAdminID,
		Genre:           snapshot.Genre,
		ActorID:         actor,
		OccurredAt:      s.now(),
	}
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, transition payloads.EngagementTransitionEvent, role enums.UserRole) (models.OutboxEvent, error) {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateEngagement,
		AggregateID:   transition.EngagementID,
		Actor:         &outbox.ActorRef{UserID: transition.ActorID, Role: role.String()},
		Data:          transition,
		OccurredAt:    transition.OccurredAt,
	})
}

func (s *service) fanout(ctx context.Context, eventID uuid.UUID, transition payloads.EngagementTransitionEvent) notifications.Report {
	if !s.inlineFanout {
		return notifications.Queued(eventID)
	}
	return s.notifier.Notify(ctx, eventID, transition)
}

func (s *service) predictGenre(ctx context.Context, snapshot models.EngagementSnapshot) *string {
	if s.genre == nil || (len(snapshot.Interests) == 0 && len(snapshot.Strengths) == 0) {
		return nil
	}
	genre, err := s.genre.Predict(ctx, snapshot.Interests, snapshot.Strengths)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "genre prediction unavailable")
		return nil
	}
	return &genre
}

func (s *service) acquire(ctx context.Context, id uuid.UUID) (func(context.Context) error, error) {
	release, err := s.locker.Lock(ctx, id.String())
	if err != nil {
		if errors.Is(err, redis.ErrLockHeld) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "engagement is being updated by another request")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock engagement")
	}
	return release, nil
}

func (s *service) release(ctx context.Context, release func(context.Context) error) {
	if release == nil {
		return
	}
	if err := release(context.WithoutCancel(ctx)); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "release engagement lock")
	}
}

func (s *service) observe(kind enums.TransitionKind, err error) {
	if s.metrics == nil {
		return
	}
	outcome := metrics.OutcomeCommitted
	if err != nil {
		outcome = metrics.OutcomeFailed
		if pkgerrors.As(err) != nil && !pkgerrors.IsRetryable(err) {
			outcome = metrics.OutcomeRejected
		}
	}
	s.metrics.ObserveTransition(string(kind), outcome)
}

func decisionTransition(decision enums.EngagementDecision) (enums.TransitionKind, enums.OutboxEventType, error) {
	switch decision {
	case enums.EngagementDecisionAccept:
		return enums.TransitionAccept, enums.EventEngagementAccepted, nil
	case enums.EngagementDecisionReject:
		return enums.TransitionReject, enums.EventEngagementRejected, nil
	default:
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "decision must be accept or reject")
	}
}

// asDependency keeps typed errors and wraps store failures as retryable.
func asDependency(err error, message string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}

func mapRows[T any, D any](rows []T, fn func(T) D) []D {
	out := make([]D, 0, len(rows))
	for _, row := range rows {
		out = append(out, fn(row))
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// profileTags prefers the tags sent with the join and falls back to the
// stored volunteer profile.
func profileTags(requested, stored []string) dbtypes.StringList {
	if tags := dbtypes.Normalize(requested); len(tags) > 0 {
		return tags
	}
	return dbtypes.Normalize(stored)
}

func firstText(values ...*string) *string {
	for _, v := range values {
		if trimmed := trimmedPtr(v); trimmed != nil {
			return trimmed
		}
	}
	return nil
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
