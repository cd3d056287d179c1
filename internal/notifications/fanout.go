package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	pkgerrors "github.com/angelmondragon/volunteerlinks-backend/pkg/errors"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/logger"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/outbox/payloads"
)

// Status describes how far notification delivery got for a transition.
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusDegraded  Status = "degraded"
	StatusQueued    Status = "queued"
)

// Report is returned to callers alongside a committed transition.
type Report struct {
	Status  Status `json:"status"`
	EventID string `json:"event_id"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Queued reports delivery deferred to the outbox dispatcher.
func Queued(eventID uuid.UUID) Report {
	return Report{Status: StatusQueued, EventID: eventID.String()}
}

type dispatchMarker interface {
	MarkDispatched(ctx context.Context, id uuid.UUID) error
}

type fanoutMetrics interface {
	ObserveFanout(status string)
}

// Fanout writes notification pairs. Each row is its own insert keyed by the
// source event, so redelivery fills gaps without duplicating.
type Fanout struct {
	repo    Repository
	marker  dispatchMarker
	logg    *logger.Logger
	metrics fanoutMetrics
}

// FanoutParams wires Fanout dependencies.
type FanoutParams struct {
	Repository Repository
	Outbox     dispatchMarker
	Logger     *logger.Logger
	Metrics    fanoutMetrics
}

// NewFanout builds a notification writer.
func NewFanout(params FanoutParams) (*Fanout, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Fanout{
		repo:    params.Repository,
		marker:  params.Outbox,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// Deliver stores both notifications for the event. Both inserts are attempted
// even when the first fails.
func (f *Fanout) Deliver(ctx context.Context, eventID uuid.UUID, event payloads.EngagementTransitionEvent) error {
	pair, err := Build(eventID, event)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "build notifications")
	}

	var errs error
	volunteerNew, err := f.repo.InsertVolunteer(ctx, &pair.Volunteer)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("volunteer notification: %w", err))
	}
	adminNew, err := f.repo.InsertAdmin(ctx, &pair.Admin)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("admin notification: %w", err))
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeFanoutFailed, errs, "notification fan-out failed")
	}

	logCtx := f.logg.WithFields(ctx, map[string]any{
		"event_id":      eventID.String(),
		"engagement_id": event.EngagementID.String(),
		"kind":          event.Kind,
	})
	if !volunteerNew || !adminNew {
		f.logg.Debug(logCtx, "notifications already present for event")
	}
	return nil
}

// Notify delivers inline after a transition commits and marks the outbox
// event dispatched. Failures become a degraded report and are left for the
// dispatcher to retry.
func (f *Fanout) Notify(ctx context.Context, eventID uuid.UUID, event payloads.EngagementTransitionEvent) Report {
	report := Report{Status: StatusDelivered, EventID: eventID.String()}
	logCtx := f.logg.WithEngagementID(ctx, event.EngagementID.String())
	logCtx = f.logg.WithField(logCtx, "event_id", eventID.String())

	if err := f.Deliver(ctx, eventID, event); err != nil {
		f.logg.Error(logCtx, "inline notification fan-out failed", err)
		report.Status = StatusDegraded
		report.Code = string(pkgerrors.CodeFanoutFailed)
		report.Message = pkgerrors.MetadataFor(pkgerrors.CodeFanoutFailed).PublicMessage
		f.observe(report.Status)
		return report
	}

	if f.marker != nil {
		if err := f.marker.MarkDispatched(ctx, eventID); err != nil {
			f.logg.Warn(f.logg.WithField(logCtx, "error", err.Error()), "notifications delivered but outbox mark failed")
		}
	}
	f.observe(report.Status)
	return report
}

func (f *Fanout) observe(status Status) {
	if f.metrics != nil {
		f.metrics.ObserveFanout(string(status))
	}
}
