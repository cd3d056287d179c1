package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/logger"
)

const defaultDLQWindow = 24 * time.Hour

type OutboxDLQJobParams struct {
	Logger     *logger.Logger
	Repository outboxDLQRepo
	Window     time.Duration
	Now        func() time.Time
}

type outboxDLQRepo interface {
	CountByReasonSince(ctx context.Context, since time.Time) (map[enums.OutboxDLQErrorReason]int64, error)
}

// NewOutboxDLQJob warns when outbox rows were dead-lettered within Window.
func NewOutboxDLQJob(params OutboxDLQJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox dlq repository required")
	}
	window := params.Window
	if window <= 0 {
		window = defaultDLQWindow
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &outboxDLQJob{logg: params.Logger, repo: params.Repository, window: window, now: now}, nil
}

type outboxDLQJob struct {
	logg   *logger.Logger
	repo   outboxDLQRepo
	window time.Duration
	now    func() time.Time
}

func (j *outboxDLQJob) Name() string { return "outbox-dlq" }

func (j *outboxDLQJob) Run(ctx context.Context) error {
	since := j.now().UTC().Add(-j.window)
	counts, err := j.repo.CountByReasonSince(ctx, since)
	if err != nil {
		return fmt.Errorf("count dead-lettered outbox events: %w", err)
	}

	var total int64
	fields := map[string]any{"since": since}
	for reason, n := range counts {
		fields["dlq_"+string(reason)] = n
		total += n
	}
	fields["dead_lettered"] = total
	logCtx := j.logg.WithFields(ctx, fields)

	if total > 0 {
		j.logg.Warn(logCtx, "notifications dead-lettered in window")
		return nil
	}
	j.logg.Info(logCtx, "no dead-lettered notifications in window")
	return nil
}
