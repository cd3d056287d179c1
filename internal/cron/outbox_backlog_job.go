package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/logger"
)

const defaultBacklogThreshold = 500

type OutboxBacklogJobParams struct {
	Logger     *logger.Logger
	Repository outboxBacklogRepo
	Threshold  int64
}

type outboxBacklogRepo interface {
	CountPending(ctx context.Context) (int64, error)
}

// NewOutboxBacklogJob reports how many transitions still wait for their
// notifications and warns once the backlog passes Threshold.
func NewOutboxBacklogJob(params OutboxBacklogJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	threshold := params.Threshold
	if threshold <= 0 {
		threshold = defaultBacklogThreshold
	}
	return &outboxBacklogJob{logg: params.Logger, repo: params.Repository, threshold: threshold}, nil
}

type outboxBacklogJob struct {
	logg      *logger.Logger
	repo      outboxBacklogRepo
	threshold int64
}

func (j *outboxBacklogJob) Name() string { return "outbox-backlog" }

func (j *outboxBacklogJob) Run(ctx context.Context) error {
	pending, err := j.repo.CountPending(ctx)
	if err != nil {
		return fmt.Errorf("count pending outbox events: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"pending":   pending,
		"threshold": j.threshold,
	})
	if pending >= j.threshold {
		j.logg.Warn(logCtx, "notification backlog above threshold")
		return nil
	}
	j.logg.Info(logCtx, "notification backlog checked")
	return nil
}
