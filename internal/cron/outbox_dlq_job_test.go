package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
)

type fakeDLQRepo struct {
	counts map[enums.OutboxDLQErrorReason]int64
	err    error
	since  time.Time
}

func (f *fakeDLQRepo) CountByReasonSince(_ context.Context, since time.Time) (map[enums.OutboxDLQErrorReason]int64, error) {
	f.since = since
	return f.counts, f.err
}

func TestOutboxDLQJobQueriesWindow(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	repo := &fakeDLQRepo{counts: map[enums.OutboxDLQErrorReason]int64{
		enums.OutboxDLQReasonMaxAttempts:  2,
		enums.OutboxDLQReasonUnresolvable: 1,
	}}
	job, err := NewOutboxDLQJob(OutboxDLQJobParams{
		Logger:     testLogger(),
		Repository: repo,
		Window:     6 * time.Hour,
		Now:        func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewOutboxDLQJob: %v", err)
	}
	if job.Name() != "outbox-dlq" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := now.Add(-6 * time.Hour); !repo.since.Equal(want) {
		t.Fatalf("expected since %v, got %v", want, repo.since)
	}
}

func TestOutboxDLQJobDefaultsAndFailures(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	repo := &fakeDLQRepo{}
	job, err := NewOutboxDLQJob(OutboxDLQJobParams{Logger: testLogger(), Repository: repo, Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("NewOutboxDLQJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run with empty dlq: %v", err)
	}
	if want := now.Add(-defaultDLQWindow); !repo.since.Equal(want) {
		t.Fatalf("expected default window, got since %v", repo.since)
	}

	failing, err := NewOutboxDLQJob(OutboxDLQJobParams{Logger: testLogger(), Repository: &fakeDLQRepo{err: errors.New("down")}})
	if err != nil {
		t.Fatalf("NewOutboxDLQJob: %v", err)
	}
	if err := failing.Run(context.Background()); err == nil {
		t.Fatal("expected count failure to surface")
	}

	if _, err := NewOutboxDLQJob(OutboxDLQJobParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected error without repository")
	}
}
