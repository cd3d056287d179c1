package cron

import (
	"context"
	"errors"
	"testing"
)

type fakeBacklogRepo struct {
	count int64
	err   error
}

func (f fakeBacklogRepo) CountPending(context.Context) (int64, error) { return f.count, f.err }

func TestOutboxBacklogJob(t *testing.T) {
	job, err := NewOutboxBacklogJob(OutboxBacklogJobParams{Logger: testLogger(), Repository: fakeBacklogRepo{count: 900}})
	if err != nil {
		t.Fatalf("NewOutboxBacklogJob: %v", err)
	}
	if job.Name() != "outbox-backlog" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	failing, err := NewOutboxBacklogJob(OutboxBacklogJobParams{Logger: testLogger(), Repository: fakeBacklogRepo{err: errors.New("down")}})
	if err != nil {
		t.Fatalf("NewOutboxBacklogJob: %v", err)
	}
	if err := failing.Run(context.Background()); err == nil {
		t.Fatal("expected count failure to surface")
	}

	if _, err := NewOutboxBacklogJob(OutboxBacklogJobParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected error without repository")
	}
}
