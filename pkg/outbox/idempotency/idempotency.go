package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// markerStore is satisfied by *redis.Client.
type markerStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// Manager remembers which outbox events a consumer already delivered, so a
// redelivered row does not notify twice. Markers live under
// vl:idempotency:evt:processed:<consumer>:<event_id>.
type Manager struct {
	store markerStore
	ttl   time.Duration
}

// NewManager keeps markers for ttl; zero keeps them forever.
func NewManager(store markerStore, ttl time.Duration) (*Manager, error) {
	switch {
	case store == nil:
		return nil, errors.New("idempotency store is required")
	case ttl < 0:
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// Claim sets the marker for eventID and reports whether this caller set it.
// false means the event was already handled.
func (m *Manager) Claim(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	key, err := m.key(consumer, eventID)
	if err != nil {
		return false, err
	}
	return m.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), m.ttl)
}

// Release clears the marker so the event can be handled again.
func (m *Manager) Release(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := m.key(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

// Once runs fn unless consumer already handled eventID and reports whether
// fn ran to success. A failing fn releases the claim.
func (m *Manager) Once(ctx context.Context, consumer string, eventID uuid.UUID, fn func(context.Context) error) (bool, error) {
	claimed, err := m.Claim(ctx, consumer, eventID)
	if err != nil || !claimed {
		return false, err
	}
	runErr := fn(ctx)
	if runErr == nil {
		return true, nil
	}
	if relErr := m.Release(context.WithoutCancel(ctx), consumer, eventID); relErr != nil {
		runErr = multierr.Append(runErr, fmt.Errorf("clear processed marker: %w", relErr))
	}
	return false, runErr
}

func (m *Manager) key(consumer string, eventID uuid.UUID) (string, error) {
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if eventID == uuid.Nil {
		return "", errors.New("event id is required")
	}
	return m.store.IdempotencyKey("evt:processed:"+consumer, eventID.String()), nil
}
