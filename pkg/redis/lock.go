package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultLockTTL = 30 * time.Second

// ErrLockHeld is returned when another owner currently holds the lock.
var ErrLockHeld = errors.New("lock held by another owner")

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)
}

// Lock implements a single-owner lease using SETNX + TTL.
type Lock struct {
	client lockStore
	key    string
	ttl    time.Duration
	owner  string
}

// NewLock constructs a Redis-backed lock for key.
func NewLock(client lockStore, key string, ttl time.Duration) (*Lock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Lock{client: client, key: key, ttl: ttl}, nil
}

// Acquire tries to own the lock for the configured TTL.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx: %w", err)
	}
	if ok {
		l.owner = owner
	}
	return ok, nil
}

// Release frees the lock if this owner still holds it. A lease that already
// expired or passed to another owner is left alone.
func (l *Lock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	owner := l.owner
	l.owner = ""
	if _, err := l.client.CompareAndDelete(ctx, l.key, owner); err != nil {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	return nil
}

// KeyedLocker hands out short-lived locks scoped to individual resources.
type KeyedLocker struct {
	client *Client
	scope  string
	ttl    time.Duration
}

// NewKeyedLocker builds a locker whose keys live under scope.
func NewKeyedLocker(client *Client, scope string, ttl time.Duration) (*KeyedLocker, error) {
	if client == nil {
		return nil, errors.New("redis client required for keyed locker")
	}
	if scope == "" {
		return nil, errors.New("lock scope is required")
	}
	return &KeyedLocker{client: client, scope: scope, ttl: ttl}, nil
}

// Lock acquires the lock for id and returns its release func. ErrLockHeld is
// returned when another caller owns it.
func (k *KeyedLocker) Lock(ctx context.Context, id string) (func(context.Context) error, error) {
	lock, err := NewLock(k.client, k.client.LockKey(k.scope, id), k.ttl)
	if err != nil {
		return nil, err
	}
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return lock.Release, nil
}
