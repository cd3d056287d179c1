package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/config"
)

func TestIncrWithTTLStartsWindowOnce(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	for want := int64(1); want <= 3; want++ {
		got, err := client.IncrWithTTL(ctx, "auth:signin:ip:10.0.0.1", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("expected count %d, got %d", want, got)
		}
	}
	if len(mock.expireCalls) != 1 || mock.expireCalls[0].ttl != time.Minute {
		t.Fatalf("expected a single window start, got %+v", mock.expireCalls)
	}
}

func TestCompareAndDelete(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	mock.data["vl:lock:engagement:rec-1"] = "owner-a"

	if ok, err := client.CompareAndDelete(ctx, "vl:lock:engagement:rec-1", "owner-b"); err != nil || ok {
		t.Fatalf("stranger must not delete the lease, ok=%v err=%v", ok, err)
	}
	if ok, err := client.CompareAndDelete(ctx, "vl:lock:engagement:rec-1", "owner-a"); err != nil || !ok {
		t.Fatalf("owner delete failed, ok=%v err=%v", ok, err)
	}
	if _, present := mock.data["vl:lock:engagement:rec-1"]; present {
		t.Fatal("expected lease removed")
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected uninitialized ping to fail")
	}
	if _, err := client.IncrWithTTL(context.Background(), "k", time.Second); err == nil {
		t.Fatal("expected uninitialized incr to fail")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close without connection: %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("POST /api/v1/engagements", "abc"); got != "vl:idempotency:POST /api/v1/engagements:abc" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.LockKey("engagement", "abc"); got != "vl:lock:engagement:abc" {
		t.Fatalf("unexpected lock key %s", got)
	}
	if got := client.LockKey(" cron-worker ", ""); got != "vl:lock:cron-worker" {
		t.Fatalf("lock key should trim and skip empty parts, got %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7, DialTimeout: 3 * time.Second})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.DB != 2 || opts.PoolSize != 7 || opts.DialTimeout != 3*time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 4})
	if err != nil || opts.Addr != "cache:6379" || opts.DB != 4 {
		t.Fatalf("unexpected address options %+v err=%v", opts, err)
	}

	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}
}

type mockCmdable struct {
	data        map[string]string
	counters    map[string]int64
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data:     make(map[string]string),
		counters: make(map[string]int64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

// Eval emulates the two scripts the client ships.
func (m *mockCmdable) Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	key := keys[0]
	switch script {
	case incrExpireScript:
		m.counters[key]++
		ttlMS, _ := args[0].(int64)
		if m.counters[key] == 1 && ttlMS > 0 {
			m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: time.Duration(ttlMS) * time.Millisecond})
		}
		return redis.NewCmdResult(m.counters[key], nil)
	case compareDeleteScript:
		if v, ok := m.data[key]; ok && v == fmt.Sprint(args[0]) {
			delete(m.data, key)
			return redis.NewCmdResult(int64(1), nil)
		}
		return redis.NewCmdResult(int64(0), nil)
	}
	return redis.NewCmdResult(nil, fmt.Errorf("unexpected script"))
}
