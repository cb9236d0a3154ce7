package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeStore struct {
	counters map[string]int64
	expires  map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		counters: map[string]int64{},
		expires:  map[string]time.Duration{},
	}
}

func (f *fakeStore) Ping(context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(context.Background())
	cmd.SetVal("PONG")
	return cmd
}

func (f *fakeStore) Set(_ context.Context, key string, _ any, _ time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(context.Background())
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeStore) Get(_ context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(context.Background())
	cmd.SetErr(redis.Nil)
	return cmd
}

func (f *fakeStore) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counters[key]++
	cmd := redis.NewIntCmd(context.Background())
	cmd.SetVal(f.counters[key])
	return cmd
}

func (f *fakeStore) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires[key] = ttl
	cmd := redis.NewBoolCmd(context.Background())
	cmd.SetVal(true)
	return cmd
}

func (f *fakeStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(context.Background())
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func TestNextSequenceIncrementsPerScope(t *testing.T) {
	store := newFakeStore()
	client := &Client{store: store}
	ctx := context.Background()

	first, err := client.NextSequence(ctx, "20250602", time.Hour)
	if err != nil {
		t.Fatalf("next sequence: %v", err)
	}
	second, err := client.NextSequence(ctx, "20250602", time.Hour)
	if err != nil {
		t.Fatalf("next sequence: %v", err)
	}
	if first != 1 || second != 2 {
		t.Fatalf("expected 1 then 2, got %d then %d", first, second)
	}

	other, err := client.NextSequence(ctx, "20250603", time.Hour)
	if err != nil {
		t.Fatalf("next sequence: %v", err)
	}
	if other != 1 {
		t.Fatalf("expected separate scope to restart at 1, got %d", other)
	}
}

func TestNextSequenceSetsTTLOnFirstIncrement(t *testing.T) {
	store := newFakeStore()
	client := &Client{store: store}
	ctx := context.Background()

	if _, err := client.NextSequence(ctx, "20250602", time.Hour); err != nil {
		t.Fatalf("next sequence: %v", err)
	}
	key := client.SequenceKey("20250602")
	if store.expires[key] != time.Hour {
		t.Fatalf("expected TTL set on first increment, got %v", store.expires[key])
	}
}

func TestBuildKeySkipsEmptyParts(t *testing.T) {
	client := &Client{}
	if got := client.SequenceKey(""); got != "wb:packseq" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := client.CounterKey("movements"); got != "wb:counter:movements" {
		t.Fatalf("unexpected key %q", got)
	}
}
