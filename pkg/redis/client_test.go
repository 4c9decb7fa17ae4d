package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harborlane/storefront-backend/pkg/config"
)

type mockStore struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockStore) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (m *mockStore) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if value, ok := m.data[key]; ok {
		cmd.SetVal(value)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (m *mockStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	if _, ok := m.data[key]; ok {
		cmd.SetVal(false)
		return cmd
	}
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	cmd.SetVal(true)
	return cmd
}

func (m *mockStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var removed int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			removed++
		}
	}
	cmd.SetVal(removed)
	return cmd
}

func newMockClient() (*Client, *mockStore) {
	store := newMockStore()
	return &Client{store: store}, store
}

func TestClientSetGetDel(t *testing.T) {
	client, store := newMockClient()
	ctx := context.Background()

	if err := client.Set(ctx, "sfc:cart:s1", "[]", time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.ttls["sfc:cart:s1"] != time.Hour {
		t.Fatalf("expected ttl recorded, got %v", store.ttls["sfc:cart:s1"])
	}

	value, err := client.Get(ctx, "sfc:cart:s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "[]" {
		t.Fatalf("expected [], got %q", value)
	}

	if err := client.Del(ctx, "sfc:cart:s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.Get(ctx, "sfc:cart:s1"); err != redis.Nil {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestClientSetNX(t *testing.T) {
	client, _ := newMockClient()
	ctx := context.Background()

	ok, err := client.SetNX(ctx, "k", "v1", 0)
	if err != nil || !ok {
		t.Fatalf("expected first setnx to win, got ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, "k", "v2", 0)
	if err != nil || ok {
		t.Fatalf("expected second setnx to lose, got ok=%v err=%v", ok, err)
	}
}

func TestClientUninitialized(t *testing.T) {
	client := &Client{}
	if err := client.Set(context.Background(), "k", "v", 0); err == nil {
		t.Fatal("expected error for uninitialized client")
	}
	if _, err := client.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected error for uninitialized client")
	}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error for uninitialized client")
	}
}

func TestKeyBuilders(t *testing.T) {
	client, _ := newMockClient()
	if got := client.CartKey("abc"); got != "sfc:cart:abc" {
		t.Fatalf("unexpected cart key %q", got)
	}
	if got := client.RemoteCartKey("abc"); got != "sfc:remote_cart:abc" {
		t.Fatalf("unexpected remote cart key %q", got)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}
}
