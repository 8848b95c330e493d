package repository

import (
	"context"
	"errors"
	"testing"

	"go-city/entities"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func sampleState() entities.GameState {
	state := entities.DefaultGameState()
	state.Turn = 4
	state.Resources = 55
	state.Residents = 17
	state.Field[0] = "Farm"
	state.Field[15] = "Research Lab"
	return state
}

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreWithClient(rdb, "city:test")
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestStoresRoundTrip(t *testing.T) {
	redisStore, _ := newTestRedisStore(t)
	stores := map[string]StateStore{
		"memory": NewMemoryStore(),
		"redis":  redisStore,
	}
	ctx := context.Background()
	for name, store := range stores {
		if _, err := store.Load(ctx); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("%s: expected ErrNotInitialized before reset, got %v", name, err)
		}
		if err := store.Reset(ctx, entities.DefaultGameState()); err != nil {
			t.Fatalf("%s: reset: %v", name, err)
		}
		got, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if got != entities.DefaultGameState() {
			t.Errorf("%s: expected defaults, got %+v", name, got)
		}

		want := sampleState()
		if err := store.Save(ctx, want); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		got, err = store.Load(ctx)
		if err != nil {
			t.Fatalf("%s: load after save: %v", name, err)
		}
		if got != want {
			t.Errorf("%s: round trip mismatch\n got  %+v\n want %+v", name, got, want)
		}
	}
}

func TestRedisStoreLayout(t *testing.T) {
	store, mr := newTestRedisStore(t)
	if err := store.Reset(context.Background(), sampleState()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got := mr.HGet("city:test", "resources"); got != "55" {
		t.Errorf("expected resources=55 in hash, got %q", got)
	}
	field := mr.HGet("city:test", "field")
	want := `["Farm",null,null,null,null,null,null,null,null,null,null,null,null,null,null,"Research Lab"]`
	if field != want {
		t.Errorf("unexpected field encoding: %s", field)
	}
}

func TestRedisStoreResetDropsStaleKeys(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.HSet("city:test", "stale", "1")
	if err := store.Reset(context.Background(), entities.DefaultGameState()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if mr.HGet("city:test", "stale") != "" {
		t.Error("expected reset to clear previous hash contents")
	}
}

func TestRedisStoreCorruptField(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.HSet("city:test", "turn", "1", "resources", "10", "residents", "0", "field", `["Farm"]`)
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatal("expected error for a field that is not 16 slots long")
	}
}
