package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/docdex/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(Config{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestSetGet_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "mykey", []byte("myvalue")); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, err := s.Get(ctx, "mykey")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "myvalue" {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestSet_Overwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "mykey", []byte("first")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "mykey", []byte("second")); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, err := s.Get(ctx, "mykey")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestSetWithTTL_Readable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetWithTTL(ctx, "mykey", []byte("myvalue"), time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, err := s.Get(ctx, "mykey")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "myvalue" {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestPingAndWaitForReady(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Errorf("ping: %v", err)
	}
	if err := s.WaitForReady(ctx, time.Second); err != nil {
		t.Errorf("wait for ready: %v", err)
	}
}

func TestNewStore_RequiresDir(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for missing dir")
	}
}
