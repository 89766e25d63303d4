package revoke

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestList(t *testing.T) (*List, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(s.Close)

	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() {
		if err := rdb.Close(); err != nil {
			t.Fatalf("close redis: %v", err)
		}
	})
	return NewList(rdb), s
}

func TestList_RevokeThenCheck(t *testing.T) {
	l, _ := newTestList(t)
	ctx := context.Background()

	if l.IsRevoked(ctx, "tok-1") {
		t.Fatalf("unrevoked token reported revoked")
	}
	if err := l.Revoke(ctx, "tok-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if !l.IsRevoked(ctx, "tok-1") {
		t.Fatalf("revoked token reported valid")
	}
	if l.IsRevoked(ctx, "tok-2") {
		t.Fatalf("other token affected")
	}
}

func TestList_EntryExpires(t *testing.T) {
	l, s := newTestList(t)
	ctx := context.Background()

	if err := l.Revoke(ctx, "tok-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	s.FastForward(2 * time.Minute)
	if l.IsRevoked(ctx, "tok-1") {
		t.Fatalf("entry should expire with the token")
	}
}

func TestList_ExpiredTokenSkipped(t *testing.T) {
	l, _ := newTestList(t)
	ctx := context.Background()

	if err := l.Revoke(ctx, "tok-1", -time.Second); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if l.IsRevoked(ctx, "tok-1") {
		t.Fatalf("already-expired token should not be stored")
	}
}

func TestList_NilSafe(t *testing.T) {
	var l *List
	ctx := context.Background()

	if err := l.Revoke(ctx, "tok-1", time.Minute); err != nil {
		t.Fatalf("nil list revoke: %v", err)
	}
	if l.IsRevoked(ctx, "tok-1") {
		t.Fatalf("nil list should never report revoked")
	}
}
