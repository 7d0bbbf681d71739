package services

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-rabbitry/internal/domain"
)

func TestIdempotencyService_RememberLookupExists(t *testing.T) {
	db := newSQLite(t)
	ctx := context.Background()
	s := NewIdempotencyService(db, time.Hour)
	scope := "POST /api/v1/rabbits/3/breed"

	rec, err := s.Lookup(ctx, "keeper", scope, "k1", time.Now().UTC())
	if err != nil || rec != nil {
		t.Fatalf("miss: rec=%v err=%v", rec, err)
	}
	if ok, err := s.Exists(ctx, "keeper", scope, "k1", time.Now().UTC()); err != nil || ok {
		t.Fatalf("Exists before Remember = %v, %v", ok, err)
	}

	if err := s.Remember(ctx, "keeper", scope, "k1", 3, 200); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	// A second Remember for the same key is absorbed.
	if err := s.Remember(ctx, "keeper", scope, "k1", 3, 200); err != nil {
		t.Fatalf("duplicate Remember: %v", err)
	}

	rec, err = s.Lookup(ctx, "keeper", scope, "k1", time.Now().UTC())
	if err != nil || rec == nil {
		t.Fatalf("hit: rec=%v err=%v", rec, err)
	}
	if rec.CageID != 3 || rec.Status != 200 {
		t.Fatalf("record = %+v", rec)
	}

	// Other actors and scopes are isolated.
	if ok, _ := s.Exists(ctx, "someone-else", scope, "k1", time.Now().UTC()); ok {
		t.Fatalf("actor isolation broken")
	}
	if ok, _ := s.Exists(ctx, "keeper", "POST /api/v1/rabbits/4/breed", "k1", time.Now().UTC()); ok {
		t.Fatalf("scope isolation broken")
	}

	// Expired records are not replayed.
	if ok, _ := s.Exists(ctx, "keeper", scope, "k1", time.Now().UTC().Add(2*time.Hour)); ok {
		t.Fatalf("expired record replayed")
	}
}

func TestNewIdempotencyService_DefaultTTL(t *testing.T) {
	if s := NewIdempotencyService(nil, 0); s.TTL != 24*time.Hour {
		t.Fatalf("TTL = %v", s.TTL)
	}
}

func TestRabbitService_Stats(t *testing.T) {
	db := newSQLite(t)
	ctx := context.Background()
	s := NewRabbitService(db, sqliteRabbitRepo{})

	n, ts, err := s.Stats(ctx)
	if err != nil || n != 0 || ts != nil {
		t.Fatalf("empty stats = %d %v %v", n, ts, err)
	}
	if _, err := s.Register(ctx, 1, domain.GenderMale, "Thumper", nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	n, ts, err = s.Stats(ctx)
	if err != nil || n != 1 || ts == nil {
		t.Fatalf("stats = %d %v %v", n, ts, err)
	}

	if _, _, err := NewRabbitService(nil, sqliteRabbitRepo{}).Stats(ctx); err == nil {
		t.Fatalf("expected error without a database")
	}
}

func TestIdempotencyService_Purge(t *testing.T) {
	db := newSQLite(t)
	ctx := context.Background()
	s := NewIdempotencyService(db, time.Hour)

	if err := s.Remember(ctx, "keeper", "POST /api/v1/rabbits/3/breed", "k1", 3, 200); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if n, err := s.Purge(ctx, time.Now().UTC()); err != nil || n != 0 {
		t.Fatalf("early purge = %d, %v", n, err)
	}
	if n, err := s.Purge(ctx, time.Now().UTC().Add(2*time.Hour)); err != nil || n != 1 {
		t.Fatalf("late purge = %d, %v", n, err)
	}
}
