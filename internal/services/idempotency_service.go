// Package services – IdempotencyService
//
// IdempotencyService remembers the outcome of unsafe HTTP requests keyed by
// (actor, scope, key) so a retried breeding POST replays the first answer
// instead of breeding again.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-rabbitry/internal/domain"
	"github.com/tbourn/go-rabbitry/internal/repo"
)

// IdempotencyService stores and looks up idempotency records.
type IdempotencyService struct {
	DB *gorm.DB
	// TTL bounds how long an outcome can be replayed; defaults to 24h.
	TTL time.Duration
}

// NewIdempotencyService constructs an IdempotencyService.
func NewIdempotencyService(db *gorm.DB, ttl time.Duration) *IdempotencyService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyService{DB: db, TTL: ttl}
}

// Lookup returns the unexpired record for (actor, scope, key), or nil when
// there is none.
func (s *IdempotencyService) Lookup(ctx context.Context, actor, scope, key string, now time.Time) (*domain.Idempotency, error) {
	ctx, span := startSpan(ctx, "IdempotencyService", "Lookup", attribute.String("scope", scope))
	defer span.End()

	rec, err := repo.GetIdempotency(ctx, s.DB, actor, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	return rec, nil
}

// Exists adapts Lookup to the middleware's yes/no question.
func (s *IdempotencyService) Exists(ctx context.Context, actor, scope, key string, now time.Time) (bool, error) {
	rec, err := s.Lookup(ctx, actor, scope, key, now)
	return rec != nil, err
}

// Remember stores the outcome of a completed request. A concurrent request
// that already stored the same key wins and is not an error.
func (s *IdempotencyService) Remember(ctx context.Context, actor, scope, key string, cageID, status int) error {
	ctx, span := startSpan(ctx, "IdempotencyService", "Remember",
		attribute.String("scope", scope),
		attribute.Int("cage.id", cageID),
	)
	defer span.End()

	_, err := repo.CreateIdempotency(ctx, s.DB, actor, scope, key, cageID, status, s.TTL)
	if err == nil || errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return fmt.Errorf("idempotency store: %w", err)
}

// Purge drops records that can no longer be replayed.
func (s *IdempotencyService) Purge(ctx context.Context, now time.Time) (int64, error) {
	ctx, span := startSpan(ctx, "IdempotencyService", "Purge")
	defer span.End()

	n, err := repo.PurgeExpiredIdempotency(ctx, s.DB, now)
	if err != nil {
		return 0, fmt.Errorf("idempotency purge: %w", err)
	}
	return n, nil
}
