// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file stores idempotency records for retried HTTP
// requests.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-rabbitry/internal/domain"
)

// ErrDuplicate is returned when (actor, scope, key) was already recorded.
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns the record for (actor, scope, key) that is still
// live at now. Blank scope or key never matches.
func GetIdempotency(ctx context.Context, db *gorm.DB, actor, scope, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(scope) == "" || strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}

	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("actor = ? AND scope = ? AND key = ?", actor, scope, key).
		Where("expires_at > ?", now).
		Take(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency records the outcome of a request that touched cageID.
// The record is live for ttl from now.
func CreateIdempotency(ctx context.Context, db *gorm.DB, actor, scope, key string, cageID, status int, ttl time.Duration) (*domain.Idempotency, error) {
	created := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:        uuid.NewString(),
		Actor:     actor,
		Scope:     scope,
		Key:       key,
		CageID:    cageID,
		Status:    status,
		CreatedAt: created,
		ExpiresAt: created.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// PurgeExpiredIdempotency deletes records that expired at or before now and
// reports how many were removed.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}

// isUniqueViolation recognizes unique-key failures from both drivers. The
// pure-Go sqlite driver reports them as plain text only.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	for _, marker := range []string{"unique constraint failed", "constraint failed: unique", "duplicate key"} {
		if strings.Contains(low, marker) {
			return true
		}
	}
	return false
}
