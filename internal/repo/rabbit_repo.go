// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Rabbit
// model: point lookup by cage, atomic upsert keyed by cage, version-checked
// breeding updates, and filtered scans.
//
// Error semantics:
//   - GetRabbit returns ErrNotFound (gorm.ErrRecordNotFound) on a miss; the
//     service layer turns that into the empty-cage sentinel.
//   - UpdateBreedingDate returns ErrStale when the row's version moved on
//     between read and write.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-rabbitry/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrStale reports a failed optimistic version check.
var ErrStale = errors.New("stale record version")

// RabbitFilter narrows ListRabbits. The zero value matches every row.
type RabbitFilter struct {
	OccupiedOnly bool          // is_empty = false
	Gender       domain.Gender // "" matches both
	BredOnly     bool          // last_breeding_date IS NOT NULL
}

func (f RabbitFilter) apply(q *gorm.DB) *gorm.DB {
	if f.OccupiedOnly {
		q = q.Where("is_empty = ?", false)
	}
	if f.Gender != "" {
		q = q.Where("gender = ?", f.Gender)
	}
	if f.BredOnly {
		q = q.Where("last_breeding_date IS NOT NULL")
	}
	return q
}

// GetRabbit fetches the row stored for cageID.
func GetRabbit(ctx context.Context, db *gorm.DB, cageID int) (*domain.Rabbit, error) {
	var r domain.Rabbit
	if err := db.WithContext(ctx).Where("cage_id = ?", cageID).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// UpsertRabbit inserts r or replaces every mutable field of the existing row
// for r.CageID in a single statement. The new occupant's created_at replaces
// the old one and version is incremented. r.Version is not refreshed; reload if needed.
func UpsertRabbit(ctx context.Context, db *gorm.DB, r *domain.Rabbit) error {
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	updates := clause.AssignmentColumns([]string{
		"name", "gender", "is_empty", "last_breeding_date", "father_id", "created_at", "updated_at",
	})
	updates = append(updates, clause.Assignment{
		Column: clause.Column{Name: "version"},
		Value:  gorm.Expr("rabbits.version + 1"),
	})

	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cage_id"}},
			DoUpdates: updates,
		}).
		Create(r).Error
}

// UpdateBreedingDate sets (or clears, when date is nil) last_breeding_date on
// cageID, but only if the stored version still equals version. It touches no
// other row.
func UpdateBreedingDate(ctx context.Context, db *gorm.DB, cageID, version int, date *time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Rabbit{}).
		Where("cage_id = ? AND version = ?", cageID, version).
		Updates(map[string]any{
			"last_breeding_date": date,
			"version":            gorm.Expr("version + 1"),
			"updated_at":         time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// MarkEmpty flags cageID as having no occupant. Other fields are left as they
// were. Returns ErrNotFound when the cage has no row.
func MarkEmpty(ctx context.Context, db *gorm.DB, cageID int) error {
	res := db.WithContext(ctx).
		Model(&domain.Rabbit{}).
		Where("cage_id = ?", cageID).
		Updates(map[string]any{
			"is_empty":   true,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListRabbits returns every row matching f, ordered by cage number.
func ListRabbits(ctx context.Context, db *gorm.DB, f RabbitFilter) ([]domain.Rabbit, error) {
	var out []domain.Rabbit
	err := f.apply(db.WithContext(ctx)).
		Order("cage_id asc").
		Find(&out).Error
	return out, err
}

// CountRabbits returns the number of rows matching f.
func CountRabbits(ctx context.Context, db *gorm.DB, f RabbitFilter) (int64, error) {
	var total int64
	err := f.apply(db.WithContext(ctx).Model(&domain.Rabbit{})).
		Count(&total).Error
	return total, err
}

// ListRabbitsPage returns a page of rows matching f, ordered by cage number.
// The caller computes offset and limit (e.g., (page-1)*pageSize).
func ListRabbitsPage(ctx context.Context, db *gorm.DB, f RabbitFilter, offset, limit int) ([]domain.Rabbit, error) {
	var out []domain.Rabbit
	err := f.apply(db.WithContext(ctx)).
		Order("cage_id asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
