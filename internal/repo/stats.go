// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-rabbitry/internal/domain"
)

// RabbitsStats returns the number of occupied cages and the latest
// updated_at across all cage rows (emptying a cage changes the listing too).
// When the table has no rows, maxUpdatedAt is nil.
func RabbitsStats(ctx context.Context, db *gorm.DB) (occupied int64, maxUpdatedAt *time.Time, err error) {
	if occupied, err = CountRabbits(ctx, db, RabbitFilter{OccupiedOnly: true}); err != nil {
		return 0, nil, err
	}

	var rows int64
	q := db.WithContext(ctx).Model(&domain.Rabbit{})
	if err = q.Count(&rows).Error; err != nil {
		return 0, nil, err
	}
	if rows == 0 {
		return occupied, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return occupied, &row.UpdatedAt, nil
}
