// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Idempotency records the outcome of a previously processed request, keyed
// by (actor, scope, key). It lets HTTP clients retry an unsafe operation such
// as a breeding POST without applying its side effects twice.
//
// Scope is the method and request path, e.g. "POST /api/v1/rabbits/3/breed".
// CageID is the cage the original request mutated.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Actor     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_actor_scope_key,priority:1"`
	Scope     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_actor_scope_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_actor_scope_key,priority:3"`
	CageID    int       `gorm:"type:INTEGER NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
