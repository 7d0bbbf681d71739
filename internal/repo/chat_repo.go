// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for chat
// registrations, the list of notification destinations.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-rabbitry/internal/domain"
)

// RegisterChat inserts or refreshes the registration for chatID, setting its
// display name and last-active time.
func RegisterChat(ctx context.Context, db *gorm.DB, chatID int64, name string, now time.Time) (*domain.ChatRegistration, error) {
	c := &domain.ChatRegistration{
		ChatID:     chatID,
		ChatName:   name,
		LastActive: now.UTC(),
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"chat_name", "last_active"}),
		}).
		Create(c).Error
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListChats returns every registered chat ordered by chat id.
func ListChats(ctx context.Context, db *gorm.DB) ([]domain.ChatRegistration, error) {
	var out []domain.ChatRegistration
	err := db.WithContext(ctx).Order("chat_id asc").Find(&out).Error
	return out, err
}

// GetChat fetches one registration or ErrNotFound.
func GetChat(ctx context.Context, db *gorm.DB, chatID int64) (*domain.ChatRegistration, error) {
	var c domain.ChatRegistration
	if err := db.WithContext(ctx).Where("chat_id = ?", chatID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
