// Package domain defines the persistence models for cages, rabbits, and
// registered chats, together with the breeding rules that are derived from a
// rabbit's stored attributes. These types are mapped with GORM and form the
// core data layer of the rabbitry service.
package domain

import (
	"strings"
	"time"
)

// Gender is the sex of a cage occupant.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender normalizes s and reports whether it names a known gender.
func ParseGender(s string) (Gender, bool) {
	switch Gender(strings.ToLower(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale, true
	case GenderFemale:
		return GenderFemale, true
	}
	return "", false
}

// Opposite returns the other gender.
func (g Gender) Opposite() Gender {
	if g == GenderFemale {
		return GenderMale
	}
	return GenderFemale
}

// Rabbit is the occupant of a single numbered cage. The cage number is the
// primary key; registering a new occupant overwrites whatever was stored for
// that cage before.
//
// Fields:
//   - CageID: cage number, primary key, stable for the row's lifetime.
//   - Name: free-text label (empty only when IsEmpty is true).
//   - Gender: "male" or "female" (enforced by DB constraint).
//   - IsEmpty: the cage has no current occupant; all other fields are stale.
//   - LastBreedingDate: set only on females; nil means never bred or reset.
//   - FatherID: weak reference to the cage the father lived in at creation.
//   - Version: optimistic concurrency counter bumped on every write.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Rabbit struct {
	CageID           int        `json:"cage_id"                      gorm:"column:cage_id;primaryKey;autoIncrement:false"`
	Name             string     `json:"name"                         gorm:"type:varchar(255);not null;default:''"`
	Gender           Gender     `json:"gender"                       gorm:"type:varchar(8);not null;default:'male';check:gender IN ('male','female')"`
	IsEmpty          bool       `json:"is_empty"                     gorm:"not null;index:idx_rabbits_scan,priority:1"`
	LastBreedingDate *time.Time `json:"last_breeding_date,omitempty" gorm:"index:idx_rabbits_scan,priority:2"`
	FatherID         *int       `json:"father_id,omitempty"`
	Version          int        `json:"version"                      gorm:"not null;default:0"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Rabbit.
func (Rabbit) TableName() string { return "rabbits" }

// EmptyRabbit is the value a lookup resolves to when a cage has no record:
// an empty male with no breeding history and no father.
func EmptyRabbit(cageID int) Rabbit {
	return Rabbit{
		CageID:  cageID,
		Gender:  GenderMale,
		IsEmpty: true,
	}
}

// IsFemale reports whether the occupant is a female.
func (r *Rabbit) IsFemale() bool { return r.Gender == GenderFemale }

// ChatRegistration is a notification destination. A row is created or
// refreshed each time a chat starts a session with the bot.
type ChatRegistration struct {
	ChatID     int64     `json:"chat_id"     gorm:"column:chat_id;primaryKey;autoIncrement:false"`
	ChatName   string    `json:"chat_name"   gorm:"type:varchar(255);not null;default:''"`
	LastActive time.Time `json:"last_active" gorm:"not null;index"`
}

// TableName returns the database table name for ChatRegistration.
func (ChatRegistration) TableName() string { return "chats" }

// DisplayName returns the stored chat name or "Untitled" when blank.
func (c ChatRegistration) DisplayName() string {
	if n := strings.TrimSpace(c.ChatName); n != "" {
		return n
	}
	return "Untitled"
}
