package domain

import (
	"strconv"
	"time"

	"golang.org/x/text/message"
)

// Breeding windows, in whole days since the last recorded breeding.
const (
	// BreedingCooldownDays is how long a female rests before she may be bred again.
	BreedingCooldownDays = 30

	// PreparingFromDay starts the "preparing to kindle" window.
	PreparingFromDay = 25

	// DueSoonFromDay and DueSoonUntilDay bound the "due soon" window (inclusive).
	DueSoonFromDay  = 28
	DueSoonUntilDay = 32
)

// PregnancyStatus classifies a bred female by elapsed days.
type PregnancyStatus string

const (
	PregnancyNone      PregnancyStatus = "none"
	PregnancyPreparing PregnancyStatus = "preparing"
	PregnancyDueSoon   PregnancyStatus = "due_soon"
)

const day = 24 * time.Hour

// elapsedDays returns the number of whole days between from and to, rounded
// toward negative infinity.
func elapsedDays(from, to time.Time) int {
	d := to.Sub(from)
	n := int(d / day)
	if d < 0 && d%day != 0 {
		n--
	}
	return n
}

// DaysSinceLastBreeding returns whole days elapsed since LastBreedingDate as
// of now. ok is false when there is no breeding date.
func (r *Rabbit) DaysSinceLastBreeding(now time.Time) (days int, ok bool) {
	if r.LastBreedingDate == nil {
		return 0, false
	}
	return elapsedDays(*r.LastBreedingDate, now), true
}

// IsReadyToBreed reports whether the rabbit may be bred at now. Females are
// ready when they were never bred or when at least BreedingCooldownDays whole
// days have passed. Males are always ready.
func (r *Rabbit) IsReadyToBreed(now time.Time) bool {
	if !r.IsFemale() {
		return true
	}
	days, ok := r.DaysSinceLastBreeding(now)
	if !ok {
		return true
	}
	return days >= BreedingCooldownDays
}

// DaysUntilReady returns the remaining cooldown days, or 0 when ready.
func (r *Rabbit) DaysUntilReady(now time.Time) int {
	if r.IsReadyToBreed(now) {
		return 0
	}
	days, _ := r.DaysSinceLastBreeding(now)
	return BreedingCooldownDays - days
}

// PregnancyStatus classifies a bred female into a notification bucket.
// Non-females and females without a breeding date are PregnancyNone.
func (r *Rabbit) PregnancyStatus(now time.Time) PregnancyStatus {
	if !r.IsFemale() {
		return PregnancyNone
	}
	d, ok := r.DaysSinceLastBreeding(now)
	if !ok {
		return PregnancyNone
	}
	switch {
	case d >= DueSoonFromDay && d <= DueSoonUntilDay:
		return PregnancyDueSoon
	case d >= PreparingFromDay && d < DueSoonFromDay:
		return PregnancyPreparing
	}
	return PregnancyNone
}

// Symbol returns ♂️ or ♀️.
func (g Gender) Symbol() string {
	if g == GenderFemale {
		return "♀️"
	}
	return "♂️"
}

// Label returns the localized gender word.
func (g Gender) Label(p *message.Printer) string {
	if g == GenderFemale {
		return p.Sprintf("female")
	}
	return p.Sprintf("male")
}

// CageNumber renders a cage id for display. Printer verbs group digits by
// locale, which would make 1234 read differently from its callback data.
func CageNumber(id int) string { return strconv.Itoa(id) }

// Describe renders a human-readable card for the cage. father is the resolved
// father (nil when unknown). The result depends only on its arguments.
func (r *Rabbit) Describe(p *message.Printer, father *Rabbit, now time.Time) string {
	if r.IsEmpty {
		return p.Sprintf("Cage is empty!")
	}

	out := p.Sprintf("🐰 Rabbit info %s:", r.Gender.Symbol()) + "\n" +
		p.Sprintf("Name: %s", r.Name) + "\n" +
		p.Sprintf("Gender: %s", r.Gender.Label(p)) + "\n" +
		p.Sprintf("Cage: %s", CageNumber(r.CageID))

	if r.IsFemale() && r.LastBreedingDate != nil {
		readiness := p.Sprintf("ready")
		if !r.IsReadyToBreed(now) {
			readiness = p.Sprintf("not ready (%d day(s) remaining)", r.DaysUntilReady(now))
		}
		out += "\n" + p.Sprintf("Last breeding: %s (%s)", r.LastBreedingDate.Format(time.DateOnly), readiness)
	}
	if father != nil && !father.IsEmpty {
		out += "\n" + p.Sprintf("Father: %s (cage %s)", father.Name, CageNumber(father.CageID))
	}
	return out
}
