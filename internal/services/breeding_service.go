// Package services – BreedingService
//
// BreedingService validates a proposed pair and records a breeding on the
// female. A successful attempt performs exactly one write, conditional on the
// female's row version; rejected attempts perform none.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-rabbitry/internal/domain"
	"github.com/tbourn/go-rabbitry/internal/repo"
)

// breedAttempts counts breeding attempts by outcome.
var breedAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rabbitry_breeding_attempts_total",
		Help: "Breeding attempts by result.",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(breedAttempts)
}

// BreedOutcome is the result of a successful breeding.
type BreedOutcome struct {
	Female domain.Rabbit
	Male   domain.Rabbit
	BredAt time.Time
}

// BreedPreview describes a validated pair before confirmation.
type BreedPreview struct {
	Female domain.Rabbit
	Male   domain.Rabbit

	// Ready reports whether the female may be bred now.
	Ready bool
	// DaysPassed is the number of days since her last breeding, or -1 when
	// she was never bred.
	DaysPassed int
	// DaysRemaining is the cooldown left; 0 when Ready.
	DaysRemaining int
}

// BreedingService coordinates breeding attempts between two cages.
type BreedingService struct {
	DB   *gorm.DB
	Repo RabbitRepo

	// Now is the clock recorded as the breeding date; defaults to time.Now.
	Now func() time.Time
}

// NewBreedingService constructs a BreedingService with a wall clock.
func NewBreedingService(db *gorm.DB, r RabbitRepo) *BreedingService {
	return &BreedingService{DB: db, Repo: r, Now: time.Now}
}

func (s *BreedingService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// pair loads both cages and orders them as (female, male).
func (s *BreedingService) pair(ctx context.Context, a, b int) (female, male domain.Rabbit, err error) {
	if a <= 0 || b <= 0 {
		return female, male, ErrInvalidCage
	}
	ra, err := loadRabbit(ctx, s.DB, s.Repo, a)
	if err != nil {
		return female, male, err
	}
	rb, err := loadRabbit(ctx, s.DB, s.Repo, b)
	if err != nil {
		return female, male, err
	}
	if ra.IsEmpty || rb.IsEmpty {
		return female, male, ErrCageEmpty
	}
	if ra.Gender == rb.Gender {
		return female, male, ErrSameGender
	}
	if ra.IsFemale() {
		return ra, rb, nil
	}
	return rb, ra, nil
}

// Preview validates the pair and reports the female's readiness without
// writing anything.
func (s *BreedingService) Preview(ctx context.Context, a, b int) (*BreedPreview, error) {
	ctx, span := startSpan(ctx, "BreedingService", "Preview",
		attribute.Int("cage.a", a),
		attribute.Int("cage.b", b),
	)
	defer span.End()

	female, male, err := s.pair(ctx, a, b)
	if err != nil {
		return nil, err
	}
	now := s.now()
	p := &BreedPreview{
		Female:        female,
		Male:          male,
		Ready:         female.IsReadyToBreed(now),
		DaysPassed:    -1,
		DaysRemaining: female.DaysUntilReady(now),
	}
	if d, ok := female.DaysSinceLastBreeding(now); ok {
		p.DaysPassed = d
	}
	return p, nil
}

// AttemptBreed breeds the rabbits in cages a and b. On success the female's
// breeding date is set to the current time. Rejections (ErrCageEmpty,
// ErrSameGender, *NotReadyError) leave the store untouched.
func (s *BreedingService) AttemptBreed(ctx context.Context, a, b int) (*BreedOutcome, error) {
	ctx, span := startSpan(ctx, "BreedingService", "AttemptBreed",
		attribute.Int("cage.a", a),
		attribute.Int("cage.b", b),
	)
	defer span.End()

	out, err := s.attempt(ctx, a, b)
	breedAttempts.WithLabelValues(breedResult(err)).Inc()
	return out, err
}

func (s *BreedingService) attempt(ctx context.Context, a, b int) (*BreedOutcome, error) {
	female, male, err := s.pair(ctx, a, b)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !female.IsReadyToBreed(now) {
		return nil, &NotReadyError{DaysRemaining: female.DaysUntilReady(now)}
	}

	if err := s.Repo.UpdateBreedingDate(ctx, s.DB, female.CageID, female.Version, &now); err != nil {
		if errors.Is(err, repo.ErrStale) {
			return nil, ErrConcurrentUpdate
		}
		return nil, fmt.Errorf("record breeding on cage %d: %w", female.CageID, err)
	}
	female.LastBreedingDate = &now
	female.Version++

	return &BreedOutcome{Female: female, Male: male, BredAt: now}, nil
}

func breedResult(err error) string {
	var nr *NotReadyError
	switch {
	case err == nil:
		return "bred"
	case errors.As(err, &nr):
		return "not_ready"
	case errors.Is(err, ErrConcurrentUpdate):
		return "conflict"
	case IsValidation(err):
		return "rejected"
	}
	return "error"
}
