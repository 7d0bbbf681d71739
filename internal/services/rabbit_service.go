// Package services – RabbitService
//
// RabbitService owns the cage lifecycle: loading an occupant (a missing row
// becomes the empty-cage sentinel), registering a new occupant over whatever
// the cage held before, marking cages empty, resetting a female's breeding
// date, and resolving fathers lazily.
//
// Observability: public methods are OpenTelemetry-instrumented with the cage
// number as a span attribute.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/message"
	"gorm.io/gorm"

	"github.com/tbourn/go-rabbitry/internal/domain"
	"github.com/tbourn/go-rabbitry/internal/repo"
	"github.com/tbourn/go-rabbitry/internal/utils"
)

// RabbitRepo defines the repository contract required by RabbitService and
// BreedingService.
type RabbitRepo interface {
	// GetRabbit returns repo.ErrNotFound when the cage has no row.
	GetRabbit(ctx context.Context, db *gorm.DB, cageID int) (*domain.Rabbit, error)

	// UpsertRabbit inserts or overwrites the row for r.CageID.
	UpsertRabbit(ctx context.Context, db *gorm.DB, r *domain.Rabbit) error

	// UpdateBreedingDate writes the date only when version still matches;
	// otherwise it returns repo.ErrStale.
	UpdateBreedingDate(ctx context.Context, db *gorm.DB, cageID, version int, date *time.Time) error

	// MarkEmpty flags the cage as unoccupied.
	MarkEmpty(ctx context.Context, db *gorm.DB, cageID int) error

	// ListRabbits returns rows matching f ordered by cage.
	ListRabbits(ctx context.Context, db *gorm.DB, f repo.RabbitFilter) ([]domain.Rabbit, error)

	// CountRabbits counts rows matching f.
	CountRabbits(ctx context.Context, db *gorm.DB, f repo.RabbitFilter) (int64, error)

	// ListRabbitsPage returns a page of rows matching f.
	ListRabbitsPage(ctx context.Context, db *gorm.DB, f repo.RabbitFilter, offset, limit int) ([]domain.Rabbit, error)
}

// RabbitService provides cage-level operations.
type RabbitService struct {
	DB   *gorm.DB
	Repo RabbitRepo

	// Now is the clock used for readiness checks; defaults to time.Now.
	Now func() time.Time

	// NameMaxLen caps stored names by rune length.
	NameMaxLen int
}

// NewRabbitService constructs a RabbitService with a wall clock.
func NewRabbitService(db *gorm.DB, r RabbitRepo) *RabbitService {
	return &RabbitService{
		DB:         db,
		Repo:       r,
		Now:        time.Now,
		NameMaxLen: 64,
	}
}

func (s *RabbitService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func startSpan(ctx context.Context, svc, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer("services/"+svc).Start(ctx, op, trace.WithAttributes(attrs...))
}

// Load returns the occupant of cageID. A cage with no row resolves to
// domain.EmptyRabbit; only store faults are returned as errors.
func (s *RabbitService) Load(ctx context.Context, cageID int) (domain.Rabbit, error) {
	ctx, span := startSpan(ctx, "RabbitService", "Load", attribute.Int("cage.id", cageID))
	defer span.End()

	if cageID <= 0 {
		return domain.Rabbit{}, ErrInvalidCage
	}
	return loadRabbit(ctx, s.DB, s.Repo, cageID)
}

func loadRabbit(ctx context.Context, db *gorm.DB, r RabbitRepo, cageID int) (domain.Rabbit, error) {
	rb, err := r.GetRabbit(ctx, db, cageID)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.EmptyRabbit(cageID), nil
	}
	if err != nil {
		return domain.Rabbit{}, fmt.Errorf("load cage %d: %w", cageID, err)
	}
	return *rb, nil
}

// Register places a new occupant in cageID, replacing any previous one. The
// breeding date starts cleared. fatherID is optional.
func (s *RabbitService) Register(ctx context.Context, cageID int, gender domain.Gender, name string, fatherID *int) (*domain.Rabbit, error) {
	ctx, span := startSpan(ctx, "RabbitService", "Register",
		attribute.Int("cage.id", cageID),
		attribute.String("rabbit.gender", string(gender)),
	)
	defer span.End()

	if cageID <= 0 {
		return nil, ErrInvalidCage
	}
	g, ok := domain.ParseGender(string(gender))
	if !ok {
		return nil, ErrInvalidGender
	}
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil, ErrEmptyName
	}
	if s.NameMaxLen > 0 && utf8.RuneCountInString(name) > s.NameMaxLen {
		name = string([]rune(name)[:s.NameMaxLen])
	}
	if fatherID != nil && *fatherID <= 0 {
		return nil, ErrInvalidCage
	}

	rb := &domain.Rabbit{
		CageID:   cageID,
		Name:     name,
		Gender:   g,
		FatherID: fatherID,
	}
	if err := s.Repo.UpsertRabbit(ctx, s.DB, rb); err != nil {
		return nil, fmt.Errorf("register cage %d: %w", cageID, err)
	}
	stored, err := s.Repo.GetRabbit(ctx, s.DB, cageID)
	if err != nil {
		return nil, fmt.Errorf("reload cage %d: %w", cageID, err)
	}
	return stored, nil
}

// Delete marks cageID as empty. Deleting an empty cage returns ErrCageEmpty.
func (s *RabbitService) Delete(ctx context.Context, cageID int) error {
	ctx, span := startSpan(ctx, "RabbitService", "Delete", attribute.Int("cage.id", cageID))
	defer span.End()

	rb, err := s.Load(ctx, cageID)
	if err != nil {
		return err
	}
	if rb.IsEmpty {
		return ErrCageEmpty
	}
	if err := s.Repo.MarkEmpty(ctx, s.DB, cageID); err != nil {
		return fmt.Errorf("empty cage %d: %w", cageID, err)
	}
	return nil
}

// ResetBreeding clears the female's breeding date and reports true. For a
// male or an empty cage nothing is written and it reports false.
func (s *RabbitService) ResetBreeding(ctx context.Context, cageID int) (bool, error) {
	ctx, span := startSpan(ctx, "RabbitService", "ResetBreeding", attribute.Int("cage.id", cageID))
	defer span.End()

	rb, err := s.Load(ctx, cageID)
	if err != nil {
		return false, err
	}
	if rb.IsEmpty || !rb.IsFemale() {
		return false, nil
	}
	if err := s.Repo.UpdateBreedingDate(ctx, s.DB, cageID, rb.Version, nil); err != nil {
		if errors.Is(err, repo.ErrStale) {
			return false, ErrConcurrentUpdate
		}
		return false, fmt.Errorf("reset cage %d: %w", cageID, err)
	}
	return true, nil
}

// ResolveFather looks up the rabbit's father on demand. It returns nil when
// no father is recorded or the father's cage is missing or empty.
func (s *RabbitService) ResolveFather(ctx context.Context, rb *domain.Rabbit) (*domain.Rabbit, error) {
	if rb == nil || rb.FatherID == nil {
		return nil, nil
	}
	ctx, span := startSpan(ctx, "RabbitService", "ResolveFather", attribute.Int("father.cage_id", *rb.FatherID))
	defer span.End()

	father, err := s.Repo.GetRabbit(ctx, s.DB, *rb.FatherID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve father of cage %d: %w", rb.CageID, err)
	}
	if father.IsEmpty {
		return nil, nil
	}
	return father, nil
}

// Describe loads cageID, resolves its father, and renders the info card.
func (s *RabbitService) Describe(ctx context.Context, p *message.Printer, cageID int) (string, domain.Rabbit, error) {
	rb, err := s.Load(ctx, cageID)
	if err != nil {
		return "", domain.Rabbit{}, err
	}
	var father *domain.Rabbit
	if !rb.IsEmpty {
		if father, err = s.ResolveFather(ctx, &rb); err != nil {
			return "", domain.Rabbit{}, err
		}
	}
	return rb.Describe(p, father, s.now()), rb, nil
}

// ListOccupied returns every non-empty cage ordered by cage number.
func (s *RabbitService) ListOccupied(ctx context.Context) ([]domain.Rabbit, error) {
	ctx, span := startSpan(ctx, "RabbitService", "ListOccupied")
	defer span.End()

	return s.Repo.ListRabbits(ctx, s.DB, repo.RabbitFilter{OccupiedOnly: true})
}

// BredFemales returns occupied females that have a breeding date, the
// candidates for the pregnancy scan.
func (s *RabbitService) BredFemales(ctx context.Context) ([]domain.Rabbit, error) {
	ctx, span := startSpan(ctx, "RabbitService", "BredFemales")
	defer span.End()

	return s.Repo.ListRabbits(ctx, s.DB, repo.RabbitFilter{
		OccupiedOnly: true,
		Gender:       domain.GenderFemale,
		BredOnly:     true,
	})
}

// ListPage returns a page of occupied cages and the total count. Invalid
// page or pageSize values fall back to 1 and 20.
func (s *RabbitService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Rabbit, int64, error) {
	ctx, span := startSpan(ctx, "RabbitService", "ListPage",
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	f := repo.RabbitFilter{OccupiedOnly: true}

	total, err := s.Repo.CountRabbits(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Rabbit{}, 0, nil
	}
	offset := utils.PageOffset(page, pageSize)
	if int64(offset) >= total {
		return []domain.Rabbit{}, total, nil
	}
	items, err := s.Repo.ListRabbitsPage(ctx, s.DB, f, offset, pageSize)
	return items, total, err
}

// Partners lists occupied rabbits of the opposite gender to cageID's
// occupant, the candidates for a breeding pair.
func (s *RabbitService) Partners(ctx context.Context, cageID int) ([]domain.Rabbit, error) {
	ctx, span := startSpan(ctx, "RabbitService", "Partners", attribute.Int("cage.id", cageID))
	defer span.End()

	rb, err := s.Load(ctx, cageID)
	if err != nil {
		return nil, err
	}
	if rb.IsEmpty {
		return nil, ErrCageEmpty
	}
	return s.Repo.ListRabbits(ctx, s.DB, repo.RabbitFilter{
		OccupiedOnly: true,
		Gender:       rb.Gender.Opposite(),
	})
}

// Stats returns the occupied-cage count and the latest row update, which
// together fingerprint the occupant list for HTTP caching.
func (s *RabbitService) Stats(ctx context.Context) (int64, *time.Time, error) {
	ctx, span := startSpan(ctx, "RabbitService", "Stats")
	defer span.End()

	if s.DB == nil {
		return 0, nil, errors.New("rabbit stats: no database")
	}
	return repo.RabbitsStats(ctx, s.DB)
}
