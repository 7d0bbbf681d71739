package services

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-rabbitry/internal/domain"
	"github.com/tbourn/go-rabbitry/internal/repo"
)

// ----- Fake rabbit repo -----

// fakeRabbitRepo keeps rows in a map and counts every write.
type fakeRabbitRepo struct {
	rows   map[int]domain.Rabbit
	writes int

	getErr    error
	writeErr  error
	staleOnce bool
}

func newFakeRabbitRepo(rows ...domain.Rabbit) *fakeRabbitRepo {
	r := &fakeRabbitRepo{rows: map[int]domain.Rabbit{}}
	for _, rb := range rows {
		r.rows[rb.CageID] = rb
	}
	return r
}

func (r *fakeRabbitRepo) GetRabbit(_ context.Context, _ *gorm.DB, cageID int) (*domain.Rabbit, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	rb, ok := r.rows[cageID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &rb, nil
}

func (r *fakeRabbitRepo) UpsertRabbit(_ context.Context, _ *gorm.DB, rb *domain.Rabbit) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.writes++
	cp := *rb
	if prev, ok := r.rows[rb.CageID]; ok {
		cp.Version = prev.Version + 1
	}
	r.rows[rb.CageID] = cp
	return nil
}

func (r *fakeRabbitRepo) UpdateBreedingDate(_ context.Context, _ *gorm.DB, cageID, version int, date *time.Time) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	rb, ok := r.rows[cageID]
	if !ok || rb.Version != version || r.staleOnce {
		r.staleOnce = false
		return repo.ErrStale
	}
	r.writes++
	rb.LastBreedingDate = date
	rb.Version++
	r.rows[cageID] = rb
	return nil
}

func (r *fakeRabbitRepo) MarkEmpty(_ context.Context, _ *gorm.DB, cageID int) error {
	rb, ok := r.rows[cageID]
	if !ok {
		return repo.ErrNotFound
	}
	r.writes++
	rb.IsEmpty = true
	rb.Version++
	r.rows[cageID] = rb
	return nil
}

func (r *fakeRabbitRepo) ListRabbits(_ context.Context, _ *gorm.DB, f repo.RabbitFilter) ([]domain.Rabbit, error) {
	var out []domain.Rabbit
	for _, rb := range r.rows {
		if f.OccupiedOnly && rb.IsEmpty {
			continue
		}
		if f.Gender != "" && rb.Gender != f.Gender {
			continue
		}
		if f.BredOnly && rb.LastBreedingDate == nil {
			continue
		}
		out = append(out, rb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CageID < out[j].CageID })
	return out, nil
}

func (r *fakeRabbitRepo) CountRabbits(ctx context.Context, db *gorm.DB, f repo.RabbitFilter) (int64, error) {
	all, _ := r.ListRabbits(ctx, db, f)
	return int64(len(all)), nil
}

func (r *fakeRabbitRepo) ListRabbitsPage(ctx context.Context, db *gorm.DB, f repo.RabbitFilter, offset, limit int) ([]domain.Rabbit, error) {
	all, _ := r.ListRabbits(ctx, db, f)
	if offset >= len(all) {
		return []domain.Rabbit{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// ----- Helpers -----

var refNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func daysAgo(n int) *time.Time {
	t := refNow.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

func female(cage int, name string, bred *time.Time) domain.Rabbit {
	return domain.Rabbit{CageID: cage, Name: name, Gender: domain.GenderFemale, LastBreedingDate: bred}
}

func male(cage int, name string) domain.Rabbit {
	return domain.Rabbit{CageID: cage, Name: name, Gender: domain.GenderMale}
}
