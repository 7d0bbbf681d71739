package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newBreeding(r *fakeRabbitRepo) *BreedingService {
	s := NewBreedingService(nil, r)
	s.Now = fixedClock(refNow)
	return s
}

func TestAttemptBreed_SameGender_NoWrites(t *testing.T) {
	r := newFakeRabbitRepo(male(1, "A"), male(2, "B"))
	_, err := newBreeding(r).AttemptBreed(context.Background(), 1, 2)
	if !errors.Is(err, ErrSameGender) {
		t.Fatalf("expected ErrSameGender, got %v", err)
	}
	if r.writes != 0 {
		t.Fatalf("writes = %d; want 0", r.writes)
	}
}

func TestAttemptBreed_EmptyCage_NoWrites(t *testing.T) {
	r := newFakeRabbitRepo(female(3, "Clover", nil))
	_, err := newBreeding(r).AttemptBreed(context.Background(), 3, 7)
	if !errors.Is(err, ErrCageEmpty) {
		t.Fatalf("expected ErrCageEmpty, got %v", err)
	}
	if r.writes != 0 {
		t.Fatalf("writes = %d; want 0", r.writes)
	}
}

func TestAttemptBreed_NotReady_OneDayRemaining(t *testing.T) {
	r := newFakeRabbitRepo(female(3, "Clover", daysAgo(29)), male(4, "Thumper"))
	_, err := newBreeding(r).AttemptBreed(context.Background(), 3, 4)

	var nr *NotReadyError
	if !errors.As(err, &nr) {
		t.Fatalf("expected *NotReadyError, got %v", err)
	}
	if nr.DaysRemaining != 1 {
		t.Fatalf("DaysRemaining = %d; want 1", nr.DaysRemaining)
	}
	if got := err.Error(); got != "female is not ready: 1 day(s) remaining." {
		t.Fatalf("message = %q", got)
	}
	if r.writes != 0 {
		t.Fatalf("writes = %d; want 0", r.writes)
	}
}

func TestAttemptBreed_Ready_WritesOnlyFemale(t *testing.T) {
	r := newFakeRabbitRepo(female(3, "Clover", daysAgo(30)), male(4, "Thumper"))
	// male passed first; coordinator must still pick the female
	out, err := newBreeding(r).AttemptBreed(context.Background(), 4, 3)
	if err != nil {
		t.Fatalf("AttemptBreed: %v", err)
	}
	if r.writes != 1 {
		t.Fatalf("writes = %d; want 1", r.writes)
	}
	if out.Female.CageID != 3 || out.Male.CageID != 4 || !out.BredAt.Equal(refNow) {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if d := r.rows[3].LastBreedingDate; d == nil || !d.Equal(refNow) {
		t.Fatalf("cage 3 date = %v; want %v", d, refNow)
	}
	if r.rows[4].LastBreedingDate != nil || r.rows[4].Version != 0 {
		t.Fatalf("cage 4 mutated: %+v", r.rows[4])
	}
}

func TestAttemptBreed_NeverBredFemale_Ready(t *testing.T) {
	r := newFakeRabbitRepo(female(1, "A", nil), male(2, "B"))
	if _, err := newBreeding(r).AttemptBreed(context.Background(), 1, 2); err != nil {
		t.Fatalf("AttemptBreed: %v", err)
	}
}

func TestAttemptBreed_UsesCallTimeClock(t *testing.T) {
	r := newFakeRabbitRepo(female(3, "Clover", daysAgo(29)), male(4, "Thumper"))
	s := newBreeding(r)

	if _, err := s.AttemptBreed(context.Background(), 3, 4); err == nil {
		t.Fatalf("expected rejection at day 29")
	}
	later := refNow.Add(24 * time.Hour)
	s.Now = fixedClock(later)
	if _, err := s.AttemptBreed(context.Background(), 3, 4); err != nil {
		t.Fatalf("expected success a day later, got %v", err)
	}
	if d := r.rows[3].LastBreedingDate; d == nil || !d.Equal(later) {
		t.Fatalf("date = %v; want %v", d, later)
	}
}

func TestAttemptBreed_Stale_ConcurrentUpdate(t *testing.T) {
	r := newFakeRabbitRepo(female(3, "Clover", nil), male(4, "Thumper"))
	r.staleOnce = true
	_, err := newBreeding(r).AttemptBreed(context.Background(), 3, 4)
	if !errors.Is(err, ErrConcurrentUpdate) {
		t.Fatalf("expected ErrConcurrentUpdate, got %v", err)
	}
}

func TestAttemptBreed_StoreFailure_Wrapped(t *testing.T) {
	boom := errors.New("disk on fire")
	r := newFakeRabbitRepo()
	r.getErr = boom
	_, err := newBreeding(r).AttemptBreed(context.Background(), 1, 2)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if IsValidation(err) {
		t.Fatalf("store failure must not be a validation error")
	}
}

func TestAttemptBreed_InvalidCage(t *testing.T) {
	r := newFakeRabbitRepo()
	if _, err := newBreeding(r).AttemptBreed(context.Background(), 0, 2); !errors.Is(err, ErrInvalidCage) {
		t.Fatalf("expected ErrInvalidCage, got %v", err)
	}
}

func TestPreview(t *testing.T) {
	r := newFakeRabbitRepo(female(3, "Clover", daysAgo(12)), male(4, "Thumper"))
	p, err := newBreeding(r).Preview(context.Background(), 4, 3)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if p.Ready || p.DaysPassed != 12 || p.DaysRemaining != 18 || p.Female.CageID != 3 {
		t.Fatalf("unexpected preview: %+v", p)
	}
	if r.writes != 0 {
		t.Fatalf("preview wrote %d times", r.writes)
	}

	r = newFakeRabbitRepo(female(1, "A", nil), male(2, "B"))
	p, _ = newBreeding(r).Preview(context.Background(), 1, 2)
	if !p.Ready || p.DaysPassed != -1 || p.DaysRemaining != 0 {
		t.Fatalf("never-bred preview: %+v", p)
	}
}

func TestBreedResult(t *testing.T) {
	cases := map[string]error{
		"bred":      nil,
		"not_ready": &NotReadyError{DaysRemaining: 2},
		"conflict":  ErrConcurrentUpdate,
		"rejected":  ErrSameGender,
		"error":     errors.New("x"),
	}
	for want, err := range cases {
		if got := breedResult(err); got != want {
			t.Errorf("breedResult(%v) = %q; want %q", err, got, want)
		}
	}
}
