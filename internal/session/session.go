// Package session keeps per-user conversation state for the chat front-end.
//
// A Session is an explicit state machine: every change goes through Apply
// with an Event, and the transition table rejects anything else. Sessions
// expire after a TTL of inactivity; an expired or missing session reads as
// idle. Stores are provided for process memory and Redis.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tbourn/go-rabbitry/internal/domain"
)

// DefaultTTL is how long an untouched session survives.
const DefaultTTL = 30 * time.Minute

// State is the position in a multi-step flow.
type State string

const (
	StateIdle                   State = "idle"
	StateAwaitingCageID         State = "awaiting_cage_id"
	StateAwaitingGender         State = "awaiting_gender"
	StateAwaitingName           State = "awaiting_name"
	StateAwaitingBreedSelection State = "awaiting_breed_selection"
)

// Event drives a transition.
type Event string

const (
	EventStartAdd      Event = "start_add"
	EventCageEntered   Event = "cage_entered"
	EventGenderChosen  Event = "gender_chosen"
	EventNameEntered   Event = "name_entered"
	EventStartBreed    Event = "start_breed"
	EventPartnerPicked Event = "partner_picked"
	EventCancel        Event = "cancel"
)

// ErrInvalidTransition is returned by Apply for an event the current state
// does not accept.
var ErrInvalidTransition = errors.New("invalid session transition")

// transitions maps state -> event -> next state.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventStartAdd:   StateAwaitingCageID,
		EventStartBreed: StateAwaitingBreedSelection,
		EventCancel:     StateIdle,
	},
	StateAwaitingCageID: {
		EventCageEntered: StateAwaitingGender,
		EventStartAdd:    StateAwaitingCageID,
		EventStartBreed:  StateAwaitingBreedSelection,
		EventCancel:      StateIdle,
	},
	StateAwaitingGender: {
		EventGenderChosen: StateAwaitingName,
		EventStartAdd:     StateAwaitingCageID,
		EventStartBreed:   StateAwaitingBreedSelection,
		EventCancel:       StateIdle,
	},
	StateAwaitingName: {
		EventNameEntered: StateIdle,
		EventStartAdd:    StateAwaitingCageID,
		EventStartBreed:  StateAwaitingBreedSelection,
		EventCancel:      StateIdle,
	},
	StateAwaitingBreedSelection: {
		EventPartnerPicked: StateIdle,
		EventStartAdd:      StateAwaitingCageID,
		EventStartBreed:    StateAwaitingBreedSelection,
		EventCancel:        StateIdle,
	},
}

// Next returns the state reached from s on e.
func Next(s State, e Event) (State, error) {
	if next, ok := transitions[s][e]; ok {
		return next, nil
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
}

// Session is one user's conversation state. Fields other than State are
// the data collected so far in the current flow.
type Session struct {
	State     State         `json:"state"`
	CageID    int           `json:"cage_id,omitempty"`
	Gender    domain.Gender `json:"gender,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// New returns an idle session.
func New() *Session { return &Session{State: StateIdle} }

// Apply moves the session along e. Entering idle or starting a new flow
// drops the collected data.
func (s *Session) Apply(e Event) error {
	next, err := Next(s.State, e)
	if err != nil {
		return err
	}
	if next == StateIdle || e == EventStartAdd || e == EventStartBreed {
		s.CageID = 0
		s.Gender = ""
	}
	s.State = next
	return nil
}

// Idle reports whether no flow is in progress.
func (s *Session) Idle() bool { return s == nil || s.State == StateIdle || s.State == "" }

// Store persists sessions keyed by user id. Get never returns a nil session
// without an error: missing and expired sessions read as New().
type Store interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Put(ctx context.Context, userID int64, s *Session) error
	Delete(ctx context.Context, userID int64) error
}
