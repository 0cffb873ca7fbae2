package session

import (
	"fmt"
	"sync"
)

// MileageType is the distance system saved on a user's profile.
type MileageType string

const (
	MileageMiles      MileageType = "miles"
	MileageKilometers MileageType = "kilometers"
)

// User is the profile returned by the backend. The session holds it read-only.
type User struct {
	ID          int64       `json:"user_id"`
	FullName    string      `json:"full_name"`
	Email       string      `json:"email"`
	MileageType MileageType `json:"mileage_type"`
	DarkMode    bool        `json:"dark_mode"`
}

// UsesMiles reports whether the profile prefers miles. Anything other than
// exactly "miles" is treated as kilometers.
func (u User) UsesMiles() bool {
	return u.MileageType == MileageMiles
}

// State is a copy of the session as seen by consumers.
type State struct {
	User            *User
	IsLoading       bool
	IsAuthenticated bool

	// Resolution counts landed resolutions. Two states with the same
	// non-zero Resolution describe the same resolution event.
	Resolution uint64

	// Failure is the error behind an unauthenticated resolution, kept for
	// display only. Access decisions must use IsAuthenticated.
	Failure error
}

// Ticket identifies one authentication attempt.
type Ticket uint64

// Store owns the session state. Only the resolve methods change it, and only
// for the most recent ticket.
type Store struct {
	mu       sync.Mutex
	state    State
	current  Ticket
	resolved bool
	subs     map[int]func(State)
	nextID   int
}

// NewStore returns a store in the initial loading state. The implicit first
// attempt is available from Current.
func NewStore() *Store {
	return &Store{
		state:   State{IsLoading: true},
		current: 1,
		subs:    make(map[int]func(State)),
	}
}

// State returns the current session state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// Current returns the ticket of the newest attempt.
func (s *Store) Current() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Begin starts a new attempt, returning the session to loading. Every earlier
// ticket becomes stale.
func (s *Store) Begin() Ticket {
	s.mu.Lock()
	s.current++
	s.resolved = false
	ticket := s.current
	wasLoading := s.state.IsLoading
	s.state.IsLoading = true
	s.state.Failure = nil
	state := cloneState(s.state)
	subs := s.subscribers()
	s.mu.Unlock()

	if !wasLoading {
		notify(subs, state)
	}
	return ticket
}

// ResolveAuthenticated lands a successful attempt. It reports whether the
// state changed.
func (s *Store) ResolveAuthenticated(t Ticket, user User) bool {
	u := user
	return s.resolve(t, State{User: &u, IsAuthenticated: true})
}

// ResolveUnauthenticated lands an attempt that found no user.
func (s *Store) ResolveUnauthenticated(t Ticket) bool {
	return s.resolve(t, State{})
}

// ResolveFailed lands an attempt that errored. The failure is absorbed into
// the unauthenticated state.
func (s *Store) ResolveFailed(t Ticket, err error) bool {
	if err == nil {
		err = fmt.Errorf("authentication failed")
	}
	return s.resolve(t, State{Failure: err})
}

// Subscribe registers fn for every subsequent state change. Subscribers run
// synchronously, in registration order, before the mutating call returns.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) resolve(t Ticket, next State) bool {
	s.mu.Lock()
	if t != s.current || s.resolved {
		s.mu.Unlock()
		return false
	}
	s.resolved = true
	next.IsLoading = false
	next.Resolution = s.state.Resolution + 1
	s.state = next
	state := cloneState(s.state)
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, state)
	return true
}

// subscribers must be called with mu held.
func (s *Store) subscribers() []func(State) {
	out := make([]func(State), 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if sub, ok := s.subs[id]; ok {
			out = append(out, sub)
		}
	}
	return out
}

func notify(subs []func(State), state State) {
	for _, sub := range subs {
		sub(cloneState(state))
	}
}

func cloneState(st State) State {
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}
