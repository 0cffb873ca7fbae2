// Package prefs owns the app-wide display preferences: dark mode and the
// distance/volume units used when rendering vehicle data.
package prefs

import "sync"

// DistanceUnit is the unit used to display odometer readings.
type DistanceUnit string

// VolumeUnit is the unit used to display fuel volumes.
type VolumeUnit string

// StatusBarStyle is the foreground style for chrome drawn over the background.
type StatusBarStyle string

const (
	Kilometers DistanceUnit = "km"
	Miles      DistanceUnit = "mi"

	Liters  VolumeUnit = "L"
	Gallons VolumeUnit = "gal"

	StatusBarLight StatusBarStyle = "light"
	StatusBarDark  StatusBarStyle = "dark"
)

const (
	BackgroundDark  = "#1F2937"
	BackgroundLight = "#F9FAFB"

	defaultCurrency       = "PHP"
	defaultCurrencySymbol = "₱"
)

// Origin records why a preference changed.
type Origin string

const (
	OriginUser Origin = "user"
	OriginSync Origin = "sync"
)

// State is a copy of the current preferences.
type State struct {
	DarkMode        bool
	DistanceUnit    DistanceUnit
	VolumeUnit      VolumeUnit
	StatusBarStyle  StatusBarStyle
	BackgroundColor string
	Currency        string
	CurrencySymbol  string
}

// UsesMiles reports whether imperial units are selected.
func (s State) UsesMiles() bool {
	return s.DistanceUnit == Miles
}

// Change is delivered to subscribers after every mutation.
type Change struct {
	State  State
	Origin Origin
}

// Store holds the preference state. All mutations notify subscribers
// synchronously before returning.
type Store struct {
	mu     sync.Mutex
	state  State
	subs   map[int]func(Change)
	nextID int
}

// NewStore creates a store seeded from the device color scheme. The user's
// saved preference only takes over through InitializeDarkMode.
func NewStore(systemDark bool) *Store {
	s := &Store{subs: make(map[int]func(Change))}
	s.state = State{
		DistanceUnit:   Kilometers,
		VolumeUnit:     Liters,
		Currency:       defaultCurrency,
		CurrencySymbol: defaultCurrencySymbol,
	}
	applyDarkMode(&s.state, systemDark)
	return s
}

// State returns the current preferences.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ToggleDarkMode flips dark mode.
func (s *Store) ToggleDarkMode() {
	s.mutate(OriginUser, func(st *State) {
		applyDarkMode(st, !st.DarkMode)
	})
}

// SetDarkMode sets dark mode to an absolute value.
func (s *Store) SetDarkMode(enabled bool) {
	s.mutate(OriginUser, func(st *State) {
		applyDarkMode(st, enabled)
	})
}

// InitializeDarkMode applies the dark mode stored on the user's profile.
func (s *Store) InitializeDarkMode(enabled bool) {
	s.mutate(OriginSync, func(st *State) {
		applyDarkMode(st, enabled)
	})
}

// SetMileageUnit selects miles and gallons, or kilometers and liters.
func (s *Store) SetMileageUnit(useMiles bool) {
	s.mutate(OriginUser, func(st *State) {
		applyMileage(st, useMiles)
	})
}

// InitializeMileageUnit is SetMileageUnit tagged as a profile sync.
func (s *Store) InitializeMileageUnit(useMiles bool) {
	s.mutate(OriginSync, func(st *State) {
		applyMileage(st, useMiles)
	})
}

// Subscribe registers fn for every subsequent change. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func(Change)) func() {
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

func (s *Store) mutate(origin Origin, fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	change := Change{State: s.state, Origin: origin}
	subs := make([]func(Change), 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if sub, ok := s.subs[id]; ok {
			subs = append(subs, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(change)
	}
}

func applyDarkMode(st *State, enabled bool) {
	st.DarkMode = enabled
	if enabled {
		st.StatusBarStyle = StatusBarLight
		st.BackgroundColor = BackgroundDark
	} else {
		st.StatusBarStyle = StatusBarDark
		st.BackgroundColor = BackgroundLight
	}
}

func applyMileage(st *State, useMiles bool) {
	if useMiles {
		st.DistanceUnit = Miles
		st.VolumeUnit = Gallons
		return
	}
	st.DistanceUnit = Kilometers
	st.VolumeUnit = Liters
}
