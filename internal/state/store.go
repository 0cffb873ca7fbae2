package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/odo/internal/api"
)

// Snapshot represents the latest garage data available to the UI.
type Snapshot struct {
	Vehicles            []api.Vehicle
	Reminders           []api.Reminder
	Upcoming            []api.Reminder
	Overdue             []api.Reminder
	HasData             bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// Garage is one successful fetch of the user's records.
type Garage struct {
	Vehicles  []api.Vehicle
	Reminders []api.Reminder
	Upcoming  []api.Reminder
	Overdue   []api.Reminder
}

// History is the service and fuel record of one vehicle.
type History struct {
	VehicleID   int64
	Maintenance []api.MaintenanceLog
	Fuel        []api.FuelLog
	FetchedAt   time.Time
}

// MaintenanceCost sums the cost of every service.
func (h History) MaintenanceCost() float64 {
	var total float64
	for _, m := range h.Maintenance {
		total += m.Cost
	}
	return total
}

// FuelTotals sums liters and cost over fill-ups. Charging sessions (kWh)
// count toward cost only.
func (h History) FuelTotals() (liters, cost float64) {
	for _, f := range h.Fuel {
		if f.Liters != nil {
			liters += *f.Liters
		}
		cost += f.Cost
	}
	return liters, cost
}

// LastService returns the most recent dated maintenance entry.
func (h History) LastService() (api.MaintenanceLog, bool) {
	var (
		last  api.MaintenanceLog
		found bool
	)
	for _, m := range h.Maintenance {
		when := m.When()
		if when.IsZero() {
			continue
		}
		if !found || when.After(last.When()) {
			last, found = m, true
		}
	}
	return last, found
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Vehicle returns the vehicle with id, if loaded.
func (s Snapshot) Vehicle(id int64) (api.Vehicle, bool) {
	for _, v := range s.Vehicles {
		if v.ID == id {
			return v, true
		}
	}
	return api.Vehicle{}, false
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored snapshot. When err is non-nil the previous data is
// kept but the error is recorded for visibility.
func (s *Store) Update(g *Garage, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	if g != nil {
		s.snapshot.Vehicles = cloneSlice(g.Vehicles)
		s.snapshot.Reminders = cloneSlice(g.Reminders)
		s.snapshot.Upcoming = cloneSlice(g.Upcoming)
		s.snapshot.Overdue = cloneSlice(g.Overdue)
		s.snapshot.HasData = true
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Clear drops all data, used when the session ends.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = Snapshot{}
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Vehicles = cloneSlice(s.snapshot.Vehicles)
	snap.Reminders = cloneSlice(s.snapshot.Reminders)
	snap.Upcoming = cloneSlice(s.snapshot.Upcoming)
	snap.Overdue = cloneSlice(s.snapshot.Overdue)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneSlice[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
