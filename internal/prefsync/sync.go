// Package prefsync copies a signed-in user's saved display preferences into
// the preference store, once per session resolution.
package prefsync

import (
	"io"
	"log/slog"
	"sync"

	"github.com/five82/odo/internal/prefs"
	"github.com/five82/odo/internal/session"
)

// Synchronizer bridges session.Store to prefs.Store.
type Synchronizer struct {
	prefs  *prefs.Store
	logger *slog.Logger

	mu         sync.Mutex
	lastSynced uint64
	cancel     func()
}

// New wires a Synchronizer to both stores and applies the current session
// state immediately, in case it already resolved.
func New(p *prefs.Store, sessions *session.Store, logger *slog.Logger) *Synchronizer {
	if p == nil {
		panic("prefsync: nil preference store")
	}
	if sessions == nil {
		panic("prefsync: nil session store")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Synchronizer{prefs: p, logger: logger}
	s.cancel = sessions.Subscribe(func(st session.State) { s.Sync(st) })
	s.Sync(sessions.State())
	return s
}

// Sync applies the user's preferences if st is a resolution that has not been
// synchronized yet. It reports whether preferences were written.
func (s *Synchronizer) Sync(st session.State) bool {
	if st.IsLoading || st.User == nil || st.Resolution == 0 {
		return false
	}

	s.mu.Lock()
	if st.Resolution == s.lastSynced {
		s.mu.Unlock()
		return false
	}
	s.lastSynced = st.Resolution
	s.mu.Unlock()

	user := *st.User
	s.logger.Info("applying profile preferences",
		"user_id", user.ID,
		"dark_mode", user.DarkMode,
		"mileage_type", string(user.MileageType),
		"resolution", st.Resolution,
	)
	s.prefs.InitializeDarkMode(user.DarkMode)
	s.prefs.InitializeMileageUnit(user.UsesMiles())
	return true
}

// LastSynced returns the resolution marker of the last applied sync, or zero.
func (s *Synchronizer) LastSynced() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSynced
}

// Close detaches from the session store.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
