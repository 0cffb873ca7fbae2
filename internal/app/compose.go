package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/five82/odo/internal/api"
	"github.com/five82/odo/internal/auth"
	"github.com/five82/odo/internal/config"
	"github.com/five82/odo/internal/prefs"
	"github.com/five82/odo/internal/prefsync"
	"github.com/five82/odo/internal/session"
	"github.com/five82/odo/internal/state"
	"github.com/five82/odo/internal/ui"
)

// Deps are the external collaborators of a composed application.
type Deps struct {
	Context    context.Context
	Config     config.Config
	Backend    api.Backend
	SystemDark bool
	Logger     *slog.Logger
}

// Root holds every layer of the running application.
type Root struct {
	Prefs    *prefs.Store
	Sessions *session.Store
	Sync     *prefsync.Synchronizer
	Data     *state.Store
	Poller   *Poller
	Auth     *auth.Service
	UI       ui.Model

	unwatchPrefs func()
}

// Compose builds the layers outermost first: preferences, session, the
// preference synchronizer, the garage data, then the UI (frame, navigation
// guard, router). The synchronizer subscribes to the session store before the
// guard does, so preferences are applied before access is decided.
func Compose(deps Deps) *Root {
	if deps.Backend == nil {
		panic("app: nil backend")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx := deps.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := deps.Config

	authSvc := auth.NewService(deps.Backend, auth.Options{
		CredentialsPath: cfg.CredentialsPath,
		Logger:          logger.With("component", "auth"),
	})

	root := &Root{Auth: authSvc}
	root.Prefs = prefs.NewStore(deps.SystemDark)
	prefsLog := logger.With("component", "prefs")
	root.unwatchPrefs = root.Prefs.Subscribe(func(c prefs.Change) {
		prefsLog.Debug("preferences changed",
			"origin", string(c.Origin),
			"dark_mode", c.State.DarkMode,
			"distance_unit", string(c.State.DistanceUnit),
		)
	})
	root.Sessions = session.NewStore()
	root.Sync = prefsync.New(root.Prefs, root.Sessions, logger.With("component", "prefsync"))
	root.Data = &state.Store{}
	root.Poller = NewPoller(deps.Backend, authSvc.Token, root.Data, PollerOptions{
		Interval:     time.Duration(cfg.PollSeconds) * time.Second,
		UpcomingDays: cfg.UpcomingDays,
		Logger:       logger.With("component", "poller"),
	})
	root.UI = ui.New(ui.Deps{
		Context:  ctx,
		Prefs:    root.Prefs,
		Sessions: root.Sessions,
		Data:     root.Data,
		Feed:     root.Poller,
		Auth:     authSvc,
		Logger:   logger.With("component", "ui"),
	})
	return root
}

// Close stops the poller and detaches subscribers.
func (r *Root) Close() {
	r.Poller.Stop()
	r.UI.Close()
	r.Sync.Close()
	r.unwatchPrefs()
}
