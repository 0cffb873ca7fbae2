package ui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/odo/internal/api"
	"github.com/five82/odo/internal/auth"
	"github.com/five82/odo/internal/guard"
	"github.com/five82/odo/internal/prefs"
	"github.com/five82/odo/internal/session"
	"github.com/five82/odo/internal/state"
)

// AuthService is the identity provider as seen by the screens.
type AuthService interface {
	Restore(ctx context.Context) auth.Outcome
	SignIn(ctx context.Context, email, password string) auth.Outcome
	SignUp(ctx context.Context, req api.RegisterRequest) auth.Outcome
	SignOut(ctx context.Context) auth.Outcome
	Expired() bool
	UpdatePreferences(ctx context.Context, update api.UserUpdate) (session.User, error)
}

// DataFeed keeps the garage snapshot fresh while access is granted.
type DataFeed interface {
	Start(ctx context.Context)
	Stop()
	Running() bool
	Refresh(ctx context.Context) error
	History(ctx context.Context, vehicleID int64) (state.History, error)
}

// Deps are the layers the UI is composed inside. All stores are required.
type Deps struct {
	Context  context.Context
	Prefs    *prefs.Store
	Sessions *session.Store
	Data     *state.Store
	Feed     DataFeed
	Auth     AuthService
	Logger   *slog.Logger
	Tick     time.Duration
	Now      func() time.Time
}

type authAction string

const (
	actionRestore authAction = "restore"
	actionSignIn  authAction = "sign-in"
	actionSignUp  authAction = "sign-up"
	actionSignOut authAction = "sign-out"
)

const (
	labelLoading     = "Loading..."
	labelRedirecting = "Redirecting to login..."
)

// Model is the root application state for Bubble Tea.
type Model struct {
	// Collaborators
	ctx      context.Context
	prefs    *prefs.Store
	sessions *session.Store
	data     *state.Store
	feed     DataFeed
	auth     AuthService
	logger   *slog.Logger
	tick     time.Duration
	now      func() time.Time

	// Composition, outermost first
	frame       frame
	guard       *guard.Guard
	router      *router
	unsubscribe func()

	// UI state
	keys     keyMap
	spinner  spinner.Model
	access   guard.Status
	width    int
	height   int
	showHelp bool
	notice   string
	failed   bool // notice describes an error

	// Screen state
	snapshot state.Snapshot
	selected int
	history  *state.History
	loading  int64 // vehicle whose history is being fetched
	saveSeq  uint64
	login    loginForm
}

// New composes the frame, the navigation guard and the router on top of the
// given stores. The guard subscribes to the session store here, so the
// preference synchronizer must already be attached for it to run first.
func New(deps Deps) Model {
	if deps.Prefs == nil {
		panic("ui: nil preference store")
	}
	if deps.Sessions == nil {
		panic("ui: nil session store")
	}
	if deps.Data == nil {
		panic("ui: nil data store")
	}
	if deps.Feed == nil {
		panic("ui: nil data feed")
	}
	if deps.Auth == nil {
		panic("ui: nil auth service")
	}

	ctx := deps.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	tick := deps.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	f := newFrame(deps.Prefs)
	r := newRouter(RouteDashboard)
	g := guard.New(guard.LoginRoute, r)
	unsubscribe := deps.Sessions.Subscribe(func(st session.State) {
		g.Observe(st)
	})
	g.Observe(deps.Sessions.State())

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return Model{
		ctx:         ctx,
		prefs:       deps.Prefs,
		sessions:    deps.Sessions,
		data:        deps.Data,
		feed:        deps.Feed,
		auth:        deps.Auth,
		logger:      logger,
		tick:        tick,
		now:         now,
		frame:       f,
		guard:       g,
		router:      r,
		unsubscribe: unsubscribe,
		keys:        DefaultKeyMap(),
		spinner:     sp,
		access:      guard.Pending,
		login:       newLoginForm(),
	}
}

// Close detaches the guard from the session store.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Access returns the guard's current decision.
func (m Model) Access() guard.Status {
	return m.guard.Status()
}

// Route returns the screen currently shown.
func (m Model) Route() Route {
	return m.router.Current()
}

// Init implements tea.Model. It starts the restore attempt for the session
// store's implicit first ticket.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tickCmd(m.tick),
		m.authCmd(m.sessions.Current(), actionRestore, m.auth.Restore),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		return m.handleSnapshot(state.Snapshot(msg))

	case authResultMsg:
		return m.handleAuthResult(msg)

	case prefsSavedMsg:
		return m.handlePrefsSaved(msg)

	case historyMsg:
		return m.handleHistory(msg)

	case refreshDoneMsg:
		if msg.resolution != m.sessions.State().Resolution {
			return m, nil
		}
		if msg.err != nil {
			m.setNotice("Refresh failed: "+api.Message(msg.err), true)
		}
		return m, fetchSnapshotCmd(m.data)
	}

	// Cursor blinks and similar belong to the focused input.
	if m.router.Current() == RouteLogin {
		var cmd tea.Cmd
		m.login, cmd = m.login.update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var body string
	if m.showHelp {
		body = m.renderHelp()
	} else {
		body = guard.Gate(m.guard.Status(),
			func() string { return m.renderInterstitial(labelLoading) },
			m.renderRoute,
			m.renderRoute,
		)
	}
	return m.frame.render(m.width, m.height, body)
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.guard.Status() == guard.Pending {
		return m, nil
	}

	if m.router.Current() == RouteLogin {
		return m.handleLoginKey(msg)
	}

	if m.guard.Status() != guard.Granted {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		m.router.cycle(1)
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.router.cycle(-1)
		return m, nil
	case key.Matches(msg, m.keys.ViewDashboard):
		m.router.Navigate(RouteDashboard)
		return m, nil
	case key.Matches(msg, m.keys.ViewReminders):
		m.router.Navigate(RouteReminders)
		return m, nil
	case key.Matches(msg, m.keys.ViewSettings):
		m.router.Navigate(RouteSettings)
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.setNotice("Refreshing...", false)
		return m, m.refreshCmd()
	}

	switch m.router.Current() {
	case RouteDashboard:
		return m.handleDashboardKey(msg)
	case RouteSettings:
		return m.handleSettingsKey(msg)
	}
	return m, nil
}

// handleAuthResult lands an authentication outcome on the session store.
// Results for superseded attempts are dropped by the store.
func (m Model) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	if !msg.outcome.Resolve(m.sessions, msg.ticket) {
		m.logger.Debug("dropped stale auth result", "action", string(msg.action), "ticket", uint64(msg.ticket))
		return m, nil
	}
	if err := msg.outcome.Err; err != nil {
		m.logger.Warn("authentication failed", "action", string(msg.action), "error", err)
	}
	return m.applyAccess()
}

// applyAccess reacts to guard transitions: the data feed only runs while
// access is granted, and its snapshot is dropped as soon as it is not.
func (m Model) applyAccess() (tea.Model, tea.Cmd) {
	status := m.guard.Status()
	if status == m.access {
		return m, nil
	}
	m.logger.Info("access changed", "from", m.access.String(), "to", status.String())
	m.access = status

	switch status {
	case guard.Granted:
		m.feed.Start(m.ctx)
		if m.router.Current() == RouteLogin {
			m.router.Navigate(RouteDashboard)
		}
		m.login = newLoginForm()
		m.selected = 0
		m.notice = ""
		return m, fetchSnapshotCmd(m.data)
	case guard.Denied:
		m.feed.Stop()
		m.snapshot = state.Snapshot{}
		m.selected = 0
		m.history = nil
		m.loading = 0
		m.showHelp = false
	}
	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	next := tickCmd(m.tick)
	if m.access != guard.Granted {
		return m, next
	}
	if m.auth.Expired() {
		m.logger.Info("session token expired")
		mm, cmd := m.beginSignOut("Session expired, please sign in again")
		return mm, tea.Batch(next, cmd)
	}
	return m, tea.Batch(next, fetchSnapshotCmd(m.data))
}

func (m Model) handleSnapshot(snap state.Snapshot) (tea.Model, tea.Cmd) {
	if m.access != guard.Granted {
		return m, nil
	}
	m.snapshot = snap
	if n := len(snap.Vehicles); m.selected >= n {
		m.selected = max(n-1, 0)
	}
	if api.IsUnauthorized(snap.LastError) {
		m.logger.Warn("backend rejected session", "error", snap.LastError)
		return m.beginSignOut("Session ended, please sign in again")
	}
	return m, nil
}

// beginSignOut opens a new attempt that resolves unauthenticated.
func (m Model) beginSignOut(notice string) (tea.Model, tea.Cmd) {
	if m.sessions.State().IsLoading {
		return m, nil
	}
	t := m.sessions.Begin()
	m.setNotice(notice, false)
	return m, m.authCmd(t, actionSignOut, m.auth.SignOut)
}

func (m *Model) setNotice(text string, failed bool) {
	m.notice = text
	m.failed = failed
}

// renderRoute draws the current screen. Protected screens go through the
// same guard again, so a screen never shows while access is not granted.
func (m Model) renderRoute() string {
	route := m.router.Current()
	if !route.protected() {
		return m.renderLogin()
	}

	var content func() string
	switch route {
	case RouteReminders:
		content = m.renderReminders
	case RouteSettings:
		content = m.renderSettings
	default:
		content = m.renderDashboard
	}

	var b strings.Builder
	b.WriteString(m.renderHeader(route))
	b.WriteString("\n\n")
	b.WriteString(m.protected(content))
	b.WriteString("\n\n")
	b.WriteString(m.renderCommandBar(route))
	return b.String()
}

// protected wraps a screen: a spinner while pending, a redirect notice while
// denied and the screen itself once granted.
func (m Model) protected(content func() string) string {
	return guard.Gate(m.guard.Status(),
		func() string { return m.renderInterstitial(labelLoading) },
		func() string { return m.renderInterstitial(labelRedirecting) },
		content,
	)
}

// renderInterstitial renders a spinner with a label.
func (m Model) renderInterstitial(label string) string {
	styles := m.frame.theme().Styles()
	return m.spinner.View() + styles.Background.Render(" ") + styles.MutedText.Render(label)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type authResultMsg struct {
	ticket  session.Ticket
	action  authAction
	outcome auth.Outcome
}

type refreshDoneMsg struct {
	resolution uint64
	err        error
}

type historyMsg struct {
	vehicleID  int64
	resolution uint64
	history    state.History
	err        error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// authCmd runs call off the update loop and reports back with its ticket.
func (m Model) authCmd(t session.Ticket, action authAction, call func(context.Context) auth.Outcome) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()
		return authResultMsg{ticket: t, action: action, outcome: call(ctx)}
	}
}

// Results of refreshCmd and historyCmd carry the session resolution they
// were started in, so a reply that outlives its session is dropped.

func (m Model) refreshCmd() tea.Cmd {
	ctx, feed := m.ctx, m.feed
	resolution := m.sessions.State().Resolution
	return func() tea.Msg {
		return refreshDoneMsg{resolution: resolution, err: feed.Refresh(ctx)}
	}
}

func (m Model) historyCmd(vehicleID int64) tea.Cmd {
	ctx, feed := m.ctx, m.feed
	resolution := m.sessions.State().Resolution
	return func() tea.Msg {
		h, err := feed.History(ctx, vehicleID)
		return historyMsg{vehicleID: vehicleID, resolution: resolution, history: h, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
