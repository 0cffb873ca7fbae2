package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/odo/internal/api"
	"github.com/five82/odo/internal/auth"
	"github.com/five82/odo/internal/guard"
	"github.com/five82/odo/internal/prefs"
	"github.com/five82/odo/internal/prefsync"
	"github.com/five82/odo/internal/session"
	"github.com/five82/odo/internal/state"
)

type fakeAuth struct {
	mu        sync.Mutex
	user      *session.User
	signInErr error
	updateErr error
	expired   bool
	signIns   []string
	signOuts  int
	updates   []api.UserUpdate
}

func (f *fakeAuth) Restore(context.Context) auth.Outcome {
	return auth.Outcome{User: f.user}
}

func (f *fakeAuth) SignIn(_ context.Context, email, _ string) auth.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signIns = append(f.signIns, email)
	if f.signInErr != nil {
		return auth.Outcome{Err: f.signInErr}
	}
	return auth.Outcome{User: f.user}
}

func (f *fakeAuth) SignUp(ctx context.Context, req api.RegisterRequest) auth.Outcome {
	return f.SignIn(ctx, req.Email, req.Password)
}

func (f *fakeAuth) SignOut(context.Context) auth.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	return auth.Outcome{}
}

func (f *fakeAuth) Expired() bool {
	return f.expired
}

func (f *fakeAuth) UpdatePreferences(_ context.Context, update api.UserUpdate) (session.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, update)
	if f.updateErr != nil {
		return session.User{}, f.updateErr
	}
	return *f.user, nil
}

type fakeFeed struct {
	starts     int
	stops      int
	running    bool
	history    state.History
	historyErr error
	historyFor []int64
}

func (f *fakeFeed) Start(context.Context)          { f.starts++; f.running = true }
func (f *fakeFeed) Stop()                          { f.stops++; f.running = false }
func (f *fakeFeed) Running() bool                  { return f.running }
func (f *fakeFeed) Refresh(context.Context) error { return nil }

func (f *fakeFeed) History(_ context.Context, vehicleID int64) (state.History, error) {
	f.historyFor = append(f.historyFor, vehicleID)
	if f.historyErr != nil {
		return state.History{}, f.historyErr
	}
	h := f.history
	h.VehicleID = vehicleID
	return h, nil
}

type harness struct {
	prefs    *prefs.Store
	sessions *session.Store
	sync     *prefsync.Synchronizer
	data     *state.Store
	feed     *fakeFeed
	auth     *fakeAuth
	model    Model
}

func newHarness(t *testing.T, systemDark bool, user *session.User) *harness {
	t.Helper()
	h := &harness{
		prefs:    prefs.NewStore(systemDark),
		sessions: session.NewStore(),
		data:     &state.Store{},
		feed:     &fakeFeed{},
		auth:     &fakeAuth{user: user},
	}
	h.sync = prefsync.New(h.prefs, h.sessions, nil)
	h.model = New(Deps{
		Prefs:    h.prefs,
		Sessions: h.sessions,
		Data:     h.data,
		Feed:     h.feed,
		Auth:     h.auth,
		Now:      func() time.Time { return time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC) },
	})
	t.Cleanup(func() {
		h.model.Close()
		h.sync.Close()
	})
	return h
}

func (h *harness) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := h.model.Update(msg)
	m, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	h.model = m
	return cmd
}

// restore lands the boot attempt as if Init's restore command had returned.
func (h *harness) restore(t *testing.T, outcome auth.Outcome) {
	t.Helper()
	h.send(t, authResultMsg{ticket: h.sessions.Current(), action: actionRestore, outcome: outcome})
}

// run executes cmd and feeds its message back, the way the runtime would.
func (h *harness) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	h.send(t, cmd())
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testUser(dark bool, mileage session.MileageType) *session.User {
	return &session.User{ID: 42, FullName: "Ana Cruz", Email: "ana@example.com", DarkMode: dark, MileageType: mileage}
}

func TestBoot_PendingShowsLoading(t *testing.T) {
	h := newHarness(t, false, nil)

	if got := h.model.Access(); got != guard.Pending {
		t.Fatalf("Access = %v, want pending", got)
	}
	if view := h.model.View(); !strings.Contains(view, labelLoading) {
		t.Fatalf("View = %q, want loading interstitial", view)
	}

	// Keys other than ctrl+c do nothing before the first decision.
	h.send(t, keyRunes("3"))
	if h.model.Route() != RouteDashboard {
		t.Fatalf("Route = %s, want dashboard", h.model.Route())
	}
}

func TestRestore_GrantedSyncsOnceAndStartsFeed(t *testing.T) {
	user := testUser(false, session.MileageMiles)
	h := newHarness(t, true, user)

	h.restore(t, auth.Outcome{User: user})

	if h.model.Access() != guard.Granted {
		t.Fatalf("Access = %v, want granted", h.model.Access())
	}
	if h.model.Route() != RouteDashboard {
		t.Fatalf("Route = %s, want dashboard", h.model.Route())
	}
	if h.feed.starts != 1 || !h.feed.running {
		t.Fatalf("feed starts = %d running = %v, want started once", h.feed.starts, h.feed.running)
	}
	p := h.prefs.State()
	if p.DarkMode {
		t.Fatal("DarkMode = true, want profile value false over dark system scheme")
	}
	if p.BackgroundColor != prefs.BackgroundLight || p.StatusBarStyle != prefs.StatusBarDark {
		t.Fatalf("derived = %s/%s, want light palette", p.BackgroundColor, p.StatusBarStyle)
	}
	if !p.UsesMiles() {
		t.Fatal("units = km, want miles from profile")
	}
	if h.sync.LastSynced() != h.sessions.State().Resolution {
		t.Fatalf("LastSynced = %d, want %d", h.sync.LastSynced(), h.sessions.State().Resolution)
	}
}

func TestRestore_NoUserRedirectsOnce(t *testing.T) {
	h := newHarness(t, false, nil)

	h.restore(t, auth.Outcome{})
	if h.model.Access() != guard.Denied {
		t.Fatalf("Access = %v, want denied", h.model.Access())
	}
	if h.model.Route() != RouteLogin {
		t.Fatalf("Route = %s, want login", h.model.Route())
	}
	if got := h.model.router.Redirects(); got != 1 {
		t.Fatalf("redirects = %d, want 1", got)
	}

	// A duplicate delivery and a failed sign-in stay unauthenticated.
	h.restore(t, auth.Outcome{})
	h.auth.signInErr = errors.New("bad credentials")
	h.model.login.inputs[fieldEmail].SetValue("ana@example.com")
	h.model.login.inputs[fieldPassword].SetValue("wrong")
	h.model.login.focus = 1
	h.run(t, h.send(t, tea.KeyMsg{Type: tea.KeyEnter}))

	if got := h.model.router.Redirects(); got != 1 {
		t.Fatalf("redirects = %d after repeated denial, want 1", got)
	}
	if h.feed.starts != 0 {
		t.Fatalf("feed started %d times while denied", h.feed.starts)
	}
	if view := h.model.View(); !strings.Contains(view, "bad credentials") {
		t.Fatalf("login view = %q, want failure message", view)
	}
}

func TestAuthResult_StaleTicketDropped(t *testing.T) {
	user := testUser(true, session.MileageKilometers)
	h := newHarness(t, false, user)
	stale := h.sessions.Current()

	// A newer attempt supersedes the boot restore before it returns.
	fresh := h.sessions.Begin()
	h.send(t, authResultMsg{ticket: fresh, action: actionSignIn, outcome: auth.Outcome{}})
	h.send(t, authResultMsg{ticket: stale, action: actionRestore, outcome: auth.Outcome{User: user}})

	if h.model.Access() != guard.Denied {
		t.Fatalf("Access = %v, want denied from the fresh result", h.model.Access())
	}
	if h.prefs.State().DarkMode {
		t.Fatal("stale result synced preferences")
	}
}

func TestAuthResult_FreshAfterStaleOrder(t *testing.T) {
	user := testUser(true, session.MileageKilometers)
	h := newHarness(t, false, user)
	stale := h.sessions.Current()
	fresh := h.sessions.Begin()

	h.send(t, authResultMsg{ticket: stale, action: actionRestore, outcome: auth.Outcome{}})
	if h.model.Access() != guard.Pending {
		t.Fatalf("Access = %v after stale result, want pending", h.model.Access())
	}
	h.send(t, authResultMsg{ticket: fresh, action: actionSignIn, outcome: auth.Outcome{User: user}})
	if h.model.Access() != guard.Granted || !h.prefs.State().DarkMode {
		t.Fatalf("Access = %v dark = %v, want granted and synced", h.model.Access(), h.prefs.State().DarkMode)
	}
}

func TestSignIn_FromLoginScreen(t *testing.T) {
	user := testUser(true, session.MileageMiles)
	h := newHarness(t, false, user)
	h.restore(t, auth.Outcome{})

	h.send(t, keyRunes("ana@example.com"))
	h.send(t, tea.KeyMsg{Type: tea.KeyTab})
	h.send(t, keyRunes("secret"))
	cmd := h.send(t, tea.KeyMsg{Type: tea.KeyEnter})

	if !h.sessions.State().IsLoading {
		t.Fatal("session not loading after submit")
	}
	if view := h.model.View(); !strings.Contains(view, "Signing in...") {
		t.Fatalf("View = %q, want signing-in notice", view)
	}

	h.run(t, cmd)

	if len(h.auth.signIns) != 1 || h.auth.signIns[0] != "ana@example.com" {
		t.Fatalf("signIns = %v, want one for ana@example.com", h.auth.signIns)
	}
	if h.model.Access() != guard.Granted || h.model.Route() != RouteDashboard {
		t.Fatalf("access = %v route = %s, want granted on dashboard", h.model.Access(), h.model.Route())
	}
	if !h.prefs.State().DarkMode || !h.prefs.State().UsesMiles() {
		t.Fatal("profile preferences not applied after sign-in")
	}
	if h.model.login.value(fieldPassword) != "" {
		t.Fatal("password kept in form after sign-in")
	}
}

func TestSubmitLogin_RequiresFields(t *testing.T) {
	h := newHarness(t, false, nil)
	h.restore(t, auth.Outcome{})
	h.model.login.focus = 1

	cmd := h.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("submit with empty fields returned a command")
	}
	if h.sessions.State().IsLoading {
		t.Fatal("empty submit began an attempt")
	}
	if !strings.Contains(h.model.View(), "Please fill in all fields") {
		t.Fatal("missing validation notice")
	}
}

func TestManualToggleSurvivesRerender(t *testing.T) {
	user := testUser(true, session.MileageKilometers)
	h := newHarness(t, false, user)
	h.restore(t, auth.Outcome{User: user})

	h.send(t, keyRunes("3"))
	if h.model.Route() != RouteSettings {
		t.Fatalf("Route = %s, want settings", h.model.Route())
	}
	save := h.send(t, keyRunes("d"))
	if h.prefs.State().DarkMode {
		t.Fatal("DarkMode = true after toggle")
	}

	for i := 0; i < 3; i++ {
		_ = h.model.View()
		h.send(t, snapshotMsg(h.data.Snapshot()))
		h.sync.Sync(h.sessions.State())
	}
	h.run(t, save)

	if h.prefs.State().DarkMode {
		t.Fatal("re-render reverted the manual toggle")
	}
	if len(h.auth.updates) != 1 || h.auth.updates[0].DarkMode == nil || *h.auth.updates[0].DarkMode {
		t.Fatalf("updates = %+v, want one dark_mode=false save", h.auth.updates)
	}
}

func TestSavePreferencesFailureReverts(t *testing.T) {
	user := testUser(false, session.MileageKilometers)
	h := newHarness(t, false, user)
	h.restore(t, auth.Outcome{User: user})
	h.auth.updateErr = &api.Error{Status: 500, Path: "/users/me", Detail: "database unavailable"}

	h.send(t, keyRunes("3"))
	save := h.send(t, keyRunes("u"))
	if !h.prefs.State().UsesMiles() {
		t.Fatal("units not switched before save")
	}

	h.run(t, save)
	if h.prefs.State().UsesMiles() {
		t.Fatal("units kept after failed save, want reverted to km")
	}
	if !h.model.failed || !strings.Contains(h.model.notice, "database unavailable") {
		t.Fatalf("notice = %q, want save failure", h.model.notice)
	}
}

func TestSignOut_StopsFeedAndRedirects(t *testing.T) {
	user := testUser(false, session.MileageKilometers)
	h := newHarness(t, false, user)
	h.restore(t, auth.Outcome{User: user})
	h.data.Update(&state.Garage{Vehicles: []api.Vehicle{{ID: 1, Make: "Honda"}}}, nil)
	h.send(t, snapshotMsg(h.data.Snapshot()))

	h.send(t, keyRunes("3"))
	cmd := h.send(t, keyRunes("L"))
	if !h.sessions.State().IsLoading {
		t.Fatal("sign-out did not begin an attempt")
	}
	h.run(t, cmd)

	if h.auth.signOuts != 1 {
		t.Fatalf("signOuts = %d, want 1", h.auth.signOuts)
	}
	if h.model.Access() != guard.Denied || h.model.Route() != RouteLogin {
		t.Fatalf("access = %v route = %s, want denied on login", h.model.Access(), h.model.Route())
	}
	if h.feed.stops != 1 || h.feed.running {
		t.Fatalf("feed stops = %d running = %v, want stopped", h.feed.stops, h.feed.running)
	}
	if h.model.snapshot.HasData {
		t.Fatal("snapshot kept after sign-out")
	}
	if got := h.model.router.Redirects(); got != 1 {
		t.Fatalf("redirects = %d, want 1", got)
	}
}

func TestTick_ExpiredTokenSignsOut(t *testing.T) {
	user := testUser(false, session.MileageKilometers)
	h := newHarness(t, false, user)
	h.restore(t, auth.Outcome{User: user})

	h.auth.expired = true
	h.send(t, tickMsg(time.Now()))

	if !h.sessions.State().IsLoading {
		t.Fatal("expired token did not start a sign-out")
	}
	if !strings.Contains(h.model.notice, "expired") {
		t.Fatalf("notice = %q, want expiry notice", h.model.notice)
	}
}

func TestSnapshot_UnauthorizedSignsOut(t *testing.T) {
	user := testUser(false, session.MileageKilometers)
	h := newHarness(t, false, user)
	h.restore(t, auth.Outcome{User: user})

	h.data.Update(nil, errors.Join(errors.New("fetch vehicles"), &api.Error{Status: 401, Path: "/vehicles/"}))
	h.send(t, snapshotMsg(h.data.Snapshot()))

	if !h.sessions.State().IsLoading {
		t.Fatal("401 from the poller did not start a sign-out")
	}
}

func TestSnapshot_IgnoredWhileDenied(t *testing.T) {
	h := newHarness(t, false, nil)
	h.restore(t, auth.Outcome{})

	h.send(t, snapshotMsg(state.Snapshot{HasData: true, Vehicles: []api.Vehicle{{ID: 9}}}))
	if h.model.snapshot.HasData {
		t.Fatal("snapshot accepted while denied")
	}
}

func TestProtectedScreen_DeniedShowsRedirectNotice(t *testing.T) {
	h := newHarness(t, false, nil)
	h.restore(t, auth.Outcome{})

	h.model.router.Navigate(RouteDashboard)
	view := h.model.View()
	if !strings.Contains(view, labelRedirecting) {
		t.Fatalf("View = %q, want redirect notice", view)
	}
	if strings.Contains(view, "Welcome back") {
		t.Fatal("protected content rendered while denied")
	}
}

func TestDashboard_RendersMileageInSelectedUnit(t *testing.T) {
	user := testUser(false, session.MileageMiles)
	h := newHarness(t, false, user)
	h.restore(t, auth.Outcome{User: user})

	h.data.Update(&state.Garage{Vehicles: []api.Vehicle{
		{ID: 1, Year: 2020, Make: "Toyota", Model: "Vios", CurrentMileage: 10000},
	}}, nil)
	h.send(t, snapshotMsg(h.data.Snapshot()))

	view := h.model.View()
	if !strings.Contains(view, "2020 Toyota Vios") {
		t.Fatalf("View = %q, want vehicle name", view)
	}
	if !strings.Contains(view, "6214 mi") {
		t.Fatalf("View = %q, want 6214 mi", view)
	}
}

func TestHelpOverlay_AnyKeyCloses(t *testing.T) {
	user := testUser(false, session.MileageKilometers)
	h := newHarness(t, false, user)
	h.restore(t, auth.Outcome{User: user})

	h.send(t, keyRunes("?"))
	if !strings.Contains(h.model.View(), "Keyboard Shortcuts") {
		t.Fatal("help not shown")
	}
	h.send(t, keyRunes("x"))
	if h.model.showHelp {
		t.Fatal("help still open")
	}
}

func TestNew_PanicsWithoutStores(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("New without a session store did not panic")
		}
	}()
	New(Deps{Prefs: prefs.NewStore(false), Data: &state.Store{}, Feed: &fakeFeed{}, Auth: &fakeAuth{}})
}

func TestDashboard_HistoryInPreferredUnits(t *testing.T) {
	user := testUser(false, session.MileageMiles)
	h := newHarness(t, false, user)
	h.restore(t, auth.Outcome{User: user})
	h.send(t, tea.WindowSizeMsg{Width: 120, Height: 50})

	liters := 37.854
	h.feed.history = state.History{
		Maintenance: []api.MaintenanceLog{{ID: 1, MaintenanceType: "oil_change", Date: "2025-05-01", Cost: 49.5}},
		Fuel:        []api.FuelLog{{ID: 1, Liters: &liters, Cost: 60}},
	}
	h.data.Update(&state.Garage{Vehicles: []api.Vehicle{
		{ID: 1, Make: "Honda", Model: "Jazz"},
		{ID: 2, Make: "Toyota", Model: "Vios"},
	}}, nil)
	h.send(t, snapshotMsg(h.data.Snapshot()))

	h.send(t, keyRunes("j"))
	cmd := h.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(h.model.View(), "Loading...") {
		t.Fatal("history row not loading while fetch is in flight")
	}
	h.run(t, cmd)

	if len(h.feed.historyFor) != 1 || h.feed.historyFor[0] != 2 {
		t.Fatalf("history fetched for %v, want [2]", h.feed.historyFor)
	}
	view := h.model.View()
	for _, want := range []string{"1 service", "Oil change", "10.0 gal"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestDashboard_HistoryDroppedAfterSignOut(t *testing.T) {
	user := testUser(false, session.MileageKilometers)
	h := newHarness(t, false, user)
	h.restore(t, auth.Outcome{User: user})
	h.data.Update(&state.Garage{Vehicles: []api.Vehicle{{ID: 4, Make: "Honda"}}}, nil)
	h.send(t, snapshotMsg(h.data.Snapshot()))

	cmd := h.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	h.send(t, authResultMsg{ticket: h.sessions.Begin(), action: actionSignOut, outcome: auth.Outcome{}})
	h.run(t, cmd)

	if h.model.history != nil {
		t.Fatal("history landed after sign-out")
	}
}

func TestDashboard_HistoryFromPreviousUserDropped(t *testing.T) {
	first := testUser(false, session.MileageKilometers)
	h := newHarness(t, false, first)
	h.restore(t, auth.Outcome{User: first})
	h.feed.history = state.History{Maintenance: []api.MaintenanceLog{{ID: 1, MaintenanceType: "brakes", Cost: 999}}}
	h.data.Update(&state.Garage{Vehicles: []api.Vehicle{{ID: 7, Make: "Honda"}}}, nil)
	h.send(t, snapshotMsg(h.data.Snapshot()))

	fetch := h.send(t, tea.KeyMsg{Type: tea.KeyEnter})
	started := h.sessions.State().Resolution

	h.send(t, keyRunes("3"))
	h.run(t, h.send(t, keyRunes("L")))

	second := &session.User{ID: 99, FullName: "Ben Reyes", Email: "ben@example.com"}
	h.send(t, authResultMsg{ticket: h.sessions.Begin(), action: actionSignIn, outcome: auth.Outcome{User: second}})
	if h.model.Access() != guard.Granted {
		t.Fatalf("Access = %v, want granted for the second user", h.model.Access())
	}
	h.data.Update(&state.Garage{Vehicles: []api.Vehicle{{ID: 7, Make: "Honda"}}}, nil)
	h.send(t, snapshotMsg(h.data.Snapshot()))

	h.run(t, fetch)
	if h.model.history != nil {
		t.Fatalf("history from the previous session kept: %+v", *h.model.history)
	}
	if strings.Contains(h.model.View(), "999") {
		t.Fatal("previous user's service cost shown to the next user")
	}

	h.send(t, refreshDoneMsg{resolution: started, err: errors.New("timeout")})
	if h.model.failed {
		t.Fatalf("notice = %q from the previous session's refresh", h.model.notice)
	}
}

func TestSavePreferences_FailureFromPreviousSessionDropped(t *testing.T) {
	first := testUser(false, session.MileageKilometers)
	h := newHarness(t, false, first)
	h.restore(t, auth.Outcome{User: first})

	h.send(t, keyRunes("3"))
	save := h.send(t, keyRunes("d"))
	h.run(t, h.send(t, keyRunes("L")))

	second := testUser(true, session.MileageMiles)
	h.send(t, authResultMsg{ticket: h.sessions.Begin(), action: actionSignIn, outcome: auth.Outcome{User: second}})
	if p := h.prefs.State(); !p.DarkMode || !p.UsesMiles() {
		t.Fatalf("prefs after sign-in = dark %v miles %v, want the new profile", p.DarkMode, p.UsesMiles())
	}

	h.auth.updateErr = errors.New("connection reset")
	h.run(t, save)

	if p := h.prefs.State(); !p.DarkMode || !p.UsesMiles() {
		t.Fatalf("prefs after late save failure = dark %v miles %v, want unchanged", p.DarkMode, p.UsesMiles())
	}
	if h.model.failed {
		t.Fatalf("notice = %q from the previous session's save", h.model.notice)
	}
}

func TestSavePreferences_OnlyNewestFailureReverts(t *testing.T) {
	user := testUser(false, session.MileageKilometers)
	h := newHarness(t, false, user)
	h.restore(t, auth.Outcome{User: user})
	h.auth.updateErr = errors.New("connection reset")

	h.send(t, keyRunes("3"))
	first := h.send(t, keyRunes("d"))
	h.send(t, keyRunes("d"))
	last := h.send(t, keyRunes("d"))
	if !h.prefs.State().DarkMode {
		t.Fatal("DarkMode = false after three toggles")
	}

	h.run(t, first)
	if !h.prefs.State().DarkMode {
		t.Fatal("an older failed save reverted a newer toggle")
	}

	h.run(t, last)
	if h.prefs.State().DarkMode {
		t.Fatal("newest failed save did not revert")
	}
}
