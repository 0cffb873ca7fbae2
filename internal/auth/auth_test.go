package auth

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/five82/odo/internal/api"
	"github.com/five82/odo/internal/session"
)

type fakeBackend struct {
	token    string
	loginErr error
	meErr    error
	user     session.User
	updated  api.UserUpdate
	logins   int
	meTokens []string
}

func (f *fakeBackend) Login(_ context.Context, _, _ string) (api.Token, error) {
	f.logins++
	if f.loginErr != nil {
		return api.Token{}, f.loginErr
	}
	return api.Token{AccessToken: f.token, TokenType: "bearer"}, nil
}

func (f *fakeBackend) Register(_ context.Context, req api.RegisterRequest) (session.User, error) {
	return session.User{Email: req.Email, FullName: req.FullName}, nil
}

func (f *fakeBackend) Me(_ context.Context, token string) (session.User, error) {
	f.meTokens = append(f.meTokens, token)
	if f.meErr != nil {
		return session.User{}, f.meErr
	}
	return f.user, nil
}

func (f *fakeBackend) UpdateMe(_ context.Context, _ string, update api.UserUpdate) (session.User, error) {
	f.updated = update
	u := f.user
	if update.DarkMode != nil {
		u.DarkMode = *update.DarkMode
	}
	return u, nil
}

func (f *fakeBackend) Vehicles(context.Context, string) ([]api.Vehicle, error)   { return nil, nil }
func (f *fakeBackend) Reminders(context.Context, string) ([]api.Reminder, error) { return nil, nil }
func (f *fakeBackend) UpcomingReminders(context.Context, string, int) ([]api.Reminder, error) {
	return nil, nil
}
func (f *fakeBackend) OverdueReminders(context.Context, string) ([]api.Reminder, error) {
	return nil, nil
}
func (f *fakeBackend) MaintenanceLogs(context.Context, string, int64) ([]api.MaintenanceLog, error) {
	return nil, nil
}
func (f *fakeBackend) FuelLogs(context.Context, string, int64) ([]api.FuelLog, error) {
	return nil, nil
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "ana@example.com", ExpiresAt: jwt.NewNumericDate(exp)}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return tok
}

func newService(t *testing.T, backend *fakeBackend) (*Service, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "odo", "session.toml")
	return NewService(backend, Options{CredentialsPath: path, SignInEvery: time.Hour, SignInBurst: 5}), path
}

func TestCredentials_RoundTripAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.toml")

	empty, err := LoadCredentials(path)
	if err != nil || !empty.Empty() {
		t.Fatalf("LoadCredentials(missing) = %+v, %v", empty, err)
	}

	saved := Credentials{AccessToken: "abc", TokenType: "bearer", Email: "ana@example.com", SavedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	if err := SaveCredentials(path, saved); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("permissions = %o, want 600", perm)
	}

	loaded, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if loaded.AccessToken != "abc" || loaded.Email != "ana@example.com" || !loaded.SavedAt.Equal(saved.SavedAt) {
		t.Fatalf("loaded = %+v, want %+v", loaded, saved)
	}

	if err := ClearCredentials(path); err != nil {
		t.Fatalf("ClearCredentials: %v", err)
	}
	if err := ClearCredentials(path); err != nil {
		t.Fatalf("ClearCredentials(missing): %v", err)
	}
}

func TestLoadCredentials_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	if err := os.WriteFile(path, []byte("not valid toml {{{\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadCredentials(path); err == nil {
		t.Fatal("LoadCredentials returned nil error for invalid TOML")
	}
}

func TestSignIn_SavesTokenAndReturnsUser(t *testing.T) {
	backend := &fakeBackend{token: "tok-1", user: session.User{ID: 1, DarkMode: true}}
	svc, path := newService(t, backend)

	out := svc.SignIn(context.Background(), " ana@example.com ", "pw")
	if out.Err != nil || out.User == nil || out.User.ID != 1 {
		t.Fatalf("SignIn = %+v", out)
	}
	if svc.Token() != "tok-1" {
		t.Fatalf("Token = %q, want tok-1", svc.Token())
	}
	creds, err := LoadCredentials(path)
	if err != nil || creds.AccessToken != "tok-1" || creds.Email != "ana@example.com" {
		t.Fatalf("saved credentials = %+v, %v", creds, err)
	}
}

func TestSignIn_FailureIsOutcomeError(t *testing.T) {
	backend := &fakeBackend{loginErr: &api.Error{Status: http.StatusUnauthorized, Detail: "Incorrect email or password"}}
	svc, _ := newService(t, backend)

	out := svc.SignIn(context.Background(), "ana@example.com", "bad")
	if out.User != nil || !api.IsUnauthorized(out.Err) {
		t.Fatalf("SignIn = %+v, want unauthorized error", out)
	}

	store := session.NewStore()
	out.Resolve(store, store.Current())
	st := store.State()
	if st.IsAuthenticated || st.IsLoading || st.Failure == nil {
		t.Fatalf("state = %+v, want failure absorbed into unauthenticated", st)
	}
}

func TestSignIn_RequiresCredentials(t *testing.T) {
	backend := &fakeBackend{}
	svc, _ := newService(t, backend)
	if out := svc.SignIn(context.Background(), " ", "pw"); out.Err == nil {
		t.Fatal("SignIn with empty email returned nil error")
	}
	if backend.logins != 0 {
		t.Fatalf("logins = %d, want 0", backend.logins)
	}
}

func TestSignIn_Throttled(t *testing.T) {
	backend := &fakeBackend{loginErr: errors.New("nope")}
	path := filepath.Join(t.TempDir(), "session.toml")
	svc := NewService(backend, Options{CredentialsPath: path, SignInEvery: time.Hour, SignInBurst: 2})

	ctx := context.Background()
	svc.SignIn(ctx, "a@b.c", "x")
	svc.SignIn(ctx, "a@b.c", "x")
	out := svc.SignIn(ctx, "a@b.c", "x")
	if !errors.Is(out.Err, ErrThrottled) {
		t.Fatalf("third SignIn error = %v, want ErrThrottled", out.Err)
	}
	if backend.logins != 2 {
		t.Fatalf("logins = %d, want 2", backend.logins)
	}
}

func TestRestore(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		token     string
		meErr     error
		wantUser  bool
		wantErr   bool
		wantClear bool
		wantCalls int
	}{
		{"no saved token", "", nil, false, false, false, 0},
		{"valid token", signedToken(t, now.Add(time.Hour)), nil, true, false, false, 1},
		{"expired token", signedToken(t, now.Add(-time.Minute)), nil, false, false, true, 0},
		{"opaque token", "opaque", nil, true, false, false, 1},
		{"rejected token", "opaque", &api.Error{Status: http.StatusUnauthorized}, false, false, true, 1},
		{"network error", "opaque", errors.New("dial tcp: refused"), false, true, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{user: session.User{ID: 9}, meErr: tt.meErr}
			path := filepath.Join(t.TempDir(), "session.toml")
			if tt.token != "" {
				if err := SaveCredentials(path, Credentials{AccessToken: tt.token}); err != nil {
					t.Fatalf("SaveCredentials: %v", err)
				}
			}
			svc := NewService(backend, Options{CredentialsPath: path, Now: func() time.Time { return now }})

			out := svc.Restore(context.Background())
			if (out.User != nil) != tt.wantUser {
				t.Fatalf("User = %+v, want present=%v", out.User, tt.wantUser)
			}
			if (out.Err != nil) != tt.wantErr {
				t.Fatalf("Err = %v, want error=%v", out.Err, tt.wantErr)
			}
			if len(backend.meTokens) != tt.wantCalls {
				t.Fatalf("Me calls = %d, want %d", len(backend.meTokens), tt.wantCalls)
			}
			_, statErr := os.Stat(path)
			cleared := tt.token != "" && errors.Is(statErr, os.ErrNotExist)
			if cleared != tt.wantClear {
				t.Fatalf("credentials cleared = %v, want %v", cleared, tt.wantClear)
			}
		})
	}
}

func TestSignOut_ForgetsToken(t *testing.T) {
	backend := &fakeBackend{token: "tok", user: session.User{ID: 1}}
	svc, path := newService(t, backend)
	svc.SignIn(context.Background(), "a@b.c", "pw")

	out := svc.SignOut(context.Background())
	if out.User != nil || out.Err != nil {
		t.Fatalf("SignOut = %+v, want empty outcome", out)
	}
	if svc.Token() != "" {
		t.Fatal("token kept after sign-out")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("credentials file still present: %v", err)
	}
	if _, err := svc.UpdatePreferences(context.Background(), api.UserUpdate{}); !errors.Is(err, ErrSignedOut) {
		t.Fatalf("UpdatePreferences error = %v, want ErrSignedOut", err)
	}
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	backend := &fakeBackend{token: signedToken(t, now.Add(time.Minute)), user: session.User{ID: 1}}
	path := filepath.Join(t.TempDir(), "session.toml")
	clock := now
	svc := NewService(backend, Options{CredentialsPath: path, Now: func() time.Time { return clock }})

	if svc.Expired() {
		t.Fatal("Expired = true before sign-in")
	}
	svc.SignIn(context.Background(), "a@b.c", "pw")
	if svc.Expired() {
		t.Fatal("Expired = true for fresh token")
	}
	clock = now.Add(2 * time.Minute)
	if !svc.Expired() {
		t.Fatal("Expired = false after exp")
	}
}

func TestUpdatePreferences(t *testing.T) {
	backend := &fakeBackend{token: "tok", user: session.User{ID: 1, DarkMode: true}}
	svc, _ := newService(t, backend)
	svc.SignIn(context.Background(), "a@b.c", "pw")

	off := false
	user, err := svc.UpdatePreferences(context.Background(), api.UserUpdate{DarkMode: &off})
	if err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	if user.DarkMode || backend.updated.DarkMode == nil || *backend.updated.DarkMode {
		t.Fatalf("update not sent: user=%+v sent=%+v", user, backend.updated)
	}
}

func TestSignUp_RegistersThenSignsIn(t *testing.T) {
	backend := &fakeBackend{token: "tok", user: session.User{ID: 2}}
	svc, _ := newService(t, backend)

	out := svc.SignUp(context.Background(), api.RegisterRequest{Email: "new@example.com", Password: "pw"})
	if out.Err != nil || out.User == nil || out.User.ID != 2 {
		t.Fatalf("SignUp = %+v", out)
	}
	if backend.logins != 1 {
		t.Fatalf("logins = %d, want 1", backend.logins)
	}
}
