package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"

	"github.com/five82/odo/internal/api"
	"github.com/five82/odo/internal/session"
)

// ErrThrottled is returned when sign-in attempts arrive faster than allowed.
var ErrThrottled = errors.New("too many sign-in attempts, wait a moment")

// ErrSignedOut is returned by calls that need a token when none is held.
var ErrSignedOut = errors.New("not signed in")

const (
	defaultSignInEvery = 2 * time.Second
	defaultSignInBurst = 3
)

// Outcome is the result of one authentication attempt.
type Outcome struct {
	User *session.User
	Err  error
}

// Resolve lands the outcome on store for ticket t. Errors are absorbed into
// the unauthenticated state.
func (o Outcome) Resolve(store *session.Store, t session.Ticket) bool {
	switch {
	case o.Err != nil:
		return store.ResolveFailed(t, o.Err)
	case o.User != nil:
		return store.ResolveAuthenticated(t, *o.User)
	default:
		return store.ResolveUnauthenticated(t)
	}
}

// Options configure a Service.
type Options struct {
	CredentialsPath string
	Logger          *slog.Logger
	SignInEvery     time.Duration
	SignInBurst     int
	Now             func() time.Time
}

// Service signs users in and out against the backend and keeps the token.
type Service struct {
	backend   api.Backend
	credsPath string
	limiter   *rate.Limiter
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	creds Credentials
}

// NewService returns a Service backed by backend.
func NewService(backend api.Backend, opts Options) *Service {
	if backend == nil {
		panic("auth: nil backend")
	}
	every := opts.SignInEvery
	if every <= 0 {
		every = defaultSignInEvery
	}
	burst := opts.SignInBurst
	if burst <= 0 {
		burst = defaultSignInBurst
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		backend:   backend,
		credsPath: opts.CredentialsPath,
		limiter:   rate.NewLimiter(rate.Every(every), burst),
		logger:    logger,
		now:       now,
	}
}

// Token returns the current bearer token, or "".
func (s *Service) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.AccessToken
}

// Restore resumes a saved sign-in. No saved token, an expired token or a
// rejected token all yield an outcome without user.
func (s *Service) Restore(ctx context.Context) Outcome {
	creds, err := LoadCredentials(s.credsPath)
	if err != nil {
		s.logger.Warn("saved sign-in unreadable", "path", s.credsPath, "error", err)
		return Outcome{}
	}
	if creds.Empty() {
		s.logger.Debug("no saved sign-in")
		return Outcome{}
	}
	if tokenExpired(creds.AccessToken, s.now()) {
		s.logger.Info("saved sign-in expired", "email", creds.Email)
		s.forget()
		return Outcome{}
	}

	user, err := s.backend.Me(ctx, creds.AccessToken)
	if err != nil {
		if api.IsUnauthorized(err) {
			s.logger.Info("saved sign-in rejected", "email", creds.Email)
			s.forget()
			return Outcome{}
		}
		s.logger.Warn("restore sign-in failed", "error", err)
		return Outcome{Err: fmt.Errorf("restore sign-in: %w", err)}
	}

	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	s.logger.Info("sign-in restored", "user_id", user.ID)
	return Outcome{User: &user}
}

// SignIn authenticates with email and password and saves the token.
func (s *Service) SignIn(ctx context.Context, email, password string) Outcome {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Outcome{Err: errors.New("email and password are required")}
	}
	if !s.limiter.Allow() {
		s.logger.Warn("sign-in throttled", "email", email)
		return Outcome{Err: ErrThrottled}
	}

	tok, err := s.backend.Login(ctx, email, password)
	if err != nil {
		s.logger.Warn("sign-in failed", "email", email, "error", err)
		return Outcome{Err: fmt.Errorf("sign in: %w", err)}
	}
	user, err := s.backend.Me(ctx, tok.AccessToken)
	if err != nil {
		s.logger.Warn("profile fetch failed", "email", email, "error", err)
		return Outcome{Err: fmt.Errorf("load profile: %w", err)}
	}

	creds := Credentials{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		Email:       email,
		SavedAt:     s.now().UTC(),
	}
	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
	if err := SaveCredentials(s.credsPath, creds); err != nil {
		// The session still works for this run.
		s.logger.Warn("save sign-in failed", "error", err)
	}
	s.logger.Info("signed in", "user_id", user.ID)
	return Outcome{User: &user}
}

// SignUp registers an account and signs into it.
func (s *Service) SignUp(ctx context.Context, req api.RegisterRequest) Outcome {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return Outcome{Err: errors.New("email and password are required")}
	}
	if strings.TrimSpace(req.FullName) == "" {
		req.FullName = "User"
	}
	if _, err := s.backend.Register(ctx, req); err != nil {
		s.logger.Warn("registration failed", "email", req.Email, "error", err)
		return Outcome{Err: fmt.Errorf("register: %w", err)}
	}
	return s.SignIn(ctx, req.Email, req.Password)
}

// SignOut forgets the token. It never fails from the session's point of view.
func (s *Service) SignOut(context.Context) Outcome {
	s.forget()
	s.logger.Info("signed out")
	return Outcome{}
}

// Expired reports whether the held token has passed its expiry.
func (s *Service) Expired() bool {
	s.mu.Lock()
	token := s.creds.AccessToken
	s.mu.Unlock()
	if token == "" {
		return false
	}
	return tokenExpired(token, s.now())
}

// UpdatePreferences saves profile changes for the signed-in user.
func (s *Service) UpdatePreferences(ctx context.Context, update api.UserUpdate) (session.User, error) {
	token := s.Token()
	if token == "" {
		return session.User{}, ErrSignedOut
	}
	user, err := s.backend.UpdateMe(ctx, token, update)
	if err != nil {
		return session.User{}, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (s *Service) forget() {
	s.mu.Lock()
	s.creds = Credentials{}
	s.mu.Unlock()
	if err := ClearCredentials(s.credsPath); err != nil {
		s.logger.Warn("clear sign-in failed", "error", err)
	}
}

// tokenExpired inspects the exp claim without verifying the signature; only
// the backend holds the key. Tokens that are not JWTs, or carry no exp, are
// left for the backend to judge.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(now)
}
