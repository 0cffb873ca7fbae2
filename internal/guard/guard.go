// Package guard decides whether protected screens may render.
package guard

import (
	"sync"

	"github.com/five82/odo/internal/session"
)

// LoginRoute is the unauthenticated entry screen.
const LoginRoute = "login"

// Status is the guard's access decision.
type Status int

const (
	Pending Status = iota
	Granted
	Denied
)

func (s Status) String() string {
	switch s {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "pending"
	}
}

// Redirector performs navigation to a route. Redirecting to the current
// route must be harmless.
type Redirector interface {
	Redirect(route string)
}

// RedirectFunc adapts a function to Redirector.
type RedirectFunc func(route string)

// Redirect calls f(route).
func (f RedirectFunc) Redirect(route string) { f(route) }

// Guard tracks access from observed session states.
type Guard struct {
	entry      string
	redirector Redirector

	mu     sync.Mutex
	status Status
}

// New returns a pending guard that sends denied users to entry.
func New(entry string, r Redirector) *Guard {
	if r == nil {
		panic("guard: nil redirector")
	}
	if entry == "" {
		entry = LoginRoute
	}
	return &Guard{entry: entry, redirector: r}
}

// Status returns the current decision.
func (g *Guard) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Observe applies a session state. Loading states leave the decision as is.
// Entering Denied issues exactly one redirect.
func (g *Guard) Observe(st session.State) Status {
	if st.IsLoading {
		return g.Status()
	}

	next := Denied
	if st.IsAuthenticated {
		next = Granted
	}

	g.mu.Lock()
	prev := g.status
	g.status = next
	g.mu.Unlock()

	if next == Denied && prev != Denied {
		g.redirector.Redirect(g.entry)
	}
	return next
}

// Gate renders the tree matching status: pending shows the interstitial,
// denied shows what is drawn while the redirect lands, granted shows the
// protected tree.
func Gate[T any](status Status, pending, denied, granted func() T) T {
	switch status {
	case Granted:
		return granted()
	case Denied:
		return denied()
	default:
		return pending()
	}
}
