package ui

import (
	"sync"

	"github.com/five82/odo/internal/guard"
)

// Route names a screen.
type Route string

const (
	RouteLogin     Route = guard.LoginRoute
	RouteDashboard Route = "dashboard"
	RouteReminders Route = "reminders"
	RouteSettings  Route = "settings"
)

// tabOrder lists the signed-in screens in header order.
var tabOrder = []Route{RouteDashboard, RouteReminders, RouteSettings}

func (r Route) title() string {
	switch r {
	case RouteLogin:
		return "Sign in"
	case RouteDashboard:
		return "Garage"
	case RouteReminders:
		return "Reminders"
	case RouteSettings:
		return "Settings"
	default:
		return string(r)
	}
}

// protected reports whether the route needs a signed-in user.
func (r Route) protected() bool {
	return r != RouteLogin
}

// router holds the current screen. The guard redirects through it from
// inside session notifications, so it is shared by pointer and locked.
type router struct {
	mu        sync.Mutex
	current   Route
	redirects int
}

func newRouter(initial Route) *router {
	if !known(initial) {
		initial = RouteDashboard
	}
	return &router{current: initial}
}

// Redirect replaces the current screen. Unknown routes are ignored and
// redirecting to the current screen changes nothing.
func (r *router) Redirect(route string) {
	target := Route(route)
	if !known(target) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirects++
	r.current = target
}

// Navigate is a user-initiated move between screens.
func (r *router) Navigate(route Route) bool {
	if !known(route) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == route {
		return false
	}
	r.current = route
	return true
}

func (r *router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Redirects counts redirects issued by the guard.
func (r *router) Redirects() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redirects
}

// cycle moves delta tabs along tabOrder, wrapping around.
func (r *router) cycle(delta int) Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := 0
	for i, route := range tabOrder {
		if route == r.current {
			idx = i
			break
		}
	}
	n := len(tabOrder)
	r.current = tabOrder[((idx+delta)%n+n)%n]
	return r.current
}

func known(r Route) bool {
	switch r {
	case RouteLogin, RouteDashboard, RouteReminders, RouteSettings:
		return true
	}
	return false
}

var _ guard.Redirector = (*router)(nil)
