package routeguard

// Package routeguard decides, per navigation, whether a destination may be
// rendered. It is a small state machine re-evaluated on every navigation and
// on every session change, so a forced logout immediately flips an Allowed
// route to DeniedNoSession.

import (
	"sync"

	domainauth "github.com/deskware/portal-client/internal/domain/auth"
	"github.com/deskware/portal-client/internal/ports"
	"github.com/deskware/portal-client/internal/session"
)

// State is the outcome of evaluating a navigation.
type State string

const (
	// StateLoading means session restoration has not completed; render a
	// neutral placeholder and make no redirect decision.
	StateLoading State = "loading"
	// StateDeniedNoSession means no session is present; redirect to login,
	// carrying the originally requested destination.
	StateDeniedNoSession State = "denied_no_session"
	// StateDeniedWrongRole means the session lacks the destination's required
	// role; render an access-denied notice in place, no redirect.
	StateDeniedWrongRole State = "denied_wrong_role"
	// StateAllowed means the destination content may be rendered.
	StateAllowed State = "allowed"
)

// Decision is the evaluated outcome for a route.
type Decision struct {
	State State
	Route Route

	// RedirectTo is set when the decision forces a navigation (DeniedNoSession).
	RedirectTo string
	// From carries the originally requested destination with that redirect so
	// a successful login can return the user there.
	From string
}

// Guard evaluates navigations against the session store.
type Guard struct {
	store     *session.Store
	navigator ports.Navigator

	mu      sync.Mutex
	current Route
	pending string // destination remembered across a login redirect
}

// New creates a Guard and subscribes it to session changes.
func New(store *session.Store, navigator ports.Navigator) *Guard {
	if navigator == nil {
		navigator = ports.NavigatorFunc(func(string, string) {})
	}
	g := &Guard{
		store:     store,
		navigator: navigator,
		current:   RouteDashboard,
	}
	store.Subscribe(ports.SessionWatcherFunc(g.sessionChanged))
	return g
}

// Navigate records path as the current destination, evaluates it, and
// performs the redirect side effect when the decision demands one.
func (g *Guard) Navigate(path string) Decision {
	route := Lookup(path)

	g.mu.Lock()
	g.current = route
	g.mu.Unlock()

	decision := g.Evaluate(route)
	if decision.State == StateDeniedNoSession {
		g.mu.Lock()
		g.pending = route.Path
		g.mu.Unlock()
		g.navigator.NavigateTo(decision.RedirectTo, decision.From)
	}
	return decision
}

// Evaluate computes the decision for a route without side effects.
func (g *Guard) Evaluate(route Route) Decision {
	if route.Public {
		return Decision{State: StateAllowed, Route: route}
	}
	if !g.store.Loaded() {
		return Decision{State: StateLoading, Route: route}
	}
	if !g.store.Current().Present() {
		return Decision{
			State:      StateDeniedNoSession,
			Route:      route,
			RedirectTo: RouteLogin.Path,
			From:       route.Path,
		}
	}
	if route.RequiredRole != "" && !g.store.HasRole(route.RequiredRole) {
		return Decision{State: StateDeniedWrongRole, Route: route}
	}
	return Decision{State: StateAllowed, Route: route}
}

// Current re-evaluates the destination the user is on.
func (g *Guard) Current() Decision {
	g.mu.Lock()
	route := g.current
	g.mu.Unlock()
	return g.Evaluate(route)
}

// sessionChanged re-evaluates the current destination whenever the session
// store notifies. A new session resumes the navigation that was interrupted
// by the login redirect; a teardown bounces a now-denied route to login.
func (g *Guard) sessionChanged(sess domainauth.Session) {
	g.mu.Lock()
	route := g.current
	pending := g.pending
	if sess.Present() {
		g.pending = ""
	}
	g.mu.Unlock()

	if sess.Present() {
		if pending != "" {
			g.navigator.NavigateTo(pending, "")
			g.mu.Lock()
			g.current = Lookup(pending)
			g.mu.Unlock()
		}
		return
	}

	// Session went away under us. Only routes that need one bounce to login.
	if !route.Public {
		g.mu.Lock()
		g.pending = route.Path
		g.mu.Unlock()
		g.navigator.NavigateTo(RouteLogin.Path, route.Path)
	}
}
