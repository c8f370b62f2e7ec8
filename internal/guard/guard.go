// Package guard decides whether a view is reachable for a session.
package guard

import "github.com/fetan/fetan_admin/internal/session"

// View paths the guard redirects between.
const (
	LoginPath   = "/login"
	DefaultPath = "/"
)

// Action is what the caller must do with the requested view.
type Action int

const (
	// Render shows the requested view.
	Render Action = iota
	// Loading shows a neutral indicator and navigates nowhere.
	Loading
	// Redirect replaces the request with Decision.Location.
	Redirect
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// View classifies a requested view.
type View int

const (
	Protected View = iota
	Login
)

// Decision is the outcome of Decide.
type Decision struct {
	Action   Action
	Location string
}

// Decide inspects the session and returns what to do with view. It has no
// side effects.
func Decide(s session.Session, view View) Decision {
	if view == Login {
		if !s.Loading && s.IsAuthenticated {
			return Decision{Action: Redirect, Location: DefaultPath}
		}
		return Decision{Action: Render}
	}

	switch {
	case s.Loading:
		return Decision{Action: Loading}
	case !s.IsAuthenticated:
		return Decision{Action: Redirect, Location: LoginPath}
	default:
		return Decision{Action: Render}
	}
}
