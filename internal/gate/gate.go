// Package gate decides whether a protected view may render for the current
// session. It owns no state and performs no I/O.
package gate

import (
	"fmt"

	"medunit-portal/internal/domain"
)

const (
	// LoginPath is the unauthenticated entry point.
	LoginPath = "/student-login"
	// LandingPath is where actors with the wrong role are sent.
	LandingPath = "/"
)

// Outcome is the kind of decision the gate took.
type Outcome int

const (
	Loading Outcome = iota
	Redirect
	Render
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Decision is the gate's verdict. ReturnPath is only set on redirects to the
// login entry point and carries the location that was originally requested.
type Decision struct {
	Outcome    Outcome
	Target     string
	ReturnPath string
}

// Evaluate applies, in order: not ready yet -> Loading; no claim -> Redirect
// to LoginPath keeping location; role not in requiredRoles (when given) ->
// Redirect to LandingPath; otherwise Render. Passing no roles means any
// signed-in role; an empty non-nil set admits nobody.
func Evaluate(s domain.Session, location string, requiredRoles ...domain.Role) Decision {
	if !s.Ready {
		return Decision{Outcome: Loading}
	}
	if s.Claim == nil {
		return Decision{Outcome: Redirect, Target: LoginPath, ReturnPath: location}
	}
	if requiredRoles != nil && !s.Claim.Role.In(requiredRoles...) {
		return Decision{Outcome: Redirect, Target: LandingPath}
	}
	return Decision{Outcome: Render}
}

// Err turns a non-render decision into an AuthError for callers that cannot
// navigate. A Render decision yields nil.
func (d Decision) Err() error {
	switch d.Outcome {
	case Render:
		return nil
	case Loading:
		return domain.NewAuthError("session is still loading")
	}
	if d.Target == LoginPath {
		return domain.NewAuthError("not signed in")
	}
	return domain.NewAuthError("this view is not available for your role")
}
