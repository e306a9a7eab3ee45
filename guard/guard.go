// Package guard decides whether a viewer may enter a dashboard screen. The
// decision is a pure function of the cached session: no network call is made
// and revoked credentials are not detected here.
package guard

import (
	"strings"

	"smartoffice-console/session"
)

const (
	LoginPath       = "/login"
	AdminHomePath   = "/admin"
	ManagerHomePath = "/dashboard"
	LandingPath     = "/"
)

type RequirementKind int

const (
	None RequirementKind = iota
	AnyAuthenticated
	RequiresGroup
	RequiresRole
)

func (k RequirementKind) String() string {
	switch k {
	case AnyAuthenticated:
		return "any_authenticated"
	case RequiresGroup:
		return "requires_group"
	case RequiresRole:
		return "requires_role"
	}
	return "none"
}

type Requirement struct {
	Kind  RequirementKind
	Group string
	Role  session.Role
}

func Public() Requirement { return Requirement{Kind: None} }
func Authenticated() Requirement { return Requirement{Kind: AnyAuthenticated} }
func Group(name string) Requirement { return Requirement{Kind: RequiresGroup, Group: name} }
func Role(role session.Role) Requirement { return Requirement{Kind: RequiresRole, Role: role} }

// Decision is either Render or a redirect to Target.
type Decision struct {
	Render bool   `json:"render"`
	Target string `json:"target,omitempty"`
}

func Render() Decision { return Decision{Render: true} }
func RedirectTo(target string) Decision { return Decision{Target: target} }

// Screen is a routable dashboard view and its access requirement.
type Screen struct {
	Name        string
	Requirement Requirement
	// Landing screens send already-authenticated viewers to their home.
	Landing bool
}

var (
	ScreenLanding        = Screen{Name: "landing", Requirement: Public(), Landing: true}
	ScreenLogin          = Screen{Name: "login", Requirement: Public()}
	ScreenSignup         = Screen{Name: "signup", Requirement: Public()}
	ScreenForgotPassword = Screen{Name: "forgot-password", Requirement: Public()}
	ScreenAdmin          = Screen{Name: "admin", Requirement: Role(session.RoleAdmin)}
	ScreenOffice         = Screen{Name: "office", Requirement: Role(session.RoleAdmin)}
	ScreenDashboard      = Screen{Name: "dashboard", Requirement: Authenticated()}
	ScreenRoom           = Screen{Name: "room", Requirement: Authenticated()}
	ScreenLogs           = Screen{Name: "logs", Requirement: Authenticated()}
	ScreenManagers       = Screen{Name: "managers", Requirement: Group("Admin")}
)

// DefaultScreenForRole returns the home path of a role. Anything that is not
// admin lands on the manager home.
func DefaultScreenForRole(role session.Role) string {
	if role == session.RoleAdmin {
		return AdminHomePath
	}
	return ManagerHomePath
}

// Authorize applies the screen's requirement to s.
func Authorize(s session.Session, screen Screen) Decision {
	req := screen.Requirement
	switch req.Kind {
	case None:
		if screen.Landing && s.Authenticated {
			return RedirectTo(DefaultScreenForRole(s.Role))
		}
		return Render()
	case AnyAuthenticated:
		if !s.Authenticated {
			return RedirectTo(LoginPath)
		}
		return Render()
	case RequiresGroup:
		if !s.Authenticated || !s.InGroup(req.Group) {
			return RedirectTo(DefaultScreenForRole(s.Role))
		}
		return Render()
	case RequiresRole:
		if !s.Authenticated {
			return RedirectTo(LoginPath)
		}
		if s.EffectiveRole() != req.Role {
			return RedirectTo(DefaultScreenForRole(s.Role))
		}
		return Render()
	}
	return RedirectTo(LoginPath)
}

// Resolve maps a dashboard path to its screen. Unknown paths resolve to false
// and are redirected to the landing page by Navigate.
func Resolve(path string) (Screen, bool) {
	path = "/" + strings.Trim(path, "/")
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")

	switch {
	case path == "/":
		return ScreenLanding, true
	case len(parts) == 1:
		switch parts[0] {
		case "login":
			return ScreenLogin, true
		case "signup":
			return ScreenSignup, true
		case "forgot-password":
			return ScreenForgotPassword, true
		case "admin":
			return ScreenAdmin, true
		case "dashboard":
			return ScreenDashboard, true
		case "logs":
			return ScreenLogs, true
		case "managers":
			return ScreenManagers, true
		}
	case len(parts) == 2 && parts[1] != "":
		switch parts[0] {
		case "office":
			return ScreenOffice, true
		case "room":
			return ScreenRoom, true
		}
	}
	return Screen{}, false
}

// Navigate resolves path and authorizes it.
func Navigate(s session.Session, path string) (Screen, Decision) {
	screen, ok := Resolve(path)
	if !ok {
		return Screen{Name: "unknown"}, RedirectTo(LandingPath)
	}
	return screen, Authorize(s, screen)
}
