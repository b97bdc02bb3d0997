// Package flow decides where a visitor may go given how far they are
// through onboarding: sign-in, profile setup, then joining or creating a team.
package flow

import (
	"path"
	"strings"
)

// Page paths known to the gate.
const (
	Home         = "/"
	Login        = "/auth/login"
	AuthPrefix   = "/auth"
	ProfileSetup = "/profile-setup"
	TeamsSelect  = "/teams-select"
	JoinTeam     = "/join-team"
	CreateTeam   = "/create-team"
	TeamsPrefix  = "/teams/"
	ProfilesPage = "/profiles/"
	Protected    = "/protected"
)

// State is what the gate knows about the visitor.
type State struct {
	Authenticated    bool
	ProfileCompleted bool
	HasTeam          bool
	TeamID           string
}

// Decision is the gate's verdict. Redirect is empty when Allow is true.
type Decision struct {
	Allow    bool
	Redirect string
}

func allow() Decision { return Decision{Allow: true} }

func redirect(to string) Decision { return Decision{Redirect: to} }

// Decide returns whether the visitor may view p or where to send them instead.
func Decide(s State, p string) Decision {
	p = normalize(p)

	if !s.Authenticated {
		if IsPrivate(p) {
			return redirect(Login)
		}
		return allow()
	}

	switch {
	case !s.ProfileCompleted:
		if p != ProfileSetup {
			return redirect(ProfileSetup)
		}
	case !s.HasTeam:
		if p != TeamsSelect && p != JoinTeam && p != CreateTeam {
			return redirect(TeamsSelect)
		}
	default:
		if isOnboarding(p) || isAuthPage(p) {
			return redirect(TeamHome(s.TeamID))
		}
	}
	return allow()
}

// TeamHome is the landing page of an affiliated visitor.
func TeamHome(teamID string) string {
	if teamID == "" {
		return Home
	}
	return TeamsPrefix + teamID
}

// IsPrivate reports whether p requires a signed-in visitor.
func IsPrivate(p string) bool {
	p = normalize(p)
	return isOnboarding(p) ||
		p == Protected ||
		strings.HasPrefix(p, TeamsPrefix) ||
		strings.HasPrefix(p, ProfilesPage)
}

func isOnboarding(p string) bool {
	switch p {
	case ProfileSetup, TeamsSelect, JoinTeam, CreateTeam:
		return true
	}
	return false
}

func isAuthPage(p string) bool {
	return p == AuthPrefix || strings.HasPrefix(p, AuthPrefix+"/")
}

func normalize(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
