package controller

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/RivanJarjes/score-mvp-prototype/api"
	"github.com/RivanJarjes/score-mvp-prototype/config"
)

type AuthPhase int

const (
	// AuthUnknown is the state before the one boundary check per run.
	AuthUnknown AuthPhase = iota
	AuthChecking
	AuthLoggedOut
	AuthLoggedIn
)

// StatusCheckedMsg is the result of the initial GET /me.
type StatusCheckedMsg struct {
	Email string
	Err   error
}

// AuthResultMsg is the result of a login or register call.
type AuthResultMsg struct {
	Email string
	Err   error
}

// AuthManager gates everything: no session fetch or submission happens until
// the boundary check resolves. It owns only the auth state; clearing session
// state on logout is delegated to the hook wired in at startup so the
// resolver keeps exclusive ownership of the session ref.
type AuthManager struct {
	api      *api.Client
	phase    AuthPhase
	email    string
	formErr  string
	busy     bool
	onLogout func()
}

func NewAuthManager(c *api.Client) *AuthManager {
	return &AuthManager{api: c}
}

// OnLogout registers the cleanup run whenever auth transitions to logged out
// by explicit logout.
func (a *AuthManager) OnLogout(fn func()) { a.onLogout = fn }

func (a *AuthManager) Phase() AuthPhase  { return a.phase }
func (a *AuthManager) Email() string     { return a.email }
func (a *AuthManager) FormError() string { return a.formErr }
func (a *AuthManager) Busy() bool        { return a.busy }

// CheckStatus issues the single per-run boundary check. Calling it again
// after the first check is a no-op; the phase never reverts to checking.
func (a *AuthManager) CheckStatus() tea.Cmd {
	if a.phase != AuthUnknown {
		return nil
	}
	a.phase = AuthChecking
	c := a.api
	return func() tea.Msg {
		id, err := c.Me()
		return StatusCheckedMsg{Email: id.Email, Err: err}
	}
}

// ApplyStatus resolves the boundary check. Any failure, transport or
// rejection alike, lands on logged out.
func (a *AuthManager) ApplyStatus(msg StatusCheckedMsg) {
	if msg.Err != nil {
		config.Logger.WithError(msg.Err).Info("not authenticated")
		a.phase = AuthLoggedOut
		return
	}
	a.phase = AuthLoggedIn
	a.email = msg.Email
}

// Login posts credentials. Returns nil while a previous attempt is still in
// flight so the form cannot double-submit.
func (a *AuthManager) Login(email, password string) tea.Cmd {
	return a.authCmd(email, password, false)
}

// Register creates a student account and signs it in.
func (a *AuthManager) Register(email, password string) tea.Cmd {
	return a.authCmd(email, password, true)
}

func (a *AuthManager) authCmd(email, password string, register bool) tea.Cmd {
	if a.busy {
		return nil
	}
	a.busy = true
	c := a.api
	return func() tea.Msg {
		var err error
		if register {
			err = c.Register(email, password)
		} else {
			err = c.Login(email, password)
		}
		return AuthResultMsg{Email: email, Err: err}
	}
}

// ApplyAuthResult resolves a login/register attempt. Failures surface as
// inline form text and leave the phase at logged out.
func (a *AuthManager) ApplyAuthResult(msg AuthResultMsg) {
	a.busy = false
	if msg.Err != nil {
		a.phase = AuthLoggedOut
		a.formErr = authErrorText(msg.Err)
		return
	}
	a.phase = AuthLoggedIn
	a.email = msg.Email
	a.formErr = ""
}

// Logout resets auth state immediately and runs the wired cleanup; the
// server call is best-effort and its failure is only logged.
func (a *AuthManager) Logout() tea.Cmd {
	a.phase = AuthLoggedOut
	a.email = ""
	a.formErr = ""
	if a.onLogout != nil {
		a.onLogout()
	}
	c := a.api
	return func() tea.Msg {
		if err := c.Logout(); err != nil {
			config.Logger.WithError(err).Warn("logout call failed")
		}
		return nil
	}
}

// ForceLoggedOut handles an authorization-denied signal from a downstream
// call. Only the auth state changes; the session ref and timeline are left
// for the user to retry after signing back in.
func (a *AuthManager) ForceLoggedOut() {
	a.phase = AuthLoggedOut
	a.email = ""
}

// authErrorText extracts the human-readable message from an auth failure,
// falling back to a generic line for transport errors and blank bodies.
func authErrorText(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return "Could not sign in. Please try again."
}
