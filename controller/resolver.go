package controller

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/RivanJarjes/score-mvp-prototype/api"
	"github.com/RivanJarjes/score-mvp-prototype/config"
	"github.com/RivanJarjes/score-mvp-prototype/model"
)

// HistoryLoadedMsg is the result of a session history fetch. SessionID names
// the session the fetch was issued for so stale results can be discarded.
type HistoryLoadedMsg struct {
	SessionID string
	TitleOnly bool
	History   model.SessionHistory
	Err       error
}

// InputReset tells the UI layer which composer buffers a controller
// transition invalidated. Consumed, not pushed: the UI polls after every
// controller call so controllers never hold references into widget state.
type InputReset int

const (
	InputKeep InputReset = iota
	InputClearProblem
	InputClearAll
)

// SessionResolver owns the session ref and the navigation value that mirrors
// it. Nobody else writes either: navigation changes, explicit new-session
// requests, and post-submission promotion all arrive here.
type SessionResolver struct {
	api      *api.Client
	timeline *Timeline

	// refreshSidebar is the capability handed in at wiring time to ask the
	// sidebar collaborator to reload its list.
	refreshSidebar func() tea.Cmd

	// onUnauthorized fires when a history fetch comes back 401; the session
	// expired out from under us and the auth side must transition.
	onUnauthorized func()

	current    string // session ref; "" means no session yet
	nav        string // navigation value shown to the user
	pending    string // deep link waiting for the auth check
	loading    bool
	inputReset InputReset
}

func NewSessionResolver(c *api.Client, t *Timeline, refreshSidebar func() tea.Cmd) *SessionResolver {
	return &SessionResolver{api: c, timeline: t, refreshSidebar: refreshSidebar}
}

// OnUnauthorized registers the hook invoked when a fetch is rejected with
// an authorization denial.
func (r *SessionResolver) OnUnauthorized(fn func()) { r.onUnauthorized = fn }

func (r *SessionResolver) Current() string { return r.current }
func (r *SessionResolver) Nav() string     { return r.nav }
func (r *SessionResolver) Loading() bool   { return r.loading }

// ConsumeInputReset returns and clears the pending composer-reset signal.
func (r *SessionResolver) ConsumeInputReset() InputReset {
	v := r.inputReset
	r.inputReset = InputKeep
	return v
}

// SetDeepLink records a session id supplied at launch. The fetch is deferred
// until the auth check confirms the cookie is good; AuthConfirmed flushes it.
func (r *SessionResolver) SetDeepLink(id string) {
	r.pending = id
	r.nav = id
}

// AuthConfirmed fires the deferred deep-link fetch, if any. Called once the
// boundary check lands on logged in.
func (r *SessionResolver) AuthConfirmed() tea.Cmd {
	if r.pending == "" {
		return nil
	}
	id := r.pending
	r.pending = ""
	return r.Navigate(id)
}

// Navigate switches to another session: the old timeline is discarded before
// the new history arrives. Navigating to the already-current session is a
// no-op.
func (r *SessionResolver) Navigate(id string) tea.Cmd {
	if id == "" || id == r.current {
		return nil
	}
	r.current = id
	r.nav = id
	r.loading = true
	r.timeline.Reset("", nil)
	return r.fetchHistory(id, false)
}

// ClearNavigation handles the navigation value disappearing: drop the ref
// and the timeline without re-fetching anything.
func (r *SessionResolver) ClearNavigation() {
	r.current = ""
	r.nav = ""
	r.loading = false
	r.timeline.Reset("", nil)
}

// StartNew begins a fresh conversation: no session ref until the first
// successful submission mints one. Pending composer input is invalidated.
func (r *SessionResolver) StartNew() {
	r.ClearNavigation()
	r.pending = ""
	r.inputReset = InputClearAll
}

// Reset is StartNew for the logout path.
func (r *SessionResolver) Reset() {
	r.StartNew()
}

// Promote adopts the identifier the server minted for a first submission:
// the ref and navigation take the new id, the sidebar is asked to refresh,
// and a follow-up fetch picks up the server-generated title. The problem
// input is cleared; code is kept for iteration.
func (r *SessionResolver) Promote(id string) tea.Cmd {
	r.current = id
	r.nav = id
	r.inputReset = InputClearProblem
	cmds := []tea.Cmd{r.fetchHistory(id, true)}
	if r.refreshSidebar != nil {
		if c := r.refreshSidebar(); c != nil {
			cmds = append(cmds, c)
		}
	}
	return tea.Batch(cmds...)
}

// ApplyHistory applies a fetch result. Results for a session that is no
// longer current are dropped; an authorization denial hands off to the auth
// side; any other failed full fetch clears navigation once rather than
// retrying.
func (r *SessionResolver) ApplyHistory(msg HistoryLoadedMsg) {
	if msg.SessionID != r.current {
		return
	}
	if msg.Err != nil && errors.Is(msg.Err, api.ErrUnauthorized) {
		if !msg.TitleOnly {
			r.loading = false
		}
		config.Logger.WithField("session", msg.SessionID).Info("history fetch rejected, session expired")
		if r.onUnauthorized != nil {
			r.onUnauthorized()
		}
		return
	}
	if msg.TitleOnly {
		if msg.Err != nil {
			config.Logger.WithError(msg.Err).Warn("title fetch failed")
			return
		}
		if msg.History.Title != nil {
			r.timeline.SetTitle(*msg.History.Title)
		}
		return
	}
	r.loading = false
	if msg.Err != nil {
		config.Logger.WithError(msg.Err).WithField("session", msg.SessionID).Warn("history fetch failed, clearing navigation")
		r.ClearNavigation()
		return
	}
	title := ""
	if msg.History.Title != nil {
		title = *msg.History.Title
	}
	r.timeline.Reset(title, msg.History.Messages)
}

func (r *SessionResolver) fetchHistory(id string, titleOnly bool) tea.Cmd {
	c := r.api
	return func() tea.Msg {
		hist, err := c.SessionHistory(id)
		return HistoryLoadedMsg{SessionID: id, TitleOnly: titleOnly, History: hist, Err: err}
	}
}
