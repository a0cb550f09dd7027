package controller

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/RivanJarjes/score-mvp-prototype/api"
	"github.com/RivanJarjes/score-mvp-prototype/config"
)

const (
	loginRequiredText = "You need to be signed in to ask a question. Please sign in and try again."
	connectivityText  = "Could not reach the tutor service. Check your connection and try again."
	blankProblemText  = "Describe your problem before submitting."
)

// QueryResultMsg is the outcome of one POST /query round trip. SessionID is
// the session the request was issued for; empty means this was a first
// submission with no session yet.
type QueryResultMsg struct {
	Handle    Handle
	SessionID string
	Result    api.QueryResult
	Err       error
}

// Submitter runs one request/response cycle: validate, append optimistically,
// call the server, reconcile or surface the failure. At most one submission
// is in flight; the busy flag also drives the UI's disabled submit control.
type Submitter struct {
	api      *api.Client
	auth     *AuthManager
	resolver *SessionResolver
	timeline *Timeline

	busy   bool
	notice string
}

func NewSubmitter(c *api.Client, auth *AuthManager, resolver *SessionResolver, timeline *Timeline) *Submitter {
	return &Submitter{api: c, auth: auth, resolver: resolver, timeline: timeline}
}

// Busy reports whether a submission is awaiting its response.
func (s *Submitter) Busy() bool { return s.busy }

// Notice returns the current validation notice, if any.
func (s *Submitter) Notice() string { return s.notice }

func (s *Submitter) ClearNotice() { s.notice = "" }

// Submit starts one submission. Blank problem text is rejected before any
// network traffic or timeline change; blank code is sent as an explicit
// no-code marker. Returns nil when nothing was started.
func (s *Submitter) Submit(problem, code string) tea.Cmd {
	if s.busy {
		return nil
	}
	p := strings.TrimSpace(problem)
	if p == "" {
		s.notice = blankProblemText
		return nil
	}
	s.notice = ""

	var codePtr *string
	if strings.TrimSpace(code) != "" {
		codePtr = &code
	}

	s.busy = true
	handle := s.timeline.AppendOptimistic(p, codePtr)
	sessionID := s.resolver.Current()

	c := s.api
	return func() tea.Msg {
		res, err := c.Query(p, codePtr, sessionID)
		return QueryResultMsg{
			Handle:    handle,
			SessionID: sessionID,
			Result:    res,
			Err:       err,
		}
	}
}

// Apply finishes the cycle. The optimistic message is never retracted: on
// failure it stays, with the error notice appended after it. A result for a
// conversation the user has since left never touches the current timeline,
// though a 401 still forces the auth transition. The returned command is
// non-nil only on the promotion path.
func (s *Submitter) Apply(msg QueryResultMsg) tea.Cmd {
	s.busy = false

	// The timeline holds the current session only; check the result still
	// belongs there. With no session at issue time, the optimistic entry
	// doubles as the staleness witness.
	stale := msg.SessionID != "" && msg.SessionID != s.resolver.Current()
	if msg.SessionID == "" {
		stale = !s.timeline.Has(msg.Handle)
	}

	if msg.Err != nil {
		if errors.Is(msg.Err, api.ErrUnauthorized) {
			if !stale {
				s.timeline.AppendError(loginRequiredText)
			}
			s.auth.ForceLoggedOut()
			return nil
		}
		config.Logger.WithError(msg.Err).Warn("query failed")
		if !stale {
			s.timeline.AppendError(connectivityText)
		}
		return nil
	}

	if stale {
		config.Logger.WithField("session", msg.SessionID).Info("dropping response for a session no longer current")
		return nil
	}

	// Prefer the server-confirmed id for the user turn; current backends do
	// not return one, so fall back to a fresh stable local id.
	finalID := msg.Result.MessageID
	if finalID == "" {
		finalID = gonanoid.Must(12)
	}
	if !s.timeline.Reconcile(msg.Handle, finalID) {
		// optimistic entry was discarded while the call was in flight
		return nil
	}
	s.timeline.AppendAssistant(msg.Result.Response)

	if msg.SessionID == "" && msg.Result.SessionID != "" {
		return s.resolver.Promote(msg.Result.SessionID)
	}
	return nil
}
