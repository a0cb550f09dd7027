package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/RivanJarjes/score-mvp-prototype/api"
	"github.com/RivanJarjes/score-mvp-prototype/config"
	"github.com/RivanJarjes/score-mvp-prototype/controller"
	"github.com/RivanJarjes/score-mvp-prototype/model"
)

type mode int

const (
	modeChecking mode = iota
	modeAuth
	modeChat
	modeSearch
)

type focusArea int

const (
	focusSidebar focusArea = iota
	focusProblem
	focusCode
)

const sidebarWidth = 32

// sessionsLoadedMsg is sent when the sidebar list fetch completes.
type sessionsLoadedMsg struct {
	sessions []model.SessionSummary
	err      error
}

func loadSessionsCmd(c *api.Client) tea.Cmd {
	return func() tea.Msg {
		sessions, err := c.ListSessions()
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
}

type Model struct {
	api       *api.Client
	auth      *controller.AuthManager
	resolver  *controller.SessionResolver
	timeline  *controller.Timeline
	submitter *controller.Submitter

	width  int
	height int
	mode   mode
	focus  focusArea

	// sidebar
	sessions    []model.SessionSummary
	filtered    []model.SessionSummary
	cursor      int
	offset      int
	searchInput textinput.Model

	// auth form
	form loginForm

	// composer
	problem textarea.Model
	code    textarea.Model

	// chat viewport
	chatLines  []string
	chatOffset int
	renderer   *glamour.TermRenderer

	spin   spinner.Model
	notice string
}

// NewModel wires the controllers together and builds the root TUI model.
// deepLink is the session id supplied on the command line, if any.
func NewModel(c *api.Client, deepLink string) Model {
	timeline := controller.NewTimeline()
	resolver := controller.NewSessionResolver(c, timeline, func() tea.Cmd {
		return loadSessionsCmd(c)
	})
	auth := controller.NewAuthManager(c)
	auth.OnLogout(resolver.Reset)
	resolver.OnUnauthorized(auth.ForceLoggedOut)
	submitter := controller.NewSubmitter(c, auth, resolver, timeline)

	if deepLink != "" {
		resolver.SetDeepLink(deepLink)
	}

	si := textinput.New()
	si.Placeholder = "search..."
	si.CharLimit = 100

	problem := textarea.New()
	problem.Placeholder = "Describe the problem you're stuck on..."
	problem.SetHeight(3)
	problem.CharLimit = 4000

	code := textarea.New()
	code.Placeholder = "Paste your code here (optional)"
	code.SetHeight(6)
	code.CharLimit = 20000

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		api:         c,
		auth:        auth,
		resolver:    resolver,
		timeline:    timeline,
		submitter:   submitter,
		mode:        modeChecking,
		focus:       focusProblem,
		searchInput: si,
		form:        newLoginForm(),
		problem:     problem,
		code:        code,
		spin:        sp,
		width:       120,
		height:      30,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.auth.CheckStatus(), m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rebuildRenderer()
		m.resizeWidgets()
		m.rebuildChat()
		m.chatToBottom()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case controller.StatusCheckedMsg:
		m.auth.ApplyStatus(msg)
		return m.afterAuthChange()

	case controller.AuthResultMsg:
		m.auth.ApplyAuthResult(msg)
		return m.afterAuthChange()

	case controller.HistoryLoadedMsg:
		m.resolver.ApplyHistory(msg)
		m.rebuildChat()
		m.chatToBottom()
		if m.auth.Phase() == controller.AuthLoggedOut && m.mode != modeAuth {
			// cookie expired under a history fetch
			m.mode = modeAuth
			m.form = newLoginForm()
		}
		return m, nil

	case controller.QueryResultMsg:
		cmd := m.submitter.Apply(msg)
		m.applyInputReset()
		m.rebuildChat()
		m.chatToBottom()
		if m.auth.Phase() == controller.AuthLoggedOut {
			// 401 mid-conversation: back to the sign-in branch.
			m.mode = modeAuth
			m.form = newLoginForm()
		}
		return m, cmd

	case sessionsLoadedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthorized) {
				m.auth.ForceLoggedOut()
				m.mode = modeAuth
				m.form = newLoginForm()
				return m, nil
			}
			config.Logger.WithError(msg.err).Warn("session list fetch failed")
			return m, nil
		}
		m.sessions = msg.sessions
		m.applyFilter()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeChecking:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case modeAuth:
			return m.updateAuth(msg)
		case modeChat:
			return m.updateChat(msg)
		case modeSearch:
			return m.updateSearch(msg)
		}
	}
	return m, nil
}

// afterAuthChange moves the UI onto the branch the auth phase allows and,
// on login, fires the sidebar load plus any deferred deep-link fetch.
func (m Model) afterAuthChange() (tea.Model, tea.Cmd) {
	switch m.auth.Phase() {
	case controller.AuthLoggedIn:
		m.mode = modeChat
		m.setFocus(focusProblem)
		return m, tea.Batch(loadSessionsCmd(m.api), m.resolver.AuthConfirmed())
	case controller.AuthLoggedOut:
		m.mode = modeAuth
		return m, nil
	}
	return m, nil
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+l":
		cmd := m.auth.Logout()
		m.applyInputReset()
		m.rebuildChat()
		m.sessions = nil
		m.filtered = nil
		m.cursor = 0
		m.offset = 0
		m.notice = ""
		m.mode = modeAuth
		m.form = newLoginForm()
		return m, cmd

	case "ctrl+n":
		m.resolver.StartNew()
		m.applyInputReset()
		m.rebuildChat()
		m.notice = ""
		m.setFocus(focusProblem)
		return m, nil

	case "ctrl+s":
		cmd := m.submitter.Submit(m.problem.Value(), m.code.Value())
		m.notice = m.submitter.Notice()
		m.rebuildChat()
		m.chatToBottom()
		return m, cmd

	case "tab":
		m.cycleFocus(1)
		return m, nil

	case "shift+tab":
		m.cycleFocus(-1)
		return m, nil

	case "pgup":
		m.chatScroll(-m.chatVisibleRows())
		return m, nil

	case "pgdown":
		m.chatScroll(m.chatVisibleRows())
		return m, nil
	}

	switch m.focus {
	case focusSidebar:
		return m.updateSidebar(msg)
	case focusProblem:
		var cmd tea.Cmd
		m.problem, cmd = m.problem.Update(msg)
		return m, cmd
	case focusCode:
		var cmd tea.Cmd
		m.code, cmd = m.code.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) cycleFocus(dir int) {
	next := (int(m.focus) + dir + 3) % 3
	m.setFocus(focusArea(next))
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	m.problem.Blur()
	m.code.Blur()
	switch f {
	case focusProblem:
		m.problem.Focus()
	case focusCode:
		m.code.Focus()
	}
}

// applyInputReset clears whichever composer buffers the resolver invalidated.
func (m *Model) applyInputReset() {
	switch m.resolver.ConsumeInputReset() {
	case controller.InputClearProblem:
		m.problem.SetValue("")
	case controller.InputClearAll:
		m.problem.SetValue("")
		m.code.SetValue("")
	}
}

func (m *Model) resizeWidgets() {
	mainWidth := m.width - sidebarWidth - 1
	if mainWidth < 40 {
		mainWidth = 40
	}
	m.problem.SetWidth(mainWidth)
	m.code.SetWidth(mainWidth)
}

func (m Model) View() string {
	switch m.mode {
	case modeChecking:
		return m.viewChecking()
	case modeAuth:
		return m.viewAuth()
	default:
		return m.viewChat()
	}
}
