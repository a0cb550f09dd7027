package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// login form field indices
const (
	fieldEmail = iota
	fieldPassword
	fieldAction
	fieldCount
)

type loginForm struct {
	email    textinput.Model
	password textinput.Model
	action   int // 0 = sign in, 1 = register
	focus    int
}

func newLoginForm() loginForm {
	ei := textinput.New()
	ei.Placeholder = "you@school.edu"
	ei.CharLimit = 200
	ei.Focus()

	pi := textinput.New()
	pi.Placeholder = "password"
	pi.CharLimit = 200
	pi.EchoMode = textinput.EchoPassword
	pi.EchoCharacter = '*'

	return loginForm{
		email:    ei,
		password: pi,
		focus:    fieldEmail,
	}
}

func (f *loginForm) blurCurrent() {
	switch f.focus {
	case fieldEmail:
		f.email.Blur()
	case fieldPassword:
		f.password.Blur()
	}
}

func (f *loginForm) focusCurrent() {
	switch f.focus {
	case fieldEmail:
		f.email.Focus()
		f.email.CursorEnd()
	case fieldPassword:
		f.password.Focus()
		f.password.CursorEnd()
	}
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.form
	key := msg.String()

	switch key {
	case "ctrl+c":
		return m, tea.Quit

	case "tab", "down":
		f.blurCurrent()
		f.focus = (f.focus + 1) % fieldCount
		f.focusCurrent()
		return m, nil

	case "shift+tab", "up":
		f.blurCurrent()
		f.focus = (f.focus - 1 + fieldCount) % fieldCount
		f.focusCurrent()
		return m, nil

	case "enter":
		email := strings.TrimSpace(f.email.Value())
		password := f.password.Value()
		if email == "" || password == "" {
			return m, nil
		}
		var cmd tea.Cmd
		if f.action == 1 {
			cmd = m.auth.Register(email, password)
		} else {
			cmd = m.auth.Login(email, password)
		}
		return m, cmd
	}

	// field-specific keys
	switch f.focus {
	case fieldEmail:
		var cmd tea.Cmd
		f.email, cmd = f.email.Update(msg)
		return m, cmd
	case fieldPassword:
		var cmd tea.Cmd
		f.password, cmd = f.password.Update(msg)
		return m, cmd
	case fieldAction:
		switch key {
		case "left", "h":
			f.action = 0
		case "right", "l":
			f.action = 1
		}
	}

	return m, nil
}

func (m Model) viewAuth() string {
	f := m.form

	titleStr := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		Render("SCORE — coding tutor")

	emailLabel := m.formLabel("Email:", f.focus == fieldEmail)
	passLabel := m.formLabel("Pass:", f.focus == fieldPassword)
	actionLabel := m.formLabel("Mode:", f.focus == fieldAction)
	actionValue := renderRadio([]string{"Sign in", "Register"}, f.action, f.focus == fieldAction)

	status := ""
	if m.auth.Busy() {
		status = dimStyle.Render(m.spin.View() + " signing in...")
	} else if errText := m.auth.FormError(); errText != "" {
		status = formErrStyle.Render(errText)
	}

	content := fmt.Sprintf(
		"%s\n\n%s  %s\n\n%s  %s\n\n%s  %s\n\n%s\n%s",
		titleStr,
		emailLabel, f.email.View(),
		passLabel, f.password.View(),
		actionLabel, actionValue,
		status,
		dimStyle.Render("Enter: submit  Tab: next  ←→: toggle  Ctrl+C: quit"),
	)

	box := boxStyle.Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) formLabel(label string, focused bool) string {
	style := lipgloss.NewStyle().Width(7)
	if focused {
		style = style.Bold(true).Foreground(lipgloss.Color("39"))
	} else {
		style = style.Foreground(lipgloss.Color("252"))
	}
	return style.Render(label)
}

func renderRadio(options []string, selected int, focused bool) string {
	var parts []string
	for i, opt := range options {
		if i == selected {
			style := lipgloss.NewStyle().Bold(true)
			if focused {
				style = style.Foreground(lipgloss.Color("39"))
			} else {
				style = style.Foreground(lipgloss.Color("255"))
			}
			parts = append(parts, style.Render("● "+opt))
		} else {
			parts = append(parts, dimStyle.Render("○ "+opt))
		}
	}
	return strings.Join(parts, "   ")
}
