package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/RivanJarjes/score-mvp-prototype/model"
)

func (m Model) chatWidth() int {
	w := m.width - sidebarWidth - 1
	if w < 40 {
		w = 40
	}
	return w
}

func (m *Model) rebuildRenderer() {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.chatWidth()-2),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}

// rebuildChat re-renders the timeline into viewport lines. Assistant turns go
// through glamour; user turns and error notices render plain.
func (m *Model) rebuildChat() {
	m.chatLines = nil
	maxWidth := m.chatWidth() - 2

	for _, msg := range m.timeline.Messages() {
		switch {
		case msg.Err:
			m.chatLines = append(m.chatLines, assistantRoleStyle.Render(pad(" ASSISTANT", maxWidth)))
			for _, wl := range wrapText(msg.Content, maxWidth-2) {
				m.chatLines = append(m.chatLines, " "+errorTextStyle.Render(wl))
			}

		case msg.Role == model.RoleAssistant:
			m.chatLines = append(m.chatLines, assistantRoleStyle.Render(pad(" ASSISTANT", maxWidth)))
			m.chatLines = append(m.chatLines, m.renderMarkdown(msg.Content, maxWidth)...)

		default:
			m.chatLines = append(m.chatLines, userRoleStyle.Render(pad(" YOU", maxWidth)))
			for _, wl := range wrapText(userDisplayText(msg), maxWidth-2) {
				m.chatLines = append(m.chatLines, " "+wl)
			}
			if msg.SyntaxErrors != nil && *msg.SyntaxErrors != "" && *msg.SyntaxErrors != "None" {
				m.chatLines = append(m.chatLines, " "+annotationStyle.Render("[syntax error detected]"))
			}
		}

		m.chatLines = append(m.chatLines, "")
	}
}

// userDisplayText prefers the structured problem/code fields the server
// stores for user turns over the combined content blob.
func userDisplayText(msg model.Message) string {
	if msg.Problem == nil {
		return msg.Content
	}
	text := *msg.Problem
	if msg.Code != nil && *msg.Code != "" {
		text += "\n\n```\n" + *msg.Code + "\n```"
	}
	return text
}

func (m Model) renderMarkdown(content string, maxWidth int) []string {
	if m.renderer != nil {
		if out, err := m.renderer.Render(content); err == nil {
			return strings.Split(strings.TrimRight(out, "\n"), "\n")
		}
	}
	var lines []string
	for _, wl := range wrapText(content, maxWidth-2) {
		lines = append(lines, " "+wl)
	}
	return lines
}

func (m Model) chatVisibleRows() int {
	// title bar + problem label + problem + code label + code + status + help
	rows := m.height - m.problem.Height() - m.code.Height() - 5
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) chatScroll(n int) {
	m.chatOffset += n
	maxOffset := len(m.chatLines) - m.chatVisibleRows()
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.chatOffset > maxOffset {
		m.chatOffset = maxOffset
	}
	if m.chatOffset < 0 {
		m.chatOffset = 0
	}
}

func (m *Model) chatToBottom() {
	maxOffset := len(m.chatLines) - m.chatVisibleRows()
	if maxOffset < 0 {
		maxOffset = 0
	}
	m.chatOffset = maxOffset
}

func (m Model) viewChecking() string {
	msg := m.spin.View() + " Checking session..."
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
}

func (m Model) viewChat() string {
	sidebar := lipgloss.NewStyle().Width(sidebarWidth).Render(m.viewSidebar())
	main := m.viewMain()
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", main)
}

func (m Model) viewMain() string {
	var b strings.Builder
	width := m.chatWidth()

	// title bar
	title := m.timeline.Title()
	if title == "" {
		if m.resolver.Current() == "" {
			title = "New conversation"
		} else {
			title = "Conversation"
		}
	}
	b.WriteString(chatTitleStyle.Render(truncate(title, width-2)))
	b.WriteString("\n")

	// chat viewport
	visible := m.chatVisibleRows()
	if m.resolver.Loading() {
		b.WriteString("\n  " + m.spin.View() + " Loading conversation...\n")
		for i := 2; i < visible; i++ {
			b.WriteString("\n")
		}
	} else if len(m.chatLines) == 0 {
		b.WriteString("\n  " + dimStyle.Render("Ask a question to get started.") + "\n")
		for i := 2; i < visible; i++ {
			b.WriteString("\n")
		}
	} else {
		end := m.chatOffset + visible
		if end > len(m.chatLines) {
			end = len(m.chatLines)
		}
		for i := m.chatOffset; i < end; i++ {
			b.WriteString(m.chatLines[i])
			b.WriteString("\n")
		}
		for i := end - m.chatOffset; i < visible; i++ {
			b.WriteString("\n")
		}
	}

	// composer
	b.WriteString(m.fieldHeader("Problem", focusProblem))
	b.WriteString("\n")
	b.WriteString(m.problem.View())
	b.WriteString("\n")
	b.WriteString(m.fieldHeader("Code", focusCode))
	b.WriteString("\n")
	b.WriteString(m.code.View())
	b.WriteString("\n")

	// status + help
	b.WriteString(m.viewStatusBar())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  Ctrl+S: submit  Ctrl+N: new  Tab: focus  /: search  Ctrl+L: sign out  Ctrl+C: quit"))

	return b.String()
}

func (m Model) fieldHeader(label string, f focusArea) string {
	if m.focus == f {
		return focusedLabelStyle.Render(" " + label)
	}
	return blurredLabelStyle.Render(" " + label)
}

func (m Model) viewStatusBar() string {
	left := statusBarStyle.Render(m.auth.Email())
	session := m.resolver.Nav()
	if session == "" {
		session = "no session"
	}
	left += dimStyle.Render("  " + session)

	switch {
	case m.submitter.Busy():
		return left + "  " + m.spin.View() + dimStyle.Render(" waiting for the tutor...")
	case m.notice != "":
		return left + "  " + noticeStyle.Render(m.notice)
	}
	return left
}

// wrapText splits text into lines that fit within maxWidth.
func wrapText(text string, maxWidth int) []string {
	if maxWidth < 1 {
		maxWidth = 1
	}
	var result []string
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			result = append(result, "")
			continue
		}
		runes := []rune(line)
		for len(runes) > maxWidth {
			result = append(result, string(runes[:maxWidth]))
			runes = runes[maxWidth:]
		}
		result = append(result, string(runes))
	}
	return result
}
