package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateSidebar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.clampOffset()
		}

	case "down", "j":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
			m.clampOffset()
		}

	case "home", "g":
		m.cursor = 0
		m.clampOffset()

	case "end", "G":
		m.cursor = max(0, len(m.filtered)-1)
		m.clampOffset()

	case "enter":
		if len(m.filtered) > 0 {
			cmd := m.resolver.Navigate(m.filtered[m.cursor].ID)
			m.rebuildChat()
			return m, cmd
		}

	case "esc":
		// navigation value cleared: back to the blank no-session view
		m.resolver.ClearNavigation()
		m.rebuildChat()
		return m, nil

	case "/":
		m.searchInput.Focus()
		m.mode = modeSearch
		return m, nil

	case "r":
		return m, loadSessionsCmd(m.api)
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searchInput.Blur()
		m.mode = modeChat
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *Model) applyFilter() {
	m.filtered = nil
	search := strings.ToLower(m.searchInput.Value())

	for _, s := range m.sessions {
		if search != "" {
			haystack := strings.ToLower(s.DisplayTitle() + " " + s.ID)
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		m.filtered = append(m.filtered, s)
	}

	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
	m.clampOffset()
}

func (m Model) sidebarVisibleRows() int {
	// title + search/status line at the top, help bar at the bottom
	rows := m.height - 3
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) clampOffset() {
	visible := m.sidebarVisibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m Model) viewSidebar() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Sessions"))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" %d", len(m.filtered))))
	b.WriteString("\n")

	if m.mode == modeSearch {
		b.WriteString(m.searchInput.View())
	} else if q := m.searchInput.Value(); q != "" {
		b.WriteString(dimStyle.Render(" /" + q))
	}
	b.WriteString("\n")

	visible := m.sidebarVisibleRows()
	end := m.offset + visible
	if end > len(m.filtered) {
		end = len(m.filtered)
	}

	inner := sidebarWidth - 2
	for i := m.offset; i < end; i++ {
		s := m.filtered[i]
		line := truncate(s.DisplayTitle(), inner-5) + dimStyle.Render(fmt.Sprintf(" (%d)", s.MessageCount))
		marker := "  "
		if s.ID == m.resolver.Current() {
			marker = "* "
		}
		row := marker + line
		if i == m.cursor && m.focus == focusSidebar {
			row = selectedStyle.Render(pad(marker+truncate(s.DisplayTitle(), inner-5), inner))
		}
		b.WriteString(row + "\n")
	}

	rendered := end - m.offset
	for i := rendered; i < visible; i++ {
		b.WriteString("\n")
	}

	return b.String()
}

func truncate(s string, width int) string {
	if width < 1 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-2]) + ".."
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
