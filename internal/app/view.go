package app

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"termchat/internal/session"
)

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	if width <= 0 || height <= 0 {
		return
	}
	sessionWidth := m.sessionWidth()
	m.compose.SetWidth(max(minSessionWide, sessionWidth-4))
	m.viewport.SetWidth(sessionWidth)
	// Header, divider, compose line and status line.
	m.viewport.SetHeight(max(1, height-4))
	m.refreshViewport(false)
}

func (m *Model) sessionWidth() int {
	width := m.width
	if m.session.Snapshot().SidebarOpen {
		width -= sidebarWidth + 1
	}
	return max(minSessionWide, width)
}

func (m *Model) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion

	if m.width == 0 || m.height == 0 {
		v.SetContent("Loading...")
		return v
	}

	snap := m.session.Snapshot()
	if m.confirm.IsOpen() {
		v.SetContent(lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.confirm.View()))
		return v
	}
	if m.prompt.IsOpen() {
		v.SetContent(lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.prompt.View()))
		return v
	}
	if snap.Mode == session.ModeLanding {
		v.SetContent(m.landingView())
		return v
	}
	v.SetContent(m.activeView(snap))
	return v
}

func (m *Model) landingView() string {
	lines := []string{
		headerStyle.Render("termchat"),
		helpStyle.Render("Ask about shell commands. Enter to start, ctrl+c to quit."),
		"",
		m.landing.View(),
	}
	block := landingFrameStyle.Width(landingWidth).Render(strings.Join(lines, "\n"))
	if m.status != "" {
		block += "\n" + m.statusLine()
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, block)
}

func (m *Model) activeView(snap session.Snapshot) string {
	sessionWidth := m.sessionWidth()
	title := "No chat selected"
	if chat, ok := snap.ActiveChat(); ok {
		title = displayName(chat.Name)
	}
	surface := strings.Join([]string{
		headerStyle.Render(truncateToWidth(title, sessionWidth)),
		dividerStyle.Render(strings.Repeat("─", sessionWidth)),
		m.viewport.View(),
		m.compose.View(),
	}, "\n")

	body := surface
	if snap.SidebarOpen {
		sidebar := renderSidebar(snap, sidebarWidth, m.height-1, m.spinner.View())
		separator := dividerStyle.Render(strings.TrimRight(strings.Repeat("│\n", max(1, m.height-1)), "\n"))
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, separator, surface)
	}
	return body + "\n" + m.statusLine()
}

func (m *Model) statusLine() string {
	snap := m.session.Snapshot()
	switch {
	case m.status != "" && m.statusError:
		return statusErrorStyle.Render(m.status)
	case snap.LastError != nil:
		return statusErrorStyle.Render(snap.LastError.Error()) + helpStyle.Render("  (esc to dismiss)")
	case m.status != "":
		return statusStyle.Render(m.status)
	case snap.Loading.LoadingChats:
		return activityStyle.Render(m.spinner.View() + " loading chats")
	case snap.Mode == session.ModeActive:
		return helpStyle.Render("enter send · ↑/↓ select · ^b sidebar · ^y copy id · ^l refresh · ^c quit")
	}
	return ""
}
