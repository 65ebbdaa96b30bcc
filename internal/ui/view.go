package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

const sidebarWidth = 26

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))

	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(lipgloss.Color("240"))

	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))

	activeChannelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	cursorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))

	onlineDot  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	offlineDot = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("○")

	authorStyle = lipgloss.NewStyle().Bold(true)
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	editedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	idStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	typingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	disconnectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)

	welcomeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(1, 2)

	formStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(1, 2)
)

func (m *Model) layout() {
	mainWidth := m.width - sidebarWidth - 2
	if mainWidth < 20 {
		mainWidth = 20
	}
	// header + typing line + compose + status line
	mainHeight := m.height - 5
	if mainHeight < 3 {
		mainHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(mainWidth, mainHeight)
		m.ready = true
	} else {
		m.viewport.Width = mainWidth
		m.viewport.Height = mainHeight
	}
	m.compose.Width = mainWidth - 4
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderMessages() string {
	msgs := m.ctrl.Messages()
	if _, active := m.ctrl.ActiveChannel(); !active {
		return welcomeStyle.Render("Pick a channel on the left to start.\n\nctrl+n new channel · ctrl+r refresh · tab switch focus · ctrl+c quit")
	}
	if len(msgs) == 0 {
		return welcomeStyle.Render("No messages yet. Say hi!")
	}

	var b strings.Builder
	for _, msg := range msgs {
		ts := formatTime(msg.CreatedAt)
		b.WriteString(authorStyle.Render(msg.Author()))
		b.WriteString(" ")
		b.WriteString(timeStyle.Render(ts))
		b.WriteString(" ")
		b.WriteString(idStyle.Render(fmt.Sprintf("#%d", msg.ID)))
		if msg.IsEdited {
			b.WriteString(" ")
			b.WriteString(editedStyle.Render("(edited)"))
		}
		b.WriteString("\n")
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// View renders the whole screen for the current mode.
func (m Model) View() string {
	switch m.mode {
	case modeLogin:
		return m.viewLogin()
	case modeNewChannel:
		return m.viewNewChannel()
	default:
		return m.viewMain()
	}
}

func (m Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("slackline"))
	b.WriteString("\n\nWho are you?\n\n")
	for i := range m.loginInputs {
		b.WriteString(m.loginInputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\nenter to continue · ctrl+c to quit")
	if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(m.renderNotice())
	}
	return formStyle.Render(b.String())
}

func (m Model) viewNewChannel() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New channel"))
	b.WriteString("\n\n")
	b.WriteString(m.nameInput.View())
	b.WriteString("\n")
	b.WriteString(m.descInput.View())
	b.WriteString("\n\nenter to create · esc to cancel")
	if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(m.renderNotice())
	}
	return formStyle.Render(b.String())
}

func (m Model) viewMain() string {
	sidebar := sidebarStyle.Height(m.height - 1).Render(m.renderSidebar())
	main := m.renderMain()
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
}

func (m Model) renderSidebar() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("slackline"))
	if !m.ctrl.Connected() {
		b.WriteString(" ")
		b.WriteString(disconnectedStyle.Render("⚠ offline"))
	}
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("CHANNELS"))
	b.WriteString("\n")
	active, hasActive := m.ctrl.ActiveChannel()
	for i, ch := range m.ctrl.Channels() {
		line := "# " + ch.Name
		if hasActive && ch.ID == active.ID {
			line = activeChannelStyle.Render(line)
		}
		if m.focus == focusChannels && i == m.channelCursor {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("USERS"))
	b.WriteString("\n")
	for _, u := range m.ctrl.Users() {
		dot := offlineDot
		if u.IsOnline {
			dot = onlineDot
		}
		b.WriteString("  " + dot + " " + u.Name() + "\n")
	}

	return b.String()
}

func (m Model) renderMain() string {
	var b strings.Builder

	if ch, ok := m.ctrl.ActiveChannel(); ok {
		header := "# " + ch.Name
		if ch.Description != "" {
			header += "  " + timeStyle.Render(ch.Description)
		}
		b.WriteString(titleStyle.Render(header))
	} else {
		b.WriteString(titleStyle.Render("no channel selected"))
	}
	b.WriteString("\n")

	if m.ready {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")

	if who, ok := m.ctrl.TypingIndicator(); ok {
		b.WriteString(typingStyle.Render(who + " is typing…"))
	}
	b.WriteString("\n")

	b.WriteString(m.compose.View())
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(m.renderNotice())
	} else {
		b.WriteString(timeStyle.Render("tab focus · ctrl+n new channel · ctrl+r refresh · ctrl+l logout · ctrl+c quit"))
	}

	return b.String()
}

func (m Model) renderNotice() string {
	if m.noticeErr {
		return errStyle.Render(m.notice)
	}
	return noticeStyle.Render(m.notice)
}

// formatTime renders a backend timestamp as local HH:MM; unparseable values
// pass through untouched.
func formatTime(raw string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "Mon, 02 Jan 2006 15:04:05 GMT"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Local().Format("15:04")
		}
	}
	return raw
}
