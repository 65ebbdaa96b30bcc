// Package ui is the terminal presentation adapter. It renders the
// controller's read models and forwards input to its operations; realtime
// events arrive as bubbletea messages so every mutation happens inside the
// update loop.
package ui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"slackline/internal/api"
	"slackline/internal/chat"
)

type mode int

const (
	modeLogin mode = iota
	modeMain
	modeNewChannel
)

type focusRegion int

const (
	focusCompose focusRegion = iota
	focusChannels
)

// ChatEventMsg wraps a realtime event for delivery through the bubbletea
// message loop.
type ChatEventMsg struct {
	Event chat.Event
}

type errMsg struct{ err error }

type loggedInMsg struct{ user api.User }

type directoryMsg struct{}

type channelSelectedMsg struct{ id int64 }

type messageSentMsg struct{}

type channelCreatedMsg struct{ channel api.Channel }

type opDoneMsg struct{ notice string }

type noticeFadeMsg struct{}

// noticeFadeDelay is how long a transient notice stays visible.
const noticeFadeDelay = 4 * time.Second

// Model is the bubbletea model for the whole client.
type Model struct {
	ctrl *chat.Controller

	mode  mode
	focus focusRegion

	loginInputs [3]textinput.Model
	loginFocus  int

	compose   textinput.Model
	nameInput textinput.Model
	descInput textinput.Model
	chanFocus int

	channelCursor int
	viewport      viewport.Model
	ready         bool
	width         int
	height        int

	notice    string
	noticeErr bool
}

// New builds the model. If a session was restored the login form is skipped.
func New(ctrl *chat.Controller) Model {
	m := Model{ctrl: ctrl, mode: modeLogin}

	labels := [3]string{"username", "email", "display name (optional)"}
	for i := range m.loginInputs {
		in := textinput.New()
		in.Placeholder = labels[i]
		in.CharLimit = 64
		m.loginInputs[i] = in
	}
	m.loginInputs[0].Focus()

	m.compose = textinput.New()
	m.compose.Placeholder = "select a channel to start chatting"
	m.compose.CharLimit = 2000

	m.nameInput = textinput.New()
	m.nameInput.Placeholder = "channel name"
	m.nameInput.CharLimit = 64
	m.descInput = textinput.New()
	m.descInput.Placeholder = "description (optional)"
	m.descInput.CharLimit = 256

	if _, ok := ctrl.CurrentUser(); ok {
		m.mode = modeMain
		m.focus = focusChannels
	}
	return m
}

// Init starts cursor blinking and, when already logged in, the initial
// directory load.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.mode == modeMain {
		cmds = append(cmds, m.refreshDirectoryCmd())
	}
	return tea.Batch(cmds...)
}

// Update is the single-threaded event loop: user input, timers, and network
// results all pass through here.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case ChatEventMsg:
		m.ctrl.HandleEvent(context.Background(), msg.Event)
		m.refreshViewport()
		return m, nil

	case errMsg:
		m.notice = msg.err.Error()
		m.noticeErr = true
		return m, m.noticeFadeCmd()

	case opDoneMsg:
		m.notice = msg.notice
		m.noticeErr = false
		return m, m.noticeFadeCmd()

	case noticeFadeMsg:
		m.notice = ""
		return m, nil

	case loggedInMsg:
		m.mode = modeMain
		m.focus = focusChannels
		return m, m.refreshDirectoryCmd()

	case directoryMsg:
		return m, nil

	case channelSelectedMsg:
		m.compose.Placeholder = "message (enter to send, /edit /delete /react)"
		m.focus = focusCompose
		m.compose.Focus()
		m.refreshViewport()
		return m, nil

	case messageSentMsg:
		m.refreshViewport()
		return m, nil

	case channelCreatedMsg:
		m.mode = modeMain
		return m, m.selectChannelCmd(msg.channel.ID)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.mode {
	case modeLogin:
		return m.handleLoginKey(msg)
	case modeNewChannel:
		return m.handleNewChannelKey(msg)
	default:
		return m.handleMainKey(msg)
	}
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		m.setLoginFocus((m.loginFocus + 1) % len(m.loginInputs))
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.setLoginFocus((m.loginFocus + len(m.loginInputs) - 1) % len(m.loginInputs))
		return m, nil
	case tea.KeyEnter:
		if m.loginFocus < len(m.loginInputs)-1 {
			m.setLoginFocus(m.loginFocus + 1)
			return m, nil
		}
		username := m.loginInputs[0].Value()
		email := m.loginInputs[1].Value()
		display := m.loginInputs[2].Value()
		return m, m.loginCmd(username, email, display)
	}
	return m.updateInputs(msg)
}

func (m Model) handleNewChannelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeMain
		m.nameInput.SetValue("")
		m.descInput.SetValue("")
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab:
		if m.chanFocus == 0 {
			m.chanFocus = 1
			m.nameInput.Blur()
			m.descInput.Focus()
		} else {
			m.chanFocus = 0
			m.descInput.Blur()
			m.nameInput.Focus()
		}
		return m, nil
	case tea.KeyEnter:
		name := m.nameInput.Value()
		desc := m.descInput.Value()
		m.nameInput.SetValue("")
		m.descInput.SetValue("")
		return m, m.createChannelCmd(name, desc)
	}
	return m.updateInputs(msg)
}

func (m Model) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlN:
		m.mode = modeNewChannel
		m.chanFocus = 0
		m.compose.Blur()
		m.nameInput.Focus()
		return m, nil
	case tea.KeyCtrlR:
		return m, m.refreshDirectoryCmd()
	case tea.KeyCtrlL:
		return m, m.logoutCmd()
	case tea.KeyTab:
		if m.focus == focusCompose {
			m.focus = focusChannels
			m.compose.Blur()
		} else {
			m.focus = focusCompose
			m.compose.Focus()
		}
		return m, nil
	}

	if m.focus == focusChannels {
		switch msg.Type {
		case tea.KeyUp:
			if m.channelCursor > 0 {
				m.channelCursor--
			}
			return m, nil
		case tea.KeyDown:
			if m.channelCursor < len(m.ctrl.Channels())-1 {
				m.channelCursor++
			}
			return m, nil
		case tea.KeyEnter:
			channels := m.ctrl.Channels()
			if m.channelCursor < len(channels) {
				return m, m.selectChannelCmd(channels[m.channelCursor].ID)
			}
			return m, nil
		}
		return m, nil
	}

	// Compose focus.
	if msg.Type == tea.KeyEnter {
		content := m.compose.Value()
		m.compose.SetValue("")
		if strings.TrimSpace(content) == "" {
			return m, nil
		}
		if strings.HasPrefix(content, "/") {
			return m, m.slashCommandCmd(content)
		}
		return m, m.sendCmd(content)
	}

	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace || msg.Type == tea.KeyBackspace {
		m.ctrl.Keystroke()
	}
	return m.updateInputs(msg)
}

func (m *Model) setLoginFocus(i int) {
	m.loginFocus = i
	for j := range m.loginInputs {
		if j == i {
			m.loginInputs[j].Focus()
		} else {
			m.loginInputs[j].Blur()
		}
	}
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch m.mode {
	case modeLogin:
		for i := range m.loginInputs {
			m.loginInputs[i], cmd = m.loginInputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
	case modeNewChannel:
		m.nameInput, cmd = m.nameInput.Update(msg)
		cmds = append(cmds, cmd)
		m.descInput, cmd = m.descInput.Update(msg)
		cmds = append(cmds, cmd)
	default:
		m.compose, cmd = m.compose.Update(msg)
		cmds = append(cmds, cmd)
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// slashCommandCmd parses compose commands: /edit <id> <text>, /delete <id>,
// /react <id> <emoji>.
func (m Model) slashCommandCmd(input string) tea.Cmd {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil
	}

	parseID := func() (int64, bool) {
		if len(fields) < 2 {
			return 0, false
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		return id, err == nil
	}

	switch fields[0] {
	case "/edit":
		id, ok := parseID()
		if !ok || len(fields) < 3 {
			return notifyErr(errUsage("/edit <id> <new content>"))
		}
		content := strings.Join(fields[2:], " ")
		return func() tea.Msg {
			if err := m.ctrl.EditMessage(context.Background(), id, content); err != nil {
				return errMsg{err}
			}
			return opDoneMsg{notice: "edit sent"}
		}
	case "/delete":
		id, ok := parseID()
		if !ok {
			return notifyErr(errUsage("/delete <id>"))
		}
		return func() tea.Msg {
			if err := m.ctrl.DeleteMessage(context.Background(), id); err != nil {
				return errMsg{err}
			}
			return opDoneMsg{notice: "delete sent"}
		}
	case "/react":
		id, ok := parseID()
		if !ok || len(fields) < 3 {
			return notifyErr(errUsage("/react <id> <emoji>"))
		}
		return func() tea.Msg {
			if _, err := m.ctrl.React(context.Background(), id, fields[2]); err != nil {
				return errMsg{err}
			}
			return opDoneMsg{notice: "reaction added"}
		}
	default:
		return notifyErr(errUsage("commands: /edit /delete /react"))
	}
}

func (m Model) loginCmd(username, email, display string) tea.Cmd {
	return func() tea.Msg {
		user, err := m.ctrl.Login(context.Background(), username, email, display)
		if err != nil {
			return errMsg{err}
		}
		return loggedInMsg{user: user}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.ctrl.Logout(context.Background()); err != nil {
			return errMsg{err}
		}
		return tea.Quit()
	}
}

func (m Model) refreshDirectoryCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.ctrl.RefreshDirectory(context.Background()); err != nil {
			return errMsg{err}
		}
		return directoryMsg{}
	}
}

func (m Model) selectChannelCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		if err := m.ctrl.SelectChannel(context.Background(), id); err != nil {
			return errMsg{err}
		}
		return channelSelectedMsg{id: id}
	}
}

func (m Model) sendCmd(content string) tea.Cmd {
	return func() tea.Msg {
		if err := m.ctrl.SendMessage(context.Background(), content); err != nil {
			return errMsg{err}
		}
		return messageSentMsg{}
	}
}

func (m Model) createChannelCmd(name, desc string) tea.Cmd {
	return func() tea.Msg {
		ch, err := m.ctrl.CreateChannel(context.Background(), name, desc)
		if err != nil {
			return errMsg{err}
		}
		return channelCreatedMsg{channel: ch}
	}
}

func (m Model) noticeFadeCmd() tea.Cmd {
	return tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg {
		return noticeFadeMsg{}
	})
}

func notifyErr(err error) tea.Cmd {
	return func() tea.Msg { return errMsg{err} }
}

type usageError string

func errUsage(s string) error { return usageError(s) }

func (e usageError) Error() string { return string(e) }
