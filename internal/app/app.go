// Package app wires the client together: config, logging, session store,
// REST client, realtime connection, controller, and the TUI.
package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"slackline/internal/api"
	"slackline/internal/chat"
	"slackline/internal/config"
	"slackline/internal/directory"
	"slackline/internal/realtime"
	"slackline/internal/session"
	"slackline/internal/ui"
)

// App holds the assembled client.
type App struct {
	cfg  config.Config
	log  *zerolog.Logger
	ctrl *chat.Controller
	conn *realtime.Conn
}

// New constructs the application with the provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) *App {
	client := api.NewClient(cfg.APIURL, nil, logger)
	store := session.NewStore(cfg.SessionPath())
	dir := directory.New(client)
	conn := realtime.New(cfg.SocketURL, cfg.DialTimeout, logger, nil)
	ctrl := chat.NewController(client, conn, store, dir, chat.SendMode(cfg.SendTransport), cfg.TypingQuiet, logger)

	return &App{
		cfg:  cfg,
		log:  logger,
		ctrl: ctrl,
		conn: conn,
	}
}

// Run restores the session, starts the realtime connection, and blocks in
// the TUI until quit or context cancellation.
func (a *App) Run(ctx context.Context) error {
	a.ctrl.RestoreSession()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(ui.New(a.ctrl), tea.WithAltScreen(), tea.WithContext(ctx))

	// Realtime events enter the TUI's update loop as messages, so all state
	// mutation happens from one place.
	a.conn.SetHandler(func(ev chat.Event) {
		program.Send(ui.ChatEventMsg{Event: ev})
	})
	go a.conn.Run(ctx)

	_, err := program.Run()
	return err
}

// Logout clears the persisted session without starting the TUI.
func (a *App) Logout(ctx context.Context) error {
	return a.ctrl.Logout(ctx)
}
