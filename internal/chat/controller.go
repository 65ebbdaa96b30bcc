// Package chat holds the client's core state: the active channel session,
// the sync engine that reconciles REST snapshots, local mutations, and
// realtime pushes into one message list, and the controller that owns all of
// it behind named operations.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"slackline/internal/api"
	"slackline/internal/directory"
	"slackline/internal/session"
)

// Validation errors, caught before any network call.
var (
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrNoChannel      = errors.New("no active channel")
	ErrUnknownChannel = errors.New("unknown channel")
	ErrEmptyUsername  = errors.New("username is required")
	ErrEmptyEmail     = errors.New("email is required")
	ErrEmptyContent   = errors.New("message content is empty")
	ErrEmptyName      = errors.New("channel name is required")
)

// SendMode selects how messages are sent.
type SendMode string

const (
	// SendREST posts the message and appends the server-confirmed copy.
	SendREST SendMode = "rest"
	// SendSocket emits a send_message event and appends only on the echoed
	// push.
	SendSocket SendMode = "socket"
)

// Backend is the REST surface the controller consumes. *api.Client
// implements it.
type Backend interface {
	directory.Backend
	CreateUser(ctx context.Context, req api.CreateUserRequest) (api.User, error)
	CreateChannel(ctx context.Context, req api.CreateChannelRequest) (api.Channel, error)
	DeleteChannel(ctx context.Context, channelID int64) error
	ListMessages(ctx context.Context, channelID int64) ([]api.Message, error)
	SendMessage(ctx context.Context, channelID int64, req api.SendMessageRequest) (api.Message, error)
	UpdateMessage(ctx context.Context, messageID int64, req api.UpdateMessageRequest) (api.Message, error)
	DeleteMessage(ctx context.Context, messageID int64) error
	AddReaction(ctx context.Context, messageID int64, req api.AddReactionRequest) (api.Reaction, error)
	ListReactions(ctx context.Context, messageID int64) ([]api.Reaction, error)
	DeleteReaction(ctx context.Context, reactionID int64) error
}

// Emitter sends client-originated realtime signals. *realtime.Conn
// implements it.
type Emitter interface {
	UserOnline(ctx context.Context, userID int64) error
	JoinChannel(ctx context.Context, channelID int64) error
	LeaveChannel(ctx context.Context, channelID int64) error
	SendMessage(ctx context.Context, channelID, userID int64, content string) error
	Typing(ctx context.Context, channelID, userID int64, username string, isTyping bool) error
	Connected() bool
}

// Controller owns the application state and funnels every mutation through a
// named operation. Each operation runs to completion under one mutex, which
// is the Go rendering of the source's single-threaded event loop.
type Controller struct {
	backend  Backend
	emitter  Emitter
	store    *session.Store
	dir      *directory.Cache
	sendMode SendMode
	log      *zerolog.Logger

	mu        sync.Mutex
	user      *api.User
	sessionID string
	chat      Session
	connected bool

	typing *Notifier

	// typingTarget is what the notifier's emit callback reports against. It
	// has its own lock because the callback fires from the quiet timer while
	// an operation may hold mu.
	targetMu     sync.Mutex
	typingTarget typingTarget
}

type typingTarget struct {
	channelID int64
	userID    int64
	username  string
}

// NewController wires the controller. typingQuiet is the keystroke quiet
// window before a typing-stopped signal.
func NewController(backend Backend, emitter Emitter, store *session.Store, dir *directory.Cache, sendMode SendMode, typingQuiet time.Duration, logger *zerolog.Logger) *Controller {
	c := &Controller{
		backend:  backend,
		emitter:  emitter,
		store:    store,
		dir:      dir,
		sendMode: sendMode,
		log:      logger,
	}
	if c.sendMode != SendSocket {
		c.sendMode = SendREST
	}
	c.typing = NewNotifier(typingQuiet, c.emitTyping)
	return c
}

// RestoreSession loads the persisted user, if any.
func (c *Controller) RestoreSession() bool {
	sess, ok := c.store.Load()
	if !ok {
		return false
	}

	c.mu.Lock()
	c.user = &sess.User
	c.sessionID = sess.SessionID
	c.mu.Unlock()

	c.log.Info().Str("username", sess.User.Username).Msg("session restored")
	return true
}

// Login registers the user with the backend and persists the returned
// identity.
func (c *Controller) Login(ctx context.Context, username, email, displayName string) (api.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	displayName = strings.TrimSpace(displayName)
	if username == "" {
		return api.User{}, ErrEmptyUsername
	}
	if email == "" {
		return api.User{}, ErrEmptyEmail
	}
	if displayName == "" {
		displayName = username
	}

	user, err := c.backend.CreateUser(ctx, api.CreateUserRequest{
		Username:    username,
		Email:       email,
		DisplayName: displayName,
	})
	if err != nil {
		return api.User{}, err
	}

	sess, err := c.store.Save(session.Session{User: user})
	if err != nil {
		// Identity is still usable for this run; only persistence failed.
		c.log.Warn().Err(err).Msg("failed to persist session")
	}

	c.mu.Lock()
	c.user = &user
	c.sessionID = sess.SessionID
	c.mu.Unlock()

	c.log.Info().Str("username", user.Username).Int64("user_id", user.ID).Msg("logged in")
	return user, nil
}

// Logout clears the persisted session and resets all state.
func (c *Controller) Logout(ctx context.Context) error {
	c.typing.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()

	if ch, active := c.chat.Channel(); active {
		if err := c.emitter.LeaveChannel(ctx, ch.ID); err != nil {
			c.log.Debug().Err(err).Msg("leave on logout")
		}
	}
	c.chat.Deactivate()
	c.user = nil
	c.sessionID = ""

	return c.store.Clear()
}

// RefreshDirectory reloads both directories. On partial failure the failed
// list keeps its previous content.
func (c *Controller) RefreshDirectory(ctx context.Context) error {
	return errors.Join(
		c.dir.RefreshChannels(ctx),
		c.dir.RefreshUsers(ctx),
	)
}

// SelectChannel makes a channel active: snapshot first, then leave the old
// channel, join the new one, and install the snapshot wholesale. Fetching
// before signaling keeps a failed select from touching any visible state,
// and leave always precedes join.
func (c *Controller) SelectChannel(ctx context.Context, channelID int64) error {
	c.typing.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return ErrNotLoggedIn
	}
	ch, ok := c.dir.Channel(channelID)
	if !ok {
		return ErrUnknownChannel
	}

	msgs, err := c.backend.ListMessages(ctx, channelID)
	if err != nil {
		return err
	}

	if old, active := c.chat.Channel(); active {
		if err := c.emitter.LeaveChannel(ctx, old.ID); err != nil {
			c.log.Debug().Err(err).Int64("channel_id", old.ID).Msg("leave channel signal")
		}
	}
	if err := c.emitter.JoinChannel(ctx, ch.ID); err != nil {
		c.log.Debug().Err(err).Int64("channel_id", ch.ID).Msg("join channel signal")
	}

	c.chat.Activate(ch)
	c.chat.ReplaceMessages(msgs)

	c.log.Info().Int64("channel_id", ch.ID).Str("channel", ch.Name).Int("messages", len(msgs)).Msg("channel selected")
	return nil
}

// SendMessage sends to the active channel. The REST mode appends the
// confirmed copy if its id is not already present; the socket mode appends
// nothing and waits for the echoed push. Either way the dedup-by-id check in
// the session absorbs the race between confirmation and push.
func (c *Controller) SendMessage(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}

	c.typing.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return ErrNotLoggedIn
	}
	ch, active := c.chat.Channel()
	if !active {
		return ErrNoChannel
	}

	if c.sendMode == SendSocket {
		return c.emitter.SendMessage(ctx, ch.ID, c.user.ID, content)
	}

	msg, err := c.backend.SendMessage(ctx, ch.ID, api.SendMessageRequest{
		UserID:  c.user.ID,
		Content: content,
	})
	if err != nil {
		return err
	}
	c.chat.AppendIfAbsent(msg)
	return nil
}

// EditMessage issues the edit without touching the local list; the
// message_updated push applies it. When the realtime link is down the
// snapshot is re-fetched instead, so the edit cannot diverge silently.
func (c *Controller) EditMessage(ctx context.Context, messageID int64, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.chat.Active() {
		return ErrNoChannel
	}
	if _, err := c.backend.UpdateMessage(ctx, messageID, api.UpdateMessageRequest{Content: content}); err != nil {
		return err
	}

	if !c.emitter.Connected() {
		c.resyncLocked(ctx)
	}
	return nil
}

// DeleteMessage mirrors EditMessage: push-applied, snapshot fallback when
// offline.
func (c *Controller) DeleteMessage(ctx context.Context, messageID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.chat.Active() {
		return ErrNoChannel
	}
	if err := c.backend.DeleteMessage(ctx, messageID); err != nil {
		return err
	}

	if !c.emitter.Connected() {
		c.resyncLocked(ctx)
	}
	return nil
}

// CreateChannel creates a channel and adds it to the directory.
func (c *Controller) CreateChannel(ctx context.Context, name, description string) (api.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return api.Channel{}, ErrEmptyName
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return api.Channel{}, ErrNotLoggedIn
	}

	ch, err := c.backend.CreateChannel(ctx, api.CreateChannelRequest{
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedBy:   c.user.ID,
	})
	if err != nil {
		return api.Channel{}, err
	}

	c.dir.AddChannelIfAbsent(ch)
	c.log.Info().Int64("channel_id", ch.ID).Str("channel", ch.Name).Msg("channel created")
	return ch, nil
}

// DeleteChannel removes a channel; if it was active the session goes back to
// Inactive.
func (c *Controller) DeleteChannel(ctx context.Context, channelID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return ErrNotLoggedIn
	}
	if err := c.backend.DeleteChannel(ctx, channelID); err != nil {
		return err
	}

	c.dir.RemoveChannel(channelID)
	if ch, active := c.chat.Channel(); active && ch.ID == channelID {
		if err := c.emitter.LeaveChannel(ctx, channelID); err != nil {
			c.log.Debug().Err(err).Msg("leave deleted channel")
		}
		c.chat.Deactivate()
	}
	return nil
}

// React attaches an emoji reaction to a message.
func (c *Controller) React(ctx context.Context, messageID int64, emoji string) (api.Reaction, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return api.Reaction{}, ErrEmptyContent
	}

	c.mu.Lock()
	user := c.user
	c.mu.Unlock()
	if user == nil {
		return api.Reaction{}, ErrNotLoggedIn
	}

	return c.backend.AddReaction(ctx, messageID, api.AddReactionRequest{
		UserID: user.ID,
		Emoji:  emoji,
	})
}

// Reactions lists the reactions on a message.
func (c *Controller) Reactions(ctx context.Context, messageID int64) ([]api.Reaction, error) {
	return c.backend.ListReactions(ctx, messageID)
}

// Unreact removes a reaction.
func (c *Controller) Unreact(ctx context.Context, reactionID int64) error {
	return c.backend.DeleteReaction(ctx, reactionID)
}

// Keystroke records compose-box activity for the typing notifier. No-op
// without an active channel.
func (c *Controller) Keystroke() {
	c.mu.Lock()
	ch, active := c.chat.Channel()
	user := c.user
	c.mu.Unlock()

	if !active || user == nil {
		return
	}

	c.targetMu.Lock()
	c.typingTarget = typingTarget{channelID: ch.ID, userID: user.ID, username: user.Name()}
	c.targetMu.Unlock()

	c.typing.Keystroke()
}

// HandleEvent is the single entry point for realtime input. Failures inside
// are logged and absorbed here; nothing propagates.
func (c *Controller) HandleEvent(ctx context.Context, ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case EventConnected:
		c.connected = true
		c.onConnectedLocked(ctx)

	case EventDisconnected:
		c.connected = false
		c.log.Warn().Msg("realtime link down")

	case EventNewMessage:
		if c.chat.AppendIfAbsent(ev.Message) {
			// A message from someone else means they stopped typing.
			c.chat.SetTyping(ev.Message.Author(), false)
		}

	case EventMessageUpdated:
		c.chat.ApplyUpdate(ev.Message)

	case EventMessageDeleted:
		// Located by id alone; the backend may omit channel_id. The session
		// only ever holds the active channel's messages, so no scoping is lost.
		c.chat.ApplyDelete(ev.MessageID)

	case EventChannelCreated:
		c.dir.AddChannelIfAbsent(ev.Channel)

	case EventUserStatusChanged:
		c.dir.SetUserStatus(ev.UserID, ev.Online)

	case EventOnlineUsers:
		c.dir.SetOnline(ev.UserIDs)

	case EventUserTyping:
		ch, active := c.chat.Channel()
		if !active || ev.ChannelID != ch.ID {
			return
		}
		if c.user != nil && ev.Username == c.user.Name() {
			return
		}
		c.chat.SetTyping(ev.Username, ev.IsTyping)

	case EventChannelJoined, EventChannelLeft:
		c.log.Debug().Int64("channel_id", ev.ChannelID).Str("username", ev.Username).Msg("membership notice")

	case EventServerError:
		c.log.Warn().Str("error", ev.Err).Msg("realtime error from server")
	}
}

// onConnectedLocked runs the reconnect protocol: announce presence, re-join
// the active channel, and re-fetch its snapshot. There is no gap-filling
// protocol, so a fresh snapshot is the only way back to consistency.
func (c *Controller) onConnectedLocked(ctx context.Context) {
	if c.user != nil {
		if err := c.emitter.UserOnline(ctx, c.user.ID); err != nil {
			c.log.Warn().Err(err).Msg("announce presence")
		}
	}
	if ch, active := c.chat.Channel(); active {
		if err := c.emitter.JoinChannel(ctx, ch.ID); err != nil {
			c.log.Warn().Err(err).Int64("channel_id", ch.ID).Msg("re-join channel")
		}
		c.resyncLocked(ctx)
	}
	c.log.Info().Msg("realtime link up")
}

func (c *Controller) resyncLocked(ctx context.Context) {
	ch, active := c.chat.Channel()
	if !active {
		return
	}
	msgs, err := c.backend.ListMessages(ctx, ch.ID)
	if err != nil {
		c.log.Warn().Err(err).Int64("channel_id", ch.ID).Msg("snapshot resync failed")
		return
	}
	c.chat.ReplaceMessages(msgs)
}

func (c *Controller) emitTyping(isTyping bool) {
	c.targetMu.Lock()
	target := c.typingTarget
	c.targetMu.Unlock()

	if target.channelID == 0 {
		return
	}
	if err := c.emitter.Typing(context.Background(), target.channelID, target.userID, target.username, isTyping); err != nil {
		c.log.Debug().Err(err).Bool("is_typing", isTyping).Msg("typing signal")
	}
}

// CurrentUser returns the logged-in user, if any.
func (c *Controller) CurrentUser() (api.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return api.User{}, false
	}
	return *c.user, true
}

// Channels returns the directory's channel list.
func (c *Controller) Channels() []api.Channel {
	return c.dir.Channels()
}

// Users returns the directory's user list with presence merged in.
func (c *Controller) Users() []api.User {
	return c.dir.Users()
}

// ActiveChannel returns the selected channel, if any.
func (c *Controller) ActiveChannel() (api.Channel, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chat.Channel()
}

// Messages returns a copy of the active channel's message list.
func (c *Controller) Messages() []api.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chat.Messages()
}

// TypingIndicator returns the remote user currently shown as typing.
func (c *Controller) TypingIndicator() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chat.Typing()
}

// Connected reports the realtime link state.
func (c *Controller) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
