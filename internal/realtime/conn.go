// Package realtime maintains the websocket link to the backend: it decodes
// pushed events into chat events and sends the client's own signals. A
// dropped link is reconnected with capped backoff; each successful dial is
// surfaced as a connected event so the controller can resynchronize.
package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"slackline/internal/chat"
	"slackline/internal/proto"
)

// ErrNotConnected is returned for emits while the link is down.
var ErrNotConnected = errors.New("realtime: not connected")

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Handler consumes decoded events. It is called from the read loop and must
// not block for long.
type Handler func(ev chat.Event)

// Conn is the realtime connection. Emit methods satisfy chat.Emitter.
type Conn struct {
	url         string
	dialTimeout time.Duration
	log         *zerolog.Logger

	mu      sync.Mutex
	ws      *websocket.Conn
	handler Handler
}

// New builds a connection for the given websocket URL. The handler may be
// set later, but before Run.
func New(url string, dialTimeout time.Duration, logger *zerolog.Logger, handler Handler) *Conn {
	return &Conn{
		url:         url,
		dialTimeout: dialTimeout,
		log:         logger,
		handler:     handler,
	}
}

// SetHandler installs the event consumer.
func (c *Conn) SetHandler(h Handler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// Run dials and reads until ctx is cancelled, reconnecting with capped
// exponential backoff. Each successful dial emits EventConnected, each drop
// EventDisconnected.
func (c *Conn) Run(ctx context.Context) {
	backoff := initialBackoff

	for {
		ws, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn().Err(err).Dur("retry_in", backoff).Str("url", c.url).Msg("realtime dial failed")
			if !sleep(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}

		backoff = initialBackoff
		c.setWS(ws)
		c.dispatch(chat.Event{Kind: chat.EventConnected})

		err = c.readLoop(ctx, ws)
		c.setWS(nil)
		ws.Close(websocket.StatusNormalClosure, "closing")

		if ctx.Err() != nil {
			return
		}
		c.log.Warn().Err(err).Msg("realtime link lost")
		c.dispatch(chat.Event{Kind: chat.EventDisconnected})

		if !sleep(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff)
	}
}

// Connected reports whether the link is currently up.
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws != nil
}

// UserOnline announces this client's identity after connecting.
func (c *Conn) UserOnline(ctx context.Context, userID int64) error {
	return c.send(ctx, proto.EventUserOnline, proto.UserOnlineData{UserID: userID})
}

// JoinChannel subscribes to a channel's pushes.
func (c *Conn) JoinChannel(ctx context.Context, channelID int64) error {
	return c.send(ctx, proto.EventJoinChannel, proto.ChannelRefData{ChannelID: channelID})
}

// LeaveChannel unsubscribes from a channel's pushes.
func (c *Conn) LeaveChannel(ctx context.Context, channelID int64) error {
	return c.send(ctx, proto.EventLeaveChannel, proto.ChannelRefData{ChannelID: channelID})
}

// SendMessage is the push-variant message send; the appended copy arrives as
// a new_message push.
func (c *Conn) SendMessage(ctx context.Context, channelID, userID int64, content string) error {
	return c.send(ctx, proto.EventSendMessage, proto.SendMessageData{
		ChannelID: channelID,
		UserID:    userID,
		Content:   content,
	})
}

// Typing emits the transient typing indicator.
func (c *Conn) Typing(ctx context.Context, channelID, userID int64, username string, isTyping bool) error {
	return c.send(ctx, proto.EventTyping, proto.UserTypingData{
		ChannelID: channelID,
		UserID:    userID,
		Username:  username,
		IsTyping:  isTyping,
	})
}

func (c *Conn) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()

	ws, _, err := websocket.Dial(dialCtx, c.url, nil)
	return ws, err
}

func (c *Conn) readLoop(ctx context.Context, ws *websocket.Conn) error {
	for {
		var env proto.Envelope
		if err := wsjson.Read(ctx, ws, &env); err != nil {
			return err
		}

		ev, ok, err := decodeEnvelope(env)
		if err != nil {
			c.log.Warn().Err(err).Str("event", env.Event).Msg("malformed realtime event")
			continue
		}
		if !ok {
			c.log.Debug().Str("event", env.Event).Msg("ignoring realtime event")
			continue
		}
		c.dispatch(ev)
	}
}

func (c *Conn) send(ctx context.Context, event string, data any) error {
	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()

	if ws == nil {
		return ErrNotConnected
	}

	env, err := proto.Encode(event, data)
	if err != nil {
		return err
	}
	return wsjson.Write(ctx, ws, env)
}

func (c *Conn) dispatch(ev chat.Event) {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()

	if h != nil {
		h(ev)
	}
}

func (c *Conn) setWS(ws *websocket.Conn) {
	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
