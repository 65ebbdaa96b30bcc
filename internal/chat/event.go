package chat

import "slackline/internal/api"

// EventKind is a realtime notification delivered to the sync engine.
type EventKind int

const (
	// EventConnected signals that the realtime link came up. Synthesized by
	// the connection, not received from the server.
	EventConnected EventKind = iota
	// EventDisconnected signals that the realtime link went down.
	EventDisconnected
	// EventNewMessage carries a message pushed by the server.
	EventNewMessage
	// EventMessageUpdated carries the full edited message.
	EventMessageUpdated
	// EventMessageDeleted identifies a removed message.
	EventMessageDeleted
	// EventChannelCreated announces a channel created by any client.
	EventChannelCreated
	// EventUserStatusChanged announces one user's presence flip.
	EventUserStatusChanged
	// EventOnlineUsers replaces the set of online user ids.
	EventOnlineUsers
	// EventUserTyping is the transient typing indicator.
	EventUserTyping
	// EventChannelJoined confirms a join signal. Informational only.
	EventChannelJoined
	// EventChannelLeft confirms a leave signal. Informational only.
	EventChannelLeft
	// EventServerError is a server-reported realtime failure.
	EventServerError
)

// Event is the tagged union consumed by Controller.HandleEvent. Only the
// fields relevant to the Kind are set.
type Event struct {
	Kind      EventKind
	ChannelID int64
	MessageID int64
	Message   api.Message
	Channel   api.Channel
	UserID    int64
	UserIDs   []int64
	Username  string
	Online    bool
	IsTyping  bool
	Err       string
}
