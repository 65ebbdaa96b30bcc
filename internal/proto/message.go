package proto

import (
	"encoding/json"

	"slackline/internal/api"
)

// Envelope is the wire frame for both directions: a named event plus its
// JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names (server to client).
const (
	EventConnected         = "connected"
	EventNewMessage        = "new_message"
	EventMessageUpdated    = "message_updated"
	EventMessageDeleted    = "message_deleted"
	EventChannelCreated    = "channel_created"
	EventUserStatusChanged = "user_status_changed"
	EventOnlineUsers       = "online_users"
	EventUserTyping        = "user_typing"
	EventJoinedChannel     = "joined_channel"
	EventLeftChannel       = "left_channel"
	EventError             = "error"
)

// Outbound event names (client to server).
const (
	EventUserOnline   = "user_online"
	EventJoinChannel  = "join_channel"
	EventLeaveChannel = "leave_channel"
	EventSendMessage  = "send_message"
	EventTyping       = "typing"
)

// NewMessageData carries a pushed message. The backend wraps the message
// together with its channel id.
type NewMessageData struct {
	ChannelID int64       `json:"channel_id"`
	Message   api.Message `json:"message"`
}

// MessageUpdatedData carries the full updated message.
type MessageUpdatedData struct {
	ChannelID int64       `json:"channel_id"`
	Message   api.Message `json:"message"`
}

// MessageDeletedData identifies a removed message.
type MessageDeletedData struct {
	ChannelID int64 `json:"channel_id"`
	MessageID int64 `json:"message_id"`
}

// ChannelCreatedData announces a channel created by any client.
type ChannelCreatedData struct {
	Channel api.Channel `json:"channel"`
}

// UserStatusChangedData announces a presence flip for one user.
type UserStatusChangedData struct {
	UserID int64  `json:"user_id"`
	Status string `json:"status"`
}

// OnlineUsersData is the authoritative set of online user ids.
type OnlineUsersData struct {
	UserIDs []int64 `json:"user_ids"`
}

// UserTypingData is the transient typing indicator, both directions.
type UserTypingData struct {
	ChannelID int64  `json:"channel_id"`
	UserID    int64  `json:"user_id,omitempty"`
	Username  string `json:"username"`
	IsTyping  bool   `json:"is_typing"`
}

// ChannelRefData scopes join/leave signals and their confirmations.
type ChannelRefData struct {
	ChannelID int64  `json:"channel_id"`
	Username  string `json:"username,omitempty"`
}

// UserOnlineData announces this client's identity after connecting.
type UserOnlineData struct {
	UserID int64 `json:"user_id"`
}

// SendMessageData is the push-variant message send.
type SendMessageData struct {
	ChannelID int64  `json:"channel_id"`
	UserID    int64  `json:"user_id"`
	Content   string `json:"content"`
}

// ErrorData describes a server-reported realtime failure.
type ErrorData struct {
	Message string `json:"message"`
}

// Encode wraps an event name and payload into an envelope.
func Encode(event string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: raw}, nil
}
