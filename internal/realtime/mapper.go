package realtime

import (
	"encoding/json"
	"fmt"

	"slackline/internal/chat"
	"slackline/internal/proto"
)

// decodeEnvelope maps a wire envelope to a chat event. ok is false for
// events the client does not act on (including the server's connection
// greeting: the link-up event is synthesized by Conn itself).
func decodeEnvelope(env proto.Envelope) (chat.Event, bool, error) {
	switch env.Event {
	case proto.EventNewMessage:
		var d proto.NewMessageData
		if err := unmarshalData(env, &d); err != nil {
			return chat.Event{}, false, err
		}
		msg := d.Message
		if msg.ChannelID == 0 {
			msg.ChannelID = d.ChannelID
		}
		return chat.Event{Kind: chat.EventNewMessage, ChannelID: msg.ChannelID, Message: msg}, true, nil

	case proto.EventMessageUpdated:
		var d proto.MessageUpdatedData
		if err := unmarshalData(env, &d); err != nil {
			return chat.Event{}, false, err
		}
		msg := d.Message
		if msg.ChannelID == 0 {
			msg.ChannelID = d.ChannelID
		}
		return chat.Event{Kind: chat.EventMessageUpdated, ChannelID: msg.ChannelID, Message: msg}, true, nil

	case proto.EventMessageDeleted:
		var d proto.MessageDeletedData
		if err := unmarshalData(env, &d); err != nil {
			return chat.Event{}, false, err
		}
		return chat.Event{Kind: chat.EventMessageDeleted, ChannelID: d.ChannelID, MessageID: d.MessageID}, true, nil

	case proto.EventChannelCreated:
		var d proto.ChannelCreatedData
		if err := unmarshalData(env, &d); err != nil {
			return chat.Event{}, false, err
		}
		return chat.Event{Kind: chat.EventChannelCreated, Channel: d.Channel}, true, nil

	case proto.EventUserStatusChanged:
		var d proto.UserStatusChangedData
		if err := unmarshalData(env, &d); err != nil {
			return chat.Event{}, false, err
		}
		return chat.Event{Kind: chat.EventUserStatusChanged, UserID: d.UserID, Online: d.Status == "online"}, true, nil

	case proto.EventOnlineUsers:
		var d proto.OnlineUsersData
		if err := unmarshalData(env, &d); err != nil {
			return chat.Event{}, false, err
		}
		return chat.Event{Kind: chat.EventOnlineUsers, UserIDs: d.UserIDs}, true, nil

	case proto.EventUserTyping:
		var d proto.UserTypingData
		if err := unmarshalData(env, &d); err != nil {
			return chat.Event{}, false, err
		}
		return chat.Event{Kind: chat.EventUserTyping, ChannelID: d.ChannelID, Username: d.Username, IsTyping: d.IsTyping}, true, nil

	case proto.EventJoinedChannel:
		var d proto.ChannelRefData
		if err := unmarshalData(env, &d); err != nil {
			return chat.Event{}, false, err
		}
		return chat.Event{Kind: chat.EventChannelJoined, ChannelID: d.ChannelID, Username: d.Username}, true, nil

	case proto.EventLeftChannel:
		var d proto.ChannelRefData
		if err := unmarshalData(env, &d); err != nil {
			return chat.Event{}, false, err
		}
		return chat.Event{Kind: chat.EventChannelLeft, ChannelID: d.ChannelID, Username: d.Username}, true, nil

	case proto.EventError:
		var d proto.ErrorData
		if err := unmarshalData(env, &d); err != nil {
			return chat.Event{}, false, err
		}
		return chat.Event{Kind: chat.EventServerError, Err: d.Message}, true, nil

	default:
		return chat.Event{}, false, nil
	}
}

func unmarshalData(env proto.Envelope, out any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("event %q: empty payload", env.Event)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("event %q: %w", env.Event, err)
	}
	return nil
}
