package chat

import "slackline/internal/api"

// Session tracks the single active channel and its authoritative message
// list. It is not safe for concurrent use; the Controller serializes access.
//
// The list representation is a slice with linear id lookup. Channel snapshots
// are small and unpaginated, and the dedup scan keeps the backend's order
// untouched.
type Session struct {
	channel  api.Channel
	active   bool
	messages []api.Message

	typingUser string
}

// Active reports whether a channel is selected.
func (s *Session) Active() bool {
	return s.active
}

// Channel returns the active channel, if any.
func (s *Session) Channel() (api.Channel, bool) {
	return s.channel, s.active
}

// Messages returns a copy of the current message list.
func (s *Session) Messages() []api.Message {
	out := make([]api.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Activate enters Active(channel) with an empty list. The caller replaces the
// list with a snapshot immediately after.
func (s *Session) Activate(ch api.Channel) {
	s.channel = ch
	s.active = true
	s.messages = nil
	s.typingUser = ""
}

// Deactivate returns to the Inactive state.
func (s *Session) Deactivate() {
	s.channel = api.Channel{}
	s.active = false
	s.messages = nil
	s.typingUser = ""
}

// ReplaceMessages installs a snapshot wholesale, in the order the backend
// returned it.
func (s *Session) ReplaceMessages(msgs []api.Message) {
	s.messages = make([]api.Message, len(msgs))
	copy(s.messages, msgs)
}

// AppendIfAbsent appends a message unless its id is already present or it
// belongs to another channel. A pushed copy and a send-confirmation can both
// arrive for the same message, in either order; the id check makes the second
// arrival a no-op.
func (s *Session) AppendIfAbsent(msg api.Message) bool {
	if !s.active || msg.ChannelID != s.channel.ID {
		return false
	}
	if s.indexOf(msg.ID) >= 0 {
		return false
	}
	s.messages = append(s.messages, msg)
	return true
}

// ApplyUpdate replaces a message in place, preserving its position. Updates
// for other channels or unknown ids are discarded.
func (s *Session) ApplyUpdate(msg api.Message) bool {
	if !s.active || msg.ChannelID != s.channel.ID {
		return false
	}
	i := s.indexOf(msg.ID)
	if i < 0 {
		return false
	}
	s.messages[i] = msg
	return true
}

// ApplyDelete removes a message by id. Unknown ids are a no-op.
func (s *Session) ApplyDelete(messageID int64) bool {
	if !s.active {
		return false
	}
	i := s.indexOf(messageID)
	if i < 0 {
		return false
	}
	s.messages = append(s.messages[:i], s.messages[i+1:]...)
	return true
}

// SetTyping updates the transient indicator slot: last writer wins, a single
// slot per channel. A stop signal only clears the slot when it names the user
// currently shown.
func (s *Session) SetTyping(username string, isTyping bool) {
	if isTyping {
		s.typingUser = username
		return
	}
	if s.typingUser == username {
		s.typingUser = ""
	}
}

// Typing returns the username currently shown as typing, if any.
func (s *Session) Typing() (string, bool) {
	return s.typingUser, s.typingUser != ""
}

func (s *Session) indexOf(id int64) int {
	for i := range s.messages {
		if s.messages[i].ID == id {
			return i
		}
	}
	return -1
}
