package api

// User is a directory entry. The backend reports presence as a status
// string; IsOnline is derived from it client-side.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Status      string `json:"status,omitempty"`
	IsOnline    bool   `json:"is_online,omitempty"`
}

// Name returns the display name, falling back to the username.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Online reports presence from whichever field the backend filled in.
func (u User) Online() bool {
	return u.IsOnline || u.Status == "online"
}

// Channel is a chat channel.
type Channel struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedBy   int64  `json:"created_by"`
}

// Message belongs to exactly one channel. The backend joins in the
// author's username and display name for rendering.
type Message struct {
	ID          int64  `json:"id"`
	ChannelID   int64  `json:"channel_id"`
	UserID      int64  `json:"user_id"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at,omitempty"`
	IsEdited    bool   `json:"is_edited"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Author returns the display name of the sender, falling back to the username.
func (m Message) Author() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Username
}

// Reaction is an emoji attached to a message by a user.
type Reaction struct {
	ID        int64  `json:"id"`
	MessageID int64  `json:"message_id"`
	UserID    int64  `json:"user_id"`
	Emoji     string `json:"emoji"`
	Username  string `json:"username,omitempty"`
}

// CreateUserRequest is the login/registration body.
type CreateUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// CreateChannelRequest is the channel creation body.
type CreateChannelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedBy   int64  `json:"created_by"`
}

// SendMessageRequest is the message send body.
type SendMessageRequest struct {
	UserID  int64  `json:"user_id"`
	Content string `json:"content"`
}

// UpdateMessageRequest is the message edit body.
type UpdateMessageRequest struct {
	Content string `json:"content"`
}

// AddReactionRequest is the reaction creation body.
type AddReactionRequest struct {
	UserID int64  `json:"user_id"`
	Emoji  string `json:"emoji"`
}

// ErrorResponse is the backend's failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}
