package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// Error is a non-2xx response from the backend. Every Error is recoverable:
// callers surface it and leave visible state unchanged.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("backend: status %d", e.Status)
}

// Client talks to the backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zerolog.Logger
}

// NewClient builds a client for the given base URL (including the /api prefix).
func NewClient(baseURL string, httpClient *http.Client, logger *zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		log:     logger,
	}
}

// CreateUser registers (or logs in) a user.
// POST /users
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (User, error) {
	var user User
	err := c.do(ctx, http.MethodPost, "/users", req, &user)
	return user, err
}

// ListUsers fetches the user directory.
// GET /users
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := c.do(ctx, http.MethodGet, "/users", nil, &users)
	return users, err
}

// ListChannels fetches the channel directory.
// GET /channels
func (c *Client) ListChannels(ctx context.Context) ([]Channel, error) {
	var channels []Channel
	err := c.do(ctx, http.MethodGet, "/channels", nil, &channels)
	return channels, err
}

// CreateChannel creates a channel.
// POST /channels
func (c *Client) CreateChannel(ctx context.Context, req CreateChannelRequest) (Channel, error) {
	var ch Channel
	err := c.do(ctx, http.MethodPost, "/channels", req, &ch)
	return ch, err
}

// GetChannel fetches a single channel.
// GET /channels/{id}
func (c *Client) GetChannel(ctx context.Context, channelID int64) (Channel, error) {
	var ch Channel
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/channels/%d", channelID), nil, &ch)
	return ch, err
}

// DeleteChannel removes a channel.
// DELETE /channels/{id}
func (c *Client) DeleteChannel(ctx context.Context, channelID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/channels/%d", channelID), nil, nil)
}

// ListMessages fetches the full snapshot for a channel, oldest first.
// GET /channels/{id}/messages
func (c *Client) ListMessages(ctx context.Context, channelID int64) ([]Message, error) {
	var msgs []Message
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/channels/%d/messages", channelID), nil, &msgs)
	return msgs, err
}

// SendMessage posts a message and returns the server-confirmed copy with its
// assigned id.
// POST /channels/{id}/messages
func (c *Client) SendMessage(ctx context.Context, channelID int64, req SendMessageRequest) (Message, error) {
	var msg Message
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/channels/%d/messages", channelID), req, &msg)
	return msg, err
}

// UpdateMessage edits a message's content.
// PUT /messages/{id}
func (c *Client) UpdateMessage(ctx context.Context, messageID int64, req UpdateMessageRequest) (Message, error) {
	var msg Message
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/messages/%d", messageID), req, &msg)
	return msg, err
}

// DeleteMessage removes a message.
// DELETE /messages/{id}
func (c *Client) DeleteMessage(ctx context.Context, messageID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/messages/%d", messageID), nil, nil)
}

// AddReaction attaches an emoji reaction to a message.
// POST /messages/{id}/reactions
func (c *Client) AddReaction(ctx context.Context, messageID int64, req AddReactionRequest) (Reaction, error) {
	var r Reaction
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/messages/%d/reactions", messageID), req, &r)
	return r, err
}

// ListReactions fetches the reactions on a message.
// GET /messages/{id}/reactions
func (c *Client) ListReactions(ctx context.Context, messageID int64) ([]Reaction, error) {
	var rs []Reaction
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/messages/%d/reactions", messageID), nil, &rs)
	return rs, err
}

// DeleteReaction removes a reaction.
// DELETE /reactions/{id}
func (c *Client) DeleteReaction(ctx context.Context, reactionID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/reactions/%d", reactionID), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(method, path, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) decodeError(method, path string, resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Error
	}

	if c.log != nil {
		c.log.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("error", apiErr.Message).
			Msg("api request failed")
	}
	return apiErr
}
