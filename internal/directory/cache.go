// Package directory maintains the client's view of known channels and users,
// refreshed on demand from the backend and patched by realtime presence
// events.
package directory

import (
	"context"
	"fmt"
	"sync"

	"slackline/internal/api"
)

// Backend is the REST surface the cache refreshes from.
type Backend interface {
	ListChannels(ctx context.Context) ([]api.Channel, error)
	ListUsers(ctx context.Context) ([]api.User, error)
}

// Cache holds the channel and user directories. Lists are unordered by
// contract; reads return them in arrival order.
type Cache struct {
	backend Backend

	mu       sync.RWMutex
	channels []api.Channel
	users    []api.User
	// online overlays the REST snapshot's presence: an entry records an
	// explicit realtime flip in either direction, so a stale snapshot status
	// never wins over a later event. Absent ids fall back to the snapshot.
	online map[int64]bool
}

// New builds an empty cache over the given backend.
func New(backend Backend) *Cache {
	return &Cache{
		backend: backend,
		online:  make(map[int64]bool),
	}
}

// RefreshChannels replaces the channel list with the backend's snapshot.
// On error the previous list stays intact.
func (c *Cache) RefreshChannels(ctx context.Context) error {
	channels, err := c.backend.ListChannels(ctx)
	if err != nil {
		return fmt.Errorf("refresh channels: %w", err)
	}

	c.mu.Lock()
	c.channels = channels
	c.mu.Unlock()
	return nil
}

// RefreshUsers replaces the user list with the backend's snapshot.
// On error the previous list stays intact.
func (c *Cache) RefreshUsers(ctx context.Context) error {
	users, err := c.backend.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("refresh users: %w", err)
	}

	c.mu.Lock()
	c.users = users
	c.mu.Unlock()
	return nil
}

// Channels returns a copy of the channel list.
func (c *Cache) Channels() []api.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]api.Channel, len(c.channels))
	copy(out, c.channels)
	return out
}

// Users returns a copy of the user list with realtime presence merged in.
func (c *Cache) Users() []api.User {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]api.User, len(c.users))
	copy(out, c.users)
	for i := range out {
		if online, ok := c.online[out[i].ID]; ok {
			out[i].IsOnline = online
		} else {
			out[i].IsOnline = out[i].Online()
		}
	}
	return out
}

// Channel looks a channel up by id.
func (c *Cache) Channel(id int64) (api.Channel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, ch := range c.channels {
		if ch.ID == id {
			return ch, true
		}
	}
	return api.Channel{}, false
}

// AddChannelIfAbsent inserts a channel unless one with that id is already
// present. Used both for locally created channels and for realtime creation
// notices, which can announce the same channel twice.
func (c *Cache) AddChannelIfAbsent(ch api.Channel) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.channels {
		if existing.ID == ch.ID {
			return false
		}
	}
	c.channels = append(c.channels, ch)
	return true
}

// RemoveChannel deletes a channel by id. Unknown ids are a no-op.
func (c *Cache) RemoveChannel(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, ch := range c.channels {
		if ch.ID == id {
			c.channels = append(c.channels[:i], c.channels[i+1:]...)
			return true
		}
	}
	return false
}

// SetUserStatus flips one user's presence. Offline is recorded explicitly so
// it overrides a snapshot that still says online.
func (c *Cache) SetUserStatus(userID int64, online bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.online[userID] = online
}

// SetOnline replaces the set of online user ids wholesale.
func (c *Cache) SetOnline(ids []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.online = make(map[int64]bool, len(ids))
	for _, id := range ids {
		c.online[id] = true
	}
}
