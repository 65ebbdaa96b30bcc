package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds client configuration values.
type Config struct {
	// APIURL is the base URL of the backend REST API, including the /api prefix.
	APIURL string `mapstructure:"api_url" yaml:"api_url"`
	// SocketURL is the websocket endpoint for realtime events.
	SocketURL string `mapstructure:"socket_url" yaml:"socket_url"`
	// StateDir holds the persisted session blob and the log file.
	StateDir string `mapstructure:"state_dir" yaml:"state_dir"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// SendTransport selects how messages are sent: "rest" posts the message
	// and appends the confirmed copy; "socket" emits a send_message event and
	// appends only on the echoed push.
	SendTransport string `mapstructure:"send_transport" yaml:"send_transport"`

	// TypingQuiet is how long after the last keystroke a typing-stopped
	// signal is emitted.
	TypingQuiet time.Duration `mapstructure:"typing_quiet" yaml:"typing_quiet"`
	DialTimeout time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`

	// StaticAddr and StaticDir configure the `slackline static` frontend server.
	StaticAddr string `mapstructure:"static_addr" yaml:"static_addr"`
	StaticDir  string `mapstructure:"static_dir" yaml:"static_dir"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		APIURL:        "http://localhost:5000/api",
		SocketURL:     "ws://localhost:5000/ws",
		StateDir:      defaultStateDir(),
		LogLevel:      "info",
		SendTransport: "rest",
		TypingQuiet:   2 * time.Second,
		DialTimeout:   10 * time.Second,
		StaticAddr:    ":3000",
		StaticDir:     "public",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.APIURL != "" {
		c.APIURL = other.APIURL
	}
	if other.SocketURL != "" {
		c.SocketURL = other.SocketURL
	}
	if other.StateDir != "" {
		c.StateDir = other.StateDir
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.SendTransport != "" {
		c.SendTransport = other.SendTransport
	}
	if other.TypingQuiet != 0 {
		c.TypingQuiet = other.TypingQuiet
	}
	if other.DialTimeout != 0 {
		c.DialTimeout = other.DialTimeout
	}
	if other.StaticAddr != "" {
		c.StaticAddr = other.StaticAddr
	}
	if other.StaticDir != "" {
		c.StaticDir = other.StaticDir
	}
}

// SessionPath is where the logged-in user blob lives.
func (c Config) SessionPath() string {
	return filepath.Join(c.StateDir, "session.json")
}

// LogPath is the log file used while the TUI is running.
func (c Config) LogPath() string {
	return filepath.Join(c.StateDir, "slackline.log")
}

func defaultStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".slackline"
	}
	return filepath.Join(base, "slackline")
}
