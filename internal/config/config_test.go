package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	logger := zerolog.Nop()

	cfg, gotPath, err := Load(&logger, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if gotPath != path {
		t.Fatalf("resolved path = %q, want %q", gotPath, path)
	}

	if cfg.APIURL != "http://localhost:5000/api" {
		t.Fatalf("unexpected default api url: %q", cfg.APIURL)
	}
	if cfg.SendTransport != "rest" {
		t.Fatalf("unexpected default transport: %q", cfg.SendTransport)
	}
	if cfg.TypingQuiet != 2*time.Second {
		t.Fatalf("unexpected typing quiet: %v", cfg.TypingQuiet)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api_url: http://example.com/api\nlog_level: debug\nsend_transport: socket\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	logger := zerolog.Nop()

	cfg, _, err := Load(&logger, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.APIURL != "http://example.com/api" {
		t.Fatalf("api url not read: %q", cfg.APIURL)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level not read: %q", cfg.LogLevel)
	}
	if cfg.SendTransport != "socket" {
		t.Fatalf("transport not read: %q", cfg.SendTransport)
	}
	// Values the file omits keep their defaults.
	if cfg.SocketURL != "ws://localhost:5000/ws" {
		t.Fatalf("socket url default lost: %q", cfg.SocketURL)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SLACKLINE_LOG_LEVEL", "error")
	logger := zerolog.Nop()

	cfg, _, err := Load(&logger, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("env did not win: %q", cfg.LogLevel)
	}
}

func TestUpdateFromSkipsZeroValues(t *testing.T) {
	cfg := Default()

	cfg.UpdateFrom(Config{APIURL: "http://other/api", LogLevel: "debug"})

	if cfg.APIURL != "http://other/api" || cfg.LogLevel != "debug" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.SocketURL != "ws://localhost:5000/ws" {
		t.Fatalf("zero override clobbered socket url: %q", cfg.SocketURL)
	}
	if cfg.TypingQuiet != 2*time.Second {
		t.Fatalf("zero override clobbered typing quiet: %v", cfg.TypingQuiet)
	}
}

func TestStatePaths(t *testing.T) {
	cfg := Config{StateDir: "/tmp/slackline"}

	if got := cfg.SessionPath(); got != filepath.Join("/tmp/slackline", "session.json") {
		t.Fatalf("session path = %q", got)
	}
	if got := cfg.LogPath(); got != filepath.Join("/tmp/slackline", "slackline.log") {
		t.Fatalf("log path = %q", got)
	}
}
