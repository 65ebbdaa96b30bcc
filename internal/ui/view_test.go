package ui

import (
	"regexp"
	"testing"
)

func TestFormatTimeParsesBackendLayouts(t *testing.T) {
	hhmm := regexp.MustCompile(`^\d{2}:\d{2}$`)

	inputs := []string{
		"2025-01-02T10:30:00Z",
		"2025-01-02 10:30:00",
		"Thu, 02 Jan 2025 10:30:00 GMT",
	}
	for _, in := range inputs {
		if got := formatTime(in); !hhmm.MatchString(got) {
			t.Errorf("formatTime(%q) = %q, want HH:MM", in, got)
		}
	}
}

func TestFormatTimePassesThroughUnparseable(t *testing.T) {
	for _, in := range []string{"", "just now", "1735815000"} {
		if got := formatTime(in); got != in {
			t.Errorf("formatTime(%q) = %q, want passthrough", in, got)
		}
	}
}
