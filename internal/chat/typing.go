package chat

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// reannounceInterval caps how often a typing-started signal is re-emitted
// while the user keeps typing, so the receiver's last-writer-wins slot stays
// fresh without per-keystroke traffic.
const reannounceInterval = 1500 * time.Millisecond

// Notifier turns keystrokes into typing signals: the first keystroke emits
// typing-started, a quiet timer re-armed on every keystroke emits
// typing-stopped. The timer is the only scheduled-then-cancelled operation in
// the client.
type Notifier struct {
	mu      sync.Mutex
	quiet   time.Duration
	limiter *rate.Limiter
	timer   *time.Timer
	active  bool
	emit    func(isTyping bool)
}

// NewNotifier builds a notifier that calls emit with the typing state. emit
// must not block.
func NewNotifier(quiet time.Duration, emit func(isTyping bool)) *Notifier {
	if quiet <= 0 {
		quiet = 2 * time.Second
	}
	return &Notifier{
		quiet:   quiet,
		limiter: rate.NewLimiter(rate.Every(reannounceInterval), 1),
		emit:    emit,
	}
}

// Keystroke records input activity: announces typing (rate limited) and
// re-arms the quiet timer.
func (n *Notifier) Keystroke() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.active {
		n.active = true
		// Start the re-announce clock at the first announce.
		n.limiter.Allow()
		n.emit(true)
	} else if n.limiter.Allow() {
		n.emit(true)
	}

	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.quiet, n.quietExpired)
}

// Stop cancels the quiet timer and, if a typing-started signal is
// outstanding, emits typing-stopped immediately. Called on send and on
// channel switch.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	if n.active {
		n.active = false
		n.emit(false)
	}
}

func (n *Notifier) quietExpired() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.active {
		n.active = false
		n.emit(false)
	}
}
