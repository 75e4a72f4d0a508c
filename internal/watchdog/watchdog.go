// Package watchdog implements the idle-session timer: a single countdown
// that every user activity signal pushes back, and that ends the session
// once it runs out.
package watchdog

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/digimonnaie/console/internal/logging"
)

// DefaultTimeout applies when New is given a non-positive duration.
const DefaultTimeout = 2 * time.Minute

// Signal is a kind of user activity.
type Signal int

const (
	PointerMove Signal = iota
	KeyPress
	Click
	Scroll
)

func (s Signal) String() string {
	switch s {
	case PointerMove:
		return "pointer_move"
	case KeyPress:
		return "key_press"
	case Click:
		return "click"
	case Scroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// Watchdog fires onExpire once after timeout elapses with no Touch.
// At most one countdown is live at any time; each arm bumps a generation
// counter so a timer that was stopped or replaced can never fire.
type Watchdog struct {
	timeout  time.Duration
	onExpire func()
	log      zerolog.Logger

	mu       sync.Mutex
	timer    *time.Timer
	gen      uint64
	armed    bool
	deadline time.Time
}

// New creates a stopped watchdog. Call Start to arm it.
func New(timeout time.Duration, onExpire func()) *Watchdog {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Watchdog{
		timeout:  timeout,
		onExpire: onExpire,
		log:      logging.WithComponent("watchdog"),
	}
}

// Timeout returns the configured idle duration.
func (w *Watchdog) Timeout() time.Duration { return w.timeout }

// Start arms the countdown from now. Calling Start on an armed watchdog
// restarts the countdown.
func (w *Watchdog) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.armed = true
	w.schedule()
	w.log.Debug().Dur("timeout", w.timeout).Msg("armed")
}

// Touch records activity and restarts the countdown. It reports false,
// doing nothing, when the watchdog is not armed.
func (w *Watchdog) Touch(s Signal) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.armed {
		return false
	}
	w.schedule()
	return true
}

// Stop cancels the pending countdown. The callback will not run after
// Stop returns, unless it was already running.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.armed {
		return
	}
	w.armed = false
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.log.Debug().Msg("stopped")
}

// Armed reports whether a countdown is pending.
func (w *Watchdog) Armed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.armed
}

// Remaining returns the time left before expiry, or 0 when not armed.
func (w *Watchdog) Remaining() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.armed {
		return 0
	}
	if d := time.Until(w.deadline); d > 0 {
		return d
	}
	return 0
}

// schedule replaces the live timer. w.mu must be held.
func (w *Watchdog) schedule() {
	w.gen++
	gen := w.gen
	if w.timer != nil {
		w.timer.Stop()
	}
	w.deadline = time.Now().Add(w.timeout)
	w.timer = time.AfterFunc(w.timeout, func() { w.fire(gen) })
}

func (w *Watchdog) fire(gen uint64) {
	w.mu.Lock()
	if !w.armed || gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.armed = false
	w.timer = nil
	cb := w.onExpire
	w.mu.Unlock()

	w.log.Info().Dur("timeout", w.timeout).Msg("idle timeout expired")
	if cb != nil {
		cb()
	}
}
