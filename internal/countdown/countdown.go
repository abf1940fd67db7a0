// Package countdown is the idle timer between rounds. When nobody deals
// before it runs out the owner is told to reset the table.
package countdown

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjack/internal/game"
)

// Countdown arms a single timer on a quartz clock. onExpire runs on the
// clock's goroutine with the generation that fired; owners that are not
// concurrency safe must hand the call over to their own loop and check
// Current before acting on it.
type Countdown struct {
	clock    quartz.Clock
	duration time.Duration
	onExpire func(gen uint64)
	logger   *log.Logger

	mu         sync.Mutex
	timer      *quartz.Timer
	deadline   time.Time
	generation uint64
}

// New creates a stopped countdown
func New(clock quartz.Clock, duration time.Duration, onExpire func(gen uint64), logger *log.Logger) *Countdown {
	return &Countdown{
		clock:    clock,
		duration: duration,
		onExpire: onExpire,
		logger:   logger.WithPrefix("countdown"),
	}
}

// Duration returns the full countdown length
func (c *Countdown) Duration() time.Duration {
	return c.duration
}

// Start arms the countdown, restarting it if already running
func (c *Countdown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.generation++
	gen := c.generation
	c.deadline = c.clock.Now().Add(c.duration)
	c.timer = c.clock.AfterFunc(c.duration, func() { c.fire(gen) }, "countdown", "expire")
	c.logger.Debug("Countdown started", "duration", c.duration)
}

// Stop disarms the countdown and reports whether it was running
func (c *Countdown) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked()
}

// stopLocked always moves the generation on, so an expiry that already
// fired but has not been handled yet is superseded too.
func (c *Countdown) stopLocked() bool {
	c.generation++
	if c.timer == nil {
		return false
	}
	c.timer.Stop()
	c.timer = nil
	return true
}

// Current reports whether the expiry for gen still stands, i.e. the
// countdown has been neither stopped nor restarted since it fired
func (c *Countdown) Current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation && c.timer == nil
}

// Running reports whether the countdown is armed
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// Remaining returns the time left, or zero when stopped
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer == nil {
		return 0
	}
	left := c.deadline.Sub(c.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

func (c *Countdown) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.timer == nil {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.mu.Unlock()

	c.logger.Info("Countdown expired")
	if c.onExpire != nil {
		c.onExpire(gen)
	}
}

// OnEvent keeps the countdown in step with the session: dealing stops it,
// a settled round starts it, an abort leaves it stopped
func (c *Countdown) OnEvent(event game.Event) {
	switch event.EventType() {
	case game.EventTypeRoundStart, game.EventTypeRoundAbort:
		c.Stop()
	case game.EventTypeRoundEnd:
		c.Start()
	}
}
