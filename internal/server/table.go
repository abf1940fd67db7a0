package server

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/countdown"
	"github.com/lox/blackjack/internal/game"
)

// Command errors reported to the client as error messages
var (
	ErrInvalidChip    = errors.New("chip value is not offered at this table")
	ErrUnknownCommand = errors.New("unknown command")
	ErrTooManyDecks   = fmt.Errorf("deck count must be at most %d", config.MaxDecks)
)

// Table owns one player's session and its idle countdown. Every access to
// the session goes through mu.
type Table struct {
	mu        sync.Mutex
	session   *game.Session
	countdown *countdown.Countdown
	chips     []int
	logger    *log.Logger

	// onExpire is called with the post-timeout state, outside mu
	onExpire func(StateData)
}

// NewTable creates an idle table with a running countdown
func NewTable(rng *rand.Rand, clock quartz.Clock, cfg game.Config, chips []int, idle time.Duration, logger *log.Logger, onExpire func(StateData), opts ...game.SessionOption) (*Table, error) {
	t := &Table{
		chips:    chips,
		logger:   logger.WithPrefix("table"),
		onExpire: onExpire,
	}

	bus := game.NewEventBus()
	session, err := game.NewSession(rng, logger, cfg, append([]game.SessionOption{game.WithEventBus(bus)}, opts...)...)
	if err != nil {
		return nil, err
	}
	t.session = session
	t.countdown = countdown.New(clock, idle, t.expire, logger)
	bus.Subscribe(t.countdown)
	t.countdown.Start()
	return t, nil
}

// Apply runs one client command and returns the resulting state
func (t *Table) Apply(msgType MessageType, value int) (StateData, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var accepted bool
	switch msgType {
	case MessageTypePlaceChip:
		if !slices.Contains(t.chips, value) {
			return StateData{}, ErrInvalidChip
		}
		accepted = t.session.PlaceChip(value)
	case MessageTypeClearBet:
		accepted = t.session.ClearPendingBet()
	case MessageTypeDeal:
		accepted = t.session.StartRound()
	case MessageTypeHit:
		accepted = t.session.Hit()
	case MessageTypeStand:
		accepted = t.session.Stand()
	case MessageTypeDouble:
		accepted = t.session.DoubleDown()
	case MessageTypeSplit:
		accepted = t.session.Split()
	case MessageTypeConfigureDecks:
		if value > config.MaxDecks {
			return StateData{}, ErrTooManyDecks
		}
		if err := t.session.ConfigureDecks(value); err != nil {
			return StateData{}, err
		}
		accepted = true
	case MessageTypeSnapshot:
		accepted = true
	default:
		return StateData{}, ErrUnknownCommand
	}

	if !accepted {
		t.logger.Debug("Command rejected", "type", msgType, "state", t.session.State())
	}
	return t.stateLocked(accepted), nil
}

// State returns the current state without changing anything
func (t *Table) State() StateData {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked(true)
}

// Close stops the countdown
func (t *Table) Close() {
	t.countdown.Stop()
}

// expire runs on the clock's goroutine. A command that took mu first may
// already have dealt or restarted the countdown, in which case gen is stale
// and the expiry is dropped.
func (t *Table) expire(gen uint64) {
	t.mu.Lock()
	if !t.countdown.Current(gen) {
		t.mu.Unlock()
		t.logger.Debug("Stale countdown expiry dropped")
		return
	}
	amount := t.session.AbortToIdle()
	state := t.stateLocked(true)
	t.mu.Unlock()

	t.logger.Info("Table timed out", "amount", amount)
	if t.onExpire != nil {
		t.onExpire(state)
	}
}

func (t *Table) stateLocked(accepted bool) StateData {
	return StateData{
		Snapshot:         t.session.Snapshot().Redacted(),
		BustProbability:  t.session.BustProbability(),
		Hint:             t.session.ActionHint().String(),
		Accepted:         accepted,
		CountdownRunning: t.countdown.Running(),
		CountdownSeconds: t.countdown.Remaining().Seconds(),
	}
}
