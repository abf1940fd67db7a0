package game

import (
	"fmt"
	"strings"
)

// State is the phase of the round state machine
type State int

const (
	Idle State = iota
	Dealing
	PlayerTurn
	DealerTurn
	Resolved
)

// String returns the string representation of a state
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dealing:
		return "dealing"
	case PlayerTurn:
		return "player_turn"
	case DealerTurn:
		return "dealer_turn"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AbortPolicy decides what happens to staked chips when the session is
// forced back to idle
type AbortPolicy int

const (
	// AbortRefund returns active and pending stakes to the bankroll
	AbortRefund AbortPolicy = iota
	// AbortForfeit drops them, as a walked-away table would
	AbortForfeit
)

// String returns the string representation of an abort policy
func (p AbortPolicy) String() string {
	switch p {
	case AbortRefund:
		return "refund"
	case AbortForfeit:
		return "forfeit"
	default:
		return "unknown"
	}
}

// ParseAbortPolicy parses "refund" or "forfeit"
func ParseAbortPolicy(s string) (AbortPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "refund":
		return AbortRefund, nil
	case "forfeit":
		return AbortForfeit, nil
	default:
		return 0, fmt.Errorf("unknown abort policy %q", s)
	}
}

// DealerStandsOn is the total at which the dealer stops drawing, soft or hard
const DealerStandsOn = 17

// Player-facing messages
const (
	MsgSelectChips   = "Select chips before dealing."
	MsgDealing       = "Dealing..."
	MsgYourTurn      = "Your turn."
	MsgSplitDisabled = "Split is not available."
	MsgTimeout       = "Time's up! Select chips and deal to play."
	MsgPush          = "Push. Bet returned."
)

// Config holds the table rules for a session
type Config struct {
	Decks            int
	StartingBankroll int
	AbortPolicy      AbortPolicy
}

// DefaultConfig returns the standard table: six decks and $1000
func DefaultConfig() Config {
	return Config{
		Decks:            6,
		StartingBankroll: 1000,
		AbortPolicy:      AbortRefund,
	}
}

// UnmarshalText decodes a state name
func (s *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{Idle, Dealing, PlayerTurn, DealerTurn, Resolved} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}
