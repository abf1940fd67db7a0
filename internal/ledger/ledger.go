// Package ledger tracks the player's money: the bankroll, the chips stacked
// for the next round and the stake committed to the round in progress.
package ledger

import "fmt"

// Outcome is the result of a resolved round from the player's side
type Outcome int

const (
	Lose Outcome = iota
	Win
	Blackjack
	Push
)

// String returns the string representation of an outcome
func (o Outcome) String() string {
	switch o {
	case Lose:
		return "lose"
	case Win:
		return "win"
	case Blackjack:
		return "blackjack"
	case Push:
		return "push"
	default:
		return "unknown"
	}
}

// Payout describes a settled stake
type Payout struct {
	Outcome  Outcome `json:"outcome"`
	Stake    int     `json:"stake"`    // active bet at settlement
	Returned int     `json:"returned"` // credited back to the bankroll
	Net      int     `json:"net"`      // Returned - Stake
}

// Ledger holds bankroll, pending and active stakes. Every amount stays
// non-negative; chips move from bankroll to pending to active and back.
type Ledger struct {
	bankroll int
	pending  int
	active   int
	locked   bool // a committed round is in progress
}

// New creates a ledger with the given starting bankroll
func New(bankroll int) *Ledger {
	if bankroll < 0 {
		bankroll = 0
	}
	return &Ledger{bankroll: bankroll}
}

// Bankroll returns the chips not currently staked
func (l *Ledger) Bankroll() int { return l.bankroll }

// Pending returns the chips stacked for the next round
func (l *Ledger) Pending() int { return l.pending }

// Active returns the stake of the round in progress
func (l *Ledger) Active() int { return l.active }

// InRound reports whether a committed stake awaits settlement
func (l *Ledger) InRound() bool { return l.locked }

// Total returns every chip the player owns, staked or not
func (l *Ledger) Total() int { return l.bankroll + l.pending + l.active }

// PlaceChip moves value from the bankroll onto the pending bet
func (l *Ledger) PlaceChip(value int) bool {
	if l.locked || value <= 0 || l.bankroll < value {
		return false
	}
	l.bankroll -= value
	l.pending += value
	return true
}

// ClearPending returns the pending bet to the bankroll
func (l *Ledger) ClearPending() bool {
	if l.locked {
		return false
	}
	l.bankroll += l.pending
	l.pending = 0
	return true
}

// Commit turns the pending bet into the active stake of a new round
func (l *Ledger) Commit() bool {
	if l.locked || l.pending <= 0 {
		return false
	}
	l.active = l.pending
	l.pending = 0
	l.locked = true
	return true
}

// CanDouble reports whether the bankroll can match the active stake
func (l *Ledger) CanDouble() bool {
	return l.locked && l.active > 0 && l.bankroll >= l.active
}

// Double matches the active stake from the bankroll
func (l *Ledger) Double() bool {
	if !l.CanDouble() {
		return false
	}
	l.bankroll -= l.active
	l.active *= 2
	return true
}

// Returned is the amount credited back for a stake with the given outcome.
// Blackjack pays 3:2 rounded down, a win 1:1, a push returns the stake.
func Returned(outcome Outcome, stake int) int {
	switch outcome {
	case Blackjack:
		return stake * 5 / 2
	case Win:
		return stake * 2
	case Push:
		return stake
	default:
		return 0
	}
}

// Settle pays out the active stake and closes the round
func (l *Ledger) Settle(outcome Outcome) Payout {
	p := Payout{
		Outcome:  outcome,
		Stake:    l.active,
		Returned: Returned(outcome, l.active),
	}
	p.Net = p.Returned - p.Stake

	l.bankroll += p.Returned
	l.active = 0
	l.locked = false
	return p
}

// Refund returns both the active and pending stakes to the bankroll and
// reports the amount returned
func (l *Ledger) Refund() int {
	amount := l.active + l.pending
	l.bankroll += amount
	l.active = 0
	l.pending = 0
	l.locked = false
	return amount
}

// Forfeit drops the active and pending stakes and reports the amount lost
func (l *Ledger) Forfeit() int {
	amount := l.active + l.pending
	l.active = 0
	l.pending = 0
	l.locked = false
	return amount
}

// MarshalText encodes the outcome name
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name
func (o *Outcome) UnmarshalText(text []byte) error {
	for _, candidate := range []Outcome{Lose, Win, Blackjack, Push} {
		if candidate.String() == string(text) {
			*o = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}
