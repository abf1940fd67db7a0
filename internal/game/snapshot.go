package game

import (
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/ledger"
)

// RoundSummary records how the last round ended
type RoundSummary struct {
	Round       int           `json:"round"`
	Payout      ledger.Payout `json:"payout"`
	PlayerHand  []deck.Card   `json:"playerHand"`
	DealerHand  []deck.Card   `json:"dealerHand"`
	PlayerTotal int           `json:"playerTotal"`
	DealerTotal int           `json:"dealerTotal"`
}

// Snapshot is a read-only copy of everything a presentation layer renders
type Snapshot struct {
	State            State         `json:"state"`
	Round            int           `json:"round"`
	DealerHand       []deck.Card   `json:"dealerHand"`
	DealerHoleHidden bool          `json:"dealerHoleHidden"`
	DealerTotal      int           `json:"dealerTotal"` // visible total only
	PlayerHand       []deck.Card   `json:"playerHand"`
	PlayerTotal      int           `json:"playerTotal"`
	Bankroll         int           `json:"bankroll"`
	PendingBet       int           `json:"pendingBet"`
	ActiveBet        int           `json:"activeBet"`
	InRound          bool          `json:"inRound"`
	CanAct           bool          `json:"canAct"`
	CanDouble        bool          `json:"canDouble"`
	LastMessage      string        `json:"lastMessage"`
	LastRound        *RoundSummary `json:"lastRound,omitempty"`
	ShoeRemaining    int           `json:"shoeRemaining"`
	Decks            int           `json:"decks"`
}

// Snapshot returns the current table state. It never mutates the session.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		State:            s.state,
		Round:            s.round,
		DealerHand:       cloneCards(s.dealer),
		DealerHoleHidden: s.holeHidden,
		DealerTotal:      hand.VisibleTotal(s.dealer, s.holeHidden),
		PlayerHand:       cloneCards(s.player),
		PlayerTotal:      hand.Total(s.player),
		Bankroll:         s.ledger.Bankroll(),
		PendingBet:       s.ledger.Pending(),
		ActiveBet:        s.ledger.Active(),
		InRound:          s.state != Idle,
		CanAct:           s.playerMayAct(),
		CanDouble:        s.CanDouble(),
		LastMessage:      s.message,
		ShoeRemaining:    s.shoe.Remaining(),
		Decks:            s.shoe.Decks(),
	}
	if s.lastRound != nil {
		last := *s.lastRound
		last.PlayerHand = cloneCards(last.PlayerHand)
		last.DealerHand = cloneCards(last.DealerHand)
		snap.LastRound = &last
	}
	return snap
}

// UpCard returns the dealer's face-up card, if dealt
func (snap Snapshot) UpCard() (deck.Card, bool) {
	if len(snap.DealerHand) == 0 {
		return deck.Card{}, false
	}
	return snap.DealerHand[0], true
}

// Redacted returns a copy safe to send to an untrusted client: the hole card
// is dropped while it is face down
func (snap Snapshot) Redacted() Snapshot {
	if snap.DealerHoleHidden && len(snap.DealerHand) > 1 {
		visible := make([]deck.Card, 0, len(snap.DealerHand)-1)
		visible = append(visible, snap.DealerHand[0])
		visible = append(visible, snap.DealerHand[2:]...)
		snap.DealerHand = visible
	}
	return snap
}
