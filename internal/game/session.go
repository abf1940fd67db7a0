package game

import (
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/estimator"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/ledger"
)

// ErrRoundInProgress is returned by commands that are only legal between rounds
var ErrRoundInProgress = errors.New("round in progress")

// SessionOption configures a Session during creation.
type SessionOption func(*Session)

// WithShoe uses a prepared shoe instead of building one from the RNG.
// Tests use it with deck.NewStackedShoe to fix the deal.
func WithShoe(shoe *deck.Shoe) SessionOption {
	return func(s *Session) { s.shoe = shoe }
}

// WithEventBus publishes round events on bus
func WithEventBus(bus EventBus) SessionOption {
	return func(s *Session) { s.bus = bus }
}

// Session is the single-player table: the shoe, the player's money and the
// round in flight. It is not safe for concurrent use; callers serialize
// commands.
//
// Commands that break the rules of the current state are rejected without
// side effects and report false. The UI is expected to disable them first.
type Session struct {
	cfg    Config
	logger *log.Logger
	bus    EventBus

	shoe   *deck.Shoe
	ledger *ledger.Ledger

	state      State
	round      int
	player     []deck.Card
	dealer     []deck.Card
	holeHidden bool
	canAct     bool
	message    string
	lastRound  *RoundSummary
}

// NewSession creates an idle session. The RNG is required so that shoes are
// reproducible from a seed.
//
//	rng := randutil.New(42)
//	s, err := game.NewSession(rng, logger, game.DefaultConfig())
//	s.PlaceChip(100)
//	s.StartRound()
func NewSession(rng *rand.Rand, logger *log.Logger, cfg Config, opts ...SessionOption) (*Session, error) {
	if rng == nil {
		return nil, errors.New("rng is required for session creation")
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.StartingBankroll < 0 {
		return nil, fmt.Errorf("starting bankroll must not be negative: %d", cfg.StartingBankroll)
	}

	s := &Session{
		cfg:        cfg,
		logger:     logger.WithPrefix("session"),
		ledger:     ledger.New(cfg.StartingBankroll),
		holeHidden: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.shoe == nil {
		shoe, err := deck.NewShoe(cfg.Decks, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to build shoe: %w", err)
		}
		s.shoe = shoe
	}
	if s.bus == nil {
		s.bus = NewEventBus()
	}

	s.logger.Debug("Session created", "decks", s.shoe.Decks(), "bankroll", cfg.StartingBankroll, "abort_policy", cfg.AbortPolicy)
	return s, nil
}

// EventBus returns the bus round events are published on
func (s *Session) EventBus() EventBus {
	return s.bus
}

// State returns the current phase of the round
func (s *Session) State() State {
	return s.state
}

// Shoe exposes the shoe for inspection
func (s *Session) Shoe() *deck.Shoe {
	return s.shoe
}

// Ledger exposes the player's money for inspection
func (s *Session) Ledger() *ledger.Ledger {
	return s.ledger
}

// CardsInPlay returns how many cards sit in the current hands
func (s *Session) CardsInPlay() int {
	return len(s.player) + len(s.dealer)
}

// PlaceChip adds a chip to the pending bet. Only legal between rounds.
func (s *Session) PlaceChip(value int) bool {
	if s.state != Idle {
		s.logger.Warn("Chip rejected during round", "value", value, "state", s.state)
		return false
	}
	if !s.ledger.PlaceChip(value) {
		s.logger.Debug("Chip rejected", "value", value, "bankroll", s.ledger.Bankroll())
		return false
	}
	return true
}

// ClearPendingBet returns the pending bet to the bankroll
func (s *Session) ClearPendingBet() bool {
	if s.state != Idle {
		return false
	}
	return s.ledger.ClearPending()
}

// ConfigureDecks changes the deck count and shuffles a fresh shoe
func (s *Session) ConfigureDecks(decks int) error {
	if s.state != Idle {
		return ErrRoundInProgress
	}
	if err := s.shoe.Configure(decks); err != nil {
		return err
	}
	s.message = fmt.Sprintf("Decks: %d. New shoe.", decks)
	s.publish(ShoeShuffleEvent{Decks: decks, Reason: "configured"})
	return nil
}

// StartRound commits the pending bet and deals player, dealer up-card,
// player, dealer hole card. A natural on either side settles immediately.
func (s *Session) StartRound() bool {
	if s.state != Idle {
		s.logger.Warn("Start rejected", "state", s.state)
		return false
	}
	if s.ledger.Pending() <= 0 {
		s.message = MsgSelectChips
		return false
	}

	if s.shoe.MaybeReshuffle() {
		s.logger.Info("Shoe reshuffled", "decks", s.shoe.Decks())
		s.publish(ShoeShuffleEvent{Decks: s.shoe.Decks(), Reason: "penetration"})
	}

	s.ledger.Commit()
	s.round++
	s.state = Dealing
	s.player = make([]deck.Card, 0, 4)
	s.dealer = make([]deck.Card, 0, 4)
	s.holeHidden = true
	s.canAct = false
	s.message = MsgDealing
	s.publish(RoundStartEvent{Round: s.round, Stake: s.ledger.Active()})
	s.logger.Debug("Round started", "round", s.round, "stake", s.ledger.Active())

	s.deal(PartyPlayer, false)
	s.deal(PartyDealer, false)
	s.deal(PartyPlayer, false)
	s.deal(PartyDealer, true)

	if hand.IsBlackjack(s.player) || hand.IsBlackjack(s.dealer) {
		s.revealHole()
		s.resolve()
		return true
	}

	s.state = PlayerTurn
	s.canAct = true
	s.message = MsgYourTurn
	return true
}

// Hit draws one card for the player. A bust loses at once; the dealer
// does not draw.
func (s *Session) Hit() bool {
	if !s.playerMayAct() {
		return false
	}

	s.deal(PartyPlayer, false)
	if hand.IsBust(s.player) {
		s.canAct = false
		s.revealHole()
		s.finish(ledger.Lose)
	}
	return true
}

// Stand ends the player's turn and plays out the dealer
func (s *Session) Stand() bool {
	if !s.playerMayAct() {
		return false
	}
	s.stand()
	return true
}

// CanDouble reports whether DoubleDown would be accepted now
func (s *Session) CanDouble() bool {
	return s.playerMayAct() && len(s.player) == 2 && s.ledger.CanDouble()
}

// DoubleDown doubles the stake, draws exactly one card and stands
func (s *Session) DoubleDown() bool {
	if !s.CanDouble() {
		s.logger.Debug("Double rejected", "cards", len(s.player), "bankroll", s.ledger.Bankroll(), "stake", s.ledger.Active())
		return false
	}

	s.ledger.Double()
	s.deal(PartyPlayer, false)
	if hand.IsBust(s.player) {
		s.canAct = false
		s.revealHole()
		s.finish(ledger.Lose)
		return true
	}
	s.stand()
	return true
}

// Split is not offered at this table and is always rejected.
func (s *Session) Split() bool {
	if s.playerMayAct() {
		s.message = MsgSplitDisabled
	}
	return false
}

// AbortToIdle abandons whatever is in progress and reopens betting. Dealt
// cards go to the discard pile and staked chips follow the abort policy.
// It returns the amount refunded or forfeited.
func (s *Session) AbortToIdle() int {
	midRound := s.state != Idle

	s.shoe.MoveToDiscard(s.player...)
	s.shoe.MoveToDiscard(s.dealer...)
	s.player = nil
	s.dealer = nil

	var amount int
	switch s.cfg.AbortPolicy {
	case AbortForfeit:
		amount = s.ledger.Forfeit()
	default:
		amount = s.ledger.Refund()
	}

	s.state = Idle
	s.canAct = false
	s.holeHidden = true
	s.message = MsgTimeout

	s.logger.Info("Aborted to idle", "round", s.round, "mid_round", midRound, "policy", s.cfg.AbortPolicy, "amount", amount)
	s.publish(RoundAbortEvent{Round: s.round, Policy: s.cfg.AbortPolicy, Amount: amount, MidRound: midRound})
	return amount
}

// BustProbability is the percent chance the next card busts the player.
// It is 0 whenever the player cannot act.
func (s *Session) BustProbability() int {
	if !s.playerMayAct() {
		return 0
	}
	return estimator.BustProbability(hand.Total(s.player), s.shoe.Cards())
}

// ActionHint suggests hit or stand while the player can act
func (s *Session) ActionHint() estimator.Action {
	if !s.playerMayAct() {
		return estimator.None
	}
	var up *deck.Card
	if len(s.dealer) > 0 {
		c := s.dealer[0]
		up = &c
	}
	return estimator.Hint(hand.Total(s.player), up)
}

func (s *Session) playerMayAct() bool {
	return s.state == PlayerTurn && s.canAct
}

// deal moves one card from the shoe to a hand
func (s *Session) deal(to Party, hidden bool) {
	if s.shoe.Remaining() == 0 {
		s.logger.Info("Shoe exhausted, reshuffling", "decks", s.shoe.Decks())
		s.publish(ShoeShuffleEvent{Decks: s.shoe.Decks(), Reason: "exhausted"})
	}
	card := s.shoe.Draw()

	switch to {
	case PartyPlayer:
		s.player = append(s.player, card)
	case PartyDealer:
		s.dealer = append(s.dealer, card)
	}

	event := CardDealtEvent{Round: s.round, To: to, Hidden: hidden}
	if !hidden {
		event.Card = &card
		s.logger.Debug("Card dealt", "to", to, "card", card)
	}
	s.publish(event)
}

func (s *Session) revealHole() {
	if !s.holeHidden {
		return
	}
	s.holeHidden = false
	if len(s.dealer) > 1 {
		s.publish(HoleRevealEvent{Round: s.round, Card: s.dealer[1]})
	}
}

func (s *Session) stand() {
	s.canAct = false
	s.revealHole()
	s.state = DealerTurn

	// S17: the dealer stands on every 17, soft or hard
	for hand.Total(s.dealer) < DealerStandsOn {
		s.deal(PartyDealer, false)
	}
	s.resolve()
}

func (s *Session) resolve() {
	s.finish(DetermineOutcome(s.player, s.dealer))
}

// finish settles the stake, clears the table and returns to idle
func (s *Session) finish(outcome ledger.Outcome) {
	s.state = Resolved
	payout := s.ledger.Settle(outcome)

	summary := &RoundSummary{
		Round:       s.round,
		Payout:      payout,
		PlayerHand:  s.player,
		DealerHand:  s.dealer,
		PlayerTotal: hand.Total(s.player),
		DealerTotal: hand.Total(s.dealer),
	}
	s.lastRound = summary
	s.message = payoutMessage(payout)

	s.logger.Info("Round resolved",
		"round", s.round,
		"outcome", payout.Outcome,
		"player", summary.PlayerTotal,
		"dealer", summary.DealerTotal,
		"net", payout.Net,
		"bankroll", s.ledger.Bankroll())

	s.publish(RoundEndEvent{
		Round:       s.round,
		Payout:      payout,
		PlayerHand:  cloneCards(s.player),
		DealerHand:  cloneCards(s.dealer),
		PlayerTotal: summary.PlayerTotal,
		DealerTotal: summary.DealerTotal,
		Bankroll:    s.ledger.Bankroll(),
	})

	s.shoe.MoveToDiscard(s.player...)
	s.shoe.MoveToDiscard(s.dealer...)
	s.player = nil
	s.dealer = nil
	s.canAct = false
	s.state = Idle
}

func (s *Session) publish(event Event) {
	s.bus.Publish(stamp(event))
}

func cloneCards(cards []deck.Card) []deck.Card {
	out := make([]deck.Card, len(cards))
	copy(out, cards)
	return out
}
