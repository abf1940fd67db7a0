package game

import (
	"testing"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/ledger"
	"github.com/stretchr/testify/assert"
)

func TestEventBusSubscribeUnsubscribe(t *testing.T) {
	t.Parallel()

	bus := NewEventBus()
	a, b := &recorder{}, &recorder{}
	bus.Subscribe(a)
	bus.Subscribe(b)

	bus.Publish(stamp(RoundStartEvent{Round: 1, Stake: 10}))
	bus.Unsubscribe(a)
	bus.Publish(stamp(RoundStartEvent{Round: 2, Stake: 10}))

	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 2)
	assert.False(t, b.events[1].Timestamp().IsZero())
}

func TestFormatEvent(t *testing.T) {
	t.Parallel()

	ace := deck.NewCard(deck.Spades, deck.Ace)
	assert.Equal(t, "Round 3: betting $25", FormatEvent(RoundStartEvent{Round: 3, Stake: 25}))
	assert.Equal(t, "Player receives A♠", FormatEvent(CardDealtEvent{To: PartyPlayer, Card: &ace}))
	assert.Equal(t, "Dealer receives a face-down card", FormatEvent(CardDealtEvent{To: PartyDealer, Hidden: true}))
	assert.Equal(t, "Dealer reveals A♠", FormatEvent(HoleRevealEvent{Card: ace}))
	assert.Equal(t, "New shoe shuffled (6 decks, penetration)", FormatEvent(ShoeShuffleEvent{Decks: 6, Reason: "penetration"}))
	assert.Equal(t, "Round aborted: forfeit $10", FormatEvent(RoundAbortEvent{Policy: AbortForfeit, Amount: 10}))

	end := RoundEndEvent{
		Round:       1,
		Payout:      ledger.Payout{Outcome: ledger.Win},
		PlayerHand:  deck.MustParseCards("Ts 9d"),
		DealerHand:  deck.MustParseCards("Tc 7h"),
		PlayerTotal: 19,
		DealerTotal: 17,
		Bankroll:    1100,
	}
	assert.Equal(t, "Round 1: win [10♠ 9♦] (19) vs dealer [10♣ 7♥] (17), bankroll $1100", FormatEvent(end))
}

func TestParseAbortPolicy(t *testing.T) {
	t.Parallel()

	p, err := ParseAbortPolicy("Forfeit")
	assert.NoError(t, err)
	assert.Equal(t, AbortForfeit, p)

	p, err = ParseAbortPolicy("")
	assert.NoError(t, err)
	assert.Equal(t, AbortRefund, p)

	_, err = ParseAbortPolicy("push")
	assert.Error(t, err)
}
