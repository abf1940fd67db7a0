package game

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/stretchr/testify/require"
)

const lowPadding = "2c 2d 2h 2s 3c 3d 3h 3s 4c 4d 4h 4s"

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// recorder collects published events
type recorder struct {
	events []Event
}

func (r *recorder) OnEvent(event Event) {
	r.events = append(r.events, event)
}

func (r *recorder) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

func (r *recorder) last(t EventType) Event {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].EventType() == t {
			return r.events[i]
		}
	}
	return nil
}

// newStackedSession returns a one-deck session whose shoe deals draws in the
// order written (player, dealer, player, dealer hole, then hits), followed by
// padding. Padding keeps the shoe above the reshuffle threshold.
func newStackedSession(t *testing.T, cfg Config, draws, padding string) (*Session, *recorder) {
	t.Helper()

	if padding == "" {
		padding = lowPadding
	}
	pad := deck.MustParseCards(padding)
	dealt := deck.MustParseCards(draws)

	cards := make([]deck.Card, 0, len(pad)+len(dealt))
	cards = append(cards, pad...)
	for i := len(dealt) - 1; i >= 0; i-- {
		cards = append(cards, dealt[i])
	}

	shoe, err := deck.NewStackedShoe(1, randutil.New(1), cards)
	require.NoError(t, err)

	bus := NewEventBus()
	rec := &recorder{}
	bus.Subscribe(rec)

	cfg.Decks = 1
	s, err := NewSession(randutil.New(1), quietLogger(), cfg, WithShoe(shoe), WithEventBus(bus))
	require.NoError(t, err)
	return s, rec
}

func startWithBet(t *testing.T, s *Session, bet int) {
	t.Helper()
	require.True(t, s.PlaceChip(bet))
	require.True(t, s.StartRound())
}
