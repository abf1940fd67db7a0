package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/ledger"
)

// EventType represents a round event type with type safety
type EventType string

const (
	EventTypeRoundStart  EventType = "round_start"
	EventTypeCardDealt   EventType = "card_dealt"
	EventTypeHoleReveal  EventType = "hole_reveal"
	EventTypeShoeShuffle EventType = "shoe_shuffle"
	EventTypeRoundEnd    EventType = "round_end"
	EventTypeRoundAbort  EventType = "round_abort"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is anything a presentation collaborator may react to (a sound, an
// animation, a timer)
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// Party identifies who receives a card
type Party string

const (
	PartyPlayer Party = "player"
	PartyDealer Party = "dealer"
)

// RoundStartEvent is published once the bet is committed, before any card
type RoundStartEvent struct {
	Round     int
	Stake     int
	timestamp time.Time
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Timestamp() time.Time { return e.timestamp }

// CardDealtEvent is published for every card leaving the shoe. Hidden cards
// carry no card value.
type CardDealtEvent struct {
	Round     int
	To        Party
	Card      *deck.Card
	Hidden    bool
	timestamp time.Time
}

func (e CardDealtEvent) EventType() EventType { return EventTypeCardDealt }
func (e CardDealtEvent) Timestamp() time.Time { return e.timestamp }

// HoleRevealEvent is published when the dealer turns the hole card
type HoleRevealEvent struct {
	Round     int
	Card      deck.Card
	timestamp time.Time
}

func (e HoleRevealEvent) EventType() EventType { return EventTypeHoleReveal }
func (e HoleRevealEvent) Timestamp() time.Time { return e.timestamp }

// ShoeShuffleEvent is published whenever a fresh shoe is built
type ShoeShuffleEvent struct {
	Decks     int
	Reason    string
	timestamp time.Time
}

func (e ShoeShuffleEvent) EventType() EventType { return EventTypeShoeShuffle }
func (e ShoeShuffleEvent) Timestamp() time.Time { return e.timestamp }

// RoundEndEvent is published after the payout is applied
type RoundEndEvent struct {
	Round       int
	Payout      ledger.Payout
	PlayerHand  []deck.Card
	DealerHand  []deck.Card
	PlayerTotal int
	DealerTotal int
	Bankroll    int
	timestamp   time.Time
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }
func (e RoundEndEvent) Timestamp() time.Time { return e.timestamp }

// RoundAbortEvent is published when the session is forced back to idle
type RoundAbortEvent struct {
	Round     int
	Policy    AbortPolicy
	Amount    int // refunded or forfeited
	MidRound  bool
	timestamp time.Time
}

func (e RoundAbortEvent) EventType() EventType { return EventTypeRoundAbort }
func (e RoundAbortEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber can subscribe to round events
type EventSubscriber interface {
	OnEvent(event Event)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event Event)
}

// SimpleEventBus delivers events synchronously, in subscription order
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event Event) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}

// FormatEvent renders an event as a single log line for text front ends
func FormatEvent(event Event) string {
	switch e := event.(type) {
	case RoundStartEvent:
		return fmt.Sprintf("Round %d: betting $%d", e.Round, e.Stake)
	case CardDealtEvent:
		if e.Hidden || e.Card == nil {
			return fmt.Sprintf("%s receives a face-down card", capitalize(string(e.To)))
		}
		return fmt.Sprintf("%s receives %s", capitalize(string(e.To)), e.Card)
	case HoleRevealEvent:
		return fmt.Sprintf("Dealer reveals %s", e.Card)
	case ShoeShuffleEvent:
		return fmt.Sprintf("New shoe shuffled (%d decks, %s)", e.Decks, e.Reason)
	case RoundEndEvent:
		return fmt.Sprintf("Round %d: %s %s (%d) vs dealer %s (%d), bankroll $%d",
			e.Round, e.Payout.Outcome, formatCards(e.PlayerHand), e.PlayerTotal,
			formatCards(e.DealerHand), e.DealerTotal, e.Bankroll)
	case RoundAbortEvent:
		return fmt.Sprintf("Round aborted: %s $%d", e.Policy, e.Amount)
	default:
		return string(event.EventType())
	}
}

func formatCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// stamp sets the publication time on events built without one
func stamp(event Event) Event {
	now := time.Now()
	switch e := event.(type) {
	case RoundStartEvent:
		e.timestamp = now
		return e
	case CardDealtEvent:
		e.timestamp = now
		return e
	case HoleRevealEvent:
		e.timestamp = now
		return e
	case ShoeShuffleEvent:
		e.timestamp = now
		return e
	case RoundEndEvent:
		e.timestamp = now
		return e
	case RoundAbortEvent:
		e.timestamp = now
		return e
	default:
		return event
	}
}
