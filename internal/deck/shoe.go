package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// CardsPerDeck is the number of cards in one standard deck
const CardsPerDeck = 52

// ErrInvalidDecks is returned when a shoe is configured with fewer than one deck
var ErrInvalidDecks = errors.New("deck count must be at least 1")

// Shoe is a multi-deck draw pile plus the discard pile of finished rounds.
// Cards are drawn from the end of the pile.
type Shoe struct {
	decks   int
	cards   []Card
	discard []Card
	rng     *rand.Rand
}

// NewShoe creates a shuffled shoe holding decks*52 cards
func NewShoe(decks int, rng *rand.Rand) (*Shoe, error) {
	if decks < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDecks, decks)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s := &Shoe{decks: decks, rng: rng}
	s.Build()
	return s, nil
}

// NewStackedShoe creates a shoe whose draw order is fixed: the last card of
// cards is drawn first. Rebuilds still produce a full shuffled shoe.
func NewStackedShoe(decks int, rng *rand.Rand, cards []Card) (*Shoe, error) {
	s, err := NewShoe(decks, rng)
	if err != nil {
		return nil, err
	}
	s.cards = append(s.cards[:0], cards...)
	return s, nil
}

// Build replaces the draw pile with a fresh shuffled composition and clears
// the discard pile
func (s *Shoe) Build() {
	size := s.Size()
	if cap(s.cards) < size {
		s.cards = make([]Card, 0, size)
	}
	s.cards = s.cards[:0]

	for d := 0; d < s.decks; d++ {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				s.cards = append(s.cards, NewCard(suit, rank))
			}
		}
	}

	s.shuffle()
	s.discard = s.discard[:0]
}

// shuffle is an in-place Fisher-Yates pass
func (s *Shoe) shuffle() {
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}

// Draw removes and returns the last card of the pile, rebuilding first when
// the pile is empty
func (s *Shoe) Draw() Card {
	if len(s.cards) == 0 {
		s.Build()
	}

	last := len(s.cards) - 1
	card := s.cards[last]
	s.cards = s.cards[:last]
	return card
}

// NeedsReshuffle reports whether fewer than 20% of a fresh shoe remain
func (s *Shoe) NeedsReshuffle() bool {
	// remaining < size*0.2 without floating point
	return len(s.cards)*5 < s.Size()
}

// MaybeReshuffle rebuilds the shoe when penetration passes the cut card and
// reports whether it did
func (s *Shoe) MaybeReshuffle() bool {
	if !s.NeedsReshuffle() {
		return false
	}
	s.Build()
	return true
}

// MoveToDiscard appends finished cards to the discard pile
func (s *Shoe) MoveToDiscard(cards ...Card) {
	s.discard = append(s.discard, cards...)
}

// Configure changes the deck count and rebuilds immediately
func (s *Shoe) Configure(decks int) error {
	if decks < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidDecks, decks)
	}
	s.decks = decks
	s.Build()
	return nil
}

// Decks returns the configured deck count
func (s *Shoe) Decks() int {
	return s.decks
}

// Size returns the card count of a fresh shoe
func (s *Shoe) Size() int {
	return s.decks * CardsPerDeck
}

// Remaining returns the number of cards left to draw
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// Discarded returns the number of cards in the discard pile
func (s *Shoe) Discarded() int {
	return len(s.discard)
}

// Penetration returns the fraction of a fresh shoe no longer in the draw pile
func (s *Shoe) Penetration() float64 {
	return 1 - float64(len(s.cards))/float64(s.Size())
}

// Cards returns a copy of the remaining draw pile in draw order reversed
// (index len-1 is the next card)
func (s *Shoe) Cards() []Card {
	out := make([]Card, len(s.cards))
	copy(out, s.cards)
	return out
}
