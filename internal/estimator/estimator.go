// Package estimator answers "what happens if I take one more card?" from the
// composition of the remaining shoe, and offers a coarse hit/stand hint.
//
// The hint is illustrative only. It is not basic strategy.
package estimator

import (
	"math"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
)

// Action is a suggested player move
type Action int

const (
	None Action = iota
	Hit
	Stand
)

// String returns the string representation of an action
func (a Action) String() string {
	switch a {
	case Hit:
		return "Hit"
	case Stand:
		return "Stand"
	default:
		return "-"
	}
}

// unknownUpCard is assumed when the dealer shows nothing
const unknownUpCard = 10

// EffectiveValue is the value card adds to a hand currently totalling total:
// an ace counts 11 when that fits and 1 otherwise
func EffectiveValue(c deck.Card, total int) int {
	if c.IsAce() {
		if total+11 <= hand.Limit {
			return 11
		}
		return 1
	}
	return c.Value()
}

// BustCount returns how many of remaining would bust a hand totalling total
func BustCount(total int, remaining []deck.Card) int {
	busting := 0
	for _, c := range remaining {
		if total+EffectiveValue(c, total) > hand.Limit {
			busting++
		}
	}
	return busting
}

// BustProbability returns the chance, as a whole percentage, that the next
// card busts a hand totalling total. An empty shoe reports 0.
func BustProbability(total int, remaining []deck.Card) int {
	if len(remaining) == 0 {
		return 0
	}
	pct := float64(BustCount(total, remaining)) / float64(len(remaining)) * 100
	return int(math.Round(pct))
}

// Hint suggests a move for a player total against the dealer's up-card.
// A nil up-card is treated as a ten.
func Hint(total int, upCard *deck.Card) Action {
	switch {
	case total <= 12:
		return Hit
	case total <= 16:
		up := unknownUpCard
		if upCard != nil {
			up = upCard.Value()
		}
		if up >= 7 {
			return Hit
		}
		return Stand
	default:
		return Stand
	}
}
