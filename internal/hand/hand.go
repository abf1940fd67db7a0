// Package hand scores blackjack hands. Every function is pure.
package hand

import "github.com/lox/blackjack/internal/deck"

// Limit is the highest total that does not bust
const Limit = 21

// score returns the best total and how many aces still count as 11
func score(cards []deck.Card) (total, softAces int) {
	for _, c := range cards {
		total += c.Value()
		if c.IsAce() {
			softAces++
		}
	}
	// Downgrade aces from 11 to 1 only while the hand would otherwise bust
	for total > Limit && softAces > 0 {
		total -= 10
		softAces--
	}
	return total, softAces
}

// Total returns the hand value with each ace counted as 11 unless that busts
// the hand
func Total(cards []deck.Card) int {
	total, _ := score(cards)
	return total
}

// IsSoft reports whether an ace is still being counted as 11
func IsSoft(cards []deck.Card) bool {
	_, soft := score(cards)
	return soft > 0
}

// IsBlackjack reports a two-card 21
func IsBlackjack(cards []deck.Card) bool {
	return len(cards) == 2 && Total(cards) == Limit
}

// IsBust reports a total over 21
func IsBust(cards []deck.Card) bool {
	return Total(cards) > Limit
}

// VisibleTotal is the dealer total a player is allowed to see: the up-card's
// base value while the hole card is hidden, the full total once revealed
func VisibleTotal(cards []deck.Card, holeHidden bool) int {
	if len(cards) == 0 {
		return 0
	}
	if holeHidden {
		return cards[0].Value()
	}
	return Total(cards)
}
