package game

import (
	"fmt"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/ledger"
)

// DetermineOutcome compares two finished hands. Rules are checked in order:
// player bust, dealer bust, lone player natural, lone dealer natural, then
// totals. Equal totals, including two naturals, push.
func DetermineOutcome(player, dealer []deck.Card) ledger.Outcome {
	p, d := hand.Total(player), hand.Total(dealer)
	playerBJ, dealerBJ := hand.IsBlackjack(player), hand.IsBlackjack(dealer)

	switch {
	case p > hand.Limit:
		return ledger.Lose
	case d > hand.Limit:
		return ledger.Win
	case playerBJ && !dealerBJ:
		return ledger.Blackjack
	case dealerBJ && !playerBJ:
		return ledger.Lose
	case p > d:
		return ledger.Win
	case p < d:
		return ledger.Lose
	default:
		return ledger.Push
	}
}

// payoutMessage is the line shown to the player after settlement
func payoutMessage(p ledger.Payout) string {
	switch p.Outcome {
	case ledger.Blackjack:
		return fmt.Sprintf("Blackjack! You win $%d.", p.Net)
	case ledger.Win:
		return fmt.Sprintf("You win $%d.", p.Net)
	case ledger.Push:
		return MsgPush
	default:
		return fmt.Sprintf("You lose $%d.", p.Stake)
	}
}
