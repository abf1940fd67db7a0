// Package game implements a single-player blackjack table.
//
// The main type is Session, which owns the shoe, the player's ledger and the
// round in progress, and moves through Idle, Dealing, PlayerTurn, DealerTurn
// and Resolved before returning to Idle.
//
// # Basic Usage
//
// Bet, deal and play out a round:
//
//	s, err := game.NewSession(randutil.New(42), logger, game.DefaultConfig())
//	s.PlaceChip(100)
//	s.StartRound()
//	if s.ActionHint() == estimator.Hit {
//	    s.Hit()
//	}
//	s.Stand()
//	fmt.Println(s.Snapshot().LastMessage)
//
// Commands that are illegal in the current state report false and change
// nothing, so presentation layers may call them freely.
//
// # Deterministic Testing
//
// Sessions take a *rand.Rand, so a fixed seed replays the same shoe. For
// complete control, provide a stacked shoe:
//
//	shoe, _ := deck.NewStackedShoe(1, rng, cards)
//	s, _ := game.NewSession(rng, logger, cfg, game.WithShoe(shoe))
//
// # Architecture
//
// Session delegates to smaller packages:
//   - deck.Shoe: shuffling, drawing, the discard pile and penetration
//   - hand: totals, soft hands, naturals and busts
//   - ledger.Ledger: bankroll, pending and active stakes, payouts
//   - estimator: bust probability and the hit/stand hint
//
// Round events are published on an EventBus so that timers and front ends
// can follow the table without polling it. A Session is not safe for
// concurrent use; its owner serializes commands.
package game
