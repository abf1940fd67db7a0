// Package simulator plays the hint strategy over many rounds to check the
// payout arithmetic and measure how the heuristic fares.
package simulator

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack/internal/estimator"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Rounds  int
	Workers int
	Bet     int
	Decks   int
	Seed    int64
	Logger  *log.Logger
}

// Simulator runs blackjack round simulations
type Simulator struct {
	config Config

	// workers is the number of workers the last Run actually started
	workers int
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Bet < 1 {
		config.Bet = 10
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config}
}

// Run executes the simulation and returns the merged statistics. Each
// worker owns a session seeded from its own stream of the base seed, so a
// run is reproducible for a given seed and worker count.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Rounds < 1 {
		return nil, fmt.Errorf("rounds must be positive: %d", s.config.Rounds)
	}

	workers := min(s.config.Workers, s.config.Rounds)
	s.workers = workers
	results := make([]*statistics.Statistics, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		rounds := s.config.Rounds / workers
		if w < s.config.Rounds%workers {
			rounds++
		}
		seed := randutil.Derive(s.config.Seed, w)

		g.Go(func() error {
			stats, err := s.playWorker(ctx, seed, rounds)
			if err != nil {
				return fmt.Errorf("worker %d (seed %d): %w", w, seed, err)
			}
			results[w] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Merge(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

// playWorker plays rounds on one session. The bankroll covers a doubled
// loss on every round, so the player never runs short.
func (s *Simulator) playWorker(ctx context.Context, seed int64, rounds int) (*statistics.Statistics, error) {
	cfg := game.DefaultConfig()
	if s.config.Decks > 0 {
		cfg.Decks = s.config.Decks
	}
	cfg.StartingBankroll = s.config.Bet * (2*rounds + 2)

	session, err := game.NewSession(randutil.New(seed), s.config.Logger, cfg)
	if err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := s.playRound(session)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i+1, err)
		}
		result.Seed = seed
		stats.Add(result)
	}

	s.config.Logger.Debug("Worker finished", "seed", seed, "rounds", rounds, "bankroll", session.Ledger().Bankroll())
	return stats, nil
}

// playRound bets once and follows the hint, doubling on 10 or 11
func (s *Simulator) playRound(session *game.Session) (statistics.RoundResult, error) {
	if !session.PlaceChip(s.config.Bet) {
		return statistics.RoundResult{}, fmt.Errorf("bet of %d rejected with bankroll %d", s.config.Bet, session.Ledger().Bankroll())
	}
	if !session.StartRound() {
		return statistics.RoundResult{}, fmt.Errorf("round did not start")
	}

	for session.State() == game.PlayerTurn {
		snap := session.Snapshot()
		if snap.CanDouble && (snap.PlayerTotal == 10 || snap.PlayerTotal == 11) {
			session.DoubleDown()
			continue
		}
		if session.ActionHint() == estimator.Hit {
			session.Hit()
		} else {
			session.Stand()
		}
	}

	last := session.Snapshot().LastRound
	if last == nil {
		return statistics.RoundResult{}, fmt.Errorf("round ended without a result")
	}
	return statistics.RoundResult{
		Net:     float64(last.Payout.Net) / float64(s.config.Bet),
		Outcome: last.Payout.Outcome,
		Doubled: last.Payout.Stake > s.config.Bet,
	}, nil
}

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, stats *statistics.Statistics) {
	low, high := stats.ConfidenceInterval95()

	_, _ = fmt.Fprintf(w, "\n=== RESULTS ===\n")
	_, _ = fmt.Fprintf(w, "Rounds played: %d\n", stats.Rounds)
	_, _ = fmt.Fprintf(w, "Wins: %d (%.1f%%), blackjacks: %d\n", stats.Wins, stats.WinRate()*100, stats.Blackjacks)
	_, _ = fmt.Fprintf(w, "Losses: %d, pushes: %d\n", stats.Losses, stats.Pushes)

	_, _ = fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	_, _ = fmt.Fprintf(w, "Net: %.1f bets\n", stats.SumNet)
	_, _ = fmt.Fprintf(w, "Mean: %.4f bets/round\n", stats.Mean())
	_, _ = fmt.Fprintf(w, "Std Dev: %.4f bets\n", stats.StdDev())
	_, _ = fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] bets/round\n", low, high)

	if stats.Doubles > 0 {
		_, _ = fmt.Fprintf(w, "\n=== DOUBLE DOWN ===\n")
		_, _ = fmt.Fprintf(w, "Doubled: %d rounds, %.4f bets/round\n", stats.Doubles, stats.DoubleNet/float64(stats.Doubles))
	}
}

// Report is the machine-readable summary written by the simulate command
type Report struct {
	Seed       int64      `json:"seed"`
	Workers    int        `json:"workers"`
	Bet        int        `json:"bet"`
	Decks      int        `json:"decks"`
	Rounds     int        `json:"rounds"`
	Wins       int        `json:"wins"`
	Losses     int        `json:"losses"`
	Pushes     int        `json:"pushes"`
	Blackjacks int        `json:"blackjacks"`
	Doubles    int        `json:"doubles"`
	Net        float64    `json:"net"`
	Mean       float64    `json:"mean"`
	StdDev     float64    `json:"stdDev"`
	CI95       [2]float64 `json:"ci95"`
}

// Report summarises stats from the last Run together with the settings
// that produced them
func (s *Simulator) Report(stats *statistics.Statistics) Report {
	low, high := stats.ConfidenceInterval95()
	return Report{
		Seed:       s.config.Seed,
		Workers:    s.workers,
		Bet:        s.config.Bet,
		Decks:      s.config.Decks,
		Rounds:     stats.Rounds,
		Wins:       stats.Wins,
		Losses:     stats.Losses,
		Pushes:     stats.Pushes,
		Blackjacks: stats.Blackjacks,
		Doubles:    stats.Doubles,
		Net:        stats.SumNet,
		Mean:       stats.Mean(),
		StdDev:     stats.StdDev(),
		CI95:       [2]float64{low, high},
	}
}
