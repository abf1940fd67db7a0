package main

import (
	"os"
	"runtime"
	"time"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/fileutil"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/simulator"
)

// SimulateCmd plays the hint strategy unattended and prints statistics
type SimulateCmd struct {
	Rounds  int    `default:"100000" help:"Number of rounds to play"`
	Workers int    `default:"0" help:"Parallel sessions (0 = one per CPU)"`
	Bet     int    `default:"10" help:"Flat bet per round"`
	Output  string `type:"path" help:"Also write a JSON report to this file"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger := shared.SetupLogger(g.level(cfg))

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	seed := randutil.Seed(g.Seed)
	logger.Info("Starting simulation", "rounds", c.Rounds, "workers", workers, "decks", cfg.Table.Decks, "seed", seed)

	start := time.Now()
	sim := simulator.New(simulator.Config{
		Rounds:  c.Rounds,
		Workers: workers,
		Bet:     c.Bet,
		Decks:   cfg.Table.Decks,
		Seed:    seed,
		Logger:  logger,
	})
	stats, err := sim.Run(shared.SetupSignalHandler(logger))
	if err != nil {
		return err
	}

	logger.Info("Simulation complete", "duration", time.Since(start))
	simulator.PrintSummary(os.Stdout, stats)

	if c.Output != "" {
		if err := fileutil.WriteJSON(c.Output, sim.Report(stats)); err != nil {
			return err
		}
		logger.Info("Report written", "path", c.Output)
	}
	return nil
}
