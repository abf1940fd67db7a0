package main

import (
	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/server"
)

// ServeCmd serves one table per WebSocket connection
type ServeCmd struct {
	Addr string `help:"Server address (overrides config)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}

	logger := shared.SetupLogger(g.level(cfg))
	seed := randutil.Seed(g.Seed)

	logger.Info("Starting blackjack server",
		"address", cfg.Server.Address,
		"decks", cfg.Table.Decks,
		"starting_bankroll", cfg.Table.StartingBankroll,
		"abort_policy", cfg.Table.AbortPolicy,
		"countdown", cfg.Countdown(),
		"seed", seed)

	s := server.NewServer(cfg, logger, server.WithSeed(seed))
	return s.Serve(shared.SetupSignalHandler(logger))
}
