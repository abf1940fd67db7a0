package main

import (
	"fmt"
	"os"

	"github.com/coder/quartz"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/tui"
)

// PlayCmd runs the terminal table
type PlayCmd struct {
	LogFile string `type:"path" default:"blackjack.log" help:"Where to write logs while the table is on screen"`
	NoColor bool   `help:"Disable colour output"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()
	logger := shared.SetupFileLogger(logFile, g.level(cfg))

	tui.SetColor(!c.NoColor)

	seed := randutil.Seed(g.Seed)
	logger.Info("Starting table", "seed", seed, "decks", cfg.Table.Decks, "bankroll", cfg.Table.StartingBankroll)

	session, err := game.NewSession(randutil.New(seed), logger, cfg.Game())
	if err != nil {
		return err
	}

	model := tui.NewTUIModel(session, quartz.NewReal(), cfg.Countdown(), cfg.Table.Chips, logger)
	return tui.Run(shared.SetupSignalHandler(logger), model)
}
