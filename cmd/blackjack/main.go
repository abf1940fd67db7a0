package main

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	Config  string `short:"c" type:"path" default:"blackjack.hcl" help:"HCL config file (missing file uses defaults)"`
	EnvFile string `type:"path" default:".env" help:"Dotenv file loaded before BLACKJACK_* overrides"`
	Debug   bool   `help:"Enable debug logging"`
	Seed    *int64 `help:"Deterministic RNG seed (optional)"`
	Decks   int    `help:"Override the number of decks in the shoe"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play at the terminal"`
	Serve    ServeCmd         `cmd:"" help:"Serve tables over WebSocket"`
	Simulate SimulateCmd      `cmd:"" help:"Play the hint strategy over many rounds"`
}

// load reads the env file and config, then applies flag overrides
func (g *Globals) load() (*config.Config, error) {
	if err := config.LoadEnvFile(g.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if g.Decks != 0 {
		cfg.Table.Decks = g.Decks
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (g *Globals) level(cfg *config.Config) log.Level {
	if g.Debug {
		return log.DebugLevel
	}
	return cfg.Level()
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Single-player blackjack against the dealer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
