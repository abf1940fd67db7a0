// Package config loads table rules and server settings from an HCL file,
// then applies BLACKJACK_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/ledger"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "BLACKJACK_"

// MaxDecks is the largest shoe a table may deal from
const MaxDecks = 8

// Config represents the complete configuration
type Config struct {
	Table  TableSettings  `envPrefix:"TABLE_"`
	Server ServerSettings `envPrefix:"SERVER_"`
}

// TableSettings are the rules of the blackjack table
type TableSettings struct {
	Decks            int    `env:"DECKS"`
	StartingBankroll int    `env:"STARTING_BANKROLL"`
	Chips            []int  `env:"CHIPS"`
	AbortPolicy      string `env:"ABORT_POLICY"`
	CountdownSeconds int    `env:"COUNTDOWN_SECONDS"`
}

// ServerSettings control the websocket front end and logging
type ServerSettings struct {
	Address  string `env:"ADDRESS"`
	LogLevel string `env:"LOG_LEVEL"`
}

// fileConfig mirrors Config for HCL decoding. Pointers tell an attribute
// set to its zero value apart from one left out of the file.
type fileConfig struct {
	Table  *fileTable  `hcl:"table,block"`
	Server *fileServer `hcl:"server,block"`
}

type fileTable struct {
	Decks            *int    `hcl:"decks,optional"`
	StartingBankroll *int    `hcl:"starting_bankroll,optional"`
	Chips            []int   `hcl:"chips,optional"`
	AbortPolicy      *string `hcl:"abort_policy,optional"`
	CountdownSeconds *int    `hcl:"countdown_seconds,optional"`
}

type fileServer struct {
	Address  *string `hcl:"address,optional"`
	LogLevel *string `hcl:"log_level,optional"`
}

// Default returns the configuration of the original table: six decks,
// $1000 and a twenty second countdown between rounds
func Default() *Config {
	return &Config{
		Table: TableSettings{
			Decks:            6,
			StartingBankroll: 1000,
			Chips:            append([]int(nil), ledger.DefaultDenominations...),
			AbortPolicy:      game.AbortRefund.String(),
			CountdownSeconds: 20,
		},
		Server: ServerSettings{
			Address:  ":8080",
			LogLevel: "info",
		},
	}
}

// LoadEnvFile loads KEY=value pairs from a dotenv file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load reads filename (missing files yield defaults), applies environment
// overrides and validates the result
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			if err := cfg.mergeFile(filename); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(filename string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Values left out of the file keep their defaults
	if t := fc.Table; t != nil {
		setIf(&c.Table.Decks, t.Decks)
		setIf(&c.Table.StartingBankroll, t.StartingBankroll)
		if t.Chips != nil {
			c.Table.Chips = t.Chips
		}
		setIf(&c.Table.AbortPolicy, t.AbortPolicy)
		setIf(&c.Table.CountdownSeconds, t.CountdownSeconds)
	}
	if s := fc.Server; s != nil {
		setIf(&c.Server.Address, s.Address)
		setIf(&c.Server.LogLevel, s.LogLevel)
	}
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Table.Decks < 1 || c.Table.Decks > MaxDecks {
		return fmt.Errorf("decks must be between 1 and %d, got %d", MaxDecks, c.Table.Decks)
	}
	if c.Table.StartingBankroll < 0 {
		return fmt.Errorf("starting bankroll must not be negative, got %d", c.Table.StartingBankroll)
	}
	if len(c.Table.Chips) == 0 {
		return errors.New("at least one chip denomination must be configured")
	}
	for _, chip := range c.Table.Chips {
		if chip <= 0 {
			return fmt.Errorf("chip denominations must be positive, got %d", chip)
		}
	}
	if _, err := game.ParseAbortPolicy(c.Table.AbortPolicy); err != nil {
		return err
	}
	if c.Table.CountdownSeconds <= 0 {
		return fmt.Errorf("countdown must be positive, got %d seconds", c.Table.CountdownSeconds)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Server.LogLevel, err)
	}
	return nil
}

// Game returns the session rules
func (c *Config) Game() game.Config {
	policy, _ := game.ParseAbortPolicy(c.Table.AbortPolicy)
	return game.Config{
		Decks:            c.Table.Decks,
		StartingBankroll: c.Table.StartingBankroll,
		AbortPolicy:      policy,
	}
}

// Countdown returns the idle time allowed between rounds
func (c *Config) Countdown() time.Duration {
	return time.Duration(c.Table.CountdownSeconds) * time.Second
}

// Level returns the configured log level, defaulting to info
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.Server.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
