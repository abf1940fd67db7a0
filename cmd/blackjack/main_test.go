package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blackjack.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestGlobalsLoad(t *testing.T) {
	path := writeConfig(t, `
table {
  decks = 4
  abort_policy = "forfeit"
}
server {
  log_level = "warn"
}
`)

	g := &Globals{Config: path, EnvFile: filepath.Join(t.TempDir(), "missing.env")}
	cfg, err := g.load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Table.Decks)
	assert.Equal(t, "forfeit", cfg.Table.AbortPolicy)
	assert.Equal(t, log.WarnLevel, g.level(cfg))

	g.Debug = true
	assert.Equal(t, log.DebugLevel, g.level(cfg))
}

func TestGlobalsDeckOverride(t *testing.T) {
	path := writeConfig(t, "table {\n  decks = 4\n}\n")

	cfg, err := (&Globals{Config: path, Decks: 2}).load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Table.Decks)

	_, err = (&Globals{Config: path, Decks: 9}).load()
	assert.Error(t, err)
}

func TestGlobalsEnvFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("BLACKJACK_TABLE_STARTING_BANKROLL=250\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("BLACKJACK_TABLE_STARTING_BANKROLL") })

	cfg, err := (&Globals{EnvFile: envPath}).load()
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Table.StartingBankroll)
}
