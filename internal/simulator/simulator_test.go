package simulator

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	sim := New(Config{Rounds: 10})
	assert.Equal(t, 1, sim.config.Workers)
	assert.Equal(t, 10, sim.config.Bet)
	assert.NotNil(t, sim.config.Logger)
}

func TestRunRejectsZeroRounds(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}).Run(context.Background())
	assert.Error(t, err)
}

func TestRunCountsEveryRound(t *testing.T) {
	t.Parallel()

	stats, err := New(Config{Rounds: 1001, Workers: 4, Bet: 10, Seed: 7}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1001, stats.Rounds)
	assert.Equal(t, stats.Rounds, stats.Wins+stats.Losses+stats.Pushes)
	assert.Positive(t, stats.Blackjacks)
	assert.Positive(t, stats.Doubles)
	assert.True(t, stats.IsLedgerBalanced())

	// Every round nets one of the few amounts the table can pay
	allowed := map[float64]bool{-2: true, -1: true, 0: true, 1: true, 1.5: true, 2: true}
	for _, v := range stats.Values {
		require.True(t, allowed[v], "unexpected net %v", v)
	}

	// The heuristic loses slowly, not catastrophically
	assert.Greater(t, stats.Mean(), -0.25)
	assert.Less(t, stats.Mean(), 0.1)
}

func TestRunIsReproducible(t *testing.T) {
	t.Parallel()

	cfg := Config{Rounds: 300, Workers: 3, Bet: 5, Seed: 42, Decks: 2}
	a, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	b, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Values, b.Values)
	assert.Equal(t, a.SumNet, b.SumNet)

	cfg.Seed = 43
	c, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.Values, c.Values)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{Rounds: 100, Workers: 2}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	stats, err := New(Config{Rounds: 50, Seed: 1}).Run(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintSummary(&buf, stats)
	out := buf.String()
	assert.Contains(t, out, "Rounds played: 50")
	assert.Contains(t, out, "95% CI:")
}

func TestReport(t *testing.T) {
	t.Parallel()

	sim := New(Config{Rounds: 40, Workers: 2, Bet: 25, Seed: 9})
	stats, err := sim.Run(context.Background())
	require.NoError(t, err)

	report := sim.Report(stats)
	assert.Equal(t, int64(9), report.Seed)
	assert.Equal(t, 25, report.Bet)
	assert.Equal(t, 2, report.Workers)
	assert.Equal(t, 40, report.Rounds)
	assert.Equal(t, stats.SumNet, report.Net)
	assert.LessOrEqual(t, report.CI95[0], report.Mean)
	assert.GreaterOrEqual(t, report.CI95[1], report.Mean)
}

func TestReportNamesWorkersThatRan(t *testing.T) {
	t.Parallel()

	sim := New(Config{Rounds: 3, Workers: 8, Seed: 5})
	stats, err := sim.Run(context.Background())
	require.NoError(t, err)

	report := sim.Report(stats)
	assert.Equal(t, 3, report.Workers, "one worker per round when rounds are scarce")
	assert.Equal(t, 3, report.Rounds)
}
