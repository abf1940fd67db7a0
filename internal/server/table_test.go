package server

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

func TestTablePlaceChip(t *testing.T) {
	t.Parallel()

	table, _ := newTestTable(t, quartz.NewMock(t))

	state, err := table.Apply(MessageTypePlaceChip, 100)
	require.NoError(t, err)
	assert.True(t, state.Accepted)
	assert.Equal(t, 100, state.Snapshot.PendingBet)
	assert.Equal(t, 900, state.Snapshot.Bankroll)

	_, err = table.Apply(MessageTypePlaceChip, 7)
	assert.ErrorIs(t, err, ErrInvalidChip)

	state, err = table.Apply(MessageTypeClearBet, 0)
	require.NoError(t, err)
	assert.Zero(t, state.Snapshot.PendingBet)
	assert.Equal(t, 1000, state.Snapshot.Bankroll)
}

func TestTableRoundHidesHoleCard(t *testing.T) {
	t.Parallel()

	table, _ := newTestTable(t, quartz.NewMock(t), stackedShoe(t, "Ts 9c 6d 8h"))
	_, err := table.Apply(MessageTypePlaceChip, 100)
	require.NoError(t, err)

	state, err := table.Apply(MessageTypeDeal, 0)
	require.NoError(t, err)
	assert.True(t, state.Accepted)
	assert.Equal(t, game.PlayerTurn, state.Snapshot.State)
	assert.Len(t, state.Snapshot.DealerHand, 1)
	assert.Equal(t, 9, state.Snapshot.DealerTotal)
	assert.Equal(t, 16, state.Snapshot.PlayerTotal)
	assert.Equal(t, "Hit", state.Hint)
	assert.Positive(t, state.BustProbability)
	assert.False(t, state.CountdownRunning, "dealing stops the countdown")

	state, err = table.Apply(MessageTypeSplit, 0)
	require.NoError(t, err)
	assert.False(t, state.Accepted)
	assert.Equal(t, game.MsgSplitDisabled, state.Snapshot.LastMessage)

	state, err = table.Apply(MessageTypeStand, 0)
	require.NoError(t, err)
	assert.Equal(t, game.Idle, state.Snapshot.State)
	assert.Len(t, state.Snapshot.LastRound.DealerHand, 2)
	assert.Equal(t, 900, state.Snapshot.Bankroll)
	assert.Equal(t, 17, state.Snapshot.LastRound.DealerTotal)
	assert.True(t, state.CountdownRunning, "a settled round restarts the countdown")
	assert.Equal(t, "-", state.Hint)
}

func TestTableConfigureDecks(t *testing.T) {
	t.Parallel()

	table, _ := newTestTable(t, quartz.NewMock(t), stackedShoe(t, "Ts 9c 6d 7h"))

	state, err := table.Apply(MessageTypeConfigureDecks, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Snapshot.Decks)
	assert.Equal(t, 2*deck.CardsPerDeck, state.Snapshot.ShoeRemaining)

	_, err = table.Apply(MessageTypeConfigureDecks, 9)
	assert.ErrorIs(t, err, ErrTooManyDecks)
	_, err = table.Apply(MessageTypeConfigureDecks, 0)
	assert.ErrorIs(t, err, deck.ErrInvalidDecks)
}

func TestTableConfigureDecksDuringRound(t *testing.T) {
	t.Parallel()

	table, _ := newTestTable(t, quartz.NewMock(t), stackedShoe(t, "Ts 9c 6d 7h"))
	_, err := table.Apply(MessageTypePlaceChip, 100)
	require.NoError(t, err)
	_, err = table.Apply(MessageTypeDeal, 0)
	require.NoError(t, err)

	_, err = table.Apply(MessageTypeConfigureDecks, 2)
	assert.ErrorIs(t, err, game.ErrRoundInProgress)
}

func TestTableUnknownCommand(t *testing.T) {
	t.Parallel()

	table, _ := newTestTable(t, quartz.NewMock(t))
	_, err := table.Apply(MessageType("shuffle"), 0)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestTableTimeoutRefundsPendingBet(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	table, expired := newTestTable(t, clock)
	state, err := table.Apply(MessageTypePlaceChip, 50)
	require.NoError(t, err)
	assert.True(t, state.CountdownRunning)
	assert.InDelta(t, 20, state.CountdownSeconds, 0.001)

	advance(t, clock, 20*time.Second)

	select {
	case state = <-expired:
	case <-time.After(5 * time.Second):
		t.Fatal("countdown did not expire")
	}
	assert.Equal(t, game.MsgTimeout, state.Snapshot.LastMessage)
	assert.Zero(t, state.Snapshot.PendingBet)
	assert.Equal(t, 1000, state.Snapshot.Bankroll)
	assert.False(t, state.CountdownRunning)
}

func TestTableDealBeatsPendingExpiry(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	table, expired := newTestTable(t, clock, stackedShoe(t, "Ts 9c 6d 8h"))
	_, err := table.Apply(MessageTypePlaceChip, 100)
	require.NoError(t, err)

	// The expiry fires while a deal holds the table, so it has to wait
	table.mu.Lock()
	waiter := clock.Advance(20 * time.Second)
	require.Eventually(t, func() bool { return !table.countdown.Running() }, 5*time.Second, time.Millisecond)
	require.True(t, table.session.StartRound())
	table.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	waiter.MustWait(ctx)

	state := table.State()
	assert.Equal(t, game.PlayerTurn, state.Snapshot.State)
	assert.Equal(t, 100, state.Snapshot.ActiveBet)
	assert.Equal(t, 900, state.Snapshot.Bankroll)
	assert.Empty(t, expired)
}
