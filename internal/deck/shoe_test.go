package deck

import (
	"testing"

	"github.com/lox/blackjack/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShoeComposition(t *testing.T) {
	t.Parallel()

	for _, decks := range []int{1, 2, 6, 8} {
		s, err := NewShoe(decks, randutil.New(int64(decks)))
		require.NoError(t, err)
		require.Equal(t, decks*52, s.Remaining())
		assert.Zero(t, s.Discarded())

		counts := make(map[Card]int)
		for _, c := range s.Cards() {
			counts[c]++
		}
		assert.Len(t, counts, 52)
		for c, n := range counts {
			assert.Equal(t, decks, n, "card %s", c)
		}
	}
}

func TestNewShoeRejectsZeroDecks(t *testing.T) {
	t.Parallel()

	_, err := NewShoe(0, nil)
	assert.ErrorIs(t, err, ErrInvalidDecks)
}

func TestShuffleIsSeeded(t *testing.T) {
	t.Parallel()

	a, err := NewShoe(2, randutil.New(99))
	require.NoError(t, err)
	b, err := NewShoe(2, randutil.New(99))
	require.NoError(t, err)
	c, err := NewShoe(2, randutil.New(100))
	require.NoError(t, err)

	assert.Equal(t, a.Cards(), b.Cards())
	assert.NotEqual(t, a.Cards(), c.Cards())
}

func TestShuffleIsUnbiased(t *testing.T) {
	t.Parallel()

	// Position of the ace of spades in a single deck should be roughly uniform.
	const trials = 20000
	rng := randutil.New(5)
	s, err := NewShoe(1, rng)
	require.NoError(t, err)

	var buckets [4]int
	target := NewCard(Spades, Ace)
	for i := 0; i < trials; i++ {
		s.Build()
		for pos, c := range s.Cards() {
			if c == target {
				buckets[pos/13]++
				break
			}
		}
	}
	for i, n := range buckets {
		assert.InDelta(t, trials/4, n, trials*0.03, "quarter %d", i)
	}
}

func TestDrawConservesCards(t *testing.T) {
	t.Parallel()

	s, err := NewShoe(2, randutil.New(1))
	require.NoError(t, err)

	var inPlay []Card
	for i := 0; i < 30; i++ {
		inPlay = append(inPlay, s.Draw())
		assert.Equal(t, s.Size(), s.Remaining()+s.Discarded()+len(inPlay))
	}

	s.MoveToDiscard(inPlay...)
	assert.Equal(t, s.Size(), s.Remaining()+s.Discarded())
	assert.Equal(t, 30, s.Discarded())
}

func TestDrawTakesLastCard(t *testing.T) {
	t.Parallel()

	s, err := NewStackedShoe(1, randutil.New(1), MustParseCards("2c 3d Ks"))
	require.NoError(t, err)

	assert.Equal(t, NewCard(Spades, King), s.Draw())
	assert.Equal(t, NewCard(Diamonds, Three), s.Draw())
	assert.Equal(t, 1, s.Remaining())
}

func TestDrawRebuildsEmptyShoe(t *testing.T) {
	t.Parallel()

	s, err := NewStackedShoe(1, randutil.New(1), MustParseCards("As"))
	require.NoError(t, err)
	s.MoveToDiscard(MustParseCards("2c 3c")...)

	assert.Equal(t, NewCard(Spades, Ace), s.Draw())
	require.Zero(t, s.Remaining())

	s.Draw()
	assert.Equal(t, 51, s.Remaining())
	assert.Zero(t, s.Discarded(), "rebuild clears the discard pile")
}

func TestReshuffleThreshold(t *testing.T) {
	t.Parallel()

	// 6 decks: 312 cards, threshold 62.4 -> rebuild at 62 remaining, not at 63.
	s, err := NewShoe(6, randutil.New(3))
	require.NoError(t, err)

	var drawn []Card
	for s.Remaining() > 63 {
		drawn = append(drawn, s.Draw())
	}
	assert.False(t, s.NeedsReshuffle())
	assert.False(t, s.MaybeReshuffle())
	assert.Equal(t, 63, s.Remaining())

	drawn = append(drawn, s.Draw())
	s.MoveToDiscard(drawn...)
	assert.True(t, s.NeedsReshuffle())
	assert.True(t, s.MaybeReshuffle())
	assert.Equal(t, 312, s.Remaining())
	assert.Zero(t, s.Discarded())
}

func TestReshuffleThresholdSingleDeck(t *testing.T) {
	t.Parallel()

	// 1 deck: threshold 10.4 -> 11 remaining keeps the shoe, 10 rebuilds.
	s, err := NewShoe(1, randutil.New(3))
	require.NoError(t, err)
	for s.Remaining() > 11 {
		s.Draw()
	}
	assert.False(t, s.NeedsReshuffle())
	s.Draw()
	assert.True(t, s.NeedsReshuffle())
}

func TestConfigure(t *testing.T) {
	t.Parallel()

	s, err := NewShoe(6, randutil.New(3))
	require.NoError(t, err)
	s.Draw()
	s.MoveToDiscard(s.Draw())

	require.NoError(t, s.Configure(2))
	assert.Equal(t, 2, s.Decks())
	assert.Equal(t, 104, s.Remaining())
	assert.Zero(t, s.Discarded())
	assert.InDelta(t, 0, s.Penetration(), 1e-9)

	assert.ErrorIs(t, s.Configure(0), ErrInvalidDecks)
	assert.Equal(t, 2, s.Decks())
}
