package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-solver/internal/randutil"
)

func mustDataset(t *testing.T, n int, seed int64) *Dataset {
	t.Helper()
	ds, err := GenerateDataset(n, seed)
	require.NoError(t, err)
	return ds
}

func TestPreflopFirstActionIsFullOpenSet(t *testing.T) {
	g := NewAbstractGame(DefaultConfig())
	ds := mustDataset(t, 16, 1)
	h := g.NewRoot()
	require.True(t, h.IsChance())

	rng := randutil.New(1)
	h, err := g.SampleChanceOutcome(h, ds, 0, rng)
	require.NoError(t, err)
	require.False(t, h.IsChance())

	actions := h.LegalActions()
	assert.ElementsMatch(t, []Token{Call, BetMin, BetMid, BetMax, Fold}, actions)
	assert.Equal(t, 0, h.Player())
}

func TestFoldEndsHandWithHalfPotSplit(t *testing.T) {
	g := NewAbstractGame(DefaultConfig())
	ds := mustDataset(t, 16, 2)
	rng := randutil.New(2)

	h := g.NewRoot()
	h, err := g.SampleChanceOutcome(h, ds, 0, rng)
	require.NoError(t, err)

	h, err = g.Apply(h, Fold)
	require.NoError(t, err)
	assert.True(t, h.IsTerminal())

	u0, err := g.TerminalUtility(h, ds, 0, 0)
	require.NoError(t, err)
	u1, err := g.TerminalUtility(h, ds, 0, 1)
	require.NoError(t, err)

	assert.InDelta(t, 0, u0+u1, 1e-9, "zero-sum")
	assert.Less(t, u0, 0.0, "button folded, button loses")
	assert.Greater(t, u1, 0.0)
}

func TestLimpThenBigBlindOptionClosesPreflop(t *testing.T) {
	g := NewAbstractGame(DefaultConfig())
	ds := mustDataset(t, 16, 3)
	rng := randutil.New(3)

	h := g.NewRoot()
	h, err := g.SampleChanceOutcome(h, ds, 0, rng)
	require.NoError(t, err)

	h, err = g.Apply(h, Call)
	require.NoError(t, err)
	require.False(t, h.IsChance(), "limping in does not close the street, the big blind still has an option")
	assert.Equal(t, 1, h.Player())
	assert.ElementsMatch(t, []Token{Check, BetMin, BetMid, BetMax}, h.LegalActions())

	h, err = g.Apply(h, Check)
	require.NoError(t, err)
	require.True(t, h.IsChance(), "the big blind checking behind closes preflop")

	h, err = g.SampleChanceOutcome(h, ds, 0, rng)
	require.NoError(t, err)
	assert.Equal(t, Flop, h.Street)
	assert.Equal(t, 1, h.Player(), "out of position acts first postflop")

	h, err = g.Apply(h, Check)
	require.NoError(t, err)
	assert.False(t, h.IsTerminal())
	assert.False(t, h.IsChance())
	assert.ElementsMatch(t, []Token{Check, BetMin, BetMax}, h.LegalActions())

	h, err = g.Apply(h, Check)
	require.NoError(t, err)
	assert.True(t, h.IsChance())
	assert.Equal(t, Flop, h.Street)
}

func TestBetThenCallClosesStreet(t *testing.T) {
	g := NewAbstractGame(DefaultConfig())
	ds := mustDataset(t, 16, 7)
	rng := randutil.New(7)

	h := g.NewRoot()
	h, err := g.SampleChanceOutcome(h, ds, 0, rng)
	require.NoError(t, err)

	h, err = g.Apply(h, BetMin)
	require.NoError(t, err)
	require.False(t, h.IsChance(), "a bet never closes the street by itself")
	assert.Equal(t, 1, h.Player())
	assert.ElementsMatch(t, []Token{BetMid, BetMax, Call, Fold}, h.LegalActions())

	h, err = g.Apply(h, Call)
	require.NoError(t, err)
	assert.True(t, h.IsChance(), "calling a bet closes the street")
}

func TestEveryLegalActionProducesAValidHistory(t *testing.T) {
	g := NewAbstractGame(DefaultConfig())
	ds := mustDataset(t, 16, 4)
	rng := randutil.New(4)

	h := g.NewRoot()
	h, err := g.SampleChanceOutcome(h, ds, 0, rng)
	require.NoError(t, err)

	for _, a := range h.LegalActions() {
		_, err := g.Apply(h, a)
		assert.NoError(t, err, "action %s should be legal", a)
	}

	_, err = g.Apply(h, Token("nonsense"))
	assert.ErrorIs(t, err, ErrIllegalAction)
}

func TestInfosetKeyStableAcrossIdenticalPaths(t *testing.T) {
	g := NewAbstractGame(DefaultConfig())
	ds := mustDataset(t, 16, 5)

	build := func() (History, error) {
		rng := randutil.New(5)
		h := g.NewRoot()
		h, err := g.SampleChanceOutcome(h, ds, 0, rng)
		if err != nil {
			return h, err
		}
		return g.Apply(h, Call)
	}

	h1, err := build()
	require.NoError(t, err)
	h2, err := build()
	require.NoError(t, err)

	k1, err := g.InfosetKey(h1)
	require.NoError(t, err)
	k2, err := g.InfosetKey(h2)
	require.NoError(t, err)
	assert.Equal(t, k1.String(), k2.String())
}

func TestShowdownUtilityIsZeroSum(t *testing.T) {
	g := NewAbstractGame(DefaultConfig())
	ds := mustDataset(t, 32, 6)
	rng := randutil.New(6)

	h := g.NewRoot()
	h, err := g.SampleChanceOutcome(h, ds, 0, rng)
	require.NoError(t, err)

	// Preflop: the button limps in, the big blind checks behind.
	h, err = g.Apply(h, Call)
	require.NoError(t, err)
	h, err = g.Apply(h, Check)
	require.NoError(t, err)

	// Flop, turn, river: both seats check every street through showdown.
	for !h.IsTerminal() {
		if h.IsChance() {
			h, err = g.SampleChanceOutcome(h, ds, 0, rng)
			require.NoError(t, err)
			continue
		}
		h, err = g.Apply(h, Check)
		require.NoError(t, err)
	}

	u0, err := g.TerminalUtility(h, ds, 0, 0)
	require.NoError(t, err)
	u1, err := g.TerminalUtility(h, ds, 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0, u0+u1, 1e-9)
}
