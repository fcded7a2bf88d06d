package equity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-solver/cards"
	"github.com/lox/holdem-solver/internal/randutil"
)

func parseHero(t *testing.T, a, b string) [2]cards.Card {
	t.Helper()
	ca, err := cards.ParseCard(a)
	require.NoError(t, err)
	cb, err := cards.ParseCard(b)
	require.NoError(t, err)
	return [2]cards.Card{ca, cb}
}

func parseBoard(t *testing.T, ss ...string) []cards.Card {
	t.Helper()
	out := make([]cards.Card, len(ss))
	for i, s := range ss {
		c, err := cards.ParseCard(s)
		require.NoError(t, err)
		out[i] = c
	}
	return out
}

func TestEstimatePocketAcesPreflop(t *testing.T) {
	hero := parseHero(t, "Ah", "Ad")
	rng := randutil.New(1)
	eq, err := Estimate(hero, nil, 50_000, rng)
	require.NoError(t, err)
	assert.InDelta(t, 0.85, eq, 0.02)
}

func TestEstimateWeakHandOnStrongBoard(t *testing.T) {
	hero := parseHero(t, "7h", "2d")
	board := parseBoard(t, "Ah", "Kd", "Qs")
	rng := randutil.New(2)
	eq, err := Estimate(hero, board, 20_000, rng)
	require.NoError(t, err)
	assert.Less(t, eq, 0.15)
}

func TestEstimateIsDeterministicForSameSeed(t *testing.T) {
	hero := parseHero(t, "Ks", "Kd")
	eq1, err := Estimate(hero, nil, 2000, randutil.New(7))
	require.NoError(t, err)
	eq2, err := Estimate(hero, nil, 2000, randutil.New(7))
	require.NoError(t, err)
	assert.Equal(t, eq1, eq2)
}

func TestEstimateRejectsBadBoardLength(t *testing.T) {
	hero := parseHero(t, "As", "Ks")
	_, err := Estimate(hero, parseBoard(t, "2h", "3h"), 100, randutil.New(1))
	assert.ErrorIs(t, err, ErrInvalidBoard)
}

func TestEstimateSequentialAndParallelAgreeInShape(t *testing.T) {
	hero := parseHero(t, "Qh", "Qd")
	small, err := Estimate(hero, nil, 100, randutil.New(3))
	require.NoError(t, err)
	large, err := Estimate(hero, nil, 5000, randutil.New(3))
	require.NoError(t, err)
	assert.InDelta(t, small, large, 0.1)
}
