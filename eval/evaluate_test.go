package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-solver/cards"
)

func mustParse(t *testing.T, s ...string) []cards.Card {
	t.Helper()
	out := make([]cards.Card, len(s))
	for i, x := range s {
		c, err := cards.ParseCard(x)
		require.NoError(t, err)
		out[i] = c
	}
	return out
}

func TestRoyalFlushDetection(t *testing.T) {
	board := mustParse(t, "Ah", "Kh", "Qh", "Jh", "Th")
	hand1 := append(mustParse(t, "2c", "3d"), board...)
	hand2 := append(mustParse(t, "9s", "8s"), board...)

	r1, err := Evaluate(hand1)
	require.NoError(t, err)
	r2, err := Evaluate(hand2)
	require.NoError(t, err)

	assert.Equal(t, RoyalFlush, r1.Category)
	assert.Equal(t, RoyalFlush, r2.Category)
	assert.Equal(t, 0, Compare(r1, r2))

	winners := Winners([]HandRank{r1, r2})
	assert.ElementsMatch(t, []int{0, 1}, winners)
}

func TestStraightBeatsTwoPair(t *testing.T) {
	board := mustParse(t, "Ah", "Kd", "Qc", "Js", "2h")
	hand1, err := Evaluate(append(mustParse(t, "Th", "9h"), board...))
	require.NoError(t, err)
	hand2, err := Evaluate(append(mustParse(t, "Ac", "Kh"), board...))
	require.NoError(t, err)

	assert.Equal(t, Straight, hand1.Category)
	assert.Equal(t, TwoPair, hand2.Category)
	assert.Equal(t, 1, Compare(hand1, hand2))
}

func TestAceLowStraightLosesToSevenHigh(t *testing.T) {
	board := mustParse(t, "2h", "3d", "4c", "5s", "9h")
	wheel, err := Evaluate(append(mustParse(t, "Ah", "Kd"), board...))
	require.NoError(t, err)
	sevenHigh, err := Evaluate(append(mustParse(t, "6c", "7d"), board...))
	require.NoError(t, err)

	assert.Equal(t, Straight, wheel.Category)
	assert.Equal(t, Straight, sevenHigh.Category)
	assert.Equal(t, -1, Compare(wheel, sevenHigh))
	assert.Equal(t, 1, Compare(sevenHigh, wheel))
}

func TestCategoryAndTieBreakShape(t *testing.T) {
	hands := [][]string{
		{"Ah", "Kh", "Qh", "Jh", "Th", "2c", "3d"}, // royal flush
		{"2h", "2d", "2c", "3h", "3d", "9s", "4c"}, // full house
		{"2h", "7d", "9c", "Jh", "Kd", "3s", "5c"}, // high card
	}
	tieBreakLens := []int{0, 2, 5} // royal flush, full house, high card
	for i, h := range hands {
		r, err := Evaluate(mustParse(t, h...))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, int(r.Category), 1)
		assert.LessOrEqual(t, int(r.Category), 10)
		assert.Len(t, r.TieBreak, tieBreakLens[i])
	}
}

func TestEvaluateRejectsWrongCardCount(t *testing.T) {
	_, err := Evaluate(mustParse(t, "Ah", "Kh", "Qh", "Jh"))
	assert.ErrorIs(t, err, ErrWrongCardCount)
}

func TestCompareIsAntisymmetric(t *testing.T) {
	board := mustParse(t, "2h", "7d", "9c", "Jh", "Kd")
	a, err := Evaluate(append(mustParse(t, "As", "Ad"), board...))
	require.NoError(t, err)
	b, err := Evaluate(append(mustParse(t, "3s", "4d"), board...))
	require.NoError(t, err)
	assert.Equal(t, Compare(a, b), -Compare(b, a))
}
