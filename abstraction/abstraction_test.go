package abstraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-solver/cards"
	"github.com/lox/holdem-solver/internal/randutil"
)

func card(t *testing.T, s string) cards.Card {
	t.Helper()
	c, err := cards.ParseCard(s)
	require.NoError(t, err)
	return c
}

func TestPreflopClusterSuitedness(t *testing.T) {
	akSuited1 := PreflopCluster(card(t, "Ah"), card(t, "Kh"))
	akSuited2 := PreflopCluster(card(t, "As"), card(t, "Ks"))
	akOffsuit := PreflopCluster(card(t, "Ah"), card(t, "Kd"))

	assert.Equal(t, akSuited1, akSuited2)
	assert.NotEqual(t, akSuited1, akOffsuit)
	assert.GreaterOrEqual(t, akOffsuit, 14)
	assert.LessOrEqual(t, akOffsuit, 91)
	assert.GreaterOrEqual(t, akSuited1, 92)
	assert.LessOrEqual(t, akSuited1, 169)
}

func TestPreflopClusterOrderIndependent(t *testing.T) {
	a := PreflopCluster(card(t, "Ah"), card(t, "Kh"))
	b := PreflopCluster(card(t, "Kh"), card(t, "Ah"))
	assert.Equal(t, a, b)
}

func TestPreflopClusterPairsAreLowest13(t *testing.T) {
	for _, r := range []string{"2h2d", "7c7s", "AhAd"} {
		c1 := card(t, r[:2])
		c2 := card(t, r[2:])
		cluster := PreflopCluster(c1, c2)
		assert.GreaterOrEqual(t, cluster, 1)
		assert.LessOrEqual(t, cluster, 13)
	}
}

func TestPreflopClusterIsTotalAndBijective(t *testing.T) {
	seen := make(map[int]bool)
	for suit1 := cards.Clubs; suit1 <= cards.Spades; suit1++ {
		for rank1 := cards.Two; rank1 <= cards.Ace; rank1++ {
			for suit2 := cards.Clubs; suit2 <= cards.Spades; suit2++ {
				for rank2 := cards.Two; rank2 <= cards.Ace; rank2++ {
					c1 := cards.NewCard(rank1, suit1)
					c2 := cards.NewCard(rank2, suit2)
					if c1 == c2 {
						continue
					}
					cluster := PreflopCluster(c1, c2)
					assert.GreaterOrEqual(t, cluster, 1)
					assert.LessOrEqual(t, cluster, PreflopClusterCount)
					seen[cluster] = true
				}
			}
		}
	}
	assert.Len(t, seen, PreflopClusterCount)
}

func TestFastBucketRange(t *testing.T) {
	b := NewFastBucketer(DefaultConfig())
	hero := [2]cards.Card{card(t, "Ah"), card(t, "Ad")}
	board := []cards.Card{card(t, "2c"), card(t, "7d"), card(t, "9h")}
	cluster, err := b.Bucket(Flop, hero, board, randutil.New(1))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cluster, 0)
	assert.Less(t, cluster, DefaultConfig().FlopBuckets)
}

func TestFastBucketMonotoneInEquity(t *testing.T) {
	assert.Equal(t, 0, fastBucket(0.0, 50))
	assert.Equal(t, 49, fastBucket(1.0, 50))
	assert.Equal(t, 49, fastBucket(0.999, 50))
}
