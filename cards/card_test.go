package cards

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCardAndString(t *testing.T) {
	cases := []struct {
		rank Rank
		suit Suit
		want string
	}{
		{Ace, Spades, "As"},
		{Two, Hearts, "2h"},
		{King, Diamonds, "Kd"},
		{Ten, Clubs, "Tc"},
		{Nine, Spades, "9s"},
	}
	for _, tc := range cases {
		c := NewCard(tc.rank, tc.suit)
		assert.Equal(t, tc.want, c.String())
	}
}

func TestParseCardRoundTrip(t *testing.T) {
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			c := NewCard(rank, suit)
			parsed, err := ParseCard(c.String())
			require.NoError(t, err)
			assert.Equal(t, c, parsed)
		}
	}
}

func TestParseCardTenSynonym(t *testing.T) {
	for _, s := range []string{"Tc", "10c"} {
		c, err := ParseCard(s)
		require.NoError(t, err)
		assert.Equal(t, NewCard(Ten, Clubs), c)
	}
}

func TestParseCardInvalid(t *testing.T) {
	for _, s := range []string{"", "X", "Zc", "Ax", "Ac1", "10"} {
		_, err := ParseCard(s)
		assert.ErrorIs(t, err, ErrInvalidCard, "input %q", s)
	}
}

func TestDeckDealsAll52WithoutCollision(t *testing.T) {
	d := NewDeck(rand.New(rand.NewPCG(1, 2)))
	seen := make(map[Card]bool, 52)
	for i := 0; i < 52; i++ {
		c, err := d.Draw()
		require.NoError(t, err)
		assert.False(t, seen[c], "duplicate card dealt: %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, 52)
	_, err := d.Draw()
	assert.ErrorIs(t, err, ErrDeckEmpty)
}

func TestDeckIsDeterministicForSameSeed(t *testing.T) {
	d1 := NewDeck(rand.New(rand.NewPCG(42, 7)))
	d2 := NewDeck(rand.New(rand.NewPCG(42, 7)))
	cards1, err := d1.Deal(52)
	require.NoError(t, err)
	cards2, err := d2.Deal(52)
	require.NoError(t, err)
	assert.Equal(t, cards1, cards2)
}

func TestDeckResetReshuffles(t *testing.T) {
	d := NewDeck(rand.New(rand.NewPCG(1, 1)))
	_, err := d.Deal(10)
	require.NoError(t, err)
	d.Reset()
	assert.Equal(t, 52, d.CardsRemaining())
}

func TestDeckRemoveKnown(t *testing.T) {
	d := NewDeck(rand.New(rand.NewPCG(3, 9)))
	hero := []Card{NewCard(Ace, Spades), NewCard(King, Spades)}
	d.RemoveKnown(hero)
	rest, err := d.Deal(50)
	require.NoError(t, err)
	for _, c := range rest {
		assert.NotEqual(t, hero[0], c)
		assert.NotEqual(t, hero[1], c)
	}
}

func TestHandBitmask(t *testing.T) {
	h := NewHand(NewCard(Ace, Spades), NewCard(King, Spades), NewCard(Two, Hearts))
	assert.Equal(t, 3, h.CountCards())
	assert.True(t, h.HasCard(NewCard(Ace, Spades)))
	assert.False(t, h.HasCard(NewCard(Ace, Hearts)))
	assert.Equal(t, uint16(1<<12|1<<11), h.GetSuitMask(Spades))
	assert.Equal(t, uint16(1<<0), h.GetSuitMask(Hearts))
}
