package cards

import "math/rand/v2"

// Deck is a permutation of the 52 distinct cards supporting
// draw-without-replacement and reset-and-shuffle.
type Deck struct {
	cards [52]Card
	next  int
	rng   *rand.Rand
}

// NewDeck builds a freshly shuffled deck using rng. rng must be non-nil;
// callers wanting reproducible deals should pass a seeded generator, e.g.
// from internal/randutil.New.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	i := 0
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}
	d.Shuffle()
	return d
}

// Shuffle re-randomizes the deck in place via Fisher-Yates and rewinds the
// draw pointer to the top.
func (d *Deck) Shuffle() {
	d.next = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Reset restores the full 52-card deck and reshuffles it.
func (d *Deck) Reset() {
	d.Shuffle()
}

// Draw deals a single card, or ErrDeckEmpty if none remain.
func (d *Deck) Draw() (Card, error) {
	if d.next >= len(d.cards) {
		return 0, ErrDeckEmpty
	}
	c := d.cards[d.next]
	d.next++
	return c, nil
}

// Deal deals n cards, or ErrDeckEmpty if fewer than n remain.
func (d *Deck) Deal(n int) ([]Card, error) {
	if d.next+n > len(d.cards) {
		return nil, ErrDeckEmpty
	}
	out := make([]Card, n)
	copy(out, d.cards[d.next:d.next+n])
	d.next += n
	return out, nil
}

// RemoveKnown marks the given cards as already dealt, by swapping each into
// the already-drawn prefix, so subsequent Draw/Deal calls never return a
// card the caller already knows about (e.g. hero's hole cards or a
// partially revealed board). Cards not found in the undealt tail are
// ignored; duplicates in known are a caller error and are a no-op past the
// first occurrence.
func (d *Deck) RemoveKnown(known []Card) {
	for _, k := range known {
		for i := d.next; i < len(d.cards); i++ {
			if d.cards[i] == k {
				d.cards[i], d.cards[d.next] = d.cards[d.next], d.cards[i]
				d.next++
				break
			}
		}
	}
}

// CardsRemaining returns the number of undealt cards.
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}
