// Package abstraction implements the card abstraction (component C4): a
// lossless 169-class preflop bucketing and an equity-clustered postflop
// bucketing, each a total function from a dealt hand to a small integer
// cluster identifier.
package abstraction

import (
	"github.com/lox/holdem-solver/cards"
)

// PreflopClusterCount is the number of distinct preflop buckets: 13 pairs
// plus 78 unsuited and 78 suited unordered rank combinations.
const PreflopClusterCount = 169

// PreflopCluster maps two hole cards to their canonical 1..169 bucket.
// Suit identity and card order never affect the result: only
// (low rank, high rank, suited?) does. The pair-index enumeration below is
// fixed arbitrarily but permanently — trained strategy keys embed it, so it
// must never change once a blueprint has been trained against it.
func PreflopCluster(c1, c2 cards.Card) int {
	a, b := c1.Rank(), c2.Rank()
	if a > b {
		a, b = b, a
	}
	if a == b {
		return int(a) + 1
	}
	idx := pairIndex(a, b)
	if c1.Suit() == c2.Suit() {
		return 91 + idx
	}
	return 13 + idx
}

// pairIndex enumerates the 78 unordered pairs of distinct ranks a<b in
// canonical order: first by the lower rank ascending, then by the higher
// rank ascending. Returns a value in 1..78.
func pairIndex(a, b cards.Rank) int {
	lo, hi := int(a), int(b)
	offset := lo*12 - lo*(lo-1)/2
	return offset + (hi - lo - 1) + 1
}
