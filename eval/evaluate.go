package eval

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/lox/holdem-solver/cards"
)

// ErrWrongCardCount is returned by Evaluate when given fewer than 5 or more
// than 7 cards.
var ErrWrongCardCount = errors.New("eval: hand must have 5 to 7 cards")

// Evaluate ranks a 5-7 card hand. Flushes (royal, straight flush, plain
// flush) are checked first, since with at most seven cards a flush cannot
// coexist with quads or a full house; then quads, full house, straight,
// trips, two pair, pair, high card.
func Evaluate(cs []cards.Card) (HandRank, error) {
	if len(cs) < 5 || len(cs) > 7 {
		return HandRank{}, fmt.Errorf("%w: got %d", ErrWrongCardCount, len(cs))
	}
	hand := cards.NewHand(cs...)

	if r, ok := bestFlush(hand); ok {
		return r, nil
	}

	counts, rankMask := countRanks(hand)

	if quad := findNOfAKind(counts, 4); quad >= 0 {
		kicker := findKicker(rankMask, []int8{quad})
		return HandRank{FourOfAKind, []int8{quad, kicker}}, nil
	}

	trips := findNOfAKind(counts, 3)
	if trips >= 0 {
		if pair := findNOfAKindAtLeast(counts, 2, trips); pair >= 0 {
			return HandRank{FullHouse, []int8{trips, pair}}, nil
		}
	}

	if high, wheel, ok := straightInfo(rankMask); ok {
		return HandRank{Straight, []int8{straightLow(high, wheel)}}, nil
	}

	if trips >= 0 {
		kickers := findOrderedKickers(rankMask, []int8{trips}, 2)
		return HandRank{ThreeOfAKind, append([]int8{trips}, kickers...)}, nil
	}

	if pair1 := findNOfAKind(counts, 2); pair1 >= 0 {
		if pair2 := findNOfAKindExcept(counts, 2, pair1); pair2 >= 0 {
			if pair2 > pair1 {
				pair1, pair2 = pair2, pair1
			}
			kicker := findKicker(rankMask, []int8{pair1, pair2})
			return HandRank{TwoPair, []int8{pair1, pair2, kicker}}, nil
		}
		kickers := findOrderedKickers(rankMask, []int8{pair1}, 3)
		return HandRank{OnePair, append([]int8{pair1}, kickers...)}, nil
	}

	kickers := findOrderedKickers(rankMask, nil, 5)
	return HandRank{HighCard, kickers}, nil
}

// bestFlush checks every suit for a flush, preferring a straight/royal
// flush over a plain flush, and the highest-ranking flush across suits.
func bestFlush(hand cards.Hand) (HandRank, bool) {
	var best HandRank
	found := false
	for suit := cards.Clubs; suit <= cards.Spades; suit++ {
		mask := hand.GetSuitMask(suit)
		if bits.OnesCount16(mask) < 5 {
			continue
		}
		var r HandRank
		if high, wheel, ok := straightInfo(mask); ok {
			if high == int8(cards.Ace) && !wheel {
				r = HandRank{RoyalFlush, nil}
			} else {
				r = HandRank{StraightFlush, []int8{straightLow(high, wheel)}}
			}
		} else {
			r = HandRank{Flush, topRanks(mask, 5)}
		}
		if !found || Compare(r, best) > 0 {
			best, found = r, true
		}
	}
	return best, found
}

// countRanks tallies per-rank card counts and the set of ranks present.
func countRanks(h cards.Hand) ([13]uint8, uint16) {
	var counts [13]uint8
	var mask uint16
	remaining := uint64(h)
	for remaining != 0 {
		idx := bits.TrailingZeros64(remaining)
		rank := uint8(idx % 13)
		counts[rank]++
		mask |= 1 << rank
		remaining &= remaining - 1
	}
	return counts, mask
}

func findNOfAKind(counts [13]uint8, n uint8) int8 {
	for rank := int8(12); rank >= 0; rank-- {
		if counts[rank] == n {
			return rank
		}
	}
	return -1
}

func findNOfAKindExcept(counts [13]uint8, n uint8, except int8) int8 {
	for rank := int8(12); rank >= 0; rank-- {
		if rank != except && counts[rank] == n {
			return rank
		}
	}
	return -1
}

func findNOfAKindAtLeast(counts [13]uint8, n uint8, except int8) int8 {
	for rank := int8(12); rank >= 0; rank-- {
		if rank != except && counts[rank] >= n {
			return rank
		}
	}
	return -1
}

func ranksMask(ranks []int8) uint16 {
	var mask uint16
	for _, r := range ranks {
		if r >= 0 {
			mask |= 1 << uint(r)
		}
	}
	return mask
}

func findKicker(mask uint16, used []int8) int8 {
	available := mask &^ ranksMask(used)
	if available == 0 {
		return -1
	}
	return int8(bits.Len16(available) - 1)
}

func findOrderedKickers(mask uint16, used []int8, n int) []int8 {
	available := mask &^ ranksMask(used)
	kickers := make([]int8, 0, n)
	for len(kickers) < n {
		if available == 0 {
			kickers = append(kickers, -1)
			continue
		}
		top := int8(bits.Len16(available) - 1)
		kickers = append(kickers, top)
		available &^= 1 << uint(top)
	}
	return kickers
}

func topRanks(mask uint16, n int) []int8 {
	out := make([]int8, 0, n)
	for rank := int8(12); rank >= 0 && len(out) < n; rank-- {
		if mask&(1<<uint(rank)) != 0 {
			out = append(out, rank)
		}
	}
	return out
}

// straightInfo reports the high rank index of the best straight in mask, and
// whether it is the ace-low wheel (A-2-3-4-5).
func straightInfo(mask uint16) (high int8, wheel bool, ok bool) {
	const wheelMask = 0x100F // Ace plus 2-3-4-5
	mask &= 0x1FFF
	seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4)
	if seq != 0 {
		low := bits.Len16(seq) - 1
		return int8(low + 4), false, true
	}
	if mask&wheelMask == wheelMask {
		return int8(cards.Five), true, true
	}
	return 0, false, false
}

// straightLow converts a straight's high rank into the low-card tie-break
// value the rulebook specifies, with the wheel's ace-low card reported as
// -1 so it sorts below every other straight.
func straightLow(high int8, wheel bool) int8 {
	if wheel {
		return -1
	}
	return high - 4
}
