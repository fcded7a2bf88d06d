// Package equity implements the Monte-Carlo equity estimator (component
// C3): hero's probability of winning or tying at showdown against a
// uniformly random opponent holding, estimated by repeated sampling.
package equity

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-solver/cards"
	"github.com/lox/holdem-solver/eval"
	"github.com/lox/holdem-solver/internal/randutil"
)

// ErrInvalidBoard is returned when board does not have 0, 3, 4, or 5 cards.
var ErrInvalidBoard = errors.New("equity: board must have 0, 3, 4 or 5 cards")

// parallelThreshold is the trial count at or above which Estimate fans work
// out across goroutines; below it the per-goroutine setup cost dominates.
const parallelThreshold = 500

// maxWorkers caps parallel fan-out regardless of GOMAXPROCS, matching the
// teacher's equity estimator.
const maxWorkers = 8

// Estimate runs n Monte-Carlo trials: deal the opponent two cards and fill
// the board to five community cards from the remaining deck, evaluate both
// seven-card hands, and count a hero win-or-tie. Ties count as full wins
// (the deliberate convention documented for this estimator; it is used
// consistently at both training and inference time). rng must be non-nil;
// the same seed always produces the same estimate.
func Estimate(hero [2]cards.Card, board []cards.Card, n int, rng *rand.Rand) (float64, error) {
	switch len(board) {
	case 0, 3, 4, 5:
	default:
		return 0, fmt.Errorf("%w: got %d", ErrInvalidBoard, len(board))
	}
	if n <= 0 {
		return 0, nil
	}

	unknown := remainingCards(hero, board)

	if n < parallelThreshold {
		wins := runTrials(unknown, hero, board, n, rng)
		return float64(wins) / float64(n), nil
	}
	return estimateParallel(unknown, hero, board, n, rng)
}

func estimateParallel(unknown []cards.Card, hero [2]cards.Card, board []cards.Card, n int, rng *rand.Rand) (float64, error) {
	workers := runtime.NumCPU()
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	base := n / workers
	remainder := n % workers
	seed := rng.Int64()

	results := make([]int, workers)
	g := new(errgroup.Group)
	for w := 0; w < workers; w++ {
		w := w
		trials := base
		if w < remainder {
			trials++
		}
		g.Go(func() error {
			workerRNG := randutil.New(randutil.Derive(seed, w))
			pool := make([]cards.Card, len(unknown))
			copy(pool, unknown)
			results[w] = runTrials(pool, hero, board, trials, workerRNG)
			return nil
		})
	}
	_ = g.Wait() // workers never return an error

	wins := 0
	for _, w := range results {
		wins += w
	}
	return float64(wins) / float64(n), nil
}

// runTrials samples n independent opponent holdings and board completions
// from pool, evaluates both hands, and returns the number of hero
// win-or-tie outcomes. pool is mutated in place as a scratch buffer.
func runTrials(pool []cards.Card, hero [2]cards.Card, board []cards.Card, n int, rng *rand.Rand) int {
	need := 2 + (5 - len(board))
	wins := 0
	heroCards := make([]cards.Card, 0, 7)
	oppCards := make([]cards.Card, 0, 7)

	for i := 0; i < n; i++ {
		partialShuffle(pool, need, rng)
		opp := [2]cards.Card{pool[0], pool[1]}
		fill := pool[2:need]

		heroCards = heroCards[:0]
		heroCards = append(heroCards, hero[0], hero[1])
		heroCards = append(heroCards, board...)
		heroCards = append(heroCards, fill...)

		oppCards = oppCards[:0]
		oppCards = append(oppCards, opp[0], opp[1])
		oppCards = append(oppCards, board...)
		oppCards = append(oppCards, fill...)

		heroRank, err := eval.Evaluate(heroCards)
		if err != nil {
			panic(fmt.Sprintf("equity: %v", err))
		}
		oppRank, err := eval.Evaluate(oppCards)
		if err != nil {
			panic(fmt.Sprintf("equity: %v", err))
		}

		if eval.Compare(heroRank, oppRank) >= 0 {
			wins++
		}
	}
	return wins
}

// partialShuffle performs the first k steps of a Fisher-Yates shuffle over
// pool, leaving pool[:k] a uniformly random sample without replacement.
// Earlier trials' leftover ordering does not bias later calls.
func partialShuffle(pool []cards.Card, k int, rng *rand.Rand) {
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
}

// remainingCards returns the 52-card deck minus hero's hole cards and the
// known board.
func remainingCards(hero [2]cards.Card, board []cards.Card) []cards.Card {
	known := cards.NewHand(append([]cards.Card{hero[0], hero[1]}, board...)...)
	out := make([]cards.Card, 0, 52-known.CountCards())
	for c := cards.Card(0); c < 52; c++ {
		if !known.HasCard(c) {
			out = append(out, c)
		}
	}
	return out
}
