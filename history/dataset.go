package history

import (
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-solver/cards"
	"github.com/lox/holdem-solver/eval"
	"github.com/lox/holdem-solver/internal/randutil"
)

// Deal is one precomputed i.i.d. hand: both holdings, a full board, and the
// showdown winner. Winner is +1 if hero wins, -1 if the opponent wins, 0 on
// a split pot.
type Deal struct {
	Hero   [2]cards.Card
	Opp    [2]cards.Card
	Board  [5]cards.Card
	Winner int
}

// Dataset is the explicit, injected replacement for the module-level deal
// tables a naive port would carry: training samples chance outcomes by
// indexing into it rather than shuffling a deck inline on every visit.
type Dataset struct {
	deals []Deal
}

// Size returns the number of precomputed deals.
func (d *Dataset) Size() int { return len(d.deals) }

// At returns the deal for iteration t, wrapping around the dataset size.
// Wrap-around is expected, not an error: a solver runs far more iterations
// than any practically sized dataset holds.
func (d *Dataset) At(t int) Deal {
	return d.deals[((t%len(d.deals))+len(d.deals))%len(d.deals)]
}

// GenerateDataset builds a Dataset of n i.i.d. deals. Generation -
// shuffling a deck and evaluating the showdown winner - is embarrassingly
// parallel, so rows are produced by a worker pool and written into
// preallocated slots to keep output order (and therefore reproducibility
// for a given seed) independent of scheduling.
func GenerateDataset(n int, seed int64) (*Dataset, error) {
	if n <= 0 {
		return nil, fmt.Errorf("history: dataset size must be positive, got %d", n)
	}

	deals := make([]Deal, n)
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	g := new(errgroup.Group)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			rng := randutil.New(randutil.Derive(seed, w))
			for i := w; i < n; i += workers {
				deal, err := generateDeal(rng)
				if err != nil {
					return err
				}
				deals[i] = deal
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Dataset{deals: deals}, nil
}

func generateDeal(rng *rand.Rand) (Deal, error) {
	d := cards.NewDeck(rng)
	cs, err := d.Deal(9)
	if err != nil {
		return Deal{}, err
	}

	deal := Deal{
		Hero:  [2]cards.Card{cs[0], cs[1]},
		Opp:   [2]cards.Card{cs[2], cs[3]},
		Board: [5]cards.Card{cs[4], cs[5], cs[6], cs[7], cs[8]},
	}

	heroRank, err := eval.Evaluate(append(deal.Hero[:], deal.Board[:]...))
	if err != nil {
		return Deal{}, err
	}
	oppRank, err := eval.Evaluate(append(deal.Opp[:], deal.Board[:]...))
	if err != nil {
		return Deal{}, err
	}
	deal.Winner = eval.Compare(heroRank, oppRank)
	return deal, nil
}
