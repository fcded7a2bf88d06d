package cfr

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-solver/history"
	"github.com/lox/holdem-solver/internal/randutil"
)

// TraversalStats instruments a batch of iterations, purely for progress
// reporting; it never feeds back into the trained strategy.
type TraversalStats struct {
	NodesVisited  int64
	TerminalNodes int64
	MaxDepth      int
	IterationTime time.Duration
}

func (a *TraversalStats) merge(b TraversalStats) {
	a.NodesVisited += b.NodesVisited
	a.TerminalNodes += b.TerminalNodes
	if b.MaxDepth > a.MaxDepth {
		a.MaxDepth = b.MaxDepth
	}
}

// Progress is emitted periodically during Run.
type Progress struct {
	Iteration       int
	RegretTableSize int
	Stats           TraversalStats
}

// Solver runs vanilla CFR over an abstract history.Game.
type Solver struct {
	game    history.Game
	dataset *history.Dataset
	regrets *RegretTable
	cfg     TrainingConfig
	absCfg  AbstractionConfig
	log     zerolog.Logger

	iteration int
	statsMu   sync.Mutex
	stats     TraversalStats
}

// NewSolver builds a solver over the given abstract game and dataset. The
// dataset's deals are what "chance sample id t" indexes into.
func NewSolver(game history.Game, dataset *history.Dataset, absCfg AbstractionConfig, cfg TrainingConfig, log zerolog.Logger) (*Solver, error) {
	if err := absCfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Solver{
		game:    game,
		dataset: dataset,
		regrets: NewRegretTable(),
		cfg:     cfg,
		absCfg:  absCfg,
		log:     log,
	}, nil
}

// Iteration returns the number of completed iterations.
func (s *Solver) Iteration() int { return s.iteration }

// RegretTableSize returns the number of tracked information sets.
func (s *Solver) RegretTableSize() int { return s.regrets.Size() }

// Stats returns the most recently completed batch's traversal stats.
func (s *Solver) Stats() TraversalStats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

func (s *Solver) setStats(stats TraversalStats) {
	s.statsMu.Lock()
	s.stats = stats
	s.statsMu.Unlock()
}

// Run executes iterations until cfg.Iterations is reached (resuming from
// s.iteration, so a checkpoint-restored solver picks up where it left
// off), reporting progress every cfg.ProgressEvery iterations and
// checkpointing every cfg.CheckpointEvery iterations.
func (s *Solver) Run(ctx context.Context, progress func(Progress)) error {
	batch := s.cfg.ProgressEvery
	if batch <= 0 {
		batch = s.cfg.Iterations/100 + 1
	}

	for s.iteration < s.cfg.Iterations {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := time.Now()
		batchEnd := s.iteration + s.cfg.ParallelTraversals
		if batchEnd > s.cfg.Iterations {
			batchEnd = s.cfg.Iterations
		}
		stats, err := s.runBatch(s.iteration, batchEnd)
		if err != nil {
			return fmt.Errorf("cfr: run batch [%d,%d): %w", s.iteration, batchEnd, err)
		}
		stats.IterationTime = time.Since(start)
		s.setStats(stats)
		s.iteration = batchEnd

		if s.cfg.CheckpointPath != "" && s.cfg.CheckpointEvery > 0 && s.iteration%s.cfg.CheckpointEvery == 0 {
			if err := s.SaveCheckpoint(s.cfg.CheckpointPath); err != nil {
				return fmt.Errorf("cfr: checkpoint: %w", err)
			}
		}

		if progress != nil && s.iteration%batch == 0 {
			progress(Progress{Iteration: s.iteration, RegretTableSize: s.regrets.Size(), Stats: stats})
			s.log.Debug().
				Int("iteration", s.iteration).
				Int("infosets", s.regrets.Size()).
				Int64("nodes", stats.NodesVisited).
				Msg("cfr progress")
		}
	}

	if s.cfg.CheckpointPath != "" && s.cfg.CheckpointEvery > 0 {
		if err := s.SaveCheckpoint(s.cfg.CheckpointPath); err != nil {
			return fmt.Errorf("cfr: final checkpoint: %w", err)
		}
	}
	return nil
}

// runBatch runs iterations [lo,hi) concurrently. Concurrency is safe
// because RegretTable shards its locking per information set; each
// iteration gets its own RNG derived from the run seed and its index, so
// resuming a checkpoint at iteration n reproduces iteration n's draws
// exactly without needing to replay a draw counter.
func (s *Solver) runBatch(lo, hi int) (TraversalStats, error) {
	g, _ := errgroup.WithContext(context.Background())
	results := make([]TraversalStats, hi-lo)

	for t := lo; t < hi; t++ {
		t := t
		g.Go(func() error {
			rng := randutil.New(randutil.Derive(s.cfg.Seed, t))
			stats, err := s.runIteration(t, rng)
			results[t-lo] = stats
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return TraversalStats{}, err
	}

	var total TraversalStats
	for _, r := range results {
		total.merge(r)
	}
	return total, nil
}

// runIteration plays chance sample id t to a fresh deal and runs one
// vanilla-CFR pass per player.
func (s *Solver) runIteration(t int, rng *rand.Rand) (TraversalStats, error) {
	var stats TraversalStats
	for player := 0; player < 2; player++ {
		root := s.game.NewRoot()
		h, err := s.game.SampleChanceOutcome(root, s.dataset, t, rng)
		if err != nil {
			return stats, err
		}
		if _, err := s.traverse(h, t, player, [2]float64{1, 1}, 0, rng, &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// traverse is the recursive vanilla CFR tree walk. reach[0]/reach[1] are
// the two players' reach probabilities to h under the current strategy
// profile; chance's own reach is folded in by sampling a single outcome
// rather than summing over all of them. It returns the traveling
// player's counterfactual utility at h.
func (s *Solver) traverse(h history.History, t, traveler int, reach [2]float64, depth int, rng *rand.Rand, stats *TraversalStats) (float64, error) {
	stats.NodesVisited++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	if h.IsTerminal() {
		stats.TerminalNodes++
		return s.game.TerminalUtility(h, s.dataset, t, traveler)
	}

	if h.IsChance() {
		nh, err := s.game.SampleChanceOutcome(h, s.dataset, t, rng)
		if err != nil {
			return 0, err
		}
		return s.traverse(nh, t, traveler, reach, depth+1, rng, stats)
	}

	key, err := s.game.InfosetKey(h)
	if err != nil {
		return 0, err
	}
	actions := h.LegalActions()
	labels := make([]string, len(actions))
	for i, a := range actions {
		labels[i] = string(a)
	}
	entry := s.regrets.Get(key.String(), labels)
	strategy := entry.Strategy()

	player := h.Player()
	actionUtil := make([]float64, len(actions))
	var nodeUtil float64
	for i, a := range actions {
		nh, err := s.game.Apply(h, a)
		if err != nil {
			return 0, err
		}
		nextReach := reach
		nextReach[player] *= strategy[i]
		u, err := s.traverse(nh, t, traveler, nextReach, depth+1, rng, stats)
		if err != nil {
			return 0, err
		}
		actionUtil[i] = u
		nodeUtil += strategy[i] * u
	}

	if player == traveler {
		other := 1 - player
		cfReach := reach[other] // counterfactual reach: the opponent's, chance already sampled
		regret := make([]float64, len(actions))
		for i := range actions {
			regret[i] = cfReach * (actionUtil[i] - nodeUtil)
		}
		entry.Update(regret, strategy, reach[player], RegretUpdateOptions{
			ClampNegativeRegrets: s.cfg.UseCFRPlus,
			LinearAveraging:      s.cfg.UseLinearAveraging,
			Iteration:            t,
		})
	}
	return nodeUtil, nil
}
