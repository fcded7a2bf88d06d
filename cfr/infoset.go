package cfr

import "sync"

// RegretUpdateOptions toggles the CFR+ and linear-averaging variants.
// Both default to off, which is vanilla CFR.
type RegretUpdateOptions struct {
	ClampNegativeRegrets bool
	LinearAveraging      bool
	Iteration            int
}

// RegretEntry accumulates regrets and strategy sums for one information
// set. Slices, not maps, so repeated updates during a traversal don't
// churn the allocator.
type RegretEntry struct {
	mu          sync.Mutex
	Actions     []string
	RegretSum   []float64
	StrategySum []float64
	normalising float64
}

// ensureSize grows the entry to accommodate the given action labels,
// recording them the first time the entry is sized (a node's action set
// never changes between visits, so later calls are no-ops).
func (e *RegretEntry) ensureSize(actions []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := len(actions)
	if len(e.RegretSum) >= n {
		return
	}
	e.Actions = append([]string(nil), actions...)
	missing := n - len(e.RegretSum)
	e.RegretSum = append(e.RegretSum, make([]float64, missing)...)
	e.StrategySum = append(e.StrategySum, make([]float64, missing)...)
}

// Strategy returns the current regret-matching distribution: regrets
// normalised to the positive part, or uniform if none are positive yet.
func (e *RegretEntry) Strategy() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	strat := make([]float64, len(e.RegretSum))
	total := 0.0
	for i, r := range e.RegretSum {
		if r > 0 {
			strat[i] = r
			total += r
		}
	}
	if total <= 0 {
		v := 1.0 / float64(len(strat))
		for i := range strat {
			strat[i] = v
		}
		return strat
	}
	for i := range strat {
		strat[i] /= total
	}
	return strat
}

// Update folds one iteration's regrets and strategy weight into the entry.
// regret must already be weighted by the counterfactual (opponent) reach
// probability; reachWeight is the acting player's own reach, used only to
// weight the strategy-sum accumulation (and, under linear averaging,
// scaled further by the iteration number).
func (e *RegretEntry) Update(regret, strategy []float64, reachWeight float64, opts RegretUpdateOptions) {
	e.mu.Lock()
	defer e.mu.Unlock()
	iterWeight := 1.0
	if opts.LinearAveraging {
		iter := opts.Iteration
		if iter <= 0 {
			iter = 1
		}
		iterWeight = float64(iter)
	}
	for i := range regret {
		e.RegretSum[i] += regret[i]
		if opts.ClampNegativeRegrets && e.RegretSum[i] < 0 {
			e.RegretSum[i] = 0
		}
		e.StrategySum[i] += reachWeight * iterWeight * strategy[i]
	}
	e.normalising += reachWeight * iterWeight
}

// AverageStrategy returns the normalised average strategy, the quantity
// CFR's convergence guarantee actually applies to.
func (e *RegretEntry) AverageStrategy() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	strat := make([]float64, len(e.StrategySum))
	if e.normalising <= 0 {
		v := 1.0 / float64(len(strat))
		for i := range strat {
			strat[i] = v
		}
		return strat
	}
	for i := range strat {
		strat[i] = e.StrategySum[i] / e.normalising
	}
	return strat
}

func (e *RegretEntry) snapshot() regretSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return regretSnapshot{
		Actions:     append([]string(nil), e.Actions...),
		RegretSum:   append([]float64(nil), e.RegretSum...),
		StrategySum: append([]float64(nil), e.StrategySum...),
		Normalising: e.normalising,
	}
}

func newRegretEntryFromSnapshot(snap regretSnapshot) *RegretEntry {
	return &RegretEntry{
		Actions:     append([]string(nil), snap.Actions...),
		RegretSum:   append([]float64(nil), snap.RegretSum...),
		StrategySum: append([]float64(nil), snap.StrategySum...),
		normalising: snap.Normalising,
	}
}

// RegretTable is a sharded, concurrency-safe map from infoset key string
// to RegretEntry. Sharding (rather than one global mutex) is what lets
// ParallelTraversals run many simultaneous tree walks against the same
// table without serialising on every node visit.
const regretTableShardCount = 64
const regretTableShardMask = regretTableShardCount - 1

type regretShard struct {
	mu      sync.RWMutex
	entries map[string]*RegretEntry
}

type RegretTable struct {
	shards [regretTableShardCount]regretShard
}

// NewRegretTable returns an empty table ready for use.
func NewRegretTable() *RegretTable {
	t := &RegretTable{}
	for i := range t.shards {
		t.shards[i].entries = make(map[string]*RegretEntry)
	}
	return t
}

// Get returns the entry for key, creating it (sized to len(actions),
// recording their labels) if this is the first visit.
func (t *RegretTable) Get(key string, actions []string) *RegretEntry {
	shard := &t.shards[hashKey(key)&regretTableShardMask]

	shard.mu.RLock()
	entry, ok := shard.entries[key]
	shard.mu.RUnlock()
	if ok {
		entry.ensureSize(actions)
		return entry
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()
	if entry, ok = shard.entries[key]; ok {
		entry.ensureSize(actions)
		return entry
	}
	entry = &RegretEntry{}
	entry.ensureSize(actions)
	shard.entries[key] = entry
	return entry
}

// Entries returns a snapshot of every tracked information set.
func (t *RegretTable) Entries() map[string]*RegretEntry {
	out := make(map[string]*RegretEntry)
	for i := range t.shards {
		shard := &t.shards[i]
		shard.mu.RLock()
		for k, v := range shard.entries {
			out[k] = v
		}
		shard.mu.RUnlock()
	}
	return out
}

// Size returns the number of information sets tracked.
func (t *RegretTable) Size() int {
	total := 0
	for i := range t.shards {
		shard := &t.shards[i]
		shard.mu.RLock()
		total += len(shard.entries)
		shard.mu.RUnlock()
	}
	return total
}

// restore replaces the table's contents with the given snapshots, used
// when resuming from a checkpoint.
func (t *RegretTable) restore(snaps map[string]regretSnapshot) {
	for i := range t.shards {
		t.shards[i].entries = make(map[string]*RegretEntry)
	}
	for key, snap := range snaps {
		shard := &t.shards[hashKey(key)&regretTableShardMask]
		shard.entries[key] = newRegretEntryFromSnapshot(snap)
	}
}

func hashKey(key string) uint32 {
	const offset32 = 2166136261
	const prime32 = 16777619
	hash := uint32(offset32)
	for i := 0; i < len(key); i++ {
		hash ^= uint32(key[i])
		hash *= prime32
	}
	return hash
}
