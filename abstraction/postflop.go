package abstraction

import (
	"math"
	"math/rand/v2"

	"github.com/lox/holdem-solver/cards"
	"github.com/lox/holdem-solver/equity"
)

// Street identifies a postflop betting round for bucketing purposes.
type Street int

const (
	Flop Street = iota
	Turn
	River
)

func (s Street) String() string {
	switch s {
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	default:
		return "unknown"
	}
}

// Config controls postflop bucket counts and sampling effort. The default
// uses 50 flop buckets, 50 turn buckets, and 10 river buckets.
type Config struct {
	FlopBuckets  int
	TurnBuckets  int
	RiverBuckets int

	// EquitySamples is the Monte-Carlo trial count used by the fast bucket
	// strategy's equity estimate.
	EquitySamples int
}

// DefaultConfig returns the standard bucket counts used for training.
func DefaultConfig() Config {
	return Config{
		FlopBuckets:   50,
		TurnBuckets:   50,
		RiverBuckets:  10,
		EquitySamples: 1000,
	}
}

func (c Config) bucketCount(street Street) int {
	switch street {
	case Flop:
		return c.FlopBuckets
	case Turn:
		return c.TurnBuckets
	default:
		return c.RiverBuckets
	}
}

// Strategy records which postflop bucketing approach produced a model's
// buckets. Training and inference must agree on it, since it changes what
// the integer cluster ids mean.
type Strategy int

const (
	// StrategyFastBucket clusters directly off a single equity estimate:
	// cluster = min(K-1, floor(equity*K)).
	StrategyFastBucket Strategy = iota
	// StrategyHistogramKMeans clusters off a 10-bin equity-distribution
	// histogram using a pretrained nearest-centroid classifier.
	StrategyHistogramKMeans
)

// Bucketer assigns postflop cluster ids. The zero value uses the fast
// bucket strategy with DefaultConfig; setting Strategy to
// StrategyHistogramKMeans (with a classifier in KMeans for the street)
// switches strategies, and KMeans alone is ignored.
type Bucketer struct {
	Config   Config
	Strategy Strategy
	KMeans   map[Street]KMeansClassifier
}

// NewFastBucketer builds a Bucketer using the fast single-sample equity
// strategy, the default when no pretrained classifier is supplied.
func NewFastBucketer(cfg Config) *Bucketer {
	return &Bucketer{Config: cfg, Strategy: StrategyFastBucket}
}

// NewHistogramBucketer builds a Bucketer that classifies a 10-bin equity
// histogram via the supplied per-street k-means classifiers.
func NewHistogramBucketer(cfg Config, kmeans map[Street]KMeansClassifier) *Bucketer {
	return &Bucketer{Config: cfg, Strategy: StrategyHistogramKMeans, KMeans: kmeans}
}

// Bucket assigns hero's hand (2 hole cards + 3-5 board cards) on the given
// street to a cluster in [0, K-1].
func (b *Bucketer) Bucket(street Street, hero [2]cards.Card, board []cards.Card, rng *rand.Rand) (int, error) {
	k := b.Config.bucketCount(street)
	if k <= 0 {
		k = DefaultConfig().bucketCount(street)
	}

	if b.Strategy == StrategyHistogramKMeans {
		if classifier, ok := b.KMeans[street]; ok {
			hist, err := equityHistogram(hero, board, b.samples(), rng)
			if err != nil {
				return 0, err
			}
			return classifier.Classify(hist), nil
		}
		// No classifier loaded for this street: fall back to fast bucket.
	}

	eq, err := equity.Estimate(hero, board, b.samples(), rng)
	if err != nil {
		return 0, err
	}
	return fastBucket(eq, k), nil
}

func (b *Bucketer) samples() int {
	if b.Config.EquitySamples > 0 {
		return b.Config.EquitySamples
	}
	return DefaultConfig().EquitySamples
}

func fastBucket(eq float64, k int) int {
	bucket := int(math.Floor(eq * float64(k)))
	if bucket >= k {
		bucket = k - 1
	}
	if bucket < 0 {
		bucket = 0
	}
	return bucket
}

// equityHistogram resamples the remaining streets (or showdown) many times
// and bins hero's realized equity into 10 bins summing to 1, the input the
// histogram k-means classifier expects.
func equityHistogram(hero [2]cards.Card, board []cards.Card, samples int, rng *rand.Rand) ([10]float64, error) {
	var hist [10]float64
	if samples <= 0 {
		return hist, nil
	}
	for i := 0; i < samples; i++ {
		eq, err := equity.Estimate(hero, board, 1, rng)
		if err != nil {
			return hist, err
		}
		bin := int(eq * 10)
		if bin > 9 {
			bin = 9
		}
		hist[bin]++
	}
	for i := range hist {
		hist[i] /= float64(samples)
	}
	return hist, nil
}
