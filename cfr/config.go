// Package cfr implements the vanilla CFR solver (component C5): regret
// tables, the recursive tree-walk over an abstracted history.Game, and
// blueprint export/import.
package cfr

import (
	"errors"
	"fmt"

	"github.com/lox/holdem-solver/abstraction"
)

// AbstractionConfig mirrors the card abstraction a trained blueprint is
// keyed against. A blueprint loaded at runtime must be paired with live
// bucketing that used the same counts, or infoset keys silently stop
// lining up.
type AbstractionConfig struct {
	PreflopClusters int
	FlopBuckets     int
	TurnBuckets     int
	RiverBuckets    int
	EquitySamples   int
}

// Validate checks the abstraction is well-formed.
func (c AbstractionConfig) Validate() error {
	if c.PreflopClusters != abstraction.PreflopClusterCount {
		return fmt.Errorf("cfr: preflop clusters must be %d, got %d", abstraction.PreflopClusterCount, c.PreflopClusters)
	}
	if c.FlopBuckets <= 0 || c.TurnBuckets <= 0 || c.RiverBuckets <= 0 {
		return errors.New("cfr: postflop bucket counts must be > 0")
	}
	if c.EquitySamples <= 0 {
		return errors.New("cfr: equity sample count must be > 0")
	}
	return nil
}

// Bucketer builds the abstraction.Bucketer this config describes.
func (c AbstractionConfig) Bucketer() *abstraction.Bucketer {
	return abstraction.NewFastBucketer(abstraction.Config{
		FlopBuckets:   c.FlopBuckets,
		TurnBuckets:   c.TurnBuckets,
		RiverBuckets:  c.RiverBuckets,
		EquitySamples: c.EquitySamples,
	})
}

// DefaultAbstraction returns the module's default abstraction sizing.
func DefaultAbstraction() AbstractionConfig {
	d := abstraction.DefaultConfig()
	return AbstractionConfig{
		PreflopClusters: abstraction.PreflopClusterCount,
		FlopBuckets:     d.FlopBuckets,
		TurnBuckets:     d.TurnBuckets,
		RiverBuckets:    d.RiverBuckets,
		EquitySamples:   d.EquitySamples,
	}
}

// TrainingConfig aggregates the parameters that control a CFR run.
type TrainingConfig struct {
	Iterations int
	Seed       int64
	// DatasetSize is the number of i.i.d. deals pregenerated for chance
	// sampling; iterations beyond it wrap around (history.Dataset.At).
	DatasetSize int
	// StackDepth is the effective stack in chips (blinds are 1/2, so 200
	// is 100 big blinds); it becomes history.Config.StackDepth.
	StackDepth int
	// ParallelTraversals bounds how many iterations run concurrently.
	// Safe because RegretTable shards its locking per info set.
	ParallelTraversals int
	ProgressEvery      int
	CheckpointEvery    int
	CheckpointPath     string

	// UseCFRPlus clamps regret sums to >= 0 after every update.
	UseCFRPlus bool
	// UseLinearAveraging weights strategy-sum accumulation by iteration
	// number instead of uniformly.
	UseLinearAveraging bool
}

// Validate checks the training parameters are safe to use.
func (c TrainingConfig) Validate() error {
	if c.Iterations <= 0 {
		return errors.New("cfr: iterations must be > 0")
	}
	if c.DatasetSize <= 0 {
		return errors.New("cfr: dataset size must be > 0")
	}
	if c.StackDepth <= 0 {
		return errors.New("cfr: stack depth must be > 0")
	}
	if c.ParallelTraversals <= 0 {
		return errors.New("cfr: parallel traversals must be > 0")
	}
	if c.ProgressEvery < 0 || c.CheckpointEvery < 0 {
		return errors.New("cfr: progress/checkpoint intervals cannot be negative")
	}
	return nil
}

// DefaultTrainingConfig returns a small configuration suitable for smoke
// tests; real runs override Iterations, DatasetSize and Seed.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Iterations:         1000,
		Seed:               1,
		DatasetSize:        2000,
		StackDepth:         200,
		ParallelTraversals: 1,
		ProgressEvery:      0,
		CheckpointEvery:    0,
	}
}
