package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdem-solver/cfr"
)

// presetFile is the --config shape: a declarative abstraction/training
// preset in HCL, rather than repeating every tunable as a CLI flag.
type presetFile struct {
	Abstraction abstractionBlock `hcl:"abstraction,block"`
	Training    trainingBlock    `hcl:"training,block"`
}

type abstractionBlock struct {
	PreflopClusters int `hcl:"preflop_clusters,optional"`
	FlopBuckets     int `hcl:"flop_buckets,optional"`
	TurnBuckets     int `hcl:"turn_buckets,optional"`
	RiverBuckets    int `hcl:"river_buckets,optional"`
	EquitySamples   int `hcl:"equity_samples,optional"`
}

type trainingBlock struct {
	Iterations         int    `hcl:"iterations,optional"`
	Seed               int64  `hcl:"seed,optional"`
	DatasetSize        int    `hcl:"dataset_size,optional"`
	StackDepth         int    `hcl:"stack_depth,optional"`
	ParallelTraversals int    `hcl:"parallel_traversals,optional"`
	ProgressEvery      int    `hcl:"progress_every,optional"`
	CheckpointEvery    int    `hcl:"checkpoint_every,optional"`
	CheckpointPath     string `hcl:"checkpoint_path,optional"`
	CFRPlus            bool   `hcl:"cfr_plus,optional"`
	LinearAveraging    bool   `hcl:"linear_averaging,optional"`
}

// loadPreset reads path and merges it over the given defaults; a zero
// field in the HCL file leaves the default untouched.
func loadPreset(path string, abs cfr.AbstractionConfig, train cfr.TrainingConfig) (cfr.AbstractionConfig, cfr.TrainingConfig, error) {
	if path == "" {
		return abs, train, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return abs, train, fmt.Errorf("config file %q not found", path)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return abs, train, fmt.Errorf("parse hcl: %s", diags.Error())
	}

	var cfg presetFile
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return abs, train, fmt.Errorf("decode hcl: %s", diags.Error())
	}

	if cfg.Abstraction.PreflopClusters > 0 {
		abs.PreflopClusters = cfg.Abstraction.PreflopClusters
	}
	if cfg.Abstraction.FlopBuckets > 0 {
		abs.FlopBuckets = cfg.Abstraction.FlopBuckets
	}
	if cfg.Abstraction.TurnBuckets > 0 {
		abs.TurnBuckets = cfg.Abstraction.TurnBuckets
	}
	if cfg.Abstraction.RiverBuckets > 0 {
		abs.RiverBuckets = cfg.Abstraction.RiverBuckets
	}
	if cfg.Abstraction.EquitySamples > 0 {
		abs.EquitySamples = cfg.Abstraction.EquitySamples
	}

	if cfg.Training.Iterations > 0 {
		train.Iterations = cfg.Training.Iterations
	}
	if cfg.Training.Seed != 0 {
		train.Seed = cfg.Training.Seed
	}
	if cfg.Training.DatasetSize > 0 {
		train.DatasetSize = cfg.Training.DatasetSize
	}
	if cfg.Training.StackDepth > 0 {
		train.StackDepth = cfg.Training.StackDepth
	}
	if cfg.Training.ParallelTraversals > 0 {
		train.ParallelTraversals = cfg.Training.ParallelTraversals
	}
	if cfg.Training.ProgressEvery > 0 {
		train.ProgressEvery = cfg.Training.ProgressEvery
	}
	if cfg.Training.CheckpointEvery > 0 {
		train.CheckpointEvery = cfg.Training.CheckpointEvery
	}
	if cfg.Training.CheckpointPath != "" {
		train.CheckpointPath = cfg.Training.CheckpointPath
	}
	train.UseCFRPlus = train.UseCFRPlus || cfg.Training.CFRPlus
	train.UseLinearAveraging = train.UseLinearAveraging || cfg.Training.LinearAveraging

	return abs, train, nil
}
