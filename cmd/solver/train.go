package main

import (
	"context"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lox/holdem-solver/cfr"
	"github.com/lox/holdem-solver/history"
)

type TrainCmd struct {
	Out                string `help:"path to write the blueprint" required:""`
	Iterations         int    `help:"number of CFR iterations" default:"10000"`
	DatasetSize        int    `help:"number of pregenerated deals" default:"20000"`
	StackDepth         int    `help:"effective stack depth, in chips (big blind = 2)" default:"200"`
	Seed               int64  `help:"random seed" default:"1"`
	ParallelTraversals int    `help:"iterations run concurrently per batch" default:"4"`
	ProgressEvery      int    `help:"log progress every N iterations (0 => iterations/100 + 1)" default:"0"`
	CheckpointPath     string `help:"path to write periodic checkpoints"`
	CheckpointEvery    int    `help:"checkpoint interval in iterations (0 disables)" default:"0"`
	ResumeFrom         string `help:"resume training from a checkpoint file"`
	CFRPlus            bool   `help:"enable CFR+ (clamp negative regrets every update)"`
	LinearAveraging    bool   `help:"weight strategy-sum accumulation by iteration number"`
	Config             string `help:"HCL file with abstraction/training preset blocks"`
	CPUProfile         string `help:"write a CPU profile to this path"`
}

func (cmd *TrainCmd) Run(ctx context.Context) error {
	if cmd.CPUProfile != "" {
		f, err := os.Create(cmd.CPUProfile)
		if err != nil {
			return fmt.Errorf("create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", cmd.CPUProfile).Msg("CPU profiling enabled")
	}

	var s *cfr.Solver
	var err error

	if cmd.ResumeFrom != "" {
		abs := cfr.DefaultAbstraction()
		game := history.NewAbstractGame(history.Config{StackDepth: cmd.StackDepth, Postflop: abs.Bucketer()})
		ds, dsErr := history.GenerateDataset(cmd.DatasetSize, cmd.Seed)
		if dsErr != nil {
			return fmt.Errorf("generate dataset: %w", dsErr)
		}
		s, err = cfr.LoadSolverFromCheckpoint(cmd.ResumeFrom, game, ds, log.Logger)
		if err != nil {
			return fmt.Errorf("load checkpoint: %w", err)
		}
		log.Info().Int("resume_iteration", s.Iteration()).Str("checkpoint", cmd.ResumeFrom).Msg("resuming training run")
	} else {
		abs := cfr.DefaultAbstraction()
		train := cfr.DefaultTrainingConfig()

		train.Iterations = cmd.Iterations
		train.DatasetSize = cmd.DatasetSize
		train.StackDepth = cmd.StackDepth
		train.Seed = cmd.Seed
		train.ParallelTraversals = cmd.ParallelTraversals
		train.ProgressEvery = cmd.ProgressEvery
		train.CheckpointPath = cmd.CheckpointPath
		train.CheckpointEvery = cmd.CheckpointEvery
		train.UseCFRPlus = cmd.CFRPlus
		train.UseLinearAveraging = cmd.LinearAveraging

		abs, train, err = loadPreset(cmd.Config, abs, train)
		if err != nil {
			return fmt.Errorf("load config preset: %w", err)
		}

		game := history.NewAbstractGame(history.Config{StackDepth: train.StackDepth, Postflop: abs.Bucketer()})
		ds, dsErr := history.GenerateDataset(train.DatasetSize, train.Seed)
		if dsErr != nil {
			return fmt.Errorf("generate dataset: %w", dsErr)
		}

		s, err = cfr.NewSolver(game, ds, abs, train, log.Logger)
		if err != nil {
			return err
		}
		log.Info().
			Int("iterations", train.Iterations).
			Int("dataset_size", train.DatasetSize).
			Int("stack_depth", train.StackDepth).
			Int("parallel_traversals", train.ParallelTraversals).
			Bool("cfr_plus", train.UseCFRPlus).
			Bool("linear_averaging", train.UseLinearAveraging).
			Msg("starting training run")
	}

	start := time.Now()
	progress := func(p cfr.Progress) {
		log.Info().
			Int("iteration", p.Iteration).
			Int("infosets", p.RegretTableSize).
			Int64("nodes", p.Stats.NodesVisited).
			Int64("terminals", p.Stats.TerminalNodes).
			Int("max_depth", p.Stats.MaxDepth).
			Dur("iter_time", p.Stats.IterationTime).
			Msg("progress")
	}

	if err := s.Run(ctx, progress); err != nil {
		return err
	}

	bp := s.Blueprint()
	log.Info().Dur("duration", time.Since(start)).Int("infosets", len(bp.Entries)).Msg("training completed")

	if err := bp.Save(cmd.Out); err != nil {
		return fmt.Errorf("save blueprint: %w", err)
	}
	log.Info().Str("path", cmd.Out).Msg("blueprint saved")
	return nil
}
