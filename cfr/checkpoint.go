package cfr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/lox/holdem-solver/history"
	"github.com/lox/holdem-solver/internal/fileutil"
)

const checkpointFileVersion = 1

type regretSnapshot struct {
	Actions     []string  `json:"actions"`
	RegretSum   []float64 `json:"regret_sum"`
	StrategySum []float64 `json:"strategy_sum"`
	Normalising float64   `json:"normalising"`
}

type checkpointSnapshot struct {
	Version     int                       `json:"version"`
	Iteration   int                       `json:"iteration"`
	Training    TrainingConfig            `json:"training"`
	Abstraction AbstractionConfig         `json:"abstraction"`
	Regrets     map[string]regretSnapshot `json:"regrets"`
}

// SaveCheckpoint writes the solver's current state to path atomically
// (write to a temp file in the same directory, then rename), so a crash
// mid-write never leaves a corrupt checkpoint behind.
func (s *Solver) SaveCheckpoint(path string) error {
	entries := s.regrets.Entries()
	snap := checkpointSnapshot{
		Version:     checkpointFileVersion,
		Iteration:   s.iteration,
		Training:    s.cfg,
		Abstraction: s.absCfg,
		Regrets:     make(map[string]regretSnapshot, len(entries)),
	}
	for key, entry := range entries {
		snap.Regrets[key] = entry.snapshot()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cfr: create checkpoint dir: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("cfr: encode checkpoint: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("cfr: persist checkpoint: %w", err)
	}
	return nil
}

// LoadSolverFromCheckpoint restores a solver at the exact iteration a
// checkpoint was saved at. Because every iteration's RNG is derived from
// (seed, iteration index) rather than drawn from one long-lived stream
// (see Solver.runBatch), resuming needs only the next iteration number -
// there is no draw counter to replay.
func LoadSolverFromCheckpoint(path string, game history.Game, dataset *history.Dataset, log zerolog.Logger) (*Solver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap checkpointSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("cfr: decode checkpoint: %w", err)
	}
	if snap.Version != checkpointFileVersion {
		return nil, fmt.Errorf("cfr: unsupported checkpoint version %d", snap.Version)
	}
	if err := snap.Abstraction.Validate(); err != nil {
		return nil, fmt.Errorf("cfr: checkpoint abstraction invalid: %w", err)
	}
	if err := snap.Training.Validate(); err != nil {
		return nil, fmt.Errorf("cfr: checkpoint training invalid: %w", err)
	}

	s, err := NewSolver(game, dataset, snap.Abstraction, snap.Training, log)
	if err != nil {
		return nil, err
	}
	s.iteration = snap.Iteration
	s.regrets.restore(snap.Regrets)
	return s, nil
}
