package cfr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lox/holdem-solver/internal/fileutil"
)

const blueprintFileVersion = 2

// BlueprintEntry is one trained information set's action list and average
// strategy, in parallel slices so ordering is unambiguous on reload.
type BlueprintEntry struct {
	Actions  []string  `json:"actions"`
	Strategy []float64 `json:"strategy"`
}

// Blueprint is the exported, read-only artifact a decision service loads:
// every trained information set's average strategy, plus the abstraction
// it was trained against.
type Blueprint struct {
	Version     int                       `json:"version"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Iterations  int                       `json:"iterations"`
	Abstraction AbstractionConfig         `json:"abstraction"`
	Entries     map[string]BlueprintEntry `json:"entries"`
}

// Blueprint materialises the solver's average strategy at its current
// iteration count.
func (s *Solver) Blueprint() *Blueprint {
	entries := s.regrets.Entries()
	out := make(map[string]BlueprintEntry, len(entries))
	for key, entry := range entries {
		out[key] = BlueprintEntry{
			Actions:  append([]string(nil), entry.Actions...),
			Strategy: entry.AverageStrategy(),
		}
	}
	return &Blueprint{
		Version:     blueprintFileVersion,
		GeneratedAt: time.Now().UTC(),
		Iterations:  s.iteration,
		Abstraction: s.absCfg,
		Entries:     out,
	}
}

// Save writes the blueprint to path as indented JSON, atomically (write to
// a temp file in the same directory, then rename) so a crash mid-write
// never leaves a corrupt blueprint on disk.
func (b *Blueprint) Save(path string) error {
	if b == nil {
		return errors.New("cfr: nil blueprint")
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}

// legacyBlueprint is the shape an earlier export format used: a flat
// average_strategy map keyed by infoset string, values the raw
// probability vector, with no per-entry action labels. LoadBlueprint
// accepts both so a blueprint produced before BlueprintEntry existed
// still loads.
type legacyBlueprint struct {
	Version         int                  `json:"version"`
	GeneratedAt     time.Time            `json:"generated_at"`
	Iterations      int                  `json:"iterations"`
	Abstraction     AbstractionConfig    `json:"abstraction"`
	AverageStrategy map[string][]float64 `json:"average_strategy"`
}

// LoadBlueprint reads a blueprint from disk, tolerating both the current
// Entries shape and the legacy average_strategy shape.
func LoadBlueprint(path string) (*Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var b Blueprint
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	if len(b.Entries) == 0 {
		var legacy legacyBlueprint
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, fmt.Errorf("cfr: decode blueprint: %w", err)
		}
		if len(legacy.AverageStrategy) > 0 {
			b.Version = legacy.Version
			b.GeneratedAt = legacy.GeneratedAt
			b.Iterations = legacy.Iterations
			b.Abstraction = legacy.Abstraction
			b.Entries = make(map[string]BlueprintEntry, len(legacy.AverageStrategy))
			for key, strat := range legacy.AverageStrategy {
				b.Entries[key] = BlueprintEntry{Strategy: strat}
			}
		}
	}

	if err := b.Abstraction.Validate(); err != nil {
		return nil, fmt.Errorf("cfr: blueprint abstraction invalid: %w", err)
	}
	return &b, nil
}

// Strategy returns the stored average strategy for the given infoset key
// string, and whether it was found.
func (b *Blueprint) Strategy(key string) ([]float64, bool) {
	if b == nil {
		return nil, false
	}
	entry, ok := b.Entries[key]
	if !ok {
		return nil, false
	}
	return entry.Strategy, true
}
