package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lox/holdem-solver/cfr"
)

type EvalCmd struct {
	Blueprint string `help:"path to a saved blueprint" required:""`
}

// Run reports coverage statistics over a saved blueprint: how many
// information sets it trained, and the spread of action-count per entry,
// useful for sanity-checking a run before shipping it to the decision
// service.
func (cmd *EvalCmd) Run(ctx context.Context) error {
	bp, err := cfr.LoadBlueprint(cmd.Blueprint)
	if err != nil {
		return fmt.Errorf("load blueprint: %w", err)
	}

	log.Info().
		Str("generated", bp.GeneratedAt.Format(time.RFC3339)).
		Int("iterations", bp.Iterations).
		Int("infosets", len(bp.Entries)).
		Msg("blueprint loaded")

	counts := map[int]int{}
	badMass := 0
	for _, entry := range bp.Entries {
		counts[len(entry.Actions)]++
		sum := 0.0
		for _, p := range entry.Strategy {
			sum += p
		}
		if sum < 0.999 || sum > 1.001 {
			badMass++
		}
	}
	for n, c := range counts {
		log.Info().Int("actions", n).Int("infosets", c).Msg("action-count bucket")
	}
	if badMass > 0 {
		log.Warn().Int("count", badMass).Msg("infosets whose strategy does not sum to 1")
	}
	return nil
}
