package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"

	"github.com/lox/holdem-solver/abstraction"
	"github.com/lox/holdem-solver/cards"
	"github.com/lox/holdem-solver/cfr"
	"github.com/lox/holdem-solver/decision"
	"github.com/lox/holdem-solver/history"
	"github.com/lox/holdem-solver/internal/randutil"
	"github.com/lox/holdem-solver/liveengine"
)

type DecideCmd struct {
	HeroStack    int    `help:"hero's starting stack" default:"200"`
	VillainStack int    `help:"villain's starting stack" default:"200"`
	SmallBlind   int    `help:"small blind" default:"1"`
	BigBlind     int    `help:"big blind" default:"2"`
	HeroIsButton bool   `help:"whether hero holds the button" default:"true"`
	HeroCards    string `help:"hero's two hole cards, comma separated (e.g. Ah,Kd)" required:""`
	Board        string `help:"community cards dealt so far, comma separated"`
	Actions      string `help:"scripted actions so far, semicolon separated player:type:amount triples (e.g. hero:bMAX:500;villain:c:499)"`
	Preflop      string `help:"path to a preflop blueprint"`
	Postflop     string `help:"path to a postflop blueprint"`
	Seed         int64  `help:"PRNG seed for equity sampling and action selection" default:"1"`
	EquitySample int    `help:"equity Monte Carlo sample count" default:"20000"`
}

func (cmd *DecideCmd) Run(ctx context.Context) error {
	heroCards, err := parseTwoCards(cmd.HeroCards)
	if err != nil {
		return fmt.Errorf("parse hero cards: %w", err)
	}

	state := liveengine.New(quartz.NewReal())
	if err := state.HandStart(liveengine.HandStartEvent{
		HeroStack: cmd.HeroStack, VillainStack: cmd.VillainStack,
		SmallBlind: cmd.SmallBlind, BigBlind: cmd.BigBlind,
		HeroIsButton: cmd.HeroIsButton,
	}); err != nil {
		return err
	}
	if err := state.HoleCards(liveengine.HoleCardsEvent{Cards: heroCards}); err != nil {
		return err
	}

	if err := applyBoard(state, cmd.Board); err != nil {
		return err
	}
	if err := applyActions(state, cmd.Actions); err != nil {
		return err
	}

	var preflop, postflop *cfr.Blueprint
	if cmd.Preflop != "" {
		preflop, err = cfr.LoadBlueprint(cmd.Preflop)
		if err != nil {
			return fmt.Errorf("load preflop blueprint: %w", err)
		}
	}
	if cmd.Postflop != "" {
		postflop, err = cfr.LoadBlueprint(cmd.Postflop)
		if err != nil {
			return fmt.Errorf("load postflop blueprint: %w", err)
		}
	}

	bucketerCfg := abstraction.DefaultConfig()
	bucketer := abstraction.NewFastBucketer(bucketerCfg)

	svc := decision.New(preflop, postflop, bucketer, cmd.EquitySample)
	rng := randutil.New(cmd.Seed)

	rec, err := svc.Recommend(state, rng)
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	log.Info().
		Str("action", rec.Action).
		Int("amount", rec.Amount).
		Float64("equity", rec.Equity).
		Interface("strategy", rec.Strategy).
		Msg("recommendation")
	return nil
}

func parseTwoCards(s string) ([2]cards.Card, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return [2]cards.Card{}, fmt.Errorf("expected two comma-separated cards, got %q", s)
	}
	a, err := cards.ParseCard(strings.TrimSpace(parts[0]))
	if err != nil {
		return [2]cards.Card{}, err
	}
	b, err := cards.ParseCard(strings.TrimSpace(parts[1]))
	if err != nil {
		return [2]cards.Card{}, err
	}
	return [2]cards.Card{a, b}, nil
}

func applyBoard(state *liveengine.State, spec string) error {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil
	}
	cs, err := cards.ParseCards(spec)
	if err != nil {
		return fmt.Errorf("parse board: %w", err)
	}

	streets := []struct {
		street history.Street
		count  int
	}{
		{history.Flop, 3},
		{history.Turn, 1},
		{history.River, 1},
	}
	offset := 0
	for _, st := range streets {
		if offset >= len(cs) {
			break
		}
		end := offset + st.count
		if end > len(cs) {
			return fmt.Errorf("incomplete %s: need %d cards", st.street, st.count)
		}
		if err := state.BoardUpdate(liveengine.BoardUpdateEvent{Street: st.street, Cards: cs[offset:end]}); err != nil {
			return err
		}
		offset = end
	}
	return nil
}

func applyActions(state *liveengine.State, spec string) error {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil
	}
	for _, raw := range strings.Split(spec, ";") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parts := strings.Split(raw, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return fmt.Errorf("malformed action %q, want player:type[:amount]", raw)
		}

		var player liveengine.Seat
		switch strings.ToLower(parts[0]) {
		case "hero":
			player = liveengine.Hero
		case "villain":
			player = liveengine.Villain
		default:
			return fmt.Errorf("unknown player %q", parts[0])
		}

		amount := 0
		if len(parts) == 3 {
			var err error
			amount, err = strconv.Atoi(parts[2])
			if err != nil {
				return fmt.Errorf("parse amount in %q: %w", raw, err)
			}
		}

		if err := state.Action(liveengine.ActionEvent{
			Player: player,
			Type:   history.Token(parts[1]),
			Amount: amount,
		}); err != nil {
			return fmt.Errorf("apply action %q: %w", raw, err)
		}
	}
	return nil
}
