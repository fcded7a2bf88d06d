// Package decision implements the decision service (component C8): given
// a live hand's state, recommend an action by consulting a trained CFR
// blueprint, falling back to an equity heuristic when the infoset was
// never visited during training.
package decision

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/lox/holdem-solver/abstraction"
	"github.com/lox/holdem-solver/cfr"
	"github.com/lox/holdem-solver/equity"
	"github.com/lox/holdem-solver/history"
	"github.com/lox/holdem-solver/liveengine"
)

// ErrMissingHoleCards mirrors liveengine's sentinel: analysis requested
// before hero's hand is known.
var ErrMissingHoleCards = errors.New("decision: hero hole cards not yet known")

// Recommendation is the decision response returned to the caller.
type Recommendation struct {
	Action   string             `json:"action"`
	Amount   int                `json:"amount,omitempty"`
	Equity   float64            `json:"equity"`
	Strategy map[string]float64 `json:"strategy"`
}

// Service answers recommend(state) queries. Preflop and Postflop are the
// two blueprint files a model directory ships; either may be nil, in which
// case that street always falls back to the equity heuristic rather than
// failing the request.
type Service struct {
	Preflop       *cfr.Blueprint
	Postflop      *cfr.Blueprint
	Bucketer      *abstraction.Bucketer
	EquitySamples int
}

// New builds a decision service over the given blueprints and postflop
// bucketer. Either blueprint may be nil.
func New(preflop, postflop *cfr.Blueprint, bucketer *abstraction.Bucketer, equitySamples int) *Service {
	if equitySamples <= 0 {
		equitySamples = 20000
	}
	return &Service{Preflop: preflop, Postflop: postflop, Bucketer: bucketer, EquitySamples: equitySamples}
}

// Recommend runs the five-step recommendation pipeline: estimate equity,
// build the infoset key, look up the trained strategy, fall back to an
// equity heuristic on a miss, and translate the sampled action back to a
// chip amount.
func (s *Service) Recommend(state *liveengine.State, rng *rand.Rand) (Recommendation, error) {
	heroCards, known := state.HeroCards()
	if !known {
		return Recommendation{}, ErrMissingHoleCards
	}

	eq, err := equity.Estimate(heroCards, state.Board(), s.EquitySamples, rng)
	if err != nil {
		return Recommendation{}, fmt.Errorf("decision: equity: %w", err)
	}

	key, err := s.infosetKey(state, rng)
	if err != nil {
		return Recommendation{}, fmt.Errorf("decision: infoset key: %w", err)
	}

	strategy, actions, found := s.lookup(state.Street(), key)
	if !found {
		actions, strategy = heuristicStrategy(state, eq)
	}

	action := sampleAction(actions, strategy, rng)
	amount := translateAmount(state, action)

	dist := make(map[string]float64, len(actions))
	for i, a := range actions {
		dist[a] = strategy[i]
	}

	return Recommendation{
		Action:   action,
		Amount:   amount,
		Equity:   eq,
		Strategy: dist,
	}, nil
}

// infosetKey mirrors history.AbstractGame.InfosetKey's format exactly
// ("player|clusters|actions") so live lookups hit the same keys training
// produced: hero's own cluster sequence (preflop cluster, then one
// postflop bucket per street reached) plus the bounded-suffix abstract
// action history.
func (s *Service) infosetKey(state *liveengine.State, rng *rand.Rand) (string, error) {
	heroCards, _ := state.HeroCards()
	clusters := []int{abstraction.PreflopCluster(heroCards[0], heroCards[1])}

	board := state.Board()
	streets := []struct {
		street abstraction.Street
		upto   int
	}{
		{abstraction.Flop, 3},
		{abstraction.Turn, 4},
		{abstraction.River, 5},
	}
	for _, st := range streets {
		if len(board) < st.upto {
			break
		}
		if s.Bucketer == nil {
			return "", errors.New("decision: postflop bucketer required once board is dealt")
		}
		bucket, err := s.Bucketer.Bucket(st.street, heroCards, board[:st.upto], rng)
		if err != nil {
			return "", err
		}
		clusters = append(clusters, bucket)
	}

	var actions []history.Token
	for _, tok := range state.AbstractHistory() {
		if isActionToken(tok) {
			actions = append(actions, tok)
		}
	}

	// Training seats the button as player 0 and the big blind as player 1.
	player := 0
	if events := state.Events(); len(events) > 0 {
		if start, ok := events[0].(liveengine.HandStartEvent); ok && !start.HeroIsButton {
			player = 1
		}
	}

	return fmt.Sprintf("%d|%v|%v", player, clusters, actions), nil
}

func isActionToken(t history.Token) bool {
	switch t {
	case history.Check, history.Call, history.Fold, history.BetMin, history.BetMid, history.BetMax:
		return true
	default:
		return false
	}
}

func (s *Service) lookup(street history.Street, key string) (strategy []float64, actions []string, found bool) {
	bp := s.Postflop
	if street == history.Preflop {
		bp = s.Preflop
	}
	if bp == nil {
		return nil, nil, false
	}
	entry, ok := bp.Entries[key]
	if !ok || len(entry.Actions) != len(entry.Strategy) || len(entry.Actions) == 0 {
		// A blueprint loaded from the legacy average_strategy format has no
		// action labels for its entries; without them the strategy vector
		// can't be matched back to concrete actions, so treat it as a miss
		// and fall back to the equity heuristic instead of folding blind.
		return nil, nil, false
	}
	return entry.Strategy, entry.Actions, true
}

// heuristicStrategy computes a fallback action distribution for an
// infoset the blueprint never saw.
func heuristicStrategy(state *liveengine.State, eq float64) (actions []string, strategy []float64) {
	toCall := state.ToCall()
	if toCall == 0 {
		return []string{"check", "raise"}, []float64{1 - eq, eq}
	}

	pot := state.Pot()
	potOdds := float64(toCall) / float64(pot+toCall)
	switch {
	case eq > potOdds+0.1:
		return []string{"fold", "call", "raise"}, []float64{0, 0.6, 0.4}
	case eq > potOdds:
		return []string{"fold", "call", "raise"}, []float64{0.2, 0.7, 0.1}
	default:
		return []string{"fold", "call"}, []float64{0.8, 0.2}
	}
}

// sampleAction draws one action from the (possibly unnormalised, though it
// shouldn't be) distribution.
func sampleAction(actions []string, strategy []float64, rng *rand.Rand) string {
	if len(actions) == 0 {
		return "fold"
	}
	total := 0.0
	for _, p := range strategy {
		total += p
	}
	if total <= 0 {
		return actions[0]
	}
	r := rng.Float64() * total
	acc := 0.0
	for i, p := range strategy {
		acc += p
		if r <= acc {
			return actions[i]
		}
	}
	return actions[len(actions)-1]
}

// translateAmount turns an abstract action token into a concrete chip
// amount, clamped to the acting seat's remaining stack.
func translateAmount(state *liveengine.State, action string) int {
	toCall := state.ToCall()
	pot := state.Pot()
	stack := state.Stack(liveengine.Hero)

	var amount int
	switch history.Token(action) {
	case history.Call:
		amount = toCall
	case history.BetMin:
		amount = toCall * 2
		if pot/3 > amount {
			amount = pot / 3
		}
	case history.BetMid:
		amount = pot
	case history.BetMax:
		amount = stack
	default:
		switch action {
		case "call":
			amount = toCall
		case "raise":
			amount = pot
		default:
			amount = 0
		}
	}
	if amount > stack {
		amount = stack
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}
