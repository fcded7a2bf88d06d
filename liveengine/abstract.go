package liveengine

import (
	"github.com/lox/holdem-solver/cards"
	"github.com/lox/holdem-solver/history"
)

// maxAbstractSuffix bounds how many action tokens of the current street
// are kept in the abstract history fed to infoset lookups. A live seat can
// in principle bet-raise many times on one street (far more than training
// ever explored); keeping only the most recent ones bounds the infoset-key
// cardinality the same way the training abstraction's bucket counts do.
const maxAbstractSuffix = 2

// holdingToken and boardToken mirror history's unexported chance-token
// rendering (two hole cards, or a run of board cards, concatenated rank+
// suit), so the abstract history this package builds uses exactly the
// vocabulary a trained blueprint was keyed on.
func holdingToken(a, b cards.Card) history.Token {
	return history.Token(a.String() + b.String())
}

func boardToken(cs ...cards.Card) history.Token {
	s := ""
	for _, c := range cs {
		s += c.String()
	}
	return history.Token(s)
}

// classifyBetAmount maps a concrete chip increment to the abstract bet
// token whose formula-implied stake it lands closest to, using the same
// street-aware pot-relative thresholds history uses during training.
// A live opponent's actual bet rarely matches a formula exactly - a human
// shoves their whole stack rather than exactly 1x pot - so amounts beyond
// every threshold collapse into the most aggressive bucket rather than
// going unclassified.
func classifyBetAmount(street history.Street, potBefore, remainingStack, amount int) history.Token {
	rules := bettingRulesFor(street)

	// bMAX is an open-ended "as aggressive as possible" bucket: an amount
	// at or beyond its formula stake (which is itself clamped to the
	// stack, so this also catches a literal all-in) always classifies as
	// bMAX, rather than falling into nearest-distance comparison, which
	// breaks down once every formula stake is far below a real shove.
	maxStake := rules.BetSize(history.BetMax, potBefore, remainingStack)
	if amount >= maxStake {
		return history.BetMax
	}

	candidates := []history.Token{history.BetMin}
	if street == history.Preflop {
		candidates = []history.Token{history.BetMin, history.BetMid}
	}

	best := candidates[0]
	bestDist := -1
	for _, tok := range candidates {
		stake := rules.BetSize(tok, potBefore, remainingStack)
		dist := amount - stake
		if dist < 0 {
			dist = -dist
		}
		if bestDist == -1 || dist < bestDist {
			best, bestDist = tok, dist
		}
	}
	return best
}

// bettingRulesFor exposes the same BetSize formulas history.rulesFor uses,
// without needing an exported type from that package: duplicating the
// small street/token switch here is simpler than growing history's public
// surface for a single helper.
type bettingRules interface {
	BetSize(tok history.Token, pot, remainingStack int) int
}

type liveBettingRules struct{ preflop bool }

func (r liveBettingRules) BetSize(tok history.Token, pot, remainingStack int) int {
	clamp := func(stake int) int {
		if stake > remainingStack {
			return remainingStack
		}
		if stake < 0 {
			return 0
		}
		return stake
	}
	if r.preflop {
		switch tok {
		case history.BetMin:
			return clamp(pot)
		case history.BetMid:
			return clamp(pot * 2)
		case history.BetMax:
			return clamp(pot)
		default:
			return 0
		}
	}
	switch tok {
	case history.BetMin:
		stake := pot / 3
		if stake < 2 {
			stake = 2
		}
		return clamp(stake)
	case history.BetMax:
		return clamp(pot)
	default:
		return 0
	}
}

func bettingRulesFor(street history.Street) bettingRules {
	return liveBettingRules{preflop: street == history.Preflop}
}

// appendAbstract appends tok to the abstract token sequence, keeping only
// the last maxAbstractSuffix action tokens since the most recent separator
// (chance tokens and the street separator itself are never trimmed).
func appendAbstract(tokens []history.Token, tok history.Token) []history.Token {
	tokens = append(tokens, tok)
	if tok == history.Sep {
		return tokens
	}
	// find the start of the current street's run of action tokens
	start := len(tokens) - 1
	for start > 0 && tokens[start-1] != history.Sep && !isChanceToken(tokens[start-1]) {
		start--
	}
	run := tokens[start:]
	if len(run) > maxAbstractSuffix {
		trimmed := append([]history.Token{}, tokens[:start]...)
		trimmed = append(trimmed, run[len(run)-maxAbstractSuffix:]...)
		return trimmed
	}
	return tokens
}

func isChanceToken(t history.Token) bool {
	switch t {
	case history.Check, history.Call, history.Fold, history.BetMin, history.BetMid, history.BetMax, history.Sep:
		return false
	default:
		return true
	}
}
