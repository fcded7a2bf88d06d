// Package history implements the abstract poker history / game tree
// (component C6) that the CFR solver in package cfr traverses: an
// immutable token sequence, legal-action classification, chance sampling
// from an injected Dataset, and terminal utility.
package history

import "github.com/lox/holdem-solver/cards"

// Token is a single element of a history: either a chance token (a dealt
// holding or board chunk, or the street separator) or an abstract action.
type Token string

// The abstract action alphabet. Exactly these six tokens exist; postflop
// trees never use BetMid.
const (
	Check   Token = "k"
	Call    Token = "c"
	Fold    Token = "f"
	BetMin  Token = "bMIN"
	BetMid  Token = "bMID"
	BetMax  Token = "bMAX"
	Sep     Token = "/"
)

func isActionToken(t Token) bool {
	switch t {
	case Check, Call, Fold, BetMin, BetMid, BetMax:
		return true
	default:
		return false
	}
}

// holdingToken renders two hole cards as the 4-character chance token.
func holdingToken(a, b cards.Card) Token {
	return Token(a.String() + b.String())
}

// boardToken renders board cards (3, 1, or 1 of them, for flop/turn/river
// respectively) as their chance token.
func boardToken(cs ...cards.Card) Token {
	s := ""
	for _, c := range cs {
		s += c.String()
	}
	return Token(s)
}
