package history

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/lox/holdem-solver/abstraction"
	"github.com/lox/holdem-solver/cards"
)

// ErrIllegalAction is returned by Apply when asked to play an action not in
// LegalActions(h).
var ErrIllegalAction = errors.New("history: illegal action")

// ErrNotChance and ErrNotTerminal guard the phase-specific operations.
var (
	ErrNotChance   = errors.New("history: not a chance node")
	ErrNotTerminal = errors.New("history: not a terminal node")
	ErrNoInfoset   = errors.New("history: chance and terminal nodes have no infoset")
)

type phase int

const (
	phaseDealHole phase = iota
	phaseDealBoard
	phaseAction
	phaseTerminal
)

// History is an immutable snapshot of an abstracted hand in progress. Every
// mutator (Apply, SampleChanceOutcome) returns a new value; nothing already
// observed by a caller ever changes underneath them, which is what makes it
// safe to branch into every action from the same parent node during a CFR
// tree walk.
type History struct {
	Tokens []Token
	Street Street
	Board  []cards.Card

	Hero, Opp [2]cards.Card

	phase       phase
	pot         int
	streetBet   [2]int
	invested    [2]int
	toAct       int
	prevAction  Token
	streetStart bool
	handStart   bool
	foldedSeat  int // -1 until a fold occurs

	// streetActed[seat] is true once seat has taken an action on the
	// current street. A check or a call only closes the street if the
	// other seat has already acted on it - this is what gives the
	// preflop big blind its option after a limp, without special-casing
	// preflop anywhere in the closure rule itself.
	streetActed [2]bool

	// clusters[seat] is that seat's own cluster sequence (preflop, then one
	// more entry per postflop street reached), the "own cluster sequence"
	// half of the infoset key.
	clusters [2][]int
}

// IsChance reports whether the next token is dealt by chance rather than
// chosen by a player.
func (h History) IsChance() bool {
	return h.phase == phaseDealHole || h.phase == phaseDealBoard
}

// IsTerminal reports whether the hand is over: a fold, or river betting
// has closed.
func (h History) IsTerminal() bool {
	return h.phase == phaseTerminal
}

// Player returns the seat to act, or -1 at a chance node.
func (h History) Player() int {
	if h.IsChance() || h.IsTerminal() {
		return -1
	}
	return h.toAct
}

// LegalActions returns the non-empty legal action set at this decision.
func (h History) LegalActions() []Token {
	if h.IsChance() || h.IsTerminal() {
		return nil
	}
	return rulesFor(h.Street).LegalActions(h.prevAction, h.streetStart, h.handStart)
}

// Pot returns the total chips committed so far, including the current
// street's not-yet-folded-in bets.
func (h History) Pot() int {
	return h.pot + h.streetBet[0] + h.streetBet[1]
}

// extendTokens always allocates a fresh backing array: Tokens is shared by
// every sibling branch explored from h, so appending in place would
// corrupt them.
func extendTokens(existing []Token, add ...Token) []Token {
	out := make([]Token, len(existing)+len(add))
	copy(out, existing)
	copy(out[len(existing):], add)
	return out
}

func extendCards(existing []cards.Card, add ...cards.Card) []cards.Card {
	out := make([]cards.Card, len(existing)+len(add))
	copy(out, existing)
	copy(out[len(existing):], add)
	return out
}

func extendInts(existing []int, add int) []int {
	out := make([]int, len(existing)+1)
	copy(out, existing)
	out[len(existing)] = add
	return out
}

// Config parameterizes AbstractGame: the effective stack depth (in the same
// chip units as the dataset's implied blinds, 1/2) that bMAX clamps to, and
// the postflop bucketer used to assign equity-clustered clusters as each
// street is revealed.
type Config struct {
	StackDepth int
	Postflop   *abstraction.Bucketer
}

// DefaultConfig returns a 100-big-blind effective stack with the default
// fast-bucket postflop abstraction.
func DefaultConfig() Config {
	return Config{
		StackDepth: 200,
		Postflop:   abstraction.NewFastBucketer(abstraction.DefaultConfig()),
	}
}

// Game is the abstract two-player game the CFR solver traverses: legal
// actions, chance, and terminal utility, parameterized by an injected
// Dataset rather than any global table.
type Game interface {
	NewRoot() History
	SampleChanceOutcome(h History, ds *Dataset, iter int, rng *rand.Rand) (History, error)
	Apply(h History, action Token) (History, error)
	TerminalUtility(h History, ds *Dataset, iter int, player int) (float64, error)
	InfosetKey(h History) (InfosetKey, error)
}

// AbstractGame is the Game implementation used for training: a full
// preflop-through-river heads-up hand, delegating street-specific legality
// and bet sizing to preflopRules/postflopRules.
type AbstractGame struct {
	cfg Config
}

// NewAbstractGame builds the abstract game for the given configuration.
func NewAbstractGame(cfg Config) *AbstractGame {
	return &AbstractGame{cfg: cfg}
}

// NewRoot returns the pending-deal history with blinds posted: button (seat
// 0) posts 1, the other seat posts 2.
func (g *AbstractGame) NewRoot() History {
	return History{
		phase:      phaseDealHole,
		foldedSeat: -1,
		streetBet:  [2]int{1, 2},
	}
}

// SampleChanceOutcome resolves the pending chance event: dealing both
// holdings at the hand's root, or the street separator plus the next
// board chunk thereafter. rng is used only to assign the postflop
// equity-cluster bucket for the newly revealed board; the cards themselves
// come from ds, keeping card deals reproducible independent of bucketing
// cost.
func (g *AbstractGame) SampleChanceOutcome(h History, ds *Dataset, iter int, rng *rand.Rand) (History, error) {
	if !h.IsChance() {
		return History{}, ErrNotChance
	}
	deal := ds.At(iter)
	nh := h

	switch h.phase {
	case phaseDealHole:
		nh.Hero, nh.Opp = deal.Hero, deal.Opp
		nh.Tokens = extendTokens(h.Tokens,
			holdingToken(deal.Hero[0], deal.Hero[1]),
			holdingToken(deal.Opp[0], deal.Opp[1]))
		nh.clusters[0] = []int{abstraction.PreflopCluster(deal.Hero[0], deal.Hero[1])}
		nh.clusters[1] = []int{abstraction.PreflopCluster(deal.Opp[0], deal.Opp[1])}
		nh.phase = phaseAction
		nh.handStart = true
		nh.streetStart = false
		nh.toAct = 0
		return nh, nil

	case phaseDealBoard:
		next := h.Street + 1
		var reveal []cards.Card
		switch next {
		case Flop:
			reveal = deal.Board[0:3]
		case Turn:
			reveal = deal.Board[3:4]
		case River:
			reveal = deal.Board[4:5]
		default:
			return History{}, fmt.Errorf("history: no street after river")
		}

		nh.Board = extendCards(h.Board, reveal...)
		nh.Tokens = extendTokens(h.Tokens, Sep, boardToken(reveal...))
		nh.Street = next
		nh.streetActed = [2]bool{}

		stage := postflopStage(next)
		heroBucket, err := g.cfg.Postflop.Bucket(stage, nh.Hero, nh.Board, rng)
		if err != nil {
			return History{}, err
		}
		oppBucket, err := g.cfg.Postflop.Bucket(stage, nh.Opp, nh.Board, rng)
		if err != nil {
			return History{}, err
		}
		nh.clusters[0] = extendInts(h.clusters[0], heroBucket)
		nh.clusters[1] = extendInts(h.clusters[1], oppBucket)

		nh.phase = phaseAction
		nh.handStart = false
		nh.streetStart = true
		nh.prevAction = ""
		nh.toAct = 1
		return nh, nil

	default:
		return History{}, ErrNotChance
	}
}

func postflopStage(s Street) abstraction.Street {
	switch s {
	case Flop:
		return abstraction.Flop
	case Turn:
		return abstraction.Turn
	default:
		return abstraction.River
	}
}

// Apply plays action at h, returning the successor history.
func (g *AbstractGame) Apply(h History, action Token) (History, error) {
	if h.IsChance() || h.IsTerminal() {
		return History{}, fmt.Errorf("%w: %s", ErrIllegalAction, action)
	}
	legal := h.LegalActions()
	allowed := false
	for _, a := range legal {
		if a == action {
			allowed = true
			break
		}
	}
	if !allowed {
		return History{}, fmt.Errorf("%w: %s not in %v", ErrIllegalAction, action, legal)
	}

	nh := h
	nh.Tokens = extendTokens(h.Tokens, action)
	nh.handStart = false
	nh.streetStart = false

	if action == Fold {
		nh.foldedSeat = h.toAct
		nh.phase = phaseTerminal
		nh.prevAction = action
		return nh, nil
	}

	acting, other := h.toAct, 1-h.toAct
	switch action {
	case Check:
		// no chip movement
	case Call:
		nh.streetBet[acting] = h.streetBet[other]
	case BetMin, BetMid, BetMax:
		rules := rulesFor(h.Street)
		remaining := g.cfg.StackDepth - h.invested[acting]
		nh.streetBet[acting] = rules.BetSize(action, h.Pot(), remaining)
	}

	// A check or call only closes the street once the other seat has had
	// a turn on it; a bare bet/raise never closes it on its own.
	otherActed := h.streetActed[other]
	nh.streetActed[acting] = true
	closesStreet := (action == Check || action == Call) && otherActed
	nh.prevAction = action

	if !closesStreet {
		nh.toAct = other
		return nh, nil
	}

	nh.pot = h.pot + nh.streetBet[0] + nh.streetBet[1]
	nh.invested[0] = h.invested[0] + nh.streetBet[0]
	nh.invested[1] = h.invested[1] + nh.streetBet[1]
	nh.streetBet = [2]int{0, 0}
	nh.streetStart = false

	if h.Street == River {
		nh.phase = phaseTerminal
	} else {
		nh.phase = phaseDealBoard
	}
	return nh, nil
}

// TerminalUtility returns player's signed payoff at a terminal history: a
// fold awards the non-folding player +pot/2 and the folder -pot/2 (chip
// contributions netted around zero so the solver's regrets stay
// symmetric); a showdown uses the dataset's precomputed winner. ds/iter
// must be the same pair NewRoot/SampleChanceOutcome were called with.
func (g *AbstractGame) TerminalUtility(h History, ds *Dataset, iter int, player int) (float64, error) {
	if !h.IsTerminal() {
		return 0, ErrNotTerminal
	}
	pot := h.Pot()

	var winner int // -1 = split
	if h.foldedSeat >= 0 {
		winner = 1 - h.foldedSeat
	} else {
		switch ds.At(iter).Winner {
		case 0:
			return 0, nil
		case 1:
			winner = 0
		default:
			winner = 1
		}
	}
	if player == winner {
		return float64(pot) / 2.0, nil
	}
	return -float64(pot) / 2.0, nil
}

// InfosetKey builds the key for the player to act at h: their own cluster
// sequence plus the public action-token history so far.
func (g *AbstractGame) InfosetKey(h History) (InfosetKey, error) {
	if h.IsChance() || h.IsTerminal() {
		return InfosetKey{}, ErrNoInfoset
	}
	player := h.toAct
	var actions []Token
	for _, t := range h.Tokens {
		if isActionToken(t) {
			actions = append(actions, t)
		}
	}
	return InfosetKey{
		Player:   player,
		Clusters: append([]int(nil), h.clusters[player]...),
		Actions:  actions,
	}, nil
}

// InfosetKey identifies a player's decision node: their own cluster
// sequence plus the public betting history leading to it. Two histories
// with equal InfosetKeys are, by construction, indistinguishable to the
// player to act.
type InfosetKey struct {
	Player   int
	Clusters []int
	Actions  []Token
}

// String renders a stable map key.
func (k InfosetKey) String() string {
	return fmt.Sprintf("%d|%v|%v", k.Player, k.Clusters, k.Actions)
}
