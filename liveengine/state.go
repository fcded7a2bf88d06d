// Package liveengine implements the live heads-up game state machine
// (component C7): an event-driven table that tracks stacks, bets, board,
// and the parallel concrete/abstract histories a decision service queries.
package liveengine

import (
	"fmt"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/holdem-solver/cards"
	"github.com/lox/holdem-solver/history"
)

// Seat identifies a heads-up player. Hero is the seat the decision service
// advises; Villain is the opponent.
type Seat int

const (
	Hero Seat = iota
	Villain
)

func (s Seat) String() string {
	if s == Hero {
		return "hero"
	}
	return "villain"
}

func (s Seat) other() Seat { return 1 - s }

type seatState struct {
	stack     int // chips not yet committed this hand
	invested  int // total committed this hand, across all streets
	streetBet int // committed on the current street
}

// State is a single table's live hand state. It is the sole writer of
// every chip and bet field it exposes; callers only ever push events
// through the methods below; there is no direct field mutation.
type State struct {
	clock quartz.Clock

	inHand        bool
	handOver      bool
	street        history.Street
	seats         [2]seatState
	toAct         Seat
	foldedSeat    *Seat
	winner        *Seat
	heroIsButton  bool
	smallBlind    int
	bigBlind      int
	handStartedAt time.Time

	heroCards      [2]cards.Card
	heroCardsKnown bool
	board          []cards.Card

	events   []Event
	abstract []history.Token
}

// New returns a state machine with no hand in progress. clock defaults to
// the real wall clock; pass a quartz.Mock in tests for deterministic event
// timestamps.
func New(clock quartz.Clock) *State {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &State{clock: clock, foldedSeat: nil}
}

// Pot is hero's and villain's total investment this hand, summed. The
// state machine never stores this directly; it is always derived so it
// cannot drift from the two seats' invested totals.
func (s *State) Pot() int {
	return s.seats[Hero].invested + s.seats[Villain].invested
}

// Stack returns seat's remaining (uncommitted) chips.
func (s *State) Stack(seat Seat) int { return s.seats[seat].stack }

// Invested returns seat's total commitment this hand.
func (s *State) Invested(seat Seat) int { return s.seats[seat].invested }

// Street returns the current betting round.
func (s *State) Street() history.Street { return s.street }

// ToAct returns the seat whose turn it is.
func (s *State) ToAct() Seat { return s.toAct }

// Board returns the community cards dealt so far.
func (s *State) Board() []cards.Card { return append([]cards.Card(nil), s.board...) }

// HeroCards returns hero's hole cards and whether they are known yet.
func (s *State) HeroCards() ([2]cards.Card, bool) { return s.heroCards, s.heroCardsKnown }

// IsHandOver reports whether the current hand has concluded.
func (s *State) IsHandOver() bool { return s.handOver }

// Winner returns the hand's winner, or nil if the hand isn't over or ended
// in a split pot.
func (s *State) Winner() *Seat { return s.winner }

// Events returns the concrete event log for the current hand.
func (s *State) Events() []Event { return append([]Event(nil), s.events...) }

// AbstractHistory returns the bounded-suffix abstract token sequence built
// from the concrete event stream, in the same vocabulary a trained
// blueprint is keyed on.
func (s *State) AbstractHistory() []history.Token {
	return append([]history.Token(nil), s.abstract...)
}

// ToCall returns how many more chips toAct must add to match the other
// seat's current street bet.
func (s *State) ToCall() int {
	return s.seats[s.toAct.other()].streetBet - s.seats[s.toAct].streetBet
}

// HandStart begins a new hand: posts blinds, clears board and hole cards,
// and sets the first actor (heads-up, the button acts first preflop).
func (s *State) HandStart(e HandStartEvent) error {
	e.at = s.clock.Now()
	s.inHand = true
	s.handOver = false
	s.winner = nil
	s.foldedSeat = nil
	s.street = history.Preflop
	s.handStartedAt = e.at
	s.board = nil
	s.heroCardsKnown = false
	s.heroIsButton = e.HeroIsButton
	s.smallBlind = e.SmallBlind
	s.bigBlind = e.BigBlind
	s.events = nil
	s.abstract = nil

	s.seats = [2]seatState{
		Hero:    {stack: e.HeroStack},
		Villain: {stack: e.VillainStack},
	}

	button, bb := Hero, Villain
	if !e.HeroIsButton {
		button, bb = Villain, Hero
	}
	s.postBlind(button, e.SmallBlind)
	s.postBlind(bb, e.BigBlind)
	s.toAct = button

	s.events = append(s.events, e)
	return nil
}

func (s *State) postBlind(seat Seat, amount int) {
	paid := amount
	if paid > s.seats[seat].stack {
		paid = s.seats[seat].stack
	}
	s.seats[seat].stack -= paid
	s.seats[seat].invested += paid
	s.seats[seat].streetBet += paid
}

// HoleCards records hero's two hole cards for the hand in progress.
func (s *State) HoleCards(e HoleCardsEvent) error {
	if !s.inHand {
		return ErrNoHandInProgress
	}
	e.at = s.clock.Now()
	s.heroCards = e.Cards
	s.heroCardsKnown = true
	s.abstract = appendAbstract(s.abstract, holdingToken(e.Cards[0], e.Cards[1]))
	s.events = append(s.events, e)
	return nil
}

// BoardUpdate deals the next street's community cards, resetting both
// seats' street bets and handing the first action to the out-of-position
// seat (heads-up postflop, that is whoever isn't the button).
func (s *State) BoardUpdate(e BoardUpdateEvent) error {
	if !s.inHand {
		return ErrNoHandInProgress
	}
	if e.Street != s.street+1 {
		return fmt.Errorf("%w: have %s, got board update for %s", ErrWrongStreet, s.street, e.Street)
	}
	e.at = s.clock.Now()
	s.board = append(s.board, e.Cards...)
	s.street = e.Street
	s.seats[Hero].streetBet = 0
	s.seats[Villain].streetBet = 0

	oop := Villain
	if !s.heroIsButton {
		oop = Hero
	}
	s.toAct = oop

	s.abstract = append(s.abstract, history.Sep)
	s.abstract = appendAbstract(s.abstract, boardToken(e.Cards...))
	s.events = append(s.events, e)
	return nil
}

// Action applies one seat's action: Fold, Check, Call, or a bet token.
// Amount is an increment, not a running total; it is clamped to the
// acting seat's remaining stack before being committed, so an oversized
// bet or call simply goes all-in for whatever is left.
func (s *State) Action(e ActionEvent) error {
	if !s.inHand || s.handOver {
		return ErrNoHandInProgress
	}
	if e.Player != s.toAct {
		return fmt.Errorf("%w: %s acted out of turn", ErrIllegalAction, e.Player)
	}
	if err := s.validateAction(e); err != nil {
		return err
	}
	e.at = s.clock.Now()

	acting, other := e.Player, e.Player.other()
	potBefore, remainingBefore := s.Pot(), s.seats[acting].stack
	switch e.Type {
	case history.Fold:
		s.handOver = true
		w := other
		s.winner = &w
		s.foldedSeat = &acting
	default:
		increment := e.Amount
		if increment > s.seats[acting].stack {
			increment = s.seats[acting].stack
		}
		if increment < 0 {
			increment = 0
		}
		s.seats[acting].stack -= increment
		s.seats[acting].invested += increment
		s.seats[acting].streetBet += increment
	}

	abstractTok := e.Type
	if e.Type == history.BetMin || e.Type == history.BetMid || e.Type == history.BetMax {
		abstractTok = classifyBetAmount(s.street, potBefore, remainingBefore, e.Amount)
	}
	s.abstract = appendAbstract(s.abstract, abstractTok)
	s.events = append(s.events, e)

	if !s.handOver {
		s.toAct = other
	}
	return nil
}

func (s *State) validateAction(e ActionEvent) error {
	toCall := s.ToCall()
	switch e.Type {
	case history.Check:
		if toCall != 0 {
			return fmt.Errorf("%w: check while facing a bet of %d", ErrIllegalAction, toCall)
		}
	case history.Call:
		if toCall <= 0 {
			return fmt.Errorf("%w: nothing to call", ErrIllegalAction)
		}
	case history.Fold:
		// always legal
	case history.BetMin, history.BetMid, history.BetMax:
		remaining := s.seats[e.Player].stack
		increment := e.Amount
		if increment > remaining {
			increment = remaining
		}
		newStreetBet := s.seats[e.Player].streetBet + increment
		allIn := increment == remaining
		if newStreetBet <= s.seats[e.Player.other()].streetBet && !allIn {
			return fmt.Errorf("%w: bet does not exceed the call price", ErrIllegalAction)
		}
	default:
		return fmt.Errorf("%w: %s", ErrIllegalAction, e.Type)
	}
	return nil
}

// HandEnd closes the hand, recording the winner (nil for a split pot).
func (s *State) HandEnd(e HandEndEvent) error {
	if !s.inHand {
		return ErrNoHandInProgress
	}
	e.at = s.clock.Now()
	s.handOver = true
	s.inHand = false
	if e.Winner != nil {
		s.winner = e.Winner
	}
	s.events = append(s.events, e)
	return nil
}

// RequestAnalysis appends an audit marker to the event log - the hook a
// decision service's callers use to record when they asked for a
// recommendation - and reports whether the hand has been in progress
// longer than budget. This never forces a fold or otherwise changes state;
// it is a latency observability hook a caller can act on if it chooses to.
// A non-positive budget disables the check.
func (s *State) RequestAnalysis(budget time.Duration) (overBudget bool) {
	now := s.clock.Now()
	e := RequestAnalysisEvent{at: now}
	s.events = append(s.events, e)
	if budget <= 0 || s.handStartedAt.IsZero() {
		return false
	}
	return now.Sub(s.handStartedAt) > budget
}
