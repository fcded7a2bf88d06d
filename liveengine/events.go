package liveengine

import (
	"time"

	"github.com/lox/holdem-solver/cards"
	"github.com/lox/holdem-solver/history"
)

// Kind identifies the event types the live state machine accepts. Only
// these six kinds exist.
type Kind string

const (
	KindHandStart       Kind = "hand_start"
	KindHoleCards       Kind = "hole_cards"
	KindBoardUpdate     Kind = "board_update"
	KindAction          Kind = "action"
	KindHandEnd         Kind = "hand_end"
	KindRequestAnalysis Kind = "request_analysis"
)

// Event is anything appended to a State's concrete event log. Each concrete
// event type below also doubles as the argument to the matching State
// method (HandStart, HoleCards, ...), so callers never hand-assemble one
// of these; the state machine stamps At itself.
type Event interface {
	Kind() Kind
	At() time.Time
}

// HandStartEvent begins a new hand: both starting stacks, blind sizes, and
// who holds the button (heads-up, so the button is also the small blind).
type HandStartEvent struct {
	HeroStack, VillainStack int
	SmallBlind, BigBlind    int
	HeroIsButton            bool
	at                      time.Time
}

func (e HandStartEvent) Kind() Kind    { return KindHandStart }
func (e HandStartEvent) At() time.Time { return e.at }

// HoleCardsEvent reveals hero's two hole cards for the hand in progress.
type HoleCardsEvent struct {
	Cards [2]cards.Card
	at    time.Time
}

func (e HoleCardsEvent) Kind() Kind    { return KindHoleCards }
func (e HoleCardsEvent) At() time.Time { return e.at }

// BoardUpdateEvent deals the next street's community cards: three for the
// flop, one each for the turn and river.
type BoardUpdateEvent struct {
	Cards  []cards.Card
	Street history.Street
	at     time.Time
}

func (e BoardUpdateEvent) Kind() Kind    { return KindBoardUpdate }
func (e BoardUpdateEvent) At() time.Time { return e.at }

// ActionEvent records one seat's action. Amount is the chips that seat is
// willing to add on top of what it already has in this street (an
// increment, not a running total); the state machine clamps it to that
// seat's remaining stack, so a bet or call amount larger than the stack is
// simply an all-in for whatever remains.
type ActionEvent struct {
	Player Seat
	Type   history.Token
	Amount int
	at     time.Time
}

func (e ActionEvent) Kind() Kind    { return KindAction }
func (e ActionEvent) At() time.Time { return e.at }

// HandEndEvent closes out a hand, by fold or by showdown.
type HandEndEvent struct {
	Winner   *Seat
	Showdown bool
	at       time.Time
}

func (e HandEndEvent) Kind() Kind    { return KindHandEnd }
func (e HandEndEvent) At() time.Time { return e.at }

// RequestAnalysisEvent asks for a decision recommendation at the current
// state without itself changing anything; State only records it in the
// event log so a transcript shows when analysis was asked for.
type RequestAnalysisEvent struct {
	at time.Time
}

func (e RequestAnalysisEvent) Kind() Kind    { return KindRequestAnalysis }
func (e RequestAnalysisEvent) At() time.Time { return e.at }
