package liveengine

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-solver/cards"
	"github.com/lox/holdem-solver/history"
)

func mustCard(t *testing.T, s string) cards.Card {
	t.Helper()
	c, err := cards.ParseCard(s)
	require.NoError(t, err)
	return c
}

// TestHeroAllInVillainCallsMatchesInvestedAndPot reproduces the canonical
// heads-up all-in-and-call scenario: an oversized bMAX shove and a call
// declared one chip over the true call price (499 against 498) both clamp
// to the acting seat's remaining stack, landing both seats at the same
// total invested.
func TestHeroAllInVillainCallsMatchesInvestedAndPot(t *testing.T) {
	s := New(quartz.NewMock(t))

	require.NoError(t, s.HandStart(HandStartEvent{
		HeroStack: 500, VillainStack: 500,
		SmallBlind: 1, BigBlind: 2,
		HeroIsButton: true,
	}))
	require.NoError(t, s.HoleCards(HoleCardsEvent{
		Cards: [2]cards.Card{mustCard(t, "Ah"), mustCard(t, "Kd")},
	}))

	require.NoError(t, s.Action(ActionEvent{Player: Hero, Type: history.BetMax, Amount: 500}))
	require.NoError(t, s.Action(ActionEvent{Player: Villain, Type: history.Call, Amount: 499}))

	assert.Equal(t, 1000, s.Pot())
	assert.Equal(t, 500, s.Invested(Hero))
	assert.Equal(t, 500, s.Invested(Villain))
	assert.Equal(t, 0, s.Stack(Hero))
	assert.Equal(t, 0, s.Stack(Villain))
}

func TestCheckWhileFacingBetIsIllegal(t *testing.T) {
	s := New(quartz.NewMock(t))
	require.NoError(t, s.HandStart(HandStartEvent{
		HeroStack: 200, VillainStack: 200, SmallBlind: 1, BigBlind: 2, HeroIsButton: true,
	}))

	err := s.Action(ActionEvent{Player: Hero, Type: history.Check})
	assert.ErrorIs(t, err, ErrIllegalAction)
}

func TestActionOutOfTurnIsIllegal(t *testing.T) {
	s := New(quartz.NewMock(t))
	require.NoError(t, s.HandStart(HandStartEvent{
		HeroStack: 200, VillainStack: 200, SmallBlind: 1, BigBlind: 2, HeroIsButton: true,
	}))

	err := s.Action(ActionEvent{Player: Villain, Type: history.Call, Amount: 1})
	assert.ErrorIs(t, err, ErrIllegalAction)
}

func TestFoldEndsHandAndRecordsWinner(t *testing.T) {
	s := New(quartz.NewMock(t))
	require.NoError(t, s.HandStart(HandStartEvent{
		HeroStack: 200, VillainStack: 200, SmallBlind: 1, BigBlind: 2, HeroIsButton: true,
	}))

	require.NoError(t, s.Action(ActionEvent{Player: Hero, Type: history.Fold}))

	assert.True(t, s.IsHandOver())
	require.NotNil(t, s.Winner())
	assert.Equal(t, Villain, *s.Winner())
}

func TestBoardUpdateResetsStreetBetsAndOutOfPositionActsFirst(t *testing.T) {
	s := New(quartz.NewMock(t))
	require.NoError(t, s.HandStart(HandStartEvent{
		HeroStack: 200, VillainStack: 200, SmallBlind: 1, BigBlind: 2, HeroIsButton: true,
	}))
	require.NoError(t, s.Action(ActionEvent{Player: Hero, Type: history.Call, Amount: 1}))
	require.NoError(t, s.Action(ActionEvent{Player: Villain, Type: history.Check}))

	require.NoError(t, s.BoardUpdate(BoardUpdateEvent{
		Street: history.Flop,
		Cards:  []cards.Card{mustCard(t, "2c"), mustCard(t, "7d"), mustCard(t, "Jh")},
	}))

	assert.Equal(t, history.Flop, s.Street())
	assert.Equal(t, Villain, s.ToAct())
	assert.Equal(t, 0, s.ToCall())
	assert.Len(t, s.Board(), 3)
}

func TestBoardUpdateWrongStreetRejected(t *testing.T) {
	s := New(quartz.NewMock(t))
	require.NoError(t, s.HandStart(HandStartEvent{
		HeroStack: 200, VillainStack: 200, SmallBlind: 1, BigBlind: 2, HeroIsButton: true,
	}))

	err := s.BoardUpdate(BoardUpdateEvent{
		Street: history.Turn,
		Cards:  []cards.Card{mustCard(t, "2c")},
	})
	assert.ErrorIs(t, err, ErrWrongStreet)
}

func TestAbstractHistoryCapturesHoleCardsAndActions(t *testing.T) {
	s := New(quartz.NewMock(t))
	require.NoError(t, s.HandStart(HandStartEvent{
		HeroStack: 500, VillainStack: 500, SmallBlind: 1, BigBlind: 2, HeroIsButton: true,
	}))
	require.NoError(t, s.HoleCards(HoleCardsEvent{
		Cards: [2]cards.Card{mustCard(t, "Ah"), mustCard(t, "Kd")},
	}))
	require.NoError(t, s.Action(ActionEvent{Player: Hero, Type: history.BetMax, Amount: 500}))

	tokens := s.AbstractHistory()
	require.Len(t, tokens, 2)
	assert.Equal(t, history.Token("AhKd"), tokens[0])
	assert.Equal(t, history.BetMax, tokens[1])
}

func TestRequestAnalysisAppendsEventWithoutChangingState(t *testing.T) {
	s := New(quartz.NewMock(t))
	require.NoError(t, s.HandStart(HandStartEvent{
		HeroStack: 200, VillainStack: 200, SmallBlind: 1, BigBlind: 2, HeroIsButton: true,
	}))
	before := s.Pot()
	overBudget := s.RequestAnalysis(0)
	assert.False(t, overBudget)
	assert.Equal(t, before, s.Pot())

	events := s.Events()
	assert.Equal(t, KindRequestAnalysis, events[len(events)-1].Kind())
}

func TestRequestAnalysisReportsOverBudgetAfterClockAdvance(t *testing.T) {
	clock := quartz.NewMock(t)
	s := New(clock)
	require.NoError(t, s.HandStart(HandStartEvent{
		HeroStack: 200, VillainStack: 200, SmallBlind: 1, BigBlind: 2, HeroIsButton: true,
	}))

	assert.False(t, s.RequestAnalysis(5*time.Second))

	clock.Advance(10 * time.Second)
	assert.True(t, s.RequestAnalysis(5*time.Second))
}
