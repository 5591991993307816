package table

import (
	"math/rand"
	"testing"

	"github.com/lox/holdem-table/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHand(t *testing.T, names []string, smallBlind, bigBlind, chips int) *Hand {
	t.Helper()
	players := make([]*Player, len(names))
	for i, name := range names {
		players[i] = NewPlayer(name, name, chips)
		players[i].resetForHand()
	}
	d := deck.NewDeck(rand.New(rand.NewSource(1)))
	return newHand(players, smallBlind, bigBlind, d)
}

func findPlayer(h *Hand, id string) *Player {
	for _, p := range h.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func TestFoldOutAwardsPotWithoutShowdown(t *testing.T) {
	t.Parallel()

	// Scenario 1: 3 players, blinds 10/20, UTG folds, SB folds. BB is paid
	// the whole 30-chip pot, its own 20 plus the 10-chip SB forced bet, for
	// a net gain of 10.
	h := newTestHand(t, []string{"dealer", "sb", "bb"}, 10, 20, 1000)

	utgSeat := h.activeSeat
	require.NoError(t, h.ProcessAction(utgSeat, Fold, 0))

	sbSeat := h.seatIndexOf(findPlayer(h, "sb"))
	require.NoError(t, h.ProcessAction(sbSeat, Fold, 0))

	require.True(t, h.IsComplete())
	require.NotNil(t, h.lastShowdown)
	require.Len(t, h.lastShowdown.Payouts, 1)
	assert.Equal(t, "bb", h.lastShowdown.Payouts[0].PlayerID)
	assert.Equal(t, 30, h.lastShowdown.Payouts[0].Amount)
}

func TestShortBigBlindCapsCurrentBetNotBelowBigBlind(t *testing.T) {
	t.Parallel()

	players := []*Player{
		NewPlayer("dealer", "dealer", 1000),
		NewPlayer("sb", "sb", 1000),
		NewPlayer("bb", "bb", 15),
	}
	for _, p := range players {
		p.resetForHand()
	}
	d := deck.NewDeck(rand.New(rand.NewSource(1)))
	h := newHand(players, 10, 20, d)

	bb := findPlayer(h, "bb")
	assert.True(t, bb.AllIn)
	assert.Equal(t, 15, bb.BetThisRound)
	assert.Equal(t, 20, h.currentBet)

	la := legalActionsFor(findPlayer(h, "dealer"), h.currentBet, h.lastRaiseSize)
	assert.Equal(t, 40, la.MinRaiseTo)
}

func TestAllInUnderRaiseDoesNotReopenAction(t *testing.T) {
	t.Parallel()

	h := newTestHand(t, []string{"p1", "p2", "p3"}, 50, 100, 10_000)
	// Force a clean slate on currentBet/lastRaiseSize to match the
	// scenario's absolute numbers regardless of blind posting above.
	for _, p := range h.players {
		p.BetThisRound = 0
		p.TotalContribution = 0
		p.Acted = false
		p.AllIn = false
		p.Chips = 10_000
	}
	h.currentBet = 0
	h.lastRaiseSize = 100
	h.activeSeat = h.seatIndexOf(findPlayer(h, "p1"))

	p1 := findPlayer(h, "p1")
	p2 := findPlayer(h, "p2")
	p3 := findPlayer(h, "p3")

	require.NoError(t, h.ProcessAction(h.seatIndexOf(p1), Raise, 100))
	require.NoError(t, h.ProcessAction(h.seatIndexOf(p2), Raise, 250))
	assert.Equal(t, 150, h.lastRaiseSize)

	p3.Chips = 300 - p3.BetThisRound
	require.NoError(t, h.ProcessAction(h.seatIndexOf(p3), Raise, 300))
	assert.False(t, isFullRaise(300, 250, 150))

	la := legalActionsFor(p1, h.currentBet, h.lastRaiseSize)
	assert.True(t, la.CanFold)
	assert.True(t, la.CanCall)
	assert.False(t, la.CanRaise)

	err := h.ProcessAction(h.seatIndexOf(p1), Raise, 400)
	assert.ErrorIs(t, err, ErrActionNotReopened)
}
