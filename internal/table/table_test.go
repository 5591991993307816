package table

import (
	"math/rand"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	clock := quartz.NewMock(t)
	return New(1000, 10, 20, rng, clock, nil)
}

func TestJoinFirstPlayerBecomesAdmin(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t)

	require.NoError(t, tbl.Join("v1", "Alice"))
	require.NoError(t, tbl.Join("v2", "Bob"))

	v := tbl.View("v1")
	require.Len(t, v.Players, 2)
	for _, p := range v.Players {
		if p.ID == "v1" {
			assert.True(t, p.IsAdmin)
		} else {
			assert.False(t, p.IsAdmin)
		}
	}
}

func TestJoinRejectsAlreadySeated(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t)

	require.NoError(t, tbl.Join("v1", "Alice"))
	assert.Error(t, tbl.Join("v1", "Alice Again"))
}

func TestJoinRejectsAfterGameStarted(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t)

	require.NoError(t, tbl.Join("v1", "Alice"))
	require.NoError(t, tbl.Join("v2", "Bob"))
	require.NoError(t, tbl.StartGame("v1"))

	assert.Error(t, tbl.Join("v3", "Carol"))
}

func TestSetStartingStackRequiresAdmin(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t)

	require.NoError(t, tbl.Join("v1", "Alice"))
	require.NoError(t, tbl.Join("v2", "Bob"))

	assert.Error(t, tbl.SetStartingStack("v2", 500))
	require.NoError(t, tbl.SetStartingStack("v1", 500))

	v := tbl.View("v1")
	for _, p := range v.Players {
		assert.Equal(t, 500, p.Chips)
	}
}

func TestSetStartingStackRejectsOutOfRange(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t)

	require.NoError(t, tbl.Join("v1", "Alice"))
	assert.Error(t, tbl.SetStartingStack("v1", 10))
	assert.Error(t, tbl.SetStartingStack("v1", 10_000_000))
}

func TestStartGameRequiresTwoPlayers(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t)

	require.NoError(t, tbl.Join("v1", "Alice"))
	assert.Error(t, tbl.StartGame("v1"))

	require.NoError(t, tbl.Join("v2", "Bob"))
	require.NoError(t, tbl.StartGame("v1"))

	v := tbl.View("v1")
	assert.True(t, v.GameStarted)
	assert.True(t, v.HandInProgress)
	assert.NotEqual(t, "lobby", v.Phase)
}

func TestDisconnectHidesPlayerFromOthersViewsImmediately(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t)

	require.NoError(t, tbl.Join("v1", "Alice"))
	require.NoError(t, tbl.Join("v2", "Bob"))
	require.NoError(t, tbl.StartGame("v1"))

	tbl.Disconnect("v1")

	v := tbl.View("v2")
	for _, p := range v.Players {
		assert.NotEqual(t, "v1", p.ID, "disconnected player should be hidden from the player list")
	}
}

func TestViewOnlyExposesOwnHoleCards(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t)

	require.NoError(t, tbl.Join("v1", "Alice"))
	require.NoError(t, tbl.Join("v2", "Bob"))
	require.NoError(t, tbl.StartGame("v1"))

	v1 := tbl.View("v1")
	require.Len(t, v1.YourCards, 2)

	v2 := tbl.View("v2")
	require.Len(t, v2.YourCards, 2)
	assert.NotEqual(t, v1.YourCards, v2.YourCards)

	// PlayerView carries no hole-card field at all, so every entry in
	// v2.Players (including v1's own row) structurally cannot leak it.
	require.Len(t, v2.Players, 2)
}

func TestGameStartedStaysTrueDuringInterHandDelay(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t)

	require.NoError(t, tbl.Join("v1", "Alice"))
	require.NoError(t, tbl.Join("v2", "Bob"))
	require.NoError(t, tbl.StartGame("v1"))

	// Heads-up: the dealer acts first preflop. Folding ends the hand
	// immediately without waiting for the mock clock to advance, landing
	// us squarely in the 5-second inter-hand delay window.
	v := tbl.View("v1")
	require.NoError(t, tbl.Action(v.CurrentTurnID, Fold, 0))

	v = tbl.View("v1")
	assert.True(t, v.GameStarted, "gameStarted must stay true across the inter-hand delay")
	assert.False(t, v.HandInProgress)
	assert.Equal(t, "showdown", v.Phase)

	assert.Error(t, tbl.Join("v3", "Carol"), "join must stay rejected during the inter-hand delay")
	assert.Error(t, tbl.SetStartingStack("v1", 500), "setStartingStack must stay rejected during the inter-hand delay")
	assert.Error(t, tbl.Action("v1", Check, 0), "action must be rejected while no hand is in progress")
}

func TestViewForUnseatedViewerHasEmptyFields(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t)

	require.NoError(t, tbl.Join("v1", "Alice"))

	v := tbl.View("spectator")
	assert.Empty(t, v.YourCards)
	assert.False(t, v.CanAct)
}
