// internal/ai/turn_manager_test.go
package ai

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamachris/unit-bolt-sub001/internal/game"
	"github.com/yamachris/unit-bolt-sub001/internal/models"
)

// *game.UnitGame is the only production implementation of GameActions.
var _ GameActions = (*game.UnitGame)(nil)

// completeSetupFor walks a scripted opponent through SETUP via the same
// action router the agent uses.
func completeSetupFor(t *testing.T, g *game.UnitGame, playerID uuid.UUID) {
	t.Helper()
	for i := 0; i < game.ReserveCapacity; i++ {
		hand := g.IsolateFor(playerID).You.Hand
		require.NotEmpty(t, hand)
		require.True(t, g.HandlePlayerAction(playerID, models.GameAction{
			ActionType: "action_move_to_reserve",
			Payload:    map[string]interface{}{"cardId": hand[0].ID.String()},
		}))
	}
	require.True(t, g.HandlePlayerAction(playerID, models.GameAction{
		ActionType: "action_start_game",
	}))
}

func TestTurnManagerPlaysThroughSetup(t *testing.T) {
	g := game.NewUnitGameWithSeed(5)
	agentID := uuid.New()
	humanID := uuid.New()
	require.True(t, g.AddPlayer(agentID))
	require.True(t, g.AddPlayer(humanID))
	completeSetupFor(t, g, humanID)

	tm := NewTurnManager(g, agentID)

	// One reserve pick per step, then the ready declaration.
	for i := 0; i <= game.ReserveCapacity; i++ {
		tm.step(g.IsolateFor(agentID))
	}

	view := g.IsolateFor(agentID)
	assert.Len(t, view.You.Reserve, game.ReserveCapacity)
	assert.NotEqual(t, game.PhaseSetup, view.You.Phase)
}

func TestTurnManagerCompletesATurn(t *testing.T) {
	g := game.NewUnitGameWithSeed(6)
	agentID := uuid.New()
	humanID := uuid.New()
	require.True(t, g.AddPlayer(agentID))
	require.True(t, g.AddPlayer(humanID))
	completeSetupFor(t, g, humanID)

	tm := NewTurnManager(g, agentID)

	// The agent is first to act; within a bounded number of steps it must
	// hand the turn over, whatever line it chose.
	handedOver := false
	for i := 0; i < 12 && !handedOver; i++ {
		view := g.IsolateFor(agentID)
		tm.step(view)
		handedOver = g.IsolateFor(agentID).CurrentPlayerID == humanID
	}
	assert.True(t, handedOver)
}

func TestTurnManagerWaitsOutOfTurn(t *testing.T) {
	g := game.NewUnitGameWithSeed(7)
	agentID := uuid.New()
	humanID := uuid.New()
	// The human takes the first seat and the first turn.
	require.True(t, g.AddPlayer(humanID))
	require.True(t, g.AddPlayer(agentID))
	completeSetupFor(t, g, humanID)

	tm := NewTurnManager(g, agentID)
	for i := 0; i <= game.ReserveCapacity; i++ {
		tm.step(g.IsolateFor(agentID))
	}

	// Setup is done and it is not the agent's turn: further steps change
	// nothing on the agent's side.
	before := g.IsolateFor(agentID)
	phaseBefore := before.You.Phase
	handBefore := len(before.You.Hand)
	tm.step(before)
	after := g.IsolateFor(agentID)
	assert.Equal(t, phaseBefore, after.You.Phase)
	assert.Equal(t, humanID, after.CurrentPlayerID)
	assert.Len(t, after.You.Hand, handBefore)
}
