// internal/game/player_test.go
package game

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamachris/unit-bolt-sub001/internal/models"
)

func newTestPlayer(t *testing.T) *PlayerState {
	t.Helper()
	return NewPlayerState(uuid.New(), rand.New(rand.NewSource(7)))
}

func TestNewPlayerStateDeal(t *testing.T) {
	ps := newTestPlayer(t)
	assert.Equal(t, PhaseSetup, ps.Phase)
	assert.Len(t, ps.Hand, InitialDealCount)
	assert.Len(t, ps.Deck, 54-InitialDealCount)
	assert.Equal(t, StartingHealth, ps.Health)
	assert.Len(t, ps.Columns, 4)
}

func TestSetupFlow(t *testing.T) {
	ps := newTestPlayer(t)

	// Cannot finish setup before the reserve is full.
	assert.False(t, ps.completeSetup())

	require.True(t, ps.moveToReserve(ps.Hand[0].ID))
	require.True(t, ps.moveToReserve(ps.Hand[0].ID))
	assert.Len(t, ps.Reserve, ReserveCapacity)
	assert.Len(t, ps.Hand, InitialDealCount-ReserveCapacity)

	// Reserve is capped at two.
	assert.False(t, ps.moveToReserve(ps.Hand[0].ID))

	require.True(t, ps.completeSetup())
	assert.Equal(t, PhaseDiscard, ps.Phase)
}

func TestDiscardDrawCycle(t *testing.T) {
	ps := newTestPlayer(t)
	require.True(t, ps.moveToReserve(ps.Hand[0].ID))
	require.True(t, ps.moveToReserve(ps.Hand[0].ID))
	require.True(t, ps.completeSetup())

	// Discarding from the reserve is legal too.
	require.True(t, ps.discard(ps.Reserve[0].ID))
	assert.Equal(t, PhaseDraw, ps.Phase)
	assert.Len(t, ps.DiscardPile, 1)

	// Double discard is a no-op.
	assert.False(t, ps.discard(ps.Hand[0].ID))

	require.True(t, ps.drawUp())
	assert.Equal(t, PhasePlay, ps.Phase)
	assert.Len(t, ps.Hand, HandTarget)
	assert.Len(t, ps.Reserve, ReserveCapacity)
}

func TestBeginTurnPhaseSelection(t *testing.T) {
	ps := newTestPlayer(t)
	ps.Hand = ps.Hand[:3]
	ps.beginTurn()
	assert.Equal(t, PhaseDiscard, ps.Phase)

	ps.Hand = append(ps.Hand, ps.drawFromDeck(), ps.drawFromDeck())
	ps.Reserve = append(ps.Reserve, ps.drawFromDeck(), ps.drawFromDeck())
	ps.beginTurn()
	// Hand + reserve already at capacity: straight to DRAW.
	assert.Equal(t, PhaseDraw, ps.Phase)
}

func TestStrategicShuffleBudget(t *testing.T) {
	ps := newTestPlayer(t)
	require.True(t, ps.moveToReserve(ps.Hand[0].ID))
	require.True(t, ps.moveToReserve(ps.Hand[0].ID))
	require.True(t, ps.completeSetup())

	r := rand.New(rand.NewSource(11))
	require.True(t, ps.strategicShuffle(r))
	// The shuffle fast-forwards the turn into PLAY.
	assert.Equal(t, PhasePlay, ps.Phase)
	assert.Len(t, ps.Hand, HandTarget)
	assert.Empty(t, ps.DiscardPile)

	// Not twice in the same turn: the flags are already burned.
	assert.False(t, ps.strategicShuffle(r))

	// Shed a reserve card so the next turn opens in DISCARD.
	ps.DiscardPile = append(ps.DiscardPile, ps.Reserve[0])
	ps.Reserve = ps.Reserve[1:]
	ps.beginTurn()
	require.Equal(t, PhaseDiscard, ps.Phase)
	require.True(t, ps.strategicShuffle(r))

	// Third use exceeds the per-game budget.
	ps.Reserve = nil
	ps.beginTurn()
	require.Equal(t, PhaseDiscard, ps.Phase)
	assert.False(t, ps.strategicShuffle(r))
}

func TestStrategicShuffleOnlyBeforeActing(t *testing.T) {
	ps := newTestPlayer(t)
	require.True(t, ps.moveToReserve(ps.Hand[0].ID))
	require.True(t, ps.moveToReserve(ps.Hand[0].ID))
	require.True(t, ps.completeSetup())
	require.True(t, ps.discard(ps.Hand[0].ID))

	assert.False(t, ps.strategicShuffle(rand.New(rand.NewSource(1))))
}

func TestApplyDamageClampsAtZero(t *testing.T) {
	ps := newTestPlayer(t)
	assert.False(t, ps.applyDamage(19))
	assert.Equal(t, 1, ps.Health)
	assert.True(t, ps.applyDamage(10))
	assert.Equal(t, 0, ps.Health)
}

func TestHealCapsAtMax(t *testing.T) {
	ps := newTestPlayer(t)
	ps.applyDamage(2)
	ps.heal(JokerHealAmount)
	assert.Equal(t, ps.MaxHealth, ps.Health)
}

func TestAvailableBlockers(t *testing.T) {
	ps := newTestPlayer(t)
	col := ps.Columns[models.SuitHearts]
	fillColumn(t, col, 7)

	ps.Hand = []*models.Card{joker(), card(models.SuitHearts, models.ValueTwo)}
	ps.Reserve = []*models.Card{}

	blockers := ps.availableBlockers(models.SuitHearts, false)
	// The column 7 plus the hand Joker.
	require.Len(t, blockers, 2)

	// A Joker attack cannot be blocked by a Joker.
	blockers = ps.availableBlockers(models.SuitHearts, true)
	require.Len(t, blockers, 1)
	assert.Equal(t, models.ValueSeven, blockers[0].Value)

	// A spent 7 no longer defends.
	blockers[0].HasDefended = true
	assert.Empty(t, ps.availableBlockers(models.SuitHearts, true))
}

func TestAvailableBlockersStagedSeven(t *testing.T) {
	ps := newTestPlayer(t)
	ps.Hand = nil
	ps.Reserve = nil
	col := ps.Columns[models.SuitSpades]
	require.True(t, col.StageActivator(card(models.SuitSpades, models.ValueSeven)))

	blockers := ps.availableBlockers(models.SuitSpades, false)
	require.Len(t, blockers, 1)
	assert.Equal(t, models.ValueSeven, blockers[0].Value)
}
