// internal/game/view_test.go
package game

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamachris/unit-bolt-sub001/internal/models"
)

func TestIsolateHidesOpponentZones(t *testing.T) {
	g, ids, _ := setupTestGame(t)
	opp, _ := g.stateOf(ids[1])

	view := g.IsolateFor(ids[0])
	require.NotNil(t, view)
	assert.Equal(t, ids[0], view.You.ID)
	require.NotNil(t, view.Opponent)

	// Hidden zones collapse to counts.
	assert.Equal(t, len(opp.Hand), view.Opponent.HandCount)
	assert.Equal(t, len(opp.Reserve), view.Opponent.ReserveCount)
	assert.Equal(t, len(opp.Deck), view.Opponent.DeckCount)

	// The wire form must not carry the opponent's cards either.
	raw, err := json.Marshal(view.Opponent)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), `"hand"`))
	assert.False(t, strings.Contains(string(raw), `"reserve"`))
}

func TestIsolateUnknownViewer(t *testing.T) {
	g, _, _ := setupTestGame(t)
	assert.Nil(t, g.IsolateFor(uuid.New()))
}

func TestIsolateStripsBlockersFromAttacker(t *testing.T) {
	g, ids, _, atk, def := setupAttackGame(t)
	fillColumn(t, atk.Columns[models.SuitHearts], 5)
	five := atk.Columns[models.SuitHearts].Cards[4]
	def.Hand = []*models.Card{joker()}

	require.True(t, g.DeclareAttack(ids[0], five.ID, healthTarget()))
	require.NotNil(t, g.PendingAttack)

	attackerView := g.IsolateFor(ids[0])
	require.NotNil(t, attackerView.PendingAttack)
	assert.Empty(t, attackerView.PendingAttack.BlockingCards)

	defenderView := g.IsolateFor(ids[1])
	require.NotNil(t, defenderView.PendingAttack)
	assert.Len(t, defenderView.PendingAttack.BlockingCards, 1)
}

func TestAttackOptionsEnumeration(t *testing.T) {
	g, ids, _, atk, def := setupAttackGame(t)
	fillColumn(t, atk.Columns[models.SuitHearts], 6)
	require.True(t, def.Columns[models.SuitHearts].ActivateFaceCard(
		card(models.SuitHearts, models.ValueJack), ActivatedByJoker))

	view := g.IsolateFor(ids[0])
	// A, 2..6 all carry live buttons.
	require.Len(t, view.AttackOptions, 6)

	for _, opt := range view.AttackOptions {
		assert.Equal(t, models.SuitHearts, opt.Suit)
		// Every option reaches health, and the opponent's Jack is a unit
		// target for all of them.
		require.Len(t, opt.Targets, 2)
		assert.Equal(t, AttackHealth, opt.Targets[0].AttackType)
		assert.Equal(t, models.ValueJack, opt.Targets[1].TargetValue)
	}
}

func TestAttackOptionsJokerTargets(t *testing.T) {
	g, ids, _, atk, def := setupAttackGame(t)
	jk := joker()
	atk.Hand = []*models.Card{jk}
	fillColumn(t, def.Columns[models.SuitClubs], 5)

	view := g.IsolateFor(ids[0])
	require.Len(t, view.AttackOptions, 1)
	opt := view.AttackOptions[0]
	assert.Equal(t, jk.ID, opt.CardID)
	// 2..5 are reachable; the Ace is immune.
	require.Len(t, opt.Targets, 4)
	for _, target := range opt.Targets {
		assert.Equal(t, AttackUnit, target.AttackType)
		assert.NotEqual(t, models.ValueAce, target.TargetValue)
	}
}

func TestAttackOptionsArmedJackNeedsTargets(t *testing.T) {
	g, ids, _, atk, def := setupAttackGame(t)
	require.True(t, atk.Columns[models.SuitSpades].ActivateFaceCard(
		card(models.SuitSpades, models.ValueJack), ActivatedByJoker))

	// Opponent column empty: the armed Jack has nothing to strike.
	view := g.IsolateFor(ids[0])
	assert.Empty(t, view.AttackOptions)

	fillColumn(t, def.Columns[models.SuitSpades], 2)
	view = g.IsolateFor(ids[0])
	require.Len(t, view.AttackOptions, 1)
	assert.Equal(t, models.ValueJack, view.AttackOptions[0].Card)
}

func TestAttackOptionsSuppressedDuringPendingAttack(t *testing.T) {
	g, ids, _, atk, def := setupAttackGame(t)
	fillColumn(t, atk.Columns[models.SuitHearts], 5)
	five := atk.Columns[models.SuitHearts].Cards[4]
	fillColumn(t, atk.Columns[models.SuitSpades], 2)
	def.Hand = []*models.Card{joker()}

	require.True(t, g.DeclareAttack(ids[0], five.ID, healthTarget()))

	view := g.IsolateFor(ids[0])
	assert.Empty(t, view.AttackOptions)
}
