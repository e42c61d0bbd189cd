// internal/ai/evaluator_test.go
package ai

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamachris/unit-bolt-sub001/internal/game"
	"github.com/yamachris/unit-bolt-sub001/internal/models"
)

func cardOf(suit models.Suit, value models.Value) *models.Card {
	return &models.Card{ID: uuid.New(), Suit: suit, Value: value, Kind: models.KindStandard}
}

func jokerCard() *models.Card {
	return &models.Card{ID: uuid.New(), Suit: models.SuitSpecial, Value: models.ValueJoker, Kind: models.KindJoker}
}

func emptyState() *game.PlayerState {
	ps := &game.PlayerState{
		ID:        uuid.New(),
		Health:    game.StartingHealth,
		MaxHealth: game.StartingHealth,
		Columns:   make(map[models.Suit]*game.Column, len(models.StandardSuits)),
	}
	for _, suit := range models.StandardSuits {
		ps.Columns[suit] = game.NewColumn(suit)
	}
	return ps
}

func emptyOpponent() *game.OpponentView {
	columns := make(map[models.Suit]*game.Column, len(models.StandardSuits))
	for _, suit := range models.StandardSuits {
		columns[suit] = game.NewColumn(suit)
	}
	return &game.OpponentView{
		ID:        uuid.New(),
		Health:    game.StartingHealth,
		MaxHealth: game.StartingHealth,
		Columns:   columns,
	}
}

func testView() *game.PlayerView {
	return &game.PlayerView{
		You:      emptyState(),
		Opponent: emptyOpponent(),
	}
}

// fillSuit builds ranks A..upTo into a column.
func fillSuit(t *testing.T, col *game.Column, upTo int) {
	t.Helper()
	require.True(t, col.PlaceAce(cardOf(col.Suit, models.ValueAce), jokerCard()))
	col.ReserveSuit = nil
	for len(col.Cards) < upTo {
		rank := models.RankAt(len(col.Cards))
		require.True(t, col.PlaceSequenceCard(cardOf(col.Suit, rank), 1), "placing %s", rank)
	}
}

func TestEvaluateBalancedPositionIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Evaluate(testView()))
	assert.Equal(t, 0.0, Evaluate(nil))
}

func TestEvaluateHealthDifference(t *testing.T) {
	view := testView()
	view.Opponent.Health = 10
	assert.InDelta(t, 100, Evaluate(view), 0.001)

	view.You.Health = 5
	assert.InDelta(t, -50, Evaluate(view), 0.001)
}

func TestEvaluateColumnProgress(t *testing.T) {
	view := testView()
	fillSuit(t, view.You.Columns[models.SuitHearts], 5)
	// 50 progress scaled to a 5-point weight.
	assert.InDelta(t, 2.5, Evaluate(view), 0.001)
}

func TestEvaluatePrimedColumnBonus(t *testing.T) {
	view := testView()
	col := view.You.Columns[models.SuitHearts]
	fillSuit(t, col, 6)
	assert.InDelta(t, 3.0, Evaluate(view), 0.001)

	// Priming adds 20 progress points: 60 -> 80, weighted to 4.
	require.True(t, col.StageActivator(cardOf(models.SuitHearts, models.ValueSeven)))
	assert.InDelta(t, 4.0, Evaluate(view), 0.001)
}

func TestEvaluateRevolutionReady(t *testing.T) {
	view := testView()
	fillSuit(t, view.You.Columns[models.SuitSpades], 9)
	// 90 progress (4.5 weighted) plus the 100-point detonation bonus.
	assert.InDelta(t, 104.5, Evaluate(view), 0.001)
}

func TestEvaluateJokerHoleSpoilsRevolution(t *testing.T) {
	view := testView()
	col := view.You.Columns[models.SuitSpades]
	fillSuit(t, col, 7)
	require.True(t, col.PlaceSequenceCard(jokerCard(), 1))
	require.True(t, col.PlaceSequenceCard(cardOf(models.SuitSpades, models.ValueNine), 1))

	// Nine cards deep but holed: no detonation bonus.
	assert.Less(t, Evaluate(view), 10.0)
}

func TestEvaluateKingAndThreat(t *testing.T) {
	view := testView()
	require.True(t, view.You.Columns[models.SuitClubs].ActivateFaceCard(
		cardOf(models.SuitClubs, models.ValueKing), game.ActivatedBySacrifice))
	assert.InDelta(t, 15, Evaluate(view), 0.001)

	fillSuit(t, view.Opponent.Columns[models.SuitHearts], 7)
	assert.InDelta(t, 5, Evaluate(view), 0.001)
}
