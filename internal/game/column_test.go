// internal/game/column_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamachris/unit-bolt-sub001/internal/models"
)

func card(suit models.Suit, value models.Value) *models.Card {
	return &models.Card{ID: uuid.New(), Suit: suit, Value: value, Kind: models.KindStandard}
}

func joker() *models.Card {
	return &models.Card{ID: uuid.New(), Suit: models.SuitSpecial, Value: models.ValueJoker, Kind: models.KindJoker}
}

// fillColumn places ranks A..upTo of the column's suit in order, leaving the
// staging slot free for the test to use.
func fillColumn(t *testing.T, col *Column, upTo int) {
	t.Helper()
	if len(col.Cards) == 0 {
		require.True(t, col.PlaceAce(card(col.Suit, models.ValueAce), joker()))
		col.ReserveSuit = nil
	}
	for len(col.Cards) < upTo {
		rank := models.RankAt(len(col.Cards))
		require.True(t, col.PlaceSequenceCard(card(col.Suit, rank), 1), "placing %s", rank)
	}
}

func TestColumnSequenceOrder(t *testing.T) {
	col := NewColumn(models.SuitHearts)

	// The sequence cannot start without an Ace anchor.
	assert.False(t, col.PlaceSequenceCard(card(models.SuitHearts, models.ValueTwo), 1))

	require.True(t, col.PlaceAce(card(models.SuitHearts, models.ValueAce), joker()))
	assert.True(t, col.HasLuckyCard)
	require.NotNil(t, col.ReserveSuit)

	// Wrong rank and wrong suit are both no-ops.
	assert.False(t, col.PlaceSequenceCard(card(models.SuitHearts, models.ValueThree), 1))
	assert.False(t, col.PlaceSequenceCard(card(models.SuitSpades, models.ValueTwo), 1))

	assert.True(t, col.PlaceSequenceCard(card(models.SuitHearts, models.ValueTwo), 1))
	assert.Len(t, col.Cards, 2)
}

func TestPlaceAcePreconditions(t *testing.T) {
	col := NewColumn(models.SuitClubs)

	// No activator, no anchor.
	assert.False(t, col.PlaceAce(card(models.SuitClubs, models.ValueAce), nil))
	assert.False(t, col.PlaceAce(card(models.SuitClubs, models.ValueAce), card(models.SuitClubs, models.ValueFive)))
	assert.False(t, col.PlaceAce(card(models.SuitSpades, models.ValueAce), joker()))

	require.True(t, col.PlaceAce(card(models.SuitClubs, models.ValueAce), card(models.SuitHearts, models.ValueSeven)))
	// Double anchor is rejected.
	assert.False(t, col.PlaceAce(card(models.SuitClubs, models.ValueAce), joker()))
}

func TestJokerSubstituteForbiddenSlots(t *testing.T) {
	col := NewColumn(models.SuitHearts)

	// Slot 0 never takes a Joker.
	assert.False(t, col.PlaceSequenceCard(joker(), 1))

	fillColumn(t, col, 6)
	// Slot 6 is the 7's slot, Joker barred.
	assert.False(t, col.PlaceSequenceCard(joker(), 1))
	require.True(t, col.PlaceSequenceCard(card(models.SuitHearts, models.ValueSeven), 1))

	fillColumn(t, col, 9)
	// Slot 9 is the 10's slot, Joker barred.
	assert.False(t, col.PlaceSequenceCard(joker(), 1))
	require.True(t, col.PlaceSequenceCard(card(models.SuitHearts, models.ValueTen), 1))
	assert.True(t, col.IsComplete())
}

func TestJokerSubstituteSilencesCategory(t *testing.T) {
	col := NewColumn(models.SuitHearts)
	fillColumn(t, col, 2)

	// Joker stands in for the 3.
	require.True(t, col.PlaceSequenceCard(joker(), 1))
	assert.True(t, col.HasJokerSubstitute())
	assert.False(t, col.Button(models.ValueThree).Active)

	// A 10-card column with a substitute is not complete.
	fillColumn(t, col, 10)
	assert.False(t, col.IsComplete())
}

func TestReplaceJokerSubstitute(t *testing.T) {
	col := NewColumn(models.SuitDiamonds)
	fillColumn(t, col, 2)
	require.True(t, col.PlaceSequenceCard(joker(), 1))

	// The real rank must match the slot.
	_, ok := col.ReplaceJokerSubstitute(2, card(models.SuitDiamonds, models.ValueFour))
	assert.False(t, ok)
	_, ok = col.ReplaceJokerSubstitute(1, card(models.SuitDiamonds, models.ValueTwo))
	assert.False(t, ok)

	displaced, ok := col.ReplaceJokerSubstitute(2, card(models.SuitDiamonds, models.ValueThree))
	require.True(t, ok)
	assert.True(t, displaced.IsJoker())
	assert.False(t, col.HasJokerSubstitute())
	assert.True(t, col.Button(models.ValueThree).Active)
}

func TestInsertReserveSeven(t *testing.T) {
	col := NewColumn(models.SuitSpades)
	fillColumn(t, col, 5)

	require.True(t, col.StageActivator(card(models.SuitSpades, models.ValueSeven)))
	// Only legal at exactly six cards.
	assert.False(t, col.InsertReserveSeven(1))

	require.True(t, col.PlaceSequenceCard(card(models.SuitSpades, models.ValueSix), 1))
	require.True(t, col.InsertReserveSeven(1))
	assert.Nil(t, col.ReserveSuit)
	assert.Equal(t, models.ValueSeven, col.Cards[6].Value)
	// The 7's button guards the revolution path and never self-arms.
	assert.False(t, col.Button(models.ValueSeven).Active)
}

func TestInsertReserveSevenRequiresOwnSuit(t *testing.T) {
	col := NewColumn(models.SuitSpades)
	fillColumn(t, col, 6)
	require.True(t, col.StageActivator(card(models.SuitHearts, models.ValueSeven)))

	// A foreign 7 activates face cards but never joins the sequence.
	assert.False(t, col.InsertReserveSeven(1))
	assert.Len(t, col.Cards, 6)
	assert.NotNil(t, col.ReserveSuit)
}

func TestDestroyAndRestore(t *testing.T) {
	col := NewColumn(models.SuitHearts)
	fillColumn(t, col, 5)

	victim, ok := col.DestroyCardAt(2)
	require.True(t, ok)
	assert.Equal(t, models.ValueThree, victim.Value)
	assert.True(t, col.IsDestroyed)
	assert.Len(t, col.Cards, 4)
	// Buttons above the hole go dark.
	assert.False(t, col.Button(models.ValueFour).Active)
	assert.False(t, col.Button(models.ValueFive).Active)

	// Appending the next rank is refused while destroyed; only the missing
	// rank goes back, at its recorded index.
	assert.False(t, col.PlaceSequenceCard(card(models.SuitHearts, models.ValueSix), 1))
	require.True(t, col.PlaceSequenceCard(card(models.SuitHearts, models.ValueThree), 2))
	assert.False(t, col.IsDestroyed)
	assert.Equal(t, models.ValueThree, col.Cards[2].Value)
	assert.True(t, col.Button(models.ValueFour).Active)
	assert.True(t, col.Button(models.ValueFive).Active)
}

func TestFaceCardActivation(t *testing.T) {
	col := NewColumn(models.SuitClubs)

	jack := card(models.SuitClubs, models.ValueJack)
	require.True(t, col.ActivateFaceCard(jack, ActivatedBySeven))
	// A 7-activated Jack is not immediately attack-ready.
	assert.False(t, col.HasArmedJack())

	// One face slot per rank.
	assert.False(t, col.ActivateFaceCard(card(models.SuitClubs, models.ValueJack), ActivatedByJoker))

	king := card(models.SuitClubs, models.ValueKing)
	require.True(t, col.ActivateFaceCard(king, ActivatedBySacrifice))
	assert.True(t, col.HasActiveKing())

	removed := col.RemoveFaceCard(models.ValueKing)
	require.NotNil(t, removed)
	assert.False(t, col.HasActiveKing())
}

func TestJokerActivatedJackIsArmed(t *testing.T) {
	col := NewColumn(models.SuitHearts)
	require.True(t, col.ActivateFaceCard(card(models.SuitHearts, models.ValueJack), ActivatedByJoker))
	assert.True(t, col.HasArmedJack())
}

func TestJackRearmCycle(t *testing.T) {
	col := NewColumn(models.SuitSpades)
	require.True(t, col.ActivateFaceCard(card(models.SuitSpades, models.ValueJack), ActivatedBySeven))
	assert.False(t, col.HasArmedJack())

	// Never used: arms at the first turn boundary.
	col.RearmJackIfDue(2)
	assert.True(t, col.HasArmedJack())

	col.ConsumeAttackButton(models.ValueJack, 3)
	assert.False(t, col.HasArmedJack())

	// Odd gap: still spent.
	col.RearmJackIfDue(4)
	assert.False(t, col.HasArmedJack())

	// Positive even gap: re-armed.
	col.RearmJackIfDue(5)
	assert.True(t, col.HasArmedJack())
	assert.False(t, col.Button(models.ValueJack).WasUsed)
}

func TestConsumeAttackButtonDisablesCategory(t *testing.T) {
	col := NewColumn(models.SuitHearts)
	fillColumn(t, col, 9)

	require.True(t, col.Button(models.ValueEight).Active)
	require.True(t, col.Button(models.ValueNine).Active)

	// 8 and 9 share category 7.
	col.ConsumeAttackButton(models.ValueEight, 1)
	assert.True(t, col.Button(models.ValueEight).WasUsed)
	assert.False(t, col.Button(models.ValueNine).Active)
	assert.False(t, col.Button(models.ValueNine).WasUsed)
}

func TestResetForRevolution(t *testing.T) {
	col := NewColumn(models.SuitHearts)
	fillColumn(t, col, 10)
	require.True(t, col.StageActivator(joker()))
	require.True(t, col.ActivateFaceCard(card(models.SuitHearts, models.ValueKing), ActivatedBySacrifice))

	removed := col.ResetForRevolution()
	// 10 sequence cards plus the staged activator.
	assert.Len(t, removed, 11)
	assert.Empty(t, col.Cards)
	assert.False(t, col.HasLuckyCard)
	assert.Nil(t, col.ReserveSuit)
	// Face cards survive the reset.
	assert.True(t, col.HasActiveKing())
	for _, b := range col.AttackButtons {
		assert.False(t, b.Active)
		assert.False(t, b.WasUsed)
	}
}
