// internal/game/column.go
package game

import (
	"github.com/yamachris/unit-bolt-sub001/internal/models"
)

// FaceActivation records how a Jack or King was unlocked. A Joker-activated
// Jack is attack-ready immediately; a 7-activated Jack is not.
type FaceActivation string

const (
	ActivatedByJoker     FaceActivation = "JOKER"
	ActivatedBySeven     FaceActivation = "SEVEN"
	ActivatedBySacrifice FaceActivation = "SACRIFICE"
)

// FaceCard is a Jack or King standing beside the sequence, tagged with the
// activator that unlocked it.
type FaceCard struct {
	Card        *models.Card   `json:"card"`
	ActivatedBy FaceActivation `json:"activatedBy"`
}

// AttackButton is one of the 12 per-column buttons. A button arms when its
// rank lands in the sequence (attack ranks only) and is spent when the rank
// is used as an attack card.
type AttackButton struct {
	Rank         models.Value `json:"id"`
	Category     int          `json:"category"`
	Active       bool         `json:"active"`
	WasUsed      bool         `json:"wasUsed"`
	UsedTurn     int          `json:"usedTurn,omitempty"`
	InsertedTurn int          `json:"insertedTurn,omitempty"`
}

// DestroyedSlot remembers a card a Joker attack ripped out of the sequence,
// so its rank can be spliced back at the same index later.
type DestroyedSlot struct {
	Card  *models.Card `json:"card"`
	Index int          `json:"index"`
}

// Column is one suit's 10-slot ascending sequence plus its face-card and
// activator slots. Invariant: Cards read left to right is a strict prefix of
// A..10, modulo Joker substitution at any index except 0, 6 and 9.
type Column struct {
	Suit           models.Suit                `json:"suit"`
	Cards          []*models.Card             `json:"cards"`
	HasLuckyCard   bool                       `json:"hasLuckyCard"`
	ReserveSuit    *models.Card               `json:"reserveSuit,omitempty"`
	FaceCards      map[models.Value]*FaceCard `json:"faceCards"`
	AttackButtons  []*AttackButton            `json:"attackStatus"`
	LastAttackCard *models.Card               `json:"lastAttackCard,omitempty"`
	IsDestroyed    bool                       `json:"isDestroyed"`
	DestroyedCards []DestroyedSlot            `json:"destroyedCards,omitempty"`
}

// NewColumn builds an empty column for a suit with its 12 dormant buttons.
func NewColumn(suit models.Suit) *Column {
	buttons := make([]*AttackButton, 0, len(buttonRanks))
	for _, rank := range buttonRanks {
		buttons = append(buttons, &AttackButton{
			Rank:     rank,
			Category: attackCategories[rank],
		})
	}
	return &Column{
		Suit:          suit,
		Cards:         []*models.Card{},
		FaceCards:     make(map[models.Value]*FaceCard),
		AttackButtons: buttons,
	}
}

// Button returns the button for a rank, or nil.
func (col *Column) Button(rank models.Value) *AttackButton {
	for _, b := range col.AttackButtons {
		if b.Rank == rank {
			return b
		}
	}
	return nil
}

// HasJokerSubstitute reports whether any sequence slot holds a Joker.
func (col *Column) HasJokerSubstitute() bool {
	for _, c := range col.Cards {
		if c.IsJoker() {
			return true
		}
	}
	return false
}

// IsComplete reports a 10-card Joker-free sequence, the revolution trigger.
func (col *Column) IsComplete() bool {
	return len(col.Cards) == 10 && !col.HasJokerSubstitute()
}

// nextExpectedRank is the rank the next appended card must carry.
func (col *Column) nextExpectedRank() (models.Value, bool) {
	if len(col.Cards) >= len(models.SequenceRanks) {
		return "", false
	}
	return models.RankAt(len(col.Cards)), true
}

// armButton arms the rank's button when the rank lands in the sequence.
// 7 and 10 never self-arm; the Jack goes through face-card activation.
func (col *Column) armButton(rank models.Value, turn int) {
	b := col.Button(rank)
	if b == nil {
		return
	}
	b.InsertedTurn = turn
	if attackRanks[rank] && !b.WasUsed {
		b.Active = true
	}
}

// setCategoryActive flips every unspent button of a category.
func (col *Column) setCategoryActive(category int, active bool) {
	for _, b := range col.AttackButtons {
		if b.Category == category && !b.WasUsed {
			b.Active = active
		}
	}
}

// ConsumeAttackButton spends the rank's button and disables its whole
// category for this column.
func (col *Column) ConsumeAttackButton(rank models.Value, turn int) {
	b := col.Button(rank)
	if b == nil {
		return
	}
	b.WasUsed = true
	b.Active = false
	b.UsedTurn = turn
	col.setCategoryActive(b.Category, false)
}

// PlaceSequenceCard appends a card to the sequence, or splices it back into
// a destroyed slot. Returns false (no mutation) on any precondition failure.
//
// A Joker may stand in for any open slot except 0, 6 and 9 and suppresses
// the buttons of the category it substitutes for.
func (col *Column) PlaceSequenceCard(card *models.Card, turn int) bool {
	if !card.IsJoker() && card.Suit != col.Suit {
		return false
	}

	// Restoration path: a previously destroyed rank goes back to its
	// recorded index, not to the end of the sequence.
	if col.IsDestroyed && !card.IsJoker() {
		for i, slot := range col.DestroyedCards {
			if slot.Card.Value == card.Value {
				if slot.Index > len(col.Cards) {
					return false
				}
				col.Cards = append(col.Cards[:slot.Index], append([]*models.Card{card}, col.Cards[slot.Index:]...)...)
				col.DestroyedCards = append(col.DestroyedCards[:i], col.DestroyedCards[i+1:]...)
				if len(col.DestroyedCards) == 0 {
					col.IsDestroyed = false
				}
				col.armButton(card.Value, turn)
				col.reactivateRanksAbove(card.Value)
				return true
			}
		}
		return false
	}

	expected, ok := col.nextExpectedRank()
	if !ok {
		return false
	}

	if card.IsJoker() {
		idx := len(col.Cards)
		if idx == 0 || idx == 6 || idx == 9 {
			return false
		}
		col.Cards = append(col.Cards, card)
		// The substitute silences the category of the rank it stands in for.
		col.setCategoryActive(attackCategories[expected], false)
		return true
	}

	if card.Value != expected {
		return false
	}
	col.Cards = append(col.Cards, card)
	col.armButton(card.Value, turn)
	return true
}

// ReplaceJokerSubstitute swaps the Joker at idx for the true rank card and
// reactivates that category's unspent buttons. The displaced Joker is
// returned to the caller.
func (col *Column) ReplaceJokerSubstitute(idx int, card *models.Card) (*models.Card, bool) {
	if idx < 0 || idx >= len(col.Cards) || !col.Cards[idx].IsJoker() {
		return nil, false
	}
	if card.Suit != col.Suit || card.Value != models.RankAt(idx) {
		return nil, false
	}
	joker := col.Cards[idx]
	col.Cards[idx] = card
	col.setCategoryActive(attackCategories[card.Value], true)
	return joker, true
}

// PlaceAce anchors the column: position 0, consumes one activator into the
// staging slot and marks the column lucky.
func (col *Column) PlaceAce(ace, activator *models.Card) bool {
	if col.HasLuckyCard || len(col.Cards) != 0 {
		return false
	}
	if ace.Suit != col.Suit || ace.Value != models.ValueAce {
		return false
	}
	if activator == nil || !activator.IsActivator() || col.ReserveSuit != nil {
		return false
	}
	col.Cards = append(col.Cards, ace)
	col.ReserveSuit = activator
	col.HasLuckyCard = true
	col.armButton(models.ValueAce, 0)
	return true
}

// StageActivator parks a 7 or Joker in the staging slot.
func (col *Column) StageActivator(card *models.Card) bool {
	if col.ReserveSuit != nil || card == nil || !card.IsActivator() {
		return false
	}
	col.ReserveSuit = card
	return true
}

// InsertReserveSeven moves the staged 7 into slot 6 when the sequence has
// exactly six cards, clearing the staging slot. The sequence is suit-pure:
// a foreign-suit 7 can activate face cards but never enters the column.
func (col *Column) InsertReserveSeven(turn int) bool {
	if col.ReserveSuit == nil || col.ReserveSuit.Value != models.ValueSeven || col.ReserveSuit.Suit != col.Suit {
		return false
	}
	if len(col.Cards) != 6 {
		return false
	}
	seven := col.ReserveSuit
	col.ReserveSuit = nil
	col.Cards = append(col.Cards, seven)
	col.armButton(models.ValueSeven, turn)
	return true
}

// ActivateFaceCard stores a Jack or King beside the sequence. A Jack armed
// by a Joker or sacrifice is attack-ready; a 7-activated Jack is not.
func (col *Column) ActivateFaceCard(face *models.Card, how FaceActivation) bool {
	if face == nil || face.Suit != col.Suit {
		return false
	}
	if face.Value != models.ValueJack && face.Value != models.ValueKing {
		return false
	}
	if col.FaceCards[face.Value] != nil {
		return false
	}
	col.FaceCards[face.Value] = &FaceCard{Card: face, ActivatedBy: how}
	if face.Value == models.ValueJack {
		b := col.Button(models.ValueJack)
		if b != nil {
			armed := how == ActivatedByJoker || how == ActivatedBySacrifice
			b.Active = armed
		}
	}
	return true
}

// RemoveFaceCard detaches and returns the face card of a rank, if present.
func (col *Column) RemoveFaceCard(rank models.Value) *models.Card {
	fc := col.FaceCards[rank]
	if fc == nil {
		return nil
	}
	delete(col.FaceCards, rank)
	if rank == models.ValueJack {
		if b := col.Button(models.ValueJack); b != nil {
			b.Active = false
		}
	}
	return fc.Card
}

// HasActiveKing reports an activated King guarding this suit.
func (col *Column) HasActiveKing() bool {
	return col.FaceCards[models.ValueKing] != nil
}

// HasArmedJack reports a Jack whose attack button is currently live.
func (col *Column) HasArmedJack() bool {
	if col.FaceCards[models.ValueJack] == nil {
		return false
	}
	b := col.Button(models.ValueJack)
	return b != nil && b.Active && !b.WasUsed
}

// DestroyCardAt removes the sequence card at idx for a Joker attack,
// records it for later restoration and deactivates the buttons of every
// rank above the destroyed one.
func (col *Column) DestroyCardAt(idx int) (*models.Card, bool) {
	if idx < 0 || idx >= len(col.Cards) {
		return nil, false
	}
	victim := col.Cards[idx]
	col.Cards = append(col.Cards[:idx], col.Cards[idx+1:]...)
	col.DestroyedCards = append(col.DestroyedCards, DestroyedSlot{Card: victim, Index: idx})
	col.IsDestroyed = true
	for _, b := range col.AttackButtons {
		if bi := models.SequenceIndex(b.Rank); bi > idx {
			b.Active = false
		}
	}
	return victim, true
}

// reactivateRanksAbove re-arms unspent attack-rank buttons above a restored
// rank, provided their card is actually back in the sequence.
func (col *Column) reactivateRanksAbove(restored models.Value) {
	from := models.SequenceIndex(restored)
	for _, c := range col.Cards {
		ci := models.SequenceIndex(c.Value)
		if ci > from && attackRanks[c.Value] {
			if b := col.Button(c.Value); b != nil && !b.WasUsed {
				b.Active = true
			}
		}
	}
}

// RearmJackIfDue re-arms a used Jack button once a positive even number of
// turns has passed since it was spent, or arms a never-used armed Jack that
// lost its button state. Called from endTurn for every column.
func (col *Column) RearmJackIfDue(currentTurn int) {
	fc := col.FaceCards[models.ValueJack]
	if fc == nil {
		return
	}
	b := col.Button(models.ValueJack)
	if b == nil || b.Active {
		return
	}
	if !b.WasUsed {
		// A 7-activated Jack starts unarmed but arms at the first turn
		// boundary it survives without being spent.
		b.Active = true
		return
	}
	gap := currentTurn - b.UsedTurn
	if gap > 0 && gap%JackRearmTurnGap == 0 {
		b.Active = true
		b.WasUsed = false
	}
}

// ResetForRevolution clears the sequence, staging slot and button state
// while keeping the face cards in place. The removed cards (sequence +
// staged activator) are returned for discarding.
func (col *Column) ResetForRevolution() []*models.Card {
	removed := make([]*models.Card, 0, len(col.Cards)+1)
	removed = append(removed, col.Cards...)
	if col.ReserveSuit != nil {
		removed = append(removed, col.ReserveSuit)
	}
	col.Cards = []*models.Card{}
	col.ReserveSuit = nil
	col.HasLuckyCard = false
	col.IsDestroyed = false
	col.DestroyedCards = nil
	col.LastAttackCard = nil
	for _, b := range col.AttackButtons {
		b.Active = false
		b.WasUsed = false
		b.UsedTurn = 0
		b.InsertedTurn = 0
	}
	return removed
}
