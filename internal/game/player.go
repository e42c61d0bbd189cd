// internal/game/player.go
package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/yamachris/unit-bolt-sub001/internal/models"
)

// Phase is the per-player turn phase.
type Phase string

const (
	PhaseSetup   Phase = "SETUP"
	PhaseDiscard Phase = "DISCARD"
	PhaseDraw    Phase = "DRAW"
	PhasePlay    Phase = "PLAY"
)

// Message is one entry of a player's in-game log.
type Message struct {
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// PlayerState is everything one player owns: their deck, zones, columns,
// health, phase flags and message log.
type PlayerState struct {
	ID    uuid.UUID `json:"id"`
	Phase Phase     `json:"phase"`
	Turn  int       `json:"turn"`

	Deck        []*models.Card `json:"-"`
	Hand        []*models.Card `json:"hand"`
	Reserve     []*models.Card `json:"reserve"`
	DiscardPile []*models.Card `json:"discardPile"`

	Health    int `json:"health"`
	MaxHealth int `json:"maxHealth"`

	HasDiscarded    bool `json:"hasDiscarded"`
	HasDrawn        bool `json:"hasDrawn"`
	HasPlayedAction bool `json:"hasPlayedAction"`
	CanEndTurn      bool `json:"canEndTurn"`

	StrategicShufflesUsed bool `json:"hasUsedFirstStrategicShuffle"`
	StrategicShuffleCount int  `json:"strategicShuffleCount"`

	Columns        map[models.Suit]*Column `json:"columns"`
	BlockedColumns []models.Suit           `json:"blockedColumns"`
	SelectedCards  []uuid.UUID             `json:"selectedCards,omitempty"`

	ShowRevolutionPopup bool `json:"showRevolutionPopup"`
	ShowBlockPopup      bool `json:"showBlockPopup"`

	IsGameOver     bool      `json:"isGameOver"`
	Winner         uuid.UUID `json:"winner,omitempty"`
	GameOverReason string    `json:"gameOverReason,omitempty"`

	StartAt  time.Time `json:"startAt,omitempty"`
	Messages []Message `json:"messages"`
}

// NewPlayerState deals a fresh 54-card deck, shuffles it and deals the
// opening hand. The player begins in SETUP and must move two cards to the
// reserve before the game proper starts.
func NewPlayerState(id uuid.UUID, r *rand.Rand) *PlayerState {
	deck := models.NewDeck()
	models.ShuffleDeck(deck, r)

	ps := &PlayerState{
		ID:          id,
		Phase:       PhaseSetup,
		Turn:        1,
		Deck:        deck,
		Hand:        []*models.Card{},
		Reserve:     []*models.Card{},
		DiscardPile: []*models.Card{},
		Health:      StartingHealth,
		MaxHealth:   StartingHealth,
		Columns:     make(map[models.Suit]*Column, len(models.StandardSuits)),
	}
	for _, suit := range models.StandardSuits {
		ps.Columns[suit] = NewColumn(suit)
	}
	for i := 0; i < InitialDealCount; i++ {
		if c := ps.drawFromDeck(); c != nil {
			ps.Hand = append(ps.Hand, c)
		}
	}
	return ps
}

// drawFromDeck pops the top card, or nil when the deck is exhausted.
func (ps *PlayerState) drawFromDeck() *models.Card {
	if len(ps.Deck) == 0 {
		return nil
	}
	c := ps.Deck[0]
	ps.Deck = ps.Deck[1:]
	return c
}

// findInHand returns the hand index of a card, or -1.
func (ps *PlayerState) findInHand(cardID uuid.UUID) int {
	for i, c := range ps.Hand {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

// findInReserve returns the reserve index of a card, or -1.
func (ps *PlayerState) findInReserve(cardID uuid.UUID) int {
	for i, c := range ps.Reserve {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

// takeFromHandOrReserve removes and returns a card the player holds in
// either zone. Returns nil if the card is not owned.
func (ps *PlayerState) takeFromHandOrReserve(cardID uuid.UUID) *models.Card {
	if i := ps.findInHand(cardID); i >= 0 {
		c := ps.Hand[i]
		ps.Hand = append(ps.Hand[:i], ps.Hand[i+1:]...)
		return c
	}
	if i := ps.findInReserve(cardID); i >= 0 {
		c := ps.Reserve[i]
		ps.Reserve = append(ps.Reserve[:i], ps.Reserve[i+1:]...)
		return c
	}
	return nil
}

// cardByID looks a card up in hand or reserve without removing it.
func (ps *PlayerState) cardByID(cardID uuid.UUID) *models.Card {
	if i := ps.findInHand(cardID); i >= 0 {
		return ps.Hand[i]
	}
	if i := ps.findInReserve(cardID); i >= 0 {
		return ps.Reserve[i]
	}
	return nil
}

// moveToReserve stages one hand card into the reserve during SETUP.
func (ps *PlayerState) moveToReserve(cardID uuid.UUID) bool {
	if ps.Phase != PhaseSetup || len(ps.Reserve) >= ReserveCapacity {
		return false
	}
	i := ps.findInHand(cardID)
	if i < 0 {
		return false
	}
	c := ps.Hand[i]
	ps.Hand = append(ps.Hand[:i], ps.Hand[i+1:]...)
	ps.Reserve = append(ps.Reserve, c)
	return true
}

// completeSetup transitions SETUP -> DISCARD once the reserve is full.
func (ps *PlayerState) completeSetup() bool {
	if ps.Phase != PhaseSetup || len(ps.Reserve) != ReserveCapacity {
		return false
	}
	ps.Phase = PhaseDiscard
	return true
}

// discard moves one card from hand or reserve to the discard pile and
// advances DISCARD -> DRAW.
func (ps *PlayerState) discard(cardID uuid.UUID) bool {
	if ps.Phase != PhaseDiscard || ps.HasDiscarded {
		return false
	}
	c := ps.takeFromHandOrReserve(cardID)
	if c == nil {
		return false
	}
	ps.DiscardPile = append(ps.DiscardPile, c)
	ps.HasDiscarded = true
	ps.Phase = PhaseDraw
	return true
}

// drawUp refills hand to 5 then reserve to 2 and advances DRAW -> PLAY.
func (ps *PlayerState) drawUp() bool {
	if ps.Phase != PhaseDraw || ps.HasDrawn {
		return false
	}
	for len(ps.Hand) < HandTarget {
		c := ps.drawFromDeck()
		if c == nil {
			break
		}
		ps.Hand = append(ps.Hand, c)
	}
	for len(ps.Reserve) < ReserveCapacity {
		c := ps.drawFromDeck()
		if c == nil {
			break
		}
		ps.Reserve = append(ps.Reserve, c)
	}
	ps.HasDrawn = true
	ps.Phase = PhasePlay
	return true
}

// strategicShuffle folds hand, discard pile and deck back together, deals a
// fresh 5-card hand and fast-forwards the phase flags so the player can act
// immediately. Legal only in DISCARD phase before anything else happened,
// and at most twice per game.
func (ps *PlayerState) strategicShuffle(r *rand.Rand) bool {
	if ps.Phase != PhaseDiscard || ps.HasDiscarded || ps.HasDrawn || ps.HasPlayedAction {
		return false
	}
	if ps.StrategicShuffleCount >= MaxStrategicShuffles {
		return false
	}
	ps.Deck = append(ps.Deck, ps.Hand...)
	ps.Deck = append(ps.Deck, ps.DiscardPile...)
	ps.Hand = []*models.Card{}
	ps.DiscardPile = []*models.Card{}
	models.ShuffleDeck(ps.Deck, r)
	for len(ps.Hand) < HandTarget {
		c := ps.drawFromDeck()
		if c == nil {
			break
		}
		ps.Hand = append(ps.Hand, c)
	}
	ps.StrategicShuffleCount++
	ps.StrategicShufflesUsed = true
	ps.HasDiscarded = true
	ps.HasDrawn = true
	ps.Phase = PhasePlay
	return true
}

// beginTurn resets the per-turn flags and picks the opening phase: DISCARD,
// or DRAW when hand+reserve already total 7.
func (ps *PlayerState) beginTurn() {
	ps.HasDiscarded = false
	ps.HasDrawn = false
	ps.HasPlayedAction = false
	ps.CanEndTurn = false
	ps.SelectedCards = nil
	ps.BlockedColumns = nil
	if len(ps.Hand)+len(ps.Reserve) >= HandTarget+ReserveCapacity {
		ps.Phase = PhaseDraw
	} else {
		ps.Phase = PhaseDiscard
	}
}

// heal raises health up to the cap.
func (ps *PlayerState) heal(amount int) {
	ps.Health += amount
	if ps.Health > ps.MaxHealth {
		ps.Health = ps.MaxHealth
	}
}

// applyDamage lowers health, clamping at zero. Returns true when the player
// is dead.
func (ps *PlayerState) applyDamage(amount int) bool {
	ps.Health -= amount
	if ps.Health < 0 {
		ps.Health = 0
	}
	return ps.Health == 0
}

// addMessage appends one entry to the player's log.
func (ps *PlayerState) addMessage(msgType, text string) {
	ps.Messages = append(ps.Messages, Message{
		Type:      msgType,
		Text:      text,
		Timestamp: time.Now(),
	})
}

// availableBlockers lists the cards this player could block an attack on
// `suit` with: any undamaged 7 sitting in that suit's column (sequence or
// staging slot), plus any Joker in hand or reserve. Jokers are excluded
// when the incoming attack is itself a Joker.
func (ps *PlayerState) availableBlockers(suit models.Suit, attackIsJoker bool) []*models.Card {
	var blockers []*models.Card
	if col := ps.Columns[suit]; col != nil {
		for _, c := range col.Cards {
			if c.Value == models.ValueSeven && !c.IsJoker() && !c.HasDefended {
				blockers = append(blockers, c)
			}
		}
		if rs := col.ReserveSuit; rs != nil && rs.Value == models.ValueSeven && !rs.HasDefended {
			blockers = append(blockers, rs)
		}
	}
	if !attackIsJoker {
		for _, c := range ps.Hand {
			if c.IsJoker() {
				blockers = append(blockers, c)
			}
		}
		for _, c := range ps.Reserve {
			if c.IsJoker() {
				blockers = append(blockers, c)
			}
		}
	}
	return blockers
}
