// internal/game/view.go
package game

import (
	"github.com/google/uuid"

	"github.com/yamachris/unit-bolt-sub001/internal/models"
)

// OpponentView is the sanitized projection of the other player: hidden zones
// collapse to counts, everything on the board stays visible.
type OpponentView struct {
	ID           uuid.UUID               `json:"id"`
	Phase        Phase                   `json:"phase"`
	Turn         int                     `json:"turn"`
	HandCount    int                     `json:"handCount"`
	ReserveCount int                     `json:"reserveCount"`
	DeckCount    int                     `json:"deckCount"`
	DiscardPile  []*models.Card          `json:"discardPile"`
	Health       int                     `json:"health"`
	MaxHealth    int                     `json:"maxHealth"`
	Columns      map[models.Suit]*Column `json:"columns"`
	IsGameOver   bool                    `json:"isGameOver"`
}

// AttackOption pairs a card the viewer could attack with against the targets
// currently legal for it.
type AttackOption struct {
	CardID  uuid.UUID      `json:"cardId"`
	Card    models.Value   `json:"card"`
	Suit    models.Suit    `json:"suit"`
	Targets []AttackTarget `json:"targets"`
}

// PlayerView is one player's complete picture of the game: their own state in
// full, the opponent obfuscated, plus the shared attack context.
type PlayerView struct {
	GameID          uuid.UUID      `json:"gameId"`
	Status          GameStatus     `json:"status"`
	CurrentPlayerID uuid.UUID      `json:"currentPlayerId"`
	You             *PlayerState   `json:"you"`
	DeckCount       int            `json:"deckCount"`
	Opponent        *OpponentView  `json:"opponent,omitempty"`
	PendingAttack   *PendingAttack `json:"pendingAttack,omitempty"`
	AttackResult    *AttackResult  `json:"attackResult,omitempty"`
	AttackOptions   []AttackOption `json:"attackOptions,omitempty"`
}

// IsolateFor builds the state snapshot one player is allowed to see.
func (g *UnitGame) IsolateFor(viewerID uuid.UUID) *PlayerView {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.isolateLocked(viewerID)
}

// isolateLocked is IsolateFor with the lock already held.
func (g *UnitGame) isolateLocked(viewerID uuid.UUID) *PlayerView {
	you, _ := g.stateOf(viewerID)
	if you == nil {
		return nil
	}

	view := &PlayerView{
		GameID:       g.ID,
		Status:       g.Status,
		You:          you,
		DeckCount:    len(you.Deck),
		AttackResult: g.AttackResult,
	}
	if len(g.Players) > 0 {
		view.CurrentPlayerID = g.Players[g.CurrentPlayerIndex]
	}

	opp := g.opponentOf(viewerID)
	if opp != nil {
		view.Opponent = &OpponentView{
			ID:           opp.ID,
			Phase:        opp.Phase,
			Turn:         opp.Turn,
			HandCount:    len(opp.Hand),
			ReserveCount: len(opp.Reserve),
			DeckCount:    len(opp.Deck),
			DiscardPile:  opp.DiscardPile,
			Health:       opp.Health,
			MaxHealth:    opp.MaxHealth,
			Columns:      opp.Columns,
			IsGameOver:   opp.IsGameOver,
		}
	}

	if pa := g.PendingAttack; pa != nil {
		if pa.DefendingPlayerID == viewerID {
			view.PendingAttack = pa
		} else {
			// The attacker must not learn which blockers the defender holds.
			view.PendingAttack = &PendingAttack{
				AttackingPlayerID:  pa.AttackingPlayerID,
				DefendingPlayerID:  pa.DefendingPlayerID,
				AttackCard:         pa.AttackCard,
				AttackTarget:       pa.AttackTarget,
				WaitingForResponse: pa.WaitingForResponse,
			}
		}
	}

	if opp != nil && g.Status == StatusInProgress && g.PendingAttack == nil {
		view.AttackOptions = g.attackOptionsLocked(you, opp)
	}
	return view
}

// attackOptionsLocked enumerates every legal attack the viewer could declare
// right now. Assumes lock held.
func (g *UnitGame) attackOptionsLocked(you, opp *PlayerState) []AttackOption {
	var opts []AttackOption

	for _, suit := range models.StandardSuits {
		col := you.Columns[suit]
		if col == nil {
			continue
		}
		for _, c := range col.Cards {
			if c.IsJoker() || !attackRanks[c.Value] {
				continue
			}
			b := col.Button(c.Value)
			if b == nil || !b.Active || b.WasUsed {
				continue
			}
			targets := []AttackTarget{{Suit: suit, AttackType: AttackHealth}}
			if oc := opp.Columns[suit]; oc != nil && oc.FaceCards[models.ValueJack] != nil {
				targets = append(targets, AttackTarget{Suit: suit, AttackType: AttackUnit, TargetValue: models.ValueJack})
			}
			opts = append(opts, AttackOption{CardID: c.ID, Card: c.Value, Suit: suit, Targets: targets})
		}
		if col.HasArmedJack() {
			if oc := opp.Columns[suit]; oc != nil && len(oc.Cards) > 0 {
				fc := col.FaceCards[models.ValueJack]
				opts = append(opts, AttackOption{
					CardID:  fc.Card.ID,
					Card:    models.ValueJack,
					Suit:    suit,
					Targets: []AttackTarget{{Suit: suit, AttackType: AttackUnit}},
				})
			}
		}
	}

	jokerTargets := g.jokerTargetsLocked(opp)
	if len(jokerTargets) > 0 {
		for _, zone := range [][]*models.Card{you.Hand, you.Reserve} {
			for _, c := range zone {
				if c.IsJoker() {
					opts = append(opts, AttackOption{CardID: c.ID, Card: c.Value, Suit: c.Suit, Targets: jokerTargets})
				}
			}
		}
	}
	return opts
}

// jokerTargetsLocked lists every unit a Joker attack could destroy on the
// opponent's board. A, 7 and 10 are immune; the Queen never sits on the
// board. Assumes lock held.
func (g *UnitGame) jokerTargetsLocked(opp *PlayerState) []AttackTarget {
	var targets []AttackTarget
	for _, suit := range models.StandardSuits {
		col := opp.Columns[suit]
		if col == nil {
			continue
		}
		for _, c := range col.Cards {
			if !c.IsJoker() && jackTargetRanks[c.Value] {
				targets = append(targets, AttackTarget{Suit: suit, AttackType: AttackUnit, TargetValue: c.Value})
			}
		}
		for _, face := range []models.Value{models.ValueJack, models.ValueKing} {
			if col.FaceCards[face] != nil {
				targets = append(targets, AttackTarget{Suit: suit, AttackType: AttackUnit, TargetValue: face})
			}
		}
	}
	return targets
}
