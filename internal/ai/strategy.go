// internal/ai/strategy.go
package ai

import (
	"github.com/google/uuid"

	"github.com/yamachris/unit-bolt-sub001/internal/game"
	"github.com/yamachris/unit-bolt-sub001/internal/models"
)

// Strategy turns a PlayerView into the next action. It is stateless: every
// decision re-reads the view, so a failed or raced action simply produces a
// fresh decision on the next step.
type Strategy struct{}

// keepPriority ranks how much a card is worth holding on to. Jokers and the
// column anchors outrank everything; plain numerics are worth roughly their
// face value.
func keepPriority(c *models.Card) int {
	switch c.Value {
	case models.ValueJoker:
		return 90
	case models.ValueAce:
		return 80
	case models.ValueSeven:
		return 70
	case models.ValueKing:
		return 60
	case models.ValueQueen:
		return 55
	case models.ValueJack:
		return 50
	case models.ValueTen:
		return 45
	case models.ValueNine:
		return 40
	case models.ValueEight:
		return 35
	default:
		return models.NumericValue(c.Value)
	}
}

// ChooseReserveCards picks the two cards to park in the reserve during SETUP:
// the two the agent least wants in its working hand.
func (s *Strategy) ChooseReserveCards(view *game.PlayerView) []uuid.UUID {
	hand := append([]*models.Card{}, view.You.Hand...)
	picks := make([]uuid.UUID, 0, game.ReserveCapacity)
	for len(picks) < game.ReserveCapacity && len(hand) > 0 {
		worst := 0
		for i, c := range hand {
			if keepPriority(c) < keepPriority(hand[worst]) {
				worst = i
			}
		}
		picks = append(picks, hand[worst].ID)
		hand = append(hand[:worst], hand[worst+1:]...)
	}
	return picks
}

// ChooseDiscard picks the least valuable card that is not immediately
// playable.
func (s *Strategy) ChooseDiscard(view *game.PlayerView) (uuid.UUID, bool) {
	var worst *models.Card
	for _, zone := range [][]*models.Card{view.You.Hand, view.You.Reserve} {
		for _, c := range zone {
			if s.playableNow(view, c) {
				continue
			}
			if worst == nil || keepPriority(c) < keepPriority(worst) {
				worst = c
			}
		}
	}
	if worst == nil {
		// Everything is playable: give up the cheapest card anyway.
		for _, zone := range [][]*models.Card{view.You.Hand, view.You.Reserve} {
			for _, c := range zone {
				if worst == nil || keepPriority(c) < keepPriority(worst) {
					worst = c
				}
			}
		}
	}
	if worst == nil {
		return uuid.Nil, false
	}
	return worst.ID, true
}

// playableNow reports whether a card could land on the board this turn.
func (s *Strategy) playableNow(view *game.PlayerView, c *models.Card) bool {
	if c.IsJoker() || c.Value == models.ValueQueen {
		return true
	}
	if c.Value == models.ValueJack || c.Value == models.ValueKing {
		col := view.You.Columns[c.Suit]
		return col != nil && col.FaceCards[c.Value] == nil
	}
	col := view.You.Columns[c.Suit]
	if col == nil {
		return false
	}
	if c.Value == models.ValueAce {
		return !col.HasLuckyCard
	}
	if len(col.Cards) < len(models.SequenceRanks) && models.RankAt(len(col.Cards)) == c.Value {
		return true
	}
	if c.Value == models.ValueSeven && col.ReserveSuit == nil {
		return true
	}
	return false
}

// ChoosePlayAction walks the decision ladder for the PLAY phase: detonate a
// ready revolution, keep building, spend a special card, attack, and finally
// give up the action. The boolean is false only when even skipping is
// impossible.
func (s *Strategy) ChoosePlayAction(view *game.PlayerView) (models.GameAction, bool) {
	if act, ok := s.revolutionMove(view); ok {
		return act, true
	}
	if act, ok := s.buildMove(view); ok {
		return act, true
	}
	if act, ok := s.specialMove(view); ok {
		return act, true
	}
	if act, ok := s.attackMove(view); ok {
		return act, true
	}
	return models.GameAction{ActionType: "action_skip"}, true
}

// revolutionMove plays the 10 onto a nine-card Joker-free column.
func (s *Strategy) revolutionMove(view *game.PlayerView) (models.GameAction, bool) {
	for _, suit := range models.StandardSuits {
		col := view.You.Columns[suit]
		if col == nil || len(col.Cards) != 9 || col.HasJokerSubstitute() {
			continue
		}
		if ten := s.findCard(view, suit, models.ValueTen); ten != nil {
			return placeAction(suit, ten.ID), true
		}
	}
	return models.GameAction{}, false
}

// buildMove advances the first suit that can make sequence progress: anchor
// with an Ace, splice a destroyed rank back, slide the staged 7 into slot 6,
// or play the next expected rank.
func (s *Strategy) buildMove(view *game.PlayerView) (models.GameAction, bool) {
	for _, suit := range models.StandardSuits {
		col := view.You.Columns[suit]
		if col == nil {
			continue
		}

		if !col.HasLuckyCard && len(col.Cards) == 0 {
			ace := s.findCard(view, suit, models.ValueAce)
			activator := s.findActivator(view)
			if ace != nil && activator != nil {
				return placeAction(suit, ace.ID, activator.ID), true
			}
			continue
		}

		if col.IsDestroyed {
			for _, slot := range col.DestroyedCards {
				if c := s.findCard(view, suit, slot.Card.Value); c != nil {
					return placeAction(suit, c.ID), true
				}
			}
		}

		if len(col.Cards) == 6 && col.ReserveSuit != nil &&
			col.ReserveSuit.Value == models.ValueSeven && col.ReserveSuit.Suit == suit {
			return placeAction(suit), true
		}

		if len(col.Cards) < len(models.SequenceRanks) {
			next := models.RankAt(len(col.Cards))
			if c := s.findCard(view, suit, next); c != nil {
				return placeAction(suit, c.ID), true
			}
		}
	}
	return models.GameAction{}, false
}

// specialMove spends a Queen on healing below half health, or raises a King
// over a suit the opponent is far along in.
func (s *Strategy) specialMove(view *game.PlayerView) (models.GameAction, bool) {
	you := view.You

	if you.Health*2 < you.MaxHealth {
		if queen := s.findAnywhere(view, models.ValueQueen); queen != nil {
			if burn := s.sacrificeFodder(view, game.QueenSacrificeCost, queen.ID); burn != nil {
				return models.GameAction{ActionType: "action_sacrifice", Payload: map[string]interface{}{
					"cardId":       queen.ID.String(),
					"sacrificeIds": idStrings(burn),
				}}, true
			}
		}
	}

	if view.Opponent != nil {
		for _, suit := range models.StandardSuits {
			oppCol := view.Opponent.Columns[suit]
			if oppCol == nil || len(oppCol.Cards) < 7 {
				continue
			}
			col := you.Columns[suit]
			if col == nil || col.HasActiveKing() {
				continue
			}
			king := s.findCard(view, suit, models.ValueKing)
			if king == nil {
				continue
			}
			if activator := s.findActivator(view); activator != nil {
				return placeAction(suit, king.ID, activator.ID), true
			}
			if burn := s.sacrificeFodder(view, game.KingSacrificeCost, king.ID); burn != nil {
				return models.GameAction{ActionType: "action_sacrifice", Payload: map[string]interface{}{
					"cardId":       king.ID.String(),
					"sacrificeIds": idStrings(burn),
				}}, true
			}
		}
	}
	return models.GameAction{}, false
}

// attackMove picks from the server-computed attack options: an armed Jack
// first, then the hardest-hitting health attack. Jokers stay in hand unless
// they can break a seven-card column.
func (s *Strategy) attackMove(view *game.PlayerView) (models.GameAction, bool) {
	var best *game.AttackOption
	var bestTarget game.AttackTarget
	bestScore := 0

	for i := range view.AttackOptions {
		opt := &view.AttackOptions[i]
		for _, t := range opt.Targets {
			score := 0
			switch {
			case opt.Card == models.ValueJack:
				score = 20
			case opt.Card == models.ValueJoker:
				if view.Opponent != nil {
					if oc := view.Opponent.Columns[t.Suit]; oc != nil && len(oc.Cards) >= 7 {
						score = 30
					}
				}
			case t.AttackType == game.AttackHealth:
				score = models.NumericValue(opt.Card)
			case t.TargetValue == models.ValueJack:
				score = 15
			}
			if score > bestScore {
				bestScore = score
				best = opt
				bestTarget = t
			}
		}
	}
	if best == nil {
		return models.GameAction{}, false
	}
	return models.GameAction{ActionType: "action_attack", Payload: map[string]interface{}{
		"cardId":      best.CardID.String(),
		"targetSuit":  string(bestTarget.Suit),
		"attackType":  string(bestTarget.AttackType),
		"targetValue": string(bestTarget.TargetValue),
	}}, true
}

// ChooseBlock decides a block offer: spend a blocker only when low on health
// with a Joker in reach, or when the attacked column is too developed to
// lose. Joker first, undamaged 7 as fallback.
func (s *Strategy) ChooseBlock(view *game.PlayerView) (bool, uuid.UUID) {
	pa := view.PendingAttack
	if pa == nil || len(pa.BlockingCards) == 0 {
		return false, uuid.Nil
	}

	var joker, seven *models.Card
	for _, c := range pa.BlockingCards {
		if c.IsJoker() && joker == nil {
			joker = c
		}
		if c.Value == models.ValueSeven && !c.IsJoker() && seven == nil {
			seven = c
		}
	}

	colAtRisk := false
	if col := view.You.Columns[pa.AttackTarget.Suit]; col != nil && len(col.Cards) >= 7 {
		colAtRisk = true
	}
	desperate := view.You.Health <= 5 && joker != nil

	if !desperate && !colAtRisk {
		return false, uuid.Nil
	}
	if joker != nil {
		return true, joker.ID
	}
	if seven != nil {
		return true, seven.ID
	}
	return false, uuid.Nil
}

// --- lookup helpers ---

func (s *Strategy) findCard(view *game.PlayerView, suit models.Suit, value models.Value) *models.Card {
	for _, zone := range [][]*models.Card{view.You.Hand, view.You.Reserve} {
		for _, c := range zone {
			if !c.IsJoker() && c.Suit == suit && c.Value == value {
				return c
			}
		}
	}
	return nil
}

func (s *Strategy) findAnywhere(view *game.PlayerView, value models.Value) *models.Card {
	for _, zone := range [][]*models.Card{view.You.Hand, view.You.Reserve} {
		for _, c := range zone {
			if c.Value == value {
				return c
			}
		}
	}
	return nil
}

// findActivator prefers a 7 over a Joker, keeping Jokers for attacks and
// blocks.
func (s *Strategy) findActivator(view *game.PlayerView) *models.Card {
	if c := s.findAnywhere(view, models.ValueSeven); c != nil {
		return c
	}
	return s.findAnywhere(view, models.ValueJoker)
}

// sacrificeFodder collects `count` low-value unit cards to burn, never
// touching the card being activated.
func (s *Strategy) sacrificeFodder(view *game.PlayerView, count int, exclude uuid.UUID) []*models.Card {
	var pool []*models.Card
	for _, zone := range [][]*models.Card{view.You.Hand, view.You.Reserve} {
		for _, c := range zone {
			if c.ID == exclude || c.IsJoker() || models.SequenceIndex(c.Value) < 0 {
				continue
			}
			pool = append(pool, c)
		}
	}
	if len(pool) < count {
		return nil
	}
	fodder := make([]*models.Card, 0, count)
	for len(fodder) < count {
		worst := 0
		for i, c := range pool {
			if keepPriority(c) < keepPriority(pool[worst]) {
				worst = i
			}
		}
		fodder = append(fodder, pool[worst])
		pool = append(pool[:worst], pool[worst+1:]...)
	}
	return fodder
}

func placeAction(suit models.Suit, cardIDs ...uuid.UUID) models.GameAction {
	ids := make([]interface{}, 0, len(cardIDs))
	for _, id := range cardIDs {
		ids = append(ids, id.String())
	}
	return models.GameAction{ActionType: "action_place_card", Payload: map[string]interface{}{
		"suit":    string(suit),
		"cardIds": ids,
	}}
}

func idStrings(cards []*models.Card) []interface{} {
	out := make([]interface{}, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID.String())
	}
	return out
}
