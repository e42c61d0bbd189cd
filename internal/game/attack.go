// internal/game/attack.go
package game

import (
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/yamachris/unit-bolt-sub001/internal/models"
)

// AttackType distinguishes direct health attacks from unit destruction.
type AttackType string

const (
	AttackHealth AttackType = "health"
	AttackUnit   AttackType = "unit"
)

// attackKind is the internal classification of the attack card.
type attackKind int

const (
	attackNumber attackKind = iota
	attackJack
	attackJoker
)

// AttackTarget names what the attacker is aiming at.
type AttackTarget struct {
	Suit        models.Suit  `json:"suit"`
	AttackType  AttackType   `json:"attackType"`
	TargetValue models.Value `json:"targetValue,omitempty"`
}

// PendingAttack is an attack paused on the defender's block decision.
type PendingAttack struct {
	AttackingPlayerID  uuid.UUID      `json:"attackingPlayerId"`
	DefendingPlayerID  uuid.UUID      `json:"defendingPlayerId"`
	AttackCard         *models.Card   `json:"attackCard"`
	AttackTarget       AttackTarget   `json:"attackTarget"`
	BlockingCards      []*models.Card `json:"blockingCards"`
	WaitingForResponse bool           `json:"waitingForResponse"`

	kind attackKind
}

// AttackResult summarizes the last resolved attack for both views.
type AttackResult struct {
	AttackerID uuid.UUID    `json:"attackerId"`
	DefenderID uuid.UUID    `json:"defenderId"`
	AttackCard models.Value `json:"attackCard"`
	Blocked    bool         `json:"blocked"`
	Damage     int          `json:"damage"`
	Destroyed  int          `json:"destroyed"`
	Message    string       `json:"message"`
}

// DeclareAttack starts the two-phase protocol. The attack consumes the
// attacker's turn before anything resolves; if the defender has eligible
// blocking cards the resolution pauses on their decision.
//
// Attack cards are either a Joker held in hand/reserve, an armed Jack face
// card, or a sequence card whose attack button is live.
func (g *UnitGame) DeclareAttack(playerID, attackCardID uuid.UUID, target AttackTarget) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	ps, ok := g.inPlay(playerID)
	if !ok || ps.Phase != PhasePlay || ps.HasPlayedAction {
		return false
	}
	opp := g.opponentOf(playerID)
	if opp == nil {
		return false
	}

	card, kind, ok := g.locateAttackCard(ps, attackCardID)
	if !ok {
		return false
	}
	if !g.validateTarget(opp, card, kind, &target) {
		return false
	}

	// Spend the card before the turn rotates.
	switch kind {
	case attackJoker:
		ps.takeFromHandOrReserve(card.ID)
		ps.DiscardPile = append(ps.DiscardPile, card)
	case attackJack:
		ps.Columns[card.Suit].ConsumeAttackButton(models.ValueJack, ps.Turn)
		ps.Columns[card.Suit].LastAttackCard = card
	case attackNumber:
		ps.Columns[card.Suit].ConsumeAttackButton(card.Value, ps.Turn)
		ps.Columns[card.Suit].LastAttackCard = card
	}

	g.logAction(playerID, "attack_declared", map[string]interface{}{
		"card": card.Value, "targetSuit": target.Suit, "attackType": target.AttackType,
	})

	// The attack consumes the turn: rotate first, resolve after.
	g.endTurnLocked(ps)

	pending := &PendingAttack{
		AttackingPlayerID: playerID,
		DefendingPlayerID: opp.ID,
		AttackCard:        card,
		AttackTarget:      target,
		kind:              kind,
	}
	g.PendingAttack = pending
	g.fireEvent(GameEvent{Type: EventAttackDeclared, Payload: map[string]interface{}{
		"attackerId": playerID,
		"card":       card.Value,
		"targetSuit": target.Suit,
	}})

	blockers := opp.availableBlockers(target.Suit, kind == attackJoker)
	if len(blockers) > 0 {
		pending.BlockingCards = blockers
		pending.WaitingForResponse = true
		opp.ShowBlockPopup = true
		opp.addMessage("attack", fmt.Sprintf("Attaque %s en %s : voulez-vous bloquer ?", card.Value, target.Suit))
		g.fireEventToPlayer(opp.ID, GameEvent{Type: EventBlockOffer, Payload: map[string]interface{}{
			"attackCard": card.Value,
			"suit":       target.Suit,
			"blockers":   len(blockers),
		}})
		g.syncAll()
		return true
	}

	g.resolveAttackLocked()
	g.syncAll()
	return true
}

// RespondToBlock completes the protocol. Declining, or answering with an
// ineligible card, resolves the declared effects; blocking with a 7 burns
// its HasDefended flag, blocking with a Joker discards it — either way the
// effects are skipped entirely.
func (g *UnitGame) RespondToBlock(playerID uuid.UUID, willBlock bool, blockingCardID uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	pending := g.PendingAttack
	if g.Status != StatusInProgress || pending == nil || !pending.WaitingForResponse {
		return false
	}
	if pending.DefendingPlayerID != playerID {
		return false
	}
	defender, _ := g.stateOf(playerID)
	attacker, _ := g.stateOf(pending.AttackingPlayerID)
	if defender == nil || attacker == nil {
		return false
	}
	defender.ShowBlockPopup = false

	var blocker *models.Card
	if willBlock {
		for _, c := range pending.BlockingCards {
			if c.ID == blockingCardID {
				blocker = c
				break
			}
		}
	}

	if blocker == nil {
		// Declined (or picked a card that was never offered): resolve.
		pending.WaitingForResponse = false
		g.logAction(playerID, "block_declined", nil)
		g.resolveAttackLocked()
		g.syncAll()
		return true
	}

	if blocker.IsJoker() {
		defender.takeFromHandOrReserve(blocker.ID)
		defender.DiscardPile = append(defender.DiscardPile, blocker)
	} else {
		// A blocking 7 stays in place but is permanently spent.
		blocker.HasDefended = true
	}

	g.AttackResult = &AttackResult{
		AttackerID: pending.AttackingPlayerID,
		DefenderID: playerID,
		AttackCard: pending.AttackCard.Value,
		Blocked:    true,
		Message:    fmt.Sprintf("Attaque %s bloquée par %s", pending.AttackCard.Value, blocker.Value),
	}
	defender.addMessage("block", fmt.Sprintf("Vous bloquez l'attaque avec %s", blocker.Value))
	attacker.addMessage("block", fmt.Sprintf("Votre attaque %s a été bloquée", pending.AttackCard.Value))
	g.PendingAttack = nil
	g.logAction(playerID, "block_accepted", map[string]interface{}{"blocker": blocker.Value})
	g.fireEvent(GameEvent{Type: EventAttackResolved, Payload: map[string]interface{}{"blocked": true}})
	g.syncAll()
	return true
}

// locateAttackCard finds the card behind an attack declaration and
// classifies it. Assumes lock held.
func (g *UnitGame) locateAttackCard(ps *PlayerState, cardID uuid.UUID) (*models.Card, attackKind, bool) {
	// Joker from hand or reserve.
	if c := ps.cardByID(cardID); c != nil {
		if c.IsJoker() {
			return c, attackJoker, true
		}
		return nil, 0, false
	}
	for _, col := range ps.Columns {
		// Armed Jack face card.
		if fc := col.FaceCards[models.ValueJack]; fc != nil && fc.Card.ID == cardID {
			if col.HasArmedJack() {
				return fc.Card, attackJack, true
			}
			return nil, 0, false
		}
		// Sequence card with a live button.
		for _, c := range col.Cards {
			if c.ID != cardID {
				continue
			}
			b := col.Button(c.Value)
			if c.IsJoker() || b == nil || !b.Active || b.WasUsed || !attackRanks[c.Value] {
				return nil, 0, false
			}
			return c, attackNumber, true
		}
	}
	return nil, 0, false
}

// validateTarget normalizes and checks the declared target against the
// defender's board. Assumes lock held.
func (g *UnitGame) validateTarget(opp *PlayerState, card *models.Card, kind attackKind, target *AttackTarget) bool {
	switch kind {
	case attackJoker:
		target.AttackType = AttackUnit
		col := opp.Columns[target.Suit]
		if col == nil {
			return false
		}
		// Face cards are legal targets, the Queen never sits on the board.
		if target.TargetValue == models.ValueJack || target.TargetValue == models.ValueKing {
			return col.FaceCards[target.TargetValue] != nil
		}
		// A, 7 and 10 holders are immune.
		if !jackTargetRanks[target.TargetValue] {
			return false
		}
		for _, c := range col.Cards {
			if !c.IsJoker() && c.Value == target.TargetValue {
				return true
			}
		}
		return false

	case attackJack:
		// Suit-locked: the Jack only strikes its own suit.
		target.Suit = card.Suit
		target.AttackType = AttackUnit
		col := opp.Columns[card.Suit]
		return col != nil && len(col.Cards) > 0

	case attackNumber:
		if target.AttackType == AttackUnit {
			if target.TargetValue != models.ValueJack {
				return false
			}
			col := opp.Columns[card.Suit]
			target.Suit = card.Suit
			return col != nil && col.FaceCards[models.ValueJack] != nil
		}
		target.AttackType = AttackHealth
		target.Suit = card.Suit
		return true
	}
	return false
}

// resolveAttackLocked applies the declared effects. Assumes lock held and
// a non-nil PendingAttack.
func (g *UnitGame) resolveAttackLocked() {
	pending := g.PendingAttack
	g.PendingAttack = nil
	if pending == nil {
		log.WithField("game", g.ID).Warn("resolveAttack called with no pending attack")
		return
	}
	attacker, _ := g.stateOf(pending.AttackingPlayerID)
	defender, _ := g.stateOf(pending.DefendingPlayerID)
	if attacker == nil || defender == nil {
		return
	}

	result := &AttackResult{
		AttackerID: pending.AttackingPlayerID,
		DefenderID: pending.DefendingPlayerID,
		AttackCard: pending.AttackCard.Value,
	}

	switch pending.kind {
	case attackNumber:
		g.resolveNumberAttack(attacker, defender, pending, result)
	case attackJack:
		g.resolveJackAttack(attacker, defender, pending, result)
	case attackJoker:
		g.resolveJokerAttack(attacker, defender, pending, result)
	}

	g.AttackResult = result
	g.fireEvent(GameEvent{Type: EventAttackResolved, Payload: map[string]interface{}{
		"blocked":   result.Blocked,
		"damage":    result.Damage,
		"destroyed": result.Destroyed,
	}})

	if defender.Health == 0 && g.Status == StatusInProgress {
		g.endGameLocked(attacker.ID, "attack")
	}
}

// resolveNumberAttack handles A,2..6,8,9 attacks: direct damage, the King
// shield, or targeted Jack destruction. Assumes lock held.
func (g *UnitGame) resolveNumberAttack(attacker, defender *PlayerState, pending *PendingAttack, result *AttackResult) {
	card := pending.AttackCard

	if pending.AttackTarget.AttackType == AttackUnit {
		col := defender.Columns[card.Suit]
		if col == nil {
			return
		}
		if jack := col.RemoveFaceCard(models.ValueJack); jack != nil {
			defender.DiscardPile = append(defender.DiscardPile, jack)
			result.Destroyed = 1
			result.Message = fmt.Sprintf("Le Valet de %s est détruit", card.Suit)
			defender.addMessage("damage", result.Message)
			attacker.addMessage("attack", result.Message)
		}
		return
	}

	value := models.NumericValue(card.Value)
	oppCol := defender.Columns[card.Suit]
	if oppCol != nil && oppCol.HasActiveKing() {
		if value <= 6 {
			// The King absorbs the whole attack.
			result.Blocked = true
			result.Message = fmt.Sprintf("Le Roi de %s bloque l'attaque %s", card.Suit, card.Value)
			defender.addMessage("block", result.Message)
			attacker.addMessage("block", result.Message)
			return
		}
		// An 8 or 9 breaks through by felling the King instead.
		if king := oppCol.RemoveFaceCard(models.ValueKing); king != nil {
			defender.DiscardPile = append(defender.DiscardPile, king)
			result.Destroyed = 1
			result.Message = fmt.Sprintf("Le Roi de %s est détruit par le %s", card.Suit, card.Value)
			defender.addMessage("damage", result.Message)
			attacker.addMessage("attack", result.Message)
		}
		return
	}

	defender.applyDamage(value)
	result.Damage = value
	result.Message = fmt.Sprintf("Attaque %s : %d dégâts", card.Value, value)
	defender.addMessage("damage", result.Message)
	attacker.addMessage("attack", result.Message)
}

// resolveJackAttack strikes the highest eligible unit in the Jack's own
// suit. A Joker sitting above the target shields everything beneath it and
// disarms the Jack; a reachable ≤6 target costs the attacking Jack itself.
// Assumes lock held.
func (g *UnitGame) resolveJackAttack(attacker, defender *PlayerState, pending *PendingAttack, result *AttackResult) {
	suit := pending.AttackCard.Suit
	col := defender.Columns[suit]
	if col == nil || len(col.Cards) == 0 {
		return
	}

	targetIdx := -1
	for i := len(col.Cards) - 1; i >= 0; i-- {
		c := col.Cards[i]
		if !c.IsJoker() && jackTargetRanks[c.Value] {
			targetIdx = i
			break
		}
	}
	if targetIdx < 0 {
		result.Message = "Aucune cible pour le Valet"
		attacker.addMessage("attack", result.Message)
		return
	}
	// First Joker above the target is an unbroken barrier: the Jack
	// disarms with no destruction.
	for i := targetIdx + 1; i < len(col.Cards); i++ {
		if col.Cards[i].IsJoker() {
			result.Message = fmt.Sprintf("Le Joker protège la colonne %s : le Valet est désarmé", suit)
			attacker.addMessage("attack", result.Message)
			defender.addMessage("block", result.Message)
			return
		}
	}

	destroyed := col.Cards[targetIdx:]
	targetValue := col.Cards[targetIdx].Value
	if targetValue == models.ValueEight || targetValue == models.ValueNine {
		// 8/9: only the single top card falls.
		destroyed = col.Cards[len(col.Cards)-1:]
		targetIdx = len(col.Cards) - 1
	}
	col.Cards = col.Cards[:targetIdx]
	for _, c := range destroyed {
		defender.DiscardPile = append(defender.DiscardPile, c)
		if b := col.Button(c.Value); b != nil {
			b.Active = false
		}
	}
	result.Destroyed = len(destroyed)
	result.Message = fmt.Sprintf("Le Valet de %s détruit %d carte(s)", suit, len(destroyed))
	defender.addMessage("damage", result.Message)
	attacker.addMessage("attack", result.Message)

	// A ≤6 strike costs the attacking Jack.
	if models.NumericValue(targetValue) <= 6 {
		if atkCol := attacker.Columns[suit]; atkCol != nil {
			if jack := atkCol.RemoveFaceCard(models.ValueJack); jack != nil {
				attacker.DiscardPile = append(attacker.DiscardPile, jack)
				attacker.addMessage("info", fmt.Sprintf("Votre Valet de %s est défaussé après l'attaque", suit))
			}
		}
	}
}

// resolveJokerAttack destroys the targeted unit, marks the column destroyed
// for later restoration and deactivates every button above the hole.
// Assumes lock held.
func (g *UnitGame) resolveJokerAttack(attacker, defender *PlayerState, pending *PendingAttack, result *AttackResult) {
	col := defender.Columns[pending.AttackTarget.Suit]
	if col == nil {
		return
	}
	tv := pending.AttackTarget.TargetValue

	if tv == models.ValueJack || tv == models.ValueKing {
		if face := col.RemoveFaceCard(tv); face != nil {
			defender.DiscardPile = append(defender.DiscardPile, face)
			result.Destroyed = 1
			result.Message = fmt.Sprintf("Le Joker détruit %s de %s", tv, pending.AttackTarget.Suit)
			defender.addMessage("damage", result.Message)
			attacker.addMessage("attack", result.Message)
		}
		return
	}

	for i, c := range col.Cards {
		if !c.IsJoker() && c.Value == tv {
			if _, ok := col.DestroyCardAt(i); ok {
				result.Destroyed = 1
				result.Message = fmt.Sprintf("Le Joker détruit le %s de %s", tv, pending.AttackTarget.Suit)
				defender.addMessage("damage", result.Message)
				attacker.addMessage("attack", result.Message)
			}
			return
		}
	}
	// Target vanished between declaration and resolution: should not
	// happen, the pending attack freezes the defender.
	log.WithField("game", g.ID).Warn("joker attack target missing at resolution")
}
