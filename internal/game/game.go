// internal/game/game.go
package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/yamachris/unit-bolt-sub001/internal/cache"
	"github.com/yamachris/unit-bolt-sub001/internal/models"
)

// GameStatus tracks the aggregate lifecycle.
type GameStatus string

const (
	StatusWaiting    GameStatus = "waiting"
	StatusInProgress GameStatus = "in-progress"
	StatusCompleted  GameStatus = "completed"
)

// GameEventType is an enum-like type for broadcasting game events.
type GameEventType string

const (
	EventGameJoined     GameEventType = "game_joined"
	EventGameStart      GameEventType = "game_start"
	EventPlayerTurn     GameEventType = "game_player_turn"
	EventStateSync      GameEventType = "private_sync_state"
	EventAttackDeclared GameEventType = "attack_declared"
	EventBlockOffer     GameEventType = "block_offer"
	EventAttackResolved GameEventType = "attack_resolved"
	EventRevolution     GameEventType = "revolution"
	EventGameEnd        GameEventType = "game_end"
	EventActionFail     GameEventType = "private_action_fail"
)

// GameEvent is the envelope every broadcast uses.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	View    *PlayerView            `json:"view,omitempty"`
}

// OnGameEndFunc lets the host react to a finished game (stop timers,
// archive, notify the lobby).
type OnGameEndFunc func(gameID, winner uuid.UUID, reason string)

// UnitGame is the per-game aggregate. All mutating operations enter through
// its action API; the mutex serializes every read-modify cycle so no two
// actions against the same game interleave.
type UnitGame struct {
	ID uuid.UUID

	Players []uuid.UUID
	States  []*PlayerState

	CurrentPlayerIndex int
	Status             GameStatus

	PendingAttack      *PendingAttack
	AttackResult       *AttackResult
	QueenChallengeData map[string]interface{}

	Mu sync.Mutex

	rng         *rand.Rand
	actionIndex int
	setupDone   map[uuid.UUID]bool

	// BroadcastFn sends an event to all players; BroadcastToPlayerFn to one.
	// Either may be nil (tests, headless AI games).
	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)

	OnGameEnd OnGameEndFunc
}

// NewUnitGame builds an empty aggregate in the waiting state.
func NewUnitGame() *UnitGame {
	id, _ := uuid.NewRandom()
	return &UnitGame{
		ID:        id,
		Status:    StatusWaiting,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		setupDone: make(map[uuid.UUID]bool),
	}
}

// NewUnitGameWithSeed pins the shuffle order for tests.
func NewUnitGameWithSeed(seed int64) *UnitGame {
	g := NewUnitGame()
	g.rng = rand.New(rand.NewSource(seed))
	return g
}

// AddPlayer joins a player into a waiting game. Once MaxPlayers have joined
// the game flips to in-progress and both players enter SETUP.
func (g *UnitGame) AddPlayer(playerID uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Status != StatusWaiting || len(g.Players) >= MaxPlayers {
		return false
	}
	for _, id := range g.Players {
		if id == playerID {
			return false
		}
	}
	g.Players = append(g.Players, playerID)
	g.States = append(g.States, NewPlayerState(playerID, g.rng))
	g.logAction(playerID, "player_join", nil)

	if len(g.Players) == MaxPlayers {
		g.Status = StatusInProgress
		log.WithField("game", g.ID).Info("game full, setup phase begins")
		g.fireEvent(GameEvent{Type: EventGameStart, Payload: map[string]interface{}{"game_id": g.ID}})
	}
	return true
}

// stateOf returns the player's state and index, or (nil, -1).
func (g *UnitGame) stateOf(playerID uuid.UUID) (*PlayerState, int) {
	for i, id := range g.Players {
		if id == playerID {
			return g.States[i], i
		}
	}
	return nil, -1
}

// opponentOf returns the other player's state, or nil.
func (g *UnitGame) opponentOf(playerID uuid.UUID) *PlayerState {
	for i, id := range g.Players {
		if id != playerID {
			return g.States[i]
		}
	}
	return nil
}

// isCurrent reports whether it is this player's turn.
func (g *UnitGame) isCurrent(idx int) bool {
	return idx >= 0 && idx == g.CurrentPlayerIndex
}

// inPlay guards the common preconditions of every turn action.
func (g *UnitGame) inPlay(playerID uuid.UUID) (*PlayerState, bool) {
	if g.Status != StatusInProgress {
		return nil, false
	}
	ps, idx := g.stateOf(playerID)
	if ps == nil || ps.IsGameOver || !g.isCurrent(idx) {
		return nil, false
	}
	// A paused attack freezes everything except the block response.
	if g.PendingAttack != nil && g.PendingAttack.WaitingForResponse {
		return nil, false
	}
	return ps, true
}

// --- Setup phase ---

// MoveToReserve stages one hand card into the reserve during SETUP.
func (g *UnitGame) MoveToReserve(playerID, cardID uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Status != StatusInProgress {
		return false
	}
	ps, _ := g.stateOf(playerID)
	if ps == nil || !ps.moveToReserve(cardID) {
		return false
	}
	g.logAction(playerID, "move_to_reserve", map[string]interface{}{"cardId": cardID})
	g.syncAll()
	return true
}

// CompleteSetup ends a player's SETUP once their reserve holds two cards.
// When the last player completes, both players' StartAt is stamped with the
// same instant — the clock synchronization point for the client timers.
func (g *UnitGame) CompleteSetup(playerID uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Status != StatusInProgress {
		return false
	}
	ps, _ := g.stateOf(playerID)
	if ps == nil || g.setupDone[playerID] {
		return false
	}
	if !ps.completeSetup() {
		return false
	}
	g.setupDone[playerID] = true
	g.logAction(playerID, "setup_complete", nil)

	if len(g.setupDone) == MaxPlayers {
		startAt := time.Now()
		for _, st := range g.States {
			st.StartAt = startAt
			st.addMessage("info", "La partie commence")
		}
		log.WithField("game", g.ID).Info("all players ready, game starts")
		g.fireEvent(GameEvent{Type: EventPlayerTurn, Payload: map[string]interface{}{
			"currentPlayerId": g.Players[g.CurrentPlayerIndex],
		}})
	}
	g.syncAll()
	return true
}

// --- Turn phases ---

// Discard moves one card to the discard pile (DISCARD -> DRAW).
func (g *UnitGame) Discard(playerID, cardID uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	ps, ok := g.inPlay(playerID)
	if !ok || !ps.discard(cardID) {
		return false
	}
	g.logAction(playerID, "discard", map[string]interface{}{"cardId": cardID})
	g.syncAll()
	return true
}

// DrawCard refills hand and reserve (DRAW -> PLAY).
func (g *UnitGame) DrawCard(playerID uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	ps, ok := g.inPlay(playerID)
	if !ok || !ps.drawUp() {
		return false
	}
	g.logAction(playerID, "draw", nil)
	g.syncAll()
	return true
}

// StrategicShuffle folds the player's cards back into their deck for a
// fresh hand. DISCARD phase only, twice per game.
func (g *UnitGame) StrategicShuffle(playerID uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	ps, ok := g.inPlay(playerID)
	if !ok || !ps.strategicShuffle(g.rng) {
		return false
	}
	ps.addMessage("info", "Mélange stratégique")
	g.logAction(playerID, "strategic_shuffle", nil)
	g.syncAll()
	return true
}

// SkipAction passes the PLAY action and unlocks end turn.
func (g *UnitGame) SkipAction(playerID uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	ps, ok := g.inPlay(playerID)
	if !ok || ps.Phase != PhasePlay || ps.HasPlayedAction {
		return false
	}
	ps.HasPlayedAction = true
	ps.CanEndTurn = true
	g.logAction(playerID, "skip_action", nil)
	g.syncAll()
	return true
}

// PlaceCard is the PLAY-phase placement entry point. The selection decides
// the move:
//
//	[Ace, activator]        open the column
//	[J|K, activator]        activate a face card
//	[7|Joker] (no slot fit) stage an activator
//	[sequence card]         extend or restore the sequence
//	[] (empty)              insert the staged 7 at slot 6
//
// Completing the column triggers the revolution.
func (g *UnitGame) PlaceCard(playerID uuid.UUID, suit models.Suit, cardIDs []uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	ps, ok := g.inPlay(playerID)
	if !ok || ps.Phase != PhasePlay || ps.HasPlayedAction {
		return false
	}
	col := ps.Columns[suit]
	if col == nil {
		return false
	}

	cards := make([]*models.Card, 0, len(cardIDs))
	for _, id := range cardIDs {
		c := ps.cardByID(id)
		if c == nil {
			return false
		}
		cards = append(cards, c)
	}

	placed := false
	switch len(cards) {
	case 0:
		placed = col.InsertReserveSeven(ps.Turn)

	case 1:
		placed = g.placeSingle(ps, col, cards[0])

	case 2:
		placed = g.placePair(ps, col, cards[0], cards[1])
	}

	if !placed {
		return false
	}
	ps.HasPlayedAction = true
	ps.CanEndTurn = true
	g.logAction(playerID, "place_card", map[string]interface{}{"suit": suit, "count": len(cards)})
	g.checkRevolution(ps, suit)
	g.syncAll()
	return true
}

// placeSingle routes a one-card selection. Assumes lock held.
func (g *UnitGame) placeSingle(ps *PlayerState, col *Column, card *models.Card) bool {
	if col.PlaceSequenceCard(card, ps.Turn) {
		ps.takeFromHandOrReserve(card.ID)
		return true
	}
	if card.IsActivator() && col.StageActivator(card) {
		ps.takeFromHandOrReserve(card.ID)
		return true
	}
	return false
}

// placePair routes a two-card selection (ace+activator or face+activator).
// Assumes lock held.
func (g *UnitGame) placePair(ps *PlayerState, col *Column, a, b *models.Card) bool {
	main, activator := a, b
	if main.IsActivator() && !activator.IsActivator() {
		main, activator = activator, main
	}
	if !activator.IsActivator() {
		return false
	}

	switch main.Value {
	case models.ValueAce:
		if col.PlaceAce(main, activator) {
			ps.takeFromHandOrReserve(main.ID)
			ps.takeFromHandOrReserve(activator.ID)
			return true
		}
	case models.ValueJack, models.ValueKing:
		how := ActivatedBySeven
		if activator.IsJoker() {
			how = ActivatedByJoker
		}
		if col.ActivateFaceCard(main, how) {
			ps.takeFromHandOrReserve(main.ID)
			ps.takeFromHandOrReserve(activator.ID)
			ps.DiscardPile = append(ps.DiscardPile, activator)
			return true
		}
	}
	return false
}

// JokerExchange swaps a Joker substitute at an explicit column index for
// the true rank card from the player's hand; the Joker comes back to hand.
func (g *UnitGame) JokerExchange(playerID uuid.UUID, suit models.Suit, columnIndex int, cardID uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	ps, ok := g.inPlay(playerID)
	if !ok || ps.Phase != PhasePlay || ps.HasPlayedAction {
		return false
	}
	col := ps.Columns[suit]
	if col == nil {
		return false
	}
	card := ps.cardByID(cardID)
	if card == nil {
		return false
	}
	joker, swapped := col.ReplaceJokerSubstitute(columnIndex, card)
	if !swapped {
		return false
	}
	ps.takeFromHandOrReserve(card.ID)
	ps.Hand = append(ps.Hand, joker)
	ps.HasPlayedAction = true
	ps.CanEndTurn = true
	g.logAction(playerID, "joker_exchange", map[string]interface{}{"suit": suit, "index": columnIndex})
	// Swapping out the last substitute can complete the column.
	g.checkRevolution(ps, suit)
	g.syncAll()
	return true
}

// JokerHeal spends a Joker from hand or reserve for health.
func (g *UnitGame) JokerHeal(playerID, jokerID uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	ps, ok := g.inPlay(playerID)
	if !ok || ps.Phase != PhasePlay || ps.HasPlayedAction {
		return false
	}
	card := ps.cardByID(jokerID)
	if card == nil || !card.IsJoker() {
		return false
	}
	ps.takeFromHandOrReserve(jokerID)
	ps.DiscardPile = append(ps.DiscardPile, card)
	ps.heal(JokerHealAmount)
	ps.HasPlayedAction = true
	ps.CanEndTurn = true
	ps.addMessage("heal", fmt.Sprintf("Joker soigne %d PV", JokerHealAmount))
	g.logAction(playerID, "joker_heal", map[string]interface{}{"cardId": jokerID})
	g.syncAll()
	return true
}

// ActivatorExchange swaps the staged activator of a column with a 7 or
// Joker from the player's hand; the displaced activator returns to hand.
func (g *UnitGame) ActivatorExchange(playerID uuid.UUID, suit models.Suit, cardID uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	ps, ok := g.inPlay(playerID)
	if !ok || ps.Phase != PhasePlay || ps.HasPlayedAction {
		return false
	}
	col := ps.Columns[suit]
	if col == nil || col.ReserveSuit == nil {
		return false
	}
	card := ps.cardByID(cardID)
	if card == nil || !card.IsActivator() {
		return false
	}
	displaced := col.ReserveSuit
	ps.takeFromHandOrReserve(cardID)
	col.ReserveSuit = card
	ps.Hand = append(ps.Hand, displaced)
	ps.HasPlayedAction = true
	ps.CanEndTurn = true
	g.logAction(playerID, "activator_exchange", map[string]interface{}{"suit": suit})
	g.syncAll()
	return true
}

// SacrificeSpecialCard burns unit cards to activate a special card without
// an activator: King costs 3, Queen costs 2 (and heals 2), Jack costs 1.
func (g *UnitGame) SacrificeSpecialCard(playerID, specialID uuid.UUID, sacrificeIDs []uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	ps, ok := g.inPlay(playerID)
	if !ok || ps.Phase != PhasePlay || ps.HasPlayedAction {
		return false
	}
	special := ps.cardByID(specialID)
	if special == nil {
		return false
	}

	var cost int
	switch special.Value {
	case models.ValueKing:
		cost = KingSacrificeCost
	case models.ValueQueen:
		cost = QueenSacrificeCost
	case models.ValueJack:
		cost = JackSacrificeCost
	default:
		return false
	}
	if len(sacrificeIDs) != cost {
		return false
	}

	sacrifices := make([]*models.Card, 0, cost)
	seen := map[uuid.UUID]bool{specialID: true}
	for _, id := range sacrificeIDs {
		c := ps.cardByID(id)
		// Only distinct plain unit cards can be burned, and the special
		// cannot pay for its own activation.
		if c == nil || seen[id] || c.IsJoker() || models.SequenceIndex(c.Value) < 0 {
			return false
		}
		seen[id] = true
		sacrifices = append(sacrifices, c)
	}

	switch special.Value {
	case models.ValueQueen:
		ps.takeFromHandOrReserve(specialID)
		ps.DiscardPile = append(ps.DiscardPile, special)
		ps.heal(QueenHealAmount)
		g.QueenChallengeData = map[string]interface{}{
			"playerId": playerID,
			"healed":   QueenHealAmount,
		}
		ps.addMessage("heal", fmt.Sprintf("La Dame soigne %d PV", QueenHealAmount))

	default: // King or Jack into the face slot of its own suit
		col := ps.Columns[special.Suit]
		if col == nil || !col.ActivateFaceCard(special, ActivatedBySacrifice) {
			return false
		}
		ps.takeFromHandOrReserve(specialID)
	}

	for _, c := range sacrifices {
		ps.takeFromHandOrReserve(c.ID)
		ps.DiscardPile = append(ps.DiscardPile, c)
	}
	ps.HasPlayedAction = true
	ps.CanEndTurn = true
	g.logAction(playerID, "sacrifice_special", map[string]interface{}{
		"value": special.Value, "cost": cost,
	})
	g.syncAll()
	return true
}

// EndTurn hands play to the opponent, resets per-turn flags and re-arms
// Jack buttons that are due.
func (g *UnitGame) EndTurn(playerID uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	ps, ok := g.inPlay(playerID)
	if !ok || ps.Phase != PhasePlay || !(ps.CanEndTurn || ps.HasPlayedAction) {
		return false
	}
	g.endTurnLocked(ps)
	g.logAction(playerID, "end_turn", nil)
	g.syncAll()
	return true
}

// endTurnLocked performs the turn rotation. Assumes lock held.
func (g *UnitGame) endTurnLocked(ps *PlayerState) {
	ps.Turn++
	ps.SelectedCards = nil
	ps.BlockedColumns = nil
	for _, col := range ps.Columns {
		col.RearmJackIfDue(ps.Turn)
	}
	g.QueenChallengeData = nil

	g.CurrentPlayerIndex = (g.CurrentPlayerIndex + 1) % len(g.Players)
	next := g.States[g.CurrentPlayerIndex]
	next.beginTurn()

	g.fireEvent(GameEvent{Type: EventPlayerTurn, Payload: map[string]interface{}{
		"currentPlayerId": g.Players[g.CurrentPlayerIndex],
	}})
}

// --- Revolution ---

// checkRevolution fires when a 10-card Joker-free column completes: the
// sequence and staged activator are discarded, the column resets (face
// cards survive), the opponent loses their same-suit King and takes 10
// direct damage. Assumes lock held.
func (g *UnitGame) checkRevolution(ps *PlayerState, suit models.Suit) {
	col := ps.Columns[suit]
	if col == nil || !col.IsComplete() {
		return
	}

	removed := col.ResetForRevolution()
	ps.DiscardPile = append(ps.DiscardPile, removed...)
	ps.ShowRevolutionPopup = true
	ps.addMessage("revolution", fmt.Sprintf("Révolution en %s !", suit))

	opp := g.opponentOf(ps.ID)
	if opp == nil {
		log.WithField("game", g.ID).Warn("revolution with no opponent, ignoring effects")
		return
	}
	if oppCol := opp.Columns[suit]; oppCol != nil {
		if king := oppCol.RemoveFaceCard(models.ValueKing); king != nil {
			opp.DiscardPile = append(opp.DiscardPile, king)
			opp.addMessage("warning", fmt.Sprintf("Votre Roi de %s est balayé par la révolution", suit))
		}
	}
	dead := opp.applyDamage(RevolutionDamage)
	opp.addMessage("damage", fmt.Sprintf("La révolution inflige %d dégâts", RevolutionDamage))
	g.fireEvent(GameEvent{Type: EventRevolution, Payload: map[string]interface{}{
		"playerId": ps.ID,
		"suit":     suit,
		"damage":   RevolutionDamage,
	}})
	g.logAction(ps.ID, "revolution", map[string]interface{}{"suit": suit})

	if dead {
		g.endGameLocked(ps.ID, "revolution")
	}
}

// --- Lifecycle ---

// Surrender concedes the game to the opponent.
func (g *UnitGame) Surrender(playerID uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Status != StatusInProgress {
		return false
	}
	ps, _ := g.stateOf(playerID)
	if ps == nil {
		return false
	}
	opp := g.opponentOf(playerID)
	winner := uuid.Nil
	if opp != nil {
		winner = opp.ID
	}
	g.logAction(playerID, "surrender", nil)
	g.endGameLocked(winner, "surrender")
	g.syncAll()
	return true
}

// Abort force-ends the game with no winner (setup timeout, admin action).
func (g *UnitGame) Abort(reason string) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Status == StatusCompleted {
		return false
	}
	g.logAction(uuid.Nil, "abort", map[string]interface{}{"reason": reason})
	g.endGameLocked(uuid.Nil, reason)
	g.syncAll()
	return true
}

// IsOver reports a completed game.
func (g *UnitGame) IsOver() bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.Status == StatusCompleted
}

// endGameLocked marks both players finished with a consistent winner and
// notifies the host. Terminal: no further actions are accepted. Assumes
// lock held.
func (g *UnitGame) endGameLocked(winner uuid.UUID, reason string) {
	if g.Status == StatusCompleted {
		return
	}
	g.Status = StatusCompleted
	g.PendingAttack = nil
	for _, st := range g.States {
		st.IsGameOver = true
		st.Winner = winner
		st.GameOverReason = reason
	}
	log.WithFields(log.Fields{"game": g.ID, "winner": winner, "reason": reason}).Info("game over")
	g.fireEvent(GameEvent{Type: EventGameEnd, Payload: map[string]interface{}{
		"winner": winner,
		"reason": reason,
	}})
	if g.OnGameEnd != nil {
		go g.OnGameEnd(g.ID, winner, reason)
	}
}

// --- Timer callbacks ---

// PenalizeTurnTimeout is invoked by the timer registry when the turn clock
// expires: one random card leaves the current player's hand or reserve, is
// replaced from their deck, and the turn passes.
func (g *UnitGame) PenalizeTurnTimeout() bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Status != StatusInProgress {
		return false
	}
	// A standing block offer freezes the game for both sides, the clock
	// penalty included.
	if g.PendingAttack != nil && g.PendingAttack.WaitingForResponse {
		return false
	}
	ps := g.States[g.CurrentPlayerIndex]
	if ps.IsGameOver {
		return false
	}

	pool := len(ps.Hand) + len(ps.Reserve)
	if pool > 0 {
		pick := g.rng.Intn(pool)
		var victim *models.Card
		if pick < len(ps.Hand) {
			victim = ps.Hand[pick]
			ps.Hand = append(ps.Hand[:pick], ps.Hand[pick+1:]...)
		} else {
			pick -= len(ps.Hand)
			victim = ps.Reserve[pick]
			ps.Reserve = append(ps.Reserve[:pick], ps.Reserve[pick+1:]...)
		}
		ps.DiscardPile = append(ps.DiscardPile, victim)
		if c := ps.drawFromDeck(); c != nil {
			ps.Hand = append(ps.Hand, c)
		}
		ps.addMessage("warning", "Temps écoulé : une carte a été remplacée")
	}
	g.logAction(ps.ID, "turn_timeout_penalty", nil)
	g.endTurnLocked(ps)
	g.syncAll()
	return true
}

// --- Action router ---

// HandlePlayerAction interprets a transport-level action and routes it to
// the typed API. Unknown or illegal actions are silent no-ops apart from a
// private failure event.
func (g *UnitGame) HandlePlayerAction(playerID uuid.UUID, action models.GameAction) bool {
	payload := action.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}

	cardID := parseUUID(payload["cardId"])
	suit := models.Suit(stringField(payload, "suit"))

	var ok bool
	switch action.ActionType {
	case "action_move_to_reserve":
		ok = g.MoveToReserve(playerID, cardID)
	case "action_start_game":
		ok = g.CompleteSetup(playerID)
	case "action_discard":
		ok = g.Discard(playerID, cardID)
	case "action_draw":
		ok = g.DrawCard(playerID)
	case "action_place_card":
		ok = g.PlaceCard(playerID, suit, parseUUIDList(payload["cardIds"]))
	case "action_joker_exchange":
		ok = g.JokerExchange(playerID, suit, intField(payload, "columnIndex"), cardID)
	case "action_joker":
		if stringField(payload, "mode") == "heal" {
			ok = g.JokerHeal(playerID, cardID)
		} else {
			ok = g.DeclareAttack(playerID, cardID, targetFromPayload(payload))
		}
	case "action_activator_exchange":
		ok = g.ActivatorExchange(playerID, suit, cardID)
	case "action_sacrifice":
		ok = g.SacrificeSpecialCard(playerID, cardID, parseUUIDList(payload["sacrificeIds"]))
	case "action_strategic_shuffle":
		ok = g.StrategicShuffle(playerID)
	case "action_skip":
		ok = g.SkipAction(playerID)
	case "action_end_turn":
		ok = g.EndTurn(playerID)
	case "action_attack":
		ok = g.DeclareAttack(playerID, cardID, targetFromPayload(payload))
	case "action_block_response":
		willBlock, _ := payload["willBlock"].(bool)
		blocker := parseUUID(payload["blockingCardId"])
		ok = g.RespondToBlock(playerID, willBlock, blocker)
	case "action_surrender":
		ok = g.Surrender(playerID)
	default:
		log.WithFields(log.Fields{"game": g.ID, "action": action.ActionType}).Warn("unknown action type")
	}

	if !ok {
		g.fireEventToPlayer(playerID, GameEvent{Type: EventActionFail, Payload: map[string]interface{}{
			"action": action.ActionType,
		}})
	}
	return ok
}

// --- Events and history ---

// fireEvent broadcasts to all players. Assumes lock held.
func (g *UnitGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// fireEventToPlayer sends to one player. Lock not required.
func (g *UnitGame) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn != nil {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}

// syncAll pushes each player their isolated view. Assumes lock held.
func (g *UnitGame) syncAll() {
	if g.BroadcastToPlayerFn == nil {
		return
	}
	for _, id := range g.Players {
		view := g.isolateLocked(id)
		if view == nil {
			continue
		}
		g.BroadcastToPlayerFn(id, GameEvent{Type: EventStateSync, View: view})
	}
}

// logAction publishes an action record to the historian queue. Best-effort
// and asynchronous; a missing Redis connection is not an error here.
func (g *UnitGame) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = map[string]interface{}{}
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.GameActionRecord) {
		if cache.Rdb == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			log.WithError(err).WithField("game", rec.GameID).Warn("failed to publish action record")
		}
	}(record)
}

// --- payload helpers ---

func parseUUID(v interface{}) uuid.UUID {
	s, _ := v.(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func parseUUIDList(v interface{}) []uuid.UUID {
	raw, _ := v.([]interface{})
	ids := make([]uuid.UUID, 0, len(raw))
	for _, item := range raw {
		if id := parseUUID(item); id != uuid.Nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func stringField(payload map[string]interface{}, key string) string {
	s, _ := payload[key].(string)
	return s
}

func intField(payload map[string]interface{}, key string) int {
	// JSON numbers arrive as float64.
	if f, ok := payload[key].(float64); ok {
		return int(f)
	}
	if i, ok := payload[key].(int); ok {
		return i
	}
	return -1
}

func targetFromPayload(payload map[string]interface{}) AttackTarget {
	return AttackTarget{
		Suit:        models.Suit(stringField(payload, "targetSuit")),
		AttackType:  AttackType(stringField(payload, "attackType")),
		TargetValue: models.Value(stringField(payload, "targetValue")),
	}
}
