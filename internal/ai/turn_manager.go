// internal/ai/turn_manager.go
package ai

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/yamachris/unit-bolt-sub001/internal/game"
	"github.com/yamachris/unit-bolt-sub001/internal/models"
)

// DefaultPace is the artificial delay between agent steps. Purely
// presentational: the opponent should see moves land at a human-ish rhythm.
const DefaultPace = 900 * time.Millisecond

// TurnManager drives one agent through a game. It never touches the
// aggregate directly: every step re-fetches the isolated view and goes
// through the same action router a connected client would, so a step that
// raced a timer or the opponent just no-ops and the next view shows the
// truth.
type TurnManager struct {
	PlayerID uuid.UUID
	Game     GameActions
	Strategy *Strategy
	Pace     time.Duration
}

func NewTurnManager(g GameActions, playerID uuid.UUID) *TurnManager {
	return &TurnManager{
		PlayerID: playerID,
		Game:     g,
		Strategy: &Strategy{},
		Pace:     DefaultPace,
	}
}

// Run loops until the game completes or the context is cancelled.
func (tm *TurnManager) Run(ctx context.Context) {
	logger := log.WithField("agent", tm.PlayerID)
	logger.Info("agent turn manager started")
	for {
		if !tm.pause(ctx) {
			return
		}
		if tm.Game.IsOver() {
			logger.Info("agent turn manager stopping, game over")
			return
		}
		view := tm.Game.IsolateFor(tm.PlayerID)
		if view == nil || view.You.IsGameOver {
			logger.Info("agent turn manager stopping, player finished")
			return
		}
		tm.step(view)
	}
}

// step performs at most one action against the current view.
func (tm *TurnManager) step(view *game.PlayerView) {
	you := view.You

	if you.Phase == game.PhaseSetup {
		tm.runSetup(view)
		return
	}
	if you.ShowBlockPopup && view.PendingAttack != nil {
		willBlock, blocker := tm.Strategy.ChooseBlock(view)
		payload := map[string]interface{}{"willBlock": willBlock}
		if willBlock {
			payload["blockingCardId"] = blocker.String()
		}
		tm.act(models.GameAction{ActionType: "action_block_response", Payload: payload})
		return
	}
	if view.CurrentPlayerID != tm.PlayerID {
		return
	}
	if view.PendingAttack != nil {
		// Waiting on the defender.
		return
	}

	switch you.Phase {
	case game.PhaseDiscard:
		if id, ok := tm.Strategy.ChooseDiscard(view); ok {
			if tm.act(models.GameAction{ActionType: "action_discard", Payload: map[string]interface{}{
				"cardId": id.String(),
			}}) {
				return
			}
		}
		tm.act(models.GameAction{ActionType: "action_strategic_shuffle"})

	case game.PhaseDraw:
		tm.act(models.GameAction{ActionType: "action_draw"})

	case game.PhasePlay:
		if !you.HasPlayedAction {
			action, _ := tm.Strategy.ChoosePlayAction(view)
			if tm.act(action) {
				// An attack already rotated the turn; anything else waits
				// for the explicit end-turn on the next step.
				return
			}
			// The chosen action was rejected: burn the action slot so the
			// turn cannot stall.
			tm.act(models.GameAction{ActionType: "action_skip"})
			return
		}
		tm.act(models.GameAction{ActionType: "action_end_turn"})
	}
}

// runSetup stages the reserve picks one at a time, then declares ready.
func (tm *TurnManager) runSetup(view *game.PlayerView) {
	if len(view.You.Reserve) < game.ReserveCapacity {
		picks := tm.Strategy.ChooseReserveCards(view)
		if len(picks) > 0 {
			tm.act(models.GameAction{ActionType: "action_move_to_reserve", Payload: map[string]interface{}{
				"cardId": picks[0].String(),
			}})
		}
		return
	}
	tm.act(models.GameAction{ActionType: "action_start_game"})
}

func (tm *TurnManager) act(action models.GameAction) bool {
	ok := tm.Game.HandlePlayerAction(tm.PlayerID, action)
	if !ok {
		log.WithFields(log.Fields{"agent": tm.PlayerID, "action": action.ActionType}).Debug("agent action rejected")
	}
	return ok
}

// pause sleeps one pace interval, returning false on cancellation.
func (tm *TurnManager) pause(ctx context.Context) bool {
	t := time.NewTimer(tm.Pace)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
