// internal/ai/api.go
package ai

import (
	"github.com/google/uuid"

	"github.com/yamachris/unit-bolt-sub001/internal/game"
	"github.com/yamachris/unit-bolt-sub001/internal/models"
)

// GameActions is the narrow surface the agent plays through. It is exactly
// the surface a human client has: a state view and the action router —
// *game.UnitGame satisfies it directly, so the agent can never do anything a
// person could not.
type GameActions interface {
	IsolateFor(playerID uuid.UUID) *game.PlayerView
	HandlePlayerAction(playerID uuid.UUID, action models.GameAction) bool
	IsOver() bool
}
