// internal/ai/evaluator.go
package ai

import (
	"github.com/yamachris/unit-bolt-sub001/internal/game"
	"github.com/yamachris/unit-bolt-sub001/internal/models"
)

// columnProgress scores one column 0..100: ten points per sequence slot
// filled, plus a 20-point bonus when the column is primed (six or more
// cards with an activator staged for the 7 slot or beyond).
func columnProgress(col *game.Column) float64 {
	if col == nil {
		return 0
	}
	progress := float64(len(col.Cards)) * 10
	if len(col.Cards) >= 6 && col.ReserveSuit != nil {
		progress += 20
	}
	if progress > 100 {
		progress = 100
	}
	return progress
}

// revolutionReady reports a column nine cards deep with no Joker holes: one
// card from detonating.
func revolutionReady(col *game.Column) bool {
	return col != nil && len(col.Cards) >= 9 && !col.HasJokerSubstitute()
}

// threateningColumn flags an opponent column far enough along to worry
// about.
func threateningColumn(col *game.Column) bool {
	return col != nil && len(col.Cards) >= 7
}

// Evaluate scores a position from the viewer's side. Larger is better. The
// weights favor board development and revolution setups over raw health
// trades, which matches how the game is actually won.
func Evaluate(view *game.PlayerView) float64 {
	if view == nil || view.You == nil {
		return 0
	}
	you := view.You

	oppHealth := 0
	if view.Opponent != nil {
		oppHealth = view.Opponent.Health
	}
	score := 10 * float64(you.Health-oppHealth)

	for _, suit := range models.StandardSuits {
		col := you.Columns[suit]
		score += columnProgress(col) / 100 * 5
		if revolutionReady(col) {
			score += 100
		}
		if col != nil && col.HasActiveKing() {
			score += 15
		}
		if view.Opponent != nil && threateningColumn(view.Opponent.Columns[suit]) {
			score -= 10
		}
	}
	return score
}
