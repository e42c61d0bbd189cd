// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// StoreInitialGameState records a game's opening snapshot (deck orders,
// dealt hands) so the full match can be reconstructed later alongside the
// historian's action log.
func StoreInitialGameState(ctx context.Context, gameID uuid.UUID, snapshot interface{}) error {
	js, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal initial game state: %w", err)
	}
	q := `
		INSERT INTO games (id, status, initial_game_state, start_time)
		VALUES ($1, 'in_progress', $2, NOW())
		ON CONFLICT (id)
		DO UPDATE SET initial_game_state = EXCLUDED.initial_game_state, status='in_progress'
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, gameID, js)
		return e
	})
}

// ArchiveCompletedGame marks the game completed with its winner, reason and
// final snapshot, and records one result row per player.
func ArchiveCompletedGame(ctx context.Context, gameID, winnerID uuid.UUID, reason string, players []uuid.UUID, finalSnapshot interface{}) error {
	js, err := json.Marshal(finalSnapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal final game state: %w", err)
	}

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsert := `
			INSERT INTO games (id, status, final_game_state, end_reason, end_time)
			VALUES ($1, 'completed', $2, $3, NOW())
			ON CONFLICT (id)
			DO UPDATE SET status='completed', final_game_state=$2, end_reason=$3, end_time=NOW()
		`
		if _, e := tx.Exec(ctx, upsert, gameID, js, reason); e != nil {
			return e
		}
		for _, pid := range players {
			q := `
				INSERT INTO game_results (game_id, player_id, did_win)
				VALUES ($1, $2, $3)
				ON CONFLICT (game_id, player_id) DO UPDATE SET did_win=$3
			`
			if _, e := tx.Exec(ctx, q, gameID, pid, pid == winnerID); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx archive game: %w", err)
	}

	// Career counters ride along; losing them is not worth failing the
	// archive over.
	var loser uuid.UUID
	for _, pid := range players {
		if pid != winnerID {
			loser = pid
		}
	}
	if err := RecordMatchOutcome(ctx, winnerID, loser); err != nil {
		log.WithError(err).WithField("game", gameID).Warn("failed to record match outcome")
	}
	return nil
}

// MarkGameAbandoned flags a game the historian found inactive.
func MarkGameAbandoned(ctx context.Context, gameID uuid.UUID) error {
	q := `UPDATE games SET status='abandoned', end_time=NOW() WHERE id=$1 AND status != 'completed'`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, gameID)
		return e
	})
}
