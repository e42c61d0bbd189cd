// internal/handlers/game_server.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yamachris/unit-bolt-sub001/internal/ai"
	"github.com/yamachris/unit-bolt-sub001/internal/database"
	"github.com/yamachris/unit-bolt-sub001/internal/game"
)

// GameServer owns the live games, the matchmaking queue, the per-game
// clocks and the WebSocket connection registry. Connections live here, not
// on the aggregate: the engine only knows its broadcast callbacks.
type GameServer struct {
	GameStore *game.GameStore
	Timers    *game.TimerRegistry
	Logger    *logrus.Logger

	mu            sync.Mutex
	conns         map[uuid.UUID]map[uuid.UUID]*websocket.Conn
	waitingGameID uuid.UUID
	aiCancels     map[uuid.UUID]context.CancelFunc

	setupTimeout time.Duration
	turnTimeout  time.Duration
}

func NewGameServer(logger *logrus.Logger) *GameServer {
	return &GameServer{
		GameStore:    game.NewGameStore(),
		Timers:       game.NewTimerRegistry(),
		Logger:       logger,
		conns:        make(map[uuid.UUID]map[uuid.UUID]*websocket.Conn),
		aiCancels:    make(map[uuid.UUID]context.CancelFunc),
		setupTimeout: envSeconds("SETUP_TIMEOUT_SEC", 60),
		turnTimeout:  envSeconds("TURN_TIMEOUT_SEC", 45),
	}
}

// JoinQueueHandler seats the caller: into the first waiting game if one
// exists, otherwise into a fresh game that waits for the next caller.
// Responds with the game id the client should open the WebSocket against.
func (gs *GameServer) JoinQueueHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := EnsureEphemeralUser(w, r)
	if err != nil {
		gs.Logger.WithError(err).Warn("queue join authentication failed")
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	gameID, ok := gs.joinOrCreate(userID)
	if !ok {
		http.Error(w, "already seated in the waiting game", http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"game_id": gameID})
}

// SoloGameHandler creates a game against the built-in agent, ready to play
// immediately.
func (gs *GameServer) SoloGameHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := EnsureEphemeralUser(w, r)
	if err != nil {
		gs.Logger.WithError(err).Warn("solo game authentication failed")
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	g := gs.newGame()
	g.AddPlayer(userID)

	agentID, _ := uuid.NewRandom()
	g.AddPlayer(agentID)
	gs.startAgent(g, agentID)
	gs.onGameFull(g)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"game_id": g.ID, "agent_id": agentID})
}

// joinOrCreate is the whole matchmaking policy: one waiting slot, first
// come first matched. The slot is claimed or published in a single lock
// window so concurrent joiners can never race for the same seat or strand
// a half-filled game.
func (gs *GameServer) joinOrCreate(userID uuid.UUID) (uuid.UUID, bool) {
	gs.mu.Lock()
	waitingID := gs.waitingGameID
	gs.waitingGameID = uuid.Nil

	if waitingID != uuid.Nil {
		gs.mu.Unlock()
		if g, ok := gs.GameStore.GetGame(waitingID); ok {
			if g.AddPlayer(userID) {
				gs.onGameFull(g)
				return waitingID, true
			}
			// Same player knocking twice: hand the slot back.
			gs.mu.Lock()
			if gs.waitingGameID == uuid.Nil {
				gs.waitingGameID = waitingID
			}
			gs.mu.Unlock()
			return uuid.Nil, false
		}
		gs.mu.Lock()
	}

	// Seating the first player never broadcasts, so holding mu across the
	// create-and-publish cannot re-enter the broadcast callbacks.
	g := gs.newGame()
	g.AddPlayer(userID)
	gs.waitingGameID = g.ID
	gs.mu.Unlock()
	return g.ID, true
}

// newGame builds an aggregate wired to this server's transport, clocks and
// archive.
func (gs *GameServer) newGame() *game.UnitGame {
	g := game.NewUnitGame()
	g.BroadcastFn = gs.makeBroadcastFn(g)
	g.BroadcastToPlayerFn = gs.makeBroadcastToPlayerFn(g)
	g.OnGameEnd = gs.onGameEnd
	gs.GameStore.AddGame(g)
	gs.Logger.WithField("game", g.ID).Info("game created")
	return g
}

// onGameFull starts the setup clock once both seats are taken.
func (gs *GameServer) onGameFull(g *game.UnitGame) {
	gameID := g.ID
	gs.Timers.Schedule(gameID, game.TimerSetup, gs.setupTimeout, func() {
		if stale, ok := gs.GameStore.GetGame(gameID); ok && !stale.IsOver() {
			gs.Logger.WithField("game", gameID).Warn("setup deadline expired, aborting game")
			stale.Abort("setup_timeout")
		}
	})
	if database.DB != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.StoreInitialGameState(ctx, gameID, gs.snapshot(g)); err != nil {
				gs.Logger.WithError(err).WithField("game", gameID).Warn("failed to store initial game state")
			}
		}()
	}
}

// startAgent launches the AI turn manager for one seat.
func (gs *GameServer) startAgent(g *game.UnitGame, agentID uuid.UUID) {
	ctx, cancel := context.WithCancel(context.Background())
	gs.mu.Lock()
	gs.aiCancels[g.ID] = cancel
	gs.mu.Unlock()

	tm := ai.NewTurnManager(g, agentID)
	go tm.Run(ctx)
}

// onGameEnd tears a finished game down: clocks cancelled, agent stopped,
// outcome archived, connections released after a short grace period.
func (gs *GameServer) onGameEnd(gameID, winner uuid.UUID, reason string) {
	gs.Timers.CancelGame(gameID)

	gs.mu.Lock()
	if gs.waitingGameID == gameID {
		gs.waitingGameID = uuid.Nil
	}
	if cancel := gs.aiCancels[gameID]; cancel != nil {
		cancel()
		delete(gs.aiCancels, gameID)
	}
	gs.mu.Unlock()

	g, ok := gs.GameStore.GetGame(gameID)
	if ok && database.DB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := database.ArchiveCompletedGame(ctx, gameID, winner, reason, g.Players, gs.snapshot(g)); err != nil {
			gs.Logger.WithError(err).WithField("game", gameID).Error("failed to archive game")
		}
	}

	gs.Logger.WithFields(logrus.Fields{"game": gameID, "winner": winner, "reason": reason}).Info("game torn down")

	// Leave the final state readable for a moment before dropping the game.
	time.AfterFunc(30*time.Second, func() {
		gs.GameStore.DeleteGame(gameID)
		gs.mu.Lock()
		delete(gs.conns, gameID)
		gs.mu.Unlock()
	})
}

// snapshot captures a marshal-ready copy of the aggregate for archival.
func (gs *GameServer) snapshot(g *game.UnitGame) map[string]interface{} {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return map[string]interface{}{
		"players": g.Players,
		"states":  g.States,
		"status":  g.Status,
	}
}

// registerConn binds a player's WebSocket to a game, replacing any previous
// connection (reconnect).
func (gs *GameServer) registerConn(gameID, playerID uuid.UUID, c *websocket.Conn) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.conns[gameID] == nil {
		gs.conns[gameID] = make(map[uuid.UUID]*websocket.Conn)
	}
	if old := gs.conns[gameID][playerID]; old != nil && old != c {
		old.Close(websocket.StatusPolicyViolation, "replaced by a new connection")
	}
	gs.conns[gameID][playerID] = c
}

// unregisterConn drops a binding, but only if it still points at this
// connection.
func (gs *GameServer) unregisterConn(gameID, playerID uuid.UUID, c *websocket.Conn) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.conns[gameID][playerID] == c {
		delete(gs.conns[gameID], playerID)
	}
}

func (gs *GameServer) connFor(gameID, playerID uuid.UUID) *websocket.Conn {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.conns[gameID][playerID]
}

// makeBroadcastFn builds the all-players broadcast callback. It runs while
// the game lock is held, so it only snapshots connections and hands the
// writes to a goroutine. Turn rotation events double as the turn-clock
// trigger.
func (gs *GameServer) makeBroadcastFn(g *game.UnitGame) func(ev game.GameEvent) {
	gameID := g.ID
	return func(ev game.GameEvent) {
		if ev.Type == game.EventPlayerTurn {
			gs.Timers.Cancel(gameID, game.TimerSetup)
			gs.Timers.Schedule(gameID, game.TimerTurn, gs.turnTimeout, func() {
				if live, ok := gs.GameStore.GetGame(gameID); ok && !live.IsOver() {
					gs.Logger.WithField("game", gameID).Info("turn clock expired, applying penalty")
					live.PenalizeTurnTimeout()
				}
			})
		}

		gs.mu.Lock()
		targets := make([]*websocket.Conn, 0, len(gs.conns[gameID]))
		for _, c := range gs.conns[gameID] {
			targets = append(targets, c)
		}
		gs.mu.Unlock()
		if len(targets) == 0 {
			return
		}

		data, err := json.Marshal(ev)
		if err != nil {
			gs.Logger.WithError(err).WithField("game", gameID).Error("failed to marshal broadcast event")
			return
		}
		go func() {
			for _, c := range targets {
				writeWs(c, data, gs.Logger)
			}
		}()
	}
}

// makeBroadcastToPlayerFn builds the single-player callback, used for the
// private view syncs and failure events.
func (gs *GameServer) makeBroadcastToPlayerFn(g *game.UnitGame) func(playerID uuid.UUID, ev game.GameEvent) {
	gameID := g.ID
	return func(playerID uuid.UUID, ev game.GameEvent) {
		c := gs.connFor(gameID, playerID)
		if c == nil {
			return
		}
		data, err := json.Marshal(ev)
		if err != nil {
			gs.Logger.WithError(err).WithField("game", gameID).Error("failed to marshal private event")
			return
		}
		go writeWs(c, data, gs.Logger)
	}
}

func writeWs(c *websocket.Conn, data []byte, logger *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Write(ctx, websocket.MessageText, data); err != nil {
		logger.WithError(err).Debug("websocket write failed")
	}
}

func envSeconds(key string, def int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(def) * time.Second
}
