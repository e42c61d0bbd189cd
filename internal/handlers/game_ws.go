// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yamachris/unit-bolt-sub001/internal/game"
	"github.com/yamachris/unit-bolt-sub001/internal/middleware"
	"github.com/yamachris/unit-bolt-sub001/internal/models"
)

// GameMessage is the envelope for inbound WebSocket messages.
type GameMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// GameWSHandler upgrades the HTTP connection to WebSocket for a specific
// game instance (/game/ws/{game_id}), authenticates the user, verifies they
// are seated in the game, and pumps their actions into the engine. The
// engine methods serialize themselves, so the read loop holds no locks.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/game/ws/"), "/")
		if len(pathParts) < 1 || pathParts[0] == "" {
			http.Error(w, "Missing game_id in path (/game/ws/{game_id})", http.StatusBadRequest)
			return
		}
		gameID, err := uuid.Parse(pathParts[0])
		if err != nil {
			http.Error(w, "Invalid game_id format", http.StatusBadRequest)
			return
		}

		g, ok := gs.GameStore.GetGame(gameID)
		if !ok {
			http.Error(w, "Game not found", http.StatusNotFound)
			return
		}

		// Authenticate before the upgrade so cookies can still be set.
		userID, err := EnsureEphemeralUser(w, r)
		if err != nil {
			logger.WithError(err).WithField("game", gameID).Warn("user authentication failed")
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}

		seated := false
		g.Mu.Lock()
		for _, pid := range g.Players {
			if pid == userID {
				seated = true
				break
			}
		}
		g.Mu.Unlock()
		if !seated && !g.AddPlayer(userID) {
			http.Error(w, "You are not a player in this game", http.StatusForbidden)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.WithError(err).WithField("game", gameID).Warn("websocket accept error")
			return
		}
		defer c.Close(websocket.StatusInternalError, "internal error during handler exit")

		if c.Subprotocol() != "game" {
			c.Close(websocket.StatusPolicyViolation, "client must use the 'game' subprotocol")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		gs.registerConn(gameID, userID, c)

		// Reconnect or first connect: either way the client gets its full
		// isolated view immediately.
		if view := g.IsolateFor(userID); view != nil {
			sendWsMessage(c, game.GameEvent{Type: game.EventStateSync, View: view}, logger)
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		readErr := readGameMessages(ctx, c, g, userID, logger)

		gs.unregisterConn(gameID, userID, c)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
	}
}

// readGameMessages pumps client messages into the action router until the
// connection drops or the context is cancelled.
func readGameMessages(ctx context.Context, c *websocket.Conn, g *game.UnitGame, userID uuid.UUID, logger *logrus.Logger) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
				strings.Contains(err.Error(), "context canceled") {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.WithError(err).WithField("user", userID).Warn("invalid JSON from client")
			sendWsError(c, "Invalid JSON format.", logger)
			continue
		}

		switch {
		case msg.Type == "ping":
			sendWsMessage(c, map[string]string{"type": "pong"}, logger)

		case strings.HasPrefix(msg.Type, "action_"):
			g.HandlePlayerAction(userID, models.GameAction{
				ActionType: msg.Type,
				Payload:    msg.Payload,
			})

		default:
			logger.WithFields(logrus.Fields{"user": userID, "type": msg.Type}).Warn("unknown message type")
			sendWsError(c, fmt.Sprintf("Unknown message type: %s", msg.Type), logger)
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}

// sendWsMessage marshals and writes one message with a bounded timeout.
func sendWsMessage(c *websocket.Conn, message interface{}, logger *logrus.Logger) {
	if c == nil {
		return
	}
	msgBytes, err := json.Marshal(message)
	if err != nil {
		logger.WithError(err).Error("failed to marshal websocket message")
		return
	}
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Write(writeCtx, websocket.MessageText, msgBytes); err != nil {
		logger.WithError(err).Debug("websocket write failed")
	}
}

// sendWsError sends a structured error message to the client.
func sendWsError(c *websocket.Conn, errorMsg string, logger *logrus.Logger) {
	sendWsMessage(c, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	}, logger)
}
