// internal/handlers/game_server_test.go
package handlers

import (
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *GameServer {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewGameServer(logger)
}

func TestJoinOrCreatePairsPlayers(t *testing.T) {
	gs := newTestServer()

	first, ok := gs.joinOrCreate(uuid.New())
	require.True(t, ok)

	second, ok := gs.joinOrCreate(uuid.New())
	require.True(t, ok)
	assert.Equal(t, first, second)

	// The slot is gone: a third joiner starts a fresh game.
	third, ok := gs.joinOrCreate(uuid.New())
	require.True(t, ok)
	assert.NotEqual(t, first, third)

	gs.Timers.CancelGame(first)
	gs.Timers.CancelGame(third)
}

func TestJoinOrCreateRejectsDoubleJoin(t *testing.T) {
	gs := newTestServer()
	userID := uuid.New()

	gameID, ok := gs.joinOrCreate(userID)
	require.True(t, ok)

	_, ok = gs.joinOrCreate(userID)
	assert.False(t, ok)

	// The waiting slot survives the refused join.
	partner, ok := gs.joinOrCreate(uuid.New())
	require.True(t, ok)
	assert.Equal(t, gameID, partner)

	gs.Timers.CancelGame(gameID)
}

func TestJoinOrCreatePairsConcurrentJoiners(t *testing.T) {
	gs := newTestServer()
	const joiners = 8

	var wg sync.WaitGroup
	results := make([]uuid.UUID, joiners)
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			gameID, ok := gs.joinOrCreate(uuid.New())
			assert.True(t, ok)
			results[i] = gameID
		}(i)
	}
	wg.Wait()

	// Every joiner landed, two per game, with no stranded waiting game.
	seats := make(map[uuid.UUID]int)
	for _, id := range results {
		seats[id]++
	}
	require.Len(t, seats, joiners/2)
	for id, n := range seats {
		assert.Equal(t, 2, n)
		gs.Timers.CancelGame(id)
	}
	gs.mu.Lock()
	assert.Equal(t, uuid.Nil, gs.waitingGameID)
	gs.mu.Unlock()
}
