package game

import (
	"sync"

	"github.com/google/uuid"
)

type GameStore struct {
	mu    sync.Mutex
	games map[uuid.UUID]*UnitGame
}

func NewGameStore() *GameStore {
	return &GameStore{
		games: make(map[uuid.UUID]*UnitGame),
	}
}

func (s *GameStore) AddGame(game *UnitGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game
}

func (s *GameStore) GetGame(id uuid.UUID) (*UnitGame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, exists := s.games[id]
	return g, exists
}

func (s *GameStore) DeleteGame(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}

// GetGameByPlayerID returns the game a player is currently seated in, or nil.
func (s *GameStore) GetGameByPlayerID(playerID uuid.UUID) *UnitGame {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.games {
		for _, id := range g.Players {
			if id == playerID {
				return g
			}
		}
	}
	return nil
}
