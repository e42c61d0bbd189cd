// internal/game/timer_registry.go
package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// TimerKind separates the setup-deadline clock from the per-turn clock.
type TimerKind string

const (
	TimerSetup TimerKind = "SETUP"
	TimerTurn  TimerKind = "TURN"
)

type timerKey struct {
	gameID uuid.UUID
	kind   TimerKind
}

// TimerRegistry owns every pending clock, one per (game, kind). Scheduling a
// key stops whatever was pending under it; a generation counter guards the
// callback against firing after a reset raced it.
type TimerRegistry struct {
	mu     sync.Mutex
	timers map[timerKey]*time.Timer
	gen    map[timerKey]uint64
}

func NewTimerRegistry() *TimerRegistry {
	return &TimerRegistry{
		timers: make(map[timerKey]*time.Timer),
		gen:    make(map[timerKey]uint64),
	}
}

// Schedule arms (or re-arms) the clock for a key. The callback runs in its
// own goroutine so it may take game locks freely.
func (tr *TimerRegistry) Schedule(gameID uuid.UUID, kind TimerKind, d time.Duration, fn func()) {
	key := timerKey{gameID, kind}

	tr.mu.Lock()
	defer tr.mu.Unlock()

	if t := tr.timers[key]; t != nil {
		t.Stop()
	}
	tr.gen[key]++
	myGen := tr.gen[key]

	tr.timers[key] = time.AfterFunc(d, func() {
		tr.mu.Lock()
		stale := tr.gen[key] != myGen
		if !stale {
			delete(tr.timers, key)
		}
		tr.mu.Unlock()
		if stale {
			log.WithFields(log.Fields{"game": gameID, "kind": kind}).Debug("stale timer fired, ignoring")
			return
		}
		go fn()
	})
}

// Cancel stops one pending clock. Safe to call when none is armed.
func (tr *TimerRegistry) Cancel(gameID uuid.UUID, kind TimerKind) {
	key := timerKey{gameID, kind}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.gen[key]++
	if t := tr.timers[key]; t != nil {
		t.Stop()
		delete(tr.timers, key)
	}
}

// CancelGame stops every clock belonging to a game. Called when the game
// ends for any reason.
func (tr *TimerRegistry) CancelGame(gameID uuid.UUID) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for _, kind := range []TimerKind{TimerSetup, TimerTurn} {
		key := timerKey{gameID, kind}
		tr.gen[key]++
		if t := tr.timers[key]; t != nil {
			t.Stop()
			delete(tr.timers, key)
		}
	}
}
