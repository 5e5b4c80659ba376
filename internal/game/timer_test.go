// internal/game/timer_test.go
package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridline/internal/engine"
	"gridline/internal/models"
)

func timedConfig() models.RoomConfig {
	return models.RoomConfig{BoardSize: 3, LineLength: 3, Rounds: 1, TimerDuration: 10}
}

func TestTurnTimeout_ForfeitsMatch(t *testing.T) {
	m, _, store, mb := setupTestRoom(t, timedConfig())
	startTestMatch(t, m, mb)

	// with a 5ms tick the 10 "second" countdown expires in ~50ms
	ev := mb.waitForEvent(t, EventGameOver, time.Second)
	payload := ev.Data.(GameOverPayload)
	require.Len(t, payload.Results, 1)
	assert.Equal(t, models.ReasonTimeOver, payload.Results[0].Reason)
	// X was on turn, so the win goes to O
	assert.Equal(t, engine.SymbolO, payload.Results[0].Winner)
	assert.False(t, payload.Results[0].Draw)

	stored := store.storedMatch(t, "room-1")
	assert.True(t, stored.IsFinished)
}

func TestTurnTimeout_NonFinalRoundContinues(t *testing.T) {
	cfg := timedConfig()
	cfg.Rounds = 2
	m, room, _, mb := setupTestRoom(t, cfg)
	startTestMatch(t, m, mb)

	ev := mb.waitForEvent(t, EventRoundEnded, time.Second)
	payload := ev.Data.(RoundEndedPayload)
	assert.Equal(t, models.ReasonTimeOver, payload.Result.Reason)
	assert.Equal(t, engine.SymbolO, payload.Result.Winner)
	assert.Equal(t, 2, payload.CurrentRound)

	// round 2 opens after the transition delay with a fresh countdown
	deadline := time.Now().Add(time.Second)
	for {
		room.Mu.Lock()
		open := !room.Match.IsGameEnding && room.timerActive
		room.Mu.Unlock()
		if open {
			break
		}
		require.True(t, time.Now().Before(deadline), "round 2 never opened")
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTurnTimer_EmitsCountdownTicks(t *testing.T) {
	m, _, _, mb := setupTestRoom(t, timedConfig())
	startTestMatch(t, m, mb)

	ev := mb.waitForEvent(t, EventUpdateTimer, time.Second)
	payload := ev.Data.(TimerPayload)
	assert.Equal(t, "room-1", payload.RoomID)
	assert.Equal(t, engine.SymbolX, payload.CurrentTurn)
	assert.LessOrEqual(t, payload.TimeLeft, 10)
	assert.Positive(t, payload.TimeLeft)
}

func TestTurnTimer_StopInvalidatesPendingExpiry(t *testing.T) {
	m, room, _, mb := setupTestRoom(t, timedConfig())
	startTestMatch(t, m, mb)

	room.Mu.Lock()
	m.stopTurnTimerLocked(room)
	room.Mu.Unlock()

	// well past the original deadline nothing may have fired
	time.Sleep(150 * time.Millisecond)
	assert.Nil(t, mb.lastOfType(EventRoundEnded))
	assert.Nil(t, mb.lastOfType(EventGameOver))

	room.Mu.Lock()
	defer room.Mu.Unlock()
	assert.False(t, room.Match.IsFinished)
	assert.Empty(t, room.Match.Results)
}

func TestTurnTimer_DisabledWhenNoDuration(t *testing.T) {
	m, room, _, mb := setupTestRoom(t, defaultConfig())
	startTestMatch(t, m, mb)

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, mb.countOfType(EventUpdateTimer))
	assert.Nil(t, mb.lastOfType(EventGameOver))

	room.Mu.Lock()
	defer room.Mu.Unlock()
	assert.False(t, room.timerActive)
}

func TestTurnTimer_MoveRestartsCountdown(t *testing.T) {
	ctx := context.Background()
	m, room, _, mb := setupTestRoom(t, timedConfig())
	startTestMatch(t, m, mb)

	room.Mu.Lock()
	genBefore := room.timerGen
	room.Mu.Unlock()

	require.NoError(t, m.ApplyMove(ctx, "room-1", hostConn, 0))

	room.Mu.Lock()
	defer room.Mu.Unlock()
	assert.Greater(t, room.timerGen, genBefore, "move must supersede the running countdown")
	assert.True(t, room.timerActive)
}
