// internal/game/supervisor_test.go
package game

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridline/internal/engine"
	"gridline/internal/models"
)

func TestDisconnect_SeatSurvivesUntilGraceElapses(t *testing.T) {
	ctx := context.Background()
	m, room, _, mb := setupTestRoom(t, defaultConfig())
	startTestMatch(t, m, mb)

	m.HandleDisconnect(ctx, guestConn)

	// inside the grace period the binding is still there
	room.Mu.Lock()
	assert.True(t, room.Guest.Connected())
	room.Mu.Unlock()

	// after the grace period it is cleared
	deadline := time.Now().Add(time.Second)
	for {
		room.Mu.Lock()
		cleared := !room.Guest.Connected()
		room.Mu.Unlock()
		if cleared {
			break
		}
		require.True(t, time.Now().Before(deadline), "seat binding never cleared")
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDisconnect_GraceSkippedWhenRebound(t *testing.T) {
	ctx := context.Background()
	m, room, _, mb := setupTestRoom(t, defaultConfig())
	startTestMatch(t, m, mb)

	room.Mu.Lock()
	guestID := room.Guest.ID
	room.Mu.Unlock()

	m.HandleDisconnect(ctx, guestConn)
	_, err := m.Reconnect(ctx, "room-1", guestID, "conn-guest-2", nil)
	require.NoError(t, err)

	// past the original grace deadline the new binding must be intact
	time.Sleep(2 * m.Timings.GracePeriod)
	room.Mu.Lock()
	defer room.Mu.Unlock()
	assert.Equal(t, "conn-guest-2", room.Guest.ConnID)
}

func TestReconnect_ReturnsMatchSnapshot(t *testing.T) {
	ctx := context.Background()
	m, room, _, mb := setupTestRoom(t, defaultConfig())
	startTestMatch(t, m, mb)
	require.NoError(t, m.ApplyMove(ctx, "room-1", hostConn, 4))

	room.Mu.Lock()
	guestID := room.Guest.ID
	room.Mu.Unlock()

	m.HandleDisconnect(ctx, guestConn)
	ev, err := m.Reconnect(ctx, "room-1", guestID, "conn-guest-2", nil)
	require.NoError(t, err)

	assert.Equal(t, EventReconnectSuccess, ev.Type)
	state := ev.Data.(ReconnectPayload).GameState
	assert.Equal(t, engine.SymbolO, state.MySymbol)
	assert.False(t, state.IsHost)
	assert.Equal(t, engine.SymbolX, state.Board[4])
	assert.False(t, state.XIsNext)
	assert.Equal(t, 1, state.CurrentRound)
	assert.False(t, state.IsGameFinished)
	assert.Equal(t, defaultConfig(), state.Config)

	// the rebound connection can play immediately
	require.NoError(t, m.ApplyMove(ctx, "room-1", "conn-guest-2", 0))
}

func TestReconnect_RestoresTurnTimer(t *testing.T) {
	ctx := context.Background()
	m, room, _, mb := setupTestRoom(t, timedConfig())
	startTestMatch(t, m, mb)

	room.Mu.Lock()
	guestID := room.Guest.ID
	m.stopTurnTimerLocked(room) // simulate a countdown lost along the way
	room.Mu.Unlock()

	_, err := m.Reconnect(ctx, "room-1", guestID, "conn-guest-2", nil)
	require.NoError(t, err)

	room.Mu.Lock()
	defer room.Mu.Unlock()
	assert.True(t, room.timerActive, "reconnect must re-arm the countdown for a live match")
}

func TestReconnect_UnknownPlayer(t *testing.T) {
	m, _, _, mb := setupTestRoom(t, defaultConfig())
	startTestMatch(t, m, mb)

	_, err := m.Reconnect(context.Background(), "room-1", uuid.New(), "conn-x", nil)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestReconnect_PastExpiryEvictsRoom(t *testing.T) {
	ctx := context.Background()
	m, room, store, mb := setupTestRoom(t, defaultConfig())
	startTestMatch(t, m, mb)

	room.Mu.Lock()
	guestID := room.Guest.ID
	// age the room past the absolute reconnect window
	room.LastActivity = time.Now().Add(-2 * m.Timings.ReconnectExpiry)
	room.Mu.Unlock()

	_, err := m.Reconnect(ctx, "room-1", guestID, "conn-guest-2", nil)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, ok := m.Rooms.Get("room-1")
	assert.False(t, ok)
	_, err = store.GetRoom(ctx, "room-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = store.GetMatch(ctx, "room-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSweep_EvictsIdleRoomWithoutGuest(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	m := NewManager(store, nil)
	m.Timings = testTimings()

	host := models.Participant{ID: uuid.New(), Name: "Hana"}
	room, err := m.CreateRoom(ctx, "room-1", host, defaultConfig(), hostConn, nil)
	require.NoError(t, err)

	room.Mu.Lock()
	room.LastActivity = time.Now().Add(-2 * m.Timings.IdleNoGuest)
	room.Mu.Unlock()

	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := m.Rooms.Get("room-1"); !ok {
			break
		}
		require.True(t, time.Now().Before(deadline), "idle room never evicted")
		time.Sleep(5 * time.Millisecond)
	}
	_, err = store.GetRoom(ctx, "room-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSweep_ActiveMatchBlocksEviction(t *testing.T) {
	m, room, _, mb := setupTestRoom(t, defaultConfig())
	startTestMatch(t, m, mb)

	room.Mu.Lock()
	room.LastActivity = time.Now().Add(-2 * m.Timings.IdleWithGuest)
	room.Mu.Unlock()

	// several sweep cycles pass and the room stays because the match runs
	time.Sleep(4 * m.Timings.SweepDelay)
	_, ok := m.Rooms.Get("room-1")
	assert.True(t, ok)
}

func TestSweep_EvictsAfterMatchFinishes(t *testing.T) {
	m, room, store, mb := setupTestRoom(t, defaultConfig())
	startTestMatch(t, m, mb)
	playRowWin(t, m)

	room.Mu.Lock()
	require.True(t, room.Match.IsFinished)
	room.LastActivity = time.Now().Add(-2 * m.Timings.IdleWithGuest)
	room.Mu.Unlock()

	// the win rescheduled no sweep, trigger one as a disconnect would
	m.HandleDisconnect(context.Background(), hostConn)

	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := m.Rooms.Get("room-1"); !ok {
			break
		}
		require.True(t, time.Now().Before(deadline), "finished room never evicted")
		time.Sleep(5 * time.Millisecond)
	}
	_, err := store.GetMatch(context.Background(), "room-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDisconnect_UnknownConnIsNoOp(t *testing.T) {
	m, _, _, _ := setupTestRoom(t, defaultConfig())
	// must not panic or disturb the room
	m.HandleDisconnect(context.Background(), "no-such-conn")
	_, ok := m.Rooms.Get("room-1")
	assert.True(t, ok)
}
