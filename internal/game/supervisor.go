// internal/game/supervisor.go
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gridline/internal/engine"
	"gridline/internal/models"
)

// HandleDisconnect detaches the socket behind connID from its seat. The seat
// binding itself survives for the grace period so the player can reclaim it;
// the running turn timer is left alone, an absent player times out like a
// present one.
func (m *Manager) HandleDisconnect(ctx context.Context, connID string) {
	r, ok := m.Rooms.GetByConnID(connID)
	if !ok {
		rec, err := m.Store.GetRoomByConnID(ctx, connID)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				m.Logger.WithError(err).Warn("disconnect lookup failed")
			}
			return
		}
		if r, err = m.lookupRoom(ctx, rec.RoomID); err != nil {
			return
		}
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()
	seat := r.seatFor(connID)
	if seat == nil {
		return
	}
	seat.Conn = nil
	seatKey := "host"
	if seat == r.Guest {
		seatKey = "guest"
	}
	m.Logger.WithFields(logrus.Fields{
		"room_id": r.ID,
		"seat":    seatKey,
	}).Info("player disconnected")

	roomID := r.ID
	m.tasks.Schedule(roomID+"/grace/"+seatKey, m.Timings.GracePeriod, func() {
		m.clearSeatIfStale(roomID, seatKey, connID)
	})
	m.scheduleSweep(roomID)
}

// clearSeatIfStale drops the connection binding after the grace period, but
// only if the same dead connection still owns the seat.
func (m *Manager) clearSeatIfStale(roomID, seatKey, connID string) {
	r, ok := m.Rooms.Get(roomID)
	if !ok {
		return
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()
	seat := r.Host
	if seatKey == "guest" {
		seat = r.Guest
	}
	if seat == nil || seat.ConnID != connID || seat.Conn != nil {
		return
	}
	seat.ConnID = ""
	if err := m.Store.UpsertRoom(context.Background(), r.record()); err != nil {
		m.Logger.WithError(err).WithField("room_id", roomID).Warn("failed to persist seat clear")
	}
	m.Logger.WithFields(logrus.Fields{
		"room_id": roomID,
		"seat":    seatKey,
	}).Info("grace period elapsed, seat unbound")
}

func (m *Manager) scheduleSweep(roomID string) {
	m.tasks.Schedule(roomID+"/sweep", m.Timings.SweepDelay, func() {
		m.sweepIdleRoom(roomID)
	})
}

// sweepIdleRoom evicts a room that has sat idle past its window. Rooms still
// waiting for a guest get the short window, paired rooms the long one, and a
// match in progress always blocks eviction.
func (m *Manager) sweepIdleRoom(roomID string) {
	r, ok := m.Rooms.Get(roomID)
	if !ok {
		return
	}
	r.Mu.Lock()
	window := m.Timings.IdleNoGuest
	if r.Guest != nil {
		window = m.Timings.IdleWithGuest
	}
	idle := time.Since(r.LastActivity)
	activeMatch := r.Match != nil && !r.Match.IsFinished
	liveConn := (r.Host != nil && r.Host.Conn != nil) || (r.Guest != nil && r.Guest.Conn != nil)
	if idle < window || activeMatch || liveConn {
		r.Mu.Unlock()
		m.scheduleSweep(roomID)
		return
	}
	m.stopTurnTimerLocked(r)
	r.Mu.Unlock()
	m.evictRoom(roomID)
	m.Logger.WithFields(logrus.Fields{
		"room_id": roomID,
		"idle":    idle.Round(time.Second),
	}).Info("idle room evicted")
}

// evictRoom removes every trace of the room: live registry, durable records
// and any pending scheduled work.
func (m *Manager) evictRoom(roomID string) {
	m.Rooms.Delete(roomID)
	m.tasks.CancelPrefix(roomID + "/")
	ctx := context.Background()
	if err := m.Store.DeleteMatch(ctx, roomID); err != nil && !errors.Is(err, models.ErrNotFound) {
		m.Logger.WithError(err).WithField("room_id", roomID).Warn("failed to delete match record")
	}
	if err := m.Store.DeleteRoom(ctx, roomID); err != nil && !errors.Is(err, models.ErrNotFound) {
		m.Logger.WithError(err).WithField("room_id", roomID).Warn("failed to delete room record")
	}
}

// Reconnect rebinds a returning player to their seat and hands back the full
// state snapshot the client needs to redraw. Rooms past the absolute
// reconnect window are evicted instead.
func (m *Manager) Reconnect(ctx context.Context, roomID string, playerID uuid.UUID, connID string, conn *websocket.Conn) (Event, error) {
	r, err := m.lookupRoom(ctx, roomID)
	if err != nil {
		return Event{}, err
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if time.Since(r.LastActivity) > m.Timings.ReconnectExpiry {
		m.stopTurnTimerLocked(r)
		r.Mu.Unlock()
		m.evictRoom(r.ID)
		r.Mu.Lock()
		m.Logger.WithField("room_id", roomID).Info("reconnect past expiry, room evicted")
		return Event{}, ErrRoomNotFound
	}

	var seat *models.Seat
	isHost := false
	if r.Host != nil && r.Host.ID == playerID {
		seat = r.Host
		isHost = true
	} else if r.Guest != nil && r.Guest.ID == playerID {
		seat = r.Guest
	}
	if seat == nil {
		return Event{}, ErrRoomNotFound
	}

	seat.ConnID = connID
	seat.Conn = conn
	r.touch()
	if err := m.Store.UpsertRoom(ctx, r.record()); err != nil {
		return Event{}, fmt.Errorf("persist room %s: %w", roomID, err)
	}

	seatKey := "host"
	if !isHost {
		seatKey = "guest"
	}
	m.tasks.Cancel(r.ID + "/grace/" + seatKey)
	m.scheduleSweep(r.ID)

	state := ReconnectState{
		MySymbol: seat.Symbol,
		IsHost:   isHost,
		Config:   r.Config,
	}
	if match := r.Match; match != nil {
		_, line := engine.FindWinningLine(match.Board, match.BoardSize, match.LineLength)
		state.PlayerX = match.PlayerX
		state.PlayerO = match.PlayerO
		state.Board = append(engine.Board(nil), match.Board...)
		state.XIsNext = match.XIsNext
		state.CurrentRound = match.Round
		state.IsGameFinished = match.IsFinished
		state.WinningLine = line
		state.Results = match.Results
		if !match.IsFinished && !match.IsGameEnding && !r.timerActive {
			m.startTurnTimerLocked(r)
		}
	} else {
		state.PlayerX = r.Host.Participant
		if r.Guest != nil {
			state.PlayerO = r.Guest.Participant
		}
		state.Board = engine.NewBoard(r.Config.BoardSize)
		state.XIsNext = true
		state.CurrentRound = 1
	}

	m.Logger.WithFields(logrus.Fields{
		"room_id": roomID,
		"seat":    seatKey,
	}).Info("player reconnected")
	return Event{Type: EventReconnectSuccess, Data: ReconnectPayload{GameState: state}}, nil
}
