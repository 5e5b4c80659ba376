// internal/game/room.go
package game

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"

	"gridline/internal/models"
)

// Room is the live, in-memory instance of a match room. All mutable fields
// are guarded by Mu; timer and supervisor callbacks relock before touching
// anything.
type Room struct {
	Mu sync.Mutex

	ID     string
	Host   *models.Seat
	Guest  *models.Seat
	Config models.RoomConfig
	Match  *models.Match

	LastActivity time.Time

	// timerGen invalidates stale timer callbacks: every start or stop bumps
	// the generation, and a running timer loop abandons itself as soon as
	// its captured generation no longer matches.
	timerGen    uint64
	timerActive bool

	// BroadcastFn, when set, replaces the direct websocket fan-out. Tests
	// use this to capture the event stream.
	BroadcastFn func(ev Event)
}

func (r *Room) touch() {
	r.LastActivity = time.Now()
}

// seatFor returns the live seat bound to connID, or nil.
func (r *Room) seatFor(connID string) *models.Seat {
	if r.Host != nil && r.Host.ConnID == connID {
		return r.Host
	}
	if r.Guest != nil && r.Guest.ConnID == connID {
		return r.Guest
	}
	return nil
}

// record snapshots the room for the durable store. Caller holds Mu.
func (r *Room) record() *models.RoomRecord {
	rec := &models.RoomRecord{
		RoomID:       r.ID,
		Host:         *r.Host,
		Config:       r.Config,
		LastActivity: r.LastActivity,
	}
	if r.Guest != nil {
		g := *r.Guest
		rec.Guest = &g
	}
	return rec
}

// broadcastLocked sends ev to every connected seat. Caller holds Mu; the
// writes themselves run asynchronously so a slow socket never stalls game
// state transitions.
func (r *Room) broadcastLocked(log *logrus.Logger, ev Event) {
	if r.BroadcastFn != nil {
		r.BroadcastFn(ev)
		return
	}
	for _, seat := range []*models.Seat{r.Host, r.Guest} {
		if seat == nil || seat.Conn == nil {
			continue
		}
		go writeEvent(log, seat.Conn, ev)
	}
}

// writeEvent marshals and writes one event with a bounded timeout. The
// websocket library serializes concurrent writers internally.
func writeEvent(log *logrus.Logger, conn *websocket.Conn, ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, ev); err != nil {
		if log != nil {
			log.WithError(err).WithField("event", ev.Type).Debug("websocket write failed")
		}
	}
}
