// internal/game/timer.go
package game

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"gridline/internal/models"
)

// startTurnTimerLocked arms the countdown for the turn now in progress,
// cancelling whatever was running. A room configured without a timer keeps
// turns open ended. Caller holds r.Mu.
func (m *Manager) startTurnTimerLocked(r *Room) {
	r.timerGen++
	if r.Config.TimerDuration <= 0 {
		r.timerActive = false
		return
	}
	r.timerActive = true
	gen := r.timerGen
	duration := r.Config.TimerDuration
	if r.Match != nil {
		r.broadcastLocked(m.Logger, Event{Type: EventUpdateTimer, Data: TimerPayload{
			RoomID:      r.ID,
			TimeLeft:    duration,
			CurrentTurn: r.Match.CurrentTurn(),
		}})
	}
	go m.runTurnTimer(r, gen, duration)
}

// stopTurnTimerLocked invalidates the running countdown. The timer goroutine
// notices the generation mismatch on its next tick and exits without acting.
// Caller holds r.Mu.
func (m *Manager) stopTurnTimerLocked(r *Room) {
	r.timerGen++
	r.timerActive = false
}

// runTurnTimer drives one countdown. It revalidates its generation under the
// room lock at every tick, so a timer superseded by a move, a round change or
// an explicit stop is guaranteed to fire no expiry.
func (m *Manager) runTurnTimer(r *Room, gen uint64, duration int) {
	ticker := time.NewTicker(m.Timings.TickInterval)
	defer ticker.Stop()
	remaining := duration
	for range ticker.C {
		r.Mu.Lock()
		if r.timerGen != gen || !r.timerActive {
			r.Mu.Unlock()
			return
		}
		remaining--
		if remaining <= 0 {
			m.resolveTimeoutLocked(r)
			r.Mu.Unlock()
			return
		}
		if r.Match != nil {
			r.broadcastLocked(m.Logger, Event{Type: EventUpdateTimer, Data: TimerPayload{
				RoomID:      r.ID,
				TimeLeft:    remaining,
				CurrentTurn: r.Match.CurrentTurn(),
			}})
		}
		r.Mu.Unlock()
	}
}

// resolveTimeoutLocked forfeits the round for the player whose clock ran
// out. Caller holds r.Mu.
func (m *Manager) resolveTimeoutLocked(r *Room) {
	match := r.Match
	if match == nil || match.IsFinished || match.IsGameEnding {
		return
	}
	loser := match.CurrentTurn()
	result := models.RoundResult{
		Round:  match.Round,
		Winner: loser.Opponent(),
		Reason: models.ReasonTimeOver,
	}
	m.Logger.WithFields(logrus.Fields{
		"room_id": r.ID,
		"loser":   loser,
		"round":   match.Round,
	}).Info("turn timer expired")
	if err := m.endRoundLocked(context.Background(), r, result, nil, nil); err != nil {
		m.Logger.WithError(err).WithField("room_id", r.ID).Error("failed to resolve timeout")
	}
}
