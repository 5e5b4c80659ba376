// internal/game/manager.go
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gridline/internal/cache"
	"gridline/internal/engine"
	"gridline/internal/models"
)

// ErrNotHost rejects privileged room operations from the guest seat.
var ErrNotHost = errors.New("only the host can do that")

// Timings collects every duration the manager schedules against. Production
// uses DefaultTimings; tests shrink these to keep runs fast.
type Timings struct {
	GracePeriod     time.Duration
	SweepDelay      time.Duration
	IdleNoGuest     time.Duration
	IdleWithGuest   time.Duration
	ReconnectExpiry time.Duration
	RoundStartDelay time.Duration
	TickInterval    time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		GracePeriod:     5 * time.Minute,
		SweepDelay:      5 * time.Minute,
		IdleNoGuest:     5 * time.Minute,
		IdleWithGuest:   15 * time.Minute,
		ReconnectExpiry: 30 * time.Minute,
		RoundStartDelay: 1500 * time.Millisecond,
		TickInterval:    time.Second,
	}
}

// Manager owns room lifecycle: creation, seating, match progression, the turn
// timer and the disconnect supervisor. Rooms live in memory; every state
// transition is written through to the durable store before any broadcast
// goes out, so the store is always at least as current as what clients saw.
type Manager struct {
	Rooms   *RoomStore
	Store   Store
	Logger  *logrus.Logger
	Timings Timings

	tasks *taskRunner
}

func NewManager(store Store, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.New()
	}
	return &Manager{
		Rooms:   NewRoomStore(),
		Store:   store,
		Logger:  logger,
		Timings: DefaultTimings(),
		tasks:   newTaskRunner(),
	}
}

// lookupRoom resolves roomID, faulting in from the durable store when the
// room is not live. A faulted-in room also restores its match record.
func (m *Manager) lookupRoom(ctx context.Context, roomID string) (*Room, error) {
	if r, ok := m.Rooms.Get(roomID); ok {
		return r, nil
	}
	rec, err := m.Store.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("load room %s: %w", roomID, err)
	}
	host := rec.Host
	r := &Room{
		ID:           rec.RoomID,
		Host:         &host,
		Config:       rec.Config,
		LastActivity: rec.LastActivity,
	}
	if rec.Guest != nil {
		g := *rec.Guest
		r.Guest = &g
	}
	match, err := m.Store.GetMatch(ctx, roomID)
	if err == nil {
		// the transition hold is an in-process concern, never carried
		// across a fault-in
		match.IsGameEnding = false
		r.Match = match
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("load match %s: %w", roomID, err)
	}
	r, inserted := m.Rooms.AddIfAbsent(r)
	if !inserted {
		// lost the race to a concurrent fault-in, use the live one
		m.Logger.WithField("room_id", roomID).Debug("concurrent room fault-in")
	}
	return r, nil
}

// CreateRoom opens a new room with the caller seated as host (symbol X).
// A host re-issuing create for its own open room gets rebound to it; the ID
// is only taken when someone else holds it.
func (m *Manager) CreateRoom(ctx context.Context, roomID string, host models.Participant, cfg models.RoomConfig, connID string, conn *websocket.Conn) (*Room, error) {
	if reason := cfg.Validate(); reason != "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, reason)
	}
	host.Symbol = engine.SymbolX
	r := &Room{
		ID:           roomID,
		Host:         &models.Seat{Participant: host, ConnID: connID, Conn: conn},
		Config:       cfg,
		LastActivity: time.Now(),
	}
	if existing, inserted := m.Rooms.AddIfAbsent(r); !inserted {
		return m.rebindHost(ctx, existing, host.ID, connID, conn)
	}
	if rec, err := m.Store.GetRoom(ctx, roomID); err == nil {
		m.Rooms.Delete(roomID)
		if rec.Host.ID != host.ID {
			return nil, ErrRoomExists
		}
		live, err := m.lookupRoom(ctx, roomID)
		if err != nil {
			return nil, err
		}
		return m.rebindHost(ctx, live, host.ID, connID, conn)
	} else if !errors.Is(err, models.ErrNotFound) {
		m.Rooms.Delete(roomID)
		return nil, fmt.Errorf("check room %s: %w", roomID, err)
	}
	r.Mu.Lock()
	if err := m.Store.UpsertRoom(ctx, r.record()); err != nil {
		r.Mu.Unlock()
		m.Rooms.Delete(roomID)
		return nil, fmt.Errorf("persist room %s: %w", roomID, err)
	}
	m.scheduleSweep(r.ID)
	r.Mu.Unlock()
	m.Logger.WithFields(logrus.Fields{
		"room_id": roomID,
		"host":    host.Name,
	}).Info("room created")
	return r, nil
}

// rebindHost reattaches a returning host to the room it already owns. Any
// other caller colliding on the ID keeps getting ErrRoomExists.
func (m *Manager) rebindHost(ctx context.Context, r *Room, hostID uuid.UUID, connID string, conn *websocket.Conn) (*Room, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.Host == nil || r.Host.ID != hostID {
		return nil, ErrRoomExists
	}
	r.Host.ConnID = connID
	r.Host.Conn = conn
	r.touch()
	if err := m.Store.UpsertRoom(ctx, r.record()); err != nil {
		return nil, fmt.Errorf("persist room %s: %w", r.ID, err)
	}
	m.tasks.Cancel(r.ID + "/grace/host")
	m.scheduleSweep(r.ID)
	m.Logger.WithFields(logrus.Fields{
		"room_id": r.ID,
		"host":    r.Host.Name,
	}).Info("host rebound to own room")
	return r, nil
}

// JoinRoom seats guest (symbol O) into an existing room and announces the
// pairing to both players.
func (m *Manager) JoinRoom(ctx context.Context, roomID string, guest models.Participant, connID string, conn *websocket.Conn) (*Room, error) {
	r, err := m.lookupRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.Guest != nil && r.Guest.ID != guest.ID {
		return nil, ErrRoomFull
	}
	guest.Symbol = engine.SymbolO
	r.Guest = &models.Seat{Participant: guest, ConnID: connID, Conn: conn}
	r.touch()
	if err := m.Store.UpsertRoom(ctx, r.record()); err != nil {
		return nil, fmt.Errorf("persist room %s: %w", roomID, err)
	}
	r.broadcastLocked(m.Logger, Event{Type: EventBothPlayersJoined, Data: PlayersPayload{
		RoomID:  r.ID,
		PlayerX: r.Host.Participant,
		PlayerO: r.Guest.Participant,
		Config:  &r.Config,
	}})
	m.scheduleSweep(r.ID)
	m.Logger.WithFields(logrus.Fields{
		"room_id": roomID,
		"guest":   guest.Name,
	}).Info("guest joined")
	return r, nil
}

// StartMatch begins play. Only the host may start, and both seats must be
// filled. Starting over a finished match opens a rematch with fresh state.
func (m *Manager) StartMatch(ctx context.Context, roomID, connID string) error {
	r, err := m.lookupRoom(ctx, roomID)
	if err != nil {
		return err
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.Host == nil || r.Host.ConnID != connID {
		return ErrNotHost
	}
	if r.Guest == nil {
		return ErrRoomNotReady
	}
	if r.Match != nil && !r.Match.IsFinished {
		return nil
	}
	r.Match = &models.Match{
		RoomID:      r.ID,
		PlayerX:     r.Host.Participant,
		PlayerO:     r.Guest.Participant,
		Board:       engine.NewBoard(r.Config.BoardSize),
		BoardSize:   r.Config.BoardSize,
		LineLength:  r.Config.LineLength,
		XIsNext:     true,
		Round:       1,
		TotalRounds: r.Config.Rounds,
	}
	r.touch()
	if err := m.Store.UpsertMatch(ctx, r.Match); err != nil {
		return fmt.Errorf("persist match %s: %w", roomID, err)
	}
	if err := m.Store.UpsertRoom(ctx, r.record()); err != nil {
		return fmt.Errorf("persist room %s: %w", roomID, err)
	}
	r.broadcastLocked(m.Logger, Event{Type: EventGameStarted, Data: PlayersPayload{
		RoomID:  r.ID,
		PlayerX: r.Match.PlayerX,
		PlayerO: r.Match.PlayerO,
		Config:  &r.Config,
	}})
	m.startTurnTimerLocked(r)
	m.journal(r.ID, EventGameStarted, map[string]interface{}{
		"playerX": r.Match.PlayerX.Name,
		"playerO": r.Match.PlayerO.Name,
		"rounds":  r.Config.Rounds,
	})
	m.Logger.WithField("room_id", roomID).Info("match started")
	return nil
}

// ApplyMove validates and applies a move from the connection connID at cell
// index, then advances the round or match state as the board dictates.
func (m *Manager) ApplyMove(ctx context.Context, roomID, connID string, index int) error {
	r, err := m.lookupRoom(ctx, roomID)
	if err != nil {
		return err
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()

	match := r.Match
	if match == nil {
		return ErrMatchNotFound
	}
	if match.IsFinished {
		return ErrMatchFinished
	}
	if match.IsGameEnding {
		return ErrRoundEnding
	}
	if index < 0 || index >= len(match.Board) {
		return ErrCellOutOfRange
	}
	seat := r.seatFor(connID)
	if seat == nil || seat.Symbol != match.CurrentTurn() {
		return ErrNotYourTurn
	}
	if match.Board[index] != engine.SymbolNone {
		return ErrCellOccupied
	}
	if winner, _ := engine.FindWinningLine(match.Board, match.BoardSize, match.LineLength); winner != engine.SymbolNone {
		return ErrRoundDecided
	}

	symbol := match.CurrentTurn()
	match.Board[index] = symbol
	match.XIsNext = !match.XIsNext
	r.touch()

	winner, line := engine.FindWinningLine(match.Board, match.BoardSize, match.LineLength)
	draw := winner == engine.SymbolNone && engine.IsDraw(match.Board)

	if winner == engine.SymbolNone && !draw {
		if err := m.Store.UpsertMatch(ctx, match); err != nil {
			return fmt.Errorf("persist match %s: %w", roomID, err)
		}
		r.broadcastLocked(m.Logger, Event{Type: EventUpdateBoard, Data: BoardUpdatePayload{
			RoomID:       r.ID,
			Index:        index,
			Symbol:       symbol,
			XIsNext:      match.XIsNext,
			CurrentRound: match.Round,
		}})
		m.startTurnTimerLocked(r)
		return nil
	}

	result := models.RoundResult{
		Round:  match.Round,
		Winner: winner,
		Draw:   draw,
	}
	if winner != engine.SymbolNone {
		result.Reason = models.ReasonLineCompletion
	}
	update := Event{Type: EventUpdateBoard, Data: BoardUpdatePayload{
		RoomID:         r.ID,
		Index:          index,
		Symbol:         symbol,
		XIsNext:        match.XIsNext,
		CurrentRound:   match.Round,
		IsGameFinished: match.Round >= match.TotalRounds,
		Winner:         winner,
		WinningLine:    line,
		Draw:           draw,
	}}
	return m.endRoundLocked(ctx, r, result, line, &update)
}

// endRoundLocked closes the current round: it records the result, persists,
// then broadcasts round-ended or game-over. When more rounds remain the next
// round is armed after a short delay. extra, when non-nil, is broadcast right
// after the persist and before the round events. Caller holds r.Mu.
func (m *Manager) endRoundLocked(ctx context.Context, r *Room, result models.RoundResult, line []int, extra *Event) error {
	match := r.Match
	match.IsGameEnding = true
	m.stopTurnTimerLocked(r)
	match.Results = append(match.Results, result)

	endedBoard := append(engine.Board(nil), match.Board...)
	final := match.Round >= match.TotalRounds

	if final {
		match.IsFinished = true
	} else {
		// arm the next round in memory so the persisted record already
		// reflects it; clients switch over on round-ended
		if match.Round < match.TotalRounds {
			match.Round++
		}
		match.Board = engine.NewBoard(match.BoardSize)
		match.XIsNext = true
	}

	if err := m.Store.UpsertMatch(ctx, match); err != nil {
		match.IsGameEnding = false
		return fmt.Errorf("persist match %s: %w", r.ID, err)
	}
	if extra != nil {
		r.broadcastLocked(m.Logger, *extra)
	}

	if final {
		stats := m.applyFinalStatsLocked(ctx, r)
		r.broadcastLocked(m.Logger, Event{Type: EventGameOver, Data: GameOverPayload{
			RoomID:      r.ID,
			Results:     match.Results,
			Stats:       stats,
			Board:       endedBoard,
			WinningLine: line,
			LastResult:  result,
		}})
		m.journal(r.ID, EventGameOver, map[string]interface{}{
			"results": match.Results,
			"reason":  result.Reason,
		})
		match.IsGameEnding = false
		m.Logger.WithFields(logrus.Fields{
			"room_id": r.ID,
			"rounds":  len(match.Results),
		}).Info("match finished")
		return nil
	}

	r.broadcastLocked(m.Logger, Event{Type: EventRoundEnded, Data: RoundEndedPayload{
		RoomID:       r.ID,
		Result:       result,
		CurrentRound: match.Round,
		Board:        endedBoard,
		WinningLine:  line,
	}})
	m.journal(r.ID, EventRoundEnded, map[string]interface{}{
		"round":  result.Round,
		"winner": result.Winner,
		"draw":   result.Draw,
		"reason": result.Reason,
	})

	// hold new moves until the transition delay elapses
	roomID := r.ID
	m.tasks.Schedule(roomID+"/round", m.Timings.RoundStartDelay, func() {
		room, ok := m.Rooms.Get(roomID)
		if !ok {
			return
		}
		room.Mu.Lock()
		defer room.Mu.Unlock()
		if room.Match == nil || room.Match.IsFinished {
			return
		}
		room.Match.IsGameEnding = false
		m.startTurnTimerLocked(room)
	})
	return nil
}

// applyFinalStatsLocked tallies the finished match and writes per-player
// stat increments. Each player's write is independent; a failure is logged
// and does not undo the other side. Caller holds r.Mu.
func (m *Manager) applyFinalStatsLocked(ctx context.Context, r *Room) MatchStats {
	match := r.Match
	xWins, oWins, draws := match.TallyResults()
	rounds := len(match.Results)

	stats := MatchStats{
		PlayerX: &models.RoundStats{Wins: xWins, Draws: draws, Losses: oWins},
		PlayerO: &models.RoundStats{Wins: oWins, Draws: draws, Losses: xWins},
	}

	type side struct {
		p          models.Participant
		won, drawn bool
		rs         *models.RoundStats
	}
	sides := []side{
		{p: match.PlayerX, won: xWins > oWins, drawn: xWins == oWins, rs: stats.PlayerX},
		{p: match.PlayerO, won: oWins > xWins, drawn: xWins == oWins, rs: stats.PlayerO},
	}
	for _, s := range sides {
		if s.p.ID == uuid.Nil {
			continue
		}
		delta := models.StatsDelta{
			Matches:     1,
			Rounds:      rounds,
			RoundsWon:   s.rs.Wins,
			RoundsDrawn: s.rs.Draws,
			RoundsLost:  s.rs.Losses,
		}
		switch {
		case s.won:
			delta.MatchesWon = 1
		case s.drawn:
			delta.MatchesDrawn = 1
		default:
			delta.MatchesLost = 1
		}
		if err := m.Store.IncrementUserStats(ctx, s.p.ID, delta); err != nil {
			m.Logger.WithError(err).WithFields(logrus.Fields{
				"room_id": r.ID,
				"user_id": s.p.ID,
			}).Error("failed to record match stats")
		}
	}
	return stats
}

// journal pushes a match event onto the redis journal, fire and forget.
func (m *Manager) journal(roomID, eventType string, payload map[string]interface{}) {
	cache.PublishMatchEvent(cache.MatchEventRecord{
		RoomID:    roomID,
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}
