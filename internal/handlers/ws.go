// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gridline/internal/database"
	"gridline/internal/engine"
	"gridline/internal/game"
	"gridline/internal/middleware"
	"gridline/internal/models"
)

// clientEvent is the inbound wire envelope. Data is decoded per event type.
type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type createRoomRequest struct {
	RoomID string            `json:"roomId"`
	Name   string            `json:"name"`
	Avatar string            `json:"avatar"`
	Config models.RoomConfig `json:"config"`
}

type joinRoomRequest struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type roomRequest struct {
	RoomID string `json:"roomId"`
}

type playerMoveRequest struct {
	RoomID string `json:"roomId"`
	Index  int    `json:"index"`
}

// WSHandler upgrades the HTTP connection and runs the read loop for one
// match gateway connection. The user is authenticated (or given a guest
// identity) before any room event is accepted.
func WSHandler(logger *logrus.Logger, s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"gridline"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "gridline" {
			logger.Warnf("Client connected with invalid subprotocol: %s", c.Subprotocol())
			c.Close(BadSubprotocolError, "Client must use the 'gridline' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		userID, err := EnsureEphemeralUser(w, r)
		if err != nil {
			logger.Warnf("User authentication failed: %v", err)
			c.Close(InvalidAuthTokenError, "Authentication failed.")
			return
		}

		connID := uuid.NewString()
		sess := &wsSession{
			server: s,
			logger: logger,
			conn:   c,
			connID: connID,
			userID: userID,
		}

		ctx := r.Context()
		var readErr error
		for {
			var ev clientEvent
			if readErr = wsjson.Read(ctx, c, &ev); readErr != nil {
				break
			}
			sess.dispatch(ctx, ev)
		}

		s.Manager.HandleDisconnect(context.Background(), connID)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
		c.Close(websocket.StatusNormalClosure, "closed")
	}
}

// wsSession holds the per-connection identity the dispatcher needs.
type wsSession struct {
	server *Server
	logger *logrus.Logger
	conn   *websocket.Conn
	connID string
	userID uuid.UUID
}

func (s *wsSession) dispatch(ctx context.Context, ev clientEvent) {
	switch ev.Type {
	case "create-room":
		s.handleCreateRoom(ctx, ev.Data)
	case "join-room":
		s.handleJoinRoom(ctx, ev.Data)
	case "start-game":
		s.handleStartGame(ctx, ev.Data)
	case "playerMove":
		s.handlePlayerMove(ctx, ev.Data)
	case "reconnect":
		s.handleReconnect(ctx, ev.Data)
	default:
		s.send(game.Event{Type: game.EventError, Data: game.ErrorPayload{
			Message: "unknown event type: " + ev.Type,
		}})
	}
}

// participant builds the caller's identity from the request payload, falling
// back to the stored profile for missing fields.
func (s *wsSession) participant(ctx context.Context, name, avatar string) models.Participant {
	p := models.Participant{ID: s.userID, Name: name, Avatar: avatar}
	if p.Name == "" || p.Avatar == "" {
		if u, err := database.GetUserByID(ctx, s.userID); err == nil {
			if p.Name == "" {
				p.Name = u.Username
			}
			if p.Avatar == "" {
				p.Avatar = u.Avatar
			}
		}
	}
	if p.Name == "" {
		p.Name = "Guest"
	}
	return p
}

func (s *wsSession) handleCreateRoom(ctx context.Context, data json.RawMessage) {
	var req createRoomRequest
	if err := json.Unmarshal(data, &req); err != nil || req.RoomID == "" {
		s.sendError("", "invalid create-room payload")
		return
	}
	host := s.participant(ctx, req.Name, req.Avatar)
	room, err := s.server.Manager.CreateRoom(ctx, req.RoomID, host, req.Config, s.connID, s.conn)
	if err != nil {
		s.sendOpError(req.RoomID, err)
		return
	}
	s.send(game.Event{Type: game.EventAssignSymbol, Data: game.SymbolPayload{Symbol: engine.SymbolX}})
	s.send(game.Event{Type: game.EventHostJoined, Data: game.HostJoinedPayload{
		RoomID: room.ID,
		Host:   host,
	}})
}

func (s *wsSession) handleJoinRoom(ctx context.Context, data json.RawMessage) {
	var req joinRoomRequest
	if err := json.Unmarshal(data, &req); err != nil || req.RoomID == "" {
		s.sendError("", "invalid join-room payload")
		return
	}
	guest := s.participant(ctx, req.Name, req.Avatar)
	room, err := s.server.Manager.JoinRoom(ctx, req.RoomID, guest, s.connID, s.conn)
	if err != nil {
		s.sendOpError(req.RoomID, err)
		return
	}
	room.Mu.Lock()
	payload := game.PlayersPayload{
		RoomID:  room.ID,
		PlayerX: room.Host.Participant,
		PlayerO: room.Guest.Participant,
	}
	room.Mu.Unlock()
	s.send(game.Event{Type: game.EventAssignSymbol, Data: game.SymbolPayload{Symbol: engine.SymbolO}})
	s.send(game.Event{Type: game.EventJoinRoomSuccess, Data: payload})
}

func (s *wsSession) handleStartGame(ctx context.Context, data json.RawMessage) {
	var req roomRequest
	if err := json.Unmarshal(data, &req); err != nil || req.RoomID == "" {
		s.sendError("", "invalid start-game payload")
		return
	}
	if err := s.server.Manager.StartMatch(ctx, req.RoomID, s.connID); err != nil {
		s.sendOpError(req.RoomID, err)
	}
}

func (s *wsSession) handlePlayerMove(ctx context.Context, data json.RawMessage) {
	var req playerMoveRequest
	if err := json.Unmarshal(data, &req); err != nil || req.RoomID == "" {
		s.sendError("", "invalid playerMove payload")
		return
	}
	err := s.server.Manager.ApplyMove(ctx, req.RoomID, s.connID, req.Index)
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, game.ErrRoomNotFound), errors.Is(err, game.ErrMatchNotFound):
		s.send(game.Event{Type: game.EventRoomNotFound, Data: game.RoomIDPayload{RoomID: req.RoomID}})
	case errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrCellOccupied),
		errors.Is(err, game.ErrCellOutOfRange),
		errors.Is(err, game.ErrRoundDecided),
		errors.Is(err, game.ErrRoundEnding),
		errors.Is(err, game.ErrMatchFinished):
		s.send(game.Event{Type: game.EventInvalidMove, Data: game.InvalidMovePayload{
			RoomID:  req.RoomID,
			Message: err.Error(),
			Index:   req.Index,
		}})
	default:
		s.logger.WithError(err).WithField("room_id", req.RoomID).Error("move failed")
		s.sendError(req.RoomID, "failed to apply move")
	}
}

func (s *wsSession) handleReconnect(ctx context.Context, data json.RawMessage) {
	var req roomRequest
	if err := json.Unmarshal(data, &req); err != nil || req.RoomID == "" {
		s.sendError("", "invalid reconnect payload")
		return
	}
	ev, err := s.server.Manager.Reconnect(ctx, req.RoomID, s.userID, s.connID, s.conn)
	if err != nil {
		s.sendOpError(req.RoomID, err)
		return
	}
	s.send(ev)
}

// sendOpError maps manager sentinel errors to their protocol events.
func (s *wsSession) sendOpError(roomID string, err error) {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		s.send(game.Event{Type: game.EventRoomNotFound, Data: game.RoomIDPayload{RoomID: roomID}})
	case errors.Is(err, game.ErrRoomFull):
		s.send(game.Event{Type: game.EventRoomFull, Data: game.RoomIDPayload{RoomID: roomID}})
	case errors.Is(err, game.ErrRoomExists),
		errors.Is(err, game.ErrInvalidConfig),
		errors.Is(err, game.ErrRoomNotReady),
		errors.Is(err, game.ErrNotHost):
		s.sendError(roomID, err.Error())
	default:
		s.logger.WithError(err).WithField("room_id", roomID).Error("room operation failed")
		s.sendError(roomID, "internal server error")
	}
}

func (s *wsSession) sendError(roomID, msg string) {
	s.send(game.Event{Type: game.EventError, Data: game.ErrorPayload{RoomID: roomID, Message: msg}})
}

func (s *wsSession) send(ev game.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, s.conn, ev); err != nil {
		s.logger.WithError(err).WithField("event", ev.Type).Debug("websocket write failed")
	}
}
