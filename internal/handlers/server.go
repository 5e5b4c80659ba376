// internal/handlers/server.go
package handlers

import (
	"github.com/sirupsen/logrus"

	"gridline/internal/game"
)

// Server bundles the room manager with the logger the HTTP and WebSocket
// handlers share.
type Server struct {
	Manager *game.Manager
	Logger  *logrus.Logger
}

func NewServer(manager *game.Manager, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	return &Server{Manager: manager, Logger: logger}
}
