package handlers

import (
	"errors"

	"github.com/jason-s-yu/swick/internal/room"
	"github.com/sirupsen/logrus"
)

var errNoSession = errors.New("no session cookie")

// Server holds what the HTTP and WebSocket handlers share.
type Server struct {
	Rooms  *room.Store
	Logger *logrus.Logger
	// OriginPatterns is passed to websocket.Accept.
	OriginPatterns []string
}

// NewServer wires handlers to a room store.
func NewServer(rooms *room.Store, logger *logrus.Logger, origins []string) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{Rooms: rooms, Logger: logger, OriginPatterns: origins}
}
