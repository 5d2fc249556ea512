package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/jason-s-yu/swick/internal/game"
)

// Routes mounts the session, room and socket endpoints on r.
func (s *Server) Routes(r chi.Router, base game.HouseRules) {
	r.Post("/session", s.CreateSessionHandler)
	r.Get("/session", s.GetSessionHandler)

	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", s.ListRoomsHandler)
		r.Post("/", s.CreateRoomHandler(base))
		r.Get("/{roomID}", s.GetRoomHandler)
		r.Get("/{roomID}/ws", s.RoomWSHandler)
	})
}
