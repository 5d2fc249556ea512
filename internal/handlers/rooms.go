package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/swick/internal/game"
	"github.com/jason-s-yu/swick/internal/room"
)

type createRoomRequest struct {
	Name             string                 `json:"name"`
	Private          bool                   `json:"private"`
	Passcode         string                 `json:"passcode"`
	SeatCount        int                    `json:"seatCount"`
	Bots             []room.BotSeat         `json:"bots"`
	AllowMidGameJoin bool                   `json:"allowMidGameJoin"`
	HouseRules       map[string]interface{} `json:"houseRules"`
}

// CreateRoomHandler builds a room from the request and starts it. The caller
// must hold a session; they become admin when they join first.
func (s *Server) CreateRoomHandler(base game.HouseRules) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := sessionFromRequest(r); err != nil {
			http.Error(w, "missing or invalid session", http.StatusUnauthorized)
			return
		}
		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "bad room request payload", http.StatusBadRequest)
			return
		}

		rules, err := game.ParseRules(req.HouseRules, base)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rm, err := s.Rooms.Create(room.Settings{
			Name:             req.Name,
			Private:          req.Private,
			Passcode:         req.Passcode,
			SeatCount:        req.SeatCount,
			Bots:             req.Bots,
			AllowMidGameJoin: req.AllowMidGameJoin,
			Rules:            rules,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.Logger.Infof("room %s created (%d bots, private=%t)", rm.ID, len(req.Bots), req.Private)
		writeJSON(w, http.StatusCreated, rm.Summary())
	}
}

// ListRoomsHandler returns every public room.
func (s *Server) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Rooms.ListPublic())
}

// GetRoomHandler returns one room's listing entry. Private rooms are only
// reachable by ID.
func (s *Server) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}
	rm, ok := s.Rooms.Get(id)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rm.Summary())
}
