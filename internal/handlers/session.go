package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/jason-s-yu/swick/internal/auth"
	"github.com/jason-s-yu/swick/internal/models"
)

type sessionRequest struct {
	Name string `json:"name"`
}

type sessionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateSessionHandler issues or renames the caller's session. The session
// ID is stable across renames so a player keeps their seat on reconnect.
func (s *Server) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "bad session request payload", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Guest"
	}
	if runes := []rune(name); len(runes) > models.MaxNameLength {
		name = string(runes[:models.MaxNameLength])
	}

	sess, err := sessionFromRequest(r)
	if err != nil {
		sess = auth.NewSession(name)
	}
	sess.Name = name
	if err := issueSession(w, sess); err != nil {
		s.Logger.Errorf("failed to sign session: %v", err)
		http.Error(w, "could not create session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID.String(), Name: sess.Name})
}

// GetSessionHandler reports the caller's session.
func (s *Server) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFromRequest(r)
	if err != nil {
		http.Error(w, "no valid session", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID.String(), Name: sess.Name})
}
