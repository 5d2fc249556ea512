// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/swick/internal/middleware"
	"github.com/jason-s-yu/swick/internal/models"
	"github.com/jason-s-yu/swick/internal/room"
	"github.com/sirupsen/logrus"
)

// Subprotocol clients must request on the room socket.
const Subprotocol = "swick"

const writeTimeout = 3 * time.Second

// intentMessage is one client intent on the room socket.
type intentMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// RoomWSHandler upgrades to WebSocket, joins the caller to the room and then
// relays intents in and events out until either side goes away.
func (s *Server) RoomWSHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}
	// The session cookie has to be set before the upgrade writes headers.
	sess, err := ensureSession(w, r)
	if err != nil {
		s.Logger.Errorf("failed to issue session: %v", err)
		http.Error(w, "could not create session", http.StatusInternalServerError)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{Subprotocol},
		OriginPatterns: s.OriginPatterns,
	})
	if err != nil {
		s.Logger.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	if c.Subprotocol() != Subprotocol {
		c.Close(BadSubprotocolError, "client must speak the swick subprotocol")
		return
	}

	rm, ok := s.Rooms.Get(roomID)
	if !ok {
		c.Close(InvalidRoomIDError, "room does not exist")
		return
	}

	q := r.URL.Query()
	sub, err := rm.Join(r.Context(), room.JoinRequest{
		Session:    sess,
		Passcode:   q.Get("passcode"),
		Discovered: q.Get("discovered") == "1" || q.Get("discovered") == "true",
	})
	if err != nil {
		var je *room.JoinError
		if errors.As(err, &je) {
			c.Close(JoinRefusedError, je.Reason.Error())
			return
		}
		s.Logger.Warnf("join room %s: %v", roomID, err)
		c.Close(websocket.StatusInternalError, "join failed")
		return
	}

	log := s.Logger.WithFields(logrus.Fields{"room": roomID, "player": sess.ID})
	middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, r.URL.Path)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		defer cancel()
		writeEvents(ctx, c, sub, log)
	}()

	readErr := readIntents(ctx, c, rm, sess.ID, log)
	rm.Disconnect(sub)
	cancel()
	<-writeDone
	middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, r.URL.Path, readErr)
}

// writeEvents forwards encoded events until the subscription closes, which
// happens when the player leaves the table or the room shuts down.
func writeEvents(ctx context.Context, c *websocket.Conn, sub *room.Subscription, log *logrus.Entry) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-sub.Events():
			if !ok {
				c.Close(RemovedFromRoom, "no longer seated")
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				log.Warnf("write failed: %v", err)
				return
			}
		}
	}
}

// readIntents submits every well-formed intent to the room. Malformed input
// is logged and skipped.
func readIntents(ctx context.Context, c *websocket.Conn, rm *room.Room, playerID uuid.UUID, log *logrus.Entry) error {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			log.Debugf("ignoring non-text message type %d", typ)
			continue
		}
		var in intentMessage
		if err := json.Unmarshal(msg, &in); err != nil || in.Type == "" {
			log.Debugf("ignoring malformed intent: %s", msg)
			continue
		}
		if err := rm.Submit(playerID, models.GameAction{ActionType: in.Type, Payload: in.Payload}); err != nil {
			return err
		}
	}
}
