package room

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const subscriptionBuffer = 64

// Subscription is one viewer's event stream. Events carries encoded
// game.GameEvent JSON and is closed when the viewer leaves the table or the
// room shuts down.
type Subscription struct {
	ID       uuid.UUID
	PlayerID uuid.UUID
	Seated   bool

	events chan []byte
	closed bool
}

func newSubscription(playerID uuid.UUID, seated bool) *Subscription {
	return &Subscription{
		ID:       uuid.New(),
		PlayerID: playerID,
		Seated:   seated,
		events:   make(chan []byte, subscriptionBuffer),
	}
}

// Events returns the stream of encoded events.
func (s *Subscription) Events() <-chan []byte {
	return s.events
}

// send never blocks the room. A slow viewer loses events but catches up on
// the next state sync.
func (s *Subscription) send(data []byte, log *logrus.Entry) {
	if s.closed {
		return
	}
	select {
	case s.events <- data:
	default:
		log.Warnf("dropping event for slow viewer %s", s.PlayerID)
	}
}

func (s *Subscription) close() {
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}
