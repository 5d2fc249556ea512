package room

import (
	"time"

	"github.com/jason-s-yu/swick/internal/game"
)

// inboxScheduler delivers game timers through the room's inbox so they run
// on the room goroutine in arrival order with player intents.
type inboxScheduler struct {
	r *Room
}

func (s inboxScheduler) AfterFunc(d time.Duration, fn func()) game.Timer {
	return time.AfterFunc(d, func() { s.r.post(fn) })
}
