package game

import (
	"time"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn after d. Implementations must deliver fn on the same
// goroutine (or under the same lock) that calls into the game, since
// SwickGame does no locking of its own.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer slots. Scheduling into a slot replaces whatever was pending there.
const (
	slotCountdown = "countdown"
	slotPhase     = "phase"
	slotActor     = "actor"
	slotBot       = "bot"
	slotGrace     = "grace:"
)

type timerSlot struct {
	timer Timer
	gen   uint64
}

// schedule arms fn in slot after d. The callback is dropped if the slot has
// been cancelled or re-armed by the time it fires; otherwise it runs and the
// resulting state is pushed to every viewer.
func (g *SwickGame) schedule(slot string, d time.Duration, fn func()) {
	g.cancel(slot)
	if g.sched == nil {
		return
	}
	g.timerGen++
	gen := g.timerGen
	s := &timerSlot{gen: gen}
	g.slots[slot] = s
	s.timer = g.sched.AfterFunc(d, func() {
		cur, ok := g.slots[slot]
		if !ok || cur.gen != gen {
			g.log.Debugf("stale %s timer (gen %d) ignored", slot, gen)
			return
		}
		delete(g.slots, slot)
		fn()
		g.afterMutation()
	})
}

// cancel stops the timer in slot, if any.
func (g *SwickGame) cancel(slot string) {
	if s, ok := g.slots[slot]; ok {
		if s.timer != nil {
			s.timer.Stop()
		}
		delete(g.slots, slot)
	}
}

// pending reports whether slot holds an armed timer.
func (g *SwickGame) pending(slot string) bool {
	_, ok := g.slots[slot]
	return ok
}

// cancelAll stops every timer. Used when the room shuts down.
func (g *SwickGame) cancelAll() {
	for slot := range g.slots {
		g.cancel(slot)
	}
}
