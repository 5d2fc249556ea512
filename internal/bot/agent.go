package bot

import (
	"math/rand"
	"sync"
	"time"

	"github.com/jason-s-yu/swick/internal/game"
	"github.com/jason-s-yu/swick/internal/models"
	"github.com/sirupsen/logrus"
)

// Agent decides for every bot seat of the rooms it serves. It implements
// game.BotDecider and is safe to share across rooms.
type Agent struct {
	mu     sync.Mutex
	rng    *rand.Rand
	brains map[Difficulty]Brain
}

// NewAgent builds an agent with one brain per difficulty. rng may be nil to
// seed from the clock.
func NewAgent(rng *rand.Rand) *Agent {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	a := &Agent{rng: rng, brains: make(map[Difficulty]Brain, len(Tunings))}
	for d := range Tunings {
		brain, err := NewBrain(d)
		if err != nil {
			logrus.Errorf("bot brain %s: %v", d, err)
			continue
		}
		a.brains[d] = brain
	}
	return a
}

var _ game.BotDecider = (*Agent)(nil)

func (a *Agent) tuning(difficulty string) (Difficulty, Tuning) {
	d, err := ParseDifficulty(difficulty)
	if err != nil {
		d = Easy
	}
	return d, Tunings[d]
}

// Delay returns a random wait within the difficulty's delay window.
func (a *Agent) Delay(difficulty string) time.Duration {
	_, t := a.tuning(difficulty)
	span := t.MaxDelay - t.MinDelay
	if span <= 0 {
		return t.MinDelay
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return t.MinDelay + time.Duration(a.rng.Int63n(int64(span)))
}

// Decide returns the intents for the decision v is waiting on.
func (a *Agent) Decide(v game.BotView) []models.GameAction {
	d, _ := a.tuning(v.Difficulty)
	brain, ok := a.brains[d]
	if !ok {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return brain.Decide(v, a.rng)
}
