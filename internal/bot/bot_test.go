package bot

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/swick/internal/game"
	"github.com/jason-s-yu/swick/internal/models"
	"github.com/jason-s-yu/swick/internal/rules"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cards(codes ...string) []*models.Card {
	out := make([]*models.Card, len(codes))
	for i, c := range codes {
		out[i] = models.NewCard(c[:1], c[1:])
	}
	return out
}

func randomHand(rng *rand.Rand, n int) []*models.Card {
	var all []*models.Card
	for _, s := range models.Suits {
		for _, r := range models.Ranks {
			all = append(all, models.NewCard(r, s))
		}
	}
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all[:n]
}

func idxOf(a models.GameAction) int {
	i, _ := a.Int("idx")
	return i
}

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{"": Easy, "easy": Easy, "medium": Medium, "hard": Hard} {
		d, err := ParseDifficulty(in)
		require.NoError(t, err)
		assert.Equal(t, want, d)
	}
	_, err := ParseDifficulty("expert")
	assert.Error(t, err)
}

func TestNewBrainUnknownLevel(t *testing.T) {
	_, err := NewBrain("expert")
	assert.EqualError(t, err, `unknown bot level: "expert"`)

	for d := range Tunings {
		b, err := NewBrain(d)
		require.NoError(t, err)
		assert.NotNil(t, b)
	}
}

func TestDelayWithinWindow(t *testing.T) {
	a := NewAgent(rand.New(rand.NewSource(1)))
	for d, tune := range Tunings {
		for i := 0; i < 50; i++ {
			got := a.Delay(string(d))
			assert.GreaterOrEqual(t, got, tune.MinDelay)
			assert.Less(t, got, tune.MaxDelay)
		}
	}
	// Unknown difficulties fall back to easy.
	got := a.Delay("nonsense")
	assert.GreaterOrEqual(t, got, Tunings[Easy].MinDelay)
}

func TestPlayIsAlwaysLegal(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a := NewAgent(rand.New(rand.NewSource(4)))
	for i := 0; i < 2000; i++ {
		trump := models.Suits[rng.Intn(len(models.Suits))]
		dealt := randomHand(rng, 3+rng.Intn(3))
		hand := dealt[:1+rng.Intn(3)]
		trick := dealt[len(hand):]
		v := game.BotView{
			Difficulty: []string{"easy", "medium", "hard"}[i%3],
			Phase:      game.PhaseTurns,
			Hand:       hand,
			TrumpSuit:  trump,
			Trick:      trick,
			FirstLead:  len(trick) == 0 && rng.Intn(2) == 0,
		}
		actions := a.Decide(v)
		require.Len(t, actions, 1)
		assert.Equal(t, models.ActionPlayCard, actions[0].ActionType)
		ctx := rules.PlayContext{Trick: trick, Trump: trump, FirstLead: v.FirstLead}
		assert.True(t, rules.IsLegalPlay(hand, idxOf(actions[0]), ctx), "illegal play %d from %v", idxOf(actions[0]), hand)
	}
}

func TestDiscardNeverSelectsKeptTrump(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	a := NewAgent(rand.New(rand.NewSource(6)))
	for i := 0; i < 500; i++ {
		hand := randomHand(rng, 4)
		kept := hand[rng.Intn(4)]
		v := game.BotView{
			Difficulty:  "hard",
			Phase:       game.PhaseDiscardDraw,
			Hand:        hand,
			TrumpSuit:   kept.Suit,
			TrumpCard:   kept,
			IsDealer:    true,
			KeptTrumpID: kept.ID,
			Discard:     models.DiscardPending,
			MaxDiscard:  3,
		}
		if i%2 == 1 {
			v.Discard = models.DiscardExtra
		}
		actions := a.Decide(v)
		require.NotEmpty(t, actions)
		last := actions[len(actions)-1].ActionType
		assert.Contains(t, []string{models.ActionConfirmDiscard, models.ActionConfirmPlayAsIs}, last)

		toggles := 0
		for _, act := range actions {
			if act.ActionType != models.ActionToggleDiscard {
				continue
			}
			toggles++
			assert.NotEqual(t, kept.ID, hand[idxOf(act)].ID)
		}
		assert.LessOrEqual(t, toggles, 3)
		if v.Discard == models.DiscardExtra {
			assert.Equal(t, 1, toggles)
		}
	}
}

func TestSpecialHandAlwaysKnocksAndKeepsCards(t *testing.T) {
	b, err := NewBrain(Easy)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(8))
	hand := cards("AH", "AD", "AC")

	for i := 0; i < 50; i++ {
		got := b.Decide(game.BotView{Phase: game.PhaseKnockIn, Hand: hand, TrumpSuit: "S"}, rng)
		require.Len(t, got, 1)
		on, _ := got[0].Payload["value"].(bool)
		assert.True(t, on)
	}

	got := b.Decide(game.BotView{Phase: game.PhaseDiscardDraw, Discard: models.DiscardPending, Hand: hand, TrumpSuit: "S", MaxDiscard: 3}, rng)
	require.Len(t, got, 1)
	assert.Equal(t, models.ActionConfirmPlayAsIs, got[0].ActionType)
}

func TestHardBotWinsCheaply(t *testing.T) {
	b := &HeuristicBot{Tuning: Tunings[Hard]}
	b.Tuning.Jitter = 0
	rng := rand.New(rand.NewSource(1))

	// Following hearts: both QH and AH beat 9H, the queen is cheaper.
	hand := cards("AH", "QH", "8S")
	got := b.Decide(game.BotView{Phase: game.PhaseTurns, Hand: hand, TrumpSuit: "S", Trick: cards("9H")}, rng)
	require.Len(t, got, 1)
	assert.Equal(t, 1, idxOf(got[0]))

	// Nothing wins: throw the lowest legal card.
	hand = cards("8H", "7H", "KD")
	got = b.Decide(game.BotView{Phase: game.PhaseTurns, Hand: hand, TrumpSuit: "S", Trick: cards("AH")}, rng)
	require.Len(t, got, 1)
	assert.Equal(t, 1, idxOf(got[0]))
}

// manualScheduler fires timers only when the test steps it.
type manualScheduler struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) game.Timer {
	s.seq++
	t := &manualTimer{at: s.now + d, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) step() bool {
	var live []*manualTimer
	for _, t := range s.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	s.timers = live
	if len(live) == 0 {
		return false
	}
	sort.SliceStable(live, func(i, j int) bool {
		if live[i].at == live[j].at {
			return live[i].seq < live[j].seq
		}
		return live[i].at < live[j].at
	})
	t := live[0]
	t.stopped = true
	if t.at > s.now {
		s.now = t.at
	}
	t.fn()
	return true
}

func TestBotTablePlaysHands(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	sched := &manualScheduler{}
	g := game.NewSwickGame(uuid.New(), game.DefaultHouseRules(), sched, logrus.NewEntry(logger), rand.New(rand.NewSource(11)))
	g.Bots = NewAgent(rand.New(rand.NewSource(12)))

	for i, d := range []string{"easy", "medium", "hard", "hard", "easy"} {
		p := &models.Player{ID: uuid.New(), Name: "bot" + string(rune('A'+i)), IsBot: true, BotDifficulty: d, AutoReady: true, Money: 1000000}
		require.True(t, g.AddPlayer(p))
	}

	total := func() int {
		n := g.Pot + g.CarryOver
		for _, p := range g.Players {
			n += p.Money
		}
		return n
	}
	start := total()
	for i := 0; i < 20000 && g.HandNumber < 10; i++ {
		require.True(t, sched.step(), "table stalled in %s", g.Phase)
		require.Equal(t, start, total())
	}
	assert.GreaterOrEqual(t, g.HandNumber, 10)
}
