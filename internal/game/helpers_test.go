package game

import (
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/swick/internal/models"
	"github.com/jason-s-yu/swick/internal/rules"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// mockBroadcaster collects events instead of sending them over WS.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []GameEvent
	playerEvents map[uuid.UUID][]GameEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{playerEvents: make(map[uuid.UUID][]GameEvent)}
}

func (mb *mockBroadcaster) broadcastFn(ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(playerID uuid.UUID, ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[playerID] = append(mb.playerEvents[playerID], ev)
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = nil
	mb.playerEvents = make(map[uuid.UUID][]GameEvent)
}

func (mb *mockBroadcaster) has(t GameEventType) bool {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for _, ev := range mb.allEvents {
		if ev.Type == t {
			return true
		}
	}
	return false
}

func (mb *mockBroadcaster) lastPlayerEvent(playerID uuid.UUID) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	evs := mb.playerEvents[playerID]
	if len(evs) == 0 {
		return nil
	}
	return &evs[len(evs)-1]
}

// manualScheduler fires timers only when the test advances its clock.
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
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.seq++
	t := &manualTimer{at: s.now + d, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// next returns the earliest live timer.
func (s *manualScheduler) next() *manualTimer {
	var live []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.timers = live
	if len(live) == 0 {
		return nil
	}
	sort.SliceStable(live, func(i, j int) bool {
		if live[i].at == live[j].at {
			return live[i].seq < live[j].seq
		}
		return live[i].at < live[j].at
	})
	return live[0]
}

// advance fires every timer due within d, in order, including timers armed
// by the callbacks themselves.
func (s *manualScheduler) advance(d time.Duration) {
	end := s.now + d
	for {
		t := s.next()
		if t == nil || t.at > end {
			break
		}
		s.now = t.at
		t.fired = true
		t.fn()
	}
	s.now = end
}

// step fires the single earliest timer. It reports false when none is armed.
func (s *manualScheduler) step() bool {
	t := s.next()
	if t == nil {
		return false
	}
	if t.at > s.now {
		s.now = t.at
	}
	t.fired = true
	t.fn()
	return true
}

type testTable struct {
	g       *SwickGame
	players []*models.Player
	mb      *mockBroadcaster
	sched   *manualScheduler
}

// setupTestGame seats n connected humans at an idle table.
func setupTestGame(t *testing.T, n int) *testTable {
	t.Helper()
	sched := &manualScheduler{}
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	g := NewSwickGame(uuid.New(), DefaultHouseRules(), sched, logrus.NewEntry(logger), rand.New(rand.NewSource(7)))
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	g.BroadcastToPlayerFn = mb.broadcastToPlayerFn

	players := make([]*models.Player, n)
	for i := 0; i < n; i++ {
		p := &models.Player{ID: uuid.New(), Name: "p" + string(rune('0'+i))}
		require.True(t, g.AddPlayer(p))
		players[i] = p
	}
	require.Equal(t, PhaseIdle, g.Phase)
	return &testTable{g: g, players: players, mb: mb, sched: sched}
}

func act(tt *testTable, p *models.Player, actionType string, payload map[string]interface{}) bool {
	return tt.g.HandlePlayerAction(p.ID, models.GameAction{ActionType: actionType, Payload: payload})
}

func val(v interface{}) map[string]interface{} {
	switch x := v.(type) {
	case bool:
		return map[string]interface{}{"value": x}
	case int:
		return map[string]interface{}{"idx": float64(x)}
	}
	return nil
}

// readyAll readies every player and fires the countdown, leaving the table
// in the dealing phase.
func (tt *testTable) readyAll(t *testing.T) {
	t.Helper()
	for _, p := range tt.players {
		if !p.Ready {
			act(tt, p, models.ActionSetReady, val(true))
		}
	}
	require.True(t, tt.g.pending(slotCountdown), "countdown should be running")
	tt.sched.advance(seconds(tt.g.HouseRules.ReadyCountdownSec))
	require.Equal(t, PhaseDealing, tt.g.Phase)
}

// finishDeal runs the dealing delay, leaving the table in trump selection.
func (tt *testTable) finishDeal(t *testing.T) {
	t.Helper()
	tt.sched.advance(seconds(tt.g.HouseRules.DealingDelaySec))
	require.Equal(t, PhaseTrumpSelection, tt.g.Phase)
}

// runUntil fires timers in order until the table reaches phase.
func (tt *testTable) runUntil(t *testing.T, phase Phase) {
	t.Helper()
	for i := 0; i < 200 && tt.g.Phase != phase; i++ {
		require.True(t, tt.sched.step(), "no timer armed in %s", tt.g.Phase)
	}
	require.Equal(t, phase, tt.g.Phase)
}

// rig replaces the dealt hands and trump card with known cards. It must be
// called during dealing. deckTop lists the next cards to be drawn, in order.
func (tt *testTable) rig(t *testing.T, hands map[*models.Player][]string, trump string, deckTop ...string) {
	t.Helper()
	require.Equal(t, PhaseDealing, tt.g.Phase)
	used := map[string]*models.Card{}
	mk := func(code string) *models.Card {
		_, dup := used[code]
		require.False(t, dup, "card %s used twice", code)
		c := models.NewCard(code[:1], code[1:])
		used[code] = c
		return c
	}
	for p, codes := range hands {
		require.True(t, p.InHand)
		p.Hand = nil
		for _, code := range codes {
			p.Hand = append(p.Hand, mk(code))
		}
	}
	tc := mk(trump)
	tc.FaceUp = true
	tt.g.TrumpCard = tc
	tt.g.TrumpSuit = tc.Suit

	top := make([]*models.Card, len(deckTop))
	for i, code := range deckTop {
		top[i] = mk(code)
	}
	var rest []*models.Card
	for _, s := range models.Suits {
		for _, r := range models.Ranks {
			if _, ok := used[r+s]; !ok {
				rest = append(rest, models.NewCard(r, s))
			}
		}
	}
	for i := len(top) - 1; i >= 0; i-- {
		rest = append(rest, top[i])
	}
	tt.g.deck.cards = rest
	requireConservation(t, tt.g)
}

// cardCount counts every card the table can account for.
func cardCount(g *SwickGame) int {
	n := g.deck.Remaining() + len(g.Discards) + len(g.Trick)
	for _, p := range g.Players {
		n += len(p.Hand)
	}
	if g.TrumpCard != nil && !g.TrumpKept {
		n++
	}
	return n
}

func requireConservation(t *testing.T, g *SwickGame) {
	t.Helper()
	if g.Phase == PhaseIdle {
		return
	}
	require.Equal(t, DeckSize, cardCount(g), "cards lost or duplicated in phase %s", g.Phase)
}

func totalMoney(g *SwickGame) int {
	n := g.Pot + g.CarryOver
	for _, p := range g.Players {
		n += p.Money
	}
	return n
}

func idx(p *models.Player, code string) int {
	for i, c := range p.Hand {
		if c.Rank+c.Suit == code {
			return i
		}
	}
	return -1
}

// firstLegalBots is a deterministic decider: keep trump, knock in, keep
// cards, play the first legal card.
type firstLegalBots struct {
	knock bool
	calls int
}

func (b *firstLegalBots) Delay(string) time.Duration { return time.Second }

func (b *firstLegalBots) Decide(v BotView) []models.GameAction {
	b.calls++
	switch v.Phase {
	case PhaseTrumpSelection:
		return []models.GameAction{{ActionType: models.ActionKeepTrump, Payload: val(true)}}
	case PhaseKnockIn:
		return []models.GameAction{{ActionType: models.ActionKnockIn, Payload: val(b.knock)}}
	case PhaseDiscardDraw:
		if v.Discard == models.DiscardExtra {
			return nil
		}
		return []models.GameAction{
			{ActionType: models.ActionToggleDiscard, Payload: val(0)},
			{ActionType: models.ActionConfirmDiscard},
		}
	case PhaseTurns:
		i := rules.FirstLegalIndex(v.Hand, rules.PlayContext{Trick: v.Trick, Trump: v.TrumpSuit, FirstLead: v.FirstLead})
		return []models.GameAction{{ActionType: models.ActionPlayCard, Payload: val(i)}}
	}
	return nil
}
