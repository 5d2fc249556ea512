package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/swick/internal/models"
	"github.com/jason-s-yu/swick/internal/rules"
)

// BotDecider chooses intents for bot seats and for humans who are away.
// Decisions go through the same entry point as human intents.
type BotDecider interface {
	// Delay is how long a bot of the given difficulty waits before acting.
	Delay(difficulty string) time.Duration
	// Decide returns the intents to submit, in order, for the decision the
	// view is waiting on.
	Decide(view BotView) []models.GameAction
}

// DefaultBotDifficulty is used for absent humans and timeout plays.
const DefaultBotDifficulty = "easy"

// BotView is what a bot may see when deciding: its own hand plus public
// table state.
type BotView struct {
	PlayerID   uuid.UUID
	Difficulty string
	Phase      Phase

	Hand        []*models.Card
	TrumpSuit   string
	TrumpCard   *models.Card
	IsDealer    bool
	KeptTrumpID uuid.UUID
	Discard     models.DiscardState
	MaxDiscard  int

	Trick       []*models.Card
	TrickNumber int
	FirstLead   bool

	Pot           int
	KnockedIn     int // players still contesting the hand
	PlayersInHand int
	Money         int
}

// botView builds the decision view for p.
func (g *SwickGame) botView(p *models.Player, difficulty string) BotView {
	hand := make([]*models.Card, len(p.Hand))
	copy(hand, p.Hand)
	v := BotView{
		PlayerID:      p.ID,
		Difficulty:    difficulty,
		Phase:         g.Phase,
		Hand:          hand,
		TrumpSuit:     g.TrumpSuit,
		TrumpCard:     g.TrumpCard,
		IsDealer:      g.isDealer(p),
		KeptTrumpID:   g.keptTrumpID(),
		Discard:       p.Discard,
		MaxDiscard:    g.discardLimit(p),
		TrickNumber:   g.TrickNumber,
		Pot:           g.Pot,
		KnockedIn:     len(g.knockedInPlayers()),
		PlayersInHand: len(g.orderFromDealerLeft(inHand)),
		Money:         p.Money,
	}
	if g.Phase == PhaseTurns {
		ctx := g.playContext()
		v.Trick = ctx.Trick
		v.FirstLead = ctx.FirstLead
	}
	return v
}

// actorKey identifies the decision currently pending, or "" if none. Timers
// armed for one decision are ignored once the key moves on.
func (g *SwickGame) actorKey() string {
	a := g.currentActor()
	if a == nil {
		return ""
	}
	return fmt.Sprintf("%d|%s|%s|%d|%s|%t", g.HandNumber, g.Phase, a.ID, g.TrickNumber, a.Discard, a.Connected)
}

// armActorTimers starts the inactivity timer for a newly required actor and,
// for bots and absent humans, the bot timer.
func (g *SwickGame) armActorTimers() {
	key := g.actorKey()
	if key == g.armedKey {
		return
	}
	g.armedKey = key
	g.cancel(slotActor)
	g.cancel(slotBot)
	if key == "" {
		return
	}

	actor := g.currentActor()
	actorID := actor.ID
	timeout := seconds(g.HouseRules.InactivityTimeoutSec)
	g.PhaseDeadline = g.now().Add(timeout)
	g.schedule(slotActor, timeout, func() {
		if g.actorKey() != key {
			return
		}
		g.armedKey = ""
		g.onActorTimeout(actorID)
	})

	if g.Bots == nil || (!actor.IsBot && actor.Connected) {
		return
	}
	difficulty := actor.BotDifficulty
	if !actor.IsBot || difficulty == "" {
		difficulty = DefaultBotDifficulty
	}
	g.schedule(slotBot, g.Bots.Delay(difficulty), func() {
		if g.actorKey() != key {
			return
		}
		g.runBot(actorID, difficulty)
		if g.actorKey() == key {
			g.armedKey = ""
		}
	})
}

// runBot lets the decider act for playerID. If its intents leave the
// decision pending, the phase default is applied so play always moves on.
func (g *SwickGame) runBot(playerID uuid.UUID, difficulty string) {
	p := g.getPlayerByID(playerID)
	if p == nil {
		return
	}
	before := g.actorKey()
	for _, a := range g.Bots.Decide(g.botView(p, difficulty)) {
		if g.actorKey() != before {
			break
		}
		g.applyAction(p, a)
	}
	if g.actorKey() == before {
		g.log.Warnf("bot for %s made no progress in %s, applying default", playerID, g.Phase)
		g.applyDefault(p)
	}
}

func (g *SwickGame) onActorTimeout(playerID uuid.UUID) {
	p := g.getPlayerByID(playerID)
	if p == nil {
		return
	}
	g.log.Infof("player %s timed out in %s", playerID, g.Phase)
	g.logAction(playerID, "player_timeout", map[string]interface{}{"phase": g.Phase})
	g.applyDefault(p)
}

// applyDefault performs the timeout choice for the pending decision:
// decline trump, pass knock-in, keep all cards (or shed the lowest card in
// the extra step) and play the easy bot's card in turns.
func (g *SwickGame) applyDefault(p *models.Player) {
	switch g.Phase {
	case PhaseTrumpSelection:
		g.keepTrump(p, false)
	case PhaseKnockIn:
		g.knockIn(p, false)
	case PhaseDiscardDraw:
		if !g.isActor(p, PhaseDiscardDraw) {
			return
		}
		if p.Discard == models.DiscardExtra {
			idx := g.lowestDiscardable(p)
			if idx < 0 {
				g.log.Errorf("dealer %s has no discardable card", p.ID)
				p.Discard = models.DiscardDone
				g.checkProgress()
				return
			}
			p.DiscardSelection = []int{idx}
			g.confirmDiscardDraw(p)
			return
		}
		p.DiscardSelection = nil
		g.confirmPlayAsIs(p)
	case PhaseTurns:
		if !g.isActor(p, PhaseTurns) {
			return
		}
		ctx := g.playContext()
		idx := -1
		if g.Bots != nil {
			for _, a := range g.Bots.Decide(g.botView(p, DefaultBotDifficulty)) {
				if a.ActionType != models.ActionPlayCard {
					continue
				}
				if i, ok := a.Int("idx"); ok && rules.IsLegalPlay(p.Hand, i, ctx) {
					idx = i
				}
				break
			}
		}
		if idx < 0 {
			idx = rules.FirstLegalIndex(p.Hand, ctx)
		}
		if idx < 0 {
			g.log.Errorf("player %s has no legal card", p.ID)
			return
		}
		g.playCard(p, idx)
	}
}
