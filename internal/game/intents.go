package game

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jason-s-yu/swick/internal/models"
	"github.com/jason-s-yu/swick/internal/rules"
)

// HandlePlayerAction applies one intent from a player or bot. Every intent is
// checked against the exact phase and, where one is required, the exact
// actor; anything that fails a check is dropped without a reply. It reports
// whether the intent changed the table.
// Assumes the room loop is the caller.
func (g *SwickGame) HandlePlayerAction(playerID uuid.UUID, action models.GameAction) bool {
	p := g.getPlayerByID(playerID)
	if p == nil {
		g.log.Debugf("action %s from unknown player %s dropped", action.ActionType, playerID)
		return false
	}
	if !g.applyAction(p, action) {
		return false
	}
	g.afterMutation()
	return true
}

// applyAction routes an intent to its handler without the post-mutation
// broadcast, so bots can chain several intents.
func (g *SwickGame) applyAction(p *models.Player, action models.GameAction) bool {
	switch action.ActionType {
	case models.ActionSetReady:
		v, ok := action.Bool("value")
		return ok && g.setReady(p, v)
	case models.ActionSetAutoReady:
		v, ok := action.Bool("value")
		return ok && g.setAutoReady(p, v)
	case models.ActionSetAnte:
		v, ok := action.Int("amount")
		return ok && g.setAnte(p, v)
	case models.ActionChangeName:
		v, ok := action.String("name")
		return ok && g.changeName(p, v)
	case models.ActionKeepTrump:
		v, ok := action.Bool("value")
		return ok && g.keepTrump(p, v)
	case models.ActionKnockIn:
		v, ok := action.Bool("value")
		return ok && g.knockIn(p, v)
	case models.ActionToggleDiscard:
		v, ok := action.Int("idx")
		return ok && g.toggleDiscard(p, v)
	case models.ActionConfirmPlayAsIs:
		return g.confirmPlayAsIs(p)
	case models.ActionConfirmDiscard:
		return g.confirmDiscardDraw(p)
	case models.ActionDealerGoSet:
		v, ok := action.Bool("value")
		return ok && g.dealerGoSet(p, v)
	case models.ActionPlayCard:
		v, ok := action.Int("idx")
		return ok && g.playCardIntent(p, v)
	case models.ActionKick:
		v, ok := action.String("target")
		if !ok {
			return false
		}
		target, err := uuid.Parse(v)
		return err == nil && g.kick(p, target)
	case models.ActionLeave:
		return g.removePlayer(p.ID, "left")
	}
	g.log.Debugf("unknown action %q from %s", action.ActionType, p.ID)
	return false
}

// drop logs a rejected intent at debug level and returns false.
func (g *SwickGame) drop(p *models.Player, action, reason string) bool {
	g.log.Debugf("%s from %s dropped: %s (phase %s)", action, p.ID, reason, g.Phase)
	return false
}

// isActor reports whether p is the required actor of phase right now.
func (g *SwickGame) isActor(p *models.Player, phase Phase) bool {
	if g.Phase != phase {
		return false
	}
	a := g.currentActor()
	return a != nil && a.ID == p.ID
}

func (g *SwickGame) setReady(p *models.Player, ready bool) bool {
	if g.Phase != PhaseIdle {
		return g.drop(p, models.ActionSetReady, "not idle")
	}
	if p.Ready == ready {
		return g.drop(p, models.ActionSetReady, "unchanged")
	}
	if ready && !g.mayReady(p) {
		return g.drop(p, models.ActionSetReady, "cannot ready")
	}
	p.Ready = ready
	g.logAction(p.ID, string(EventPlayerReady), map[string]interface{}{"ready": ready})
	g.fireEvent(GameEvent{Type: EventPlayerReady, User: &EventUser{ID: p.ID}, Payload: map[string]interface{}{"ready": ready}})
	return true
}

func (g *SwickGame) setAutoReady(p *models.Player, auto bool) bool {
	if p.AutoReady == auto {
		return g.drop(p, models.ActionSetAutoReady, "unchanged")
	}
	p.AutoReady = auto
	if auto && g.Phase == PhaseIdle {
		g.applyAutoReady()
	}
	g.logAction(p.ID, models.ActionSetAutoReady, map[string]interface{}{"value": auto})
	return true
}

// setAnte lets the upcoming dealer pick the ante, which also readies them
// and releases everyone else to ready up.
func (g *SwickGame) setAnte(p *models.Player, amount int) bool {
	if g.Phase != PhaseIdle {
		return g.drop(p, models.ActionSetAnte, "not idle")
	}
	up := g.upcomingDealer()
	if up == nil || up.ID != p.ID {
		return g.drop(p, models.ActionSetAnte, "not the upcoming dealer")
	}
	if !g.HouseRules.ValidAnte(amount) {
		return g.drop(p, models.ActionSetAnte, "invalid amount")
	}
	if g.anteConfirmed && g.CurrentAnte == amount && p.Ready {
		return g.drop(p, models.ActionSetAnte, "unchanged")
	}
	prev := g.CurrentAnte
	g.CurrentAnte = amount
	if !g.canAffordReady(p) {
		g.CurrentAnte = prev
		return g.drop(p, models.ActionSetAnte, "cannot afford")
	}
	if amount != prev {
		// A different ante invalidates readiness given at the old amount.
		for _, other := range g.Players {
			if other.ID != p.ID && other.Ready && !g.canAffordReady(other) {
				other.Ready = false
			}
		}
	}
	g.anteConfirmed = true
	p.Ready = true
	g.applyAutoReady()

	g.log.Infof("dealer %s set ante to %d", p.ID, amount)
	g.logAction(p.ID, string(EventAnteSet), map[string]interface{}{"amount": amount})
	g.fireEvent(GameEvent{Type: EventAnteSet, User: &EventUser{ID: p.ID}, Payload: map[string]interface{}{"amount": amount}})
	return true
}

func (g *SwickGame) changeName(p *models.Player, name string) bool {
	if g.Phase != PhaseIdle {
		return g.drop(p, models.ActionChangeName, "not idle")
	}
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > models.MaxNameLength || name == p.Name {
		return g.drop(p, models.ActionChangeName, "invalid name")
	}
	p.Name = name
	g.logAction(p.ID, string(EventNameChanged), map[string]interface{}{"name": name})
	g.fireEvent(GameEvent{Type: EventNameChanged, User: &EventUser{ID: p.ID, Name: name}})
	return true
}

func (g *SwickGame) keepTrump(p *models.Player, keep bool) bool {
	if !g.isActor(p, PhaseTrumpSelection) {
		return g.drop(p, models.ActionKeepTrump, "not the dealer's turn")
	}
	g.decideTrump(p, keep)
	return true
}

func (g *SwickGame) knockIn(p *models.Player, in bool) bool {
	if !g.isActor(p, PhaseKnockIn) {
		return g.drop(p, models.ActionKnockIn, "not your turn")
	}
	g.decideKnock(p, in)
	return true
}

func (g *SwickGame) toggleDiscard(p *models.Player, idx int) bool {
	if !g.isActor(p, PhaseDiscardDraw) {
		return g.drop(p, models.ActionToggleDiscard, "not your turn")
	}
	if !g.selectable(p, idx) {
		return g.drop(p, models.ActionToggleDiscard, "card not selectable")
	}
	if !p.ToggleSelection(idx, g.discardLimit(p)) {
		return g.drop(p, models.ActionToggleDiscard, "selection full")
	}
	return true
}

func (g *SwickGame) confirmPlayAsIs(p *models.Player) bool {
	if !g.isActor(p, PhaseDiscardDraw) || p.Discard != models.DiscardPending {
		return g.drop(p, models.ActionConfirmPlayAsIs, "not your turn")
	}
	g.finishDiscard(p)
	return true
}

func (g *SwickGame) confirmDiscardDraw(p *models.Player) bool {
	if !g.isActor(p, PhaseDiscardDraw) {
		return g.drop(p, models.ActionConfirmDiscard, "not your turn")
	}
	if p.Discard == models.DiscardExtra && len(p.DiscardSelection) != 1 {
		return g.drop(p, models.ActionConfirmDiscard, "extra discard needs exactly one card")
	}
	g.exchange(p)
	g.finishDiscard(p)
	return true
}

// dealerGoSet lets the dealer fold during discard/draw, paying the single
// going-set penalty. A false value is accepted and changes nothing.
func (g *SwickGame) dealerGoSet(p *models.Player, goSet bool) bool {
	if !g.isActor(p, PhaseDiscardDraw) || !g.isDealer(p) {
		return g.drop(p, models.ActionDealerGoSet, "not the dealer's turn")
	}
	if !goSet {
		return false
	}
	g.dealerFold(p)
	return true
}

func (g *SwickGame) playCardIntent(p *models.Player, idx int) bool {
	if !g.isActor(p, PhaseTurns) {
		return g.drop(p, models.ActionPlayCard, "not your turn")
	}
	if !rules.IsLegalPlay(p.Hand, idx, g.playContext()) {
		return g.drop(p, models.ActionPlayCard, "illegal card")
	}
	g.playCard(p, idx)
	return true
}

// kick removes another player. Only the admin may kick, in any phase.
func (g *SwickGame) kick(p *models.Player, target uuid.UUID) bool {
	if !p.IsAdmin || target == p.ID {
		return g.drop(p, models.ActionKick, "not allowed")
	}
	return g.removePlayer(target, "kicked")
}
