package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/swick/internal/models"
	"github.com/jason-s-yu/swick/internal/rules"
)

// afterMutation runs after every accepted intent, timer firing or
// membership change: it re-evaluates the idle countdown, arms timers for
// whoever must act next and pushes fresh state to every viewer.
func (g *SwickGame) afterMutation() {
	if g.Phase == PhaseIdle {
		g.checkCountdown()
	}
	g.armActorTimers()
	g.broadcastSyncState()
}

// schedulePhase arms the phase timer and records its deadline.
func (g *SwickGame) schedulePhase(d time.Duration, fn func()) {
	g.PhaseDeadline = g.now().Add(d)
	g.schedule(slotPhase, d, fn)
}

// --- idle ---

// canStart reports whether a hand may be dealt: enough active players, all
// of them ready, and after the first hand the ante confirmed by the dealer.
func (g *SwickGame) canStart() bool {
	if g.Phase != PhaseIdle {
		return false
	}
	el := g.eligible()
	if len(el) < g.HouseRules.MinPlayers {
		return false
	}
	for _, p := range el {
		if !p.Ready {
			return false
		}
	}
	return g.HandNumber == 0 || g.anteConfirmed
}

// checkCountdown starts the ready countdown when the table can start and
// cancels it as soon as it no longer can.
func (g *SwickGame) checkCountdown() {
	if g.canStart() {
		if g.pending(slotCountdown) {
			return
		}
		d := seconds(g.HouseRules.ReadyCountdownSec)
		g.PhaseDeadline = g.now().Add(d)
		g.schedule(slotCountdown, d, func() {
			if g.canStart() {
				g.startHand()
			}
		})
		g.log.Infof("all players ready, dealing in %s", d)
		g.fireEvent(GameEvent{Type: EventCountdownStart, Payload: map[string]interface{}{"seconds": g.HouseRules.ReadyCountdownSec}})
		return
	}
	g.cancelCountdown()
}

// cancelCountdown stops a running ready countdown. The next mutation that
// finds the table startable arms a fresh one.
func (g *SwickGame) cancelCountdown() {
	if !g.pending(slotCountdown) {
		return
	}
	g.cancel(slotCountdown)
	g.PhaseDeadline = time.Time{}
	g.log.Infof("countdown cancelled")
	g.fireEvent(GameEvent{Type: EventCountdownCancel})
}

// withdrawFromTrick returns playerID's card in the open trick to the
// discard pile so the trick only holds cards of players still contesting.
func (g *SwickGame) withdrawFromTrick(playerID uuid.UUID) {
	kept := g.Trick[:0]
	for _, tp := range g.Trick {
		if tp.PlayerID == playerID {
			g.Discards = append(g.Discards, tp.Card)
			continue
		}
		kept = append(kept, tp)
	}
	g.Trick = kept
}

// canAffordReady reports whether p can cover what they would owe at the deal.
func (g *SwickGame) canAffordReady(p *models.Player) bool {
	return p.Money >= g.anteOwed(p)
}

// mayReady reports whether p is allowed to ready up right now.
func (g *SwickGame) mayReady(p *models.Player) bool {
	if g.Phase != PhaseIdle || !p.Active() || !g.canAffordReady(p) {
		return false
	}
	if g.HandNumber > 0 && !g.anteConfirmed {
		up := g.upcomingDealer()
		return up != nil && up.ID == p.ID
	}
	return true
}

// applyAutoReady readies every auto-ready player that is allowed to. An
// auto-ready upcoming dealer re-confirms the current ante first.
func (g *SwickGame) applyAutoReady() {
	if up := g.upcomingDealer(); up != nil && up.AutoReady && !g.anteConfirmed && g.canAffordReady(up) {
		g.anteConfirmed = true
		up.Ready = true
	}
	for _, p := range g.Players {
		if p.AutoReady && !p.Ready && g.mayReady(p) {
			p.Ready = true
		}
	}
}

// --- dealing ---

// startHand collects antes, deals three cards to each participant and
// reveals the trump candidate.
func (g *SwickGame) startHand() {
	participants := g.eligible()
	dealer := g.upcomingDealer()
	if len(participants) < g.HouseRules.MinPlayers || dealer == nil {
		g.log.Warnf("startHand with %d players, staying idle", len(participants))
		return
	}

	g.HandNumber++
	g.DealerID = dealer.ID
	g.DealerSeat = dealer.Seat
	g.nextDealerSeat = dealer.Seat + 1
	g.resetTable()
	for _, p := range g.Players {
		p.ResetHandState()
	}
	for _, p := range participants {
		p.InHand = true
	}
	g.participants = len(participants)

	antes := antesFor(participants, dealer.ID, g.CurrentAnte, g.HouseRules.DealerSurcharge, g.carryFromSet)
	for _, p := range participants {
		a := antes[p.ID]
		p.Money -= a
		p.Ante = a
		g.Pot += a
	}

	g.deck.Reset()
	order := g.orderFromDealerLeft(inHand)
	for round := 0; round < 3; round++ {
		for _, p := range order {
			c, ok := g.deck.Draw()
			if !ok {
				g.log.Errorf("deck ran out while dealing")
				break
			}
			p.Hand = append(p.Hand, c)
		}
	}
	if trump, ok := g.deck.Draw(); ok {
		trump.FaceUp = true
		g.TrumpCard = trump
		g.TrumpSuit = trump.Suit
	}

	g.Phase = PhaseDealing
	g.log.Infof("hand %d: dealer %s, pot %d, trump %s", g.HandNumber, dealer.ID, g.Pot, g.TrumpCard)
	g.logAction(dealer.ID, string(EventHandStart), map[string]interface{}{
		"hand": g.HandNumber, "ante": g.CurrentAnte, "pot": g.Pot, "players": len(participants),
	})
	g.fireEvent(GameEvent{
		Type: EventHandStart,
		User: &EventUser{ID: dealer.ID, Name: dealer.Name},
		Payload: map[string]interface{}{
			"hand": g.HandNumber, "ante": g.CurrentAnte, "pot": g.Pot, "carryOver": g.CarryOver,
		},
	})
	if g.TrumpCard != nil {
		g.fireEvent(GameEvent{Type: EventTrumpRevealed, Card: eventCard(g.TrumpCard)})
	}
	g.schedulePhase(seconds(g.HouseRules.DealingDelaySec), g.finishDealing)
}

// resetTable clears every per-hand field of the table itself.
func (g *SwickGame) resetTable() {
	g.Pot = 0
	g.Discards = nil
	g.TrumpCard = nil
	g.TrumpSuit = ""
	g.TrumpKept = false
	g.keptTrumpRank = ""
	g.Trick = nil
	g.TrickNumber = 0
	g.CompletedTricks = nil
	g.handAwarded = false
	g.anyWentSet = false
	g.lastSettlement = nil
}

// finishDealing moves the carry-over into the pot and hands trump selection
// to the dealer.
func (g *SwickGame) finishDealing() {
	if g.Phase != PhaseDealing {
		return
	}
	g.Pot += g.CarryOver
	g.CarryOver = 0
	g.carryFromSet = false
	g.Phase = PhaseTrumpSelection
	g.logAction(uuid.Nil, "dealing_complete", map[string]interface{}{"pot": g.Pot})
}

// --- trump selection ---

func (g *SwickGame) decideTrump(dealer *models.Player, keep bool) {
	if keep && g.TrumpCard != nil {
		dealer.Hand = append(dealer.Hand, g.TrumpCard)
		g.TrumpKept = true
		g.keptTrumpRank = g.TrumpCard.Rank
	}
	g.log.Infof("dealer %s keep trump: %v", dealer.ID, keep)
	g.logAction(dealer.ID, string(EventTrumpDecision), map[string]interface{}{"keep": keep})
	g.fireEvent(GameEvent{
		Type:    EventTrumpDecision,
		User:    &EventUser{ID: dealer.ID},
		Payload: map[string]interface{}{"keep": keep},
	})
	g.Phase = PhaseKnockIn
	g.checkProgress()
}

// keptTrumpID is the ID of the trump card in the dealer's hand, if kept.
func (g *SwickGame) keptTrumpID() uuid.UUID {
	if g.TrumpKept && g.TrumpCard != nil {
		return g.TrumpCard.ID
	}
	return uuid.Nil
}

// --- knock-in ---

func (g *SwickGame) decideKnock(p *models.Player, in bool) {
	if in {
		p.Knock = models.KnockedIn
	} else {
		p.Knock = models.KnockPassed
	}
	g.log.Infof("player %s knock in: %v", p.ID, in)
	g.logAction(p.ID, string(EventKnockDecision), map[string]interface{}{"in": in})
	g.fireEvent(GameEvent{
		Type:    EventKnockDecision,
		User:    &EventUser{ID: p.ID},
		Payload: map[string]interface{}{"in": in},
	})

	if g.isDealer(p) && !in {
		g.dealerFold(p)
		return
	}
	if !in {
		g.Discards = append(g.Discards, p.Hand...)
		p.Hand = nil
	}
	g.checkProgress()
}

// advanceKnockIn moves on once every non-dealer has decided: straight to the
// dealer auto-win when nobody knocked in, otherwise to the dealer's decision
// and then discard/draw.
func (g *SwickGame) advanceKnockIn() {
	knocked := 0
	for _, p := range g.orderFromDealerLeft(inHand) {
		if g.isDealer(p) {
			continue
		}
		if p.Knock == models.KnockUndecided {
			return
		}
		if p.Knock == models.KnockedIn {
			knocked++
		}
	}
	if knocked == 0 {
		g.dealerAutoWin()
		return
	}
	d := g.dealer()
	if d == nil || d.Knock == models.KnockUndecided {
		return
	}
	if d.Knock == models.KnockedIn {
		g.resolveRemaining()
	}
}

// dealerFold charges the dealer the single going-set penalty for passing at
// knock-in or folding during discard/draw. The money goes to the next hand.
func (g *SwickGame) dealerFold(d *models.Player) {
	nominal, deducted := dealerFoldPenalty(g.Pot, d.Money)
	d.Money -= deducted
	g.CarryOver += deducted
	g.carryFromSet = true
	g.anyWentSet = true

	d.Knock = models.KnockPassed
	d.WentSet = true
	d.SetType = models.SetSingle
	d.SetAmount = nominal
	d.Outcome = models.OutcomeLoser
	g.Discards = append(g.Discards, d.Hand...)
	d.Hand = nil

	g.log.Infof("dealer %s goes set for %d (paid %d)", d.ID, nominal, deducted)
	g.logAction(d.ID, string(EventWentSet), map[string]interface{}{"amount": nominal, "paid": deducted, "type": models.SetSingle})
	g.fireEvent(GameEvent{
		Type:    EventWentSet,
		User:    &EventUser{ID: d.ID},
		Payload: map[string]interface{}{"amount": nominal, "type": models.SetSingle},
	})
	g.resolveRemaining()
}

// resolveRemaining decides what happens after someone drops out of the hand:
// nobody left ends it, one player left wins it, otherwise play continues.
func (g *SwickGame) resolveRemaining() {
	kn := g.knockedInPlayers()
	switch len(kn) {
	case 0:
		g.abortHand("no_players_left")
	case 1:
		g.soleSurvivor(kn[0])
	default:
		if g.Phase == PhaseKnockIn {
			g.enterDiscardDraw()
			return
		}
		g.checkProgress()
	}
}

// checkProgress advances the current phase when nobody is left to act in
// it, for example after a decision or a departure.
func (g *SwickGame) checkProgress() {
	switch g.Phase {
	case PhaseKnockIn:
		g.advanceKnockIn()
	case PhaseDiscardDraw, PhaseTurns:
		if len(g.knockedInPlayers()) < 2 {
			g.resolveRemaining()
			return
		}
		if g.currentActor() != nil {
			return
		}
		if g.Phase == PhaseDiscardDraw {
			g.completeDiscardDraw()
			return
		}
		if len(g.Trick) > 0 {
			g.resolveTrick()
			return
		}
		g.enterEnd()
	}
}

// --- short circuits ---

// awardPot pays the whole pot to one player.
func (g *SwickGame) awardPot(p *models.Player) {
	p.Money += g.Pot
	p.Outcome = models.OutcomeWinner
	g.Pot = 0
	g.handAwarded = true
}

func (g *SwickGame) dealerAutoWin() {
	d := g.dealer()
	if d == nil {
		g.abortHand("dealer_left")
		return
	}
	won := g.Pot
	g.awardPot(d)
	g.Phase = PhaseDealerAutoWin
	g.log.Infof("nobody knocked in, dealer %s wins %d", d.ID, won)
	g.logAction(d.ID, string(EventDealerAutoWin), map[string]interface{}{"amount": won})
	g.fireEvent(GameEvent{
		Type:    EventDealerAutoWin,
		User:    &EventUser{ID: d.ID},
		Payload: map[string]interface{}{"amount": won},
	})
	g.schedulePhase(seconds(g.HouseRules.SpecialHandDelaySec), g.enterEnd)
}

// soleSurvivor credits the last knocked-in player with every unplayed trick
// and the pot.
func (g *SwickGame) soleSurvivor(p *models.Player) {
	for _, tp := range g.Trick {
		g.Discards = append(g.Discards, tp.Card)
	}
	g.Trick = nil
	p.TricksWon += TricksPerHand - len(g.CompletedTricks)
	won := g.Pot
	g.awardPot(p)
	g.log.Infof("player %s is the only one left and wins %d", p.ID, won)
	g.logAction(p.ID, string(EventSoleSurvivor), map[string]interface{}{"amount": won, "tricks": p.TricksWon})
	g.fireEvent(GameEvent{
		Type:    EventSoleSurvivor,
		User:    &EventUser{ID: p.ID},
		Payload: map[string]interface{}{"amount": won, "tricks": p.TricksWon},
	})
	g.enterEnd()
}

func (g *SwickGame) specialHandWin(p *models.Player, kind rules.SpecialHand) {
	won := g.Pot
	g.awardPot(p)
	for _, other := range g.knockedInPlayers() {
		if other.ID != p.ID {
			other.Outcome = models.OutcomeLoser
		}
	}
	for _, c := range p.Hand {
		c.FaceUp = true
	}
	g.Phase = PhaseSpecialHandWin
	g.log.Infof("player %s wins %d with %s", p.ID, won, kind)
	g.logAction(p.ID, string(EventSpecialHand), map[string]interface{}{"kind": kind.String(), "amount": won})
	g.fireEvent(GameEvent{
		Type:    EventSpecialHand,
		User:    &EventUser{ID: p.ID},
		Payload: map[string]interface{}{"kind": kind.String(), "amount": won, "hand": eventCards(p.Hand)},
	})
	g.schedulePhase(seconds(g.HouseRules.SpecialHandDelaySec), g.enterEnd)
}

// abortHand abandons the hand without scoring. The whole pot carries over.
func (g *SwickGame) abortHand(reason string) {
	if g.Phase == PhaseEnd || g.Phase == PhaseIdle {
		return
	}
	for _, tp := range g.Trick {
		g.Discards = append(g.Discards, tp.Card)
	}
	g.Trick = nil
	g.CarryOver += g.Pot
	g.Pot = 0
	g.handAwarded = true
	g.log.Warnf("hand %d aborted: %s", g.HandNumber, reason)
	g.logAction(uuid.Nil, string(EventHandAborted), map[string]interface{}{"reason": reason, "carryOver": g.CarryOver})
	g.fireEvent(GameEvent{Type: EventHandAborted, Payload: map[string]interface{}{"reason": reason, "carryOver": g.CarryOver}})
	g.enterEnd()
}

// --- discard / draw ---

func (g *SwickGame) enterDiscardDraw() {
	g.Phase = PhaseDiscardDraw
	for _, p := range g.knockedInPlayers() {
		p.Discard = models.DiscardPending
		p.DiscardSelection = nil
	}
	g.logAction(uuid.Nil, "discard_draw_start", nil)
	g.checkProgress()
}

// finishDiscard ends p's exchange. A dealer still holding four cards must
// shed one more before their step is done.
func (g *SwickGame) finishDiscard(p *models.Player) {
	p.DiscardSelection = nil
	if g.isDealer(p) && len(p.Hand) > 3 && p.Discard == models.DiscardPending {
		p.Discard = models.DiscardExtra
	} else {
		p.Discard = models.DiscardDone
	}
	g.logAction(p.ID, string(EventDiscardDone), map[string]interface{}{"handSize": len(p.Hand), "step": p.Discard})
	g.fireEvent(GameEvent{
		Type:    EventDiscardDone,
		User:    &EventUser{ID: p.ID},
		Payload: map[string]interface{}{"handSize": len(p.Hand), "step": p.Discard},
	})
	g.checkProgress()
}

// exchange discards p's selection and draws replacements. A short deck
// simply yields fewer cards.
func (g *SwickGame) exchange(p *models.Player) {
	removed := p.RemoveCards(p.DiscardSelection)
	g.Discards = append(g.Discards, removed...)
	if p.Discard == models.DiscardExtra {
		return
	}
	for range removed {
		c, ok := g.deck.Draw()
		if !ok {
			g.log.Infof("deck empty, player %s draws short", p.ID)
			break
		}
		p.Hand = append(p.Hand, c)
	}
}

// discardLimit is how many cards p may select right now. An exchange can
// never take more cards than the deck has left to replace them.
func (g *SwickGame) discardLimit(p *models.Player) int {
	if p.Discard == models.DiscardExtra {
		return 1
	}
	return min(g.HouseRules.MaxDiscard, g.deck.Remaining())
}

// selectable reports whether hand index idx of p may be put in the discard
// selection. The dealer's kept trump card never may.
func (g *SwickGame) selectable(p *models.Player, idx int) bool {
	if idx < 0 || idx >= len(p.Hand) {
		return false
	}
	return !(g.isDealer(p) && p.Hand[idx].ID == g.keptTrumpID())
}

// lowestDiscardable picks the extra-discard default: the lowest non-trump
// card, or failing that the lowest selectable card.
func (g *SwickGame) lowestDiscardable(p *models.Player) int {
	best := -1
	for pass := 0; pass < 2 && best < 0; pass++ {
		for i, c := range p.Hand {
			if !g.selectable(p, i) || (pass == 0 && c.Suit == g.TrumpSuit) {
				continue
			}
			if best < 0 || c.Value < p.Hand[best].Value {
				best = i
			}
		}
	}
	return best
}

// completeDiscardDraw checks for a special hand, then starts trick play.
func (g *SwickGame) completeDiscardDraw() {
	kn := g.knockedInPlayers()
	kinds := make([]rules.SpecialHand, len(kn))
	for i, p := range kn {
		kinds[i] = rules.DetectSpecialHand(p.Hand, g.TrumpSuit)
	}
	if best := rules.BestSpecialHand(kinds); best >= 0 {
		g.specialHandWin(kn[best], kinds[best])
		return
	}

	g.Phase = PhaseTurns
	g.TrickNumber = 1
	g.Trick = nil
	g.trickLeaderSeat = g.firstLeaderSeat()
	g.logAction(uuid.Nil, "turns_start", map[string]interface{}{"leaderSeat": g.trickLeaderSeat})
	g.checkProgress()
}

// --- tricks ---

// playContext describes the trick the current actor is playing into.
func (g *SwickGame) playContext() rules.PlayContext {
	return rules.PlayContext{
		Trick:     g.trickCards(),
		Trump:     g.TrumpSuit,
		FirstLead: g.TrickNumber == 1 && len(g.Trick) == 0,
	}
}

func (g *SwickGame) trickCards() []*models.Card {
	cards := make([]*models.Card, len(g.Trick))
	for i, tp := range g.Trick {
		cards[i] = tp.Card
	}
	return cards
}

func (g *SwickGame) playCard(p *models.Player, idx int) {
	c := p.RemoveCards([]int{idx})[0]
	c.FaceUp = true
	g.Trick = append(g.Trick, TrickPlay{PlayerID: p.ID, Card: c})
	g.logAction(p.ID, string(EventCardPlayed), map[string]interface{}{"card": c.String(), "trick": g.TrickNumber})
	g.fireEvent(GameEvent{
		Type:    EventCardPlayed,
		User:    &EventUser{ID: p.ID},
		Card:    eventCard(c),
		Payload: map[string]interface{}{"trick": g.TrickNumber},
	})
	g.checkProgress()
}

// resolveTrick credits the trick winner and shows the finished trick.
func (g *SwickGame) resolveTrick() {
	cards := g.trickCards()
	w := rules.TrickWinner(cards, g.TrumpSuit)
	if w < 0 {
		g.log.Errorf("trick %d has no winner, abandoning hand", g.TrickNumber)
		g.abortHand("no_trick_winner")
		return
	}
	winnerID := g.Trick[w].PlayerID
	if winner := g.getPlayerByID(winnerID); winner != nil {
		winner.TricksWon++
		g.trickLeaderSeat = winner.Seat
	}
	g.CompletedTricks = append(g.CompletedTricks, CompletedTrick{Number: g.TrickNumber, WinnerID: winnerID, Plays: g.Trick})
	g.Discards = append(g.Discards, cards...)
	g.Trick = nil
	g.Phase = PhaseTrickComplete

	g.log.Infof("trick %d won by %s", g.TrickNumber, winnerID)
	g.logAction(winnerID, string(EventTrickWon), map[string]interface{}{"trick": g.TrickNumber})
	g.fireEvent(GameEvent{
		Type:    EventTrickWon,
		User:    &EventUser{ID: winnerID},
		Card:    eventCard(cards[w]),
		Payload: map[string]interface{}{"trick": g.TrickNumber},
	})
	g.schedulePhase(seconds(g.HouseRules.TrickDelaySec), g.afterTrick)
}

func (g *SwickGame) afterTrick() {
	if g.Phase != PhaseTrickComplete {
		return
	}
	if len(g.CompletedTricks) >= TricksPerHand {
		g.enterEnd()
		return
	}
	g.TrickNumber++
	g.Phase = PhaseTurns
	g.checkProgress()
}

// --- end ---

// enterEnd scores the hand unless it was already awarded and holds the
// results on screen before returning to idle.
func (g *SwickGame) enterEnd() {
	if g.Phase == PhaseEnd || g.Phase == PhaseIdle {
		return
	}
	g.cancel(slotActor)
	g.cancel(slotBot)
	g.armedKey = ""

	if !g.handAwarded {
		g.settleHand()
	}
	g.Phase = PhaseEnd

	results := make([]map[string]interface{}, 0, len(g.Players))
	for _, p := range g.orderFromDealerLeft(inHand) {
		results = append(results, map[string]interface{}{
			"playerId":  p.ID,
			"money":     p.Money,
			"tricksWon": p.TricksWon,
			"wentSet":   p.WentSet,
			"setType":   p.SetType,
			"setAmount": p.SetAmount,
			"outcome":   p.Outcome,
		})
	}
	payload := map[string]interface{}{
		"hand":      g.HandNumber,
		"results":   results,
		"carryOver": g.CarryOver,
	}
	if g.lastSettlement != nil {
		payload["settlement"] = g.lastSettlement
	}
	g.logAction(uuid.Nil, string(EventHandResults), map[string]interface{}{"hand": g.HandNumber, "carryOver": g.CarryOver})
	g.fireEvent(GameEvent{Type: EventHandResults, Payload: payload})

	d := seconds(g.HouseRules.EndBaseDelaySec) + time.Duration(g.participants)*seconds(g.HouseRules.EndPerPlayerDelaySec)
	if g.anyWentSet {
		d += seconds(g.HouseRules.SetDisplayDelaySec)
	}
	g.schedulePhase(d, g.finishHand)
}

// settleHand scores a fully played hand.
func (g *SwickGame) settleHand() {
	var entries []SettlementEntry
	for _, p := range g.knockedInPlayers() {
		e := SettlementEntry{PlayerID: p.ID, TricksWon: p.TricksWon, Money: p.Money, IsDealer: g.isDealer(p)}
		if e.IsDealer && g.TrumpKept {
			e.KeptTrumpRank = g.keptTrumpRank
		}
		entries = append(entries, e)
	}
	s := Settle(g.Pot, entries)
	g.applySettlement(s)
	for _, ps := range s.Players {
		if !ps.WentSet {
			continue
		}
		g.logAction(ps.PlayerID, string(EventWentSet), map[string]interface{}{"amount": ps.SetAmount, "paid": ps.Penalty, "type": ps.SetType})
		g.fireEvent(GameEvent{
			Type:    EventWentSet,
			User:    &EventUser{ID: ps.PlayerID},
			Payload: map[string]interface{}{"amount": ps.SetAmount, "type": ps.SetType},
		})
	}
	g.log.Infof("hand %d settled: trick value %d, retained %d, penalties %d", g.HandNumber, s.TrickValue, s.Retained, s.Penalties)
}

// finishHand clears the table and returns to idle, readying auto-ready
// players for the next deal.
func (g *SwickGame) finishHand() {
	if g.Phase != PhaseEnd {
		return
	}
	for _, p := range g.Players {
		p.ResetHandState()
		p.Ready = false
	}
	g.resetTable()
	g.DealerID = uuid.Nil
	g.anteConfirmed = false
	g.participants = 0
	g.PhaseDeadline = time.Time{}
	g.Phase = PhaseIdle
	g.applyAutoReady()
	g.logAction(uuid.Nil, "hand_complete", map[string]interface{}{"hand": g.HandNumber})
}

func eventCard(c *models.Card) *EventCard {
	if c == nil {
		return nil
	}
	return &EventCard{ID: c.ID, Rank: c.Rank, Suit: c.Suit}
}

func eventCards(cards []*models.Card) []*EventCard {
	out := make([]*EventCard, len(cards))
	for i, c := range cards {
		out[i] = eventCard(c)
	}
	return out
}
