package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/swick/internal/models"
)

// Turn order is never stored. Every question of "who is next" is answered
// from the current seating, hand membership and the dealer seat.

// orderFromSeat lists players matching keep in seating order, starting at the
// first occupied seat at or after seat and wrapping around.
func (g *SwickGame) orderFromSeat(seat int, keep func(*models.Player) bool) []*models.Player {
	out := make([]*models.Player, 0, len(g.Players))
	start := 0
	for i, p := range g.Players {
		if p.Seat >= seat {
			start = i
			break
		}
	}
	for i := 0; i < len(g.Players); i++ {
		p := g.Players[(start+i)%len(g.Players)]
		if keep == nil || keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// orderFromDealerLeft lists matching players starting left of the dealer, so
// the dealer (if matching) comes last.
func (g *SwickGame) orderFromDealerLeft(keep func(*models.Player) bool) []*models.Player {
	return g.orderFromSeat(g.DealerSeat+1, keep)
}

func inHand(p *models.Player) bool { return p.InHand }

func knockedIn(p *models.Player) bool { return p.KnockedIn() }

// dealer returns the dealer of the current hand, or nil when no hand is
// running or the dealer has left.
func (g *SwickGame) dealer() *models.Player {
	if g.DealerID == uuid.Nil {
		return nil
	}
	return g.getPlayerByID(g.DealerID)
}

func (g *SwickGame) isDealer(p *models.Player) bool {
	return p != nil && p.ID == g.DealerID
}

// eligible lists players who could take part in the next hand, in seat order.
func (g *SwickGame) eligible() []*models.Player {
	var out []*models.Player
	for _, p := range g.Players {
		if p.Active() {
			out = append(out, p)
		}
	}
	return out
}

// upcomingDealer is the player who will deal the next hand: the first
// eligible player at or after the seat left of the previous dealer.
func (g *SwickGame) upcomingDealer() *models.Player {
	el := g.orderFromSeat(g.nextDealerSeat, (*models.Player).Active)
	if len(el) == 0 {
		return nil
	}
	return el[0]
}

// knockedInPlayers lists knocked-in players from the dealer's left.
func (g *SwickGame) knockedInPlayers() []*models.Player {
	return g.orderFromDealerLeft(knockedIn)
}

// currentActor is the single player whose decision the current phase is
// waiting on, or nil when the phase is waiting on nobody.
func (g *SwickGame) currentActor() *models.Player {
	switch g.Phase {
	case PhaseTrumpSelection:
		return g.dealer()

	case PhaseKnockIn:
		for _, p := range g.orderFromDealerLeft(inHand) {
			if !g.isDealer(p) && p.Knock == models.KnockUndecided {
				return p
			}
		}
		if d := g.dealer(); d != nil && d.InHand && d.Knock == models.KnockUndecided {
			return d
		}

	case PhaseDiscardDraw:
		for _, p := range g.knockedInPlayers() {
			if p.Discard != models.DiscardDone {
				return p
			}
		}

	case PhaseTurns:
		played := make(map[uuid.UUID]bool, len(g.Trick))
		for _, tp := range g.Trick {
			played[tp.PlayerID] = true
		}
		for _, p := range g.orderFromSeat(g.trickLeaderSeat, knockedIn) {
			if played[p.ID] || len(p.Hand) == 0 {
				continue
			}
			return p
		}
	}
	return nil
}

// firstLeaderSeat is the seat of the first knocked-in player left of the
// dealer who still holds cards.
func (g *SwickGame) firstLeaderSeat() int {
	for _, p := range g.knockedInPlayers() {
		if len(p.Hand) > 0 {
			return p.Seat
		}
	}
	return g.DealerSeat + 1
}

// nextFreeSeat returns the lowest unoccupied seat below limit, or -1.
func (g *SwickGame) nextFreeSeat(limit int) int {
	taken := make(map[int]bool, len(g.Players))
	for _, p := range g.Players {
		taken[p.Seat] = true
	}
	for s := 0; s < limit; s++ {
		if !taken[s] {
			return s
		}
	}
	return -1
}
