package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/swick/internal/models"
)

// TricksPerHand is the number of tricks played in a full hand.
const TricksPerHand = 3

// SettlementEntry is one knocked-in player at the end of the hand.
type SettlementEntry struct {
	PlayerID  uuid.UUID
	TricksWon int
	Money     int
	IsDealer  bool
	// KeptTrumpRank is the rank of the trump card the dealer took into hand,
	// empty when the dealer declined it or the player is not the dealer.
	KeptTrumpRank string
}

// PlayerSettlement is the outcome computed for one entry.
type PlayerSettlement struct {
	PlayerID  uuid.UUID      `json:"playerId"`
	TricksWon int            `json:"tricksWon"`
	WentSet   bool           `json:"wentSet"`
	SetType   models.SetType `json:"setType,omitempty"`
	SetAmount int            `json:"setAmount"` // nominal penalty
	Penalty   int            `json:"penalty"`   // amount actually deducted
	Payout    int            `json:"payout"`
	Outcome   models.Outcome `json:"outcome"`
}

// Settlement is the result of scoring a fully played hand.
type Settlement struct {
	Pot        int                `json:"pot"`
	TrickValue int                `json:"trickValue"`
	Players    []PlayerSettlement `json:"players"`
	Retained   int                `json:"retained"`  // part of the pot nobody was paid
	Penalties  int                `json:"penalties"` // going-set money actually collected
	CarryOver  int                `json:"carryOver"` // Retained + Penalties
	AnyWentSet bool               `json:"anyWentSet"`
}

// requiredTricks returns how many tricks the entry must take to avoid going
// set, and the penalty tier if it does not.
func requiredTricks(e SettlementEntry) (int, models.SetType) {
	if e.IsDealer && e.KeptTrumpRank != "" && models.IsFaceRank(e.KeptTrumpRank) {
		return 2, models.SetDouble
	}
	return 1, models.SetSingle
}

// Settle scores a hand from the pot and the knocked-in players. It is pure:
// callers apply the result. Payouts plus Retained always equals Pot.
func Settle(pot int, entries []SettlementEntry) Settlement {
	s := Settlement{Pot: pot, TrickValue: pot / TricksPerHand}
	paid := 0
	for _, e := range entries {
		ps := PlayerSettlement{PlayerID: e.PlayerID, TricksWon: e.TricksWon}
		need, tier := requiredTricks(e)
		if e.TricksWon < need {
			ps.WentSet = true
			ps.SetType = tier
			ps.SetAmount = pot
			if tier == models.SetDouble {
				ps.SetAmount = 2 * pot
			}
			ps.Penalty = min(ps.SetAmount, max(e.Money, 0))
			ps.Outcome = models.OutcomeLoser
			s.Penalties += ps.Penalty
			s.AnyWentSet = true
		} else {
			ps.Payout = e.TricksWon * s.TrickValue
			paid += ps.Payout
			if e.TricksWon > 0 {
				ps.Outcome = models.OutcomeWinner
			}
		}
		s.Players = append(s.Players, ps)
	}
	s.Retained = pot - paid
	s.CarryOver = s.Retained + s.Penalties
	return s
}

// dealerFoldPenalty is what a dealer pays for passing or folding: always the
// single tier, floored at the dealer's balance.
func dealerFoldPenalty(pot, money int) (nominal, deducted int) {
	return pot, min(pot, max(money, 0))
}

// antesFor computes what each participant pays when the hand is dealt.
// With a going-set carry-over pending only the dealer pays, and only the
// surcharge. Payments never exceed a player's balance.
func antesFor(players []*models.Player, dealerID uuid.UUID, ante, surcharge int, carryFromSet bool) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(players))
	for _, p := range players {
		owed := 0
		if !carryFromSet {
			owed = ante
		}
		if p.ID == dealerID {
			owed += surcharge
		}
		out[p.ID] = min(owed, max(p.Money, 0))
	}
	return out
}

// anteOwed is the amount p would pay if the next hand were dealt now.
func (g *SwickGame) anteOwed(p *models.Player) int {
	owed := 0
	if !g.carryFromSet {
		owed = g.CurrentAnte
	}
	if up := g.upcomingDealer(); up != nil && up.ID == p.ID {
		owed += g.HouseRules.DealerSurcharge
	}
	return owed
}

// applySettlement moves money and records outcomes from a computed settlement.
// Assumes the room loop is the caller.
func (g *SwickGame) applySettlement(s Settlement) {
	for _, ps := range s.Players {
		p := g.getPlayerByID(ps.PlayerID)
		if p == nil {
			continue
		}
		p.Money += ps.Payout - ps.Penalty
		p.WentSet = ps.WentSet
		p.SetType = ps.SetType
		p.SetAmount = ps.SetAmount
		p.Outcome = ps.Outcome
		if ps.WentSet {
			g.anyWentSet = true
		}
	}
	g.CarryOver += s.CarryOver
	if s.AnyWentSet {
		g.carryFromSet = true
	}
	g.Pot = 0
	g.lastSettlement = &s
}
