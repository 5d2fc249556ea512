package bot

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/jason-s-yu/swick/internal/game"
	"github.com/jason-s-yu/swick/internal/models"
	"github.com/jason-s-yu/swick/internal/rules"
)

// Brain picks the intents for one pending decision.
type Brain interface {
	Decide(view game.BotView, rng *rand.Rand) []models.GameAction
}

// NewBrain creates a brain for the given difficulty.
func NewBrain(d Difficulty) (Brain, error) {
	t, ok := Tunings[d]
	if !ok {
		return nil, fmt.Errorf("unknown bot level: %q", d)
	}
	return &HeuristicBot{Tuning: t}, nil
}

// HeuristicBot scores cards and hands against its tuning.
type HeuristicBot struct {
	Tuning Tuning
}

func (b *HeuristicBot) Decide(v game.BotView, rng *rand.Rand) []models.GameAction {
	switch v.Phase {
	case game.PhaseTrumpSelection:
		return []models.GameAction{boolAction(models.ActionKeepTrump, b.keepTrump(v, rng))}
	case game.PhaseKnockIn:
		return []models.GameAction{boolAction(models.ActionKnockIn, b.knockIn(v, rng))}
	case game.PhaseDiscardDraw:
		if v.Discard == models.DiscardExtra {
			return b.extraDiscard(v, rng)
		}
		return b.discard(v, rng)
	case game.PhaseTurns:
		if idx := b.play(v, rng); idx >= 0 {
			return []models.GameAction{{ActionType: models.ActionPlayCard, Payload: map[string]interface{}{"idx": float64(idx)}}}
		}
	}
	return nil
}

func boolAction(actionType string, v bool) models.GameAction {
	return models.GameAction{ActionType: actionType, Payload: map[string]interface{}{"value": v}}
}

func (b *HeuristicBot) noise(rng *rand.Rand) float64 {
	if b.Tuning.Jitter == 0 {
		return 0
	}
	return (rng.Float64()*2 - 1) * b.Tuning.Jitter
}

// cardScore rates how much a card helps win tricks.
func (b *HeuristicBot) cardScore(c *models.Card, trump string, rng *rand.Rand) float64 {
	s := float64(c.Value - 6)
	if c.Suit == trump {
		s += trumpBonus
	}
	if models.IsFaceRank(c.Rank) {
		s += faceBonus
	}
	switch c.Rank {
	case "A":
		s += aceBonus
	case "7":
		s += sevenBonus
	}
	return s + b.noise(rng)
}

func countTrumps(hand []*models.Card, trump string) int {
	n := 0
	for _, c := range hand {
		if c.Suit == trump {
			n++
		}
	}
	return n
}

func (b *HeuristicBot) keepTrump(v game.BotView, rng *rand.Rand) bool {
	if v.TrumpCard == nil {
		return false
	}
	p := b.Tuning.KeepBase + float64(countTrumps(v.Hand, v.TrumpSuit))*b.Tuning.KeepPerHeldTrump
	if models.IsFaceRank(v.TrumpCard.Rank) {
		// Keeping a face trump raises the bar to two tricks.
		p += b.Tuning.KeepFaceBonus
	}
	return rng.Float64() < p
}

func (b *HeuristicBot) knockIn(v game.BotView, rng *rand.Rand) bool {
	if rules.DetectSpecialHand(v.Hand, v.TrumpSuit) != rules.SpecialNone {
		return true
	}
	strength := b.noise(rng)
	for _, c := range v.Hand {
		if c.Suit == v.TrumpSuit {
			strength += b.Tuning.TrumpWeight * (1 + float64(c.Value-7)/7)
		} else if models.IsFaceRank(c.Rank) {
			strength += b.Tuning.FaceWeight
			if c.Rank == "A" {
				strength += b.Tuning.FaceWeight
			}
		}
	}
	threshold := b.Tuning.KnockThreshold
	if v.IsDealer {
		threshold -= b.Tuning.DealerBias
		if v.KeptTrumpID != uuid.Nil && v.TrumpCard != nil && models.IsFaceRank(v.TrumpCard.Rank) {
			threshold += b.Tuning.TrumpWeight
		}
	}
	if v.Pot > v.Money {
		threshold += b.Tuning.RiskAversion
	}
	return strength >= threshold
}

type scored struct {
	idx   int
	score float64
}

// rank scores every card b may give up, lowest first.
func (b *HeuristicBot) rank(v game.BotView, rng *rand.Rand) []scored {
	var out []scored
	for i, c := range v.Hand {
		if c.ID == v.KeptTrumpID {
			continue
		}
		out = append(out, scored{idx: i, score: b.cardScore(c, v.TrumpSuit, rng)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score < out[j].score })
	return out
}

func (b *HeuristicBot) discard(v game.BotView, rng *rand.Rand) []models.GameAction {
	playAsIs := []models.GameAction{{ActionType: models.ActionConfirmPlayAsIs}}
	if len(v.Hand) == 3 && rules.DetectSpecialHand(v.Hand, v.TrumpSuit) != rules.SpecialNone {
		return playAsIs
	}
	limit := min(b.Tuning.MaxDiscard, v.MaxDiscard)
	var picks []int
	for _, s := range b.rank(v, rng) {
		if len(picks) >= limit || s.score >= b.Tuning.DiscardBelow {
			break
		}
		picks = append(picks, s.idx)
	}
	if len(picks) == 0 {
		return playAsIs
	}
	actions := make([]models.GameAction, 0, len(picks)+1)
	for _, idx := range picks {
		actions = append(actions, models.GameAction{ActionType: models.ActionToggleDiscard, Payload: map[string]interface{}{"idx": float64(idx)}})
	}
	return append(actions, models.GameAction{ActionType: models.ActionConfirmDiscard})
}

// extraDiscard sheds the dealer's weakest card, preferring non-trump.
func (b *HeuristicBot) extraDiscard(v game.BotView, rng *rand.Rand) []models.GameAction {
	ranked := b.rank(v, rng)
	if len(ranked) == 0 {
		return nil
	}
	pick := ranked[0].idx
	for _, s := range ranked {
		if v.Hand[s.idx].Suit != v.TrumpSuit {
			pick = s.idx
			break
		}
	}
	return []models.GameAction{
		{ActionType: models.ActionToggleDiscard, Payload: map[string]interface{}{"idx": float64(pick)}},
		{ActionType: models.ActionConfirmDiscard},
	}
}

// play picks the cheapest legal card that currently wins the trick, or the
// lowest scoring legal card when none can.
func (b *HeuristicBot) play(v game.BotView, rng *rand.Rand) int {
	ctx := rules.PlayContext{Trick: v.Trick, Trump: v.TrumpSuit, FirstLead: v.FirstLead}
	legal := rules.LegalIndexes(v.Hand, ctx)
	if len(legal) == 0 {
		return -1
	}
	if len(legal) == 1 {
		return legal[0]
	}

	scores := make(map[int]float64, len(legal))
	for _, i := range legal {
		scores[i] = b.cardScore(v.Hand[i], v.TrumpSuit, rng)
	}
	byScore := func(asc bool) []int {
		out := append([]int(nil), legal...)
		sort.SliceStable(out, func(i, j int) bool {
			if asc {
				return scores[out[i]] < scores[out[j]]
			}
			return scores[out[i]] > scores[out[j]]
		})
		return out
	}

	if len(v.Trick) == 0 {
		if b.Tuning.LeadStrong {
			return byScore(false)[0]
		}
		return byScore(true)[0]
	}

	for _, i := range byScore(true) {
		trick := append(append([]*models.Card(nil), v.Trick...), v.Hand[i])
		if rules.TrickWinner(trick, v.TrumpSuit) == len(trick)-1 {
			return i
		}
	}
	return byScore(true)[0]
}
