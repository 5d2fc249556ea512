package rules

import "github.com/jason-s-yu/swick/internal/models"

// SpecialHand is a three-card holding that wins the hand outright after the
// discard/draw step. Lower values take precedence.
type SpecialHand int

const (
	SpecialNone SpecialHand = iota
	SpecialThreeAces
	SpecialThreeSevens
	SpecialTrumpAKQ
)

func (s SpecialHand) String() string {
	switch s {
	case SpecialThreeAces:
		return "three_aces"
	case SpecialThreeSevens:
		return "three_sevens"
	case SpecialTrumpAKQ:
		return "trump_akq"
	}
	return "none"
}

// DetectSpecialHand classifies a hand. Only hands of exactly three cards
// qualify; the highest ranking match wins.
func DetectSpecialHand(hand []*models.Card, trump string) SpecialHand {
	if len(hand) != 3 {
		return SpecialNone
	}
	counts := map[string]int{}
	trumpRanks := map[string]bool{}
	for _, c := range hand {
		if c == nil {
			return SpecialNone
		}
		counts[c.Rank]++
		if c.Suit == trump {
			trumpRanks[c.Rank] = true
		}
	}
	switch {
	case counts["A"] == 3:
		return SpecialThreeAces
	case counts["7"] == 3:
		return SpecialThreeSevens
	case trumpRanks["A"] && trumpRanks["K"] && trumpRanks["Q"]:
		return SpecialTrumpAKQ
	}
	return SpecialNone
}

// BestSpecialHand returns the index of the strongest special hand among
// kinds, or -1 if none qualifies. Ties go to the earlier entry, so callers
// pass kinds in seating order from the dealer's left.
func BestSpecialHand(kinds []SpecialHand) int {
	best := -1
	for i, k := range kinds {
		if k == SpecialNone {
			continue
		}
		if best == -1 || k < kinds[best] {
			best = i
		}
	}
	return best
}
