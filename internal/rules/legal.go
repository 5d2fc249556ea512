package rules

import "github.com/jason-s-yu/swick/internal/models"

// PlayContext describes the trick a card would be played into.
type PlayContext struct {
	Trick []*models.Card // cards already played, in play order
	Trump string
	// FirstLead is set for the opening lead of the hand, which falls to the
	// first knocked-in player left of the dealer.
	FirstLead bool
}

// IsLegalPlay reports whether hand[idx] may be played. The checks run in order:
//
//  1. Opening lead of the hand while holding the trump Ace: it must be led.
//  2. Any other lead: anything goes.
//  3. Holding the led suit: follow it, and beat the best led-suit card so far
//     whenever some held card can.
//  4. Void in the led suit but holding trump: play trump.
//  5. Otherwise anything goes.
func IsLegalPlay(hand []*models.Card, idx int, ctx PlayContext) bool {
	if idx < 0 || idx >= len(hand) || hand[idx] == nil {
		return false
	}
	card := hand[idx]

	if len(ctx.Trick) == 0 {
		if ctx.FirstLead && holds(hand, ctx.Trump, "A") {
			return card.Suit == ctx.Trump && card.Rank == "A"
		}
		return true
	}

	lead := ctx.Trick[0].Suit
	if hasSuit(hand, lead) {
		if card.Suit != lead {
			return false
		}
		best := bestOfSuit(ctx.Trick, lead)
		if canExceed(hand, lead, best) {
			return card.Value > best
		}
		return true
	}

	if hasSuit(hand, ctx.Trump) {
		return card.Suit == ctx.Trump
	}
	return true
}

// LegalIndexes lists every legal index in hand order.
func LegalIndexes(hand []*models.Card, ctx PlayContext) []int {
	var out []int
	for i := range hand {
		if IsLegalPlay(hand, i, ctx) {
			out = append(out, i)
		}
	}
	return out
}

// FirstLegalIndex returns the lowest legal index, or -1 when none exists
// (which only happens for an empty hand).
func FirstLegalIndex(hand []*models.Card, ctx PlayContext) int {
	for i := range hand {
		if IsLegalPlay(hand, i, ctx) {
			return i
		}
	}
	return -1
}

func hasSuit(hand []*models.Card, suit string) bool {
	for _, c := range hand {
		if c != nil && c.Suit == suit {
			return true
		}
	}
	return false
}

func holds(hand []*models.Card, suit, rank string) bool {
	for _, c := range hand {
		if c != nil && c.Suit == suit && c.Rank == rank {
			return true
		}
	}
	return false
}

func bestOfSuit(cards []*models.Card, suit string) int {
	best := 0
	for _, c := range cards {
		if c != nil && c.Suit == suit && c.Value > best {
			best = c.Value
		}
	}
	return best
}

func canExceed(hand []*models.Card, suit string, value int) bool {
	for _, c := range hand {
		if c != nil && c.Suit == suit && c.Value > value {
			return true
		}
	}
	return false
}
