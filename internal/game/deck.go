// internal/game/deck.go
package game

import (
	"math/rand"
	"time"

	"github.com/jason-s-yu/swick/internal/models"
)

// DeckSize is the number of cards in a Swick deck (7 through Ace in four suits).
const DeckSize = 32

// Deck is the draw pile for one hand.
type Deck struct {
	cards []*models.Card
	rng   *rand.Rand
}

// NewDeck returns an empty deck. Pass a nil rng to seed from the clock.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Deck{rng: rng}
}

// Reset rebuilds all 32 cards with fresh IDs and shuffles them.
func (d *Deck) Reset() {
	cards := make([]*models.Card, 0, DeckSize)
	for _, suit := range models.Suits {
		for _, rank := range models.Ranks {
			cards = append(cards, models.NewCard(rank, suit))
		}
	}
	d.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	d.cards = cards
}

// Draw removes and returns the top card. ok is false once the deck is empty.
func (d *Deck) Draw() (*models.Card, bool) {
	if len(d.cards) == 0 {
		return nil, false
	}
	top := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return top, true
}

// Remaining is the number of undrawn cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
