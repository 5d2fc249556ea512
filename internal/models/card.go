// internal/models/card.go
package models

import "github.com/google/uuid"

// Suits used by the Swick deck, single letter like the client expects.
const (
	SuitHearts   = "H"
	SuitDiamonds = "D"
	SuitClubs    = "C"
	SuitSpades   = "S"
)

// Suits lists every suit in deck construction order.
var Suits = []string{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

// Ranks lists every rank present in the 32-card deck, low to high.
var Ranks = []string{"7", "8", "9", "T", "J", "Q", "K", "A"}

// rankValues maps a rank string to its ordering value (7 lowest, Ace highest).
var rankValues = map[string]int{
	"7": 7, "8": 8, "9": 9, "T": 10, "J": 11, "Q": 12, "K": 13, "A": 14,
}

// RankValue returns the ordering value for a rank, or 0 for an unknown rank.
func RankValue(rank string) int {
	return rankValues[rank]
}

// IsFaceRank reports whether the rank is J, Q, K or A.
func IsFaceRank(rank string) bool {
	return RankValue(rank) >= 11
}

// Card is a single playing card. ID, Rank and Suit never change once a card
// is created; FaceUp only tracks who may see it.
type Card struct {
	ID     uuid.UUID `json:"id"`
	Suit   string    `json:"suit"`
	Rank   string    `json:"rank"`
	Value  int       `json:"value"`
	FaceUp bool      `json:"faceUp"`
}

// NewCard builds a face-down card with a fresh ID.
func NewCard(rank, suit string) *Card {
	return &Card{ID: uuid.New(), Rank: rank, Suit: suit, Value: RankValue(rank)}
}

// String renders the card as rank+suit, e.g. "AH".
func (c *Card) String() string {
	if c == nil {
		return "--"
	}
	return c.Rank + c.Suit
}
