// Package rules holds the pure card predicates of Swick: trick ordering,
// play legality and special hand detection. Nothing here touches game state.
package rules

import "github.com/jason-s-yu/swick/internal/models"

// Beats reports whether challenger takes the trick from incumbent.
// Trump beats any non-trump card, cards of the same suit compare by rank,
// and an off-suit non-trump card never wins.
func Beats(challenger, incumbent *models.Card, trump string) bool {
	if challenger == nil {
		return false
	}
	if incumbent == nil {
		return true
	}
	if challenger.Suit == trump && incumbent.Suit != trump {
		return true
	}
	if challenger.Suit == incumbent.Suit {
		return challenger.Value > incumbent.Value
	}
	return false
}

// TrickWinner returns the index of the winning play within plays, or -1 when
// the trick is empty.
func TrickWinner(plays []*models.Card, trump string) int {
	winner := -1
	for i, c := range plays {
		if c == nil {
			continue
		}
		if winner == -1 || Beats(c, plays[winner], trump) {
			winner = i
		}
	}
	return winner
}
