package models

import (
	"time"

	"github.com/google/uuid"
)

// KnockState is a player's knock-in decision for the current hand.
type KnockState string

const (
	KnockUndecided KnockState = "undecided"
	KnockPassed    KnockState = "passed"
	KnockedIn      KnockState = "knocked_in"
)

// DiscardState tracks where a player is in the discard/draw step.
type DiscardState string

const (
	DiscardPending DiscardState = "pending"
	DiscardExtra   DiscardState = "extra" // dealer holding 4 cards must shed one more
	DiscardDone    DiscardState = "done"
)

// SetType is the going-set penalty tier.
type SetType string

const (
	SetNone   SetType = ""
	SetSingle SetType = "single"
	SetDouble SetType = "double"
)

// Outcome is the hand result shown next to a player once the hand ends.
type Outcome string

const (
	OutcomeNone   Outcome = ""
	OutcomeWinner Outcome = "winner"
	OutcomeLoser  Outcome = "loser"
)

// MaxNameLength is the longest display name accepted.
const MaxNameLength = 20

type Player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Seat int       `json:"seat"`

	Money     int  `json:"money"`
	Ante      int  `json:"ante"`
	Ready     bool `json:"ready"`
	AutoReady bool `json:"autoReady"`
	IsAdmin   bool `json:"isAdmin"`

	Connected      bool      `json:"connected"`
	DisconnectedAt time.Time `json:"-"`

	IsBot         bool   `json:"isBot"`
	BotDifficulty string `json:"botDifficulty,omitempty"`

	Hand []*Card `json:"-"`

	// Per-hand state, cleared between hands.
	InHand           bool         `json:"inHand"`
	Knock            KnockState   `json:"knock"`
	Discard          DiscardState `json:"discard"`
	DiscardSelection []int        `json:"-"`
	TricksWon        int          `json:"tricksWon"`
	WentSet          bool         `json:"wentSet"`
	SetAmount        int          `json:"setAmount"`
	SetType          SetType      `json:"setType,omitempty"`
	Outcome          Outcome      `json:"outcome,omitempty"`
}

// Active reports whether the player can take part in the next hand.
// Disconnected humans sit out until they return.
func (p *Player) Active() bool {
	return p.IsBot || p.Connected
}

// KnockedIn reports whether the player is still contesting the current hand.
func (p *Player) KnockedIn() bool {
	return p.InHand && p.Knock == KnockedIn
}

// ResetHandState clears every per-hand field.
func (p *Player) ResetHandState() {
	p.Hand = nil
	p.InHand = false
	p.Knock = KnockUndecided
	p.Discard = DiscardPending
	p.DiscardSelection = nil
	p.TricksWon = 0
	p.WentSet = false
	p.SetAmount = 0
	p.SetType = SetNone
	p.Outcome = OutcomeNone
}

// RemoveCards removes the cards at the given hand indexes and returns them
// in hand order. Out of range or duplicate indexes are ignored.
func (p *Player) RemoveCards(idxs []int) []*Card {
	drop := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		if i >= 0 && i < len(p.Hand) {
			drop[i] = true
		}
	}
	removed := make([]*Card, 0, len(drop))
	kept := make([]*Card, 0, len(p.Hand))
	for i, c := range p.Hand {
		if drop[i] {
			removed = append(removed, c)
		} else {
			kept = append(kept, c)
		}
	}
	p.Hand = kept
	return removed
}

// ToggleSelection flips idx in the discard selection, refusing to grow the
// selection past limit. It reports whether the selection changed.
func (p *Player) ToggleSelection(idx, limit int) bool {
	for i, s := range p.DiscardSelection {
		if s == idx {
			p.DiscardSelection = append(p.DiscardSelection[:i], p.DiscardSelection[i+1:]...)
			return true
		}
	}
	if len(p.DiscardSelection) >= limit {
		return false
	}
	p.DiscardSelection = append(p.DiscardSelection, idx)
	return true
}
