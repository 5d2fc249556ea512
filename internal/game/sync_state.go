// internal/game/sync_state.go
package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/swick/internal/models"
)

// ObfCard is a card as one viewer may see it. Face-down cards of other
// players are never included; their count is reported instead.
type ObfCard struct {
	ID    uuid.UUID `json:"id"`
	Known bool      `json:"known"`
	Rank  string    `json:"rank,omitempty"`
	Suit  string    `json:"suit,omitempty"`
	Idx   int       `json:"idx"`
}

// ObfPlayerState is the public view of one seat plus, for the viewer's own
// seat, their hand and discard selection.
type ObfPlayerState struct {
	PlayerID      uuid.UUID           `json:"playerId"`
	Name          string              `json:"name"`
	Seat          int                 `json:"seat"`
	Money         int                 `json:"money"`
	Ante          int                 `json:"ante"`
	Ready         bool                `json:"ready"`
	AutoReady     bool                `json:"autoReady"`
	Connected     bool                `json:"connected"`
	IsAdmin       bool                `json:"isAdmin"`
	IsBot         bool                `json:"isBot"`
	IsDealer      bool                `json:"isDealer"`
	InHand        bool                `json:"inHand"`
	Knock         models.KnockState   `json:"knock"`
	Discard       models.DiscardState `json:"discard"`
	HandSize      int                 `json:"handSize"`
	TricksWon     int                 `json:"tricksWon"`
	WentSet       bool                `json:"wentSet"`
	SetType       models.SetType      `json:"setType,omitempty"`
	SetAmount     int                 `json:"setAmount,omitempty"`
	Outcome       models.Outcome      `json:"outcome,omitempty"`
	IsCurrentTurn bool                `json:"isCurrentTurn"`
	Hand          []ObfCard           `json:"hand,omitempty"`
	Selection     []int               `json:"selection,omitempty"`
	VisibleCards  []ObfCard           `json:"visibleCards,omitempty"`
}

// ObfTrickPlay is a face-up card in the current or a completed trick.
type ObfTrickPlay struct {
	PlayerID uuid.UUID `json:"playerId"`
	Card     ObfCard   `json:"card"`
}

// ObfTrick is a resolved trick.
type ObfTrick struct {
	Number   int            `json:"number"`
	WinnerID uuid.UUID      `json:"winnerId"`
	Plays    []ObfTrickPlay `json:"plays"`
}

// ObfGameState is the full table as seen by one viewer.
type ObfGameState struct {
	GameID          uuid.UUID        `json:"gameId"`
	RoomID          uuid.UUID        `json:"roomId"`
	Phase           Phase            `json:"phase"`
	HandNumber      int              `json:"handNumber"`
	DealerID        uuid.UUID        `json:"dealerId"`
	UpcomingDealer  uuid.UUID        `json:"upcomingDealerId"`
	Ante            int              `json:"ante"`
	AnteConfirmed   bool             `json:"anteConfirmed"`
	AnteOptions     []int            `json:"anteOptions"`
	Pot             int              `json:"pot"`
	CarryOver       int              `json:"carryOver"`
	TrumpSuit       string           `json:"trumpSuit,omitempty"`
	TrumpCard       *ObfCard         `json:"trumpCard,omitempty"`
	TrumpKept       bool             `json:"trumpKept"`
	RequiredActor   uuid.UUID        `json:"requiredActor"`
	PhaseDeadline   int64            `json:"phaseDeadline,omitempty"` // epoch millis
	DeckSize        int              `json:"deckSize"`
	DiscardSize     int              `json:"discardSize"`
	TrickNumber     int              `json:"trickNumber"`
	CurrentTrick    []ObfTrickPlay   `json:"currentTrick"`
	CompletedTricks []ObfTrick       `json:"completedTricks"`
	Players         []ObfPlayerState `json:"players"`
}

func knownCard(c *models.Card, idx int) ObfCard {
	return ObfCard{ID: c.ID, Known: true, Rank: c.Rank, Suit: c.Suit, Idx: idx}
}

// GetCurrentObfuscatedGameState generates a snapshot of the game for the requesting user.
func (g *SwickGame) GetCurrentObfuscatedGameState(forUser uuid.UUID) ObfGameState {
	obf := ObfGameState{
		GameID:        g.ID,
		RoomID:        g.RoomID,
		Phase:         g.Phase,
		HandNumber:    g.HandNumber,
		DealerID:      g.DealerID,
		Ante:          g.CurrentAnte,
		AnteConfirmed: g.anteConfirmed,
		AnteOptions:   g.HouseRules.AnteOptions,
		Pot:           g.Pot,
		CarryOver:     g.CarryOver,
		TrumpSuit:     g.TrumpSuit,
		TrumpKept:     g.TrumpKept,
		DeckSize:      g.deck.Remaining(),
		DiscardSize:   len(g.Discards),
		TrickNumber:   g.TrickNumber,
	}
	if up := g.upcomingDealer(); up != nil && g.Phase == PhaseIdle {
		obf.UpcomingDealer = up.ID
	}
	if g.TrumpCard != nil {
		tc := knownCard(g.TrumpCard, 0)
		obf.TrumpCard = &tc
	}
	actor := g.currentActor()
	if actor != nil {
		obf.RequiredActor = actor.ID
	}
	if !g.PhaseDeadline.IsZero() && g.PhaseDeadline.After(g.now().Add(-time.Second)) {
		obf.PhaseDeadline = g.PhaseDeadline.UnixMilli()
	}

	obf.CurrentTrick = make([]ObfTrickPlay, 0, len(g.Trick))
	for i, tp := range g.Trick {
		obf.CurrentTrick = append(obf.CurrentTrick, ObfTrickPlay{PlayerID: tp.PlayerID, Card: knownCard(tp.Card, i)})
	}
	obf.CompletedTricks = make([]ObfTrick, 0, len(g.CompletedTricks))
	for _, ct := range g.CompletedTricks {
		t := ObfTrick{Number: ct.Number, WinnerID: ct.WinnerID}
		for i, tp := range ct.Plays {
			t.Plays = append(t.Plays, ObfTrickPlay{PlayerID: tp.PlayerID, Card: knownCard(tp.Card, i)})
		}
		obf.CompletedTricks = append(obf.CompletedTricks, t)
	}

	for _, pl := range g.Players {
		ps := ObfPlayerState{
			PlayerID:      pl.ID,
			Name:          pl.Name,
			Seat:          pl.Seat,
			Money:         pl.Money,
			Ante:          pl.Ante,
			Ready:         pl.Ready,
			AutoReady:     pl.AutoReady,
			Connected:     pl.Connected,
			IsAdmin:       pl.IsAdmin,
			IsBot:         pl.IsBot,
			IsDealer:      g.isDealer(pl),
			InHand:        pl.InHand,
			Knock:         pl.Knock,
			Discard:       pl.Discard,
			HandSize:      len(pl.Hand),
			TricksWon:     pl.TricksWon,
			WentSet:       pl.WentSet,
			SetType:       pl.SetType,
			SetAmount:     pl.SetAmount,
			Outcome:       pl.Outcome,
			IsCurrentTurn: actor != nil && actor.ID == pl.ID,
		}
		if pl.ID == forUser {
			ps.Hand = make([]ObfCard, len(pl.Hand))
			for j, c := range pl.Hand {
				ps.Hand[j] = knownCard(c, j)
			}
			ps.Selection = append([]int(nil), pl.DiscardSelection...)
		} else {
			// Face-up cards in another hand (the kept trump, a revealed
			// special hand) are public.
			for j, c := range pl.Hand {
				if c.FaceUp {
					ps.VisibleCards = append(ps.VisibleCards, knownCard(c, j))
				}
			}
		}
		obf.Players = append(obf.Players, ps)
	}

	return obf
}

// sendSyncState pushes the viewer-specific state to one player.
func (g *SwickGame) sendSyncState(playerID uuid.UUID) {
	state := g.GetCurrentObfuscatedGameState(playerID)
	g.fireEventToPlayer(playerID, GameEvent{Type: EventPrivateSyncState, State: &state})
}

// broadcastSyncState pushes a fresh per-viewer state to every connected human.
func (g *SwickGame) broadcastSyncState() {
	if g.BroadcastToPlayerFn == nil {
		return
	}
	for _, p := range g.Players {
		if p.Connected && !p.IsBot {
			g.sendSyncState(p.ID)
		}
	}
}

// SyncPlayer sends the current state to one player, e.g. right after they
// (re)connect.
func (g *SwickGame) SyncPlayer(playerID uuid.UUID) {
	g.sendSyncState(playerID)
}
