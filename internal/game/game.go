// internal/game/game.go
package game

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/swick/internal/cache"
	"github.com/jason-s-yu/swick/internal/models"
	"github.com/sirupsen/logrus"
)

// Phase is the stage of the hand the table is in.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseDealing        Phase = "dealing"
	PhaseTrumpSelection Phase = "trump_selection"
	PhaseKnockIn        Phase = "knock_in"
	PhaseDiscardDraw    Phase = "discard_draw"
	PhaseTurns          Phase = "turns"
	PhaseTrickComplete  Phase = "trick_complete"
	PhaseDealerAutoWin  Phase = "dealer_auto_win"
	PhaseSpecialHandWin Phase = "special_hand_win"
	PhaseEnd            Phase = "end"
)

// InHandPhase reports whether a hand is being played (dealing through end).
func (p Phase) InHandPhase() bool {
	return p != PhaseIdle && p != ""
}

// GameEventType is an enum-like type for broadcasting game actions.
type GameEventType string

const (
	EventPlayerJoined     GameEventType = "player_joined"
	EventPlayerLeft       GameEventType = "player_left"
	EventPlayerReady      GameEventType = "player_ready"
	EventAnteSet          GameEventType = "ante_set"
	EventNameChanged      GameEventType = "name_changed"
	EventCountdownStart   GameEventType = "countdown_start"
	EventCountdownCancel  GameEventType = "countdown_cancel"
	EventHandStart        GameEventType = "hand_start"
	EventTrumpRevealed    GameEventType = "trump_revealed"
	EventTrumpDecision    GameEventType = "trump_decision"
	EventKnockDecision    GameEventType = "knock_decision"
	EventDiscardDone      GameEventType = "discard_done"
	EventCardPlayed       GameEventType = "card_played"
	EventTrickWon         GameEventType = "trick_won"
	EventWentSet          GameEventType = "went_set"
	EventDealerAutoWin    GameEventType = "dealer_auto_win"
	EventSoleSurvivor     GameEventType = "sole_survivor"
	EventSpecialHand      GameEventType = "special_hand"
	EventHandAborted      GameEventType = "hand_aborted"
	EventHandResults      GameEventType = "hand_results"
	EventPrivateSyncState GameEventType = "private_sync_state"
)

// EventUser is used within GameEvent payloads for user identification.
type EventUser struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name,omitempty"`
}

// EventCard identifies a card that is visible to everyone receiving the event.
type EventCard struct {
	ID   uuid.UUID `json:"id"`
	Rank string    `json:"rank"`
	Suit string    `json:"suit"`
}

// GameEvent holds data about an event that can be broadcast to the clients in a consistent format.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	User    *EventUser             `json:"user,omitempty"`
	Card    *EventCard             `json:"card,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *ObfGameState          `json:"state,omitempty"`
}

// TrickPlay is one card played into the current trick.
type TrickPlay struct {
	PlayerID uuid.UUID    `json:"playerId"`
	Card     *models.Card `json:"card"`
}

// CompletedTrick is a resolved trick kept for the hand history view.
type CompletedTrick struct {
	Number   int         `json:"number"`
	WinnerID uuid.UUID   `json:"winnerId"`
	Plays    []TrickPlay `json:"plays"`
}

// SwickGame is the rules engine of one room. It is not safe for concurrent
// use: the owning room serializes every call, including timer callbacks
// delivered through the Scheduler.
type SwickGame struct {
	ID     uuid.UUID
	RoomID uuid.UUID

	HouseRules HouseRules

	// Players is kept sorted by seat.
	Players []*models.Player

	Phase      Phase
	HandNumber int

	DealerID       uuid.UUID
	DealerSeat     int
	nextDealerSeat int

	CurrentAnte   int
	anteConfirmed bool

	Pot          int
	CarryOver    int
	carryFromSet bool

	deck     *Deck
	Discards []*models.Card

	TrumpCard     *models.Card
	TrumpSuit     string
	TrumpKept     bool
	keptTrumpRank string

	Trick           []TrickPlay
	TrickNumber     int
	trickLeaderSeat int
	CompletedTricks []CompletedTrick

	// PhaseDeadline is when the pending timer of the current phase fires.
	PhaseDeadline time.Time

	handAwarded    bool
	anyWentSet     bool
	participants   int
	lastSettlement *Settlement
	armedKey       string

	actionIndex int

	sched    Scheduler
	slots    map[string]*timerSlot
	timerGen uint64

	// Bots decides for bot seats and for absent humans. May be nil, in which
	// case only timeouts move absent players along.
	Bots BotDecider

	// BroadcastFn is used to send events to all players. If nil, no broadcast is done.
	BroadcastFn func(ev GameEvent)

	// BroadcastToPlayerFn sends an event to a single specific player.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)

	// OnPlayerRemoved fires after a player leaves the table for good.
	OnPlayerRemoved func(playerID uuid.UUID, reason string)

	log *logrus.Entry
	now func() time.Time
	rng *rand.Rand
}

// NewSwickGame builds an idle table. rng may be nil to seed from the clock;
// logger may be nil to use the standard logrus logger.
func NewSwickGame(roomID uuid.UUID, rules HouseRules, sched Scheduler, logger *logrus.Entry, rng *rand.Rand) *SwickGame {
	id := uuid.New()
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g := &SwickGame{
		ID:          id,
		RoomID:      roomID,
		HouseRules:  rules,
		Phase:       PhaseIdle,
		CurrentAnte: rules.DefaultAnte,
		deck:        NewDeck(rng),
		sched:       sched,
		slots:       make(map[string]*timerSlot),
		log:         logger.WithFields(logrus.Fields{"room": roomID, "game": id}),
		now:         time.Now,
		rng:         rng,
	}
	return g
}

// Rand exposes the game's random source for components that act on its behalf.
func (g *SwickGame) Rand() *rand.Rand {
	return g.rng
}

// AddPlayer seats p at the lowest free seat. Joining mid-hand is allowed: the
// player sits out until the next deal. It returns false when the table is full.
// Assumes the room loop is the caller.
func (g *SwickGame) AddPlayer(p *models.Player) bool {
	if existing := g.getPlayerByID(p.ID); existing != nil {
		g.HandleReconnect(p.ID)
		return true
	}
	seat := g.nextFreeSeat(g.HouseRules.MaxPlayers)
	if seat < 0 {
		g.log.Infof("player %s refused: table full", p.ID)
		return false
	}
	p.Seat = seat
	if p.Money == 0 {
		p.Money = g.HouseRules.StartingMoney
	}
	if p.Name == "" {
		p.Name = "Player"
	}
	p.Connected = true
	p.ResetHandState()
	p.Ready = false

	inserted := false
	for i, existing := range g.Players {
		if existing.Seat > seat {
			g.Players = append(g.Players[:i], append([]*models.Player{p}, g.Players[i:]...)...)
			inserted = true
			break
		}
	}
	if !inserted {
		g.Players = append(g.Players, p)
	}
	g.ensureAdmin()
	if g.Phase == PhaseIdle {
		g.applyAutoReady()
	}

	g.log.Infof("player %s (%s) seated at %d", p.ID, p.Name, seat)
	g.logAction(p.ID, string(EventPlayerJoined), map[string]interface{}{"seat": seat, "bot": p.IsBot})
	g.fireEvent(GameEvent{
		Type:    EventPlayerJoined,
		User:    &EventUser{ID: p.ID, Name: p.Name},
		Payload: map[string]interface{}{"seat": seat, "isBot": p.IsBot},
	})
	g.afterMutation()
	return true
}

// HandleDisconnect marks the player absent and starts the reconnect grace
// timer. Bots act for them while they are away.
// Assumes the room loop is the caller.
func (g *SwickGame) HandleDisconnect(playerID uuid.UUID) {
	p := g.getPlayerByID(playerID)
	if p == nil || p.IsBot {
		return
	}
	if !p.Connected {
		g.log.Debugf("player %s already marked disconnected", playerID)
		return
	}
	p.Connected = false
	p.DisconnectedAt = g.now()
	if g.Phase == PhaseIdle {
		p.Ready = false
		g.cancelCountdown()
	}
	g.log.Infof("player %s disconnected", playerID)
	g.logAction(playerID, "player_disconnect", nil)

	g.schedule(slotGrace+playerID.String(), seconds(g.HouseRules.ReconnectGraceSec), func() {
		cur := g.getPlayerByID(playerID)
		if cur == nil || cur.Connected {
			return
		}
		g.log.Infof("player %s reconnect grace expired", playerID)
		g.removePlayer(playerID, "grace_expired")
	})
	g.afterMutation()
}

// HandleReconnect restores a player inside the grace window to exactly the
// state they left. It reports whether the player was found.
// Assumes the room loop is the caller.
func (g *SwickGame) HandleReconnect(playerID uuid.UUID) bool {
	p := g.getPlayerByID(playerID)
	if p == nil {
		return false
	}
	g.cancel(slotGrace + playerID.String())
	if !p.Connected {
		p.Connected = true
		p.DisconnectedAt = time.Time{}
		g.log.Infof("player %s reconnected", playerID)
		g.logAction(playerID, "player_reconnect", nil)
	}
	g.afterMutation()
	return true
}

// RemovePlayer takes a player off the table for good. Their cards go to the
// discard pile; if they were dealing, the hand is abandoned and the pot
// carries over.
// Assumes the room loop is the caller.
func (g *SwickGame) RemovePlayer(playerID uuid.UUID, reason string) {
	if g.removePlayer(playerID, reason) {
		g.afterMutation()
	}
}

func (g *SwickGame) removePlayer(playerID uuid.UUID, reason string) bool {
	idx := -1
	for i, p := range g.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	p := g.Players[idx]
	wasDealer := g.isDealer(p) && g.Phase.InHandPhase() && g.Phase != PhaseEnd
	wasInHand := p.InHand && g.Phase.InHandPhase()

	if g.Phase == PhaseIdle {
		g.cancelCountdown()
	}
	if wasInHand {
		g.withdrawFromTrick(p.ID)
		g.Discards = append(g.Discards, p.Hand...)
		p.Hand = nil
		p.InHand = false
		p.Knock = models.KnockPassed
	}
	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)
	g.cancel(slotGrace + playerID.String())
	if p.IsAdmin {
		p.IsAdmin = false
		g.ensureAdmin()
	}

	g.log.Infof("player %s removed (%s)", playerID, reason)
	g.logAction(playerID, string(EventPlayerLeft), map[string]interface{}{"reason": reason})
	g.fireEvent(GameEvent{
		Type:    EventPlayerLeft,
		User:    &EventUser{ID: playerID, Name: p.Name},
		Payload: map[string]interface{}{"reason": reason},
	})
	if g.OnPlayerRemoved != nil {
		g.OnPlayerRemoved(playerID, reason)
	}

	switch {
	case wasDealer:
		g.abortHand("dealer_left")
	case wasInHand:
		g.checkProgress()
	}
	return true
}

// ensureAdmin hands the admin role to the first human in seat order when no
// one holds it.
func (g *SwickGame) ensureAdmin() {
	for _, p := range g.Players {
		if p.IsAdmin {
			return
		}
	}
	for _, p := range g.Players {
		if !p.IsBot {
			p.IsAdmin = true
			g.log.Infof("player %s is now admin", p.ID)
			return
		}
	}
}

// HumanCount returns the number of seated human players.
func (g *SwickGame) HumanCount() int {
	n := 0
	for _, p := range g.Players {
		if !p.IsBot {
			n++
		}
	}
	return n
}

// ConnectedHumans returns the number of connected human players.
func (g *SwickGame) ConnectedHumans() int {
	n := 0
	for _, p := range g.Players {
		if !p.IsBot && p.Connected {
			n++
		}
	}
	return n
}

// Shutdown stops every pending timer.
func (g *SwickGame) Shutdown() {
	g.cancelAll()
}

func (g *SwickGame) getPlayerByID(id uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// GetPlayer returns the seated player with the given ID, or nil.
func (g *SwickGame) GetPlayer(id uuid.UUID) *models.Player {
	return g.getPlayerByID(id)
}

// fireEvent broadcasts an event to all connected players.
func (g *SwickGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// fireEventToPlayer sends an event only to a specific connected player.
func (g *SwickGame) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn == nil {
		return
	}
	if p := g.getPlayerByID(playerID); p != nil && p.Connected && !p.IsBot {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}

// logAction numbers an applied action and ships it to the history stream.
// Publishing happens off the room loop and never feeds back into play.
func (g *SwickGame) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.HandActionRecord{
		RoomID:        g.RoomID,
		GameID:        g.ID,
		HandNumber:    g.HandNumber,
		ActionIndex:   g.actionIndex,
		ActorID:       actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     g.now().UnixMilli(),
	}
	if cache.Rdb == nil {
		return
	}
	go func(rec cache.HandActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishHandAction(ctx, rec); err != nil {
			g.log.Warnf("publishing action %d: %v", rec.ActionIndex, err)
		}
	}(record)
}
