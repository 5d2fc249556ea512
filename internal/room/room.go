// Package room runs Swick tables. Each Room owns one game engine and one
// goroutine; every intent, timer and membership change is applied on that
// goroutine, one at a time.
package room

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/swick/internal/auth"
	"github.com/jason-s-yu/swick/internal/game"
	"github.com/jason-s-yu/swick/internal/models"
	"github.com/sirupsen/logrus"
)

// EventHeartbeat is pulsed to every viewer regardless of table activity.
const EventHeartbeat game.GameEventType = "heartbeat"

// EventRemoved is the last event a removed player receives.
const EventRemoved game.GameEventType = "removed"

// Options are the process-wide knobs every room shares.
type Options struct {
	IdleTimeout       time.Duration
	HeartbeatInterval time.Duration
	Bots              game.BotDecider
	Logger            *logrus.Entry
	// Seed fixes the deck order of every room for tests; zero seeds each
	// room from the clock.
	Seed int64
}

// JoinRequest carries everything the join predicate looks at.
type JoinRequest struct {
	Session  auth.Session
	Passcode string
	// Discovered is set when the client found the room through the public
	// listing rather than a direct link.
	Discovered bool
}

// Room is one table.
type Room struct {
	ID uuid.UUID

	settings     Settings
	passcodeHash string
	opts         Options
	log          *logrus.Entry

	inbox chan func()
	done  chan struct{}
	once  sync.Once

	// Owned by the room goroutine.
	g         *game.SwickGame
	subs      map[uuid.UUID]*Subscription
	botsAdded bool
	idleTimer *time.Timer

	mu      sync.Mutex
	summary models.RoomSummary

	// OnClose runs once the room has shut down.
	OnClose func(id uuid.UUID)
}

// New creates an idle room. Run must be called to start it.
func New(settings Settings, opts Options) (*Room, error) {
	if err := settings.validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 60 * time.Second
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = 15 * time.Second
	}

	var hash string
	if settings.Passcode != "" {
		h, err := auth.HashPasscode(settings.Passcode)
		if err != nil {
			return nil, fmt.Errorf("hash passcode: %w", err)
		}
		hash = h
		settings.Passcode = ""
	}

	id, _ := uuid.NewV7()
	r := &Room{
		ID:           id,
		settings:     settings,
		passcodeHash: hash,
		opts:         opts,
		log:          opts.Logger.WithField("room", id),
		inbox:        make(chan func(), 128),
		done:         make(chan struct{}),
		subs:         make(map[uuid.UUID]*Subscription),
	}
	var rng *rand.Rand
	if opts.Seed != 0 {
		rng = rand.New(rand.NewSource(opts.Seed))
	}
	r.g = game.NewSwickGame(id, settings.Rules, inboxScheduler{r}, opts.Logger, rng)
	r.g.Bots = opts.Bots
	r.g.BroadcastFn = r.broadcast
	r.g.BroadcastToPlayerFn = r.sendTo
	r.g.OnPlayerRemoved = r.onPlayerRemoved
	r.refresh()
	return r, nil
}

// Settings returns the room's creation settings without the passcode.
func (r *Room) Settings() Settings {
	return r.settings
}

// Summary is the listing entry for the room.
func (r *Room) Summary() models.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

// Done is closed once the room has shut down.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Run processes the inbox until ctx ends or the room goes idle.
func (r *Room) Run(ctx context.Context) {
	heartbeat := time.NewTicker(r.opts.HeartbeatInterval)
	defer heartbeat.Stop()
	r.log.Infof("room %q started", r.settings.Name)
	r.armIdle()

	for {
		select {
		case <-ctx.Done():
			r.shutdown("context done")
			return
		case <-r.done:
			return
		case fn := <-r.inbox:
			r.safely(fn)
			r.refresh()
		case <-heartbeat.C:
			r.broadcast(game.GameEvent{
				Type: EventHeartbeat,
				Payload: map[string]interface{}{
					"serverTime": time.Now().UnixMilli(),
					"phase":      r.g.Phase,
				},
			})
		}
	}
}

// safely runs fn, containing any panic to this room.
func (r *Room) safely(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Errorf("recovered panic in room loop: %v\n%s", rec, debug.Stack())
		}
	}()
	fn()
}

// post queues fn for the room goroutine. It is dropped once the room is done.
func (r *Room) post(fn func()) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.inbox <- fn:
		return true
	case <-r.done:
		return false
	}
}

// call runs fn on the room goroutine and waits for it.
func (r *Room) call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !r.post(func() { defer close(finished); fn() }) {
		return ErrRoomClosed
	}
	select {
	case <-finished:
		return nil
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Join seats the session's player, or reattaches them if they are still at
// the table. The returned subscription starts with a full state sync.
func (r *Room) Join(ctx context.Context, req JoinRequest) (*Subscription, error) {
	if r.settings.Private && req.Discovered {
		return nil, refuse(ErrRoomPrivate)
	}
	if r.passcodeHash != "" {
		ok, err := auth.CheckPasscode(req.Passcode, r.passcodeHash)
		if err != nil {
			r.log.Errorf("passcode check: %v", err)
		}
		if !ok {
			return nil, refuse(ErrBadPasscode)
		}
	}

	var (
		sub     *Subscription
		joinErr error
	)
	err := r.call(ctx, func() {
		sub, joinErr = r.join(req.Session)
	})
	if err != nil {
		if errors.Is(err, ErrRoomClosed) {
			return nil, refuse(ErrRoomClosed)
		}
		return nil, err
	}
	return sub, joinErr
}

func (r *Room) join(s auth.Session) (*Subscription, error) {
	if existing := r.g.GetPlayer(s.ID); existing != nil {
		sub := r.subscribe(s.ID, true)
		r.g.HandleReconnect(s.ID)
		return sub, nil
	}
	if r.g.Phase.InHandPhase() && !r.settings.AllowMidGameJoin {
		return nil, refuse(ErrGameInProgress)
	}
	if len(r.g.Players) >= r.settings.SeatCount {
		return nil, refuse(ErrRoomFull)
	}

	sub := r.subscribe(s.ID, true)
	p := &models.Player{ID: s.ID, Name: s.Name}
	if !r.g.AddPlayer(p) {
		r.unsubscribe(sub)
		return nil, refuse(ErrRoomFull)
	}
	r.seedBots()
	return sub, nil
}

// seedBots seats the requested bots once the first human has sat down, so
// the human holds the admin seat and bots do not play to an empty room.
func (r *Room) seedBots() {
	if r.botsAdded {
		return
	}
	r.botsAdded = true
	for i, b := range r.settings.Bots {
		p := &models.Player{
			ID:            uuid.New(),
			Name:          fmt.Sprintf("Bot %d (%s)", i+1, b.Difficulty),
			IsBot:         true,
			BotDifficulty: b.Difficulty,
			AutoReady:     true,
		}
		if !r.g.AddPlayer(p) {
			r.log.Warnf("no seat for bot %d", i+1)
			return
		}
	}
}

// Subscribe attaches a spectator who is not seated. Spectators see public
// state only.
func (r *Room) Subscribe(ctx context.Context, viewerID uuid.UUID) (*Subscription, error) {
	var sub *Subscription
	err := r.call(ctx, func() {
		sub = r.subscribe(viewerID, r.g.GetPlayer(viewerID) != nil)
		if sub.Seated {
			r.g.SyncPlayer(viewerID)
		} else {
			r.syncSpectator(sub)
		}
	})
	return sub, err
}

func (r *Room) subscribe(playerID uuid.UUID, seated bool) *Subscription {
	sub := newSubscription(playerID, seated)
	r.subs[sub.ID] = sub
	return sub
}

func (r *Room) unsubscribe(sub *Subscription) {
	if _, ok := r.subs[sub.ID]; ok {
		delete(r.subs, sub.ID)
		sub.close()
	}
}

// Submit queues an intent from playerID. Rejected intents are dropped by the
// engine; only a closed room is reported.
func (r *Room) Submit(playerID uuid.UUID, action models.GameAction) error {
	if !r.post(func() { r.g.HandlePlayerAction(playerID, action) }) {
		return ErrRoomClosed
	}
	return nil
}

// Disconnect detaches sub. When it was the player's last connection they are
// marked absent and the reconnect grace period starts.
func (r *Room) Disconnect(sub *Subscription) {
	r.post(func() {
		r.unsubscribe(sub)
		if !sub.Seated {
			return
		}
		for _, other := range r.subs {
			if other.PlayerID == sub.PlayerID {
				return
			}
		}
		r.g.HandleDisconnect(sub.PlayerID)
	})
}

// Leave removes playerID from the table for good.
func (r *Room) Leave(ctx context.Context, playerID uuid.UUID) error {
	return r.call(ctx, func() {
		r.g.RemovePlayer(playerID, "left")
	})
}

// Close shuts the room down.
func (r *Room) Close() {
	r.post(func() { r.shutdown("closed") })
}

func (r *Room) shutdown(reason string) {
	r.once.Do(func() {
		r.log.Infof("room shutting down: %s", reason)
		r.g.Shutdown()
		if r.idleTimer != nil {
			r.idleTimer.Stop()
		}
		for _, sub := range r.subs {
			sub.close()
		}
		r.subs = map[uuid.UUID]*Subscription{}
		close(r.done)
		if r.OnClose != nil {
			r.OnClose(r.ID)
		}
	})
}

// armIdle starts the idle countdown when no human is seated and stops it when
// one is.
func (r *Room) armIdle() {
	if r.g.HumanCount() > 0 {
		if r.idleTimer != nil {
			r.idleTimer.Stop()
			r.idleTimer = nil
		}
		return
	}
	if r.idleTimer != nil {
		return
	}
	r.idleTimer = time.AfterFunc(r.opts.IdleTimeout, func() {
		r.post(func() {
			r.idleTimer = nil
			if r.g.HumanCount() == 0 {
				r.shutdown("idle")
			}
		})
	})
}

// refresh runs after every inbox item: spectators get the new state, the
// listing snapshot is updated and the idle timer re-evaluated.
func (r *Room) refresh() {
	for _, sub := range r.subs {
		if !sub.Seated {
			r.syncSpectator(sub)
		}
	}
	r.mu.Lock()
	r.summary = models.RoomSummary{
		ID:          r.ID,
		Name:        r.settings.Name,
		Private:     r.settings.Private,
		HasPasscode: r.passcodeHash != "",
		SeatCount:   r.settings.SeatCount,
		Occupied:    len(r.g.Players),
		Phase:       string(r.g.Phase),
		MidGameJoin: r.settings.AllowMidGameJoin,
	}
	r.mu.Unlock()
	select {
	case <-r.done:
	default:
		r.armIdle()
	}
}

func (r *Room) syncSpectator(sub *Subscription) {
	state := r.g.GetCurrentObfuscatedGameState(sub.PlayerID)
	sub.send(game.EncodeEvent(game.GameEvent{Type: game.EventPrivateSyncState, State: &state}), r.log)
}

func (r *Room) broadcast(ev game.GameEvent) {
	data := game.EncodeEvent(ev)
	for _, sub := range r.subs {
		sub.send(data, r.log)
	}
}

func (r *Room) sendTo(playerID uuid.UUID, ev game.GameEvent) {
	var data []byte
	for _, sub := range r.subs {
		if sub.PlayerID != playerID || !sub.Seated {
			continue
		}
		if data == nil {
			data = game.EncodeEvent(ev)
		}
		sub.send(data, r.log)
	}
}

func (r *Room) onPlayerRemoved(playerID uuid.UUID, reason string) {
	data := game.EncodeEvent(game.GameEvent{
		Type:    EventRemoved,
		User:    &game.EventUser{ID: playerID},
		Payload: map[string]interface{}{"reason": reason},
	})
	for _, sub := range r.subs {
		if sub.PlayerID == playerID && sub.Seated {
			sub.send(data, r.log)
			r.unsubscribe(sub)
		}
	}
}
