package room

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/swick/internal/models"
)

// Store keeps the live rooms of this process in memory.
type Store struct {
	ctx  context.Context
	opts Options

	mu    sync.Mutex
	rooms map[uuid.UUID]*Room
}

// NewStore returns an empty store. Rooms it creates run until ctx ends or
// they go idle.
func NewStore(ctx context.Context, opts Options) *Store {
	return &Store{
		ctx:   ctx,
		opts:  opts,
		rooms: make(map[uuid.UUID]*Room),
	}
}

// Create builds a room, registers it and starts its goroutine. The room
// removes itself from the store when it shuts down.
func (s *Store) Create(settings Settings) (*Room, error) {
	r, err := New(settings, s.opts)
	if err != nil {
		return nil, err
	}
	r.OnClose = s.Delete
	s.mu.Lock()
	s.rooms[r.ID] = r
	s.mu.Unlock()
	go r.Run(s.ctx)
	return r, nil
}

// Delete forgets a room without stopping it.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// Get retrieves a room if it exists.
func (s *Store) Get(id uuid.UUID) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}

// ListPublic returns the listing entries of every public room, oldest first.
func (s *Store) ListPublic() []models.RoomSummary {
	s.mu.Lock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.Unlock()

	out := make([]models.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		if sum := r.Summary(); !sum.Private {
			out = append(out, sum)
		}
	}
	// V7 IDs sort by creation time.
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// Len reports how many rooms are live.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}
