package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/interviewly/relay/internal/domain"
)

// Registry owns the roomID -> Room table. It is the only place rooms
// are created or removed; everyone else holds non-owning room ids and
// resolves them here before mutating anything. The abstraction exists
// so a distributed implementation can replace the in-memory one without
// touching the dispatcher.
type Registry interface {
	// Create inserts a new room atomically: no caller ever observes a
	// partially-constructed room. Fails with domain.ErrRoomExists on a
	// duplicate id.
	Create(id domain.RoomID, creator domain.ConnID, now time.Time) (*domain.Room, error)
	Get(id domain.RoomID) (*domain.Room, bool)
	// Remove deletes the room. Idempotent, no-op when absent.
	Remove(id domain.RoomID)
	// Rooms returns a snapshot of all live rooms, for the reaper sweep.
	Rooms() []*domain.Room
}

type MemoryRegistry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*domain.Room
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{rooms: make(map[domain.RoomID]*domain.Room)}
}

func (r *MemoryRegistry) Create(id domain.RoomID, creator domain.ConnID, now time.Time) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; ok {
		return nil, domain.ErrRoomExists
	}
	room := domain.NewRoom(id, creator, now)
	r.rooms[id] = room
	log.Info().Str("module", "app.registry").Str("room", string(id)).Str("creator", string(creator)).Msg("room created")
	return room, nil
}

func (r *MemoryRegistry) Get(id domain.RoomID) (*domain.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	return room, ok
}

func (r *MemoryRegistry) Remove(id domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; !ok {
		return
	}
	delete(r.rooms, id)
	log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room removed")
}

func (r *MemoryRegistry) Rooms() []*domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	return out
}
