package store

import (
	"context"
	"sync"
	"time"

	"github.com/interviewly/relay/internal/domain"
)

// MemoryStore keeps call records in-process. Updates to unknown rooms
// are dropped silently: the recorder may still be draining events for a
// call that was already evicted.
type MemoryStore struct {
	mu    sync.RWMutex
	calls map[domain.RoomID]*Call
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{calls: make(map[domain.RoomID]*Call)}
}

func (s *MemoryStore) CreateCall(_ context.Context, call Call) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.calls[call.RoomID]; ok {
		return domain.ErrRoomExists
	}
	c := call
	s.calls[call.RoomID] = &c
	return nil
}

func (s *MemoryStore) SetStatus(_ context.Context, roomID domain.RoomID, status domain.RoomStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.calls[roomID]; ok {
		c.Status = status
	}
	return nil
}

func (s *MemoryStore) AppendParticipant(_ context.Context, roomID domain.RoomID, p Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.calls[roomID]
	if !ok {
		return nil
	}
	for _, existing := range c.Participants {
		if existing.UserID == p.UserID {
			return nil
		}
	}
	c.Participants = append(c.Participants, p)
	return nil
}

func (s *MemoryStore) RecordQuality(_ context.Context, roomID domain.RoomID, q QualitySample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.calls[roomID]; ok {
		c.Quality = &q
	}
	return nil
}

func (s *MemoryStore) EndCall(_ context.Context, roomID domain.RoomID, endedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.calls[roomID]; ok {
		c.Status = domain.StatusEnded
		c.EndedAt = &endedAt
	}
	return nil
}

func (s *MemoryStore) GetCall(_ context.Context, roomID domain.RoomID) (Call, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.calls[roomID]
	if !ok {
		return Call{}, false
	}
	out := *c
	out.Participants = append([]Participant(nil), c.Participants...)
	return out, true
}
