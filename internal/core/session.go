// Package core holds the connection session primitives shared between
// the dispatcher and the transport adapters.
package core

import (
	"sync"

	"github.com/interviewly/relay/internal/domain"
)

// Frame is one outbound signaling message, already serialized.
type Frame []byte

// Sender is the transport half of a session. TrySend must not block:
// a full outbound queue is reported as an error and the frame dropped,
// never stalling the event handler of another connection.
type Sender interface {
	TrySend(Frame) error
	Close()
}

// Session binds a connection identity to at most one room at a time.
// It holds a non-owning reference (the room id); the registry stays the
// sole source of truth for room existence.
type Session struct {
	ID domain.ConnID

	mu     sync.Mutex
	sender Sender
	roomID domain.RoomID
	role   domain.Role
}

func NewSession(id domain.ConnID, sender Sender) *Session {
	return &Session{ID: id, sender: sender}
}

func (s *Session) Sender() Sender {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sender
}

// Bind records the room this session participates in and how it got
// there. Fails if the session is already in a room.
func (s *Session) Bind(roomID domain.RoomID, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roomID != "" {
		return domain.ErrAlreadyBound
	}
	s.roomID = roomID
	s.role = role
	return nil
}

// Room reports the current binding, if any.
func (s *Session) Room() (domain.RoomID, domain.Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roomID == "" {
		return "", "", false
	}
	return s.roomID, s.role, true
}

// Unbind clears the room association. Idempotent.
func (s *Session) Unbind() {
	s.mu.Lock()
	s.roomID = ""
	s.role = ""
	s.mu.Unlock()
}
