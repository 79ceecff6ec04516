// Package domain contains the signaling entities and their invariants.
package domain

import (
	"sync"
	"time"
)

type (
	// ConnID identifies one physical signaling channel. Assigned at
	// connect time, never reused while the connection is alive.
	ConnID string

	// RoomID is the caller-supplied room identifier. Collisions are an
	// error, not auto-renamed.
	RoomID string
)

type RoomStatus string

const (
	StatusWaiting RoomStatus = "waiting"
	StatusActive  RoomStatus = "active"
	StatusEnded   RoomStatus = "ended"
)

type Role string

const (
	RoleCreator Role = "creator"
	RoleJoiner  Role = "joiner"
)

// Room is the per-session state machine binding exactly two
// participants. All mutable fields are guarded by the room's own lock,
// so operations on the same room are linearized while different rooms
// proceed fully in parallel.
type Room struct {
	ID        RoomID
	CreatedAt time.Time

	mu             sync.Mutex
	creatorID      ConnID
	peerID         ConnID
	creatorPresent bool
	peerPresent    bool
	status         RoomStatus
	lastActivityAt time.Time
}

// RoomSnapshot is an immutable copy of a room's state.
type RoomSnapshot struct {
	ID             RoomID     `json:"roomId"`
	Status         RoomStatus `json:"status"`
	CreatorID      ConnID     `json:"creatorId"`
	PeerID         ConnID     `json:"peerId,omitempty"`
	Occupants      int        `json:"participants"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastActivityAt time.Time  `json:"lastActivity"`
}

// LeaveResult describes what a departure did to the room.
type LeaveResult struct {
	Removed     bool   // the leaver actually held a slot
	Empty       bool   // no occupants remain
	EndedByHost bool   // the creator left while the peer was still in
	Remaining   ConnID // the occupant still present, if any
	HasPeer     bool
}

func NewRoom(id RoomID, creator ConnID, now time.Time) *Room {
	return &Room{
		ID:             id,
		CreatedAt:      now,
		creatorID:      creator,
		creatorPresent: true,
		status:         StatusWaiting,
		lastActivityAt: now,
	}
}

// Join admits the second participant. At most two distinct connection
// identities ever hold a slot: once the peer slot was taken the room is
// full for everyone else, and an ended room is never rejoined.
func (r *Room) Join(peer ConnID, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusEnded {
		return ErrRoomEnded
	}
	if r.peerID != "" {
		return ErrRoomFull
	}
	r.peerID = peer
	r.peerPresent = true
	r.status = StatusActive
	r.lastActivityAt = now
	return nil
}

// Touch records relay activity for the inactivity reaper.
func (r *Room) Touch(now time.Time) {
	r.mu.Lock()
	r.lastActivityAt = now
	r.mu.Unlock()
}

// Leave vacates the slot held by id. When the creator departs while the
// peer is still present the room transitions to ended and stays in the
// registry until its last occupant is gone.
func (r *Room) Leave(id ConnID, now time.Time) LeaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res LeaveResult
	switch {
	case id == r.creatorID && r.creatorPresent:
		r.creatorPresent = false
		res.Removed = true
	case id == r.peerID && r.peerPresent:
		r.peerPresent = false
		res.Removed = true
	default:
		return res
	}

	r.lastActivityAt = now
	res.Empty = !r.creatorPresent && !r.peerPresent
	if res.Empty {
		r.status = StatusEnded
		return res
	}

	if r.creatorPresent {
		res.Remaining, res.HasPeer = r.creatorID, true
	} else {
		res.Remaining, res.HasPeer = r.peerID, true
	}
	// Both slots are one-shot, so a half-vacated room can never become
	// active again; it is ended either way, the flag only controls the
	// "creator departed" notification.
	r.status = StatusEnded
	res.EndedByHost = id == r.creatorID
	return res
}

// Other returns the present occupant that is not id.
func (r *Room) Other(id ConnID) (ConnID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.creatorPresent && r.creatorID != id {
		return r.creatorID, true
	}
	if r.peerPresent && r.peerID != id {
		return r.peerID, true
	}
	return "", false
}

// Occupants lists every connection currently holding a slot.
func (r *Room) Occupants() []ConnID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ConnID, 0, 2)
	if r.creatorPresent {
		out = append(out, r.creatorID)
	}
	if r.peerPresent {
		out = append(out, r.peerID)
	}
	return out
}

func (r *Room) Status() RoomStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Room) LastActivity() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActivityAt
}

func (r *Room) CreatorID() ConnID {
	return r.creatorID // immutable once set
}

func (r *Room) Snapshot() RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	if r.creatorPresent {
		n++
	}
	if r.peerPresent {
		n++
	}
	return RoomSnapshot{
		ID:             r.ID,
		Status:         r.status,
		CreatorID:      r.creatorID,
		PeerID:         r.peerID,
		Occupants:      n,
		CreatedAt:      r.CreatedAt,
		LastActivityAt: r.lastActivityAt,
	}
}
