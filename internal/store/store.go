// Package store is the boundary to the call-record collaborator. The
// signaling core never blocks on it: records flow through the async
// recorder and are best-effort relative to the real-time path.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/interviewly/relay/internal/domain"
)

type Participant struct {
	UserID   domain.ConnID `json:"userId"`
	Role     domain.Role   `json:"role"`
	JoinedAt time.Time     `json:"joinedAt"`
}

type QualitySample struct {
	UserID     domain.ConnID   `json:"userId"`
	Metrics    json.RawMessage `json:"metrics"`
	ReportedAt time.Time       `json:"reportedAt"`
}

// Call is the persistent record of one meeting room, keyed by room id.
type Call struct {
	RoomID       domain.RoomID     `json:"roomId"`
	HostID       domain.ConnID     `json:"hostId"`
	Status       domain.RoomStatus `json:"status"`
	Participants []Participant     `json:"participants"`
	Quality      *QualitySample    `json:"quality,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	EndedAt      *time.Time        `json:"endedAt,omitempty"`
}

// CallStore is consumed via opaque CRUD calls; implementations may sit
// on any backing service.
type CallStore interface {
	CreateCall(ctx context.Context, call Call) error
	SetStatus(ctx context.Context, roomID domain.RoomID, status domain.RoomStatus) error
	AppendParticipant(ctx context.Context, roomID domain.RoomID, p Participant) error
	RecordQuality(ctx context.Context, roomID domain.RoomID, q QualitySample) error
	EndCall(ctx context.Context, roomID domain.RoomID, endedAt time.Time) error
	GetCall(ctx context.Context, roomID domain.RoomID) (Call, bool)
}
