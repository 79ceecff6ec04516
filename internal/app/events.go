package app

import (
	"encoding/json"
	"time"

	"github.com/interviewly/relay/internal/domain"
)

// Ack is the typed result handed back to the originating session for
// every inbound event. The transport serializes it onto the connection;
// tests consume it directly.
type Ack struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func ackOK(data map[string]any) Ack {
	return Ack{Success: true, Data: data}
}

func ackErr(err error) Ack {
	return Ack{Success: false, Error: domain.ErrorCode(err)}
}

// RelayKind distinguishes the three peer-to-peer handshake events. The
// payload stays an opaque blob owned by the endpoints.
type RelayKind string

const (
	RelayOffer     RelayKind = "offer"
	RelayAnswer    RelayKind = "answer"
	RelayCandidate RelayKind = "ice-candidate"
)

// payloadField names the key the relayed blob travels under, matching
// what the browser side expects for each event.
func (k RelayKind) payloadField() string {
	switch k {
	case RelayOffer:
		return "offer"
	case RelayAnswer:
		return "answer"
	default:
		return "candidate"
	}
}

// Reasons carried by room-ended notifications.
const (
	ReasonCreatorDeparted = "creator departed"
	ReasonInactivity      = "inactivity timeout"
)

type candidateJoined struct {
	Type        string        `json:"type"`
	CandidateID domain.ConnID `json:"candidateId"`
	Timestamp   time.Time     `json:"timestamp"`
}

// participantGone covers both participant-left and
// participant-disconnected; only the type differs.
type participantGone struct {
	Type      string        `json:"type"`
	UserID    domain.ConnID `json:"userId"`
	Timestamp time.Time     `json:"timestamp"`
}

type roomEnded struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type qualityUpdate struct {
	Type    string          `json:"type"`
	UserID  domain.ConnID   `json:"userId"`
	Metrics json.RawMessage `json:"metrics"`
}
