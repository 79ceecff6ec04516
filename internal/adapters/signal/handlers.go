package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/interviewly/relay/internal/app"
	"github.com/interviewly/relay/internal/domain"
)

// Client events carry a type, the room id, and an event-specific opaque
// blob. The relay never inspects payload or metrics contents.
type envelope struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"roomId"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Metrics json.RawMessage `json:"metrics,omitempty"`
}

// ackFrame is the wire form of the dispatcher's typed Ack, tagged with
// the event it answers.
type ackFrame struct {
	Type    string         `json:"type"`
	Event   string         `json:"event"`
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func (ctl *SignalWSController) sendAck(c *WsSignalConn, event string, ack app.Ack) {
	ctl.sendJSON(c, ackFrame{
		Type:    "ack",
		Event:   event,
		Success: ack.Success,
		Data:    ack.Data,
		Error:   ack.Error,
	})
}

func (ctl *SignalWSController) handleFrame(sid domain.ConnID, c *WsSignalConn, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		ctl.sendJSON(c, map[string]any{"type": "error", "error": "bad_payload"})
		return
	}

	roomID := domain.RoomID(env.RoomID)
	switch env.Type {
	case "create-room":
		if roomID == "" {
			ctl.sendAck(c, env.Type, app.Ack{Success: false, Error: "BadRequest"})
			return
		}
		if !ctl.Limiter.Allow(sid) {
			log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("create-room rate limited")
			ctl.sendAck(c, env.Type, app.Ack{Success: false, Error: "RateLimited"})
			return
		}
		ctl.sendAck(c, env.Type, ctl.Dispatch.CreateRoom(sid, roomID))

	case "join-room":
		if roomID == "" {
			ctl.sendAck(c, env.Type, app.Ack{Success: false, Error: "BadRequest"})
			return
		}
		ctl.sendAck(c, env.Type, ctl.Dispatch.JoinRoom(sid, roomID))

	case "offer", "answer", "ice-candidate":
		ctl.sendAck(c, env.Type, ctl.Dispatch.Relay(sid, app.RelayKind(env.Type), roomID, env.Payload))

	case "connection-quality":
		// Telemetry is unacknowledged on the wire; failures only matter
		// to the dispatcher's logs.
		_ = ctl.Dispatch.Quality(sid, roomID, env.Metrics)

	case "leave-room":
		ctl.sendAck(c, env.Type, ctl.Dispatch.Leave(sid, roomID))

	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}
