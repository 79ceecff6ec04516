package app

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/interviewly/relay/internal/core"
	"github.com/interviewly/relay/internal/domain"
)

var errNoSession = errors.New("no session for connection")

// Dispatcher routes inbound signaling events to the room registry and
// emits outbound notifications to the right sessions. Each inbound
// event returns a typed Ack for the originating connection; failures
// are reported there and never corrupt other rooms.
//
// The transport serializes events per connection (one reader
// goroutine), so the dispatcher only has to linearize per room, which
// the room's own lock provides.
type Dispatcher struct {
	Registry Registry
	Sessions *SessionRegistry
	Recorder *Recorder

	// Clock is injectable for tests.
	Clock func() time.Time
}

func NewDispatcher(reg Registry, rec *Recorder) *Dispatcher {
	return &Dispatcher{
		Registry: reg,
		Sessions: NewSessionRegistry(),
		Recorder: rec,
		Clock:    time.Now,
	}
}

func (d *Dispatcher) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}

// Connect registers a freshly opened channel.
func (d *Dispatcher) Connect(sid domain.ConnID, sender core.Sender) *core.Session {
	return d.Sessions.Add(sid, sender)
}

// CreateRoom instantiates a room owned by sid's session.
func (d *Dispatcher) CreateRoom(sid domain.ConnID, roomID domain.RoomID) Ack {
	sess, ok := d.Sessions.Get(sid)
	if !ok {
		return ackErr(errNoSession)
	}
	if _, _, bound := sess.Room(); bound {
		return ackErr(domain.ErrAlreadyBound)
	}

	now := d.now()
	if _, err := d.Registry.Create(roomID, sid, now); err != nil {
		log.Warn().Str("module", "app.dispatch").Str("sid", string(sid)).Str("room", string(roomID)).Msg("duplicate room id")
		return ackErr(err)
	}
	if err := sess.Bind(roomID, domain.RoleCreator); err != nil {
		d.Registry.Remove(roomID)
		return ackErr(err)
	}

	d.Recorder.CallCreated(roomID, sid, now)
	log.Info().Str("module", "app.dispatch").Str("sid", string(sid)).Str("room", string(roomID)).Msg("room created")
	return ackOK(map[string]any{"roomId": string(roomID)})
}

// JoinRoom admits sid as the second participant and notifies the
// creator directly; at join time the creator is the only other occupant
// so a room-wide broadcast would just echo back to the joiner.
func (d *Dispatcher) JoinRoom(sid domain.ConnID, roomID domain.RoomID) Ack {
	sess, ok := d.Sessions.Get(sid)
	if !ok {
		return ackErr(errNoSession)
	}
	if _, _, bound := sess.Room(); bound {
		return ackErr(domain.ErrAlreadyBound)
	}

	room, ok := d.Registry.Get(roomID)
	if !ok {
		return ackErr(domain.ErrRoomNotFound)
	}
	now := d.now()
	if err := room.Join(sid, now); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatch").Str("sid", string(sid)).Str("room", string(roomID)).Msg("join rejected")
		return ackErr(err)
	}
	if err := sess.Bind(roomID, domain.RoleJoiner); err != nil {
		return ackErr(err)
	}

	if creator, ok := room.Other(sid); ok {
		d.push(creator, candidateJoined{
			Type:        "candidate-joined",
			CandidateID: sid,
			Timestamp:   now,
		})
	}

	d.Recorder.ParticipantJoined(roomID, sid, now)
	log.Info().Str("module", "app.dispatch").Str("sid", string(sid)).Str("room", string(roomID)).Msg("joined room")
	return ackOK(map[string]any{"roomId": string(roomID)})
}

// Relay forwards an offer, answer or connectivity candidate verbatim to
// the other occupant, tagged with the sender identity and a timestamp.
// The ack is issued regardless of delivery: relay is at-most-once, a
// dead recipient drops the event without rolling anything back.
func (d *Dispatcher) Relay(sid domain.ConnID, kind RelayKind, roomID domain.RoomID, payload json.RawMessage) Ack {
	sess, ok := d.Sessions.Get(sid)
	if !ok {
		return ackErr(errNoSession)
	}
	rid, _, bound := sess.Room()
	if !bound || rid != roomID {
		return ackErr(domain.ErrNotBound)
	}
	room, ok := d.Registry.Get(roomID)
	if !ok {
		// Lost a race with deletion.
		return ackErr(domain.ErrRoomNotFound)
	}

	now := d.now()
	room.Touch(now)
	if other, ok := room.Other(sid); ok {
		d.push(other, map[string]any{
			"type":              string(kind),
			kind.payloadField(): payload,
			"from":              sid,
			"timestamp":         now,
		})
	}
	return ackOK(nil)
}

// Quality broadcasts connection telemetry to every occupant, sender
// included: both ends display their own metrics too.
func (d *Dispatcher) Quality(sid domain.ConnID, roomID domain.RoomID, metrics json.RawMessage) Ack {
	sess, ok := d.Sessions.Get(sid)
	if !ok {
		return ackErr(errNoSession)
	}
	rid, _, bound := sess.Room()
	if !bound || rid != roomID {
		return ackErr(domain.ErrNotBound)
	}
	room, ok := d.Registry.Get(roomID)
	if !ok {
		return ackErr(domain.ErrRoomNotFound)
	}

	now := d.now()
	room.Touch(now)
	update := qualityUpdate{Type: "quality-update", UserID: sid, Metrics: metrics}
	for _, occ := range room.Occupants() {
		d.push(occ, update)
	}

	d.Recorder.QualitySampled(roomID, sid, metrics, now)
	return ackOK(nil)
}

// Leave unbinds sid from its room. Idempotent: leaving while unbound,
// or naming a room the session is not in, succeeds without effect.
func (d *Dispatcher) Leave(sid domain.ConnID, roomID domain.RoomID) Ack {
	sess, ok := d.Sessions.Get(sid)
	if !ok {
		return ackOK(nil)
	}
	rid, _, bound := sess.Room()
	if !bound || (roomID != "" && rid != roomID) {
		return ackOK(nil)
	}
	d.detach(sess, "participant-left")
	return ackOK(nil)
}

// Disconnect runs the leave effect for the room the session was bound
// to and destroys the session. Safe to call more than once per
// connection; only the first call has any effect.
func (d *Dispatcher) Disconnect(sid domain.ConnID) {
	sess, ok := d.Sessions.Remove(sid)
	if !ok {
		return
	}
	if _, _, bound := sess.Room(); bound {
		d.detach(sess, "participant-disconnected")
	}
	log.Info().Str("module", "app.dispatch").Str("sid", string(sid)).Msg("disconnected")
}

// ExpireRoom evicts a room on behalf of the reaper, notifying any
// occupants still bound before their bindings are disposed.
func (d *Dispatcher) ExpireRoom(roomID domain.RoomID, reason string) bool {
	room, ok := d.Registry.Get(roomID)
	if !ok {
		return false
	}
	ended := roomEnded{Type: "room-ended", Reason: reason}
	for _, occ := range room.Occupants() {
		d.push(occ, ended)
		if sess, ok := d.Sessions.Get(occ); ok {
			sess.Unbind()
		}
	}
	d.Registry.Remove(roomID)
	d.Recorder.CallEnded(roomID, d.now())
	log.Info().Str("module", "app.dispatch").Str("room", string(roomID)).Str("reason", reason).Msg("room expired")
	return true
}

// detach vacates the leaver's slot and settles the room. The remaining
// occupant (if any) is told who left. A creator departure marks the
// room ended but keeps it registered until the joiner is gone, so a
// late join attempt sees Ended rather than NotFound. A joiner departure
// leaves the creator alone in a dead room (slots are one-shot), so the
// room is dissolved on the spot and the creator's session unbound.
func (d *Dispatcher) detach(sess *core.Session, goneType string) {
	rid, _, bound := sess.Room()
	sess.Unbind()
	if !bound {
		return
	}
	room, ok := d.Registry.Get(rid)
	if !ok {
		return
	}

	now := d.now()
	res := room.Leave(sess.ID, now)
	if !res.Removed {
		return
	}

	if res.HasPeer {
		d.push(res.Remaining, participantGone{Type: goneType, UserID: sess.ID, Timestamp: now})
		if res.EndedByHost {
			d.push(res.Remaining, roomEnded{Type: "room-ended", Reason: ReasonCreatorDeparted})
		} else {
			if remaining, ok := d.Sessions.Get(res.Remaining); ok {
				remaining.Unbind()
			}
			d.Registry.Remove(rid)
		}
	} else {
		d.Registry.Remove(rid)
	}
	d.Recorder.CallEnded(rid, now)
	log.Info().Str("module", "app.dispatch").Str("sid", string(sess.ID)).Str("room", string(rid)).Bool("empty", res.Empty).Msg("left room")
}

// push delivers one outbound event to a session, best-effort. A full
// send queue or a vanished session drops the event; the sender's ack
// was already issued and is not rolled back.
func (d *Dispatcher) push(sid domain.ConnID, v any) {
	sess, ok := d.Sessions.Get(sid)
	if !ok {
		log.Debug().Str("module", "app.dispatch").Str("sid", string(sid)).Msg("push target gone")
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatch").Msg("marshal outbound event")
		return
	}
	if err := sess.Sender().TrySend(core.Frame(b)); err != nil {
		log.Warn().Err(err).Str("module", "app.dispatch").Str("sid", string(sid)).Msg("outbound event dropped")
	}
}
