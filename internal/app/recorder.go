package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/interviewly/relay/internal/domain"
	"github.com/interviewly/relay/internal/store"
)

// Recorder forwards call metadata to the record store off the real-time
// path. Enqueue never blocks: when the queue is full the update is
// dropped and logged. A nil *Recorder is a valid no-op, so the
// dispatcher can run without persistence wired in.
type Recorder struct {
	store store.CallStore
	queue chan func(context.Context)
}

func NewRecorder(st store.CallStore, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Recorder{
		store: st,
		queue: make(chan func(context.Context), queueSize),
	}
}

// Run drains the queue until ctx is canceled.
func (r *Recorder) Run(ctx context.Context) {
	if r == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-r.queue:
			op(ctx)
		}
	}
}

func (r *Recorder) enqueue(what string, op func(context.Context)) {
	if r == nil {
		return
	}
	select {
	case r.queue <- op:
	default:
		log.Warn().Str("module", "app.recorder").Str("op", what).Msg("record queue full, update dropped")
	}
}

func (r *Recorder) CallCreated(roomID domain.RoomID, host domain.ConnID, at time.Time) {
	r.enqueue("create", func(ctx context.Context) {
		err := r.store.CreateCall(ctx, store.Call{
			RoomID: roomID,
			HostID: host,
			Status: domain.StatusWaiting,
			Participants: []store.Participant{
				{UserID: host, Role: domain.RoleCreator, JoinedAt: at},
			},
			CreatedAt: at,
		})
		if err != nil {
			log.Warn().Err(err).Str("module", "app.recorder").Str("room", string(roomID)).Msg("create record")
		}
	})
}

func (r *Recorder) ParticipantJoined(roomID domain.RoomID, user domain.ConnID, at time.Time) {
	r.enqueue("join", func(ctx context.Context) {
		_ = r.store.AppendParticipant(ctx, roomID, store.Participant{
			UserID:   user,
			Role:     domain.RoleJoiner,
			JoinedAt: at,
		})
		_ = r.store.SetStatus(ctx, roomID, domain.StatusActive)
	})
}

func (r *Recorder) QualitySampled(roomID domain.RoomID, user domain.ConnID, metrics json.RawMessage, at time.Time) {
	r.enqueue("quality", func(ctx context.Context) {
		_ = r.store.RecordQuality(ctx, roomID, store.QualitySample{
			UserID:     user,
			Metrics:    metrics,
			ReportedAt: at,
		})
	})
}

func (r *Recorder) CallEnded(roomID domain.RoomID, at time.Time) {
	r.enqueue("end", func(ctx context.Context) {
		_ = r.store.EndCall(ctx, roomID, at)
	})
}
