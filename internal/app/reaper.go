package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Reaper is the best-effort sweep that bounds memory growth from
// abandoned rooms: a creator who never got a joiner, or a crashed
// client whose disconnect was lost.
type Reaper struct {
	Dispatch *Dispatcher
	Horizon  time.Duration
	Interval time.Duration

	// Clock is injectable for tests.
	Clock func() time.Time
}

func NewReaper(d *Dispatcher, horizon, interval time.Duration) *Reaper {
	return &Reaper{
		Dispatch: d,
		Horizon:  horizon,
		Interval: interval,
		Clock:    time.Now,
	}
}

// Run sweeps on the configured cadence until ctx is canceled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	log.Info().Str("module", "app.reaper").Dur("horizon", r.Horizon).Dur("interval", r.Interval).Msg("reaper started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep expires every room idle beyond the horizon and returns how many
// were removed.
func (r *Reaper) Sweep() int {
	now := r.Clock()
	reaped := 0
	for _, room := range r.Dispatch.Registry.Rooms() {
		idle := now.Sub(room.LastActivity())
		if idle <= r.Horizon {
			continue
		}
		if r.Dispatch.ExpireRoom(room.ID, ReasonInactivity) {
			log.Info().Str("module", "app.reaper").Str("room", string(room.ID)).Dur("idle", idle).Msg("reaped inactive room")
			reaped++
		}
	}
	return reaped
}
