package signal

import (
	"sync"
	"time"

	"github.com/interviewly/relay/internal/domain"
)

// CreateLimiter caps how often one connection may attempt create-room,
// over a sliding window.
type CreateLimiter struct {
	mu       sync.Mutex
	history  map[domain.ConnID][]time.Time
	limit    int
	interval time.Duration
}

func NewCreateLimiter(limit int, interval time.Duration) *CreateLimiter {
	return &CreateLimiter{
		history:  make(map[domain.ConnID][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *CreateLimiter) Allow(sid domain.ConnID) bool {
	if rl.limit <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[sid]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[sid] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[sid] = fresh
	return true
}

// Forget drops the history for a closed connection.
func (rl *CreateLimiter) Forget(sid domain.ConnID) {
	rl.mu.Lock()
	delete(rl.history, sid)
	rl.mu.Unlock()
}
