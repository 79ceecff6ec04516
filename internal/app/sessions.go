package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/interviewly/relay/internal/core"
	"github.com/interviewly/relay/internal/domain"
)

// SessionRegistry tracks every live connection session. A session knows
// its own room id, so disconnect cleanup is O(1) per connection rather
// than a scan over all rooms.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[domain.ConnID]*core.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[domain.ConnID]*core.Session)}
}

func (r *SessionRegistry) Add(id domain.ConnID, sender core.Sender) *core.Session {
	sess := core.NewSession(id, sender)
	r.mu.Lock()
	r.sessions[id] = sess
	r.mu.Unlock()
	log.Info().Str("module", "app.sessions").Str("sid", string(id)).Msg("session registered")
	return sess
}

func (r *SessionRegistry) Get(id domain.ConnID) (*core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	return sess, ok
}

// Remove destroys the session entity and returns it, so the caller can
// run the disconnect effect exactly once even if the transport reports
// the close twice.
func (r *SessionRegistry) Remove(id domain.ConnID) (*core.Session, bool) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if ok {
		log.Info().Str("module", "app.sessions").Str("sid", string(id)).Msg("session removed")
	}
	return sess, ok
}

func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
