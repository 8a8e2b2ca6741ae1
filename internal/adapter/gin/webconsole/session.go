package webconsole

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"user-console/internal/usecase/console"
)

// DefaultSessionTTL evicts sessions idle for longer than this.
const DefaultSessionTTL = 30 * time.Minute

// Session is one browser's console: its own Store and notification feed.
type Session struct {
	ID      string
	Store   *console.Store
	Notices *console.Notifications

	lastSeen time.Time
}

// RegistryConfig tunes session lifetime.
type RegistryConfig struct {
	SessionTTL      time.Duration
	NotificationTTL time.Duration
}

// Registry keeps one Session per session cookie. Evicted sessions have their
// Store closed, which cancels any request still in flight for them.
type Registry struct {
	remote console.Remote
	cfg    RegistryConfig
	log    *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty Registry whose stores talk to remote.
func NewRegistry(remote console.Remote, cfg RegistryConfig, log *zap.Logger) *Registry {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	return &Registry{
		remote:   remote,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the live session with id and refreshes its idle timer.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	if r.now().Sub(s.lastSeen) > r.cfg.SessionTTL {
		r.evictLocked(id, "expired")
		return nil, false
	}
	s.lastSeen = r.now()
	return s, true
}

// Create starts a new session with a fresh Store.
func (r *Registry) Create() *Session {
	id := uuid.NewString()
	notices := console.NewNotifications(r.cfg.NotificationTTL)
	s := &Session{
		ID:       id,
		Notices:  notices,
		Store:    console.NewStore(r.remote, notices, r.log.With(zap.String("session_id", id))),
		lastSeen: r.now(),
	}

	r.mu.Lock()
	r.sessions[id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.log.Debug("console session created", zap.String("session_id", id), zap.Int("sessions", n))
	return s
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts every idle session and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	now := r.now()
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.cfg.SessionTTL {
			r.evictLocked(id, "expired")
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions periodically until ctx is done, then closes all
// remaining sessions.
func (r *Registry) Run(ctx context.Context) {
	interval := r.cfg.SessionTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.log.Info("evicted idle console sessions", zap.Int("count", n))
			}
		}
	}
}

// Close evicts every session.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.sessions {
		r.evictLocked(id, "shutdown")
	}
}

func (r *Registry) evictLocked(id, reason string) {
	s := r.sessions[id]
	delete(r.sessions, id)
	s.Store.Close()
	r.log.Debug("console session closed", zap.String("session_id", id), zap.String("reason", reason))
}
