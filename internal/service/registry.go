package service

import (
	"context"
	"sync"
	"time"

	"github.com/sakif/profile-lookup/internal/render"
)

// DefaultSessionTTL is how long an untouched page session is kept.
const DefaultSessionTTL = 30 * time.Minute

// sweepEvery is how many lookups pass between idle-session sweeps.
const sweepEvery = 1000

// Session is one open page: its controller and the state it draws on.
type Session struct {
	Controller *Controller
	State      *render.State

	lastSeen time.Time
}

// Input records raw as the input's text and re-validates it.
func (s *Session) Input(raw string) render.Status {
	s.State.SetInput(raw)
	return s.Controller.Input(raw)
}

// Lookup sets the input to raw and submits it, like typing a handle and
// pressing the button.
func (s *Session) Lookup(ctx context.Context, raw string) Result {
	s.Input(raw)
	return s.Controller.Submit(ctx)
}

// Registry maps session IDs to Sessions, creating them on first use.
// Sessions idle for longer than the TTL are evicted opportunistically.
//
// This type is safe for concurrent use.
type Registry struct {
	deps Deps
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	lookups  uint64
}

// NewRegistry creates a Registry whose controllers share deps.
func NewRegistry(deps Deps, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Registry{
		deps:     deps,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id, creating it if absent.
func (r *Registry) Get(id string) *Session {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Sweep before touching the requested session so a stale entry can
	// still be evicted when it is the one being asked for.
	r.lookups++
	if r.lookups >= sweepEvery {
		r.sweepLocked(now)
		r.lookups = 0
	}

	if s, ok := r.sessions[id]; ok {
		s.lastSeen = now
		return s
	}

	state := render.NewState()
	s := &Session{
		Controller: NewController(r.deps, state),
		State:      state,
		lastSeen:   now,
	}
	r.sessions[id] = s
	return s
}

// LookupOnce runs a single lookup of raw on a throwaway page that no
// session owns. It shares the cache and fetcher with every session.
func (r *Registry) LookupOnce(ctx context.Context, raw string) Result {
	state := render.NewState()
	ctrl := NewController(r.deps, state)
	defer ctrl.Close()

	ctrl.Input(raw)
	return ctrl.Submit(ctx)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed. Sessions with a lookup in flight are kept.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(r.now())
}

func (r *Registry) sweepLocked(now time.Time) int {
	removed := 0
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) < r.ttl || s.Controller.Busy() {
			continue
		}
		s.Controller.Close()
		delete(r.sessions, id)
		removed++
	}
	return removed
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops every session's banner timer.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		s.Controller.Close()
	}
}
