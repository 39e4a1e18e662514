package websocket

import (
	"iter"
	"log/slog"
	"sync"
)

// Registry tracks every live session and the role each one declared.
// The session set and the role table share one lock so removing a session
// drops both entries in a single step.
type Registry struct {
	sessions map[string]Session // key: session ID
	roles    map[string]string  // key: session ID, value: declared role
	mu       sync.RWMutex       // guards sessions and roles together
	logger   *slog.Logger
}

// constructor for Registry
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sessions: make(map[string]Session),
		roles:    make(map[string]string),
		logger:   logger,
	}
}

// Register adds s to the live set. Registering twice is a no-op.
func (r *Registry) Register(s Session) {
	id := s.ID()

	r.mu.Lock()
	_, exists := r.sessions[id]
	r.sessions[id] = s
	total := len(r.sessions)
	r.mu.Unlock()

	if exists {
		return
	}
	r.logger.Info("client_added",
		"client_id", id,
		"remote_addr", s.RemoteAddr(),
		"total_sessions", total,
	)
}

// Unregister removes s and its role entry. Unknown sessions are ignored.
func (r *Registry) Unregister(s Session) {
	id := s.ID()

	r.mu.Lock()
	_, exists := r.sessions[id]
	delete(r.sessions, id)
	delete(r.roles, id)
	total := len(r.sessions)
	r.mu.Unlock()

	if !exists {
		return
	}
	r.logger.Info("client_removed",
		"client_id", id,
		"total_sessions", total,
	)
}

// SetRole records role for the session with the given id, replacing any
// earlier declaration. A session that is no longer registered (its close
// raced the declaration) is left without a role and false is returned.
func (r *Registry) SetRole(id, role string) bool {
	r.mu.Lock()
	_, registered := r.sessions[id]
	var previous string
	var hadRole bool
	if registered {
		previous, hadRole = r.roles[id]
		r.roles[id] = role
	}
	r.mu.Unlock()

	if !registered {
		r.logger.Debug("role_for_unknown_session", "client_id", id, "role", role)
		return false
	}
	r.logger.Info("client_role_declared",
		"client_id", id,
		"role", role,
		"previous_role", previous,
		"redeclared", hadRole,
	)
	return true
}

// RoleOf returns the declared role of id, or false when the session is not
// registered or has not declared one yet.
func (r *Registry) RoleOf(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.sessions[id]; !ok {
		return "", false
	}
	role, ok := r.roles[id]
	return role, ok
}

// Contains reports whether id is currently registered.
func (r *Registry) Contains(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[id]
	return ok
}

// AllSessions returns the sessions registered at call time. The snapshot is
// taken immediately; iterating it later never observes sessions added or
// removed afterwards. Call again for a fresh snapshot.
func (r *Registry) AllSessions() iter.Seq[Session] {
	snapshot := r.snapshot()
	return func(yield func(Session) bool) {
		for _, s := range snapshot {
			if !yield(s) {
				return
			}
		}
	}
}

// Count returns the number of registered sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll closes every registered session. Cleanup happens through the
// normal close path of each session's transport.
func (r *Registry) CloseAll() {
	for _, s := range r.snapshot() {
		if err := s.Close(); err != nil {
			r.logger.Warn("client_close_failed",
				"client_id", s.ID(),
				"error", err.Error(),
			)
			continue
		}
		r.logger.Info("client_connection_closed", "client_id", s.ID())
	}
}

func (r *Registry) snapshot() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessions := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}
