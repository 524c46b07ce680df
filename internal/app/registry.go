package app

import (
	"sync"
	"time"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"
)

// Session kinds tracked by the registry. Scope uniqueness is enforced per
// kind, so one quiz and one mini-game may coexist in the same channel.
const (
	KindQuiz     = "quiz"
	KindMiniGame = "minigame"
)

// Session is the minimal view the registry needs of a live session. The
// identity methods are immutable after construction so they are safe to call
// without holding the owning engine's lock.
type Session interface {
	ID() string
	Scope() domain.Scope
	Kind() string
	Expired(now time.Time) bool
}

// Registry is the shared index of all live sessions, keyed by id and by
// kind-qualified scope. The existence check and the insert happen under one
// lock so two concurrent starts cannot race into the same scope.
type Registry struct {
	mu      sync.Mutex
	byID    map[string]Session
	byScope map[string]Session
}

func NewRegistry() *Registry {
	return &Registry{
		byID:    make(map[string]Session),
		byScope: make(map[string]Session),
	}
}

// Register indexes the session. It returns false without mutating anything
// when the session's scope already holds a session of the same kind.
func (r *Registry) Register(s Session) bool {
	key := scopeIndexKey(s.Kind(), s.Scope())

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byScope[key]; exists {
		return false
	}
	r.byScope[key] = s
	r.byID[s.ID()] = s
	return true
}

// LookupScope returns the live session of the given kind in scope, if any.
func (r *Registry) LookupScope(kind string, scope domain.Scope) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byScope[scopeIndexKey(kind, scope)]
	return s, ok
}

// LookupID returns the live session with the given id, if any.
func (r *Registry) LookupID(id string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	return s, ok
}

// Remove drops the session from both indexes. Removing an unknown id is a
// no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)
	delete(r.byScope, scopeIndexKey(s.Kind(), s.Scope()))
}

// Cleanup sweeps expired sessions out of the registry and returns how many
// were removed. This is a resource-leak guard; termination accounting stays
// with the owning engine.
func (r *Registry) Cleanup(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.byID {
		if s.Expired(now) {
			delete(r.byID, id)
			delete(r.byScope, scopeIndexKey(s.Kind(), s.Scope()))
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func scopeIndexKey(kind string, scope domain.Scope) string {
	return kind + "/" + scope.Key()
}
