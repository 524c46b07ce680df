package app

import (
	"testing"
	"time"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"
)

type stubSession struct {
	id      string
	scope   domain.Scope
	kind    string
	expired bool
}

func (s *stubSession) ID() string             { return s.id }
func (s *stubSession) Scope() domain.Scope    { return s.scope }
func (s *stubSession) Kind() string           { return s.kind }
func (s *stubSession) Expired(time.Time) bool { return s.expired }

func TestRegistryScopeUniquePerKind(t *testing.T) {
	r := NewRegistry()
	scope := domain.Scope{CommunityID: "c1", ChannelID: "ch1"}

	if !r.Register(&stubSession{id: "q1", scope: scope, kind: KindQuiz}) {
		t.Fatal("first quiz registration rejected")
	}
	if r.Register(&stubSession{id: "q2", scope: scope, kind: KindQuiz}) {
		t.Fatal("second quiz in same scope accepted")
	}
	if !r.Register(&stubSession{id: "g1", scope: scope, kind: KindMiniGame}) {
		t.Fatal("mini-game blocked by quiz in same scope")
	}
	if got := r.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
}

func TestRegistryLookupAndRemove(t *testing.T) {
	r := NewRegistry()
	scope := domain.Scope{CommunityID: "c1", ChannelID: "ch1"}
	s := &stubSession{id: "q1", scope: scope, kind: KindQuiz}
	r.Register(s)

	if got, ok := r.LookupID("q1"); !ok || got.ID() != "q1" {
		t.Fatalf("LookupID(q1) = %v, %v", got, ok)
	}
	if got, ok := r.LookupScope(KindQuiz, scope); !ok || got.ID() != "q1" {
		t.Fatalf("LookupScope = %v, %v", got, ok)
	}
	if _, ok := r.LookupScope(KindMiniGame, scope); ok {
		t.Fatal("LookupScope found a quiz under the mini-game kind")
	}

	r.Remove("q1")
	if _, ok := r.LookupID("q1"); ok {
		t.Fatal("session still indexed by id after Remove")
	}
	if _, ok := r.LookupScope(KindQuiz, scope); ok {
		t.Fatal("session still indexed by scope after Remove")
	}
	// unknown id is a no-op
	r.Remove("missing")
}

func TestRegistryCleanupSweepsExpired(t *testing.T) {
	r := NewRegistry()
	fresh := &stubSession{id: "a", scope: domain.Scope{CommunityID: "c", ChannelID: "1"}, kind: KindQuiz}
	stale := &stubSession{id: "b", scope: domain.Scope{CommunityID: "c", ChannelID: "2"}, kind: KindQuiz, expired: true}
	r.Register(fresh)
	r.Register(stale)

	if removed := r.Cleanup(time.Now()); removed != 1 {
		t.Fatalf("Cleanup removed %d sessions, want 1", removed)
	}
	if _, ok := r.LookupID("b"); ok {
		t.Fatal("expired session survived cleanup")
	}
	if _, ok := r.LookupID("a"); !ok {
		t.Fatal("live session removed by cleanup")
	}
	if _, ok := r.LookupScope(KindQuiz, stale.scope); ok {
		t.Fatal("expired session still indexed by scope")
	}
}
