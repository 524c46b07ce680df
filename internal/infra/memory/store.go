package memory

import (
	"context"
	"sync"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"
)

// Store is an in-memory implementation of app.Store, used when no Postgres is
// configured and as the fake in engine tests.
type Store struct {
	mu         sync.Mutex
	challenges map[string]domain.Challenge
	results    []domain.SessionResult
	balances   map[string]int64
}

func NewStore() *Store {
	return &Store{
		challenges: make(map[string]domain.Challenge),
		balances:   make(map[string]int64),
	}
}

func (s *Store) SaveChallenge(_ context.Context, ch domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[ch.ID] = ch
	return nil
}

func (s *Store) GetChallenge(_ context.Context, id string) (domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[id]
	if !ok {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	return ch, nil
}

func (s *Store) LoadActiveChallenges(_ context.Context) ([]domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Challenge
	for _, ch := range s.challenges {
		if ch.Active {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (s *Store) DeactivateChallenge(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[id]
	if !ok {
		return domain.ErrChallengeNotFound
	}
	ch.Active = false
	s.challenges[id] = ch
	return nil
}

func (s *Store) SaveSessionResult(_ context.Context, res domain.SessionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, res)
	return nil
}

func (s *Store) UpsertUserCurrency(_ context.Context, userID string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] += delta
	return nil
}

// Results returns a copy of all persisted session results.
func (s *Store) Results() []domain.SessionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.SessionResult, len(s.results))
	copy(out, s.results)
	return out
}

// Balance returns a user's currency balance.
func (s *Store) Balance(userID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[userID]
}
