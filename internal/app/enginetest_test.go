package app

import (
	"context"
	"errors"
	"sync"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"
)

// fakeStore implements Store with optional failure injection.
type fakeStore struct {
	mu          sync.Mutex
	challenges  map[string]domain.Challenge
	results     []domain.SessionResult
	balances    map[string]int64
	failResults bool
}

var errStoreDown = errors.New("store unavailable")

func newFakeStore() *fakeStore {
	return &fakeStore{
		challenges: make(map[string]domain.Challenge),
		balances:   make(map[string]int64),
	}
}

func (s *fakeStore) SaveChallenge(_ context.Context, ch domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[ch.ID] = ch
	return nil
}

func (s *fakeStore) GetChallenge(_ context.Context, id string) (domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[id]
	if !ok {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	return ch, nil
}

func (s *fakeStore) LoadActiveChallenges(context.Context) ([]domain.Challenge, error) {
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

func (s *fakeStore) DeactivateChallenge(_ context.Context, id string) error {
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

func (s *fakeStore) SaveSessionResult(_ context.Context, res domain.SessionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failResults {
		return errStoreDown
	}
	s.results = append(s.results, res)
	return nil
}

func (s *fakeStore) UpsertUserCurrency(_ context.Context, userID string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] += delta
	return nil
}

func (s *fakeStore) resultsOfKind(kind string) []domain.SessionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.SessionResult
	for _, res := range s.results {
		if res.Kind == kind {
			out = append(out, res)
		}
	}
	return out
}

// fakeRewards implements RewardPort and RankingPort with plain accumulation.
type fakeRewards struct {
	mu       sync.Mutex
	xp       map[string]int
	currency map[string]int
	badges   map[string][]string
	quizzes  int
	games    int
}

func newFakeRewards() *fakeRewards {
	return &fakeRewards{
		xp:       make(map[string]int),
		currency: make(map[string]int),
		badges:   make(map[string][]string),
	}
}

func (r *fakeRewards) GrantExperience(_ context.Context, userID string, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.xp[userID] += amount
	return nil
}

func (r *fakeRewards) GrantCurrency(_ context.Context, userID string, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currency[userID] += amount
	return nil
}

func (r *fakeRewards) GrantBadge(_ context.Context, userID, badgeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.badges[userID] = append(r.badges[userID], badgeID)
	return nil
}

func (r *fakeRewards) RecordQuizResult(context.Context, domain.Scope, string, int, int, int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizzes++
	return nil
}

func (r *fakeRewards) RecordMiniGameResult(context.Context, domain.Scope, string, string, int, bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games++
	return nil
}

func (r *fakeRewards) hasBadge(userID, badgeID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.badges[userID] {
		if b == badgeID {
			return true
		}
	}
	return false
}

// fakeProgressStore implements ProgressStore in memory.
type fakeProgressStore struct {
	mu      sync.Mutex
	records map[string]domain.ChallengeProgress
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{records: make(map[string]domain.ChallengeProgress)}
}

func (s *fakeProgressStore) Get(_ context.Context, userID, challengeID string) (domain.ChallengeProgress, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID+":"+challengeID]
	return rec, ok, nil
}

func (s *fakeProgressStore) Put(_ context.Context, progress domain.ChallengeProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[progress.UserID+":"+progress.ChallengeID] = progress
	return nil
}

func (s *fakeProgressStore) ListByUser(_ context.Context, userID string) ([]domain.ChallengeProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ChallengeProgress
	for _, rec := range s.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}
