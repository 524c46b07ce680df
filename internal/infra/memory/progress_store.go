package memory

import (
	"context"
	"sync"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"
)

// ProgressStore is an in-memory implementation of app.ProgressStore.
type ProgressStore struct {
	mu      sync.Mutex
	records map[string]domain.ChallengeProgress
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{records: make(map[string]domain.ChallengeProgress)}
}

func (s *ProgressStore) Get(_ context.Context, userID, challengeID string) (domain.ChallengeProgress, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[progressKey(userID, challengeID)]
	return rec, ok, nil
}

func (s *ProgressStore) Put(_ context.Context, progress domain.ChallengeProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[progressKey(progress.UserID, progress.ChallengeID)] = progress
	return nil
}

func (s *ProgressStore) ListByUser(_ context.Context, userID string) ([]domain.ChallengeProgress, error) {
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

func progressKey(userID, challengeID string) string {
	return userID + ":" + challengeID
}
