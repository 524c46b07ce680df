package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"
)

// ProgressStore is a Redis-backed implementation of app.ProgressStore. One
// JSON value per (user, challenge) key; per-user listing walks the user's key
// prefix with SCAN.
type ProgressStore struct {
	client *redis.Client
}

func NewProgressStore(client *redis.Client) *ProgressStore {
	return &ProgressStore{client: client}
}

func (s *ProgressStore) Get(ctx context.Context, userID, challengeID string) (domain.ChallengeProgress, bool, error) {
	raw, err := s.client.Get(ctx, s.key(userID, challengeID)).Bytes()
	if err == redis.Nil {
		return domain.ChallengeProgress{}, false, nil
	}
	if err != nil {
		return domain.ChallengeProgress{}, false, fmt.Errorf("get progress: %w", err)
	}
	var progress domain.ChallengeProgress
	if err := json.Unmarshal(raw, &progress); err != nil {
		return domain.ChallengeProgress{}, false, fmt.Errorf("unmarshal progress: %w", err)
	}
	return progress, true, nil
}

func (s *ProgressStore) Put(ctx context.Context, progress domain.ChallengeProgress) error {
	raw, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if err := s.client.Set(ctx, s.key(progress.UserID, progress.ChallengeID), raw, 0).Err(); err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

func (s *ProgressStore) ListByUser(ctx context.Context, userID string) ([]domain.ChallengeProgress, error) {
	var out []domain.ChallengeProgress
	iter := s.client.Scan(ctx, 0, s.userPrefix(userID)+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get progress: %w", err)
		}
		var progress domain.ChallengeProgress
		if err := json.Unmarshal(raw, &progress); err != nil {
			return nil, fmt.Errorf("unmarshal progress: %w", err)
		}
		out = append(out, progress)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan progress: %w", err)
	}
	return out, nil
}

func (s *ProgressStore) key(userID, challengeID string) string {
	return s.userPrefix(userID) + challengeID
}

func (s *ProgressStore) userPrefix(userID string) string {
	return "challenge:progress:" + userID + ":"
}
