package app

import (
	"context"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"
)

// RewardPort issues XP, currency and badges through external subsystems.
type RewardPort interface {
	GrantExperience(ctx context.Context, userID string, amount int) error
	GrantCurrency(ctx context.Context, userID string, amount int) error
	GrantBadge(ctx context.Context, userID, badgeID string) error
}

// RankingPort records per-user statistics for leaderboards.
type RankingPort interface {
	RecordQuizResult(ctx context.Context, scope domain.Scope, userID string, score, correct, total int) error
	RecordMiniGameResult(ctx context.Context, scope domain.Scope, userID, gameType string, score int, won bool) error
}

// Store is the durable persistence port for challenges, session results and
// currency balances.
type Store interface {
	SaveChallenge(ctx context.Context, ch domain.Challenge) error
	GetChallenge(ctx context.Context, id string) (domain.Challenge, error)
	LoadActiveChallenges(ctx context.Context) ([]domain.Challenge, error)
	DeactivateChallenge(ctx context.Context, id string) error
	SaveSessionResult(ctx context.Context, res domain.SessionResult) error
	UpsertUserCurrency(ctx context.Context, userID string, delta int64) error
}

// ProgressStore persists per-(user, challenge) progress records. The challenge
// engine is the only writer; implementations may be in-memory or Redis-backed.
type ProgressStore interface {
	Get(ctx context.Context, userID, challengeID string) (domain.ChallengeProgress, bool, error)
	Put(ctx context.Context, progress domain.ChallengeProgress) error
	ListByUser(ctx context.Context, userID string) ([]domain.ChallengeProgress, error)
}
