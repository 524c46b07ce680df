package memory

import (
	"context"
	"sync"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/app"
	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"
)

// RewardLedger implements the reward and ranking ports with in-memory
// accounting. Currency grants are written through to the durable store's
// balance upsert so wallet state survives a restart when a real store is
// wired in.
type RewardLedger struct {
	store app.Store

	mu     sync.Mutex
	xp     map[string]int
	badges map[string][]string
	quiz   map[string]QuizStats
	games  map[string]GameStats
}

// QuizStats accumulates per-user quiz ranking numbers.
type QuizStats struct {
	Sessions int
	Score    int
	Correct  int
	Total    int
}

// GameStats accumulates per-user mini-game ranking numbers.
type GameStats struct {
	Sessions int
	Score    int
	Wins     int
}

func NewRewardLedger(store app.Store) *RewardLedger {
	return &RewardLedger{
		store:  store,
		xp:     make(map[string]int),
		badges: make(map[string][]string),
		quiz:   make(map[string]QuizStats),
		games:  make(map[string]GameStats),
	}
}

func (l *RewardLedger) GrantExperience(_ context.Context, userID string, amount int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.xp[userID] += amount
	return nil
}

func (l *RewardLedger) GrantCurrency(ctx context.Context, userID string, amount int) error {
	return l.store.UpsertUserCurrency(ctx, userID, int64(amount))
}

func (l *RewardLedger) GrantBadge(_ context.Context, userID, badgeID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.badges[userID] {
		if existing == badgeID {
			return nil
		}
	}
	l.badges[userID] = append(l.badges[userID], badgeID)
	return nil
}

func (l *RewardLedger) RecordQuizResult(_ context.Context, _ domain.Scope, userID string, score, correct, total int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	stats := l.quiz[userID]
	stats.Sessions++
	stats.Score += score
	stats.Correct += correct
	stats.Total += total
	l.quiz[userID] = stats
	return nil
}

func (l *RewardLedger) RecordMiniGameResult(_ context.Context, _ domain.Scope, userID, _ string, score int, won bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	stats := l.games[userID]
	stats.Sessions++
	stats.Score += score
	if won {
		stats.Wins++
	}
	l.games[userID] = stats
	return nil
}

// Experience returns a user's accumulated XP.
func (l *RewardLedger) Experience(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.xp[userID]
}

// Badges returns a copy of a user's badges.
func (l *RewardLedger) Badges(userID string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.badges[userID]...)
}

// QuizStatsFor returns a user's quiz ranking stats.
func (l *RewardLedger) QuizStatsFor(userID string) QuizStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.quiz[userID]
}

// GameStatsFor returns a user's mini-game ranking stats.
func (l *RewardLedger) GameStatsFor(userID string) GameStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.games[userID]
}
