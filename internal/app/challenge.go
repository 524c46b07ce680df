package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"
)

// ChallengeEngine owns challenge lifecycle: creation, the recurring
// daily/weekly/monthly scheduler, progress accounting and reward claims.
type ChallengeEngine struct {
	store    Store
	progress ProgressStore
	rewards  RewardPort
	now      func() time.Time

	mu     sync.Mutex
	active map[string]domain.Challenge
	rnd    *rand.Rand

	// progMu serializes the read-modify-write on progress records so the
	// completed and claimed transitions happen at most once each.
	progMu sync.Mutex
}

func NewChallengeEngine(store Store, progress ProgressStore, rewards RewardPort) *ChallengeEngine {
	return &ChallengeEngine{
		store:    store,
		progress: progress,
		rewards:  rewards,
		now:      time.Now,
		active:   make(map[string]domain.Challenge),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Load primes the in-memory index from the durable store. Call once at
// startup.
func (e *ChallengeEngine) Load(ctx context.Context) error {
	challenges, err := e.store.LoadActiveChallenges(ctx)
	if err != nil {
		return fmt.Errorf("load active challenges: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range challenges {
		e.active[ch.ID] = ch
	}
	return nil
}

// Create validates, persists and indexes a new active challenge.
func (e *ChallengeEngine) Create(ctx context.Context, ch domain.Challenge) (domain.Challenge, error) {
	if ch.ID == "" {
		ch.ID = uuid.NewString()
	}
	ch.Active = true
	if err := ch.Validate(); err != nil {
		return domain.Challenge{}, err
	}
	if err := e.store.SaveChallenge(ctx, ch); err != nil {
		return domain.Challenge{}, fmt.Errorf("persist challenge: %w", err)
	}
	e.mu.Lock()
	e.active[ch.ID] = ch
	e.mu.Unlock()
	return ch, nil
}

// ListActive returns the active challenges ordered by period then name.
func (e *ChallengeEngine) ListActive() []domain.Challenge {
	e.mu.Lock()
	out := make([]domain.Challenge, 0, len(e.active))
	for _, ch := range e.active {
		out = append(out, ch)
	}
	e.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Get returns an active challenge by id.
func (e *ChallengeEngine) Get(id string) (domain.Challenge, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch, ok := e.active[id]
	return ch, ok
}

// UpdateProgress feeds an activity increment into every active challenge
// tracking the requirement type. Progress records are created lazily; the
// completed flag transitions at most once, on the first target crossing.
// This is the single integration point for the quiz and mini-game engines
// and any other activity producers.
func (e *ChallengeEngine) UpdateProgress(ctx context.Context, userID string, t domain.RequirementType, increment int) error {
	if increment <= 0 || !t.Valid() {
		return nil
	}

	e.mu.Lock()
	tracking := make([]domain.Challenge, 0)
	for _, ch := range e.active {
		if ch.TracksType(t) {
			tracking = append(tracking, ch)
		}
	}
	e.mu.Unlock()

	e.progMu.Lock()
	defer e.progMu.Unlock()
	for _, ch := range tracking {
		progress, found, err := e.progress.Get(ctx, userID, ch.ID)
		if err != nil {
			return fmt.Errorf("load progress %s/%s: %w", userID, ch.ID, err)
		}
		if !found {
			progress = domain.ChallengeProgress{
				UserID:      userID,
				ChallengeID: ch.ID,
				Values:      make(map[domain.RequirementType]int),
			}
		}
		if progress.Values == nil {
			progress.Values = make(map[domain.RequirementType]int)
		}
		progress.Values[t] += increment

		if !progress.Completed && challengeComplete(ch, progress.Values) {
			progress.Completed = true
			progress.CompletedAt = e.now()
		}
		if err := e.progress.Put(ctx, progress); err != nil {
			return fmt.Errorf("save progress %s/%s: %w", userID, ch.ID, err)
		}
	}
	return nil
}

// challengeComplete reports whether every requirement target has been met.
func challengeComplete(ch domain.Challenge, values map[domain.RequirementType]int) bool {
	for _, req := range ch.Requirements {
		if values[req.Type] < req.Target {
			return false
		}
	}
	return true
}

// UserProgress returns the user's progress records for active challenges.
func (e *ChallengeEngine) UserProgress(ctx context.Context, userID string) ([]domain.ChallengeProgress, error) {
	records, err := e.progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := records[:0]
	for _, rec := range records {
		if _, ok := e.active[rec.ChallengeID]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Claim marks a completed challenge as claimed and issues its reward exactly
// once per (user, challenge). Expired challenges fall back to the durable
// store, so completed progress stays claimable after the scheduler has
// deactivated the challenge.
func (e *ChallengeEngine) Claim(ctx context.Context, userID, challengeID string) (domain.RewardTemplate, error) {
	ch, ok := e.Get(challengeID)
	if !ok {
		stored, err := e.store.GetChallenge(ctx, challengeID)
		if err != nil {
			if err == domain.ErrChallengeNotFound {
				return domain.RewardTemplate{}, domain.ErrChallengeNotFound
			}
			return domain.RewardTemplate{}, fmt.Errorf("load challenge: %w", err)
		}
		ch = stored
	}

	e.progMu.Lock()
	progress, found, err := e.progress.Get(ctx, userID, challengeID)
	if err != nil {
		e.progMu.Unlock()
		return domain.RewardTemplate{}, fmt.Errorf("load progress: %w", err)
	}
	switch {
	case !found:
		e.progMu.Unlock()
		return domain.RewardTemplate{}, domain.ErrProgressNotFound
	case !progress.Completed:
		e.progMu.Unlock()
		return domain.RewardTemplate{}, domain.ErrNotCompleted
	case progress.Claimed:
		e.progMu.Unlock()
		return domain.RewardTemplate{}, domain.ErrAlreadyClaimed
	}
	progress.Claimed = true
	if err := e.progress.Put(ctx, progress); err != nil {
		e.progMu.Unlock()
		return domain.RewardTemplate{}, fmt.Errorf("save progress: %w", err)
	}
	e.progMu.Unlock()

	if ch.Reward.XP > 0 {
		if err := e.rewards.GrantExperience(ctx, userID, ch.Reward.XP); err != nil {
			log.Printf("challenge %s: grant xp to %s: %v", challengeID, userID, err)
		}
	}
	if ch.Reward.Currency > 0 {
		if err := e.rewards.GrantCurrency(ctx, userID, ch.Reward.Currency); err != nil {
			log.Printf("challenge %s: grant currency to %s: %v", challengeID, userID, err)
		}
	}
	for _, badge := range ch.Reward.BadgeIDs {
		if err := e.rewards.GrantBadge(ctx, userID, badge); err != nil {
			log.Printf("challenge %s: grant badge %s to %s: %v", challengeID, badge, userID, err)
		}
	}
	return ch.Reward, nil
}

// Tick re-evaluates calendar boundaries and expiry. It is driven by an hourly
// scheduler job but checks boundaries itself, so missed or late ticks catch
// up instead of skipping a period.
func (e *ChallengeEngine) Tick(ctx context.Context, now time.Time) {
	day := startOfDay(now)

	if !e.hasChallengeStarted(domain.PeriodDaily, func(ch domain.Challenge) bool {
		return sameDay(ch.StartsAt, now)
	}) {
		e.issueFromTemplate(ctx, dailyTemplates, domain.PeriodDaily, day, day.Add(24*time.Hour))
	}

	if now.Weekday() == time.Monday && !e.hasChallengeStarted(domain.PeriodWeekly, func(ch domain.Challenge) bool {
		y1, w1 := ch.StartsAt.ISOWeek()
		y2, w2 := now.ISOWeek()
		return y1 == y2 && w1 == w2
	}) {
		e.issueFromTemplate(ctx, weeklyTemplates, domain.PeriodWeekly, day, day.Add(7*24*time.Hour))
	}

	if now.Day() == 1 && !e.hasChallengeStarted(domain.PeriodMonthly, func(ch domain.Challenge) bool {
		return ch.StartsAt.Year() == now.Year() && ch.StartsAt.Month() == now.Month()
	}) {
		e.issueFromTemplate(ctx, monthlyTemplates, domain.PeriodMonthly, day, day.AddDate(0, 1, 0))
	}

	e.expire(ctx, now)
}

func (e *ChallengeEngine) hasChallengeStarted(period domain.PeriodKind, match func(domain.Challenge) bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.active {
		if ch.Period == period && match(ch) {
			return true
		}
	}
	return false
}

func (e *ChallengeEngine) issueFromTemplate(ctx context.Context, templates []challengeTemplate, period domain.PeriodKind, start, end time.Time) {
	e.mu.Lock()
	tpl := templates[e.rnd.Intn(len(templates))]
	e.mu.Unlock()

	ch := domain.Challenge{
		Name:         tpl.name,
		Description:  tpl.description,
		Period:       period,
		Category:     tpl.category,
		Requirements: tpl.requirements,
		Reward:       tpl.reward,
		StartsAt:     start,
		EndsAt:       end,
	}
	if _, err := e.Create(ctx, ch); err != nil {
		log.Printf("challenge scheduler: create %s %q: %v", period, tpl.name, err)
		return
	}
	log.Printf("challenge scheduler: issued %s challenge %q", period, tpl.name)
}

func (e *ChallengeEngine) expire(ctx context.Context, now time.Time) {
	e.mu.Lock()
	var expired []domain.Challenge
	for _, ch := range e.active {
		if now.After(ch.EndsAt) {
			expired = append(expired, ch)
		}
	}
	e.mu.Unlock()

	for _, ch := range expired {
		if err := e.store.DeactivateChallenge(ctx, ch.ID); err != nil {
			log.Printf("challenge scheduler: deactivate %s: %v", ch.ID, err)
			continue
		}
		e.mu.Lock()
		delete(e.active, ch.ID)
		e.mu.Unlock()
		log.Printf("challenge scheduler: expired %s challenge %q", ch.Period, ch.Name)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

type challengeTemplate struct {
	name         string
	description  string
	category     domain.Category
	requirements []domain.ChallengeRequirement
	reward       domain.RewardTemplate
}

var dailyTemplates = []challengeTemplate{
	{
		name:        "Chatterbox",
		description: "Send 20 messages in the community today.",
		category:    domain.CategoryCommunity,
		requirements: []domain.ChallengeRequirement{
			{Type: domain.RequirementMessages, Target: 20},
		},
		reward: domain.RewardTemplate{XP: 100, Currency: 50},
	},
	{
		name:        "Daily Fragger",
		description: "Get 5 kills in matches today.",
		category:    domain.CategoryPUBG,
		requirements: []domain.ChallengeRequirement{
			{Type: domain.RequirementKills, Target: 5},
		},
		reward: domain.RewardTemplate{XP: 150, Currency: 75},
	},
	{
		name:        "Quiz Dabbler",
		description: "Score 50 points across today's quizzes.",
		category:    domain.CategoryGeneral,
		requirements: []domain.ChallengeRequirement{
			{Type: domain.RequirementQuizScore, Target: 50},
		},
		reward: domain.RewardTemplate{XP: 120, Currency: 60},
	},
	{
		name:        "Arcade Hour",
		description: "Place in 2 mini-games today.",
		category:    domain.CategoryGaming,
		requirements: []domain.ChallengeRequirement{
			{Type: domain.RequirementMiniGameWins, Target: 2},
		},
		reward: domain.RewardTemplate{XP: 110, Currency: 55},
	},
}

var weeklyTemplates = []challengeTemplate{
	{
		name:        "Weekly Warrior",
		description: "Win 3 matches this week.",
		category:    domain.CategoryPUBG,
		requirements: []domain.ChallengeRequirement{
			{Type: domain.RequirementWins, Target: 3},
		},
		reward: domain.RewardTemplate{XP: 500, Currency: 250},
	},
	{
		name:        "Voice of the Squad",
		description: "Spend 120 minutes in voice channels this week.",
		category:    domain.CategoryCommunity,
		requirements: []domain.ChallengeRequirement{
			{Type: domain.RequirementVoiceMinutes, Target: 120},
		},
		reward: domain.RewardTemplate{XP: 400, Currency: 200},
	},
	{
		name:        "Grinder",
		description: "Play 15 matches this week.",
		category:    domain.CategoryGaming,
		requirements: []domain.ChallengeRequirement{
			{Type: domain.RequirementGamesPlayed, Target: 15},
		},
		reward: domain.RewardTemplate{XP: 450, Currency: 225},
	},
}

var monthlyTemplates = []challengeTemplate{
	{
		name:        "Monthly Legend",
		description: "Get 100 kills this month.",
		category:    domain.CategoryPUBG,
		requirements: []domain.ChallengeRequirement{
			{Type: domain.RequirementKills, Target: 100},
		},
		reward: domain.RewardTemplate{XP: 2000, Currency: 1000, BadgeIDs: []string{"monthly-legend"}},
	},
	{
		name:        "Quiz Laureate",
		description: "Score 1000 quiz points this month.",
		category:    domain.CategoryGeneral,
		requirements: []domain.ChallengeRequirement{
			{Type: domain.RequirementQuizScore, Target: 1000},
		},
		reward: domain.RewardTemplate{XP: 1800, Currency: 900, BadgeIDs: []string{"quiz-laureate"}},
	},
}
