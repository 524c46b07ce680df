package app

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"
	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/questions"
)

const (
	quizBasePoints     = 10
	quizParticipantCap = 50
	quizStaleAfter     = time.Hour

	badgeQuizPerfect   = "quiz-perfect"
	badgeQuizFirst     = "quiz-first-place"
	badgeQuizHighScore = "quiz-high-score"
)

// ProgressRecorder is the single integration point session engines use to
// feed challenge progress.
type ProgressRecorder interface {
	UpdateProgress(ctx context.Context, userID string, t domain.RequirementType, increment int) error
}

// QuizSession is a live multi-participant trivia session. All mutable state
// is owned by the QuizEngine and mutated under its lock; the identity fields
// are immutable.
type QuizSession struct {
	id        string
	scope     domain.Scope
	hostID    string
	startedAt time.Time
	settings  domain.QuizSettings
	questions []domain.Question

	current      int
	active       bool
	participants map[string]*domain.QuizParticipant
	order        []string
	answered     map[int]map[string]bool
}

func (s *QuizSession) ID() string          { return s.id }
func (s *QuizSession) Scope() domain.Scope { return s.scope }
func (s *QuizSession) Kind() string        { return KindQuiz }

// Expired reports whether the session has outlived the staleness window.
func (s *QuizSession) Expired(now time.Time) bool {
	return now.After(s.startedAt.Add(quizStaleAfter))
}

// QuizView is a read-only snapshot of a quiz session.
type QuizView struct {
	ID            string                   `json:"id"`
	Scope         domain.Scope             `json:"scope"`
	HostID        string                   `json:"hostId"`
	Active        bool                     `json:"active"`
	StartedAt     time.Time                `json:"startedAt"`
	Settings      domain.QuizSettings      `json:"settings"`
	QuestionCount int                      `json:"questionCount"`
	CurrentIndex  int                      `json:"currentIndex"`
	Prompt        string                   `json:"prompt"`
	Options       []string                 `json:"options"`
	Participants  []domain.QuizParticipant `json:"participants"`
}

// QuizEngine drives the quiz session lifecycle.
type QuizEngine struct {
	registry *Registry
	bank     *questions.Bank
	rewards  RewardPort
	ranking  RankingPort
	store    Store
	progress ProgressRecorder
	now      func() time.Time

	mu sync.Mutex
}

func NewQuizEngine(registry *Registry, bank *questions.Bank, rewards RewardPort, ranking RankingPort, store Store, progress ProgressRecorder) *QuizEngine {
	return &QuizEngine{
		registry: registry,
		bank:     bank,
		rewards:  rewards,
		ranking:  ranking,
		store:    store,
		progress: progress,
		now:      time.Now,
	}
}

// Start validates settings, draws questions, registers the session and
// persists a start record. A persistence failure rolls the registration back
// so the registry and the durable record never diverge.
func (e *QuizEngine) Start(ctx context.Context, scope domain.Scope, hostID string, settings domain.QuizSettings) (*QuizSession, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if _, busy := e.registry.LookupScope(KindQuiz, scope); busy {
		return nil, domain.ErrScopeBusy
	}

	picked, err := e.bank.Select(ctx, settings.Category, settings.Difficulty, settings.QuestionCount)
	if err != nil {
		return nil, err
	}
	if len(picked) == 0 {
		return nil, domain.ErrNoQuestionsAvailable
	}

	session := &QuizSession{
		id:           uuid.NewString(),
		scope:        scope,
		hostID:       hostID,
		startedAt:    e.now(),
		settings:     settings,
		questions:    picked,
		active:       true,
		participants: make(map[string]*domain.QuizParticipant),
		answered:     make(map[int]map[string]bool),
	}

	// Register is the atomic check-and-insert; the lookup above only avoids
	// drawing questions for a scope that is obviously busy.
	if !e.registry.Register(session) {
		return nil, domain.ErrScopeBusy
	}

	record := domain.SessionResult{
		ID:        uuid.NewString(),
		SessionID: session.id,
		Kind:      "quiz_start",
		Scope:     scope,
		UserID:    hostID,
		Total:     len(picked),
		CreatedAt: session.startedAt,
	}
	if err := e.store.SaveSessionResult(ctx, record); err != nil {
		e.registry.Remove(session.id)
		return nil, fmt.Errorf("persist quiz session: %w", err)
	}
	return session, nil
}

// Join adds a participant. Joining twice is a no-op success; joining after the
// first question has passed or once the cap is reached fails.
func (e *QuizEngine) Join(sessionID, userID, displayName string) error {
	session, err := e.get(sessionID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !session.active {
		return domain.ErrSessionInactive
	}
	if _, ok := session.participants[userID]; ok {
		return nil
	}
	if session.current > 0 {
		return domain.ErrQuizInProgress
	}
	if len(session.participants) >= quizParticipantCap {
		return domain.ErrSessionFull
	}
	session.participants[userID] = &domain.QuizParticipant{
		UserID:      userID,
		DisplayName: displayName,
	}
	session.order = append(session.order, userID)
	return nil
}

// SubmitAnswer scores one answer against the current question. Duplicate
// submissions (without multi-attempt) return a non-applicable outcome with no
// side effects.
func (e *QuizEngine) SubmitAnswer(sessionID, userID string, answerIndex int) (domain.AnswerOutcome, error) {
	session, err := e.get(sessionID)
	if err != nil {
		return domain.AnswerOutcome{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !session.active {
		return domain.AnswerOutcome{}, domain.ErrSessionInactive
	}
	participant, ok := session.participants[userID]
	if !ok {
		return domain.AnswerOutcome{}, domain.ErrParticipantNotFound
	}
	question := session.questions[session.current]
	if answerIndex < 0 || answerIndex >= len(question.Options) {
		return domain.AnswerOutcome{}, domain.ErrAnswerOutOfRange
	}

	seen := session.answered[session.current]
	if seen == nil {
		seen = make(map[string]bool)
		session.answered[session.current] = seen
	}
	if seen[userID] && !session.settings.AllowMultipleAttempts {
		return domain.AnswerOutcome{Applicable: false}, nil
	}
	seen[userID] = true

	participant.Answered++
	participant.LastAnswerAt = e.now()

	if answerIndex != question.CorrectIndex {
		participant.Streak = 0
		return domain.AnswerOutcome{Applicable: true, Correct: false}, nil
	}

	timeBonus := (session.settings.SecondsPerQuestion - 10) / 5
	if timeBonus < 0 {
		timeBonus = 0
	}
	points := quizBasePoints + participant.Streak*2 + timeBonus
	participant.Streak++
	participant.Correct++
	participant.Score += points

	return domain.AnswerOutcome{
		Applicable:    true,
		Correct:       true,
		PointsAwarded: points,
		NewStreak:     participant.Streak,
	}, nil
}

// Advance moves the session to the next question. It reports done when the
// last question has been passed.
func (e *QuizEngine) Advance(sessionID string) (index int, done bool, err error) {
	session, err := e.get(sessionID)
	if err != nil {
		return 0, false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !session.active {
		return session.current, true, domain.ErrSessionInactive
	}
	if session.current+1 >= len(session.questions) {
		return session.current, true, nil
	}
	session.current++
	return session.current, false, nil
}

// End deactivates the session, ranks participants, issues rewards and
// persists a result per participant. Reward failures are logged per
// participant and do not abort the rest of the fan-out.
func (e *QuizEngine) End(ctx context.Context, sessionID string) ([]domain.RankedResult, error) {
	session, err := e.get(sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if !session.active {
		e.mu.Unlock()
		return nil, domain.ErrSessionInactive
	}
	session.active = false
	snapshot := make([]domain.QuizParticipant, 0, len(session.order))
	for _, userID := range session.order {
		snapshot = append(snapshot, *session.participants[userID])
	}
	e.mu.Unlock()

	ranked := rankQuizResults(snapshot)

	for i := range ranked {
		res := &ranked[i]
		if err := e.rewards.GrantExperience(ctx, res.UserID, res.XP); err != nil {
			log.Printf("quiz %s: grant xp to %s: %v", session.id, res.UserID, err)
		}
		if err := e.rewards.GrantCurrency(ctx, res.UserID, res.Currency); err != nil {
			log.Printf("quiz %s: grant currency to %s: %v", session.id, res.UserID, err)
		}
		for _, badge := range res.Badges {
			if err := e.rewards.GrantBadge(ctx, res.UserID, badge); err != nil {
				log.Printf("quiz %s: grant badge %s to %s: %v", session.id, badge, res.UserID, err)
			}
		}
		record := domain.SessionResult{
			ID:        uuid.NewString(),
			SessionID: session.id,
			Kind:      KindQuiz,
			Scope:     session.scope,
			UserID:    res.UserID,
			Score:     res.Score,
			Correct:   res.Correct,
			Total:     res.Total,
			Rank:      res.Rank,
			Won:       res.Rank == 1,
			XP:        res.XP,
			Currency:  res.Currency,
			CreatedAt: e.now(),
		}
		if err := e.store.SaveSessionResult(ctx, record); err != nil {
			log.Printf("quiz %s: persist result for %s: %v", session.id, res.UserID, err)
		}
		if res.Score > 0 {
			if err := e.progress.UpdateProgress(ctx, res.UserID, domain.RequirementQuizScore, res.Score); err != nil {
				log.Printf("quiz %s: challenge progress for %s: %v", session.id, res.UserID, err)
			}
		}
		if err := e.ranking.RecordQuizResult(ctx, session.scope, res.UserID, res.Score, res.Correct, res.Total); err != nil {
			log.Printf("quiz %s: ranking update for %s: %v", session.id, res.UserID, err)
		}
	}

	e.registry.Remove(session.id)
	return ranked, nil
}

// Get returns a snapshot of the session.
func (e *QuizEngine) Get(sessionID string) (QuizView, error) {
	session, err := e.get(sessionID)
	if err != nil {
		return QuizView{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	view := QuizView{
		ID:            session.id,
		Scope:         session.scope,
		HostID:        session.hostID,
		Active:        session.active,
		StartedAt:     session.startedAt,
		Settings:      session.settings,
		QuestionCount: len(session.questions),
		CurrentIndex:  session.current,
	}
	current := session.questions[session.current]
	view.Prompt = current.Prompt
	view.Options = append([]string(nil), current.Options...)
	for _, userID := range session.order {
		view.Participants = append(view.Participants, *session.participants[userID])
	}
	return view, nil
}

func (e *QuizEngine) get(sessionID string) (*QuizSession, error) {
	s, ok := e.registry.LookupID(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	session, ok := s.(*QuizSession)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// rankQuizResults orders participants by descending score (insertion order
// breaks ties) and computes rewards. Tied scores share a competition rank, so
// the top-performer bonus only applies to a unique leader.
func rankQuizResults(participants []domain.QuizParticipant) []domain.RankedResult {
	sort.SliceStable(participants, func(i, j int) bool {
		return participants[i].Score > participants[j].Score
	})

	n := len(participants)
	ranked := make([]domain.RankedResult, 0, n)
	for _, p := range participants {
		rank := 1
		for _, other := range participants {
			if other.Score > p.Score {
				rank++
			}
		}
		res := domain.RankedResult{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Score:       p.Score,
			Correct:     p.Correct,
			Total:       p.Answered,
			Streak:      p.Streak,
			Rank:        rank,
		}

		accuracy := 0.0
		if p.Answered > 0 {
			accuracy = float64(p.Correct) / float64(p.Answered)
		}

		tier := 0
		uniqueTop := rank == 1 && (n < 2 || participants[1].Score < participants[0].Score)
		if n > 1 {
			switch {
			case uniqueTop:
				tier = 100
			case rank*10 <= n*3: // top 30%
				tier = 50
			case rank*2 <= n: // top 50%
				tier = 25
			}
		}

		res.XP = 50 + int(accuracy*50) + p.Score/2 + tier
		res.Currency = res.XP / 2

		if accuracy == 1 && p.Answered > 0 {
			res.Badges = append(res.Badges, badgeQuizPerfect)
		}
		if uniqueTop && n > 1 {
			res.Badges = append(res.Badges, badgeQuizFirst)
		}
		if p.Score >= 200 {
			res.Badges = append(res.Badges, badgeQuizHighScore)
		}
		ranked = append(ranked, res)
	}
	return ranked
}
