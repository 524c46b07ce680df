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

const gameParticipantCap = 50

// GameEvent is a participant action delivered to a mini-game's state machine.
type GameEvent struct {
	Action string    `json:"action"`
	Value  string    `json:"value,omitempty"`
	At     time.Time `json:"-"`
}

// GameEventResult reports what a single event did. Accepted is false for
// harmless rejections (too early, no match) that are not errors.
type GameEventResult struct {
	Accepted bool   `json:"accepted"`
	Points   int    `json:"points"`
	Winner   bool   `json:"winner"`
	Message  string `json:"message,omitempty"`
}

// Logic is the capability a game type plugs into the session lifecycle. New
// game types are added by registering a new Logic, not by changing the engine.
// All methods are called under the engine lock and must not block.
type Logic interface {
	Init(s *GameSession, rnd *rand.Rand)
	HandleEvent(s *GameSession, userID string, ev GameEvent, rnd *rand.Rand) (GameEventResult, error)
	IsComplete(s *GameSession, now time.Time) bool
	ComputeScores(s *GameSession) map[string]int
}

// GameSession is a live mini-game. The state field is owned by the game
// type's Logic and opaque to the engine.
type GameSession struct {
	id        string
	def       domain.MiniGameDefinition
	scope     domain.Scope
	hostID    string
	startedAt time.Time
	endsAt    time.Time

	active       bool
	participants map[string]*domain.GameParticipant
	order        []string
	state        any
}

func (s *GameSession) ID() string          { return s.id }
func (s *GameSession) Scope() domain.Scope { return s.scope }
func (s *GameSession) Kind() string        { return KindMiniGame }

func (s *GameSession) Expired(now time.Time) bool {
	return now.After(s.endsAt)
}

// GameView is a read-only snapshot of a mini-game session.
type GameView struct {
	ID           string                    `json:"id"`
	Definition   domain.MiniGameDefinition `json:"definition"`
	Scope        domain.Scope              `json:"scope"`
	HostID       string                    `json:"hostId"`
	Active       bool                      `json:"active"`
	StartedAt    time.Time                 `json:"startedAt"`
	EndsAt       time.Time                 `json:"endsAt"`
	Participants []domain.GameParticipant  `json:"participants"`
}

// MiniGameEngine drives mini-game sessions through pluggable game-type state
// machines.
type MiniGameEngine struct {
	registry *Registry
	rewards  RewardPort
	ranking  RankingPort
	store    Store
	progress ProgressRecorder
	defs     []domain.MiniGameDefinition
	logics   map[string]Logic
	now      func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewMiniGameEngine(registry *Registry, rewards RewardPort, ranking RankingPort, store Store, progress ProgressRecorder, defs []domain.MiniGameDefinition) *MiniGameEngine {
	return &MiniGameEngine{
		registry: registry,
		rewards:  rewards,
		ranking:  ranking,
		store:    store,
		progress: progress,
		defs:     defs,
		logics:   builtinLogics(),
		now:      time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Definitions lists the immutable mini-game catalog.
func (e *MiniGameEngine) Definitions() []domain.MiniGameDefinition {
	out := make([]domain.MiniGameDefinition, len(e.defs))
	copy(out, e.defs)
	return out
}

// Start creates a session for the given definition, registers it and arms the
// one-shot auto-end timer. The timer fires even with zero participants.
func (e *MiniGameEngine) Start(ctx context.Context, defID string, scope domain.Scope, hostID string) (*GameSession, error) {
	def, ok := e.definition(defID)
	if !ok {
		return nil, domain.ErrUnknownGameType
	}
	logic, ok := e.logics[def.GameType]
	if !ok {
		return nil, domain.ErrUnknownGameType
	}

	now := e.now()
	session := &GameSession{
		id:           uuid.NewString(),
		def:          def,
		scope:        scope,
		hostID:       hostID,
		startedAt:    now,
		endsAt:       now.Add(def.Duration),
		active:       true,
		participants: make(map[string]*domain.GameParticipant),
	}

	e.mu.Lock()
	logic.Init(session, e.rnd)
	e.mu.Unlock()

	if !e.registry.Register(session) {
		return nil, domain.ErrScopeBusy
	}

	record := domain.SessionResult{
		ID:        uuid.NewString(),
		SessionID: session.id,
		Kind:      "minigame_start",
		Scope:     scope,
		UserID:    hostID,
		GameType:  def.GameType,
		CreatedAt: now,
	}
	if err := e.store.SaveSessionResult(ctx, record); err != nil {
		e.registry.Remove(session.id)
		return nil, fmt.Errorf("persist minigame session: %w", err)
	}

	// One-shot; the race with a manual end is resolved by the idempotent
	// active-flag check inside End, not by cancelling the timer.
	time.AfterFunc(def.Duration, func() {
		if _, err := e.End(context.Background(), session.id); err != nil && err != domain.ErrSessionInactive && err != domain.ErrSessionNotFound {
			log.Printf("minigame %s: auto end: %v", session.id, err)
		}
	})
	return session, nil
}

// Join adds a participant. Joining twice is a no-op success.
func (e *MiniGameEngine) Join(sessionID, userID, displayName string) error {
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
	if len(session.participants) >= gameParticipantCap {
		return domain.ErrSessionFull
	}
	session.participants[userID] = &domain.GameParticipant{
		UserID:      userID,
		DisplayName: displayName,
		JoinedAt:    e.now(),
	}
	session.order = append(session.order, userID)
	return nil
}

// HandleEvent routes a participant action to the game type's state machine
// and applies any awarded points.
func (e *MiniGameEngine) HandleEvent(sessionID, userID string, ev GameEvent) (GameEventResult, error) {
	session, err := e.get(sessionID)
	if err != nil {
		return GameEventResult{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !session.active {
		return GameEventResult{}, domain.ErrSessionInactive
	}
	participant, ok := session.participants[userID]
	if !ok {
		return GameEventResult{}, domain.ErrParticipantNotFound
	}

	logic := e.logics[session.def.GameType]
	if ev.At.IsZero() {
		ev.At = e.now()
	}
	if ev.At.After(session.endsAt) || logic.IsComplete(session, ev.At) {
		return GameEventResult{}, domain.ErrGameClosed
	}

	result, err := logic.HandleEvent(session, userID, ev, e.rnd)
	if err != nil {
		return GameEventResult{}, err
	}
	if result.Points > 0 {
		participant.Score += result.Points
	}
	return result, nil
}

// End is idempotent: the first call ranks participants, issues rewards and
// removes the session; later calls (manual or timer) report the session as
// inactive.
func (e *MiniGameEngine) End(ctx context.Context, sessionID string) ([]domain.RankedResult, error) {
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

	logic := e.logics[session.def.GameType]
	for userID, extra := range logic.ComputeScores(session) {
		if p, ok := session.participants[userID]; ok {
			p.Score += extra
		}
	}
	snapshot := make([]domain.GameParticipant, 0, len(session.order))
	for _, userID := range session.order {
		snapshot = append(snapshot, *session.participants[userID])
	}
	e.mu.Unlock()

	ranked := rankGameResults(snapshot, session.def.Reward)

	for i := range ranked {
		res := &ranked[i]
		if err := e.rewards.GrantExperience(ctx, res.UserID, res.XP); err != nil {
			log.Printf("minigame %s: grant xp to %s: %v", session.id, res.UserID, err)
		}
		if err := e.rewards.GrantCurrency(ctx, res.UserID, res.Currency); err != nil {
			log.Printf("minigame %s: grant currency to %s: %v", session.id, res.UserID, err)
		}
		for _, badge := range res.Badges {
			if err := e.rewards.GrantBadge(ctx, res.UserID, badge); err != nil {
				log.Printf("minigame %s: grant badge %s to %s: %v", session.id, badge, res.UserID, err)
			}
		}
		record := domain.SessionResult{
			ID:        uuid.NewString(),
			SessionID: session.id,
			Kind:      KindMiniGame,
			Scope:     session.scope,
			UserID:    res.UserID,
			GameType:  session.def.GameType,
			Score:     res.Score,
			Rank:      res.Rank,
			Won:       res.Rank == 1 && res.Score > 0,
			XP:        res.XP,
			Currency:  res.Currency,
			CreatedAt: e.now(),
		}
		if err := e.store.SaveSessionResult(ctx, record); err != nil {
			log.Printf("minigame %s: persist result for %s: %v", session.id, res.UserID, err)
		}
		if res.Score > 0 {
			if err := e.progress.UpdateProgress(ctx, res.UserID, domain.RequirementMiniGameWins, 1); err != nil {
				log.Printf("minigame %s: challenge progress for %s: %v", session.id, res.UserID, err)
			}
		}
		if err := e.ranking.RecordMiniGameResult(ctx, session.scope, res.UserID, session.def.GameType, res.Score, res.Rank == 1 && res.Score > 0); err != nil {
			log.Printf("minigame %s: ranking update for %s: %v", session.id, res.UserID, err)
		}
	}

	e.registry.Remove(session.id)
	return ranked, nil
}

// Get returns a snapshot of the session.
func (e *MiniGameEngine) Get(sessionID string) (GameView, error) {
	session, err := e.get(sessionID)
	if err != nil {
		return GameView{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	view := GameView{
		ID:         session.id,
		Definition: session.def,
		Scope:      session.scope,
		HostID:     session.hostID,
		Active:     session.active,
		StartedAt:  session.startedAt,
		EndsAt:     session.endsAt,
	}
	for _, userID := range session.order {
		view.Participants = append(view.Participants, *session.participants[userID])
	}
	return view, nil
}

func (e *MiniGameEngine) get(sessionID string) (*GameSession, error) {
	s, ok := e.registry.LookupID(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	session, ok := s.(*GameSession)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (e *MiniGameEngine) definition(id string) (domain.MiniGameDefinition, bool) {
	for _, def := range e.defs {
		if def.ID == id {
			return def, true
		}
	}
	return domain.MiniGameDefinition{}, false
}

// rankGameResults orders participants by descending score (tied scores share
// a rank) and applies the reward template, with a 25% top-half bonus when
// more than one participant played. Template badges go to the top rank.
func rankGameResults(participants []domain.GameParticipant, reward domain.RewardTemplate) []domain.RankedResult {
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
			Rank:        rank,
			XP:          reward.XP,
			Currency:    reward.Currency,
		}
		if n > 1 && rank*2 <= n { // top half
			res.XP += reward.XP / 4
			res.Currency += reward.Currency / 4
		}
		if rank == 1 && p.Score > 0 {
			res.Badges = append(res.Badges, reward.BadgeIDs...)
		}
		ranked = append(ranked, res)
	}
	return ranked
}

// DefaultMiniGames returns the built-in mini-game catalog.
func DefaultMiniGames() []domain.MiniGameDefinition {
	return []domain.MiniGameDefinition{
		{
			ID:          "reaction-duel",
			Name:        "Reaction Duel",
			Description: "Wait for the signal, then press as fast as you can.",
			GameType:    GameTypeReaction,
			Difficulty:  domain.DifficultyEasy,
			Duration:    30 * time.Second,
			Reward:      domain.RewardTemplate{XP: 25, Currency: 10},
		},
		{
			ID:          "typing-sprint",
			Name:        "Typing Sprint",
			Description: "First to type the phrase exactly wins.",
			GameType:    GameTypeTyping,
			Difficulty:  domain.DifficultyMedium,
			Duration:    60 * time.Second,
			Reward:      domain.RewardTemplate{XP: 40, Currency: 15},
		},
		{
			ID:          "math-blitz",
			Name:        "Math Blitz",
			Description: "Solve arithmetic problems against the clock.",
			GameType:    GameTypeMath,
			Difficulty:  domain.DifficultyMedium,
			Duration:    2 * time.Minute,
			Reward:      domain.RewardTemplate{XP: 50, Currency: 20},
		},
		{
			ID:          "memory-chain",
			Name:        "Memory Chain",
			Description: "Repeat the growing symbol sequence in order.",
			GameType:    GameTypeMemory,
			Difficulty:  domain.DifficultyHard,
			Duration:    90 * time.Second,
			Reward:      domain.RewardTemplate{XP: 60, Currency: 25},
		},
		{
			ID:          "lootbox-rush",
			Name:        "Lootbox Rush",
			Description: "Crack open boxes before everyone else.",
			GameType:    GameTypeLootbox,
			Difficulty:  domain.DifficultyEasy,
			Duration:    45 * time.Second,
			Reward:      domain.RewardTemplate{XP: 30, Currency: 10},
		},
		{
			ID:          "airdrop-scramble",
			Name:        "Airdrop Scramble",
			Description: "A crate drops at a random moment. One claim wins it.",
			GameType:    GameTypeAirdrop,
			Difficulty:  domain.DifficultyEasy,
			Duration:    60 * time.Second,
			Reward:      domain.RewardTemplate{XP: 35, Currency: 15, BadgeIDs: []string{"airdrop-winner"}},
		},
	}
}
