package domain

import "time"

// Scope identifies the (community, channel) pair a session is bound to.
// Uniqueness invariants are enforced per scope.
type Scope struct {
	CommunityID string `json:"communityId"`
	ChannelID   string `json:"channelId"`
}

// Key returns the scope's index key.
func (s Scope) Key() string {
	return s.CommunityID + ":" + s.ChannelID
}

// Category classifies trivia questions and challenges.
type Category string

const (
	CategoryGeneral   Category = "general"
	CategoryGaming    Category = "gaming"
	CategoryPUBG      Category = "pubg"
	CategoryEsports   Category = "esports"
	CategoryCommunity Category = "community"
)

// Categories lists every valid category.
var Categories = []Category{CategoryGeneral, CategoryGaming, CategoryPUBG, CategoryEsports, CategoryCommunity}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Difficulty grades questions and mini-games.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Question is a single multiple-choice trivia question.
type Question struct {
	ID           string     `json:"id"`
	Prompt       string     `json:"prompt"`
	Options      []string   `json:"options"`
	CorrectIndex int        `json:"correctIndex"`
	Category     Category   `json:"category"`
	Difficulty   Difficulty `json:"difficulty"`
}

// QuizSettings parameterize a quiz session.
type QuizSettings struct {
	QuestionCount         int        `json:"questionCount"`
	SecondsPerQuestion    int        `json:"secondsPerQuestion"`
	Category              Category   `json:"category"`
	Difficulty            Difficulty `json:"difficulty"`
	AllowMultipleAttempts bool       `json:"allowMultipleAttempts"`
	ShowCorrectAnswer     bool       `json:"showCorrectAnswer"`
}

// Validate checks the settings against their allowed bounds.
func (s QuizSettings) Validate() error {
	if s.QuestionCount < 1 || s.QuestionCount > 50 {
		return ErrInvalidSettings
	}
	if s.SecondsPerQuestion < 10 || s.SecondsPerQuestion > 300 {
		return ErrInvalidSettings
	}
	if !s.Category.Valid() || !s.Difficulty.Valid() {
		return ErrInvalidSettings
	}
	return nil
}

// QuizParticipant tracks one user's running state inside a quiz session.
type QuizParticipant struct {
	UserID       string    `json:"userId"`
	DisplayName  string    `json:"displayName"`
	Score        int       `json:"score"`
	Correct      int       `json:"correct"`
	Answered     int       `json:"answered"`
	Streak       int       `json:"streak"`
	LastAnswerAt time.Time `json:"lastAnswerAt"`
}

// AnswerOutcome summarizes a single answer submission. Applicable is false
// when the submission was a duplicate and nothing was scored.
type AnswerOutcome struct {
	Applicable    bool `json:"applicable"`
	Correct       bool `json:"correct"`
	PointsAwarded int  `json:"pointsAwarded"`
	NewStreak     int  `json:"newStreak"`
}

// RewardTemplate is the fixed payout attached to a definition before
// performance bonuses.
type RewardTemplate struct {
	XP       int      `json:"xp"`
	Currency int      `json:"currency"`
	BadgeIDs []string `json:"badgeIds,omitempty"`
}

// GameParticipant tracks one user's state inside a mini-game session.
type GameParticipant struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Score       int       `json:"score"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// MiniGameDefinition describes one playable mini-game. Immutable after load.
type MiniGameDefinition struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	GameType    string         `json:"gameType"`
	Difficulty  Difficulty     `json:"difficulty"`
	Duration    time.Duration  `json:"duration"`
	Reward      RewardTemplate `json:"reward"`
}

// PeriodKind is the cadence a challenge is issued on.
type PeriodKind string

const (
	PeriodDaily   PeriodKind = "daily"
	PeriodWeekly  PeriodKind = "weekly"
	PeriodMonthly PeriodKind = "monthly"
	PeriodSpecial PeriodKind = "special"
)

func (p PeriodKind) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodSpecial:
		return true
	}
	return false
}

// RequirementType is the closed set of measurable activities a challenge may
// track.
type RequirementType string

const (
	RequirementKills        RequirementType = "kills"
	RequirementWins         RequirementType = "wins"
	RequirementGamesPlayed  RequirementType = "games_played"
	RequirementMessages     RequirementType = "messages"
	RequirementVoiceMinutes RequirementType = "voice_minutes"
	RequirementQuizScore    RequirementType = "quiz_score"
	RequirementMiniGameWins RequirementType = "minigame_wins"
)

// RequirementTypes lists every valid requirement type.
var RequirementTypes = []RequirementType{
	RequirementKills, RequirementWins, RequirementGamesPlayed,
	RequirementMessages, RequirementVoiceMinutes,
	RequirementQuizScore, RequirementMiniGameWins,
}

func (r RequirementType) Valid() bool {
	for _, known := range RequirementTypes {
		if r == known {
			return true
		}
	}
	return false
}

// ChallengeRequirement is one measurable condition toward completion.
type ChallengeRequirement struct {
	Type   RequirementType `json:"type"`
	Target int             `json:"target"`
}

// Challenge is a longer-lived, progress-tracked objective.
type Challenge struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	Period       PeriodKind             `json:"period"`
	Category     Category               `json:"category"`
	Requirements []ChallengeRequirement `json:"requirements"`
	Reward       RewardTemplate         `json:"reward"`
	StartsAt     time.Time              `json:"startsAt"`
	EndsAt       time.Time              `json:"endsAt"`
	Active       bool                   `json:"active"`
}

// Validate checks challenge fields against their allowed bounds.
func (c Challenge) Validate() error {
	if len(c.Name) < 1 || len(c.Name) > 100 {
		return ErrInvalidChallenge
	}
	if len(c.Description) < 1 || len(c.Description) > 500 {
		return ErrInvalidChallenge
	}
	if !c.Period.Valid() || !c.Category.Valid() {
		return ErrInvalidChallenge
	}
	if len(c.Requirements) == 0 {
		return ErrInvalidChallenge
	}
	for _, req := range c.Requirements {
		if !req.Type.Valid() || req.Target < 1 || req.Target > 10000 {
			return ErrInvalidChallenge
		}
	}
	if c.Reward.XP < 0 || c.Reward.XP > 10000 || c.Reward.Currency < 0 || c.Reward.Currency > 10000 {
		return ErrInvalidChallenge
	}
	if !c.EndsAt.After(c.StartsAt) {
		return ErrInvalidChallenge
	}
	return nil
}

// TracksType reports whether the challenge has a requirement of the given type.
func (c Challenge) TracksType(t RequirementType) bool {
	for _, req := range c.Requirements {
		if req.Type == t {
			return true
		}
	}
	return false
}

// ChallengeProgress tracks one user's accumulated values toward one challenge.
type ChallengeProgress struct {
	UserID      string                  `json:"userId"`
	ChallengeID string                  `json:"challengeId"`
	Values      map[RequirementType]int `json:"values"`
	Completed   bool                    `json:"completed"`
	CompletedAt time.Time               `json:"completedAt,omitempty"`
	Claimed     bool                    `json:"claimed"`
}

// SessionResult is the durable record written for each participant when a
// session ends.
type SessionResult struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Kind      string    `json:"kind"` // "quiz" or "minigame"
	Scope     Scope     `json:"scope"`
	UserID    string    `json:"userId"`
	GameType  string    `json:"gameType,omitempty"`
	Score     int       `json:"score"`
	Correct   int       `json:"correct,omitempty"`
	Total     int       `json:"total,omitempty"`
	Rank      int       `json:"rank"`
	Won       bool      `json:"won"`
	XP        int       `json:"xp"`
	Currency  int       `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}

// RankedResult is one row of a session's final standings.
type RankedResult struct {
	UserID      string   `json:"userId"`
	DisplayName string   `json:"displayName"`
	Score       int      `json:"score"`
	Correct     int      `json:"correct,omitempty"`
	Total       int      `json:"total,omitempty"`
	Streak      int      `json:"streak,omitempty"`
	Rank        int      `json:"rank"`
	XP          int      `json:"xp"`
	Currency    int      `json:"currency"`
	Badges      []string `json:"badges,omitempty"`
}
