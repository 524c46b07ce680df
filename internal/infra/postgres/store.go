package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"
)

// Store is the bun-backed implementation of app.Store.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

type challengeRow struct {
	bun.BaseModel `bun:"table:challenges,alias:c"`

	ID             string    `bun:"id,pk"`
	Name           string    `bun:"name,notnull"`
	Description    string    `bun:"description,notnull"`
	Period         string    `bun:"period,notnull"`
	Category       string    `bun:"category,notnull"`
	Requirements   []byte    `bun:"requirements,type:jsonb,notnull"`
	RewardXP       int       `bun:"reward_xp,notnull"`
	RewardCurrency int       `bun:"reward_currency,notnull"`
	RewardBadges   []byte    `bun:"reward_badges,type:jsonb"`
	StartsAt       time.Time `bun:"starts_at,notnull"`
	EndsAt         time.Time `bun:"ends_at,notnull"`
	Active         bool      `bun:"active,notnull"`
}

type sessionResultRow struct {
	bun.BaseModel `bun:"table:session_results,alias:sr"`

	ID          string    `bun:"id,pk"`
	SessionID   string    `bun:"session_id,notnull"`
	Kind        string    `bun:"kind,notnull"`
	CommunityID string    `bun:"community_id,notnull"`
	ChannelID   string    `bun:"channel_id,notnull"`
	UserID      string    `bun:"user_id,notnull"`
	GameType    string    `bun:"game_type"`
	Score       int       `bun:"score,notnull"`
	Correct     int       `bun:"correct,notnull"`
	Total       int       `bun:"total,notnull"`
	Rank        int       `bun:"rank,notnull"`
	Won         bool      `bun:"won,notnull"`
	XP          int       `bun:"xp,notnull"`
	Currency    int       `bun:"currency,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

type userBalanceRow struct {
	bun.BaseModel `bun:"table:user_balances,alias:ub"`

	UserID string `bun:"user_id,pk"`
	Coins  int64  `bun:"coins,notnull"`
}

func (s *Store) SaveChallenge(ctx context.Context, ch domain.Challenge) error {
	requirements, err := json.Marshal(ch.Requirements)
	if err != nil {
		return fmt.Errorf("marshal requirements: %w", err)
	}
	badges, err := json.Marshal(ch.Reward.BadgeIDs)
	if err != nil {
		return fmt.Errorf("marshal badges: %w", err)
	}
	row := &challengeRow{
		ID:             ch.ID,
		Name:           ch.Name,
		Description:    ch.Description,
		Period:         string(ch.Period),
		Category:       string(ch.Category),
		Requirements:   requirements,
		RewardXP:       ch.Reward.XP,
		RewardCurrency: ch.Reward.Currency,
		RewardBadges:   badges,
		StartsAt:       ch.StartsAt,
		EndsAt:         ch.EndsAt,
		Active:         ch.Active,
	}
	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("active = EXCLUDED.active").
		Set("ends_at = EXCLUDED.ends_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save challenge: %w", err)
	}
	return nil
}

func (s *Store) GetChallenge(ctx context.Context, id string) (domain.Challenge, error) {
	var row challengeRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("get challenge: %w", err)
	}
	return challengeFromRow(row)
}

func (s *Store) LoadActiveChallenges(ctx context.Context) ([]domain.Challenge, error) {
	var rows []challengeRow
	if err := s.db.NewSelect().Model(&rows).Where("active").Scan(ctx); err != nil {
		return nil, fmt.Errorf("load challenges: %w", err)
	}
	out := make([]domain.Challenge, 0, len(rows))
	for _, row := range rows {
		ch, err := challengeFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}

func challengeFromRow(row challengeRow) (domain.Challenge, error) {
	ch := domain.Challenge{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Period:      domain.PeriodKind(row.Period),
		Category:    domain.Category(row.Category),
		Reward: domain.RewardTemplate{
			XP:       row.RewardXP,
			Currency: row.RewardCurrency,
		},
		StartsAt: row.StartsAt,
		EndsAt:   row.EndsAt,
		Active:   row.Active,
	}
	if err := json.Unmarshal(row.Requirements, &ch.Requirements); err != nil {
		return domain.Challenge{}, fmt.Errorf("unmarshal requirements for %s: %w", row.ID, err)
	}
	if len(row.RewardBadges) > 0 {
		if err := json.Unmarshal(row.RewardBadges, &ch.Reward.BadgeIDs); err != nil {
			return domain.Challenge{}, fmt.Errorf("unmarshal badges for %s: %w", row.ID, err)
		}
	}
	return ch, nil
}

func (s *Store) DeactivateChallenge(ctx context.Context, id string) error {
	res, err := s.db.NewUpdate().
		Model((*challengeRow)(nil)).
		Set("active = false").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("deactivate challenge: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrChallengeNotFound
	}
	return nil
}

func (s *Store) SaveSessionResult(ctx context.Context, result domain.SessionResult) error {
	row := &sessionResultRow{
		ID:          result.ID,
		SessionID:   result.SessionID,
		Kind:        result.Kind,
		CommunityID: result.Scope.CommunityID,
		ChannelID:   result.Scope.ChannelID,
		UserID:      result.UserID,
		GameType:    result.GameType,
		Score:       result.Score,
		Correct:     result.Correct,
		Total:       result.Total,
		Rank:        result.Rank,
		Won:         result.Won,
		XP:          result.XP,
		Currency:    result.Currency,
		CreatedAt:   result.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("save session result: %w", err)
	}
	return nil
}

func (s *Store) UpsertUserCurrency(ctx context.Context, userID string, delta int64) error {
	row := &userBalanceRow{UserID: userID, Coins: delta}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("coins = ub.coins + EXCLUDED.coins").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}
