package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/app"
	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/domain"
	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/infra/memory"
	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/infra/postgres"
	pgmigrations "github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/infra/postgres/migrations"
	infraredis "github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/infra/redis"
	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/questions"
)

func TestQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	db := openBun(t, ctx, pgURL)
	defer db.Close()
	seedQuestions(t, ctx, db, sampleQuestions())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	store := postgres.NewStore(db)
	ledger := memory.NewRewardLedger(store)
	progress := memory.NewProgressStore()
	challenges := app.NewChallengeEngine(store, progress, ledger)
	bank := questions.NewBank(questions.NewCachedLoader(postgres.NewQuestionLoader(pool), 5*time.Minute))
	quizzes := app.NewQuizEngine(app.NewRegistry(), bank, ledger, ledger, store, challenges)

	scope := domain.Scope{CommunityID: "guild-1", ChannelID: "trivia"}
	session, err := quizzes.Start(ctx, scope, "u1", domain.QuizSettings{
		QuestionCount:      2,
		SecondsPerQuestion: 30,
		Category:           domain.CategoryPUBG,
		Difficulty:         domain.DifficultyEasy,
	})
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if err := quizzes.Join(session.ID(), "u1", "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}

	view, err := quizzes.Get(session.ID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	correct := correctIndexFor(t, view.Prompt)
	if _, err := quizzes.SubmitAnswer(session.ID(), "u1", correct); err != nil {
		t.Fatalf("answer: %v", err)
	}

	results, err := quizzes.End(ctx, session.ID())
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if len(results) != 1 || results[0].Correct != 1 {
		t.Fatalf("results = %+v", results)
	}

	// one start record plus one per-participant result row
	var count int
	if err := db.NewRaw(`SELECT count(*) FROM session_results WHERE session_id = ?`, session.ID()).Scan(ctx, &count); err != nil {
		t.Fatalf("count results: %v", err)
	}
	if count != 2 {
		t.Fatalf("session_results rows = %d, want 2", count)
	}

	// currency landed in the durable balance
	var coins int64
	if err := db.NewRaw(`SELECT coins FROM user_balances WHERE user_id = ?`, "u1").Scan(ctx, &coins); err != nil {
		t.Fatalf("read balance: %v", err)
	}
	if coins != int64(results[0].Currency) {
		t.Fatalf("coins = %d, want %d", coins, results[0].Currency)
	}
}

func TestChallengeClaimEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := openBun(t, ctx, pgURL)
	defer db.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	store := postgres.NewStore(db)
	ledger := memory.NewRewardLedger(store)
	progress := infraredis.NewProgressStore(redisClient)
	challenges := app.NewChallengeEngine(store, progress, ledger)

	now := time.Now().UTC()
	ch, err := challenges.Create(ctx, domain.Challenge{
		Name:        "Chatterbox",
		Description: "Send 20 messages today.",
		Period:      domain.PeriodDaily,
		Category:    domain.CategoryCommunity,
		Requirements: []domain.ChallengeRequirement{
			{Type: domain.RequirementMessages, Target: 20},
		},
		Reward:   domain.RewardTemplate{XP: 100, Currency: 50},
		StartsAt: now,
		EndsAt:   now.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// a fresh engine sees the persisted challenge
	reloaded := app.NewChallengeEngine(store, progress, ledger)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := reloaded.Get(ch.ID); !ok {
		t.Fatalf("challenge %s not loaded from postgres", ch.ID)
	}

	for i := 0; i < 4; i++ {
		if err := reloaded.UpdateProgress(ctx, "u1", domain.RequirementMessages, 5); err != nil {
			t.Fatalf("progress #%d: %v", i, err)
		}
	}
	reward, err := reloaded.Claim(ctx, "u1", ch.ID)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if reward.XP != 100 {
		t.Fatalf("reward = %+v", reward)
	}
	if _, err := reloaded.Claim(ctx, "u1", ch.ID); err != domain.ErrAlreadyClaimed {
		t.Fatalf("second claim: err = %v, want ErrAlreadyClaimed", err)
	}

	var coins int64
	if err := db.NewRaw(`SELECT coins FROM user_balances WHERE user_id = ?`, "u1").Scan(ctx, &coins); err != nil {
		t.Fatalf("read balance: %v", err)
	}
	if coins != 50 {
		t.Fatalf("coins = %d, want 50", coins)
	}
}

func openBun(t *testing.T, ctx context.Context, dsn string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedQuestions(t *testing.T, ctx context.Context, db *bun.DB, pool []domain.Question) {
	t.Helper()
	for _, q := range pool {
		data, err := json.Marshal(q)
		if err != nil {
			t.Fatalf("marshal question: %v", err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO questions (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, q.ID, string(data)); err != nil {
			t.Fatalf("insert question: %v", err)
		}
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectIndex: 1, Category: domain.CategoryPUBG, Difficulty: domain.DifficultyEasy},
		{ID: "q2", Prompt: "What is 3 + 3?", Options: []string{"6", "7", "8"}, CorrectIndex: 0, Category: domain.CategoryPUBG, Difficulty: domain.DifficultyEasy},
	}
}

func correctIndexFor(t *testing.T, prompt string) int {
	t.Helper()
	for _, q := range sampleQuestions() {
		if q.Prompt == prompt {
			return q.CorrectIndex
		}
	}
	t.Fatalf("unknown prompt %q", prompt)
	return -1
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "engine", "POSTGRES_PASSWORD": "enginepass", "POSTGRES_DB": "enginedb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://engine:enginepass@%s:%s/enginedb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
