package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/app"
	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/config"
	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/infra/memory"
	infrapg "github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/infra/postgres"
	infraredis "github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/infra/redis"
	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/questions"
	transport "github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the session engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var store app.Store = memory.NewStore()
	var questionLoader questions.Loader = questions.NewStaticLoader(questions.DefaultCatalog())
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		questionLoader = infrapg.NewQuestionLoader(pool)

		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()
		store = infrapg.NewStore(db)
	}

	questionTTL := config.Duration(cfg.Engine.QuestionTTL, 10*time.Minute)
	bank := questions.NewBank(questions.NewCachedLoader(questionLoader, questionTTL))

	var progressStore app.ProgressStore = memory.NewProgressStore()
	if redisClient != nil {
		progressStore = infraredis.NewProgressStore(redisClient)
	}

	rewards := memory.NewRewardLedger(store)
	registry := app.NewRegistry()

	challengeEngine := app.NewChallengeEngine(store, progressStore, rewards)
	if err := challengeEngine.Load(ctx); err != nil {
		return err
	}
	quizEngine := app.NewQuizEngine(registry, bank, rewards, rewards, store, challengeEngine)
	gameEngine := app.NewMiniGameEngine(registry, rewards, rewards, store, challengeEngine, app.DefaultMiniGames())

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	tickInterval := config.Duration(cfg.Engine.SchedulerInterval, time.Hour)
	if _, err := scheduler.NewJob(
		gocron.DurationJob(tickInterval),
		gocron.NewTask(func() {
			challengeEngine.Tick(context.Background(), time.Now())
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	); err != nil {
		return err
	}
	cleanupInterval := config.Duration(cfg.Engine.CleanupInterval, 10*time.Minute)
	if _, err := scheduler.NewJob(
		gocron.DurationJob(cleanupInterval),
		gocron.NewTask(func() {
			if removed := registry.Cleanup(time.Now()); removed > 0 {
				log.Printf("registry cleanup removed %d stale sessions", removed)
			}
		}),
	); err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			log.Printf("scheduler shutdown: %v", err)
		}
	}()

	wsHandler := transport.NewWSHandler(quizEngine, gameEngine, challengeEngine)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting session engine on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
