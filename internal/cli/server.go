package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/infra/memory"
	pgloader "trivia-quiz-service/internal/infra/postgres"
	redisstore "trivia-quiz-service/internal/infra/redis"
	"trivia-quiz-service/internal/source"
	transport "trivia-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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
	log := newLogger(cfg)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
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
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	adapter, err := newQuestionAdapter(cfg, redisClient, pool, log)
	if err != nil {
		return err
	}

	var store app.SessionRepository
	var results app.ResultStore
	resultTTL := config.TTLDuration(cfg.Results.TTL, 24*time.Hour)
	if redisClient != nil {
		store = redisstore.NewSessionStore(redisClient, redisTTL)
		results = redisstore.NewResultStore(redisClient, resultTTL)
	} else {
		store = memory.NewSessionStore()
		results = memory.NewResultStore()
	}
	service := app.NewQuizService(store, adapter, results, log)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service, log, cfg.Server.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newQuestionAdapter wires the trivia API (behind a pool cache) as primary source and the
// Postgres question bank or the offline document as secondary.
func newQuestionAdapter(cfg config.Config, redisClient *redis.Client, pool *pgxpool.Pool, log *logrus.Logger) (*source.Adapter, error) {
	apiURL := cfg.Trivia.APIURL
	if apiURL == "" {
		apiURL = source.DefaultOpenTDBURL
	}
	client := &http.Client{Timeout: config.TTLDuration(cfg.Trivia.Timeout, 10*time.Second)}
	opentdb := source.NewOpenTDB(apiURL, client)

	cacheTTL := config.TTLDuration(cfg.Trivia.CacheTTL, 10*time.Minute)
	var primary source.PoolLoader
	if redisClient != nil {
		primary = redisstore.NewPoolCache(redisClient, opentdb, cacheTTL, log)
	} else {
		primary = memory.NewPoolCache(opentdb, cacheTTL)
	}

	var secondary source.PoolLoader
	switch {
	case pool != nil:
		secondary = pgloader.NewBankLoader(pool)
	default:
		offline, err := offlineSource(cfg.Trivia.OfflinePath)
		if err != nil {
			return nil, err
		}
		secondary = offline
	}

	return source.NewAdapter(primary, secondary, log, source.WithOverFetch(cfg.Trivia.OverFetch)), nil
}
