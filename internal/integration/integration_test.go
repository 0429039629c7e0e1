package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	logtest "github.com/sirupsen/logrus/hooks/test"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	pgloader "trivia-quiz-service/internal/infra/postgres"
	pgmigrations "trivia-quiz-service/internal/infra/postgres/migrations"
	infraredis "trivia-quiz-service/internal/infra/redis"
	"trivia-quiz-service/internal/source"
)

func TestQuizFallsBackToPostgresBank(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedBanks(t, ctx, pgURL, sampleBanks())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	// The trivia API is down, so every quiz is served from the Postgres bank.
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer api.Close()

	logger, _ := logtest.NewNullLogger()
	primary := infraredis.NewPoolCache(redisClient, source.NewOpenTDB(api.URL, api.Client()), 5*time.Minute, logger)
	adapter := source.NewAdapter(primary, pgloader.NewBankLoader(pool), logger)
	service := app.NewQuizService(
		infraredis.NewSessionStore(redisClient, 5*time.Minute),
		adapter,
		infraredis.NewResultStore(redisClient, time.Hour),
		logger,
	)

	view, err := service.Start(ctx, domain.DifficultyMedium)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	id := view.SessionID
	if view.Total != domain.SampleSize || view.RemainingSeconds != 30 {
		t.Fatalf("unexpected first view %+v", view)
	}

	for view.Status == domain.StatusActive {
		if _, err := service.SelectAnswer(ctx, id, correctOption(t, view)); err != nil {
			t.Fatalf("answer: %v", err)
		}
		if view, err = service.Advance(ctx, id); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	if view.Score != domain.SampleSize {
		t.Fatalf("expected perfect score, got %d", view.Score)
	}

	review, err := service.Review(ctx, id)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if review.Accuracy != 100 || len(review.Items) != domain.SampleSize {
		t.Fatalf("unexpected review %+v", review)
	}
	if err := service.Restart(ctx, id); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if _, err := service.Review(ctx, id); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected result cleared, got %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
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
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
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

func seedBanks(t *testing.T, ctx context.Context, dsn string, banks map[domain.Difficulty][]domain.RawQuestion) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, err := pgloader.SeedBanks(ctx, db, banks); err != nil {
		t.Fatalf("seed banks: %v", err)
	}
}

// sampleBanks builds buckets whose correct answer is always "Correct N".
func sampleBanks() map[domain.Difficulty][]domain.RawQuestion {
	banks := make(map[domain.Difficulty][]domain.RawQuestion)
	for _, d := range domain.Difficulties {
		for i := 1; i <= 15; i++ {
			banks[d] = append(banks[d], domain.RawQuestion{
				Category:         "Science",
				Question:         fmt.Sprintf("%s bank question %d", d, i),
				CorrectAnswer:    fmt.Sprintf("Correct %d", i),
				IncorrectAnswers: []string{"Wrong A", "Wrong B", "Wrong C"},
			})
		}
	}
	return banks
}

func correctOption(t *testing.T, view domain.SessionView) int {
	t.Helper()
	for i, option := range view.Question.Options {
		if strings.HasPrefix(option, "Correct") {
			return i
		}
	}
	t.Fatalf("no correct option in %v", view.Question.Options)
	return -1
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
