package cli

import (
	"context"

	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/infra/postgres"
	"trivia-quiz-service/internal/source"
)

// NewSeedCmd loads an offline question document into the question_banks table.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load offline questions into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "question document to load (defaults to trivia.offline_path or the bundled set)")
	return cmd
}

func runSeed(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	if file == "" {
		file = cfg.Trivia.OfflinePath
	}
	offline, err := offlineSource(file)
	if err != nil {
		return err
	}
	buckets, err := offline.Document()
	if err != nil {
		return err
	}

	db, err := openBun(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrateDB(ctx, db, log); err != nil {
		return err
	}
	n, err := postgres.SeedBanks(ctx, db, buckets)
	if err != nil {
		return err
	}
	log.WithField("banks", n).Info("question banks seeded")
	return nil
}

func offlineSource(path string) (*source.Offline, error) {
	if path == "" {
		return source.DefaultOffline(), nil
	}
	return source.NewOfflineFile(path)
}
