package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"workgallery/internal/config"
	"workgallery/internal/database/postgres"
	"workgallery/internal/embedding"
	"workgallery/internal/logger"
	"workgallery/internal/ranker"
	"workgallery/internal/repository"
	"workgallery/internal/snapshot"
	"workgallery/internal/training"
)

var (
	flagOutputDir string
	flagDebug     bool
	flagJSON      bool

	rootCmd = &cobra.Command{
		Use:   "trainer",
		Short: "trainer runs the offline recommendation pipeline: embed, sample, train, persist",
		RunE:  run,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&flagOutputDir, "output", "o", "", "bundle output directory (default MODEL_DIR)")
	rootCmd.Flags().BoolVarP(&flagDebug, "debug", "d", false, "verbose/debug output")
	rootCmd.Flags().BoolVarP(&flagJSON, "json", "j", false, "json format for logging")
}

func run(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireForTrainer(); err != nil {
		return err
	}

	zl, err := logger.New(flagJSON, flagDebug || cfg.App.Debug)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer zl.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	candidates, jobs, err := loadFeatureTables(ctx, cfg, zl)
	if err != nil {
		return err
	}

	embedder, err := embedding.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Dimensions)
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}

	outputDir := flagOutputDir
	if outputDir == "" {
		outputDir = cfg.App.ModelDir
	}

	pipeline := training.NewPipeline(embedder, zl)
	_, err = pipeline.Run(ctx, candidates, jobs, training.PipelineConfig{
		Seed:           cfg.Trainer.Seed,
		Params:         ranker.DefaultParams(),
		OutputDir:      outputDir,
		ModelVersion:   cfg.Trainer.ModelVersion,
		EmbeddingModel: cfg.Gemini.Model,
	})
	return err
}

// loadFeatureTables reads the warehouse when a DSN is configured, otherwise
// falls back to the snapshot files.
func loadFeatureTables(ctx context.Context, cfg config.Config, zl *zap.Logger) (*snapshot.CandidateTable, *snapshot.JobTable, error) {
	if cfg.Database.DSN != "" {
		pool, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect warehouse: %w", err)
		}
		defer pool.Close()

		zl.Info("extracting feature tables from warehouse")
		repo := repository.NewFeatureRepository(pool)
		candidates, err := repo.CandidateFeatures(ctx)
		if err != nil {
			return nil, nil, err
		}
		jobs, err := repo.JobFeatures(ctx)
		if err != nil {
			return nil, nil, err
		}
		return candidates, jobs, nil
	}

	zl.Info("loading snapshot files",
		zap.String("candidates", cfg.Trainer.CandidatesFile),
		zap.String("jobs", cfg.Trainer.JobsFile),
	)
	candidates, err := snapshot.LoadCandidates(cfg.Trainer.CandidatesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load candidates: %w", err)
	}
	jobs, err := snapshot.LoadJobs(cfg.Trainer.JobsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load jobs: %w", err)
	}
	return candidates, jobs, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.SetFlags(0)
		log.Println(err)
		os.Exit(1)
	}
}
