package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"workgallery/internal/bundle"
	"workgallery/internal/embedding"
	"workgallery/internal/ranker"
	"workgallery/internal/snapshot"
)

var (
	ErrNoCandidates = errors.New("candidate table is empty")
	ErrNoJobs       = errors.New("job table is empty")
)

type PipelineConfig struct {
	Seed           int64
	Params         ranker.Params
	OutputDir      string
	ModelVersion   string
	EmbeddingModel string
}

// Pipeline runs the offline stages end to end: embed, sample, featurize,
// train, persist. It owns no state between runs.
type Pipeline struct {
	embedder embedding.Embedder
	logger   *zap.Logger
}

func NewPipeline(embedder embedding.Embedder, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{embedder: embedder, logger: logger}
}

// Run trains a model bundle from the given snapshots and, when
// cfg.OutputDir is set, persists it. Empty input tables and a training set
// without a single positive pair abort the run.
func (p *Pipeline) Run(
	ctx context.Context,
	candidates *snapshot.CandidateTable,
	jobs *snapshot.JobTable,
	cfg PipelineConfig,
) (*bundle.Bundle, error) {
	if candidates == nil || candidates.Len() == 0 {
		return nil, ErrNoCandidates
	}
	if jobs == nil || jobs.Len() == 0 {
		return nil, ErrNoJobs
	}
	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}

	p.logger.Info("loaded snapshots",
		zap.Int("candidates", candidates.Len()),
		zap.Int("jobs", jobs.Len()),
	)

	candTexts := make([]string, 0, candidates.Len())
	for _, c := range candidates.Rows() {
		candTexts = append(candTexts, embedding.EntityText(c.SkillList, c.Location))
	}
	jobTexts := make([]string, 0, jobs.Len())
	for _, j := range jobs.Rows() {
		jobTexts = append(jobTexts, embedding.EntityText(j.RequiredSkillList, j.Location))
	}

	candEmb, err := p.embedder.Embed(ctx, candTexts)
	if err != nil {
		return nil, fmt.Errorf("embed candidates: %w", err)
	}
	jobEmb, err := p.embedder.Embed(ctx, jobTexts)
	if err != nil {
		return nil, fmt.Errorf("embed jobs: %w", err)
	}
	p.logger.Info("computed embeddings", zap.Int("dims", candEmb.Cols()))

	pairs := SamplePairs(candidates, jobs, cfg.Seed)
	positives := 0
	for _, pr := range pairs {
		if pr.Label > 0 {
			positives++
		}
	}
	p.logger.Info("sampled training pairs",
		zap.Int("pairs", len(pairs)),
		zap.Int("positives", positives),
	)

	features, labels, groups, err := BuildDataset(pairs, candidates, jobs, candEmb, jobEmb)
	if err != nil {
		return nil, fmt.Errorf("build dataset: %w", err)
	}

	model, err := ranker.Train(features, labels, groups, cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("train ranker: %w", err)
	}

	scores, err := model.Predict(features)
	if err != nil {
		return nil, fmt.Errorf("evaluate ranker: %w", err)
	}
	ndcg := ranker.NDCG(scores, labels, groups, model.Params.NDCGAt)
	p.logger.Info("trained ranker",
		zap.Int("trees", len(model.Trees)),
		zap.Float64("train_ndcg", ndcg),
	)

	b := &bundle.Bundle{
		Manifest: bundle.Manifest{
			ModelVersion:   cfg.ModelVersion,
			TrainedAt:      time.Now().UTC(),
			EmbeddingModel: cfg.EmbeddingModel,
			EmbeddingDims:  candEmb.Cols(),
			Candidates:     candidates.Len(),
			Jobs:           jobs.Len(),
			TrainingPairs:  len(pairs),
			TrainNDCG:      ndcg,
		},
		Model:               model,
		Candidates:          candidates,
		Jobs:                jobs,
		CandidateEmbeddings: candEmb,
		JobEmbeddings:       jobEmb,
	}

	if cfg.OutputDir != "" {
		if err := bundle.Save(cfg.OutputDir, b); err != nil {
			return nil, fmt.Errorf("save bundle: %w", err)
		}
		p.logger.Info("saved model bundle", zap.String("dir", cfg.OutputDir))
	}
	return b, nil
}
