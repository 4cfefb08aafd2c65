package usecase

import (
	"context"
	"math"
	"sort"

	"workgallery/internal/bundle"
	"workgallery/internal/embedding"
)

const (
	// DefaultTopK is applied when the caller asks for zero or fewer results.
	DefaultTopK = 10

	// Skill texts are truncated at fixed lengths in every response.
	maxJobSkillChars       = 300
	maxCandidateSkillChars = 500

	defaultJobTitle   = "Software Engineer"
	defaultJobCompany = "Tech Corp"

	notFoundExampleIDs = 4
)

type CandidateSummary struct {
	Skills          string
	ExperienceYears int
	Location        string
}

type RecommendedJob struct {
	JobID           int64
	Title           string
	Company         string
	RequiredSkills  string
	Location        string
	Score           float64
	SkillSimilarity float64
	LocationMatch   bool
}

type RecommendationResult struct {
	CandidateID     int64
	Candidate       CandidateSummary
	Recommendations []RecommendedJob
	TotalJobsScored int
}

type RecommendationUsecase interface {
	Recommend(ctx context.Context, candidateID int64, topK int) (RecommendationResult, error)
}

// Recommendation scores every job in the loaded bundle against one candidate
// and returns the top-k by ranker score. The bundle is immutable after load,
// so Recommend is read-only and safe for concurrent callers; every call
// builds its own local feature matrix.
type Recommendation struct {
	bundle *bundle.Bundle
}

func NewRecommendationUsecase(b *bundle.Bundle) *Recommendation {
	return &Recommendation{bundle: b}
}

func (u *Recommendation) Recommend(_ context.Context, candidateID int64, topK int) (RecommendationResult, error) {
	b := u.bundle
	cand, candRow, ok := b.Candidates.Lookup(candidateID)
	if !ok {
		return RecommendationResult{}, &CandidateNotFoundError{
			CandidateID: candidateID,
			ExampleIDs:  b.Candidates.ExampleIDs(notFoundExampleIDs),
		}
	}

	totalJobs := b.Jobs.Len()
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > totalJobs {
		topK = totalJobs
	}

	candVec := b.CandidateEmbeddings.Row(candRow)

	// Serving-time features, one row per job: cosine similarity of the
	// stored embeddings, exact location equality, and the gap between the
	// job's stated experience requirement (default 5) and the candidate's
	// actual experience. Training measures the gap against a constant
	// instead; that asymmetry is preserved behaviour.
	sims := make([]float64, totalJobs)
	locMatch := make([]bool, totalJobs)
	features := make([][]float64, totalJobs)
	for i, job := range b.Jobs.Rows() {
		sims[i] = embedding.Cosine(candVec, b.JobEmbeddings.Row(i))
		locMatch[i] = job.Location == cand.Location

		lm := 0.0
		if locMatch[i] {
			lm = 1.0
		}
		gap := float64(job.RequiredExperience() - cand.ExperienceYears)
		if gap < 0 {
			gap = -gap
		}
		features[i] = []float64{sims[i], lm, gap}
	}

	scores, err := b.Model.Predict(features)
	if err != nil {
		return RecommendationResult{}, ErrInternal
	}

	// Descending score; ties keep ascending job row order (stable sort),
	// which makes repeated calls byte-identical.
	order := make([]int, totalJobs)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	recs := make([]RecommendedJob, 0, topK)
	for _, row := range order[:topK] {
		job := b.Jobs.Row(row)
		recs = append(recs, RecommendedJob{
			JobID:           job.ID,
			Title:           orDefault(job.Title, defaultJobTitle),
			Company:         orDefault(job.Company, defaultJobCompany),
			RequiredSkills:  truncate(job.RequiredSkillList, maxJobSkillChars),
			Location:        job.Location,
			Score:           round4(scores[row]),
			SkillSimilarity: round4(sims[row]),
			LocationMatch:   locMatch[row],
		})
	}

	return RecommendationResult{
		CandidateID: cand.ID,
		Candidate: CandidateSummary{
			Skills:          truncate(cand.SkillList, maxCandidateSkillChars),
			ExperienceYears: cand.ExperienceYears,
			Location:        cand.Location,
		},
		Recommendations: recs,
		TotalJobsScored: totalJobs,
	}, nil
}

// Stats reports bundle-level counts for the service banner.
func (u *Recommendation) Stats() (candidates, jobs int, modelVersion string) {
	return u.bundle.Candidates.Len(), u.bundle.Jobs.Len(), u.bundle.Manifest.ModelVersion
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
