package usecase

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"workgallery/internal/bundle"
	"workgallery/internal/embedding"
	"workgallery/internal/ranker"
	"workgallery/internal/snapshot"
)

// locationModel scores 1 for a location match and 0 otherwise, which makes
// expected orderings easy to reason about.
func locationModel() *ranker.Model {
	return &ranker.Model{
		Params:      ranker.DefaultParams(),
		NumFeatures: 3,
		Trees: []ranker.Tree{
			{Nodes: []ranker.Node{
				{Feature: 1, Threshold: 0.5, Left: 1, Right: 2},
				{Leaf: true, Value: 0},
				{Leaf: true, Value: 1},
			}},
		},
	}
}

// constantModel gives every job the same score, exposing the tie-break.
func constantModel() *ranker.Model {
	return &ranker.Model{
		Params:      ranker.DefaultParams(),
		NumFeatures: 3,
		Trees: []ranker.Tree{
			{Nodes: []ranker.Node{{Leaf: true, Value: 0.5}}},
		},
	}
}

func fixtureBundle(t *testing.T, model *ranker.Model) *bundle.Bundle {
	t.Helper()

	candidates, err := snapshot.NewCandidateTable([]snapshot.Candidate{
		{ID: 97, SkillList: "go, sql, kubernetes", ExperienceYears: 4, Location: "Austin"},
		{ID: 12, SkillList: strings.Repeat("python ", 100), ExperienceYears: 2, Location: "Denver"},
		{ID: 45, SkillList: "sql", ExperienceYears: 9, Location: "Remote"},
	})
	if err != nil {
		t.Fatal(err)
	}

	jobs, err := snapshot.NewJobTable([]snapshot.Job{
		{ID: 201, RequiredSkillList: "go", Location: "Austin", Title: "Backend Engineer", Company: "Acme"},
		{ID: 202, RequiredSkillList: strings.Repeat("x", 400), Location: "Denver"},
		{ID: 203, RequiredSkillList: "sql", Location: "austin"},
		{ID: 204, RequiredSkillList: "rust", Location: "Boston"},
		{ID: 205, RequiredSkillList: "go, sql", Location: "Austin"},
		{ID: 206, RequiredSkillList: "java", Location: "Denver"},
	})
	if err != nil {
		t.Fatal(err)
	}

	candEmb := embedding.NewMatrix(candidates.Len(), 4)
	for i := 0; i < candidates.Len(); i++ {
		candEmb.SetRow(i, []float32{1, float32(i), 0.5, 0})
	}
	jobEmb := embedding.NewMatrix(jobs.Len(), 4)
	for i := 0; i < jobs.Len(); i++ {
		jobEmb.SetRow(i, []float32{1, 0, float32(i) * 0.25, 0.1})
	}

	return &bundle.Bundle{
		Manifest:            bundle.Manifest{ModelVersion: "v1"},
		Model:               model,
		Candidates:          candidates,
		Jobs:                jobs,
		CandidateEmbeddings: candEmb,
		JobEmbeddings:       jobEmb,
	}
}

func TestRecommend_ReturnsMinTopKAndTotal(t *testing.T) {
	uc := NewRecommendationUsecase(fixtureBundle(t, locationModel()))

	res, err := uc.Recommend(context.Background(), 97, 5)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(res.Recommendations) != 5 {
		t.Fatalf("expected 5 recommendations, got %d", len(res.Recommendations))
	}
	if res.TotalJobsScored != 6 {
		t.Fatalf("total jobs scored = %d, want 6", res.TotalJobsScored)
	}
}

func TestRecommend_TopKLargerThanJobs(t *testing.T) {
	uc := NewRecommendationUsecase(fixtureBundle(t, locationModel()))

	res, err := uc.Recommend(context.Background(), 97, 100)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(res.Recommendations) != 6 {
		t.Fatalf("expected all 6 jobs, got %d", len(res.Recommendations))
	}
}

func TestRecommend_NonPositiveTopKDefaults(t *testing.T) {
	uc := NewRecommendationUsecase(fixtureBundle(t, locationModel()))

	res, err := uc.Recommend(context.Background(), 97, 0)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	// DefaultTopK exceeds the 6-job snapshot, so all jobs come back.
	if len(res.Recommendations) != 6 {
		t.Fatalf("expected all 6 jobs for default top_k, got %d", len(res.Recommendations))
	}
}

func TestRecommend_ScoresNonIncreasing(t *testing.T) {
	uc := NewRecommendationUsecase(fixtureBundle(t, locationModel()))

	res, err := uc.Recommend(context.Background(), 97, 6)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for i := 1; i < len(res.Recommendations); i++ {
		if res.Recommendations[i].Score > res.Recommendations[i-1].Score {
			t.Fatalf("scores increase at %d: %v", i, res.Recommendations)
		}
	}
	// The location model puts the Austin jobs first for candidate 97.
	if res.Recommendations[0].JobID != 201 || res.Recommendations[1].JobID != 205 {
		t.Fatalf("unexpected leading jobs: %d, %d",
			res.Recommendations[0].JobID, res.Recommendations[1].JobID)
	}
}

func TestRecommend_TieBreakIsSnapshotOrder(t *testing.T) {
	uc := NewRecommendationUsecase(fixtureBundle(t, constantModel()))

	res, err := uc.Recommend(context.Background(), 97, 6)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	want := []int64{201, 202, 203, 204, 205, 206}
	for i, r := range res.Recommendations {
		if r.JobID != want[i] {
			t.Fatalf("tie-break broke snapshot order at %d: got %d want %d", i, r.JobID, want[i])
		}
	}
}

func TestRecommend_UnknownCandidate(t *testing.T) {
	uc := NewRecommendationUsecase(fixtureBundle(t, locationModel()))

	_, err := uc.Recommend(context.Background(), 999999, 5)
	var notFound *CandidateNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected CandidateNotFoundError, got %v", err)
	}
	if notFound.CandidateID != 999999 {
		t.Fatalf("error names wrong id: %d", notFound.CandidateID)
	}
	msg := notFound.Error()
	if !strings.Contains(msg, "999999") || !strings.Contains(msg, "97") {
		t.Fatalf("hint is missing ids: %q", msg)
	}
}

func TestRecommend_Idempotent(t *testing.T) {
	uc := NewRecommendationUsecase(fixtureBundle(t, locationModel()))

	a, err := uc.Recommend(context.Background(), 97, 5)
	if err != nil {
		t.Fatal(err)
	}
	b, err := uc.Recommend(context.Background(), 97, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical calls returned different results")
	}
}

func TestRecommend_LocationMatchIsExact(t *testing.T) {
	b := fixtureBundle(t, locationModel())
	uc := NewRecommendationUsecase(b)

	res, err := uc.Recommend(context.Background(), 97, 6)
	if err != nil {
		t.Fatal(err)
	}
	cand, _, _ := b.Candidates.Lookup(97)
	for _, r := range res.Recommendations {
		job, _, _ := b.Jobs.Lookup(r.JobID)
		want := job.Location == cand.Location
		if r.LocationMatch != want {
			t.Fatalf("job %d location_match = %v, want %v", r.JobID, r.LocationMatch, want)
		}
		// "austin" must not match "Austin".
		if r.JobID == 203 && r.LocationMatch {
			t.Fatal("case-insensitive location match")
		}
	}
}

func TestRecommend_SkillSimilarityMatchesEmbeddings(t *testing.T) {
	b := fixtureBundle(t, locationModel())
	uc := NewRecommendationUsecase(b)

	res, err := uc.Recommend(context.Background(), 97, 6)
	if err != nil {
		t.Fatal(err)
	}
	_, candRow, _ := b.Candidates.Lookup(97)
	for _, r := range res.Recommendations {
		if r.SkillSimilarity < -1 || r.SkillSimilarity > 1 {
			t.Fatalf("similarity out of range: %v", r.SkillSimilarity)
		}
		_, jobRow, _ := b.Jobs.Lookup(r.JobID)
		want := embedding.Cosine(b.CandidateEmbeddings.Row(candRow), b.JobEmbeddings.Row(jobRow))
		want = math.Round(want*10000) / 10000
		if r.SkillSimilarity != want {
			t.Fatalf("job %d similarity = %v, want %v", r.JobID, r.SkillSimilarity, want)
		}
	}
}

func TestRecommend_DisplayDefaultsAndTruncation(t *testing.T) {
	uc := NewRecommendationUsecase(fixtureBundle(t, locationModel()))

	res, err := uc.Recommend(context.Background(), 12, 6)
	if err != nil {
		t.Fatal(err)
	}

	byID := map[int64]RecommendedJob{}
	for _, r := range res.Recommendations {
		byID[r.JobID] = r
	}

	if j := byID[201]; j.Title != "Backend Engineer" || j.Company != "Acme" {
		t.Fatalf("stored display strings overridden: %+v", j)
	}
	if j := byID[202]; j.Title != "Software Engineer" || j.Company != "Tech Corp" {
		t.Fatalf("missing display defaults: %+v", j)
	}
	if j := byID[202]; len([]rune(j.RequiredSkills)) != 300 {
		t.Fatalf("job skills not truncated to 300, got %d", len([]rune(j.RequiredSkills)))
	}
	if got := len([]rune(res.Candidate.Skills)); got > 500 {
		t.Fatalf("candidate skills not truncated to 500, got %d", got)
	}
}
