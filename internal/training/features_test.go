package training

import (
	"math"
	"testing"

	"workgallery/internal/embedding"
)

func fixtureEmbeddings(t *testing.T, candRows, jobRows int) (*embedding.Matrix, *embedding.Matrix) {
	t.Helper()
	cand := embedding.NewMatrix(candRows, 3)
	jobs := embedding.NewMatrix(jobRows, 3)
	for i := 0; i < candRows; i++ {
		if err := cand.SetRow(i, []float32{1, float32(i), 0}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < jobRows; i++ {
		if err := jobs.SetRow(i, []float32{1, 0, float32(i)}); err != nil {
			t.Fatal(err)
		}
	}
	return cand, jobs
}

func TestPairFeatures(t *testing.T) {
	candidates, jobs := fixtureTables(t)
	candEmb, jobEmb := fixtureEmbeddings(t, candidates.Len(), jobs.Len())

	// Candidate 97 (row 0, Austin, 4y) against job 201 (row 0, Austin).
	fv, err := PairFeatures(Pair{CandidateID: 97, JobID: 201, Label: 1}, candidates, jobs, candEmb, jobEmb)
	if err != nil {
		t.Fatalf("PairFeatures: %v", err)
	}
	if len(fv) != NumFeatures {
		t.Fatalf("expected %d features, got %d", NumFeatures, len(fv))
	}

	wantSim := embedding.Cosine(candEmb.Row(0), jobEmb.Row(0))
	if math.Abs(fv[0]-wantSim) > 1e-12 {
		t.Errorf("similarity = %v, want %v", fv[0], wantSim)
	}
	if fv[1] != 1 {
		t.Errorf("location match = %v, want 1", fv[1])
	}
	// Training gap is measured against the fixed pivot, not the job.
	if fv[2] != 1 {
		t.Errorf("experience gap = %v, want |4-5| = 1", fv[2])
	}
}

func TestPairFeatures_NoLocationMatch(t *testing.T) {
	candidates, jobs := fixtureTables(t)
	candEmb, jobEmb := fixtureEmbeddings(t, candidates.Len(), jobs.Len())

	// Candidate 45 (Denver, 9y) against job 201 (Austin).
	fv, err := PairFeatures(Pair{CandidateID: 45, JobID: 201}, candidates, jobs, candEmb, jobEmb)
	if err != nil {
		t.Fatalf("PairFeatures: %v", err)
	}
	if fv[1] != 0 {
		t.Errorf("location match = %v, want 0", fv[1])
	}
	if fv[2] != 4 {
		t.Errorf("experience gap = %v, want |9-5| = 4", fv[2])
	}
}

func TestPairFeatures_UnknownIDs(t *testing.T) {
	candidates, jobs := fixtureTables(t)
	candEmb, jobEmb := fixtureEmbeddings(t, candidates.Len(), jobs.Len())

	if _, err := PairFeatures(Pair{CandidateID: 999, JobID: 201}, candidates, jobs, candEmb, jobEmb); err == nil {
		t.Fatal("expected error for unknown candidate")
	}
	if _, err := PairFeatures(Pair{CandidateID: 97, JobID: 999}, candidates, jobs, candEmb, jobEmb); err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestBuildDataset(t *testing.T) {
	candidates, jobs := fixtureTables(t)
	candEmb, jobEmb := fixtureEmbeddings(t, candidates.Len(), jobs.Len())

	pairs := SamplePairs(candidates, jobs, DefaultSeed)
	features, labels, groups, err := BuildDataset(pairs, candidates, jobs, candEmb, jobEmb)
	if err != nil {
		t.Fatalf("BuildDataset: %v", err)
	}
	if len(features) != len(pairs) || len(labels) != len(pairs) {
		t.Fatalf("dataset size mismatch: %d features, %d labels, %d pairs",
			len(features), len(labels), len(pairs))
	}

	total := 0
	for _, g := range groups {
		total += g
	}
	if total != len(pairs) {
		t.Fatalf("group sizes sum to %d, want %d", total, len(pairs))
	}
	for i, p := range pairs {
		if labels[i] != p.Label {
			t.Fatalf("label %d out of order", i)
		}
	}
}
