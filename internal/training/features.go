package training

import (
	"fmt"

	"workgallery/internal/embedding"
	"workgallery/internal/snapshot"
)

// NumFeatures is the width of the pair feature vector:
// skill similarity, location match, experience gap.
const NumFeatures = 3

// trainExperiencePivot is the constant the training-time experience gap is
// measured against. Serving measures the gap against the job's stated
// requirement instead; that train/serve difference is intentional observed
// behaviour, do not "fix" one side without the other.
const trainExperiencePivot = 5

// PairFeatures computes the training feature vector for one sampled pair.
// Identifier resolution goes through the snapshot indexes; embeddings are
// addressed strictly by the resolved row position.
func PairFeatures(
	p Pair,
	candidates *snapshot.CandidateTable,
	jobs *snapshot.JobTable,
	candEmb, jobEmb *embedding.Matrix,
) ([]float64, error) {
	cand, candRow, ok := candidates.Lookup(p.CandidateID)
	if !ok {
		return nil, fmt.Errorf("pair references unknown candidate %d", p.CandidateID)
	}
	job, jobRow, ok := jobs.Lookup(p.JobID)
	if !ok {
		return nil, fmt.Errorf("pair references unknown job %d", p.JobID)
	}

	sim := embedding.Cosine(candEmb.Row(candRow), jobEmb.Row(jobRow))

	locMatch := 0.0
	if cand.Location == job.Location {
		locMatch = 1.0
	}

	gap := float64(cand.ExperienceYears - trainExperiencePivot)
	if gap < 0 {
		gap = -gap
	}

	return []float64{sim, locMatch, gap}, nil
}

// BuildDataset turns sampled pairs into the feature matrix, label vector and
// group sizes the ranker trains on.
func BuildDataset(
	pairs []Pair,
	candidates *snapshot.CandidateTable,
	jobs *snapshot.JobTable,
	candEmb, jobEmb *embedding.Matrix,
) (features [][]float64, labels []float64, groups []int, err error) {
	features = make([][]float64, 0, len(pairs))
	labels = make([]float64, 0, len(pairs))
	for _, p := range pairs {
		fv, ferr := PairFeatures(p, candidates, jobs, candEmb, jobEmb)
		if ferr != nil {
			return nil, nil, nil, ferr
		}
		features = append(features, fv)
		labels = append(labels, p.Label)
	}
	return features, labels, Groups(pairs), nil
}
