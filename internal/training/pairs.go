package training

import (
	"math/rand"

	"workgallery/internal/snapshot"
)

// DefaultSeed keeps pair sampling reproducible across retrains.
const DefaultSeed = 42

// Pair is one labeled training example. Label 1 marks a job sampled from the
// candidate's location; label 0 marks a uniform random draw.
type Pair struct {
	CandidateID int64
	JobID       int64
	Label       float64
}

// SamplePairs builds the training set. Per candidate: one positive pair when
// at least one job shares the candidate's location, plus always one negative
// pair drawn uniformly from the full job table. Negative draws do not
// exclude location-matching jobs, so a fraction of negatives are label-noisy
// positives; that sampling noise is a known property of the training set,
// kept as-is.
//
// Pairs for one candidate are emitted consecutively, so the slice is already
// in group order for the ranker.
func SamplePairs(candidates *snapshot.CandidateTable, jobs *snapshot.JobTable, seed int64) []Pair {
	rng := rand.New(rand.NewSource(seed))

	byLocation := make(map[string][]int)
	for i, j := range jobs.Rows() {
		byLocation[j.Location] = append(byLocation[j.Location], i)
	}

	pairs := make([]Pair, 0, 2*candidates.Len())
	for _, cand := range candidates.Rows() {
		if local := byLocation[cand.Location]; len(local) > 0 {
			row := local[rng.Intn(len(local))]
			pairs = append(pairs, Pair{
				CandidateID: cand.ID,
				JobID:       jobs.Row(row).ID,
				Label:       1,
			})
		}
		row := rng.Intn(jobs.Len())
		pairs = append(pairs, Pair{
			CandidateID: cand.ID,
			JobID:       jobs.Row(row).ID,
			Label:       0,
		})
	}
	return pairs
}

// Groups returns consecutive per-candidate group sizes for a pair slice in
// sampling order.
func Groups(pairs []Pair) []int {
	var groups []int
	for i, p := range pairs {
		if i == 0 || p.CandidateID != pairs[i-1].CandidateID {
			groups = append(groups, 1)
			continue
		}
		groups[len(groups)-1]++
	}
	return groups
}
