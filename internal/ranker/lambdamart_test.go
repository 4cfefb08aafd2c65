package ranker

import (
	"path/filepath"
	"testing"
)

// rankingFixture builds groups of one relevant and one irrelevant row with
// clearly separated features.
func rankingFixture(groupCount int) (features [][]float64, labels []float64, groups []int) {
	for i := 0; i < groupCount; i++ {
		features = append(features,
			[]float64{0.9, 1, 0}, // relevant
			[]float64{0.1, 0, 3}, // irrelevant
		)
		labels = append(labels, 1, 0)
		groups = append(groups, 2)
	}
	return features, labels, groups
}

func smallParams() Params {
	p := DefaultParams()
	p.NumBoostRound = 30
	return p
}

func TestTrain_EmptyDataset(t *testing.T) {
	if _, err := Train(nil, nil, nil, DefaultParams()); err != ErrEmptyDataset {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestTrain_NoPositiveLabels(t *testing.T) {
	features := [][]float64{{0.5, 0, 1}, {0.2, 0, 2}}
	labels := []float64{0, 0}
	groups := []int{2}
	if _, err := Train(features, labels, groups, DefaultParams()); err != ErrNoPositiveLabels {
		t.Fatalf("expected ErrNoPositiveLabels, got %v", err)
	}
}

func TestTrain_GroupSizeMismatch(t *testing.T) {
	features := [][]float64{{0.5, 0, 1}, {0.2, 1, 2}}
	labels := []float64{0, 1}
	if _, err := Train(features, labels, []int{3}, DefaultParams()); err == nil {
		t.Fatal("expected group size error")
	}
}

func TestTrain_SeparatesRelevantFromIrrelevant(t *testing.T) {
	features, labels, groups := rankingFixture(20)

	model, err := Train(features, labels, groups, smallParams())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	scores, err := model.Predict([][]float64{
		{0.9, 1, 0},
		{0.1, 0, 3},
	})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if scores[0] <= scores[1] {
		t.Fatalf("relevant pair not ranked above irrelevant: %v <= %v", scores[0], scores[1])
	}
}

func TestTrain_PerfectNDCGOnSeparableData(t *testing.T) {
	features, labels, groups := rankingFixture(10)

	model, err := Train(features, labels, groups, smallParams())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	scores, err := model.Predict(features)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got := NDCG(scores, labels, groups, model.Params.NDCGAt); got != 1 {
		t.Fatalf("expected NDCG 1 on separable data, got %v", got)
	}
}

func TestTrain_Deterministic(t *testing.T) {
	features, labels, groups := rankingFixture(10)

	m1, err := Train(features, labels, groups, smallParams())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	m2, err := Train(features, labels, groups, smallParams())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	probe := [][]float64{{0.4, 1, 2}, {0.6, 0, 1}}
	s1, _ := m1.Predict(probe)
	s2, _ := m2.Predict(probe)
	if s1[0] != s2[0] || s1[1] != s2[1] {
		t.Fatalf("training is not deterministic: %v vs %v", s1, s2)
	}
}

func TestModel_SaveLoadRoundtrip(t *testing.T) {
	features, labels, groups := rankingFixture(5)

	model, err := Train(features, labels, groups, smallParams())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	path := filepath.Join(t.TempDir(), "ranker.json")
	if err := model.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}

	probe := [][]float64{{0.9, 1, 0}, {0.1, 0, 3}, {0.5, 1, 2}}
	want, _ := model.Predict(probe)
	got, _ := loaded.Predict(probe)
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("prediction %d changed after roundtrip: %v != %v", i, got[i], want[i])
		}
	}
}

func TestPredict_FeatureWidthMismatch(t *testing.T) {
	features, labels, groups := rankingFixture(5)
	model, err := Train(features, labels, groups, smallParams())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if _, err := model.Predict([][]float64{{1, 2}}); err == nil {
		t.Fatal("expected feature width error")
	}
}

func TestNDCG_IgnoresGroupsWithoutPositives(t *testing.T) {
	scores := []float64{1, 0, 0.5, 0.2}
	labels := []float64{1, 0, 0, 0}
	groups := []int{2, 2}
	// Only the first group counts; its ranking is perfect.
	if got := NDCG(scores, labels, groups, 10); got != 1 {
		t.Fatalf("NDCG = %v, want 1", got)
	}
}
