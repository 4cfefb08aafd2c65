package ranker

// Params configures LambdaMART training. The defaults mirror the tuned
// production configuration: lambdarank objective optimizing NDCG@10, 200
// boosting rounds of 31-leaf trees at learning rate 0.1, seed 42.
type Params struct {
	Objective      string  `json:"objective"`
	Metric         string  `json:"metric"`
	NDCGAt         int     `json:"ndcg_at"`
	LearningRate   float64 `json:"learning_rate"`
	NumLeaves      int     `json:"num_leaves"`
	NumBoostRound  int     `json:"num_boost_round"`
	MinSamplesLeaf int     `json:"min_samples_leaf"`
	Seed           int64   `json:"seed"`
}

func DefaultParams() Params {
	return Params{
		Objective:      "lambdarank",
		Metric:         "ndcg",
		NDCGAt:         10,
		LearningRate:   0.1,
		NumLeaves:      31,
		NumBoostRound:  200,
		MinSamplesLeaf: 1,
		Seed:           42,
	}
}

func (p Params) normalized() Params {
	if p.Objective == "" {
		p.Objective = "lambdarank"
	}
	if p.Metric == "" {
		p.Metric = "ndcg"
	}
	if p.NDCGAt <= 0 {
		p.NDCGAt = 10
	}
	if p.LearningRate <= 0 {
		p.LearningRate = 0.1
	}
	if p.NumLeaves < 2 {
		p.NumLeaves = 31
	}
	if p.NumBoostRound <= 0 {
		p.NumBoostRound = 200
	}
	if p.MinSamplesLeaf <= 0 {
		p.MinSamplesLeaf = 1
	}
	return p
}
