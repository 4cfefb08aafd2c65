package dto

import "workgallery/internal/usecase"

type CandidateSummary struct {
	Skills          string `json:"skills"`
	ExperienceYears int    `json:"experience_years"`
	Location        string `json:"location"`
}

type RecommendedJob struct {
	JobID           int64   `json:"job_id"`
	Title           string  `json:"title"`
	Company         string  `json:"company"`
	RequiredSkills  string  `json:"required_skills"`
	Location        string  `json:"location"`
	Score           float64 `json:"score"`
	SkillSimilarity float64 `json:"skill_similarity"`
	LocationMatch   bool    `json:"location_match"`
}

type RecommendationResponse struct {
	CandidateID     int64            `json:"candidate_id"`
	Candidate       CandidateSummary `json:"candidate"`
	Recommendations []RecommendedJob `json:"recommendations"`
	TotalJobsScored int              `json:"total_jobs_scored"`
}

func FromRecommendationResult(res usecase.RecommendationResult) RecommendationResponse {
	recs := make([]RecommendedJob, 0, len(res.Recommendations))
	for _, r := range res.Recommendations {
		recs = append(recs, RecommendedJob{
			JobID:           r.JobID,
			Title:           r.Title,
			Company:         r.Company,
			RequiredSkills:  r.RequiredSkills,
			Location:        r.Location,
			Score:           r.Score,
			SkillSimilarity: r.SkillSimilarity,
			LocationMatch:   r.LocationMatch,
		})
	}
	return RecommendationResponse{
		CandidateID: res.CandidateID,
		Candidate: CandidateSummary{
			Skills:          res.Candidate.Skills,
			ExperienceYears: res.Candidate.ExperienceYears,
			Location:        res.Candidate.Location,
		},
		Recommendations: recs,
		TotalJobsScored: res.TotalJobsScored,
	}
}
