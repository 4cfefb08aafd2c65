package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"workgallery/internal/snapshot"
)

// FeatureRepository extracts the candidate/job feature tables from the
// warehouse. Rows come back ordered by id, so snapshot position is stable
// across runs and the id -> row index built by the tables matches the
// embedding rows computed from the same extraction.
type FeatureRepository struct {
	pool *pgxpool.Pool
}

func NewFeatureRepository(pool *pgxpool.Pool) *FeatureRepository {
	return &FeatureRepository{pool: pool}
}

func (r *FeatureRepository) CandidateFeatures(ctx context.Context) (*snapshot.CandidateTable, error) {
	const q = `
		SELECT candidate_id, COALESCE(skill_list, ''), experience_years, COALESCE(location, '')
		FROM fct_candidate_features
		ORDER BY candidate_id`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query candidate features: %w", err)
	}
	defer rows.Close()

	var out []snapshot.Candidate
	for rows.Next() {
		var c snapshot.Candidate
		var exp *int
		if err := rows.Scan(&c.ID, &c.SkillList, &exp, &c.Location); err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		if exp == nil || *exp < 0 {
			c.ExperienceYears = snapshot.DefaultExperienceYears
		} else {
			c.ExperienceYears = *exp
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate features: %w", err)
	}
	return snapshot.NewCandidateTable(out)
}

func (r *FeatureRepository) JobFeatures(ctx context.Context) (*snapshot.JobTable, error) {
	const q = `
		SELECT job_id, COALESCE(required_skill_list, ''), COALESCE(location, ''),
		       COALESCE(job_title, ''), COALESCE(company, ''), experience_years
		FROM fct_job_features
		ORDER BY job_id`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query job features: %w", err)
	}
	defer rows.Close()

	var out []snapshot.Job
	for rows.Next() {
		var j snapshot.Job
		if err := rows.Scan(&j.ID, &j.RequiredSkillList, &j.Location, &j.Title, &j.Company, &j.ExperienceYears); err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job features: %w", err)
	}
	return snapshot.NewJobTable(out)
}
