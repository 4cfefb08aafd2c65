package snapshot

import (
	"fmt"
)

// DefaultExperienceYears is the documented fallback used whenever an
// experience value is absent from a loaded snapshot row.
const DefaultExperienceYears = 5

type Candidate struct {
	ID              int64
	SkillList       string
	ExperienceYears int
	Location        string
}

type Job struct {
	ID                int64
	RequiredSkillList string
	Location          string
	Title             string
	Company           string

	// ExperienceYears is optional in the warehouse; nil means "not stated"
	// and consumers substitute DefaultExperienceYears.
	ExperienceYears *int
}

// RequiredExperience returns the job's stated experience requirement or the
// documented default when the column was absent.
func (j Job) RequiredExperience() int {
	if j.ExperienceYears == nil {
		return DefaultExperienceYears
	}
	return *j.ExperienceYears
}

// CandidateTable is an immutable candidate snapshot with an id -> row index
// built once at construction. Embedding rows are aligned with Rows() by
// position, so every id lookup must go through the index, never through the
// id value itself.
type CandidateTable struct {
	rows  []Candidate
	index map[int64]int
}

func NewCandidateTable(rows []Candidate) (*CandidateTable, error) {
	index := make(map[int64]int, len(rows))
	for i, r := range rows {
		if _, dup := index[r.ID]; dup {
			return nil, fmt.Errorf("duplicate candidate id %d at row %d", r.ID, i)
		}
		index[r.ID] = i
	}
	return &CandidateTable{rows: rows, index: index}, nil
}

func (t *CandidateTable) Len() int { return len(t.rows) }

func (t *CandidateTable) Row(i int) Candidate { return t.rows[i] }

func (t *CandidateTable) Rows() []Candidate { return t.rows }

// Lookup resolves a candidate id to its record and row position.
func (t *CandidateTable) Lookup(id int64) (Candidate, int, bool) {
	i, ok := t.index[id]
	if !ok {
		return Candidate{}, 0, false
	}
	return t.rows[i], i, true
}

// ExampleIDs returns up to n ids in row order, used in not-found hints.
func (t *CandidateTable) ExampleIDs(n int) []int64 {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	ids := make([]int64, 0, n)
	for _, r := range t.rows[:n] {
		ids = append(ids, r.ID)
	}
	return ids
}

// JobTable mirrors CandidateTable for the job snapshot.
type JobTable struct {
	rows  []Job
	index map[int64]int
}

func NewJobTable(rows []Job) (*JobTable, error) {
	index := make(map[int64]int, len(rows))
	for i, r := range rows {
		if _, dup := index[r.ID]; dup {
			return nil, fmt.Errorf("duplicate job id %d at row %d", r.ID, i)
		}
		index[r.ID] = i
	}
	return &JobTable{rows: rows, index: index}, nil
}

func (t *JobTable) Len() int { return len(t.rows) }

func (t *JobTable) Row(i int) Job { return t.rows[i] }

func (t *JobTable) Rows() []Job { return t.rows }

func (t *JobTable) Lookup(id int64) (Job, int, bool) {
	i, ok := t.index[id]
	if !ok {
		return Job{}, 0, false
	}
	return t.rows[i], i, true
}
