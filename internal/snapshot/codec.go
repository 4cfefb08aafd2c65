package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Snapshot files are plain JSON arrays of flat objects. Warehouse exports are
// not consistent about key casing, so every key is upper-cased here, at the
// single load boundary, before any field is read. Consumers only ever see the
// typed Candidate/Job records.

const (
	colCandidateID       = "CANDIDATE_ID"
	colSkillList         = "SKILL_LIST"
	colExperienceYears   = "EXPERIENCE_YEARS"
	colLocation          = "LOCATION"
	colJobID             = "JOB_ID"
	colRequiredSkillList = "REQUIRED_SKILL_LIST"
	colJobTitle          = "JOB_TITLE"
	colCompany           = "COMPANY"
)

type row map[string]json.RawMessage

func decodeRows(r io.Reader) ([]row, error) {
	var raw []map[string]json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	rows := make([]row, 0, len(raw))
	for _, rec := range raw {
		normalized := make(row, len(rec))
		for k, v := range rec {
			normalized[strings.ToUpper(k)] = v
		}
		rows = append(rows, normalized)
	}
	return rows, nil
}

func (r row) str(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

func (r row) intField(key string) (int, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(v, &n); err != nil {
		// Some exports quote numerics.
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return 0, false
		}
		parsed, perr := strconv.Atoi(strings.TrimSpace(s))
		if perr != nil {
			return 0, false
		}
		return parsed, true
	}
	return n, true
}

func (r row) int64Field(key string) (int64, bool) {
	n, ok := r.intField(key)
	return int64(n), ok
}

// ReadCandidates decodes a candidate snapshot, normalizing keys and applying
// the experience default for rows where the column is absent.
func ReadCandidates(r io.Reader) (*CandidateTable, error) {
	rows, err := decodeRows(r)
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(rows))
	for i, rec := range rows {
		id, ok := rec.int64Field(colCandidateID)
		if !ok {
			return nil, fmt.Errorf("candidate row %d: missing %s", i, colCandidateID)
		}
		exp, ok := rec.intField(colExperienceYears)
		if !ok || exp < 0 {
			exp = DefaultExperienceYears
		}
		out = append(out, Candidate{
			ID:              id,
			SkillList:       rec.str(colSkillList),
			ExperienceYears: exp,
			Location:        rec.str(colLocation),
		})
	}
	return NewCandidateTable(out)
}

// ReadJobs decodes a job snapshot with the same key normalization. The
// experience column is optional and stays nil when absent.
func ReadJobs(r io.Reader) (*JobTable, error) {
	rows, err := decodeRows(r)
	if err != nil {
		return nil, err
	}

	out := make([]Job, 0, len(rows))
	for i, rec := range rows {
		id, ok := rec.int64Field(colJobID)
		if !ok {
			return nil, fmt.Errorf("job row %d: missing %s", i, colJobID)
		}
		j := Job{
			ID:                id,
			RequiredSkillList: rec.str(colRequiredSkillList),
			Location:          rec.str(colLocation),
			Title:             rec.str(colJobTitle),
			Company:           rec.str(colCompany),
		}
		if exp, ok := rec.intField(colExperienceYears); ok && exp >= 0 {
			j.ExperienceYears = &exp
		}
		out = append(out, j)
	}
	return NewJobTable(out)
}

func LoadCandidates(path string) (*CandidateTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCandidates(f)
}

func LoadJobs(path string) (*JobTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJobs(f)
}

type candidateRecord struct {
	CandidateID     int64  `json:"CANDIDATE_ID"`
	SkillList       string `json:"SKILL_LIST"`
	ExperienceYears int    `json:"EXPERIENCE_YEARS"`
	Location        string `json:"LOCATION"`
}

type jobRecord struct {
	JobID             int64  `json:"JOB_ID"`
	RequiredSkillList string `json:"REQUIRED_SKILL_LIST"`
	Location          string `json:"LOCATION"`
	Title             string `json:"JOB_TITLE,omitempty"`
	Company           string `json:"COMPANY,omitempty"`
	ExperienceYears   *int   `json:"EXPERIENCE_YEARS,omitempty"`
}

// WriteCandidates persists the table with canonical uppercase keys.
func WriteCandidates(w io.Writer, t *CandidateTable) error {
	recs := make([]candidateRecord, 0, t.Len())
	for _, c := range t.Rows() {
		recs = append(recs, candidateRecord{
			CandidateID:     c.ID,
			SkillList:       c.SkillList,
			ExperienceYears: c.ExperienceYears,
			Location:        c.Location,
		})
	}
	enc := json.NewEncoder(w)
	return enc.Encode(recs)
}

func WriteJobs(w io.Writer, t *JobTable) error {
	recs := make([]jobRecord, 0, t.Len())
	for _, j := range t.Rows() {
		recs = append(recs, jobRecord{
			JobID:             j.ID,
			RequiredSkillList: j.RequiredSkillList,
			Location:          j.Location,
			Title:             j.Title,
			Company:           j.Company,
			ExperienceYears:   j.ExperienceYears,
		})
	}
	enc := json.NewEncoder(w)
	return enc.Encode(recs)
}
