// Package bundle persists and loads the model bundle: the trained ranker,
// the candidate/job snapshots and their embeddings, written and loaded as
// one unit. The scorer never sees partially written artifacts; Save stages
// everything in a temp directory and renames it into place.
package bundle

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"workgallery/internal/embedding"
	"workgallery/internal/ranker"
	"workgallery/internal/snapshot"
)

const (
	rankerFile        = "ranker.json"
	candidatesFile    = "candidates.json"
	jobsFile          = "jobs.json"
	candEmbeddingFile = "candidate_embeddings.bin"
	jobEmbeddingFile  = "job_embeddings.bin"
	manifestFile      = "manifest.json"
)

type Manifest struct {
	ModelVersion   string    `json:"model_version"`
	TrainedAt      time.Time `json:"trained_at"`
	EmbeddingModel string    `json:"embedding_model"`
	EmbeddingDims  int       `json:"embedding_dims"`
	Candidates     int       `json:"candidates"`
	Jobs           int       `json:"jobs"`
	TrainingPairs  int       `json:"training_pairs"`
	TrainNDCG      float64   `json:"train_ndcg"`
}

type Bundle struct {
	Manifest            Manifest
	Model               *ranker.Model
	Candidates          *snapshot.CandidateTable
	Jobs                *snapshot.JobTable
	CandidateEmbeddings *embedding.Matrix
	JobEmbeddings       *embedding.Matrix
}

// Save writes all artifacts into a staging directory next to dir, then
// swaps it into place. A crashed run leaves either the previous bundle or
// none, never a mix.
func Save(dir string, b *Bundle) error {
	if err := validate(b); err != nil {
		return err
	}

	staging := dir + ".staging"
	if err := os.RemoveAll(staging); err != nil {
		return err
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return err
	}

	if err := b.Model.Save(filepath.Join(staging, rankerFile)); err != nil {
		return fmt.Errorf("write ranker: %w", err)
	}
	if err := writeJSONFile(filepath.Join(staging, manifestFile), b.Manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := b.CandidateEmbeddings.SaveFile(filepath.Join(staging, candEmbeddingFile)); err != nil {
		return fmt.Errorf("write candidate embeddings: %w", err)
	}
	if err := b.JobEmbeddings.SaveFile(filepath.Join(staging, jobEmbeddingFile)); err != nil {
		return fmt.Errorf("write job embeddings: %w", err)
	}

	cf, err := os.Create(filepath.Join(staging, candidatesFile))
	if err != nil {
		return err
	}
	if err := snapshot.WriteCandidates(cf, b.Candidates); err != nil {
		cf.Close()
		return fmt.Errorf("write candidate snapshot: %w", err)
	}
	if err := cf.Close(); err != nil {
		return err
	}

	jf, err := os.Create(filepath.Join(staging, jobsFile))
	if err != nil {
		return err
	}
	if err := snapshot.WriteJobs(jf, b.Jobs); err != nil {
		jf.Close()
		return fmt.Errorf("write job snapshot: %w", err)
	}
	if err := jf.Close(); err != nil {
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.Rename(staging, dir)
}

// Load reads the full bundle and cross-checks alignment between snapshots
// and embeddings. Any missing file or shape mismatch is a hard error; the
// serving process must refuse to start on a broken bundle rather than
// degrade.
func Load(dir string) (*Bundle, error) {
	b := &Bundle{}

	if err := readJSONFile(filepath.Join(dir, manifestFile), &b.Manifest); err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}

	model, err := ranker.LoadModel(filepath.Join(dir, rankerFile))
	if err != nil {
		return nil, fmt.Errorf("load ranker: %w", err)
	}
	b.Model = model

	b.Candidates, err = snapshot.LoadCandidates(filepath.Join(dir, candidatesFile))
	if err != nil {
		return nil, fmt.Errorf("load candidate snapshot: %w", err)
	}
	b.Jobs, err = snapshot.LoadJobs(filepath.Join(dir, jobsFile))
	if err != nil {
		return nil, fmt.Errorf("load job snapshot: %w", err)
	}

	b.CandidateEmbeddings, err = embedding.LoadMatrixFile(filepath.Join(dir, candEmbeddingFile))
	if err != nil {
		return nil, fmt.Errorf("load candidate embeddings: %w", err)
	}
	b.JobEmbeddings, err = embedding.LoadMatrixFile(filepath.Join(dir, jobEmbeddingFile))
	if err != nil {
		return nil, fmt.Errorf("load job embeddings: %w", err)
	}

	if err := validate(b); err != nil {
		return nil, err
	}
	return b, nil
}

func validate(b *Bundle) error {
	if b == nil || b.Model == nil || b.Candidates == nil || b.Jobs == nil ||
		b.CandidateEmbeddings == nil || b.JobEmbeddings == nil {
		return errors.New("bundle is incomplete")
	}
	if b.Candidates.Len() == 0 {
		return errors.New("candidate snapshot is empty")
	}
	if b.Jobs.Len() == 0 {
		return errors.New("job snapshot is empty")
	}
	if b.CandidateEmbeddings.Rows() != b.Candidates.Len() {
		return fmt.Errorf("candidate embeddings have %d rows for %d candidates",
			b.CandidateEmbeddings.Rows(), b.Candidates.Len())
	}
	if b.JobEmbeddings.Rows() != b.Jobs.Len() {
		return fmt.Errorf("job embeddings have %d rows for %d jobs",
			b.JobEmbeddings.Rows(), b.Jobs.Len())
	}
	if b.CandidateEmbeddings.Cols() != b.JobEmbeddings.Cols() {
		return fmt.Errorf("embedding widths differ: candidates %d, jobs %d",
			b.CandidateEmbeddings.Cols(), b.JobEmbeddings.Cols())
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readJSONFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(v)
}
