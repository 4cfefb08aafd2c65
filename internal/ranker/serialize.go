package ranker

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Save writes the model as JSON.
func (m *Model) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	if err := enc.Encode(m); err != nil {
		f.Close()
		return fmt.Errorf("encode model: %w", err)
	}
	return f.Close()
}

// LoadModel reads a model saved by Save and sanity-checks its shape.
func LoadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m Model
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if len(m.Trees) == 0 {
		return nil, errors.New("model has no trees")
	}
	if m.NumFeatures <= 0 {
		return nil, errors.New("model has no feature count")
	}
	return &m, nil
}
