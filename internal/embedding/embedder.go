package embedding

import (
	"context"
	"fmt"
)

// Embedder turns a list of texts into one fixed-width vector per text,
// index-aligned with the input. For a fixed model version the output is a
// pure function of the input text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) (*Matrix, error)
	Dimensions() int
}

// EntityText builds the canonical embedding input for an entity from its
// skill field and location: "<skills> | <location>".
func EntityText(skills, location string) string {
	return fmt.Sprintf("%s | %s", skills, location)
}
