package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultModel      = "gemini-embedding-001"
	defaultDimensions = 384
	defaultBatchSize  = 32
)

// Gemini embeds texts through the Google GenAI embedding API.
type Gemini struct {
	client     *genai.Client
	modelName  string
	dimensions int
	batchSize  int
}

// NewGemini creates an embedder for the Gemini API backend. Model name and
// dimensionality fall back to the pinned defaults when empty or zero; the
// offline pipeline and any future re-embedding must keep these identical for
// their vectors to be comparable.
func NewGemini(ctx context.Context, apiKey, model string, dimensions int) (*Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if dimensions <= 0 {
		dimensions = defaultDimensions
	}

	return &Gemini{
		client:     client,
		modelName:  model,
		dimensions: dimensions,
		batchSize:  defaultBatchSize,
	}, nil
}

func (g *Gemini) Dimensions() int { return g.dimensions }

// Embed requests embeddings in batches and assembles them into one matrix,
// preserving input order.
func (g *Gemini) Embed(ctx context.Context, texts []string) (*Matrix, error) {
	if g == nil || g.client == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}
	if len(texts) == 0 {
		return nil, errors.New("no texts to embed")
	}

	out := NewMatrix(len(texts), g.dimensions)
	for start := 0; start < len(texts); start += g.batchSize {
		end := start + g.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		contents := make([]*genai.Content, 0, end-start)
		for _, t := range texts[start:end] {
			contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
		}

		resp, err := g.client.Models.EmbedContent(ctx, g.modelName, contents, &genai.EmbedContentConfig{
			TaskType:             "SEMANTIC_SIMILARITY",
			OutputDimensionality: genai.Ptr(int32(g.dimensions)),
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch starting at %d: %w", start, err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("embed batch starting at %d: got %d embeddings for %d texts",
				start, len(resp.Embeddings), end-start)
		}

		for i, emb := range resp.Embeddings {
			if emb == nil {
				return nil, fmt.Errorf("empty embedding for text %d", start+i)
			}
			if err := out.SetRow(start+i, emb.Values); err != nil {
				return nil, fmt.Errorf("embedding for text %d: %w", start+i, err)
			}
		}
	}
	return out, nil
}
