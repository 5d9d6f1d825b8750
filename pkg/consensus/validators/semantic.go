package validators

import (
	"context"
	"fmt"
	"math"
)

// Embedder is the port to an embedding backend. The validator treats it as
// an opaque function from text to vector.
type Embedder interface {
	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)
}

// SemanticValidator scores a (principle, rule) pair by the cosine similarity
// of their embeddings. Similarity below zero scores 0.0; orthogonal or
// opposed texts cannot support consensus.
type SemanticValidator struct {
	name     string
	embedder Embedder
}

// NewSemanticValidator creates an embedding-similarity validator.
func NewSemanticValidator(name string, embedder Embedder) (*SemanticValidator, error) {
	if name == "" {
		return nil, fmt.Errorf("validator name cannot be empty")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	return &SemanticValidator{name: name, embedder: embedder}, nil
}

// Score embeds both texts and returns their cosine similarity clamped to [0,1].
func (v *SemanticValidator) Score(ctx context.Context, principle, rule string) (float64, error) {
	pvec, err := v.embedder.Embed(ctx, principle)
	if err != nil {
		return 0, fmt.Errorf("failed to embed principle: %w", err)
	}
	rvec, err := v.embedder.Embed(ctx, rule)
	if err != nil {
		return 0, fmt.Errorf("failed to embed rule: %w", err)
	}

	sim, err := cosineSimilarity(pvec, rvec)
	if err != nil {
		return 0, err
	}

	if sim < 0 {
		return 0, nil
	}
	if sim > 1 {
		return 1, nil
	}
	return sim, nil
}

// Name returns the validator name.
func (v *SemanticValidator) Name() string {
	return v.name
}

// cosineSimilarity computes the cosine of the angle between two vectors.
func cosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("empty embedding vector")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("zero-magnitude embedding vector")
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
