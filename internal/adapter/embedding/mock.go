package embedding

import "context"

// MockEmbedder produces deterministic vectors derived from the input text.
// It exists so the pipeline and engine can be exercised without network
// access; identical texts always map to identical vectors.
type MockEmbedder struct {
	dimension int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

func (e *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

func (e *MockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = e.vector(t)
	}
	return vectors, nil
}

func (e *MockEmbedder) vector(text string) []float32 {
	v := make([]float32, e.dimension)
	for i, r := range text {
		if i >= e.dimension {
			break
		}
		v[i] = float32(r) / 1000.0
	}
	return v
}

func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}
