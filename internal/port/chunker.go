package port

import "github.com/geziefer/docchat/internal/domain"

// Chunker deterministically splits plain text into overlapping segments
// suitable for embedding. It attaches no document metadata; that is the
// ingestion pipeline's job.
type Chunker interface {
	Split(text string) []domain.Segment
}
