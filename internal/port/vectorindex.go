package port

import "context"

// VectorIndex stores (vector, payload) tuples under opaque ids and supports
// approximate-nearest-neighbour search by cosine similarity.
type VectorIndex interface {
	// InsertBatch stores all items in one call and returns the generated ids,
	// one per item, order-preserving.
	InsertBatch(ctx context.Context, items []IndexItem) ([]string, error)

	// Search returns up to k matches with similarity >= minScore, ranked by
	// descending score.
	Search(ctx context.Context, query []float32, k int, minScore float64) ([]Match, error)

	// Delete removes entries by id. Absent ids are ignored.
	Delete(ctx context.Context, ids []string) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)
}

// IndexItem is a vector plus its payload, ready for insertion.
type IndexItem struct {
	Vector  []float32
	Payload Payload
}

// Payload carries the segment attributes stored alongside each vector. The
// document id and filename make registry reconstruction from the index
// possible after a restart.
type Payload struct {
	DocumentID string `json:"documentId"`
	Filename   string `json:"filename"`
	Text       string `json:"text"`
}

// Match is a ranked search result.
type Match struct {
	ID      string
	Score   float64
	Payload Payload
}

// Entry is a stored (id, payload) pair without a score.
type Entry struct {
	ID      string
	Payload Payload
}

// Scanner enumerates every stored entry. Index adapters that support it
// enable best-effort registry reconstruction at startup.
type Scanner interface {
	Scan(ctx context.Context) ([]Entry, error)
}
