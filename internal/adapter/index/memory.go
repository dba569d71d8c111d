// Package index provides vector index adapters: a purely in-memory index and
// a bbolt-backed persistent one. Both use brute-force cosine similarity,
// which is adequate at the expected scale of a few thousand segments.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/geziefer/docchat/internal/domain"
	"github.com/geziefer/docchat/internal/port"
)

// MemoryIndex is an in-memory vector index. Safe for concurrent use.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	entries   map[string]memEntry
}

type memEntry struct {
	vector  []float32
	payload port.Payload
}

// NewMemoryIndex creates an empty index for vectors of the given dimension.
func NewMemoryIndex(dimension int) *MemoryIndex {
	return &MemoryIndex{
		dimension: dimension,
		entries:   make(map[string]memEntry),
	}
}

// InsertBatch stores all items and returns one generated id per item,
// order-preserving. A dimension mismatch fails the whole batch; nothing is
// stored.
func (s *MemoryIndex) InsertBatch(_ context.Context, items []port.IndexItem) ([]string, error) {
	for _, item := range items {
		if len(item.Vector) != s.dimension {
			return nil, fmt.Errorf("%w: dimension mismatch: expected %d, got %d",
				domain.ErrIndex, s.dimension, len(item.Vector))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(items))
	for i, item := range items {
		id := uuid.NewString()
		s.entries[id] = memEntry{vector: item.Vector, payload: item.Payload}
		ids[i] = id
	}
	return ids, nil
}

// Search returns up to k entries with cosine similarity >= minScore, ranked
// by descending score.
func (s *MemoryIndex) Search(_ context.Context, query []float32, k int, minScore float64) ([]port.Match, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query dimension mismatch: expected %d, got %d",
			domain.ErrIndex, s.dimension, len(query))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]port.Match, 0, len(s.entries))
	for id, e := range s.entries {
		score := cosineSimilarity(query, e.vector)
		if score < minScore {
			continue
		}
		matches = append(matches, port.Match{ID: id, Score: score, Payload: e.payload})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

// Delete removes entries by id; absent ids are ignored.
func (s *MemoryIndex) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.entries, id)
	}
	return nil
}

// Count returns the number of stored entries.
func (s *MemoryIndex) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Scan enumerates all stored entries for registry reconstruction.
func (s *MemoryIndex) Scan(_ context.Context) ([]port.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]port.Entry, 0, len(s.entries))
	for id, e := range s.entries {
		out = append(out, port.Entry{ID: id, Payload: e.payload})
	}
	return out, nil
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
