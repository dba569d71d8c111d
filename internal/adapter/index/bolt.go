package index

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/geziefer/docchat/internal/domain"
	"github.com/geziefer/docchat/internal/port"
)

var bucketEntries = []byte("entries")

// BoltIndex is a bbolt-backed vector index. Vectors and payloads persist
// across restarts; all entries are mirrored in memory for search so no
// transaction runs during scoring.
type BoltIndex struct {
	db        *bbolt.DB
	dimension int

	mu      sync.RWMutex
	entries map[string]memEntry
}

type storedEntry struct {
	Vector  []float32    `json:"v"`
	Payload port.Payload `json:"p"`
}

// NewBoltIndex opens (or creates) the index database at path.
func NewBoltIndex(path string, dimension int) (*BoltIndex, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEntries)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("create entries bucket: %w", err)
	}

	s := &BoltIndex{
		db:        db,
		dimension: dimension,
		entries:   make(map[string]memEntry),
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load entries: %w", err)
	}
	return s, nil
}

func (s *BoltIndex) load() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var stored storedEntry
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // skip corrupted entries
			}
			s.entries[string(k)] = memEntry{vector: stored.Vector, payload: stored.Payload}
			return nil
		})
	})
}

// InsertBatch stores all items in one transaction and returns the generated
// ids, order-preserving. If the transaction fails nothing is persisted.
func (s *BoltIndex) InsertBatch(_ context.Context, items []port.IndexItem) ([]string, error) {
	for _, item := range items {
		if len(item.Vector) != s.dimension {
			return nil, fmt.Errorf("%w: dimension mismatch: expected %d, got %d",
				domain.ErrIndex, s.dimension, len(item.Vector))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(items))
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		for i, item := range items {
			id := uuid.NewString()
			data, err := json.Marshal(storedEntry{Vector: item.Vector, Payload: item.Payload})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(id), data); err != nil {
				return err
			}
			ids[i] = id
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndex, err)
	}

	for i, item := range items {
		s.entries[ids[i]] = memEntry{vector: item.Vector, payload: item.Payload}
	}
	return ids, nil
}

// Search returns up to k entries with cosine similarity >= minScore, ranked
// by descending score.
func (s *BoltIndex) Search(_ context.Context, query []float32, k int, minScore float64) ([]port.Match, error) {
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
func (s *BoltIndex) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndex, err)
	}

	for _, id := range ids {
		delete(s.entries, id)
	}
	return nil
}

// Count returns the number of stored entries.
func (s *BoltIndex) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Scan enumerates all stored entries for registry reconstruction.
func (s *BoltIndex) Scan(_ context.Context) ([]port.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]port.Entry, 0, len(s.entries))
	for id, e := range s.entries {
		out = append(out, port.Entry{ID: id, Payload: e.payload})
	}
	return out, nil
}

// Close closes the underlying database.
func (s *BoltIndex) Close() error {
	return s.db.Close()
}
