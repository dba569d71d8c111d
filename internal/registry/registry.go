// Package registry holds the in-memory catalog of ingested documents and the
// index-entry ids each one owns.
package registry

import (
	"sync"

	"github.com/geziefer/docchat/internal/domain"
)

// Registry maps a document id to its metadata and the vector-index ids
// produced for it. One logical document always maps to a known, revocable set
// of index entries: Put and Remove operate on both halves in one critical
// section, so no observer sees metadata without its segment set.
type Registry struct {
	mu      sync.RWMutex
	docs    map[string]domain.DocumentMetadata
	indexID map[string][]string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		docs:    make(map[string]domain.DocumentMetadata),
		indexID: make(map[string][]string),
	}
}

// Put inserts or overwrites the entry for metadata.ID atomically. The index
// id list is copied so later caller mutations cannot leak into the registry.
func (r *Registry) Put(metadata domain.DocumentMetadata, indexIDs []string) {
	ids := make([]string, len(indexIDs))
	copy(ids, indexIDs)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[metadata.ID] = metadata
	r.indexID[metadata.ID] = ids
}

// Get returns the metadata for id.
func (r *Registry) Get(id string) (domain.DocumentMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.docs[id]
	return m, ok
}

// Remove deletes the entry for id and returns both the metadata and its full
// index-id set so the caller can cascade-delete from the vector index. A
// missing id returns ok=false; double-delete is a normal outcome, not an
// error.
func (r *Registry) Remove(id string) (domain.DocumentMetadata, []string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.docs[id]
	if !ok {
		return domain.DocumentMetadata{}, nil, false
	}
	ids := r.indexID[id]
	delete(r.docs, id)
	delete(r.indexID, id)
	return m, ids, true
}

// ListAll returns a point-in-time snapshot of all metadata. Later registry
// mutations do not change a previously returned snapshot.
func (r *Registry) ListAll() []domain.DocumentMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.DocumentMetadata, 0, len(r.docs))
	for _, m := range r.docs {
		out = append(out, m)
	}
	return out
}

// FindByFilename returns the id of the document with the given filename.
// A linear scan is fine at the expected scale of hundreds to low thousands
// of documents.
func (r *Registry) FindByFilename(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, m := range r.docs {
		if m.Filename == name {
			return id, true
		}
	}
	return "", false
}

// Len returns the number of registered documents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}
