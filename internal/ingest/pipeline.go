// Package ingest orchestrates the document-to-chunk-to-vector pipeline:
// extract, chunk, tag, embed, index, register.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/geziefer/docchat/internal/domain"
	"github.com/geziefer/docchat/internal/logger"
	"github.com/geziefer/docchat/internal/port"
	"github.com/geziefer/docchat/internal/registry"
)

// DefaultCallTimeout bounds each external call (extract, embed, insert).
const DefaultCallTimeout = 60 * time.Second

// Pipeline ingests one uploaded document per call. All collaborators are
// passed in explicitly; the pipeline holds no mutable state of its own, so
// one instance serves concurrent requests.
type Pipeline struct {
	extractor   port.TextExtractor
	chunker     port.Chunker
	embedder    port.Embedder
	index       port.VectorIndex
	registry    *registry.Registry
	callTimeout time.Duration
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithCallTimeout bounds each external call made during ingestion.
func WithCallTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.callTimeout = d
		}
	}
}

// New creates an ingestion pipeline.
func New(extractor port.TextExtractor, chunker port.Chunker, embedder port.Embedder,
	index port.VectorIndex, reg *registry.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   extractor,
		chunker:     chunker,
		embedder:    embedder,
		index:       index,
		registry:    reg,
		callTimeout: DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest processes one uploaded document and returns its metadata. A document
// with the same filename is superseded: its registry entry and its vector
// index entries are removed before the new one is created. On any failure
// nothing of the new document remains in the registry or the index.
func (p *Pipeline) Ingest(ctx context.Context, filename, contentType string, size int64, data []byte) (domain.DocumentMetadata, error) {
	p.evictByFilename(ctx, filename)

	text, err := p.extract(ctx, data, contentType)
	if err != nil {
		return domain.DocumentMetadata{}, &domain.ExtractionError{Filename: filename, Err: err}
	}

	documentID := uuid.NewString()

	segments := p.chunker.Split(text)
	for i := range segments {
		segments[i].DocumentID = documentID
		segments[i].Filename = filename
	}

	metadata := domain.NewDocumentMetadata(documentID, filename, contentType, size)

	if len(segments) == 0 {
		// Nothing to embed; the document is still registered so it shows up
		// in listings and can be deleted or superseded.
		p.registry.Put(metadata, nil)
		logger.Info("ingested %s: empty document", filename)
		return metadata, nil
	}

	indexIDs, err := p.embedAndIndex(ctx, segments)
	if err != nil {
		return domain.DocumentMetadata{}, err
	}

	metadata = metadata.WithChunkCount(len(segments))
	p.registry.Put(metadata, indexIDs)

	logger.Info("ingested %s: %d segments", filename, len(segments))
	return metadata, nil
}

// evictByFilename removes a previously ingested document with the same
// filename, cascading the delete to its vector index entries so stale content
// cannot resurface in similarity search.
func (p *Pipeline) evictByFilename(ctx context.Context, filename string) {
	oldID, ok := p.registry.FindByFilename(filename)
	if !ok {
		return
	}
	_, oldIndexIDs, ok := p.registry.Remove(oldID)
	if !ok {
		return // lost a race with a concurrent delete
	}
	if len(oldIndexIDs) == 0 {
		return
	}
	if err := p.index.Delete(ctx, oldIndexIDs); err != nil {
		// The registry entry is already gone, so the stale segments can no
		// longer surface through citations; they only waste index space.
		logger.Warn("evict %s: failed to delete %d superseded index entries: %v",
			filename, len(oldIndexIDs), err)
	}
}

func (p *Pipeline) extract(ctx context.Context, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	return p.extractor.Extract(ctx, data, contentType)
}

// embedAndIndex batch-embeds all segments of the document in a single
// request, pairs embeddings with segments positionally and inserts them into
// the vector index in one batch call. If anything fails after entries were
// inserted, the inserted entries are rolled back so no half-indexed document
// remains.
func (p *Pipeline) embedAndIndex(ctx context.Context, segments []domain.Segment) ([]string, error) {
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}

	embedCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	vectors, err := p.embedder.EmbedBatch(embedCtx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d segments: %w", len(segments), err)
	}
	if len(vectors) != len(segments) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d segments",
			domain.ErrEmbedding, len(vectors), len(segments))
	}

	items := make([]port.IndexItem, len(segments))
	for i, s := range segments {
		items[i] = port.IndexItem{
			Vector: vectors[i],
			Payload: port.Payload{
				DocumentID: s.DocumentID,
				Filename:   s.Filename,
				Text:       s.Text,
			},
		}
	}

	insertCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	indexIDs, err := p.index.InsertBatch(insertCtx, items)
	if err != nil {
		return nil, fmt.Errorf("index %d segments: %w", len(segments), err)
	}
	if len(indexIDs) != len(segments) {
		p.rollback(indexIDs)
		return nil, fmt.Errorf("%w: got %d index ids for %d segments",
			domain.ErrIndex, len(indexIDs), len(segments))
	}

	return indexIDs, nil
}

// rollback removes already-inserted index entries after a failure. It runs on
// a fresh context so a cancelled ingestion can still clean up.
func (p *Pipeline) rollback(indexIDs []string) {
	if len(indexIDs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.callTimeout)
	defer cancel()
	if err := p.index.Delete(ctx, indexIDs); err != nil {
		logger.Warn("rollback: failed to delete %d index entries: %v", len(indexIDs), err)
	}
}

// Delete removes a document and every index entry it owns. It returns
// domain.ErrNotFound when the id is unknown; double-delete is a normal
// outcome.
func (p *Pipeline) Delete(ctx context.Context, documentID string) error {
	metadata, indexIDs, ok := p.registry.Remove(documentID)
	if !ok {
		return domain.ErrNotFound
	}
	if len(indexIDs) > 0 {
		if err := p.index.Delete(ctx, indexIDs); err != nil {
			return fmt.Errorf("delete index entries for %s: %w", metadata.Filename, err)
		}
	}
	logger.Info("deleted %s (%d segments)", metadata.Filename, len(indexIDs))
	return nil
}
