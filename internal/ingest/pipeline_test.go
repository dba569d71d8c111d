package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/geziefer/docchat/internal/adapter/embedding"
	"github.com/geziefer/docchat/internal/adapter/extractor"
	"github.com/geziefer/docchat/internal/adapter/index"
	"github.com/geziefer/docchat/internal/chunker"
	"github.com/geziefer/docchat/internal/domain"
	"github.com/geziefer/docchat/internal/registry"
)

func newTestPipeline(idx *index.MemoryIndex, reg *registry.Registry) *Pipeline {
	return New(extractor.New(), chunker.New(500, 50), embedding.NewMockEmbedder(8), idx, reg)
}

func TestIngestRegistersSegments(t *testing.T) {
	idx := index.NewMemoryIndex(8)
	reg := registry.New()
	p := newTestPipeline(idx, reg)

	data := []byte(strings.Repeat("a", 1200))
	metadata, err := p.Ingest(context.Background(), "notes.txt", "text/plain", int64(len(data)), data)
	if err != nil {
		t.Fatal(err)
	}

	// 1200 chars with 500-char windows and 50 overlap is three segments.
	if metadata.ChunkCount != 3 {
		t.Errorf("expected chunk count 3, got %d", metadata.ChunkCount)
	}
	if metadata.Filename != "notes.txt" || metadata.Size != 1200 {
		t.Errorf("unexpected metadata: %+v", metadata)
	}
	if metadata.ID == "" {
		t.Error("expected generated document id")
	}

	count, err := idx.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("expected 3 index entries, got %d", count)
	}

	got, ok := reg.Get(metadata.ID)
	if !ok {
		t.Fatal("document not registered")
	}
	if got.ChunkCount != 3 {
		t.Errorf("registry chunk count = %d, want 3", got.ChunkCount)
	}
}

func TestIngestEmptyDocument(t *testing.T) {
	idx := index.NewMemoryIndex(8)
	reg := registry.New()
	p := newTestPipeline(idx, reg)

	metadata, err := p.Ingest(context.Background(), "empty.txt", "text/plain", 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if metadata.ChunkCount != 0 {
		t.Errorf("expected zero chunks, got %d", metadata.ChunkCount)
	}
	if _, ok := reg.Get(metadata.ID); !ok {
		t.Error("empty document should still be registered")
	}

	count, _ := idx.Count(context.Background())
	if count != 0 {
		t.Errorf("expected empty index, got %d entries", count)
	}
}

func TestIngestSupersedesSameFilename(t *testing.T) {
	idx := index.NewMemoryIndex(8)
	reg := registry.New()
	p := newTestPipeline(idx, reg)

	first, err := p.Ingest(context.Background(), "doc.txt", "text/plain", 1200, []byte(strings.Repeat("a", 1200)))
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Ingest(context.Background(), "doc.txt", "text/plain", 400, []byte(strings.Repeat("b", 400)))
	if err != nil {
		t.Fatal(err)
	}

	if first.ID == second.ID {
		t.Error("re-ingestion must mint a new document id")
	}
	if _, ok := reg.Get(first.ID); ok {
		t.Error("superseded document still registered")
	}
	if reg.Len() != 1 {
		t.Errorf("expected 1 registered document, got %d", reg.Len())
	}

	// The superseded document's index entries must be gone, not orphaned.
	count, _ := idx.Count(context.Background())
	if count != second.ChunkCount {
		t.Errorf("expected %d index entries, got %d", second.ChunkCount, count)
	}
}

func TestIngestExtractionFailureLeavesNoTrace(t *testing.T) {
	idx := index.NewMemoryIndex(8)
	reg := registry.New()
	p := newTestPipeline(idx, reg)

	_, err := p.Ingest(context.Background(), "blob.bin", "application/octet-stream", 4, []byte{0x00, 0x01, 0x02, 0x03})
	if err == nil {
		t.Fatal("expected extraction error")
	}
	if !domain.IsExtraction(err) {
		t.Errorf("expected extraction error, got %v", err)
	}
	if reg.Len() != 0 {
		t.Error("failed ingestion left a registry entry")
	}
	count, _ := idx.Count(context.Background())
	if count != 0 {
		t.Error("failed ingestion left index entries")
	}
}

type failingEmbedder struct {
	embedding.MockEmbedder
}

func (f *failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("upstream unavailable")
}

func TestIngestEmbeddingFailureLeavesNoTrace(t *testing.T) {
	idx := index.NewMemoryIndex(8)
	reg := registry.New()
	p := New(extractor.New(), chunker.New(500, 50), &failingEmbedder{}, idx, reg)

	_, err := p.Ingest(context.Background(), "doc.txt", "text/plain", 10, []byte("some text."))
	if err == nil {
		t.Fatal("expected embedding error")
	}
	if reg.Len() != 0 {
		t.Error("failed ingestion left a registry entry")
	}
	count, _ := idx.Count(context.Background())
	if count != 0 {
		t.Error("failed ingestion left index entries")
	}
}

func TestDeleteCascades(t *testing.T) {
	idx := index.NewMemoryIndex(8)
	reg := registry.New()
	p := newTestPipeline(idx, reg)

	metadata, err := p.Ingest(context.Background(), "doc.txt", "text/plain", 1200, []byte(strings.Repeat("a", 1200)))
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Delete(context.Background(), metadata.ID); err != nil {
		t.Fatal(err)
	}
	if reg.Len() != 0 {
		t.Error("document still registered after delete")
	}
	count, _ := idx.Count(context.Background())
	if count != 0 {
		t.Errorf("expected empty index after delete, got %d entries", count)
	}

	// Double-delete reports not found and changes nothing.
	if err := p.Delete(context.Background(), metadata.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUnknownID(t *testing.T) {
	idx := index.NewMemoryIndex(8)
	reg := registry.New()
	p := newTestPipeline(idx, reg)

	if _, err := p.Ingest(context.Background(), "doc.txt", "text/plain", 5, []byte("hello")); err != nil {
		t.Fatal(err)
	}

	if err := p.Delete(context.Background(), "no-such-id"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if reg.Len() != 1 {
		t.Error("delete of unknown id must not touch other documents")
	}
}

func TestConcurrentIngest(t *testing.T) {
	idx := index.NewMemoryIndex(8)
	reg := registry.New()
	p := newTestPipeline(idx, reg)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("doc-%d.txt", i)
			data := []byte(strings.Repeat(fmt.Sprintf("text %d ", i), 100))
			_, errs[i] = p.Ingest(context.Background(), name, "text/plain", int64(len(data)), data)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("ingest %d: %v", i, err)
		}
	}
	if reg.Len() != n {
		t.Errorf("expected %d registered documents, got %d", n, reg.Len())
	}

	// Every index entry must be tagged with a registered document, and each
	// document's entry count must match its recorded chunk count.
	entries, err := idx.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	perDoc := make(map[string]int, n)
	for _, e := range entries {
		perDoc[e.Payload.DocumentID]++
	}
	for _, m := range reg.ListAll() {
		if perDoc[m.ID] != m.ChunkCount {
			t.Errorf("%s: %d index entries, chunk count %d", m.Filename, perDoc[m.ID], m.ChunkCount)
		}
		delete(perDoc, m.ID)
	}
	if len(perDoc) != 0 {
		t.Errorf("index entries for unregistered documents: %v", perDoc)
	}
}
