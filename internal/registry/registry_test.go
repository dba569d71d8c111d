package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/geziefer/docchat/internal/domain"
)

func TestPutGetRemove(t *testing.T) {
	r := New()
	m := domain.NewDocumentMetadata("doc1", "notes.txt", "text/plain", 42).WithChunkCount(2)

	r.Put(m, []string{"s1", "s2"})

	got, ok := r.Get("doc1")
	if !ok {
		t.Fatal("expected document to be found")
	}
	if got.Filename != "notes.txt" || got.ChunkCount != 2 {
		t.Errorf("unexpected metadata: %+v", got)
	}

	removed, ids, ok := r.Remove("doc1")
	if !ok {
		t.Fatal("expected remove to succeed")
	}
	if removed.ID != "doc1" {
		t.Errorf("expected id doc1, got %s", removed.ID)
	}
	if len(ids) != 2 || ids[0] != "s1" || ids[1] != "s2" {
		t.Errorf("expected full index-id set, got %v", ids)
	}

	if _, ok := r.Get("doc1"); ok {
		t.Error("document still present after remove")
	}
}

func TestRemoveUnknown(t *testing.T) {
	r := New()
	r.Put(domain.NewDocumentMetadata("doc1", "a.txt", "text/plain", 0), []string{"s1"})

	_, ids, ok := r.Remove("no-such-id")
	if ok {
		t.Error("expected remove of unknown id to report not found")
	}
	if ids != nil {
		t.Error("expected nil index ids for unknown id")
	}
	if r.Len() != 1 {
		t.Errorf("registry size changed: %d", r.Len())
	}
}

func TestPutCopiesIndexIDs(t *testing.T) {
	r := New()
	ids := []string{"s1", "s2"}
	r.Put(domain.NewDocumentMetadata("doc1", "a.txt", "text/plain", 0), ids)

	ids[0] = "mutated"

	_, got, _ := r.Remove("doc1")
	if got[0] != "s1" {
		t.Errorf("caller mutation leaked into registry: %v", got)
	}
}

func TestListAllSnapshot(t *testing.T) {
	r := New()
	r.Put(domain.NewDocumentMetadata("doc1", "a.txt", "text/plain", 0), nil)

	snapshot := r.ListAll()
	if len(snapshot) != 1 {
		t.Fatalf("expected 1 document, got %d", len(snapshot))
	}

	r.Put(domain.NewDocumentMetadata("doc2", "b.txt", "text/plain", 0), nil)
	r.Remove("doc1")

	if len(snapshot) != 1 || snapshot[0].ID != "doc1" {
		t.Error("snapshot changed after later registry mutations")
	}
}

func TestFindByFilename(t *testing.T) {
	r := New()
	r.Put(domain.NewDocumentMetadata("doc1", "a.txt", "text/plain", 0), nil)
	r.Put(domain.NewDocumentMetadata("doc2", "b.txt", "text/plain", 0), nil)

	id, ok := r.FindByFilename("b.txt")
	if !ok || id != "doc2" {
		t.Errorf("expected doc2, got %q (found=%v)", id, ok)
	}

	if _, ok := r.FindByFilename("missing.txt"); ok {
		t.Error("expected missing filename to report not found")
	}
}

func TestConcurrentPutRemove(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("doc%d", n)
			name := fmt.Sprintf("file%d.txt", n)
			r.Put(domain.NewDocumentMetadata(id, name, "text/plain", 0), []string{id + "-s1"})
			if n%2 == 0 {
				r.Remove(id)
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != 25 {
		t.Errorf("expected 25 documents, got %d", r.Len())
	}
	for _, m := range r.ListAll() {
		_, ids, ok := r.Remove(m.ID)
		if !ok || len(ids) != 1 || ids[0] != m.ID+"-s1" {
			t.Errorf("document %s has wrong index ids: %v", m.ID, ids)
		}
	}
}
