package registry

import (
	"context"
	"testing"

	"github.com/geziefer/docchat/internal/adapter/index"
	"github.com/geziefer/docchat/internal/port"
)

func TestRestoreFromIndex(t *testing.T) {
	idx := index.NewMemoryIndex(3)
	ctx := context.Background()

	_, err := idx.InsertBatch(ctx, []port.IndexItem{
		{Vector: []float32{1, 0, 0}, Payload: port.Payload{DocumentID: "d1", Filename: "a.txt", Text: "alpha"}},
		{Vector: []float32{0, 1, 0}, Payload: port.Payload{DocumentID: "d1", Filename: "a.txt", Text: "beta"}},
		{Vector: []float32{0, 0, 1}, Payload: port.Payload{DocumentID: "d2", Filename: "b.txt", Text: "gamma"}},
		{Vector: []float32{1, 1, 0}, Payload: port.Payload{}}, // untagged, must be skipped
	})
	if err != nil {
		t.Fatal(err)
	}

	r := New()
	restored := Restore(ctx, r, idx)
	if restored != 2 {
		t.Fatalf("expected 2 restored documents, got %d", restored)
	}

	m, ok := r.Get("d1")
	if !ok {
		t.Fatal("d1 not restored")
	}
	if m.ChunkCount != 2 {
		t.Errorf("expected chunk count 2, got %d", m.ChunkCount)
	}
	if m.Filename != "a.txt" {
		t.Errorf("expected filename a.txt, got %s", m.Filename)
	}
	if m.ContentType != RestoredContentType {
		t.Errorf("restored metadata must carry the sentinel content type, got %s", m.ContentType)
	}
	if m.Size != 0 {
		t.Errorf("restored size must be 0, got %d", m.Size)
	}

	_, ids, ok := r.Remove("d2")
	if !ok || len(ids) != 1 {
		t.Errorf("expected d2 with 1 index id, got %v", ids)
	}
}

type unscannable struct {
	port.VectorIndex
}

func TestRestoreSkipsUnscannableIndex(t *testing.T) {
	r := New()
	if n := Restore(context.Background(), r, unscannable{}); n != 0 {
		t.Errorf("expected no restored documents, got %d", n)
	}
	if r.Len() != 0 {
		t.Error("registry must stay empty")
	}
}
