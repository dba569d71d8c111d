package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/geziefer/docchat/internal/port"
)

func TestBoltPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	ctx := context.Background()

	idx, err := NewBoltIndex(path, 2)
	if err != nil {
		t.Fatal(err)
	}

	ids, err := idx.InsertBatch(ctx, []port.IndexItem{
		{Vector: []float32{1, 0}, Payload: port.Payload{DocumentID: "d1", Filename: "a.txt", Text: "alpha"}},
		{Vector: []float32{0, 1}, Payload: port.Payload{DocumentID: "d1", Filename: "a.txt", Text: "beta"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewBoltIndex(path, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if n, _ := reopened.Count(ctx); n != 2 {
		t.Fatalf("expected 2 entries after reopen, got %d", n)
	}

	matches, err := reopened.Search(ctx, []float32{1, 0}, 1, 0.9)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Payload.Text != "alpha" {
		t.Errorf("unexpected matches after reopen: %+v", matches)
	}

	if err := reopened.Delete(ctx, ids); err != nil {
		t.Fatal(err)
	}
	if n, _ := reopened.Count(ctx); n != 0 {
		t.Errorf("expected empty index after delete, got %d entries", n)
	}
}

func TestBoltScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	ctx := context.Background()

	idx, err := NewBoltIndex(path, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	_, err = idx.InsertBatch(ctx, []port.IndexItem{
		{Vector: []float32{1, 0}, Payload: port.Payload{DocumentID: "d1", Filename: "a.txt", Text: "alpha"}},
		{Vector: []float32{0, 1}, Payload: port.Payload{DocumentID: "d2", Filename: "b.txt", Text: "beta"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	entries, err := idx.Scan(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	byDoc := make(map[string]string)
	for _, e := range entries {
		byDoc[e.Payload.DocumentID] = e.Payload.Filename
	}
	if byDoc["d1"] != "a.txt" || byDoc["d2"] != "b.txt" {
		t.Errorf("unexpected payloads: %v", byDoc)
	}
}

func TestBoltInsertDimensionMismatch(t *testing.T) {
	idx, err := NewBoltIndex(filepath.Join(t.TempDir(), "index.db"), 3)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	_, err = idx.InsertBatch(context.Background(), []port.IndexItem{{Vector: []float32{1, 0}}})
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	if n, _ := idx.Count(context.Background()); n != 0 {
		t.Errorf("failed batch must persist nothing, got %d", n)
	}
}
