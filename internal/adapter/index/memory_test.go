package index

import (
	"context"
	"math"
	"testing"

	"github.com/geziefer/docchat/internal/port"
)

func TestMemoryInsertAndSearch(t *testing.T) {
	idx := NewMemoryIndex(3)
	ctx := context.Background()

	ids, err := idx.InsertBatch(ctx, []port.IndexItem{
		{Vector: []float32{1, 0, 0}, Payload: port.Payload{DocumentID: "d1", Filename: "a.txt", Text: "alpha"}},
		{Vector: []float32{0.9, 0.1, 0}, Payload: port.Payload{DocumentID: "d1", Filename: "a.txt", Text: "beta"}},
		{Vector: []float32{0, 0, 1}, Payload: port.Payload{DocumentID: "d2", Filename: "b.txt", Text: "gamma"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}
	seen := make(map[string]struct{})
	for _, id := range ids {
		if id == "" {
			t.Error("empty id")
		}
		if _, dup := seen[id]; dup {
			t.Error("duplicate id")
		}
		seen[id] = struct{}{}
	}

	matches, err := idx.Search(ctx, []float32{1, 0, 0}, 10, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches above 0.5, got %d", len(matches))
	}
	if matches[0].Payload.Text != "alpha" {
		t.Errorf("expected best match alpha, got %s", matches[0].Payload.Text)
	}
	if matches[0].Score < matches[1].Score {
		t.Error("matches not ranked by descending score")
	}
	if math.Abs(matches[0].Score-1.0) > 1e-6 {
		t.Errorf("expected identical vector score ~1.0, got %f", matches[0].Score)
	}
}

func TestMemorySearchCapsK(t *testing.T) {
	idx := NewMemoryIndex(2)
	ctx := context.Background()

	var items []port.IndexItem
	for i := 0; i < 5; i++ {
		items = append(items, port.IndexItem{Vector: []float32{1, 0}})
	}
	if _, err := idx.InsertBatch(ctx, items); err != nil {
		t.Fatal(err)
	}

	matches, err := idx.Search(ctx, []float32{1, 0}, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Errorf("expected k=2 matches, got %d", len(matches))
	}
}

func TestMemoryDimensionMismatch(t *testing.T) {
	idx := NewMemoryIndex(3)
	ctx := context.Background()

	if _, err := idx.InsertBatch(ctx, []port.IndexItem{{Vector: []float32{1, 0}}}); err == nil {
		t.Error("expected insert dimension mismatch error")
	}
	if n, _ := idx.Count(ctx); n != 0 {
		t.Errorf("failed batch must store nothing, got %d entries", n)
	}

	if _, err := idx.Search(ctx, []float32{1}, 3, 0); err == nil {
		t.Error("expected search dimension mismatch error")
	}
}

func TestMemoryDelete(t *testing.T) {
	idx := NewMemoryIndex(2)
	ctx := context.Background()

	ids, err := idx.InsertBatch(ctx, []port.IndexItem{
		{Vector: []float32{1, 0}},
		{Vector: []float32{0, 1}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := idx.Delete(ctx, []string{ids[0], "absent-id"}); err != nil {
		t.Fatalf("delete with absent id must not fail: %v", err)
	}
	if n, _ := idx.Count(ctx); n != 1 {
		t.Errorf("expected 1 entry left, got %d", n)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		a, b []float32
		want float64
	}{
		{[]float32{1, 0}, []float32{1, 0}, 1},
		{[]float32{1, 0}, []float32{0, 1}, 0},
		{[]float32{1, 0}, []float32{-1, 0}, -1},
		{[]float32{0, 0}, []float32{1, 0}, 0},
		{[]float32{1}, []float32{1, 0}, 0}, // length mismatch
	}
	for i, tt := range tests {
		if got := cosineSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("case %d: expected %f, got %f", i, tt.want, got)
		}
	}
}
