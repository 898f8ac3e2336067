package index

import (
	"context"
	"math"
	"testing"
)

func Test_MemoryIndex_QueryOrdersByDistance(t *testing.T) {
	t.Parallel()
	idx := NewMemoryIndex()
	ctx := context.Background()

	err := idx.Upsert(ctx, []Point{
		{Key: "a", Vector: []float32{1, 0}, Content: "exact match", Metadata: Metadata{DocumentID: 1, PageNumber: 1}},
		{Key: "b", Vector: []float32{0, 1}, Content: "orthogonal", Metadata: Metadata{DocumentID: 1, PageNumber: 2}},
		{Key: "c", Vector: []float32{1, 1}, Content: "diagonal", Metadata: Metadata{DocumentID: 2, PageNumber: 1}},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	hits, err := idx.Query(ctx, []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("want 3 hits, got %d", len(hits))
	}
	if hits[0].Content != "exact match" {
		t.Errorf("nearest: want exact match, got %q", hits[0].Content)
	}
	if hits[2].Content != "orthogonal" {
		t.Errorf("farthest: want orthogonal, got %q", hits[2].Content)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Distance < hits[i-1].Distance {
			t.Errorf("hits not ordered nearest-first: %v then %v", hits[i-1].Distance, hits[i].Distance)
		}
	}
	if math.Abs(float64(hits[0].Distance)) > 1e-6 {
		t.Errorf("identical vector: want distance ~0, got %v", hits[0].Distance)
	}
}

func Test_MemoryIndex_QueryRespectsK(t *testing.T) {
	t.Parallel()
	idx := NewMemoryIndex()
	ctx := context.Background()

	points := []Point{
		{Key: "a", Vector: []float32{1, 0}},
		{Key: "b", Vector: []float32{0.9, 0.1}},
		{Key: "c", Vector: []float32{0.8, 0.2}},
	}
	if err := idx.Upsert(ctx, points); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	hits, err := idx.Query(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("want 2 hits, got %d", len(hits))
	}
}

func Test_MemoryIndex_UpsertReplacesByKey(t *testing.T) {
	t.Parallel()
	idx := NewMemoryIndex()
	ctx := context.Background()

	if err := idx.Upsert(ctx, []Point{{Key: "a", Vector: []float32{1, 0}, Content: "old"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := idx.Upsert(ctx, []Point{{Key: "a", Vector: []float32{1, 0}, Content: "new"}}); err != nil {
		t.Fatalf("upsert replace: %v", err)
	}

	hits, err := idx.Query(ctx, []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 1 || hits[0].Content != "new" {
		t.Errorf("want single replaced point, got %+v", hits)
	}
}

func Test_CosineSimilarity_ZeroVector(t *testing.T) {
	t.Parallel()
	if got := cosineSimilarity([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Errorf("zero vector: want 0, got %v", got)
	}
}
