package index

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is a brute-force cosine-distance Index kept entirely in memory.
// It backs local runs and tests where no Qdrant instance is available.
type MemoryIndex struct {
	mu     sync.RWMutex
	points map[string]Point
}

// NewMemoryIndex creates an empty MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{points: make(map[string]Point)}
}

// Upsert stores or replaces points keyed by their vector key.
func (m *MemoryIndex) Upsert(_ context.Context, points []Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range points {
		m.points[p.Key] = p
	}
	return nil
}

// Query scans every stored point and returns the k nearest by cosine
// distance. Ties keep insertion-independent deterministic order via the key.
func (m *MemoryIndex) Query(_ context.Context, vector []float32, k int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		key      string
		distance float32
		point    Point
	}
	results := make([]scored, 0, len(m.points))
	for key, p := range m.points {
		results = append(results, scored{
			key:      key,
			distance: 1 - cosineSimilarity(vector, p.Vector),
			point:    p,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].distance != results[j].distance {
			return results[i].distance < results[j].distance
		}
		return results[i].key < results[j].key
	})
	if k > 0 && len(results) > k {
		results = results[:k]
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, Hit{
			Content:  r.point.Content,
			Metadata: r.point.Metadata,
			Distance: r.distance,
		})
	}
	return hits, nil
}

// Ping always succeeds; the in-memory index has no external dependency.
func (m *MemoryIndex) Ping(context.Context) error { return nil }

// Name returns the dependency label used in readiness responses.
func (m *MemoryIndex) Name() string { return "memory-index" }

// Close is a no-op for the in-memory index.
func (m *MemoryIndex) Close() error { return nil }

// cosineSimilarity returns the cosine of the angle between a and b,
// or 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
