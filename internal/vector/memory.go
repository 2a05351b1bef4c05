package vector

import (
	"container/heap"
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryIndex is an in-memory flat index using brute-force squared L2 search.
// It reads and writes the FAISS IndexFlatL2 file format without cgo.
type MemoryIndex struct {
	dimensions int
	data       []float32 // row-major, id i lives at data[i*dimensions:(i+1)*dimensions]
	mu         sync.RWMutex
}

// NewMemoryIndex creates an empty in-memory index. A dimension of 0 is
// resolved from the file on Load.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions < 0 {
		return nil, fmt.Errorf("dimensions must not be negative")
	}
	return &MemoryIndex{dimensions: dimensions}, nil
}

// Type returns the index type identifier.
func (m *MemoryIndex) Type() string {
	return string(IndexTypeMemory)
}

// Add appends vectors; the first added vector gets the next free id.
func (m *MemoryIndex) Add(vectors [][]float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, vec := range vectors {
		if m.dimensions == 0 {
			m.dimensions = len(vec)
		}
		if len(vec) != m.dimensions || len(vec) == 0 {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vec), m.dimensions)
		}
		m.data = append(m.data, vec...)
	}
	return nil
}

// Search returns up to k ids ordered by ascending squared L2 distance.
// Equal distances are ordered by ascending id. The result is never padded.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	n := m.size()
	if k <= 0 || n == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k > n {
		k = n
	}

	h := make(resultHeap, 0, k)
	for id := 0; id < n; id++ {
		row := m.data[id*m.dimensions : (id+1)*m.dimensions]
		r := VectorResult{ID: int64(id), Distance: SquaredL2(query, row)}
		if len(h) < k {
			heap.Push(&h, r)
			continue
		}
		if worse(h[0], r) {
			h[0] = r
			heap.Fix(&h, 0)
		}
	}

	results := make([]*VectorResult, len(h))
	for i := range h {
		r := h[i]
		results[i] = &r
	}
	SortResults(results)
	return results, nil
}

// Reconstruct returns a copy of the vector stored under id.
func (m *MemoryIndex) Reconstruct(id int64) ([]float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 0 || int(id) >= m.size() {
		return nil, fmt.Errorf("id %d out of range [0, %d)", id, m.size())
	}
	out := make([]float32, m.dimensions)
	copy(out, m.data[int(id)*m.dimensions:])
	return out, nil
}

// Save writes the index as a FAISS IndexFlatL2 file.
func (m *MemoryIndex) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if path == "" {
		return nil
	}
	return WriteFlatFile(path, m.dimensions, m.data)
}

// Load reads a FAISS IndexFlatL2 file and replaces the in-memory contents.
// If the index was created with a fixed dimension, the file must match it.
func (m *MemoryIndex) Load(path string) error {
	ff, err := ReadFlatFile(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dimensions != 0 && m.dimensions != ff.Dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, index expects %d", ff.Dimensions, m.dimensions)
	}
	m.dimensions = ff.Dimensions
	m.data = ff.Data
	return nil
}

// Size returns the number of vectors in the index.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size()
}

func (m *MemoryIndex) size() int {
	if m.dimensions == 0 {
		return 0
	}
	return len(m.data) / m.dimensions
}

// Dimensions returns the vector dimension, or 0 before anything is loaded.
func (m *MemoryIndex) Dimensions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dimensions
}

// Close releases the vectors.
func (m *MemoryIndex) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}

// SortResults orders results by ascending distance, then ascending id.
func SortResults(results []*VectorResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return less(*results[i], *results[j])
	})
}

func less(a, b VectorResult) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.ID < b.ID
}

// worse reports whether a ranks after b.
func worse(a, b VectorResult) bool {
	return less(b, a)
}

// resultHeap is a max-heap on (distance, id): the root is the worst kept result.
type resultHeap []VectorResult

func (h resultHeap) Len() int            { return len(h) }
func (h resultHeap) Less(i, j int) bool  { return worse(h[i], h[j]) }
func (h resultHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *resultHeap) Push(x interface{}) { *h = append(*h, x.(VectorResult)) }
func (h *resultHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
