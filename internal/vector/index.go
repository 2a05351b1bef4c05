// Package vector provides read-only vector indexes and nearest-neighbor search.
package vector

import "context"

// VectorIndex is an immutable, id-addressed vector index searched by squared L2 distance.
// Ids are dense: 0 <= id < Size().
type VectorIndex interface {
	Load(path string) error
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	Reconstruct(id int64) ([]float32, error)
	Size() int
	Dimensions() int
	Type() string
	Close() error
}

// VectorResult is a single nearest-neighbor hit.
type VectorResult struct {
	ID       int64
	Distance float64 // squared L2
}
