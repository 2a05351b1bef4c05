package vector

import "fmt"

// IndexType represents the type of vector index to use.
type IndexType string

const (
	// IndexTypeMemory decodes the FAISS file in Go and searches by brute force.
	IndexTypeMemory IndexType = "memory"
	// IndexTypeFAISS hands the file to libfaiss. Requires -tags=faiss.
	IndexTypeFAISS IndexType = "faiss"
)

// NewVectorIndex creates an unloaded vector index of the specified type.
// Supported types: "memory" (default), "faiss".
func NewVectorIndex(indexType string) (VectorIndex, error) {
	switch IndexType(indexType) {
	case IndexTypeMemory, "":
		return NewMemoryIndex(0)
	case IndexTypeFAISS:
		idx, err := NewFAISSIndex()
		if err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: memory, faiss)", indexType)
	}
}

// IsFAISSAvailable returns true if FAISS support is compiled in.
func IsFAISSAvailable() bool {
	return faissCompiled()
}
