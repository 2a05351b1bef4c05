//go:build faiss && cgo
// +build faiss,cgo

package vector

/*
#cgo CFLAGS: -I/opt/homebrew/include -I/usr/local/include
#cgo LDFLAGS: -L/opt/homebrew/lib -L/usr/local/lib -lfaiss_c

#include <stdlib.h>
#include <faiss/c_api/Index_c.h>
#include <faiss/c_api/index_io_c.h>
#include <faiss/c_api/error_c.h>
*/
import "C"

import (
	"context"
	"fmt"
	"sync"
	"unsafe"
)

// FAISSIndex wraps a FAISS index read from disk with faiss_read_index_fname.
// Searches go through libfaiss; results are re-sorted so ties order by id.
type FAISSIndex struct {
	index *C.FaissIndex
	mu    sync.RWMutex
}

// NewFAISSIndex returns an empty FAISS-backed index; call Load to read a file.
func NewFAISSIndex() (*FAISSIndex, error) {
	return &FAISSIndex{}, nil
}

// faissLastError returns the last FAISS error message.
func faissLastError() string {
	cErr := C.faiss_get_last_error()
	if cErr == nil {
		return "unknown error"
	}
	return C.GoString(cErr)
}

// Load reads a FAISS index file, replacing any index already held.
// Only L2 indexes are accepted.
func (f *FAISSIndex) Load(path string) error {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	var newIndex *C.FaissIndex
	if ret := C.faiss_read_index_fname(cPath, 0, &newIndex); ret != 0 {
		return fmt.Errorf("failed to load FAISS index: %s", faissLastError())
	}
	if metric := C.faiss_Index_metric_type(newIndex); metric != C.METRIC_L2 {
		C.faiss_Index_free(newIndex)
		return fmt.Errorf("%w: metric type %d", ErrUnsupportedIndex, int(metric))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.index != nil {
		C.faiss_Index_free(f.index)
	}
	f.index = newIndex
	return nil
}

// Search returns up to k ids by ascending squared L2 distance.
func (f *FAISSIndex) Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.index == nil {
		return nil, fmt.Errorf("FAISS index not loaded")
	}
	if d := int(C.faiss_Index_d(f.index)); len(query) != d {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), d)
	}
	if k <= 0 {
		return nil, nil
	}
	ntotal := int(C.faiss_Index_ntotal(f.index))
	if ntotal == 0 {
		return nil, nil
	}
	if k > ntotal {
		k = ntotal
	}

	distances := make([]float32, k)
	labels := make([]int64, k)
	ret := C.faiss_Index_search(
		f.index,
		1,
		(*C.float)(unsafe.Pointer(&query[0])),
		C.idx_t(k),
		(*C.float)(unsafe.Pointer(&distances[0])),
		(*C.idx_t)(unsafe.Pointer(&labels[0])),
	)
	if ret != 0 {
		return nil, fmt.Errorf("FAISS search failed: %s", faissLastError())
	}

	results := make([]*VectorResult, 0, k)
	for i := 0; i < k; i++ {
		if labels[i] < 0 {
			continue
		}
		results = append(results, &VectorResult{ID: labels[i], Distance: float64(distances[i])})
	}
	SortResults(results)
	return results, nil
}

// Reconstruct copies the stored vector for id out of the FAISS index.
func (f *FAISSIndex) Reconstruct(id int64) ([]float32, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.index == nil {
		return nil, fmt.Errorf("FAISS index not loaded")
	}
	ntotal := int64(C.faiss_Index_ntotal(f.index))
	if id < 0 || id >= ntotal {
		return nil, fmt.Errorf("id %d out of range [0, %d)", id, ntotal)
	}
	out := make([]float32, int(C.faiss_Index_d(f.index)))
	if ret := C.faiss_Index_reconstruct(f.index, C.idx_t(id), (*C.float)(unsafe.Pointer(&out[0]))); ret != 0 {
		return nil, fmt.Errorf("FAISS reconstruct failed: %s", faissLastError())
	}
	return out, nil
}

// Size returns the number of vectors in the index.
func (f *FAISSIndex) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.index == nil {
		return 0
	}
	return int(C.faiss_Index_ntotal(f.index))
}

// Dimensions returns the vector dimension.
func (f *FAISSIndex) Dimensions() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.index == nil {
		return 0
	}
	return int(C.faiss_Index_d(f.index))
}

// Close frees the FAISS index resources.
func (f *FAISSIndex) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.index != nil {
		C.faiss_Index_free(f.index)
		f.index = nil
	}
	return nil
}

// Type returns the index type identifier.
func (f *FAISSIndex) Type() string {
	return string(IndexTypeFAISS)
}

func faissCompiled() bool { return true }
