//go:build faiss && cgo
// +build faiss,cgo

package vector

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// The Go writer produces files libfaiss reads back; both backends must agree.
func TestFAISSIndex_MatchesMemoryIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.faiss")
	mem, _ := NewMemoryIndex(3)
	_ = mem.Add([][]float32{{1, 0, 0}, {0.9, 0.1, 0}, {0, 1, 0}, {0, 0, 1}})
	if err := mem.Save(path); err != nil {
		t.Fatal(err)
	}

	idx, err := NewFAISSIndex()
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	if err := idx.Load(path); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 4 || idx.Dimensions() != 3 {
		t.Fatalf("Size=%d Dimensions=%d", idx.Size(), idx.Dimensions())
	}

	ctx := context.Background()
	query := []float32{1, 0, 0}
	want, _ := mem.Search(ctx, query, 3)
	got, err := idx.Search(ctx, query, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d results, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("result %d: id %d, want %d", i, got[i].ID, want[i].ID)
		}
	}

	v, err := idx.Reconstruct(2)
	if err != nil {
		t.Fatal(err)
	}
	if v[1] != 1 {
		t.Errorf("Reconstruct(2) = %v", v)
	}
}

func TestFAISSIndex_RejectsInnerProduct(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ip.faiss")
	if err := WriteFlatFile(path, 2, []float32{1, 0, 0, 1}); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Rewrite as IndexFlatIP: fourcc plus the metric field that closes the header.
	copy(raw, "IxFI")
	metricAt := 4 + binary.Size(flatHeader{}) - 4
	binary.LittleEndian.PutUint32(raw[metricAt:], uint32(MetricInnerProduct))
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatal(err)
	}

	idx, _ := NewFAISSIndex()
	defer idx.Close()
	err = idx.Load(path)
	if !errors.Is(err, ErrUnsupportedIndex) {
		t.Fatalf("Load = %v, want ErrUnsupportedIndex", err)
	}
	if idx.Size() != 0 {
		t.Errorf("rejected index must not be kept, Size=%d", idx.Size())
	}
}
