package vector

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/exp/mmap"
)

// FAISS metric type codes as stored in the index header.
const (
	MetricInnerProduct int32 = 0
	MetricL2           int32 = 1
)

// headerDummy is the placeholder FAISS writes twice after ntotal.
const headerDummy int64 = 1 << 20

// ErrUnsupportedIndex is returned for FAISS files that are not flat L2 indexes.
var ErrUnsupportedIndex = errors.New("unsupported FAISS index")

// FlatFile is the decoded content of a FAISS flat index file.
type FlatFile struct {
	Dimensions int
	Count      int
	Metric     int32
	Data       []float32 // Count*Dimensions values, row-major by id
}

type flatHeader struct {
	D         int32
	NTotal    int64
	Dummy1    int64
	Dummy2    int64
	IsTrained uint8
	Metric    int32
}

// ReadFlatFile decodes a FAISS IndexFlatL2 file ("IxF2", or "IxFl" with the L2 metric).
// The file is memory-mapped and decoded in blocks.
func ReadFlatFile(path string) (*FlatFile, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap index file: %w", err)
	}
	defer r.Close()

	sr := io.NewSectionReader(r, 0, int64(r.Len()))
	br := bufio.NewReaderSize(sr, 1<<16)

	var fourcc [4]byte
	if _, err := io.ReadFull(br, fourcc[:]); err != nil {
		return nil, fmt.Errorf("read fourcc: %w", err)
	}
	switch string(fourcc[:]) {
	case "IxF2", "IxFl":
	case "IxFI":
		return nil, fmt.Errorf("%w: inner product index %q", ErrUnsupportedIndex, fourcc[:])
	default:
		return nil, fmt.Errorf("%w: fourcc %q", ErrUnsupportedIndex, fourcc[:])
	}

	var hdr flatHeader
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if hdr.Metric > 1 {
		var metricArg float32
		if err := binary.Read(br, binary.LittleEndian, &metricArg); err != nil {
			return nil, fmt.Errorf("read metric arg: %w", err)
		}
	}
	if hdr.Metric != MetricL2 {
		return nil, fmt.Errorf("%w: metric type %d", ErrUnsupportedIndex, hdr.Metric)
	}
	if hdr.D <= 0 || hdr.NTotal < 0 {
		return nil, fmt.Errorf("invalid header: d=%d ntotal=%d", hdr.D, hdr.NTotal)
	}

	var size uint64
	if err := binary.Read(br, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("read codes size: %w", err)
	}
	want := uint64(hdr.NTotal) * uint64(hdr.D)
	if size != want {
		return nil, fmt.Errorf("codes size %d does not match ntotal*d = %d", size, want)
	}
	if remaining := int64(r.Len()) - headerBytes(hdr.Metric); uint64(remaining) < size*4 {
		return nil, fmt.Errorf("truncated index file: need %d bytes of vectors, have %d", size*4, remaining)
	}

	data := make([]float32, size)
	buf := make([]byte, 1<<16)
	for off := 0; off < len(data); {
		n := len(data) - off
		if n > len(buf)/4 {
			n = len(buf) / 4
		}
		if _, err := io.ReadFull(br, buf[:n*4]); err != nil {
			return nil, fmt.Errorf("read vectors: %w", err)
		}
		for i := 0; i < n; i++ {
			data[off+i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		}
		off += n
	}

	return &FlatFile{
		Dimensions: int(hdr.D),
		Count:      int(hdr.NTotal),
		Metric:     hdr.Metric,
		Data:       data,
	}, nil
}

func headerBytes(metric int32) int64 {
	n := int64(4 + binary.Size(flatHeader{}) + 8)
	if metric > 1 {
		n += 4
	}
	return n
}

// WriteFlatFile writes vectors as a FAISS IndexFlatL2 file readable by faiss.read_index.
func WriteFlatFile(path string, dimensions int, data []float32) error {
	if dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive")
	}
	if len(data)%dimensions != 0 {
		return fmt.Errorf("data length %d is not a multiple of dimensions %d", len(data), dimensions)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString("IxF2"); err != nil {
		return fmt.Errorf("write fourcc: %w", err)
	}
	hdr := flatHeader{
		D:         int32(dimensions),
		NTotal:    int64(len(data) / dimensions),
		Dummy1:    headerDummy,
		Dummy2:    headerDummy,
		IsTrained: 1,
		Metric:    MetricL2,
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(data))); err != nil {
		return fmt.Errorf("write codes size: %w", err)
	}
	if _, err := w.Write(float32SliceToBytes(data)); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush index file: %w", err)
	}
	return f.Close()
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}
