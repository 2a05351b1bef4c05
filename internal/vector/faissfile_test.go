package vector

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadFlatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx", "words.faiss")
	data := []float32{1, 2, 3, 4, 5, 6}
	require.NoError(t, WriteFlatFile(path, 3, data))

	ff, err := ReadFlatFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, ff.Dimensions)
	assert.Equal(t, 2, ff.Count)
	assert.Equal(t, MetricL2, ff.Metric)
	assert.Equal(t, data, ff.Data)
}

func TestWriteFlatFile_Layout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.faiss")
	require.NoError(t, WriteFlatFile(path, 2, []float32{1, 0}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "IxF2", string(raw[:4]))

	r := bytes.NewReader(raw[4:])
	var hdr flatHeader
	require.NoError(t, binary.Read(r, binary.LittleEndian, &hdr))
	assert.Equal(t, int32(2), hdr.D)
	assert.Equal(t, int64(1), hdr.NTotal)
	assert.Equal(t, headerDummy, hdr.Dummy1)
	assert.Equal(t, uint8(1), hdr.IsTrained)
	assert.Equal(t, MetricL2, hdr.Metric)

	var size uint64
	require.NoError(t, binary.Read(r, binary.LittleEndian, &size))
	assert.Equal(t, uint64(2), size)
	assert.Equal(t, int(headerBytes(MetricL2))+8, len(raw))
}

func TestReadFlatFile_InnerProductRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ip.faiss")
	var buf bytes.Buffer
	buf.WriteString("IxFI")
	_ = binary.Write(&buf, binary.LittleEndian, flatHeader{D: 2, NTotal: 0, Metric: MetricInnerProduct})
	_ = binary.Write(&buf, binary.LittleEndian, uint64(0))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	_, err := ReadFlatFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedIndex))
}

func TestReadFlatFile_UnknownFourCC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hnsw.faiss")
	require.NoError(t, os.WriteFile(path, []byte("IHNfxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"), 0644))

	_, err := ReadFlatFile(path)
	assert.ErrorIs(t, err, ErrUnsupportedIndex)
}

func TestReadFlatFile_Truncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.faiss")
	require.NoError(t, WriteFlatFile(path, 4, []float32{1, 2, 3, 4, 5, 6, 7, 8}))
	raw, _ := os.ReadFile(path)
	require.NoError(t, os.WriteFile(path, raw[:len(raw)-6], 0644))

	_, err := ReadFlatFile(path)
	assert.Error(t, err)
}

func TestReadFlatFile_SizeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.faiss")
	var buf bytes.Buffer
	buf.WriteString("IxF2")
	_ = binary.Write(&buf, binary.LittleEndian, flatHeader{D: 2, NTotal: 2, Metric: MetricL2})
	_ = binary.Write(&buf, binary.LittleEndian, uint64(3))
	_ = binary.Write(&buf, binary.LittleEndian, []float32{1, 2, 3})
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	_, err := ReadFlatFile(path)
	assert.Error(t, err)
}

func TestReadFlatFile_Missing(t *testing.T) {
	_, err := ReadFlatFile(filepath.Join(t.TempDir(), "nope.faiss"))
	assert.Error(t, err)
}
