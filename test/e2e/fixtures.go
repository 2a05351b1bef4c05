package e2e

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hyperjump/wordalchemy/internal/vector"
)

// WordListExtensions are the word list encodings the loader understands.
var WordListExtensions = []string{"", ".gz", ".zst", ".lz4"}

// WriteArtifacts writes v as a FAISS flat index and a word list into dir.
// ext selects the word list compression (one of WordListExtensions).
func WriteArtifacts(dir string, v *Vocabulary, ext string) (indexPath, wordsPath string, err error) {
	idx, err := vector.NewMemoryIndex(Dimensions)
	if err != nil {
		return "", "", err
	}
	defer idx.Close()
	if err := idx.Add(v.Vectors); err != nil {
		return "", "", err
	}
	indexPath = filepath.Join(dir, "word_embeddings.faiss")
	if err := idx.Save(indexPath); err != nil {
		return "", "", fmt.Errorf("save index: %w", err)
	}

	data, err := EncodeWordList(v.Words, ext)
	if err != nil {
		return "", "", err
	}
	wordsPath = filepath.Join(dir, "words.list"+ext)
	if err := os.WriteFile(wordsPath, data, 0644); err != nil {
		return "", "", err
	}
	return indexPath, wordsPath, nil
}

// EncodeWordList renders words one per line, compressed according to ext.
func EncodeWordList(words []string, ext string) ([]byte, error) {
	plain := []byte(strings.Join(words, "\n") + "\n")
	var buf bytes.Buffer
	var w io.WriteCloser
	switch ext {
	case "":
		return plain, nil
	case ".gz":
		w = gzip.NewWriter(&buf)
	case ".zst":
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		w = zw
	case ".lz4":
		w = lz4.NewWriter(&buf)
	default:
		return nil, fmt.Errorf("unsupported word list extension %q", ext)
	}
	if _, err := w.Write(plain); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
