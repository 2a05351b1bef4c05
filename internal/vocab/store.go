// Package vocab holds the immutable word vocabulary: a FAISS flat index and the
// word list aligned with its ids, loaded lazily on first use.
package vocab

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/wordalchemy/internal/vector"
	"github.com/hyperjump/wordalchemy/pkg/utils"
)

// Entry is one vocabulary word with its vector. ID is the load position.
type Entry struct {
	ID     int64
	Word   string
	Vector []float32
}

// Neighbor is a nearest-neighbor hit resolved to its word.
type Neighbor struct {
	ID       int64
	Word     string
	Distance float64 // squared L2
}

// IndexFactory creates an unloaded vector index.
type IndexFactory func() (vector.VectorIndex, error)

// Store is the process-wide vocabulary. It is safe for concurrent use; the
// artifacts are read at most once and a failed load is returned to every caller.
type Store struct {
	indexPath string
	wordsPath string
	logger    *zap.Logger
	newIndex  IndexFactory
	open      Opener

	mu      sync.Mutex
	ready   atomic.Bool
	loadErr error

	index      vector.VectorIndex
	words      []string
	lookup     map[string]int64
	duplicates int

	entriesOnce sync.Once
	entries     []Entry
	entriesErr  error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.logger = utils.OrNop(l)
	}
}

// WithIndexType selects the vector index backend ("memory" or "faiss").
func WithIndexType(indexType string) Option {
	return func(s *Store) {
		s.newIndex = func() (vector.VectorIndex, error) {
			return vector.NewVectorIndex(indexType)
		}
	}
}

// WithIndexFactory overrides how the vector index is created.
func WithIndexFactory(f IndexFactory) Option {
	return func(s *Store) {
		s.newIndex = f
	}
}

// WithOpener overrides how the word list is opened.
func WithOpener(o Opener) Option {
	return func(s *Store) {
		s.open = o
	}
}

// New creates an unloaded store over the given artifacts.
func New(indexPath, wordsPath string, opts ...Option) *Store {
	s := &Store{
		indexPath: indexPath,
		wordsPath: wordsPath,
		logger:    zap.NewNop(),
		open:      openFile,
		newIndex: func() (vector.VectorIndex, error) {
			return vector.NewVectorIndex(string(vector.IndexTypeMemory))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads both artifacts once. Later calls return the first outcome.
// A context cancelled before the load starts does not consume the attempt.
func (s *Store) Load(ctx context.Context) error {
	if s.ready.Load() {
		return s.loadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready.Load() {
		return s.loadErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.loadErr = s.load(ctx)
	s.ready.Store(true)
	return s.loadErr
}

func (s *Store) load(ctx context.Context) error {
	start := time.Now()
	s.logger.Info("loading vocabulary",
		zap.String("index", s.indexPath),
		zap.String("words", s.wordsPath))

	for _, p := range []string{s.indexPath, s.wordsPath} {
		if _, err := os.Stat(p); err != nil {
			return &LoadError{Path: p, Err: err}
		}
	}

	var (
		idx   vector.VectorIndex
		words []string
	)
	// Not errgroup.WithContext: a cancelled caller must not poison the
	// shared, non-retryable load.
	var g errgroup.Group
	g.Go(func() error {
		i, err := s.newIndex()
		if err != nil {
			return &LoadError{Path: s.indexPath, Err: err}
		}
		if err := i.Load(s.indexPath); err != nil {
			_ = i.Close()
			return &LoadError{Path: s.indexPath, Err: err}
		}
		idx = i
		return nil
	})
	g.Go(func() error {
		w, err := readWordList(s.open, s.wordsPath)
		if err != nil {
			return &LoadError{Path: s.wordsPath, Err: err}
		}
		words = w
		return nil
	})
	if err := g.Wait(); err != nil {
		if idx != nil {
			_ = idx.Close()
		}
		s.logger.Error("vocabulary load failed", zap.Error(err))
		return err
	}

	if idx.Size() != len(words) {
		_ = idx.Close()
		err := &CorruptIndexError{Vectors: idx.Size(), Words: len(words)}
		s.logger.Error("vocabulary load failed", zap.Error(err))
		return err
	}

	lookup := make(map[string]int64, len(words))
	dups := 0
	for i, w := range words {
		if _, ok := lookup[w]; ok {
			dups++
			continue
		}
		lookup[w] = int64(i)
	}

	s.index = idx
	s.words = words
	s.lookup = lookup
	s.duplicates = dups

	s.logger.Info("vocabulary loaded",
		zap.Int("words", len(words)),
		zap.Int("dimensions", idx.Dimensions()),
		zap.Int("duplicates", dups),
		zap.String("index_type", idx.Type()),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// Exists reports whether word is in the vocabulary.
func (s *Store) Exists(ctx context.Context, word string) (bool, error) {
	if err := s.Load(ctx); err != nil {
		return false, err
	}
	_, ok := s.lookup[word]
	return ok, nil
}

// ID returns the id of the first occurrence of word.
func (s *Store) ID(ctx context.Context, word string) (int64, error) {
	if err := s.Load(ctx); err != nil {
		return 0, err
	}
	id, ok := s.lookup[word]
	if !ok {
		return 0, &WordNotFoundError{Word: word}
	}
	return id, nil
}

// VectorOf returns a copy of the vector of word.
func (s *Store) VectorOf(ctx context.Context, word string) ([]float32, error) {
	id, err := s.ID(ctx, word)
	if err != nil {
		return nil, err
	}
	v, err := s.index.Reconstruct(id)
	if err != nil {
		return nil, fmt.Errorf("reconstruct %q: %w", word, err)
	}
	return v, nil
}

// AllEntries returns every vocabulary entry in id order. The slice is built
// once and shared between callers; it must not be modified.
func (s *Store) AllEntries(ctx context.Context) ([]Entry, error) {
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	s.entriesOnce.Do(func() {
		n := len(s.words)
		dim := s.index.Dimensions()
		slab := make([]float32, 0, n*dim)
		entries := make([]Entry, n)
		for i, w := range s.words {
			v, err := s.index.Reconstruct(int64(i))
			if err != nil {
				s.entriesErr = fmt.Errorf("reconstruct id %d: %w", i, err)
				return
			}
			off := len(slab)
			slab = append(slab, v...)
			entries[i] = Entry{ID: int64(i), Word: w, Vector: slab[off:len(slab):len(slab)]}
		}
		s.entries = entries
	})
	return s.entries, s.entriesErr
}

// Nearest returns up to k entries ordered by ascending squared distance to query.
func (s *Store) Nearest(ctx context.Context, query []float32, k int) ([]Neighbor, error) {
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []Neighbor{}, nil
	}
	hits, err := s.index.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	out := make([]Neighbor, 0, len(hits))
	for _, h := range hits {
		if h.ID < 0 || int(h.ID) >= len(s.words) {
			continue
		}
		out = append(out, Neighbor{ID: h.ID, Word: s.words[h.ID], Distance: h.Distance})
	}
	return out, nil
}

// Size returns the number of vocabulary entries.
func (s *Store) Size(ctx context.Context) (int, error) {
	if err := s.Load(ctx); err != nil {
		return 0, err
	}
	return len(s.words), nil
}

// Dimensions returns the vector dimension.
func (s *Store) Dimensions(ctx context.Context) (int, error) {
	if err := s.Load(ctx); err != nil {
		return 0, err
	}
	return s.index.Dimensions(), nil
}

// Words returns the word list in id order. The slice must not be modified.
func (s *Store) Words(ctx context.Context) ([]string, error) {
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s.words, nil
}

// Stats describes a loaded store.
type Stats struct {
	Loaded     bool   `json:"loaded"`
	Words      int    `json:"words"`
	Dimensions int    `json:"dimensions"`
	Duplicates int    `json:"duplicates"`
	IndexType  string `json:"index_type,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Stats reports load state without triggering a load.
func (s *Store) Stats() Stats {
	if !s.ready.Load() {
		return Stats{}
	}
	if s.loadErr != nil {
		return Stats{Error: s.loadErr.Error()}
	}
	return Stats{
		Loaded:     true,
		Words:      len(s.words),
		Dimensions: s.index.Dimensions(),
		Duplicates: s.duplicates,
		IndexType:  s.index.Type(),
	}
}

// Paths returns the index and word list paths.
func (s *Store) Paths() (index, words string) {
	return s.indexPath, s.wordsPath
}

// Close releases the index.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index != nil {
		return s.index.Close()
	}
	return nil
}
