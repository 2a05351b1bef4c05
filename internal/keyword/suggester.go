// Package keyword suggests vocabulary words close to a misspelled query.
package keyword

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	keywordanalyzer "github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"go.uber.org/zap"

	"github.com/hyperjump/wordalchemy/pkg/utils"
)

const wordField = "word"

// WordSource supplies the vocabulary in id order.
type WordSource interface {
	Words(ctx context.Context) ([]string, error)
}

// Suggestion is a vocabulary word close to the query.
type Suggestion struct {
	Word     string `json:"word"`
	Distance int    `json:"distance"`
	ID       int64  `json:"-"`
}

// Suggester finds "did you mean" candidates with a bleve fuzzy query over an
// in-memory index of the vocabulary, re-ranked by edit distance and id.
// The index is built on first use.
type Suggester struct {
	source         WordSource
	maxDistance    int
	maxSuggestions int
	logger         *zap.Logger

	mu    sync.Mutex
	built bool
	index bleve.Index
	words []string
	err   error
}

// SuggesterOption is a functional option for configuring Suggester.
type SuggesterOption func(*Suggester)

// WithMaxDistance sets the maximum edit distance (1 or 2, bleve's fuzzy limit).
func WithMaxDistance(d int) SuggesterOption {
	return func(s *Suggester) {
		if d > 0 && d <= 2 {
			s.maxDistance = d
		}
	}
}

// WithMaxSuggestions sets the default number of suggestions returned.
func WithMaxSuggestions(n int) SuggesterOption {
	return func(s *Suggester) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) SuggesterOption {
	return func(s *Suggester) {
		s.logger = utils.OrNop(l)
	}
}

// NewSuggester creates a suggester over source.
func NewSuggester(source WordSource, opts ...SuggesterOption) *Suggester {
	s := &Suggester{
		source:         source,
		maxDistance:    2,
		maxSuggestions: 5,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// build indexes the vocabulary once. Source errors are kept, except those
// caused by the caller's context, so a cancelled request does not disable
// suggestions for later callers.
func (s *Suggester) build(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.built {
		return s.err
	}
	words, err := s.source.Words(ctx)
	if err != nil && ctx.Err() != nil {
		return err
	}
	s.built = true
	if err != nil {
		s.err = err
		return err
	}
	s.err = s.indexWords(words)
	return s.err
}

func (s *Suggester) indexWords(words []string) error {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()
	field := bleve.NewTextFieldMapping()
	field.Analyzer = keywordanalyzer.Name
	field.Store = false
	field.IncludeTermVectors = false
	doc.AddFieldMappingsAt(wordField, field)
	im.DefaultMapping = doc

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return fmt.Errorf("failed to create suggestion index: %w", err)
	}

	seen := make(map[string]struct{}, len(words))
	batch := index.NewBatch()
	for i, w := range words {
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if err := batch.Index(strconv.Itoa(i), map[string]interface{}{wordField: w}); err != nil {
			_ = index.Close()
			return fmt.Errorf("index %q: %w", w, err)
		}
		if batch.Size() >= 10000 {
			if err := index.Batch(batch); err != nil {
				_ = index.Close()
				return fmt.Errorf("index batch: %w", err)
			}
			batch.Reset()
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return fmt.Errorf("index batch: %w", err)
	}

	s.index = index
	s.words = words
	s.logger.Debug("suggestion index built", zap.Int("words", len(seen)))
	return nil
}

// Suggest returns up to limit vocabulary words within the edit distance of
// word, closest first. limit <= 0 uses the configured default. The word
// itself is never suggested.
func (s *Suggester) Suggest(ctx context.Context, word string, limit int) ([]Suggestion, error) {
	if err := s.build(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.maxSuggestions
	}
	if word == "" {
		return []Suggestion{}, nil
	}

	fq := bleve.NewFuzzyQuery(word)
	fq.SetFuzziness(s.maxDistance)
	fq.SetField(wordField)
	req := bleve.NewSearchRequest(fq)
	req.Size = limit * 8
	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	out := make([]Suggestion, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil || id < 0 || int(id) >= len(s.words) {
			continue
		}
		w := s.words[id]
		if w == word {
			continue
		}
		d := DamerauLevenshteinDistance(word, w)
		if d > s.maxDistance {
			continue
		}
		out = append(out, Suggestion{Word: w, Distance: d, ID: id})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Words returns just the suggested words.
func (s *Suggester) Words(ctx context.Context, word string, limit int) ([]string, error) {
	sugg, err := s.Suggest(ctx, word, limit)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(sugg))
	for i, sg := range sugg {
		out[i] = sg.Word
	}
	return out, nil
}

// Close releases the index.
func (s *Suggester) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index != nil {
		return s.index.Close()
	}
	return nil
}
