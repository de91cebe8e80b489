// Package search provides the pluggable relevance scoring hook used by the
// article search path. The core treats scoring as an injected strategy with a
// single contract: Score(document, query) in [0,1]. The default
// implementation is a deterministic, dependency-free Jaccard similarity over
// Unicode-aware token sets:
//
//	score = |Q ∩ D| / |Q ∪ D|
//
// A vector or embedding backend replaces the default by implementing Scorer;
// nothing in the core assumes keyword overlap.
package search

import (
	"strings"
	"unicode"
)

// Scorer ranks a document against a free-text query. Implementations must be
// pure and safe for concurrent use; scores are clamped to [0,1] by contract.
type Scorer interface {
	Score(document, query string) float64
}

// Option configures a JaccardScorer.
type Option func(*JaccardScorer)

// WithStopwords removes the given words (case-insensitive) from both the
// query and the document before scoring.
func WithStopwords(words []string) Option {
	return func(s *JaccardScorer) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			s.stopwords = m
		}
	}
}

// JaccardScorer is the default Scorer: token-set overlap between the query
// and the document. The zero value is ready to use.
type JaccardScorer struct {
	stopwords map[string]struct{}
}

// NewJaccardScorer constructs a JaccardScorer with the given options.
func NewJaccardScorer(opts ...Option) *JaccardScorer {
	s := &JaccardScorer{}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Score implements Scorer. An empty query or document scores 0; identical
// token sets score 1.
func (s *JaccardScorer) Score(document, query string) float64 {
	q := tokenize(query, s.stopwords)
	if len(q) == 0 {
		return 0
	}
	d := tokenize(document, s.stopwords)
	if len(d) == 0 {
		return 0
	}

	overlap := 0
	for tok := range q {
		if _, ok := d[tok]; ok {
			overlap++
		}
	}
	if overlap == 0 {
		return 0
	}
	union := len(q) + len(d) - overlap
	return float64(overlap) / float64(union)
}

// tokenize lower-cases the text and splits on any rune that is not a letter
// or digit, returning the token set minus stopwords.
func tokenize(text string, stopwords map[string]struct{}) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, stop := stopwords[f]; stop {
			continue
		}
		out[f] = struct{}{}
	}
	return out
}
