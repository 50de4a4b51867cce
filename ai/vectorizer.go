package ai

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"intent-chat/errors"
)

// Vectorizer turns free text into fixed-length TF-IDF feature vectors.
// It is fitted exactly once over the static training corpus; the vocabulary
// is frozen afterwards and Transform never mutates it, so a fitted Vectorizer
// is safe for concurrent use.
type Vectorizer struct {
	vocabulary map[string]int
	idf        []float64
}

// FitVectorizer builds the vocabulary and inverse document frequencies from
// the corpus documents. An empty corpus (or one producing no tokens) fails
// fast: no valid vectorizer can be produced.
func FitVectorizer(documents []string) (*Vectorizer, error) {
	if len(documents) == 0 {
		return nil, errors.ErrEmptyCorpus
	}

	// Document frequency per token, over the whole corpus.
	df := make(map[string]int)
	for _, doc := range documents {
		for _, token := range uniqueTokens(doc) {
			df[token]++
		}
	}
	if len(df) == 0 {
		return nil, errors.ErrEmptyCorpus
	}

	// Deterministic vocabulary order: sorted tokens.
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v := &Vectorizer{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
	}
	n := float64(len(documents))
	for i, term := range terms {
		v.vocabulary[term] = i
		// Smoothed IDF: behaves as if every term appeared in one extra document.
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return v, nil
}

// Size returns the vocabulary size, i.e. the feature vector length.
func (v *Vectorizer) Size() int {
	return len(v.idf)
}

// Transform maps text to its TF-IDF vector. Tokens outside the fitted
// vocabulary contribute zero weight. The result is L2-normalised.
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.idf))
	for _, token := range Tokenize(text) {
		if idx, ok := v.vocabulary[token]; ok {
			vec[idx] += v.idf[idx]
		}
	}

	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// Tokenize lowercases the text and splits it on non-alphanumeric runes.
// Single-rune tokens carry almost no signal for intent detection and are
// dropped.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func uniqueTokens(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, token := range Tokenize(text) {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}
