package ai

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"intent-chat/errors"
)

// TrainingExample is a single labelled row of the intent corpus.
// The corpus is immutable and loaded exactly once at startup; it is the sole
// source of truth for both the vectorizer vocabulary and the label set.
type TrainingExample struct {
	Pattern string
	Intent  string
}

// LoadCorpus reads a delimited corpus file with at least a "pattern" and an
// "intent" column. Rows with a missing value in either column are dropped,
// mirroring the dropna step of the original training pipeline.
func LoadCorpus(path string) ([]TrainingExample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()

	return ReadCorpus(f)
}

// ReadCorpus parses CSV content into training examples.
func ReadCorpus(r io.Reader) ([]TrainingExample, error) {
	reader := csv.NewReader(r)
	// Malformed rows are skipped rather than failing the whole corpus.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.ErrEmptyCorpus
	}

	patternIdx, intentIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "pattern":
			patternIdx = i
		case "intent":
			intentIdx = i
		}
	}
	if patternIdx < 0 || intentIdx < 0 {
		return nil, fmt.Errorf("corpus header must contain 'pattern' and 'intent' columns, got %v", header)
	}

	var examples []TrainingExample
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Bad line, skip it like the original loader did.
			continue
		}
		if len(row) <= patternIdx || len(row) <= intentIdx {
			continue
		}
		pattern := strings.TrimSpace(row[patternIdx])
		intent := strings.TrimSpace(row[intentIdx])
		if pattern == "" || intent == "" {
			continue
		}
		examples = append(examples, TrainingExample{Pattern: pattern, Intent: intent})
	}

	if len(examples) == 0 {
		return nil, errors.ErrEmptyCorpus
	}
	return examples, nil
}

// CorpusHash returns a stable SHA-256 fingerprint of the corpus content.
// Persisted model weights are keyed by this hash so a restart only retrains
// when the corpus actually changed.
func CorpusHash(examples []TrainingExample) string {
	h := sha256.New()
	for _, ex := range examples {
		h.Write([]byte(ex.Pattern))
		h.Write([]byte{0})
		h.Write([]byte(ex.Intent))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
