package ai

import (
	"fmt"
	"sort"

	"intent-chat/errors"

	"github.com/samber/lo"
)

// LabelCodec maps between human-readable intent names and dense integer class
// indices. Fitted once from the distinct intents of the training corpus, in a
// stable deterministic order (sorted), and frozen thereafter.
type LabelCodec struct {
	classes []string
	indices map[string]int
}

// FitLabels builds a codec from the intents present in the corpus.
func FitLabels(labels []string) (*LabelCodec, error) {
	if len(labels) == 0 {
		return nil, errors.ErrEmptyCorpus
	}

	classes := lo.Uniq(labels)
	sort.Strings(classes)

	indices := make(map[string]int, len(classes))
	for i, class := range classes {
		indices[class] = i
	}
	return &LabelCodec{classes: classes, indices: indices}, nil
}

// Classes returns the fitted label set in index order.
func (c *LabelCodec) Classes() []string {
	return c.classes
}

// NumClasses returns the size of the closed label set.
func (c *LabelCodec) NumClasses() int {
	return len(c.classes)
}

// Encode maps an intent name to its class index.
func (c *LabelCodec) Encode(label string) (int, error) {
	idx, ok := c.indices[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errors.ErrUnknownLabel, label)
	}
	return idx, nil
}

// Decode maps a class index back to its intent name. An index outside the
// fitted range means the classifier emitted something it never learned, which
// is a programming error, not a user error.
func (c *LabelCodec) Decode(index int) (string, error) {
	if index < 0 || index >= len(c.classes) {
		return "", fmt.Errorf("%w: %d", errors.ErrUnknownLabel, index)
	}
	return c.classes[index], nil
}
