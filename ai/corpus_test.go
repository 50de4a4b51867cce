package ai

import (
	"strings"
	"testing"

	"intent-chat/errors"

	"github.com/stretchr/testify/require"
)

func TestReadCorpus(t *testing.T) {
	t.Run("should drop rows with missing values", func(t *testing.T) {
		req := require.New(t)
		csv := "pattern,intent\n" +
			"hello,greeting\n" +
			",greeting\n" +
			"bye,\n" +
			"bye,farewell\n"

		examples, err := ReadCorpus(strings.NewReader(csv))
		req.NoError(err)
		req.Equal([]TrainingExample{
			{Pattern: "hello", Intent: "greeting"},
			{Pattern: "bye", Intent: "farewell"},
		}, examples)
	})

	t.Run("should locate columns regardless of order", func(t *testing.T) {
		req := require.New(t)
		csv := "intent,pattern\ngreeting,hello there\n"

		examples, err := ReadCorpus(strings.NewReader(csv))
		req.NoError(err)
		req.Len(examples, 1)
		req.Equal("hello there", examples[0].Pattern)
		req.Equal("greeting", examples[0].Intent)
	})

	t.Run("should fail fast on empty input", func(t *testing.T) {
		req := require.New(t)
		_, err := ReadCorpus(strings.NewReader(""))
		req.ErrorIs(err, errors.ErrEmptyCorpus)
	})

	t.Run("should fail when only the header is present", func(t *testing.T) {
		req := require.New(t)
		_, err := ReadCorpus(strings.NewReader("pattern,intent\n"))
		req.ErrorIs(err, errors.ErrEmptyCorpus)
	})

	t.Run("should reject a header without the expected columns", func(t *testing.T) {
		req := require.New(t)
		_, err := ReadCorpus(strings.NewReader("text,label\nhello,greeting\n"))
		req.Error(err)
	})
}

func TestCorpusHash(t *testing.T) {
	req := require.New(t)
	a := []TrainingExample{{"hello", "greeting"}, {"bye", "farewell"}}
	b := []TrainingExample{{"hello", "greeting"}, {"bye", "farewell"}}
	c := []TrainingExample{{"hello", "greeting"}, {"bye", "thanks"}}

	req.Equal(CorpusHash(a), CorpusHash(b))
	req.NotEqual(CorpusHash(a), CorpusHash(c))
}
