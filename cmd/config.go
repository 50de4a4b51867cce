package main

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Host              string        `env:"HOST,default=localhost"`
	Port              int           `env:"PORT,default=8080"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath     string        `env:"BLUGE_FILEPATH,required=true"`
	CorpusFilepath    string        `env:"CORPUS_FILEPATH,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	InitialTokens    int64 `env:"INITIAL_TOKENS,default=4000"`
	MessageCost      int64 `env:"MESSAGE_COST,default=100"`
	MaxContentLength int   `env:"MAX_CONTENT_LENGTH,default=2000"`
	LimitRecords     *int  `env:"LIMIT_RECORDS"`

	HiddenSize     int     `env:"HIDDEN_SIZE,default=16"`
	TrainingEpochs int     `env:"TRAINING_EPOCHS,default=300"`
	LearningRate   float64 `env:"LEARNING_RATE,default=0.1"`
	TrainingSeed   int64   `env:"TRAINING_SEED,default=42"`
	ForceRetrain   bool    `env:"FORCE_RETRAIN,default=false"`

	CensoredWords   string `env:"CENSORED_WORDS"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`
}

// CensoredWordList splits the comma separated CENSORED_WORDS value; an empty
// value disables moderation.
func (c Config) CensoredWordList() []string {
	if strings.TrimSpace(c.CensoredWords) == "" {
		return nil
	}
	var words []string
	for _, w := range strings.Split(c.CensoredWords, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
