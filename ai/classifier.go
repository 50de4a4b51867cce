//go:generate go run go.uber.org/mock/mockgen -source=classifier.go -destination=../mocks/mock_classifier.go -package=mocks
package ai

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"intent-chat/errors"
)

// IntentPredictor is the read side of the classifier, the only part request
// handling ever touches. A fitted predictor is immutable and safe for
// concurrent use.
type IntentPredictor interface {
	Predict(text string) (string, error)
}

// TrainingConfig bundles the fixed training budget and topology knobs.
type TrainingConfig struct {
	HiddenSize   int
	Epochs       int
	LearningRate float64
	Seed         int64
}

// Classifier glues the vectorizer, the label codec and the network into the
// text -> intent pipeline. Fitting happens once at process initialisation;
// every intent it returns is a member of the training-time label set.
type Classifier struct {
	vectorizer *Vectorizer
	codec      *LabelCodec
	network    *Network
	log        *slog.Logger
}

// TrainClassifier fits the whole pipeline over the corpus. Any failure here
// is fatal for the caller: the process must not serve requests without a
// model.
func TrainClassifier(corpus []TrainingExample, cfg TrainingConfig, log *slog.Logger) (*Classifier, error) {
	c, features, labels, err := prepare(corpus, cfg, log)
	if err != nil {
		return nil, err
	}

	log.Info("Training intent classifier",
		"examples", len(corpus),
		"vocabulary", c.vectorizer.Size(),
		"classes", c.codec.NumClasses(),
		"epochs", cfg.Epochs)

	if err := c.network.Train(features, labels, cfg.Epochs, cfg.LearningRate, cfg.Seed); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrModelUnavailable, err)
	}
	return c, nil
}

// RestoreClassifier refits the deterministic parts (vectorizer, codec) from
// the corpus and loads previously trained network weights, skipping training
// entirely. The weights must come from the same corpus; callers guarantee
// that by keying persistence on CorpusHash.
func RestoreClassifier(corpus []TrainingExample, weights []byte, cfg TrainingConfig, log *slog.Logger) (*Classifier, error) {
	c, _, _, err := prepare(corpus, cfg, log)
	if err != nil {
		return nil, err
	}

	var network Network
	if err := json.Unmarshal(weights, &network); err != nil {
		return nil, fmt.Errorf("%w: corrupt weights: %v", errors.ErrModelUnavailable, err)
	}
	if network.InputSize != c.vectorizer.Size() || network.NumClasses != c.codec.NumClasses() {
		return nil, fmt.Errorf("%w: weights shaped %dx%d do not fit corpus %dx%d",
			errors.ErrModelUnavailable,
			network.InputSize, network.NumClasses,
			c.vectorizer.Size(), c.codec.NumClasses())
	}
	c.network = &network
	return c, nil
}

func prepare(corpus []TrainingExample, cfg TrainingConfig, log *slog.Logger) (*Classifier, [][]float64, []int, error) {
	if len(corpus) == 0 {
		return nil, nil, nil, errors.ErrEmptyCorpus
	}

	documents := make([]string, len(corpus))
	intents := make([]string, len(corpus))
	for i, ex := range corpus {
		documents[i] = ex.Pattern
		intents[i] = ex.Intent
	}

	vectorizer, err := FitVectorizer(documents)
	if err != nil {
		return nil, nil, nil, err
	}
	codec, err := FitLabels(intents)
	if err != nil {
		return nil, nil, nil, err
	}

	features := make([][]float64, len(documents))
	labels := make([]int, len(intents))
	for i := range corpus {
		features[i] = vectorizer.Transform(documents[i])
		labels[i], err = codec.Encode(intents[i])
		if err != nil {
			return nil, nil, nil, err
		}
	}

	c := &Classifier{
		vectorizer: vectorizer,
		codec:      codec,
		network:    NewNetwork(vectorizer.Size(), cfg.HiddenSize, codec.NumClasses(), cfg.Seed),
		log:        log,
	}
	return c, features, labels, nil
}

// Predict maps a message to its intent label.
func (c *Classifier) Predict(text string) (string, error) {
	index := c.network.Predict(c.vectorizer.Transform(text))
	return c.codec.Decode(index)
}

// Classes exposes the closed label set, in index order.
func (c *Classifier) Classes() []string {
	return c.codec.Classes()
}

// Weights serialises the trained network for persistence.
func (c *Classifier) Weights() ([]byte, error) {
	return json.Marshal(c.network)
}
