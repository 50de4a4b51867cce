package ai

import (
	"fmt"
	"math"
	"math/rand"
)

// Network is a small feed-forward classifier: two hidden ReLU layers and a
// softmax output, matching the original training topology. Weight fields are
// exported so a trained network can be serialised and reloaded instead of
// retraining at every startup.
type Network struct {
	InputSize  int `json:"input_size"`
	HiddenSize int `json:"hidden_size"`
	NumClasses int `json:"num_classes"`

	W1 [][]float64 `json:"w1"`
	B1 []float64   `json:"b1"`
	W2 [][]float64 `json:"w2"`
	B2 []float64   `json:"b2"`
	W3 [][]float64 `json:"w3"`
	B3 []float64   `json:"b3"`
}

// NewNetwork initialises the weights with a seeded generator so training is
// reproducible for a given corpus and seed.
func NewNetwork(inputSize, hiddenSize, numClasses int, seed int64) *Network {
	rng := rand.New(rand.NewSource(seed))
	return &Network{
		InputSize:  inputSize,
		HiddenSize: hiddenSize,
		NumClasses: numClasses,
		W1:         randomMatrix(rng, hiddenSize, inputSize),
		B1:         make([]float64, hiddenSize),
		W2:         randomMatrix(rng, hiddenSize, hiddenSize),
		B2:         make([]float64, hiddenSize),
		W3:         randomMatrix(rng, numClasses, hiddenSize),
		B3:         make([]float64, numClasses),
	}
}

// randomMatrix draws He-scaled gaussian weights, suited to ReLU layers.
func randomMatrix(rng *rand.Rand, rows, cols int) [][]float64 {
	scale := math.Sqrt(2 / float64(cols))
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = rng.NormFloat64() * scale
		}
	}
	return m
}

// Train runs plain stochastic gradient descent with cross-entropy loss for a
// fixed epoch budget. Sample order is reshuffled each epoch with the same
// seeded generator used for initialisation offsets, keeping runs reproducible.
func (n *Network) Train(features [][]float64, labels []int, epochs int, learningRate float64, seed int64) error {
	if len(features) == 0 || len(features) != len(labels) {
		return fmt.Errorf("training set mismatch: %d features, %d labels", len(features), len(labels))
	}
	for _, f := range features {
		if len(f) != n.InputSize {
			return fmt.Errorf("feature length %d does not match input size %d", len(f), n.InputSize)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	order := make([]int, len(features))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		for _, idx := range order {
			n.step(features[idx], labels[idx], learningRate)
		}
	}
	return nil
}

// step performs forward and backward passes for one sample.
func (n *Network) step(x []float64, label int, lr float64) {
	z1, a1 := denseRelu(n.W1, n.B1, x)
	z2, a2 := denseRelu(n.W2, n.B2, a1)
	probs := softmax(dense(n.W3, n.B3, a2))

	// Output layer gradient: softmax with cross-entropy.
	d3 := make([]float64, n.NumClasses)
	copy(d3, probs)
	d3[label]--

	// Hidden layer gradients, gated by the ReLU derivative.
	d2 := backprop(n.W3, d3, z2)
	d1 := backprop(n.W2, d2, z1)

	applyGradient(n.W3, n.B3, d3, a2, lr)
	applyGradient(n.W2, n.B2, d2, a1, lr)
	applyGradient(n.W1, n.B1, d1, x, lr)
}

// Predict returns the class of highest predicted probability. Ties resolve to
// the lowest class index because the scan only replaces on a strictly greater
// score. No confidence threshold is applied.
func (n *Network) Predict(x []float64) int {
	probs := n.Probabilities(x)
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return best
}

// Probabilities runs the forward pass and returns the softmax distribution.
func (n *Network) Probabilities(x []float64) []float64 {
	_, a1 := denseRelu(n.W1, n.B1, x)
	_, a2 := denseRelu(n.W2, n.B2, a1)
	return softmax(dense(n.W3, n.B3, a2))
}

func dense(w [][]float64, b []float64, x []float64) []float64 {
	out := make([]float64, len(w))
	for i, row := range w {
		sum := b[i]
		for j, wj := range row {
			sum += wj * x[j]
		}
		out[i] = sum
	}
	return out
}

func denseRelu(w [][]float64, b []float64, x []float64) (pre, post []float64) {
	pre = dense(w, b, x)
	post = make([]float64, len(pre))
	for i, z := range pre {
		if z > 0 {
			post[i] = z
		}
	}
	return pre, post
}

// backprop propagates the next layer's delta through its weights and applies
// the ReLU derivative of the current pre-activation.
func backprop(w [][]float64, delta []float64, pre []float64) []float64 {
	out := make([]float64, len(pre))
	for j := range pre {
		if pre[j] <= 0 {
			continue
		}
		var sum float64
		for i := range delta {
			sum += w[i][j] * delta[i]
		}
		out[j] = sum
	}
	return out
}

func applyGradient(w [][]float64, b []float64, delta []float64, input []float64, lr float64) {
	for i, d := range delta {
		b[i] -= lr * d
		row := w[i]
		for j, in := range input {
			row[j] -= lr * d * in
		}
	}
}

func softmax(z []float64) []float64 {
	max := math.Inf(-1)
	for _, v := range z {
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(z))
	var sum float64
	for i, v := range z {
		out[i] = math.Exp(v - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
