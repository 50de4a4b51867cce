package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNetwork_TrainSeparable(t *testing.T) {
	req := require.New(t)

	// Two trivially separable classes on orthogonal axes.
	features := [][]float64{
		{1, 0, 0, 0},
		{0.9, 0.1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0.9, 0.1},
	}
	labels := []int{0, 0, 1, 1}

	n := NewNetwork(4, 8, 2, 42)
	err := n.Train(features, labels, 500, 0.1, 42)
	req.NoError(err)

	req.Equal(0, n.Predict([]float64{1, 0, 0, 0}))
	req.Equal(1, n.Predict([]float64{0, 0, 1, 0}))

	probs := n.Probabilities([]float64{1, 0, 0, 0})
	req.Len(probs, 2)
	req.InDelta(1.0, probs[0]+probs[1], 1e-9)
}

func TestNetwork_TrainValidation(t *testing.T) {
	req := require.New(t)
	n := NewNetwork(2, 4, 2, 1)

	err := n.Train(nil, nil, 10, 0.1, 1)
	req.Error(err)

	err = n.Train([][]float64{{1, 0, 0}}, []int{0}, 10, 0.1, 1)
	req.Error(err, "feature length must match input size")
}

func TestNetwork_PredictTieBreak(t *testing.T) {
	req := require.New(t)

	// A zeroed network outputs a uniform distribution; arg-max must then
	// resolve to the lowest class index.
	n := &Network{
		InputSize:  2,
		HiddenSize: 2,
		NumClasses: 3,
		W1:         [][]float64{{0, 0}, {0, 0}},
		B1:         []float64{0, 0},
		W2:         [][]float64{{0, 0}, {0, 0}},
		B2:         []float64{0, 0},
		W3:         [][]float64{{0, 0}, {0, 0}, {0, 0}},
		B3:         []float64{0, 0, 0},
	}

	req.Equal(0, n.Predict([]float64{1, 1}))
}

func TestNetwork_Deterministic(t *testing.T) {
	req := require.New(t)
	features := [][]float64{{1, 0}, {0, 1}}
	labels := []int{0, 1}

	a := NewNetwork(2, 4, 2, 7)
	req.NoError(a.Train(features, labels, 100, 0.1, 7))
	b := NewNetwork(2, 4, 2, 7)
	req.NoError(b.Train(features, labels, 100, 0.1, 7))

	req.Equal(a.W1, b.W1)
	req.Equal(a.B3, b.B3)
}
