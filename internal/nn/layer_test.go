package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layernet-ml/layernet/internal/backend/cpu"
	"github.com/layernet-ml/layernet/internal/graph"
	"github.com/layernet-ml/layernet/internal/tensor"
)

type Backend = *cpu.CPUBackend

// sigmoid computes the logistic function for testing.
func sigmoid(x float32) float32 {
	return 1.0 / (1.0 + float32(math.Exp(float64(-x))))
}

func fromSlice(t *testing.T, data []float32, shape tensor.Shape, b Backend) *tensor.Tensor[float32, Backend] {
	t.Helper()
	tt, err := tensor.FromSlice(data, shape, b)
	require.NoError(t, err)
	return tt
}

func TestHiddenLayerForward(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1234))

	x := graph.NewPlaceholder[Backend]("x")
	w := NewParameter("w", fromSlice(t, []float32{0.1, 0.2, 0.3, 0.4}, tensor.Shape{2, 2}, backend))
	b := NewParameter("b", fromSlice(t, []float32{0.5, -0.5}, tensor.Shape{2}, backend))

	layer := NewHiddenLayer(rng, LayerConfig[Backend]{
		Input:      x,
		InDim:      2,
		OutDim:     2,
		Activation: NewSigmoid[Backend](),
		UseBias:    true,
		Weight:     w,
		Bias:       b,
	}, backend)

	run := graph.NewRun[Backend]().Feed(x, fromSlice(t, []float32{1, 2}, tensor.Shape{1, 2}, backend))

	linear := run.Eval(layer.LinearOutput()).Data()
	assert.InDelta(t, 1.2, linear[0], 1e-6)
	assert.InDelta(t, 0.5, linear[1], 1e-6)

	out := run.Eval(layer.Output()).Data()
	assert.InDelta(t, sigmoid(1.2), out[0], 1e-6)
	assert.InDelta(t, sigmoid(0.5), out[1], 1e-6)
}

func TestHiddenLayerFreshInit(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1234))

	x := graph.NewPlaceholder[Backend]("x")
	layer := NewHiddenLayer(rng, LayerConfig[Backend]{
		Input:   x,
		InDim:   10,
		OutDim:  5,
		UseBias: true,
		Name:    "layer0",
	}, backend)

	require.True(t, layer.Weight().Tensor().Shape().Equal(tensor.Shape{10, 5}))
	require.True(t, layer.Bias().Tensor().Shape().Equal(tensor.Shape{5}))
	assert.Equal(t, "layer0.weight", layer.Weight().Name())

	// Weights are small, biases start at zero.
	for _, v := range layer.Weight().Tensor().Data() {
		assert.Less(t, math.Abs(float64(v)), 0.1)
	}
	for _, v := range layer.Bias().Tensor().Data() {
		assert.Zero(t, v)
	}
	assert.Len(t, layer.Params(), 2)
}

// A parameter update through one holder must be visible to every layer
// sharing the parameter.
func TestSharedWeightMutation(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1234))

	x := graph.NewPlaceholder[Backend]("x")
	w := NewParameter("w", fromSlice(t, []float32{1, 0, 0, 1}, tensor.Shape{2, 2}, backend))

	mk := func() *HiddenLayer[Backend] {
		return NewHiddenLayer(rng, LayerConfig[Backend]{
			Input: x, InDim: 2, OutDim: 2, Weight: w,
		}, backend)
	}
	la, lb := mk(), mk()
	input := fromSlice(t, []float32{3, 4}, tensor.Shape{1, 2}, backend)

	run := graph.NewRun[Backend]().Feed(x, input)
	assert.Equal(t, []float32{3, 4}, run.Eval(la.LinearOutput()).Data())

	w.SetTensor(fromSlice(t, []float32{2, 0, 0, 2}, tensor.Shape{2, 2}, backend))
	run = graph.NewRun[Backend]().Feed(x, input)
	assert.Equal(t, []float32{6, 8}, run.Eval(la.LinearOutput()).Data())
	assert.Equal(t, []float32{6, 8}, run.Eval(lb.LinearOutput()).Data())
}

// A decoder built on the transpose of a shared weight must track
// updates to the underlying parameter.
func TestTiedTransposedWeight(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1234))

	x := graph.NewPlaceholder[Backend]("x")
	w := NewParameter("w", fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend))

	dec := NewHiddenLayer(rng, LayerConfig[Backend]{
		Input: x, InDim: 3, OutDim: 2, Weight: w, TransposeW: true,
	}, backend)

	input := fromSlice(t, []float32{1, 1, 1}, tensor.Shape{1, 3}, backend)
	run := graph.NewRun[Backend]().Feed(x, input)
	// x @ W.T with W = [[1,2,3],[4,5,6]]
	assert.Equal(t, []float32{6, 15}, run.Eval(dec.LinearOutput()).Data())

	w.SetTensor(fromSlice(t, []float32{2, 4, 6, 8, 10, 12}, tensor.Shape{2, 3}, backend))
	run = graph.NewRun[Backend]().Feed(x, input)
	assert.Equal(t, []float32{12, 30}, run.Eval(dec.LinearOutput()).Data())
}

func TestTransposedWeightRequiresSharing(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1234))
	x := graph.NewPlaceholder[Backend]("x")

	assert.Panics(t, func() {
		NewHiddenLayer(rng, LayerConfig[Backend]{
			Input: x, InDim: 3, OutDim: 2, TransposeW: true,
		}, backend)
	})
}

func TestSharedWeightShapeMismatchPanics(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1234))
	x := graph.NewPlaceholder[Backend]("x")
	w := NewParameter("w", fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend))

	assert.Panics(t, func() {
		NewHiddenLayer(rng, LayerConfig[Backend]{
			Input: x, InDim: 3, OutDim: 2, Weight: w,
		}, backend)
	})
}

// With an identity weight and dropout, every output entry is either
// dropped to zero or rescaled by 1/(1-rate), and the mean over many
// evaluations recovers the dropless value.
func TestDropoutRescaling(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1234))

	x := graph.NewPlaceholder[Backend]("x")
	eye := fromSlice(t, []float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}, tensor.Shape{4, 4}, backend)
	layer := NewHiddenLayer(rng, LayerConfig[Backend]{
		Input: x, InDim: 4, OutDim: 4, DropRate: 0.5,
		Weight: NewParameter("w", eye),
	}, backend)

	input := fromSlice(t, []float32{1, 1, 1, 1}, tensor.Shape{1, 4}, backend)

	const trials = 2000
	sums := make([]float64, 4)
	sawZero, sawKept := false, false
	for i := 0; i < trials; i++ {
		run := graph.NewRun[Backend]().Feed(x, input)
		out := run.Eval(layer.Output()).Data()
		for j, v := range out {
			if v == 0 {
				sawZero = true
			} else {
				assert.InDelta(t, 2.0, v, 1e-6)
				sawKept = true
			}
			sums[j] += float64(v)
		}
	}
	assert.True(t, sawZero)
	assert.True(t, sawKept)
	for _, s := range sums {
		assert.InDelta(t, 1.0, s/trials, 0.1)
	}
}

// All expressions of one layer must observe the same dropout mask
// within a single evaluation.
func TestDropoutConsistentWithinRun(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1234))

	x := graph.NewPlaceholder[Backend]("x")
	layer := NewHiddenLayer(rng, LayerConfig[Backend]{
		Input: x, InDim: 6, OutDim: 4, DropRate: 0.5,
		Activation: NewSigmoid[Backend](),
		Weight:     NewParameter("w", tensor.Randn[float32](rng, tensor.Shape{6, 4}, backend)),
	}, backend)

	input := tensor.Randn[float32](rng, tensor.Shape{3, 6}, backend)
	run := graph.NewRun[Backend]().Feed(x, input)

	linear := run.Eval(layer.LinearOutput()).Data()
	out := run.Eval(layer.Output()).Data()
	for i := range out {
		assert.InDelta(t, sigmoid(linear[i]), out[i], 1e-6)
	}
}

func TestDroplessLayerDeterministic(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(99))

	x := graph.NewPlaceholder[Backend]("x")
	layer := NewHiddenLayer(rng, LayerConfig[Backend]{
		Input: x, InDim: 5, OutDim: 3,
		Activation: NewTanh[Backend](),
		UseBias:    true,
	}, backend)

	input := tensor.Randn[float32](rng, tensor.Shape{2, 5}, backend)
	a := graph.NewRun[Backend]().Feed(x, input).Eval(layer.Output()).Data()
	b := graph.NewRun[Backend]().Feed(x, input).Eval(layer.Output()).Data()
	assert.Equal(t, a, b)
}
