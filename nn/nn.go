// Copyright 2025 LayerNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/layernet-ml/layernet/internal/graph"
	"github.com/layernet-ml/layernet/internal/nn"
	"github.com/layernet-ml/layernet/internal/tensor"
)

// Parameters

// Parameter represents a trainable parameter, shared by reference
// between the layers that hold it.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// ClipParams records which parameters an external trainer should
// norm-clip.
type ClipParams[B tensor.Backend] = nn.ClipParams[B]

// NewClipParams creates an empty clipping registry.
func NewClipParams[B tensor.Backend]() *ClipParams[B] {
	return nn.NewClipParams[B]()
}

// Activations

// Activation is an elementwise non-linearity.
type Activation[B tensor.Backend] = nn.Activation[B]

// Sigmoid is the logistic activation.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a sigmoid activation.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Tanh is the hyperbolic tangent activation.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// NewTanh creates a tanh activation.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return nn.NewTanh[B]()
}

// ReLU is the rectified linear activation.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// RowNormalize scales each row of a 2D tensor to approximately unit
// Euclidean norm.
func RowNormalize[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return nn.RowNormalize(x)
}

// Noise processes

// MaskingNoise zeroes input entries independently at a fixed rate,
// resampled per evaluation.
type MaskingNoise[B tensor.Backend] = nn.MaskingNoise[B]

// NewMaskingNoise creates a masking-noise node over input.
func NewMaskingNoise[B tensor.Backend](rng *rand.Rand, input graph.Expr[B], level float32) *MaskingNoise[B] {
	return nn.NewMaskingNoise(rng, input, level)
}

// TwinDisplacement produces a pair of points straddling each input
// row along a shared random direction.
type TwinDisplacement[B tensor.Backend] = nn.TwinDisplacement[B]

// NewTwinDisplacement creates a twin-displacement node over input.
func NewTwinDisplacement[B tensor.Backend](rng *rand.Rand, input graph.Expr[B], stepLen float32) *TwinDisplacement[B] {
	return nn.NewTwinDisplacement(rng, input, stepLen)
}

// Layers

// LayerConfig describes one hidden layer.
type LayerConfig[B tensor.Backend] = nn.LayerConfig[B]

// HiddenLayer computes act(drop(x) @ W + b) with optional parameter
// sharing and weight tying.
type HiddenLayer[B tensor.Backend] = nn.HiddenLayer[B]

// NewHiddenLayer builds a hidden layer.
func NewHiddenLayer[B tensor.Backend](rng *rand.Rand, cfg LayerConfig[B], backend B) *HiddenLayer[B] {
	return nn.NewHiddenLayer(rng, cfg, backend)
}

// Losses

// LossLayer is the view of a final layer consumed by output losses.
type LossLayer[B tensor.Backend] = nn.LossLayer[B]

// OutputLoss scores a final layer against semi-supervised labels.
type OutputLoss[B tensor.Backend] = nn.OutputLoss[B]

// LossFactory builds an output loss for a network's final layer.
type LossFactory[B tensor.Backend] = nn.LossFactory[B]

// MCL2HingeSS is a one-vs-all squared hinge loss over labeled rows.
type MCL2HingeSS[B tensor.Backend] = nn.MCL2HingeSS[B]

// NewMCL2HingeSS creates the squared hinge loss over a final layer.
func NewMCL2HingeSS[B tensor.Backend](layer LossLayer[B]) *MCL2HingeSS[B] {
	return nn.NewMCL2HingeSS(layer)
}

// Networks

// DevType selects the representation transform used by the dropout
// ensemble variance penalty.
type DevType = nn.DevType

// DEV transform variants.
const (
	DevVariance        DevType = nn.DevVariance
	DevNormVariance    DevType = nn.DevNormVariance
	DevTanhVariance    DevType = nn.DevTanhVariance
	DevSigmoidVariance DevType = nn.DevSigmoidVariance
	DevCrossEntropy    DevType = nn.DevCrossEntropy
)

// Config describes an SSDEVNet.
type Config = nn.Config

// DAEPair is one denoising autoencoder, encoder plus decoder.
type DAEPair[B tensor.Backend] = nn.DAEPair[B]

// DAELoss holds one autoencoder's reconstruction and sparsity terms.
type DAELoss[B tensor.Backend] = nn.DAELoss[B]

// SSDEVNet is a feedforward net for semi-supervised training with
// Dropout Ensemble Variance regularization.
type SSDEVNet[B tensor.Backend] = nn.SSDEVNet[B]

// NewSSDEVNet builds the network over the given input expression.
// Passing a nil loss factory selects the one-vs-all squared hinge.
//
// Example:
//
//	backend := cpu.New()
//	rng := rand.New(rand.NewSource(1234))
//	x := graph.NewPlaceholder[*cpu.Backend]("x")
//	net, err := nn.NewSSDEVNet(rng, x, nn.Config{
//	    LayerSizes: []int{28 * 28, 500, 500, 11},
//	    UseBias:    true,
//	    DevClones:  1,
//	    DevTypes:   []nn.DevType{nn.DevNormVariance, nn.DevNormVariance, nn.DevVariance},
//	    DevLams:    []float32{0.1, 0.1, 2.0},
//	}, nil, backend)
func NewSSDEVNet[B tensor.Backend](rng *rand.Rand, input graph.Expr[B], cfg Config, newLoss LossFactory[B], backend B) (*SSDEVNet[B], error) {
	return nn.NewSSDEVNet(rng, input, cfg, newLoss, backend)
}
