// Package nn implements the network layers, noise processes, and loss
// components used to assemble semi-supervised, DEV-regularized
// feedforward networks.
package nn

import (
	"fmt"
	"math/rand"

	"github.com/layernet-ml/layernet/internal/graph"
	"github.com/layernet-ml/layernet/internal/tensor"
)

// Clone dropout rates. The first layer of every dropout clone drops
// its input lightly; later layers drop at the usual rate.
const (
	firstLayerDropRate = 0.2
	laterLayerDropRate = 0.5
)

// SSDEVNet is a feedforward net built for semi-supervised training
// with Dropout Ensemble Variance regularization. It holds three
// parallel computation graphs over one parameter set: a dropless raw
// network, some number of dropout clones, and a denoising autoencoder
// per hidden layer. The DEV penalty pushes the raw network and the
// first clone toward agreeing representations on unlabeled rows.
type SSDEVNet[B tensor.Backend] struct {
	backend      B
	input        graph.Expr[B]
	activation   Activation[B]
	usingSigmoid bool

	mlpLayers []*HiddenLayer[B]
	devClones [][]*HiddenLayer[B]
	mlpParams []*Parameter[B]

	devTypes   []DevType
	devLams    []float32
	devLamsSum float32
	devMixRate float32

	clipParams *ClipParams[B]

	rawOutFunc OutputLoss[B]
	sdeOutFunc OutputLoss[B]
	rawRegLoss graph.Expr[B]
	sdeRegLoss graph.Expr[B]

	rawDAELayers []DAEPair[B]
	sdeDAELayers []DAEPair[B]
	daeParams    [][]*Parameter[B]
	rawDAELosses []DAELoss[B]
	sdeDAELosses []DAELoss[B]
}

// NewSSDEVNet builds the network over the given input expression.
// newLoss supplies the classification loss over a final layer; passing
// nil selects the one-vs-all squared hinge. The sigmoid activation is
// used throughout, which also selects cross-entropy reconstruction for
// the autoencoders.
func NewSSDEVNet[B tensor.Backend](rng *rand.Rand, input graph.Expr[B], cfg Config, newLoss LossFactory[B], backend B) (*SSDEVNet[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, fmt.Errorf("nn: network requires an input expression")
	}
	if newLoss == nil {
		newLoss = func(layer LossLayer[B]) OutputLoss[B] {
			return NewMCL2HingeSS(layer)
		}
	}
	n := &SSDEVNet[B]{
		backend:      backend,
		input:        input,
		activation:   NewSigmoid[B](),
		usingSigmoid: true,
		devClones:    make([][]*HiddenLayer[B], cfg.DevClones),
		devTypes:     append([]DevType(nil), cfg.DevTypes...),
		devLams:      append([]float32(nil), cfg.DevLams...),
		devLamsSum:   cfg.devLamSum(),
		devMixRate:   cfg.DevMixRate,
		clipParams:   NewClipParams[B](),
	}

	nextRawInput := input
	nextDropInputs := make([]graph.Expr[B], cfg.DevClones)
	for i := range nextDropInputs {
		nextDropInputs[i] = input
	}
	firstLayer := true
	for li := 0; li < cfg.NumLayers(); li++ {
		nIn, nOut := cfg.LayerSizes[li], cfg.LayerSizes[li+1]
		raw := NewHiddenLayer(rng, LayerConfig[B]{
			Input:      nextRawInput,
			InDim:      nIn,
			OutDim:     nOut,
			Activation: n.activation,
			UseBias:    cfg.UseBias,
			Name:       fmt.Sprintf("layer%d", li),
		}, backend)
		n.mlpLayers = append(n.mlpLayers, raw)
		nextRawInput = raw.Output()
		n.clipParams.Set(raw.Weight(), 1)
		if raw.Bias() != nil {
			n.clipParams.Set(raw.Bias(), 0)
		}
		rate := float32(laterLayerDropRate)
		if firstLayer {
			rate = firstLayerDropRate
		}
		for ci := range n.devClones {
			clone := NewHiddenLayer(rng, LayerConfig[B]{
				Input:      nextDropInputs[ci],
				InDim:      nIn,
				OutDim:     nOut,
				Activation: n.activation,
				DropRate:   rate,
				UseBias:    cfg.UseBias,
				Weight:     raw.Weight(),
				Bias:       raw.Bias(),
				Name:       fmt.Sprintf("clone%d.layer%d", ci, li),
			}, backend)
			n.devClones[ci] = append(n.devClones[ci], clone)
			nextDropInputs[ci] = clone.Output()
		}
		firstLayer = false
	}
	for _, layer := range n.mlpLayers {
		n.mlpParams = append(n.mlpParams, layer.Params()...)
	}

	n.constructDAELayers(rng)

	n.rawOutFunc = newLoss(n.lastRawLayer())
	n.rawRegLoss = n.regLoss(cfg.LamL2a, n.mlpLayers)
	if cfg.DevClones > 0 {
		n.sdeOutFunc = newLoss(n.devClones[0][len(n.devClones[0])-1])
		n.sdeRegLoss = n.regLoss(cfg.LamL2a, n.devClones[0])
	}
	return n, nil
}

func (n *SSDEVNet[B]) lastRawLayer() *HiddenLayer[B] {
	return n.mlpLayers[len(n.mlpLayers)-1]
}

// regLoss sums the mean squared activations over a layer chain,
// scaled by the activity regularization weight.
func (n *SSDEVNet[B]) regLoss(lamL2a float32, layers []*HiddenLayer[B]) graph.Expr[B] {
	return graph.NewFunc("reg_loss", func(r *graph.Run[B]) *tensor.Tensor[float32, B] {
		total := tensor.Scalar[float32](0, n.backend)
		for _, layer := range layers {
			total = total.Add(r.Eval(layer.ActL2Sum()))
		}
		return total.MulScalar(lamL2a)
	})
}

// DevCost is the full training objective. With any DEV weight above
// threshold it mixes the raw and droppy classification losses and adds
// the per-layer variance penalties plus the averaged activity terms of
// both branches; otherwise it degenerates to the plain raw-network
// objective. When jointLoss is false only the regularization part is
// returned.
func (n *SSDEVNet[B]) DevCost(labels graph.Expr[B], jointLoss bool) graph.Expr[B] {
	rawClassLoss := n.rawOutFunc.LossFunc(labels)
	var sdeClassLoss graph.Expr[B]
	if n.sdeOutFunc != nil {
		sdeClassLoss = n.sdeOutFunc.LossFunc(labels)
	}
	return graph.NewFunc("dev_cost", func(r *graph.Run[B]) *tensor.Tensor[float32, B] {
		var classLoss, regLoss *tensor.Tensor[float32, B]
		if n.devLamsSum > devLamThreshold {
			dmr := n.devMixRate
			classLoss = r.Eval(rawClassLoss).MulScalar(dmr).
				Add(r.Eval(sdeClassLoss).MulScalar(1 - dmr))
			labelsT := r.Eval(labels)
			devSum := tensor.Scalar[float32](0, n.backend)
			last := len(n.mlpLayers) - 1
			for i, layer := range n.mlpLayers {
				x1, x2 := layer.Output(), n.devClones[0][i].Output()
				if i == last {
					x1, x2 = layer.LinearOutput(), n.devClones[0][i].LinearOutput()
				}
				loss := n.devLoss(r.Eval(x1), r.Eval(x2), labelsT, n.devTypes[i])
				devSum = devSum.Add(loss.MulScalar(n.devLams[i]))
			}
			regLoss = devSum.Add(
				r.Eval(n.rawRegLoss).Add(r.Eval(n.sdeRegLoss)).MulScalar(0.5))
		} else {
			classLoss = r.Eval(rawClassLoss)
			regLoss = r.Eval(n.rawRegLoss)
		}
		if jointLoss {
			return classLoss.Add(regLoss)
		}
		return regLoss
	})
}

// devLoss computes one layer's dropout ensemble variance penalty
// between the raw representation x1 and the droppy representation x2.
// All variants except cross-entropy restrict the penalty to unlabeled
// rows and normalize by their count; cross-entropy is unmasked and
// normalized by the batch size.
func (n *SSDEVNet[B]) devLoss(x1, x2, labels *tensor.Tensor[float32, B], devType DevType) *tensor.Tensor[float32, B] {
	if devType == DevCrossEntropy {
		bce := binaryCrossEntropy(x2.Sigmoid(), x1.Sigmoid())
		return bce.Sum().DivScalar(float32(x1.Shape()[0]))
	}
	switch devType {
	case DevNormVariance:
		x1, x2 = RowNormalize(x1), RowNormalize(x2)
	case DevTanhVariance:
		x1, x2 = x1.Tanh(), x2.Tanh()
	case DevSigmoidVariance:
		x1, x2 = x1.Sigmoid(), x2.Sigmoid()
	}
	batch := labels.NumElements()
	zeros := tensor.Zeros[float32](tensor.Shape{batch, 1}, n.backend)
	mask := labels.Reshape(batch, 1).Eq(zeros).Float32()
	diff := x1.Sub(x2).Mul(mask)
	return diff.Mul(diff).Sum().Div(mask.Sum())
}

// RawClassLoss is the classification loss of the dropless network.
func (n *SSDEVNet[B]) RawClassLoss(labels graph.Expr[B]) graph.Expr[B] {
	return n.rawOutFunc.LossFunc(labels)
}

// SdeClassLoss is the classification loss of the first dropout clone.
func (n *SSDEVNet[B]) SdeClassLoss(labels graph.Expr[B]) graph.Expr[B] {
	return n.sdeOutFunc.LossFunc(labels)
}

// ClassErrors counts labeled rows the dropless network misclassifies.
func (n *SSDEVNet[B]) ClassErrors(labels graph.Expr[B]) graph.Expr[B] {
	return n.rawOutFunc.Errors(labels)
}

// RawRegLoss is the activity regularization term of the dropless
// network.
func (n *SSDEVNet[B]) RawRegLoss() graph.Expr[B] { return n.rawRegLoss }

// SdeRegLoss is the activity regularization term of the first dropout
// clone.
func (n *SSDEVNet[B]) SdeRegLoss() graph.Expr[B] { return n.sdeRegLoss }

// DevRegLoss is the regularization part of the DEV objective.
func (n *SSDEVNet[B]) DevRegLoss(labels graph.Expr[B]) graph.Expr[B] {
	return n.DevCost(labels, false)
}

// SdeCost is the dropout-network objective: droppy classification loss
// plus droppy activity regularization.
func (n *SSDEVNet[B]) SdeCost(labels graph.Expr[B]) graph.Expr[B] {
	classLoss := n.sdeOutFunc.LossFunc(labels)
	return graph.NewFunc("sde_cost", func(r *graph.Run[B]) *tensor.Tensor[float32, B] {
		return r.Eval(classLoss).Add(r.Eval(n.sdeRegLoss))
	})
}

// Output is the dropless network's output expression.
func (n *SSDEVNet[B]) Output() graph.Expr[B] {
	return n.lastRawLayer().Output()
}

// Layers returns the dropless network's layers.
func (n *SSDEVNet[B]) Layers() []*HiddenLayer[B] { return n.mlpLayers }

// DevClones returns the dropout clone layer chains.
func (n *SSDEVNet[B]) DevClones() [][]*HiddenLayer[B] { return n.devClones }

// Params returns the parameters of the dropless network, which the
// clones share.
func (n *SSDEVNet[B]) Params() []*Parameter[B] { return n.mlpParams }

// DAEParams returns, per hidden layer, the parameters its autoencoder
// trains: the shared weight, the encoder bias and the decoder bias.
func (n *SSDEVNet[B]) DAEParams() [][]*Parameter[B] { return n.daeParams }

// ClipParams returns the norm-clipping registry for an external
// trainer.
func (n *SSDEVNet[B]) ClipParams() *ClipParams[B] { return n.clipParams }

// RawDAELayers returns the dropless autoencoder pairs.
func (n *SSDEVNet[B]) RawDAELayers() []DAEPair[B] { return n.rawDAELayers }

// SdeDAELayers returns the droppy autoencoder pairs.
func (n *SSDEVNet[B]) SdeDAELayers() []DAEPair[B] { return n.sdeDAELayers }

// RawDAELosses returns the per-layer dropless autoencoder losses.
func (n *SSDEVNet[B]) RawDAELosses() []DAELoss[B] { return n.rawDAELosses }

// SdeDAELosses returns the per-layer droppy autoencoder losses.
func (n *SSDEVNet[B]) SdeDAELosses() []DAELoss[B] { return n.sdeDAELosses }
