package nn

import (
	"fmt"
	"math/rand"

	"github.com/layernet-ml/layernet/internal/graph"
	"github.com/layernet-ml/layernet/internal/tensor"
)

// daeNoiseLevel is the masking-noise corruption applied to every
// autoencoder input.
const daeNoiseLevel = 0.25

// daeSparseWeight scales the L1 sparsity term of every autoencoder.
const daeSparseWeight = 0.01

// daeDropRate is the dropout applied to the code layer of the droppy
// decoders.
const daeDropRate = 0.5

// DAEPair is one denoising autoencoder: an encoder over the noised
// input of a network layer and a decoder reconstructing that input.
// The decoder's weight is the transpose of the encoder's, so both read
// the same underlying parameter.
type DAEPair[B tensor.Backend] struct {
	Encoder *HiddenLayer[B]
	Decoder *HiddenLayer[B]
}

// DAELoss holds the two training terms of one autoencoder, both
// averaged over the batch.
type DAELoss[B tensor.Backend] struct {
	Recon  graph.Expr[B]
	Sparse graph.Expr[B]
}

// binaryCrossEntropy is the elementwise loss
// -(target*log(output) + (1-target)*log(1-output)).
func binaryCrossEntropy[B tensor.Backend](output, target *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	onPart := target.Mul(output.Log())
	offPart := target.MulScalar(-1).AddScalar(1).
		Mul(output.MulScalar(-1).AddScalar(1).Log())
	return onPart.Add(offPart).MulScalar(-1)
}

// constructDAELayers builds a denoising autoencoder on top of each
// hidden layer. The encoder shares the layer's weight and bias; two
// decoders, one dropless and one with code dropout, share the
// transposed weight and a common fresh bias. Autoencoder input is the
// layer's own input in the dropless network, corrupted with masking
// noise.
func (n *SSDEVNet[B]) constructDAELayers(rng *rand.Rand) {
	for i := 0; i < len(n.mlpLayers)-1; i++ {
		layer := n.mlpLayers[i]
		obsDim, codeDim := layer.InDim(), layer.OutDim()
		noised := NewMaskingNoise(rng, layer.Input(), daeNoiseLevel)
		encoder := NewHiddenLayer(rng, LayerConfig[B]{
			Input:      noised,
			InDim:      obsDim,
			OutDim:     codeDim,
			Activation: n.activation,
			UseBias:    true,
			Weight:     layer.Weight(),
			Bias:       layer.Bias(),
			Name:       fmt.Sprintf("dae%d.enc", i),
		}, n.backend)
		rawDecoder := NewHiddenLayer(rng, LayerConfig[B]{
			Input:      encoder.Output(),
			InDim:      codeDim,
			OutDim:     obsDim,
			Activation: n.activation,
			UseBias:    true,
			Weight:     layer.Weight(),
			TransposeW: true,
			Name:       fmt.Sprintf("dae%d.raw_dec", i),
		}, n.backend)
		sdeDecoder := NewHiddenLayer(rng, LayerConfig[B]{
			Input:      encoder.Output(),
			InDim:      codeDim,
			OutDim:     obsDim,
			Activation: n.activation,
			DropRate:   daeDropRate,
			UseBias:    true,
			Weight:     layer.Weight(),
			TransposeW: true,
			Bias:       rawDecoder.Bias(),
			Name:       fmt.Sprintf("dae%d.sde_dec", i),
		}, n.backend)
		n.clipParams.Set(rawDecoder.Bias(), 0)
		n.rawDAELayers = append(n.rawDAELayers, DAEPair[B]{Encoder: encoder, Decoder: rawDecoder})
		n.sdeDAELayers = append(n.sdeDAELayers, DAEPair[B]{Encoder: encoder, Decoder: sdeDecoder})
		n.daeParams = append(n.daeParams, []*Parameter[B]{
			encoder.Weight(), encoder.Bias(), rawDecoder.Bias(),
		})
	}
	for i := 0; i < len(n.mlpLayers)-1; i++ {
		daeInput := n.mlpLayers[i].Input()
		n.rawDAELosses = append(n.rawDAELosses, n.daeLoss(daeInput, n.rawDAELayers[i].Decoder))
		n.sdeDAELosses = append(n.sdeDAELosses, n.daeLoss(daeInput, n.sdeDAELayers[i].Decoder))
	}
}

// daeLoss builds the reconstruction and sparsity terms for one
// decoder. Sigmoid networks reconstruct through binary cross-entropy
// on the decoder output; all others use squared error against the
// decoder's linear output.
func (n *SSDEVNet[B]) daeLoss(daeInput graph.Expr[B], decoder *HiddenLayer[B]) DAELoss[B] {
	recon := graph.NewFunc("dae.recon", func(r *graph.Run[B]) *tensor.Tensor[float32, B] {
		in := r.Eval(daeInput)
		batch := float32(in.Shape()[0])
		var loss *tensor.Tensor[float32, B]
		if n.usingSigmoid {
			loss = binaryCrossEntropy(r.Eval(decoder.Output()), in).Sum()
		} else {
			diff := in.Sub(r.Eval(decoder.LinearOutput()))
			loss = diff.Mul(diff).Sum()
		}
		return loss.DivScalar(batch)
	})
	sparse := graph.NewFunc("dae.sparse", func(r *graph.Run[B]) *tensor.Tensor[float32, B] {
		in := r.Eval(daeInput)
		batch := float32(in.Shape()[0])
		return r.Eval(decoder.InpL1Sum()).MulScalar(daeSparseWeight).DivScalar(batch)
	})
	return DAELoss[B]{Recon: recon, Sparse: sparse}
}
